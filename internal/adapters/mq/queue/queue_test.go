package queue

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/taskmatch/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func tick(id string) Event {
	return Event{EventID: id, TaskID: "task-" + id, Action: model.ActionTick, TS: time.Now()}
}

func TestInMemoryQueueBasics(t *testing.T) {
	Convey("Given a queue with capacity 2", t, func() {
		ctx := context.Background()
		q := NewInMemoryQueue(WithCapacity(2))
		So(q.Capacity(), ShouldEqual, 2)
		So(q.Len(ctx), ShouldEqual, 0)

		Convey("When an event is enqueued and dequeued", func() {
			So(q.Enqueue(ctx, tick("e1")), ShouldBeTrue)
			So(q.Len(ctx), ShouldEqual, 1)

			dctx, cancel := context.WithCancel(ctx)
			defer cancel()
			ev := <-q.Dequeue(dctx)

			Convey("Then the same event should come out", func() {
				So(ev.EventID, ShouldEqual, "e1")
				So(ev.Action, ShouldEqual, model.ActionTick)
			})
		})

		Convey("When the queue is full", func() {
			So(q.Enqueue(ctx, tick("e1")), ShouldBeTrue)
			So(q.Enqueue(ctx, tick("e2")), ShouldBeTrue)

			Convey("Then further enqueues should be rejected without blocking", func() {
				So(q.Enqueue(ctx, tick("e3")), ShouldBeFalse)
				So(q.Len(ctx), ShouldEqual, 2)
			})
		})

		Convey("When the context is already cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()

			Convey("Then enqueue should fail", func() {
				So(q.Enqueue(cctx, tick("e1")), ShouldBeFalse)
			})
		})
	})
}

func TestInMemoryQueueClose(t *testing.T) {
	Convey("Given a queue holding one event", t, func() {
		ctx := context.Background()
		q := NewInMemoryQueue(WithCapacity(4))
		So(q.Enqueue(ctx, tick("e1")), ShouldBeTrue)

		Convey("When it is closed twice", func() {
			So(q.Close(), ShouldBeNil)
			So(q.Close(), ShouldBeNil)

			Convey("Then it should reject events and drain the rest", func() {
				So(q.IsClosed(), ShouldBeTrue)
				So(q.Enqueue(ctx, tick("e2")), ShouldBeFalse)

				var got []string
				for ev := range q.Dequeue(ctx) {
					got = append(got, ev.EventID)
				}
				So(got, ShouldResemble, []string{"e1"})
			})
		})
	})
}

func TestInMemoryQueueFanOut(t *testing.T) {
	Convey("Given several consumers on one queue", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		q := NewInMemoryQueue(WithCapacity(100))

		const total = 100
		var (
			mu   sync.Mutex
			seen = map[string]int{}
			wg   sync.WaitGroup
		)
		for i := 0; i < 4; i++ {
			ch := q.Dequeue(ctx)
			wg.Add(1)
			go func() {
				defer wg.Done()
				for ev := range ch {
					mu.Lock()
					seen[ev.EventID]++
					mu.Unlock()
				}
			}()
		}

		for i := 0; i < total; i++ {
			So(q.Enqueue(ctx, tick(fmt.Sprintf("e%d", i))), ShouldBeTrue)
		}
		So(q.Close(), ShouldBeNil)
		wg.Wait()

		Convey("Then every event should be delivered exactly once", func() {
			So(len(seen), ShouldEqual, total)
			for _, n := range seen {
				So(n, ShouldEqual, 1)
			}
		})
	})
}

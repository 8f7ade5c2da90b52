package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	dedupe "github.com/okian/taskmatch/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryDeduper(t *testing.T) {
	Convey("Given a new InMemoryDeduper", t, func() {
		ctx := context.Background()

		Convey("When creating a deduper with default options", func() {
			d := dedupe.NewInMemoryDeduper()

			Convey("Then it should be empty", func() {
				So(d, ShouldNotBeNil)
				So(d.Size(), ShouldEqual, 0)
			})
		})

		Convey("When recording keys", func() {
			d := dedupe.NewInMemoryDeduper()

			Convey("And the key is new", func() {
				prev, seen := d.SeenAndRecord(ctx, "key-1", "task-1")

				Convey("Then it should return false and record the key", func() {
					So(seen, ShouldBeFalse)
					So(prev, ShouldEqual, "")
					So(d.Size(), ShouldEqual, 1)
				})
			})

			Convey("And the key was already seen", func() {
				d.SeenAndRecord(ctx, "key-1", "task-1")
				prev, seen := d.SeenAndRecord(ctx, "key-1", "task-2")

				Convey("Then it should return the first value", func() {
					So(seen, ShouldBeTrue)
					So(prev, ShouldEqual, "task-1")
					So(d.Size(), ShouldEqual, 1)
				})
			})

			Convey("And a key is unrecorded", func() {
				d.SeenAndRecord(ctx, "key-1", "task-1")
				d.Unrecord(ctx, "key-1")
				d.Unrecord(ctx, "missing")
				_, seen := d.SeenAndRecord(ctx, "key-1", "task-3")

				Convey("Then it can be recorded again", func() {
					So(seen, ShouldBeFalse)
					So(d.Size(), ShouldEqual, 1)
				})
			})
		})

		Convey("When the bound is reached", func() {
			d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(3))
			for i := 1; i <= 4; i++ {
				d.SeenAndRecord(ctx, fmt.Sprintf("key-%d", i), fmt.Sprintf("task-%d", i))
			}

			Convey("Then the oldest key should be evicted", func() {
				So(d.Size(), ShouldEqual, 3)
				_, seen := d.SeenAndRecord(ctx, "key-4", "x")
				So(seen, ShouldBeTrue)
				_, seen = d.SeenAndRecord(ctx, "key-2", "x")
				So(seen, ShouldBeTrue)
				_, seen = d.SeenAndRecord(ctx, "key-1", "x")
				So(seen, ShouldBeFalse)
			})
		})

		Convey("When unbounded", func() {
			d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(0))
			for i := 0; i < 1000; i++ {
				d.SeenAndRecord(ctx, fmt.Sprintf("key-%d", i), "v")
			}

			Convey("Then nothing should be evicted", func() {
				So(d.Size(), ShouldEqual, 1000)
			})
		})
	})
}

func TestInMemoryDeduperConcurrency(t *testing.T) {
	Convey("Given many goroutines racing on the same key", t, func() {
		d := dedupe.NewInMemoryDeduper()
		var winners atomic.Int32
		var wg sync.WaitGroup
		for i := 0; i < 64; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				if _, seen := d.SeenAndRecord(context.Background(), "same", fmt.Sprint(i)); !seen {
					winners.Add(1)
				}
			}(i)
		}
		wg.Wait()

		Convey("Then exactly one should record it", func() {
			So(winners.Load(), ShouldEqual, 1)
			So(d.Size(), ShouldEqual, 1)
		})
	})
}

package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/okian/taskmatch/internal/adapters/repository"
	service "github.com/okian/taskmatch/internal/app"
	"github.com/okian/taskmatch/internal/domain/lifecycle"
	"github.com/okian/taskmatch/internal/domain/model"
	"github.com/okian/taskmatch/internal/domain/types"
	"github.com/okian/taskmatch/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

var now = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func fixedClock() time.Time { return now }

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("task-%d", n)
	}
}

func newService(opts ...service.Option) *service.Service {
	base := []service.Option{
		service.WithClock(fixedClock),
		service.WithIDGenerator(sequentialIDs()),
	}
	return service.New(append(base, opts...)...)
}

func assignRequest() types.AssignRequest {
	return types.AssignRequest{
		Title:          "Landing page redesign",
		AssigneeID:     "emp003",
		Category:       "Design",
		Priority:       model.PriorityHigh,
		EstimatedHours: 10,
		DueDate:        time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC),
	}
}

func TestServiceNew(t *testing.T) {
	Convey("Given a service with default options", t, func() {
		svc := newService()
		ctx := context.Background()

		Convey("Then the sample team should be loaded", func() {
			employees, err := svc.Employees(ctx)
			So(err, ShouldBeNil)
			So(employees, ShouldHaveLength, 3)

			emp, err := svc.Employee(ctx, "emp002")
			So(err, ShouldBeNil)
			So(emp.Name, ShouldEqual, "Jordan Lee")
			So(svc.MaxRecommendations(), ShouldEqual, 50)
		})

		Convey("Then stats should describe an idle service", func() {
			stats := svc.GetStats()
			So(stats["started"], ShouldBeFalse)
			So(stats["rosterSize"], ShouldEqual, 3)
			So(stats["trackedTasks"], ShouldEqual, 0)
			So(stats["queueLength"], ShouldEqual, 0)
		})
	})
}

func TestServiceRecommend(t *testing.T) {
	Convey("Given the sample team", t, func() {
		svc := newService()
		ctx := context.Background()

		Convey("When ranking a high-priority design task", func() {
			recs, err := svc.Recommend(ctx, types.RecommendQuery{
				Category: "Design", Priority: model.PriorityHigh, EstimatedHours: 10,
			})

			Convey("Then candidates should be ranked by score", func() {
				So(err, ShouldBeNil)
				So(recs, ShouldHaveLength, 3)
				So(recs[0].Employee.ID, ShouldEqual, "emp003")
				So(recs[0].RecommendationScore, ShouldEqual, 88)
				So(recs[1].Employee.ID, ShouldEqual, "emp001")
				So(recs[1].RecommendationScore, ShouldEqual, 87)
				So(recs[2].RecommendationScore, ShouldEqual, 21)
				So(recs[2].Rank, ShouldEqual, 3)
			})
		})

		Convey("When a limit is given", func() {
			recs, err := svc.Recommend(ctx, types.RecommendQuery{
				Category: "Design", Priority: model.PriorityHigh, EstimatedHours: 10, Limit: 1,
			})

			Convey("Then only the top candidate should be returned", func() {
				So(err, ShouldBeNil)
				So(recs, ShouldHaveLength, 1)
				So(recs[0].Rank, ShouldEqual, 1)
			})
		})

		Convey("When the hours are missing", func() {
			_, err := svc.Recommend(ctx, types.RecommendQuery{Category: "Design", Priority: model.PriorityLow})

			Convey("Then the descriptor should be rejected", func() {
				So(errors.Is(err, model.ErrInvalidTaskDescriptor), ShouldBeTrue)
			})
		})
	})

	Convey("Given a team entirely on leave", t, func() {
		team := repository.SampleRoster()
		for i := range team {
			team[i].CurrentStatus = model.StatusOnLeave
		}
		roster, err := repository.NewMemoryRoster(team)
		So(err, ShouldBeNil)
		svc := newService(service.WithRoster(roster))

		Convey("Then ranking should yield an empty list without error", func() {
			recs, err := svc.Recommend(context.Background(), types.RecommendQuery{
				Category: "Design", Priority: model.PriorityMedium, EstimatedHours: 4,
			})
			So(err, ShouldBeNil)
			So(recs, ShouldNotBeNil)
			So(recs, ShouldBeEmpty)
		})
	})
}

func TestServiceRiskAndTeam(t *testing.T) {
	Convey("Given the sample team", t, func() {
		svc := newService()
		ctx := context.Background()

		Convey("When assessing a tight assignment for a busy developer", func() {
			ra, err := svc.AssessRisk(ctx, "emp002", 10, now.Add(48*time.Hour))

			Convey("Then every triggered factor should be reported in order", func() {
				So(err, ShouldBeNil)
				So(ra.Score, ShouldEqual, 90)
				So(ra.Level, ShouldEqual, types.RiskHigh)
				So(ra.Factors, ShouldResemble, []string{
					"High current workload",
					"Insufficient available hours",
					"Below average on-time delivery",
					"Tight deadline",
				})
			})
		})

		Convey("When the employee is unknown", func() {
			_, err := svc.AssessRisk(ctx, "emp404", 10, now.Add(96*time.Hour))

			Convey("Then a not-found error should be returned", func() {
				So(errors.Is(err, model.ErrEmployeeNotFound), ShouldBeTrue)
			})
		})

		Convey("When the due date is missing", func() {
			_, err := svc.AssessRisk(ctx, "emp001", 10, time.Time{})

			Convey("Then the descriptor should be rejected", func() {
				So(errors.Is(err, model.ErrInvalidTaskDescriptor), ShouldBeTrue)
			})
		})

		Convey("When summarising the team", func() {
			stats, err := svc.Team(ctx)

			Convey("Then the roster totals should be reported", func() {
				So(err, ShouldBeNil)
				So(stats.TotalMembers, ShouldEqual, 3)
				So(stats.ActiveMembers, ShouldEqual, 3)
				So(stats.Underutilized, ShouldHaveLength, 1)
				So(stats.Bottlenecks, ShouldHaveLength, 1)
			})
		})

		Convey("When suggesting a deadline", func() {
			d, err := svc.SuggestDeadline(ctx, 16, "Feature", "")

			Convey("Then the category complexity should apply", func() {
				So(err, ShouldBeNil)
				So(d.Complexity, ShouldEqual, model.ComplexityHigh)
				So(d.DaysNeeded, ShouldEqual, 4)
				So(d.DueDate, ShouldEqual, time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC))
				So(svc.ComplexityFactors(ctx), ShouldHaveLength, 8)
			})
		})
	})
}

func TestServiceAssignTask(t *testing.T) {
	Convey("Given a service", t, func() {
		svc := newService()
		ctx := context.Background()

		Convey("When a task is assigned", func() {
			task, created, err := svc.AssignTask(ctx, "", assignRequest())

			Convey("Then it should start with creation defaults", func() {
				So(err, ShouldBeNil)
				So(created, ShouldBeTrue)
				So(task.ID, ShouldEqual, "task-1")
				So(task.Status, ShouldEqual, model.TaskNotStarted)
				So(task.Progress, ShouldEqual, 0)
				So(task.IsRunning, ShouldBeFalse)
				So(task.AssignedDate, ShouldEqual, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC))

				got, err := svc.Task(ctx, task.ID)
				So(err, ShouldBeNil)
				So(got.Title, ShouldEqual, "Landing page redesign")
			})
		})

		Convey("When the same idempotency key is used twice", func() {
			first, created1, err1 := svc.AssignTask(ctx, "req-1", assignRequest())
			second, created2, err2 := svc.AssignTask(ctx, "req-1", assignRequest())

			Convey("Then the first task should be returned again", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(created1, ShouldBeTrue)
				So(created2, ShouldBeFalse)
				So(second.ID, ShouldEqual, first.ID)
				tasks, _ := svc.Tasks(ctx, "")
				So(tasks, ShouldHaveLength, 1)
			})
		})

		Convey("When the assignee is unknown", func() {
			req := assignRequest()
			req.AssigneeID = "emp404"
			_, _, err := svc.AssignTask(ctx, "req-2", req)

			Convey("Then a not-found error should be returned and the key released", func() {
				So(errors.Is(err, model.ErrEmployeeNotFound), ShouldBeTrue)
				So(svc.Size(), ShouldEqual, 0)
			})
		})

		Convey("When the descriptor is invalid", func() {
			req := assignRequest()
			req.DueDate = time.Time{}
			_, _, errDue := svc.AssignTask(ctx, "", req)

			req = assignRequest()
			req.Title = "  "
			_, _, errTitle := svc.AssignTask(ctx, "", req)

			Convey("Then the request should be rejected", func() {
				So(errors.Is(errDue, model.ErrInvalidTaskDescriptor), ShouldBeTrue)
				So(errors.Is(errTitle, model.ErrInvalidTaskDescriptor), ShouldBeTrue)
			})
		})

		Convey("When tasks for several assignees exist", func() {
			_, _, err := svc.AssignTask(ctx, "", assignRequest())
			So(err, ShouldBeNil)
			req := assignRequest()
			req.AssigneeID = "emp001"
			_, _, err = svc.AssignTask(ctx, "", req)
			So(err, ShouldBeNil)

			Convey("Then listing should filter by assignee", func() {
				all, _ := svc.Tasks(ctx, "")
				mine, _ := svc.Tasks(ctx, "emp001")
				So(all, ShouldHaveLength, 2)
				So(mine, ShouldHaveLength, 1)
				So(mine[0].AssigneeID, ShouldEqual, "emp001")
			})
		})
	})
}

func TestServiceTaskCommands(t *testing.T) {
	Convey("Given an assigned task", t, func() {
		svc := newService()
		ctx := context.Background()
		task, _, err := svc.AssignTask(ctx, "", assignRequest())
		So(err, ShouldBeNil)

		Convey("When it is started then paused", func() {
			started, err := svc.Command(ctx, task.ID, model.ActionStart)
			So(err, ShouldBeNil)
			paused, err := svc.Command(ctx, task.ID, model.ActionPause)
			So(err, ShouldBeNil)

			Convey("Then the status should stay in progress with the timer off", func() {
				So(started.Status, ShouldEqual, model.TaskInProgress)
				So(started.IsRunning, ShouldBeTrue)
				So(paused.Status, ShouldEqual, model.TaskInProgress)
				So(paused.IsRunning, ShouldBeFalse)
				So(*paused.ActualStartDate, ShouldEqual, now)
			})
		})

		Convey("When it is completed directly", func() {
			done, err := svc.Command(ctx, task.ID, model.ActionComplete)

			Convey("Then it should be complete with full progress", func() {
				So(err, ShouldBeNil)
				So(done.Status, ShouldEqual, model.TaskCompleted)
				So(done.Progress, ShouldEqual, 100)
			})
		})

		Convey("When a tick is sent as a command", func() {
			_, err := svc.Command(ctx, task.ID, model.ActionTick)

			Convey("Then it should be refused", func() {
				So(errors.Is(err, lifecycle.ErrUnknownAction), ShouldBeTrue)
			})
		})

		Convey("When progress is set out of range", func() {
			updated, err := svc.SetProgress(ctx, task.ID, 140)

			Convey("Then it should be clamped", func() {
				So(err, ShouldBeNil)
				So(updated.Progress, ShouldEqual, 100)
				So(updated.Status, ShouldEqual, model.TaskNotStarted)
			})
		})

		Convey("When analytics are requested for a task ahead of schedule", func() {
			_, err := svc.SetProgress(ctx, task.ID, 50)
			So(err, ShouldBeNil)
			a, err := svc.Analytics(ctx, task.ID)

			Convey("Then the pace should be ahead", func() {
				So(err, ShouldBeNil)
				So(a.ExpectedProgress, ShouldEqual, 4)
				So(a.Delta, ShouldEqual, 46)
				So(a.Pace, ShouldEqual, types.PaceAhead)
				So(a.RiskLevel, ShouldEqual, types.RiskLow)
			})
		})

		Convey("When the task is unknown", func() {
			_, errCmd := svc.Command(ctx, "nope", model.ActionStart)
			_, errAn := svc.Analytics(ctx, "nope")

			Convey("Then not-found errors should be returned", func() {
				So(errors.Is(errCmd, model.ErrTaskNotFound), ShouldBeTrue)
				So(errors.Is(errAn, model.ErrTaskNotFound), ShouldBeTrue)
			})
		})
	})
}

func TestServiceLifecycle(t *testing.T) {
	Convey("Given a started service with a fast timer", t, func() {
		svc := newService(service.WithTickInterval(10*time.Millisecond), service.WithWorkerCount(2))
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)
		So(svc.Start(ctx), ShouldBeNil)

		task, _, err := svc.AssignTask(ctx, "", assignRequest())
		So(err, ShouldBeNil)
		_, err = svc.Command(ctx, task.ID, model.ActionStart)
		So(err, ShouldBeNil)

		Convey("When the task runs for a while", func() {
			ok := waitFor(func() bool {
				got, _ := svc.Task(ctx, task.ID)
				return got.TimeSpentSeconds >= 3
			})
			svc.Stop()

			Convey("Then time should accrue and the service should not restart", func() {
				So(ok, ShouldBeTrue)
				So(svc.GetStats()["started"], ShouldBeFalse)
				So(errors.Is(svc.Start(ctx), service.ErrStopped), ShouldBeTrue)
			})
		})

		Convey("When a lifecycle event is queued", func() {
			accepted := svc.Enqueue(ctx, model.TaskEvent{EventID: "ev-1", TaskID: task.ID, Action: model.ActionComplete})

			Convey("Then a worker should apply it", func() {
				So(accepted, ShouldBeTrue)
				ok := waitFor(func() bool {
					got, _ := svc.Task(ctx, task.ID)
					return got.Status == model.TaskCompleted
				})
				svc.Stop()
				So(ok, ShouldBeTrue)
			})
		})
	})
}

func TestServiceStopDrainsQueue(t *testing.T) {
	Convey("Given a started service with a running task and a slow timer", t, func() {
		svc := newService(service.WithTickInterval(time.Hour), service.WithWorkerCount(2))
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)

		task, _, err := svc.AssignTask(ctx, "", assignRequest())
		So(err, ShouldBeNil)
		_, err = svc.Command(ctx, task.ID, model.ActionStart)
		So(err, ShouldBeNil)

		Convey("When many ticks are queued and the service stops at once", func() {
			accepted := 0
			for i := 0; i < 5000; i++ {
				if svc.Enqueue(ctx, model.TaskEvent{EventID: fmt.Sprintf("tick-%d", i), TaskID: task.ID, Action: model.ActionTick}) {
					accepted++
				}
			}
			svc.Stop()

			Convey("Then every accepted tick should be applied before Stop returns", func() {
				So(accepted, ShouldEqual, 5000)
				got, err := svc.Task(ctx, task.ID)
				So(err, ShouldBeNil)
				So(got.TimeSpentSeconds, ShouldEqual, int64(accepted))
				So(svc.GetStats()["queueLength"], ShouldEqual, 0)
			})
		})
	})
}

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

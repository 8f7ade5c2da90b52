package metrics

import (
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a private registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then every collector should be registered", func() {
				So(manager, ShouldNotBeNil)
				manager.recommendationsServed.Inc()
				count, err := testutil.GatherAndCount(registry, "taskmatch_engine_recommendations_served_total")
				So(err, ShouldBeNil)
				So(count, ShouldEqual, 1)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("hr"),
				WithSubsystem("assign"),
				WithHistogramBuckets([]float64{1, 5, 10}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then names and labels should follow the options", func() {
				manager.timerTicks.Inc()
				count, err := testutil.GatherAndCount(registry, "hr_assign_timer_ticks_total")
				So(err, ShouldBeNil)
				So(count, ShouldEqual, 1)
				So(manager.constLabels["env"], ShouldEqual, "test")
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording recommendations", func() {
			before := testutil.ToFloat64(globalManager.recommendationEmpty)
			RecordRecommendation(3, 0.4)
			RecordRecommendation(0, 0.1)

			Convey("Then empty rankings should be counted separately", func() {
				So(testutil.ToFloat64(globalManager.recommendationEmpty), ShouldEqual, before+1)
			})
		})

		Convey("When recording risk assessments", func() {
			before := testutil.ToFloat64(globalManager.riskAssessments.WithLabelValues("High"))
			RecordRiskAssessment("High", 130)

			Convey("Then the level counter should increase", func() {
				So(testutil.ToFloat64(globalManager.riskAssessments.WithLabelValues("High")), ShouldEqual, before+1)
			})
		})

		Convey("When recording task activity", func() {
			before := testutil.ToFloat64(globalManager.taskTransitions.WithLabelValues("complete"))
			RecordTaskTransition("complete")
			RecordTimerTick()
			UpdateRunningTasks(2)
			UpdateTrackedTasks(5)
			UpdateRosterSize(3)

			Convey("Then gauges and counters should reflect the values", func() {
				So(testutil.ToFloat64(globalManager.taskTransitions.WithLabelValues("complete")), ShouldEqual, before+1)
				So(testutil.ToFloat64(globalManager.runningTasks), ShouldEqual, 2)
				So(testutil.ToFloat64(globalManager.trackedTasks), ShouldEqual, 5)
				So(testutil.ToFloat64(globalManager.rosterSize), ShouldEqual, 3)
			})
		})

		Convey("When recording operational metrics", func() {
			So(func() {
				RecordInvalidTaskDescriptor()
				RecordAssignmentCreated()
				RecordAssignmentDuplicate()
				RecordRepositoryQueryLatency(0.2)
				RecordRepositoryUpdateLatency(0.3)
				UpdateQueueSize(10)
				UpdateQueueCapacity(100)
				UpdateQueueUtilization(0.1)
				RecordQueueEnqueue()
				RecordQueueDequeue()
				RecordQueueEnqueueError()
				UpdateWorkerCount(4)
				RecordWorkerProcessingLatency(1)
				RecordWorkerError()
				RecordHTTPRequest("/recommendations", "GET", "200", 3)
				RecordErrorByComponent("queue", "queue_full")
				RecordErrorByEndpoint("/risk", "POST", "client_error")
				UpdateSystemMemoryUsage(1 << 20)
				UpdateSystemGoroutineCount(12)
				RecordSystemGCPauseTime(0.5)
			}, ShouldNotPanic)
			So(testutil.ToFloat64(globalManager.queueCapacity), ShouldEqual, 100)
		})
	})
}

func TestMetricsConcurrency(t *testing.T) {
	Convey("Given concurrent recorders", t, func() {
		before := testutil.ToFloat64(globalManager.timerTicks)
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 50; j++ {
					RecordTimerTick()
				}
			}()
		}
		wg.Wait()

		Convey("Then no increment should be lost", func() {
			So(testutil.ToFloat64(globalManager.timerTicks), ShouldEqual, before+1000)
		})
	})
}

func TestGetRegistry(t *testing.T) {
	Convey("Given the package registry", t, func() {
		Convey("Then it should be the one the global manager registers on", func() {
			families, err := GetRegistry().Gather()
			So(err, ShouldBeNil)
			So(len(families), ShouldBeGreaterThan, 0)
		})
	})
}

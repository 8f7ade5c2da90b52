package config_test

import (
	"errors"
	"runtime"
	"testing"

	"github.com/okian/taskmatch/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.QueueSize, convey.ShouldEqual, 10_000)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU())
			convey.So(cfg.DedupeSize, convey.ShouldEqual, 100_000)
			convey.So(cfg.TickIntervalMS, convey.ShouldEqual, 1000)
			convey.So(cfg.MaxRecommendations, convey.ShouldEqual, 50)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("Then the ranking weights should match the ranking rules", func() {
			w := cfg.Weights
			convey.So(w.WorkloadLow, convey.ShouldEqual, 30)
			convey.So(w.WorkloadBalanced, convey.ShouldEqual, 20)
			convey.So(w.WorkloadHigh, convey.ShouldEqual, 5)
			convey.So(w.WorkloadOverloaded, convey.ShouldEqual, 0)
			convey.So(w.SkillMatch, convey.ShouldEqual, 25)
			convey.So(w.ReliabilityFactor, convey.ShouldEqual, 0.2)
			convey.So(w.Capacity, convey.ShouldEqual, 15)
			convey.So(w.SeniorityBonus, convey.ShouldEqual, 10)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given a default config", t, func() {
		cfg := config.New()

		convey.Convey("When the tick interval is zero", func() {
			cfg.TickIntervalMS = 0

			convey.Convey("Then validation should fail with ErrInvalidConfig", func() {
				err := cfg.Validate()
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "tick_interval_ms")
			})
		})

		convey.Convey("When the log format is unknown", func() {
			cfg.LogFormat = "xml"

			convey.Convey("Then validation should fail", func() {
				convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the reliability factor is negative", func() {
			cfg.Weights.ReliabilityFactor = -1

			convey.Convey("Then validation should fail", func() {
				convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}

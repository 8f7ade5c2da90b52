package risk_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/okian/taskmatch/internal/domain/model"
	"github.com/okian/taskmatch/internal/domain/risk"
	"github.com/okian/taskmatch/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

var now = time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return now }

func calmEmployee() model.Employee {
	return model.Employee{
		ID:              "emp-1",
		ExperienceLevel: model.ExperienceMid,
		CurrentStatus:   model.StatusPresent,
		Workload:        model.Workload{WorkloadLevel: model.WorkloadBalanced, AvailableHours: 40},
		Productivity:    model.Productivity{OnTimeRate: 90},
		Behavior:        model.Behavior{BurnoutRisk: model.FrequencyLow},
	}
}

func TestAssess_OverloadedScenario(t *testing.T) {
	Convey("Given an overloaded, burnt out employee with 2 available hours", t, func() {
		a := risk.NewAssessor(risk.WithClock(fixedClock))
		emp := calmEmployee()
		emp.Workload.WorkloadLevel = model.WorkloadOverloaded
		emp.Workload.AvailableHours = 2
		emp.Productivity.OnTimeRate = 70
		emp.Behavior.BurnoutRisk = model.FrequencyHigh

		Convey("When assessing a 10 hour task due tomorrow", func() {
			res, err := a.Assess(emp, 10, now.AddDate(0, 0, 1))

			Convey("Then the score should be 130 with five ordered factors", func() {
				So(err, ShouldBeNil)
				want := types.RiskAssessment{
					EmployeeID: "emp-1",
					Level:      types.RiskHigh,
					Score:      130,
					Factors: []string{
						risk.FactorOverloaded,
						risk.FactorInsufficientHours,
						risk.FactorBelowAverageOnTime,
						risk.FactorTightDeadline,
						risk.FactorHighBurnout,
					},
				}
				if diff := cmp.Diff(want, res); diff != "" {
					t.Errorf("assessment mismatch (-want +got):\n%s", diff)
				}
				So(res.Factors, ShouldNotContain, risk.FactorHighWorkload)
			})
		})
	})
}

func TestAssess_Rules(t *testing.T) {
	Convey("Given an assessor with a fixed clock", t, func() {
		a := risk.NewAssessor(risk.WithClock(fixedClock))
		farDue := now.AddDate(0, 0, 30)

		Convey("When nothing triggers", func() {
			res, err := a.Assess(calmEmployee(), 8, farDue)

			Convey("Then the assessment should be Low with no factors", func() {
				So(err, ShouldBeNil)
				So(res.Score, ShouldEqual, 0)
				So(res.Level, ShouldEqual, types.RiskLow)
				So(res.Factors, ShouldNotBeNil)
				So(res.Factors, ShouldBeEmpty)
			})
		})

		Convey("When the workload is High", func() {
			emp := calmEmployee()
			emp.Workload.WorkloadLevel = model.WorkloadHigh
			res, _ := a.Assess(emp, 8, farDue)

			Convey("Then only the high workload rule should fire", func() {
				So(res.Score, ShouldEqual, 30)
				So(res.Factors, ShouldResemble, []string{risk.FactorHighWorkload})
				So(res.Level, ShouldEqual, types.RiskLow)
			})
		})

		Convey("When available hours equal the estimate", func() {
			emp := calmEmployee()
			emp.Workload.AvailableHours = 8
			res, _ := a.Assess(emp, 8, farDue)

			Convey("Then hours should not count as insufficient", func() {
				So(res.Score, ShouldEqual, 0)
			})
		})

		Convey("When the on-time rate is exactly 80", func() {
			emp := calmEmployee()
			emp.Productivity.OnTimeRate = 80
			res, _ := a.Assess(emp, 8, farDue)

			Convey("Then the on-time rule should not fire", func() {
				So(res.Score, ShouldEqual, 0)
			})
		})

		Convey("When the due date is at different distances", func() {
			cases := []struct {
				due   time.Time
				tight bool
			}{
				{now.Add(1 * time.Hour), true},
				{now.Add(48 * time.Hour), true},
				{now.Add(48*time.Hour + time.Minute), false}, // ceil gives 3 days
				{now.Add(72 * time.Hour), false},
				{now.Add(-24 * time.Hour), true},
			}

			Convey("Then the tight deadline rule should use ceil of days left", func() {
				for _, c := range cases {
					res, err := a.Assess(calmEmployee(), 8, c.due)
					So(err, ShouldBeNil)
					if c.tight {
						So(res.Factors, ShouldResemble, []string{risk.FactorTightDeadline})
					} else {
						So(res.Factors, ShouldBeEmpty)
					}
				}
			})
		})
	})
}

func TestAssess_InvalidInputs(t *testing.T) {
	Convey("Given an assessor", t, func() {
		a := risk.NewAssessor(risk.WithClock(fixedClock))

		Convey("Then missing hours should fail fast", func() {
			for _, h := range []float64{0, -1, math.NaN()} {
				_, err := a.Assess(calmEmployee(), h, now.AddDate(0, 0, 5))
				So(errors.Is(err, model.ErrInvalidTaskDescriptor), ShouldBeTrue)
			}
		})

		Convey("Then a zero due date should fail fast", func() {
			_, err := a.Assess(calmEmployee(), 4, time.Time{})
			So(errors.Is(err, model.ErrInvalidTaskDescriptor), ShouldBeTrue)
		})
	})
}

func TestLevel(t *testing.T) {
	Convey("Given the level thresholds", t, func() {
		Convey("Then boundaries should use strict greater-than", func() {
			So(risk.Level(0), ShouldEqual, types.RiskLow)
			So(risk.Level(30), ShouldEqual, types.RiskLow)
			So(risk.Level(31), ShouldEqual, types.RiskMedium)
			So(risk.Level(60), ShouldEqual, types.RiskMedium)
			So(risk.Level(61), ShouldEqual, types.RiskHigh)
			So(risk.Level(risk.MaxScore), ShouldEqual, types.RiskHigh)
		})

		Convey("Then the maximum score should be 210", func() {
			So(risk.MaxScore, ShouldEqual, 210)
		})
	})
}

func TestAssess_ScoreBounds(t *testing.T) {
	Convey("Given every rule input at its worst", t, func() {
		a := risk.NewAssessor(risk.WithClock(fixedClock))
		levels := []model.WorkloadLevel{model.WorkloadLow, model.WorkloadBalanced, model.WorkloadHigh, model.WorkloadOverloaded}

		Convey("Then scores should stay within MaxScore and agree with Level", func() {
			for _, lvl := range levels {
				for _, burnout := range []model.Frequency{model.FrequencyLow, model.FrequencyHigh} {
					emp := calmEmployee()
					emp.Workload.WorkloadLevel = lvl
					emp.Workload.AvailableHours = 0
					emp.Productivity.OnTimeRate = 10
					emp.Behavior.BurnoutRisk = burnout

					res, err := a.Assess(emp, 5, now)
					So(err, ShouldBeNil)
					So(res.Score, ShouldBeLessThanOrEqualTo, risk.MaxScore)
					So(res.Level, ShouldEqual, risk.Level(res.Score))
					So(len(res.Factors), ShouldBeLessThanOrEqualTo, 6)
				}
			}
		})
	})
}

func TestDaysUntil(t *testing.T) {
	Convey("Given two instants", t, func() {
		Convey("Then partial days should round up", func() {
			So(risk.DaysUntil(now, now), ShouldEqual, 0)
			So(risk.DaysUntil(now, now.Add(time.Minute)), ShouldEqual, 1)
			So(risk.DaysUntil(now, now.Add(25*time.Hour)), ShouldEqual, 2)
			So(risk.DaysUntil(now, now.Add(-25*time.Hour)), ShouldEqual, -1)
		})
	})
}

// Package risk classifies the delay risk of assigning a task to an employee.
package risk

import (
	"fmt"
	"math"
	"time"

	"github.com/okian/taskmatch/internal/domain/model"
	"github.com/okian/taskmatch/internal/domain/types"
)

// Factor texts, in evaluation order.
const (
	FactorHighWorkload       = "High current workload"
	FactorOverloaded         = "Employee overloaded"
	FactorInsufficientHours  = "Insufficient available hours"
	FactorBelowAverageOnTime = "Below average on-time delivery"
	FactorTightDeadline      = "Tight deadline"
	FactorHighBurnout        = "High burnout risk"
)

const (
	deltaHighWorkload       = 30
	deltaOverloaded         = 50
	deltaInsufficientHours  = 25
	deltaBelowAverageOnTime = 20
	deltaTightDeadline      = 15
	deltaHighBurnout        = 20

	// MaxScore is the sum of every rule delta.
	MaxScore = deltaHighWorkload + deltaOverloaded + deltaInsufficientHours +
		deltaBelowAverageOnTime + deltaTightDeadline + deltaHighBurnout

	onTimeThreshold   = 80
	tightDeadlineDays = 3
	highLevelAbove    = 60
	mediumLevelAbove  = 30
	day               = 24 * time.Hour
)

// Clock returns the current time.
type Clock func() time.Time

// Option applies a configuration option to the Assessor.
type Option func(*Assessor)

// WithClock overrides time.Now, mostly for tests.
func WithClock(c Clock) Option {
	return func(a *Assessor) {
		if c != nil {
			a.now = c
		}
	}
}

// Assessor evaluates the additive risk rules. It is safe for concurrent use.
type Assessor struct {
	now Clock
}

// NewAssessor creates an assessor with configuration options.
func NewAssessor(opts ...Option) *Assessor {
	a := &Assessor{now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

type rule struct {
	factor string
	delta  int
	match  func(emp *model.Employee, hours float64, daysLeft int) bool
}

// Every rule is evaluated; none short-circuits another.
var rules = []rule{
	{FactorHighWorkload, deltaHighWorkload, func(e *model.Employee, _ float64, _ int) bool {
		return e.Workload.WorkloadLevel == model.WorkloadHigh
	}},
	{FactorOverloaded, deltaOverloaded, func(e *model.Employee, _ float64, _ int) bool {
		return e.Workload.WorkloadLevel == model.WorkloadOverloaded
	}},
	{FactorInsufficientHours, deltaInsufficientHours, func(e *model.Employee, h float64, _ int) bool {
		return e.Workload.AvailableHours < h
	}},
	{FactorBelowAverageOnTime, deltaBelowAverageOnTime, func(e *model.Employee, _ float64, _ int) bool {
		return e.Productivity.OnTimeRate < onTimeThreshold
	}},
	{FactorTightDeadline, deltaTightDeadline, func(_ *model.Employee, _ float64, d int) bool {
		return d < tightDeadlineDays
	}},
	{FactorHighBurnout, deltaHighBurnout, func(e *model.Employee, _ float64, _ int) bool {
		return e.Behavior.BurnoutRisk == model.FrequencyHigh
	}},
}

// Assess scores the assignment of a task with the given estimate and due
// date. Missing or invalid inputs fail with model.ErrInvalidTaskDescriptor.
func (a *Assessor) Assess(emp model.Employee, estimatedHours float64, dueDate time.Time) (types.RiskAssessment, error) {
	const op = "risk.assess"
	if err := model.ValidateEstimatedHours(estimatedHours); err != nil {
		return types.RiskAssessment{}, model.Wrap(op, err)
	}
	if dueDate.IsZero() {
		return types.RiskAssessment{}, model.WrapKind(op, model.ErrInvalidTaskDescriptor, fmt.Errorf("missing due date"))
	}

	daysLeft := DaysUntil(a.now(), dueDate)
	res := types.RiskAssessment{EmployeeID: emp.ID, Factors: []string{}}
	for _, r := range rules {
		if r.match(&emp, estimatedHours, daysLeft) {
			res.Score += r.delta
			res.Factors = append(res.Factors, r.factor)
		}
	}
	res.Level = Level(res.Score)
	return res, nil
}

// Level maps a score to a level: above 60 is High, above 30 is Medium.
func Level(score int) types.RiskLevel {
	switch {
	case score > highLevelAbove:
		return types.RiskHigh
	case score > mediumLevelAbove:
		return types.RiskMedium
	default:
		return types.RiskLow
	}
}

// DaysUntil is ceil((due - now) / 24h). Past dates give zero or negative values.
func DaysUntil(now, due time.Time) int {
	return int(math.Ceil(float64(due.Sub(now)) / float64(day)))
}

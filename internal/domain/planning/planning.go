// Package planning derives scheduling hints from tasks and the roster:
// suggested deadlines, progress against deadline and team statistics.
package planning

import (
	"math"
	"time"

	"github.com/okian/taskmatch/internal/domain/model"
	"github.com/okian/taskmatch/internal/domain/types"
)

const (
	workdayHours = 8
	day          = 24 * time.Hour

	aheadDelta  = 10
	behindDelta = -10
)

// Clock returns the current time.
type Clock func() time.Time

// Option applies a configuration option to the Planner.
type Option func(*Planner)

// WithClock overrides time.Now, mostly for tests.
func WithClock(c Clock) Option {
	return func(p *Planner) {
		if c != nil {
			p.now = c
		}
	}
}

// Planner computes time-based hints. It is safe for concurrent use.
type Planner struct {
	now Clock
}

// NewPlanner creates a planner with configuration options.
func NewPlanner(opts ...Option) *Planner {
	p := &Planner{now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// SuggestDeadline proposes a due date of today + ceil(hours*multiplier/8)
// days. An empty complexity is taken from the category table, falling back to Medium.
func (p *Planner) SuggestDeadline(estimatedHours float64, category string, complexity model.Complexity) (types.DeadlineSuggestion, error) {
	if err := model.ValidateEstimatedHours(estimatedHours); err != nil {
		return types.DeadlineSuggestion{}, model.Wrap("planning.suggest_deadline", err)
	}
	if !complexity.IsValid() {
		complexity = model.ComplexityMedium
		if f, ok := LookupComplexity(category); ok {
			complexity = f.BaseComplexity
		}
	}
	mult := Multiplier(complexity)
	days := int(math.Ceil(estimatedHours * mult / workdayHours))
	return types.DeadlineSuggestion{
		EstimatedHours: estimatedHours,
		Category:       category,
		Complexity:     complexity,
		Multiplier:     mult,
		DaysNeeded:     days,
		DueDate:        model.Today(p.now()).AddDate(0, 0, days),
	}, nil
}

// Analyze compares actual progress with the share of the schedule already
// elapsed. The schedule starts at the first start, else the assigned date.
func (p *Planner) Analyze(task model.Task) types.ProgressAnalytics {
	now := p.now()
	start := now
	switch {
	case task.ActualStartDate != nil:
		start = *task.ActualStartDate
	case !task.AssignedDate.IsZero():
		start = task.AssignedDate
	}

	total := task.DueDate.Sub(start)
	elapsed := now.Sub(start)
	remaining := task.DueDate.Sub(now)

	expected := 0
	if total > 0 {
		expected = int(roundHalfUp(float64(elapsed) / float64(total) * 100))
		expected = max(0, min(100, expected))
	}
	delta := task.Progress - expected

	a := types.ProgressAnalytics{
		TaskID:           task.ID,
		ActualProgress:   task.Progress,
		ExpectedProgress: expected,
		Delta:            delta,
		DaysRemaining:    int(math.Ceil(float64(remaining) / float64(day))),
		HoursRemaining:   int(math.Ceil(remaining.Hours())),
		Overdue:          remaining < 0,
		RiskLevel:        types.RiskLow,
	}

	switch {
	case delta < -20:
		a.DelayProbability, a.RiskLevel = 75, types.RiskHigh
	case delta < -10:
		a.DelayProbability, a.RiskLevel = 50, types.RiskMedium
	case delta < 0:
		a.DelayProbability, a.RiskLevel = 25, types.RiskLow
	}
	if a.Overdue && task.Progress < 100 {
		a.DelayProbability, a.RiskLevel = 100, types.RiskCritical
	}

	daysElapsed := max(1, int(math.Ceil(float64(elapsed)/float64(day))))
	a.Velocity = float64(task.Progress) / float64(daysElapsed)

	hoursLeft := task.EstimatedHours - float64(task.TimeSpentSeconds)/3600
	a.BufferHours = float64(a.DaysRemaining*workdayHours) - hoursLeft

	switch {
	case delta > aheadDelta:
		a.Pace = types.PaceAhead
	case delta < behindDelta:
		a.Pace = types.PaceBehind
	default:
		a.Pace = types.PaceOnTrack
	}
	return a
}

func roundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}

// Package scoring ranks roster employees as candidates for a task.
package scoring

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/okian/taskmatch/internal/domain/model"
	"github.com/okian/taskmatch/internal/domain/types"
)

// Weights are the additive ranking constants.
type Weights struct {
	WorkloadLow        float64
	WorkloadBalanced   float64
	WorkloadHigh       float64
	WorkloadOverloaded float64
	SkillMatch         float64
	ReliabilityFactor  float64 // multiplied with reliabilityScore
	Capacity           float64 // awarded when available hours cover the estimate
	SeniorityBonus     float64 // High priority task for a Senior employee
}

// DefaultWeights returns the reference constants. Rankings are only
// comparable across deployments that keep them.
func DefaultWeights() Weights {
	return Weights{
		WorkloadLow:        30,
		WorkloadBalanced:   20,
		WorkloadHigh:       5,
		WorkloadOverloaded: 0,
		SkillMatch:         25,
		ReliabilityFactor:  0.2,
		Capacity:           15,
		SeniorityBonus:     10,
	}
}

// Option applies a configuration option to the Ranker.
type Option func(*Ranker)

// WithWeights replaces the default weights.
func WithWeights(w Weights) Option {
	return func(r *Ranker) {
		r.weights = w
	}
}

// Ranker scores and orders candidates. It holds no mutable state and is
// safe for concurrent use.
type Ranker struct {
	weights Weights
}

// NewRanker creates a ranker with configuration options.
func NewRanker(opts ...Option) *Ranker {
	r := &Ranker{weights: DefaultWeights()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Weights returns the constants in use.
func (r *Ranker) Weights() Weights { return r.weights }

// Recommend returns every employee not on leave, scored and sorted by score
// descending. Ties keep roster order. When nobody is eligible it returns an
// empty slice together with model.ErrEmptyRoster.
func (r *Ranker) Recommend(roster []model.Employee, category string, priority model.Priority, estimatedHours float64) ([]types.Recommendation, error) {
	const op = "scoring.recommend"
	if err := model.ValidateEstimatedHours(estimatedHours); err != nil {
		return nil, model.Wrap(op, err)
	}
	if !priority.IsValid() {
		return nil, model.WrapKind(op, model.ErrInvalidTaskDescriptor, fmt.Errorf("unknown priority %q", priority))
	}

	out := make([]types.Recommendation, 0, len(roster))
	for i := range roster {
		emp := roster[i]
		if !emp.Available() {
			continue
		}
		b := r.Breakdown(emp, category, priority, estimatedHours)
		out = append(out, types.Recommendation{
			Employee:            emp,
			RecommendationScore: b.Total,
			Breakdown:           b,
		})
	}
	if len(out) == 0 {
		return out, model.WrapKind(op, model.ErrEmptyRoster, nil)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RecommendationScore > out[j].RecommendationScore
	})
	for i := range out {
		out[i].Rank = i + 1
	}
	return out, nil
}

// Breakdown computes each contribution for one employee. It does not check
// availability or validate the inputs.
func (r *Ranker) Breakdown(emp model.Employee, category string, priority model.Priority, estimatedHours float64) types.Breakdown {
	w := r.weights
	var b types.Breakdown

	switch emp.Workload.WorkloadLevel {
	case model.WorkloadLow:
		b.Workload = w.WorkloadLow
	case model.WorkloadBalanced:
		b.Workload = w.WorkloadBalanced
	case model.WorkloadHigh:
		b.Workload = w.WorkloadHigh
	case model.WorkloadOverloaded:
		b.Workload = w.WorkloadOverloaded
	}

	if SkillMatches(emp.Skills, category) {
		b.SkillMatch = w.SkillMatch
	}

	b.Reliability = round(float64(emp.Performance.ReliabilityScore) * w.ReliabilityFactor)

	if emp.Workload.AvailableHours >= estimatedHours {
		b.Capacity = w.Capacity
	}

	if priority == model.PriorityHigh && emp.ExperienceLevel == model.ExperienceSenior {
		b.Seniority = w.SeniorityBonus
	}

	b.Total = int(round(b.Workload + b.SkillMatch + b.Reliability + b.Capacity + b.Seniority))
	return b
}

// SkillMatches reports whether any skill name contains the category or the
// category contains the skill name, ignoring case. A blank category matches nothing.
func SkillMatches(skills []model.Skill, category string) bool {
	cat := strings.ToLower(strings.TrimSpace(category))
	if cat == "" {
		return false
	}
	for _, s := range skills {
		name := strings.ToLower(strings.TrimSpace(s.Name))
		if name == "" {
			continue
		}
		if strings.Contains(name, cat) || strings.Contains(cat, name) {
			return true
		}
	}
	return false
}

// round rounds half up.
func round(x float64) float64 {
	return math.Floor(x + 0.5)
}

package planning

import (
	"strings"

	"github.com/okian/taskmatch/internal/domain/model"
)

// ComplexityFactor is the reference difficulty of a task category.
type ComplexityFactor struct {
	Category       string           `json:"category"`
	BaseComplexity model.Complexity `json:"base_complexity"`
	AvgDays        float64          `json:"avg_days"`
}

var complexityFactors = []ComplexityFactor{
	{"Development", model.ComplexityMedium, 5},
	{"Design", model.ComplexityMedium, 4},
	{"Review", model.ComplexityLow, 2},
	{"Presentation", model.ComplexityMedium, 6},
	{"Documentation", model.ComplexityLow, 3},
	{"Meeting", model.ComplexityLow, 1},
	{"Bug Fix", model.ComplexityHigh, 3},
	{"Feature", model.ComplexityHigh, 8},
}

// ComplexityFactors returns a copy of the category table.
func ComplexityFactors() []ComplexityFactor {
	out := make([]ComplexityFactor, len(complexityFactors))
	copy(out, complexityFactors)
	return out
}

// LookupComplexity finds a category, ignoring case.
func LookupComplexity(category string) (ComplexityFactor, bool) {
	c := strings.TrimSpace(category)
	for _, f := range complexityFactors {
		if strings.EqualFold(f.Category, c) {
			return f, true
		}
	}
	return ComplexityFactor{}, false
}

// Multiplier converts complexity into an effort multiplier. Unknown values
// get the Medium multiplier.
func Multiplier(c model.Complexity) float64 {
	switch c {
	case model.ComplexityLow:
		return 1.2
	case model.ComplexityHigh:
		return 2.0
	default:
		return 1.5
	}
}

// Package types contains result types shared by the engine, the service and the HTTP layer.
package types

import (
	"time"

	"github.com/okian/taskmatch/internal/domain/model"
)

// Breakdown holds the individual ranking contributions. Total is the
// rounded sum and always equals the recommendation score.
type Breakdown struct {
	Workload    float64 `json:"workload"`
	SkillMatch  float64 `json:"skill_match"`
	Reliability float64 `json:"reliability"`
	Capacity    float64 `json:"capacity"`
	Seniority   float64 `json:"seniority"`
	Total       int     `json:"total"`
}

// Recommendation is one ranked candidate.
type Recommendation struct {
	Rank                int            `json:"rank"`
	Employee            model.Employee `json:"employee"`
	RecommendationScore int            `json:"recommendation_score"`
	Breakdown           Breakdown      `json:"breakdown"`
}

// RiskLevel is the categorical risk of an assignment.
type RiskLevel string

const (
	RiskLow      RiskLevel = "Low"
	RiskMedium   RiskLevel = "Medium"
	RiskHigh     RiskLevel = "High"
	RiskCritical RiskLevel = "Critical" // progress analytics only
)

func (r RiskLevel) String() string { return string(r) }

// RiskAssessment is the additive risk of assigning a task to an employee.
type RiskAssessment struct {
	EmployeeID string    `json:"employee_id"`
	Level      RiskLevel `json:"level"`
	Score      int       `json:"score"`
	Factors    []string  `json:"factors"`
}

// TeamMember is a compact roster reference used in team statistics.
type TeamMember struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TeamStats summarises the roster for planning.
type TeamStats struct {
	TotalMembers      int          `json:"total_members"`
	ActiveMembers     int          `json:"active_members"`
	AvgCapacity       float64      `json:"avg_capacity"`
	TotalActiveTasks  int          `json:"total_active_tasks"`
	TotalDueThisWeek  int          `json:"total_due_this_week"`
	TotalAvailableHrs float64      `json:"total_available_hours"`
	AvgTaskCycleTime  float64      `json:"avg_task_cycle_time"` // days
	TeamProductivity  int          `json:"team_productivity"`
	Bottlenecks       []TeamMember `json:"bottlenecks"`
	Underutilized     []TeamMember `json:"underutilized"`
	TopPerformers     []TeamMember `json:"top_performers"`
	Overloaded        []TeamMember `json:"overloaded"`
}

// DeadlineSuggestion is a due date proposed from effort and complexity.
type DeadlineSuggestion struct {
	EstimatedHours float64          `json:"estimated_hours"`
	Category       string           `json:"category,omitempty"`
	Complexity     model.Complexity `json:"complexity"`
	Multiplier     float64          `json:"multiplier"`
	DaysNeeded     int              `json:"days_needed"`
	DueDate        time.Time        `json:"due_date"`
}

// ProgressAnalytics compares a task's progress with its schedule.
type ProgressAnalytics struct {
	TaskID           string    `json:"task_id"`
	ActualProgress   int       `json:"actual_progress"`
	ExpectedProgress int       `json:"expected_progress"`
	Delta            int       `json:"delta"`
	DaysRemaining    int       `json:"days_remaining"`
	HoursRemaining   int       `json:"hours_remaining"`
	Overdue          bool      `json:"overdue"`
	DelayProbability int       `json:"delay_probability"`
	RiskLevel        RiskLevel `json:"risk_level"`
	Velocity         float64   `json:"velocity"`     // progress points per day
	BufferHours      float64   `json:"buffer_hours"` // 8h workdays left minus estimated hours left
	Pace             Pace      `json:"pace"`
}

// Pace classifies progress delta: ahead above +10, behind below -10.
type Pace string

const (
	PaceAhead   Pace = "ahead"
	PaceOnTrack Pace = "on_track"
	PaceBehind  Pace = "behind"
)

// RecommendQuery is the ranking input. A non-positive Limit means the configured maximum.
type RecommendQuery struct {
	Category       string
	Priority       model.Priority
	EstimatedHours float64
	Limit          int
}

// AssignRequest is the input for creating a task.
type AssignRequest struct {
	Title          string
	Description    string
	AssigneeID     string
	Category       string
	Priority       model.Priority
	EstimatedHours float64
	DueDate        time.Time
}

// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"strings"
)

// ExperienceLevel is the seniority band of an employee.
type ExperienceLevel string

const (
	ExperienceJunior ExperienceLevel = "Junior"
	ExperienceMid    ExperienceLevel = "Mid"
	ExperienceSenior ExperienceLevel = "Senior"
	ExperienceLead   ExperienceLevel = "Lead"
)

func (e ExperienceLevel) String() string { return string(e) }

// IsValid reports whether e is a known experience level.
func (e ExperienceLevel) IsValid() bool {
	switch e {
	case ExperienceJunior, ExperienceMid, ExperienceSenior, ExperienceLead:
		return true
	default:
		return false
	}
}

// Status is the current attendance status of an employee.
type Status string

const (
	StatusPresent Status = "Present"
	StatusWFH     Status = "WFH"
	StatusOnLeave Status = "On Leave"
	StatusSick    Status = "Sick"
)

func (s Status) String() string { return string(s) }

// IsValid reports whether s is a known status.
func (s Status) IsValid() bool {
	switch s {
	case StatusPresent, StatusWFH, StatusOnLeave, StatusSick:
		return true
	default:
		return false
	}
}

// WorkloadLevel summarises current task load and capacity utilisation.
// It is entered alongside Capacity and never recomputed from it.
type WorkloadLevel string

const (
	WorkloadLow        WorkloadLevel = "Low"
	WorkloadBalanced   WorkloadLevel = "Balanced"
	WorkloadHigh       WorkloadLevel = "High"
	WorkloadOverloaded WorkloadLevel = "Overloaded"
)

func (w WorkloadLevel) String() string { return string(w) }

// IsValid reports whether w is a known workload level.
func (w WorkloadLevel) IsValid() bool {
	switch w {
	case WorkloadLow, WorkloadBalanced, WorkloadHigh, WorkloadOverloaded:
		return true
	default:
		return false
	}
}

// Frequency is a coarse Low/Medium/High rating used for overtime and burnout.
type Frequency string

const (
	FrequencyLow    Frequency = "Low"
	FrequencyMedium Frequency = "Medium"
	FrequencyHigh   Frequency = "High"
)

func (f Frequency) String() string { return string(f) }

// IsValid reports whether f is a known rating.
func (f Frequency) IsValid() bool {
	switch f {
	case FrequencyLow, FrequencyMedium, FrequencyHigh:
		return true
	default:
		return false
	}
}

// SkillLevel is the proficiency in a single skill.
type SkillLevel string

const (
	SkillNew         SkillLevel = "New"
	SkillComfortable SkillLevel = "Comfortable"
	SkillExpert      SkillLevel = "Expert"
)

func (s SkillLevel) String() string { return string(s) }

// IsValid reports whether s is a known skill level.
func (s SkillLevel) IsValid() bool {
	switch s {
	case SkillNew, SkillComfortable, SkillExpert:
		return true
	default:
		return false
	}
}

// Trend is the direction of recent performance.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendStable    Trend = "stable"
	TrendDeclining Trend = "declining"
)

func (t Trend) String() string { return string(t) }

// IsValid reports whether t is a known trend.
func (t Trend) IsValid() bool {
	switch t {
	case TrendImproving, TrendStable, TrendDeclining:
		return true
	default:
		return false
	}
}

// Workload captures load and availability for the current week.
type Workload struct {
	ActiveTasks      int           `json:"active_tasks" yaml:"active_tasks"`
	TasksDueThisWeek int           `json:"tasks_due_this_week" yaml:"tasks_due_this_week"`
	WorkloadLevel    WorkloadLevel `json:"workload_level" yaml:"workload_level"`
	AvgDailyHours    float64       `json:"avg_daily_hours" yaml:"avg_daily_hours"`
	Capacity         int           `json:"capacity" yaml:"capacity"` // percent
	AvailableHours   float64       `json:"available_hours" yaml:"available_hours"`
}

// Productivity captures delivery metrics.
type Productivity struct {
	AvgCompletionTime float64   `json:"avg_completion_time" yaml:"avg_completion_time"` // days
	OnTimeRate        int       `json:"on_time_rate" yaml:"on_time_rate"`
	OverdueRate       int       `json:"overdue_rate" yaml:"overdue_rate"`
	OvertimeFrequency Frequency `json:"overtime_frequency" yaml:"overtime_frequency"`
	TaskVelocity      float64   `json:"task_velocity" yaml:"task_velocity"` // tasks per week
	FocusScore        int       `json:"focus_score" yaml:"focus_score"`
}

// Skill is one entry of an employee's skill list.
type Skill struct {
	Name     string     `json:"name" yaml:"name"`
	Level    SkillLevel `json:"level" yaml:"level"`
	YearsExp float64    `json:"years_exp" yaml:"years_exp"`
}

// Performance captures reliability and quality trends.
type Performance struct {
	ReliabilityScore  int   `json:"reliability_score" yaml:"reliability_score"`
	ConsistencyScore  int   `json:"consistency_score" yaml:"consistency_score"`
	QualityScore      int   `json:"quality_score" yaml:"quality_score"`
	DeadlineAdherence int   `json:"deadline_adherence" yaml:"deadline_adherence"`
	Trend             Trend `json:"trend" yaml:"trend"`
}

// Behavior captures behavioural-health indicators.
type Behavior struct {
	PeakHours          string    `json:"peak_hours,omitempty" yaml:"peak_hours"`
	BurnoutRisk        Frequency `json:"burnout_risk" yaml:"burnout_risk"`
	CollaborationScore int       `json:"collaboration_score" yaml:"collaboration_score"`
}

// Employee is a read-only roster entry.
type Employee struct {
	ID              string          `json:"id" yaml:"id"`
	Name            string          `json:"name" yaml:"name"`
	Email           string          `json:"email,omitempty" yaml:"email"`
	Role            string          `json:"role" yaml:"role"`
	Department      string          `json:"department" yaml:"department"`
	Manager         string          `json:"manager" yaml:"manager"`
	JoinDate        string          `json:"join_date" yaml:"join_date"`
	ExperienceLevel ExperienceLevel `json:"experience_level" yaml:"experience_level"`
	CurrentStatus   Status          `json:"current_status" yaml:"current_status"`
	Workload        Workload        `json:"workload" yaml:"workload"`
	Productivity    Productivity    `json:"productivity" yaml:"productivity"`
	Skills          []Skill         `json:"skills" yaml:"skills"`
	Performance     Performance     `json:"performance" yaml:"performance"`
	Behavior        Behavior        `json:"behavior" yaml:"behavior"`
}

// Available reports whether the employee can be assigned work at all.
func (e *Employee) Available() bool {
	return e.CurrentStatus != StatusOnLeave
}

// Validate checks the record against the roster invariants: percentages in
// [0,100], non-negative counters and hours, known enum values and unique
// skill names. WorkloadLevel is not cross-checked against Capacity.
func (e *Employee) Validate() error {
	const op = "model.employee.validate"
	invalid := func(format string, args ...any) error {
		return WrapKind(op, ErrInvalidEmployee, fmt.Errorf("%s: "+format, append([]any{e.ID}, args...)...))
	}

	if strings.TrimSpace(e.ID) == "" {
		return WrapKind(op, ErrInvalidEmployee, fmt.Errorf("missing id"))
	}
	if !e.ExperienceLevel.IsValid() {
		return invalid("unknown experience level %q", e.ExperienceLevel)
	}
	if !e.CurrentStatus.IsValid() {
		return invalid("unknown status %q", e.CurrentStatus)
	}
	if !e.Workload.WorkloadLevel.IsValid() {
		return invalid("unknown workload level %q", e.Workload.WorkloadLevel)
	}
	if e.Workload.ActiveTasks < 0 || e.Workload.TasksDueThisWeek < 0 {
		return invalid("negative task counters")
	}
	if e.Workload.AvailableHours < 0 {
		return invalid("negative available hours")
	}
	if e.Productivity.OvertimeFrequency != "" && !e.Productivity.OvertimeFrequency.IsValid() {
		return invalid("unknown overtime frequency %q", e.Productivity.OvertimeFrequency)
	}
	if !e.Behavior.BurnoutRisk.IsValid() {
		return invalid("unknown burnout risk %q", e.Behavior.BurnoutRisk)
	}
	if e.Performance.Trend != "" && !e.Performance.Trend.IsValid() {
		return invalid("unknown trend %q", e.Performance.Trend)
	}

	percentages := map[string]int{
		"capacity":          e.Workload.Capacity,
		"on_time_rate":      e.Productivity.OnTimeRate,
		"overdue_rate":      e.Productivity.OverdueRate,
		"focus_score":       e.Productivity.FocusScore,
		"reliability_score": e.Performance.ReliabilityScore,
	}
	for name, v := range percentages {
		if v < 0 || v > 100 {
			return invalid("%s %d out of range [0,100]", name, v)
		}
	}

	seen := make(map[string]struct{}, len(e.Skills))
	for _, s := range e.Skills {
		key := strings.ToLower(strings.TrimSpace(s.Name))
		if key == "" {
			return invalid("empty skill name")
		}
		if _, dup := seen[key]; dup {
			return invalid("duplicate skill %q", s.Name)
		}
		if s.YearsExp < 0 {
			return invalid("negative experience for skill %q", s.Name)
		}
		if s.Level != "" && !s.Level.IsValid() {
			return invalid("unknown level %q for skill %q", s.Level, s.Name)
		}
		seen[key] = struct{}{}
	}
	return nil
}

package planning

import (
	"math"

	"github.com/okian/taskmatch/internal/domain/model"
	"github.com/okian/taskmatch/internal/domain/types"
)

const topPerformerReliability = 85

// TeamStats aggregates the roster. Averages cover every member, including
// those on leave; member lists keep roster order.
func TeamStats(roster []model.Employee) types.TeamStats {
	s := types.TeamStats{
		TotalMembers:  len(roster),
		Bottlenecks:   []types.TeamMember{},
		Underutilized: []types.TeamMember{},
		TopPerformers: []types.TeamMember{},
		Overloaded:    []types.TeamMember{},
	}
	if len(roster) == 0 {
		return s
	}

	var capacity, cycle, reliability float64
	for i := range roster {
		e := &roster[i]
		ref := types.TeamMember{ID: e.ID, Name: e.Name}

		if e.Available() {
			s.ActiveMembers++
		}
		capacity += float64(e.Workload.Capacity)
		cycle += e.Productivity.AvgCompletionTime
		reliability += float64(e.Performance.ReliabilityScore)
		s.TotalActiveTasks += e.Workload.ActiveTasks
		s.TotalDueThisWeek += e.Workload.TasksDueThisWeek
		s.TotalAvailableHrs += e.Workload.AvailableHours

		switch e.Workload.WorkloadLevel {
		case model.WorkloadHigh:
			s.Bottlenecks = append(s.Bottlenecks, ref)
		case model.WorkloadOverloaded:
			s.Bottlenecks = append(s.Bottlenecks, ref)
			s.Overloaded = append(s.Overloaded, ref)
		case model.WorkloadLow:
			s.Underutilized = append(s.Underutilized, ref)
		}
		if e.Performance.ReliabilityScore >= topPerformerReliability {
			s.TopPerformers = append(s.TopPerformers, ref)
		}
	}

	n := float64(len(roster))
	s.AvgCapacity = round2(capacity / n)
	s.AvgTaskCycleTime = round2(cycle / n)
	s.TeamProductivity = int(roundHalfUp(reliability / n))
	return s
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

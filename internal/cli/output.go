package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/okian/taskmatch/internal/domain/model"
	"github.com/okian/taskmatch/internal/domain/types"
)

const dateLayout = "2006-01-02"

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func table(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func printEmployees(w io.Writer, list []model.Employee) error {
	tw := table(w)
	fmt.Fprintln(tw, "ID\tNAME\tROLE\tLEVEL\tSTATUS\tWORKLOAD\tCAPACITY\tAVAILABLE")
	for _, e := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%d%%\t%.1fh\n",
			e.ID, e.Name, e.Role, e.ExperienceLevel, e.CurrentStatus,
			e.Workload.WorkloadLevel, e.Workload.Capacity, e.Workload.AvailableHours)
	}
	return tw.Flush()
}

func printRecommendations(w io.Writer, recs []types.Recommendation) error {
	if len(recs) == 0 {
		_, err := fmt.Fprintln(w, "no available candidates")
		return err
	}
	tw := table(w)
	fmt.Fprintln(tw, "RANK\tID\tNAME\tSCORE\tWORKLOAD\tSKILL\tRELIABILITY\tCAPACITY\tSENIORITY")
	for _, r := range recs {
		b := r.Breakdown
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%g\t%g\t%g\t%g\t%g\n",
			r.Rank, r.Employee.ID, r.Employee.Name, r.RecommendationScore,
			b.Workload, b.SkillMatch, b.Reliability, b.Capacity, b.Seniority)
	}
	return tw.Flush()
}

func printRisk(w io.Writer, a types.RiskAssessment) error {
	if _, err := fmt.Fprintf(w, "%s risk %s (score %d)\n", a.EmployeeID, a.Level, a.Score); err != nil {
		return err
	}
	for _, f := range a.Factors {
		if _, err := fmt.Fprintf(w, "  - %s\n", f); err != nil {
			return err
		}
	}
	return nil
}

func printTeam(w io.Writer, s types.TeamStats) error {
	tw := table(w)
	fmt.Fprintf(tw, "members\t%d (%d active)\n", s.TotalMembers, s.ActiveMembers)
	fmt.Fprintf(tw, "avg capacity\t%.1f%%\n", s.AvgCapacity)
	fmt.Fprintf(tw, "active tasks\t%d\n", s.TotalActiveTasks)
	fmt.Fprintf(tw, "due this week\t%d\n", s.TotalDueThisWeek)
	fmt.Fprintf(tw, "available hours\t%.1f\n", s.TotalAvailableHrs)
	fmt.Fprintf(tw, "avg cycle time\t%.1f days\n", s.AvgTaskCycleTime)
	fmt.Fprintf(tw, "productivity\t%d%%\n", s.TeamProductivity)
	fmt.Fprintf(tw, "bottlenecks\t%s\n", memberNames(s.Bottlenecks))
	fmt.Fprintf(tw, "underutilized\t%s\n", memberNames(s.Underutilized))
	fmt.Fprintf(tw, "top performers\t%s\n", memberNames(s.TopPerformers))
	fmt.Fprintf(tw, "overloaded\t%s\n", memberNames(s.Overloaded))
	return tw.Flush()
}

func memberNames(ms []types.TeamMember) string {
	if len(ms) == 0 {
		return "-"
	}
	names := make([]string, len(ms))
	for i, m := range ms {
		names[i] = m.Name
	}
	return strings.Join(names, ", ")
}

func printTasks(w io.Writer, list []model.Task) error {
	tw := table(w)
	fmt.Fprintln(tw, "ID\tTITLE\tASSIGNEE\tSTATUS\tPROGRESS\tSPENT\tRUNNING\tDUE")
	for _, t := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d%%\t%ds\t%t\t%s\n",
			t.ID, t.Title, t.AssigneeID, t.Status, t.Progress,
			t.TimeSpentSeconds, t.IsRunning, t.DueDate.Format(dateLayout))
	}
	return tw.Flush()
}

func printTaskLine(w io.Writer, asJSON bool, t model.Task) error {
	if asJSON {
		return printJSON(w, t)
	}
	_, err := fmt.Fprintf(w, "%s: %s, %d%%, running=%t\n", t.ID, t.Status, t.Progress, t.IsRunning)
	return err
}

func printAnalytics(w io.Writer, a types.ProgressAnalytics) error {
	tw := table(w)
	fmt.Fprintf(tw, "task\t%s\n", a.TaskID)
	fmt.Fprintf(tw, "progress\t%d%% actual, %d%% expected (%+d)\n", a.ActualProgress, a.ExpectedProgress, a.Delta)
	fmt.Fprintf(tw, "pace\t%s\n", a.Pace)
	fmt.Fprintf(tw, "remaining\t%d days, %d hours\n", a.DaysRemaining, a.HoursRemaining)
	fmt.Fprintf(tw, "overdue\t%t\n", a.Overdue)
	fmt.Fprintf(tw, "delay probability\t%d%% (%s)\n", a.DelayProbability, a.RiskLevel)
	fmt.Fprintf(tw, "velocity\t%.1f points/day\n", a.Velocity)
	fmt.Fprintf(tw, "buffer\t%.1f hours\n", a.BufferHours)
	return tw.Flush()
}

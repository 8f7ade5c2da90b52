package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newTasksCmd(g *globals) *cobra.Command {
	var assignee string
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List and drive assigned tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := g.client().Tasks(cmd.Context(), assignee)
			if err != nil {
				return err
			}
			if g.json {
				return printJSON(cmd.OutOrStdout(), list)
			}
			return printTasks(cmd.OutOrStdout(), list)
		},
	}
	cmd.Flags().StringVar(&assignee, "assignee", "", "Only tasks assigned to this employee")

	cmd.AddCommand(newTaskShowCmd(g), newTaskCreateCmd(g), newTaskProgressCmd(g), newTaskAnalyticsCmd(g))
	for _, action := range []string{"start", "pause", "review", "complete"} {
		cmd.AddCommand(newTaskActionCmd(g, action))
	}
	return cmd
}

func newTaskShowCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "show <task-id>",
		Short: "Show one task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := g.client().Task(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), t)
		},
	}
}

func newTaskCreateCmd(g *globals) *cobra.Command {
	var (
		in  TaskInput
		key string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Assign a task to an employee",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			t, created, err := g.client().CreateTask(cmd.Context(), key, in)
			if err != nil {
				return err
			}
			if g.json {
				return printJSON(cmd.OutOrStdout(), t)
			}
			verb := "created"
			if !created {
				verb = "replayed"
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s task %s for %s (due %s)\n",
				verb, t.ID, t.AssigneeID, t.DueDate.Format(dateLayout))
			return err
		},
	}
	f := cmd.Flags()
	f.StringVar(&in.Title, "title", "", "Task title (required)")
	f.StringVar(&in.Description, "description", "", "Task description")
	f.StringVar(&in.AssigneeID, "assignee", "", "Employee ID (required)")
	f.StringVar(&in.Category, "category", "", "Task category")
	f.StringVar(&in.Priority, "priority", "Medium", "Low, Medium or High")
	f.Float64Var(&in.EstimatedHours, "hours", 0, "Estimated hours (required)")
	f.StringVar(&in.DueDate, "due", "", "Due date, YYYY-MM-DD or RFC3339 (required)")
	f.StringVar(&key, "idempotency-key", "", "Makes the request safe to retry")
	for _, name := range []string{"title", "assignee", "hours", "due"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func newTaskActionCmd(g *globals, action string) *cobra.Command {
	return &cobra.Command{
		Use:   action + " <task-id>",
		Short: "Apply the " + action + " command to a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := g.client().Command(cmd.Context(), args[0], action)
			if err != nil {
				return err
			}
			return printTaskLine(cmd.OutOrStdout(), g.json, t)
		},
	}
}

func newTaskProgressCmd(g *globals) *cobra.Command {
	var progress int
	cmd := &cobra.Command{
		Use:   "progress <task-id>",
		Short: "Record task progress (0-100)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("set") {
				return fmt.Errorf("%w: --set is required", ErrBadFlag)
			}
			t, err := g.client().SetProgress(cmd.Context(), args[0], progress)
			if err != nil {
				return err
			}
			return printTaskLine(cmd.OutOrStdout(), g.json, t)
		},
	}
	cmd.Flags().IntVar(&progress, "set", 0, "Progress percentage")
	return cmd
}

func newTaskAnalyticsCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "analytics <task-id>",
		Short: "Compare progress with the schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.client().Analytics(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if g.json {
				return printJSON(cmd.OutOrStdout(), a)
			}
			return printAnalytics(cmd.OutOrStdout(), a)
		},
	}
}

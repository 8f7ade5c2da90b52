// Package cli implements the taskmatch command line client.
package cli

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"
)

const (
	defaultURL     = "http://localhost:9080"
	defaultTimeout = 10 * time.Second
	envURL         = "TASKMATCH_URL"
)

// globals are the persistent flags shared by every subcommand.
type globals struct {
	url     string
	timeout time.Duration
	json    bool
}

func (g *globals) client() *Client { return NewClient(g.url, g.timeout) }

// NewRootCommand builds the taskmatch CLI.
func NewRootCommand(version string) *cobra.Command {
	g := &globals{}

	root := &cobra.Command{
		Use:   "taskmatch",
		Short: "Client for the taskmatch assignment service",
		Long: "taskmatch ranks employees for a task, scores assignment risk and\n" +
			"drives the task lifecycle over the service HTTP API.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
	}

	url := os.Getenv(envURL)
	if url == "" {
		url = defaultURL
	}
	pf := root.PersistentFlags()
	pf.StringVar(&g.url, "url", url, "Base URL of the service (env "+envURL+")")
	pf.DurationVar(&g.timeout, "timeout", defaultTimeout, "HTTP request timeout")
	pf.BoolVar(&g.json, "json", false, "Print raw JSON instead of tables")

	root.AddCommand(
		newEmployeesCmd(g),
		newRecommendCmd(g),
		newRiskCmd(g),
		newTeamCmd(g),
		newDeadlineCmd(g),
		newTasksCmd(g),
		newStatsCmd(g),
		newLoadCmd(g),
	)
	return root
}

// Execute runs the CLI with ctx and returns the first command error.
func Execute(ctx context.Context, version string, args []string) error {
	root := NewRootCommand(version)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func newEmployeesCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "employees [id]",
		Short: "List the roster or show one employee",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := g.client()
			if len(args) == 1 {
				e, err := c.Employee(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), e)
			}
			list, err := c.Employees(cmd.Context())
			if err != nil {
				return err
			}
			if g.json {
				return printJSON(cmd.OutOrStdout(), list)
			}
			return printEmployees(cmd.OutOrStdout(), list)
		},
	}
}

func newRecommendCmd(g *globals) *cobra.Command {
	var (
		category string
		priority string
		hours    float64
		limit    int
	)
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Rank candidate assignees for a task",
		RunE: func(cmd *cobra.Command, _ []string) error {
			recs, err := g.client().Recommend(cmd.Context(), category, priority, hours, limit)
			if err != nil {
				return err
			}
			if g.json {
				return printJSON(cmd.OutOrStdout(), recs)
			}
			return printRecommendations(cmd.OutOrStdout(), recs)
		},
	}
	f := cmd.Flags()
	f.StringVar(&category, "category", "", "Task category, e.g. Design")
	f.StringVar(&priority, "priority", "Medium", "Task priority: Low, Medium or High")
	f.Float64Var(&hours, "hours", 0, "Estimated hours (required)")
	f.IntVar(&limit, "limit", 0, "Maximum candidates to return")
	_ = cmd.MarkFlagRequired("hours")
	return cmd
}

func newRiskCmd(g *globals) *cobra.Command {
	var (
		hours float64
		due   string
	)
	cmd := &cobra.Command{
		Use:   "risk <employee-id>",
		Short: "Assess the risk of assigning a task to an employee",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := g.client().Risk(cmd.Context(), args[0], hours, due)
			if err != nil {
				return err
			}
			if g.json {
				return printJSON(cmd.OutOrStdout(), a)
			}
			return printRisk(cmd.OutOrStdout(), a)
		},
	}
	f := cmd.Flags()
	f.Float64Var(&hours, "hours", 0, "Estimated hours (required)")
	f.StringVar(&due, "due", "", "Due date, YYYY-MM-DD or RFC3339 (required)")
	_ = cmd.MarkFlagRequired("hours")
	_ = cmd.MarkFlagRequired("due")
	return cmd
}

func newTeamCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "team",
		Short: "Show team statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			stats, err := g.client().Team(cmd.Context())
			if err != nil {
				return err
			}
			if g.json {
				return printJSON(cmd.OutOrStdout(), stats)
			}
			return printTeam(cmd.OutOrStdout(), stats)
		},
	}
}

func newDeadlineCmd(g *globals) *cobra.Command {
	var (
		hours      float64
		category   string
		complexity string
	)
	cmd := &cobra.Command{
		Use:   "deadline",
		Short: "Suggest a due date from effort and complexity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := g.client().Deadline(cmd.Context(), hours, category, complexity)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), d)
		},
	}
	f := cmd.Flags()
	f.Float64Var(&hours, "hours", 0, "Estimated hours (required)")
	f.StringVar(&category, "category", "", "Task category")
	f.StringVar(&complexity, "complexity", "", "Low, Medium or High; overrides the category")
	_ = cmd.MarkFlagRequired("hours")
	return cmd
}

func newStatsCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show service counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			stats, err := g.client().Stats(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), stats)
		},
	}
}

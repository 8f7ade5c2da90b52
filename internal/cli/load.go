package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/okian/taskmatch/internal/domain/model"
	"github.com/okian/taskmatch/pkg/logger"
)

// LoadConfig drives a synthetic run against a live service.
type LoadConfig struct {
	Tasks         int           // tasks to assign
	EventsPerTask int           // lifecycle events per task after the initial start
	Workers       int           // concurrent requests
	DuplicateRate float64       // share of requests resent with the same key or event ID
	Settle        time.Duration // wait for the queue to drain before verifying
	Seed          uint64
}

// LoadStats summarises a load run.
type LoadStats struct {
	TasksCreated    int64
	TasksReplayed   int64
	TasksFailed     int64
	EventsAccepted  int64
	EventsDuplicate int64
	EventsRejected  int64 // 429 backpressure
	EventsFailed    int64
	TasksVerified   int
	ByStatus        map[model.TaskStatus]int
	Duration        time.Duration
}

type plannedTask struct {
	key   string
	input TaskInput
	dup   bool
}

type plannedEvent struct {
	taskIndex int
	event     EventInput
	dup       bool
}

func newLoadCmd(g *globals) *cobra.Command {
	cfg := LoadConfig{}
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Assign synthetic tasks and replay lifecycle events concurrently",
		Long: "load assigns tasks to available employees, pushes lifecycle events\n" +
			"through POST /events and checks that every task is tracked afterwards.\n" +
			"A share of requests is resent to exercise idempotency.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			stats, err := RunLoad(cmd.Context(), g.client(), cfg)
			if stats != nil {
				printLoadStats(cmd.OutOrStdout(), stats)
			}
			return err
		},
	}
	f := cmd.Flags()
	f.IntVar(&cfg.Tasks, "tasks", 100, "Number of tasks to assign")
	f.IntVar(&cfg.EventsPerTask, "events", 10, "Lifecycle events per task")
	f.IntVar(&cfg.Workers, "workers", runtime.NumCPU()*2, "Concurrent requests")
	f.Float64Var(&cfg.DuplicateRate, "duplicates", 0.05, "Share of requests resent (0-1)")
	f.DurationVar(&cfg.Settle, "settle", 2*time.Second, "Wait before verification")
	f.Uint64Var(&cfg.Seed, "seed", uint64(time.Now().UnixNano()), "Random seed")
	return cmd
}

// RunLoad executes a load run. Partial stats are returned with verification errors.
func RunLoad(ctx context.Context, c *Client, cfg LoadConfig) (*LoadStats, error) {
	if cfg.Tasks <= 0 || cfg.Workers <= 0 || cfg.EventsPerTask < 0 {
		return nil, fmt.Errorf("%w: tasks and workers must be positive", ErrBadFlag)
	}
	if cfg.DuplicateRate < 0 || cfg.DuplicateRate > 1 {
		return nil, fmt.Errorf("%w: duplicates must be within [0,1]", ErrBadFlag)
	}
	log := logger.Named("load")
	started := time.Now()
	stats := &LoadStats{ByStatus: map[model.TaskStatus]int{}}

	employees, err := c.Employees(ctx)
	if err != nil {
		return nil, fmt.Errorf("service check: %w", err)
	}
	var assignees []string
	for i := range employees {
		if employees[i].Available() {
			assignees = append(assignees, employees[i].ID)
		}
	}
	if len(assignees) == 0 {
		return nil, fmt.Errorf("%w: no available employees", ErrLoadCheck)
	}

	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))
	run := uuid.NewString()[:8]
	log.Info(ctx, "starting load run",
		logger.String("run", run),
		logger.Int("tasks", cfg.Tasks),
		logger.Int("eventsPerTask", cfg.EventsPerTask),
		logger.Int("workers", cfg.Workers),
	)

	tasks := planTasks(rng, run, assignees, cfg)
	ids := make([]string, cfg.Tasks)
	if err := submitTasks(ctx, c, cfg.Workers, tasks, ids, stats); err != nil {
		return stats, err
	}
	log.Info(ctx, "tasks assigned",
		logger.Int("created", int(stats.TasksCreated)),
		logger.Int("replayed", int(stats.TasksReplayed)),
		logger.Int("failed", int(stats.TasksFailed)),
	)

	events := planEvents(rng, cfg)
	if err := submitEvents(ctx, c, cfg.Workers, events, ids, stats); err != nil {
		return stats, err
	}
	log.Info(ctx, "events submitted",
		logger.Int("accepted", int(stats.EventsAccepted)),
		logger.Int("duplicate", int(stats.EventsDuplicate)),
		logger.Int("rejected", int(stats.EventsRejected)),
	)

	select {
	case <-ctx.Done():
		return stats, ctx.Err()
	case <-time.After(cfg.Settle):
	}

	err = verifyLoad(ctx, c, ids, stats)
	stats.Duration = time.Since(started)
	return stats, err
}

func planTasks(rng *rand.Rand, run string, assignees []string, cfg LoadConfig) []plannedTask {
	categories := []string{"Design", "Development", "Testing", "Documentation", "Research", "Bug Fix"}
	priorities := []string{"Low", "Medium", "High"}
	out := make([]plannedTask, cfg.Tasks)
	for i := range out {
		out[i] = plannedTask{
			key: "load-" + run + "-" + strconv.Itoa(i),
			input: TaskInput{
				Title:          fmt.Sprintf("load %s #%d", run, i),
				AssigneeID:     assignees[rng.IntN(len(assignees))],
				Category:       categories[rng.IntN(len(categories))],
				Priority:       priorities[rng.IntN(len(priorities))],
				EstimatedHours: float64(1 + rng.IntN(40)),
				DueDate:        time.Now().AddDate(0, 0, 1+rng.IntN(14)).Format(dateLayout),
			},
			dup: rng.Float64() < cfg.DuplicateRate,
		}
	}
	return out
}

func planEvents(rng *rand.Rand, cfg LoadConfig) []plannedEvent {
	actions := []string{"start", "pause", "progress", "progress", "review", "complete"}
	var out []plannedEvent
	for i := 0; i < cfg.Tasks; i++ {
		out = append(out, plannedEvent{taskIndex: i, event: EventInput{EventID: uuid.NewString(), Action: "start"}})
		for j := 0; j < cfg.EventsPerTask; j++ {
			ev := EventInput{EventID: uuid.NewString(), Action: actions[rng.IntN(len(actions))]}
			if ev.Action == "progress" {
				ev.Progress = rng.IntN(101)
			}
			out = append(out, plannedEvent{taskIndex: i, event: ev, dup: rng.Float64() < cfg.DuplicateRate})
		}
	}
	rng.Shuffle(len(out), func(a, b int) { out[a], out[b] = out[b], out[a] })
	return out
}

func submitTasks(ctx context.Context, c *Client, workers int, tasks []plannedTask, ids []string, stats *LoadStats) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, pt := range tasks {
		g.Go(func() error {
			sends := 1
			if pt.dup {
				sends = 2
			}
			for range sends {
				t, created, err := c.CreateTask(gctx, pt.key, pt.input)
				switch {
				case err != nil:
					atomic.AddInt64(&stats.TasksFailed, 1)
					if gctx.Err() != nil {
						return gctx.Err()
					}
					continue
				case created:
					atomic.AddInt64(&stats.TasksCreated, 1)
				default:
					atomic.AddInt64(&stats.TasksReplayed, 1)
				}
				ids[i] = t.ID
			}
			return nil
		})
	}
	return g.Wait()
}

func submitEvents(ctx context.Context, c *Client, workers int, events []plannedEvent, ids []string, stats *LoadStats) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, pe := range events {
		id := ids[pe.taskIndex]
		if id == "" {
			continue
		}
		g.Go(func() error {
			ev := pe.event
			ev.TaskID = id
			sends := 1
			if pe.dup {
				sends = 2
			}
			for range sends {
				ack, err := c.PostEvent(gctx, ev)
				var apiErr *APIError
				switch {
				case errors.As(err, &apiErr) && apiErr.Status == http.StatusTooManyRequests:
					atomic.AddInt64(&stats.EventsRejected, 1)
				case err != nil:
					atomic.AddInt64(&stats.EventsFailed, 1)
					if gctx.Err() != nil {
						return gctx.Err()
					}
				case ack.Duplicate:
					atomic.AddInt64(&stats.EventsDuplicate, 1)
				default:
					atomic.AddInt64(&stats.EventsAccepted, 1)
				}
			}
			return nil
		})
	}
	return g.Wait()
}

// verifyLoad checks that every assigned task is tracked exactly once.
func verifyLoad(ctx context.Context, c *Client, ids []string, stats *LoadStats) error {
	list, err := c.Tasks(ctx, "")
	if err != nil {
		return fmt.Errorf("verify: %w", err)
	}
	byID := make(map[string]model.Task, len(list))
	for _, t := range list {
		byID[t.ID] = t
	}
	seen := make(map[string]struct{}, len(ids))
	var missing int
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: task %s assigned twice", ErrLoadCheck, id)
		}
		seen[id] = struct{}{}
		t, ok := byID[id]
		if !ok {
			missing++
			continue
		}
		stats.TasksVerified++
		stats.ByStatus[t.Status]++
	}
	if missing > 0 {
		return fmt.Errorf("%w: %d tasks missing", ErrLoadCheck, missing)
	}
	return nil
}

func printLoadStats(w io.Writer, s *LoadStats) {
	tw := table(w)
	fmt.Fprintf(tw, "tasks\t%d created, %d replayed, %d failed\n", s.TasksCreated, s.TasksReplayed, s.TasksFailed)
	fmt.Fprintf(tw, "events\t%d accepted, %d duplicate, %d rejected, %d failed\n",
		s.EventsAccepted, s.EventsDuplicate, s.EventsRejected, s.EventsFailed)
	fmt.Fprintf(tw, "verified\t%d\n", s.TasksVerified)
	for _, st := range []model.TaskStatus{model.TaskNotStarted, model.TaskInProgress, model.TaskReview, model.TaskCompleted} {
		fmt.Fprintf(tw, "  %s\t%d\n", st, s.ByStatus[st])
	}
	fmt.Fprintf(tw, "duration\t%s\n", s.Duration.Round(time.Millisecond))
	_ = tw.Flush()
}

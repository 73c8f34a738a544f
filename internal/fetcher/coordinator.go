package fetcher

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/wsnlndrv/gofile-dl/internal/api"
	"github.com/wsnlndrv/gofile-dl/internal/resolver"
)

// Policy selects how the coordinator schedules tasks.
type Policy int

const (
	// PolicySequential processes tasks one at a time, in list order, with
	// a fixed inter-task delay to respect host rate limits.
	PolicySequential Policy = iota

	// PolicyPool drains the task list through a bounded worker pool.
	// Submission follows list order; completion order is unconstrained.
	PolicyPool
)

// RunOptions configures one coordinator run.
type RunOptions struct {
	Policy Policy

	// Workers is the pool size for PolicyPool.
	// Default: 3
	Workers int

	// Delay is the inter-task delay for PolicySequential.
	// Default: 2s
	Delay time.Duration
}

// Run executes all tasks under the selected policy and returns one
// outcome per task, in task-list order. Task-local failures never abort
// the run; tasks not attempted because the context was cancelled are
// reported as failed with the context's error.
func (f *Fetcher) Run(ctx context.Context, tasks []resolver.Task, cred api.Credential, opts RunOptions) []Outcome {
	if opts.Workers <= 0 {
		opts.Workers = 3
	}
	if opts.Delay <= 0 {
		opts.Delay = 2 * time.Second
	}

	if opts.Policy == PolicySequential {
		return f.runSequential(ctx, tasks, cred, opts.Delay)
	}
	return f.runPool(ctx, tasks, cred, opts.Workers)
}

func (f *Fetcher) runSequential(ctx context.Context, tasks []resolver.Task, cred api.Credential, delay time.Duration) []Outcome {
	// Burst 1: the first task starts immediately, the rest are spaced out.
	limiter := rate.NewLimiter(rate.Every(delay), 1)

	outcomes := make([]Outcome, 0, len(tasks))
	for i, task := range tasks {
		if err := limiter.Wait(ctx); err != nil {
			for _, rest := range tasks[i:] {
				outcomes = append(outcomes, Outcome{Task: rest, Status: StatusFailed, Err: err})
			}
			break
		}
		outcomes = append(outcomes, f.Download(ctx, task, cred))
	}
	return outcomes
}

func (f *Fetcher) runPool(ctx context.Context, tasks []resolver.Task, cred api.Credential, workers int) []Outcome {
	type job struct {
		idx  int
		task resolver.Task
	}

	jobs := make(chan job)
	outcomes := make([]Outcome, len(tasks))
	attempted := make([]bool, len(tasks))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				attempted[j.idx] = true
				outcomes[j.idx] = f.Download(ctx, j.task, cred)
			}
		}()
	}

	// Feed in list order; stop feeding once the context is cancelled.
	go func() {
		defer close(jobs)
		for i, task := range tasks {
			select {
			case jobs <- job{idx: i, task: task}:
			case <-ctx.Done():
				return
			}
		}
	}()

	wg.Wait()

	for i := range outcomes {
		if !attempted[i] {
			outcomes[i] = Outcome{Task: tasks[i], Status: StatusFailed, Err: ctx.Err()}
		}
	}
	return outcomes
}

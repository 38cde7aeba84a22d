package poll

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/tripolabs/tripo-go/retry"
	"github.com/tripolabs/tripo-go/types"
)

// DefaultInterval is the delay between two status queries.
const DefaultInterval = 2 * time.Second

// Fetcher queries the current snapshot of a task. *tripo.Client satisfies
// this interface.
type Fetcher interface {
	FetchTask(ctx context.Context, taskID string) (*types.Task, error)
}

// ProgressSink receives a snapshot on every poll. Implementations must not
// retain the snapshot across calls; copy what they need.
type ProgressSink interface {
	OnProgress(task types.Task)
}

// ProgressFunc adapts a function to the ProgressSink interface.
type ProgressFunc func(task types.Task)

func (f ProgressFunc) OnProgress(task types.Task) { f(task) }

// Waiter polls a task until it reaches a terminal status or the deadline
// elapses. The zero value polls every DefaultInterval with no deadline.
type Waiter struct {
	// Interval is the fixed delay between polls. Defaults to
	// DefaultInterval when zero.
	Interval time.Duration

	// MaxWait bounds the total wait. Zero means no deadline; the caller's
	// context is then the only way to abandon the wait.
	MaxWait time.Duration

	// Clock defaults to SystemClock.
	Clock Clock

	// Sink, when set, receives every observed snapshot.
	Sink ProgressSink

	// Retry, when set, retries transient fetch errors per the policy.
	// When nil, the first fetch error aborts the wait.
	Retry *retry.Policy

	Logger *zap.Logger
}

// Wait polls fetcher until the task reaches a terminal status.
//
// A task that terminates as failed is a valid completed result and is
// returned as a snapshot, not an error; inspect Task.Status. The error
// cases are fetch failures, context cancellation, and *types.TimeoutError
// when MaxWait elapses first.
func (w Waiter) Wait(ctx context.Context, fetcher Fetcher, taskID string) (*types.Task, error) {
	interval := w.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	clock := w.Clock
	if clock == nil {
		clock = SystemClock{}
	}
	logger := w.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	fetch := func(ctx context.Context) (*types.Task, error) {
		return fetcher.FetchTask(ctx, taskID)
	}
	if w.Retry != nil {
		retryer := retry.NewRetryer(w.Retry, logger)
		fetch = func(ctx context.Context) (*types.Task, error) {
			result, err := retryer.DoWithResult(ctx, func() (any, error) {
				return fetcher.FetchTask(ctx, taskID)
			})
			if err != nil {
				return nil, err
			}
			return result.(*types.Task), nil
		}
	}

	start := clock.Now()
	lastStatus := types.TaskUnknown

	for {
		task, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		lastStatus = task.Status

		logger.Debug("task polled",
			zap.String("task_id", taskID),
			zap.String("status", string(task.Status)),
			zap.Int("progress", task.Progress),
		)
		if w.Sink != nil {
			w.Sink.OnProgress(*task)
		}

		if task.Status.Terminal() {
			return task, nil
		}

		if w.MaxWait > 0 {
			elapsed := clock.Now().Sub(start)
			if elapsed >= w.MaxWait {
				return nil, &types.TimeoutError{
					TaskID:     taskID,
					LastStatus: lastStatus,
					Elapsed:    elapsed,
				}
			}
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-clock.After(interval):
		}
	}
}

package tripo

import (
	"context"
	"time"

	"github.com/tripolabs/tripo-go/poll"
	"github.com/tripolabs/tripo-go/retry"
	"github.com/tripolabs/tripo-go/types"
)

// FetchTask satisfies poll.Fetcher.
func (c *Client) FetchTask(ctx context.Context, taskID string) (*types.Task, error) {
	return c.GetTask(ctx, taskID)
}

// WaitOption customizes a WaitForTask call.
type WaitOption func(*poll.Waiter)

// WithInterval sets the fixed delay between status polls.
func WithInterval(d time.Duration) WaitOption {
	return func(w *poll.Waiter) { w.Interval = d }
}

// WithMaxWait bounds the total wait; when it elapses before a terminal
// status, WaitForTask fails with *types.TimeoutError.
func WithMaxWait(d time.Duration) WaitOption {
	return func(w *poll.Waiter) { w.MaxWait = d }
}

// WithProgress registers a sink that receives every observed snapshot.
func WithProgress(sink poll.ProgressSink) WaitOption {
	return func(w *poll.Waiter) { w.Sink = sink }
}

// WithRetryPolicy retries transient fetch errors during the wait. Without
// it, the first fetch error aborts the wait.
func WithRetryPolicy(policy *retry.Policy) WaitOption {
	return func(w *poll.Waiter) { w.Retry = policy }
}

// WaitForTask polls the task until it reaches a terminal status. A task
// that finishes as failed is returned as a snapshot, not an error, so the
// failure reason stays inspectable.
func (c *Client) WaitForTask(ctx context.Context, taskID string, opts ...WaitOption) (*types.Task, error) {
	waiter := poll.Waiter{Logger: c.logger}
	for _, opt := range opts {
		opt(&waiter)
	}
	return waiter.Wait(ctx, c, taskID)
}

package poll

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripolabs/tripo-go/retry"
	"github.com/tripolabs/tripo-go/types"
)

// fakeClock advances instantly: every After call moves Now forward by the
// requested duration and fires immediately.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	c.now = c.now.Add(d)
	fired := c.now
	c.mu.Unlock()

	ch := make(chan time.Time, 1)
	ch <- fired
	return ch
}

// scriptFetcher replays a fixed sequence of results; the last entry
// repeats once the script is exhausted.
type scriptFetcher struct {
	script []func() (*types.Task, error)
	calls  int
}

func (f *scriptFetcher) FetchTask(ctx context.Context, taskID string) (*types.Task, error) {
	idx := f.calls
	if idx >= len(f.script) {
		idx = len(f.script) - 1
	}
	f.calls++
	return f.script[idx]()
}

func snapshot(status types.TaskState, progress int) func() (*types.Task, error) {
	return func() (*types.Task, error) {
		return &types.Task{TaskID: "tid-1", Status: status, Progress: progress}, nil
	}
}

func TestWaiter_ReturnsTerminalSnapshotOnce(t *testing.T) {
	fetcher := &scriptFetcher{script: []func() (*types.Task, error){
		snapshot(types.TaskPending, 0),
		snapshot(types.TaskRunning, 50),
		snapshot(types.TaskSuccess, 100),
	}}

	w := Waiter{Interval: 2 * time.Second, Clock: &fakeClock{}}
	task, err := w.Wait(context.Background(), fetcher, "tid-1")

	require.NoError(t, err)
	assert.Equal(t, types.TaskSuccess, task.Status)
	assert.Equal(t, 3, fetcher.calls, "polling must stop at the first terminal status")
}

func TestWaiter_FailedTaskIsAResultNotAnError(t *testing.T) {
	fetcher := &scriptFetcher{script: []func() (*types.Task, error){
		snapshot(types.TaskRunning, 80),
		snapshot(types.TaskFailed, 80),
	}}

	w := Waiter{Interval: time.Second, Clock: &fakeClock{}}
	task, err := w.Wait(context.Background(), fetcher, "tid-1")

	require.NoError(t, err)
	assert.Equal(t, types.TaskFailed, task.Status)
}

func TestWaiter_TimeoutCarriesLastStatus(t *testing.T) {
	fetcher := &scriptFetcher{script: []func() (*types.Task, error){
		snapshot(types.TaskRunning, 90),
	}}

	w := Waiter{Interval: 2 * time.Second, MaxWait: 10 * time.Second, Clock: &fakeClock{}}
	task, err := w.Wait(context.Background(), fetcher, "tid-1")

	require.Error(t, err)
	assert.Nil(t, task, "a non-terminal task must never be returned silently")

	var timeout *types.TimeoutError
	require.ErrorAs(t, err, &timeout)
	assert.Equal(t, types.TaskRunning, timeout.LastStatus)
	assert.Equal(t, "tid-1", timeout.TaskID)
	assert.GreaterOrEqual(t, timeout.Elapsed, 10*time.Second)

	// interval 2s over a 10s budget: polls at 0,2,4,6,8,10 then timeout.
	assert.Equal(t, 6, fetcher.calls)
}

func TestWaiter_IntervalRespected(t *testing.T) {
	fetcher := &scriptFetcher{script: []func() (*types.Task, error){
		snapshot(types.TaskRunning, 10),
		snapshot(types.TaskRunning, 60),
		snapshot(types.TaskSuccess, 100),
	}}

	const interval = 10 * time.Millisecond
	w := Waiter{Interval: interval}

	begin := time.Now()
	_, err := w.Wait(context.Background(), fetcher, "tid-1")
	elapsed := time.Since(begin)

	require.NoError(t, err)
	// 3 polls with 2 sleeps in between.
	assert.GreaterOrEqual(t, elapsed, 2*interval)
}

func TestWaiter_SinkSeesEveryPoll(t *testing.T) {
	fetcher := &scriptFetcher{script: []func() (*types.Task, error){
		snapshot(types.TaskPending, 0),
		snapshot(types.TaskRunning, 40),
		snapshot(types.TaskSuccess, 100),
	}}

	var seen []int
	w := Waiter{
		Interval: time.Second,
		Clock:    &fakeClock{},
		Sink:     ProgressFunc(func(task types.Task) { seen = append(seen, task.Progress) }),
	}

	_, err := w.Wait(context.Background(), fetcher, "tid-1")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 40, 100}, seen)
}

func TestWaiter_FetchErrorAbortsByDefault(t *testing.T) {
	sentinel := types.NewError(types.ErrNetworkFailure, "connection reset").WithRetryable(true)
	fetcher := &scriptFetcher{script: []func() (*types.Task, error){
		func() (*types.Task, error) { return nil, sentinel },
	}}

	w := Waiter{Interval: time.Second, Clock: &fakeClock{}}
	_, err := w.Wait(context.Background(), fetcher, "tid-1")

	require.Error(t, err)
	assert.Equal(t, 1, fetcher.calls, "no implicit retries without a policy")
	assert.Equal(t, types.ErrNetworkFailure, types.GetErrorCode(err))
}

func TestWaiter_RetryPolicyCoversTransientErrors(t *testing.T) {
	fetcher := &scriptFetcher{script: []func() (*types.Task, error){
		func() (*types.Task, error) {
			return nil, types.NewError(types.ErrUpstreamError, "bad gateway").WithRetryable(true)
		},
		snapshot(types.TaskSuccess, 100),
	}}

	w := Waiter{
		Interval: time.Second,
		Clock:    &fakeClock{},
		Retry: &retry.Policy{
			MaxRetries:   2,
			InitialDelay: time.Millisecond,
			Multiplier:   2.0,
		},
	}

	task, err := w.Wait(context.Background(), fetcher, "tid-1")
	require.NoError(t, err)
	assert.Equal(t, types.TaskSuccess, task.Status)
	assert.Equal(t, 2, fetcher.calls)
}

func TestWaiter_ContextCancelAbandonsWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	fetcher := &scriptFetcher{script: []func() (*types.Task, error){
		func() (*types.Task, error) {
			cancel() // cancel while the poller is between suspension points
			return &types.Task{TaskID: "tid-1", Status: types.TaskRunning}, nil
		},
	}}

	w := Waiter{Interval: time.Hour}
	_, err := w.Wait(ctx, fetcher, "tid-1")

	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

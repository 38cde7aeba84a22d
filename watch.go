package tripo

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"github.com/tripolabs/tripo-go/types"
)

// TaskUpdate is one item of a watch stream: either a task snapshot or the
// error that ended (or interrupted) the stream.
type TaskUpdate struct {
	Task types.Task
	Err  error
}

// WatchTask streams real-time status updates for one task over WebSocket,
// as a push-based alternative to polling. The channel closes when the
// server closes the stream (typically once the task completes) or when ctx
// is cancelled.
func (c *Client) WatchTask(ctx context.Context, taskID string) (<-chan TaskUpdate, error) {
	if strings.TrimSpace(taskID) == "" {
		return nil, types.NewError(types.ErrValidationFailure, "task ID must not be empty")
	}
	return c.watch(ctx, "task/watch/"+taskID)
}

// WatchAllTasks streams status updates for every task of the account.
// A non-nil since requests updates from that point in time onward.
func (c *Client) WatchAllTasks(ctx context.Context, since *time.Time) (<-chan TaskUpdate, error) {
	endpoint := "task/watch/all"
	if since != nil {
		endpoint += "/" + since.UTC().Format(time.RFC3339)
	}
	return c.watch(ctx, endpoint)
}

func (c *Client) wsEndpointURL(endpoint string) string {
	u := *c.baseURL
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	return u.String() + "/" + strings.TrimLeft(endpoint, "/")
}

func (c *Client) watch(ctx context.Context, endpoint string) (<-chan TaskUpdate, error) {
	conn, _, err := websocket.Dial(ctx, c.wsEndpointURL(endpoint), &websocket.DialOptions{
		HTTPHeader: http.Header{"Authorization": []string{"Bearer " + c.cfg.APIKey}},
	})
	if err != nil {
		return nil, types.NewError(types.ErrNetworkFailure, "websocket dial failed").
			WithRetryable(true).WithCause(err)
	}
	conn.SetReadLimit(1 << 20)

	updates := make(chan TaskUpdate)
	go func() {
		defer close(updates)
		defer conn.Close(websocket.StatusNormalClosure, "")

		for {
			msgType, data, err := conn.Read(ctx)
			if err != nil {
				status := websocket.CloseStatus(err)
				if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway || ctx.Err() != nil {
					return
				}
				c.deliver(ctx, updates, TaskUpdate{
					Err: types.NewError(types.ErrNetworkFailure, "watch stream interrupted").
						WithRetryable(true).WithCause(err),
				})
				return
			}
			if msgType != websocket.MessageText {
				continue
			}

			var env struct {
				Data types.Task `json:"data"`
			}
			if err := json.Unmarshal(data, &env); err != nil {
				c.deliver(ctx, updates, TaskUpdate{
					Err: types.NewError(types.ErrDecodeFailure, "decoding watch update").WithCause(err),
				})
				continue
			}

			c.collector.ObserveWatchMessage()
			c.logger.Debug("watch update",
				zap.String("task_id", env.Data.TaskID),
				zap.String("status", string(env.Data.Status)),
			)
			if !c.deliver(ctx, updates, TaskUpdate{Task: env.Data}) {
				return
			}
		}
	}()
	return updates, nil
}

func (c *Client) deliver(ctx context.Context, ch chan<- TaskUpdate, update TaskUpdate) bool {
	select {
	case ch <- update:
		return true
	case <-ctx.Done():
		return false
	}
}

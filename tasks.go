package tripo

import (
	"context"
	"net/http"
	"strings"

	"github.com/tripolabs/tripo-go/types"
)

const (
	taskTypeTextToModel  = "text_to_model"
	taskTypeImageToModel = "image_to_model"
)

// TextToModel submits a text-to-model generation task and returns the new
// task's ID. An empty prompt fails locally with VALIDATION_FAILURE.
func (c *Client) TextToModel(ctx context.Context, prompt string) (*types.TaskResponse, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, types.NewError(types.ErrValidationFailure, "prompt must not be empty")
	}

	body := types.TextToModelRequest{Prompt: prompt, Type: taskTypeTextToModel}
	var created types.TaskResponse
	if err := c.do(ctx, http.MethodPost, "task", body, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// ImageToModel submits an image-to-model generation task. The image
// argument accepts three forms:
//
//  1. a public http(s) URL,
//  2. a file token (UUID) from a previous UploadFile call,
//  3. a local file path, uploaded automatically first.
func (c *Client) ImageToModel(ctx context.Context, image string) (*types.TaskResponse, error) {
	if strings.TrimSpace(image) == "" {
		return nil, types.NewError(types.ErrValidationFailure, "image must not be empty")
	}

	file, err := c.fileContentFromString(ctx, image)
	if err != nil {
		return nil, err
	}

	body := types.ImageToModelRequest{Type: taskTypeImageToModel, File: *file}
	var created types.TaskResponse
	if err := c.do(ctx, http.MethodPost, "task", body, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// GetTask retrieves the current snapshot of a task.
func (c *Client) GetTask(ctx context.Context, taskID string) (*types.Task, error) {
	if strings.TrimSpace(taskID) == "" {
		return nil, types.NewError(types.ErrValidationFailure, "task ID must not be empty")
	}

	var task types.Task
	if err := c.do(ctx, http.MethodGet, "task/"+taskID, nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// GetBalance queries the account's credit balance.
func (c *Client) GetBalance(ctx context.Context) (*types.Balance, error) {
	var balance types.Balance
	if err := c.do(ctx, http.MethodGet, "user/balance", nil, &balance); err != nil {
		return nil, err
	}
	return &balance, nil
}

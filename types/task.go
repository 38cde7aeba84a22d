package types

import (
	"encoding/json"
	"strings"
)

// TaskState represents the server-side lifecycle of a generation task.
// Transitions are monotonic: pending/running move forward to success or
// failed and never reverse.
type TaskState string

const (
	TaskPending TaskState = "pending"
	TaskRunning TaskState = "running"
	TaskSuccess TaskState = "success"
	TaskFailed  TaskState = "failed"
	// TaskUnknown is used for any status string the SDK does not
	// recognize, so a new server-side state never breaks decoding.
	TaskUnknown TaskState = "unknown"
)

// Terminal reports whether no further transitions will occur.
func (s TaskState) Terminal() bool {
	return s == TaskSuccess || s == TaskFailed
}

// UnmarshalJSON normalizes unrecognized status strings to TaskUnknown.
func (s *TaskState) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch TaskState(strings.ToLower(raw)) {
	case TaskPending, TaskRunning, TaskSuccess, TaskFailed:
		*s = TaskState(strings.ToLower(raw))
	default:
		*s = TaskUnknown
	}
	return nil
}

// ResultFile is a single downloadable output of a successful task.
type ResultFile struct {
	URL string `json:"url"`
}

// TaskResult holds the model files produced by a successful task.
type TaskResult struct {
	PBRModel *ResultFile `json:"pbr_model,omitempty"`
	GLBModel *ResultFile `json:"glb_model,omitempty"`
}

// Artifact is a named entry of the result manifest, used by the download
// helpers to derive deterministic local filenames.
type Artifact struct {
	Name string
	URL  string
}

// Files returns the manifest as a list of named artifacts, skipping
// entries the server did not populate.
func (r TaskResult) Files() []Artifact {
	var out []Artifact
	if r.PBRModel != nil && r.PBRModel.URL != "" {
		out = append(out, Artifact{Name: "pbr_model", URL: r.PBRModel.URL})
	}
	if r.GLBModel != nil && r.GLBModel.URL != "" {
		out = append(out, Artifact{Name: "glb_model", URL: r.GLBModel.URL})
	}
	return out
}

// TaskOutput carries the preview image generated while the task runs.
type TaskOutput struct {
	GeneratedImage string `json:"generated_image,omitempty"`
}

// Task is a read-only snapshot of a generation task as reported by the
// server. Progress is a percentage from 0 to 100.
type Task struct {
	TaskID     string      `json:"task_id"`
	Type       string      `json:"type,omitempty"`
	Status     TaskState   `json:"status"`
	Progress   int         `json:"progress"`
	CreateTime int64       `json:"create_time,omitempty"`
	Result     TaskResult  `json:"result"`
	Output     *TaskOutput `json:"output,omitempty"`
}

// TaskResponse is returned by task-creating endpoints.
type TaskResponse struct {
	TaskID string `json:"task_id"`
}

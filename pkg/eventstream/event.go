package eventstream

import "time"

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeTaskCompleted is emitted after a task's prediction is persisted.
	EventTypeTaskCompleted = "ragbench.task.completed"
)

// TaskCompletedEvent is a transport-neutral event payload for a completed task.
type TaskCompletedEvent struct {
	SchemaVersion int       `json:"schema_version"`
	EventType     string    `json:"event_type"`
	EventID       string    `json:"event_id"`
	EmittedAt     time.Time `json:"emitted_at"`
	RunID         string    `json:"run_id"`
	TaskID        string    `json:"task_id"`
	Collection    string    `json:"collection"`
	Answerable    bool      `json:"answerable"`
	Refusal       bool      `json:"refusal"`
	DurationMs    int64     `json:"duration_ms"`
}

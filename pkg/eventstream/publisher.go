// Package eventstream defines the task completion events a batch run can
// publish to an external stream, plus the Publisher contract backends satisfy.
package eventstream

import "context"

// Publisher publishes task events to an event stream backend.
type Publisher interface {
	PublishTaskCompleted(ctx context.Context, event *TaskCompletedEvent) error
	Close() error
}

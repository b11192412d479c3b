// Package runner drives a batch generation run: it normalizes each task
// record, generates an answer, and appends the result to the predictions
// file, keeping per-task failures from sinking the rest of the batch.
package runner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ragbenchco/ragbench/pkg/classify"
	"github.com/ragbenchco/ragbench/pkg/dispatch"
	"github.com/ragbenchco/ragbench/pkg/eventstream"
	"github.com/ragbenchco/ragbench/pkg/eventstream/nop"
	"github.com/ragbenchco/ragbench/pkg/runstate"
	"github.com/ragbenchco/ragbench/pkg/submission"
	"github.com/ragbenchco/ragbench/pkg/task"
)

// DefaultTaskDelay is the pause between consecutive tasks.
const DefaultTaskDelay = 100 * time.Millisecond

// Generator produces an answer for a normalized task.
type Generator interface {
	Generate(ctx context.Context, conversation []task.Message, contexts []task.Passage, collection string) (string, error)
}

// ResultWriter persists one completed result.
type ResultWriter interface {
	Write(result *submission.Result) error
}

// Options configures runner behavior.
type Options struct {
	// TaskDelay is the pause between tasks. Zero means DefaultTaskDelay;
	// negative disables the delay.
	TaskDelay time.Duration

	// State, when set, skips tasks already recorded as done and records
	// new completions so an aborted run can resume.
	State *runstate.Store

	// Publisher receives a TaskCompletedEvent per persisted result.
	Publisher eventstream.Publisher
}

// Runner executes a batch of task records sequentially.
type Runner struct {
	generator Generator
	writer    ResultWriter
	refusals  *classify.Classifier
	options   Options
	runID     string
	logger    *zap.Logger
}

// New creates a Runner with a fresh run ID.
func New(generator Generator, writer ResultWriter, opts Options, logger *zap.Logger) *Runner {
	if opts.TaskDelay == 0 {
		opts.TaskDelay = DefaultTaskDelay
	}

	if opts.Publisher == nil {
		opts.Publisher = nop.NewPublisher()
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Runner{
		generator: generator,
		writer:    writer,
		refusals:  classify.NewDefault(),
		options:   opts,
		runID:     uuid.NewString(),
		logger:    logger,
	}
}

// RunID returns the identifier assigned to this run.
func (r *Runner) RunID() string {
	return r.runID
}

// Failure records a task that could not be completed.
type Failure struct {
	Line   int
	TaskID string
	Err    error
}

// Stats aggregates the outcome of a run.
type Stats struct {
	Processed    int
	Answerable   int
	Unanswerable int
	Refusals     int
	Skipped      int
	Failures     []Failure
	Duration     time.Duration
}

// Summary returns a human-readable summary of the run.
func (s *Stats) Summary() string {
	return fmt.Sprintf(
		"Run complete: %d processed (%d answerable, %d unanswerable), %d skipped, %d failed\n"+
			"Refusal predictions: %d\n"+
			"Duration: %s",
		s.Processed, s.Answerable, s.Unanswerable,
		s.Skipped, len(s.Failures),
		s.Refusals,
		s.Duration.Round(time.Millisecond),
	)
}

// Run processes every record in order. Per-task errors are collected in
// Stats.Failures; the run aborts early only when the generator reports
// dispatch.ErrAllKeysExhausted or the context is canceled. Results written
// before an abort are preserved.
func (r *Runner) Run(ctx context.Context, records []json.RawMessage) (*Stats, error) {
	stats := &Stats{}
	start := time.Now()

	defer func() {
		stats.Duration = time.Since(start)
	}()

	for i, record := range records {
		line := i + 1

		if err := ctx.Err(); err != nil {
			return stats, err
		}

		t, err := task.Parse(record)
		if err != nil {
			r.logger.Warn("skipping unparseable task", zap.Int("line", line), zap.Error(err))
			stats.Failures = append(stats.Failures, Failure{Line: line, Err: err})
			continue
		}

		if r.options.State != nil {
			done, err := r.options.State.IsDone(ctx, t.TaskID)
			if err != nil {
				return stats, fmt.Errorf("checking run state: %w", err)
			}

			if done {
				stats.Skipped++
				continue
			}
		}

		taskStart := time.Now()

		text, err := r.generator.Generate(ctx, t.Conversation, t.Contexts, t.Collection)
		if err != nil {
			if errors.Is(err, dispatch.ErrAllKeysExhausted) {
				r.logger.Error("all credentials exhausted, stopping run",
					zap.String("task_id", t.TaskID),
					zap.Int("completed", stats.Processed),
				)

				return stats, err
			}

			r.logger.Warn("skipping failed task",
				zap.String("task_id", t.TaskID),
				zap.Error(err),
			)
			stats.Failures = append(stats.Failures, Failure{Line: line, TaskID: t.TaskID, Err: err})
			continue
		}

		if err := r.writer.Write(submission.FromTask(t, text)); err != nil {
			return stats, fmt.Errorf("persisting result for task %s: %w", t.TaskID, err)
		}

		if r.options.State != nil {
			if err := r.options.State.MarkDone(ctx, t.TaskID, r.runID); err != nil {
				return stats, fmt.Errorf("recording completion for task %s: %w", t.TaskID, err)
			}
		}

		refusal := r.refusals.IsRefusal(text)

		stats.Processed++
		if t.Answerable() {
			stats.Answerable++
		} else {
			stats.Unanswerable++
		}
		if refusal {
			stats.Refusals++
		}

		r.publish(ctx, t, refusal, time.Since(taskStart))

		r.logger.Info("task completed",
			zap.String("task_id", t.TaskID),
			zap.String("collection", t.Collection),
			zap.Bool("answerable", t.Answerable()),
			zap.Bool("refusal", refusal),
		)

		if r.options.TaskDelay > 0 && i < len(records)-1 {
			time.Sleep(r.options.TaskDelay)
		}
	}

	return stats, nil
}

func (r *Runner) publish(ctx context.Context, t *task.Task, refusal bool, elapsed time.Duration) {
	event := &eventstream.TaskCompletedEvent{
		SchemaVersion: eventstream.SchemaVersionV1,
		EventType:     eventstream.EventTypeTaskCompleted,
		EventID:       uuid.NewString(),
		EmittedAt:     time.Now().UTC(),
		RunID:         r.runID,
		TaskID:        t.TaskID,
		Collection:    t.Collection,
		Answerable:    t.Answerable(),
		Refusal:       refusal,
		DurationMs:    elapsed.Milliseconds(),
	}

	// Publishing is best effort; a stream outage must not stop the run.
	if err := r.options.Publisher.PublishTaskCompleted(ctx, event); err != nil {
		r.logger.Warn("failed to publish task event",
			zap.String("task_id", t.TaskID),
			zap.Error(err),
		)
	}
}

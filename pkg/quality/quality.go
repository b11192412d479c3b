// Package quality estimates how well a predictions file will score against
// its reference task set, using answerability agreement and response shape.
package quality

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ragbenchco/ragbench/pkg/classify"
	"github.com/ragbenchco/ragbench/pkg/submission"
	"github.com/ragbenchco/ragbench/pkg/task"
)

// ErrTaskMismatch indicates the submission does not cover exactly the
// reference task set.
var ErrTaskMismatch = errors.New("submission tasks do not match reference tasks")

// Response length thresholds, in characters.
const (
	shortResponse = 20
	longResponse  = 800
)

// Score model constants.
const (
	baseScore            = 0.55
	answerablePenalty    = 0.15
	unanswerablePenalty  = 0.10
	briefAverageLength   = 30
	verboseAverageLength = 200
	briefAdjustment      = -0.05
	verboseAdjustment    = 0.02
	minScore             = 0.35
	maxScore             = 0.75
)

// Report aggregates validation results for a submission.
type Report struct {
	Total int

	AnswerableTotal     int
	AnswerableCorrect   int
	UnanswerableTotal   int
	UnanswerableCorrect int

	EmptyResponses int
	ShortResponses int
	LongResponses  int
	AverageLength  float64

	PredictedScore float64
}

// AnswerableAccuracy is the fraction of answerable tasks that received a
// non-refusal answer.
func (r *Report) AnswerableAccuracy() float64 {
	if r.AnswerableTotal == 0 {
		return 1.0
	}

	return float64(r.AnswerableCorrect) / float64(r.AnswerableTotal)
}

// UnanswerableAccuracy is the fraction of unanswerable tasks that received
// a refusal.
func (r *Report) UnanswerableAccuracy() float64 {
	if r.UnanswerableTotal == 0 {
		return 1.0
	}

	return float64(r.UnanswerableCorrect) / float64(r.UnanswerableTotal)
}

// Summary returns a human-readable summary of the validation.
func (r *Report) Summary() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Quality check: %d tasks\n", r.Total)
	fmt.Fprintf(&b, "Answerable accuracy: %d/%d (%.1f%%)\n",
		r.AnswerableCorrect, r.AnswerableTotal, 100*r.AnswerableAccuracy())
	fmt.Fprintf(&b, "Unanswerable accuracy: %d/%d (%.1f%%)\n",
		r.UnanswerableCorrect, r.UnanswerableTotal, 100*r.UnanswerableAccuracy())
	fmt.Fprintf(&b, "Response lengths: avg %.0f chars, %d empty, %d short, %d long\n",
		r.AverageLength, r.EmptyResponses, r.ShortResponses, r.LongResponses)
	fmt.Fprintf(&b, "Predicted score: %.2f", r.PredictedScore)

	return b.String()
}

// Validate compares a predictions file against its reference task file.
// The submission must cover exactly the reference task set; any missing or
// extra task IDs make the whole validation fail with ErrTaskMismatch.
func Validate(submissionPath, referencePath string, logger *zap.Logger) (*Report, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	results, err := submission.ReadFile(submissionPath)
	if err != nil {
		return nil, fmt.Errorf("loading submission: %w", err)
	}

	records, _, err := task.LoadFile(referencePath, logger)
	if err != nil {
		return nil, fmt.Errorf("loading reference: %w", err)
	}

	tasks := make([]*task.Task, 0, len(records))
	for i, record := range records {
		t, err := task.Parse(record)
		if err != nil {
			return nil, fmt.Errorf("parsing reference line %d: %w", i+1, err)
		}

		tasks = append(tasks, t)
	}

	byTaskID := make(map[string]*submission.Result, len(results))
	for _, result := range results {
		byTaskID[result.TaskID] = result
	}

	if err := matchTaskSets(tasks, byTaskID); err != nil {
		return nil, err
	}

	refusals := classify.NewValidator()
	report := &Report{Total: len(tasks)}

	totalLength := 0
	answered := 0

	for _, t := range tasks {
		result := byTaskID[t.TaskID]

		// Empty predictions are tallied but not classified; they carry
		// no length and no answerability verdict.
		if len(result.Predictions) == 0 {
			report.EmptyResponses++
			continue
		}

		text := strings.TrimSpace(result.Predictions[0].Text)
		if text == "" {
			report.EmptyResponses++
			continue
		}

		refusal := refusals.IsRefusal(text)

		if t.Answerable() {
			report.AnswerableTotal++
			if !refusal {
				report.AnswerableCorrect++
			}
		} else {
			report.UnanswerableTotal++
			if refusal {
				report.UnanswerableCorrect++
			}
		}

		totalLength += len(text)
		answered++
		if len(text) < shortResponse {
			report.ShortResponses++
		} else if len(text) > longResponse {
			report.LongResponses++
		}
	}

	if answered > 0 {
		report.AverageLength = float64(totalLength) / float64(answered)
	}

	report.PredictedScore = predictScore(report)

	return report, nil
}

func matchTaskSets(tasks []*task.Task, byTaskID map[string]*submission.Result) error {
	if len(byTaskID) != len(tasks) {
		return fmt.Errorf("%w: %d submitted, %d expected",
			ErrTaskMismatch, len(byTaskID), len(tasks))
	}

	for _, t := range tasks {
		if _, ok := byTaskID[t.TaskID]; !ok {
			return fmt.Errorf("%w: missing task %s", ErrTaskMismatch, t.TaskID)
		}
	}

	return nil
}

func predictScore(report *Report) float64 {
	score := baseScore

	if report.AnswerableTotal > 0 {
		missFraction := 1 - report.AnswerableAccuracy()
		score -= answerablePenalty * missFraction
	}

	if report.UnanswerableTotal > 0 {
		missFraction := 1 - report.UnanswerableAccuracy()
		score -= unanswerablePenalty * missFraction
	}

	if report.AverageLength < briefAverageLength {
		score += briefAdjustment
	} else if report.AverageLength > verboseAverageLength {
		score += verboseAdjustment
	}

	if score < minScore {
		return minScore
	}
	if score > maxScore {
		return maxScore
	}

	return score
}

// Package submission defines the prediction record format and the
// append-only JSONL writer that persists generation results.
package submission

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/ragbenchco/ragbench/pkg/task"
)

// MaxContexts caps the number of retrieval passages carried into an
// output record. Passages beyond the cap are dropped in retrieval order.
const MaxContexts = 10

// scanBufferSize bounds a single JSONL line when reading predictions back.
const scanBufferSize = 10 * 1024 * 1024

// Prediction is a single generated answer for a task.
type Prediction struct {
	Text string `json:"text"`
}

// Result is one line of a predictions file.
type Result struct {
	ConversationID string          `json:"conversation_id"`
	TaskID         string          `json:"task_id"`
	Collection     string          `json:"Collection"`
	Input          json.RawMessage `json:"input"`
	Contexts       []task.Passage  `json:"contexts"`
	Predictions    []Prediction    `json:"predictions"`
}

// FromTask builds a Result for a completed task, truncating contexts
// to the first MaxContexts passages.
func FromTask(t *task.Task, text string) *Result {
	contexts := t.Contexts
	if len(contexts) > MaxContexts {
		contexts = contexts[:MaxContexts]
	}
	if contexts == nil {
		contexts = []task.Passage{}
	}

	input := t.RawInput
	if len(input) == 0 {
		input = json.RawMessage("[]")
	}

	return &Result{
		ConversationID: t.ConversationID,
		TaskID:         t.TaskID,
		Collection:     t.Collection,
		Input:          input,
		Contexts:       contexts,
		Predictions:    []Prediction{{Text: text}},
	}
}

// Writer appends results to a JSONL predictions file. Every Write is
// flushed to disk so an aborted run keeps the lines it already earned.
type Writer struct {
	file *os.File
}

// NewWriter opens path for appending, creating it if needed.
func NewWriter(path string) (*Writer, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening predictions file: %w", err)
	}

	return &Writer{file: file}, nil
}

// Write appends one result as a JSON line and syncs it to disk.
func (w *Writer) Write(result *Result) error {
	line, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshaling result: %w", err)
	}

	if _, err := w.file.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("writing result: %w", err)
	}

	if err := w.file.Sync(); err != nil {
		return fmt.Errorf("syncing predictions file: %w", err)
	}

	return nil
}

// Close closes the underlying file.
func (w *Writer) Close() error {
	return w.file.Close()
}

// ReadFile loads every result from a JSONL predictions file.
func ReadFile(path string) ([]*Result, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening predictions file: %w", err)
	}
	defer file.Close()

	var results []*Result

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), scanBufferSize)

	lineNumber := 0
	for scanner.Scan() {
		lineNumber++

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var result Result
		if err := json.Unmarshal(line, &result); err != nil {
			return nil, fmt.Errorf("parsing line %d: %w", lineNumber, err)
		}

		results = append(results, &result)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading predictions file: %w", err)
	}

	return results, nil
}

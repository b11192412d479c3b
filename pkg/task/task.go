// Package task parses benchmark task records into a canonical representation.
//
// Input records arrive in two loosely-typed schema variants; every logical
// field has two accepted names. Parsing fails closed: a record with no usable
// task identifier is rejected rather than partially populated.
package task

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMissingTaskID indicates a record carried neither of the accepted
// task-identifier fields.
var ErrMissingTaskID = errors.New("task has no task_id or example_id")

const (
	// DefaultCollection is used when a record names no collection.
	DefaultCollection = "general"

	// DefaultScore is assumed for passages with no retrieval score.
	DefaultScore = 1.0

	unknownField = "unknown"
)

// Message is a single conversation turn. The last turn of a conversation is
// the current question; earlier turns are immutable history.
type Message struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

// Passage is one retrieved reference passage. Slice order is retrieval rank.
type Passage struct {
	DocumentID string  `json:"document_id"`
	Text       string  `json:"text"`
	Score      float64 `json:"score"`
}

// Task is the canonical unit of generation: one conversation plus its
// retrieved passages. A task is answerable iff Contexts is non-empty.
type Task struct {
	ConversationID string
	TaskID         string
	Collection     string

	// RawInput preserves the original conversation payload exactly as it
	// appeared in the record, for verbatim echo into the output format.
	RawInput json.RawMessage

	Conversation []Message
	Contexts     []Passage
}

// Answerable reports whether the task has any reference passages.
func (t *Task) Answerable() bool {
	return len(t.Contexts) > 0
}

// rawTask accepts both field-name variants of the input schema.
type rawTask struct {
	ConversationID string `json:"conversation_id"`
	TaskID         string `json:"task_id"`
	ExampleID      string `json:"example_id"`

	CollectionTitle string `json:"Collection"`
	CollectionLower string `json:"collection"`

	Input        json.RawMessage `json:"input"`
	Conversation json.RawMessage `json:"conversation"`

	Contexts json.RawMessage `json:"contexts"`
	Passages json.RawMessage `json:"passages"`
}

type rawMessage struct {
	Speaker string `json:"speaker"`
	Role    string `json:"role"`
	Text    string `json:"text"`
	Content string `json:"content"`
}

type rawPassage struct {
	DocumentID string   `json:"document_id"`
	ID         string   `json:"id"`
	Text       string   `json:"text"`
	Content    string   `json:"content"`
	Score      *float64 `json:"score"`
}

// Parse decodes a single task record. It is a pure transform: no defaults
// leak back into the source and the returned Task is never mutated afterward.
func Parse(record []byte) (*Task, error) {
	var raw rawTask
	if err := json.Unmarshal(record, &raw); err != nil {
		return nil, fmt.Errorf("decoding task record: %w", err)
	}

	taskID := firstNonEmpty(raw.TaskID, raw.ExampleID)
	if taskID == "" {
		return nil, ErrMissingTaskID
	}

	t := &Task{
		ConversationID: raw.ConversationID,
		TaskID:         taskID,
		Collection:     firstNonEmpty(raw.CollectionTitle, raw.CollectionLower, DefaultCollection),
	}

	conversationRaw := firstNonEmptyRaw(raw.Input, raw.Conversation)
	if conversationRaw != nil {
		t.RawInput = conversationRaw

		var messages []rawMessage
		if err := json.Unmarshal(conversationRaw, &messages); err != nil {
			return nil, fmt.Errorf("decoding conversation for task %s: %w", taskID, err)
		}

		for _, m := range messages {
			t.Conversation = append(t.Conversation, Message{
				Speaker: firstNonEmpty(m.Speaker, m.Role, unknownField),
				Text:    firstNonEmpty(m.Text, m.Content),
			})
		}
	}

	contextsRaw := firstNonEmptyRaw(raw.Contexts, raw.Passages)
	if contextsRaw != nil {
		var passages []rawPassage
		if err := json.Unmarshal(contextsRaw, &passages); err != nil {
			return nil, fmt.Errorf("decoding contexts for task %s: %w", taskID, err)
		}

		for _, p := range passages {
			score := DefaultScore
			if p.Score != nil {
				score = *p.Score
			}
			t.Contexts = append(t.Contexts, Passage{
				DocumentID: firstNonEmpty(p.DocumentID, p.ID, unknownField),
				Text:       firstNonEmpty(p.Text, p.Content),
				Score:      score,
			})
		}
	}

	return t, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// firstNonEmptyRaw returns the first raw value that is present and not JSON null.
func firstNonEmptyRaw(values ...json.RawMessage) json.RawMessage {
	for _, v := range values {
		if len(v) > 0 && string(v) != "null" {
			return v
		}
	}
	return nil
}

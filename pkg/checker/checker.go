// Package checker validates that a predictions file matches the required
// submission format before it is handed to scoring.
package checker

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// MaxFileSize is the largest submission the checker accepts.
const MaxFileSize = 20 * 1024 * 1024

// scanBufferSize bounds a single JSONL line.
const scanBufferSize = 10 * 1024 * 1024

// requiredFields must be present on every record.
var requiredFields = []string{
	"conversation_id",
	"task_id",
	"Collection",
	"input",
	"contexts",
	"predictions",
}

// Report collects the outcome of a format check. Issues fail the check;
// warnings do not.
type Report struct {
	Path     string
	Records  int
	Issues   []string
	Warnings []string
}

// Ok reports whether the file passed the format check.
func (r *Report) Ok() bool {
	return len(r.Issues) == 0
}

// Summary returns a human-readable summary of the check.
func (r *Report) Summary() string {
	var b strings.Builder

	if r.Ok() {
		fmt.Fprintf(&b, "Format check passed: %d records\n", r.Records)
	} else {
		fmt.Fprintf(&b, "Format check failed: %d records, %d issues\n", r.Records, len(r.Issues))
	}

	for _, issue := range r.Issues {
		fmt.Fprintf(&b, "  issue: %s\n", issue)
	}

	for _, warning := range r.Warnings {
		fmt.Fprintf(&b, "  warning: %s\n", warning)
	}

	return strings.TrimRight(b.String(), "\n")
}

type contextRecord struct {
	DocumentID *string          `json:"document_id"`
	Text       *string          `json:"text"`
	Score      *json.RawMessage `json:"score"`
}

type predictionRecord struct {
	Text string `json:"text"`
}

// CheckFile validates a predictions file. An error is returned only when
// the file itself cannot be read; format problems land in the report.
func CheckFile(path string) (*Report, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("opening submission: %w", err)
	}

	report := &Report{Path: path}

	if info.Size() > MaxFileSize {
		report.Issues = append(report.Issues,
			fmt.Sprintf("file exceeds %dMB size limit", MaxFileSize/(1024*1024)))
		return report, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening submission: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), scanBufferSize)

	line := 0
	for scanner.Scan() {
		line++

		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}

		report.Records++
		checkRecord(report, line, raw)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading submission: %w", err)
	}

	if report.Records == 0 {
		report.Issues = append(report.Issues, "file contains no records")
	}

	return report, nil
}

func checkRecord(report *Report, line int, raw []byte) {
	var record map[string]json.RawMessage
	if err := json.Unmarshal(raw, &record); err != nil {
		report.Issues = append(report.Issues, fmt.Sprintf("line %d: invalid JSON", line))
		return
	}

	missing := false
	for _, field := range requiredFields {
		if _, ok := record[field]; !ok {
			report.Issues = append(report.Issues,
				fmt.Sprintf("line %d: missing required field %q", line, field))
			missing = true
		}
	}
	if missing {
		return
	}

	var taskID string
	if err := json.Unmarshal(record["task_id"], &taskID); err != nil || taskID == "" {
		report.Issues = append(report.Issues, fmt.Sprintf("line %d: task_id must be a non-empty string", line))
	}

	var input []json.RawMessage
	if err := json.Unmarshal(record["input"], &input); err != nil {
		report.Issues = append(report.Issues, fmt.Sprintf("line %d: input must be a list", line))
	} else if len(input) == 0 {
		report.Warnings = append(report.Warnings, fmt.Sprintf("line %d: input is empty", line))
	}

	checkContexts(report, line, record["contexts"])
	checkPredictions(report, line, record["predictions"])
}

func checkContexts(report *Report, line int, raw json.RawMessage) {
	var contexts []contextRecord
	if err := json.Unmarshal(raw, &contexts); err != nil {
		report.Issues = append(report.Issues, fmt.Sprintf("line %d: contexts must be a list of objects", line))
		return
	}

	if len(contexts) > 10 {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("line %d: %d contexts (more than 10)", line, len(contexts)))
	}

	for i, c := range contexts {
		if c.DocumentID == nil {
			report.Issues = append(report.Issues,
				fmt.Sprintf("line %d: context %d missing document_id", line, i))
		}

		if c.Text == nil {
			report.Issues = append(report.Issues,
				fmt.Sprintf("line %d: context %d missing text", line, i))
		}

		if c.Score == nil {
			report.Issues = append(report.Issues,
				fmt.Sprintf("line %d: context %d missing score", line, i))
			continue
		}

		var score float64
		if err := json.Unmarshal(*c.Score, &score); err != nil {
			report.Issues = append(report.Issues,
				fmt.Sprintf("line %d: context %d score must be numeric", line, i))
		}
	}
}

func checkPredictions(report *Report, line int, raw json.RawMessage) {
	var predictions []predictionRecord
	if err := json.Unmarshal(raw, &predictions); err != nil {
		report.Issues = append(report.Issues, fmt.Sprintf("line %d: predictions must be a list of objects", line))
		return
	}

	if len(predictions) == 0 {
		report.Issues = append(report.Issues, fmt.Sprintf("line %d: predictions is empty", line))
		return
	}

	if strings.TrimSpace(predictions[0].Text) == "" {
		report.Issues = append(report.Issues, fmt.Sprintf("line %d: first prediction text is empty", line))
	}
}

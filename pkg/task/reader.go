package task

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"
)

// LoadFile reads a line-delimited JSON task file and returns the raw records.
// Lines that are not valid JSON are skipped with a warning rather than
// failing the whole batch; the skipped count is returned alongside the
// records so callers can report it.
//
// Records are returned undecoded: rejecting individual tasks (missing ids,
// malformed conversations) is the caller's per-task concern, not a load
// failure.
func LoadFile(path string, logger *zap.Logger) ([]json.RawMessage, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("opening task file: %w", err)
	}
	defer f.Close()

	var records []json.RawMessage
	skipped := 0

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 10*1024*1024) // 10MB max line

	lineNum := 0
	for scanner.Scan() {
		lineNum++

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		if !json.Valid(line) {
			logger.Warn("skipping invalid JSON line",
				zap.Int("line", lineNum),
				zap.String("file", path),
			)
			skipped++
			continue
		}

		record := make(json.RawMessage, len(line))
		copy(record, line)
		records = append(records, record)
	}

	if err := scanner.Err(); err != nil {
		return nil, skipped, fmt.Errorf("reading task file: %w", err)
	}

	return records, skipped, nil
}

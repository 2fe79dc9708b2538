package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// RunSummary is the generation log written at the end of a run
type RunSummary struct {
	RunID     string    `json:"run_id"`
	Timestamp time.Time `json:"timestamp"`
	Model     string    `json:"model"`
	Total     int       `json:"total"`
	Success   int       `json:"success"`
	Failed    int       `json:"failed"`
	Skipped   int       `json:"skipped"`
	Results   []Outcome `json:"results"`
}

// NewRunSummary tallies outcomes
func NewRunSummary(model string, results []Outcome) *RunSummary {
	s := &RunSummary{
		RunID:     uuid.New().String(),
		Timestamp: time.Now().UTC(),
		Model:     model,
		Total:     len(results),
		Results:   append([]Outcome{}, results...),
	}
	for _, r := range results {
		if r.Success {
			s.Success++
		} else {
			s.Failed++
		}
		if r.Status == StatusSkipped {
			s.Skipped++
		}
	}
	return s
}

// FailedUnits returns the keys of failed outcomes.
func (s *RunSummary) FailedUnits() []string {
	var keys []string
	for _, r := range s.Results {
		if !r.Success {
			keys = append(keys, r.Key())
		}
	}
	return keys
}

// WriteSummary overwrites path with the indented summary
func WriteSummary(path string, summary *RunSummary) error {
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshaling run summary")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return &IOError{Op: "mkdir", Path: filepath.Dir(path), Err: err}
	}
	return writeFile(path, append(data, '\n'))
}

package main

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrShortCompletion marks a completion whose filtered text is below the
// configured minimum length. It is retried like any other attempt failure.
var ErrShortCompletion = errors.New("completion shorter than minimum content length")

// ConfigError is a fatal setup problem detected before any unit is processed
type ConfigError struct {
	Reason  string
	Details []string
}

func (e *ConfigError) Error() string {
	if len(e.Details) == 0 {
		return e.Reason
	}
	return fmt.Sprintf("%s (%s)", e.Reason, strings.Join(e.Details, ", "))
}

// CompletionError is returned once every attempt for a prompt has failed
type CompletionError struct {
	Attempts int
	Err      error
}

func (e *CompletionError) Error() string {
	return fmt.Sprintf("completion failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *CompletionError) Unwrap() error {
	return e.Err
}

// IOError wraps a filesystem failure while writing an artifact
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// HTTPError represents a non-2xx response from the completion service
type HTTPError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("HTTP %d for %s", e.StatusCode, e.URL)
	}
	return fmt.Sprintf("HTTP %d for %s: %s", e.StatusCode, e.URL, e.Body)
}

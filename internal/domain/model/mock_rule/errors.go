package model

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingMock is matched by every MissingMockError.
	ErrMissingMock = errors.New("missing mock")

	ErrNoResponses   = errors.New("at least one response per HTTP method is required")
	ErrInvalidURL    = errors.New("invalid rule url")
	ErrUnknownMethod = errors.New("unknown http method")
)

// MissingMockError reports a request that was accepted for interception but
// had no rule. It always indicates a test setup mistake.
type MissingMockError struct {
	Method string
	URL    string
}

func (e *MissingMockError) Error() string {
	return fmt.Sprintf("missing mock for %s %s", e.Method, e.URL)
}

func (e *MissingMockError) Is(target error) bool {
	return target == ErrMissingMock
}

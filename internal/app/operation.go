package app

import (
	"strings"
	"time"
)

// Operation tracks one CLI command from start to finish. It is written to
// the log when the app closes.
type Operation struct {
	ID         string
	Operation  string
	Parameters string
	Status     string // "success" or "error"
	StartedAt  time.Time
	Err        error
}

// NewOperation creates an operation that starts at now. Its ID is the start
// time and also tags every log line the command writes.
func NewOperation(operation, parameters string, now time.Time) *Operation {
	return &Operation{
		ID:         now.UTC().Format("20060102T150405Z"),
		Operation:  operation,
		Parameters: parameters,
		Status:     "success",
		StartedAt:  now,
	}
}

// Fail marks the operation as failed with err. A nil err is ignored.
func (op *Operation) Fail(err error) {
	if err == nil {
		return
	}
	op.Status = "error"
	op.Err = err
}

// Duration returns how long the operation took as of now.
func (op *Operation) Duration(now time.Time) time.Duration {
	return now.Sub(op.StartedAt).Truncate(time.Millisecond)
}

// FormatParameters joins command arguments for the operation log.
func FormatParameters(args ...string) string {
	return strings.Join(args, " ")
}

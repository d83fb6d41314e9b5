package cv

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"cv-go/internal/model"
)

var (
	// ErrStorageUnavailable means the storage engine could not be opened.
	ErrStorageUnavailable = errors.New("storage unavailable")

	// ErrNotFound means an operation referenced a record that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrMalformedImport marks an import payload that is not a usable array.
	// Import reports it through ImportResult instead of returning it.
	ErrMalformedImport = errors.New("malformed import")

	// ErrPartialCleanup means a dismissal purge failed on some records.
	ErrPartialCleanup = errors.New("partial cleanup failure")

	// ErrCanonicalLanguage rejects overlay-only operations on the canonical language.
	ErrCanonicalLanguage = errors.New("operation requires an overlay language")

	// ErrBuiltinTemplate rejects changes to the built-in template.
	ErrBuiltinTemplate = errors.New("built-in template cannot be modified")

	// ErrInvalid wraps input validation failures.
	ErrInvalid = errors.New("invalid input")
)

// PartialCleanupError reports a purge that could not update every dismissal
// set referencing the deleted identity. Sets not listed in Failures were
// either updated or never referenced the identity.
type PartialCleanupError struct {
	Kind      model.Kind
	ID        int64
	Attempted int
	Completed int
	Failures  map[string]error // keyed by record key
}

func (e *PartialCleanupError) Error() string {
	keys := make([]string, 0, len(e.Failures))
	for k := range e.Failures {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s: %v", k, e.Failures[k])
	}
	return fmt.Sprintf("purging %s %d: %d of %d dismissal sets updated (%s)",
		e.Kind, e.ID, e.Completed, e.Attempted, strings.Join(parts, "; "))
}

func (e *PartialCleanupError) Is(target error) bool {
	return target == ErrPartialCleanup
}

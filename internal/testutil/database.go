package testutil

import (
	"testing"

	"cv-go/internal/cv"
	"cv-go/internal/database"
)

// NewTestStore returns an in-memory SQLite record store that is closed when
// the test completes.
func NewTestStore(t *testing.T) *database.SQLiteStore {
	t.Helper()

	s := database.NewSQLiteStore(":memory:", cv.NopLogger{})
	t.Cleanup(func() { s.Close() })
	return s
}

// NewTestService returns a Service over a fresh in-memory store with a fixed
// clock and sequential identities.
func NewTestService(t *testing.T) (*cv.Service, *StubClock) {
	t.Helper()

	clock := FixedClock()
	svc := cv.NewService(NewTestStore(t), cv.NopLogger{}, clock, NewStubIdentities(), NewStubIDGenerator())
	return svc, clock
}

// NewTestServiceWithStore is NewTestService over a caller-supplied store.
func NewTestServiceWithStore(t *testing.T, store cv.Store) *cv.Service {
	t.Helper()
	return cv.NewService(store, cv.NopLogger{}, FixedClock(), NewStubIdentities(), NewStubIDGenerator())
}

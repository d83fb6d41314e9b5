package cv

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Clock abstracts time retrieval so business logic is deterministic in tests.
type Clock interface {
	Now() time.Time
}

// RealClock returns the actual current time.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// IDGenerator produces string identifiers for templates and applications.
type IDGenerator interface {
	New() string
}

// UUIDGenerator produces random UUIDs.
type UUIDGenerator struct{}

func (UUIDGenerator) New() string { return uuid.New().String() }

// IdentityGenerator produces list-entity identities.
type IdentityGenerator interface {
	NextID() int64
}

// ClockIdentities derives identities from the clock in milliseconds.
// Calls within the same millisecond get successive values, so identities
// issued by one generator never repeat.
type ClockIdentities struct {
	clock Clock
	mu    sync.Mutex
	last  int64
}

func NewClockIdentities(clock Clock) *ClockIdentities {
	return &ClockIdentities{clock: clock}
}

func (g *ClockIdentities) NextID() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := g.clock.Now().UnixMilli()
	if id <= g.last {
		id = g.last + 1
	}
	g.last = id
	return id
}

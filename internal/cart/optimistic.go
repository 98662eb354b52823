package cart

import (
	"sync"

	"go-shop-client/internal/event"
	"go-shop-client/internal/model"
)

// OptimisticCache keeps the last-known cart snapshot in memory so the UI
// has immediate feedback. A mutation runs Idle → Optimistic →
// Confirmed/RolledBack: the staged snapshot is published before the network
// round trip, then either replaced by the authoritative result or restored
// to its pre-mutation value. Mutations touching the same line are
// serialized; different lines proceed concurrently.
type OptimisticCache struct {
	mu       sync.RWMutex
	snapshot model.CartSnapshot

	locksMu   sync.Mutex
	lineLocks map[string]*sync.Mutex

	bus *event.InMemoryBus
}

func NewOptimisticCache(bus *event.InMemoryBus) *OptimisticCache {
	return &OptimisticCache{
		lineLocks: make(map[string]*sync.Mutex),
		bus:       bus,
	}
}

// Snapshot returns a copy of the published snapshot.
func (c *OptimisticCache) Snapshot() model.CartSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.snapshot.Clone()
}

// Set publishes an authoritative snapshot outside any mutation (initial
// load, merge result).
func (c *OptimisticCache) Set(snapshot model.CartSnapshot) {
	c.mu.Lock()
	c.snapshot = snapshot.Clone()
	c.mu.Unlock()

	c.emit(event.TypeCartUpdated, snapshot)
}

// Mutation is one optimistic transition for a single line.
type Mutation struct {
	cache *OptimisticCache
	key   string
	prior model.CartSnapshot
	done  bool
}

// Begin blocks until no other mutation for the same line is pending, then
// captures the pre-mutation snapshot.
func (c *OptimisticCache) Begin(lineKey string) *Mutation {
	c.lineLock(lineKey).Lock()

	return &Mutation{
		cache: c,
		key:   lineKey,
		prior: c.Snapshot(),
	}
}

// Stage computes and publishes the optimistic snapshot.
func (m *Mutation) Stage(apply func(model.CartSnapshot) model.CartSnapshot) model.CartSnapshot {
	staged := apply(m.prior.Clone())

	m.cache.mu.Lock()
	m.cache.snapshot = staged.Clone()
	m.cache.mu.Unlock()

	m.cache.emit(event.TypeCartUpdated, staged)
	return staged
}

// Confirm replaces the optimistic snapshot with the authoritative one the
// backing store returned and releases the line.
func (m *Mutation) Confirm(authoritative model.CartSnapshot) {
	if m.done {
		return
	}
	m.done = true

	m.cache.mu.Lock()
	m.cache.snapshot = authoritative.Clone()
	m.cache.mu.Unlock()

	m.cache.emit(event.TypeCartUpdated, authoritative)
	m.cache.lineLock(m.key).Unlock()
}

// Rollback restores the pre-mutation snapshot and releases the line. The
// published state is exactly what it was before the attempt.
func (m *Mutation) Rollback() {
	if m.done {
		return
	}
	m.done = true

	m.cache.mu.Lock()
	m.cache.snapshot = m.prior.Clone()
	m.cache.mu.Unlock()

	m.cache.emit(event.TypeCartRolledBack, m.prior)
	m.cache.lineLock(m.key).Unlock()
}

func (c *OptimisticCache) lineLock(key string) *sync.Mutex {
	c.locksMu.Lock()
	defer c.locksMu.Unlock()

	lock, ok := c.lineLocks[key]
	if !ok {
		lock = &sync.Mutex{}
		c.lineLocks[key] = lock
	}

	return lock
}

func (c *OptimisticCache) emit(t event.Type, payload any) {
	if c.bus != nil {
		c.bus.Emit(t, payload)
	}
}

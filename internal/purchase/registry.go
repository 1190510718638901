package purchase

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// registryTTL is how long an untouched transaction survives before the
// sweep discards it (an abandoned gateway overlay, a closed tab).
const registryTTL = 30 * time.Minute

type entry struct {
	controller *Controller
	lastSeen   time.Time
}

// Registry holds the live purchase transactions for the web layer, keyed by
// an opaque transaction ID carried through the purchase pages and the
// gateway callback.
type Registry struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// NewRegistry creates an empty transaction registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*entry)}
}

// Put stores a controller and returns its transaction ID.
func (r *Registry) Put(c *Controller) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweepLocked()
	id := uuid.NewString()
	r.entries[id] = &entry{controller: c, lastSeen: time.Now()}
	return id
}

// Get returns the controller for a transaction ID, nil if unknown or
// expired.
func (r *Registry) Get(id string) *Controller {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		return nil
	}
	e.lastSeen = time.Now()
	return e.controller
}

// Remove closes and discards a transaction. Safe to call twice.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.entries[id]; ok {
		e.controller.Close()
		delete(r.entries, id)
	}
}

// Len reports how many transactions are live.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// sweepLocked drops transactions idle past the TTL. Caller holds the lock.
func (r *Registry) sweepLocked() {
	cutoff := time.Now().Add(-registryTTL)
	for id, e := range r.entries {
		if e.lastSeen.Before(cutoff) {
			e.controller.Close()
			delete(r.entries, id)
		}
	}
}

package cart

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// memoryRepository keeps encoded carts in process memory, the way a browser keeps them in local storage.
type memoryRepository struct {
	ttl time.Duration
	now func() time.Time

	mu        sync.RWMutex
	items     map[string]memoryEntry
	nextSweep time.Time
}

// NewMemoryRepository returns a process-local store. A positive ttl expires carts that have
// not been saved for that long; zero keeps them until deleted.
func NewMemoryRepository(ttl time.Duration) Repository {
	return &memoryRepository{
		ttl:   ttl,
		now:   time.Now,
		items: make(map[string]memoryEntry),
	}
}

func (r *memoryRepository) Load(_ context.Context, sessionID string) (Cart, error) {
	r.mu.RLock()
	entry, ok := r.items[sessionKey(sessionID)]
	r.mu.RUnlock()

	if !ok || r.expired(entry, r.now()) {
		return Cart{}, ErrNotFound
	}
	return Decode(entry.data)
}

func (r *memoryRepository) Save(_ context.Context, sessionID string, c Cart) error {
	data, err := Encode(c)
	if err != nil {
		return &PersistenceError{Op: "save", Session: sessionID, Err: err}
	}

	now := r.now()
	entry := memoryEntry{data: data}
	if r.ttl > 0 {
		entry.expiresAt = now.Add(r.ttl)
	}

	r.mu.Lock()
	r.items[sessionKey(sessionID)] = entry
	r.sweep(now)
	r.mu.Unlock()
	return nil
}

func (r *memoryRepository) Delete(_ context.Context, sessionID string) error {
	r.mu.Lock()
	delete(r.items, sessionKey(sessionID))
	r.mu.Unlock()
	return nil
}

func (r *memoryRepository) expired(entry memoryEntry, now time.Time) bool {
	return !entry.expiresAt.IsZero() && !now.Before(entry.expiresAt)
}

// sweep drops expired carts at most once per ttl. Callers hold r.mu.
func (r *memoryRepository) sweep(now time.Time) {
	if r.ttl <= 0 || now.Before(r.nextSweep) {
		return
	}
	for key, entry := range r.items {
		if r.expired(entry, now) {
			delete(r.items, key)
		}
	}
	r.nextSweep = now.Add(r.ttl)
}

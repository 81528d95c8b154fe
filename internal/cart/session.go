package cart

import (
	"sync"
	"time"
)

// sessionLocks hands out one mutex per session. Entries live only while someone holds or
// waits for them.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{locks: make(map[string]*sessionLock)}
}

// lock blocks until the session is free and returns the matching unlock.
func (l *sessionLocks) lock(sessionID string) func() {
	l.mu.Lock()
	sl, ok := l.locks[sessionID]
	if !ok {
		sl = &sessionLock{}
		l.locks[sessionID] = sl
	}
	sl.refs++
	l.mu.Unlock()

	sl.mu.Lock()
	return func() {
		sl.mu.Unlock()

		l.mu.Lock()
		sl.refs--
		if sl.refs == 0 {
			delete(l.locks, sessionID)
		}
		l.mu.Unlock()
	}
}

type localCopy struct {
	cart Cart
	// synced is false when the last write to the store failed, so this copy is newer than the store.
	synced    bool
	expiresAt time.Time
}

// localCopies keeps the last cart seen for each session so a session keeps working, without
// persistence, while the store is failing. Copies expire after ttl without use.
type localCopies struct {
	ttl time.Duration
	now func() time.Time

	mu        sync.Mutex
	copies    map[string]localCopy
	nextSweep time.Time
}

func newLocalCopies(ttl time.Duration) *localCopies {
	return &localCopies{
		ttl:    ttl,
		now:    time.Now,
		copies: make(map[string]localCopy),
	}
}

func (l *localCopies) get(sessionID string) (localCopy, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	c, ok := l.copies[sessionID]
	if !ok {
		return localCopy{}, false
	}
	if !l.now().Before(c.expiresAt) {
		delete(l.copies, sessionID)
		return localCopy{}, false
	}
	c.cart = New(c.cart.lines...)
	return c, true
}

func (l *localCopies) put(sessionID string, c Cart, synced bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.copies[sessionID] = localCopy{cart: New(c.lines...), synced: synced, expiresAt: now.Add(l.ttl)}

	if now.Before(l.nextSweep) {
		return
	}
	for id, lc := range l.copies {
		if !now.Before(lc.expiresAt) {
			delete(l.copies, id)
		}
	}
	l.nextSweep = now.Add(l.ttl)
}

func (l *localCopies) drop(sessionID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.copies, sessionID)
}

package notify

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

type Kind string

const (
	KindItemAdded       Kind = "item_added"
	KindItemRemoved     Kind = "item_removed"
	KindQuantityUpdated Kind = "quantity_updated"
	KindCartCleared     Kind = "cart_cleared"
	KindStatusChanged   Kind = "status_changed"
	KindOrderPlaced     Kind = "order_placed"
	KindOrderFailed     Kind = "order_failed"
	KindSearchResults   Kind = "search_results"
)

// Event is a user-visible notification for one session.
type Event struct {
	Session string    `json:"session_id"`
	Kind    Kind      `json:"kind"`
	Message string    `json:"message,omitempty"`
	Data    any       `json:"data,omitempty"`
	At      time.Time `json:"at"`
}

type Publisher interface {
	Publish(e Event)
}

const defaultBuffer = 16

// Bus fans events out to the subscribers of a session. Publishing never blocks:
// a subscriber whose buffer is full misses the event.
type Bus struct {
	mu     sync.Mutex
	subs   map[string]map[uint64]chan Event
	nextID uint64
	buffer int
	closed bool
}

func NewBus() *Bus {
	return &Bus{
		subs:   make(map[string]map[uint64]chan Event),
		buffer: defaultBuffer,
	}
}

// Subscribe returns the event stream of a session and a function that ends the subscription.
func (b *Bus) Subscribe(session string) (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, b.buffer)
	if b.closed {
		close(ch)
		return ch, func() {}
	}

	b.nextID++
	id := b.nextID
	if b.subs[session] == nil {
		b.subs[session] = make(map[uint64]chan Event)
	}
	b.subs[session][id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() { b.unsubscribe(session, id) })
	}
	return ch, cancel
}

func (b *Bus) unsubscribe(session string, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch, ok := b.subs[session][id]
	if !ok {
		return
	}
	delete(b.subs[session], id)
	if len(b.subs[session]) == 0 {
		delete(b.subs, session)
	}
	close(ch)
}

func (b *Bus) Publish(e Event) {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	for _, ch := range b.subs[e.Session] {
		select {
		case ch <- e:
		default:
			log.Warn().Str("session_id", e.Session).Str("kind", string(e.Kind)).Msg("notify: subscriber is full, event dropped")
		}
	}
}

// Close ends every subscription.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for session, subs := range b.subs {
		for id, ch := range subs {
			close(ch)
			delete(subs, id)
		}
		delete(b.subs, session)
	}
}

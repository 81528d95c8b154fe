package menu

import (
	"sync"
	"time"
)

type Query struct {
	Text     string `json:"query"`
	Category string `json:"category"`
}

// LiveSearch applies the most recent query once the input has been quiet for a while.
// A newer query replaces a pending one; Stop drops whatever is still pending.
type LiveSearch struct {
	catalog *Catalog
	quiet   time.Duration
	deliver func(Query, []Item)

	mu      sync.Mutex
	timer   *time.Timer
	gen     uint64
	pending bool
	stopped bool
}

func NewLiveSearch(catalog *Catalog, quiet time.Duration, deliver func(Query, []Item)) *LiveSearch {
	return &LiveSearch{
		catalog: catalog,
		quiet:   quiet,
		deliver: deliver,
	}
}

func (s *LiveSearch) Update(q Query) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}

	s.gen++
	s.pending = true
	gen := s.gen
	s.timer = time.AfterFunc(s.quiet, func() { s.fire(gen, q) })
}

func (s *LiveSearch) fire(gen uint64, q Query) {
	s.mu.Lock()
	current := !s.stopped && gen == s.gen
	if current {
		s.pending = false
	}
	s.mu.Unlock()

	if !current {
		return
	}
	s.deliver(q, s.catalog.Search(q.Text, q.Category))
}

// Idle reports whether no query is waiting to be delivered.
func (s *LiveSearch) Idle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.pending
}

func (s *LiveSearch) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopped = true
	s.pending = false
	if s.timer != nil {
		s.timer.Stop()
	}
}

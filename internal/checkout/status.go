package checkout

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Roshan7869/Didi-ki-rasoi/internal/notify"
)

type Status string

const (
	StatusIdle       Status = "idle"
	StatusSubmitting Status = "submitting"
	StatusSucceeded  Status = "succeeded"
	StatusFailed     Status = "failed"
)

type State struct {
	Status    Status    `json:"status"`
	Message   string    `json:"message,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

type attempt struct {
	state  State
	revert *time.Timer
	// gen invalidates a revert that fires after a newer transition.
	gen uint64
}

// Tracker holds the checkout state of every session. Succeeded and failed states fall back
// to idle on their own after their display window.
type Tracker struct {
	successWindow time.Duration
	failureWindow time.Duration
	publisher     notify.Publisher

	mu       sync.Mutex
	attempts map[string]*attempt
	closed   bool
}

func NewTracker(successWindow, failureWindow time.Duration, publisher notify.Publisher) *Tracker {
	return &Tracker{
		successWindow: successWindow,
		failureWindow: failureWindow,
		publisher:     publisher,
		attempts:      make(map[string]*attempt),
	}
}

func (t *Tracker) State(sessionID string) State {
	t.mu.Lock()
	defer t.mu.Unlock()

	a, ok := t.attempts[sessionID]
	if !ok {
		return State{Status: StatusIdle}
	}
	return a.state
}

// Begin moves the session to submitting. It returns false, changing nothing, when a
// submission is already in flight.
func (t *Tracker) Begin(sessionID string) bool {
	t.mu.Lock()
	a, ok := t.attempts[sessionID]
	if !ok {
		a = &attempt{}
		t.attempts[sessionID] = a
	}
	if a.state.Status == StatusSubmitting {
		t.mu.Unlock()
		return false
	}
	state := t.transition(a, StatusSubmitting, "")
	t.mu.Unlock()

	t.announce(sessionID, state)
	return true
}

func (t *Tracker) Succeed(sessionID, message string) {
	t.finish(sessionID, StatusSucceeded, message, t.successWindow)
}

func (t *Tracker) Fail(sessionID, message string) {
	t.finish(sessionID, StatusFailed, message, t.failureWindow)
}

func (t *Tracker) finish(sessionID string, status Status, message string, window time.Duration) {
	t.mu.Lock()
	a, ok := t.attempts[sessionID]
	if !ok {
		a = &attempt{}
		t.attempts[sessionID] = a
	}
	state := t.transition(a, status, message)
	if !t.closed {
		gen := a.gen
		a.revert = time.AfterFunc(window, func() { t.expire(sessionID, gen) })
	}
	t.mu.Unlock()

	t.announce(sessionID, state)
}

func (t *Tracker) expire(sessionID string, gen uint64) {
	t.mu.Lock()
	a, ok := t.attempts[sessionID]
	if !ok || a.gen != gen || t.closed {
		t.mu.Unlock()
		return
	}
	state := t.transition(a, StatusIdle, "")
	delete(t.attempts, sessionID)
	t.mu.Unlock()

	t.announce(sessionID, state)
}

// transition stops any pending revert and records the new state. Callers hold t.mu.
func (t *Tracker) transition(a *attempt, status Status, message string) State {
	if a.revert != nil {
		a.revert.Stop()
		a.revert = nil
	}
	a.gen++
	a.state = State{Status: status, Message: message, UpdatedAt: time.Now()}
	return a.state
}

func (t *Tracker) announce(sessionID string, state State) {
	log.Debug().Str("session_id", sessionID).Str("status", string(state.Status)).Msg("checkout status changed")
	if t.publisher == nil {
		return
	}
	t.publisher.Publish(notify.Event{
		Session: sessionID,
		Kind:    notify.KindStatusChanged,
		Message: state.Message,
		Data:    state,
	})
}

// Close stops every pending revert. States are left as they are.
func (t *Tracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.closed = true
	for _, a := range t.attempts {
		if a.revert != nil {
			a.revert.Stop()
			a.revert = nil
		}
	}
}

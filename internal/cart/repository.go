package cart

import (
	"context"
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("cart not found")

// Repository persists one cart per browser session.
type Repository interface {
	// Load returns ErrNotFound when nothing is stored and an ErrCorrupt error when the
	// stored value cannot be decoded.
	Load(ctx context.Context, sessionID string) (Cart, error)
	Save(ctx context.Context, sessionID string, c Cart) error
	Delete(ctx context.Context, sessionID string) error
}

// PersistenceError reports a failed read or write against the backing store.
type PersistenceError struct {
	Op      string
	Session string
	Err     error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("cart store: %s session %s: %v", e.Op, e.Session, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func sessionKey(sessionID string) string {
	return StorageKey + ":" + sessionID
}

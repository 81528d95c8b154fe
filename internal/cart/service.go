package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Roshan7869/Didi-ki-rasoi/internal/menu"
	"github.com/Roshan7869/Didi-ki-rasoi/internal/metrics"
	"github.com/Roshan7869/Didi-ki-rasoi/internal/notify"
)

// localCopyTTL bounds how long a session can keep working from memory while the store fails.
const localCopyTTL = 30 * time.Minute

var (
	ErrItemNotFound    = errors.New("menu item not found")
	ErrVariantNotFound = errors.New("menu item has no such variant")
	ErrItemUnavailable = errors.New("menu item is not available")
	ErrVariantRequired = errors.New("menu item must be ordered as one of its variants")
)

type Service interface {
	Cart(ctx context.Context, sessionID string) Cart
	Summary(ctx context.Context, sessionID string) Summary
	Add(ctx context.Context, sessionID, itemID, variant string) (Line, error)
	UpdateQuantity(ctx context.Context, sessionID, itemID, variant string, quantity int) error
	Clear(ctx context.Context, sessionID string)
	// Deduct removes an order snapshot from the cart without announcing it.
	Deduct(ctx context.Context, sessionID string, ordered []Line)
}

type service struct {
	catalog   *menu.Catalog
	repo      Repository
	publisher notify.Publisher
	metrics   *metrics.Metrics

	locks *sessionLocks
	local *localCopies
}

// NewService returns the cart manager. Every operation reads the session's cart from repo and
// writes it back, so the store stays the source of truth across restarts and replicas.
func NewService(catalog *menu.Catalog, repo Repository, publisher notify.Publisher, m *metrics.Metrics) Service {
	return &service{
		catalog:   catalog,
		repo:      repo,
		publisher: publisher,
		metrics:   m,
		locks:     newSessionLocks(),
		local:     newLocalCopies(localCopyTTL),
	}
}

func (s *service) Cart(ctx context.Context, sessionID string) Cart {
	unlock := s.locks.lock(sessionID)
	defer unlock()

	return s.load(ctx, sessionID)
}

func (s *service) Summary(ctx context.Context, sessionID string) Summary {
	return s.Cart(ctx, sessionID).Summary()
}

func (s *service) Add(ctx context.Context, sessionID, itemID, variantName string) (Line, error) {
	item, ok := s.catalog.Lookup(itemID)
	if !ok {
		return Line{}, fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
	}
	if !item.IsAvailable() {
		log.Warn().Str("session_id", sessionID).Str("item_id", itemID).Msg("service: rejected add of unavailable item")
		return Line{}, fmt.Errorf("%w: %s", ErrItemUnavailable, item.Name)
	}

	var variant *menu.Variant
	if variantName != "" {
		v, ok := item.Variant(variantName)
		if !ok {
			return Line{}, fmt.Errorf("%w: %s (%s)", ErrVariantNotFound, item.Name, variantName)
		}
		variant = &v
	} else if len(item.Variants) > 0 {
		return Line{}, fmt.Errorf("%w: %s", ErrVariantRequired, item.Name)
	}

	unlock := s.locks.lock(sessionID)
	c := s.load(ctx, sessionID)
	line := c.Add(item, variant)
	s.persist(ctx, sessionID, c)
	unlock()

	s.metrics.CartMutation("add")
	s.publish(sessionID, notify.KindItemAdded, fmt.Sprintf("%s added to cart", line.DisplayName()), line)

	return line, nil
}

func (s *service) UpdateQuantity(ctx context.Context, sessionID, itemID, variantName string, quantity int) error {
	if quantity < 0 {
		return ErrInvalidQuantity
	}

	key := Key{ItemID: itemID, Variant: variantName}

	unlock := s.locks.lock(sessionID)
	c := s.load(ctx, sessionID)
	line, found, err := c.SetQuantity(key, quantity)
	if err != nil {
		unlock()
		return err
	}
	if !found {
		unlock()
		log.Debug().Str("session_id", sessionID).Stringer("key", key).Msg("service: quantity update for missing line ignored")
		return nil
	}
	s.persist(ctx, sessionID, c)
	unlock()

	if quantity == 0 {
		s.metrics.CartMutation("remove")
		s.publish(sessionID, notify.KindItemRemoved, fmt.Sprintf("%s removed from cart", line.DisplayName()), line)
		return nil
	}

	s.metrics.CartMutation("update")
	s.publish(sessionID, notify.KindQuantityUpdated, fmt.Sprintf("%s quantity set to %d", line.DisplayName(), quantity), line)
	return nil
}

func (s *service) Clear(ctx context.Context, sessionID string) {
	unlock := s.locks.lock(sessionID)
	s.persist(ctx, sessionID, Cart{})
	unlock()

	s.metrics.CartMutation("clear")
	s.publish(sessionID, notify.KindCartCleared, "Cart cleared", nil)
}

func (s *service) Deduct(ctx context.Context, sessionID string, ordered []Line) {
	unlock := s.locks.lock(sessionID)
	defer unlock()

	c := s.load(ctx, sessionID)
	c.Deduct(ordered)
	s.persist(ctx, sessionID, c)
	s.metrics.CartMutation("checkout")
}

// load reads the session's cart. Callers hold the session lock.
func (s *service) load(ctx context.Context, sessionID string) Cart {
	// A failed write leaves the store behind this process; the local copy wins until a write lands.
	if lc, ok := s.local.get(sessionID); ok && !lc.synced {
		return lc.cart
	}

	c, err := s.repo.Load(ctx, sessionID)
	s.metrics.CartLoaded()
	if err == nil {
		s.local.put(sessionID, c, true)
		return c
	}

	var fallback *Cart
	if lc, ok := s.local.get(sessionID); ok && !isDefinitive(err) {
		fallback = &lc.cart
	} else {
		s.local.drop(sessionID)
	}
	return hydrate(sessionID, fallback, err)
}

// isDefinitive reports whether a load error says something about the stored cart itself,
// as opposed to the store being unreachable.
func isDefinitive(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrCorrupt)
}

// hydrate turns a failed load into the cart the session continues with.
// Missing or corrupt data starts an empty cart; an unreachable store falls back to the last
// cart this process saw, if any.
func hydrate(sessionID string, fallback *Cart, err error) Cart {
	switch {
	case errors.Is(err, ErrNotFound):
		log.Debug().Str("session_id", sessionID).Msg("service: no stored cart, starting empty")
	case errors.Is(err, ErrCorrupt):
		log.Warn().Err(err).Str("session_id", sessionID).Msg("service: discarding corrupt stored cart")
	case fallback != nil:
		log.Warn().Err(err).Str("session_id", sessionID).Msg("service: cart store unavailable, using local copy")
		return *fallback
	default:
		log.Warn().Err(err).Str("session_id", sessionID).Msg("service: cart store unavailable, starting empty")
	}
	return Cart{}
}

// persist writes the cart back; an empty cart deletes the stored key. Failures are logged and
// counted, never returned or retried, and the cart is kept locally until a later write lands.
// Callers hold the session lock.
func (s *service) persist(ctx context.Context, sessionID string, c Cart) {
	op := "save"
	var err error
	if c.IsEmpty() {
		op = "delete"
		err = s.repo.Delete(ctx, sessionID)
	} else {
		err = s.repo.Save(ctx, sessionID, c)
	}

	if err != nil {
		s.metrics.PersistenceError(op)
		log.Error().Err(err).Str("session_id", sessionID).Str("op", op).Msg("service: failed to persist cart")
		s.local.put(sessionID, c, false)
		return
	}

	if c.IsEmpty() {
		s.local.drop(sessionID)
		return
	}
	s.local.put(sessionID, c, true)
}

func (s *service) publish(sessionID string, kind notify.Kind, message string, data any) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(notify.Event{Session: sessionID, Kind: kind, Message: message, Data: data})
}

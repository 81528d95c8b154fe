package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Roshan7869/Didi-ki-rasoi/internal/cart"
	"github.com/Roshan7869/Didi-ki-rasoi/internal/menu"
	"github.com/Roshan7869/Didi-ki-rasoi/internal/metrics"
	"github.com/Roshan7869/Didi-ki-rasoi/internal/notify"
)

const successMessage = "Order sent! Confirm it in WhatsApp."

// Receipt describes an order that was handed off. Placed orders are not stored anywhere.
type Receipt struct {
	OrderID          string    `json:"order_id"`
	Message          string    `json:"message"`
	Link             string    `json:"link"`
	Total            int       `json:"total"`
	ItemCount        int       `json:"item_count"`
	EstimatedMinutes int       `json:"estimated_minutes"`
	PlacedAt         time.Time `json:"placed_at"`
}

type Service interface {
	Checkout(ctx context.Context, sessionID string) (*Receipt, error)
	Status(sessionID string) State
}

type service struct {
	catalog     *menu.Catalog
	carts       cart.Service
	tracker     *Tracker
	composer    *Composer
	opener      Opener
	publisher   notify.Publisher
	metrics     *metrics.Metrics
	submitDelay time.Duration
}

func NewService(
	catalog *menu.Catalog,
	carts cart.Service,
	tracker *Tracker,
	composer *Composer,
	opener Opener,
	publisher notify.Publisher,
	m *metrics.Metrics,
	submitDelay time.Duration,
) Service {
	return &service{
		catalog:     catalog,
		carts:       carts,
		tracker:     tracker,
		composer:    composer,
		opener:      opener,
		publisher:   publisher,
		metrics:     m,
		submitDelay: submitDelay,
	}
}

func (s *service) Status(sessionID string) State {
	return s.tracker.State(sessionID)
}

func (s *service) Checkout(ctx context.Context, sessionID string) (*Receipt, error) {
	if !s.tracker.Begin(sessionID) {
		s.metrics.Checkout("rejected")
		log.Warn().Str("session_id", sessionID).Msg("service: checkout ignored, submission in flight")
		return nil, ErrSubmissionInFlight
	}

	summary := s.carts.Summary(ctx, sessionID)
	if err := s.validate(summary); err != nil {
		s.fail(sessionID, err)
		return nil, err
	}

	placedAt := time.Now()
	message := s.composer.Message(summary, placedAt)
	link := s.composer.Link(message)

	if err := s.wait(ctx); err != nil {
		s.fail(sessionID, fmt.Errorf("order submission cancelled: %w", err))
		return nil, fmt.Errorf("service: checkout cancelled: %w", err)
	}

	if err := s.opener.Open(ctx, link); err != nil {
		s.fail(sessionID, fmt.Errorf("could not open WhatsApp: %w", err))
		return nil, fmt.Errorf("service: failed to hand off order: %w", err)
	}
	s.metrics.SubmitDuration(time.Since(placedAt))

	orderID, err := uuid.NewV4()
	if err != nil {
		// The link is already out; only the reference is missing.
		log.Error().Err(err).Str("session_id", sessionID).Msg("service: failed to generate order id")
	}

	receipt := &Receipt{
		OrderID:          orderID.String(),
		Message:          message,
		Link:             link,
		Total:            summary.TotalPrice,
		ItemCount:        summary.TotalItems,
		EstimatedMinutes: summary.EstimatedMinutes,
		PlacedAt:         placedAt,
	}

	// Only what was ordered leaves the cart; lines added while the order was submitting stay.
	s.carts.Deduct(ctx, sessionID, summary.Lines)
	s.tracker.Succeed(sessionID, successMessage)
	s.metrics.Checkout("succeeded")
	s.publish(sessionID, notify.KindOrderPlaced, successMessage, receipt)

	log.Info().
		Str("session_id", sessionID).
		Str("order_id", receipt.OrderID).
		Int("total", receipt.Total).
		Int("items", receipt.ItemCount).
		Msg("service: order handed off")

	return receipt, nil
}

// validate checks the cart against the catalog as it is now, not as it was when lines were added.
func (s *service) validate(summary cart.Summary) error {
	if len(summary.Lines) == 0 {
		return EmptyCartError{}
	}

	var names []string
	for _, line := range summary.Lines {
		item, ok := s.catalog.Lookup(line.ItemID)
		if !ok || !item.IsAvailable() {
			names = append(names, line.DisplayName())
		}
	}
	if len(names) > 0 {
		return &UnavailableItemsError{Names: names}
	}
	return nil
}

func (s *service) wait(ctx context.Context) error {
	if s.submitDelay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(s.submitDelay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *service) fail(sessionID string, err error) {
	s.tracker.Fail(sessionID, err.Error())
	s.metrics.Checkout("failed")
	s.publish(sessionID, notify.KindOrderFailed, err.Error(), nil)
	log.Warn().Err(err).Str("session_id", sessionID).Msg("service: checkout failed")
}

func (s *service) publish(sessionID string, kind notify.Kind, message string, data any) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(notify.Event{Session: sessionID, Kind: kind, Message: message, Data: data})
}

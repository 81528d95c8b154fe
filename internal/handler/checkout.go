package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/Roshan7869/Didi-ki-rasoi/internal/checkout"
)

type CheckoutHandler struct {
	service checkout.Service
}

func NewCheckoutHandler(service checkout.Service) *CheckoutHandler {
	return &CheckoutHandler{service: service}
}

func (h *CheckoutHandler) RegisterRoutes(router chi.Router) {
	router.Post("/sessions/{id}/checkout", h.handleCheckout)
	router.Get("/sessions/{id}/checkout/status", h.handleStatus)
}

func (h *CheckoutHandler) handleCheckout(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r)
	if !ok {
		return
	}

	receipt, err := h.service.Checkout(r.Context(), sid)
	if err != nil {
		statusCode := mapErrorToStatusCode(err)

		var clientMessage string
		switch {
		case checkout.IsValidationError(err):
			clientMessage = err.Error()
		case errors.Is(err, checkout.ErrSubmissionInFlight):
			clientMessage = "Order is already being placed"
		default:
			log.Error().Err(err).Str("session_id", sid).Msg("Failed to place order via service")
			clientMessage = "Failed to place order"
		}

		respondWithError(w, statusCode, clientMessage)
		return
	}

	respondWithJSON(w, http.StatusCreated, receipt)
}

func (h *CheckoutHandler) handleStatus(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r)
	if !ok {
		return
	}

	respondWithJSON(w, http.StatusOK, h.service.Status(sid))
}

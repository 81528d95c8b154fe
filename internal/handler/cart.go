package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Roshan7869/Didi-ki-rasoi/internal/cart"
)

type AddItemRequest struct {
	ItemID  string `json:"item_id" validate:"required"`
	Variant string `json:"variant,omitempty"`
}

type UpdateItemRequest struct {
	Variant  string `json:"variant,omitempty"`
	Quantity *int   `json:"quantity" validate:"required,min=0"`
}

type SessionResponse struct {
	SessionID string `json:"session_id"`
}

type AddItemResponse struct {
	Line cart.Line    `json:"line"`
	Cart cart.Summary `json:"cart"`
}

type CartHandler struct {
	service  cart.Service
	validate *validator.Validate
}

func NewCartHandler(service cart.Service) *CartHandler {
	return &CartHandler{
		service:  service,
		validate: validator.New(),
	}
}

func (h *CartHandler) RegisterRoutes(router chi.Router) {
	router.Post("/sessions", h.handleCreateSession)
	router.Get("/sessions/{id}/cart", h.handleGetCart)
	router.Post("/sessions/{id}/cart/items", h.handleAddItem)
	router.Put("/sessions/{id}/cart/items/{itemID}", h.handleUpdateItem)
	router.Delete("/sessions/{id}/cart", h.handleClearCart)
}

func (h *CartHandler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.NewV4()
	if err != nil {
		log.Error().Err(err).Msg("Failed to generate session id")
		respondWithError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	respondWithJSON(w, http.StatusCreated, SessionResponse{SessionID: id.String()})
}

func (h *CartHandler) handleGetCart(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r)
	if !ok {
		return
	}

	respondWithJSON(w, http.StatusOK, h.service.Summary(r.Context(), sid))
}

func (h *CartHandler) handleAddItem(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r)
	if !ok {
		return
	}

	var requestPayload AddItemRequest
	if !decodeAndValidate(w, r, h.validate, &requestPayload) {
		return
	}

	line, err := h.service.Add(r.Context(), sid, requestPayload.ItemID, requestPayload.Variant)
	if err != nil {
		log.Warn().Err(err).Str("session_id", sid).Str("item_id", requestPayload.ItemID).Msg("Failed to add item via service")

		var clientMessage string
		switch {
		case errors.Is(err, cart.ErrItemNotFound):
			clientMessage = "Menu item not found"
		case errors.Is(err, cart.ErrItemUnavailable):
			clientMessage = "Menu item is currently unavailable"
		case errors.Is(err, cart.ErrVariantNotFound):
			clientMessage = "Menu item has no such variant"
		case errors.Is(err, cart.ErrVariantRequired):
			clientMessage = "Choose a variant for this item"
		default:
			clientMessage = "Failed to add item"
		}

		respondWithError(w, mapErrorToStatusCode(err), clientMessage)
		return
	}

	respondWithJSON(w, http.StatusCreated, AddItemResponse{
		Line: line,
		Cart: h.service.Summary(r.Context(), sid),
	})
}

func (h *CartHandler) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r)
	if !ok {
		return
	}
	itemID := chi.URLParam(r, "itemID")

	var requestPayload UpdateItemRequest
	if !decodeAndValidate(w, r, h.validate, &requestPayload) {
		return
	}

	err := h.service.UpdateQuantity(r.Context(), sid, itemID, requestPayload.Variant, *requestPayload.Quantity)
	if err != nil {
		log.Warn().Err(err).Str("session_id", sid).Str("item_id", itemID).Msg("Failed to update quantity via service")

		var clientMessage string
		if errors.Is(err, cart.ErrInvalidQuantity) {
			clientMessage = "Quantity cannot be negative"
		} else {
			clientMessage = "Failed to update quantity"
		}

		respondWithError(w, mapErrorToStatusCode(err), clientMessage)
		return
	}

	respondWithJSON(w, http.StatusOK, h.service.Summary(r.Context(), sid))
}

func (h *CartHandler) handleClearCart(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r)
	if !ok {
		return
	}

	h.service.Clear(r.Context(), sid)
	w.WriteHeader(http.StatusNoContent)
}

package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Roshan7869/Didi-ki-rasoi/internal/cart"
	"github.com/Roshan7869/Didi-ki-rasoi/internal/checkout"
)

type ValidationErrorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details"`
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(response); err != nil {
		log.Error().Err(err).Msg("Failed to write JSON response")
	}
}

func mapErrorToStatusCode(err error) int {
	var empty checkout.EmptyCartError
	var unavailable *checkout.UnavailableItemsError

	switch {
	case errors.Is(err, cart.ErrItemNotFound):
		return http.StatusNotFound
	case errors.Is(err, cart.ErrVariantNotFound),
		errors.Is(err, cart.ErrVariantRequired),
		errors.Is(err, cart.ErrInvalidQuantity):
		return http.StatusBadRequest
	case errors.Is(err, cart.ErrItemUnavailable),
		errors.As(err, &empty),
		errors.As(err, &unavailable):
		return http.StatusUnprocessableEntity
	case errors.Is(err, checkout.ErrSubmissionInFlight):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// formatValidationErrors maps each failing field to a readable reason.
func formatValidationErrors(errs validator.ValidationErrors) map[string]string {
	details := make(map[string]string, len(errs))
	for _, fe := range errs {
		switch fe.Tag() {
		case "required":
			details[fe.Field()] = "is required"
		case "min":
			details[fe.Field()] = fmt.Sprintf("must be at least %s", fe.Param())
		case "max":
			details[fe.Field()] = fmt.Sprintf("must be at most %s", fe.Param())
		default:
			details[fe.Field()] = fmt.Sprintf("failed on %q", fe.Tag())
		}
	}
	return details
}

// decodeAndValidate reads a JSON body into dst and validates it, writing the error response
// itself. It returns false when the handler should stop.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, validate *validator.Validate, dst interface{}) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		log.Warn().Err(err).Msg("Failed to decode request body")
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return false
	}

	if err := validate.Struct(dst); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			respondWithJSON(w, http.StatusBadRequest, ValidationErrorResponse{
				Error:   "Validation failed",
				Details: formatValidationErrors(validationErrors),
			})
		} else {
			log.Error().Err(err).Type("validation_error_type", err).Msg("Unexpected error type during validation")
			respondWithError(w, http.StatusInternalServerError, "Internal validation error")
		}
		return false
	}
	return true
}

// sessionID reads the {id} URL parameter. Session ids are the uuids handed out by POST /sessions.
func sessionID(w http.ResponseWriter, r *http.Request) (string, bool) {
	idParam := chi.URLParam(r, "id")
	id, err := uuid.FromString(idParam)
	if err != nil {
		log.Warn().Err(err).Str("session_id", idParam).Msg("Failed to parse session id from URL")
		respondWithError(w, http.StatusBadRequest, "Invalid session id")
		return "", false
	}
	return id.String(), true
}

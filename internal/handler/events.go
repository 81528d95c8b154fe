package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/Roshan7869/Didi-ki-rasoi/internal/notify"
)

const keepAliveInterval = 15 * time.Second

type Subscriber interface {
	Subscribe(session string) (<-chan notify.Event, func())
}

// EventsHandler streams a session's notifications as server-sent events.
type EventsHandler struct {
	bus Subscriber
}

func NewEventsHandler(bus Subscriber) *EventsHandler {
	return &EventsHandler{bus: bus}
}

func (h *EventsHandler) RegisterRoutes(router chi.Router) {
	router.Get("/sessions/{id}/events", h.handleEvents)
}

func (h *EventsHandler) handleEvents(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r)
	if !ok {
		return
	}

	rc := http.NewResponseController(w)
	// The stream outlives the server's write timeout.
	if err := rc.SetWriteDeadline(time.Time{}); err != nil {
		log.Debug().Err(err).Msg("Response writer does not support write deadlines")
	}

	events, cancel := h.bus.Subscribe(sid)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		log.Error().Err(err).Msg("Streaming is not supported by the response writer")
		return
	}

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case e, open := <-events:
			if !open {
				return
			}
			if err := writeEvent(w, e); err != nil {
				log.Warn().Err(err).Str("session_id", sid).Msg("Failed to write event")
				return
			}
		case <-keepAlive.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}

func writeEvent(w http.ResponseWriter, e notify.Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", e.Kind, data)
	return err
}

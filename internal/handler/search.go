package handler

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/Roshan7869/Didi-ki-rasoi/internal/menu"
	"github.com/Roshan7869/Didi-ki-rasoi/internal/notify"
)

type SearchRequest struct {
	Query    string `json:"query" validate:"max=100"`
	Category string `json:"category,omitempty" validate:"max=50"`
}

// SearchHandler debounces live search per session and publishes the results on the event bus.
type SearchHandler struct {
	catalog   *menu.Catalog
	quiet     time.Duration
	publisher notify.Publisher
	validate  *validator.Validate

	mu       sync.Mutex
	searches map[string]*menu.LiveSearch
}

func NewSearchHandler(catalog *menu.Catalog, quiet time.Duration, publisher notify.Publisher) *SearchHandler {
	return &SearchHandler{
		catalog:   catalog,
		quiet:     quiet,
		publisher: publisher,
		validate:  validator.New(),
		searches:  make(map[string]*menu.LiveSearch),
	}
}

func (h *SearchHandler) RegisterRoutes(router chi.Router) {
	router.Put("/sessions/{id}/search", h.handleSearch)
}

func (h *SearchHandler) handleSearch(w http.ResponseWriter, r *http.Request) {
	sid, ok := sessionID(w, r)
	if !ok {
		return
	}

	var requestPayload SearchRequest
	if !decodeAndValidate(w, r, h.validate, &requestPayload) {
		return
	}

	q := menu.Query{Text: requestPayload.Query, Category: requestPayload.Category}
	if q.Category == "" {
		q.Category = menu.AllCategories
	}

	h.update(sid, q)
	w.WriteHeader(http.StatusAccepted)
}

// update hands q to the session's live search, starting one if needed. A search is dropped
// once it has delivered and nothing newer is pending, so idle sessions hold no state.
func (h *SearchHandler) update(sessionID string, q menu.Query) {
	h.mu.Lock()
	defer h.mu.Unlock()

	s, ok := h.searches[sessionID]
	if !ok {
		s = h.newSearch(sessionID)
		h.searches[sessionID] = s
	}
	s.Update(q)
}

func (h *SearchHandler) newSearch(sessionID string) *menu.LiveSearch {
	var s *menu.LiveSearch
	s = menu.NewLiveSearch(h.catalog, h.quiet, func(q menu.Query, items []menu.Item) {
		h.publisher.Publish(notify.Event{
			Session: sessionID,
			Kind:    notify.KindSearchResults,
			Data: MenuResponse{
				Query:    q.Text,
				Category: q.Category,
				Items:    toMenuItemResponses(items),
			},
		})
		h.release(sessionID, s)
	})
	return s
}

func (h *SearchHandler) release(sessionID string, s *menu.LiveSearch) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.searches[sessionID] == s && s.Idle() {
		s.Stop()
		delete(h.searches, sessionID)
	}
}

// Close drops every pending search.
func (h *SearchHandler) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, s := range h.searches {
		s.Stop()
		delete(h.searches, id)
	}
}

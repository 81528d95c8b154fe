package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Roshan7869/Didi-ki-rasoi/internal/menu"
)

type MenuItemResponse struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	Price           int            `json:"price"`
	Category        string         `json:"category"`
	Description     string         `json:"description,omitempty"`
	ImageURL        string         `json:"image_url"`
	Variants        []menu.Variant `json:"variants,omitempty"`
	IsPopular       bool           `json:"is_popular"`
	Rating          float64        `json:"rating,omitempty"`
	IsAvailable     bool           `json:"is_available"`
	PrepTimeMinutes int            `json:"prep_time_minutes,omitempty"`
}

type MenuResponse struct {
	Query    string             `json:"query,omitempty"`
	Category string             `json:"category"`
	Items    []MenuItemResponse `json:"items"`
}

type MenuHandler struct {
	catalog *menu.Catalog
}

func NewMenuHandler(catalog *menu.Catalog) *MenuHandler {
	return &MenuHandler{catalog: catalog}
}

func (h *MenuHandler) RegisterRoutes(router chi.Router) {
	router.Get("/menu", h.handleListMenu)
	router.Get("/menu/categories", h.handleListCategories)
}

func (h *MenuHandler) handleListMenu(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	category := r.URL.Query().Get("category")
	if category == "" {
		category = menu.AllCategories
	}

	respondWithJSON(w, http.StatusOK, MenuResponse{
		Query:    query,
		Category: category,
		Items:    toMenuItemResponses(h.catalog.Search(query, category)),
	})
}

func (h *MenuHandler) handleListCategories(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string][]string{"categories": h.catalog.Categories()})
}

func toMenuItemResponses(items []menu.Item) []MenuItemResponse {
	out := make([]MenuItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, MenuItemResponse{
			ID:              item.ID,
			Name:            item.Name,
			Price:           item.Price,
			Category:        item.Category,
			Description:     item.Description,
			ImageURL:        item.ImageURL(),
			Variants:        item.Variants,
			IsPopular:       item.IsPopular,
			Rating:          item.Rating,
			IsAvailable:     item.IsAvailable(),
			PrepTimeMinutes: item.PrepTimeMinutes,
		})
	}
	return out
}

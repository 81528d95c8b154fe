package handler_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Roshan7869/Didi-ki-rasoi/internal/handler"
	"github.com/Roshan7869/Didi-ki-rasoi/internal/menu"
)

func newMenuRouter(t *testing.T) *chi.Mux {
	t.Helper()

	catalog, err := menu.LoadDefault()
	require.NoError(t, err)

	router := chi.NewRouter()
	handler.NewMenuHandler(catalog).RegisterRoutes(router)
	return router
}

func TestMenuHandler_ListMenu(t *testing.T) {
	tests := []struct {
		name         string
		path         string
		wantCategory string
		wantIDs      []string
	}{
		{name: "drinks_tea", path: "/menu?q=tea&category=Drinks", wantCategory: "Drinks", wantIDs: []string{"milk-tea"}},
		{name: "no_match", path: "/menu?q=pizza", wantCategory: "All", wantIDs: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := doRequest(newMenuRouter(t), http.MethodGet, tt.path, "")
			require.Equal(t, http.StatusOK, rr.Code)

			var resp handler.MenuResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantCategory, resp.Category)

			ids := make([]string, 0, len(resp.Items))
			for _, item := range resp.Items {
				ids = append(ids, item.ID)
				assert.NotEmpty(t, item.ImageURL)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestMenuHandler_ListMenuWithoutFilter(t *testing.T) {
	rr := doRequest(newMenuRouter(t), http.MethodGet, "/menu", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp handler.MenuResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Len(t, resp.Items, 14)
}

func TestMenuHandler_Categories(t *testing.T) {
	rr := doRequest(newMenuRouter(t), http.MethodGet, "/menu/categories", "")
	require.Equal(t, http.StatusOK, rr.Code)

	var resp map[string][]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "All", resp["categories"][0])
	assert.Contains(t, resp["categories"], "Drinks")
}

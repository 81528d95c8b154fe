package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Roshan7869/Didi-ki-rasoi/internal/cart"
	"github.com/Roshan7869/Didi-ki-rasoi/internal/handler"
)

type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) Cart(ctx context.Context, sessionID string) cart.Cart {
	args := m.Called(ctx, sessionID)
	return args.Get(0).(cart.Cart)
}

func (m *MockCartService) Summary(ctx context.Context, sessionID string) cart.Summary {
	args := m.Called(ctx, sessionID)
	return args.Get(0).(cart.Summary)
}

func (m *MockCartService) Add(ctx context.Context, sessionID, itemID, variant string) (cart.Line, error) {
	args := m.Called(ctx, sessionID, itemID, variant)
	return args.Get(0).(cart.Line), args.Error(1)
}

func (m *MockCartService) UpdateQuantity(ctx context.Context, sessionID, itemID, variant string, quantity int) error {
	args := m.Called(ctx, sessionID, itemID, variant, quantity)
	return args.Error(0)
}

func (m *MockCartService) Clear(ctx context.Context, sessionID string) {
	m.Called(ctx, sessionID)
}

func (m *MockCartService) Deduct(ctx context.Context, sessionID string, ordered []cart.Line) {
	m.Called(ctx, sessionID, ordered)
}

var testSession = uuid.Must(uuid.NewV4()).String()

func newCartRouter(svc cart.Service) *chi.Mux {
	router := chi.NewRouter()
	handler.NewCartHandler(svc).RegisterRoutes(router)
	return router
}

func doRequest(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestCartHandler_CreateSession(t *testing.T) {
	rr := doRequest(newCartRouter(new(MockCartService)), http.MethodPost, "/sessions", "")

	require.Equal(t, http.StatusCreated, rr.Code)
	var resp handler.SessionResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	_, err := uuid.FromString(resp.SessionID)
	assert.NoError(t, err)
}

func TestCartHandler_GetCart(t *testing.T) {
	svc := new(MockCartService)
	summary := cart.Summary{
		Lines:            []cart.Line{{ItemID: "veg-thali", Name: "Veg Thali", UnitPrice: 60, Quantity: 1, IsAvailable: true}},
		TotalPrice:       60,
		TotalItems:       1,
		EstimatedMinutes: 25,
	}
	svc.On("Summary", mock.Anything, testSession).Return(summary)

	rr := doRequest(newCartRouter(svc), http.MethodGet, "/sessions/"+testSession+"/cart", "")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{
		"lines": [{"id":"veg-thali","name":"Veg Thali","category":"","price":60,"quantity":1,"is_available":true}],
		"total_price": 60,
		"total_items": 1,
		"estimated_minutes": 25
	}`, rr.Body.String())
	svc.AssertExpectations(t)
}

func TestCartHandler_InvalidSessionID(t *testing.T) {
	svc := new(MockCartService)

	rr := doRequest(newCartRouter(svc), http.MethodGet, "/sessions/not-a-uuid/cart", "")

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"error":"Invalid session id"}`, rr.Body.String())
	svc.AssertNotCalled(t, "Summary", mock.Anything, mock.Anything)
}

func TestCartHandler_AddItem(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		setupMock   func(svc *MockCartService)
		wantStatus  int
		wantMessage string
	}{
		{
			name: "added",
			body: `{"item_id":"poha","variant":"Plain"}`,
			setupMock: func(svc *MockCartService) {
				line := cart.Line{ItemID: "poha", Name: "Poha", Variant: "Plain", UnitPrice: 20, Quantity: 1}
				svc.On("Add", mock.Anything, testSession, "poha", "Plain").Return(line, nil).Once()
				svc.On("Summary", mock.Anything, testSession).Return(cart.Summary{Lines: []cart.Line{line}, TotalPrice: 20, TotalItems: 1}).Once()
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:        "missing_item_id",
			body:        `{"variant":"Plain"}`,
			setupMock:   func(svc *MockCartService) {},
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Validation failed",
		},
		{
			name:        "unknown_field",
			body:        `{"item_id":"poha","qty":2}`,
			setupMock:   func(svc *MockCartService) {},
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Invalid request payload",
		},
		{
			name: "unknown_item",
			body: `{"item_id":"pizza"}`,
			setupMock: func(svc *MockCartService) {
				svc.On("Add", mock.Anything, testSession, "pizza", "").Return(cart.Line{}, fmt.Errorf("%w: pizza", cart.ErrItemNotFound)).Once()
			},
			wantStatus:  http.StatusNotFound,
			wantMessage: "Menu item not found",
		},
		{
			name: "unavailable_item",
			body: `{"item_id":"lassi"}`,
			setupMock: func(svc *MockCartService) {
				svc.On("Add", mock.Anything, testSession, "lassi", "").Return(cart.Line{}, cart.ErrItemUnavailable).Once()
			},
			wantStatus:  http.StatusUnprocessableEntity,
			wantMessage: "Menu item is currently unavailable",
		},
		{
			name: "variant_required",
			body: `{"item_id":"poha"}`,
			setupMock: func(svc *MockCartService) {
				svc.On("Add", mock.Anything, testSession, "poha", "").Return(cart.Line{}, cart.ErrVariantRequired).Once()
			},
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Choose a variant for this item",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockCartService)
			tt.setupMock(svc)

			rr := doRequest(newCartRouter(svc), http.MethodPost, "/sessions/"+testSession+"/cart/items", tt.body)

			assert.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantMessage != "" {
				var resp map[string]any
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
				assert.Equal(t, tt.wantMessage, resp["error"])
			} else {
				var resp handler.AddItemResponse
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
				assert.Equal(t, "Plain", resp.Line.Variant)
				assert.Equal(t, 20, resp.Cart.TotalPrice)
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestCartHandler_UpdateItem(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		setupMock  func(svc *MockCartService)
		wantStatus int
	}{
		{
			name: "set_quantity",
			body: `{"quantity":3}`,
			setupMock: func(svc *MockCartService) {
				svc.On("UpdateQuantity", mock.Anything, testSession, "milk-tea", "", 3).Return(nil).Once()
				svc.On("Summary", mock.Anything, testSession).Return(cart.Summary{}).Once()
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "zero_removes",
			body: `{"quantity":0,"variant":"Plain"}`,
			setupMock: func(svc *MockCartService) {
				svc.On("UpdateQuantity", mock.Anything, testSession, "milk-tea", "Plain", 0).Return(nil).Once()
				svc.On("Summary", mock.Anything, testSession).Return(cart.Summary{}).Once()
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "large_quantity",
			body: `{"quantity":250}`,
			setupMock: func(svc *MockCartService) {
				svc.On("UpdateQuantity", mock.Anything, testSession, "milk-tea", "", 250).Return(nil).Once()
				svc.On("Summary", mock.Anything, testSession).Return(cart.Summary{}).Once()
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "quantity_missing",
			body:       `{}`,
			setupMock:  func(svc *MockCartService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "negative_quantity",
			body:       `{"quantity":-1}`,
			setupMock:  func(svc *MockCartService) {},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockCartService)
			tt.setupMock(svc)

			rr := doRequest(newCartRouter(svc), http.MethodPut, "/sessions/"+testSession+"/cart/items/milk-tea", tt.body)

			assert.Equal(t, tt.wantStatus, rr.Code)
			svc.AssertExpectations(t)
		})
	}
}

func TestCartHandler_ClearCart(t *testing.T) {
	svc := new(MockCartService)
	svc.On("Clear", mock.Anything, testSession).Return().Once()

	rr := doRequest(newCartRouter(svc), http.MethodDelete, "/sessions/"+testSession+"/cart", "")

	assert.Equal(t, http.StatusNoContent, rr.Code)
	svc.AssertExpectations(t)
}

package router

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"decor-shop/internal/auth"
	"decor-shop/internal/handler"
	"decor-shop/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProducts struct{}

func (stubProducts) List(context.Context, model.ProductFilter) ([]model.Product, error) {
	return []model.Product{{ID: "LAMP-1", Name: "Brass Lamp"}}, nil
}

func (stubProducts) GetByID(_ context.Context, id string) (*model.Product, error) {
	return &model.Product{ID: id}, nil
}

func (stubProducts) GetRelated(context.Context, string, int) ([]model.Product, error) {
	return []model.Product{}, nil
}

func (stubProducts) Create(_ context.Context, req *model.ProductRequest) (*model.Product, error) {
	return &model.Product{ID: req.ID}, nil
}

func (stubProducts) Update(_ context.Context, id string, _ *model.ProductRequest) (*model.Product, error) {
	return &model.Product{ID: id}, nil
}

type stubCart struct{}

func (stubCart) GetCart(context.Context, uuid.UUID) (*model.CartResponse, error) {
	return &model.CartResponse{Items: []model.CartLine{}}, nil
}

func (stubCart) AddItem(context.Context, uuid.UUID, *model.CartItemRequest) (*model.CartResponse, error) {
	return &model.CartResponse{}, nil
}

func (stubCart) SetQuantity(context.Context, uuid.UUID, string, int) (*model.CartResponse, error) {
	return &model.CartResponse{}, nil
}

func (stubCart) RemoveItem(context.Context, uuid.UUID, string) (*model.CartResponse, error) {
	return &model.CartResponse{}, nil
}

func (stubCart) Clear(context.Context, uuid.UUID) error { return nil }

type stubOrders struct {
	updated []string
}

func (s *stubOrders) CreateOrder(context.Context, uuid.UUID, *model.OrderRequest) (*model.OrderResponse, error) {
	return nil, model.ErrEmptyCart
}

func (s *stubOrders) GetByID(_ context.Context, _ auth.Identity, id uuid.UUID) (*model.OrderResponse, error) {
	return &model.OrderResponse{Order: model.Order{ID: id}}, nil
}

func (s *stubOrders) List(context.Context, auth.Identity, model.OrderFilter) ([]model.Order, error) {
	return []model.Order{}, nil
}

func (s *stubOrders) UpdateStatus(_ context.Context, id uuid.UUID, status string) (*model.OrderResponse, error) {
	s.updated = append(s.updated, status)
	return &model.OrderResponse{Order: model.Order{ID: id, Status: model.OrderStatus(status)}}, nil
}

func newTestRouter(t *testing.T) (http.Handler, *auth.TokenManager, *stubOrders) {
	t.Helper()

	logger := zerolog.Nop()
	tokens := auth.NewTokenManager("router-secret", "decor-shop")
	orders := &stubOrders{}

	h := Handlers{
		Product: handler.NewProductHandler(stubProducts{}, logger),
		Cart:    handler.NewCartHandler(stubCart{}, logger),
		Order:   handler.NewOrderHandler(orders, logger),
		Health:  handler.NewHealthHandler(nil, logger),
	}

	metricsHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("# metrics"))
	})

	return New(h, Options{Tokens: tokens, MetricsHandler: metricsHandler}, logger), tokens, orders
}

func bearer(t *testing.T, tokens *auth.TokenManager, role auth.Role) string {
	t.Helper()
	token, err := tokens.Issue(auth.Identity{UserID: uuid.New(), Role: role}, time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestRouter_Routes(t *testing.T) {
	r, tokens, _ := newTestRouter(t)
	customer := bearer(t, tokens, auth.RoleCustomer)
	admin := bearer(t, tokens, auth.RoleAdmin)
	orderPath := "/api/orders/" + uuid.NewString()

	tests := []struct {
		name           string
		method         string
		path           string
		body           string
		auth           string
		expectedStatus int
		expectedCode   string
	}{
		{name: "Health", method: http.MethodGet, path: "/health", expectedStatus: http.StatusOK},
		{name: "Metrics", method: http.MethodGet, path: "/metrics", expectedStatus: http.StatusOK},
		{name: "Public product list", method: http.MethodGet, path: "/api/products", expectedStatus: http.StatusOK},
		{name: "Public product detail", method: http.MethodGet, path: "/api/products/LAMP-1", expectedStatus: http.StatusOK},
		{name: "Public related products", method: http.MethodGet, path: "/api/products/LAMP-1/related", expectedStatus: http.StatusOK},
		{name: "Product create needs token", method: http.MethodPost, path: "/api/products", body: `{}`, expectedStatus: http.StatusUnauthorized, expectedCode: model.ErrCodeUnauthorised},
		{name: "Product create needs admin", method: http.MethodPost, path: "/api/products", body: `{}`, auth: customer, expectedStatus: http.StatusForbidden, expectedCode: model.ErrCodeForbidden},
		{name: "Product update as admin", method: http.MethodPut, path: "/api/products/LAMP-1", body: `{"name":"Lamp"}`, auth: admin, expectedStatus: http.StatusOK},
		{name: "Cart needs token", method: http.MethodGet, path: "/api/cart", expectedStatus: http.StatusUnauthorized, expectedCode: model.ErrCodeUnauthorised},
		{name: "Cart with token", method: http.MethodGet, path: "/api/cart", auth: customer, expectedStatus: http.StatusOK},
		{name: "Cart item update", method: http.MethodPut, path: "/api/cart/items/LAMP-1", body: `{"quantity":2}`, auth: customer, expectedStatus: http.StatusOK},
		{name: "Cart clear", method: http.MethodDelete, path: "/api/cart", auth: customer, expectedStatus: http.StatusNoContent},
		{name: "Checkout with empty cart", method: http.MethodPost, path: "/api/orders", body: `{"paymentMethod":"card"}`, auth: customer, expectedStatus: http.StatusBadRequest, expectedCode: model.ErrCodeEmptyCart},
		{name: "Order detail", method: http.MethodGet, path: orderPath, auth: customer, expectedStatus: http.StatusOK},
		{name: "Status update needs admin", method: http.MethodPatch, path: orderPath + "/status", body: `{"status":"SHIPPED"}`, auth: customer, expectedStatus: http.StatusForbidden, expectedCode: model.ErrCodeForbidden},
		{name: "Unknown route", method: http.MethodGet, path: "/api/wishlist", expectedStatus: http.StatusNotFound, expectedCode: model.ErrCodeNotFound},
		{name: "Unsupported method", method: http.MethodDelete, path: "/api/products", expectedStatus: http.StatusMethodNotAllowed, expectedCode: model.ErrCodeMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedCode != "" {
				var resp model.ErrorResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, tt.expectedCode, resp.Error)
				assert.NotEmpty(t, resp.CorrelationID)
			}
		})
	}
}

func TestRouter_AdminStatusUpdate(t *testing.T) {
	r, tokens, orders := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPatch, "/api/orders/"+uuid.NewString()+"/status", strings.NewReader(`{"status":"SHIPPED"}`))
	req.Header.Set("Authorization", bearer(t, tokens, auth.RoleAdmin))
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"SHIPPED"}, orders.updated)
}

func TestRouter_CORSPreflight(t *testing.T) {
	r, _, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/cart", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Authorization")
}

type panickingCart struct{ stubCart }

func (panickingCart) GetCart(context.Context, uuid.UUID) (*model.CartResponse, error) {
	panic("cart store unavailable")
}

func TestRouter_PanicIsRecoveredAndLogged(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	tokens := auth.NewTokenManager("router-secret", "decor-shop")

	r := New(Handlers{
		Product: handler.NewProductHandler(stubProducts{}, logger),
		Cart:    handler.NewCartHandler(panickingCart{}, logger),
		Order:   handler.NewOrderHandler(&stubOrders{}, logger),
		Health:  handler.NewHealthHandler(nil, logger),
	}, Options{Tokens: tokens}, logger)

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	req.Header.Set("Authorization", bearer(t, tokens, auth.RoleCustomer))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var body model.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, model.ErrCodeInternalError, body.Error)

	var access map[string]any
	scanner := bufio.NewScanner(&buf)
	for scanner.Scan() {
		var entry map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry))
		if entry["message"] == "http request" {
			access = entry
		}
	}
	require.NotNil(t, access, "access log line missing for panicking request")
	assert.EqualValues(t, http.StatusInternalServerError, access["status"])
	assert.Equal(t, "/api/cart", access["path"])
	assert.NotEmpty(t, access["request_id"])
}

package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"decor-shop/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) model.ErrorResponse {
	t.Helper()
	var resp model.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestProductHandler_List(t *testing.T) {
	onSale := true

	tests := []struct {
		name           string
		query          string
		expectedFilter *model.ProductFilter
		mockReturn     []model.Product
		mockError      error
		expectedStatus int
		expectedCode   string
	}{
		{
			name:           "Defaults",
			query:          "",
			expectedFilter: &model.ProductFilter{},
			mockReturn:     []model.Product{{ID: "SOFA-1", Price: decimal.NewFromInt(899)}},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Filters and paging",
			query:          "?category=Sofas&onSale=true&limit=5&offset=10",
			expectedFilter: &model.ProductFilter{Category: "Sofas", OnSale: &onSale, Limit: 5, Offset: 10},
			mockReturn:     []model.Product{},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Invalid limit",
			query:          "?limit=abc",
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeInvalidParameter,
		},
		{
			name:           "Invalid onSale",
			query:          "?onSale=maybe",
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeInvalidParameter,
		},
		{
			name:           "Service error is opaque",
			query:          "",
			expectedFilter: &model.ProductFilter{},
			mockError:      errors.New("failed to get products: connection refused"),
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   model.ErrCodeInternalError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockProductService)
			if tt.expectedFilter != nil {
				svc.On("List", mock.Anything, *tt.expectedFilter).Return(tt.mockReturn, tt.mockError)
			}

			h := NewProductHandler(svc, zerolog.Nop())
			req := httptest.NewRequest(http.MethodGet, "/api/products"+tt.query, nil)
			rec := httptest.NewRecorder()

			h.List(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedCode != "" {
				resp := decodeError(t, rec)
				assert.Equal(t, tt.expectedCode, resp.Error)
				assert.NotContains(t, resp.Message, "connection refused")
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestProductHandler_GetByID(t *testing.T) {
	product := &model.Product{ID: "SOFA-1", Name: "Linen Sofa", Price: decimal.RequireFromString("899.50")}

	svc := new(MockProductService)
	svc.On("GetByID", mock.Anything, "SOFA-1").Return(product, nil)
	svc.On("GetByID", mock.Anything, "NOPE").Return(nil, model.ErrProductNotFound)

	h := NewProductHandler(svc, zerolog.Nop())

	rec := httptest.NewRecorder()
	h.GetByID(rec, withURLParams(httptest.NewRequest(http.MethodGet, "/api/products/SOFA-1", nil), map[string]string{"id": "SOFA-1"}))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"price":"899.5"`)

	rec = httptest.NewRecorder()
	h.GetByID(rec, withURLParams(httptest.NewRequest(http.MethodGet, "/api/products/NOPE", nil), map[string]string{"id": "NOPE"}))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, model.ErrCodeProductNotFound, decodeError(t, rec).Error)
}

func TestProductHandler_GetRelated(t *testing.T) {
	svc := new(MockProductService)
	svc.On("GetRelated", mock.Anything, "SOFA-1", 6).Return([]model.Product{{ID: "SOFA-2"}}, nil)

	h := NewProductHandler(svc, zerolog.Nop())
	rec := httptest.NewRecorder()
	req := withURLParams(httptest.NewRequest(http.MethodGet, "/api/products/SOFA-1/related?limit=6", nil), map[string]string{"id": "SOFA-1"})

	h.GetRelated(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var products []model.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &products))
	assert.Len(t, products, 1)
}

func TestProductHandler_Create(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		mockReturn     *model.Product
		mockError      error
		callsService   bool
		expectedStatus int
		expectedCode   string
	}{
		{
			name:           "Created",
			body:           `{"id":"RUG-1","name":"Wool Rug","category":"Rugs","price":"240","stock":2}`,
			mockReturn:     &model.Product{ID: "RUG-1"},
			callsService:   true,
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "Malformed JSON",
			body:           `{"id":`,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeInvalidJSON,
		},
		{
			name:           "Validation failure",
			body:           `{"id":"RUG-1","name":"Wool Rug","category":"Rugs","price":"-1"}`,
			mockError:      model.NewInvalidProductError("Price cannot be negative"),
			callsService:   true,
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeInvalidProduct,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockProductService)
			if tt.callsService {
				svc.On("Create", mock.Anything, mock.AnythingOfType("*model.ProductRequest")).Return(tt.mockReturn, tt.mockError)
			}

			h := NewProductHandler(svc, zerolog.Nop())
			rec := httptest.NewRecorder()
			h.Create(rec, httptest.NewRequest(http.MethodPost, "/api/products", strings.NewReader(tt.body)))

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, decodeError(t, rec).Error)
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestProductHandler_Update(t *testing.T) {
	svc := new(MockProductService)
	svc.On("Update", mock.Anything, "SOFA-1", mock.MatchedBy(func(req *model.ProductRequest) bool {
		return req.Stock == 9 && req.Price.Equal(decimal.NewFromInt(799))
	})).Return(&model.Product{ID: "SOFA-1", Stock: 9}, nil)

	h := NewProductHandler(svc, zerolog.Nop())
	rec := httptest.NewRecorder()
	req := withURLParams(
		httptest.NewRequest(http.MethodPut, "/api/products/SOFA-1", strings.NewReader(`{"name":"Linen Sofa","category":"Sofas","price":"799","stock":9}`)),
		map[string]string{"id": "SOFA-1"},
	)

	h.Update(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

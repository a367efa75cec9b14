package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"decor-store/internal/model"
	"decor-store/internal/validation"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestProductHandler_List(t *testing.T) {
	logger := zerolog.Nop()

	testProducts := []model.Product{
		{ID: 1, Name: "Velvet Damask", Type: model.ProductTypeWallpaper, Price: decimal.NewFromInt(450000), Stock: 12},
		{ID: 2, Name: "Jute Runner", Type: model.ProductTypeRug, Price: decimal.NewFromInt(890000), Stock: 3},
	}

	tests := []struct {
		name           string
		queryParams    string
		expectFilter   model.ProductFilter
		mockReturn     []model.Product
		mockError      error
		expectedStatus int
		expectService  bool
		expectField    string
	}{
		{
			name:           "No filters",
			mockReturn:     testProducts,
			expectedStatus: http.StatusOK,
			expectService:  true,
		},
		{
			name:           "All filters",
			queryParams:    "?type=rug&room=bedroom&color=%23AABBCC&search=jute&newArrival=true",
			expectFilter:   model.ProductFilter{Type: "rug", Room: "bedroom", Color: "#AABBCC", Search: "jute", NewArrival: true},
			mockReturn:     testProducts[1:],
			expectedStatus: http.StatusOK,
			expectService:  true,
		},
		{
			name:           "Best sellers",
			queryParams:    "?bestSeller=1",
			expectFilter:   model.ProductFilter{BestSeller: true},
			mockReturn:     []model.Product{},
			expectedStatus: http.StatusOK,
			expectService:  true,
		},
		{
			name:           "Unknown type",
			queryParams:    "?type=curtain",
			expectedStatus: http.StatusBadRequest,
			expectField:    "type",
		},
		{
			name:           "Malformed colour",
			queryParams:    "?color=red",
			expectedStatus: http.StatusBadRequest,
			expectField:    "color",
		},
		{
			name:           "Malformed flag",
			queryParams:    "?newArrival=maybe",
			expectedStatus: http.StatusBadRequest,
			expectField:    "newArrival",
		},
		{
			name:           "Service internal error",
			mockError:      errors.New("database connection failed"),
			expectedStatus: http.StatusInternalServerError,
			expectService:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockProductService)
			handler := NewProductHandler(mockService, validation.New(), logger)

			if tt.expectService {
				mockService.On("List", mock.Anything, tt.expectFilter).Return(tt.mockReturn, tt.mockError)
			}

			req := httptest.NewRequest(http.MethodGet, "/api/products"+tt.queryParams, nil)
			w := httptest.NewRecorder()

			handler.List(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			switch {
			case tt.expectedStatus == http.StatusOK:
				var got []model.Product
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
				assert.Len(t, got, len(tt.mockReturn))
			case tt.expectField != "":
				var resp model.ErrorResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, tt.expectField, resp.Field)
				assert.NotEmpty(t, resp.Message)
			}

			if tt.expectService {
				mockService.AssertExpectations(t)
			} else {
				mockService.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestProductHandler_GetByID(t *testing.T) {
	logger := zerolog.Nop()

	testProduct := &model.ProductWithVariants{
		Product: model.Product{ID: 7, Name: "Velvet Damask", Type: model.ProductTypeWallpaper, Price: decimal.NewFromInt(450000)},
		Variants: []model.ProductVariant{
			{ID: 70, ProductID: 7, Name: "Emerald", Price: decimal.NewFromInt(450000), Stock: 4},
		},
	}

	tests := []struct {
		name           string
		id             string
		mockReturn     *model.ProductWithVariants
		mockError      error
		expectedStatus int
		expectService  bool
		expectMessage  string
	}{
		{name: "Success", id: "7", mockReturn: testProduct, expectedStatus: http.StatusOK, expectService: true},
		{
			name:           "Product not found",
			id:             "999",
			mockError:      model.ErrProductNotFound,
			expectedStatus: http.StatusNotFound,
			expectService:  true,
			expectMessage:  "Product not found",
		},
		{name: "Non-numeric ID", id: "abc", expectedStatus: http.StatusBadRequest, expectMessage: "Invalid product ID"},
		{name: "Zero ID", id: "0", expectedStatus: http.StatusBadRequest, expectMessage: "Invalid product ID"},
		{
			name:           "Service internal error",
			id:             "7",
			mockError:      errors.New("database connection failed"),
			expectedStatus: http.StatusInternalServerError,
			expectService:  true,
			expectMessage:  "Internal Server Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockProductService)
			handler := NewProductHandler(mockService, validation.New(), logger)

			if tt.expectService {
				mockService.On("GetByID", mock.Anything, mock.AnythingOfType("int64")).Return(tt.mockReturn, tt.mockError)
			}

			req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/products/"+tt.id, nil), "id", tt.id)
			w := httptest.NewRecorder()

			handler.GetByID(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.expectMessage != "" {
				var resp model.ErrorResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, tt.expectMessage, resp.Message)
			} else {
				var got model.ProductWithVariants
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
				assert.Equal(t, int64(7), got.ID)
				require.Len(t, got.Variants, 1)
				assert.Equal(t, "Emerald", got.Variants[0].Name)
			}

			if tt.expectService {
				mockService.AssertExpectations(t)
			}
		})
	}
}

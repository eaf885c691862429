package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	billingapp "github.com/billing/backend/internal/application/billing"
	"github.com/billing/backend/internal/domain/billing"
	"github.com/billing/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupProductHandler(productRepo *MockProductRepository) *ProductHandler {
	return NewProductHandler(billingapp.NewProductService(productRepo))
}

func TestProductHandler_Create_Success(t *testing.T) {
	productRepo := new(MockProductRepository)
	handler := setupProductHandler(productRepo)

	productRepo.On("Save", mock.Anything, mock.AnythingOfType("*billing.Product")).Return(nil)

	router := setupTestRouter()
	router.POST("/billing/products", handler.Create)

	body, _ := json.Marshal(map[string]interface{}{
		"name":        "Meeting Room A",
		"description": "Large room on the third floor",
		"rule": map[string]interface{}{
			"type":     "hourly",
			"price_per_hour": "100",
			"rounding_mode":  "up",
		},
		"free_minutes": 15,
	})
	req := httptest.NewRequest(http.MethodPost, "/billing/products", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Success bool                       `json:"success"`
		Data    billingapp.ProductResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "Meeting Room A", resp.Data.Name)
	assert.Equal(t, 15, resp.Data.FreeMinutes)
	assert.True(t, resp.Data.Enabled)
	productRepo.AssertExpectations(t)
}

func TestProductHandler_Create_InvalidRule(t *testing.T) {
	productRepo := new(MockProductRepository)
	handler := setupProductHandler(productRepo)

	router := setupTestRouter()
	router.POST("/billing/products", handler.Create)

	body, _ := json.Marshal(map[string]interface{}{
		"name": "Meeting Room A",
		"rule": map[string]interface{}{
			"type": "no-such-rule",
		},
	})
	req := httptest.NewRequest(http.MethodPost, "/billing/products", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	productRepo.AssertNotCalled(t, "Save")
}

func TestProductHandler_Create_InvalidJSON(t *testing.T) {
	handler := setupProductHandler(new(MockProductRepository))

	router := setupTestRouter()
	router.POST("/billing/products", handler.Create)

	req := httptest.NewRequest(http.MethodPost, "/billing/products", bytes.NewBufferString("invalid json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProductHandler_GetByID_Success(t *testing.T) {
	productRepo := new(MockProductRepository)
	handler := setupProductHandler(productRepo)

	product := meetingRoomProduct(t)
	productRepo.On("FindByID", mock.Anything, product.ID).Return(product, nil)

	router := setupTestRouter()
	router.GET("/billing/products/:id", handler.GetByID)

	req := httptest.NewRequest(http.MethodGet, "/billing/products/"+product.ID.String(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data billingapp.ProductResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, product.ID, resp.Data.ID)
	assert.Equal(t, "hourly", resp.Data.Rule["type"])
}

func TestProductHandler_GetByID_NotFound(t *testing.T) {
	productRepo := new(MockProductRepository)
	handler := setupProductHandler(productRepo)

	productID := uuid.New()
	productRepo.On("FindByID", mock.Anything, productID).Return(nil, shared.ErrNotFound)

	router := setupTestRouter()
	router.GET("/billing/products/:id", handler.GetByID)

	req := httptest.NewRequest(http.MethodGet, "/billing/products/"+productID.String(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProductHandler_GetByID_InvalidID(t *testing.T) {
	handler := setupProductHandler(new(MockProductRepository))

	router := setupTestRouter()
	router.GET("/billing/products/:id", handler.GetByID)

	req := httptest.NewRequest(http.MethodGet, "/billing/products/not-a-uuid", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProductHandler_List(t *testing.T) {
	productRepo := new(MockProductRepository)
	handler := setupProductHandler(productRepo)

	product := meetingRoomProduct(t)
	productRepo.On("FindAll", mock.Anything, mock.AnythingOfType("shared.Filter")).Return([]billing.Product{*product}, nil)
	productRepo.On("Count", mock.Anything, mock.AnythingOfType("shared.Filter")).Return(int64(1), nil)

	router := setupTestRouter()
	router.GET("/billing/products", handler.List)

	req := httptest.NewRequest(http.MethodGet, "/billing/products?enabled=true&page=1&page_size=10", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []billingapp.ProductResponse `json:"data"`
		Meta struct {
			Total      int64 `json:"total"`
			TotalPages int   `json:"total_pages"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, int64(1), resp.Meta.Total)
	assert.Equal(t, 1, resp.Meta.TotalPages)
}

func TestProductHandler_Update_Success(t *testing.T) {
	productRepo := new(MockProductRepository)
	handler := setupProductHandler(productRepo)

	product := meetingRoomProduct(t)
	productRepo.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	productRepo.On("Save", mock.Anything, product).Return(nil)

	router := setupTestRouter()
	router.PUT("/billing/products/:id", handler.Update)

	body, _ := json.Marshal(map[string]interface{}{
		"name":         "Meeting Room B",
		"free_minutes": 30,
	})
	req := httptest.NewRequest(http.MethodPut, "/billing/products/"+product.ID.String(), bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data billingapp.ProductResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Meeting Room B", resp.Data.Name)
	assert.Equal(t, 30, resp.Data.FreeMinutes)
}

func TestProductHandler_Disable(t *testing.T) {
	productRepo := new(MockProductRepository)
	handler := setupProductHandler(productRepo)

	product := meetingRoomProduct(t)
	productRepo.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	productRepo.On("Save", mock.Anything, product).Return(nil)

	router := setupTestRouter()
	router.POST("/billing/products/:id/disable", handler.Disable)

	req := httptest.NewRequest(http.MethodPost, "/billing/products/"+product.ID.String()+"/disable", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data billingapp.ProductResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Data.Enabled)
}

func TestProductHandler_Delete(t *testing.T) {
	productRepo := new(MockProductRepository)
	handler := setupProductHandler(productRepo)

	product := meetingRoomProduct(t)
	productID := product.ID
	productRepo.On("FindByID", mock.Anything, productID).Return(product, nil)
	productRepo.On("Delete", mock.Anything, productID).Return(nil)

	router := setupTestRouter()
	router.DELETE("/billing/products/:id", handler.Delete)

	req := httptest.NewRequest(http.MethodDelete, "/billing/products/"+productID.String(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	productRepo.AssertExpectations(t)
}

func TestProductHandler_Delete_NotFound(t *testing.T) {
	productRepo := new(MockProductRepository)
	handler := setupProductHandler(productRepo)

	productID := uuid.New()
	productRepo.On("FindByID", mock.Anything, productID).Return(nil, shared.ErrNotFound)

	router := setupTestRouter()
	router.DELETE("/billing/products/:id", handler.Delete)

	req := httptest.NewRequest(http.MethodDelete, "/billing/products/"+productID.String(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

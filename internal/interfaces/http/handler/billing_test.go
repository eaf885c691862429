package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	billingapp "github.com/billing/backend/internal/application/billing"
	"github.com/billing/backend/internal/domain/billing"
	"github.com/billing/backend/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockProductRepository implements billing.ProductRepository for testing
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Product), args.Error(1)
}

func (m *MockProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]billing.Product, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]billing.Product), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, product *billing.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockOrderRepository implements billing.OrderRepository for testing
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByOrderCode(ctx context.Context, orderCode string) (*billing.Order, error) {
	args := m.Called(ctx, orderCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Order), args.Error(1)
}

func (m *MockOrderRepository) FindActiveByUser(ctx context.Context, userID string) ([]billing.Order, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]billing.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByUser(ctx context.Context, userID string, filter shared.Filter) ([]billing.Order, error) {
	args := m.Called(ctx, userID, filter)
	return args.Get(0).([]billing.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByStatus(ctx context.Context, status billing.OrderStatus, filter shared.Filter) ([]billing.Order, error) {
	args := m.Called(ctx, status, filter)
	return args.Get(0).([]billing.Order), args.Error(1)
}

func (m *MockOrderRepository) Save(ctx context.Context, order *billing.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) SaveWithLock(ctx context.Context, order *billing.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// testClock returns a preset instant
type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time {
	return c.now
}

// noopPublisher discards all published events
type noopPublisher struct{}

func (noopPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	return nil
}

var handlerTestNow = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func setupBillingHandler(productRepo *MockProductRepository, orderRepo *MockOrderRepository) *BillingHandler {
	service := billingapp.NewBillingService(productRepo, orderRepo, &testClock{now: handlerTestNow}, noopPublisher{})
	return NewBillingHandler(service)
}

func meetingRoomProduct(t *testing.T) *billing.Product {
	t.Helper()
	rule := billing.NewHourlyPricingRule(decimal.RequireFromString("100"), billing.RoundingUp)
	product, err := billing.NewProduct("Meeting Room A", rule)
	require.NoError(t, err)
	return product
}

func activeOrder(t *testing.T, product *billing.Product) *billing.Order {
	t.Helper()
	order, err := billing.NewOrder(product.ID, "user-1", "ORD-20240501093000-abc123", handlerTestNow.Add(-time.Hour), decimal.Zero)
	require.NoError(t, err)
	return order
}

func TestBillingHandler_Start_Success(t *testing.T) {
	productRepo := new(MockProductRepository)
	orderRepo := new(MockOrderRepository)
	handler := setupBillingHandler(productRepo, orderRepo)

	product := meetingRoomProduct(t)
	productRepo.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	orderRepo.On("Save", mock.Anything, mock.AnythingOfType("*billing.Order")).Return(nil)

	router := setupTestRouter()
	router.POST("/billing/orders", handler.Start)

	body, _ := json.Marshal(map[string]interface{}{
		"product_id": product.ID.String(),
		"user_id":    "user-1",
	})
	req := httptest.NewRequest(http.MethodPost, "/billing/orders", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Success bool                     `json:"success"`
		Data    billingapp.OrderResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "user-1", resp.Data.UserID)
	assert.Equal(t, string(billing.OrderStatusActive), resp.Data.Status)
	orderRepo.AssertExpectations(t)
}

func TestBillingHandler_Start_ProductNotFound(t *testing.T) {
	productRepo := new(MockProductRepository)
	orderRepo := new(MockOrderRepository)
	handler := setupBillingHandler(productRepo, orderRepo)

	productID := uuid.New()
	productRepo.On("FindByID", mock.Anything, productID).Return(nil, shared.ErrNotFound)

	router := setupTestRouter()
	router.POST("/billing/orders", handler.Start)

	body, _ := json.Marshal(map[string]interface{}{
		"product_id": productID.String(),
		"user_id":    "user-1",
	})
	req := httptest.NewRequest(http.MethodPost, "/billing/orders", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	orderRepo.AssertNotCalled(t, "Save")
}

func TestBillingHandler_Start_InvalidJSON(t *testing.T) {
	handler := setupBillingHandler(new(MockProductRepository), new(MockOrderRepository))

	router := setupTestRouter()
	router.POST("/billing/orders", handler.Start)

	req := httptest.NewRequest(http.MethodPost, "/billing/orders", bytes.NewBufferString("not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBillingHandler_Freeze_Success(t *testing.T) {
	productRepo := new(MockProductRepository)
	orderRepo := new(MockOrderRepository)
	handler := setupBillingHandler(productRepo, orderRepo)

	product := meetingRoomProduct(t)
	order := activeOrder(t, product)
	orderRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)
	productRepo.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	orderRepo.On("SaveWithLock", mock.Anything, order).Return(nil)

	router := setupTestRouter()
	router.POST("/billing/orders/:id/freeze", handler.Freeze)

	req := httptest.NewRequest(http.MethodPost, "/billing/orders/"+order.ID.String()+"/freeze", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data billingapp.OrderResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, string(billing.OrderStatusFrozen), resp.Data.Status)
}

func TestBillingHandler_Freeze_CancelledOrder(t *testing.T) {
	productRepo := new(MockProductRepository)
	orderRepo := new(MockOrderRepository)
	handler := setupBillingHandler(productRepo, orderRepo)

	product := meetingRoomProduct(t)
	order := activeOrder(t, product)
	order.Status = billing.OrderStatusCancelled
	orderRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)

	router := setupTestRouter()
	router.POST("/billing/orders/:id/freeze", handler.Freeze)

	req := httptest.NewRequest(http.MethodPost, "/billing/orders/"+order.ID.String()+"/freeze", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	orderRepo.AssertNotCalled(t, "SaveWithLock")
}

func TestBillingHandler_Freeze_InvalidID(t *testing.T) {
	handler := setupBillingHandler(new(MockProductRepository), new(MockOrderRepository))

	router := setupTestRouter()
	router.POST("/billing/orders/:id/freeze", handler.Freeze)

	req := httptest.NewRequest(http.MethodPost, "/billing/orders/not-a-uuid/freeze", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBillingHandler_End_Success(t *testing.T) {
	productRepo := new(MockProductRepository)
	orderRepo := new(MockOrderRepository)
	handler := setupBillingHandler(productRepo, orderRepo)

	product := meetingRoomProduct(t)
	order := activeOrder(t, product)
	orderRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)
	productRepo.On("FindByID", mock.Anything, product.ID).Return(product, nil)
	orderRepo.On("SaveWithLock", mock.Anything, order).Return(nil)

	router := setupTestRouter()
	router.POST("/billing/orders/:id/end", handler.End)

	req := httptest.NewRequest(http.MethodPost, "/billing/orders/"+order.ID.String()+"/end", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data billingapp.EndBillingResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, string(billing.OrderStatusCompleted), resp.Data.Order.Status)
	// One full hour at 100/hour
	assert.True(t, resp.Data.Price.FinalPrice.Equal(decimal.RequireFromString("100")))
}

func TestBillingHandler_GetCurrentPrice(t *testing.T) {
	productRepo := new(MockProductRepository)
	orderRepo := new(MockOrderRepository)
	handler := setupBillingHandler(productRepo, orderRepo)

	product := meetingRoomProduct(t)
	order := activeOrder(t, product)
	orderRepo.On("FindByID", mock.Anything, order.ID).Return(order, nil)
	productRepo.On("FindByID", mock.Anything, product.ID).Return(product, nil)

	router := setupTestRouter()
	router.GET("/billing/orders/:id/price", handler.GetCurrentPrice)

	req := httptest.NewRequest(http.MethodGet, "/billing/orders/"+order.ID.String()+"/price", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data billingapp.PriceResultResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Data.FinalPrice.Equal(decimal.RequireFromString("100")))
	// Pricing a running session must not persist anything
	orderRepo.AssertNotCalled(t, "Save")
	orderRepo.AssertNotCalled(t, "SaveWithLock")
}

func TestBillingHandler_GetByID_NotFound(t *testing.T) {
	productRepo := new(MockProductRepository)
	orderRepo := new(MockOrderRepository)
	handler := setupBillingHandler(productRepo, orderRepo)

	orderID := uuid.New()
	orderRepo.On("FindByID", mock.Anything, orderID).Return(nil, shared.ErrNotFound)

	router := setupTestRouter()
	router.GET("/billing/orders/:id", handler.GetByID)

	req := httptest.NewRequest(http.MethodGet, "/billing/orders/"+orderID.String(), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBillingHandler_GetByCode(t *testing.T) {
	productRepo := new(MockProductRepository)
	orderRepo := new(MockOrderRepository)
	handler := setupBillingHandler(productRepo, orderRepo)

	product := meetingRoomProduct(t)
	order := activeOrder(t, product)
	orderRepo.On("FindByOrderCode", mock.Anything, order.OrderCode).Return(order, nil)

	router := setupTestRouter()
	router.GET("/billing/orders/code/:code", handler.GetByCode)

	req := httptest.NewRequest(http.MethodGet, "/billing/orders/code/"+order.OrderCode, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data billingapp.OrderResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, order.OrderCode, resp.Data.OrderCode)
}

func TestBillingHandler_ListActive(t *testing.T) {
	productRepo := new(MockProductRepository)
	orderRepo := new(MockOrderRepository)
	handler := setupBillingHandler(productRepo, orderRepo)

	product := meetingRoomProduct(t)
	order := activeOrder(t, product)
	orderRepo.On("FindActiveByUser", mock.Anything, "user-1").Return([]billing.Order{*order}, nil)

	router := setupTestRouter()
	router.GET("/billing/orders/active", handler.ListActive)

	req := httptest.NewRequest(http.MethodGet, "/billing/orders/active", nil)
	req.Header.Set("X-User-ID", "user-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []billingapp.OrderResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, order.OrderCode, resp.Data[0].OrderCode)
}

func TestBillingHandler_ListActive_MissingUserHeader(t *testing.T) {
	handler := setupBillingHandler(new(MockProductRepository), new(MockOrderRepository))

	router := setupTestRouter()
	router.GET("/billing/orders/active", handler.ListActive)

	req := httptest.NewRequest(http.MethodGet, "/billing/orders/active", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBillingHandler_List(t *testing.T) {
	productRepo := new(MockProductRepository)
	orderRepo := new(MockOrderRepository)
	handler := setupBillingHandler(productRepo, orderRepo)

	product := meetingRoomProduct(t)
	order := activeOrder(t, product)
	orderRepo.On("FindByUser", mock.Anything, "user-1", mock.AnythingOfType("shared.Filter")).Return([]billing.Order{*order}, nil)
	orderRepo.On("Count", mock.Anything, mock.AnythingOfType("shared.Filter")).Return(int64(1), nil)

	router := setupTestRouter()
	router.GET("/billing/orders", handler.List)

	req := httptest.NewRequest(http.MethodGet, "/billing/orders?status=active&page=1&page_size=10", nil)
	req.Header.Set("X-User-ID", "user-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []billingapp.OrderResponse `json:"data"`
		Meta struct {
			Total int64 `json:"total"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, int64(1), resp.Meta.Total)
}

func TestBillingHandler_List_InvalidStatus(t *testing.T) {
	handler := setupBillingHandler(new(MockProductRepository), new(MockOrderRepository))

	router := setupTestRouter()
	router.GET("/billing/orders", handler.List)

	req := httptest.NewRequest(http.MethodGet, "/billing/orders?status=bogus", nil)
	req.Header.Set("X-User-ID", "user-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

package billing

import (
	"context"
	"sync"
	"time"

	"github.com/billing/backend/internal/domain/billing"
	"github.com/billing/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockProductRepository is a mock implementation of billing.ProductRepository
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

// MockOrderRepository is a mock implementation of billing.OrderRepository
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

// fixedClock returns a preset instant, adjustable between calls
type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	return c.now
}

func (c *fixedClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

// capturingPublisher records every published event for assertions
type capturingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (p *capturingPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *capturingPublisher) EventTypes() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, len(p.events))
	for i, e := range p.events {
		types[i] = e.EventType()
	}
	return types
}

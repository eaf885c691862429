package integration

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/billing/backend/internal/domain/billing"
	"github.com/billing/backend/internal/domain/shared"
	"github.com/billing/backend/internal/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMain runs before any tests and handles cleanup
func TestMain(m *testing.M) {
	code := m.Run()
	CleanupSharedContainer()
	os.Exit(code)
}

func newHourlyProduct(t *testing.T, name string) *billing.Product {
	t.Helper()
	rule := billing.NewHourlyPricingRule(decimal.RequireFromString("100"), billing.RoundingUp)
	product, err := billing.NewProduct(name, rule)
	require.NoError(t, err)
	require.NoError(t, product.SetConstraints(15, nil, nil))
	return product
}

func newActiveOrder(t *testing.T, productID uuid.UUID, userID, code string) *billing.Order {
	t.Helper()
	order, err := billing.NewOrder(productID, userID, code, time.Now().UTC().Add(-time.Hour), decimal.Zero)
	require.NoError(t, err)
	return order
}

func TestBillingProductRepository_SaveAndFind(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	tdb := NewSharedTestDB(t)
	tdb.CleanTables()

	repo := persistence.NewGormBillingProductRepository(tdb.DB)
	ctx := context.Background()

	product := newHourlyProduct(t, "Meeting Room A")
	product.Metadata["floor"] = "3F"
	require.NoError(t, repo.Save(ctx, product))

	found, err := repo.FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, product.Name, found.Name)
	assert.Equal(t, 15, found.FreeMinutes)
	assert.True(t, found.Enabled)
	assert.Equal(t, "3F", found.Metadata["floor"])

	// The pricing rule survives the round trip
	rule, err := found.PricingRule()
	require.NoError(t, err)
	assert.Equal(t, billing.RuleTypeHourly, rule.Serialize().RuleType())
}

func TestBillingProductRepository_FilterByEnabled(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	tdb := NewSharedTestDB(t)
	tdb.CleanTables()

	repo := persistence.NewGormBillingProductRepository(tdb.DB)
	ctx := context.Background()

	enabled := newHourlyProduct(t, "Room Enabled")
	disabled := newHourlyProduct(t, "Room Disabled")
	disabled.Disable()
	require.NoError(t, repo.Save(ctx, enabled))
	require.NoError(t, repo.Save(ctx, disabled))

	filter := shared.Filter{
		Page:     1,
		PageSize: 10,
		Filters:  map[string]interface{}{"enabled": true},
	}
	products, err := repo.FindAll(ctx, filter)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Room Enabled", products[0].Name)

	count, err := repo.Count(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestBillingOrderRepository_Lifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	tdb := NewSharedTestDB(t)
	tdb.CleanTables()

	productRepo := persistence.NewGormBillingProductRepository(tdb.DB)
	orderRepo := persistence.NewGormBillingOrderRepository(tdb.DB)
	ctx := context.Background()

	product := newHourlyProduct(t, "Meeting Room A")
	require.NoError(t, productRepo.Save(ctx, product))

	order := newActiveOrder(t, product.ID, "user-1", "ORD-INT-0001")
	require.NoError(t, orderRepo.Save(ctx, order))

	t.Run("find by order code", func(t *testing.T) {
		found, err := orderRepo.FindByOrderCode(ctx, "ORD-INT-0001")
		require.NoError(t, err)
		assert.Equal(t, order.ID, found.ID)
		assert.Equal(t, billing.OrderStatusActive, found.Status)
	})

	t.Run("find active by user", func(t *testing.T) {
		orders, err := orderRepo.FindActiveByUser(ctx, "user-1")
		require.NoError(t, err)
		require.Len(t, orders, 1)
		assert.Equal(t, order.OrderCode, orders[0].OrderCode)
	})

	t.Run("save with lock bumps version", func(t *testing.T) {
		found, err := orderRepo.FindByID(ctx, order.ID)
		require.NoError(t, err)

		now := time.Now().UTC()
		found.Status = billing.OrderStatusCompleted
		found.EndTime = &now
		amount := decimal.RequireFromString("100")
		found.ActualAmount = &amount

		require.NoError(t, orderRepo.SaveWithLock(ctx, found))
		assert.Equal(t, 2, found.Version)

		reloaded, err := orderRepo.FindByID(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, billing.OrderStatusCompleted, reloaded.Status)
		assert.Equal(t, 2, reloaded.Version)
	})

	t.Run("stale save conflicts", func(t *testing.T) {
		stale, err := orderRepo.FindByID(ctx, order.ID)
		require.NoError(t, err)
		stale.Version = 1 // behind the row version

		stale.Status = billing.OrderStatusCancelled
		err = orderRepo.SaveWithLock(ctx, stale)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	})

	t.Run("completed order no longer active", func(t *testing.T) {
		orders, err := orderRepo.FindActiveByUser(ctx, "user-1")
		require.NoError(t, err)
		assert.Empty(t, orders)
	})
}

func TestBillingOrderRepository_FindByUserPagination(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	tdb := NewSharedTestDB(t)
	tdb.CleanTables()

	productRepo := persistence.NewGormBillingProductRepository(tdb.DB)
	orderRepo := persistence.NewGormBillingOrderRepository(tdb.DB)
	ctx := context.Background()

	product := newHourlyProduct(t, "Meeting Room A")
	require.NoError(t, productRepo.Save(ctx, product))

	for i := 0; i < 5; i++ {
		order, err := billing.NewOrder(product.ID, "user-1", "ORD-PAGE-"+string(rune('A'+i)),
			time.Now().UTC().Add(-time.Duration(i+1)*time.Hour), decimal.Zero)
		require.NoError(t, err)
		require.NoError(t, orderRepo.Save(ctx, order))
	}

	filter := shared.Filter{
		Page:     1,
		PageSize: 3,
		OrderBy:  "start_time",
		OrderDir: "desc",
		Filters:  map[string]interface{}{"user_id": "user-1"},
	}
	orders, err := orderRepo.FindByUser(ctx, "user-1", filter)
	require.NoError(t, err)
	assert.Len(t, orders, 3)

	count, err := orderRepo.Count(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, int64(5), count)

	// Newest session first
	assert.Equal(t, "ORD-PAGE-A", orders[0].OrderCode)
}

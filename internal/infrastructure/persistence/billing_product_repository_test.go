package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/billing/backend/internal/domain/billing"
	"github.com/billing/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockBillingProductRepository creates a GormBillingProductRepository with a mocked SQL connection
func newMockBillingProductRepository(t *testing.T) (*GormBillingProductRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormBillingProductRepository(gormDB), mock, mockDB
}

func billingProductColumns() []string {
	return []string{
		"id", "created_at", "updated_at", "version",
		"name", "description", "rule_data", "free_minutes", "freeze_minutes",
		"min_amount", "max_amount", "enabled", "metadata",
	}
}

func TestGormBillingProductRepository_FindByID(t *testing.T) {
	t.Run("finds existing product and decodes rule JSON", func(t *testing.T) {
		repo, mock, mockDB := newMockBillingProductRepository(t)
		defer mockDB.Close()

		productID := uuid.New()
		now := time.Now()

		rows := sqlmock.NewRows(billingProductColumns()).
			AddRow(productID, now, now, 3,
				"Meeting Room A", "Hourly meeting room", `{"type":"hourly","price_per_hour":"100","rounding_mode":"up"}`,
				15, nil, nil, nil, true, `{"floor":"3F"}`)

		mock.ExpectQuery(`SELECT \* FROM "duration_billing_products" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(productID, 1).
			WillReturnRows(rows)

		product, err := repo.FindByID(context.Background(), productID)

		assert.NoError(t, err)
		require.NotNil(t, product)
		assert.Equal(t, productID, product.ID)
		assert.Equal(t, "Meeting Room A", product.Name)
		assert.Equal(t, 3, product.Version)
		assert.Equal(t, 15, product.FreeMinutes)
		assert.Equal(t, "hourly", product.RuleData["type"])
		assert.Equal(t, "3F", product.Metadata["floor"])

		rule, err := product.PricingRule()
		require.NoError(t, err)
		assert.Equal(t, billing.RuleTypeHourly, rule.Serialize().RuleType())

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrNotFound for missing product", func(t *testing.T) {
		repo, mock, mockDB := newMockBillingProductRepository(t)
		defer mockDB.Close()

		productID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "duration_billing_products" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(productID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		product, err := repo.FindByID(context.Background(), productID)

		assert.Error(t, err)
		assert.Nil(t, product)
		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("tolerates corrupt rule JSON", func(t *testing.T) {
		repo, mock, mockDB := newMockBillingProductRepository(t)
		defer mockDB.Close()

		productID := uuid.New()
		now := time.Now()

		rows := sqlmock.NewRows(billingProductColumns()).
			AddRow(productID, now, now, 1,
				"Broken", "", `{not json`, 0, nil, nil, nil, true, "")

		mock.ExpectQuery(`SELECT \* FROM "duration_billing_products" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(productID, 1).
			WillReturnRows(rows)

		product, err := repo.FindByID(context.Background(), productID)

		assert.NoError(t, err)
		require.NotNil(t, product)
		assert.Nil(t, product.RuleData)
		assert.NotNil(t, product.Metadata)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormBillingProductRepository_FindAll(t *testing.T) {
	t.Run("applies enabled filter and pagination", func(t *testing.T) {
		repo, mock, mockDB := newMockBillingProductRepository(t)
		defer mockDB.Close()

		now := time.Now()
		rows := sqlmock.NewRows(billingProductColumns()).
			AddRow(uuid.New(), now, now, 1,
				"Meeting Room A", "", `{"type":"hourly","price_per_hour":"100","rounding_mode":"up"}`,
				0, nil, nil, nil, true, "{}").
			AddRow(uuid.New(), now, now, 1,
				"Meeting Room B", "", `{"type":"hourly","price_per_hour":"80","rounding_mode":"nearest"}`,
				0, nil, nil, nil, true, "{}")

		mock.ExpectQuery(`SELECT \* FROM "duration_billing_products" WHERE enabled = \$1 ORDER BY created_at DESC LIMIT .*`).
			WithArgs(true, 20).
			WillReturnRows(rows)

		products, err := repo.FindAll(context.Background(), shared.Filter{
			Page:     1,
			PageSize: 20,
			Filters:  map[string]interface{}{"enabled": true},
		})

		assert.NoError(t, err)
		assert.Len(t, products, 2)
		assert.Equal(t, "Meeting Room A", products[0].Name)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ignores sort fields outside the whitelist", func(t *testing.T) {
		repo, mock, mockDB := newMockBillingProductRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "duration_billing_products" ORDER BY created_at DESC`).
			WillReturnRows(sqlmock.NewRows(billingProductColumns()))

		_, err := repo.FindAll(context.Background(), shared.Filter{
			OrderBy: "enabled; DROP TABLE duration_billing_products;--",
		})

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormBillingProductRepository_Delete(t *testing.T) {
	t.Run("deletes existing product", func(t *testing.T) {
		repo, mock, mockDB := newMockBillingProductRepository(t)
		defer mockDB.Close()

		productID := uuid.New()

		mock.ExpectExec(`DELETE FROM "duration_billing_products" WHERE id = \$1`).
			WithArgs(productID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Delete(context.Background(), productID)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrNotFound when nothing deleted", func(t *testing.T) {
		repo, mock, mockDB := newMockBillingProductRepository(t)
		defer mockDB.Close()

		productID := uuid.New()

		mock.ExpectExec(`DELETE FROM "duration_billing_products" WHERE id = \$1`).
			WithArgs(productID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Delete(context.Background(), productID)

		assert.Equal(t, shared.ErrNotFound, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormBillingProductRepository_Count(t *testing.T) {
	t.Run("counts products matching filter", func(t *testing.T) {
		repo, mock, mockDB := newMockBillingProductRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "duration_billing_products" WHERE enabled = \$1`).
			WithArgs(true).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))

		count, err := repo.Count(context.Background(), shared.Filter{
			Filters: map[string]interface{}{"enabled": true},
		})

		assert.NoError(t, err)
		assert.Equal(t, int64(5), count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

package persistence

import (
	"context"
	"errors"

	"github.com/billing/backend/internal/domain/billing"
	"github.com/billing/backend/internal/domain/shared"
	"github.com/billing/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BillingOrderSortFields contains allowed sort fields for billing orders
var BillingOrderSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"order_code":     true,
	"user_id":        true,
	"status":         true,
	"start_time":     true,
	"end_time":       true,
	"prepaid_amount": true,
	"actual_amount":  true,
}

// activeOrderStatuses are the statuses of orders that are still accruing time.
var activeOrderStatuses = []billing.OrderStatus{
	billing.OrderStatusActive,
	billing.OrderStatusFrozen,
	billing.OrderStatusPrepaid,
}

// GormBillingOrderRepository implements billing.OrderRepository using GORM
type GormBillingOrderRepository struct {
	db *gorm.DB
}

// NewGormBillingOrderRepository creates a new GormBillingOrderRepository
func NewGormBillingOrderRepository(db *gorm.DB) *GormBillingOrderRepository {
	return &GormBillingOrderRepository{db: db}
}

// WithTx returns a new repository instance with the given transaction
func (r *GormBillingOrderRepository) WithTx(tx *gorm.DB) *GormBillingOrderRepository {
	return &GormBillingOrderRepository{db: tx}
}

// FindByID finds a billing order by its ID
func (r *GormBillingOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Order, error) {
	var model models.BillingOrderModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByOrderCode finds a billing order by its business code
func (r *GormBillingOrderRepository) FindByOrderCode(ctx context.Context, orderCode string) (*billing.Order, error) {
	var model models.BillingOrderModel
	if err := r.db.WithContext(ctx).Where("order_code = ?", orderCode).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindActiveByUser finds a user's orders that are still accruing time,
// oldest session first.
func (r *GormBillingOrderRepository) FindActiveByUser(ctx context.Context, userID string) ([]billing.Order, error) {
	var orderModels []models.BillingOrderModel
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND status IN ?", userID, activeOrderStatuses).
		Order("start_time ASC").
		Find(&orderModels).Error
	if err != nil {
		return nil, err
	}
	return toDomainOrders(orderModels), nil
}

// FindByUser finds a user's orders matching the filter
func (r *GormBillingOrderRepository) FindByUser(ctx context.Context, userID string, filter shared.Filter) ([]billing.Order, error) {
	var orderModels []models.BillingOrderModel

	query := r.db.WithContext(ctx).
		Model(&models.BillingOrderModel{}).
		Where("user_id = ?", userID)
	query = r.applyFilter(query, filter)

	if err := query.Find(&orderModels).Error; err != nil {
		return nil, err
	}
	return toDomainOrders(orderModels), nil
}

// FindByStatus finds orders in the given status matching the filter
func (r *GormBillingOrderRepository) FindByStatus(ctx context.Context, status billing.OrderStatus, filter shared.Filter) ([]billing.Order, error) {
	var orderModels []models.BillingOrderModel

	query := r.db.WithContext(ctx).
		Model(&models.BillingOrderModel{}).
		Where("status = ?", status)
	query = r.applyFilter(query, filter)

	if err := query.Find(&orderModels).Error; err != nil {
		return nil, err
	}
	return toDomainOrders(orderModels), nil
}

// Save creates or updates a billing order without a version check
func (r *GormBillingOrderRepository) Save(ctx context.Context, order *billing.Order) error {
	var model models.BillingOrderModel
	model.FromDomain(order)
	return r.db.WithContext(ctx).Save(&model).Error
}

// SaveWithLock updates a billing order with optimistic locking. The update
// only applies when the stored version still matches the version the caller
// loaded, so concurrent lifecycle transitions cannot silently overwrite
// each other.
func (r *GormBillingOrderRepository) SaveWithLock(ctx context.Context, order *billing.Order) error {
	currentVersion := order.Version
	order.IncrementVersion()

	var model models.BillingOrderModel
	model.FromDomain(order)

	result := r.db.WithContext(ctx).
		Model(&models.BillingOrderModel{}).
		Where("id = ? AND version = ?", order.ID, currentVersion).
		Updates(map[string]any{
			"status":         model.Status,
			"end_time":       model.EndTime,
			"payment_time":   model.PaymentTime,
			"frozen_at":      model.FrozenAt,
			"frozen_minutes": model.FrozenMinutes,
			"actual_amount":  model.ActualAmount,
			"metadata":       model.MetadataJSON,
			"version":        model.Version,
			"updated_at":     model.UpdatedAt,
		})

	if result.Error != nil {
		order.Version = currentVersion
		return result.Error
	}
	if result.RowsAffected == 0 {
		order.Version = currentVersion

		var count int64
		r.db.WithContext(ctx).Model(&models.BillingOrderModel{}).Where("id = ?", order.ID).Count(&count)
		if count == 0 {
			return shared.ErrNotFound
		}
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Count counts billing orders matching the filter
func (r *GormBillingOrderRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.BillingOrderModel{})
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies all filter options including pagination
func (r *GormBillingOrderRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	// Apply pagination
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	// Apply ordering
	if filter.OrderBy != "" {
		sortField := ValidateSortField(filter.OrderBy, BillingOrderSortFields, "")
		if sortField != "" {
			sortOrder := ValidateSortOrder(filter.OrderDir)
			query = query.Order(sortField + " " + sortOrder)
		} else {
			query = query.Order("start_time DESC")
		}
	} else {
		query = query.Order("start_time DESC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormBillingOrderRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	// Apply search
	if filter.Search != "" {
		search := "%" + filter.Search + "%"
		query = query.Where("order_code ILIKE ? OR user_id ILIKE ?", search, search)
	}

	// Apply custom filters
	for key, value := range filter.Filters {
		switch key {
		case "user_id":
			query = query.Where("user_id = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "product_id":
			query = query.Where("product_id = ?", value)
		case "active":
			if value == true {
				query = query.Where("status IN ?", activeOrderStatuses)
			}
		}
	}

	return query
}

func toDomainOrders(orderModels []models.BillingOrderModel) []billing.Order {
	orders := make([]billing.Order, len(orderModels))
	for i, model := range orderModels {
		orders[i] = *model.ToDomain()
	}
	return orders
}

// Ensure GormBillingOrderRepository implements billing.OrderRepository
var _ billing.OrderRepository = (*GormBillingOrderRepository)(nil)

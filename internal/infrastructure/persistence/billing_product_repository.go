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

// BillingProductSortFields contains allowed sort fields for billing products
var BillingProductSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"name":         true,
	"free_minutes": true,
	"enabled":      true,
}

// GormBillingProductRepository implements billing.ProductRepository using GORM
type GormBillingProductRepository struct {
	db *gorm.DB
}

// NewGormBillingProductRepository creates a new GormBillingProductRepository
func NewGormBillingProductRepository(db *gorm.DB) *GormBillingProductRepository {
	return &GormBillingProductRepository{db: db}
}

// WithTx returns a new repository instance with the given transaction
func (r *GormBillingProductRepository) WithTx(tx *gorm.DB) *GormBillingProductRepository {
	return &GormBillingProductRepository{db: tx}
}

// FindByID finds a billing product by its ID
func (r *GormBillingProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Product, error) {
	var model models.BillingProductModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds all billing products matching the filter
func (r *GormBillingProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]billing.Product, error) {
	var productModels []models.BillingProductModel

	query := r.db.WithContext(ctx).Model(&models.BillingProductModel{})
	query = r.applyFilter(query, filter)

	if err := query.Find(&productModels).Error; err != nil {
		return nil, err
	}

	products := make([]billing.Product, len(productModels))
	for i, model := range productModels {
		products[i] = *model.ToDomain()
	}
	return products, nil
}

// Save creates or updates a billing product
func (r *GormBillingProductRepository) Save(ctx context.Context, product *billing.Product) error {
	var model models.BillingProductModel
	model.FromDomain(product)
	return r.db.WithContext(ctx).Save(&model).Error
}

// Delete deletes a billing product
func (r *GormBillingProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.BillingProductModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts billing products matching the filter
func (r *GormBillingProductRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.BillingProductModel{})
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies all filter options including pagination
func (r *GormBillingProductRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	// Apply pagination
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	// Apply ordering
	if filter.OrderBy != "" {
		sortField := ValidateSortField(filter.OrderBy, BillingProductSortFields, "")
		if sortField != "" {
			sortOrder := ValidateSortOrder(filter.OrderDir)
			query = query.Order(sortField + " " + sortOrder)
		} else {
			query = query.Order("created_at DESC")
		}
	} else {
		query = query.Order("created_at DESC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormBillingProductRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	// Apply search
	if filter.Search != "" {
		search := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR description ILIKE ?", search, search)
	}

	// Apply custom filters
	for key, value := range filter.Filters {
		switch key {
		case "enabled":
			query = query.Where("enabled = ?", value)
		case "name":
			query = query.Where("name = ?", value)
		}
	}

	return query
}

// Ensure GormBillingProductRepository implements billing.ProductRepository
var _ billing.ProductRepository = (*GormBillingProductRepository)(nil)

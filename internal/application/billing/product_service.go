package billing

import (
	"context"
	"errors"

	"github.com/billing/backend/internal/domain/billing"
	"github.com/billing/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ProductService manages duration billing products and their pricing rules
type ProductService struct {
	productRepo billing.ProductRepository
}

// NewProductService creates a new ProductService
func NewProductService(productRepo billing.ProductRepository) *ProductService {
	return &ProductService{productRepo: productRepo}
}

// Create creates a new billing product with a validated pricing rule
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	rule, err := billing.DeserializeRule(billing.RuleData(req.Rule))
	if err != nil {
		return nil, err
	}

	product, err := billing.NewProduct(req.Name, rule)
	if err != nil {
		return nil, err
	}

	product.Description = req.Description
	product.FreezeMinutes = req.FreezeMinutes
	if req.Metadata != nil {
		product.Metadata = req.Metadata
	}

	if err := product.SetConstraints(req.FreeMinutes, req.MinAmount, req.MaxAmount); err != nil {
		return nil, err
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	response := ToProductResponse(product)
	return &response, nil
}

// GetByID retrieves a product by id
func (s *ProductService) GetByID(ctx context.Context, productID uuid.UUID) (*ProductResponse, error) {
	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	response := ToProductResponse(product)
	return &response, nil
}

// List retrieves products with filtering and pagination
func (s *ProductService) List(ctx context.Context, filter ProductListFilter) ([]ProductResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]interface{}),
	}
	if filter.Enabled != nil {
		domainFilter.Filters["enabled"] = *filter.Enabled
	}

	products, err := s.productRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.productRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToProductResponses(products), total, nil
}

// Update updates a product; nil request fields are left unchanged
func (s *ProductService) Update(ctx context.Context, productID uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if *req.Name == "" {
			return nil, shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
		}
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = *req.Description
	}

	if req.Rule != nil {
		rule, err := billing.DeserializeRule(billing.RuleData(req.Rule))
		if err != nil {
			return nil, err
		}
		if err := product.SetPricingRule(rule); err != nil {
			return nil, err
		}
	}

	if req.FreeMinutes != nil || req.MinAmount != nil || req.MaxAmount != nil {
		freeMinutes := product.FreeMinutes
		if req.FreeMinutes != nil {
			freeMinutes = *req.FreeMinutes
		}
		minAmount := product.MinAmount
		if req.MinAmount != nil {
			minAmount = req.MinAmount
		}
		maxAmount := product.MaxAmount
		if req.MaxAmount != nil {
			maxAmount = req.MaxAmount
		}
		if err := product.SetConstraints(freeMinutes, minAmount, maxAmount); err != nil {
			return nil, err
		}
	}

	if req.FreezeMinutes != nil {
		product.FreezeMinutes = req.FreezeMinutes
	}
	if req.Metadata != nil {
		product.Metadata = req.Metadata
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	response := ToProductResponse(product)
	return &response, nil
}

// Enable makes the product available for new billing sessions
func (s *ProductService) Enable(ctx context.Context, productID uuid.UUID) (*ProductResponse, error) {
	return s.setEnabled(ctx, productID, true)
}

// Disable stops the product from starting new billing sessions
func (s *ProductService) Disable(ctx context.Context, productID uuid.UUID) (*ProductResponse, error) {
	return s.setEnabled(ctx, productID, false)
}

// Delete deletes a product
func (s *ProductService) Delete(ctx context.Context, productID uuid.UUID) error {
	if _, err := s.loadProduct(ctx, productID); err != nil {
		return err
	}

	return s.productRepo.Delete(ctx, productID)
}

func (s *ProductService) setEnabled(ctx context.Context, productID uuid.UUID, enabled bool) (*ProductResponse, error) {
	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	if enabled {
		product.Enable()
	} else {
		product.Disable()
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	response := ToProductResponse(product)
	return &response, nil
}

func (s *ProductService) loadProduct(ctx context.Context, productID uuid.UUID) (*billing.Product, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, billing.NewProductNotFoundError(productID.String())
		}
		return nil, err
	}
	return product, nil
}

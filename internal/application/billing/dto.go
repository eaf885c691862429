package billing

import (
	"time"

	"github.com/billing/backend/internal/domain/billing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// StartBillingRequest represents a request to start a billing session
type StartBillingRequest struct {
	ProductID     uuid.UUID              `json:"product_id" binding:"required"`
	UserID        string                 `json:"user_id" binding:"required,min=1,max=64"`
	PrepaidAmount *decimal.Decimal       `json:"prepaid_amount"`
	Metadata      map[string]interface{} `json:"metadata"`
}

// CreateProductRequest represents a request to create a billing product
type CreateProductRequest struct {
	Name          string                 `json:"name" binding:"required,min=1,max=200"`
	Description   string                 `json:"description" binding:"max=2000"`
	Rule          map[string]interface{} `json:"rule" binding:"required"`
	FreeMinutes   int                    `json:"free_minutes" binding:"min=0"`
	FreezeMinutes *int                   `json:"freeze_minutes"`
	MinAmount     *decimal.Decimal       `json:"min_amount"`
	MaxAmount     *decimal.Decimal       `json:"max_amount"`
	Metadata      map[string]interface{} `json:"metadata"`
}

// UpdateProductRequest represents a request to update a billing product.
// Nil fields are left unchanged.
type UpdateProductRequest struct {
	Name          *string                `json:"name" binding:"omitempty,min=1,max=200"`
	Description   *string                `json:"description" binding:"omitempty,max=2000"`
	Rule          map[string]interface{} `json:"rule"`
	FreeMinutes   *int                   `json:"free_minutes" binding:"omitempty,min=0"`
	FreezeMinutes *int                   `json:"freeze_minutes"`
	MinAmount     *decimal.Decimal       `json:"min_amount"`
	MaxAmount     *decimal.Decimal       `json:"max_amount"`
	Metadata      map[string]interface{} `json:"metadata"`
}

// OrderListFilter represents filter options for order lists
type OrderListFilter struct {
	Status   string `form:"status" binding:"omitempty,oneof=active frozen prepaid pending_payment completed cancelled"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ProductListFilter represents filter options for product lists
type ProductListFilter struct {
	Search   string `form:"search"`
	Enabled  *bool  `form:"enabled"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// OrderResponse represents a billing order in API responses
type OrderResponse struct {
	ID            uuid.UUID              `json:"id"`
	ProductID     uuid.UUID              `json:"product_id"`
	UserID        string                 `json:"user_id"`
	OrderCode     string                 `json:"order_code"`
	Status        string                 `json:"status"`
	StartTime     time.Time              `json:"start_time"`
	EndTime       *time.Time             `json:"end_time,omitempty"`
	PaymentTime   *time.Time             `json:"payment_time,omitempty"`
	FrozenAt      *time.Time             `json:"frozen_at,omitempty"`
	FrozenMinutes int                    `json:"frozen_minutes"`
	PrepaidAmount decimal.Decimal        `json:"prepaid_amount"`
	ActualAmount  *decimal.Decimal       `json:"actual_amount,omitempty"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
	Version       int                    `json:"version"`
}

// ProductResponse represents a billing product in API responses
type ProductResponse struct {
	ID            uuid.UUID              `json:"id"`
	Name          string                 `json:"name"`
	Description   string                 `json:"description"`
	Rule          map[string]interface{} `json:"rule"`
	FreeMinutes   int                    `json:"free_minutes"`
	FreezeMinutes *int                   `json:"freeze_minutes,omitempty"`
	MinAmount     *decimal.Decimal       `json:"min_amount,omitempty"`
	MaxAmount     *decimal.Decimal       `json:"max_amount,omitempty"`
	Enabled       bool                   `json:"enabled"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
	Version       int                    `json:"version"`
}

// PriceResultResponse represents a price calculation in API responses
type PriceResultResponse struct {
	BasePrice       decimal.Decimal `json:"base_price"`
	FinalPrice      decimal.Decimal `json:"final_price"`
	BillableMinutes int             `json:"billable_minutes"`
	FreeMinutes     int             `json:"free_minutes"`
	Discount        decimal.Decimal `json:"discount"`
	Adjustments     []string        `json:"adjustments,omitempty"`
}

// PriceDetailsResponse represents an expanded price calculation in API responses
type PriceDetailsResponse struct {
	TotalMinutes    int              `json:"total_minutes"`
	FreeMinutes     int              `json:"free_minutes"`
	BilledMinutes   int              `json:"billed_minutes"`
	BasePrice       decimal.Decimal  `json:"base_price"`
	FinalPrice      decimal.Decimal  `json:"final_price"`
	Discount        decimal.Decimal  `json:"discount"`
	Adjustments     []string         `json:"adjustments,omitempty"`
	RuleDescription string           `json:"rule_description"`
	MinAmount       *decimal.Decimal `json:"min_amount,omitempty"`
	MaxAmount       *decimal.Decimal `json:"max_amount,omitempty"`
}

// EndBillingResponse represents the outcome of completing a billing session,
// including how the final price reconciles against the prepaid amount.
type EndBillingResponse struct {
	Order                     OrderResponse       `json:"order"`
	Price                     PriceResultResponse `json:"price"`
	RefundAmount              decimal.Decimal     `json:"refund_amount"`
	RequiresAdditionalPayment bool                `json:"requires_additional_payment"`
	AdditionalPaymentAmount   decimal.Decimal     `json:"additional_payment_amount"`
}

// ToOrderResponse converts a domain Order to OrderResponse
func ToOrderResponse(o *billing.Order) OrderResponse {
	return OrderResponse{
		ID:            o.ID,
		ProductID:     o.ProductID,
		UserID:        o.UserID,
		OrderCode:     o.OrderCode,
		Status:        string(o.Status),
		StartTime:     o.StartTime,
		EndTime:       o.EndTime,
		PaymentTime:   o.PaymentTime,
		FrozenAt:      o.FrozenAt,
		FrozenMinutes: o.FrozenMinutes,
		PrepaidAmount: o.PrepaidAmount,
		ActualAmount:  o.ActualAmount,
		Metadata:      o.Metadata,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
		Version:       o.Version,
	}
}

// ToOrderResponses converts a slice of domain Orders to OrderResponses
func ToOrderResponses(orders []billing.Order) []OrderResponse {
	responses := make([]OrderResponse, len(orders))
	for i := range orders {
		responses[i] = ToOrderResponse(&orders[i])
	}
	return responses
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p *billing.Product) ProductResponse {
	return ProductResponse{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Rule:          map[string]interface{}(p.RuleData),
		FreeMinutes:   p.FreeMinutes,
		FreezeMinutes: p.FreezeMinutes,
		MinAmount:     p.MinAmount,
		MaxAmount:     p.MaxAmount,
		Enabled:       p.Enabled,
		Metadata:      p.Metadata,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
		Version:       p.Version,
	}
}

// ToProductResponses converts a slice of domain Products to ProductResponses
func ToProductResponses(products []billing.Product) []ProductResponse {
	responses := make([]ProductResponse, len(products))
	for i := range products {
		responses[i] = ToProductResponse(&products[i])
	}
	return responses
}

// ToPriceResultResponse converts a domain PriceResult to PriceResultResponse
func ToPriceResultResponse(r billing.PriceResult) PriceResultResponse {
	return PriceResultResponse{
		BasePrice:       r.BasePrice,
		FinalPrice:      r.FinalPrice,
		BillableMinutes: r.BillableMinutes,
		FreeMinutes:     r.FreeMinutes,
		Discount:        r.Discount(),
		Adjustments:     adjustmentStrings(r.Adjustments),
	}
}

// ToPriceDetailsResponse converts domain PriceDetails to PriceDetailsResponse
func ToPriceDetailsResponse(d billing.PriceDetails) PriceDetailsResponse {
	return PriceDetailsResponse{
		TotalMinutes:    d.TotalMinutes,
		FreeMinutes:     d.FreeMinutes,
		BilledMinutes:   d.BilledMinutes,
		BasePrice:       d.BasePrice,
		FinalPrice:      d.FinalPrice,
		Discount:        d.Discount,
		Adjustments:     adjustmentStrings(d.Adjustments),
		RuleDescription: d.RuleDescription,
		MinAmount:       d.MinAmount,
		MaxAmount:       d.MaxAmount,
	}
}

// ToEndBillingResponse builds the completion view of an order and its final price
func ToEndBillingResponse(o *billing.Order, price billing.PriceResult) EndBillingResponse {
	return EndBillingResponse{
		Order:                     ToOrderResponse(o),
		Price:                     ToPriceResultResponse(price),
		RefundAmount:              o.RefundAmount(),
		RequiresAdditionalPayment: o.RequiresAdditionalPayment(),
		AdditionalPaymentAmount:   o.AdditionalPaymentAmount(),
	}
}

func adjustmentStrings(adjustments []billing.PriceAdjustment) []string {
	if len(adjustments) == 0 {
		return nil
	}
	out := make([]string, len(adjustments))
	for i, a := range adjustments {
		out[i] = string(a)
	}
	return out
}

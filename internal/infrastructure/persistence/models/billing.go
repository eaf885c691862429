package models

import (
	"encoding/json"
	"time"

	"github.com/billing/backend/internal/domain/billing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var modelLogger = zap.L().Named("billing.models")

// BillingProductModel is the persistence model for the duration billing Product aggregate.
type BillingProductModel struct {
	AggregateModel
	Name          string           `gorm:"type:varchar(200);not null"`
	Description   string           `gorm:"type:text"`
	RuleJSON      string           `gorm:"column:rule_data;type:jsonb;not null"`
	FreeMinutes   int              `gorm:"not null;default:0"`
	FreezeMinutes *int             `gorm:""`
	MinAmount     *decimal.Decimal `gorm:"type:decimal(18,4)"`
	MaxAmount     *decimal.Decimal `gorm:"type:decimal(18,4)"`
	Enabled       bool             `gorm:"not null;default:true;index"`
	MetadataJSON  string           `gorm:"column:metadata;type:jsonb"`
}

// TableName returns the table name for GORM
func (BillingProductModel) TableName() string {
	return "duration_billing_products"
}

// ToDomain converts the persistence model to a domain Product aggregate.
func (m *BillingProductModel) ToDomain() *billing.Product {
	product := &billing.Product{
		Name:          m.Name,
		Description:   m.Description,
		FreeMinutes:   m.FreeMinutes,
		FreezeMinutes: m.FreezeMinutes,
		MinAmount:     m.MinAmount,
		MaxAmount:     m.MaxAmount,
		Enabled:       m.Enabled,
	}
	product.ID = m.ID
	product.CreatedAt = m.CreatedAt
	product.UpdatedAt = m.UpdatedAt
	product.Version = m.Version

	if m.RuleJSON != "" {
		var ruleData billing.RuleData
		if err := json.Unmarshal([]byte(m.RuleJSON), &ruleData); err != nil {
			modelLogger.Warn("failed to parse rule_data JSON",
				zap.String("product_id", m.ID.String()),
				zap.Error(err))
		} else {
			product.RuleData = ruleData
		}
	}

	product.Metadata = parseMetadata(m.MetadataJSON, "product", m.ID)
	return product
}

// FromDomain populates the persistence model from a domain Product aggregate.
func (m *BillingProductModel) FromDomain(product *billing.Product) {
	m.FromDomainAggregateRoot(product.BaseAggregateRoot)
	m.Name = product.Name
	m.Description = product.Description
	m.FreeMinutes = product.FreeMinutes
	m.FreezeMinutes = product.FreezeMinutes
	m.MinAmount = product.MinAmount
	m.MaxAmount = product.MaxAmount
	m.Enabled = product.Enabled
	m.RuleJSON = marshalJSON(product.RuleData, "{}")
	m.MetadataJSON = marshalJSON(product.Metadata, "{}")
}

// BillingOrderModel is the persistence model for the duration billing Order aggregate.
type BillingOrderModel struct {
	AggregateModel
	ProductID     uuid.UUID           `gorm:"type:uuid;not null;index"`
	UserID        string              `gorm:"type:varchar(64);not null;index:idx_billing_order_user_status,priority:1"`
	OrderCode     string              `gorm:"type:varchar(64);not null;uniqueIndex"`
	Status        billing.OrderStatus `gorm:"type:varchar(20);not null;index:idx_billing_order_user_status,priority:2"`
	StartTime     time.Time           `gorm:"not null;index"`
	EndTime       *time.Time          `gorm:""`
	PaymentTime   *time.Time          `gorm:""`
	FrozenAt      *time.Time          `gorm:""`
	FrozenMinutes int                 `gorm:"not null;default:0"`
	PrepaidAmount decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0"`
	ActualAmount  *decimal.Decimal    `gorm:"type:decimal(18,4)"`
	MetadataJSON  string              `gorm:"column:metadata;type:jsonb"`
}

// TableName returns the table name for GORM
func (BillingOrderModel) TableName() string {
	return "duration_billing_orders"
}

// ToDomain converts the persistence model to a domain Order aggregate.
func (m *BillingOrderModel) ToDomain() *billing.Order {
	order := &billing.Order{
		ProductID:     m.ProductID,
		UserID:        m.UserID,
		OrderCode:     m.OrderCode,
		Status:        m.Status,
		StartTime:     m.StartTime,
		EndTime:       m.EndTime,
		PaymentTime:   m.PaymentTime,
		FrozenAt:      m.FrozenAt,
		FrozenMinutes: m.FrozenMinutes,
		PrepaidAmount: m.PrepaidAmount,
		ActualAmount:  m.ActualAmount,
	}
	order.ID = m.ID
	order.CreatedAt = m.CreatedAt
	order.UpdatedAt = m.UpdatedAt
	order.Version = m.Version
	order.Metadata = parseMetadata(m.MetadataJSON, "order", m.ID)
	return order
}

// FromDomain populates the persistence model from a domain Order aggregate.
func (m *BillingOrderModel) FromDomain(order *billing.Order) {
	m.FromDomainAggregateRoot(order.BaseAggregateRoot)
	m.ProductID = order.ProductID
	m.UserID = order.UserID
	m.OrderCode = order.OrderCode
	m.Status = order.Status
	m.StartTime = order.StartTime
	m.EndTime = order.EndTime
	m.PaymentTime = order.PaymentTime
	m.FrozenAt = order.FrozenAt
	m.FrozenMinutes = order.FrozenMinutes
	m.PrepaidAmount = order.PrepaidAmount
	m.ActualAmount = order.ActualAmount
	m.MetadataJSON = marshalJSON(order.Metadata, "{}")
}

// parseMetadata decodes a metadata JSON column, tolerating bad rows so a
// single corrupt record does not make the whole aggregate unreadable.
func parseMetadata(raw, kind string, id uuid.UUID) map[string]interface{} {
	metadata := make(map[string]interface{})
	if raw == "" {
		return metadata
	}
	if err := json.Unmarshal([]byte(raw), &metadata); err != nil {
		modelLogger.Warn("failed to parse metadata JSON",
			zap.String(kind+"_id", id.String()),
			zap.Error(err))
	}
	return metadata
}

func marshalJSON(v interface{}, fallback string) string {
	if v == nil {
		return fallback
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fallback
	}
	return string(data)
}

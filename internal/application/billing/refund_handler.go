package billing

import (
	"context"
	"fmt"

	"github.com/billing/backend/internal/domain/billing"
	"github.com/billing/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// RefundRequiredHandler handles RefundRequiredEvent and notifies the payment
// side that a prepaid order finished under its prepaid amount.
type RefundRequiredHandler struct {
	logger   *zap.Logger
	notifier RefundNotifier
}

// RefundNotifier is the interface for delivering refund notifications.
// Implementations can support different channels (payment gateway, webhook, etc.)
type RefundNotifier interface {
	// NotifyRefundRequired sends a notification that a refund is owed
	NotifyRefundRequired(ctx context.Context, notification RefundNotification) error
}

// RefundNotification represents a refund owed on a completed order
type RefundNotification struct {
	OrderID      string          `json:"order_id"`
	OrderCode    string          `json:"order_code"`
	UserID       string          `json:"user_id"`
	RefundAmount decimal.Decimal `json:"refund_amount"`
}

// NewRefundRequiredHandler creates a new handler for refund required events
func NewRefundRequiredHandler(logger *zap.Logger) *RefundRequiredHandler {
	return &RefundRequiredHandler{
		logger: logger,
	}
}

// WithNotifier sets the notifier for sending notifications
func (h *RefundRequiredHandler) WithNotifier(notifier RefundNotifier) *RefundRequiredHandler {
	h.notifier = notifier
	return h
}

// EventTypes returns the event types this handler is interested in
func (h *RefundRequiredHandler) EventTypes() []string {
	return []string{billing.EventTypeRefundRequired}
}

// Handle processes a RefundRequiredEvent
func (h *RefundRequiredHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	refundEvent, ok := event.(*billing.RefundRequiredEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", billing.EventTypeRefundRequired),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			billing.EventTypeRefundRequired, event.EventType())
	}

	h.logger.Info("refund required",
		zap.String("order_id", refundEvent.OrderID.String()),
		zap.String("order_code", refundEvent.OrderCode),
		zap.String("user_id", refundEvent.UserID),
		zap.String("refund_amount", refundEvent.RefundAmount.String()),
	)

	notification := RefundNotification{
		OrderID:      refundEvent.OrderID.String(),
		OrderCode:    refundEvent.OrderCode,
		UserID:       refundEvent.UserID,
		RefundAmount: refundEvent.RefundAmount,
	}

	if h.notifier != nil {
		if err := h.notifier.NotifyRefundRequired(ctx, notification); err != nil {
			h.logger.Error("failed to send refund notification",
				zap.String("order_code", notification.OrderCode),
				zap.Error(err),
			)
			// Notification failure shouldn't fail the event handling
		} else {
			h.logger.Info("refund notification sent",
				zap.String("order_code", notification.OrderCode),
				zap.String("refund_amount", notification.RefundAmount.String()),
			)
		}
	}

	return nil
}

// Ensure RefundRequiredHandler implements shared.EventHandler
var _ shared.EventHandler = (*RefundRequiredHandler)(nil)

// LoggingRefundNotifier is a simple notifier that logs refund notifications.
// Useful for development and testing.
type LoggingRefundNotifier struct {
	logger *zap.Logger
}

// NewLoggingRefundNotifier creates a new logging notifier
func NewLoggingRefundNotifier(logger *zap.Logger) *LoggingRefundNotifier {
	return &LoggingRefundNotifier{
		logger: logger,
	}
}

// NotifyRefundRequired logs the refund notification
func (n *LoggingRefundNotifier) NotifyRefundRequired(ctx context.Context, notification RefundNotification) error {
	n.logger.Warn("REFUND REQUIRED",
		zap.String("order_code", notification.OrderCode),
		zap.String("user_id", notification.UserID),
		zap.String("refund_amount", notification.RefundAmount.String()),
	)
	return nil
}

// Ensure LoggingRefundNotifier implements RefundNotifier
var _ RefundNotifier = (*LoggingRefundNotifier)(nil)

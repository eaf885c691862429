package billing

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/billing/backend/internal/domain/billing"
	"github.com/billing/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BillingService orchestrates duration billing sessions: it turns wall-clock
// timestamps into billable minutes, runs the price calculator, and drives the
// order state machine.
//
// Billable minutes are always elapsed wall minutes minus cumulative frozen
// minutes. Callers must serialize freeze/resume/end per order; a lost race
// surfaces as a concurrency conflict from the optimistic-lock save.
type BillingService struct {
	productRepo  billing.ProductRepository
	orderRepo    billing.OrderRepository
	stateMachine *billing.OrderStateMachine
	calculator   *billing.PriceCalculator
	clock        billing.Clock
	publisher    shared.EventPublisher
}

// NewBillingService creates a new BillingService
func NewBillingService(
	productRepo billing.ProductRepository,
	orderRepo billing.OrderRepository,
	clock billing.Clock,
	publisher shared.EventPublisher,
) *BillingService {
	return &BillingService{
		productRepo:  productRepo,
		orderRepo:    orderRepo,
		stateMachine: billing.NewOrderStateMachine(),
		calculator:   billing.NewPriceCalculator(),
		clock:        clock,
		publisher:    publisher,
	}
}

// StartBilling creates and persists a billing order for the product,
// starting the clock now. A positive prepaid amount opens the order in
// prepaid mode; zero opens it active.
func (s *BillingService) StartBilling(ctx context.Context, req StartBillingRequest) (*OrderResponse, error) {
	product, err := s.loadProduct(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if !product.Enabled {
		return nil, billing.NewProductDisabledError(product.Name)
	}

	prepaid := decimal.Zero
	if req.PrepaidAmount != nil {
		prepaid = *req.PrepaidAmount
	}

	now := s.clock.Now()
	order, err := billing.NewOrder(product.ID, req.UserID, generateOrderCode(now), now, prepaid)
	if err != nil {
		return nil, err
	}
	order.SetMetadata(req.Metadata)

	if err := s.orderRepo.Save(ctx, order); err != nil {
		return nil, err
	}

	s.publish(ctx, billing.NewBillingStartedEvent(order))

	response := ToOrderResponse(order)
	return &response, nil
}

// FreezeBilling pauses billing on an active order, snapshotting the price
// accrued so far into the order's actual amount.
func (s *BillingService) FreezeBilling(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !s.stateMachine.CanFreeze(order) {
		return nil, billing.NewInvalidOrderStateError("freeze", order.Status)
	}

	now := s.clock.Now()
	result, err := s.priceAt(ctx, order, now)
	if err != nil {
		return nil, err
	}

	order.ActualAmount = &result.FinalPrice
	order.MarkFrozen(now)
	if err := s.stateMachine.TransitionTo(order, billing.OrderStatusFrozen); err != nil {
		return nil, err
	}

	if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
		return nil, err
	}

	s.publish(ctx, billing.NewOrderFrozenEvent(order, result.FinalPrice))

	response := ToOrderResponse(order)
	return &response, nil
}

// ResumeBilling restarts billing on a frozen order, adding the pause to the
// order's cumulative frozen minutes.
func (s *BillingService) ResumeBilling(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !s.stateMachine.CanResume(order) {
		return nil, billing.NewInvalidOrderStateError("resume", order.Status)
	}

	order.AccumulateFrozen(s.clock.Now())
	if err := s.stateMachine.TransitionTo(order, billing.OrderStatusActive); err != nil {
		return nil, err
	}

	if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
		return nil, err
	}

	s.publish(ctx, billing.NewOrderResumedEvent(order))

	response := ToOrderResponse(order)
	return &response, nil
}

// EndBilling completes the session: stamps the end time, calculates the
// final price, and reconciles it against any prepaid amount.
func (s *BillingService) EndBilling(ctx context.Context, orderID uuid.UUID) (*EndBillingResponse, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !s.stateMachine.CanComplete(order) {
		return nil, billing.NewInvalidOrderStateError("complete", order.Status)
	}

	now := s.clock.Now()
	order.AccumulateFrozen(now)
	result, err := s.priceAt(ctx, order, now)
	if err != nil {
		return nil, err
	}

	order.EndTime = &now
	order.ActualAmount = &result.FinalPrice
	if err := s.stateMachine.TransitionTo(order, billing.OrderStatusCompleted); err != nil {
		return nil, err
	}

	if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
		return nil, err
	}

	s.publish(ctx, billing.NewBillingEndedEvent(order, result))

	if order.PrepaidAmount.IsPositive() {
		if refund := order.RefundAmount(); refund.IsPositive() {
			s.publish(ctx, billing.NewRefundRequiredEvent(order, refund))
		}
	}

	response := ToEndBillingResponse(order, result)
	return &response, nil
}

// CancelBilling cancels an active or frozen session without billing it
func (s *BillingService) CancelBilling(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !s.stateMachine.CanCancel(order) {
		return nil, billing.NewInvalidOrderStateError("cancel", order.Status)
	}

	if err := s.stateMachine.TransitionTo(order, billing.OrderStatusCancelled); err != nil {
		return nil, err
	}

	if err := s.orderRepo.SaveWithLock(ctx, order); err != nil {
		return nil, err
	}

	s.publish(ctx, billing.NewOrderCancelledEvent(order))

	response := ToOrderResponse(order)
	return &response, nil
}

// GetCurrentPrice computes the price accrued so far without mutating the order
func (s *BillingService) GetCurrentPrice(ctx context.Context, orderID uuid.UUID) (*PriceResultResponse, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	result, err := s.priceAt(ctx, order, s.clock.Now())
	if err != nil {
		return nil, err
	}

	response := ToPriceResultResponse(result)
	return &response, nil
}

// GetPriceDetails expands the current price with the rule description and
// the product constraints that shaped it.
func (s *BillingService) GetPriceDetails(ctx context.Context, orderID uuid.UUID) (*PriceDetailsResponse, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	product, rule, err := s.productAndRule(ctx, order)
	if err != nil {
		return nil, err
	}

	minutes, err := s.billableMinutes(order, s.clock.Now())
	if err != nil {
		return nil, err
	}

	response := ToPriceDetailsResponse(s.calculator.Details(product, rule, minutes))
	return &response, nil
}

// GetOrder loads a single order by id
func (s *BillingService) GetOrder(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	order, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	response := ToOrderResponse(order)
	return &response, nil
}

// FindActiveOrders lists the user's orders still accruing time
func (s *BillingService) FindActiveOrders(ctx context.Context, userID string) ([]OrderResponse, error) {
	orders, err := s.orderRepo.FindActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return ToOrderResponses(orders), nil
}

// FindOrders lists the user's orders regardless of status, paginated
func (s *BillingService) FindOrders(ctx context.Context, userID string, filter OrderListFilter) ([]OrderResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "start_time"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Filters:  map[string]interface{}{"user_id": userID},
	}
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}

	orders, err := s.orderRepo.FindByUser(ctx, userID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.orderRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToOrderResponses(orders), total, nil
}

// FindOrderByCode looks an order up by its unique order code
func (s *BillingService) FindOrderByCode(ctx context.Context, orderCode string) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByOrderCode(ctx, orderCode)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, billing.NewOrderNotFoundError(orderCode)
		}
		return nil, err
	}

	response := ToOrderResponse(order)
	return &response, nil
}

func (s *BillingService) loadProduct(ctx context.Context, productID uuid.UUID) (*billing.Product, error) {
	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, billing.NewProductNotFoundError(productID.String())
		}
		return nil, err
	}
	return product, nil
}

func (s *BillingService) loadOrder(ctx context.Context, orderID uuid.UUID) (*billing.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, billing.NewOrderNotFoundError(orderID.String())
		}
		return nil, err
	}
	return order, nil
}

func (s *BillingService) productAndRule(ctx context.Context, order *billing.Order) (*billing.Product, billing.PricingRule, error) {
	product, err := s.loadProduct(ctx, order.ProductID)
	if err != nil {
		return nil, nil, err
	}

	rule, err := product.PricingRule()
	if err != nil {
		return nil, nil, err
	}

	return product, rule, nil
}

// billableMinutes converts a wall-clock instant into the order's billable
// duration, guarding against clock skew.
func (s *BillingService) billableMinutes(order *billing.Order, now time.Time) (int, error) {
	elapsed := order.ElapsedMinutes(now)
	if elapsed < 0 {
		return 0, billing.NewNegativeBillingTimeError(elapsed)
	}
	return order.BillableMinutesAt(now), nil
}

func (s *BillingService) priceAt(ctx context.Context, order *billing.Order, now time.Time) (billing.PriceResult, error) {
	product, rule, err := s.productAndRule(ctx, order)
	if err != nil {
		return billing.PriceResult{}, err
	}

	minutes, err := s.billableMinutes(order, now)
	if err != nil {
		return billing.PriceResult{}, err
	}

	return s.calculator.Calculate(product, rule, minutes), nil
}

// publish delivers events on a best-effort basis; the in-process bus logs
// handler failures and never fails the calling operation.
func (s *BillingService) publish(ctx context.Context, events ...shared.DomainEvent) {
	if s.publisher == nil {
		return
	}
	_ = s.publisher.Publish(ctx, events...)
}

// generateOrderCode builds a unique, human-scannable order code:
// ORD-<timestamp>-<6 random hex chars>.
func generateOrderCode(now time.Time) string {
	suffix := make([]byte, 3)
	_, _ = rand.Read(suffix)
	return "ORD-" + now.Format("20060102150405") + "-" + hex.EncodeToString(suffix)
}

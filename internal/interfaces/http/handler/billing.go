package handler

import (
	billingapp "github.com/billing/backend/internal/application/billing"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// BillingHandler handles billing session API endpoints
type BillingHandler struct {
	BaseHandler
	billingService *billingapp.BillingService
}

// NewBillingHandler creates a new BillingHandler
func NewBillingHandler(billingService *billingapp.BillingService) *BillingHandler {
	return &BillingHandler{
		billingService: billingService,
	}
}

// Start godoc
// @Summary      Start a billing session
// @Description  Opens a billing order for a product and starts the clock
// @Tags         billing
// @Accept       json
// @Produce      json
// @Param        request body billingapp.StartBillingRequest true "Session start request"
// @Success      201 {object} dto.Response{data=billingapp.OrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /billing/orders [post]
func (h *BillingHandler) Start(c *gin.Context) {
	var req billingapp.StartBillingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	order, err := h.billingService.StartBilling(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, order)
}

// Freeze godoc
// @Summary      Freeze a billing session
// @Description  Pauses billing on an active order
// @Tags         billing
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} dto.Response{data=billingapp.OrderResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /billing/orders/{id}/freeze [post]
func (h *BillingHandler) Freeze(c *gin.Context) {
	orderID, ok := h.orderID(c)
	if !ok {
		return
	}

	order, err := h.billingService.FreezeBilling(c.Request.Context(), orderID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, order)
}

// Resume godoc
// @Summary      Resume a frozen billing session
// @Tags         billing
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} dto.Response{data=billingapp.OrderResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /billing/orders/{id}/resume [post]
func (h *BillingHandler) Resume(c *gin.Context) {
	orderID, ok := h.orderID(c)
	if !ok {
		return
	}

	order, err := h.billingService.ResumeBilling(c.Request.Context(), orderID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, order)
}

// End godoc
// @Summary      End a billing session
// @Description  Stops the clock, computes the final price and the settlement
// @Tags         billing
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} dto.Response{data=billingapp.EndBillingResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /billing/orders/{id}/end [post]
func (h *BillingHandler) End(c *gin.Context) {
	orderID, ok := h.orderID(c)
	if !ok {
		return
	}

	result, err := h.billingService.EndBilling(c.Request.Context(), orderID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}

// Cancel godoc
// @Summary      Cancel a billing session
// @Tags         billing
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} dto.Response{data=billingapp.OrderResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /billing/orders/{id}/cancel [post]
func (h *BillingHandler) Cancel(c *gin.Context) {
	orderID, ok := h.orderID(c)
	if !ok {
		return
	}

	order, err := h.billingService.CancelBilling(c.Request.Context(), orderID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, order)
}

// GetCurrentPrice godoc
// @Summary      Get the current price of a session
// @Description  Prices the session as if it ended right now, without mutating it
// @Tags         billing
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} dto.Response{data=billingapp.PriceResultResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /billing/orders/{id}/price [get]
func (h *BillingHandler) GetCurrentPrice(c *gin.Context) {
	orderID, ok := h.orderID(c)
	if !ok {
		return
	}

	price, err := h.billingService.GetCurrentPrice(c.Request.Context(), orderID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, price)
}

// GetPriceDetails godoc
// @Summary      Get a detailed price breakdown of a session
// @Tags         billing
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} dto.Response{data=billingapp.PriceDetailsResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /billing/orders/{id}/price/details [get]
func (h *BillingHandler) GetPriceDetails(c *gin.Context) {
	orderID, ok := h.orderID(c)
	if !ok {
		return
	}

	details, err := h.billingService.GetPriceDetails(c.Request.Context(), orderID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, details)
}

// GetByID godoc
// @Summary      Get a billing order by ID
// @Tags         billing
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} dto.Response{data=billingapp.OrderResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /billing/orders/{id} [get]
func (h *BillingHandler) GetByID(c *gin.Context) {
	orderID, ok := h.orderID(c)
	if !ok {
		return
	}

	order, err := h.billingService.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, order)
}

// GetByCode godoc
// @Summary      Get a billing order by its business code
// @Tags         billing
// @Produce      json
// @Param        code path string true "Order code"
// @Success      200 {object} dto.Response{data=billingapp.OrderResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /billing/orders/code/{code} [get]
func (h *BillingHandler) GetByCode(c *gin.Context) {
	code := c.Param("code")
	if code == "" {
		h.BadRequest(c, "Order code is required")
		return
	}

	order, err := h.billingService.FindOrderByCode(c.Request.Context(), code)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, order)
}

// ListActive godoc
// @Summary      List the caller's open billing sessions
// @Description  Returns the orders still accruing time for the X-User-ID caller
// @Tags         billing
// @Produce      json
// @Param        X-User-ID header string true "User ID"
// @Success      200 {object} dto.Response{data=[]billingapp.OrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /billing/orders/active [get]
func (h *BillingHandler) ListActive(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.BadRequest(c, "X-User-ID header is required")
		return
	}

	orders, err := h.billingService.FindActiveOrders(c.Request.Context(), userID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, orders)
}

// List godoc
// @Summary      List the caller's billing orders
// @Tags         billing
// @Produce      json
// @Param        X-User-ID header string true "User ID"
// @Param        status query string false "Order status" Enums(active, frozen, prepaid, pending_payment, completed, cancelled)
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Success      200 {object} dto.Response{data=[]billingapp.OrderResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /billing/orders [get]
func (h *BillingHandler) List(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.BadRequest(c, "X-User-ID header is required")
		return
	}

	var filter billingapp.OrderListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	orders, total, err := h.billingService.FindOrders(c.Request.Context(), userID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 20
	}
	h.SuccessWithMeta(c, orders, total, page, pageSize)
}

// orderID parses the order ID path parameter, responding with 400 on failure
func (h *BillingHandler) orderID(c *gin.Context) (uuid.UUID, bool) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID format")
		return uuid.Nil, false
	}
	return orderID, true
}

package handler

import (
	billingapp "github.com/billing/backend/internal/application/billing"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ProductHandler handles billing product API endpoints
type ProductHandler struct {
	BaseHandler
	productService *billingapp.ProductService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService *billingapp.ProductService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
	}
}

// Create godoc
// @Summary      Create a billing product
// @Description  Registers a product with its pricing rule and calculator settings
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        request body billingapp.CreateProductRequest true "Product creation request"
// @Success      201 {object} dto.Response{data=billingapp.ProductResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /billing/products [post]
func (h *ProductHandler) Create(c *gin.Context) {
	var req billingapp.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	product, err := h.productService.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, product)
}

// GetByID godoc
// @Summary      Get a billing product by ID
// @Tags         products
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Success      200 {object} dto.Response{data=billingapp.ProductResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /billing/products/{id} [get]
func (h *ProductHandler) GetByID(c *gin.Context) {
	productID, ok := h.productID(c)
	if !ok {
		return
	}

	product, err := h.productService.GetByID(c.Request.Context(), productID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, product)
}

// List godoc
// @Summary      List billing products
// @Tags         products
// @Produce      json
// @Param        search query string false "Search in name and description"
// @Param        enabled query bool false "Filter by enabled state"
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Success      200 {object} dto.Response{data=[]billingapp.ProductResponse}
// @Router       /billing/products [get]
func (h *ProductHandler) List(c *gin.Context) {
	var filter billingapp.ProductListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	products, total, err := h.productService.List(c.Request.Context(), filter)
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
	h.SuccessWithMeta(c, products, total, page, pageSize)
}

// Update godoc
// @Summary      Update a billing product
// @Description  Updates product settings; existing orders keep pricing by the rule they started under
// @Tags         products
// @Accept       json
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Param        request body billingapp.UpdateProductRequest true "Product update request"
// @Success      200 {object} dto.Response{data=billingapp.ProductResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /billing/products/{id} [put]
func (h *ProductHandler) Update(c *gin.Context) {
	productID, ok := h.productID(c)
	if !ok {
		return
	}

	var req billingapp.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	product, err := h.productService.Update(c.Request.Context(), productID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, product)
}

// Enable godoc
// @Summary      Enable a billing product
// @Tags         products
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Success      200 {object} dto.Response{data=billingapp.ProductResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /billing/products/{id}/enable [post]
func (h *ProductHandler) Enable(c *gin.Context) {
	productID, ok := h.productID(c)
	if !ok {
		return
	}

	product, err := h.productService.Enable(c.Request.Context(), productID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, product)
}

// Disable godoc
// @Summary      Disable a billing product
// @Description  Disabled products reject new sessions; running sessions are unaffected
// @Tags         products
// @Produce      json
// @Param        id path string true "Product ID" format(uuid)
// @Success      200 {object} dto.Response{data=billingapp.ProductResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /billing/products/{id}/disable [post]
func (h *ProductHandler) Disable(c *gin.Context) {
	productID, ok := h.productID(c)
	if !ok {
		return
	}

	product, err := h.productService.Disable(c.Request.Context(), productID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, product)
}

// Delete godoc
// @Summary      Delete a billing product
// @Tags         products
// @Param        id path string true "Product ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /billing/products/{id} [delete]
func (h *ProductHandler) Delete(c *gin.Context) {
	productID, ok := h.productID(c)
	if !ok {
		return
	}

	if err := h.productService.Delete(c.Request.Context(), productID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

func (h *ProductHandler) productID(c *gin.Context) (uuid.UUID, bool) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID format")
		return uuid.Nil, false
	}
	return productID, true
}

package handler

import (
	"errors"
	"net/http"

	"github.com/billing/backend/internal/domain/shared"
	"github.com/billing/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// RequestIDKey is the gin context key carrying the request ID.
const RequestIDKey = "X-Request-ID"

// BaseHandler bundles the response helpers concrete handlers embed.
// Every error path goes through the dto envelope so clients see one
// consistent shape.
type BaseHandler struct{}

// getRequestID reads the request ID placed in the context by the
// RequestID middleware, falling back to the inbound header.
func getRequestID(c *gin.Context) string {
	if id := c.GetString(RequestIDKey); id != "" {
		return id
	}
	return c.GetHeader(RequestIDKey)
}

// getUserID extracts the caller's user ID from the X-User-ID header.
// Billing sessions are keyed by opaque user identifiers supplied by the
// calling system, there is no account model of our own.
func getUserID(c *gin.Context) (string, error) {
	userID := c.GetHeader("X-User-ID")
	if userID == "" {
		return "", errors.New("user ID not found in request")
	}
	return userID, nil
}

// Success writes a 200 envelope around data.
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta writes a 200 envelope with pagination metadata.
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created writes a 201 envelope around data.
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent writes an empty 204 response.
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error writes an error envelope with an explicit status code.
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// ErrorWithCode writes an error envelope, deriving the status code from
// the error code.
func (h *BaseHandler) ErrorWithCode(c *gin.Context, code, message string) {
	h.Error(c, dto.GetHTTPStatus(code), code, message)
}

func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, message)
}

func (h *BaseHandler) Conflict(c *gin.Context, message string) {
	h.Error(c, http.StatusConflict, dto.ErrCodeConflict, message)
}

func (h *BaseHandler) UnprocessableEntity(c *gin.Context, code, message string) {
	h.Error(c, http.StatusUnprocessableEntity, code, message)
}

func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// ValidationError writes a 400 envelope carrying per-field details.
func (h *BaseHandler) ValidationError(c *gin.Context, details []dto.ValidationDetail) {
	c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse(
		"Request validation failed",
		getRequestID(c),
		details,
	))
}

// writeDomainError maps a DomainError onto its HTTP representation,
// reporting whether err was one.
func (h *BaseHandler) writeDomainError(c *gin.Context, err error) bool {
	var domainErr *shared.DomainError
	if !errors.As(err, &domainErr) {
		return false
	}

	code := dto.NormalizeErrorCode(domainErr.Code)
	h.Error(c, dto.GetHTTPStatus(code), code, domainErr.Message)
	return true
}

// HandleDomainError renders a domain error, treating anything else as an
// internal error.
func (h *BaseHandler) HandleDomainError(c *gin.Context, err error) {
	if !h.writeDomainError(c, err) {
		h.InternalError(c, "An unexpected error occurred")
	}
}

// HandleError renders any error: domain errors keep their code and
// status, everything else becomes a 500. Nil errors are ignored.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	if !h.writeDomainError(c, err) {
		h.InternalError(c, "An unexpected error occurred")
	}
}

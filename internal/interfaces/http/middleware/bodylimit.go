package middleware

import (
	"net/http"

	"github.com/billing/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// ErrCodeRequestTooLarge is returned when a request body exceeds the
// configured limit.
const ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"

// BodyLimit rejects requests whose declared Content-Length exceeds
// maxBytes and caps streaming bodies at the same limit through
// http.MaxBytesReader, so chunked requests cannot bypass the check.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge,
				dto.NewErrorResponse(ErrCodeRequestTooLarge, "Request body exceeds maximum allowed size"))
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

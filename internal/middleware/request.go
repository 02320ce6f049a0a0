package middleware

import (
	"net/http"

	"github.com/MaxRadzey/codecgateway/internal/contextkeys"
	"github.com/MaxRadzey/codecgateway/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader — заголовок с идентификатором запроса.
const RequestIDHeader = "X-Request-ID"

// RequestID берёт идентификатор запроса из заголовка или создаёт новый UUID,
// кладёт его в контекст и возвращает клиенту.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" || len(requestID) > 128 {
			requestID = uuid.NewString()
		}

		c.Set(contextkeys.RequestIDKey, requestID)
		c.Header(RequestIDHeader, requestID)
		c.Next()
	}
}

// BodyLimit ограничивает размер тела запроса. Чтение сверх limit завершается
// ошибкой *http.MaxBytesError.
func BodyLimit(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > limit {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge,
				models.ErrorResponse{Detail: "request body too large"})
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}

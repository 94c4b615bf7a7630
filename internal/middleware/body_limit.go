package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// DefaultMaxBodyBytes - лимит тела запроса по умолчанию (1 MiB).
const DefaultMaxBodyBytes int64 = 1 << 20

// MaxBodySize ограничивает размер тела запроса. Чтение сверх лимита
// возвращает *http.MaxBytesError.
func MaxBodySize(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}

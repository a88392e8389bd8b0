package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/xid"
)

// RequestID gắn một id duy nhất cho mỗi request, dùng để correlate logs
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = xid.New().String()
		}

		c.Set("request_id", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"pressline-backend/pkg/jwt"
)

// OperatorAuth - Middleware xác thực JWT token cho operator/admin endpoints
func OperatorAuth(manager *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Lấy token từ Authorization header
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(401, gin.H{"error": "missing authorization header"})
			c.Abort()
			return
		}

		// 2. Extract token từ "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(401, gin.H{"error": "invalid authorization header format"})
			c.Abort()
			return
		}

		// 3. Verify token và extract account id
		accountID, err := manager.Verify(parts[1])
		if err != nil {
			c.JSON(401, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		c.Set("account_id", accountID)
		c.Next()
	}
}

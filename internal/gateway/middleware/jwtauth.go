package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"techstore-system/internal/utils"
)

// JWTAuth guards the purchase endpoints: it requires a client session
// token issued by register/login and stores the client id in the
// request context.
func JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Authorization token required",
			})
			return
		}

		claims, err := utils.ParseToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Invalid or expired token",
			})
			return
		}

		c.Set("client_id", claims.ClientID)
		c.Set("client_email", claims.Email)
		c.Next()
	}
}

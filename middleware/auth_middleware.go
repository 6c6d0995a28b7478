package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/trektales/trektalesbackend/utils"
)

// AuthMiddleware verifies the bearer token and resolves the acting
// user id. It never touches the database; handlers that need role or
// profile load the user themselves. A missing token and an invalid one
// are indistinguishable to the caller.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "not authorized"})
			return
		}

		tokenStr := strings.TrimPrefix(header, "Bearer ")
		claims, err := utils.ValidateToken(tokenStr, utils.AccessSecret())
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "not authorized"})
			return
		}

		c.Set("userID", claims.UserID)
		c.Next()
	}
}

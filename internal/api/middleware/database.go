package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireDB answers 503 when no database is configured.
func RequireDB(available bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !available {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Database not available"})
			return
		}
		c.Next()
	}
}

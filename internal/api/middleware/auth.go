package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/planchais/chantiers-backend/internal/logger"
	"github.com/planchais/chantiers-backend/internal/service"
)

const principalKey = "principal"

// AuthMiddleware validates JWT tokens and sets the principal in the context
func AuthMiddleware(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.Warn("❌ [Auth] Missing Authorization header", "path", c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			logger.Warn("❌ [Auth] Invalid header format", "path", c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			return
		}

		principal, err := authService.ValidateToken(parts[1])
		if err != nil {
			logger.Warn("❌ [Auth] Invalid token", "path", c.Request.URL.Path, "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(principalKey, principal)
		logger.Debug("✅ [Auth] Authenticated", "subject", principal.Subject, "role", principal.Role, "path", c.Request.URL.Path)
		c.Next()
	}
}

// OptionalAuth sets the principal when an Authorization header is sent and
// lets anonymous requests through. A header with a bad token is still a 401.
func OptionalAuth(authService service.AuthService) gin.HandlerFunc {
	required := AuthMiddleware(authService)
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.Next()
			return
		}
		required(c)
	}
}

// IsWriter reports whether the caller is an authenticated writer.
func IsWriter(c *gin.Context) bool {
	p := GetPrincipal(c)
	return p != nil && !p.ReadOnly()
}

// RequireWriter rejects read-only principals on mutating routes.
func RequireWriter() gin.HandlerFunc {
	return func(c *gin.Context) {
		p := GetPrincipal(c)
		if p == nil || p.ReadOnly() {
			logger.Warn("⚠️ [Auth] Write refused for read-only principal", "path", c.Request.URL.Path)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Read-only access"})
			return
		}
		c.Next()
	}
}

// GetPrincipal extracts the authenticated caller from gin context
func GetPrincipal(c *gin.Context) *service.Principal {
	v, exists := c.Get(principalKey)
	if !exists {
		return nil
	}
	p, _ := v.(*service.Principal)
	return p
}

// RequestLogger logs all incoming requests with details
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		duration := time.Since(start)
		status := c.Writer.Status()

		statusEmoji := "✅"
		if status >= 400 && status < 500 {
			statusEmoji = "⚠️"
		} else if status >= 500 {
			statusEmoji = "❌"
		}

		args := []any{"method", method, "path", path, "status", status, "duration", duration.String(), "ip", c.ClientIP()}
		switch {
		case status >= 500:
			logger.Error(statusEmoji+" [HTTP] request", args...)
		case status >= 400:
			logger.Warn(statusEmoji+" [HTTP] request", args...)
		default:
			logger.Info(statusEmoji+" [HTTP] request", args...)
		}

		for _, e := range c.Errors {
			logger.Error("❌ [Error]", "path", path, "error", e.Err)
		}
	}
}

package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger is any backend that can report liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	DB           Pinger
	Cache        Pinger
	EmailEnabled bool
	Clients      func() int
}

func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	database := status(ctx, h.DB)
	body := gin.H{
		"status":     "healthy",
		"timestamp":  time.Now(),
		"database":   database,
		"cache":      status(ctx, h.Cache),
		"email":      "disabled",
		"ws_clients": 0,
	}
	if h.EmailEnabled {
		body["email"] = "enabled"
	}
	if h.Clients != nil {
		body["ws_clients"] = h.Clients()
	}

	code := http.StatusOK
	if database == "error" {
		body["status"] = "degraded"
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, body)
}

func status(ctx context.Context, p Pinger) string {
	if p == nil {
		return "disabled"
	}
	if err := p.Ping(ctx); err != nil {
		return "error"
	}
	return "connected"
}

package handler

import (
	"context"
	"net/http"
	"time"

	"sms_campaign_server/internal/dto/respond"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves liveness.
type HealthHandler struct {
	db Pinger // optional
}

// NewHealthHandler creates the handler. db may be nil.
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

// Health GET /health, /api/health
// Response: respond.HealthRespond; 503 when the database is unreachable
func (h *HealthHandler) Health(c *gin.Context) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			zap.L().Error("health check: database unreachable", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, respond.HealthRespond{Status: "DEGRADED", Timestamp: time.Now().UTC()})
			return
		}
	}
	c.JSON(http.StatusOK, respond.HealthRespond{Status: "OK", Timestamp: time.Now().UTC()})
}

package handler

import (
	"sms_campaign_server/internal/gateway/websocket"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WsHandler upgrades live-update observers.
type WsHandler struct {
	hub *websocket.Hub
}

// NewWsHandler creates the handler.
func NewWsHandler(hub *websocket.Hub) *WsHandler {
	return &WsHandler{hub: hub}
}

// Connect GET /ws
// The connection only receives event frames.
func (h *WsHandler) Connect(c *gin.Context) {
	if err := websocket.ServeObserver(h.hub, c.Writer, c.Request); err != nil {
		// the upgrader has already answered the request
		zap.L().Warn("websocket connect failed", zap.String("clientIP", c.ClientIP()), zap.Error(err))
	}
}

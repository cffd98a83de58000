package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterWebSocketRoutes the live-update endpoint.
// ws://host:port/ws (append ?token=... when auth is enabled)
func (rt *Router) RegisterWebSocketRoutes(rg *gin.RouterGroup) {
	rg.GET("/ws", rt.handlers.Ws.Connect)
}

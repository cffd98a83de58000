// Package router registers every HTTP route.
package router

import (
	"sms_campaign_server/internal/handler"
	"sms_campaign_server/internal/infrastructure/middleware"

	"github.com/gin-gonic/gin"
)

// Router registers routes onto an engine.
type Router struct {
	handlers    *handler.Handlers
	authEnabled bool
}

// NewRouter creates the router. With authEnabled the /api routes other than
// login and health, and the websocket, require an operator access token.
func NewRouter(handlers *handler.Handlers, authEnabled bool) *Router {
	return &Router{handlers: handlers, authEnabled: authEnabled}
}

// RegisterRoutes registers every route group on r.
func (rt *Router) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", rt.handlers.Health.Health)

	public := r.Group("/api")
	rt.RegisterAuthRoutes(public)
	public.GET("/health", rt.handlers.Health.Health)

	api := r.Group("/api")
	ws := r.Group("")
	if rt.authEnabled {
		api.Use(middleware.JWTAuth())
		ws.Use(middleware.JWTAuth())
	}
	rt.RegisterContactRoutes(api)
	rt.RegisterContactListRoutes(api)
	rt.RegisterCampaignRoutes(api)
	rt.RegisterMessageRoutes(api)
	rt.RegisterWebSocketRoutes(ws)

	// providers call these without operator credentials
	rt.RegisterWebhookRoutes(r.Group("/webhook"))
}

package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterAuthRoutes operator login, always public.
func (rt *Router) RegisterAuthRoutes(rg *gin.RouterGroup) {
	authGroup := rg.Group("/auth")
	{
		authGroup.POST("/login", rt.handlers.Auth.Login)
	}
}

package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterMessageRoutes message history and one-off sends.
func (rt *Router) RegisterMessageRoutes(rg *gin.RouterGroup) {
	rg.GET("/messages", rt.handlers.Message.List)
	rg.POST("/send-sms", rt.handlers.Message.Send)
}

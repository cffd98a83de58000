package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterWebhookRoutes provider callbacks.
func (rt *Router) RegisterWebhookRoutes(rg *gin.RouterGroup) {
	rg.POST("/sms", rt.handlers.Webhook.InboundSms)
	rg.POST("/status", rt.handlers.Webhook.Status)

	aliyunGroup := rg.Group("/aliyun")
	{
		aliyunGroup.POST("/up", rt.handlers.Webhook.AliyunUp)
		aliyunGroup.POST("/report", rt.handlers.Webhook.AliyunReport)
	}
}

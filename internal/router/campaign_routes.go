package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterCampaignRoutes campaign listing and launch.
func (rt *Router) RegisterCampaignRoutes(rg *gin.RouterGroup) {
	campaignGroup := rg.Group("/campaigns")
	{
		campaignGroup.GET("", rt.handlers.Campaign.List)
		campaignGroup.POST("", rt.handlers.Campaign.Launch)
	}
}

package handler

import (
	"sms_campaign_server/internal/dto/request"
	"sms_campaign_server/internal/service"

	"github.com/gin-gonic/gin"
)

// CampaignHandler serves /api/campaigns.
type CampaignHandler struct {
	campaignSvc service.CampaignService
}

// NewCampaignHandler creates the handler.
func NewCampaignHandler(campaignSvc service.CampaignService) *CampaignHandler {
	return &CampaignHandler{campaignSvc: campaignSvc}
}

// List GET /api/campaigns
// Response: []respond.CampaignRespond
func (h *CampaignHandler) List(c *gin.Context) {
	data, err := h.campaignSvc.ListCampaigns(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// Launch POST /api/campaigns
// Body: request.LaunchCampaignRequest
// Response: respond.CampaignRespond, after every recipient was attempted
func (h *CampaignHandler) Launch(c *gin.Context) {
	var req request.LaunchCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.campaignSvc.LaunchCampaign(c.Request.Context(), req.Name, req.Message, req.TargetListIDs)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

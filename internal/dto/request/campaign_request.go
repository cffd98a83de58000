package request

// LaunchCampaignRequest POST /api/campaigns
type LaunchCampaignRequest struct {
	Name          string `json:"name" binding:"required,max=191"`
	Message       string `json:"message" binding:"required,max=1600"`
	TargetListIDs []uint `json:"targetListIds" binding:"required,min=1,dive,gt=0"`
}

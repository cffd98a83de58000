package handler

import (
	"sms_campaign_server/internal/dto/request"
	"sms_campaign_server/internal/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler serves operator login.
type AuthHandler struct {
	authSvc service.AuthService
}

// NewAuthHandler creates the handler.
func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Login POST /api/auth/login
// Body: request.LoginRequest
// Response: respond.LoginRespond
func (h *AuthHandler) Login(c *gin.Context) {
	var req request.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.authSvc.Login(c.Request.Context(), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

package handler

import (
	"sms_campaign_server/internal/dto/request"
	"sms_campaign_server/internal/service"

	"github.com/gin-gonic/gin"
)

// MessageHandler serves /api/messages and /api/send-sms.
type MessageHandler struct {
	messageSvc service.MessageService
}

// NewMessageHandler creates the handler.
func NewMessageHandler(messageSvc service.MessageService) *MessageHandler {
	return &MessageHandler{messageSvc: messageSvc}
}

// List GET /api/messages
// Response: []respond.MessageRespond
func (h *MessageHandler) List(c *gin.Context) {
	data, err := h.messageSvc.ListMessages(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// Send POST /api/send-sms
// Body: request.SendSmsRequest
// Response: respond.MessageRespond; 502 when the provider refuses
func (h *MessageHandler) Send(c *gin.Context) {
	var req request.SendSmsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.messageSvc.SendSMS(c.Request.Context(), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

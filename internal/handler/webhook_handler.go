package handler

import (
	"net/http"
	"strconv"

	"sms_campaign_server/internal/dto/request"
	"sms_campaign_server/internal/service"
	"sms_campaign_server/pkg/constants"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WebhookHandler serves provider callbacks. Every callback is acknowledged,
// failures are only logged, so providers do not retry into the same error.
type WebhookHandler struct {
	inboundSvc    service.InboundService
	reconcilerSvc service.ReconcilerService
	ownNumber     string // recipient recorded for Aliyun uplink messages
}

// NewWebhookHandler creates the handler.
func NewWebhookHandler(inboundSvc service.InboundService, reconcilerSvc service.ReconcilerService, ownNumber string) *WebhookHandler {
	return &WebhookHandler{inboundSvc: inboundSvc, reconcilerSvc: reconcilerSvc, ownNumber: ownNumber}
}

// aliyunAck is the body Alibaba Cloud expects from a push receiver.
var aliyunAck = gin.H{"code": 0, "msg": "success"}

// InboundSms POST /webhook/sms
// Body (form or JSON): From, To, Body, MessageSid
func (h *WebhookHandler) InboundSms(c *gin.Context) {
	var req request.InboundSmsWebhook
	if err := c.ShouldBind(&req); err != nil {
		zap.L().Warn("malformed inbound webhook", zap.Error(err))
		c.String(http.StatusOK, "OK")
		return
	}
	if err := h.inboundSvc.ReceiveMessage(c.Request.Context(), req.From, req.To, req.Body, req.MessageSid); err != nil {
		zap.L().Error("inbound webhook", zap.String("messageSid", req.MessageSid), zap.Error(err))
	}
	c.String(http.StatusOK, "OK")
}

// Status POST /webhook/status
// Body (form or JSON): MessageSid, MessageStatus
func (h *WebhookHandler) Status(c *gin.Context) {
	var req request.StatusWebhook
	if err := c.ShouldBind(&req); err != nil {
		zap.L().Warn("malformed status webhook", zap.Error(err))
		c.String(http.StatusOK, "OK")
		return
	}
	if err := h.reconcilerSvc.ApplyStatusUpdate(c.Request.Context(), req.MessageSid, req.MessageStatus); err != nil {
		zap.L().Warn("status webhook", zap.String("messageSid", req.MessageSid), zap.Error(err))
	}
	c.String(http.StatusOK, "OK")
}

// AliyunUp POST /webhook/aliyun/up
// Body: []request.AliyunSmsUp
func (h *WebhookHandler) AliyunUp(c *gin.Context) {
	var reports []request.AliyunSmsUp
	if err := c.ShouldBindJSON(&reports); err != nil {
		zap.L().Warn("malformed aliyun uplink push", zap.Error(err))
		c.JSON(http.StatusOK, aliyunAck)
		return
	}
	for _, up := range reports {
		to := h.ownNumber
		if to == "" {
			to = up.DestCode
		}
		// without a sequence id there is nothing to dedup on
		var id string
		if up.SequenceID != 0 {
			id = strconv.FormatInt(up.SequenceID, 10)
		}
		if err := h.inboundSvc.ReceiveMessage(c.Request.Context(), up.PhoneNumber, to, up.Content, id); err != nil {
			zap.L().Error("aliyun uplink", zap.Int64("sequenceID", up.SequenceID), zap.Error(err))
		}
	}
	c.JSON(http.StatusOK, aliyunAck)
}

// AliyunReport POST /webhook/aliyun/report
// Body: []request.AliyunSmsReport
func (h *WebhookHandler) AliyunReport(c *gin.Context) {
	var reports []request.AliyunSmsReport
	if err := c.ShouldBindJSON(&reports); err != nil {
		zap.L().Warn("malformed aliyun report push", zap.Error(err))
		c.JSON(http.StatusOK, aliyunAck)
		return
	}
	for _, r := range reports {
		status := constants.MessageDelivered
		if !r.Success {
			status = constants.MessageFailed
		}
		if err := h.reconcilerSvc.ApplyStatusUpdate(c.Request.Context(), r.BizID, status); err != nil {
			zap.L().Warn("aliyun report",
				zap.String("bizID", r.BizID),
				zap.String("errCode", r.ErrCode),
				zap.Error(err))
		}
	}
	c.JSON(http.StatusOK, aliyunAck)
}

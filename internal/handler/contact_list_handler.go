package handler

import (
	"net/http"

	"sms_campaign_server/internal/dto/request"
	"sms_campaign_server/internal/service"
	"sms_campaign_server/pkg/errorx"

	"github.com/gin-gonic/gin"
)

// ContactListHandler serves /api/contact-lists.
type ContactListHandler struct {
	listSvc service.ContactListService
}

// NewContactListHandler creates the handler.
func NewContactListHandler(listSvc service.ContactListService) *ContactListHandler {
	return &ContactListHandler{listSvc: listSvc}
}

// List GET /api/contact-lists
// Response: []respond.ContactListRespond
func (h *ContactListHandler) List(c *gin.Context) {
	data, err := h.listSvc.ListContactLists(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// Create POST /api/contact-lists
// Body: request.CreateContactListRequest
// Response: respond.ContactListRespond (201)
func (h *ContactListHandler) Create(c *gin.Context) {
	var req request.CreateContactListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.listSvc.CreateContactList(c.Request.Context(), req.Name, req.Description)
	if err != nil {
		HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ResponseData{Code: errorx.CodeSuccess, Msg: "success", Data: data})
}

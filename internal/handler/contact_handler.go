package handler

import (
	"strconv"

	"sms_campaign_server/internal/dto/request"
	"sms_campaign_server/internal/service"
	"sms_campaign_server/pkg/errorx"

	"github.com/gin-gonic/gin"
)

// ContactHandler serves /api/contacts.
type ContactHandler struct {
	contactSvc service.ContactService
}

// NewContactHandler creates the handler.
func NewContactHandler(contactSvc service.ContactService) *ContactHandler {
	return &ContactHandler{contactSvc: contactSvc}
}

// List GET /api/contacts
// Response: []respond.ContactRespond
func (h *ContactHandler) List(c *gin.Context) {
	data, err := h.contactSvc.ListContacts(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// ToggleOptOut PATCH /api/contacts/:id/opt-out
// Response: respond.ContactRespond
func (h *ContactHandler) ToggleOptOut(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		HandleError(c, errorx.Newf(errorx.CodeInvalidParam, "invalid contact id %q", c.Param("id")))
		return
	}
	data, err := h.contactSvc.ToggleOptOut(c.Request.Context(), uint(id))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// Upload POST /api/contacts/upload
// multipart: csv (file), listId
// Response: respond.UploadContactsRespond
func (h *ContactHandler) Upload(c *gin.Context) {
	var req request.UploadContactsRequest
	if err := c.ShouldBind(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	file, err := c.FormFile("csv")
	if err != nil {
		HandleError(c, errorx.Wrap(err, errorx.CodeInvalidParam, "csv file is required"))
		return
	}
	data, err := h.contactSvc.UploadContacts(c.Request.Context(), req.ListID, file)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

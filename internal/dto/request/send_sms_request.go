package request

// SendSmsRequest POST /api/send-sms
// ContactID is optional; without it the contact is found or created by To.
type SendSmsRequest struct {
	To        string `json:"to" binding:"required,max=32"`
	Body      string `json:"body" binding:"required,max=1600"`
	ContactID *uint  `json:"contactId"`
}

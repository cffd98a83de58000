package request

// CreateContactListRequest POST /api/contact-lists
type CreateContactListRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Description string `json:"description" binding:"max=500"`
}

package request

// UploadContactsRequest multipart fields of POST /api/contacts/upload.
// The file itself is the "csv" part.
type UploadContactsRequest struct {
	ListID uint `form:"listId" binding:"required,gt=0"`
}

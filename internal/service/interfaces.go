// Package service defines the business interfaces the handlers call.
package service

import (
	"context"
	"mime/multipart"

	"sms_campaign_server/internal/dto/request"
	"sms_campaign_server/internal/dto/respond"
)

// ContactService contact listing, opt-out and CSV ingestion.
type ContactService interface {
	// ListContacts newest-first with lists and latest message.
	ListContacts(ctx context.Context) ([]respond.ContactRespond, error)
	// ToggleOptOut flips the opt-out flag of contact id.
	ToggleOptOut(ctx context.Context, id uint) (*respond.ContactRespond, error)
	// UploadContacts ingests a CSV file into list listID.
	UploadContacts(ctx context.Context, listID uint, file *multipart.FileHeader) (*respond.UploadContactsRespond, error)
}

// ContactListService contact list management.
type ContactListService interface {
	ListContactLists(ctx context.Context) ([]respond.ContactListRespond, error)
	CreateContactList(ctx context.Context, name, description string) (*respond.ContactListRespond, error)
}

// CampaignService launches campaigns and lists them.
type CampaignService interface {
	// LaunchCampaign returns once every recipient has been attempted.
	LaunchCampaign(ctx context.Context, name, message string, targetListIDs []uint) (*respond.CampaignRespond, error)
	ListCampaigns(ctx context.Context) ([]respond.CampaignRespond, error)
}

// ReconcilerService applies provider status callbacks.
type ReconcilerService interface {
	ApplyStatusUpdate(ctx context.Context, providerMessageID, status string) error
}

// InboundService records messages sent by contacts.
type InboundService interface {
	ReceiveMessage(ctx context.Context, from, to, body, providerMessageID string) error
}

// MessageService message history and one-off sends.
type MessageService interface {
	ListMessages(ctx context.Context) ([]respond.MessageRespond, error)
	SendSMS(ctx context.Context, req request.SendSmsRequest) (*respond.MessageRespond, error)
}

// AuthService operator login.
type AuthService interface {
	Login(ctx context.Context, req request.LoginRequest) (*respond.LoginRespond, error)
}

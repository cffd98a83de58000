// Package respond holds the JSON shapes returned by the API and carried by live events.
package respond

import (
	"time"

	"sms_campaign_server/internal/model"
)

// ContactListRef is a list as seen from a contact or campaign.
type ContactListRef struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// ContactSummary is the contact joined onto a message.
type ContactSummary struct {
	ID       uint   `json:"id"`
	Phone    string `json:"phone"`
	Name     string `json:"name"`
	OptedOut bool   `json:"optedOut"`
}

// CampaignSummary is the campaign joined onto a message.
type CampaignSummary struct {
	ID     uint   `json:"id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

// MessageRespond is one message.
type MessageRespond struct {
	ID                uint             `json:"id"`
	ProviderMessageID *string          `json:"providerMessageId"`
	From              string           `json:"from"`
	To                string           `json:"to"`
	Body              string           `json:"body"`
	Direction         string           `json:"direction"`
	Status            string           `json:"status"`
	Timestamp         time.Time        `json:"timestamp"`
	ContactID         uint             `json:"contactId"`
	CampaignID        *uint            `json:"campaignId"`
	Contact           *ContactSummary  `json:"contact,omitempty"`
	Campaign          *CampaignSummary `json:"campaign,omitempty"`
}

// ContactRespond is one contact with its lists and latest message.
type ContactRespond struct {
	ID            uint             `json:"id"`
	Phone         string           `json:"phone"`
	Name          string           `json:"name"`
	Email         *string          `json:"email"`
	OptedOut      bool             `json:"optedOut"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
	Lists         []ContactListRef `json:"lists"`
	LatestMessage *MessageRespond  `json:"latestMessage,omitempty"`
}

// ContactListRespond is one list with its member count.
type ContactListRespond struct {
	ID          uint      `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	MemberCount int64     `json:"memberCount"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CampaignRespond is one campaign with its messages and target lists.
type CampaignRespond struct {
	ID             uint             `json:"id"`
	Name           string           `json:"name"`
	Message        string           `json:"message"`
	Status         string           `json:"status"`
	SentCount      int              `json:"sentCount"`
	DeliveredCount int              `json:"deliveredCount"`
	FailedCount    int              `json:"failedCount"`
	OptOutCount    int              `json:"optOutCount"`
	SentAt         *time.Time       `json:"sentAt"`
	CreatedAt      time.Time        `json:"createdAt"`
	TargetLists    []ContactListRef `json:"targetLists"`
	Messages       []MessageRespond `json:"messages"`
}

// UploadContactsRespond is the CSV ingestion summary.
type UploadContactsRespond struct {
	Success           bool `json:"success"`
	ContactsProcessed int  `json:"contactsProcessed"`
	TotalRows         int  `json:"totalRows"`
	SkippedRows       int  `json:"skippedRows"`
}

// ContactsUploadedEvent is the contacts_uploaded payload.
type ContactsUploadedEvent struct {
	Count  int  `json:"count"`
	ListID uint `json:"listId"`
}

// LoginRespond carries the operator access token.
type LoginRespond struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
	ExpiresIn   int    `json:"expiresIn"` // seconds
}

// HealthRespond liveness body.
type HealthRespond struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage converts m; Contact and Campaign are included when preloaded.
func NewMessage(m *model.Message) MessageRespond {
	out := MessageRespond{
		ID:                m.ID,
		ProviderMessageID: m.ProviderMessageID,
		From:              m.From,
		To:                m.To,
		Body:              m.Body,
		Direction:         m.Direction,
		Status:            m.Status,
		Timestamp:         m.Timestamp,
		ContactID:         m.ContactID,
		CampaignID:        m.CampaignID,
	}
	if m.Contact != nil {
		out.Contact = &ContactSummary{
			ID:       m.Contact.ID,
			Phone:    m.Contact.Phone,
			Name:     m.Contact.Name,
			OptedOut: m.Contact.OptedOut,
		}
	}
	if m.Campaign != nil {
		out.Campaign = &CampaignSummary{ID: m.Campaign.ID, Name: m.Campaign.Name, Status: m.Campaign.Status}
	}
	return out
}

// NewMessages converts a slice.
func NewMessages(messages []model.Message) []MessageRespond {
	out := make([]MessageRespond, 0, len(messages))
	for i := range messages {
		out = append(out, NewMessage(&messages[i]))
	}
	return out
}

// NewContact converts c; latest may be nil.
func NewContact(c *model.Contact, latest *model.Message) ContactRespond {
	out := ContactRespond{
		ID:        c.ID,
		Phone:     c.Phone,
		Name:      c.Name,
		Email:     c.Email,
		OptedOut:  c.OptedOut,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
		Lists:     make([]ContactListRef, 0, len(c.Memberships)),
	}
	for _, m := range c.Memberships {
		if m.ContactList != nil {
			out.Lists = append(out.Lists, ContactListRef{ID: m.ContactList.ID, Name: m.ContactList.Name})
		}
	}
	if latest != nil {
		msg := NewMessage(latest)
		out.LatestMessage = &msg
	}
	return out
}

// NewContactList converts l.
func NewContactList(l *model.ContactList, memberCount int64) ContactListRespond {
	return ContactListRespond{
		ID:          l.ID,
		Name:        l.Name,
		Description: l.Description,
		MemberCount: memberCount,
		CreatedAt:   l.CreatedAt,
	}
}

// NewCampaign converts c with whatever relations are loaded.
func NewCampaign(c *model.Campaign) CampaignRespond {
	out := CampaignRespond{
		ID:             c.ID,
		Name:           c.Name,
		Message:        c.Body,
		Status:         c.Status,
		SentCount:      c.SentCount,
		DeliveredCount: c.DeliveredCount,
		FailedCount:    c.FailedCount,
		OptOutCount:    c.OptOutCount,
		CreatedAt:      c.CreatedAt,
		TargetLists:    make([]ContactListRef, 0, len(c.TargetLists)),
		Messages:       NewMessages(c.Messages),
	}
	if c.SentAt.Valid {
		t := c.SentAt.Time
		out.SentAt = &t
	}
	for _, tl := range c.TargetLists {
		ref := ContactListRef{ID: tl.ContactListID}
		if tl.ContactList != nil {
			ref.Name = tl.ContactList.Name
		}
		out.TargetLists = append(out.TargetLists, ref)
	}
	return out
}

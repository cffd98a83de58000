package model

import (
	"time"

	"gorm.io/gorm"
)

// Message is one outbound send attempt or one inbound receipt.
// After creation only Status changes.
type Message struct {
	gorm.Model

	// ProviderMessageID is assigned by the provider; NULL until it answers.
	ProviderMessageID *string `gorm:"column:provider_message_id;uniqueIndex;type:varchar(64);comment:provider message id"`

	From string `gorm:"column:from_number;type:varchar(32);not null;comment:sender"`
	To   string `gorm:"column:to_number;type:varchar(32);not null;comment:recipient"`
	Body string `gorm:"column:body;type:TEXT;comment:message text"`

	// Direction is inbound or outbound.
	Direction string `gorm:"column:direction;type:varchar(10);not null;index;comment:inbound or outbound"`

	// Status is provider defined: pending, delivered, failed, received ...
	Status string `gorm:"column:status;type:varchar(32);not null;comment:delivery status"`

	Timestamp time.Time `gorm:"column:timestamp;not null;index;comment:send or receive time"`

	ContactID  uint  `gorm:"column:contact_id;index;not null"`
	CampaignID *uint `gorm:"column:campaign_id;index"`

	Contact  *Contact  `gorm:"foreignKey:ContactID"`
	Campaign *Campaign `gorm:"foreignKey:CampaignID"`
}

func (Message) TableName() string {
	return "message"
}

// ProviderID returns the provider id or "".
func (m *Message) ProviderID() string {
	if m.ProviderMessageID == nil {
		return ""
	}
	return *m.ProviderMessageID
}

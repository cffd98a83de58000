package model

import (
	"database/sql"

	"gorm.io/gorm"
)

// Campaign is one message body dispatched to the members of its target lists.
//
// SentCount is written once, when dispatch finishes. DeliveredCount and
// FailedCount are always re-derived from the campaign's messages, so
// DeliveredCount+FailedCount never exceeds SentCount.
type Campaign struct {
	gorm.Model

	Name string `gorm:"column:name;type:varchar(191);not null;comment:campaign name"`

	// Body is sent verbatim to every recipient.
	Body string `gorm:"column:message;type:TEXT;not null;comment:message body"`

	// Status is draft, sending or completed. completed means submission
	// finished, not delivery.
	Status string `gorm:"column:status;type:varchar(20);not null;default:draft;index;comment:campaign status"`

	SentCount      int `gorm:"column:sent_count;not null;default:0"`
	DeliveredCount int `gorm:"column:delivered_count;not null;default:0"`
	FailedCount    int `gorm:"column:failed_count;not null;default:0"`
	OptOutCount    int `gorm:"column:opt_out_count;not null;default:0"`

	SentAt sql.NullTime `gorm:"column:sent_at;comment:dispatch finish time"`

	TargetLists []CampaignTargetList `gorm:"foreignKey:CampaignID"`
	Messages    []Message            `gorm:"foreignKey:CampaignID"`
}

func (Campaign) TableName() string {
	return "campaign"
}

// CampaignTargetList links a campaign to a list. The pair is unique.
type CampaignTargetList struct {
	gorm.Model
	CampaignID    uint         `gorm:"column:campaign_id;uniqueIndex:idx_campaign_list_pair;not null"`
	ContactListID uint         `gorm:"column:contact_list_id;uniqueIndex:idx_campaign_list_pair;not null"`
	ContactList   *ContactList `gorm:"foreignKey:ContactListID"`
}

func (CampaignTargetList) TableName() string {
	return "campaign_target_list"
}

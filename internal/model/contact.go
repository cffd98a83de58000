// Package model holds the gorm entities.
package model

import (
	"gorm.io/gorm"
)

// Contact is a phone-number identity that can be messaged.
// Contacts are never hard-deleted; opting out only flips OptedOut.
type Contact struct {
	gorm.Model

	// Phone is the identity key, stored trimmed.
	Phone string `gorm:"column:phone;uniqueIndex;type:varchar(32);not null;comment:phone number"`

	Name  string  `gorm:"column:name;type:varchar(100);not null;comment:display name"`
	Email *string `gorm:"column:email;type:varchar(255);comment:optional email"`

	// OptedOut suppresses every future campaign send.
	OptedOut bool `gorm:"column:opted_out;not null;default:false;index;comment:opt-out flag"`

	Memberships []ContactListMembership `gorm:"foreignKey:ContactID"`
	Messages    []Message               `gorm:"foreignKey:ContactID"`
}

func (Contact) TableName() string {
	return "contact"
}

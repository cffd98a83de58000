package model

import (
	"gorm.io/gorm"
)

// ContactList is a named grouping used as a campaign target.
type ContactList struct {
	gorm.Model
	Name        string                  `gorm:"column:name;uniqueIndex;type:varchar(191);not null;comment:normalized list name"`
	Description string                  `gorm:"column:description;type:varchar(500);comment:description"`
	Memberships []ContactListMembership `gorm:"foreignKey:ContactListID"`
}

func (ContactList) TableName() string {
	return "contact_list"
}

// ContactListMembership joins a contact to a list. The pair is unique.
type ContactListMembership struct {
	gorm.Model
	ContactID     uint         `gorm:"column:contact_id;uniqueIndex:idx_membership_pair;not null"`
	ContactListID uint         `gorm:"column:contact_list_id;uniqueIndex:idx_membership_pair;index;not null"`
	Contact       *Contact     `gorm:"foreignKey:ContactID"`
	ContactList   *ContactList `gorm:"foreignKey:ContactListID"`
}

func (ContactListMembership) TableName() string {
	return "contact_list_membership"
}

// Package repository implements the store over gorm, one repository per aggregate.
package repository

import (
	"context"
	"time"

	"sms_campaign_server/internal/model"

	"gorm.io/gorm"
)

// ContactRepository contact access.
type ContactRepository interface {
	FindByID(ctx context.Context, id uint) (*model.Contact, error)
	FindByPhone(ctx context.Context, phone string) (*model.Contact, error)
	FindByPhones(ctx context.Context, phones []string) ([]model.Contact, error)
	// FindAll is newest-first with memberships and their lists preloaded.
	FindAll(ctx context.Context) ([]model.Contact, error)
	// FindActiveInLists returns each contact with a membership in listIDs once, opted-out excluded.
	FindActiveInLists(ctx context.Context, listIDs []uint) ([]model.Contact, error)
	// CountOptedOutInLists counts distinct opted-out members of listIDs.
	CountOptedOutInLists(ctx context.Context, listIDs []uint) (int64, error)
	Create(ctx context.Context, contact *model.Contact) error
	// UpsertByPhone returns the stored contact for contact.Phone, creating it if absent.
	UpsertByPhone(ctx context.Context, contact *model.Contact) (stored *model.Contact, created bool, err error)
	SetOptOut(ctx context.Context, id uint, optedOut bool) error
}

// ContactListRepository contact list access.
type ContactListRepository interface {
	FindByID(ctx context.Context, id uint) (*model.ContactList, error)
	FindByIDs(ctx context.Context, ids []uint) ([]model.ContactList, error)
	// CreateUnique stores a list under the normalized name, suffixing a
	// uniqueness token when the name is taken. It never fails on collision.
	CreateUnique(ctx context.Context, name, description string) (*model.ContactList, error)
	// FindAllWithCounts is newest-first with member counts.
	FindAllWithCounts(ctx context.Context) ([]ContactListWithCount, error)
}

// MembershipRepository contact <-> list join access.
type MembershipRepository interface {
	// Upsert is idempotent per (contact, list).
	Upsert(ctx context.Context, contactID, listID uint) error
	UpsertMany(ctx context.Context, contactIDs []uint, listID uint) error
	CountByList(ctx context.Context) (map[uint]int64, error)
}

// CampaignRepository campaign access.
type CampaignRepository interface {
	// Create stores campaign with one link per distinct list id.
	Create(ctx context.Context, campaign *model.Campaign, listIDs []uint) error
	FindByID(ctx context.Context, id uint) (*model.Campaign, error)
	// FindByIDWithRelations joins messages and target lists.
	FindByIDWithRelations(ctx context.Context, id uint) (*model.Campaign, error)
	FindAll(ctx context.Context) ([]model.Campaign, error)
	UpdateCounters(ctx context.Context, id uint, delivered, failed int) error
	// Complete marks the campaign completed with its final counters.
	Complete(ctx context.Context, id uint, sent, delivered, failed int, sentAt time.Time) error
}

// MessageRepository message access.
type MessageRepository interface {
	Create(ctx context.Context, message *model.Message) error
	FindByProviderMessageID(ctx context.Context, providerMessageID string) (*model.Message, error)
	// FindByIDWithRelations joins contact and campaign.
	FindByIDWithRelations(ctx context.Context, id uint) (*model.Message, error)
	UpdateStatus(ctx context.Context, id uint, status string) error
	// CountByStatus groups the campaign's messages by lowercased status.
	CountByStatus(ctx context.Context, campaignID uint) (map[string]int64, error)
	// FindAll is newest-first by timestamp with contact and campaign joined.
	FindAll(ctx context.Context) ([]model.Message, error)
	// FindLatestByContactIDs maps each contact to its most recent message.
	FindLatestByContactIDs(ctx context.Context, contactIDs []uint) (map[uint]model.Message, error)
}

// ContactListWithCount is a list with its member count.
type ContactListWithCount struct {
	model.ContactList
	MemberCount int64
}

// Repositories aggregates every repository. Services reach the store only through it.
type Repositories struct {
	db          *gorm.DB
	Contact     ContactRepository
	ContactList ContactListRepository
	Membership  MembershipRepository
	Campaign    CampaignRepository
	Message     MessageRepository
}

// NewRepositories builds the aggregate over db.
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		db:          db,
		Contact:     NewContactRepository(db),
		ContactList: NewContactListRepository(db),
		Membership:  NewMembershipRepository(db),
		Campaign:    NewCampaignRepository(db),
		Message:     NewMessageRepository(db),
	}
}

// Transaction runs fn with repositories bound to one transaction.
// fn returning an error rolls everything back.
func (r *Repositories) Transaction(ctx context.Context, fn func(txRepos *Repositories) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}

// DB exposes the underlying handle for migrations and health checks.
func (r *Repositories) DB() *gorm.DB {
	return r.db
}

// Ping checks the connection.
func (r *Repositories) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return wrapDBError(err, "get sql.DB")
	}
	return wrapDBError(sqlDB.PingContext(ctx), "ping database")
}

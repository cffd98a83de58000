package repository

import (
	"context"

	"sms_campaign_server/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type contactRepository struct {
	db *gorm.DB
}

// NewContactRepository creates the contact repository.
func NewContactRepository(db *gorm.DB) ContactRepository {
	return &contactRepository{db: db}
}

func (r *contactRepository) FindByID(ctx context.Context, id uint) (*model.Contact, error) {
	var contact model.Contact
	if err := r.db.WithContext(ctx).First(&contact, id).Error; err != nil {
		return nil, wrapDBErrorf(err, "find contact id=%d", id)
	}
	return &contact, nil
}

func (r *contactRepository) FindByPhone(ctx context.Context, phone string) (*model.Contact, error) {
	var contact model.Contact
	if err := r.db.WithContext(ctx).Where("phone = ?", phone).First(&contact).Error; err != nil {
		return nil, wrapDBErrorf(err, "find contact phone=%s", phone)
	}
	return &contact, nil
}

func (r *contactRepository) FindByPhones(ctx context.Context, phones []string) ([]model.Contact, error) {
	var contacts []model.Contact
	if len(phones) == 0 {
		return contacts, nil
	}
	if err := r.db.WithContext(ctx).Where("phone IN ?", phones).Find(&contacts).Error; err != nil {
		return nil, wrapDBError(err, "find contacts by phone")
	}
	return contacts, nil
}

func (r *contactRepository) FindAll(ctx context.Context) ([]model.Contact, error) {
	var contacts []model.Contact
	err := r.db.WithContext(ctx).
		Preload("Memberships.ContactList").
		Order("created_at DESC").Order("id DESC").
		Find(&contacts).Error
	if err != nil {
		return nil, wrapDBError(err, "list contacts")
	}
	return contacts, nil
}

// membersOf selects the contact ids with a membership in listIDs.
func (r *contactRepository) membersOf(listIDs []uint) *gorm.DB {
	return r.db.Model(&model.ContactListMembership{}).
		Select("contact_id").
		Where("contact_list_id IN ?", listIDs)
}

func (r *contactRepository) FindActiveInLists(ctx context.Context, listIDs []uint) ([]model.Contact, error) {
	var contacts []model.Contact
	if len(listIDs) == 0 {
		return contacts, nil
	}
	// IN (subquery) yields each contact once however many lists it is in
	err := r.db.WithContext(ctx).
		Where("opted_out = ?", false).
		Where("id IN (?)", r.membersOf(listIDs)).
		Order("id ASC").
		Find(&contacts).Error
	if err != nil {
		return nil, wrapDBErrorf(err, "resolve recipients lists=%v", listIDs)
	}
	return contacts, nil
}

func (r *contactRepository) CountOptedOutInLists(ctx context.Context, listIDs []uint) (int64, error) {
	var n int64
	if len(listIDs) == 0 {
		return 0, nil
	}
	err := r.db.WithContext(ctx).Model(&model.Contact{}).
		Where("opted_out = ?", true).
		Where("id IN (?)", r.membersOf(listIDs)).
		Count(&n).Error
	if err != nil {
		return 0, wrapDBErrorf(err, "count opted-out lists=%v", listIDs)
	}
	return n, nil
}

func (r *contactRepository) Create(ctx context.Context, contact *model.Contact) error {
	if err := r.db.WithContext(ctx).Create(contact).Error; err != nil {
		return wrapDBErrorf(err, "create contact phone=%s", contact.Phone)
	}
	return nil
}

func (r *contactRepository) UpsertByPhone(ctx context.Context, contact *model.Contact) (*model.Contact, bool, error) {
	existing, err := r.FindByPhone(ctx, contact.Phone)
	if err == nil {
		return existing, false, nil
	}
	if !isNotFound(err) {
		return nil, false, err
	}

	// a concurrent insert of the same phone turns into a no-op
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "phone"}}, DoNothing: true}).
		Create(contact)
	if res.Error != nil {
		return nil, false, wrapDBErrorf(res.Error, "upsert contact phone=%s", contact.Phone)
	}
	if res.RowsAffected == 0 {
		existing, err := r.FindByPhone(ctx, contact.Phone)
		return existing, false, err
	}
	return contact, true, nil
}

func (r *contactRepository) SetOptOut(ctx context.Context, id uint, optedOut bool) error {
	err := r.db.WithContext(ctx).Model(&model.Contact{}).Where("id = ?", id).Update("opted_out", optedOut).Error
	if err != nil {
		return wrapDBErrorf(err, "set opt-out contact id=%d", id)
	}
	return nil
}

package repository

import (
	"context"

	"sms_campaign_server/internal/model"
	"sms_campaign_server/pkg/util/snowflake"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type contactListRepository struct {
	db *gorm.DB
}

// NewContactListRepository creates the contact list repository.
func NewContactListRepository(db *gorm.DB) ContactListRepository {
	return &contactListRepository{db: db}
}

func (r *contactListRepository) FindByID(ctx context.Context, id uint) (*model.ContactList, error) {
	var list model.ContactList
	if err := r.db.WithContext(ctx).First(&list, id).Error; err != nil {
		return nil, wrapDBErrorf(err, "find contact list id=%d", id)
	}
	return &list, nil
}

func (r *contactListRepository) FindByIDs(ctx context.Context, ids []uint) ([]model.ContactList, error) {
	var lists []model.ContactList
	if len(ids) == 0 {
		return lists, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", uniqueUints(ids)).Find(&lists).Error; err != nil {
		return nil, wrapDBErrorf(err, "find contact lists ids=%v", ids)
	}
	return lists, nil
}

func (r *contactListRepository) CreateUnique(ctx context.Context, name, description string) (*model.ContactList, error) {
	normalized := NormalizeListName(name)
	list := &model.ContactList{Name: normalized, Description: description}

	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(list)
	if res.Error != nil {
		return nil, wrapDBErrorf(res.Error, "create contact list name=%s", normalized)
	}
	if res.RowsAffected > 0 {
		return list, nil
	}

	// name taken
	list = &model.ContactList{
		Name:        normalized + "_" + snowflake.GenerateIDString(),
		Description: description,
	}
	if err := r.db.WithContext(ctx).Create(list).Error; err != nil {
		return nil, wrapDBErrorf(err, "create contact list name=%s", list.Name)
	}
	return list, nil
}

func (r *contactListRepository) FindAllWithCounts(ctx context.Context) ([]ContactListWithCount, error) {
	var lists []model.ContactList
	if err := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&lists).Error; err != nil {
		return nil, wrapDBError(err, "list contact lists")
	}

	byList, err := NewMembershipRepository(r.db).CountByList(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]ContactListWithCount, 0, len(lists))
	for _, l := range lists {
		out = append(out, ContactListWithCount{ContactList: l, MemberCount: byList[l.ID]})
	}
	return out, nil
}

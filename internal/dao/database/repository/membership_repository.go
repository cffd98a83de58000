package repository

import (
	"context"

	"sms_campaign_server/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type membershipRepository struct {
	db *gorm.DB
}

// NewMembershipRepository creates the membership repository.
func NewMembershipRepository(db *gorm.DB) MembershipRepository {
	return &membershipRepository{db: db}
}

var membershipConflict = clause.OnConflict{
	Columns:   []clause.Column{{Name: "contact_id"}, {Name: "contact_list_id"}},
	DoNothing: true,
}

func (r *membershipRepository) Upsert(ctx context.Context, contactID, listID uint) error {
	m := &model.ContactListMembership{ContactID: contactID, ContactListID: listID}
	if err := r.db.WithContext(ctx).Clauses(membershipConflict).Create(m).Error; err != nil {
		return wrapDBErrorf(err, "upsert membership contact=%d list=%d", contactID, listID)
	}
	return nil
}

func (r *membershipRepository) UpsertMany(ctx context.Context, contactIDs []uint, listID uint) error {
	ids := uniqueUints(contactIDs)
	if len(ids) == 0 {
		return nil
	}
	rows := make([]model.ContactListMembership, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, model.ContactListMembership{ContactID: id, ContactListID: listID})
	}
	if err := r.db.WithContext(ctx).Clauses(membershipConflict).Create(&rows).Error; err != nil {
		return wrapDBErrorf(err, "upsert memberships list=%d", listID)
	}
	return nil
}

type listCount struct {
	ContactListID uint
	Total         int64
}

func (r *membershipRepository) CountByList(ctx context.Context) (map[uint]int64, error) {
	var counts []listCount
	err := r.db.WithContext(ctx).Model(&model.ContactListMembership{}).
		Select("contact_list_id, COUNT(*) AS total").
		Group("contact_list_id").
		Scan(&counts).Error
	if err != nil {
		return nil, wrapDBError(err, "count list members")
	}
	out := make(map[uint]int64, len(counts))
	for _, c := range counts {
		out[c.ContactListID] = c.Total
	}
	return out, nil
}

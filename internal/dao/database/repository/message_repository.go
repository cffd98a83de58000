package repository

import (
	"context"

	"sms_campaign_server/internal/model"

	"gorm.io/gorm"
)

type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository creates the message repository.
func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, message *model.Message) error {
	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		return wrapDBErrorf(err, "create %s message to=%s", message.Direction, message.To)
	}
	return nil
}

func (r *messageRepository) FindByProviderMessageID(ctx context.Context, providerMessageID string) (*model.Message, error) {
	var message model.Message
	err := r.db.WithContext(ctx).Where("provider_message_id = ?", providerMessageID).First(&message).Error
	if err != nil {
		return nil, wrapDBErrorf(err, "find message provider_message_id=%s", providerMessageID)
	}
	return &message, nil
}

func (r *messageRepository) FindByIDWithRelations(ctx context.Context, id uint) (*model.Message, error) {
	var message model.Message
	if err := r.db.WithContext(ctx).Preload("Contact").Preload("Campaign").First(&message, id).Error; err != nil {
		return nil, wrapDBErrorf(err, "find message id=%d", id)
	}
	return &message, nil
}

func (r *messageRepository) UpdateStatus(ctx context.Context, id uint, status string) error {
	err := r.db.WithContext(ctx).Model(&model.Message{}).Where("id = ?", id).Update("status", status).Error
	if err != nil {
		return wrapDBErrorf(err, "update message status id=%d", id)
	}
	return nil
}

type statusCount struct {
	Status string
	Total  int64
}

func (r *messageRepository) CountByStatus(ctx context.Context, campaignID uint) (map[string]int64, error) {
	var rows []statusCount
	err := r.db.WithContext(ctx).Model(&model.Message{}).
		Select("LOWER(status) AS status, COUNT(*) AS total").
		Where("campaign_id = ?", campaignID).
		Group("LOWER(status)").
		Scan(&rows).Error
	if err != nil {
		return nil, wrapDBErrorf(err, "count messages by status campaign=%d", campaignID)
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[row.Status] = row.Total
	}
	return out, nil
}

func (r *messageRepository) FindAll(ctx context.Context) ([]model.Message, error) {
	var messages []model.Message
	err := r.db.WithContext(ctx).
		Preload("Contact").Preload("Campaign").
		Order("timestamp DESC").Order("id DESC").
		Find(&messages).Error
	if err != nil {
		return nil, wrapDBError(err, "list messages")
	}
	return messages, nil
}

func (r *messageRepository) FindLatestByContactIDs(ctx context.Context, contactIDs []uint) (map[uint]model.Message, error) {
	out := make(map[uint]model.Message, len(contactIDs))
	if len(contactIDs) == 0 {
		return out, nil
	}
	latest := r.db.Model(&model.Message{}).
		Select("MAX(id)").
		Where("contact_id IN ?", uniqueUints(contactIDs)).
		Group("contact_id")

	var messages []model.Message
	if err := r.db.WithContext(ctx).Where("id IN (?)", latest).Find(&messages).Error; err != nil {
		return nil, wrapDBError(err, "find latest messages")
	}
	for _, m := range messages {
		out[m.ContactID] = m
	}
	return out, nil
}

package repository

import (
	"context"
	"time"

	"sms_campaign_server/internal/model"
	"sms_campaign_server/pkg/constants"

	"gorm.io/gorm"
)

type campaignRepository struct {
	db *gorm.DB
}

// NewCampaignRepository creates the campaign repository.
func NewCampaignRepository(db *gorm.DB) CampaignRepository {
	return &campaignRepository{db: db}
}

func (r *campaignRepository) Create(ctx context.Context, campaign *model.Campaign, listIDs []uint) error {
	ids := uniqueUints(listIDs)
	campaign.TargetLists = make([]model.CampaignTargetList, 0, len(ids))
	for _, id := range ids {
		campaign.TargetLists = append(campaign.TargetLists, model.CampaignTargetList{ContactListID: id})
	}
	// target links are inserted with the campaign
	if err := r.db.WithContext(ctx).Create(campaign).Error; err != nil {
		return wrapDBErrorf(err, "create campaign name=%s", campaign.Name)
	}
	return nil
}

func (r *campaignRepository) FindByID(ctx context.Context, id uint) (*model.Campaign, error) {
	var campaign model.Campaign
	if err := r.db.WithContext(ctx).First(&campaign, id).Error; err != nil {
		return nil, wrapDBErrorf(err, "find campaign id=%d", id)
	}
	return &campaign, nil
}

func (r *campaignRepository) withRelations(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("timestamp DESC").Order("id DESC")
		}).
		Preload("TargetLists.ContactList")
}

func (r *campaignRepository) FindByIDWithRelations(ctx context.Context, id uint) (*model.Campaign, error) {
	var campaign model.Campaign
	if err := r.withRelations(ctx).First(&campaign, id).Error; err != nil {
		return nil, wrapDBErrorf(err, "find campaign id=%d", id)
	}
	return &campaign, nil
}

func (r *campaignRepository) FindAll(ctx context.Context) ([]model.Campaign, error) {
	var campaigns []model.Campaign
	if err := r.withRelations(ctx).Order("created_at DESC").Order("id DESC").Find(&campaigns).Error; err != nil {
		return nil, wrapDBError(err, "list campaigns")
	}
	return campaigns, nil
}

func (r *campaignRepository) UpdateCounters(ctx context.Context, id uint, delivered, failed int) error {
	err := r.db.WithContext(ctx).Model(&model.Campaign{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"delivered_count": delivered,
			"failed_count":    failed,
		}).Error
	if err != nil {
		return wrapDBErrorf(err, "update campaign counters id=%d", id)
	}
	return nil
}

func (r *campaignRepository) Complete(ctx context.Context, id uint, sent, delivered, failed int, sentAt time.Time) error {
	err := r.db.WithContext(ctx).Model(&model.Campaign{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":          constants.CampaignCompleted,
			"sent_count":      sent,
			"delivered_count": delivered,
			"failed_count":    failed,
			"sent_at":         sentAt,
		}).Error
	if err != nil {
		return wrapDBErrorf(err, "complete campaign id=%d", id)
	}
	return nil
}

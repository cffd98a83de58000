// Package reconciler applies provider delivery status callbacks to stored
// messages and keeps campaign counters derived from them.
package reconciler

import (
	"context"
	"strconv"
	"strings"

	"github.com/moby/locker"
	"go.uber.org/zap"

	"sms_campaign_server/internal/dao/database/repository"
	"sms_campaign_server/internal/dto/respond"
	"sms_campaign_server/internal/events"
	"sms_campaign_server/internal/infrastructure/metrics"
	"sms_campaign_server/pkg/constants"
	"sms_campaign_server/pkg/errorx"
)

type reconcilerService struct {
	repos     *repository.Repositories
	publisher events.Publisher
	locks     *locker.Locker
}

// NewReconcilerService creates the reconciler. locks must be shared with the dispatcher.
func NewReconcilerService(repos *repository.Repositories, publisher events.Publisher, locks *locker.Locker) *reconcilerService {
	return &reconcilerService{repos: repos, publisher: publisher, locks: locks}
}

// ApplyStatusUpdate overwrites the status of the message the provider knows
// as providerMessageID. Unknown ids return NotFound and change nothing.
// Status strings are stored as reported, trimmed; delivered and failed feed
// counters in any letter case.
func (s *reconcilerService) ApplyStatusUpdate(ctx context.Context, providerMessageID, status string) error {
	providerMessageID = strings.TrimSpace(providerMessageID)
	status = strings.TrimSpace(status)
	if providerMessageID == "" || status == "" {
		metrics.StatusCallbacks.WithLabelValues("invalid").Inc()
		return errorx.New(errorx.CodeInvalidParam, "message id and status are required")
	}

	msg, err := s.repos.Message.FindByProviderMessageID(ctx, providerMessageID)
	if err != nil {
		if errorx.IsNotFound(err) {
			metrics.StatusCallbacks.WithLabelValues("not_found").Inc()
			zap.L().Warn("status callback for unknown message",
				zap.String("providerMessageID", providerMessageID), zap.String("status", status))
		} else {
			metrics.StatusCallbacks.WithLabelValues("error").Inc()
		}
		return err
	}

	if err := s.repos.Message.UpdateStatus(ctx, msg.ID, status); err != nil {
		metrics.StatusCallbacks.WithLabelValues("error").Inc()
		return err
	}
	if msg.CampaignID != nil {
		if err := s.recompute(ctx, *msg.CampaignID); err != nil {
			metrics.StatusCallbacks.WithLabelValues("error").Inc()
			zap.L().Error("recompute campaign counters", zap.Uint("campaignID", *msg.CampaignID), zap.Error(err))
			return err
		}
	}
	metrics.StatusCallbacks.WithLabelValues("applied").Inc()

	full, err := s.repos.Message.FindByIDWithRelations(ctx, msg.ID)
	if err != nil {
		zap.L().Error("reload message", zap.Uint("messageID", msg.ID), zap.Error(err))
		return err
	}
	s.publisher.Publish(ctx, events.MessageStatusUpdate, respond.NewMessage(full))
	return nil
}

// recompute re-derives delivered and failed from the stored messages.
// A campaign still sending is left to the dispatcher's final recompute.
func (s *reconcilerService) recompute(ctx context.Context, campaignID uint) error {
	key := constants.CAMPAIGN_LOCK_PREFIX + strconv.FormatUint(uint64(campaignID), 10)
	s.locks.Lock(key)
	defer func() { _ = s.locks.Unlock(key) }()

	campaign, err := s.repos.Campaign.FindByID(ctx, campaignID)
	if err != nil {
		return err
	}
	if campaign.Status == constants.CampaignSending {
		return nil
	}
	counts, err := s.repos.Message.CountByStatus(ctx, campaignID)
	if err != nil {
		return err
	}
	return s.repos.Campaign.UpdateCounters(ctx, campaignID,
		int(counts[constants.MessageDelivered]), int(counts[constants.MessageFailed]))
}

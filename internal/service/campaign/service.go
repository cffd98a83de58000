// Package campaign dispatches a message to the members of a set of contact lists.
package campaign

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/moby/locker"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"sms_campaign_server/internal/dao/database/repository"
	"sms_campaign_server/internal/dto/respond"
	"sms_campaign_server/internal/events"
	"sms_campaign_server/internal/infrastructure/metrics"
	"sms_campaign_server/internal/infrastructure/sms"
	"sms_campaign_server/internal/model"
	"sms_campaign_server/pkg/constants"
	"sms_campaign_server/pkg/errorx"
)

type campaignService struct {
	repos     *repository.Repositories
	gateway   sms.Gateway
	publisher events.Publisher
	locks     *locker.Locker // shared with the status reconciler
	from      string
	now       func() time.Time
}

// NewCampaignService creates the dispatcher. locks must be the same instance
// the reconciler uses; from is the sender recorded on outbound messages.
func NewCampaignService(repos *repository.Repositories, gateway sms.Gateway, publisher events.Publisher, locks *locker.Locker, from string) *campaignService {
	return &campaignService{
		repos:     repos,
		gateway:   gateway,
		publisher: publisher,
		locks:     locks,
		from:      from,
		now:       time.Now,
	}
}

// LaunchCampaign creates the campaign, sends to every active member of the
// target lists concurrently and returns the completed campaign.
// Individual send failures never fail the campaign.
func (s *campaignService) LaunchCampaign(ctx context.Context, name, message string, targetListIDs []uint) (*respond.CampaignRespond, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.TrimSpace(message) == "" {
		return nil, errorx.New(errorx.CodeInvalidParam, "campaign name and message are required")
	}
	listIDs := distinct(targetListIDs)
	if len(listIDs) == 0 {
		return nil, errorx.New(errorx.CodeInvalidParam, "at least one target list is required")
	}
	if err := s.checkLists(ctx, listIDs); err != nil {
		return nil, err
	}

	// in-flight campaigns are not cancelled with the request
	ctx = context.WithoutCancel(ctx)

	// resolve before the row exists so a failure here leaves nothing stuck in sending
	recipients, err := s.repos.Contact.FindActiveInLists(ctx, listIDs)
	if err != nil {
		zap.L().Error("resolve recipients", zap.String("name", name), zap.Error(err))
		return nil, err
	}
	optOut, err := s.repos.Contact.CountOptedOutInLists(ctx, listIDs)
	if err != nil {
		zap.L().Error("count opted-out members", zap.String("name", name), zap.Error(err))
		return nil, err
	}

	campaign := &model.Campaign{Name: name, Body: message, Status: constants.CampaignSending, OptOutCount: int(optOut)}
	if err := s.repos.Campaign.Create(ctx, campaign, listIDs); err != nil {
		zap.L().Error("create campaign", zap.String("name", name), zap.Error(err))
		return nil, err
	}
	metrics.CampaignsLaunched.Inc()
	log := zap.L().With(zap.Uint("campaignID", campaign.ID))
	log.Info("campaign dispatch started", zap.Int("recipients", len(recipients)), zap.Int64("optedOut", optOut))

	results := make([]*model.Message, len(recipients))
	// the provider, not the dispatcher, limits throughput
	var g errgroup.Group
	for i := range recipients {
		i := i
		g.Go(func() error {
			results[i] = s.sendOne(ctx, campaign, &recipients[i])
			return nil
		})
	}
	_ = g.Wait()

	sent := 0
	for _, m := range results {
		if m != nil {
			sent++
		}
	}
	if err := s.complete(ctx, campaign.ID, sent); err != nil {
		log.Error("complete campaign", zap.Error(err))
		return nil, err
	}

	full, err := s.repos.Campaign.FindByIDWithRelations(ctx, campaign.ID)
	if err != nil {
		log.Error("reload campaign", zap.Error(err))
		return nil, err
	}
	rsp := respond.NewCampaign(full)
	s.publisher.Publish(ctx, events.CampaignUpdated, rsp)
	log.Info("campaign dispatch finished", zap.Int("sent", sent), zap.Int("attempted", len(recipients)))
	return &rsp, nil
}

// checkLists fails with NotFound naming every unknown list id.
func (s *campaignService) checkLists(ctx context.Context, listIDs []uint) error {
	lists, err := s.repos.ContactList.FindByIDs(ctx, listIDs)
	if err != nil {
		return err
	}
	if len(lists) == len(listIDs) {
		return nil
	}
	found := make(map[uint]bool, len(lists))
	for _, l := range lists {
		found[l.ID] = true
	}
	var missing []uint
	for _, id := range listIDs {
		if !found[id] {
			missing = append(missing, id)
		}
	}
	return errorx.Newf(errorx.CodeNotFound, "contact lists not found: %v", missing)
}

// sendOne submits to one recipient and records the outbound message.
// It returns nil when the send or the record failed.
func (s *campaignService) sendOne(ctx context.Context, campaign *model.Campaign, contact *model.Contact) *model.Message {
	providerID, err := s.gateway.Send(ctx, s.from, contact.Phone, campaign.Body)
	if err != nil {
		metrics.CampaignSendAttempts.WithLabelValues("failed").Inc()
		zap.L().Warn("campaign send failed",
			zap.Uint("campaignID", campaign.ID),
			zap.Uint("contactID", contact.ID),
			zap.String("to", contact.Phone),
			zap.Error(err))
		return nil
	}

	campaignID := campaign.ID
	msg := &model.Message{
		ProviderMessageID: &providerID,
		From:              s.from,
		To:                contact.Phone,
		Body:              campaign.Body,
		Direction:         constants.DirectionOutbound,
		Status:            constants.MessagePending,
		Timestamp:         s.now(),
		ContactID:         contact.ID,
		CampaignID:        &campaignID,
	}
	if err := s.repos.Message.Create(ctx, msg); err != nil {
		metrics.CampaignSendAttempts.WithLabelValues("unrecorded").Inc()
		zap.L().Error("record campaign message",
			zap.Uint("campaignID", campaign.ID),
			zap.String("providerMessageID", providerID),
			zap.Error(err))
		return nil
	}
	metrics.CampaignSendAttempts.WithLabelValues("submitted").Inc()

	msg.Contact = contact
	msg.Campaign = &model.Campaign{Model: campaign.Model, Name: campaign.Name, Status: campaign.Status}
	s.publisher.Publish(ctx, events.NewMessage, respond.NewMessage(msg))
	return msg
}

// complete finalizes counters under the campaign lock. Delivered and failed
// are re-derived because callbacks may have arrived during dispatch.
func (s *campaignService) complete(ctx context.Context, campaignID uint, sent int) error {
	key := constants.CAMPAIGN_LOCK_PREFIX + strconv.FormatUint(uint64(campaignID), 10)
	s.locks.Lock(key)
	defer func() { _ = s.locks.Unlock(key) }()

	counts, err := s.repos.Message.CountByStatus(ctx, campaignID)
	if err != nil {
		return err
	}
	return s.repos.Campaign.Complete(ctx, campaignID, sent,
		int(counts[constants.MessageDelivered]), int(counts[constants.MessageFailed]), s.now())
}

// ListCampaigns returns campaigns newest-first with messages and target lists.
func (s *campaignService) ListCampaigns(ctx context.Context) ([]respond.CampaignRespond, error) {
	campaigns, err := s.repos.Campaign.FindAll(ctx)
	if err != nil {
		zap.L().Error("list campaigns", zap.Error(err))
		return nil, err
	}
	rsp := make([]respond.CampaignRespond, 0, len(campaigns))
	for i := range campaigns {
		rsp = append(rsp, respond.NewCampaign(&campaigns[i]))
	}
	return rsp, nil
}

// distinct drops zero and repeated ids, sorted.
func distinct(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Package inbound records messages sent by contacts and honours opt-out keywords.
package inbound

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"sms_campaign_server/internal/dao/database/repository"
	myredis "sms_campaign_server/internal/dao/redis"
	"sms_campaign_server/internal/dto/respond"
	"sms_campaign_server/internal/events"
	"sms_campaign_server/internal/infrastructure/metrics"
	"sms_campaign_server/internal/infrastructure/sms"
	"sms_campaign_server/internal/model"
	"sms_campaign_server/pkg/constants"
	"sms_campaign_server/pkg/errorx"
)

type inboundService struct {
	repos     *repository.Repositories
	cache     myredis.CacheService // nil leaves dedup to the store lookup
	gateway   sms.Gateway
	publisher events.Publisher
	dedupTTL  time.Duration
	now       func() time.Time
}

// NewInboundService creates the service. cache may be nil.
func NewInboundService(repos *repository.Repositories, cache myredis.CacheService, gateway sms.Gateway, publisher events.Publisher, dedupTTLMinutes int) *inboundService {
	if dedupTTLMinutes <= 0 {
		dedupTTLMinutes = constants.INBOUND_DEDUP_MINUTES
	}
	return &inboundService{
		repos:     repos,
		cache:     cache,
		gateway:   gateway,
		publisher: publisher,
		dedupTTL:  time.Duration(dedupTTLMinutes) * time.Minute,
		now:       time.Now,
	}
}

// ReceiveMessage stores one inbound message from a contact, creating the
// contact on first contact. A body holding an opt-out keyword opts the
// contact out and triggers one confirmation. A provider id seen before is
// acknowledged without side effects.
func (s *inboundService) ReceiveMessage(ctx context.Context, from, to, body, providerMessageID string) error {
	from = strings.TrimSpace(from)
	providerMessageID = strings.TrimSpace(providerMessageID)
	if from == "" {
		metrics.InboundMessages.WithLabelValues("error").Inc()
		return errorx.New(errorx.CodeInvalidParam, "sender is required")
	}
	log := zap.L().With(zap.String("from", from), zap.String("providerMessageID", providerMessageID))

	if providerMessageID != "" {
		dup, err := s.isDuplicate(ctx, providerMessageID)
		if err != nil {
			metrics.InboundMessages.WithLabelValues("error").Inc()
			return err
		}
		if dup {
			metrics.InboundMessages.WithLabelValues("duplicate").Inc()
			log.Info("duplicate inbound message ignored")
			return nil
		}
	}

	contact, created, err := s.repos.Contact.UpsertByPhone(ctx, &model.Contact{Phone: from, Name: from})
	if err != nil {
		s.release(ctx, providerMessageID)
		metrics.InboundMessages.WithLabelValues("error").Inc()
		log.Error("find or create contact", zap.Error(err))
		return err
	}
	if created {
		log.Info("contact created from inbound message", zap.Uint("contactID", contact.ID))
	}

	if hasOptOutKeyword(body) {
		if err := s.optOut(ctx, contact, to); err != nil {
			s.release(ctx, providerMessageID)
			metrics.InboundMessages.WithLabelValues("error").Inc()
			return err
		}
		metrics.InboundMessages.WithLabelValues("opt_out").Inc()
	}

	msg := &model.Message{
		From:      from,
		To:        to,
		Body:      body,
		Direction: constants.DirectionInbound,
		Status:    constants.MessageReceived,
		Timestamp: s.now(),
		ContactID: contact.ID,
	}
	if providerMessageID != "" {
		msg.ProviderMessageID = &providerMessageID
	}
	if err := s.repos.Message.Create(ctx, msg); err != nil {
		s.release(ctx, providerMessageID)
		metrics.InboundMessages.WithLabelValues("error").Inc()
		log.Error("record inbound message", zap.Error(err))
		return err
	}
	metrics.InboundMessages.WithLabelValues("recorded").Inc()

	msg.Contact = contact
	s.publisher.Publish(ctx, events.NewMessage, respond.NewMessage(msg))
	return nil
}

// isDuplicate claims providerMessageID in the cache, then checks the store.
// The cache claim covers concurrent retries; the store covers expired claims.
func (s *inboundService) isDuplicate(ctx context.Context, providerMessageID string) (bool, error) {
	if s.cache != nil {
		claimed, err := s.cache.SetNX(ctx, constants.INBOUND_DEDUP_PREFIX+providerMessageID, "1", s.dedupTTL)
		if err != nil {
			zap.L().Warn("inbound dedup claim failed, using store only", zap.Error(err))
		} else if !claimed {
			return true, nil
		}
	}
	_, err := s.repos.Message.FindByProviderMessageID(ctx, providerMessageID)
	if err == nil {
		return true, nil
	}
	if errorx.IsNotFound(err) {
		return false, nil
	}
	return false, err
}

// release drops the dedup claim so a provider retry is processed again.
func (s *inboundService) release(ctx context.Context, providerMessageID string) {
	if s.cache == nil || providerMessageID == "" {
		return
	}
	if err := s.cache.Delete(ctx, constants.INBOUND_DEDUP_PREFIX+providerMessageID); err != nil {
		zap.L().Warn("release inbound dedup claim", zap.Error(err))
	}
}

// optOut flags the contact and sends the confirmation from to.
// A failed confirmation is logged only.
func (s *inboundService) optOut(ctx context.Context, contact *model.Contact, to string) error {
	if !contact.OptedOut {
		if err := s.repos.Contact.SetOptOut(ctx, contact.ID, true); err != nil {
			zap.L().Error("opt out contact", zap.Uint("contactID", contact.ID), zap.Error(err))
			return err
		}
		contact.OptedOut = true
	}
	zap.L().Info("contact opted out", zap.Uint("contactID", contact.ID))

	if _, err := s.gateway.Send(ctx, to, contact.Phone, constants.OptOutConfirmation); err != nil {
		zap.L().Warn("send opt-out confirmation", zap.Uint("contactID", contact.ID), zap.Error(err))
	}
	s.publisher.Publish(ctx, events.ContactUpdated, respond.NewContact(contact, nil))
	return nil
}

func hasOptOutKeyword(body string) bool {
	upper := strings.ToUpper(body)
	for _, kw := range constants.OptOutKeywords {
		if strings.Contains(upper, kw) {
			return true
		}
	}
	return false
}

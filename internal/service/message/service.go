// Package message serves the message history and one-off sends.
package message

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"sms_campaign_server/internal/dao/database/repository"
	"sms_campaign_server/internal/dto/request"
	"sms_campaign_server/internal/dto/respond"
	"sms_campaign_server/internal/events"
	"sms_campaign_server/internal/infrastructure/sms"
	"sms_campaign_server/internal/model"
	"sms_campaign_server/pkg/constants"
	"sms_campaign_server/pkg/errorx"
)

type messageService struct {
	repos     *repository.Repositories
	gateway   sms.Gateway
	publisher events.Publisher
	from      string
}

// NewMessageService creates the service; from is the sender of one-off sends.
func NewMessageService(repos *repository.Repositories, gateway sms.Gateway, publisher events.Publisher, from string) *messageService {
	return &messageService{repos: repos, gateway: gateway, publisher: publisher, from: from}
}

// ListMessages returns every message newest-first with contact and campaign.
func (m *messageService) ListMessages(ctx context.Context) ([]respond.MessageRespond, error) {
	messages, err := m.repos.Message.FindAll(ctx)
	if err != nil {
		zap.L().Error("list messages", zap.Error(err))
		return nil, err
	}
	return respond.NewMessages(messages), nil
}

// SendSMS sends one message outside any campaign. Without a contact id the
// contact is found or created by the recipient number.
func (m *messageService) SendSMS(ctx context.Context, req request.SendSmsRequest) (*respond.MessageRespond, error) {
	to := strings.TrimSpace(req.To)
	if to == "" || strings.TrimSpace(req.Body) == "" {
		return nil, errorx.New(errorx.CodeInvalidParam, "recipient and body are required")
	}

	contact, err := m.resolveContact(ctx, to, req.ContactID)
	if err != nil {
		return nil, err
	}

	providerID, err := m.gateway.Send(ctx, m.from, to, req.Body)
	if err != nil {
		zap.L().Warn("send sms", zap.String("to", to), zap.Error(err))
		if errorx.IsCode(err, errorx.CodeDeliveryError) {
			return nil, err
		}
		return nil, errorx.Wrap(err, errorx.CodeDeliveryError, "send sms")
	}

	msg := &model.Message{
		ProviderMessageID: &providerID,
		From:              m.from,
		To:                to,
		Body:              req.Body,
		Direction:         constants.DirectionOutbound,
		Status:            constants.MessagePending,
		Timestamp:         time.Now(),
		ContactID:         contact.ID,
	}
	if err := m.repos.Message.Create(ctx, msg); err != nil {
		zap.L().Error("record sms", zap.String("providerMessageID", providerID), zap.Error(err))
		return nil, err
	}

	msg.Contact = contact
	rsp := respond.NewMessage(msg)
	m.publisher.Publish(ctx, events.NewMessage, rsp)
	return &rsp, nil
}

func (m *messageService) resolveContact(ctx context.Context, to string, contactID *uint) (*model.Contact, error) {
	if contactID != nil && *contactID != 0 {
		return m.repos.Contact.FindByID(ctx, *contactID)
	}
	contact, _, err := m.repos.Contact.UpsertByPhone(ctx, &model.Contact{Phone: to, Name: to})
	if err != nil {
		zap.L().Error("find or create recipient", zap.String("to", to), zap.Error(err))
		return nil, err
	}
	return contact, nil
}

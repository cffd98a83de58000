package message

import (
	"context"
	"testing"
	"time"

	"sms_campaign_server/internal/dao/database/dbtest"
	"sms_campaign_server/internal/dto/request"
	"sms_campaign_server/internal/events"
	"sms_campaign_server/internal/events/eventstest"
	"sms_campaign_server/internal/infrastructure/sms"
	"sms_campaign_server/internal/model"
	"sms_campaign_server/pkg/constants"
	"sms_campaign_server/pkg/errorx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sender = "+15559990000"

func TestSendSMSCreatesContactAndMessage(t *testing.T) {
	repos := dbtest.New(t)
	gw := sms.NewMockGateway()
	rec := &eventstest.Recorder{}
	svc := NewMessageService(repos, gw, rec, sender)
	ctx := context.Background()

	rsp, err := svc.SendSMS(ctx, request.SendSmsRequest{To: " +15550000001 ", Body: "hi"})
	require.NoError(t, err)
	assert.Equal(t, constants.MessagePending, rsp.Status)
	assert.Equal(t, constants.DirectionOutbound, rsp.Direction)
	assert.Equal(t, sender, rsp.From)
	assert.Nil(t, rsp.CampaignID)
	require.NotNil(t, rsp.Contact)
	assert.Equal(t, "+15550000001", rsp.Contact.Phone)

	sent := gw.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, sent[0].ID, *rsp.ProviderMessageID)
	assert.Equal(t, 1, rec.Count(events.NewMessage))
}

func TestSendSMSWithContactID(t *testing.T) {
	repos := dbtest.New(t)
	svc := NewMessageService(repos, sms.NewMockGateway(), events.Nop{}, sender)
	ctx := context.Background()

	c := &model.Contact{Phone: "+15550000001", Name: "Ann"}
	require.NoError(t, repos.Contact.Create(ctx, c))

	rsp, err := svc.SendSMS(ctx, request.SendSmsRequest{To: c.Phone, Body: "hi", ContactID: &c.ID})
	require.NoError(t, err)
	assert.Equal(t, c.ID, rsp.ContactID)

	missing := uint(404)
	_, err = svc.SendSMS(ctx, request.SendSmsRequest{To: c.Phone, Body: "hi", ContactID: &missing})
	assert.True(t, errorx.IsNotFound(err))
}

func TestSendSMSDeliveryError(t *testing.T) {
	repos := dbtest.New(t)
	rec := &eventstest.Recorder{}
	svc := NewMessageService(repos, sms.NewMockGateway("+15550000001"), rec, sender)

	_, err := svc.SendSMS(context.Background(), request.SendSmsRequest{To: "+15550000001", Body: "hi"})
	assert.True(t, errorx.IsCode(err, errorx.CodeDeliveryError))
	assert.Zero(t, rec.Count(events.NewMessage))

	msgs, err := repos.Message.FindAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestListMessagesNewestFirst(t *testing.T) {
	repos := dbtest.New(t)
	svc := NewMessageService(repos, sms.NewMockGateway(), events.Nop{}, sender)
	ctx := context.Background()

	c := &model.Contact{Phone: "+15550000001", Name: "Ann"}
	require.NoError(t, repos.Contact.Create(ctx, c))
	base := time.Now()
	for i, body := range []string{"old", "new"} {
		require.NoError(t, repos.Message.Create(ctx, &model.Message{
			From: c.Phone, To: sender, Body: body, Direction: constants.DirectionInbound,
			Status: constants.MessageReceived, Timestamp: base.Add(time.Duration(i) * time.Minute), ContactID: c.ID,
		}))
	}

	msgs, err := svc.ListMessages(ctx)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "new", msgs[0].Body)
	require.NotNil(t, msgs[0].Contact)
	assert.Equal(t, "Ann", msgs[0].Contact.Name)
}

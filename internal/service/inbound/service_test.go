package inbound

import (
	"context"
	"testing"

	"sms_campaign_server/internal/dao/database/dbtest"
	"sms_campaign_server/internal/dao/database/repository"
	myredis "sms_campaign_server/internal/dao/redis"
	"sms_campaign_server/internal/dto/respond"
	"sms_campaign_server/internal/events"
	"sms_campaign_server/internal/events/eventstest"
	"sms_campaign_server/internal/infrastructure/sms"
	"sms_campaign_server/internal/model"
	"sms_campaign_server/pkg/constants"
	"sms_campaign_server/pkg/errorx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	customer = "+15550000001"
	business = "+15559990000"
)

type fixture struct {
	repos   *repository.Repositories
	gateway *sms.MockGateway
	events  *eventstest.Recorder
	svc     *inboundService
}

func newFixture(t *testing.T, cache myredis.CacheService) *fixture {
	t.Helper()
	f := &fixture{
		repos:   dbtest.New(t),
		gateway: sms.NewMockGateway(),
		events:  &eventstest.Recorder{},
	}
	f.svc = NewInboundService(f.repos, cache, f.gateway, f.events, 0)
	return f
}

func (f *fixture) messages(t *testing.T) []model.Message {
	t.Helper()
	msgs, err := f.repos.Message.FindAll(context.Background())
	require.NoError(t, err)
	return msgs
}

func TestReceiveMessageCreatesContact(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	require.NoError(t, f.svc.ReceiveMessage(ctx, customer, business, "Hello there", "SM1"))

	c, err := f.repos.Contact.FindByPhone(ctx, customer)
	require.NoError(t, err)
	assert.Equal(t, customer, c.Name)
	assert.False(t, c.OptedOut)

	msgs := f.messages(t)
	require.Len(t, msgs, 1)
	assert.Equal(t, constants.DirectionInbound, msgs[0].Direction)
	assert.Equal(t, constants.MessageReceived, msgs[0].Status)
	assert.Equal(t, "SM1", msgs[0].ProviderID())
	assert.Equal(t, c.ID, msgs[0].ContactID)
	assert.Nil(t, msgs[0].CampaignID)

	payload, ok := f.events.Last(events.NewMessage)
	require.True(t, ok)
	assert.Equal(t, "Hello there", payload.(respond.MessageRespond).Body)
	assert.Empty(t, f.gateway.Sent())
	assert.Zero(t, f.events.Count(events.ContactUpdated))
}

func TestReceiveMessageExistingContactKeepsName(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	require.NoError(t, f.repos.Contact.Create(ctx, &model.Contact{Phone: customer, Name: "Ann"}))

	require.NoError(t, f.svc.ReceiveMessage(ctx, customer, business, "hi", "SM1"))
	c, err := f.repos.Contact.FindByPhone(ctx, customer)
	require.NoError(t, err)
	assert.Equal(t, "Ann", c.Name)
}

func TestReceiveMessageOptOutKeyword(t *testing.T) {
	for _, body := range []string{"STOP", "please unsubscribe me", "Opt-Out", "quit", "cancel now"} {
		t.Run(body, func(t *testing.T) {
			f := newFixture(t, nil)
			ctx := context.Background()

			require.NoError(t, f.svc.ReceiveMessage(ctx, customer, business, body, "SM-"+body))

			c, err := f.repos.Contact.FindByPhone(ctx, customer)
			require.NoError(t, err)
			assert.True(t, c.OptedOut)

			sent := f.gateway.Sent()
			require.Len(t, sent, 1)
			assert.Equal(t, business, sent[0].From)
			assert.Equal(t, customer, sent[0].To)
			assert.Equal(t, constants.OptOutConfirmation, sent[0].Body)

			assert.Equal(t, 1, f.events.Count(events.ContactUpdated))
			assert.Equal(t, 1, f.events.Count(events.NewMessage))
			assert.Len(t, f.messages(t), 1)
		})
	}
}

func TestReceiveMessageConfirmationFailureIsSwallowed(t *testing.T) {
	f := newFixture(t, nil)
	f.gateway.Reject(customer)
	ctx := context.Background()

	require.NoError(t, f.svc.ReceiveMessage(ctx, customer, business, "stop", "SM1"))
	c, err := f.repos.Contact.FindByPhone(ctx, customer)
	require.NoError(t, err)
	assert.True(t, c.OptedOut)
	assert.Len(t, f.messages(t), 1)
}

func TestReceiveMessageDuplicate(t *testing.T) {
	cases := map[string]myredis.CacheService{
		"cache": myredis.NewMemoryCache(),
		"store": nil,
	}
	for name, cache := range cases {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, cache)
			ctx := context.Background()

			require.NoError(t, f.svc.ReceiveMessage(ctx, customer, business, "STOP", "SM1"))
			require.NoError(t, f.svc.ReceiveMessage(ctx, customer, business, "STOP", "SM1"))

			assert.Len(t, f.messages(t), 1)
			assert.Len(t, f.gateway.Sent(), 1)
			assert.Equal(t, 1, f.events.Count(events.NewMessage))
		})
	}
}

func TestReceiveMessageWithoutProviderID(t *testing.T) {
	f := newFixture(t, myredis.NewMemoryCache())
	ctx := context.Background()
	require.NoError(t, f.svc.ReceiveMessage(ctx, customer, business, "one", ""))
	require.NoError(t, f.svc.ReceiveMessage(ctx, customer, business, "two", ""))
	assert.Len(t, f.messages(t), 2)
}

func TestReceiveMessageRequiresSender(t *testing.T) {
	f := newFixture(t, nil)
	err := f.svc.ReceiveMessage(context.Background(), " ", business, "hi", "SM1")
	assert.True(t, errorx.IsCode(err, errorx.CodeInvalidParam))
}

func TestHasOptOutKeyword(t *testing.T) {
	assert.True(t, hasOptOutKeyword("Stop"))
	assert.True(t, hasOptOutKeyword("I want to OPT-OUT"))
	assert.False(t, hasOptOutKeyword("hello"))
	assert.False(t, hasOptOutKeyword(""))
}

package reconciler

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"sms_campaign_server/internal/dao/database/dbtest"
	"sms_campaign_server/internal/dao/database/repository"
	"sms_campaign_server/internal/dto/respond"
	"sms_campaign_server/internal/events"
	"sms_campaign_server/internal/events/eventstest"
	"sms_campaign_server/internal/infrastructure/sms"
	"sms_campaign_server/internal/model"
	"sms_campaign_server/internal/service/campaign"
	"sms_campaign_server/pkg/constants"
	"sms_campaign_server/pkg/errorx"

	"github.com/moby/locker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedCampaign stores a campaign in status with one pending message per provider id.
func seedCampaign(t *testing.T, repos *repository.Repositories, status string, providerIDs ...string) *model.Campaign {
	t.Helper()
	ctx := context.Background()
	c := &model.Contact{Phone: "+15550000001", Name: "Ann"}
	require.NoError(t, repos.Contact.Create(ctx, c))
	camp := &model.Campaign{Name: "c", Body: "hi", Status: status}
	require.NoError(t, repos.Campaign.Create(ctx, camp, nil))
	for _, id := range providerIDs {
		pid := id
		require.NoError(t, repos.Message.Create(ctx, &model.Message{
			ProviderMessageID: &pid, From: "+1000", To: c.Phone, Body: "hi",
			Direction: constants.DirectionOutbound, Status: constants.MessagePending,
			Timestamp: time.Now(), ContactID: c.ID, CampaignID: &camp.ID,
		}))
	}
	if status == constants.CampaignCompleted {
		require.NoError(t, repos.Campaign.Complete(ctx, camp.ID, len(providerIDs), 0, 0, time.Now()))
	}
	return camp
}

func TestApplyStatusUpdateUnknownMessage(t *testing.T) {
	repos := dbtest.New(t)
	rec := &eventstest.Recorder{}
	svc := NewReconcilerService(repos, rec, locker.New())

	err := svc.ApplyStatusUpdate(context.Background(), "nope", "delivered")
	assert.True(t, errorx.IsNotFound(err))
	assert.Empty(t, rec.Events())

	err = svc.ApplyStatusUpdate(context.Background(), "", "delivered")
	assert.True(t, errorx.IsCode(err, errorx.CodeInvalidParam))
}

func TestApplyStatusUpdateRecomputesCompletedCampaign(t *testing.T) {
	repos := dbtest.New(t)
	rec := &eventstest.Recorder{}
	svc := NewReconcilerService(repos, rec, locker.New())
	ctx := context.Background()
	camp := seedCampaign(t, repos, constants.CampaignCompleted, "a", "b", "c")

	require.NoError(t, svc.ApplyStatusUpdate(ctx, "a", "delivered"))
	require.NoError(t, svc.ApplyStatusUpdate(ctx, "b", "Failed"))
	require.NoError(t, svc.ApplyStatusUpdate(ctx, "c", "sent"))

	got, err := repos.Campaign.FindByID(ctx, camp.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.DeliveredCount)
	assert.Equal(t, 1, got.FailedCount)
	assert.Equal(t, 3, got.SentCount)
	stored, err := repos.Message.FindByProviderMessageID(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, "Failed", stored.Status)

	// permissive overwrite: a later report replaces delivered
	require.NoError(t, svc.ApplyStatusUpdate(ctx, "a", "failed"))
	got, err = repos.Campaign.FindByID(ctx, camp.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.DeliveredCount)
	assert.Equal(t, 2, got.FailedCount)

	assert.Equal(t, 4, rec.Count(events.MessageStatusUpdate))
	payload, ok := rec.Last(events.MessageStatusUpdate)
	require.True(t, ok)
	msg := payload.(respond.MessageRespond)
	assert.Equal(t, "failed", msg.Status)
	require.NotNil(t, msg.Contact)
	require.NotNil(t, msg.Campaign)
	assert.Equal(t, camp.ID, msg.Campaign.ID)
}

func TestApplyStatusUpdateOrderIndependent(t *testing.T) {
	updates := []struct{ id, status string }{
		{"a", "delivered"}, {"b", "failed"}, {"c", "delivered"}, {"d", "undelivered"}, {"e", "delivered"},
	}
	for round := 0; round < 3; round++ {
		repos := dbtest.New(t)
		svc := NewReconcilerService(repos, events.Nop{}, locker.New())
		ctx := context.Background()
		camp := seedCampaign(t, repos, constants.CampaignCompleted, "a", "b", "c", "d", "e")

		shuffled := append(updates[:0:0], updates...)
		rand.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		for _, u := range shuffled {
			require.NoError(t, svc.ApplyStatusUpdate(ctx, u.id, u.status))
		}

		got, err := repos.Campaign.FindByID(ctx, camp.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, got.DeliveredCount)
		assert.Equal(t, 1, got.FailedCount)
	}
}

func TestApplyStatusUpdateDefersWhileSending(t *testing.T) {
	repos := dbtest.New(t)
	svc := NewReconcilerService(repos, events.Nop{}, locker.New())
	ctx := context.Background()
	camp := seedCampaign(t, repos, constants.CampaignSending, "a")

	require.NoError(t, svc.ApplyStatusUpdate(ctx, "a", "delivered"))

	got, err := repos.Campaign.FindByID(ctx, camp.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.DeliveredCount)
	msg, err := repos.Message.FindByProviderMessageID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "delivered", msg.Status)
}

// callbackPublisher reports every new outbound message as delivered at once,
// while the campaign is still dispatching.
type callbackPublisher struct {
	t          *testing.T
	reconciler *reconcilerService
}

func (p *callbackPublisher) Publish(ctx context.Context, name string, payload any) {
	if name != events.NewMessage {
		return
	}
	msg := payload.(respond.MessageRespond)
	if !assert.NotNil(p.t, msg.ProviderMessageID) {
		return
	}
	assert.NoError(p.t, p.reconciler.ApplyStatusUpdate(ctx, *msg.ProviderMessageID, constants.MessageDelivered))
}

func TestCallbacksDuringDispatchAreCounted(t *testing.T) {
	repos := dbtest.New(t)
	ctx := context.Background()
	locks := locker.New()
	pub := &callbackPublisher{t: t}
	pub.reconciler = NewReconcilerService(repos, events.Nop{}, locks)
	dispatcher := campaign.NewCampaignService(repos, sms.NewMockGateway(), pub, locks, "+1000")

	list, err := repos.ContactList.CreateUnique(ctx, "customers", "")
	require.NoError(t, err)
	for _, phone := range []string{"+15550000001", "+15550000002", "+15550000003"} {
		c := &model.Contact{Phone: phone, Name: phone}
		require.NoError(t, repos.Contact.Create(ctx, c))
		require.NoError(t, repos.Membership.Upsert(ctx, c.ID, list.ID))
	}

	rsp, err := dispatcher.LaunchCampaign(ctx, "race", "hi", []uint{list.ID})
	require.NoError(t, err)
	assert.Equal(t, 3, rsp.SentCount)
	assert.Equal(t, 3, rsp.DeliveredCount)
	assert.LessOrEqual(t, rsp.DeliveredCount+rsp.FailedCount, rsp.SentCount)
}

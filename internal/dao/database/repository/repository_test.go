package repository_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"sms_campaign_server/internal/dao/database/dbtest"
	"sms_campaign_server/internal/dao/database/repository"
	"sms_campaign_server/internal/model"
	"sms_campaign_server/pkg/constants"
	"sms_campaign_server/pkg/errorx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func seedContact(t *testing.T, repos *repository.Repositories, phone string, optedOut bool, lists ...uint) *model.Contact {
	t.Helper()
	ctx := context.Background()
	c := &model.Contact{Phone: phone, Name: phone, OptedOut: optedOut}
	require.NoError(t, repos.Contact.Create(ctx, c))
	for _, l := range lists {
		require.NoError(t, repos.Membership.Upsert(ctx, c.ID, l))
	}
	return c
}

func TestNormalizeListName(t *testing.T) {
	assert.Equal(t, "vip_customers", repository.NormalizeListName("VIP Customers"))
	assert.Equal(t, "a_b", repository.NormalizeListName("  A \t  B "))
	assert.Equal(t, "newsletter", repository.NormalizeListName("newsletter"))
}

func TestContactUpsertByPhone(t *testing.T) {
	repos := dbtest.New(t)
	ctx := context.Background()

	first, created, err := repos.Contact.UpsertByPhone(ctx, &model.Contact{Phone: "+15550001", Name: "Ann"})
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := repos.Contact.UpsertByPhone(ctx, &model.Contact{Phone: "+15550001", Name: "Other"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Ann", second.Name)
}

func TestContactFindByPhoneNotFound(t *testing.T) {
	repos := dbtest.New(t)
	_, err := repos.Contact.FindByPhone(context.Background(), "+1999")
	assert.True(t, errorx.IsCode(err, errorx.CodeNotFound))
}

func TestFindActiveInListsDedupsAndFiltersOptOut(t *testing.T) {
	repos := dbtest.New(t)
	ctx := context.Background()

	l1, err := repos.ContactList.CreateUnique(ctx, "one", "")
	require.NoError(t, err)
	l2, err := repos.ContactList.CreateUnique(ctx, "two", "")
	require.NoError(t, err)
	l3, err := repos.ContactList.CreateUnique(ctx, "three", "")
	require.NoError(t, err)

	a := seedContact(t, repos, "+1001", false, l1.ID, l2.ID)
	b := seedContact(t, repos, "+1002", false, l2.ID)
	seedContact(t, repos, "+1003", true, l1.ID, l2.ID)
	seedContact(t, repos, "+1004", false, l3.ID)

	got, err := repos.Contact.FindActiveInLists(ctx, []uint{l1.ID, l2.ID})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, a.ID, got[0].ID)
	assert.Equal(t, b.ID, got[1].ID)

	n, err := repos.Contact.CountOptedOutInLists(ctx, []uint{l1.ID, l2.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	empty, err := repos.Contact.FindActiveInLists(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestSetOptOut(t *testing.T) {
	repos := dbtest.New(t)
	ctx := context.Background()
	c := seedContact(t, repos, "+1001", false)

	require.NoError(t, repos.Contact.SetOptOut(ctx, c.ID, true))
	require.NoError(t, repos.Contact.SetOptOut(ctx, c.ID, true))
	got, err := repos.Contact.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, got.OptedOut)
}

func TestContactFindAllPreloadsLists(t *testing.T) {
	repos := dbtest.New(t)
	ctx := context.Background()
	l, err := repos.ContactList.CreateUnique(ctx, "Customers", "")
	require.NoError(t, err)
	seedContact(t, repos, "+1001", false, l.ID)
	seedContact(t, repos, "+1002", false)

	contacts, err := repos.Contact.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, contacts, 2)
	assert.Equal(t, "+1002", contacts[0].Phone)
	require.Len(t, contacts[1].Memberships, 1)
	assert.Equal(t, "customers", contacts[1].Memberships[0].ContactList.Name)
}

func TestCreateUniqueSuffixesCollision(t *testing.T) {
	repos := dbtest.New(t)
	ctx := context.Background()

	first, err := repos.ContactList.CreateUnique(ctx, "VIP Customers", "a")
	require.NoError(t, err)
	assert.Equal(t, "vip_customers", first.Name)

	second, err := repos.ContactList.CreateUnique(ctx, "vip customers", "b")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.True(t, strings.HasPrefix(second.Name, "vip_customers_"))
	assert.Equal(t, "b", second.Description)
}

func TestMembershipUpsertIsIdempotent(t *testing.T) {
	repos := dbtest.New(t)
	ctx := context.Background()
	l, err := repos.ContactList.CreateUnique(ctx, "list", "")
	require.NoError(t, err)
	c := seedContact(t, repos, "+1001", false)

	require.NoError(t, repos.Membership.Upsert(ctx, c.ID, l.ID))
	require.NoError(t, repos.Membership.Upsert(ctx, c.ID, l.ID))
	require.NoError(t, repos.Membership.UpsertMany(ctx, []uint{c.ID, c.ID}, l.ID))

	lists, err := repos.ContactList.FindAllWithCounts(ctx)
	require.NoError(t, err)
	require.Len(t, lists, 1)
	assert.Equal(t, int64(1), lists[0].MemberCount)
}

func TestCampaignCreateDedupsLinks(t *testing.T) {
	repos := dbtest.New(t)
	ctx := context.Background()
	l, err := repos.ContactList.CreateUnique(ctx, "list", "")
	require.NoError(t, err)

	campaign := &model.Campaign{Name: "c", Body: "hi", Status: constants.CampaignSending}
	require.NoError(t, repos.Campaign.Create(ctx, campaign, []uint{l.ID, l.ID}))

	got, err := repos.Campaign.FindByIDWithRelations(ctx, campaign.ID)
	require.NoError(t, err)
	require.Len(t, got.TargetLists, 1)
	assert.Equal(t, "list", got.TargetLists[0].ContactList.Name)
	assert.Equal(t, constants.CampaignSending, got.Status)
}

func TestCampaignCompleteAndCounters(t *testing.T) {
	repos := dbtest.New(t)
	ctx := context.Background()
	campaign := &model.Campaign{Name: "c", Body: "hi", Status: constants.CampaignSending, OptOutCount: 4}
	require.NoError(t, repos.Campaign.Create(ctx, campaign, nil))

	now := time.Now()
	require.NoError(t, repos.Campaign.Complete(ctx, campaign.ID, 3, 1, 0, now))
	require.NoError(t, repos.Campaign.UpdateCounters(ctx, campaign.ID, 2, 1))

	got, err := repos.Campaign.FindByID(ctx, campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.CampaignCompleted, got.Status)
	assert.Equal(t, 3, got.SentCount)
	assert.Equal(t, 2, got.DeliveredCount)
	assert.Equal(t, 1, got.FailedCount)
	assert.Equal(t, 4, got.OptOutCount)
	assert.True(t, got.SentAt.Valid)
}

func TestMessageQueries(t *testing.T) {
	repos := dbtest.New(t)
	ctx := context.Background()
	c := seedContact(t, repos, "+1001", false)
	other := seedContact(t, repos, "+1002", false)
	campaign := &model.Campaign{Name: "c", Body: "hi", Status: constants.CampaignSending}
	require.NoError(t, repos.Campaign.Create(ctx, campaign, nil))

	base := time.Now().Add(-time.Hour)
	statuses := []string{constants.MessageDelivered, constants.MessageDelivered, constants.MessageFailed}
	for i, status := range statuses {
		m := &model.Message{
			ProviderMessageID: strPtr("SM" + string(rune('a'+i))),
			From:              "+1000", To: c.Phone, Body: "hi",
			Direction: constants.DirectionOutbound, Status: status,
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			ContactID: c.ID, CampaignID: &campaign.ID,
		}
		require.NoError(t, repos.Message.Create(ctx, m))
	}
	adhoc := &model.Message{
		From: "+1000", To: other.Phone, Body: "x",
		Direction: constants.DirectionOutbound, Status: constants.MessagePending,
		Timestamp: base, ContactID: other.ID,
	}
	require.NoError(t, repos.Message.Create(ctx, adhoc))

	counts, err := repos.Message.CountByStatus(ctx, campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts[constants.MessageDelivered])
	assert.Equal(t, int64(1), counts[constants.MessageFailed])

	// provider casing is kept in the row but counted case-insensitively
	upper, err := repos.Message.FindByProviderMessageID(ctx, "SMc")
	require.NoError(t, err)
	require.NoError(t, repos.Message.UpdateStatus(ctx, upper.ID, "DELIVERED"))
	counts, err = repos.Message.CountByStatus(ctx, campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), counts[constants.MessageDelivered])
	assert.Zero(t, counts[constants.MessageFailed])

	found, err := repos.Message.FindByProviderMessageID(ctx, "SMb")
	require.NoError(t, err)
	require.NoError(t, repos.Message.UpdateStatus(ctx, found.ID, constants.MessageFailed))
	withRel, err := repos.Message.FindByIDWithRelations(ctx, found.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.MessageFailed, withRel.Status)
	require.NotNil(t, withRel.Contact)
	require.NotNil(t, withRel.Campaign)
	assert.Equal(t, campaign.ID, withRel.Campaign.ID)

	_, err = repos.Message.FindByProviderMessageID(ctx, "missing")
	assert.True(t, errorx.IsNotFound(err))

	all, err := repos.Message.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "SMc", all[0].ProviderID())

	latest, err := repos.Message.FindLatestByContactIDs(ctx, []uint{c.ID, other.ID})
	require.NoError(t, err)
	latestC := latest[c.ID]
	assert.Equal(t, "SMc", latestC.ProviderID())
	assert.Equal(t, adhoc.ID, latest[other.ID].ID)
}

func TestTransactionRollsBack(t *testing.T) {
	repos := dbtest.New(t)
	ctx := context.Background()

	err := repos.Transaction(ctx, func(tx *repository.Repositories) error {
		if err := tx.Contact.Create(ctx, &model.Contact{Phone: "+1001", Name: "a"}); err != nil {
			return err
		}
		return errorx.New(errorx.CodeInvalidParam, "abort")
	})
	require.Error(t, err)

	_, err = repos.Contact.FindByPhone(ctx, "+1001")
	assert.True(t, errorx.IsNotFound(err))
	assert.NoError(t, repos.Ping(ctx))
}

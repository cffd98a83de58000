// Command seeder fills an empty database with sample lists, contacts, a
// completed campaign and a short conversation history. Running it twice
// leaves the data unchanged.
package main

import (
	"database/sql"
	"log"
	"time"

	"sms_campaign_server/internal/config"
	"sms_campaign_server/internal/dao/database"
	"sms_campaign_server/internal/model"
	"sms_campaign_server/pkg/constants"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	businessNumber  = "+1234567890"
	welcomeCampaign = "Welcome Campaign"
)

type seedContact struct {
	name     string
	phone    string
	email    string
	optedOut bool
	lists    []string
}

var seedLists = []model.ContactList{
	{Name: "customers", Description: "Existing customers"},
	{Name: "prospects", Description: "Potential customers"},
	{Name: "newsletter", Description: "Newsletter subscribers"},
	{Name: "appointments", Description: "Appointment reminders"},
}

var seedContacts = []seedContact{
	{name: "John Smith", phone: "+0987654321", email: "john@example.com", lists: []string{"customers", "newsletter"}},
	{name: "Sarah Johnson", phone: "+1122334455", email: "sarah@example.com", lists: []string{"customers", "appointments"}},
	{name: "Mike Davis", phone: "+5566778899", email: "mike@example.com", optedOut: true, lists: []string{"prospects"}},
}

func main() {
	conf := config.GetConfig()
	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	zap.ReplaceGlobals(logger)
	defer func() { _ = logger.Sync() }()

	db, err := database.Open(&conf.DatabaseConfig, conf.MainConfig.Mode)
	if err != nil {
		zap.L().Fatal("open database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		zap.L().Fatal("migrate", zap.Error(err))
	}

	if err := db.Transaction(seed); err != nil {
		zap.L().Fatal("seed failed", zap.Error(err))
	}

	var lists, contacts, messages, campaigns int64
	db.Model(&model.ContactList{}).Count(&lists)
	db.Model(&model.Contact{}).Count(&contacts)
	db.Model(&model.Message{}).Count(&messages)
	db.Model(&model.Campaign{}).Count(&campaigns)
	zap.L().Info("database seeded",
		zap.Int64("contactLists", lists),
		zap.Int64("contacts", contacts),
		zap.Int64("messages", messages),
		zap.Int64("campaigns", campaigns))
}

func seed(tx *gorm.DB) error {
	listIDs := make(map[string]uint, len(seedLists))
	for _, l := range seedLists {
		list := l
		if err := tx.Where(model.ContactList{Name: list.Name}).FirstOrCreate(&list).Error; err != nil {
			return err
		}
		listIDs[list.Name] = list.ID
	}

	contactIDs := make(map[string]uint, len(seedContacts))
	for _, sc := range seedContacts {
		email := sc.email
		contact := model.Contact{Phone: sc.phone, Name: sc.name, Email: &email, OptedOut: sc.optedOut}
		if err := tx.Where(model.Contact{Phone: sc.phone}).FirstOrCreate(&contact).Error; err != nil {
			return err
		}
		contactIDs[sc.phone] = contact.ID
		for _, name := range sc.lists {
			m := model.ContactListMembership{ContactID: contact.ID, ContactListID: listIDs[name]}
			if err := tx.Where(m).FirstOrCreate(&m).Error; err != nil {
				return err
			}
		}
	}
	zap.L().Info("contact lists and contacts ready")

	var existing int64
	if err := tx.Model(&model.Campaign{}).Where("name = ?", welcomeCampaign).Count(&existing).Error; err != nil {
		return err
	}
	if existing > 0 {
		zap.L().Info("sample campaign already present, skipping history")
		return nil
	}

	now := time.Now()
	campaign := model.Campaign{
		Name:           welcomeCampaign,
		Body:           "Welcome to our service! Reply STOP to opt out.",
		Status:         constants.CampaignCompleted,
		SentCount:      2,
		DeliveredCount: 2,
		SentAt:         sql.NullTime{Time: now.Add(-24 * time.Hour), Valid: true},
		TargetLists:    []model.CampaignTargetList{{ContactListID: listIDs["customers"]}},
	}
	if err := tx.Create(&campaign).Error; err != nil {
		return err
	}

	john, sarah, mike := contactIDs["+0987654321"], contactIDs["+1122334455"], contactIDs["+5566778899"]
	messages := []model.Message{
		sample("SM_sample_1", businessNumber, "+0987654321", "Hello! This is a test message from our SMS system.",
			constants.DirectionOutbound, constants.MessageDelivered, now.Add(-time.Hour), john, &campaign.ID),
		sample("SM_sample_2", "+0987654321", businessNumber, "Thank you for the update. Looking forward to hearing from you soon.",
			constants.DirectionInbound, constants.MessageReceived, now.Add(-30*time.Minute), john, nil),
		sample("SM_sample_3", businessNumber, "+1122334455", "Your appointment has been confirmed for tomorrow at 2:00 PM.",
			constants.DirectionOutbound, constants.MessageDelivered, now.Add(-15*time.Minute), sarah, nil),
		sample("SM_sample_4", "+1122334455", businessNumber, "Perfect! See you then. Should I bring anything specific?",
			constants.DirectionInbound, constants.MessageReceived, now.Add(-5*time.Minute), sarah, nil),
		sample("SM_sample_5", "+5566778899", businessNumber, "Hi, I received your marketing message. Can you tell me more about your services?",
			constants.DirectionInbound, constants.MessageReceived, now.Add(-2*time.Minute), mike, nil),
	}
	if err := tx.Create(&messages).Error; err != nil {
		return err
	}
	zap.L().Info("sample campaign and messages created")
	return nil
}

func sample(providerID, from, to, body, direction, status string, at time.Time, contactID uint, campaignID *uint) model.Message {
	return model.Message{
		ProviderMessageID: &providerID,
		From:              from,
		To:                to,
		Body:              body,
		Direction:         direction,
		Status:            status,
		Timestamp:         at,
		ContactID:         contactID,
		CampaignID:        campaignID,
	}
}

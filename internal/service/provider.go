// Package service wires the business services together.
package service

import (
	"sms_campaign_server/internal/config"
	"sms_campaign_server/internal/dao/database/repository"
	myredis "sms_campaign_server/internal/dao/redis"
	"sms_campaign_server/internal/events"
	"sms_campaign_server/internal/infrastructure/sms"
	"sms_campaign_server/internal/service/auth"
	"sms_campaign_server/internal/service/campaign"
	"sms_campaign_server/internal/service/contact"
	"sms_campaign_server/internal/service/contactlist"
	"sms_campaign_server/internal/service/inbound"
	"sms_campaign_server/internal/service/message"
	"sms_campaign_server/internal/service/reconciler"

	"github.com/moby/locker"
)

// Services aggregates every service. Handlers reach business logic only through it.
type Services struct {
	Contact     ContactService
	ContactList ContactListService
	Campaign    CampaignService
	Reconciler  ReconcilerService
	Inbound     InboundService
	Message     MessageService
	Auth        AuthService
}

// Deps are the collaborators shared by the services.
type Deps struct {
	Repos     *repository.Repositories
	Cache     myredis.AsyncCacheService // optional
	Gateway   sms.Gateway
	Publisher events.Publisher
	Config    *config.Config
}

// NewServices builds every service from deps.
// The dispatcher and the reconciler share one per-campaign lock set.
func NewServices(deps Deps) *Services {
	cfg := deps.Config
	locks := locker.New()

	var cache myredis.CacheService
	if deps.Cache != nil {
		cache = deps.Cache
	}

	return &Services{
		Contact:     contact.NewContactService(deps.Repos, deps.Cache, deps.Publisher, cfg.UploadConfig),
		ContactList: contactlist.NewContactListService(deps.Repos, deps.Cache, deps.Publisher),
		Campaign:    campaign.NewCampaignService(deps.Repos, deps.Gateway, deps.Publisher, locks, cfg.FromNumber),
		Reconciler:  reconciler.NewReconcilerService(deps.Repos, deps.Publisher, locks),
		Inbound:     inbound.NewInboundService(deps.Repos, cache, deps.Gateway, deps.Publisher, cfg.DedupTTLMinutes),
		Message:     message.NewMessageService(deps.Repos, deps.Gateway, deps.Publisher, cfg.FromNumber),
		Auth:        auth.NewAuthService(cfg.JWTConfig),
	}
}

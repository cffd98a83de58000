// Package handler holds the gin handlers. Handlers bind and validate input,
// call one service and write the response.
package handler

import (
	"sms_campaign_server/internal/gateway/websocket"
	"sms_campaign_server/internal/service"
)

// Handlers aggregates every handler. The router reaches them only through it.
type Handlers struct {
	Contact     *ContactHandler
	ContactList *ContactListHandler
	Campaign    *CampaignHandler
	Message     *MessageHandler
	Webhook     *WebhookHandler
	Auth        *AuthHandler
	Ws          *WsHandler
	Health      *HealthHandler
}

// NewHandlers builds the handlers over svc. ownNumber is the business
// number recorded on uplink messages; db backs the health check.
func NewHandlers(svc *service.Services, hub *websocket.Hub, db Pinger, ownNumber string) *Handlers {
	return &Handlers{
		Contact:     NewContactHandler(svc.Contact),
		ContactList: NewContactListHandler(svc.ContactList),
		Campaign:    NewCampaignHandler(svc.Campaign),
		Message:     NewMessageHandler(svc.Message),
		Webhook:     NewWebhookHandler(svc.Inbound, svc.Reconciler, ownNumber),
		Auth:        NewAuthHandler(svc.Auth),
		Ws:          NewWsHandler(hub),
		Health:      NewHealthHandler(db),
	}
}

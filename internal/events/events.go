// Package events defines live-update event names and the publisher contract.
package events

import (
	"context"
	"encoding/json"
)

// Event names pushed to observers.
const (
	NewMessage          = "new_message"
	CampaignUpdated     = "campaign_updated"
	ContactUpdated      = "contact_updated"
	ContactListCreated  = "contact_list_created"
	ContactsUploaded    = "contacts_uploaded"
	MessageStatusUpdate = "message_status_update"
)

// Publisher pushes an event to every observer. It is fire-and-forget:
// implementations log failures and never return them.
type Publisher interface {
	Publish(ctx context.Context, name string, payload any)
}

// Frame is the wire shape of one event.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Encode marshals name and payload into a frame.
func Encode(name string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Frame{Event: name, Data: data})
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, string, any) {}

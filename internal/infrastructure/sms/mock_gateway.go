package sms

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"sms_campaign_server/pkg/errorx"
)

// mockSentLimit bounds the history kept by a MockGateway; older sends are dropped.
const mockSentLimit = 1000

// SentMessage is one accepted mock send.
type SentMessage struct {
	ID   string
	From string
	To   string
	Body string
}

// MockGateway accepts every message except those to rejected numbers.
// Ids look like "mock-<uuid>".
type MockGateway struct {
	mu     sync.Mutex
	reject map[string]bool
	sent   []SentMessage
	limit  int
}

// NewMockGateway rejects sends to rejectNumbers.
func NewMockGateway(rejectNumbers ...string) *MockGateway {
	g := &MockGateway{reject: make(map[string]bool), limit: mockSentLimit}
	for _, n := range rejectNumbers {
		g.reject[n] = true
	}
	return g
}

func (g *MockGateway) Name() string { return "mock" }

func (g *MockGateway) Send(ctx context.Context, from, to, body string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", errorx.Wrapf(err, errorx.CodeDeliveryError, "send to %s cancelled", to)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.reject[to] {
		return "", errorx.Newf(errorx.CodeDeliveryError, "mock provider rejected %s", to)
	}
	id := "mock-" + uuid.NewString()
	g.sent = append(g.sent, SentMessage{ID: id, From: from, To: to, Body: body})
	if over := len(g.sent) - g.limit; over > 0 {
		g.sent = append(g.sent[:0], g.sent[over:]...)
	}
	zap.L().Info("mock sms sent", zap.String("to", to), zap.String("id", id))
	return id, nil
}

// Reject makes later sends to number fail.
func (g *MockGateway) Reject(number string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.reject[number] = true
}

// Sent returns a copy of the most recent accepted messages, oldest first.
func (g *MockGateway) Sent() []SentMessage {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]SentMessage(nil), g.sent...)
}

// Package sms is the delivery gateway: one outbound message per call.
// Gateways never retry; the caller decides what a failure means.
package sms

import (
	"context"
	"os"
	"strings"
	"time"

	"sms_campaign_server/internal/config"
	"sms_campaign_server/internal/infrastructure/metrics"

	"go.uber.org/zap"
)

// Gateway submits messages to the provider.
type Gateway interface {
	// Send returns the provider message id, or a CodeDeliveryError error when
	// the provider rejects the message or cannot be reached.
	Send(ctx context.Context, from, to, body string) (string, error)
	Name() string
}

// New picks the provider for cfg and wraps it with metrics.
func New(cfg *config.SmsConfig) (Gateway, error) {
	if shouldUseMock(cfg) {
		zap.L().Warn("sms gateway running in mock mode, no provider calls will be made")
		return Instrument(NewMockGateway(cfg.MockFailNumbers...)), nil
	}
	gw, err := newAliyunGateway(cfg)
	if err != nil {
		return nil, err
	}
	return Instrument(gw), nil
}

// shouldUseMock is true for SMS_MODE=mock|local|test, provider "mock",
// or when the access keys are missing or still placeholders.
func shouldUseMock(cfg *config.SmsConfig) bool {
	mode := strings.ToLower(strings.TrimSpace(os.Getenv("SMS_MODE")))
	if mode == "mock" || mode == "local" || mode == "test" {
		return true
	}
	if strings.EqualFold(strings.TrimSpace(cfg.Provider), "mock") {
		return true
	}
	ak := strings.ToLower(strings.TrimSpace(cfg.AccessKeyID))
	secret := strings.ToLower(strings.TrimSpace(cfg.AccessKeySecret))
	if ak == "" || secret == "" {
		return true
	}
	return strings.Contains(ak, "your accesskey") || strings.Contains(secret, "your accesskey")
}

type instrumented struct {
	next Gateway
}

// Instrument records call counts and latency for gw.
func Instrument(gw Gateway) Gateway {
	return &instrumented{next: gw}
}

func (g *instrumented) Name() string { return g.next.Name() }

func (g *instrumented) Send(ctx context.Context, from, to, body string) (string, error) {
	start := time.Now()
	id, err := g.next.Send(ctx, from, to, body)
	metrics.GatewayRequestDuration.WithLabelValues(g.next.Name()).Observe(time.Since(start).Seconds())
	result := "success"
	if err != nil {
		result = "error"
	}
	metrics.GatewayRequestsTotal.WithLabelValues(g.next.Name(), result).Inc()
	return id, err
}

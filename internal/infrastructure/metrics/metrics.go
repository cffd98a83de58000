// Package metrics declares the process Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "sms_campaign"

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status_code"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	GatewayRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sms_gateway_requests_total",
			Help:      "SMS provider send calls.",
		},
		[]string{"provider", "result"}, // result: success, error
	)

	GatewayRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sms_gateway_request_duration_seconds",
			Help:      "Duration of SMS provider send calls.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"provider"},
	)

	CampaignSendAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "campaign_send_attempts_total",
			Help:      "Per-recipient campaign submissions.",
		},
		[]string{"result"}, // submitted, failed, unrecorded
	)

	CampaignsLaunched = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "campaigns_launched_total",
			Help:      "Campaigns dispatched.",
		},
	)

	StatusCallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "status_callbacks_total",
			Help:      "Delivery status callbacks processed.",
		},
		[]string{"result"}, // applied, not_found, invalid, error
	)

	InboundMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inbound_messages_total",
			Help:      "Inbound SMS webhooks processed.",
		},
		[]string{"result"}, // recorded, opt_out, duplicate, error
	)

	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "live_events_published_total",
			Help:      "Live update events published.",
		},
		[]string{"event"},
	)

	EventsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "live_events_dropped_total",
			Help:      "Live update frames dropped.",
		},
		[]string{"reason"}, // hub_full, slow_observer, encode, relay
	)

	ConnectedObservers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ws_connected_observers",
			Help:      "Currently connected websocket observers.",
		},
	)
)

// Package websocket owns the live-update observers.
//
// Hub is the only writer of the observer set: registration, removal and
// fan-out all happen on its Start goroutine. Publishing never blocks the
// caller; a frame that does not fit is dropped.
package websocket

import (
	"context"
	"sync"

	"sms_campaign_server/internal/events"
	"sms_campaign_server/internal/infrastructure/metrics"
	"sms_campaign_server/pkg/constants"

	"go.uber.org/zap"
)

// Hub fans event frames out to every connected observer.
type Hub struct {
	// Observers maps observer id to *Observer.
	Observers sync.Map

	Register   chan *Observer
	Unregister chan *Observer
	Transmit   chan []byte

	done      chan struct{}
	closeOnce sync.Once
}

// NewHub creates a hub; call Start to run it.
func NewHub() *Hub {
	return &Hub{
		Register:   make(chan *Observer, constants.CHANNEL_SIZE),
		Unregister: make(chan *Observer, constants.CHANNEL_SIZE),
		Transmit:   make(chan []byte, constants.CHANNEL_SIZE),
		done:       make(chan struct{}),
	}
}

// Start runs the hub loop until Close.
func (h *Hub) Start() {
	for {
		select {
		case <-h.done:
			h.Observers.Range(func(_, v any) bool {
				h.remove(v.(*Observer))
				return true
			})
			return

		case o := <-h.Register:
			h.Observers.Store(o.ID, o)
			metrics.ConnectedObservers.Inc()
			zap.L().Info("observer connected", zap.String("observerID", o.ID))

		case o := <-h.Unregister:
			if h.remove(o) {
				zap.L().Info("observer disconnected", zap.String("observerID", o.ID))
			}

		case frame := <-h.Transmit:
			h.Observers.Range(func(_, v any) bool {
				o := v.(*Observer)
				select {
				case o.send <- frame:
				default:
					metrics.EventsDropped.WithLabelValues("slow_observer").Inc()
					zap.L().Warn("dropping slow observer", zap.String("observerID", o.ID))
					h.remove(o)
				}
				return true
			})
		}
	}
}

// remove deletes o and closes its send queue. Only the hub loop calls it.
func (h *Hub) remove(o *Observer) bool {
	if _, loaded := h.Observers.LoadAndDelete(o.ID); !loaded {
		return false
	}
	close(o.send)
	metrics.ConnectedObservers.Dec()
	return true
}

// Publish implements events.Publisher.
func (h *Hub) Publish(_ context.Context, name string, payload any) {
	frame, err := events.Encode(name, payload)
	if err != nil {
		metrics.EventsDropped.WithLabelValues("encode").Inc()
		zap.L().Error("encode live event", zap.String("event", name), zap.Error(err))
		return
	}
	metrics.EventsPublished.WithLabelValues(name).Inc()
	h.BroadcastRaw(frame)
}

// BroadcastRaw queues an already encoded frame.
func (h *Hub) BroadcastRaw(frame []byte) {
	select {
	case h.Transmit <- frame:
	default:
		metrics.EventsDropped.WithLabelValues("hub_full").Inc()
		zap.L().Warn("hub transmit queue full, frame dropped")
	}
}

// Count returns the number of registered observers.
func (h *Hub) Count() int {
	n := 0
	h.Observers.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// Close stops the loop and disconnects every observer.
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// register hands o to the loop. It reports false once the hub is closed.
func (h *Hub) register(o *Observer) bool {
	select {
	case <-h.done:
		return false
	default:
	}
	select {
	case h.Register <- o:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) unregister(o *Observer) {
	select {
	case h.Unregister <- o:
	case <-h.done:
	}
}

var _ events.Publisher = (*Hub)(nil)

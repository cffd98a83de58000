package mq

import (
	"context"
	"errors"
	"sync"

	"sms_campaign_server/internal/config"
	"sms_campaign_server/internal/events"
	"sms_campaign_server/internal/infrastructure/metrics"
	"sms_campaign_server/pkg/constants"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// maxWriteBatch bounds how many queued frames go out in one write.
const maxWriteBatch = 64

// Broadcaster receives frames read back from the topic.
type Broadcaster interface {
	BroadcastRaw(frame []byte)
}

// KafkaRelay publishes events to kafka and feeds frames read from kafka
// into the local hub, so observers on every instance see every event.
// Publish only queues the frame; one goroutine owns the writer.
type KafkaRelay struct {
	writer frameWriter
	reader frameReader
	hub    Broadcaster

	queue     chan kafka.Message
	done      chan struct{}
	flushed   chan struct{}
	closeOnce sync.Once
}

// NewKafkaRelay connects the relay for cfg.
func NewKafkaRelay(cfg *config.KafkaConfig, hub Broadcaster) *KafkaRelay {
	writer, reader := newKafkaIO(cfg, uuid.NewString())
	return newRelay(writer, reader, hub)
}

func newRelay(writer frameWriter, reader frameReader, hub Broadcaster) *KafkaRelay {
	k := &KafkaRelay{
		writer:  writer,
		reader:  reader,
		hub:     hub,
		queue:   make(chan kafka.Message, constants.CHANNEL_SIZE),
		done:    make(chan struct{}),
		flushed: make(chan struct{}),
	}
	go k.writeLoop()
	return k
}

// Publish implements events.Publisher. It never waits on the broker;
// frames that do not fit in the queue are dropped.
func (k *KafkaRelay) Publish(_ context.Context, name string, payload any) {
	frame, err := events.Encode(name, payload)
	if err != nil {
		metrics.EventsDropped.WithLabelValues("encode").Inc()
		zap.L().Error("encode live event", zap.String("event", name), zap.Error(err))
		return
	}
	select {
	case <-k.done:
		metrics.EventsDropped.WithLabelValues("relay_closed").Inc()
		return
	default:
	}
	select {
	case k.queue <- kafka.Message{Key: []byte(name), Value: frame}:
	default:
		metrics.EventsDropped.WithLabelValues("relay_full").Inc()
		zap.L().Warn("kafka relay queue full, event dropped", zap.String("event", name))
	}
}

// writeLoop sends queued frames in batches until Close, then flushes
// whatever is still queued.
func (k *KafkaRelay) writeLoop() {
	defer close(k.flushed)
	for {
		select {
		case msg := <-k.queue:
			k.write(k.collect(msg))
		case <-k.done:
			for {
				select {
				case msg := <-k.queue:
					k.write(k.collect(msg))
				default:
					return
				}
			}
		}
	}
}

func (k *KafkaRelay) collect(first kafka.Message) []kafka.Message {
	batch := []kafka.Message{first}
	for len(batch) < maxWriteBatch {
		select {
		case msg := <-k.queue:
			batch = append(batch, msg)
		default:
			return batch
		}
	}
	return batch
}

func (k *KafkaRelay) write(batch []kafka.Message) {
	if err := k.writer.WriteMessages(context.Background(), batch...); err != nil {
		metrics.EventsDropped.WithLabelValues("relay").Add(float64(len(batch)))
		zap.L().Error("write live events to kafka", zap.Int("count", len(batch)), zap.Error(err))
		return
	}
	for _, msg := range batch {
		metrics.EventsPublished.WithLabelValues(string(msg.Key)).Inc()
	}
}

// Start consumes the topic until ctx is done.
func (k *KafkaRelay) Start(ctx context.Context) {
	zap.L().Info("kafka relay consumer started")
	for {
		msg, err := k.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				zap.L().Info("kafka relay consumer stopped")
				return
			}
			zap.L().Error("read live event from kafka", zap.Error(err))
			continue
		}
		k.hub.BroadcastRaw(msg.Value)
	}
}

// Close flushes queued frames, then releases the writer and reader.
func (k *KafkaRelay) Close() {
	k.closeOnce.Do(func() {
		close(k.done)
		<-k.flushed
		if err := k.writer.Close(); err != nil {
			zap.L().Error("close kafka writer", zap.Error(err))
		}
		if err := k.reader.Close(); err != nil {
			zap.L().Error("close kafka reader", zap.Error(err))
		}
	})
}

var _ events.Publisher = (*KafkaRelay)(nil)

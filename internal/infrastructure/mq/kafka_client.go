// Package mq relays live-update frames between instances through kafka.
package mq

import (
	"context"
	"time"

	"sms_campaign_server/internal/config"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// frameWriter is the producer side used by the relay.
type frameWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// frameReader is the consumer side used by the relay.
type frameReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// newKafkaIO builds the writer and reader for the event topic.
// Every instance gets its own consumer group so each one sees every frame.
func newKafkaIO(cfg *config.KafkaConfig, instanceID string) (*kafka.Writer, *kafka.Reader) {
	timeout := cfg.Timeout * time.Second
	if timeout <= 0 {
		timeout = time.Second
	}
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.HostPort),
		Topic:                  cfg.EventTopic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           10 * time.Millisecond,
		WriteTimeout:           timeout,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        []string{cfg.HostPort},
		Topic:          cfg.EventTopic,
		GroupID:        cfg.GroupID + "-" + instanceID,
		CommitInterval: timeout,
		StartOffset:    kafka.LastOffset,
	})
	zap.L().Info("kafka relay configured",
		zap.String("brokers", cfg.HostPort),
		zap.String("topic", cfg.EventTopic))
	return writer, reader
}

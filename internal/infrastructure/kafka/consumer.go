package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/segmentio/kafka-go"
)

// EventHandler receives decoded envelopes in partition order. Returning an
// error does not stop consumption; the message is logged and skipped.
type EventHandler func(ctx context.Context, e Envelope) error

type Consumer struct {
	reader *kafka.Reader
}

func NewConsumer(brokers []string, topic, groupID string) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     brokers,
		Topic:       topic,
		GroupID:     groupID,
		StartOffset: kafka.FirstOffset,
		MinBytes:    1,
		MaxBytes:    10e6, // 10MB
	})
	return &Consumer{reader: reader}
}

// Consume reads messages until the context is cancelled. A message that is
// not a valid envelope is dropped, so one bad write cannot wedge the group.
func (c *Consumer) Consume(ctx context.Context, handler EventHandler) error {
	cfg := c.reader.Config()
	log.Printf("[Kafka] Consuming topic %s as group %s", cfg.Topic, cfg.GroupID)

	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.Printf("[Kafka] Read failed: %v", err)
			continue
		}

		if err := dispatch(ctx, msg.Value, handler); err != nil {
			log.Printf("[Kafka] Message with key %q not handled: %v", string(msg.Key), err)
		}
	}
}

func dispatch(ctx context.Context, value []byte, handler EventHandler) error {
	var envelope Envelope
	if err := json.Unmarshal(value, &envelope); err != nil {
		return fmt.Errorf("decode envelope: %w", err)
	}
	return handler(ctx, envelope)
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}

package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/segmentio/kafka-go"

	"ms-transactions/internal/logger"
	"ms-transactions/internal/models"
)

type Consumer struct {
	reader *kafka.Reader
	logger *logger.Logger
	topic  string
}

// NewConsumer creates a consumer group reader for topic
func NewConsumer(brokers []string, topic, groupID string, log *logger.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 10e3, // 10KB
		MaxBytes: 10e6, // 10MB
	})
	return &Consumer{reader: reader, logger: log, topic: topic}
}

// Start reads status events until ctx is cancelled. A handler error is logged and
// the message is still committed; notifications are not retried.
func (c *Consumer) Start(ctx context.Context, handler func(context.Context, models.TransactionStatusEvent) error) error {
	c.logger.LogKafka("CONSUME", c.topic, "Kafka consumer started")

	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			c.logger.Error("KAFKA", fmt.Sprintf("Error reading message: %v", err))
			continue
		}

		var evt models.TransactionStatusEvent
		if err := json.Unmarshal(msg.Value, &evt); err != nil {
			c.logger.Warn("KAFKA", fmt.Sprintf("Failed to unmarshal message at offset %d: %v", msg.Offset, err))
			continue
		}

		c.logger.Debug("KAFKA", fmt.Sprintf("Received %s for transaction %s", evt.Type, evt.TransactionID))
		if err := handler(ctx, evt); err != nil {
			c.logger.Warn("KAFKA", fmt.Sprintf("Handler failed for %s: %v", evt.TransactionID, err))
		}
	}
}

// Close gracefully shuts down the Kafka reader
func (c *Consumer) Close() error {
	return c.reader.Close()
}

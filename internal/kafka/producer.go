package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"ms-transactions/internal/logger"
	"ms-transactions/internal/models"
)

// MessageWriter is the part of *kafka.Writer the producer uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Producer struct {
	Writer MessageWriter
	Topic  string
	Logger *logger.Logger
}

func NewProducer(brokers []string, topic string, log *logger.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 5 * time.Second,
	}
	return &Producer{Writer: writer, Topic: topic, Logger: log}
}

func (p *Producer) Name() string { return "kafka" }

// Notify streams a transaction status change. Messages are keyed by transaction
// so that one transaction's changes stay ordered within a partition.
func (p *Producer) Notify(ctx context.Context, evt models.TransactionStatusEvent) error {
	msgBytes, err := json.Marshal(evt)
	if err != nil {
		return err
	}

	if err := p.Writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(evt.TransactionID),
		Value: msgBytes,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(evt.Type)},
		},
	}); err != nil {
		return fmt.Errorf("publish %s: %w", evt.Type, err)
	}

	p.Logger.LogKafka("PUBLISH", p.Topic, fmt.Sprintf("%s %s", evt.Type, evt.TransactionID))
	return nil
}

func (p *Producer) Close() error {
	return p.Writer.Close()
}

// Command notification-worker consumes transaction status events from Kafka
// and emails customers about organizer decisions.
package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"ms-transactions/internal/config"
	"ms-transactions/internal/kafka"
	"ms-transactions/internal/logger"
	"ms-transactions/internal/models"
	"ms-transactions/internal/notification"
)

func main() {
	log := logger.NewLogger()
	defer log.Close()

	log.Info("APP", "Starting notification worker")

	if err := godotenv.Load(); err != nil {
		log.Warn("CONFIG", ".env file not found, using environment variables")
	}
	cfg := config.Load()
	topic := cfg.Kafka.Topics.TransactionStatus

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := kafka.EnsureTopic(ctx, cfg.Kafka.Brokers, topic, log); err != nil {
		log.Fatal("KAFKA", fmt.Sprintf("Topic %s unavailable: %v", topic, err))
	}

	client, err := notification.NewSMTPClient(cfg.Email)
	if err != nil {
		log.Fatal("EMAIL", err.Error())
	}
	mailer := notification.NewMailer(client, cfg.Email.From, cfg.Email.FromName)
	fanout := notification.NewFanout(log, mailer)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, topic, cfg.Kafka.GroupID, log)
	defer consumer.Close()

	err = consumer.Start(ctx, func(ctx context.Context, evt models.TransactionStatusEvent) error {
		fanout.Publish(ctx, evt)
		return nil
	})
	if err != nil {
		log.Error("KAFKA", fmt.Sprintf("Consumer stopped: %v", err))
	}
	log.Info("APP", "Notification worker stopped")
}

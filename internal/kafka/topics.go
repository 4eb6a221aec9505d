package kafka

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"

	"github.com/segmentio/kafka-go"

	"ms-transactions/internal/logger"
)

// EnsureTopic creates topic through the cluster controller unless the broker
// already reports partitions for it.
func EnsureTopic(ctx context.Context, brokers []string, topic string, log *logger.Logger) error {
	if len(brokers) == 0 {
		return errors.New("no kafka brokers configured")
	}

	conn, err := kafka.DialContext(ctx, "tcp", brokers[0])
	if err != nil {
		return fmt.Errorf("dial %s: %w", brokers[0], err)
	}
	defer conn.Close()

	if partitions, err := conn.ReadPartitions(topic); err == nil && len(partitions) > 0 {
		log.LogKafka("TOPIC", topic, fmt.Sprintf("already exists with %d partitions", len(partitions)))
		return nil
	}

	controller, err := conn.Controller()
	if err != nil {
		return fmt.Errorf("find controller: %w", err)
	}
	controllerConn, err := kafka.DialContext(ctx, "tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	if err != nil {
		return fmt.Errorf("dial controller: %w", err)
	}
	defer controllerConn.Close()

	err = controllerConn.CreateTopics(kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	})
	switch {
	case errors.Is(err, kafka.TopicAlreadyExists):
		log.LogKafka("TOPIC", topic, "created concurrently")
	case err != nil:
		return fmt.Errorf("create topic %s: %w", topic, err)
	default:
		log.LogKafka("TOPIC", topic, "created")
	}
	return nil
}

// Package lock holds short-lived purchase locks in redis so that one customer's
// double submit for the same event is answered once. Seat correctness does not
// depend on it.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"ms-transactions/internal/logger"
)

var ErrLocked = errors.New("purchase already in progress")

type Redis struct {
	Client *redis.Client
	TTL    time.Duration
	Logger *logger.Logger
}

func NewRedis(client *redis.Client, ttl time.Duration, log *logger.Logger) *Redis {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &Redis{Client: client, TTL: ttl, Logger: log}
}

// Connect opens a client and checks the connection.
func Connect(ctx context.Context, addr string, log *logger.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		PoolSize: 10,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}

	log.Info("REDIS", fmt.Sprintf("Connected to redis at %s", addr))
	return client, nil
}

func purchaseKey(customerID, eventID string) string {
	return "purchase_lock:" + customerID + ":" + eventID
}

// Acquire takes the purchase lock for (customer, event). The returned release
// function only deletes the key while it still holds token.
func (r *Redis) Acquire(ctx context.Context, customerID, eventID, token string) (func(), error) {
	key := purchaseKey(customerID, eventID)
	ok, err := r.Client.SetNX(ctx, key, token, r.TTL).Result()
	if err != nil {
		return nil, fmt.Errorf("redis lock error: %w", err)
	}
	if !ok {
		return nil, ErrLocked
	}

	return func() {
		if err := r.release(context.Background(), key, token); err != nil {
			r.Logger.Warn("REDIS", fmt.Sprintf("Failed to release %s: %v", key, err))
		}
	}, nil
}

func (r *Redis) release(ctx context.Context, key, token string) error {
	val, err := r.Client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil // already expired
	}
	if err != nil {
		return err
	}
	if val == token {
		return r.Client.Del(ctx, key).Err()
	}
	return nil
}

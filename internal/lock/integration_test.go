package lock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"ms-transactions/internal/logger"
)

// TestRedisIntegration runs the purchase lock against a real redis container
func TestRedisIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping Redis integration test in short mode")
	}

	ctx := context.Background()
	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}
	defer redisContainer.Terminate(ctx)

	host, err := redisContainer.Host(ctx)
	require.NoError(t, err)
	port, err := redisContainer.MappedPort(ctx, "6379")
	require.NoError(t, err)

	client, err := Connect(ctx, host+":"+port.Port(), logger.Nop())
	require.NoError(t, err)
	defer client.Close()

	r := NewRedis(client, time.Minute, logger.Nop())

	release, err := r.Acquire(ctx, "cust-1", "event-1", "req-1")
	require.NoError(t, err)

	_, err = r.Acquire(ctx, "cust-1", "event-1", "req-2")
	assert.ErrorIs(t, err, ErrLocked)

	release()
	_, err = r.Acquire(ctx, "cust-1", "event-1", "req-3")
	assert.NoError(t, err)
}

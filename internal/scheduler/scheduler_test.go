package scheduler_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ms-transactions/internal/logger"
	"ms-transactions/internal/scheduler"
	"ms-transactions/internal/sweeper"
)

type countingSweeper struct {
	calls atomic.Int32
}

func (c *countingSweeper) Sweep(_ context.Context, scope sweeper.Scope) (sweeper.Result, error) {
	if scope == (sweeper.Scope{}) {
		c.calls.Add(1)
	}
	return sweeper.Result{}, nil
}

func TestSchedulerSweepsPeriodically(t *testing.T) {
	sw := &countingSweeper{}
	s, err := scheduler.New(sw, 20*time.Millisecond, logger.Nop())
	require.NoError(t, err)

	require.NoError(t, s.Start(context.Background()))
	defer s.Shutdown()

	assert.Eventually(t, func() bool { return sw.calls.Load() >= 2 }, 2*time.Second, 10*time.Millisecond)
}

func TestZeroIntervalDisablesSweep(t *testing.T) {
	sw := &countingSweeper{}
	s, err := scheduler.New(sw, 0, logger.Nop())
	require.NoError(t, err)

	require.NoError(t, s.Start(context.Background()))
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, s.Shutdown())

	assert.Equal(t, int32(0), sw.calls.Load())
}

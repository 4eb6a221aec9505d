package inventory_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ms-transactions/internal/apperr"
	"ms-transactions/internal/database/dbtest"
	"ms-transactions/internal/inventory"
)

func TestDecrementTakesOneSeat(t *testing.T) {
	db := dbtest.New(t)
	event := dbtest.SeedEvent(t, db, uuid.New().String(), 10000, 2)
	ledger := inventory.NewLedger()

	require.NoError(t, ledger.Decrement(context.Background(), db, event.ID))

	seats, err := ledger.Available(context.Background(), db, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, seats.Available)
	assert.Equal(t, 1, seats.Booked())
}

func TestDecrementFailsAtZero(t *testing.T) {
	db := dbtest.New(t)
	event := dbtest.SeedEvent(t, db, uuid.New().String(), 10000, 1)
	ledger := inventory.NewLedger()
	ctx := context.Background()

	require.NoError(t, ledger.Decrement(ctx, db, event.ID))

	err := ledger.Decrement(ctx, db, event.ID)
	assert.True(t, errors.Is(err, inventory.ErrNoAvailableSeats))
	assert.Equal(t, 0, dbtest.GetEvent(t, db, event.ID).AvailableSeat)
}

func TestDecrementUnknownEvent(t *testing.T) {
	db := dbtest.New(t)

	err := inventory.NewLedger().Decrement(context.Background(), db, uuid.New().String())
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestIncrementIsCappedAtCapacity(t *testing.T) {
	db := dbtest.New(t)
	event := dbtest.SeedEvent(t, db, uuid.New().String(), 10000, 3)
	ledger := inventory.NewLedger()
	ctx := context.Background()

	require.NoError(t, ledger.Decrement(ctx, db, event.ID))
	require.NoError(t, ledger.Increment(ctx, db, event.ID, 5))

	assert.Equal(t, 3, dbtest.GetEvent(t, db, event.ID).AvailableSeat)

	require.NoError(t, ledger.Increment(ctx, db, event.ID, 0))
	assert.Equal(t, 3, dbtest.GetEvent(t, db, event.ID).AvailableSeat)
}

func TestConcurrentDecrementsNeverOversell(t *testing.T) {
	db := dbtest.New(t)
	event := dbtest.SeedEvent(t, db, uuid.New().String(), 10000, 5)
	ledger := inventory.NewLedger()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		okCount  int
		noSeats  int
		attempts = 12
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := ledger.Decrement(context.Background(), db, event.ID)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				okCount++
			} else if errors.Is(err, inventory.ErrNoAvailableSeats) {
				noSeats++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, okCount)
	assert.Equal(t, attempts-5, noSeats)
	assert.Equal(t, 0, dbtest.GetEvent(t, db, event.ID).AvailableSeat)
}

func TestResizeKeepsBookedSeats(t *testing.T) {
	db := dbtest.New(t)
	event := dbtest.SeedEvent(t, db, uuid.New().String(), 10000, 5)
	ledger := inventory.NewLedger()
	ctx := context.Background()

	require.NoError(t, ledger.Decrement(ctx, db, event.ID))
	require.NoError(t, ledger.Decrement(ctx, db, event.ID))

	seats, err := ledger.Resize(ctx, db, event.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, 8, seats.Available)
	assert.Equal(t, 10, seats.Capacity)

	_, err = ledger.Resize(ctx, db, event.ID, 1)
	require.Error(t, err)
	assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "You already have 2 seats booked")

	stored := dbtest.GetEvent(t, db, event.ID)
	assert.Equal(t, 10, stored.CapacitySeat)
	assert.Equal(t, 8, stored.AvailableSeat)
}

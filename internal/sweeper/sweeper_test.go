package sweeper_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	coupondb "ms-transactions/internal/coupons/db"
	"ms-transactions/internal/database/dbtest"
	"ms-transactions/internal/inventory"
	"ms-transactions/internal/logger"
	"ms-transactions/internal/models"
	"ms-transactions/internal/notification"
	"ms-transactions/internal/sweeper"
	txdb "ms-transactions/internal/transaction/db"
)

type recorder struct {
	events []models.TransactionStatusEvent
}

func (r *recorder) Publish(_ context.Context, evt models.TransactionStatusEvent) {
	r.events = append(r.events, evt)
}

func setup(t *testing.T) (*sweeper.Sweeper, *bun.DB, *recorder) {
	db := dbtest.New(t)
	rec := &recorder{}
	s := sweeper.New(&txdb.DB{Bun: db}, &coupondb.DB{Bun: db}, inventory.NewLedger(), rec, logger.Nop())
	return s, db, rec
}

func TestSweepExpiresAndCancels(t *testing.T) {
	s, db, rec := setup(t)
	past := time.Now().Add(-time.Minute)
	event := dbtest.SeedEvent(t, db, uuid.New().String(), 50000, 3)

	unpaid := dbtest.SeedTransaction(t, db, event, uuid.New().String(), models.StatusWaitingForPayment, past)
	unconfirmed := dbtest.SeedTransaction(t, db, event, uuid.New().String(), models.StatusWaitingForAdmin, past)
	coupon := dbtest.SeedCoupon(t, db, unconfirmed.CustomerID, 10000, time.Now().Add(time.Hour))
	dbtest.AttachCoupon(t, db, coupon.ID, unconfirmed.ID)
	require.Equal(t, 2, dbtest.GetEvent(t, db, event.ID).AvailableSeat)

	result, err := s.Sweep(context.Background(), sweeper.Scope{EventID: event.ID})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Expired)
	assert.Equal(t, 1, result.Cancelled)
	assert.Equal(t, 1, result.FreedSeats)
	assert.Equal(t, models.StatusExpired, dbtest.GetTransaction(t, db, unpaid.ID).Status)
	assert.Equal(t, models.StatusCancelled, dbtest.GetTransaction(t, db, unconfirmed.ID).Status)
	assert.Equal(t, 3, dbtest.GetEvent(t, db, event.ID).AvailableSeat)
	assert.Equal(t, 0, dbtest.CountAttendees(t, db, event.ID))
	assert.False(t, dbtest.GetCoupon(t, db, coupon.ID).IsUsed)

	require.Len(t, rec.events, 2)
	types := []string{rec.events[0].Type, rec.events[1].Type}
	assert.ElementsMatch(t, []string{notification.TypeExpired, notification.TypeAdminTimeout}, types)
}

func TestSweepTwiceReleasesOnce(t *testing.T) {
	s, db, rec := setup(t)
	event := dbtest.SeedEvent(t, db, uuid.New().String(), 50000, 2)
	dbtest.SeedTransaction(t, db, event, uuid.New().String(), models.StatusWaitingForAdmin, time.Now().Add(-time.Second))

	first, err := s.Sweep(context.Background(), sweeper.Scope{})
	require.NoError(t, err)
	assert.Equal(t, 1, first.FreedSeats)

	second, err := s.Sweep(context.Background(), sweeper.Scope{})
	require.NoError(t, err)
	assert.True(t, second.Empty())
	assert.Equal(t, 0, second.FreedSeats)

	assert.Equal(t, 2, dbtest.GetEvent(t, db, event.ID).AvailableSeat)
	assert.Len(t, rec.events, 1)
}

func TestSweepRespectsScopeAndDeadline(t *testing.T) {
	s, db, _ := setup(t)
	event := dbtest.SeedEvent(t, db, uuid.New().String(), 50000, 5)
	other := dbtest.SeedEvent(t, db, uuid.New().String(), 50000, 5)

	fresh := dbtest.SeedTransaction(t, db, event, uuid.New().String(), models.StatusWaitingForPayment, time.Now().Add(time.Hour))
	elsewhere := dbtest.SeedTransaction(t, db, other, uuid.New().String(), models.StatusWaitingForPayment, time.Now().Add(-time.Hour))
	done := dbtest.SeedTransaction(t, db, event, uuid.New().String(), models.StatusDone, time.Now().Add(-time.Hour))

	result, err := s.Sweep(context.Background(), sweeper.Scope{EventID: event.ID})
	require.NoError(t, err)
	assert.True(t, result.Empty())

	assert.Equal(t, models.StatusWaitingForPayment, dbtest.GetTransaction(t, db, fresh.ID).Status)
	assert.Equal(t, models.StatusWaitingForPayment, dbtest.GetTransaction(t, db, elsewhere.ID).Status)
	assert.Equal(t, models.StatusDone, dbtest.GetTransaction(t, db, done.ID).Status)

	result, err = s.Sweep(context.Background(), sweeper.Scope{TransactionID: elsewhere.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Expired)
	assert.Equal(t, 0, result.FreedSeats)
}

package events_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ms-transactions/internal/apperr"
	"ms-transactions/internal/database/dbtest"
	"ms-transactions/internal/events"
	"ms-transactions/internal/events/db"
	"ms-transactions/internal/inventory"
	"ms-transactions/internal/logger"
	"ms-transactions/internal/models"
)

func setup(t *testing.T) (*events.EventService, *db.DB, models.Actor) {
	store := &db.DB{Bun: dbtest.New(t)}
	organizer := models.Actor{ID: uuid.New().String(), Role: models.RoleOrganizer}
	return events.NewEventService(store, inventory.NewLedger(), logger.Nop()), store, organizer
}

func createRequest(capacity int) models.CreateEventRequest {
	start := time.Now().Add(7 * 24 * time.Hour)
	return models.CreateEventRequest{
		Name:         "Rock Fest",
		Price:        150000,
		StartDate:    start,
		EndDate:      start.Add(6 * time.Hour),
		CapacitySeat: capacity,
		Category:     []string{"music", " outdoor"},
		Location:     "bandung",
	}
}

func TestCreateAndGet(t *testing.T) {
	svc, _, organizer := setup(t)
	ctx := context.Background()

	event, err := svc.Create(ctx, organizer, createRequest(50))
	require.NoError(t, err)

	got, err := svc.Get(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, got.AvailableSeat)
	assert.Equal(t, []string{"MUSIC", "OUTDOOR"}, got.Category)
	assert.Equal(t, "BANDUNG", got.Location)
	assert.Equal(t, organizer.ID, got.OrganizerID)

	_, err = svc.Get(ctx, uuid.New().String())
	assert.True(t, errors.Is(err, inventory.ErrEventNotFound))
}

func TestEditResizesAroundBookedSeats(t *testing.T) {
	svc, store, organizer := setup(t)
	ctx := context.Background()

	event, err := svc.Create(ctx, organizer, createRequest(5))
	require.NoError(t, err)
	ledger := inventory.NewLedger()
	for i := 0; i < 3; i++ {
		require.NoError(t, ledger.Decrement(ctx, store.Bun, event.ID))
	}

	desc := "Bring earplugs"
	edited, err := svc.Edit(ctx, organizer, event.ID, models.EditEventRequest{Name: "Rock Fest II", Description: &desc, CapacitySeat: 4})
	require.NoError(t, err)
	assert.Equal(t, 4, edited.CapacitySeat)
	assert.Equal(t, 1, edited.AvailableSeat)

	_, err = svc.Edit(ctx, organizer, event.ID, models.EditEventRequest{Name: "Tiny Fest", CapacitySeat: 2})
	require.Error(t, err)
	assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))

	// A refused resize rolls back the rename too.
	stored := dbtest.GetEvent(t, store.Bun, event.ID)
	assert.Equal(t, "Rock Fest II", stored.Name)
	assert.Equal(t, "Bring earplugs", stored.Description)
	assert.Equal(t, 4, stored.CapacitySeat)
}

func TestOnlyOwnerManagesEvent(t *testing.T) {
	svc, _, organizer := setup(t)
	ctx := context.Background()

	event, err := svc.Create(ctx, organizer, createRequest(5))
	require.NoError(t, err)

	stranger := models.Actor{ID: uuid.New().String(), Role: models.RoleOrganizer}
	_, err = svc.Edit(ctx, stranger, event.ID, models.EditEventRequest{Name: "Mine now", CapacitySeat: 5})
	assert.True(t, errors.Is(err, events.ErrNotEventOrganizer))
	assert.True(t, errors.Is(svc.Delete(ctx, stranger, event.ID), events.ErrNotEventOrganizer))

	_, err = svc.Attendees(ctx, stranger, event.ID)
	assert.True(t, errors.Is(err, events.ErrNotEventOrganizer))

	require.NoError(t, svc.Delete(ctx, organizer, event.ID))
	_, err = svc.Get(ctx, event.ID)
	assert.True(t, errors.Is(err, inventory.ErrEventNotFound))
}

func TestDeleteReleasesHeldCoupons(t *testing.T) {
	svc, store, organizer := setup(t)
	ctx := context.Background()

	event, err := svc.Create(ctx, organizer, createRequest(5))
	require.NoError(t, err)

	buyer := uuid.New().String()
	pending := dbtest.SeedTransaction(t, store.Bun, event, buyer, models.StatusWaitingForAdmin, time.Now().Add(time.Hour))
	coupon := dbtest.SeedCoupon(t, store.Bun, buyer, 8000, time.Now().Add(24*time.Hour))
	dbtest.AttachCoupon(t, store.Bun, coupon.ID, pending.ID)

	other, err := svc.Create(ctx, organizer, createRequest(5))
	require.NoError(t, err)
	elsewhere := dbtest.SeedTransaction(t, store.Bun, other, buyer, models.StatusWaitingForPayment, time.Now().Add(time.Hour))
	kept := dbtest.SeedCoupon(t, store.Bun, buyer, 5000, time.Now().Add(24*time.Hour))
	dbtest.AttachCoupon(t, store.Bun, kept.ID, elsewhere.ID)

	require.NoError(t, svc.Delete(ctx, organizer, event.ID))

	released := dbtest.GetCoupon(t, store.Bun, coupon.ID)
	assert.False(t, released.IsUsed)
	assert.Nil(t, released.UsedByTransactionID)

	assert.True(t, dbtest.GetCoupon(t, store.Bun, kept.ID).IsUsed)
}

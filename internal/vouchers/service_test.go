package vouchers_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ms-transactions/internal/database/dbtest"
	"ms-transactions/internal/discount"
	"ms-transactions/internal/logger"
	"ms-transactions/internal/models"
	"ms-transactions/internal/vouchers"
	"ms-transactions/internal/vouchers/db"
)

func setup(t *testing.T) (*vouchers.VoucherService, *models.Event, models.Actor) {
	store := &db.DB{Bun: dbtest.New(t)}
	organizer := models.Actor{ID: uuid.New().String(), Role: models.RoleOrganizer}
	event := dbtest.SeedEvent(t, store.Bun, organizer.ID, 100000, 10)
	return vouchers.NewVoucherService(store, logger.Nop()), event, organizer
}

func request(eventID, code string, amount int64) models.CreateVoucherRequest {
	now := time.Now()
	return models.CreateVoucherRequest{
		Code:       code,
		Discount:   amount,
		ValidFrom:  now.Add(-time.Hour),
		ValidUntil: now.Add(24 * time.Hour),
		EventID:    eventID,
		IsActive:   true,
	}
}

func TestCreateNormalizesAndRejectsDuplicates(t *testing.T) {
	svc, event, organizer := setup(t)
	ctx := context.Background()

	v, err := svc.Create(ctx, organizer, request(event.ID, " earlybird ", 25000))
	require.NoError(t, err)
	assert.Equal(t, "EARLYBIRD", v.Code)

	_, err = svc.Create(ctx, organizer, request(event.ID, "EarlyBird", 10000))
	assert.True(t, errors.Is(err, vouchers.ErrDuplicateCode))
}

func TestCreateChecksOwnershipAndPrice(t *testing.T) {
	svc, event, organizer := setup(t)
	ctx := context.Background()

	stranger := models.Actor{ID: uuid.New().String(), Role: models.RoleOrganizer}
	_, err := svc.Create(ctx, stranger, request(event.ID, "PROMO", 1000))
	assert.True(t, errors.Is(err, vouchers.ErrNotEventOrganizer))

	_, err = svc.Create(ctx, organizer, request(event.ID, "PROMO", 200000))
	assert.True(t, errors.Is(err, vouchers.ErrDiscountTooLarge))

	_, err = svc.Create(ctx, organizer, request(uuid.New().String(), "PROMO", 1000))
	assert.True(t, errors.Is(err, vouchers.ErrEventNotFound))
}

func TestValidateWindowAndToggle(t *testing.T) {
	svc, event, organizer := setup(t)
	ctx := context.Background()

	v, err := svc.Create(ctx, organizer, request(event.ID, "PROMO", 1000))
	require.NoError(t, err)

	got, err := svc.Validate(ctx, "promo", event.ID)
	require.NoError(t, err)
	assert.Equal(t, v.ID, got.ID)

	_, err = svc.SetActive(ctx, organizer, v.ID, false)
	require.NoError(t, err)
	_, err = svc.Validate(ctx, "PROMO", event.ID)
	assert.True(t, errors.Is(err, discount.ErrVoucherInactive))

	svc.Now = func() time.Time { return time.Now().Add(48 * time.Hour) }
	_, err = svc.SetActive(ctx, organizer, v.ID, true)
	require.NoError(t, err)
	_, err = svc.Validate(ctx, "PROMO", event.ID)
	assert.True(t, errors.Is(err, discount.ErrVoucherExpired))

	_, err = svc.Validate(ctx, "MISSING", event.ID)
	assert.True(t, errors.Is(err, discount.ErrVoucherNotFound))
}

func TestDeleteAndList(t *testing.T) {
	svc, event, organizer := setup(t)
	ctx := context.Background()

	v, err := svc.Create(ctx, organizer, request(event.ID, "PROMO", 1000))
	require.NoError(t, err)
	_, err = svc.Create(ctx, organizer, request(event.ID, "LATE", 2000))
	require.NoError(t, err)

	list, err := svc.ListByEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	stranger := models.Actor{ID: uuid.New().String(), Role: models.RoleOrganizer}
	assert.True(t, errors.Is(svc.Delete(ctx, stranger, v.ID), vouchers.ErrNotEventOrganizer))

	require.NoError(t, svc.Delete(ctx, organizer, v.ID))
	list, err = svc.ListByEvent(ctx, event.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

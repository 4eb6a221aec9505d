package coupons_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ms-transactions/internal/coupons"
	"ms-transactions/internal/coupons/db"
	"ms-transactions/internal/database/dbtest"
	"ms-transactions/internal/logger"
	"ms-transactions/internal/models"
)

func newService(t *testing.T) (*coupons.CouponService, *db.DB) {
	store := &db.DB{Bun: dbtest.New(t)}
	return coupons.NewCouponService(store, 3, logger.Nop()), store
}

func customer(u *models.User) models.Actor {
	return models.Actor{ID: u.ID, Role: models.RoleCustomer}
}

func TestClaimReferralCreatesPair(t *testing.T) {
	svc, store := newService(t)
	referrer := dbtest.SeedUser(t, store.Bun, models.RoleCustomer, "REF-ALICE")
	claimer := dbtest.SeedUser(t, store.Bun, models.RoleCustomer, "REF-BOB")

	pair, err := svc.ClaimReferral(context.Background(), customer(claimer), " REF-ALICE ")
	require.NoError(t, err)
	require.Len(t, pair, 2)

	for _, c := range pair {
		assert.Equal(t, coupons.ReferralDiscount, c.Discount)
		assert.Equal(t, claimer.ID, c.ClaimerID)
		assert.Equal(t, referrer.ID, c.ReferrerID)
		assert.WithinDuration(t, time.Now().AddDate(0, 3, 0), c.ExpiredAt, time.Minute)
	}

	mine, err := svc.ListValid(context.Background(), customer(claimer))
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, models.CouponRoleClaimer, mine[0].UserCouponRole)

	theirs, err := svc.ListValid(context.Background(), customer(referrer))
	require.NoError(t, err)
	require.Len(t, theirs, 1)
	assert.Equal(t, models.CouponRoleReferrer, theirs[0].UserCouponRole)
}

func TestClaimReferralOnlyOnce(t *testing.T) {
	svc, store := newService(t)
	dbtest.SeedUser(t, store.Bun, models.RoleCustomer, "REF-ALICE")
	dbtest.SeedUser(t, store.Bun, models.RoleCustomer, "REF-CAROL")
	claimer := dbtest.SeedUser(t, store.Bun, models.RoleCustomer, "REF-BOB")

	_, err := svc.ClaimReferral(context.Background(), customer(claimer), "REF-ALICE")
	require.NoError(t, err)

	_, err = svc.ClaimReferral(context.Background(), customer(claimer), "REF-CAROL")
	assert.True(t, errors.Is(err, coupons.ErrAlreadyClaimed))
}

func TestClaimReferralRejectsUnknownAndOwnCode(t *testing.T) {
	svc, store := newService(t)
	claimer := dbtest.SeedUser(t, store.Bun, models.RoleCustomer, "REF-BOB")

	_, err := svc.ClaimReferral(context.Background(), customer(claimer), "NOPE")
	assert.True(t, errors.Is(err, coupons.ErrReferralNotFound))

	_, err = svc.ClaimReferral(context.Background(), customer(claimer), "REF-BOB")
	assert.True(t, errors.Is(err, coupons.ErrOwnReferralCode))

	_, err = svc.ClaimReferral(context.Background(), customer(claimer), "  ")
	assert.True(t, errors.Is(err, coupons.ErrReferralCodeMissing))
}

func TestListValidSkipsUsedAndExpired(t *testing.T) {
	svc, store := newService(t)
	owner := dbtest.SeedUser(t, store.Bun, models.RoleCustomer, "")
	ctx := context.Background()

	fresh := dbtest.SeedCoupon(t, store.Bun, owner.ID, 10000, time.Now().Add(24*time.Hour))
	dbtest.SeedCoupon(t, store.Bun, owner.ID, 10000, time.Now().Add(-time.Hour))
	used := dbtest.SeedCoupon(t, store.Bun, owner.ID, 10000, time.Now().Add(24*time.Hour))
	n, err := store.Attach(ctx, store.Bun, "tx-1", []string{used.ID})
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	valid, err := svc.ListValid(ctx, customer(owner))
	require.NoError(t, err)
	require.Len(t, valid, 1)
	assert.Equal(t, fresh.ID, valid[0].ID)
}

func TestAttachAndRelease(t *testing.T) {
	_, store := newService(t)
	owner := dbtest.SeedUser(t, store.Bun, models.RoleCustomer, "")
	ctx := context.Background()
	c1 := dbtest.SeedCoupon(t, store.Bun, owner.ID, 10000, time.Now().Add(time.Hour))
	c2 := dbtest.SeedCoupon(t, store.Bun, owner.ID, 10000, time.Now().Add(time.Hour))

	n, err := store.Attach(ctx, store.Bun, "tx-1", []string{c1.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	// c1 is taken, so only c2 attaches to the second transaction.
	n, err = store.Attach(ctx, store.Bun, "tx-2", []string{c1.ID, c2.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	attached, err := store.ListByTransaction(ctx, store.Bun, "tx-1")
	require.NoError(t, err)
	require.Len(t, attached, 1)

	n, err = store.Release(ctx, store.Bun, "tx-1", "tx-2")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	released := dbtest.GetCoupon(t, store.Bun, c1.ID)
	assert.False(t, released.IsUsed)
	assert.Nil(t, released.UsedByTransactionID)

	spendable, err := store.ListSpendable(ctx, store.Bun, owner.ID, []string{c1.ID, c2.ID}, time.Now())
	require.NoError(t, err)
	assert.Len(t, spendable, 2)

	other, err := store.ListSpendable(ctx, store.Bun, "someone-else", []string{c1.ID}, time.Now())
	require.NoError(t, err)
	assert.Empty(t, other)
}

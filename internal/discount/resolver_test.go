package discount_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"ms-transactions/internal/apperr"
	"ms-transactions/internal/discount"
	"ms-transactions/internal/logger"
	"ms-transactions/internal/models"
)

type MockVoucherStore struct {
	mock.Mock
}

func (m *MockVoucherStore) GetForEvent(ctx context.Context, db bun.IDB, voucherID, eventID string) (*models.Voucher, error) {
	args := m.Called(voucherID, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Voucher), args.Error(1)
}

type MockCouponStore struct {
	mock.Mock
}

func (m *MockCouponStore) ListSpendable(ctx context.Context, db bun.IDB, customerID string, ids []string, now time.Time) ([]models.Coupon, error) {
	args := m.Called(customerID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Coupon), args.Error(1)
}

func newResolver() (*discount.Resolver, *MockVoucherStore, *MockCouponStore) {
	vouchers := new(MockVoucherStore)
	coupons := new(MockCouponStore)
	return discount.NewResolver(vouchers, coupons, logger.Nop()), vouchers, coupons
}

func strPtr(s string) *string { return &s }

func activeVoucher(now time.Time, amount int64) *models.Voucher {
	return &models.Voucher{
		ID:         "voucher-1",
		EventID:    "event-1",
		Code:       "EARLYBIRD",
		Discount:   amount,
		ValidFrom:  now.Add(-time.Hour),
		ValidUntil: now.Add(time.Hour),
		IsActive:   true,
	}
}

func TestResolveVoucherAndCoupons(t *testing.T) {
	now := time.Now()
	resolver, vouchers, coupons := newResolver()
	vouchers.On("GetForEvent", "voucher-1", "event-1").Return(activeVoucher(now, 5000), nil)
	coupons.On("ListSpendable", "cust-1", []string{"coupon-1"}).
		Return([]models.Coupon{{ID: "coupon-1", Discount: 8000}}, nil)

	result, err := resolver.Resolve(context.Background(), nil, discount.Request{
		EventID:    "event-1",
		Price:      10000,
		CustomerID: "cust-1",
		VoucherID:  strPtr("voucher-1"),
		CouponIDs:  []string{"coupon-1", "coupon-1"},
		Now:        now,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(0), result.AmountPaid)
	assert.Equal(t, int64(5000), result.VoucherDiscount)
	assert.Equal(t, int64(5000), result.CouponDiscount)
	assert.Equal(t, "EARLYBIRD", result.VoucherCode)
	assert.Equal(t, []string{"coupon-1"}, result.CouponIDs)
	vouchers.AssertExpectations(t)
	coupons.AssertExpectations(t)
}

func TestResolveVoucherRejections(t *testing.T) {
	now := time.Now()

	inactive := activeVoucher(now, 1000)
	inactive.IsActive = false
	future := activeVoucher(now, 1000)
	future.ValidFrom = now.Add(time.Hour)
	future.ValidUntil = now.Add(2 * time.Hour)
	past := activeVoucher(now, 1000)
	past.ValidUntil = now.Add(-time.Minute)

	tests := []struct {
		name    string
		voucher *models.Voucher
		want    error
	}{
		{"missing", nil, discount.ErrVoucherNotFound},
		{"inactive", inactive, discount.ErrVoucherInactive},
		{"not yet active", future, discount.ErrVoucherNotYetActive},
		{"expired", past, discount.ErrVoucherExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver, vouchers, coupons := newResolver()
			vouchers.On("GetForEvent", "voucher-1", "event-1").Return(tt.voucher, nil)

			_, err := resolver.Resolve(context.Background(), nil, discount.Request{
				EventID:    "event-1",
				Price:      10000,
				CustomerID: "cust-1",
				VoucherID:  strPtr("voucher-1"),
				CouponIDs:  []string{"coupon-1"},
				Now:        now,
			})

			assert.True(t, errors.Is(err, tt.want))
			assert.True(t, apperr.IsBusiness(err))
			coupons.AssertNotCalled(t, "ListSpendable", mock.Anything, mock.Anything)
		})
	}
}

func TestResolveRejectsUnspendableCoupons(t *testing.T) {
	resolver, _, coupons := newResolver()
	coupons.On("ListSpendable", "cust-1", []string{"coupon-1", "coupon-2"}).
		Return([]models.Coupon{{ID: "coupon-1", Discount: 10000}}, nil)

	_, err := resolver.Resolve(context.Background(), nil, discount.Request{
		EventID:    "event-1",
		Price:      50000,
		CustomerID: "cust-1",
		CouponIDs:  []string{"coupon-1", "coupon-2"},
		Now:        time.Now(),
	})

	assert.True(t, errors.Is(err, discount.ErrInvalidCoupons))
}

func TestResolveFreeEventIgnoresDiscounts(t *testing.T) {
	resolver, vouchers, coupons := newResolver()

	result, err := resolver.Resolve(context.Background(), nil, discount.Request{
		EventID:    "event-1",
		Price:      0,
		CustomerID: "cust-1",
		VoucherID:  strPtr("voucher-1"),
		CouponIDs:  []string{"coupon-1"},
		Now:        time.Now(),
	})

	require.NoError(t, err)
	assert.Equal(t, int64(0), result.AmountPaid)
	assert.Nil(t, result.VoucherID)
	assert.Empty(t, result.CouponIDs)
	vouchers.AssertNotCalled(t, "GetForEvent", mock.Anything, mock.Anything)
	coupons.AssertNotCalled(t, "ListSpendable", mock.Anything, mock.Anything)
}

func TestResolveSkipsCouponsWhenVoucherCoversPrice(t *testing.T) {
	now := time.Now()
	resolver, vouchers, coupons := newResolver()
	vouchers.On("GetForEvent", "voucher-1", "event-1").Return(activeVoucher(now, 20000), nil)

	result, err := resolver.Resolve(context.Background(), nil, discount.Request{
		EventID:    "event-1",
		Price:      10000,
		CustomerID: "cust-1",
		VoucherID:  strPtr("voucher-1"),
		CouponIDs:  []string{"coupon-1"},
		Now:        now,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(10000), result.VoucherDiscount)
	assert.Equal(t, int64(0), result.AmountPaid)
	assert.Empty(t, result.CouponIDs)
	coupons.AssertNotCalled(t, "ListSpendable", mock.Anything, mock.Anything)
}

func TestResolveStoreFailureIsInternal(t *testing.T) {
	resolver, vouchers, _ := newResolver()
	vouchers.On("GetForEvent", "voucher-1", "event-1").Return(nil, errors.New("connection refused"))

	_, err := resolver.Resolve(context.Background(), nil, discount.Request{
		EventID:   "event-1",
		Price:     10000,
		VoucherID: strPtr("voucher-1"),
		Now:       time.Now(),
	})

	require.Error(t, err)
	assert.False(t, apperr.IsBusiness(err))
}

package discount

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"ms-transactions/internal/apperr"
	"ms-transactions/internal/logger"
	"ms-transactions/internal/models"
)

var (
	ErrVoucherNotFound     = apperr.NotFound("Voucher not found")
	ErrVoucherInactive     = apperr.BadRequest("Voucher is inactive")
	ErrVoucherNotYetActive = apperr.BadRequest("Voucher not yet active")
	ErrVoucherExpired      = apperr.BadRequest("Voucher has expired")
	ErrInvalidCoupons      = apperr.BadRequest("One or more coupons are invalid/already used/expired")
)

// VoucherStore finds a voucher scoped to one event. It returns (nil, nil) when absent.
type VoucherStore interface {
	GetForEvent(ctx context.Context, db bun.IDB, voucherID, eventID string) (*models.Voucher, error)
}

// CouponStore lists the coupons among ids that customerID owns and can still spend at now.
type CouponStore interface {
	ListSpendable(ctx context.Context, db bun.IDB, customerID string, ids []string, now time.Time) ([]models.Coupon, error)
}

type Request struct {
	EventID    string
	Price      int64
	CustomerID string
	VoucherID  *string
	CouponIDs  []string
	Now        time.Time
}

type Result struct {
	Amounts
	VoucherID   *string
	VoucherCode string
	// CouponIDs are the coupons to attach. Empty when coupons were not applied.
	CouponIDs []string
}

type Resolver struct {
	Vouchers VoucherStore
	Coupons  CouponStore
	Logger   *logger.Logger
}

func NewResolver(vouchers VoucherStore, coupons CouponStore, log *logger.Logger) *Resolver {
	return &Resolver{Vouchers: vouchers, Coupons: coupons, Logger: log}
}

// Resolve validates the requested voucher and coupons and computes the amounts.
// Any invalid voucher or coupon fails the whole request.
func (r *Resolver) Resolve(ctx context.Context, db bun.IDB, req Request) (*Result, error) {
	result := &Result{Amounts: Calculate(req.Price, 0, 0)}

	// Nothing to discount on a free event, so nothing is validated or consumed.
	if req.Price == 0 {
		return result, nil
	}

	var voucherDiscount int64
	if req.VoucherID != nil && *req.VoucherID != "" {
		voucher, err := r.Vouchers.GetForEvent(ctx, db, *req.VoucherID, req.EventID)
		if err != nil {
			return nil, fmt.Errorf("load voucher %s: %w", *req.VoucherID, err)
		}
		if err := checkVoucher(voucher, req.Now); err != nil {
			r.Logger.Debug("DISCOUNT", fmt.Sprintf("Voucher %s rejected for event %s: %v", *req.VoucherID, req.EventID, err))
			return nil, err
		}
		voucherDiscount = voucher.Discount
		result.VoucherID = &voucher.ID
		result.VoucherCode = voucher.Code
	}

	ids := unique(req.CouponIDs)
	var couponTotal int64
	if len(ids) > 0 && req.Price-min(voucherDiscount, req.Price) > 0 {
		coupons, err := r.Coupons.ListSpendable(ctx, db, req.CustomerID, ids, req.Now)
		if err != nil {
			return nil, fmt.Errorf("load coupons: %w", err)
		}
		if len(coupons) != len(ids) {
			r.Logger.Debug("DISCOUNT", fmt.Sprintf("Customer %s requested %d coupons, %d spendable", req.CustomerID, len(ids), len(coupons)))
			return nil, ErrInvalidCoupons
		}
		for _, c := range coupons {
			couponTotal += c.Discount
		}
		result.CouponIDs = ids
	}

	result.Amounts = Calculate(req.Price, voucherDiscount, couponTotal)
	if result.CouponDiscount == 0 {
		result.CouponIDs = nil
	}
	return result, nil
}

func checkVoucher(v *models.Voucher, now time.Time) error {
	switch {
	case v == nil:
		return ErrVoucherNotFound
	case !v.IsActive:
		return ErrVoucherInactive
	case now.Before(v.ValidFrom):
		return ErrVoucherNotYetActive
	case now.After(v.ValidUntil):
		return ErrVoucherExpired
	}
	return nil
}

func unique(ids []string) []string {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/uptrace/bun"

	"ms-transactions/internal/models"
)

type DB struct {
	Bun *bun.DB
}

// owned restricts a coupon query to the coupons userID may spend.
func owned(q *bun.SelectQuery, userID string) *bun.SelectQuery {
	return q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.
			WhereGroup(" OR ", func(q *bun.SelectQuery) *bun.SelectQuery {
				return q.Where("c.user_coupon_role = ?", models.CouponRoleClaimer).Where("c.claimer_id = ?", userID)
			}).
			WhereGroup(" OR ", func(q *bun.SelectQuery) *bun.SelectQuery {
				return q.Where("c.user_coupon_role = ?", models.CouponRoleReferrer).Where("c.referrer_id = ?", userID)
			})
	})
}

// ListSpendable → coupons among ids that userID owns, unused and unexpired at now
func (d *DB) ListSpendable(ctx context.Context, idb bun.IDB, userID string, ids []string, now time.Time) ([]models.Coupon, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var coupons []models.Coupon
	q := idb.NewSelect().
		Model(&coupons).
		Where("c.id IN (?)", bun.In(ids)).
		Where("c.is_used = ?", false).
		Where("c.expired_at > ?", now)
	err := owned(q, userID).Scan(ctx)
	return coupons, err
}

// ListValid → every coupon userID can still spend
func (d *DB) ListValid(ctx context.Context, userID string, now time.Time) ([]models.Coupon, error) {
	coupons := []models.Coupon{}
	q := d.Bun.NewSelect().
		Model(&coupons).
		Where("c.is_used = ?", false).
		Where("c.expired_at > ?", now).
		OrderExpr("c.expired_at ASC")
	err := owned(q, userID).Scan(ctx)
	return coupons, err
}

// ListByTransaction → coupons attached to a transaction
func (d *DB) ListByTransaction(ctx context.Context, idb bun.IDB, transactionID string) ([]models.Coupon, error) {
	coupons := []models.Coupon{}
	err := idb.NewSelect().
		Model(&coupons).
		Where("c.used_by_transaction_id = ?", transactionID).
		Scan(ctx)
	return coupons, err
}

// Attach marks ids used by transactionID. Only unused coupons are touched, so the
// returned count is lower than len(ids) when another transaction won the race.
func (d *DB) Attach(ctx context.Context, idb bun.IDB, transactionID string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := idb.NewUpdate().
		Model((*models.Coupon)(nil)).
		Set("is_used = ?", true).
		Set("used_by_transaction_id = ?", transactionID).
		Where("id IN (?)", bun.In(ids)).
		Where("is_used = ?", false).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Release frees the coupons attached to any of transactionIDs
func (d *DB) Release(ctx context.Context, idb bun.IDB, transactionIDs ...string) (int64, error) {
	if len(transactionIDs) == 0 {
		return 0, nil
	}
	res, err := idb.NewUpdate().
		Model((*models.Coupon)(nil)).
		Set("is_used = ?", false).
		Set("used_by_transaction_id = NULL").
		Where("used_by_transaction_id IN (?)", bun.In(transactionIDs)).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// HasClaimed → whether userID already redeemed a referral code
func (d *DB) HasClaimed(ctx context.Context, idb bun.IDB, userID string) (bool, error) {
	return idb.NewSelect().
		Model((*models.Coupon)(nil)).
		Where("claimer_id = ?", userID).
		Where("user_coupon_role = ?", models.CouponRoleClaimer).
		Exists(ctx)
}

// FindUserByReferralCode returns (nil, nil) when no user owns code
func (d *DB) FindUserByReferralCode(ctx context.Context, idb bun.IDB, code string) (*models.User, error) {
	var user models.User
	err := idb.NewSelect().
		Model(&user).
		Where("referral_code = ?", code).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (d *DB) Insert(ctx context.Context, idb bun.IDB, coupons ...*models.Coupon) error {
	for _, c := range coupons {
		if _, err := idb.NewInsert().Model(c).Exec(ctx); err != nil {
			return err
		}
	}
	return nil
}

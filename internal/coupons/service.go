package coupons

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"ms-transactions/internal/apperr"
	"ms-transactions/internal/coupons/db"
	"ms-transactions/internal/logger"
	"ms-transactions/internal/models"
)

// ReferralDiscount is the denomination of each coupon in a referral pair.
const ReferralDiscount int64 = 10000

var (
	ErrAlreadyClaimed      = apperr.Conflict("You have already claimed a referral code.")
	ErrReferralNotFound    = apperr.NotFound("Referral code incorrect")
	ErrOwnReferralCode     = apperr.BadRequest("Unfortunately, you cannot use your own referral code.")
	ErrReferralCodeMissing = apperr.Validation("Referral code is required", map[string]string{"referral_code": "is required"})
)

type CouponService struct {
	DB           *db.DB
	Logger       *logger.Logger
	CouponMonths int
	Now          func() time.Time
}

func NewCouponService(store *db.DB, couponMonths int, log *logger.Logger) *CouponService {
	return &CouponService{DB: store, Logger: log, CouponMonths: couponMonths, Now: time.Now}
}

// ClaimReferral redeems a referral code for actor and creates the coupon pair.
func (s *CouponService) ClaimReferral(ctx context.Context, actor models.Actor, code string) ([]models.Coupon, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrReferralCodeMissing
	}

	now := s.Now()
	expiry := now.AddDate(0, s.CouponMonths, 0)
	var pair []models.Coupon

	err := s.DB.Bun.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		claimed, err := s.DB.HasClaimed(ctx, tx, actor.ID)
		if err != nil {
			return fmt.Errorf("check claimed coupons: %w", err)
		}
		if claimed {
			return ErrAlreadyClaimed
		}

		referrer, err := s.DB.FindUserByReferralCode(ctx, tx, code)
		if err != nil {
			return fmt.Errorf("find referrer: %w", err)
		}
		if referrer == nil {
			return ErrReferralNotFound
		}
		if referrer.ID == actor.ID {
			return ErrOwnReferralCode
		}

		claimer := &models.Coupon{
			ID:             uuid.New().String(),
			ClaimerID:      actor.ID,
			ReferrerID:     referrer.ID,
			Discount:       ReferralDiscount,
			UserCouponRole: models.CouponRoleClaimer,
			ExpiredAt:      expiry,
		}
		reward := &models.Coupon{
			ID:             uuid.New().String(),
			ClaimerID:      actor.ID,
			ReferrerID:     referrer.ID,
			Discount:       ReferralDiscount,
			UserCouponRole: models.CouponRoleReferrer,
			ExpiredAt:      expiry,
		}
		if err := s.DB.Insert(ctx, tx, claimer, reward); err != nil {
			return fmt.Errorf("insert coupon pair: %w", err)
		}

		pair = []models.Coupon{*claimer, *reward}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Info("COUPON", fmt.Sprintf("User %s redeemed referral code of %s", actor.ID, pair[0].ReferrerID))
	return pair, nil
}

// ListValid returns the coupons actor can spend right now.
func (s *CouponService) ListValid(ctx context.Context, actor models.Actor) ([]models.Coupon, error) {
	coupons, err := s.DB.ListValid(ctx, actor.ID, s.Now())
	if err != nil {
		return nil, fmt.Errorf("list coupons of %s: %w", actor.ID, err)
	}
	return coupons, nil
}

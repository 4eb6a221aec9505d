package models

import (
	"time"

	"github.com/uptrace/bun"
)

type CouponRole string

const (
	CouponRoleClaimer  CouponRole = "CLAIMER"
	CouponRoleReferrer CouponRole = "REFERRER"
)

type Coupon struct {
	bun.BaseModel `bun:"table:coupons,alias:c"`

	ID                  string     `bun:"id,pk" json:"id"`
	ClaimerID           string     `bun:"claimer_id,notnull" json:"claimer_id"`
	ReferrerID          string     `bun:"referrer_id,notnull" json:"referrer_id"`
	Discount            int64      `bun:"discount,notnull" json:"discount"`
	UserCouponRole      CouponRole `bun:"user_coupon_role,notnull" json:"user_coupon_role"`
	IsUsed              bool       `bun:"is_used,notnull" json:"is_used"`
	UsedByTransactionID *string    `bun:"used_by_transaction_id" json:"used_by_transaction_id,omitempty"`
	ExpiredAt           time.Time  `bun:"expired_at,notnull" json:"expired_at"`
	CreatedAt           time.Time  `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
}

// OwnedBy reports whether userID may spend the coupon.
func (c *Coupon) OwnedBy(userID string) bool {
	switch c.UserCouponRole {
	case CouponRoleClaimer:
		return c.ClaimerID == userID
	case CouponRoleReferrer:
		return c.ReferrerID == userID
	}
	return false
}

type ClaimCouponRequest struct {
	ReferralCode string `json:"referral_code" validate:"required"`
}

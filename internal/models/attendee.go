package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Attendee struct {
	bun.BaseModel `bun:"table:attendees,alias:a"`

	UserID        string    `bun:"user_id,pk" json:"user_id"`
	EventID       string    `bun:"event_id,pk" json:"event_id"`
	TransactionID string    `bun:"transaction_id,notnull" json:"transaction_id"`
	IsAccepted    bool      `bun:"is_accepted,notnull" json:"is_accepted"`
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
}

// AttendeeView joins an attendee with its transaction for organizer listings.
type AttendeeView struct {
	UserID          string  `bun:"user_id" json:"user_id"`
	EventID         string  `bun:"event_id" json:"event_id"`
	IsAccepted      bool    `bun:"is_accepted" json:"is_accepted"`
	Username        string  `bun:"customer_name" json:"username"`
	EventName       string  `bun:"event_name" json:"eventName"`
	EventPrice      int64   `bun:"event_price" json:"eventPrice"`
	TransactionID   string  `bun:"transaction_id" json:"transactionId"`
	CouponDiscount  int64   `bun:"coupon_discount" json:"couponDiscount"`
	VoucherDiscount int64   `bun:"voucher_discount" json:"voucherDiscount"`
	VoucherCode     string  `bun:"voucher_code" json:"voucherCode,omitempty"`
	AmountPaid      int64   `bun:"amount_paid" json:"amountPaid"`
	PaymentProofURL *string `bun:"payment_proof_url" json:"payment_proof_url,omitempty"`
}

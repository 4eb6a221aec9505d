package models

import (
	"time"

	"github.com/uptrace/bun"
)

type TransactionStatus string

const (
	StatusWaitingForPayment TransactionStatus = "WAITING_FOR_PAYMENT"
	StatusWaitingForAdmin   TransactionStatus = "WAITING_FOR_ADMIN"
	StatusDone              TransactionStatus = "DONE"
	StatusRejected          TransactionStatus = "REJECTED"
	StatusCancelled         TransactionStatus = "CANCELLED"
	StatusExpired           TransactionStatus = "EXPIRED"
)

// HoldsSeat reports whether a transaction in s owns one of the event's seats.
func (s TransactionStatus) HoldsSeat() bool {
	return s == StatusWaitingForAdmin || s == StatusDone
}

type Transaction struct {
	bun.BaseModel `bun:"table:transactions,alias:t"`

	ID                 string            `bun:"id,pk" json:"id"`
	EventID            string            `bun:"event_id,notnull" json:"event_id"`
	CustomerID         string            `bun:"customer_id,notnull" json:"customer_id"`
	OrganizerID        string            `bun:"organizer_id,notnull" json:"organizer_id"`
	CustomerName       string            `bun:"customer_name,notnull" json:"customer_name"`
	AmountPaid         int64             `bun:"amount_paid,notnull" json:"amount_paid"`
	VoucherID          *string           `bun:"voucher_id" json:"voucher_id,omitempty"`
	VoucherDiscount    int64             `bun:"voucher_discount,notnull" json:"voucher_discount"`
	VoucherCode        string            `bun:"voucher_code,nullzero" json:"voucher_code,omitempty"`
	CouponDiscount     int64             `bun:"coupon_discount,notnull" json:"coupon_discount"`
	Status             TransactionStatus `bun:"status,notnull" json:"status"`
	PaymentProofURL    *string           `bun:"payment_proof_url" json:"payment_proof_url,omitempty"`
	AdminFeeAmount     int64             `bun:"admin_fee_amount,notnull" json:"admin_fee_amount"`
	AdminFeePercentage float64           `bun:"admin_fee_percentage,notnull" json:"admin_fee_percentage"`
	IsAdminFeePaid     bool              `bun:"is_admin_fee_paid,notnull" json:"is_admin_fee_paid"`
	AdminFeePaidAt     *time.Time        `bun:"admin_fee_paid_at" json:"admin_fee_paid_at,omitempty"`
	IsCouponWithdrawn  bool              `bun:"is_coupon_withdrawn,notnull" json:"is_coupon_withdrawn"`
	CouponWithdrawnAt  *time.Time        `bun:"coupon_withdrawn_at" json:"coupon_withdrawn_at,omitempty"`
	CompletedAt        *time.Time        `bun:"completed_at" json:"completed_at,omitempty"`
	ExpiredAt          *time.Time        `bun:"expired_at" json:"expired_at,omitempty"`
	CreatedAt          time.Time         `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt          time.Time         `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`

	Event *Event `bun:"rel:belongs-to,join:event_id=id" json:"event,omitempty"`
}

// TransactionView is what callers see for a single transaction.
type TransactionView struct {
	*Transaction
	Coupons     []Coupon `json:"coupons_used,omitempty"`
	IsFree      bool     `json:"isFree"`
	SecondsLeft *int64   `json:"secondsLeft,omitempty"`
}

type CreateTransactionRequest struct {
	EventID   string   `json:"event_id" validate:"required,uuid"`
	VoucherID *string  `json:"voucher_id,omitempty" validate:"omitempty,uuid"`
	CouponIDs []string `json:"coupon_ids" validate:"omitempty,dive,uuid"`
}

type SubmitPaymentRequest struct {
	PaymentProofURL string `json:"payment_proof_url" validate:"required,min=1"`
}

// TransactionStatusEvent is published whenever a transaction changes state.
type TransactionStatusEvent struct {
	Type          string            `json:"type"`
	TransactionID string            `json:"transaction_id"`
	EventID       string            `json:"event_id"`
	EventName     string            `json:"event_name,omitempty"`
	CustomerID    string            `json:"customer_id"`
	CustomerName  string            `json:"customer_name"`
	CustomerEmail string            `json:"customer_email,omitempty"`
	OrganizerID   string            `json:"organizer_id"`
	Status        TransactionStatus `json:"status"`
	AmountPaid    int64             `json:"amount_paid"`
	Reason        string            `json:"reason,omitempty"`
	OccurredAt    time.Time         `json:"occurred_at"`
}

func NewTransactionStatusEvent(eventType string, t *Transaction, reason string, at time.Time) TransactionStatusEvent {
	evt := TransactionStatusEvent{
		Type:          eventType,
		TransactionID: t.ID,
		EventID:       t.EventID,
		CustomerID:    t.CustomerID,
		CustomerName:  t.CustomerName,
		OrganizerID:   t.OrganizerID,
		Status:        t.Status,
		AmountPaid:    t.AmountPaid,
		Reason:        reason,
		OccurredAt:    at,
	}
	if t.Event != nil {
		evt.EventName = t.Event.Name
	}
	return evt
}

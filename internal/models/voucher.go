package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Voucher struct {
	bun.BaseModel `bun:"table:vouchers,alias:v"`

	ID         string    `bun:"id,pk" json:"id"`
	EventID    string    `bun:"event_id,notnull,unique:code_event" json:"event_id"`
	Code       string    `bun:"code,notnull,unique:code_event" json:"code"`
	Discount   int64     `bun:"discount,notnull" json:"discount"`
	ValidFrom  time.Time `bun:"valid_from,notnull" json:"valid_from"`
	ValidUntil time.Time `bun:"valid_until,notnull" json:"valid_until"`
	IsActive   bool      `bun:"is_active,notnull" json:"is_active"`
	CreatedAt  time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
}

type CreateVoucherRequest struct {
	Code       string    `json:"code" validate:"required,min=3,max=50"`
	Discount   int64     `json:"discount" validate:"required,min=1"`
	ValidFrom  time.Time `json:"valid_from" validate:"required"`
	ValidUntil time.Time `json:"valid_until" validate:"required,gtefield=ValidFrom"`
	EventID    string    `json:"event_id" validate:"required,uuid"`
	IsActive   bool      `json:"is_active"`
}

type ToggleVoucherRequest struct {
	IsActive *bool `json:"is_active" validate:"required"`
}

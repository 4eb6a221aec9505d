package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Event struct {
	bun.BaseModel `bun:"table:events,alias:e"`

	ID            string    `bun:"id,pk" json:"id"`
	OrganizerID   string    `bun:"organizer_id,notnull" json:"organizer_id"`
	Name          string    `bun:"name,notnull" json:"name"`
	Description   string    `bun:"description" json:"description,omitempty"`
	Price         int64     `bun:"price,notnull" json:"price"`
	CapacitySeat  int       `bun:"capacity_seat,notnull" json:"capacity_seat"`
	AvailableSeat int       `bun:"available_seat,notnull" json:"available_seat"`
	StartDate     time.Time `bun:"start_date,notnull" json:"start_date"`
	EndDate       time.Time `bun:"end_date,notnull" json:"end_date"`
	Category      []string  `bun:"category" json:"category"`
	Location      string    `bun:"location" json:"location"`
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt     time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

func (e *Event) IsFree() bool {
	return e.Price == 0
}

type CreateEventRequest struct {
	Name         string    `json:"name" validate:"required,min=3,max=100"`
	Description  string    `json:"description" validate:"max=2000"`
	Price        int64     `json:"price" validate:"min=0"`
	StartDate    time.Time `json:"start_date" validate:"required"`
	EndDate      time.Time `json:"end_date" validate:"required,gtefield=StartDate"`
	CapacitySeat int       `json:"capacity_seat" validate:"required,min=1,max=32767"`
	Category     []string  `json:"category" validate:"required,min=1,dive,required"`
	Location     string    `json:"location" validate:"required"`
}

type EditEventRequest struct {
	Name         string  `json:"name" validate:"required,min=3,max=100"`
	Description  *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	CapacitySeat int     `json:"capacity_seat" validate:"required,min=1,max=32767"`
}

// Package inventory owns the seat counters of an event. Every change is a single
// UPDATE evaluated by the store, so concurrent writers never lose an update.
package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"ms-transactions/internal/apperr"
	"ms-transactions/internal/models"
)

var (
	ErrNoAvailableSeats = apperr.Conflict("No available seats")
	ErrEventNotFound    = apperr.NotFound("Event not found")
)

// Seats is a snapshot of an event's counters.
type Seats struct {
	Capacity  int `bun:"capacity_seat"`
	Available int `bun:"available_seat"`
}

func (s Seats) Booked() int {
	return s.Capacity - s.Available
}

type Ledger struct{}

func NewLedger() *Ledger {
	return &Ledger{}
}

// Decrement takes one seat. It fails with ErrNoAvailableSeats when the counter is
// already zero at the moment of the write.
func (l *Ledger) Decrement(ctx context.Context, db bun.IDB, eventID string) error {
	res, err := db.NewUpdate().
		Model((*models.Event)(nil)).
		Set("available_seat = available_seat - 1").
		Where("id = ?", eventID).
		Where("available_seat > 0").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("decrement seats of event %s: %w", eventID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("decrement seats of event %s: %w", eventID, err)
	}
	if n == 1 {
		return nil
	}

	if _, err := l.Available(ctx, db, eventID); err != nil {
		return err
	}
	return ErrNoAvailableSeats
}

// Increment gives back n seats, never exceeding capacity.
func (l *Ledger) Increment(ctx context.Context, db bun.IDB, eventID string, n int) error {
	if n <= 0 {
		return nil
	}

	_, err := db.NewUpdate().
		Model((*models.Event)(nil)).
		Set("available_seat = CASE WHEN available_seat + ? > capacity_seat THEN capacity_seat ELSE available_seat + ? END", n, n).
		Where("id = ?", eventID).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("increment seats of event %s: %w", eventID, err)
	}
	return nil
}

func (l *Ledger) Available(ctx context.Context, db bun.IDB, eventID string) (Seats, error) {
	var seats Seats
	err := db.NewSelect().
		Model((*models.Event)(nil)).
		Column("capacity_seat", "available_seat").
		Where("id = ?", eventID).
		Limit(1).
		Scan(ctx, &seats)
	if errors.Is(err, sql.ErrNoRows) {
		return Seats{}, ErrEventNotFound
	}
	if err != nil {
		return Seats{}, fmt.Errorf("read seats of event %s: %w", eventID, err)
	}
	return seats, nil
}

// Resize changes the capacity while keeping the booked count. It refuses a capacity
// below the number of seats already booked.
func (l *Ledger) Resize(ctx context.Context, db bun.IDB, eventID string, capacity int) (Seats, error) {
	res, err := db.NewUpdate().
		Model((*models.Event)(nil)).
		Set("available_seat = ? - (capacity_seat - available_seat)", capacity).
		Set("capacity_seat = ?", capacity).
		Where("id = ?", eventID).
		Where("capacity_seat - available_seat <= ?", capacity).
		Exec(ctx)
	if err != nil {
		return Seats{}, fmt.Errorf("resize event %s: %w", eventID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return Seats{}, fmt.Errorf("resize event %s: %w", eventID, err)
	}

	seats, err := l.Available(ctx, db, eventID)
	if err != nil {
		return Seats{}, err
	}
	if n == 0 {
		booked := seats.Booked()
		return seats, apperr.BadRequest(fmt.Sprintf("You already have %d seats booked. Capacity cannot be reduced below %d.", booked, booked))
	}
	return seats, nil
}

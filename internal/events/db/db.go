package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"ms-transactions/internal/models"
)

type DB struct {
	Bun *bun.DB
}

// GetEvent returns (nil, nil) when absent
func (d *DB) GetEvent(ctx context.Context, idb bun.IDB, id string) (*models.Event, error) {
	var e models.Event
	err := idb.NewSelect().Model(&e).Where("e.id = ?", id).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (d *DB) InsertEvent(ctx context.Context, e *models.Event) error {
	_, err := d.Bun.NewInsert().Model(e).Exec(ctx)
	return err
}

// UpdateDetails → update name and description only; seats go through the ledger
func (d *DB) UpdateDetails(ctx context.Context, idb bun.IDB, e *models.Event) error {
	_, err := idb.NewUpdate().
		Model(e).
		Column("name", "description", "updated_at").
		WherePK().
		Exec(ctx)
	return err
}

// ReleaseCoupons → give back every coupon held by a transaction of the event
func (d *DB) ReleaseCoupons(ctx context.Context, idb bun.IDB, eventID string) (int64, error) {
	held := idb.NewSelect().
		TableExpr("transactions").
		Column("id").
		Where("event_id = ?", eventID)

	res, err := idb.NewUpdate().
		Model((*models.Coupon)(nil)).
		Set("is_used = ?", false).
		Set("used_by_transaction_id = NULL").
		Where("used_by_transaction_id IN (?)", held).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteEvent → remove the event; dependent rows go with it through FK cascades
func (d *DB) DeleteEvent(ctx context.Context, idb bun.IDB, id string) error {
	_, err := idb.NewDelete().
		Model((*models.Event)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

// ListAttendees → attendees of an event joined with their transaction
func (d *DB) ListAttendees(ctx context.Context, eventID string) ([]models.AttendeeView, error) {
	rows := []models.AttendeeView{}
	err := d.Bun.NewSelect().
		TableExpr("attendees AS a").
		ColumnExpr("a.user_id, a.event_id, a.is_accepted").
		ColumnExpr("t.customer_name, t.id AS transaction_id").
		ColumnExpr("t.coupon_discount, t.voucher_discount, t.voucher_code, t.amount_paid, t.payment_proof_url").
		ColumnExpr("e.name AS event_name, e.price AS event_price").
		Join("JOIN transactions AS t ON t.id = a.transaction_id").
		Join("JOIN events AS e ON e.id = a.event_id").
		Where("a.event_id = ?", eventID).
		OrderExpr("a.created_at ASC").
		Scan(ctx, &rows)
	return rows, err
}

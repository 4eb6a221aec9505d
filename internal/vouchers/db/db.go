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

func one(ctx context.Context, q *bun.SelectQuery) error {
	return q.Limit(1).Scan(ctx)
}

// GetForEvent returns (nil, nil) when the voucher does not exist for eventID
func (d *DB) GetForEvent(ctx context.Context, idb bun.IDB, voucherID, eventID string) (*models.Voucher, error) {
	var v models.Voucher
	err := one(ctx, idb.NewSelect().Model(&v).Where("v.id = ?", voucherID).Where("v.event_id = ?", eventID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// GetByID returns (nil, nil) when absent
func (d *DB) GetByID(ctx context.Context, id string) (*models.Voucher, error) {
	var v models.Voucher
	err := one(ctx, d.Bun.NewSelect().Model(&v).Where("v.id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// GetByCode returns (nil, nil) when absent. code must already be normalized.
func (d *DB) GetByCode(ctx context.Context, code, eventID string) (*models.Voucher, error) {
	var v models.Voucher
	err := one(ctx, d.Bun.NewSelect().Model(&v).Where("v.code = ?", code).Where("v.event_id = ?", eventID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (d *DB) ListByEvent(ctx context.Context, eventID string) ([]models.Voucher, error) {
	vouchers := []models.Voucher{}
	err := d.Bun.NewSelect().
		Model(&vouchers).
		Where("v.event_id = ?", eventID).
		OrderExpr("v.created_at DESC").
		Scan(ctx)
	return vouchers, err
}

func (d *DB) Insert(ctx context.Context, v *models.Voucher) error {
	_, err := d.Bun.NewInsert().Model(v).Exec(ctx)
	return err
}

func (d *DB) SetActive(ctx context.Context, id string, active bool) error {
	_, err := d.Bun.NewUpdate().
		Model((*models.Voucher)(nil)).
		Set("is_active = ?", active).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

func (d *DB) Delete(ctx context.Context, id string) error {
	_, err := d.Bun.NewDelete().
		Model((*models.Voucher)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	return err
}

// GetEvent returns (nil, nil) when absent
func (d *DB) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	var e models.Event
	err := one(ctx, d.Bun.NewSelect().Model(&e).Where("e.id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/uptrace/bun"

	"ms-transactions/internal/models"
)

// ErrDuplicateAttendee is returned when the customer already holds a seat of the event.
var ErrDuplicateAttendee = errors.New("attendee already registered for event")

type DB struct {
	Bun *bun.DB
}

// RunInTx runs fn in one database transaction. fn must use the tx it is given.
func (d *DB) RunInTx(ctx context.Context, fn func(ctx context.Context, tx bun.Tx) error) error {
	return d.Bun.RunInTx(ctx, &sql.TxOptions{}, fn)
}

// ---------------- TRANSACTIONS ----------------

func (d *DB) Insert(ctx context.Context, idb bun.IDB, t *models.Transaction) error {
	_, err := idb.NewInsert().Model(t).Exec(ctx)
	return err
}

// Get returns (nil, nil) when absent. The event is loaded alongside.
func (d *DB) Get(ctx context.Context, idb bun.IDB, id string) (*models.Transaction, error) {
	var t models.Transaction
	err := idb.NewSelect().
		Model(&t).
		Relation("Event").
		Where("t.id = ?", id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// HasActiveOrder → whether the customer holds a seat for the event already
func (d *DB) HasActiveOrder(ctx context.Context, idb bun.IDB, customerID, eventID string) (bool, error) {
	return idb.NewSelect().
		Model((*models.Transaction)(nil)).
		Where("customer_id = ?", customerID).
		Where("event_id = ?", eventID).
		Where("status IN (?)", bun.In([]models.TransactionStatus{models.StatusDone, models.StatusWaitingForAdmin})).
		Exists(ctx)
}

// Advance writes the given columns plus status and updated_at, but only while the
// stored status is still from. It reports whether the row was updated.
func (d *DB) Advance(ctx context.Context, idb bun.IDB, t *models.Transaction, from models.TransactionStatus, columns ...string) (bool, error) {
	columns = append(columns, "status", "updated_at")
	res, err := idb.NewUpdate().
		Model(t).
		Column(columns...).
		WherePK().
		Where("status = ?", from).
		Exec(ctx)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

// MarkAdminFeePaid flips the fee flag of a DONE transaction once.
func (d *DB) MarkAdminFeePaid(ctx context.Context, id string, at time.Time) (bool, error) {
	res, err := d.Bun.NewUpdate().
		Model((*models.Transaction)(nil)).
		Set("is_admin_fee_paid = ?", true).
		Set("admin_fee_paid_at = ?", at).
		Set("updated_at = ?", at).
		Where("id = ?", id).
		Where("status = ?", models.StatusDone).
		Where("is_admin_fee_paid = ?", false).
		Exec(ctx)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

// MarkCouponWithdrawn flips the coupon payout flag of a DONE transaction once.
func (d *DB) MarkCouponWithdrawn(ctx context.Context, id string, at time.Time) (bool, error) {
	res, err := d.Bun.NewUpdate().
		Model((*models.Transaction)(nil)).
		Set("is_coupon_withdrawn = ?", true).
		Set("coupon_withdrawn_at = ?", at).
		Set("updated_at = ?", at).
		Where("id = ?", id).
		Where("status = ?", models.StatusDone).
		Where("coupon_discount > 0").
		Where("is_coupon_withdrawn = ?", false).
		Exec(ctx)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n == 1, err
}

func (d *DB) ListByCustomer(ctx context.Context, customerID string) ([]models.Transaction, error) {
	list := []models.Transaction{}
	err := d.Bun.NewSelect().
		Model(&list).
		Relation("Event").
		Where("t.customer_id = ?", customerID).
		OrderExpr("t.created_at DESC").
		Scan(ctx)
	return list, err
}

func (d *DB) ListByEvent(ctx context.Context, eventID string, statuses ...models.TransactionStatus) ([]models.Transaction, error) {
	list := []models.Transaction{}
	q := d.Bun.NewSelect().
		Model(&list).
		Where("t.event_id = ?", eventID).
		OrderExpr("t.created_at DESC")
	if len(statuses) > 0 {
		q = q.Where("t.status IN (?)", bun.In(statuses))
	}
	err := q.Scan(ctx)
	return list, err
}

// Scope narrows a query for expired transactions. Empty fields do not filter.
type Scope struct {
	TransactionID string
	EventID       string
	CustomerID    string
}

// FindExpired → waiting transactions whose deadline is before now
func (d *DB) FindExpired(ctx context.Context, idb bun.IDB, scope Scope, now time.Time) ([]models.Transaction, error) {
	var list []models.Transaction
	q := idb.NewSelect().
		Model(&list).
		Where("t.status IN (?)", bun.In([]models.TransactionStatus{models.StatusWaitingForPayment, models.StatusWaitingForAdmin})).
		Where("t.expired_at IS NOT NULL").
		Where("t.expired_at < ?", now)
	if scope.TransactionID != "" {
		q = q.Where("t.id = ?", scope.TransactionID)
	}
	if scope.EventID != "" {
		q = q.Where("t.event_id = ?", scope.EventID)
	}
	if scope.CustomerID != "" {
		q = q.Where("t.customer_id = ?", scope.CustomerID)
	}
	err := q.OrderExpr("t.expired_at ASC").Scan(ctx)
	return list, err
}

// ---------------- RELATED ROWS ----------------

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

// GetUser returns (nil, nil) when absent
func (d *DB) GetUser(ctx context.Context, idb bun.IDB, id string) (*models.User, error) {
	var u models.User
	err := idb.NewSelect().Model(&u).Where("u.id = ?", id).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// InsertAttendee → (user_id, event_id) is the primary key, a second row is ErrDuplicateAttendee
func (d *DB) InsertAttendee(ctx context.Context, idb bun.IDB, a *models.Attendee) error {
	_, err := idb.NewInsert().Model(a).Exec(ctx)
	if err != nil && isUniqueViolation(err) {
		return ErrDuplicateAttendee
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code.Name() == "unique_violation"
	}
	// sqlite drivers only expose the message
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func (d *DB) AcceptAttendee(ctx context.Context, idb bun.IDB, transactionID string) error {
	_, err := idb.NewUpdate().
		Model((*models.Attendee)(nil)).
		Set("is_accepted = ?", true).
		Where("transaction_id = ?", transactionID).
		Exec(ctx)
	return err
}

func (d *DB) DeleteAttendees(ctx context.Context, idb bun.IDB, transactionIDs ...string) error {
	if len(transactionIDs) == 0 {
		return nil
	}
	_, err := idb.NewDelete().
		Model((*models.Attendee)(nil)).
		Where("transaction_id IN (?)", bun.In(transactionIDs)).
		Exec(ctx)
	return err
}

package database

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"ms-transactions/internal/models"
)

// Models lists every table the service owns, in creation order.
func Models() []interface{} {
	return []interface{}{
		(*models.User)(nil),
		(*models.Event)(nil),
		(*models.Voucher)(nil),
		(*models.Coupon)(nil),
		(*models.Transaction)(nil),
		(*models.Attendee)(nil),
	}
}

// CreateSchema creates the tables straight from the models. Production databases
// are managed by the SQL migrations instead.
func CreateSchema(ctx context.Context, db *bun.DB) error {
	for _, model := range Models() {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("create table for %T: %w", model, err)
		}
	}
	return nil
}

package dbtest

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"ms-transactions/internal/models"
)

func SeedUser(t *testing.T, db bun.IDB, role models.Role, referralCode string) *models.User {
	t.Helper()
	id := uuid.New().String()
	user := &models.User{
		ID:           id,
		Name:         "user-" + id[:8],
		Email:        id[:8] + "@example.com",
		Role:         role,
		ReferralCode: referralCode,
	}
	if _, err := db.NewInsert().Model(user).Exec(context.Background()); err != nil {
		t.Fatalf("Failed to seed user: %v", err)
	}
	return user
}

func SeedEvent(t *testing.T, db bun.IDB, organizerID string, price int64, capacity int) *models.Event {
	t.Helper()
	now := time.Now()
	event := &models.Event{
		ID:            uuid.New().String(),
		OrganizerID:   organizerID,
		Name:          "Jazz Night",
		Price:         price,
		CapacitySeat:  capacity,
		AvailableSeat: capacity,
		StartDate:     now.Add(30 * 24 * time.Hour),
		EndDate:       now.Add(31 * 24 * time.Hour),
		Category:      []string{"MUSIC"},
		Location:      "JAKARTA",
	}
	if _, err := db.NewInsert().Model(event).Exec(context.Background()); err != nil {
		t.Fatalf("Failed to seed event: %v", err)
	}
	return event
}

func SeedVoucher(t *testing.T, db bun.IDB, eventID, code string, discount int64, active bool, from, until time.Time) *models.Voucher {
	t.Helper()
	voucher := &models.Voucher{
		ID:         uuid.New().String(),
		EventID:    eventID,
		Code:       code,
		Discount:   discount,
		ValidFrom:  from,
		ValidUntil: until,
		IsActive:   active,
	}
	if _, err := db.NewInsert().Model(voucher).Exec(context.Background()); err != nil {
		t.Fatalf("Failed to seed voucher: %v", err)
	}
	return voucher
}

// SeedCoupon creates a coupon spendable by ownerID.
func SeedCoupon(t *testing.T, db bun.IDB, ownerID string, discount int64, expiredAt time.Time) *models.Coupon {
	t.Helper()
	coupon := &models.Coupon{
		ID:             uuid.New().String(),
		ClaimerID:      ownerID,
		ReferrerID:     uuid.New().String(),
		Discount:       discount,
		UserCouponRole: models.CouponRoleClaimer,
		ExpiredAt:      expiredAt,
	}
	if _, err := db.NewInsert().Model(coupon).Exec(context.Background()); err != nil {
		t.Fatalf("Failed to seed coupon: %v", err)
	}
	return coupon
}

func GetEvent(t *testing.T, db bun.IDB, id string) *models.Event {
	t.Helper()
	event := new(models.Event)
	if err := db.NewSelect().Model(event).Where("id = ?", id).Scan(context.Background()); err != nil {
		t.Fatalf("Failed to load event: %v", err)
	}
	return event
}

func GetCoupon(t *testing.T, db bun.IDB, id string) *models.Coupon {
	t.Helper()
	coupon := new(models.Coupon)
	if err := db.NewSelect().Model(coupon).Where("id = ?", id).Scan(context.Background()); err != nil {
		t.Fatalf("Failed to load coupon: %v", err)
	}
	return coupon
}

func CountAttendees(t *testing.T, db bun.IDB, eventID string) int {
	t.Helper()
	n, err := db.NewSelect().Model((*models.Attendee)(nil)).Where("event_id = ?", eventID).Count(context.Background())
	if err != nil {
		t.Fatalf("Failed to count attendees: %v", err)
	}
	return n
}

// SeedTransaction stores a transaction for event in status with the given deadline.
// Seat-holding statuses also take a seat and get an attendee row, as the service would.
func SeedTransaction(t *testing.T, db bun.IDB, event *models.Event, customerID string, status models.TransactionStatus, expiredAt time.Time) *models.Transaction {
	t.Helper()
	ctx := context.Background()
	tx := &models.Transaction{
		ID:                 uuid.New().String(),
		EventID:            event.ID,
		CustomerID:         customerID,
		OrganizerID:        event.OrganizerID,
		CustomerName:       "customer-" + customerID[:min(8, len(customerID))],
		AmountPaid:         event.Price,
		Status:             status,
		AdminFeePercentage: 10,
		AdminFeeAmount:     event.Price / 10,
		ExpiredAt:          &expiredAt,
	}
	if _, err := db.NewInsert().Model(tx).Exec(ctx); err != nil {
		t.Fatalf("Failed to seed transaction: %v", err)
	}

	if status.HoldsSeat() {
		res, err := db.NewUpdate().
			Model((*models.Event)(nil)).
			Set("available_seat = available_seat - 1").
			Where("id = ?", event.ID).
			Where("available_seat > 0").
			Exec(ctx)
		if err != nil {
			t.Fatalf("Failed to take seat: %v", err)
		}
		if n, _ := res.RowsAffected(); n != 1 {
			t.Fatalf("No seat left to seed transaction on event %s", event.ID)
		}
		attendee := &models.Attendee{
			UserID:        customerID,
			EventID:       event.ID,
			TransactionID: tx.ID,
			IsAccepted:    status == models.StatusDone,
		}
		if _, err := db.NewInsert().Model(attendee).Exec(ctx); err != nil {
			t.Fatalf("Failed to seed attendee: %v", err)
		}
	}
	return tx
}

// AttachCoupon marks coupon used by transaction.
func AttachCoupon(t *testing.T, db bun.IDB, couponID, transactionID string) {
	t.Helper()
	_, err := db.NewUpdate().
		Model((*models.Coupon)(nil)).
		Set("is_used = ?", true).
		Set("used_by_transaction_id = ?", transactionID).
		Where("id = ?", couponID).
		Exec(context.Background())
	if err != nil {
		t.Fatalf("Failed to attach coupon: %v", err)
	}
}

func GetTransaction(t *testing.T, db bun.IDB, id string) *models.Transaction {
	t.Helper()
	tx := new(models.Transaction)
	if err := db.NewSelect().Model(tx).Where("id = ?", id).Scan(context.Background()); err != nil {
		t.Fatalf("Failed to load transaction: %v", err)
	}
	return tx
}

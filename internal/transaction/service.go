package transaction

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"ms-transactions/internal/apperr"
	"ms-transactions/internal/config"
	coupondb "ms-transactions/internal/coupons/db"
	"ms-transactions/internal/discount"
	"ms-transactions/internal/inventory"
	"ms-transactions/internal/lock"
	"ms-transactions/internal/logger"
	"ms-transactions/internal/metrics"
	"ms-transactions/internal/models"
	"ms-transactions/internal/notification"
	"ms-transactions/internal/sweeper"
	"ms-transactions/internal/transaction/db"
	"ms-transactions/internal/utils"
)

var (
	ErrTransactionNotFound   = apperr.NotFound("Transaction not found")
	ErrAlreadyProcessed      = apperr.NotFound("Transaction not found or already processed")
	ErrAlreadyOrdered        = apperr.Conflict("Event already ordered, cannot order twice")
	ErrPurchaseInProgress    = apperr.Conflict("A purchase for this event is already in progress")
	ErrUserNotFound          = apperr.NotFound("User not found")
	ErrNotOwner              = apperr.Forbidden("You are not allowed to access this transaction")
	ErrNotEventOrganizer     = apperr.Forbidden("You are not the organizer of this event")
	ErrCustomersOnly         = apperr.Forbidden("Only customers can purchase tickets")
	ErrAdminOnly             = apperr.Forbidden("Only admins can perform this action")
	ErrPassUnavailable       = apperr.BadRequest("Pass is only available for accepted transactions")
	ErrAdminFeeNotPayable    = apperr.BadRequest("Admin fee already paid or transaction not completed")
	ErrCouponNotWithdrawable = apperr.BadRequest("Coupon discount already withdrawn or not applicable")
	ErrCouponsExpired        = apperr.BadRequest("Some coupons have expired")
)

// PurchaseLock de-duplicates concurrent purchase attempts of one customer.
type PurchaseLock interface {
	Acquire(ctx context.Context, customerID, eventID, token string) (func(), error)
}

// Publisher receives status events once a transition has committed.
type Publisher interface {
	Publish(ctx context.Context, evt models.TransactionStatusEvent)
}

// Settings are the business deadlines and the fee rate.
type Settings struct {
	PaymentWindow      time.Duration
	ConfirmationWindow time.Duration
	AdminFeePercentage float64
}

func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		PaymentWindow:      cfg.Expiration.PaymentWindow,
		ConfirmationWindow: cfg.Expiration.ConfirmationWindow,
		AdminFeePercentage: cfg.Fees.AdminFeePercentage,
	}
}

type TransactionService struct {
	DB        *db.DB
	Coupons   *coupondb.DB
	Ledger    *inventory.Ledger
	Resolver  *discount.Resolver
	Sweeper   *sweeper.Sweeper
	Lock      PurchaseLock
	Publisher Publisher
	Logger    *logger.Logger
	Settings  Settings
	Now       func() time.Time
}

func NewTransactionService(
	store *db.DB,
	coupons *coupondb.DB,
	ledger *inventory.Ledger,
	resolver *discount.Resolver,
	sw *sweeper.Sweeper,
	purchaseLock PurchaseLock,
	publisher Publisher,
	settings Settings,
	log *logger.Logger,
) *TransactionService {
	if publisher == nil {
		publisher = notification.Discard{}
	}
	return &TransactionService{
		DB:        store,
		Coupons:   coupons,
		Ledger:    ledger,
		Resolver:  resolver,
		Sweeper:   sw,
		Lock:      purchaseLock,
		Publisher: publisher,
		Logger:    log,
		Settings:  settings,
		Now:       time.Now,
	}
}

// ---------------- CREATE ----------------

// Create starts a purchase. A transaction with nothing left to pay settles at once:
// it takes a seat and an attendee row and waits for the organizer. Otherwise it
// waits for a payment proof and holds no seat yet.
func (s *TransactionService) Create(ctx context.Context, actor models.Actor, req models.CreateTransactionRequest) (*models.TransactionView, error) {
	if !actor.Is(models.RoleCustomer) {
		return nil, ErrCustomersOnly
	}

	if s.Lock != nil {
		release, err := s.Lock.Acquire(ctx, actor.ID, req.EventID, uuid.New().String())
		switch {
		case errors.Is(err, lock.ErrLocked):
			return nil, ErrPurchaseInProgress
		case err != nil:
			s.Logger.Warn("TRANSACTION", fmt.Sprintf("Purchase lock unavailable, continuing without it: %v", err))
		default:
			defer release()
		}
	}

	if _, err := s.Sweeper.Sweep(ctx, sweeper.Scope{EventID: req.EventID, CustomerID: actor.ID}); err != nil {
		return nil, err
	}

	t, coupons, err := s.create(ctx, actor, req)
	if errors.Is(err, inventory.ErrNoAvailableSeats) {
		// Overdue transactions of other customers may still hold seats.
		swept, sweepErr := s.Sweeper.Sweep(ctx, sweeper.Scope{EventID: req.EventID})
		if sweepErr != nil {
			return nil, sweepErr
		}
		if swept.FreedSeats > 0 {
			t, coupons, err = s.create(ctx, actor, req)
		}
	}
	if err != nil {
		s.rejected("create", err)
		return nil, err
	}

	metrics.TransactionCreated(string(t.Status))
	s.Logger.LogTransaction("CREATE", t.ID, fmt.Sprintf("event=%s customer=%s status=%s amount=%d", t.EventID, t.CustomerID, t.Status, t.AmountPaid))
	s.publish(ctx, notification.TypeCreated, t, "", nil)

	return s.view(t, coupons), nil
}

func (s *TransactionService) create(ctx context.Context, actor models.Actor, req models.CreateTransactionRequest) (*models.Transaction, []models.Coupon, error) {
	now := s.Now()

	event, err := s.DB.GetEvent(ctx, s.DB.Bun, req.EventID)
	if err != nil {
		return nil, nil, fmt.Errorf("load event %s: %w", req.EventID, err)
	}
	if event == nil {
		return nil, nil, inventory.ErrEventNotFound
	}

	customer, err := s.DB.GetUser(ctx, s.DB.Bun, actor.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("load customer %s: %w", actor.ID, err)
	}
	if customer == nil {
		return nil, nil, ErrUserNotFound
	}

	resolved, err := s.Resolver.Resolve(ctx, s.DB.Bun, discount.Request{
		EventID:    event.ID,
		Price:      event.Price,
		CustomerID: actor.ID,
		VoucherID:  req.VoucherID,
		CouponIDs:  req.CouponIDs,
		Now:        now,
	})
	if err != nil {
		return nil, nil, err
	}

	settled := resolved.AmountPaid == 0
	status := models.StatusWaitingForPayment
	expiresAt := now.Add(s.Settings.PaymentWindow)
	if settled {
		status = models.StatusWaitingForAdmin
		expiresAt = now.Add(s.Settings.ConfirmationWindow)
	}

	t := &models.Transaction{
		ID:                 uuid.New().String(),
		EventID:            event.ID,
		CustomerID:         actor.ID,
		OrganizerID:        event.OrganizerID,
		CustomerName:       customer.Name,
		AmountPaid:         resolved.AmountPaid,
		VoucherID:          resolved.VoucherID,
		VoucherDiscount:    resolved.VoucherDiscount,
		VoucherCode:        resolved.VoucherCode,
		CouponDiscount:     resolved.CouponDiscount,
		Status:             status,
		AdminFeeAmount:     discount.AdminFee(event.Price, resolved.VoucherDiscount, s.Settings.AdminFeePercentage),
		AdminFeePercentage: s.Settings.AdminFeePercentage,
		ExpiredAt:          &expiresAt,
		CreatedAt:          now,
		UpdatedAt:          now,
		Event:              event,
	}

	var coupons []models.Coupon
	err = s.DB.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		ordered, err := s.DB.HasActiveOrder(ctx, tx, actor.ID, event.ID)
		if err != nil {
			return fmt.Errorf("check existing orders: %w", err)
		}
		if ordered {
			return ErrAlreadyOrdered
		}

		if !settled {
			// Nothing is reserved before payment, this only refuses sold-out events early.
			seats, err := s.Ledger.Available(ctx, tx, event.ID)
			if err != nil {
				return err
			}
			if seats.Available <= 0 {
				return inventory.ErrNoAvailableSeats
			}
		}

		if err := s.DB.Insert(ctx, tx, t); err != nil {
			return fmt.Errorf("insert transaction: %w", err)
		}

		if len(resolved.CouponIDs) > 0 {
			n, err := s.Coupons.Attach(ctx, tx, t.ID, resolved.CouponIDs)
			if err != nil {
				return fmt.Errorf("attach coupons: %w", err)
			}
			if n != int64(len(resolved.CouponIDs)) {
				return discount.ErrInvalidCoupons
			}
			if coupons, err = s.Coupons.ListByTransaction(ctx, tx, t.ID); err != nil {
				return fmt.Errorf("load attached coupons: %w", err)
			}
		}

		if settled {
			if err := s.Ledger.Decrement(ctx, tx, event.ID); err != nil {
				return err
			}
			if err := s.DB.InsertAttendee(ctx, tx, &models.Attendee{
				UserID:        actor.ID,
				EventID:       event.ID,
				TransactionID: t.ID,
				CreatedAt:     now,
			}); err != nil {
				// a concurrent create of the same customer won
				if errors.Is(err, db.ErrDuplicateAttendee) {
					return ErrAlreadyOrdered
				}
				return fmt.Errorf("insert attendee: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return t, coupons, nil
}

// ---------------- CUSTOMER TRANSITIONS ----------------

// SubmitPayment attaches the payment proof, takes a seat and hands the
// transaction to the organizer.
func (s *TransactionService) SubmitPayment(ctx context.Context, actor models.Actor, id, proofURL string) (*models.TransactionView, error) {
	proofURL = strings.TrimSpace(proofURL)
	if proofURL == "" {
		return nil, apperr.Validation("Invalid input", map[string]string{"payment_proof_url": "is required"})
	}

	if _, err := s.Sweeper.Sweep(ctx, sweeper.Scope{TransactionID: id}); err != nil {
		return nil, err
	}

	now := s.Now()
	var t *models.Transaction
	err := s.DB.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		var err error
		if t, err = s.load(ctx, tx, id); err != nil {
			return err
		}
		if t.CustomerID != actor.ID {
			return ErrNotOwner
		}
		if t.Status != models.StatusWaitingForPayment || overdue(t, now) {
			return ErrAlreadyProcessed
		}

		ordered, err := s.DB.HasActiveOrder(ctx, tx, actor.ID, t.EventID)
		if err != nil {
			return fmt.Errorf("check existing orders: %w", err)
		}
		if ordered {
			return ErrAlreadyOrdered
		}

		coupons, err := s.Coupons.ListByTransaction(ctx, tx, t.ID)
		if err != nil {
			return fmt.Errorf("load attached coupons: %w", err)
		}
		for _, c := range coupons {
			if !c.ExpiredAt.After(now) {
				return ErrCouponsExpired
			}
		}

		if err := s.Ledger.Decrement(ctx, tx, t.EventID); err != nil {
			return err
		}
		if err := s.DB.InsertAttendee(ctx, tx, &models.Attendee{
			UserID:        actor.ID,
			EventID:       t.EventID,
			TransactionID: t.ID,
			CreatedAt:     now,
		}); err != nil {
			if errors.Is(err, db.ErrDuplicateAttendee) {
				return ErrAlreadyOrdered
			}
			return fmt.Errorf("insert attendee: %w", err)
		}

		deadline := now.Add(s.Settings.ConfirmationWindow)
		t.Status = models.StatusWaitingForAdmin
		t.PaymentProofURL = &proofURL
		t.ExpiredAt = &deadline
		t.UpdatedAt = now
		return s.advance(ctx, tx, t, models.StatusWaitingForPayment, "payment_proof_url", "expired_at")
	})
	if err != nil {
		s.rejected("submit_payment", err)
		return nil, err
	}

	metrics.TransactionTransition("submit_payment", string(t.Status))
	s.Logger.LogTransaction("PAYMENT", t.ID, "payment proof submitted")
	s.publish(ctx, notification.TypePaymentSubmitted, t, "", nil)
	return s.detail(ctx, t)
}

// Cancel abandons a transaction that is still waiting for payment.
func (s *TransactionService) Cancel(ctx context.Context, actor models.Actor, id string) (*models.TransactionView, error) {
	if _, err := s.Sweeper.Sweep(ctx, sweeper.Scope{TransactionID: id}); err != nil {
		return nil, err
	}

	now := s.Now()
	var t *models.Transaction
	err := s.DB.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		var err error
		if t, err = s.load(ctx, tx, id); err != nil {
			return err
		}
		if t.CustomerID != actor.ID {
			return ErrNotOwner
		}
		if t.Status != models.StatusWaitingForPayment {
			return ErrAlreadyProcessed
		}

		from := t.Status
		t.Status = models.StatusCancelled
		t.UpdatedAt = now
		if err := s.advance(ctx, tx, t, from); err != nil {
			return err
		}
		return s.release(ctx, tx, t, from)
	})
	if err != nil {
		s.rejected("cancel", err)
		return nil, err
	}

	metrics.TransactionTransition("cancel", string(t.Status))
	s.Logger.LogTransaction("CANCEL", t.ID, "cancelled by customer")
	s.publish(ctx, notification.TypeCancelled, t, "cancelled by customer", nil)
	return s.detail(ctx, t)
}

// ---------------- ORGANIZER TRANSITIONS ----------------

// Accept confirms a paid transaction before its confirmation deadline.
func (s *TransactionService) Accept(ctx context.Context, actor models.Actor, id string) (*models.TransactionView, error) {
	if _, err := s.Sweeper.Sweep(ctx, sweeper.Scope{TransactionID: id}); err != nil {
		return nil, err
	}

	now := s.Now()
	var t *models.Transaction
	err := s.DB.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		var err error
		if t, err = s.load(ctx, tx, id); err != nil {
			return err
		}
		if err := canDecide(actor, t); err != nil {
			return err
		}
		if t.Status != models.StatusWaitingForAdmin || overdue(t, now) {
			return ErrAlreadyProcessed
		}

		t.Status = models.StatusDone
		t.CompletedAt = &now
		t.UpdatedAt = now
		if err := s.advance(ctx, tx, t, models.StatusWaitingForAdmin, "completed_at"); err != nil {
			return err
		}
		if err := s.DB.AcceptAttendee(ctx, tx, t.ID); err != nil {
			return fmt.Errorf("accept attendee: %w", err)
		}
		return nil
	})
	if err != nil {
		s.rejected("accept", err)
		return nil, err
	}

	metrics.TransactionTransition("accept", string(t.Status))
	s.Logger.LogTransaction("ACCEPT", t.ID, fmt.Sprintf("accepted by %s", actor.ID))
	s.publish(ctx, notification.TypeAccepted, t, "", s.customer(ctx, t))
	return s.detail(ctx, t)
}

// Reject refuses a paid transaction and gives back its seat and coupons.
func (s *TransactionService) Reject(ctx context.Context, actor models.Actor, id, reason string) (*models.TransactionView, error) {
	if _, err := s.Sweeper.Sweep(ctx, sweeper.Scope{TransactionID: id}); err != nil {
		return nil, err
	}

	now := s.Now()
	var t *models.Transaction
	err := s.DB.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		var err error
		if t, err = s.load(ctx, tx, id); err != nil {
			return err
		}
		if err := canDecide(actor, t); err != nil {
			return err
		}
		if t.Status != models.StatusWaitingForAdmin {
			return ErrAlreadyProcessed
		}

		from := t.Status
		t.Status = models.StatusRejected
		t.ExpiredAt = nil
		t.UpdatedAt = now
		if err := s.advance(ctx, tx, t, from, "expired_at"); err != nil {
			return err
		}
		return s.release(ctx, tx, t, from)
	})
	if err != nil {
		s.rejected("reject", err)
		return nil, err
	}

	metrics.TransactionTransition("reject", string(t.Status))
	s.Logger.LogTransaction("REJECT", t.ID, fmt.Sprintf("rejected by %s", actor.ID))
	s.publish(ctx, notification.TypeRejected, t, strings.TrimSpace(reason), s.customer(ctx, t))
	return s.detail(ctx, t)
}

// ---------------- ADMIN ----------------

func (s *TransactionService) MarkAdminFeePaid(ctx context.Context, actor models.Actor, id string) (*models.TransactionView, error) {
	if !actor.Is(models.RoleAdmin) {
		return nil, ErrAdminOnly
	}
	ok, err := s.DB.MarkAdminFeePaid(ctx, id, s.Now())
	if err != nil {
		return nil, fmt.Errorf("mark admin fee of %s: %w", id, err)
	}
	return s.afterFlag(ctx, id, ok, ErrAdminFeeNotPayable, "ADMIN_FEE")
}

func (s *TransactionService) WithdrawCoupon(ctx context.Context, actor models.Actor, id string) (*models.TransactionView, error) {
	if !actor.Is(models.RoleAdmin) {
		return nil, ErrAdminOnly
	}
	ok, err := s.DB.MarkCouponWithdrawn(ctx, id, s.Now())
	if err != nil {
		return nil, fmt.Errorf("withdraw coupon of %s: %w", id, err)
	}
	return s.afterFlag(ctx, id, ok, ErrCouponNotWithdrawable, "COUPON_WITHDRAW")
}

func (s *TransactionService) afterFlag(ctx context.Context, id string, ok bool, refused error, action string) (*models.TransactionView, error) {
	t, err := s.load(ctx, s.DB.Bun, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, refused
	}
	s.Logger.LogTransaction(action, id, "flag set")
	return s.detail(ctx, t)
}

// ---------------- READS ----------------

// Get returns one transaction to its customer, the event's organizer or an admin.
func (s *TransactionService) Get(ctx context.Context, actor models.Actor, id string) (*models.TransactionView, error) {
	if _, err := s.Sweeper.Sweep(ctx, sweeper.Scope{TransactionID: id}); err != nil {
		return nil, err
	}

	t, err := s.load(ctx, s.DB.Bun, id)
	if err != nil {
		return nil, err
	}
	if err := canView(actor, t); err != nil {
		return nil, err
	}
	return s.detail(ctx, t)
}

func (s *TransactionService) ListForCustomer(ctx context.Context, actor models.Actor) ([]models.TransactionView, error) {
	if _, err := s.Sweeper.Sweep(ctx, sweeper.Scope{CustomerID: actor.ID}); err != nil {
		return nil, err
	}

	list, err := s.DB.ListByCustomer(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("list transactions of %s: %w", actor.ID, err)
	}
	return s.views(list), nil
}

// ListForEvent returns the paid and completed transactions of an owned event.
func (s *TransactionService) ListForEvent(ctx context.Context, actor models.Actor, eventID string) ([]models.TransactionView, error) {
	if err := s.CheckEventAccess(ctx, actor, eventID); err != nil {
		return nil, err
	}
	if _, err := s.Sweeper.Sweep(ctx, sweeper.Scope{EventID: eventID}); err != nil {
		return nil, err
	}

	list, err := s.DB.ListByEvent(ctx, eventID, models.StatusWaitingForAdmin, models.StatusDone)
	if err != nil {
		return nil, fmt.Errorf("list transactions of event %s: %w", eventID, err)
	}
	return s.views(list), nil
}

// CheckEventAccess allows the event's organizer and admins.
func (s *TransactionService) CheckEventAccess(ctx context.Context, actor models.Actor, eventID string) error {
	event, err := s.DB.GetEvent(ctx, s.DB.Bun, eventID)
	if err != nil {
		return fmt.Errorf("load event %s: %w", eventID, err)
	}
	if event == nil {
		return inventory.ErrEventNotFound
	}
	if !actor.Is(models.RoleAdmin) && event.OrganizerID != actor.ID {
		return ErrNotEventOrganizer
	}
	return nil
}

// Completed returns a DONE transaction of the calling customer, for pass rendering.
func (s *TransactionService) Completed(ctx context.Context, actor models.Actor, id string) (*models.Transaction, error) {
	t, err := s.load(ctx, s.DB.Bun, id)
	if err != nil {
		return nil, err
	}
	if t.CustomerID != actor.ID {
		return nil, ErrNotOwner
	}
	if t.Status != models.StatusDone {
		return nil, ErrPassUnavailable
	}
	return t, nil
}

// ---------------- HELPERS ----------------

func (s *TransactionService) load(ctx context.Context, idb bun.IDB, id string) (*models.Transaction, error) {
	t, err := s.DB.Get(ctx, idb, id)
	if err != nil {
		return nil, fmt.Errorf("load transaction %s: %w", id, err)
	}
	if t == nil {
		return nil, ErrTransactionNotFound
	}
	return t, nil
}

func (s *TransactionService) advance(ctx context.Context, tx bun.IDB, t *models.Transaction, from models.TransactionStatus, columns ...string) error {
	ok, err := s.DB.Advance(ctx, tx, t, from, columns...)
	if err != nil {
		return fmt.Errorf("update transaction %s: %w", t.ID, err)
	}
	if !ok {
		return ErrAlreadyProcessed
	}
	return nil
}

// release gives back what a transaction leaving state from was holding.
func (s *TransactionService) release(ctx context.Context, tx bun.IDB, t *models.Transaction, from models.TransactionStatus) error {
	if from.HoldsSeat() {
		if err := s.Ledger.Increment(ctx, tx, t.EventID, 1); err != nil {
			return err
		}
	}
	if _, err := s.Coupons.Release(ctx, tx, t.ID); err != nil {
		return fmt.Errorf("release coupons: %w", err)
	}
	if err := s.DB.DeleteAttendees(ctx, tx, t.ID); err != nil {
		return fmt.Errorf("delete attendee: %w", err)
	}
	return nil
}

func (s *TransactionService) detail(ctx context.Context, t *models.Transaction) (*models.TransactionView, error) {
	coupons, err := s.Coupons.ListByTransaction(ctx, s.DB.Bun, t.ID)
	if err != nil {
		return nil, fmt.Errorf("load coupons of %s: %w", t.ID, err)
	}
	return s.view(t, coupons), nil
}

func (s *TransactionService) view(t *models.Transaction, coupons []models.Coupon) *models.TransactionView {
	v := &models.TransactionView{
		Transaction: t,
		Coupons:     coupons,
		IsFree:      t.AmountPaid == 0,
	}
	if t.Status == models.StatusWaitingForPayment && t.ExpiredAt != nil {
		if left, ok := utils.SecondsUntil(*t.ExpiredAt, s.Now()); ok {
			v.SecondsLeft = &left
		}
	}
	return v
}

func (s *TransactionService) views(list []models.Transaction) []models.TransactionView {
	out := make([]models.TransactionView, 0, len(list))
	for i := range list {
		out = append(out, *s.view(&list[i], nil))
	}
	return out
}

// customer loads the buyer for notifications. A failure only costs the email.
func (s *TransactionService) customer(ctx context.Context, t *models.Transaction) *models.User {
	u, err := s.DB.GetUser(ctx, s.DB.Bun, t.CustomerID)
	if err != nil {
		s.Logger.Warn("TRANSACTION", fmt.Sprintf("Failed to load customer %s for notification: %v", t.CustomerID, err))
		return nil
	}
	return u
}

func (s *TransactionService) publish(ctx context.Context, eventType string, t *models.Transaction, reason string, customer *models.User) {
	evt := models.NewTransactionStatusEvent(eventType, t, reason, s.Now())
	if customer != nil {
		evt.CustomerEmail = customer.Email
	}
	s.Publisher.Publish(ctx, evt)
}

func (s *TransactionService) rejected(action string, err error) {
	if apperr.IsBusiness(err) {
		metrics.TransactionRejected(action, apperr.KindOf(err).String())
	}
}

func overdue(t *models.Transaction, now time.Time) bool {
	return t.ExpiredAt != nil && now.After(*t.ExpiredAt)
}

// canDecide answers a foreign organizer like a missing transaction so that
// other organizers cannot tell which transactions exist.
func canDecide(actor models.Actor, t *models.Transaction) error {
	if actor.Is(models.RoleAdmin) {
		return nil
	}
	if actor.Is(models.RoleOrganizer) && t.OrganizerID == actor.ID {
		return nil
	}
	return ErrAlreadyProcessed
}

func canView(actor models.Actor, t *models.Transaction) error {
	switch {
	case actor.Is(models.RoleAdmin):
		return nil
	case t.CustomerID == actor.ID:
		return nil
	case actor.Is(models.RoleOrganizer) && t.OrganizerID == actor.ID:
		return nil
	}
	return ErrNotOwner
}

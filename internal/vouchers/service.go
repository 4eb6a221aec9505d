package vouchers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"ms-transactions/internal/apperr"
	"ms-transactions/internal/discount"
	"ms-transactions/internal/logger"
	"ms-transactions/internal/models"
	"ms-transactions/internal/vouchers/db"
)

var (
	ErrEventNotFound     = apperr.NotFound("Event not found")
	ErrNotEventOrganizer = apperr.Forbidden("You are not the organizer of this event")
	ErrDuplicateCode     = apperr.Conflict("Voucher code already exists for this event")
	ErrDiscountTooLarge  = apperr.BadRequest("Discount cannot exceed event price")
)

type VoucherService struct {
	DB     *db.DB
	Logger *logger.Logger
	Now    func() time.Time
}

func NewVoucherService(store *db.DB, log *logger.Logger) *VoucherService {
	return &VoucherService{DB: store, Logger: log, Now: time.Now}
}

// NormalizeCode is how codes are stored and looked up.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ownedEvent loads the event and checks that actor may manage its vouchers.
func (s *VoucherService) ownedEvent(ctx context.Context, actor models.Actor, eventID string) (*models.Event, error) {
	event, err := s.DB.GetEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("load event %s: %w", eventID, err)
	}
	if event == nil {
		return nil, ErrEventNotFound
	}
	if !actor.Is(models.RoleAdmin) && event.OrganizerID != actor.ID {
		return nil, ErrNotEventOrganizer
	}
	return event, nil
}

func (s *VoucherService) Create(ctx context.Context, actor models.Actor, req models.CreateVoucherRequest) (*models.Voucher, error) {
	code := NormalizeCode(req.Code)
	if len(code) < 3 {
		return nil, apperr.Validation("Invalid input", map[string]string{"code": "must be at least 3"})
	}

	event, err := s.ownedEvent(ctx, actor, req.EventID)
	if err != nil {
		return nil, err
	}
	if req.Discount > event.Price {
		return nil, ErrDiscountTooLarge
	}

	existing, err := s.DB.GetByCode(ctx, code, event.ID)
	if err != nil {
		return nil, fmt.Errorf("check voucher code: %w", err)
	}
	if existing != nil {
		return nil, ErrDuplicateCode
	}

	voucher := &models.Voucher{
		ID:         uuid.New().String(),
		EventID:    event.ID,
		Code:       code,
		Discount:   req.Discount,
		ValidFrom:  req.ValidFrom,
		ValidUntil: req.ValidUntil,
		IsActive:   req.IsActive,
	}
	if err := s.DB.Insert(ctx, voucher); err != nil {
		return nil, fmt.Errorf("insert voucher: %w", err)
	}

	s.Logger.Info("VOUCHER", fmt.Sprintf("Voucher %s created for event %s", voucher.Code, event.ID))
	return voucher, nil
}

// Validate checks a code a customer typed in before purchase.
func (s *VoucherService) Validate(ctx context.Context, code, eventID string) (*models.Voucher, error) {
	voucher, err := s.DB.GetByCode(ctx, NormalizeCode(code), eventID)
	if err != nil {
		return nil, fmt.Errorf("load voucher: %w", err)
	}
	if voucher == nil {
		return nil, discount.ErrVoucherNotFound
	}

	now := s.Now()
	switch {
	case !voucher.IsActive:
		return nil, discount.ErrVoucherInactive
	case now.After(voucher.ValidUntil):
		return nil, discount.ErrVoucherExpired
	case now.Before(voucher.ValidFrom):
		return nil, discount.ErrVoucherNotYetActive
	}
	return voucher, nil
}

func (s *VoucherService) ListByEvent(ctx context.Context, eventID string) ([]models.Voucher, error) {
	list, err := s.DB.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list vouchers of %s: %w", eventID, err)
	}
	return list, nil
}

func (s *VoucherService) owned(ctx context.Context, actor models.Actor, id string) (*models.Voucher, error) {
	voucher, err := s.DB.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load voucher %s: %w", id, err)
	}
	if voucher == nil {
		return nil, discount.ErrVoucherNotFound
	}
	if _, err := s.ownedEvent(ctx, actor, voucher.EventID); err != nil {
		return nil, err
	}
	return voucher, nil
}

func (s *VoucherService) SetActive(ctx context.Context, actor models.Actor, id string, active bool) (*models.Voucher, error) {
	voucher, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := s.DB.SetActive(ctx, id, active); err != nil {
		return nil, fmt.Errorf("toggle voucher %s: %w", id, err)
	}
	voucher.IsActive = active
	return voucher, nil
}

func (s *VoucherService) Delete(ctx context.Context, actor models.Actor, id string) error {
	if _, err := s.owned(ctx, actor, id); err != nil {
		return err
	}
	if err := s.DB.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete voucher %s: %w", id, err)
	}
	s.Logger.Info("VOUCHER", fmt.Sprintf("Voucher %s deleted by %s", id, actor.ID))
	return nil
}

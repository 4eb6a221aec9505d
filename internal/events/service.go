package events

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"ms-transactions/internal/apperr"
	"ms-transactions/internal/events/db"
	"ms-transactions/internal/inventory"
	"ms-transactions/internal/logger"
	"ms-transactions/internal/models"
)

var ErrNotEventOrganizer = apperr.Forbidden("You are not the organizer of this event")

type EventService struct {
	DB     *db.DB
	Ledger *inventory.Ledger
	Logger *logger.Logger
	Now    func() time.Time
}

func NewEventService(store *db.DB, ledger *inventory.Ledger, log *logger.Logger) *EventService {
	return &EventService{DB: store, Ledger: ledger, Logger: log, Now: time.Now}
}

func (s *EventService) Create(ctx context.Context, actor models.Actor, req models.CreateEventRequest) (*models.Event, error) {
	categories := make([]string, 0, len(req.Category))
	for _, c := range req.Category {
		categories = append(categories, strings.ToUpper(strings.TrimSpace(c)))
	}

	event := &models.Event{
		ID:            uuid.New().String(),
		OrganizerID:   actor.ID,
		Name:          strings.TrimSpace(req.Name),
		Description:   req.Description,
		Price:         req.Price,
		CapacitySeat:  req.CapacitySeat,
		AvailableSeat: req.CapacitySeat,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		Category:      categories,
		Location:      strings.ToUpper(strings.TrimSpace(req.Location)),
	}
	if err := s.DB.InsertEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("insert event: %w", err)
	}

	s.Logger.Info("EVENT", fmt.Sprintf("Event %s created by %s with %d seats", event.ID, actor.ID, event.CapacitySeat))
	return event, nil
}

func (s *EventService) Get(ctx context.Context, id string) (*models.Event, error) {
	event, err := s.DB.GetEvent(ctx, s.DB.Bun, id)
	if err != nil {
		return nil, fmt.Errorf("load event %s: %w", id, err)
	}
	if event == nil {
		return nil, inventory.ErrEventNotFound
	}
	return event, nil
}

// owned loads an event the actor may manage.
func (s *EventService) owned(ctx context.Context, idb bun.IDB, actor models.Actor, id string) (*models.Event, error) {
	event, err := s.DB.GetEvent(ctx, idb, id)
	if err != nil {
		return nil, fmt.Errorf("load event %s: %w", id, err)
	}
	if event == nil {
		return nil, inventory.ErrEventNotFound
	}
	if !actor.Is(models.RoleAdmin) && event.OrganizerID != actor.ID {
		return nil, ErrNotEventOrganizer
	}
	return event, nil
}

// Edit updates the details and resizes the seats, keeping every booked seat.
func (s *EventService) Edit(ctx context.Context, actor models.Actor, id string, req models.EditEventRequest) (*models.Event, error) {
	var updated *models.Event

	err := s.DB.Bun.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		event, err := s.owned(ctx, tx, actor, id)
		if err != nil {
			return err
		}

		event.Name = strings.TrimSpace(req.Name)
		if req.Description != nil {
			event.Description = *req.Description
		}
		event.UpdatedAt = s.Now()
		if err := s.DB.UpdateDetails(ctx, tx, event); err != nil {
			return fmt.Errorf("update event %s: %w", id, err)
		}

		seats, err := s.Ledger.Resize(ctx, tx, id, req.CapacitySeat)
		if err != nil {
			return err
		}
		event.CapacitySeat = seats.Capacity
		event.AvailableSeat = seats.Available
		updated = event
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Info("EVENT", fmt.Sprintf("Event %s edited, seats %d/%d", id, updated.AvailableSeat, updated.CapacitySeat))
	return updated, nil
}

// Delete removes an event. Transactions, vouchers and attendees of the event are
// removed by the store's cascades, whatever their state. Coupons held by those
// transactions are given back first so their owners can spend them again.
func (s *EventService) Delete(ctx context.Context, actor models.Actor, id string) error {
	var released int64
	err := s.DB.Bun.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := s.owned(ctx, tx, actor, id); err != nil {
			return err
		}

		n, err := s.DB.ReleaseCoupons(ctx, tx, id)
		if err != nil {
			return fmt.Errorf("release coupons of event %s: %w", id, err)
		}
		released = n

		if err := s.DB.DeleteEvent(ctx, tx, id); err != nil {
			return fmt.Errorf("delete event %s: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.Logger.Warn("EVENT", fmt.Sprintf("Event %s deleted by %s, %d coupons released", id, actor.ID, released))
	return nil
}

func (s *EventService) Attendees(ctx context.Context, actor models.Actor, id string) ([]models.AttendeeView, error) {
	if _, err := s.owned(ctx, s.DB.Bun, actor, id); err != nil {
		return nil, err
	}
	rows, err := s.DB.ListAttendees(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list attendees of %s: %w", id, err)
	}
	return rows, nil
}

// Package sweeper moves transactions whose deadline has passed out of their
// waiting state. It is invoked synchronously before transaction reads and writes,
// and optionally on a timer.
package sweeper

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	coupondb "ms-transactions/internal/coupons/db"
	"ms-transactions/internal/inventory"
	"ms-transactions/internal/logger"
	"ms-transactions/internal/metrics"
	"ms-transactions/internal/models"
	"ms-transactions/internal/notification"
	txdb "ms-transactions/internal/transaction/db"
)

type Scope = txdb.Scope

type Result struct {
	Expired    int
	Cancelled  int
	FreedSeats int
	// Swept holds the transactions this call moved, in their new state.
	Swept []models.Transaction
}

func (r Result) Empty() bool {
	return r.Expired == 0 && r.Cancelled == 0
}

// Publisher receives status events after the sweep commits.
type Publisher interface {
	Publish(ctx context.Context, evt models.TransactionStatusEvent)
}

type Sweeper struct {
	Transactions *txdb.DB
	Coupons      *coupondb.DB
	Ledger       *inventory.Ledger
	Publisher    Publisher
	Logger       *logger.Logger
	Now          func() time.Time
}

func New(transactions *txdb.DB, coupons *coupondb.DB, ledger *inventory.Ledger, publisher Publisher, log *logger.Logger) *Sweeper {
	if publisher == nil {
		publisher = notification.Discard{}
	}
	return &Sweeper{
		Transactions: transactions,
		Coupons:      coupons,
		Ledger:       ledger,
		Publisher:    publisher,
		Logger:       log,
		Now:          time.Now,
	}
}

// Sweep expires every overdue transaction in scope. WAITING_FOR_PAYMENT becomes
// EXPIRED and WAITING_FOR_ADMIN becomes CANCELLED. Side effects apply only to rows
// this call actually moved, so repeated or concurrent sweeps release nothing twice.
func (s *Sweeper) Sweep(ctx context.Context, scope Scope) (Result, error) {
	now := s.Now()
	var result Result

	err := s.Transactions.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		result = Result{}

		overdue, err := s.Transactions.FindExpired(ctx, tx, scope, now)
		if err != nil {
			return fmt.Errorf("find expired transactions: %w", err)
		}
		if len(overdue) == 0 {
			return nil
		}

		var moved []string
		seatsByEvent := make(map[string]int)

		for i := range overdue {
			t := overdue[i]
			from := t.Status

			to := models.StatusExpired
			if from == models.StatusWaitingForAdmin {
				to = models.StatusCancelled
			}
			t.Status = to
			t.UpdatedAt = now

			ok, err := s.Transactions.Advance(ctx, tx, &t, from)
			if err != nil {
				return fmt.Errorf("expire transaction %s: %w", t.ID, err)
			}
			if !ok {
				continue
			}

			moved = append(moved, t.ID)
			if from.HoldsSeat() {
				seatsByEvent[t.EventID]++
				result.FreedSeats++
			}
			if to == models.StatusExpired {
				result.Expired++
			} else {
				result.Cancelled++
			}
			result.Swept = append(result.Swept, t)
		}

		if len(moved) == 0 {
			return nil
		}

		if _, err := s.Coupons.Release(ctx, tx, moved...); err != nil {
			return fmt.Errorf("release coupons: %w", err)
		}
		if err := s.Transactions.DeleteAttendees(ctx, tx, moved...); err != nil {
			return fmt.Errorf("delete attendees: %w", err)
		}
		for eventID, n := range seatsByEvent {
			if err := s.Ledger.Increment(ctx, tx, eventID, n); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	if !result.Empty() {
		s.Logger.LogSweep(describe(scope), result.Expired, result.Cancelled, result.FreedSeats)
		metrics.Swept(result.Expired, result.Cancelled, result.FreedSeats)
		for i := range result.Swept {
			t := &result.Swept[i]
			eventType := notification.TypeExpired
			if t.Status == models.StatusCancelled {
				eventType = notification.TypeAdminTimeout
			}
			s.Publisher.Publish(ctx, models.NewTransactionStatusEvent(eventType, t, "deadline passed", now))
		}
	}
	return result, nil
}

func describe(scope Scope) string {
	switch {
	case scope.TransactionID != "":
		return "transaction=" + scope.TransactionID
	case scope.EventID != "" && scope.CustomerID != "":
		return "event=" + scope.EventID + " customer=" + scope.CustomerID
	case scope.EventID != "":
		return "event=" + scope.EventID
	case scope.CustomerID != "":
		return "customer=" + scope.CustomerID
	}
	return "all"
}

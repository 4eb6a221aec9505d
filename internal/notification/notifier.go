// Package notification delivers transaction status changes to the outside world.
// Delivery is best effort: a failing channel is logged and never affects the
// transaction that triggered it.
package notification

import (
	"context"
	"fmt"

	"ms-transactions/internal/logger"
	"ms-transactions/internal/metrics"
	"ms-transactions/internal/models"
)

const (
	TypeCreated          = "TRANSACTION_CREATED"
	TypePaymentSubmitted = "PAYMENT_SUBMITTED"
	TypeAccepted         = "TRANSACTION_ACCEPTED"
	TypeRejected         = "TRANSACTION_REJECTED"
	TypeCancelled        = "TRANSACTION_CANCELLED"
	TypeExpired          = "TRANSACTION_EXPIRED"
	TypeAdminTimeout     = "TRANSACTION_ADMIN_TIMEOUT"
)

// Notifier is one delivery channel.
type Notifier interface {
	Name() string
	Notify(ctx context.Context, evt models.TransactionStatusEvent) error
}

// Fanout sends each event to every channel and swallows their failures.
type Fanout struct {
	notifiers []Notifier
	logger    *logger.Logger
}

func NewFanout(log *logger.Logger, notifiers ...Notifier) *Fanout {
	f := &Fanout{logger: log}
	for _, n := range notifiers {
		if n != nil {
			f.notifiers = append(f.notifiers, n)
		}
	}
	return f
}

func (f *Fanout) Add(n Notifier) {
	f.notifiers = append(f.notifiers, n)
}

func (f *Fanout) Publish(ctx context.Context, evt models.TransactionStatusEvent) {
	for _, n := range f.notifiers {
		if err := n.Notify(ctx, evt); err != nil {
			metrics.NotificationFailed(n.Name())
			f.logger.Warn("NOTIFY", fmt.Sprintf("%s delivery of %s for %s failed: %v", n.Name(), evt.Type, evt.TransactionID, err))
		}
	}
}

// Discard drops every event.
type Discard struct{}

func (Discard) Publish(context.Context, models.TransactionStatusEvent) {}

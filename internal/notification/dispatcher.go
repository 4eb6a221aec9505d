package notification

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ms-transactions/internal/logger"
	"ms-transactions/internal/metrics"
	"ms-transactions/internal/models"
)

// Dispatcher queues status events and hands them to a Fanout on its own goroutine,
// so a slow channel never holds up the request that committed the transition.
// Events are delivered in the order they were published.
type Dispatcher struct {
	fanout  *Fanout
	queue   chan models.TransactionStatusEvent
	timeout time.Duration
	logger  *logger.Logger

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

func NewDispatcher(fanout *Fanout, size int, timeout time.Duration, log *logger.Logger) *Dispatcher {
	if size <= 0 {
		size = 256
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	d := &Dispatcher{
		fanout:  fanout,
		queue:   make(chan models.TransactionStatusEvent, size),
		timeout: timeout,
		logger:  log,
		done:    make(chan struct{}),
	}
	go d.run()
	return d
}

// Publish never blocks. When the queue is full the event is dropped and counted.
// Delivery runs under its own deadline, so a caller that goes away does not cancel it.
func (d *Dispatcher) Publish(_ context.Context, evt models.TransactionStatusEvent) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		d.logger.Warn("NOTIFY", fmt.Sprintf("Dispatcher closed, dropping %s for %s", evt.Type, evt.TransactionID))
		return
	}

	select {
	case d.queue <- evt:
	default:
		metrics.NotificationFailed("queue")
		d.logger.Warn("NOTIFY", fmt.Sprintf("Notification queue full, dropping %s for %s", evt.Type, evt.TransactionID))
	}
}

func (d *Dispatcher) run() {
	defer close(d.done)
	for evt := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		d.fanout.Publish(ctx, evt)
		cancel()
	}
}

// Close stops accepting events and waits until the queued ones are delivered
// or ctx ends.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("notification queue not drained: %w", ctx.Err())
	}
}

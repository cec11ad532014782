package events

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Transaction lifecycle operations
const (
	OpCreated = "created"
	OpUpdated = "updated"
	OpDeleted = "deleted"
)

// TransactionEvent describes a transaction mutation after it has been
// committed. Downstream consumers (budget reconciliation, document
// indexing) react to these instead of being called inline by the writers.
type TransactionEvent struct {
	Op            string
	Source        string
	UserID        uuid.UUID
	TransactionID uuid.UUID
	Date          time.Time
	OccurredAt    time.Time
}

// Handler consumes one transaction event. Handlers must tolerate redelivery
// of logically equivalent events.
type Handler func(ctx context.Context, event TransactionEvent)

// Dispatcher fans transaction events out to registered handlers. Publish is
// synchronous so a caller returning from a request knows its consumers ran;
// handlers that want async behavior spawn their own goroutines.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers []Handler
	logger   *slog.Logger
}

// NewDispatcher creates an empty dispatcher
func NewDispatcher(logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		logger: logger,
	}
}

// Subscribe registers a handler for all future events
func (d *Dispatcher) Subscribe(handler Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers = append(d.handlers, handler)
}

// Publish delivers the event to every registered handler in subscription
// order. A panicking handler is logged and does not stop delivery to the
// rest. Publish must only be called after the originating database
// transaction has committed.
func (d *Dispatcher) Publish(ctx context.Context, event TransactionEvent) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}

	d.mu.RLock()
	handlers := make([]Handler, len(d.handlers))
	copy(handlers, d.handlers)
	d.mu.RUnlock()

	for _, handler := range handlers {
		d.deliver(ctx, handler, event)
	}
}

func (d *Dispatcher) deliver(ctx context.Context, handler Handler, event TransactionEvent) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("event handler panicked",
				"op", event.Op,
				"source", event.Source,
				"transaction_id", event.TransactionID,
				"panic", r,
			)
		}
	}()

	handler(ctx, event)
}

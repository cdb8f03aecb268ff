package events

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeListingCreated   EventType = "listing_created"
	EventTypeListingActivated EventType = "listing_activated"
	EventTypeTicketsPurchased EventType = "tickets_purchased"
	EventTypeThresholdReached EventType = "threshold_reached"
	EventTypeWinnerSelected   EventType = "winner_selected"
	EventTypeListingClosed    EventType = "listing_closed"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// ListingCreatedEvent represents a new draft listing
type ListingCreatedEvent struct {
	ListingID     string
	SellerAliasID string
}

func (e ListingCreatedEvent) Type() EventType {
	return EventTypeListingCreated
}

// ListingActivatedEvent represents a listing going on sale
type ListingActivatedEvent struct {
	ListingID     string
	SellerAliasID string
}

func (e ListingActivatedEvent) Type() EventType {
	return EventTypeListingActivated
}

// TicketsPurchasedEvent represents a confirmed ticket purchase
type TicketsPurchasedEvent struct {
	ListingID    string
	PurchaseID   string
	BuyerAliasID string
	Qty          int
	StartTicket  int
	EndTicket    int
}

func (e TicketsPurchasedEvent) Type() EventType {
	return EventTypeTicketsPurchased
}

// ThresholdReachedEvent represents a listing selling out its threshold
type ThresholdReachedEvent struct {
	ListingID   string
	TicketsSold int
}

func (e ThresholdReachedEvent) Type() EventType {
	return EventTypeThresholdReached
}

// WinnerSelectedEvent represents a completed winner draw
type WinnerSelectedEvent struct {
	ListingID     string
	WinningTicket int
	WinnerAliasID string
}

func (e WinnerSelectedEvent) Type() EventType {
	return EventTypeWinnerSelected
}

// ListingClosedEvent represents a listing reaching a terminal closed state
type ListingClosedEvent struct {
	ListingID string
	Reason    string // "threshold_reached" or "expired"
}

func (e ListingClosedEvent) Type() EventType {
	return EventTypeListingClosed
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	// Call handlers asynchronously to avoid blocking
	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// TransactionalBus holds pending events coupled to a unit of work and flushes
// them to the underlying bus only after the transaction commits.
type TransactionalBus struct {
	real    *Bus
	pending []Event // stashed until Flush
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	b.pending = append(b.pending, e)
}

// Flush emits all pending events. Called after a successful DB commit.
func (b *TransactionalBus) Flush(ctx context.Context) error {
	// Events outlive the transaction context that produced them
	eventCtx := context.Background()

	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
	return nil
}

// Discard drops all pending events. Called after a DB rollback.
func (b *TransactionalBus) Discard() {
	b.pending = nil
}

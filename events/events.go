package events

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"

	"yinbot/models"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeGuildJoined         EventType = "guild_joined"
	EventTypeChannelSetChanged   EventType = "channel_set_changed"
	EventTypeLedgerEntryAppended EventType = "ledger_entry_appended"
	EventTypeLedgerEntryEdited   EventType = "ledger_entry_edited"
	EventTypeLedgerEntryDeleted  EventType = "ledger_entry_deleted"
)

// AllEventTypes lists every event type published by the services
var AllEventTypes = []EventType{
	EventTypeGuildJoined,
	EventTypeChannelSetChanged,
	EventTypeLedgerEntryAppended,
	EventTypeLedgerEntryEdited,
	EventTypeLedgerEntryDeleted,
}

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// GuildJoinedEvent is emitted when the bot sees a guild, Created is false on rejoin
type GuildJoinedEvent struct {
	GuildID int64 `json:"guild_id"`
	Created bool  `json:"created"`
}

func (e GuildJoinedEvent) Type() EventType {
	return EventTypeGuildJoined
}

// ChannelSetChangedEvent is emitted when a channel joins or leaves a feature channel set
type ChannelSetChangedEvent struct {
	GuildID   int64              `json:"guild_id"`
	Kind      models.ChannelKind `json:"kind"`
	ChannelID int64              `json:"channel_id"`
	Added     bool               `json:"added"`
	Enabled   bool               `json:"enabled"` // flag value after the change
}

func (e ChannelSetChangedEvent) Type() EventType {
	return EventTypeChannelSetChanged
}

// LedgerEntryAppendedEvent is emitted when a moderation action or warning is recorded
type LedgerEntryAppendedEvent struct {
	Ledger   models.LedgerKind `json:"ledger"`
	GuildID  int64             `json:"guild_id"`
	UserID   int64             `json:"user_id"`
	AuthorID int64             `json:"author_id"`
	Index    int               `json:"index"`
	Count    int               `json:"count"`
}

func (e LedgerEntryAppendedEvent) Type() EventType {
	return EventTypeLedgerEntryAppended
}

// LedgerEntryEditedEvent is emitted when a ledger entry is overwritten
type LedgerEntryEditedEvent struct {
	Ledger  models.LedgerKind `json:"ledger"`
	GuildID int64             `json:"guild_id"`
	UserID  int64             `json:"user_id"`
	Index   int               `json:"index"`
}

func (e LedgerEntryEditedEvent) Type() EventType {
	return EventTypeLedgerEntryEdited
}

// LedgerEntryDeletedEvent is emitted when a ledger entry is removed
type LedgerEntryDeletedEvent struct {
	Ledger  models.LedgerKind `json:"ledger"`
	GuildID int64             `json:"guild_id"`
	UserID  int64             `json:"user_id"`
	Index   int               `json:"index"`
}

func (e LedgerEntryDeletedEvent) Type() EventType {
	return EventTypeLedgerEntryDeleted
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

// SubscribeAll adds the handler for every known event type
func (b *Bus) SubscribeAll(handler Handler) {
	for _, eventType := range AllEventTypes {
		b.Subscribe(eventType, handler)
	}
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	log.WithFields(log.Fields{
		"eventType":    event.Type(),
		"handlerCount": len(handlers),
	}).Debug("Emitting event to handlers")

	// Handlers run asynchronously so a slow subscriber never blocks the caller
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

// TransactionalBus holds events raised inside a unit of work until it commits
type TransactionalBus struct {
	real    *Bus
	pending []Event
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	log.WithFields(log.Fields{
		"eventType":    e.Type(),
		"pendingCount": len(b.pending),
	}).Debug("Queued event until commit")
	b.pending = append(b.pending, e)
}

// Flush is called after a successful commit
func (b *TransactionalBus) Flush(ctx context.Context) error {
	if b.real == nil {
		b.pending = nil
		return nil
	}

	// The transaction context may be cancelled as soon as the caller returns
	eventCtx := context.WithoutCancel(ctx)

	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}

	log.WithField("pendingEventCount", len(b.pending)).Debug("Flushed pending events")
	b.pending = nil
	return nil
}

// Discard is called after a rollback
func (b *TransactionalBus) Discard() {
	b.pending = nil
}

// Pending returns the number of queued events
func (b *TransactionalBus) Pending() int {
	return len(b.pending)
}

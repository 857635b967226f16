package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yinbot/models"
)

// TestEventDeliveryIntegration tests the complete event flow from TransactionalBus to main Bus
func TestEventDeliveryIntegration(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	received := make(chan LedgerEntryAppendedEvent, 1)
	mainBus.Subscribe(EventTypeLedgerEntryAppended, func(ctx context.Context, event Event) {
		if appended, ok := event.(LedgerEntryAppendedEvent); ok {
			received <- appended
		} else {
			t.Errorf("Expected LedgerEntryAppendedEvent, got %T", event)
		}
	})

	testEvent := LedgerEntryAppendedEvent{
		Ledger:   models.LedgerWarning,
		GuildID:  1,
		UserID:   42,
		AuthorID: 7,
		Index:    3,
		Count:    2,
	}

	transactionalBus.Publish(testEvent)
	assert.Equal(t, 1, transactionalBus.Pending())

	require.NoError(t, transactionalBus.Flush(context.Background()))
	assert.Equal(t, 0, transactionalBus.Pending())

	select {
	case got := <-received:
		assert.Equal(t, testEvent, got)
	case <-time.After(2 * time.Second):
		t.Fatal("Event was not received within timeout")
	}
}

func TestTransactionalBusDiscard(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	called := make(chan struct{}, 1)
	mainBus.Subscribe(EventTypeChannelSetChanged, func(ctx context.Context, event Event) {
		called <- struct{}{}
	})

	transactionalBus.Publish(ChannelSetChangedEvent{GuildID: 1, Kind: models.ChannelKindModlog, ChannelID: 100, Added: true, Enabled: true})
	transactionalBus.Discard()
	require.NoError(t, transactionalBus.Flush(context.Background()))

	select {
	case <-called:
		t.Fatal("Discarded event was delivered")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestFlushSurvivesCancelledContext(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	errs := make(chan error, 1)
	mainBus.Subscribe(EventTypeGuildJoined, func(ctx context.Context, event Event) {
		errs <- ctx.Err()
	})

	ctx, cancel := context.WithCancel(context.Background())
	transactionalBus.Publish(GuildJoinedEvent{GuildID: 1, Created: true})
	require.NoError(t, transactionalBus.Flush(ctx))
	cancel()

	select {
	case err := <-errs:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Event was not received within timeout")
	}
}

func TestSubscribeAllAndPanicRecovery(t *testing.T) {
	bus := NewBus()

	var mu sync.Mutex
	seen := map[EventType]int{}
	var wg sync.WaitGroup
	wg.Add(len(AllEventTypes))

	bus.SubscribeAll(func(ctx context.Context, event Event) {
		defer wg.Done()
		mu.Lock()
		seen[event.Type()]++
		mu.Unlock()
	})
	bus.Subscribe(EventTypeGuildJoined, func(ctx context.Context, event Event) {
		panic("boom")
	})

	ctx := context.Background()
	bus.Emit(ctx, GuildJoinedEvent{GuildID: 1})
	bus.Emit(ctx, ChannelSetChangedEvent{GuildID: 1})
	bus.Emit(ctx, LedgerEntryAppendedEvent{GuildID: 1})
	bus.Emit(ctx, LedgerEntryEditedEvent{GuildID: 1})
	bus.Emit(ctx, LedgerEntryDeletedEvent{GuildID: 1})

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Not every event type was delivered")
	}

	for _, eventType := range AllEventTypes {
		assert.Equal(t, 1, seen[eventType], "event type %s", eventType)
	}
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "yinbot.ledger_entry_appended", Subject(EventTypeLedgerEntryAppended))
	assert.Equal(t, "yinbot.channel_set_changed", Subject(EventTypeChannelSetChanged))
}

package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"yinbot/events"
	"yinbot/models"
)

const (
	testUserID   int64 = 42
	testAuthorID int64 = 7
)

func TestLedgerService_Append(t *testing.T) {
	ctx := context.Background()
	d := newTestDeps()
	svc := NewLedgerService(d.factory, models.LedgerWarning, 6, testStoreConfig)

	payload := models.LedgerPayload{Major: true, Reason: "spam2"}
	d.expectWrite()
	d.warnings.On("Append", mock.Anything, testGuildID, testUserID, testAuthorID, payload).Return(2, nil)
	d.warnings.On("Count", mock.Anything, testGuildID, testUserID).Return(2, nil)

	index, err := svc.Append(ctx, testGuildID, testUserID, testAuthorID, payload)

	require.NoError(t, err)
	assert.Equal(t, 2, index)
	assert.Equal(t, []events.Event{events.LedgerEntryAppendedEvent{
		Ledger:   models.LedgerWarning,
		GuildID:  testGuildID,
		UserID:   testUserID,
		AuthorID: testAuthorID,
		Index:    2,
		Count:    2,
	}}, d.uow.Publisher.Published())
	d.moderation.AssertNotCalled(t, "Append", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	d.assertExpectations(t)
}

func TestLedgerService_Append_MultibyteReasonAtLimit(t *testing.T) {
	d := newTestDeps()
	svc := NewLedgerService(d.factory, models.LedgerWarning, 6, testStoreConfig)

	// 500 characters, 1000 bytes
	payload := models.LedgerPayload{Reason: strings.Repeat("é", models.MaxReasonLength)}
	d.expectWrite()
	d.warnings.On("Append", mock.Anything, testGuildID, testUserID, testAuthorID, payload).Return(1, nil)
	d.warnings.On("Count", mock.Anything, testGuildID, testUserID).Return(1, nil)

	index, err := svc.Append(context.Background(), testGuildID, testUserID, testAuthorID, payload)

	require.NoError(t, err)
	assert.Equal(t, 1, index)
	d.assertExpectations(t)
}

func TestLedgerService_Append_RejectsInvalidPayload(t *testing.T) {
	tests := []struct {
		name    string
		kind    models.LedgerKind
		payload models.LedgerPayload
	}{
		{name: "empty reason", kind: models.LedgerWarning, payload: models.LedgerPayload{Reason: "  "}},
		{name: "reason too long", kind: models.LedgerWarning, payload: models.LedgerPayload{Reason: strings.Repeat("x", models.MaxReasonLength+1)}},
		{name: "multibyte reason too long", kind: models.LedgerWarning, payload: models.LedgerPayload{Reason: strings.Repeat("é", models.MaxReasonLength+1)}},
		{name: "unknown moderation action", kind: models.LedgerModeration, payload: models.LedgerPayload{Action: 9, Reason: "bad"}},
		{name: "missing moderation action", kind: models.LedgerModeration, payload: models.LedgerPayload{Reason: "bad"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestDeps()
			svc := NewLedgerService(d.factory, tt.kind, 3, testStoreConfig)

			_, err := svc.Append(context.Background(), testGuildID, testUserID, testAuthorID, tt.payload)

			assert.ErrorIs(t, err, ErrInvalidArgument)
			d.factory.AssertNotCalled(t, "Create")
		})
	}
}

func TestLedgerService_Edit(t *testing.T) {
	ctx := context.Background()
	payload := models.LedgerPayload{Action: models.ActionBan, Reason: "updated"}

	t.Run("existing index returns count", func(t *testing.T) {
		d := newTestDeps()
		svc := NewLedgerService(d.factory, models.LedgerModeration, 3, testStoreConfig)

		d.expectWrite()
		d.moderation.On("Update", mock.Anything, testGuildID, testUserID, 2, payload).Return(true, nil)
		d.moderation.On("Count", mock.Anything, testGuildID, testUserID).Return(2, nil)

		count, err := svc.Edit(ctx, testGuildID, testUserID, 2, payload)

		require.NoError(t, err)
		assert.Equal(t, 2, count)
		assert.Len(t, d.uow.Publisher.Published(), 1)
		d.assertExpectations(t)
	})

	t.Run("unknown index is not found", func(t *testing.T) {
		d := newTestDeps()
		svc := NewLedgerService(d.factory, models.LedgerModeration, 3, testStoreConfig)

		d.expectFailedWrite()
		d.moderation.On("Update", mock.Anything, testGuildID, testUserID, 9, payload).Return(false, nil)

		_, err := svc.Edit(ctx, testGuildID, testUserID, 9, payload)

		assert.ErrorIs(t, err, ErrNotFound)
		d.uow.AssertNotCalled(t, "Commit")
		assert.Empty(t, d.uow.Publisher.Published())
		d.assertExpectations(t)
	})
}

func TestLedgerService_Delete(t *testing.T) {
	tests := []struct {
		name    string
		deleted bool
		events  int
	}{
		{name: "existing entry", deleted: true, events: 1},
		{name: "missing entry", deleted: false, events: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestDeps()
			svc := NewLedgerService(d.factory, models.LedgerWarning, 6, testStoreConfig)

			d.expectWrite()
			d.warnings.On("Delete", mock.Anything, testGuildID, testUserID, 1).Return(tt.deleted, nil)

			deleted, err := svc.Delete(context.Background(), testGuildID, testUserID, 1)

			require.NoError(t, err)
			assert.Equal(t, tt.deleted, deleted)
			assert.Len(t, d.uow.Publisher.Published(), tt.events)
			d.assertExpectations(t)
		})
	}
}

func TestLedgerService_Get(t *testing.T) {
	ctx := context.Background()
	d := newTestDeps()
	svc := NewLedgerService(d.factory, models.LedgerWarning, 6, testStoreConfig)

	entry := &models.LedgerEntry{Kind: models.LedgerWarning, GuildID: testGuildID, UserID: testUserID, Index: 1, Reason: "spam"}
	d.expectRead()
	d.expectRead()
	d.warnings.On("Get", mock.Anything, testGuildID, testUserID, 1).Return(entry, nil)
	d.warnings.On("Get", mock.Anything, testGuildID, testUserID, 5).Return(nil, nil)

	found, err := svc.Get(ctx, testGuildID, testUserID, 1)
	require.NoError(t, err)
	assert.Equal(t, entry, found.MustGet())

	missing, err := svc.Get(ctx, testGuildID, testUserID, 5)
	require.NoError(t, err)
	assert.True(t, missing.IsAbsent())

	d.assertExpectations(t)
}

func TestLedgerService_List_RecencyWindow(t *testing.T) {
	now := time.Date(2024, 7, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		kind      models.LedgerKind
		months    int
		recent    bool
		wantSince time.Time
	}{
		{name: "warnings recent", kind: models.LedgerWarning, months: 6, recent: true, wantSince: time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)},
		{name: "moderation recent", kind: models.LedgerModeration, months: 3, recent: true, wantSince: time.Date(2024, 4, 15, 12, 0, 0, 0, time.UTC)},
		{name: "full history", kind: models.LedgerWarning, months: 6, recent: false, wantSince: time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newTestDeps()
			svc := NewLedgerService(d.factory, tt.kind, tt.months, testStoreConfig)
			svc.(*ledgerService).now = func() time.Time { return now }

			repo := d.warnings
			if tt.kind == models.LedgerModeration {
				repo = d.moderation
			}

			entries := []*models.LedgerEntry{{Index: 1}, {Index: 3}}
			d.expectRead()
			repo.On("List", mock.Anything, testGuildID, testUserID, tt.wantSince).Return(entries, nil)

			got, err := svc.List(context.Background(), testGuildID, testUserID, tt.recent)

			require.NoError(t, err)
			assert.Equal(t, entries, got)
			d.assertExpectations(t)
		})
	}
}

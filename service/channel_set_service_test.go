package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"yinbot/events"
	"yinbot/models"
)

const (
	testGuildID   int64 = 1
	testChannelID int64 = 100
)

func TestChannelSetService_Add_FirstChannelEnablesFlag(t *testing.T) {
	ctx := context.Background()
	d := newTestDeps()
	cache := NewSettingsCache(d.factory, testStoreConfig)
	svc := NewChannelSetService(d.factory, cache, testStoreConfig)

	d.expectWrite()
	d.guilds.On("Create", mock.Anything, testGuildID, "-").Return(false, nil)
	d.guilds.On("Lock", mock.Anything, testGuildID).Return(true, nil)
	d.channels.On("Insert", mock.Anything, testGuildID, models.ChannelKindModlog, testChannelID).Return(true, nil)
	d.channels.On("Count", mock.Anything, testGuildID, models.ChannelKindModlog).Return(1, nil)
	d.guilds.On("SetFlag", mock.Anything, testGuildID, models.ChannelKindModlog, true).Return(nil)

	added, err := svc.Add(ctx, testGuildID, models.ChannelKindModlog, testChannelID)

	require.NoError(t, err)
	assert.True(t, added)
	assert.True(t, cache.Get(testGuildID).ModlogEnabled)
	assert.Equal(t, []events.Event{events.ChannelSetChangedEvent{
		GuildID:   testGuildID,
		Kind:      models.ChannelKindModlog,
		ChannelID: testChannelID,
		Added:     true,
		Enabled:   true,
	}}, d.uow.Publisher.Published())
	d.assertExpectations(t)
}

func TestChannelSetService_Add_ExistingMemberIsNoop(t *testing.T) {
	ctx := context.Background()
	d := newTestDeps()
	cache := NewSettingsCache(d.factory, testStoreConfig)
	svc := NewChannelSetService(d.factory, cache, testStoreConfig)

	d.expectWrite()
	d.guilds.On("Create", mock.Anything, testGuildID, "-").Return(false, nil)
	d.guilds.On("Lock", mock.Anything, testGuildID).Return(true, nil)
	d.channels.On("Insert", mock.Anything, testGuildID, models.ChannelKindModlog, testChannelID).Return(false, nil)

	added, err := svc.Add(ctx, testGuildID, models.ChannelKindModlog, testChannelID)

	require.NoError(t, err)
	assert.False(t, added)
	assert.Empty(t, d.uow.Publisher.Published())
	d.guilds.AssertNotCalled(t, "SetFlag", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	d.assertExpectations(t)
}

func TestChannelSetService_Add_BlacklistUpdatesGlobalSet(t *testing.T) {
	ctx := context.Background()
	d := newTestDeps()
	cache := NewSettingsCache(d.factory, testStoreConfig)
	svc := NewChannelSetService(d.factory, cache, testStoreConfig)

	d.expectWrite()
	d.guilds.On("Create", mock.Anything, testGuildID, "-").Return(false, nil)
	d.guilds.On("Lock", mock.Anything, testGuildID).Return(true, nil)
	d.channels.On("Insert", mock.Anything, testGuildID, models.ChannelKindBlacklist, testChannelID).Return(true, nil)
	d.channels.On("Count", mock.Anything, testGuildID, models.ChannelKindBlacklist).Return(1, nil)
	d.guilds.On("SetFlag", mock.Anything, testGuildID, models.ChannelKindBlacklist, true).Return(nil)

	_, err := svc.Add(ctx, testGuildID, models.ChannelKindBlacklist, testChannelID)

	require.NoError(t, err)
	assert.True(t, cache.IsBlacklisted(testChannelID))
	assert.True(t, cache.Get(testGuildID).BlacklistEnabled)
	d.assertExpectations(t)
}

func TestChannelSetService_Add_StoreFailureLeavesCacheUntouched(t *testing.T) {
	tests := []struct {
		name  string
		setup func(d *testDeps)
	}{
		{
			name: "flag update fails",
			setup: func(d *testDeps) {
				d.expectFailedWrite()
				d.channels.On("Count", mock.Anything, testGuildID, models.ChannelKindLogging).Return(1, nil)
				d.guilds.On("SetFlag", mock.Anything, testGuildID, models.ChannelKindLogging, true).Return(errors.New("connection reset"))
			},
		},
		{
			name: "commit fails",
			setup: func(d *testDeps) {
				d.uow.On("Begin", mock.Anything).Return(nil).Once()
				d.uow.On("Commit").Return(errors.New("commit failed")).Once()
				d.channels.On("Count", mock.Anything, testGuildID, models.ChannelKindLogging).Return(1, nil)
				d.guilds.On("SetFlag", mock.Anything, testGuildID, models.ChannelKindLogging, true).Return(nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			d := newTestDeps()
			cache := NewSettingsCache(d.factory, testStoreConfig)
			svc := NewChannelSetService(d.factory, cache, testStoreConfig)

			d.guilds.On("Create", mock.Anything, testGuildID, "-").Return(false, nil)
			d.guilds.On("Lock", mock.Anything, testGuildID).Return(true, nil)
			d.channels.On("Insert", mock.Anything, testGuildID, models.ChannelKindLogging, testChannelID).Return(true, nil)
			tt.setup(d)

			added, err := svc.Add(ctx, testGuildID, models.ChannelKindLogging, testChannelID)

			assert.ErrorIs(t, err, ErrQuery)
			assert.False(t, added)
			assert.False(t, cache.Get(testGuildID).LoggingEnabled)
			assert.False(t, cache.Has(testGuildID))
			d.assertExpectations(t)
		})
	}
}

func TestChannelSetService_Remove_LastChannelDisablesFlag(t *testing.T) {
	ctx := context.Background()
	d := newTestDeps()
	cache := NewSettingsCache(d.factory, testStoreConfig)
	cache.Patch(testGuildID, func(gs *models.GuildSettings) { gs.ModlogEnabled = true })
	svc := NewChannelSetService(d.factory, cache, testStoreConfig)

	d.expectWrite()
	d.guilds.On("Lock", mock.Anything, testGuildID).Return(true, nil)
	d.channels.On("Delete", mock.Anything, testGuildID, models.ChannelKindModlog, testChannelID).Return(true, nil)
	d.channels.On("Count", mock.Anything, testGuildID, models.ChannelKindModlog).Return(0, nil)
	d.guilds.On("SetFlag", mock.Anything, testGuildID, models.ChannelKindModlog, false).Return(nil)

	removed, err := svc.Remove(ctx, testGuildID, models.ChannelKindModlog, testChannelID)

	require.NoError(t, err)
	assert.True(t, removed)
	assert.False(t, cache.Get(testGuildID).ModlogEnabled)
	d.assertExpectations(t)
}

func TestChannelSetService_Remove_NonLastChannelKeepsFlag(t *testing.T) {
	ctx := context.Background()
	d := newTestDeps()
	cache := NewSettingsCache(d.factory, testStoreConfig)
	cache.Patch(testGuildID, func(gs *models.GuildSettings) { gs.WelcomeEnabled = true })
	svc := NewChannelSetService(d.factory, cache, testStoreConfig)

	d.expectWrite()
	d.guilds.On("Lock", mock.Anything, testGuildID).Return(true, nil)
	d.channels.On("Delete", mock.Anything, testGuildID, models.ChannelKindWelcome, testChannelID).Return(true, nil)
	d.channels.On("Count", mock.Anything, testGuildID, models.ChannelKindWelcome).Return(2, nil)
	d.guilds.On("SetFlag", mock.Anything, testGuildID, models.ChannelKindWelcome, true).Return(nil)

	_, err := svc.Remove(ctx, testGuildID, models.ChannelKindWelcome, testChannelID)

	require.NoError(t, err)
	assert.True(t, cache.Get(testGuildID).WelcomeEnabled)
	d.assertExpectations(t)
}

func TestChannelSetService_Remove_AbsentMemberIsNotFound(t *testing.T) {
	tests := []struct {
		name        string
		guildExists bool
	}{
		{name: "channel not in set", guildExists: true},
		{name: "guild unknown", guildExists: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			d := newTestDeps()
			cache := NewSettingsCache(d.factory, testStoreConfig)
			cache.Patch(testGuildID, func(gs *models.GuildSettings) { gs.ModlogEnabled = true })
			svc := NewChannelSetService(d.factory, cache, testStoreConfig)

			d.expectFailedWrite()
			d.guilds.On("Lock", mock.Anything, testGuildID).Return(tt.guildExists, nil)
			if tt.guildExists {
				d.channels.On("Delete", mock.Anything, testGuildID, models.ChannelKindModlog, testChannelID).Return(false, nil)
			}

			removed, err := svc.Remove(ctx, testGuildID, models.ChannelKindModlog, testChannelID)

			assert.ErrorIs(t, err, ErrNotFound)
			assert.NotErrorIs(t, err, ErrQuery)
			assert.False(t, removed)
			assert.True(t, cache.Get(testGuildID).ModlogEnabled, "flag must not change")
			d.guilds.AssertNotCalled(t, "SetFlag", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			d.uow.AssertNotCalled(t, "Commit")
			d.assertExpectations(t)
		})
	}
}

func TestChannelSetService_RemoveEverywhere(t *testing.T) {
	ctx := context.Background()
	d := newTestDeps()
	cache := NewSettingsCache(d.factory, testStoreConfig)
	cache.Patch(testGuildID, func(gs *models.GuildSettings) {
		gs.ModlogEnabled = true
		gs.BlacklistEnabled = true
	})
	cache.AddBlacklisted(testChannelID)
	svc := NewChannelSetService(d.factory, cache, testStoreConfig)

	d.expectWrite()
	d.guilds.On("Lock", mock.Anything, testGuildID).Return(true, nil)
	for _, kind := range models.AllChannelKinds {
		member := kind == models.ChannelKindModlog || kind == models.ChannelKindBlacklist
		d.channels.On("Delete", mock.Anything, testGuildID, kind, testChannelID).Return(member, nil)
	}
	d.channels.On("Count", mock.Anything, testGuildID, models.ChannelKindModlog).Return(0, nil)
	d.channels.On("Count", mock.Anything, testGuildID, models.ChannelKindBlacklist).Return(3, nil)
	d.guilds.On("SetFlag", mock.Anything, testGuildID, models.ChannelKindModlog, false).Return(nil)
	d.guilds.On("SetFlag", mock.Anything, testGuildID, models.ChannelKindBlacklist, true).Return(nil)

	kinds, err := svc.RemoveEverywhere(ctx, testGuildID, testChannelID)

	require.NoError(t, err)
	assert.Equal(t, []models.ChannelKind{models.ChannelKindModlog, models.ChannelKindBlacklist}, kinds)
	settings := cache.Get(testGuildID)
	assert.False(t, settings.ModlogEnabled)
	assert.True(t, settings.BlacklistEnabled)
	assert.False(t, cache.IsBlacklisted(testChannelID))
	assert.Len(t, d.uow.Publisher.Published(), 2)
	d.assertExpectations(t)
}

func TestChannelSetService_TimeoutIsQueryError(t *testing.T) {
	ctx := context.Background()
	d := newTestDeps()
	cfg := StoreConfig{Timeout: 20 * time.Millisecond, DefaultPrefix: "-"}
	cache := NewSettingsCache(d.factory, cfg)
	svc := NewChannelSetService(d.factory, cache, cfg)

	d.uow.On("BeginSnapshot", mock.Anything).Return(nil).Once()
	d.channels.On("List", mock.Anything, testGuildID, models.ChannelKindLogging).
		Run(func(args mock.Arguments) {
			<-args.Get(0).(context.Context).Done()
		}).
		Return(nil, context.DeadlineExceeded)

	channels, err := svc.List(ctx, testGuildID, models.ChannelKindLogging)

	assert.ErrorIs(t, err, ErrQuery)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Nil(t, channels)
	d.uow.AssertNotCalled(t, "Commit")
}

func TestChannelSetService_ListAll(t *testing.T) {
	ctx := context.Background()
	d := newTestDeps()
	svc := NewChannelSetService(d.factory, NewSettingsCache(d.factory, testStoreConfig), testStoreConfig)

	d.expectRead()
	d.channels.On("ListAll", mock.Anything, models.ChannelKindBlacklist).Return([]int64{5, 6}, nil)

	channels, err := svc.ListAll(ctx, models.ChannelKindBlacklist)

	require.NoError(t, err)
	assert.Equal(t, []int64{5, 6}, channels)
	d.assertExpectations(t)
}

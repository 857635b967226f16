package bot

import (
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"yinbot/events"
	"yinbot/models"
	"yinbot/service"
)

func TestEveryCommandHasAHandler(t *testing.T) {
	b := &Bot{}
	handlers := b.commandHandlers()

	commands := applicationCommands()
	assert.Len(t, handlers, len(commands))
	for _, cmd := range commands {
		_, ok := handlers[cmd.Name]
		assert.True(t, ok, "no handler for /%s", cmd.Name)
	}
}

func TestCommandsAreWellFormed(t *testing.T) {
	for _, cmd := range applicationCommands() {
		assert.NotEmpty(t, cmd.Description, cmd.Name)
		for _, opt := range cmd.Options {
			assert.NotEmpty(t, opt.Description, "%s %s", cmd.Name, opt.Name)
			if opt.Type != discordgo.ApplicationCommandOptionSubCommand {
				continue
			}
			// Discord requires required options to precede optional ones
			seenOptional := false
			for _, sub := range opt.Options {
				if !sub.Required {
					seenOptional = true
				}
				assert.False(t, seenOptional && sub.Required, "%s %s: required option %s after optional", cmd.Name, opt.Name, sub.Name)
			}
		}
	}
}

func TestContainsInvite(t *testing.T) {
	tests := []struct {
		content string
		want    bool
	}{
		{"join discord.gg/abc123 now", true},
		{"https://discord.com/invite/xyz", true},
		{"https://discordapp.com/invite/xyz", true},
		{"DISCORD.GG/Loud", true},
		{"discord.gg is a domain", false},
		{"see https://example.org/invite/abc", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.content, func(t *testing.T) {
			assert.Equal(t, tt.want, ContainsInvite(tt.content))
		})
	}
}

func TestVoiceTransition(t *testing.T) {
	tests := []struct {
		name       string
		before     string
		after      string
		wantLeft   string
		wantJoined string
	}{
		{name: "join", before: "", after: "1", wantJoined: "1"},
		{name: "leave", before: "1", after: "", wantLeft: "1"},
		{name: "move", before: "1", after: "2", wantLeft: "1", wantJoined: "2"},
		{name: "mute in place", before: "1", after: "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			left, joined := VoiceTransition(tt.before, tt.after)
			assert.Equal(t, tt.wantLeft, left)
			assert.Equal(t, tt.wantJoined, joined)
		})
	}
}

func TestAddedRoles(t *testing.T) {
	assert.Equal(t, []string{"3"}, AddedRoles([]string{"1", "2"}, []string{"2", "3"}))
	assert.Empty(t, AddedRoles([]string{"1"}, []string{"1"}))
	assert.Empty(t, AddedRoles([]string{"1", "2"}, []string{"1"}))
}

func TestModlogMessage(t *testing.T) {
	guildID, message, ok := ModlogMessage(events.LedgerEntryAppendedEvent{
		Ledger:   models.LedgerWarning,
		GuildID:  5,
		UserID:   6,
		AuthorID: 7,
		Index:    2,
		Count:    2,
	})
	assert.True(t, ok)
	assert.Equal(t, int64(5), guildID)
	assert.Equal(t, "📝 Warning `#2` recorded for <@6> by <@7> (2 total)", message)

	_, message, ok = ModlogMessage(events.LedgerEntryDeletedEvent{Ledger: models.LedgerModeration, GuildID: 5, UserID: 6, Index: 1})
	assert.True(t, ok)
	assert.Equal(t, "🗑️ Moderation entry `#1` of <@6> removed", message)

	_, _, ok = ModlogMessage(events.GuildJoinedEvent{GuildID: 5})
	assert.False(t, ok)
}

func newReadyTestBot() (*Bot, *service.MockGuildRepository, *service.MockChannelSetRepository) {
	guilds := new(service.MockGuildRepository)
	channels := new(service.MockChannelSetRepository)

	uow := service.NewMockUnitOfWork()
	uow.SetGuildRepository(guilds)
	uow.SetChannelSetRepository(channels)
	uow.On("BeginSnapshot", mock.Anything).Return(nil)
	uow.On("Commit").Return(nil)
	uow.On("Rollback").Return(nil)

	factory := new(service.MockUnitOfWorkFactory)
	factory.On("Create").Return(uow)

	cache := service.NewSettingsCache(factory, service.StoreConfig{Timeout: time.Second, DefaultPrefix: "-"})
	return &Bot{services: Services{Cache: cache}}, guilds, channels
}

func TestHandleReady_ReconnectRebuildsCache(t *testing.T) {
	b, guilds, channels := newReadyTestBot()

	guilds.On("GetAll", mock.Anything).Return([]*models.GuildSettings{
		{GuildID: 1, Prefix: "!"},
	}, nil).Once()
	channels.On("ListAll", mock.Anything, models.ChannelKindBlacklist).Return([]int64{500}, nil).Once()

	b.handleReady(nil, &discordgo.Ready{})
	require.True(t, b.services.Cache.Has(1))
	require.True(t, b.services.Cache.IsBlacklisted(500))

	// Guild 1 left and guild 2 changed its prefix while the gateway was down
	guilds.On("GetAll", mock.Anything).Return([]*models.GuildSettings{
		{GuildID: 2, Prefix: "?"},
	}, nil).Once()
	channels.On("ListAll", mock.Anything, models.ChannelKindBlacklist).Return([]int64{}, nil).Once()

	b.handleReady(nil, &discordgo.Ready{})

	assert.False(t, b.services.Cache.Has(1))
	assert.Equal(t, "?", b.services.Cache.Get(2).Prefix)
	assert.False(t, b.services.Cache.IsBlacklisted(500))
	assert.Equal(t, 1, b.services.Cache.Len())
	guilds.AssertExpectations(t)
	channels.AssertExpectations(t)
}

func TestHandleReady_FailedReloadKeepsCache(t *testing.T) {
	b, guilds, channels := newReadyTestBot()

	guilds.On("GetAll", mock.Anything).Return([]*models.GuildSettings{
		{GuildID: 1, Prefix: "!"},
	}, nil).Once()
	channels.On("ListAll", mock.Anything, models.ChannelKindBlacklist).Return([]int64{}, nil).Once()
	b.handleReady(nil, &discordgo.Ready{})

	guilds.On("GetAll", mock.Anything).Return(nil, errors.New("connection refused")).Once()
	b.handleReady(nil, &discordgo.Ready{})

	assert.Equal(t, "!", b.services.Cache.Get(1).Prefix)
	guilds.AssertExpectations(t)
}

package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yinbot/models"
	"yinbot/repository/testutil"
)

func TestGuildRepository_Create(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewGuildRepository(testDB.DB)
	ctx := context.Background()

	created, err := repo.Create(ctx, 1001, "-")
	require.NoError(t, err)
	assert.True(t, created)

	t.Run("second create is a no-op", func(t *testing.T) {
		require.NoError(t, repo.SetPrefix(ctx, 1001, "!"))

		created, err := repo.Create(ctx, 1001, "-")
		require.NoError(t, err)
		assert.False(t, created)

		settings, err := repo.Get(ctx, 1001)
		require.NoError(t, err)
		assert.Equal(t, "!", settings.Prefix)
	})

	t.Run("defaults", func(t *testing.T) {
		_, err := repo.Create(ctx, 1002, "-")
		require.NoError(t, err)

		settings, err := repo.Get(ctx, 1002)
		require.NoError(t, err)
		require.NotNil(t, settings)

		assert.Equal(t, "-", settings.Prefix)
		assert.True(t, settings.InvitesAllowed)
		assert.True(t, settings.WarningsDM)
		assert.False(t, settings.VoiceEnabled)
		for _, kind := range models.AllChannelKinds {
			assert.False(t, settings.FlagEnabled(kind), kind.String())
		}
		assert.Nil(t, settings.WelcomeMessage)
		assert.False(t, settings.CreatedAt.IsZero())
	})
}

func TestGuildRepository_Get(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewGuildRepository(testDB.DB)
	ctx := context.Background()

	t.Run("unknown guild", func(t *testing.T) {
		settings, err := repo.Get(ctx, 999999)
		require.NoError(t, err)
		assert.Nil(t, settings)
	})

	t.Run("get all", func(t *testing.T) {
		testutil.SeedGuild(t, testDB.DB, 3)
		testutil.SeedGuild(t, testDB.DB, 1)
		testutil.SeedGuild(t, testDB.DB, 2)

		all, err := repo.GetAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, []int64{1, 2, 3}, []int64{all[0].GuildID, all[1].GuildID, all[2].GuildID})
	})
}

func TestGuildRepository_Setters(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewGuildRepository(testDB.DB)
	ctx := context.Background()
	testutil.SeedGuild(t, testDB.DB, 1)

	welcome := "hi there"
	footer := "appeal by mail"

	require.NoError(t, repo.SetPrefix(ctx, 1, "y!"))
	require.NoError(t, repo.SetInvitesAllowed(ctx, 1, false))
	require.NoError(t, repo.SetVoiceEnabled(ctx, 1, true))
	require.NoError(t, repo.SetWarningsDM(ctx, 1, false))
	require.NoError(t, repo.SetWelcomeMessage(ctx, 1, &welcome))
	require.NoError(t, repo.SetBanFooter(ctx, 1, &footer))
	require.NoError(t, repo.SetKickFooter(ctx, 1, &footer))
	require.NoError(t, repo.SetFlag(ctx, 1, models.ChannelKindVoiceLog, true))

	settings, err := repo.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "y!", settings.Prefix)
	assert.False(t, settings.InvitesAllowed)
	assert.True(t, settings.VoiceEnabled)
	assert.False(t, settings.WarningsDM)
	assert.Equal(t, welcome, *settings.WelcomeMessage)
	assert.Equal(t, footer, *settings.BanFooter)
	assert.Equal(t, footer, *settings.KickFooter)
	assert.True(t, settings.VoiceLogging)
	assert.False(t, settings.ModlogEnabled)

	t.Run("clear text", func(t *testing.T) {
		require.NoError(t, repo.SetWelcomeMessage(ctx, 1, nil))

		settings, err := repo.Get(ctx, 1)
		require.NoError(t, err)
		assert.Nil(t, settings.WelcomeMessage)
	})

	t.Run("prefix longer than two characters is rejected", func(t *testing.T) {
		assert.Error(t, repo.SetPrefix(ctx, 1, "abc"))
	})

	t.Run("unknown guild", func(t *testing.T) {
		assert.Error(t, repo.SetVoiceEnabled(ctx, 424242, true))
	})
}

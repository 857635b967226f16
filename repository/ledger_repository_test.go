package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yinbot/models"
	"yinbot/repository/testutil"
)

const (
	ledgerGuildID  int64 = 10
	ledgerUserID   int64 = 20
	ledgerAuthorID int64 = 30
)

func TestLedgerRepository_IndexAllocation(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewLedgerRepository(testDB.DB, models.LedgerWarning)
	ctx := context.Background()

	t.Run("append on empty ledger returns 1", func(t *testing.T) {
		idx, err := repo.Append(ctx, ledgerGuildID, ledgerUserID, ledgerAuthorID, testutil.MinorWarning("spam"))
		require.NoError(t, err)
		assert.Equal(t, 1, idx)
	})

	t.Run("second append returns 2", func(t *testing.T) {
		idx, err := repo.Append(ctx, ledgerGuildID, ledgerUserID, ledgerAuthorID, testutil.MajorWarning("slurs"))
		require.NoError(t, err)
		assert.Equal(t, 2, idx)
	})

	t.Run("indices are per user", func(t *testing.T) {
		idx, err := repo.Append(ctx, ledgerGuildID, ledgerUserID+1, ledgerAuthorID, testutil.MinorWarning("spam"))
		require.NoError(t, err)
		assert.Equal(t, 1, idx)
	})

	t.Run("delete then append continues after max", func(t *testing.T) {
		deleted, err := repo.Delete(ctx, ledgerGuildID, ledgerUserID, 1)
		require.NoError(t, err)
		assert.True(t, deleted)

		idx, err := repo.Append(ctx, ledgerGuildID, ledgerUserID, ledgerAuthorID, testutil.MinorWarning("again"))
		require.NoError(t, err)
		assert.Equal(t, 3, idx)

		entries, err := repo.List(ctx, ledgerGuildID, ledgerUserID, time.Time{})
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, 2, entries[0].Index)
		assert.Equal(t, 3, entries[1].Index)
	})
}

func TestLedgerRepository_EditKeepsCount(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewLedgerRepository(testDB.DB, models.LedgerModeration)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := repo.Append(ctx, ledgerGuildID, ledgerUserID, ledgerAuthorID, testutil.ModerationAction(models.ActionKick, "rule 1"))
		require.NoError(t, err)
	}

	updated, err := repo.Update(ctx, ledgerGuildID, ledgerUserID, 2, testutil.ModerationAction(models.ActionBan, "rule 2"))
	require.NoError(t, err)
	assert.True(t, updated)

	count, err := repo.Count(ctx, ledgerGuildID, ledgerUserID)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	entry, err := repo.Get(ctx, ledgerGuildID, ledgerUserID, 2)
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, models.ActionBan, entry.Action)
	assert.Equal(t, "rule 2", entry.Reason)
	assert.Equal(t, ledgerAuthorID, entry.AuthorID)
	assert.Equal(t, models.LedgerModeration, entry.Kind)

	t.Run("update missing index", func(t *testing.T) {
		updated, err := repo.Update(ctx, ledgerGuildID, ledgerUserID, 99, testutil.ModerationAction(models.ActionBan, "x"))
		require.NoError(t, err)
		assert.False(t, updated)
	})

	t.Run("get missing index", func(t *testing.T) {
		entry, err := repo.Get(ctx, ledgerGuildID, ledgerUserID, 99)
		require.NoError(t, err)
		assert.Nil(t, entry)
	})

	t.Run("delete missing index", func(t *testing.T) {
		deleted, err := repo.Delete(ctx, ledgerGuildID, ledgerUserID, 99)
		require.NoError(t, err)
		assert.False(t, deleted)
	})

	t.Run("invalid action is rejected", func(t *testing.T) {
		_, err := repo.Append(ctx, ledgerGuildID, ledgerUserID, ledgerAuthorID, testutil.ModerationAction(9, "x"))
		assert.Error(t, err)
	})
}

func TestLedgerRepository_ListSince(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewLedgerRepository(testDB.DB, models.LedgerWarning)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := repo.Append(ctx, ledgerGuildID, ledgerUserID, ledgerAuthorID, testutil.MinorWarning("spam"))
		require.NoError(t, err)
	}
	old := time.Now().UTC().AddDate(-1, 0, 0)
	testutil.BackdateLedgerEntry(t, testDB.DB, models.LedgerWarning, ledgerGuildID, ledgerUserID, 1, old)

	all, err := repo.List(ctx, ledgerGuildID, ledgerUserID, time.Time{})
	require.NoError(t, err)
	count, err := repo.Count(ctx, ledgerGuildID, ledgerUserID)
	require.NoError(t, err)
	assert.Len(t, all, count)

	recent, err := repo.List(ctx, ledgerGuildID, ledgerUserID, time.Now().UTC().AddDate(0, -6, 0))
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, 2, recent[0].Index)
	assert.Equal(t, 3, recent[1].Index)
}

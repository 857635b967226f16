package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"yinbot/database"
	"yinbot/models"
)

// SeedGuild inserts a guild with default settings
func SeedGuild(t *testing.T, db *database.DB, guildID int64) {
	t.Helper()
	err := db.WithTransaction(context.Background(), func(tx pgx.Tx) error {
		_, err := tx.Exec(context.Background(),
			`INSERT INTO guilds (guild_id) VALUES ($1) ON CONFLICT (guild_id) DO NOTHING`, guildID)
		return err
	})
	require.NoError(t, err)
}

// BackdateLedgerEntry moves the logged_at of an entry into the past
func BackdateLedgerEntry(t *testing.T, db *database.DB, kind models.LedgerKind, guildID, userID int64, index int, loggedAt time.Time) {
	t.Helper()
	query := fmt.Sprintf(`UPDATE %s SET logged_at = $4 WHERE guild_id = $1 AND user_id = $2 AND idx = $3`, kind.Table())
	tag, err := db.Exec(context.Background(), query, guildID, userID, index, loggedAt)
	require.NoError(t, err)
	require.EqualValues(t, 1, tag.RowsAffected(), "ledger entry %d not found", index)
}

// MinorWarning returns a warning payload with the given reason
func MinorWarning(reason string) models.LedgerPayload {
	return models.LedgerPayload{Reason: reason}
}

// MajorWarning returns a major warning payload with the given reason
func MajorWarning(reason string) models.LedgerPayload {
	return models.LedgerPayload{Major: true, Reason: reason}
}

// ModerationAction returns a moderation payload for action
func ModerationAction(action models.ModerationAction, reason string) models.LedgerPayload {
	return models.LedgerPayload{Action: action, Reason: reason}
}

package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"yinbot/database"
	"yinbot/models"
)

// ChannelSetRepository stores feature channel memberships, one table per kind
type ChannelSetRepository struct {
	q Queryable
}

// NewChannelSetRepository creates a new channel set repository
func NewChannelSetRepository(db *database.DB) *ChannelSetRepository {
	return &ChannelSetRepository{q: db.Pool}
}

func newChannelSetRepositoryWithTx(tx Queryable) *ChannelSetRepository {
	return &ChannelSetRepository{q: tx}
}

// Insert adds the channel to the kind's set. Returns false if it was already a member.
// channel_id is unique per kind across guilds, so a channel held by another
// guild also reports false and stays out of this guild's set. Channel IDs are
// snowflakes owned by a single guild, so that case does not arise from Discord.
func (r *ChannelSetRepository) Insert(ctx context.Context, guildID int64, kind models.ChannelKind, channelID int64) (bool, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (guild_id, channel_id)
		VALUES ($1, $2)
		ON CONFLICT (channel_id) DO NOTHING
	`, kind.Table())

	result, err := r.q.Exec(ctx, query, guildID, channelID)
	if err != nil {
		return false, fmt.Errorf("failed to add channel %d to %s: %w", channelID, kind, err)
	}

	return result.RowsAffected() == 1, nil
}

// Delete removes the channel from the kind's set. Returns false if it was not a member.
func (r *ChannelSetRepository) Delete(ctx context.Context, guildID int64, kind models.ChannelKind, channelID int64) (bool, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE guild_id = $1 AND channel_id = $2`, kind.Table())

	result, err := r.q.Exec(ctx, query, guildID, channelID)
	if err != nil {
		return false, fmt.Errorf("failed to remove channel %d from %s: %w", channelID, kind, err)
	}

	return result.RowsAffected() > 0, nil
}

// Count returns the number of channels in the guild's set
func (r *ChannelSetRepository) Count(ctx context.Context, guildID int64, kind models.ChannelKind) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE guild_id = $1`, kind.Table())

	var count int
	if err := r.q.QueryRow(ctx, query, guildID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count %s channels for guild %d: %w", kind, guildID, err)
	}

	return count, nil
}

// List returns the channels in the guild's set
func (r *ChannelSetRepository) List(ctx context.Context, guildID int64, kind models.ChannelKind) ([]int64, error) {
	query := fmt.Sprintf(`SELECT channel_id FROM %s WHERE guild_id = $1 ORDER BY channel_id`, kind.Table())

	return r.collectIDs(ctx, kind, query, guildID)
}

// ListAll returns the channels in the kind's set across every guild
func (r *ChannelSetRepository) ListAll(ctx context.Context, kind models.ChannelKind) ([]int64, error) {
	query := fmt.Sprintf(`SELECT channel_id FROM %s ORDER BY channel_id`, kind.Table())

	return r.collectIDs(ctx, kind, query)
}

func (r *ChannelSetRepository) collectIDs(ctx context.Context, kind models.ChannelKind, query string, args ...any) ([]int64, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s channels: %w", kind, err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s channels: %w", kind, err)
	}

	return ids, nil
}

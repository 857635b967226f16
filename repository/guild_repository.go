package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"yinbot/database"
	"yinbot/models"
)

const guildColumns = `
	guild_id, prefix,
	modlog_enabled, logging_enabled, voice_logging, welcome_enabled, blacklist_enabled,
	invites_allowed, voice_enabled, warnings_dm,
	welcome_message, ban_footer, kick_footer, created_at`

// GuildRepository implements the GuildRepository interface
type GuildRepository struct {
	q Queryable
}

// NewGuildRepository creates a new guild repository
func NewGuildRepository(db *database.DB) *GuildRepository {
	return &GuildRepository{q: db.Pool}
}

// newGuildRepositoryWithTx creates a new guild repository with a transaction
func newGuildRepositoryWithTx(tx Queryable) *GuildRepository {
	return &GuildRepository{q: tx}
}

// Create inserts the guild with default settings. Returns false if it already existed.
func (r *GuildRepository) Create(ctx context.Context, guildID int64, prefix string) (bool, error) {
	query := `
		INSERT INTO guilds (guild_id, prefix)
		VALUES ($1, $2)
		ON CONFLICT (guild_id) DO NOTHING
	`

	result, err := r.q.Exec(ctx, query, guildID, prefix)
	if err != nil {
		return false, fmt.Errorf("failed to create guild %d: %w", guildID, err)
	}

	return result.RowsAffected() == 1, nil
}

// Lock takes a row lock on the guild for the rest of the transaction.
// Returns false if the guild is unknown.
func (r *GuildRepository) Lock(ctx context.Context, guildID int64) (bool, error) {
	var id int64
	err := r.q.QueryRow(ctx, `SELECT guild_id FROM guilds WHERE guild_id = $1 FOR UPDATE`, guildID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to lock guild %d: %w", guildID, err)
	}
	return true, nil
}

// Get retrieves a guild's settings. Returns nil if the guild is unknown.
func (r *GuildRepository) Get(ctx context.Context, guildID int64) (*models.GuildSettings, error) {
	query := `SELECT ` + guildColumns + ` FROM guilds WHERE guild_id = $1`

	settings, err := scanGuild(r.q.QueryRow(ctx, query, guildID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get guild %d: %w", guildID, err)
	}

	return settings, nil
}

// GetAll returns the settings of every known guild
func (r *GuildRepository) GetAll(ctx context.Context) ([]*models.GuildSettings, error) {
	query := `SELECT ` + guildColumns + ` FROM guilds ORDER BY guild_id`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query guilds: %w", err)
	}
	defer rows.Close()

	var guilds []*models.GuildSettings
	for rows.Next() {
		settings, err := scanGuild(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan guild: %w", err)
		}
		guilds = append(guilds, settings)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating guilds: %w", err)
	}

	return guilds, nil
}

// SetFlag stores the derived enabled flag for a channel kind
func (r *GuildRepository) SetFlag(ctx context.Context, guildID int64, kind models.ChannelKind, enabled bool) error {
	return r.set(ctx, guildID, kind.FlagColumn(), enabled)
}

// SetPrefix updates the command prefix
func (r *GuildRepository) SetPrefix(ctx context.Context, guildID int64, prefix string) error {
	return r.set(ctx, guildID, "prefix", prefix)
}

// SetInvitesAllowed updates whether invite links may be posted
func (r *GuildRepository) SetInvitesAllowed(ctx context.Context, guildID int64, allowed bool) error {
	return r.set(ctx, guildID, "invites_allowed", allowed)
}

// SetVoiceEnabled updates whether voice roles are handed out
func (r *GuildRepository) SetVoiceEnabled(ctx context.Context, guildID int64, enabled bool) error {
	return r.set(ctx, guildID, "voice_enabled", enabled)
}

// SetWarningsDM updates whether warned users receive a direct message
func (r *GuildRepository) SetWarningsDM(ctx context.Context, guildID int64, enabled bool) error {
	return r.set(ctx, guildID, "warnings_dm", enabled)
}

// SetWelcomeMessage updates the welcome message, nil clears it
func (r *GuildRepository) SetWelcomeMessage(ctx context.Context, guildID int64, message *string) error {
	return r.set(ctx, guildID, "welcome_message", message)
}

// SetBanFooter updates the footer appended to ban notices, nil clears it
func (r *GuildRepository) SetBanFooter(ctx context.Context, guildID int64, footer *string) error {
	return r.set(ctx, guildID, "ban_footer", footer)
}

// SetKickFooter updates the footer appended to kick notices, nil clears it
func (r *GuildRepository) SetKickFooter(ctx context.Context, guildID int64, footer *string) error {
	return r.set(ctx, guildID, "kick_footer", footer)
}

// set updates a single column. column is never user input.
func (r *GuildRepository) set(ctx context.Context, guildID int64, column string, value any) error {
	query := fmt.Sprintf(`UPDATE guilds SET %s = $2 WHERE guild_id = $1`, column)

	result, err := r.q.Exec(ctx, query, guildID, value)
	if err != nil {
		return fmt.Errorf("failed to update %s for guild %d: %w", column, guildID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("guild %d not found", guildID)
	}

	return nil
}

func scanGuild(row pgx.Row) (*models.GuildSettings, error) {
	var s models.GuildSettings
	err := row.Scan(
		&s.GuildID,
		&s.Prefix,
		&s.ModlogEnabled,
		&s.LoggingEnabled,
		&s.VoiceLogging,
		&s.WelcomeEnabled,
		&s.BlacklistEnabled,
		&s.InvitesAllowed,
		&s.VoiceEnabled,
		&s.WarningsDM,
		&s.WelcomeMessage,
		&s.BanFooter,
		&s.KickFooter,
		&s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"yinbot/database"
	"yinbot/models"
)

// RoleAssociationRepository stores voice channel roles and role greetings
type RoleAssociationRepository struct {
	q Queryable
}

// NewRoleAssociationRepository creates a new role association repository
func NewRoleAssociationRepository(db *database.DB) *RoleAssociationRepository {
	return &RoleAssociationRepository{q: db.Pool}
}

func newRoleAssociationRepositoryWithTx(tx Queryable) *RoleAssociationRepository {
	return &RoleAssociationRepository{q: tx}
}

// InsertVoiceRole links a role to a voice channel. Existing links are left as is.
func (r *RoleAssociationRepository) InsertVoiceRole(ctx context.Context, guildID, channelID, roleID int64) error {
	query := `
		INSERT INTO voice_roles (guild_id, channel_id, role_id)
		VALUES ($1, $2, $3)
		ON CONFLICT (role_id, channel_id) DO NOTHING
	`

	if _, err := r.q.Exec(ctx, query, guildID, channelID, roleID); err != nil {
		return fmt.Errorf("failed to associate role %d with channel %d: %w", roleID, channelID, err)
	}

	return nil
}

// DeleteVoiceRole unlinks a role from a voice channel. Returns false if they were not linked.
func (r *RoleAssociationRepository) DeleteVoiceRole(ctx context.Context, guildID, channelID, roleID int64) (bool, error) {
	query := `DELETE FROM voice_roles WHERE guild_id = $1 AND channel_id = $2 AND role_id = $3`

	result, err := r.q.Exec(ctx, query, guildID, channelID, roleID)
	if err != nil {
		return false, fmt.Errorf("failed to disassociate role %d from channel %d: %w", roleID, channelID, err)
	}

	return result.RowsAffected() > 0, nil
}

// RolesForChannel returns the roles linked to a voice channel
func (r *RoleAssociationRepository) RolesForChannel(ctx context.Context, guildID, channelID int64) ([]int64, error) {
	query := `SELECT role_id FROM voice_roles WHERE guild_id = $1 AND channel_id = $2 ORDER BY role_id`

	return r.collectIDs(ctx, query, guildID, channelID)
}

// ChannelsForRole returns the voice channels a role is linked to
func (r *RoleAssociationRepository) ChannelsForRole(ctx context.Context, guildID, roleID int64) ([]int64, error) {
	query := `SELECT channel_id FROM voice_roles WHERE guild_id = $1 AND role_id = $2 ORDER BY channel_id`

	return r.collectIDs(ctx, query, guildID, roleID)
}

// DeleteVoiceRolesByGuild removes every voice role link of a guild
func (r *RoleAssociationRepository) DeleteVoiceRolesByGuild(ctx context.Context, guildID int64) (int64, error) {
	result, err := r.q.Exec(ctx, `DELETE FROM voice_roles WHERE guild_id = $1`, guildID)
	if err != nil {
		return 0, fmt.Errorf("failed to purge voice roles for guild %d: %w", guildID, err)
	}

	return result.RowsAffected(), nil
}

// UpsertGreeting stores the greeting for (channel, role), replacing any previous text
func (r *RoleAssociationRepository) UpsertGreeting(ctx context.Context, greeting *models.RoleGreeting) error {
	query := `
		INSERT INTO role_greetings (guild_id, channel_id, role_id, message)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (channel_id, role_id) DO UPDATE SET message = EXCLUDED.message
	`

	_, err := r.q.Exec(ctx, query, greeting.GuildID, greeting.ChannelID, greeting.RoleID, greeting.Message)
	if err != nil {
		return fmt.Errorf("failed to set greeting for role %d in channel %d: %w", greeting.RoleID, greeting.ChannelID, err)
	}

	return nil
}

// GetGreeting returns the greeting for (channel, role), or nil when none is set
func (r *RoleAssociationRepository) GetGreeting(ctx context.Context, guildID, channelID, roleID int64) (*models.RoleGreeting, error) {
	query := `
		SELECT guild_id, channel_id, role_id, message
		FROM role_greetings
		WHERE guild_id = $1 AND channel_id = $2 AND role_id = $3
	`

	var g models.RoleGreeting
	err := r.q.QueryRow(ctx, query, guildID, channelID, roleID).Scan(&g.GuildID, &g.ChannelID, &g.RoleID, &g.Message)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get greeting for role %d in channel %d: %w", roleID, channelID, err)
	}

	return &g, nil
}

// DeleteGreeting removes the greeting for (channel, role). Returns false if none was set.
func (r *RoleAssociationRepository) DeleteGreeting(ctx context.Context, guildID, channelID, roleID int64) (bool, error) {
	query := `DELETE FROM role_greetings WHERE guild_id = $1 AND channel_id = $2 AND role_id = $3`

	result, err := r.q.Exec(ctx, query, guildID, channelID, roleID)
	if err != nil {
		return false, fmt.Errorf("failed to delete greeting for role %d in channel %d: %w", roleID, channelID, err)
	}

	return result.RowsAffected() > 0, nil
}

// GreetingsForRole returns every greeting posted when the role is granted
func (r *RoleAssociationRepository) GreetingsForRole(ctx context.Context, guildID, roleID int64) ([]*models.RoleGreeting, error) {
	query := `
		SELECT guild_id, channel_id, role_id, message
		FROM role_greetings
		WHERE guild_id = $1 AND role_id = $2
		ORDER BY channel_id
	`

	rows, err := r.q.Query(ctx, query, guildID, roleID)
	if err != nil {
		return nil, fmt.Errorf("failed to query greetings for role %d: %w", roleID, err)
	}

	greetings, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[models.RoleGreeting])
	if err != nil {
		return nil, fmt.Errorf("failed to scan greetings for role %d: %w", roleID, err)
	}

	return greetings, nil
}

// DeleteGreetingsByGuild removes every greeting of a guild
func (r *RoleAssociationRepository) DeleteGreetingsByGuild(ctx context.Context, guildID int64) (int64, error) {
	result, err := r.q.Exec(ctx, `DELETE FROM role_greetings WHERE guild_id = $1`, guildID)
	if err != nil {
		return 0, fmt.Errorf("failed to purge greetings for guild %d: %w", guildID, err)
	}

	return result.RowsAffected(), nil
}

func (r *RoleAssociationRepository) collectIDs(ctx context.Context, query string, args ...any) ([]int64, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query role associations: %w", err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("failed to scan role associations: %w", err)
	}

	return ids, nil
}

package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"yinbot/database"
	"yinbot/models"
)

// RoleSetRepository stores the assignable and autoassign role sets
type RoleSetRepository struct {
	q Queryable
}

// NewRoleSetRepository creates a new role set repository
func NewRoleSetRepository(db *database.DB) *RoleSetRepository {
	return &RoleSetRepository{q: db.Pool}
}

func newRoleSetRepositoryWithTx(tx Queryable) *RoleSetRepository {
	return &RoleSetRepository{q: tx}
}

// Insert adds the role to the set. Returns false if it was already a member.
func (r *RoleSetRepository) Insert(ctx context.Context, guildID int64, kind models.RoleSetKind, roleID int64) (bool, error) {
	query := fmt.Sprintf(`
		INSERT INTO %s (guild_id, role_id)
		VALUES ($1, $2)
		ON CONFLICT (role_id) DO NOTHING
	`, kind.Table())

	result, err := r.q.Exec(ctx, query, guildID, roleID)
	if err != nil {
		return false, fmt.Errorf("failed to add role %d to %s roles: %w", roleID, kind, err)
	}

	return result.RowsAffected() == 1, nil
}

// Delete removes the role from the set. Returns false if it was not a member.
func (r *RoleSetRepository) Delete(ctx context.Context, guildID int64, kind models.RoleSetKind, roleID int64) (bool, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE guild_id = $1 AND role_id = $2`, kind.Table())

	result, err := r.q.Exec(ctx, query, guildID, roleID)
	if err != nil {
		return false, fmt.Errorf("failed to remove role %d from %s roles: %w", roleID, kind, err)
	}

	return result.RowsAffected() > 0, nil
}

// Contains reports whether the role is in the set
func (r *RoleSetRepository) Contains(ctx context.Context, guildID int64, kind models.RoleSetKind, roleID int64) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE guild_id = $1 AND role_id = $2)`, kind.Table())

	var exists bool
	if err := r.q.QueryRow(ctx, query, guildID, roleID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check %s role %d: %w", kind, roleID, err)
	}

	return exists, nil
}

// List returns the roles in the guild's set
func (r *RoleSetRepository) List(ctx context.Context, guildID int64, kind models.RoleSetKind) ([]int64, error) {
	query := fmt.Sprintf(`SELECT role_id FROM %s WHERE guild_id = $1 ORDER BY role_id`, kind.Table())

	rows, err := r.q.Query(ctx, query, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s roles: %w", kind, err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s roles: %w", kind, err)
	}

	return ids, nil
}

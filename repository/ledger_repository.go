package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"yinbot/database"
	"yinbot/models"
)

// LedgerRepository stores one indexed per-(guild, user) ledger
type LedgerRepository struct {
	q    Queryable
	kind models.LedgerKind
}

// NewLedgerRepository creates a ledger repository for kind
func NewLedgerRepository(db *database.DB, kind models.LedgerKind) *LedgerRepository {
	return &LedgerRepository{q: db.Pool, kind: kind}
}

func newLedgerRepositoryWithTx(tx Queryable, kind models.LedgerKind) *LedgerRepository {
	return &LedgerRepository{q: tx, kind: kind}
}

// payloadColumn is the kind-specific column of the ledger table
func (r *LedgerRepository) payloadColumn() string {
	if r.kind == models.LedgerModeration {
		return "action"
	}
	return "major"
}

func (r *LedgerRepository) payloadValue(p models.LedgerPayload) any {
	if r.kind == models.LedgerModeration {
		return int16(p.Action)
	}
	return p.Major
}

func (r *LedgerRepository) selectColumns() string {
	return "guild_id, user_id, idx, author_id, " + r.payloadColumn() + ", reason, logged_at"
}

// Append allocates the next index for (guild, user) and inserts the entry.
// Must run inside a transaction: the advisory lock is held until commit so
// concurrent appends for the same user are serialized.
func (r *LedgerRepository) Append(ctx context.Context, guildID, userID, authorID int64, payload models.LedgerPayload) (int, error) {
	lockKey := fmt.Sprintf("%s:%d:%d", r.kind.Table(), guildID, userID)
	if _, err := r.q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, lockKey); err != nil {
		return 0, fmt.Errorf("failed to lock %s ledger for user %d: %w", r.kind, userID, err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (guild_id, user_id, idx, author_id, %s, reason)
		SELECT $1, $2, COALESCE(MAX(idx), 0) + 1, $3, $4, $5
		FROM %s
		WHERE guild_id = $1 AND user_id = $2
		RETURNING idx
	`, r.kind.Table(), r.payloadColumn(), r.kind.Table())

	var index int
	err := r.q.QueryRow(ctx, query, guildID, userID, authorID, r.payloadValue(payload), payload.Reason).Scan(&index)
	if err != nil {
		return 0, fmt.Errorf("failed to append %s entry for user %d: %w", r.kind, userID, err)
	}

	return index, nil
}

// Count returns the number of entries for (guild, user)
func (r *LedgerRepository) Count(ctx context.Context, guildID, userID int64) (int, error) {
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE guild_id = $1 AND user_id = $2`, r.kind.Table())

	var count int
	if err := r.q.QueryRow(ctx, query, guildID, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count %s entries for user %d: %w", r.kind, userID, err)
	}

	return count, nil
}

// Get retrieves a single entry. Returns nil if no entry has that index.
func (r *LedgerRepository) Get(ctx context.Context, guildID, userID int64, index int) (*models.LedgerEntry, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE guild_id = $1 AND user_id = $2 AND idx = $3
	`, r.selectColumns(), r.kind.Table())

	entry, err := r.scan(r.q.QueryRow(ctx, query, guildID, userID, index))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s entry %d for user %d: %w", r.kind, index, userID, err)
	}

	return entry, nil
}

// Update overwrites the mutable fields of an entry. Returns false if no entry has that index.
func (r *LedgerRepository) Update(ctx context.Context, guildID, userID int64, index int, payload models.LedgerPayload) (bool, error) {
	query := fmt.Sprintf(`
		UPDATE %s SET %s = $4, reason = $5
		WHERE guild_id = $1 AND user_id = $2 AND idx = $3
	`, r.kind.Table(), r.payloadColumn())

	result, err := r.q.Exec(ctx, query, guildID, userID, index, r.payloadValue(payload), payload.Reason)
	if err != nil {
		return false, fmt.Errorf("failed to update %s entry %d for user %d: %w", r.kind, index, userID, err)
	}

	return result.RowsAffected() == 1, nil
}

// Delete removes a single entry. Returns false if no entry has that index.
func (r *LedgerRepository) Delete(ctx context.Context, guildID, userID int64, index int) (bool, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE guild_id = $1 AND user_id = $2 AND idx = $3`, r.kind.Table())

	result, err := r.q.Exec(ctx, query, guildID, userID, index)
	if err != nil {
		return false, fmt.Errorf("failed to delete %s entry %d for user %d: %w", r.kind, index, userID, err)
	}

	return result.RowsAffected() == 1, nil
}

// List returns the entries for (guild, user) ordered by index. A zero since returns every entry.
func (r *LedgerRepository) List(ctx context.Context, guildID, userID int64, since time.Time) ([]*models.LedgerEntry, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE guild_id = $1 AND user_id = $2 AND logged_at >= $3
		ORDER BY idx ASC
	`, r.selectColumns(), r.kind.Table())

	rows, err := r.q.Query(ctx, query, guildID, userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s entries for user %d: %w", r.kind, userID, err)
	}
	defer rows.Close()

	var entries []*models.LedgerEntry
	for rows.Next() {
		entry, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s entry: %w", r.kind, err)
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s entries: %w", r.kind, err)
	}

	return entries, nil
}

func (r *LedgerRepository) scan(row pgx.Row) (*models.LedgerEntry, error) {
	entry := &models.LedgerEntry{Kind: r.kind}

	var err error
	if r.kind == models.LedgerModeration {
		var action int16
		err = row.Scan(&entry.GuildID, &entry.UserID, &entry.Index, &entry.AuthorID, &action, &entry.Reason, &entry.LoggedAt)
		entry.Action = models.ModerationAction(action)
	} else {
		err = row.Scan(&entry.GuildID, &entry.UserID, &entry.Index, &entry.AuthorID, &entry.Major, &entry.Reason, &entry.LoggedAt)
	}
	if err != nil {
		return nil, err
	}

	return entry, nil
}

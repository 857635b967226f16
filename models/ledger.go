package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// LedgerKind selects one of the two indexed per-user ledgers
type LedgerKind string

const (
	LedgerModeration LedgerKind = "moderation"
	LedgerWarning    LedgerKind = "warning"
)

// Table returns the table backing the ledger
func (k LedgerKind) Table() string {
	switch k {
	case LedgerModeration:
		return "moderation"
	case LedgerWarning:
		return "warnings"
	}
	panic(fmt.Sprintf("unknown ledger kind %q", string(k)))
}

// ModerationAction is the action recorded on a moderation ledger entry
type ModerationAction int16

const (
	ActionKick  ModerationAction = 1
	ActionBan   ModerationAction = 2
	ActionMisc  ModerationAction = 3
	ActionUnban ModerationAction = 4
)

// ParseModerationAction converts user input into a ModerationAction
func ParseModerationAction(s string) (ModerationAction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "kick":
		return ActionKick, nil
	case "ban":
		return ActionBan, nil
	case "unban":
		return ActionUnban, nil
	case "misc", "other":
		return ActionMisc, nil
	}
	return 0, fmt.Errorf("unknown moderation action %q", s)
}

// Valid reports whether the action is one of the known values
func (a ModerationAction) Valid() bool {
	return a >= ActionKick && a <= ActionUnban
}

func (a ModerationAction) String() string {
	switch a {
	case ActionKick:
		return "kick"
	case ActionBan:
		return "ban"
	case ActionUnban:
		return "unban"
	case ActionMisc:
		return "misc"
	}
	return fmt.Sprintf("action(%d)", int16(a))
}

// MaxReasonLength bounds the reason text in characters, matching reason VARCHAR(500)
const MaxReasonLength = 500

// LedgerPayload holds the mutable fields of a ledger entry.
// Action is only meaningful for the moderation ledger, Major only for warnings.
type LedgerPayload struct {
	Action ModerationAction
	Major  bool
	Reason string
}

// Validate checks the payload against the rules of the given ledger
func (p LedgerPayload) Validate(kind LedgerKind) error {
	if strings.TrimSpace(p.Reason) == "" {
		return fmt.Errorf("reason is required")
	}
	if utf8.RuneCountInString(p.Reason) > MaxReasonLength {
		return fmt.Errorf("reason must be at most %d characters", MaxReasonLength)
	}
	if kind == LedgerModeration && !p.Action.Valid() {
		return fmt.Errorf("invalid moderation action %d", p.Action)
	}
	return nil
}

// LedgerEntry is one indexed record of a moderation or warning ledger.
// Key is (GuildID, UserID, Index); indices are never renumbered.
type LedgerEntry struct {
	Kind     LedgerKind       `db:"-"`
	GuildID  int64            `db:"guild_id"`
	UserID   int64            `db:"user_id"`
	Index    int              `db:"idx"`
	AuthorID int64            `db:"author_id"`
	Action   ModerationAction `db:"action"`
	Major    bool             `db:"major"`
	Reason   string           `db:"reason"`
	LoggedAt time.Time        `db:"logged_at"`
}

// Payload returns the mutable fields of the entry
func (e *LedgerEntry) Payload() LedgerPayload {
	return LedgerPayload{Action: e.Action, Major: e.Major, Reason: e.Reason}
}

// Severity returns a short label for display
func (e *LedgerEntry) Severity() string {
	if e.Kind == LedgerModeration {
		return e.Action.String()
	}
	if e.Major {
		return "major"
	}
	return "minor"
}

package service

import (
	"context"
	"time"

	"github.com/samber/mo"

	"yinbot/events"
	"yinbot/models"
)

// GuildRepository defines the interface for guild settings rows
type GuildRepository interface {
	// Create inserts a guild with default settings, a no-op if it exists
	Create(ctx context.Context, guildID int64, prefix string) (bool, error)

	// Lock row-locks the guild until the transaction ends, false when unknown
	Lock(ctx context.Context, guildID int64) (bool, error)

	// Get returns nil when the guild is unknown
	Get(ctx context.Context, guildID int64) (*models.GuildSettings, error)
	GetAll(ctx context.Context) ([]*models.GuildSettings, error)

	SetFlag(ctx context.Context, guildID int64, kind models.ChannelKind, enabled bool) error
	SetPrefix(ctx context.Context, guildID int64, prefix string) error
	SetInvitesAllowed(ctx context.Context, guildID int64, allowed bool) error
	SetVoiceEnabled(ctx context.Context, guildID int64, enabled bool) error
	SetWarningsDM(ctx context.Context, guildID int64, enabled bool) error
	SetWelcomeMessage(ctx context.Context, guildID int64, message *string) error
	SetBanFooter(ctx context.Context, guildID int64, footer *string) error
	SetKickFooter(ctx context.Context, guildID int64, footer *string) error
}

// ChannelSetRepository defines the interface for feature channel memberships
type ChannelSetRepository interface {
	Insert(ctx context.Context, guildID int64, kind models.ChannelKind, channelID int64) (bool, error)
	Delete(ctx context.Context, guildID int64, kind models.ChannelKind, channelID int64) (bool, error)
	Count(ctx context.Context, guildID int64, kind models.ChannelKind) (int, error)
	List(ctx context.Context, guildID int64, kind models.ChannelKind) ([]int64, error)
	ListAll(ctx context.Context, kind models.ChannelKind) ([]int64, error)
}

// LedgerRepository defines the interface for one indexed ledger
type LedgerRepository interface {
	// Append allocates max(index)+1 for (guild, user) and inserts the entry
	Append(ctx context.Context, guildID, userID, authorID int64, payload models.LedgerPayload) (int, error)
	Count(ctx context.Context, guildID, userID int64) (int, error)

	// Get returns nil when no entry has the index
	Get(ctx context.Context, guildID, userID int64, index int) (*models.LedgerEntry, error)
	Update(ctx context.Context, guildID, userID int64, index int, payload models.LedgerPayload) (bool, error)
	Delete(ctx context.Context, guildID, userID int64, index int) (bool, error)

	// List returns entries logged at or after since, ordered by index
	List(ctx context.Context, guildID, userID int64, since time.Time) ([]*models.LedgerEntry, error)
}

// RoleAssociationRepository defines the interface for voice roles and role greetings
type RoleAssociationRepository interface {
	InsertVoiceRole(ctx context.Context, guildID, channelID, roleID int64) error
	DeleteVoiceRole(ctx context.Context, guildID, channelID, roleID int64) (bool, error)
	RolesForChannel(ctx context.Context, guildID, channelID int64) ([]int64, error)
	ChannelsForRole(ctx context.Context, guildID, roleID int64) ([]int64, error)
	DeleteVoiceRolesByGuild(ctx context.Context, guildID int64) (int64, error)

	UpsertGreeting(ctx context.Context, greeting *models.RoleGreeting) error
	GetGreeting(ctx context.Context, guildID, channelID, roleID int64) (*models.RoleGreeting, error)
	DeleteGreeting(ctx context.Context, guildID, channelID, roleID int64) (bool, error)
	GreetingsForRole(ctx context.Context, guildID, roleID int64) ([]*models.RoleGreeting, error)
	DeleteGreetingsByGuild(ctx context.Context, guildID int64) (int64, error)
}

// RoleSetRepository defines the interface for the assignable and autoassign role sets
type RoleSetRepository interface {
	Insert(ctx context.Context, guildID int64, kind models.RoleSetKind, roleID int64) (bool, error)
	Delete(ctx context.Context, guildID int64, kind models.RoleSetKind, roleID int64) (bool, error)
	Contains(ctx context.Context, guildID int64, kind models.RoleSetKind, roleID int64) (bool, error)
	List(ctx context.Context, guildID int64, kind models.RoleSetKind) ([]int64, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new read-write transaction
	Begin(ctx context.Context) error

	// BeginSnapshot starts a read-only transaction with a single consistent snapshot
	BeginSnapshot(ctx context.Context) error

	// Commit commits the transaction and flushes pending events
	Commit() error

	// Rollback rolls back the transaction and discards pending events
	Rollback() error

	GuildRepository() GuildRepository
	ChannelSetRepository() ChannelSetRepository
	LedgerRepository(kind models.LedgerKind) LedgerRepository
	RoleAssociationRepository() RoleAssociationRepository
	RoleSetRepository() RoleSetRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// GuildService defines guild lifecycle and scalar settings operations.
// Every setter writes the store first and patches the settings cache only on success.
type GuildService interface {
	// Join creates the guild if needed and reloads it into the cache
	Join(ctx context.Context, guildID int64) (created bool, err error)

	SetPrefix(ctx context.Context, guildID int64, prefix string) error
	SetInvitesAllowed(ctx context.Context, guildID int64, allowed bool) error
	SetVoiceEnabled(ctx context.Context, guildID int64, enabled bool) error
	SetWarningsDM(ctx context.Context, guildID int64, enabled bool) error
	SetWelcomeMessage(ctx context.Context, guildID int64, message *string) error
	SetBanFooter(ctx context.Context, guildID int64, footer *string) error
	SetKickFooter(ctx context.Context, guildID int64, footer *string) error
}

// ChannelSetService defines idempotent feature channel membership with derived flags
type ChannelSetService interface {
	Add(ctx context.Context, guildID int64, kind models.ChannelKind, channelID int64) (bool, error)

	// Remove returns ErrNotFound when the channel is not a member
	Remove(ctx context.Context, guildID int64, kind models.ChannelKind, channelID int64) (bool, error)

	List(ctx context.Context, guildID int64, kind models.ChannelKind) ([]int64, error)
	ListAll(ctx context.Context, kind models.ChannelKind) ([]int64, error)

	// RemoveEverywhere drops the channel from every kind, returning the kinds it was in
	RemoveEverywhere(ctx context.Context, guildID, channelID int64) ([]models.ChannelKind, error)
}

// LedgerService defines the operations of one indexed ledger
type LedgerService interface {
	Kind() models.LedgerKind
	Append(ctx context.Context, guildID, userID, authorID int64, payload models.LedgerPayload) (int, error)
	Count(ctx context.Context, guildID, userID int64) (int, error)
	Get(ctx context.Context, guildID, userID int64, index int) (mo.Option[*models.LedgerEntry], error)

	// Edit returns the entry count after the edit, or ErrNotFound for an unknown index
	Edit(ctx context.Context, guildID, userID int64, index int, payload models.LedgerPayload) (int, error)

	// Delete reports false when no entry had the index
	Delete(ctx context.Context, guildID, userID int64, index int) (bool, error)
	List(ctx context.Context, guildID, userID int64, recent bool) ([]*models.LedgerEntry, error)
}

// RoleAssociationService defines voice role and role greeting associations
type RoleAssociationService interface {
	Associate(ctx context.Context, guildID, channelID, roleID int64) (bool, error)

	// Disassociate returns ErrNotFound when the pair was not linked
	Disassociate(ctx context.Context, guildID, channelID, roleID int64) (bool, error)
	RolesForChannel(ctx context.Context, guildID, channelID int64) ([]int64, error)
	ChannelsForRole(ctx context.Context, guildID, roleID int64) ([]int64, error)
	Purge(ctx context.Context, guildID int64) error

	SetGreeting(ctx context.Context, guildID, channelID, roleID int64, message string) error
	GetGreeting(ctx context.Context, guildID, channelID, roleID int64) (mo.Option[string], error)
	DeleteGreeting(ctx context.Context, guildID, channelID, roleID int64) (bool, error)
	GreetingsForRole(ctx context.Context, guildID, roleID int64) ([]*models.RoleGreeting, error)
}

// RoleSetService defines the assignable and autoassign role sets
type RoleSetService interface {
	Add(ctx context.Context, guildID int64, kind models.RoleSetKind, roleID int64) (bool, error)

	// Remove returns ErrNotFound when the role is not a member
	Remove(ctx context.Context, guildID int64, kind models.RoleSetKind, roleID int64) (bool, error)
	Contains(ctx context.Context, guildID int64, kind models.RoleSetKind, roleID int64) (bool, error)
	List(ctx context.Context, guildID int64, kind models.RoleSetKind) ([]int64, error)
}

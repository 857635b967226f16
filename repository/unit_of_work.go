package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"yinbot/database"
	"yinbot/events"
	"yinbot/models"
	"yinbot/service"
)

// snapshotTxOptions gives every statement of the transaction the same view of the database
var snapshotTxOptions = pgx.TxOptions{
	IsoLevel:   pgx.RepeatableRead,
	AccessMode: pgx.ReadOnly,
}

// unitOfWork implements the UnitOfWork interface
type unitOfWork struct {
	db               *database.DB
	tx               pgx.Tx
	ctx              context.Context
	transactionalBus *events.TransactionalBus
	guildRepo        service.GuildRepository
	channelSetRepo   service.ChannelSetRepository
	moderationRepo   service.LedgerRepository
	warningRepo      service.LedgerRepository
	roleAssocRepo    service.RoleAssociationRepository
	roleSetRepo      service.RoleSetRepository
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory
func NewUnitOfWorkFactory(db *database.DB, eventBus *events.Bus) service.UnitOfWorkFactory {
	return &unitOfWorkFactory{
		db:       db,
		eventBus: eventBus,
	}
}

type unitOfWorkFactory struct {
	db       *database.DB
	eventBus *events.Bus
}

func (f *unitOfWorkFactory) Create() service.UnitOfWork {
	return &unitOfWork{
		db:               f.db,
		transactionalBus: events.NewTransactionalBus(f.eventBus),
	}
}

// Begin starts a new transaction
func (u *unitOfWork) Begin(ctx context.Context) error {
	return u.begin(ctx, pgx.TxOptions{})
}

// BeginSnapshot starts a read-only repeatable-read transaction
func (u *unitOfWork) BeginSnapshot(ctx context.Context) error {
	return u.begin(ctx, snapshotTxOptions)
}

func (u *unitOfWork) begin(ctx context.Context, opts pgx.TxOptions) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.ctx = ctx

	u.guildRepo = newGuildRepositoryWithTx(tx)
	u.channelSetRepo = newChannelSetRepositoryWithTx(tx)
	u.moderationRepo = newLedgerRepositoryWithTx(tx, models.LedgerModeration)
	u.warningRepo = newLedgerRepositoryWithTx(tx, models.LedgerWarning)
	u.roleAssocRepo = newRoleAssociationRepositoryWithTx(tx)
	u.roleSetRepo = newRoleSetRepositoryWithTx(tx)

	return nil
}

// Commit commits the transaction
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	err := u.tx.Commit(u.ctx)
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	u.tx = nil

	// Flush pending events after successful commit
	if u.transactionalBus != nil {
		u.transactionalBus.Flush(u.ctx)
	}

	return nil
}

// Rollback rolls back the transaction
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil // Nothing to rollback
	}

	err := u.tx.Rollback(u.ctx)
	if err != nil && err != pgx.ErrTxClosed {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}

	u.tx = nil

	if u.transactionalBus != nil {
		u.transactionalBus.Discard()
	}

	return nil
}

// GuildRepository returns the guild repository for this unit of work
func (u *unitOfWork) GuildRepository() service.GuildRepository {
	if u.guildRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.guildRepo
}

// ChannelSetRepository returns the channel set repository for this unit of work
func (u *unitOfWork) ChannelSetRepository() service.ChannelSetRepository {
	if u.channelSetRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.channelSetRepo
}

// LedgerRepository returns the repository of the given ledger for this unit of work
func (u *unitOfWork) LedgerRepository(kind models.LedgerKind) service.LedgerRepository {
	if u.moderationRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	if kind == models.LedgerModeration {
		return u.moderationRepo
	}
	return u.warningRepo
}

// RoleAssociationRepository returns the role association repository for this unit of work
func (u *unitOfWork) RoleAssociationRepository() service.RoleAssociationRepository {
	if u.roleAssocRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.roleAssocRepo
}

// RoleSetRepository returns the role set repository for this unit of work
func (u *unitOfWork) RoleSetRepository() service.RoleSetRepository {
	if u.roleSetRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.roleSetRepo
}

// EventBus returns the transactional event bus for this unit of work
func (u *unitOfWork) EventBus() service.EventPublisher {
	if u.transactionalBus == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.transactionalBus
}

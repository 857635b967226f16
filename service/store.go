package service

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"
)

// StoreConfig bounds every store call and supplies defaults for guilds created on demand
type StoreConfig struct {
	Timeout       time.Duration
	DefaultPrefix string
}

// store runs one operation per unit of work under the configured timeout
type store struct {
	uowFactory UnitOfWorkFactory
	cfg        StoreConfig
}

func newStore(uowFactory UnitOfWorkFactory, cfg StoreConfig) store {
	return store{uowFactory: uowFactory, cfg: cfg}
}

// write runs fn in a read-write transaction. ErrNotFound and ErrInvalidArgument
// from fn roll back and pass through, anything else becomes ErrQuery.
func (s store) write(ctx context.Context, op string, fields log.Fields, fn func(ctx context.Context, uow UnitOfWork) error) error {
	return s.run(ctx, op, fields, false, fn)
}

// read runs fn in a read-only snapshot transaction
func (s store) read(ctx context.Context, op string, fields log.Fields, fn func(ctx context.Context, uow UnitOfWork) error) error {
	return s.run(ctx, op, fields, true, fn)
}

func (s store) run(ctx context.Context, op string, fields log.Fields, readOnly bool, fn func(ctx context.Context, uow UnitOfWork) error) error {
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	uow := s.uowFactory.Create()
	begin := uow.Begin
	if readOnly {
		begin = uow.BeginSnapshot
	}
	if err := begin(ctx); err != nil {
		return queryError(op, fields, err)
	}
	defer uow.Rollback()

	if err := fn(ctx, uow); err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidArgument) {
			return err
		}
		return queryError(op, fields, err)
	}

	if err := uow.Commit(); err != nil {
		return queryError(op, fields, err)
	}

	return nil
}

// ensureGuild creates the guild row on first use so foreign keys hold
func (s store) ensureGuild(ctx context.Context, uow UnitOfWork, guildID int64) (bool, error) {
	return uow.GuildRepository().Create(ctx, guildID, s.cfg.DefaultPrefix)
}

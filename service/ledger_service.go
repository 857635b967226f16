package service

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/mo"
	log "github.com/sirupsen/logrus"

	"yinbot/events"
	"yinbot/models"
)

// ledgerService implements LedgerService for one ledger kind
type ledgerService struct {
	store        store
	kind         models.LedgerKind
	windowMonths int
	now          func() time.Time
}

// NewLedgerService creates a ledger service. windowMonths is the trailing
// window used by List when recent is requested.
func NewLedgerService(uowFactory UnitOfWorkFactory, kind models.LedgerKind, windowMonths int, cfg StoreConfig) LedgerService {
	return &ledgerService{
		store:        newStore(uowFactory, cfg),
		kind:         kind,
		windowMonths: windowMonths,
		now:          time.Now,
	}
}

func (s *ledgerService) Kind() models.LedgerKind {
	return s.kind
}

func (s *ledgerService) fields(guildID, userID int64) log.Fields {
	return log.Fields{"ledger": s.kind, "guild_id": guildID, "user_id": userID}
}

// Append records a new entry and returns its index
func (s *ledgerService) Append(ctx context.Context, guildID, userID, authorID int64, payload models.LedgerPayload) (int, error) {
	if err := payload.Validate(s.kind); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	var index int
	err := s.store.write(ctx, "append ledger entry", s.fields(guildID, userID), func(ctx context.Context, uow UnitOfWork) error {
		repo := uow.LedgerRepository(s.kind)

		var err error
		if index, err = repo.Append(ctx, guildID, userID, authorID, payload); err != nil {
			return err
		}

		count, err := repo.Count(ctx, guildID, userID)
		if err != nil {
			return err
		}

		uow.EventBus().Publish(events.LedgerEntryAppendedEvent{
			Ledger:   s.kind,
			GuildID:  guildID,
			UserID:   userID,
			AuthorID: authorID,
			Index:    index,
			Count:    count,
		})
		return nil
	})
	if err != nil {
		return 0, err
	}

	return index, nil
}

// Count returns the number of entries for the user
func (s *ledgerService) Count(ctx context.Context, guildID, userID int64) (int, error) {
	var count int

	err := s.store.read(ctx, "count ledger entries", s.fields(guildID, userID), func(ctx context.Context, uow UnitOfWork) error {
		var err error
		count, err = uow.LedgerRepository(s.kind).Count(ctx, guildID, userID)
		return err
	})
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Get returns the entry at index, None when there is none
func (s *ledgerService) Get(ctx context.Context, guildID, userID int64, index int) (mo.Option[*models.LedgerEntry], error) {
	var entry *models.LedgerEntry

	fields := s.fields(guildID, userID)
	fields["index"] = index
	err := s.store.read(ctx, "get ledger entry", fields, func(ctx context.Context, uow UnitOfWork) error {
		var err error
		entry, err = uow.LedgerRepository(s.kind).Get(ctx, guildID, userID, index)
		return err
	})
	if err != nil {
		return mo.None[*models.LedgerEntry](), err
	}

	if entry == nil {
		return mo.None[*models.LedgerEntry](), nil
	}
	return mo.Some(entry), nil
}

// Edit overwrites the entry at index and returns the user's entry count.
// An unknown index is ErrNotFound.
func (s *ledgerService) Edit(ctx context.Context, guildID, userID int64, index int, payload models.LedgerPayload) (int, error) {
	if err := payload.Validate(s.kind); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	var count int
	fields := s.fields(guildID, userID)
	fields["index"] = index
	err := s.store.write(ctx, "edit ledger entry", fields, func(ctx context.Context, uow UnitOfWork) error {
		repo := uow.LedgerRepository(s.kind)

		updated, err := repo.Update(ctx, guildID, userID, index, payload)
		if err != nil {
			return err
		}
		if !updated {
			return fmt.Errorf("%w: no %s entry %d for user %d", ErrNotFound, s.kind, index, userID)
		}

		if count, err = repo.Count(ctx, guildID, userID); err != nil {
			return err
		}

		uow.EventBus().Publish(events.LedgerEntryEditedEvent{
			Ledger:  s.kind,
			GuildID: guildID,
			UserID:  userID,
			Index:   index,
		})
		return nil
	})
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Delete removes the entry at index. Indices are never reused.
func (s *ledgerService) Delete(ctx context.Context, guildID, userID int64, index int) (bool, error) {
	var deleted bool

	fields := s.fields(guildID, userID)
	fields["index"] = index
	err := s.store.write(ctx, "delete ledger entry", fields, func(ctx context.Context, uow UnitOfWork) error {
		var err error
		if deleted, err = uow.LedgerRepository(s.kind).Delete(ctx, guildID, userID, index); err != nil {
			return err
		}

		if deleted {
			uow.EventBus().Publish(events.LedgerEntryDeletedEvent{
				Ledger:  s.kind,
				GuildID: guildID,
				UserID:  userID,
				Index:   index,
			})
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	return deleted, nil
}

// List returns the user's entries by index. With recent set only entries
// inside the ledger's trailing window are returned.
func (s *ledgerService) List(ctx context.Context, guildID, userID int64, recent bool) ([]*models.LedgerEntry, error) {
	var since time.Time
	if recent {
		since = s.now().AddDate(0, -s.windowMonths, 0)
	}

	var entries []*models.LedgerEntry
	err := s.store.read(ctx, "list ledger entries", s.fields(guildID, userID), func(ctx context.Context, uow UnitOfWork) error {
		var err error
		entries, err = uow.LedgerRepository(s.kind).List(ctx, guildID, userID, since)
		return err
	})
	if err != nil {
		return nil, err
	}

	return entries, nil
}

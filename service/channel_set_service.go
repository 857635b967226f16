package service

import (
	"context"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"

	"yinbot/events"
	"yinbot/models"
)

// channelSetService implements ChannelSetService for every channel kind.
// The set mutation and the derived flag are written in one transaction with
// the guild row locked, so concurrent add/remove cannot leave the flag stale.
// Mutations of one guild also hold an in-process lock from begin until the
// cache is patched, so cache patches land in commit order.
type channelSetService struct {
	store  store
	cache  *SettingsCache
	guilds guildLocks
}

// NewChannelSetService creates a new channel set service
func NewChannelSetService(uowFactory UnitOfWorkFactory, cache *SettingsCache, cfg StoreConfig) ChannelSetService {
	return &channelSetService{
		store: newStore(uowFactory, cfg),
		cache: cache,
	}
}

// guildLocks hands out one mutex per guild
type guildLocks struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func (l *guildLocks) lock(guildID int64) func() {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[int64]*sync.Mutex)
	}
	m, ok := l.locks[guildID]
	if !ok {
		m = new(sync.Mutex)
		l.locks[guildID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}

// Add puts the channel in the kind's set. Returns false if it already was a member.
func (s *channelSetService) Add(ctx context.Context, guildID int64, kind models.ChannelKind, channelID int64) (bool, error) {
	var added, enabled bool
	defer s.guilds.lock(guildID)()

	fields := log.Fields{"guild_id": guildID, "kind": kind, "channel_id": channelID}
	err := s.store.write(ctx, "add channel", fields, func(ctx context.Context, uow UnitOfWork) error {
		if _, err := s.store.ensureGuild(ctx, uow, guildID); err != nil {
			return err
		}
		if _, err := uow.GuildRepository().Lock(ctx, guildID); err != nil {
			return err
		}

		var err error
		if added, err = uow.ChannelSetRepository().Insert(ctx, guildID, kind, channelID); err != nil {
			return err
		}
		if !added {
			return nil
		}

		if enabled, err = syncFlag(ctx, uow, guildID, kind); err != nil {
			return err
		}

		uow.EventBus().Publish(events.ChannelSetChangedEvent{
			GuildID:   guildID,
			Kind:      kind,
			ChannelID: channelID,
			Added:     true,
			Enabled:   enabled,
		})
		return nil
	})
	if err != nil {
		return false, err
	}

	if added {
		s.cache.Patch(guildID, func(gs *models.GuildSettings) { gs.SetFlag(kind, enabled) })
		if kind == models.ChannelKindBlacklist {
			s.cache.AddBlacklisted(channelID)
		}
	}

	return added, nil
}

// Remove takes the channel out of the kind's set, ErrNotFound if it was not a member
func (s *channelSetService) Remove(ctx context.Context, guildID int64, kind models.ChannelKind, channelID int64) (bool, error) {
	var enabled bool
	defer s.guilds.lock(guildID)()

	fields := log.Fields{"guild_id": guildID, "kind": kind, "channel_id": channelID}
	err := s.store.write(ctx, "remove channel", fields, func(ctx context.Context, uow UnitOfWork) error {
		found, err := uow.GuildRepository().Lock(ctx, guildID)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("%w: channel %d is not a %s channel", ErrNotFound, channelID, kind)
		}

		removed, err := uow.ChannelSetRepository().Delete(ctx, guildID, kind, channelID)
		if err != nil {
			return err
		}
		if !removed {
			return fmt.Errorf("%w: channel %d is not a %s channel", ErrNotFound, channelID, kind)
		}

		if enabled, err = syncFlag(ctx, uow, guildID, kind); err != nil {
			return err
		}

		uow.EventBus().Publish(events.ChannelSetChangedEvent{
			GuildID:   guildID,
			Kind:      kind,
			ChannelID: channelID,
			Added:     false,
			Enabled:   enabled,
		})
		return nil
	})
	if err != nil {
		return false, err
	}

	s.cache.Patch(guildID, func(gs *models.GuildSettings) { gs.SetFlag(kind, enabled) })
	if kind == models.ChannelKindBlacklist {
		s.cache.RemoveBlacklisted(channelID)
	}

	return true, nil
}

// List returns the guild's channels of a kind
func (s *channelSetService) List(ctx context.Context, guildID int64, kind models.ChannelKind) ([]int64, error) {
	var channels []int64

	fields := log.Fields{"guild_id": guildID, "kind": kind}
	err := s.store.read(ctx, "list channels", fields, func(ctx context.Context, uow UnitOfWork) error {
		var err error
		channels, err = uow.ChannelSetRepository().List(ctx, guildID, kind)
		return err
	})
	if err != nil {
		return nil, err
	}

	return channels, nil
}

// ListAll returns the channels of a kind across every guild
func (s *channelSetService) ListAll(ctx context.Context, kind models.ChannelKind) ([]int64, error) {
	var channels []int64

	err := s.store.read(ctx, "list all channels", log.Fields{"kind": kind}, func(ctx context.Context, uow UnitOfWork) error {
		var err error
		channels, err = uow.ChannelSetRepository().ListAll(ctx, kind)
		return err
	})
	if err != nil {
		return nil, err
	}

	return channels, nil
}

// RemoveEverywhere drops a deleted channel from every set it was in
func (s *channelSetService) RemoveEverywhere(ctx context.Context, guildID, channelID int64) ([]models.ChannelKind, error) {
	var (
		removedFrom []models.ChannelKind
		flags       = make(map[models.ChannelKind]bool)
	)
	defer s.guilds.lock(guildID)()

	fields := log.Fields{"guild_id": guildID, "channel_id": channelID}
	err := s.store.write(ctx, "remove channel everywhere", fields, func(ctx context.Context, uow UnitOfWork) error {
		found, err := uow.GuildRepository().Lock(ctx, guildID)
		if err != nil || !found {
			return err
		}

		for _, kind := range models.AllChannelKinds {
			removed, err := uow.ChannelSetRepository().Delete(ctx, guildID, kind, channelID)
			if err != nil {
				return err
			}
			if !removed {
				continue
			}

			enabled, err := syncFlag(ctx, uow, guildID, kind)
			if err != nil {
				return err
			}
			flags[kind] = enabled
			removedFrom = append(removedFrom, kind)

			uow.EventBus().Publish(events.ChannelSetChangedEvent{
				GuildID:   guildID,
				Kind:      kind,
				ChannelID: channelID,
				Added:     false,
				Enabled:   enabled,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(removedFrom) > 0 {
		s.cache.Patch(guildID, func(gs *models.GuildSettings) {
			for kind, enabled := range flags {
				gs.SetFlag(kind, enabled)
			}
		})
	}
	if _, ok := flags[models.ChannelKindBlacklist]; ok {
		s.cache.RemoveBlacklisted(channelID)
	}

	return removedFrom, nil
}

// syncFlag stores enabled = (set is non-empty) and returns it
func syncFlag(ctx context.Context, uow UnitOfWork, guildID int64, kind models.ChannelKind) (bool, error) {
	count, err := uow.ChannelSetRepository().Count(ctx, guildID, kind)
	if err != nil {
		return false, err
	}

	enabled := count > 0
	if err := uow.GuildRepository().SetFlag(ctx, guildID, kind, enabled); err != nil {
		return false, err
	}
	return enabled, nil
}

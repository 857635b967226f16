package service

import (
	"context"
	"strings"
	"unicode/utf8"

	log "github.com/sirupsen/logrus"

	"yinbot/events"
	"yinbot/models"
)

// guildService implements the GuildService interface
type guildService struct {
	store store
	cache *SettingsCache
}

// NewGuildService creates a new guild service
func NewGuildService(uowFactory UnitOfWorkFactory, cache *SettingsCache, cfg StoreConfig) GuildService {
	return &guildService{
		store: newStore(uowFactory, cfg),
		cache: cache,
	}
}

// Join creates the guild row if it is new and reloads it into the cache
func (s *guildService) Join(ctx context.Context, guildID int64) (bool, error) {
	var created bool

	err := s.store.write(ctx, "create guild", log.Fields{"guild_id": guildID}, func(ctx context.Context, uow UnitOfWork) error {
		var err error
		if created, err = s.store.ensureGuild(ctx, uow, guildID); err != nil {
			return err
		}
		uow.EventBus().Publish(events.GuildJoinedEvent{GuildID: guildID, Created: created})
		return nil
	})
	if err != nil {
		return false, err
	}

	if err := s.cache.Reload(ctx, guildID); err != nil {
		return created, err
	}

	if created {
		log.WithField("guild_id", guildID).Info("Registered new guild")
	}
	return created, nil
}

// SetPrefix changes the command prefix, which must be one or two characters
func (s *guildService) SetPrefix(ctx context.Context, guildID int64, prefix string) error {
	prefix = strings.TrimSpace(prefix)
	if n := utf8.RuneCountInString(prefix); n == 0 || n > models.MaxPrefixLength {
		return invalidArgument("prefix must be 1 to %d characters", models.MaxPrefixLength)
	}

	return s.set(ctx, guildID, "set prefix",
		func(ctx context.Context, repo GuildRepository) error { return repo.SetPrefix(ctx, guildID, prefix) },
		func(gs *models.GuildSettings) { gs.Prefix = prefix },
	)
}

// SetInvitesAllowed toggles whether members may post invite links
func (s *guildService) SetInvitesAllowed(ctx context.Context, guildID int64, allowed bool) error {
	return s.set(ctx, guildID, "set invites allowed",
		func(ctx context.Context, repo GuildRepository) error { return repo.SetInvitesAllowed(ctx, guildID, allowed) },
		func(gs *models.GuildSettings) { gs.InvitesAllowed = allowed },
	)
}

// SetVoiceEnabled toggles voice channel roles
func (s *guildService) SetVoiceEnabled(ctx context.Context, guildID int64, enabled bool) error {
	return s.set(ctx, guildID, "set voice enabled",
		func(ctx context.Context, repo GuildRepository) error { return repo.SetVoiceEnabled(ctx, guildID, enabled) },
		func(gs *models.GuildSettings) { gs.VoiceEnabled = enabled },
	)
}

// SetWarningsDM toggles direct messages to warned users
func (s *guildService) SetWarningsDM(ctx context.Context, guildID int64, enabled bool) error {
	return s.set(ctx, guildID, "set warnings dm",
		func(ctx context.Context, repo GuildRepository) error { return repo.SetWarningsDM(ctx, guildID, enabled) },
		func(gs *models.GuildSettings) { gs.WarningsDM = enabled },
	)
}

// SetWelcomeMessage sets or, with nil, clears the welcome message
func (s *guildService) SetWelcomeMessage(ctx context.Context, guildID int64, message *string) error {
	message = normalizeText(message)
	return s.set(ctx, guildID, "set welcome message",
		func(ctx context.Context, repo GuildRepository) error { return repo.SetWelcomeMessage(ctx, guildID, message) },
		func(gs *models.GuildSettings) { gs.WelcomeMessage = message },
	)
}

// SetBanFooter sets or clears the ban notice footer
func (s *guildService) SetBanFooter(ctx context.Context, guildID int64, footer *string) error {
	footer = normalizeText(footer)
	return s.set(ctx, guildID, "set ban footer",
		func(ctx context.Context, repo GuildRepository) error { return repo.SetBanFooter(ctx, guildID, footer) },
		func(gs *models.GuildSettings) { gs.BanFooter = footer },
	)
}

// SetKickFooter sets or clears the kick notice footer
func (s *guildService) SetKickFooter(ctx context.Context, guildID int64, footer *string) error {
	footer = normalizeText(footer)
	return s.set(ctx, guildID, "set kick footer",
		func(ctx context.Context, repo GuildRepository) error { return repo.SetKickFooter(ctx, guildID, footer) },
		func(gs *models.GuildSettings) { gs.KickFooter = footer },
	)
}

// set writes one scalar and patches the cache only once the write committed
func (s *guildService) set(ctx context.Context, guildID int64, op string, write func(context.Context, GuildRepository) error, patch func(*models.GuildSettings)) error {
	err := s.store.write(ctx, op, log.Fields{"guild_id": guildID}, func(ctx context.Context, uow UnitOfWork) error {
		if _, err := s.store.ensureGuild(ctx, uow, guildID); err != nil {
			return err
		}
		return write(ctx, uow.GuildRepository())
	})
	if err != nil {
		return err
	}

	s.cache.Patch(guildID, patch)
	return nil
}

// normalizeText maps blank text to nil so it is stored as NULL
func normalizeText(text *string) *string {
	if text == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*text)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

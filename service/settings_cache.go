package service

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"

	"yinbot/models"
)

// SettingsCache is the in-process replica of guild settings and the global
// blacklisted channel set. Reads never touch the store. It is built wholesale
// by LoadAll and patched by the services after each successful store write.
// Patches are last-writer-wins; writers that race on the same guild field
// (channel set flags) serialize commit and patch themselves.
type SettingsCache struct {
	store store

	mu        sync.RWMutex
	guilds    map[int64]models.GuildSettings
	blacklist map[int64]struct{}
}

// NewSettingsCache creates an empty cache backed by the given unit of work factory
func NewSettingsCache(uowFactory UnitOfWorkFactory, cfg StoreConfig) *SettingsCache {
	return &SettingsCache{
		store:     newStore(uowFactory, cfg),
		guilds:    make(map[int64]models.GuildSettings),
		blacklist: make(map[int64]struct{}),
	}
}

// LoadAll replaces the whole cache with one consistent read of the store
func (c *SettingsCache) LoadAll(ctx context.Context) error {
	var (
		guilds      []*models.GuildSettings
		blacklisted []int64
	)

	err := c.store.read(ctx, "load settings cache", log.Fields{}, func(ctx context.Context, uow UnitOfWork) error {
		var err error
		if guilds, err = uow.GuildRepository().GetAll(ctx); err != nil {
			return err
		}
		blacklisted, err = uow.ChannelSetRepository().ListAll(ctx, models.ChannelKindBlacklist)
		return err
	})
	if err != nil {
		return err
	}

	nextGuilds := make(map[int64]models.GuildSettings, len(guilds))
	for _, g := range guilds {
		nextGuilds[g.GuildID] = *g
	}
	nextBlacklist := make(map[int64]struct{}, len(blacklisted))
	for _, id := range blacklisted {
		nextBlacklist[id] = struct{}{}
	}

	c.mu.Lock()
	c.guilds = nextGuilds
	c.blacklist = nextBlacklist
	c.mu.Unlock()

	log.WithFields(log.Fields{
		"guilds":      len(nextGuilds),
		"blacklisted": len(nextBlacklist),
	}).Info("Settings cache loaded")

	return nil
}

// Reload refreshes a single guild, used when the bot joins a guild
func (c *SettingsCache) Reload(ctx context.Context, guildID int64) error {
	var (
		settings    *models.GuildSettings
		blacklisted []int64
	)

	fields := log.Fields{"guild_id": guildID}
	err := c.store.read(ctx, "reload guild settings", fields, func(ctx context.Context, uow UnitOfWork) error {
		var err error
		if settings, err = uow.GuildRepository().Get(ctx, guildID); err != nil {
			return err
		}
		blacklisted, err = uow.ChannelSetRepository().List(ctx, guildID, models.ChannelKindBlacklist)
		return err
	})
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if settings == nil {
		delete(c.guilds, guildID)
	} else {
		c.guilds[guildID] = *settings
	}
	for _, id := range blacklisted {
		c.blacklist[id] = struct{}{}
	}

	return nil
}

// Get returns a copy of the guild's settings, or the defaults for an unknown guild
func (c *SettingsCache) Get(guildID int64) models.GuildSettings {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if settings, ok := c.guilds[guildID]; ok {
		return settings
	}
	return c.defaults(guildID)
}

// Has reports whether the guild has been loaded
func (c *SettingsCache) Has(guildID int64) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	_, ok := c.guilds[guildID]
	return ok
}

// Patch applies fn to the guild's cached settings. Call only after the
// matching store write has succeeded.
func (c *SettingsCache) Patch(guildID int64, fn func(settings *models.GuildSettings)) {
	c.mu.Lock()
	defer c.mu.Unlock()

	settings, ok := c.guilds[guildID]
	if !ok {
		settings = c.defaults(guildID)
	}
	fn(&settings)
	c.guilds[guildID] = settings
}

// IsBlacklisted reports whether the bot ignores commands in the channel
func (c *SettingsCache) IsBlacklisted(channelID int64) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	_, ok := c.blacklist[channelID]
	return ok
}

// AddBlacklisted marks a channel as blacklisted
func (c *SettingsCache) AddBlacklisted(channelID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.blacklist[channelID] = struct{}{}
}

// RemoveBlacklisted clears the blacklist mark of a channel
func (c *SettingsCache) RemoveBlacklisted(channelID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.blacklist, channelID)
}

// Len returns the number of cached guilds
func (c *SettingsCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.guilds)
}

func (c *SettingsCache) defaults(guildID int64) models.GuildSettings {
	settings := models.DefaultGuildSettings(guildID)
	if c.store.cfg.DefaultPrefix != "" {
		settings.Prefix = c.store.cfg.DefaultPrefix
	}
	return settings
}

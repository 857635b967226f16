package cmd

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"yinbot/bot"
	"yinbot/config"
	"yinbot/database"
	"yinbot/events"
	"yinbot/models"
	"yinbot/repository"
	"yinbot/service"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	cfg := config.Get()
	cfg.ConfigureLogging()

	log.WithField("environment", cfg.Environment).Info("Starting yinbot")

	databaseURL := cfg.GetDatabaseURL()
	db, err := database.ConnectWithRetry(ctx, databaseURL, cfg.ConnectRetryInterval)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	log.Info("Database connection established")

	if err := database.RunMigrationsWithURL(databaseURL); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	eventBus := events.NewBus()

	if servers := cfg.NATSServerList(); len(servers) > 0 {
		publisher := events.NewNATSPublisher(cfg.NATSServers)
		if err := publisher.Connect(ctx); err != nil {
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}
		defer publisher.Close()
		publisher.Attach(eventBus)
		log.WithField("servers", servers).Info("Mirroring events to NATS")
	}

	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	storeConfig := service.StoreConfig{
		Timeout:       cfg.StoreTimeout,
		DefaultPrefix: cfg.DefaultPrefix,
	}
	cache := service.NewSettingsCache(uowFactory, storeConfig)
	services := bot.Services{
		Guilds:           service.NewGuildService(uowFactory, cache, storeConfig),
		Channels:         service.NewChannelSetService(uowFactory, cache, storeConfig),
		Warnings:         service.NewLedgerService(uowFactory, models.LedgerWarning, cfg.RecencyWindow(models.LedgerWarning), storeConfig),
		Moderation:       service.NewLedgerService(uowFactory, models.LedgerModeration, cfg.RecencyWindow(models.LedgerModeration), storeConfig),
		RoleAssociations: service.NewRoleAssociationService(uowFactory, storeConfig),
		RoleSets:         service.NewRoleSetService(uowFactory, storeConfig),
		Cache:            cache,
	}

	discordBot, err := bot.New(bot.Config{
		Token:   cfg.DiscordToken,
		GuildID: cfg.GuildID,
	}, services, eventBus)
	if err != nil {
		return fmt.Errorf("failed to initialize Discord bot: %w", err)
	}

	log.Info("Bot is running")
	<-ctx.Done()

	log.Info("Shutting down bot")
	if err := discordBot.Close(); err != nil {
		log.WithError(err).Error("Error closing Discord session")
	}

	return nil
}

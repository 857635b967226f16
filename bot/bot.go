package bot

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"yinbot/bot/features/channels"
	"yinbot/bot/features/ledger"
	"yinbot/bot/features/roles"
	"yinbot/bot/features/settings"
	"yinbot/events"
	"yinbot/service"
)

// Config holds bot configuration
type Config struct {
	Token string
	// GuildID registers commands in one guild only, empty registers them globally
	GuildID string
}

// Services are the store-backed services the bot calls
type Services struct {
	Guilds           service.GuildService
	Channels         service.ChannelSetService
	Warnings         service.LedgerService
	Moderation       service.LedgerService
	RoleAssociations service.RoleAssociationService
	RoleSets         service.RoleSetService
	Cache            *service.SettingsCache
}

type Bot struct {
	config   Config
	session  *discordgo.Session
	services Services
	eventBus *events.Bus

	settingsFeature   *settings.Feature
	channelsFeature   *channels.Feature
	warningsFeature   *ledger.Feature
	moderationFeature *ledger.Feature
	rolesFeature      *roles.Feature
}

func New(config Config, services Services, eventBus *events.Bus) (*Bot, error) {
	dg, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildVoiceStates |
		discordgo.IntentsMessageContent

	bot := &Bot{
		config:            config,
		session:           dg,
		services:          services,
		eventBus:          eventBus,
		settingsFeature:   settings.NewFeature(services.Guilds, services.Cache),
		channelsFeature:   channels.NewFeature(services.Channels),
		warningsFeature:   ledger.NewFeature(services.Warnings, services.Cache),
		moderationFeature: ledger.NewFeature(services.Moderation, services.Cache),
		rolesFeature:      roles.NewFeature(services.RoleAssociations, services.RoleSets),
	}

	dg.AddHandler(bot.handleReady)
	dg.AddHandler(bot.handleGuildCreate)
	dg.AddHandler(bot.handleChannelDelete)
	dg.AddHandler(bot.handleMessageCreate)
	dg.AddHandler(bot.handleVoiceStateUpdate)
	dg.AddHandler(bot.handleGuildMemberAdd)
	dg.AddHandler(bot.handleGuildMemberUpdate)
	dg.AddHandler(bot.handleCommands)

	eventBus.Subscribe(events.EventTypeLedgerEntryAppended, bot.postToModlog)
	eventBus.Subscribe(events.EventTypeLedgerEntryEdited, bot.postToModlog)
	eventBus.Subscribe(events.EventTypeLedgerEntryDeleted, bot.postToModlog)

	// Warm the cache before the gateway starts delivering events
	if err := services.Cache.LoadAll(context.Background()); err != nil {
		return nil, fmt.Errorf("error loading guild settings: %w", err)
	}

	if err := dg.Open(); err != nil {
		return nil, fmt.Errorf("error opening connection: %w", err)
	}

	if err := bot.registerCommands(); err != nil {
		dg.Close()
		return nil, fmt.Errorf("error registering commands: %w", err)
	}

	log.WithField("guilds", services.Cache.Len()).Info("Bot connected")
	return bot, nil
}

func (b *Bot) Close() error {
	return b.session.Close()
}

func (b *Bot) handleCommands(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	if handler, ok := b.commandHandlers()[i.ApplicationCommandData().Name]; ok {
		handler(s, i)
	}
}

// commandHandlers maps every registered command name to its feature handler
func (b *Bot) commandHandlers() map[string]func(*discordgo.Session, *discordgo.InteractionCreate) {
	return map[string]func(*discordgo.Session, *discordgo.InteractionCreate){
		"settings":   b.settingsFeature.HandleCommand,
		"channels":   b.channelsFeature.HandleCommand,
		"warn":       b.warningsFeature.HandleCommand,
		"warnings":   b.warningsFeature.HandleList,
		"modaction":  b.moderationFeature.HandleCommand,
		"modlog":     b.moderationFeature.HandleList,
		"voiceroles": b.rolesFeature.HandleVoiceRoles,
		"roles":      b.rolesFeature.HandleRoles,
		"greeting":   b.rolesFeature.HandleGreeting,
		"iam":        b.rolesFeature.HandleIAm,
	}
}

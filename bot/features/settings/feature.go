package settings

import (
	"github.com/bwmarrin/discordgo"

	"yinbot/bot/common"
	"yinbot/service"
)

// Feature handles guild settings management
type Feature struct {
	guildService service.GuildService
	cache        *service.SettingsCache
}

// NewFeature creates a new settings feature instance
func NewFeature(guildService service.GuildService, cache *service.SettingsCache) *Feature {
	return &Feature{
		guildService: guildService,
		cache:        cache,
	}
}

// HandleCommand routes /settings subcommands to their handlers
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if err := f.handle(s, i); err != nil {
		common.HandleError(s, i, err)
	}
}

func (f *Feature) handle(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	inv, err := common.ParseInvocation(i)
	if err != nil {
		return err
	}

	sub, opts := common.SubcommandOptions(i)
	if sub == "show" {
		return f.handleShow(s, i, inv)
	}

	if err := common.RequireAdmin(s, i); err != nil {
		return err
	}

	switch sub {
	case "prefix":
		return f.handlePrefix(s, i, inv, common.OptionString(opts["value"]))
	case "invites":
		return f.handleToggle(s, i, inv, "Invite links", common.OptionBool(opts["allowed"], true), f.guildService.SetInvitesAllowed)
	case "voice-roles":
		return f.handleToggle(s, i, inv, "Voice roles", common.OptionBool(opts["enabled"], false), f.guildService.SetVoiceEnabled)
	case "warnings-dm":
		return f.handleToggle(s, i, inv, "Warning DMs", common.OptionBool(opts["enabled"], true), f.guildService.SetWarningsDM)
	case "welcome":
		return f.handleText(s, i, inv, "Welcome message", opts["message"], f.guildService.SetWelcomeMessage)
	case "ban-footer":
		return f.handleText(s, i, inv, "Ban footer", opts["text"], f.guildService.SetBanFooter)
	case "kick-footer":
		return f.handleText(s, i, inv, "Kick footer", opts["text"], f.guildService.SetKickFooter)
	}
	return nil
}

package settings

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"yinbot/bot/common"
	"yinbot/models"
)

func (f *Feature) handlePrefix(s *discordgo.Session, i *discordgo.InteractionCreate, inv common.Invocation, prefix string) error {
	ctx := context.Background()

	if err := f.guildService.SetPrefix(ctx, inv.GuildID, prefix); err != nil {
		return common.FromServiceError(err,
			fmt.Sprintf("The prefix must be 1 to %d characters.", models.MaxPrefixLength),
			"failed to set prefix")
	}

	return common.RespondWithSuccess(s, i, fmt.Sprintf("Prefix set to `%s`", f.cache.Get(inv.GuildID).Prefix), false)
}

func (f *Feature) handleToggle(s *discordgo.Session, i *discordgo.InteractionCreate, inv common.Invocation, label string, enabled bool, set func(context.Context, int64, bool) error) error {
	ctx := context.Background()

	if err := set(ctx, inv.GuildID, enabled); err != nil {
		return common.FromServiceError(err, common.InternalErrorMessage, fmt.Sprintf("failed to update %s", label))
	}

	state := "disabled"
	if enabled {
		state = "enabled"
	}
	return common.RespondWithSuccess(s, i, fmt.Sprintf("%s %s", label, state), false)
}

func (f *Feature) handleText(s *discordgo.Session, i *discordgo.InteractionCreate, inv common.Invocation, label string, opt *discordgo.ApplicationCommandInteractionDataOption, set func(context.Context, int64, *string) error) error {
	ctx := context.Background()

	var text *string
	if opt != nil {
		value := opt.StringValue()
		text = &value
	}

	if err := set(ctx, inv.GuildID, text); err != nil {
		return common.FromServiceError(err, common.InternalErrorMessage, fmt.Sprintf("failed to update %s", label))
	}

	if text == nil {
		return common.RespondWithSuccess(s, i, label+" cleared", false)
	}
	return common.RespondWithSuccess(s, i, label+" updated", false)
}

func (f *Feature) handleShow(s *discordgo.Session, i *discordgo.InteractionCreate, inv common.Invocation) error {
	return common.RespondWithEmbed(s, i, SettingsEmbed(f.cache.Get(inv.GuildID)), true)
}

// SettingsEmbed renders a guild's cached settings
func SettingsEmbed(settings models.GuildSettings) *discordgo.MessageEmbed {
	onOff := func(b bool) string {
		if b {
			return "on"
		}
		return "off"
	}
	text := func(s *string) string {
		if s == nil {
			return "not set"
		}
		return *s
	}

	fields := []*discordgo.MessageEmbedField{
		{Name: "Prefix", Value: fmt.Sprintf("`%s`", settings.Prefix), Inline: true},
		{Name: "Invites allowed", Value: onOff(settings.InvitesAllowed), Inline: true},
		{Name: "Voice roles", Value: onOff(settings.VoiceEnabled), Inline: true},
		{Name: "Warning DMs", Value: onOff(settings.WarningsDM), Inline: true},
	}
	for _, kind := range models.AllChannelKinds {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   kind.String(),
			Value:  onOff(settings.FlagEnabled(kind)),
			Inline: true,
		})
	}
	fields = append(fields,
		&discordgo.MessageEmbedField{Name: "Welcome message", Value: text(settings.WelcomeMessage)},
		&discordgo.MessageEmbedField{Name: "Ban footer", Value: text(settings.BanFooter)},
		&discordgo.MessageEmbedField{Name: "Kick footer", Value: text(settings.KickFooter)},
	)

	return &discordgo.MessageEmbed{
		Title:  "Server settings",
		Color:  0x5865F2,
		Fields: fields,
	}
}

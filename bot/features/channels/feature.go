package channels

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"yinbot/bot/common"
	"yinbot/models"
	"yinbot/service"
)

// Feature handles /channels add|remove|list
type Feature struct {
	channelService service.ChannelSetService
}

// NewFeature creates a new channels feature instance
func NewFeature(channelService service.ChannelSetService) *Feature {
	return &Feature{channelService: channelService}
}

// KindChoices lists the channel kinds as slash command choices
func KindChoices() []*discordgo.ApplicationCommandOptionChoice {
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(models.AllChannelKinds))
	for _, kind := range models.AllChannelKinds {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  kind.String(),
			Value: kind.String(),
		})
	}
	return choices
}

// HandleCommand routes /channels subcommands
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
	if err := common.RequireAdmin(s, i); err != nil {
		return err
	}

	sub, opts := common.SubcommandOptions(i)
	kind, err := models.ParseChannelKind(common.OptionString(opts["kind"]))
	if err != nil {
		return common.NewUserError("Unknown channel kind.", err.Error())
	}

	ctx := context.Background()

	if sub == "list" {
		ids, err := f.channelService.List(ctx, inv.GuildID, kind)
		if err != nil {
			return common.FromServiceError(err, common.InternalErrorMessage, "failed to list channels")
		}
		return common.RespondWithSuccess(s, i, fmt.Sprintf("%s channels: %s", kind, common.FormatChannelList(ids)), true)
	}

	channelID, err := common.OptionID(opts["channel"])
	if err != nil {
		return err
	}

	switch sub {
	case "add":
		added, err := f.channelService.Add(ctx, inv.GuildID, kind, channelID)
		if err != nil {
			return common.FromServiceError(err, common.InternalErrorMessage, "failed to add channel")
		}
		if !added {
			return common.RespondWithSuccess(s, i, fmt.Sprintf("%s is already a %s channel", common.GetChannelMention(channelID), kind), true)
		}
		return common.RespondWithSuccess(s, i, fmt.Sprintf("%s is now a %s channel", common.GetChannelMention(channelID), kind), false)

	case "remove":
		if _, err := f.channelService.Remove(ctx, inv.GuildID, kind, channelID); err != nil {
			return common.FromServiceError(err,
				fmt.Sprintf("%s is not a %s channel.", common.GetChannelMention(channelID), kind),
				"failed to remove channel")
		}
		return common.RespondWithSuccess(s, i, fmt.Sprintf("%s is no longer a %s channel", common.GetChannelMention(channelID), kind), false)
	}

	return nil
}

package ledger

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"yinbot/bot/common"
	"yinbot/models"
)

func (f *Feature) handleAppend(s *discordgo.Session, i *discordgo.InteractionCreate, inv common.Invocation, userID int64, payload models.LedgerPayload) error {
	ctx := context.Background()

	index, err := f.ledger.Append(ctx, inv.GuildID, userID, inv.AuthorID, payload)
	if err != nil {
		return common.FromServiceError(err, fmt.Sprintf("Invalid %s: %v", f.noun(), err), "failed to append ledger entry")
	}

	count, err := f.ledger.Count(ctx, inv.GuildID, userID)
	if err != nil {
		return common.FromServiceError(err, common.InternalErrorMessage, "failed to count ledger entries")
	}

	f.notifyMember(s, inv.GuildID, userID, payload)

	return common.RespondWithSuccess(s, i, fmt.Sprintf("Recorded %s `#%d` for %s, who now has %s",
		f.noun(), index, common.GetUserMention(userID), plural(count, f.noun())), false)
}

func (f *Feature) handleEdit(s *discordgo.Session, i *discordgo.InteractionCreate, inv common.Invocation, userID int64, index int, payload models.LedgerPayload) error {
	ctx := context.Background()

	count, err := f.ledger.Edit(ctx, inv.GuildID, userID, index, payload)
	if err != nil {
		return common.FromServiceError(err,
			fmt.Sprintf("%s has no %s `#%d`.", common.GetUserMention(userID), f.noun(), index),
			"failed to edit ledger entry")
	}

	return common.RespondWithSuccess(s, i, fmt.Sprintf("Edited %s `#%d` of %s (%s total)",
		f.noun(), index, common.GetUserMention(userID), plural(count, f.noun())), false)
}

func (f *Feature) handleRemove(s *discordgo.Session, i *discordgo.InteractionCreate, inv common.Invocation, userID int64, index int) error {
	ctx := context.Background()

	deleted, err := f.ledger.Delete(ctx, inv.GuildID, userID, index)
	if err != nil {
		return common.FromServiceError(err, common.InternalErrorMessage, "failed to delete ledger entry")
	}
	if !deleted {
		return common.NewUserError(
			fmt.Sprintf("%s has no %s `#%d`.", common.GetUserMention(userID), f.noun(), index),
			"delete of unknown ledger index")
	}

	return common.RespondWithSuccess(s, i, fmt.Sprintf("Removed %s `#%d` of %s", f.noun(), index, common.GetUserMention(userID)), false)
}

func (f *Feature) handleList(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	inv, err := common.ParseInvocation(i)
	if err != nil {
		return err
	}

	opts := make(map[string]*discordgo.ApplicationCommandInteractionDataOption)
	for _, opt := range i.ApplicationCommandData().Options {
		opts[opt.Name] = opt
	}

	userID := inv.AuthorID
	if opt, ok := opts["user"]; ok {
		if userID, err = common.OptionID(opt); err != nil {
			return err
		}
	}
	if userID != inv.AuthorID {
		if err := common.RequireAdmin(s, i); err != nil {
			return err
		}
	}
	all := common.OptionBool(opts["all"], false)

	ctx := context.Background()
	entries, err := f.ledger.List(ctx, inv.GuildID, userID, !all)
	if err != nil {
		return common.FromServiceError(err, common.InternalErrorMessage, "failed to list ledger entries")
	}

	title := fmt.Sprintf("Recent %ss", f.noun())
	if all {
		title = fmt.Sprintf("All %ss", f.noun())
	}
	embed := &discordgo.MessageEmbed{
		Title:       title,
		Description: fmt.Sprintf("%s\n\n%s", common.GetUserMention(userID), common.FormatLedger(entries, "Nothing on record.")),
		Color:       0xED4245,
	}
	return common.RespondWithEmbed(s, i, embed, true)
}

// notifyMember sends the member a direct message about a new entry when the guild wants it
func (f *Feature) notifyMember(s *discordgo.Session, guildID, userID int64, payload models.LedgerPayload) {
	settings := f.cache.Get(guildID)
	message, ok := NoticeFor(f.ledger.Kind(), settings, payload)
	if !ok {
		return
	}

	channel, err := s.UserChannelCreate(common.FormatID(userID))
	if err == nil {
		_, err = s.ChannelMessageSend(channel.ID, message)
	}
	if err != nil {
		log.WithFields(log.Fields{
			"guild_id": guildID,
			"user_id":  userID,
			"error":    err,
		}).Warn("Failed to notify member")
	}
}

// NoticeFor builds the direct message sent for a new entry. Warnings are sent
// when warning DMs are on; kicks and bans carry the guild's footer.
func NoticeFor(kind models.LedgerKind, settings models.GuildSettings, payload models.LedgerPayload) (string, bool) {
	if kind == models.LedgerWarning {
		if !settings.WarningsDM {
			return "", false
		}
		severity := "minor"
		if payload.Major {
			severity = "major"
		}
		return fmt.Sprintf("You received a %s warning: %s", severity, payload.Reason), true
	}

	var footer *string
	switch payload.Action {
	case models.ActionKick:
		footer = settings.KickFooter
	case models.ActionBan:
		footer = settings.BanFooter
	default:
		return "", false
	}

	message := fmt.Sprintf("You received a %s: %s", payload.Action, payload.Reason)
	if footer != nil {
		message += "\n\n" + *footer
	}
	return message, true
}

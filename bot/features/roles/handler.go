package roles

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/bwmarrin/discordgo"

	"yinbot/bot/common"
	"yinbot/models"
)

func (f *Feature) handleVoiceRoles(s *discordgo.Session, i *discordgo.InteractionCreate, inv common.Invocation) error {
	ctx := context.Background()
	sub, opts := common.SubcommandOptions(i)

	if sub == "purge" {
		if err := f.roleAssociations.Purge(ctx, inv.GuildID); err != nil {
			return common.FromServiceError(err, common.InternalErrorMessage, "failed to purge voice roles")
		}
		return common.RespondWithSuccess(s, i, "Removed every voice role link", false)
	}

	channelID, err := common.OptionID(opts["channel"])
	if err != nil {
		return err
	}

	if sub == "list" {
		roles, err := f.roleAssociations.RolesForChannel(ctx, inv.GuildID, channelID)
		if err != nil {
			return common.FromServiceError(err, common.InternalErrorMessage, "failed to list voice roles")
		}
		return common.RespondWithSuccess(s, i, fmt.Sprintf("Roles for %s: %s", common.GetChannelMention(channelID), formatRoles(roles)), true)
	}

	roleID, err := common.OptionID(opts["role"])
	if err != nil {
		return err
	}

	switch sub {
	case "link":
		if _, err := f.roleAssociations.Associate(ctx, inv.GuildID, channelID, roleID); err != nil {
			return common.FromServiceError(err, common.InternalErrorMessage, "failed to link voice role")
		}
		return common.RespondWithSuccess(s, i, fmt.Sprintf("Members in %s now get %s", common.GetChannelMention(channelID), common.GetRoleMention(roleID)), false)

	case "unlink":
		if _, err := f.roleAssociations.Disassociate(ctx, inv.GuildID, channelID, roleID); err != nil {
			return common.FromServiceError(err,
				fmt.Sprintf("%s is not linked to %s.", common.GetRoleMention(roleID), common.GetChannelMention(channelID)),
				"failed to unlink voice role")
		}
		return common.RespondWithSuccess(s, i, fmt.Sprintf("Unlinked %s from %s", common.GetRoleMention(roleID), common.GetChannelMention(channelID)), false)
	}
	return nil
}

func (f *Feature) handleRoles(s *discordgo.Session, i *discordgo.InteractionCreate, inv common.Invocation) error {
	ctx := context.Background()
	sub, opts := common.SubcommandOptions(i)
	kind := models.RoleSetKind(common.OptionString(opts["set"]))
	if kind != models.RoleSetAssignable && kind != models.RoleSetAutoassign {
		return common.NewUserError("Unknown role set.", fmt.Sprintf("unknown role set %q", kind))
	}

	if sub == "list" {
		roles, err := f.roleSets.List(ctx, inv.GuildID, kind)
		if err != nil {
			return common.FromServiceError(err, common.InternalErrorMessage, "failed to list roles")
		}
		return common.RespondWithSuccess(s, i, fmt.Sprintf("%s roles: %s", kind, formatRoles(roles)), true)
	}

	roleID, err := common.OptionID(opts["role"])
	if err != nil {
		return err
	}

	switch sub {
	case "add":
		if _, err := f.roleSets.Add(ctx, inv.GuildID, kind, roleID); err != nil {
			return common.FromServiceError(err, common.InternalErrorMessage, "failed to add role")
		}
		return common.RespondWithSuccess(s, i, fmt.Sprintf("%s is now %s", common.GetRoleMention(roleID), kind), false)

	case "remove":
		if _, err := f.roleSets.Remove(ctx, inv.GuildID, kind, roleID); err != nil {
			return common.FromServiceError(err,
				fmt.Sprintf("%s is not %s.", common.GetRoleMention(roleID), kind),
				"failed to remove role")
		}
		return common.RespondWithSuccess(s, i, fmt.Sprintf("%s is no longer %s", common.GetRoleMention(roleID), kind), false)
	}
	return nil
}

func (f *Feature) handleGreeting(s *discordgo.Session, i *discordgo.InteractionCreate, inv common.Invocation) error {
	ctx := context.Background()
	sub, opts := common.SubcommandOptions(i)

	channelID, err := common.OptionID(opts["channel"])
	if err != nil {
		return err
	}
	roleID, err := common.OptionID(opts["role"])
	if err != nil {
		return err
	}

	switch sub {
	case "set":
		if err := f.roleAssociations.SetGreeting(ctx, inv.GuildID, channelID, roleID, common.OptionString(opts["message"])); err != nil {
			return common.FromServiceError(err, "The greeting message cannot be empty.", "failed to set greeting")
		}
		return common.RespondWithSuccess(s, i, fmt.Sprintf("Members given %s will be greeted in %s", common.GetRoleMention(roleID), common.GetChannelMention(channelID)), false)

	case "clear":
		deleted, err := f.roleAssociations.DeleteGreeting(ctx, inv.GuildID, channelID, roleID)
		if err != nil {
			return common.FromServiceError(err, common.InternalErrorMessage, "failed to clear greeting")
		}
		if !deleted {
			return common.NewUserError("No greeting is set for that role and channel.", "clear of unknown greeting")
		}
		return common.RespondWithSuccess(s, i, "Greeting cleared", false)
	}
	return nil
}

func (f *Feature) handleIAm(s *discordgo.Session, i *discordgo.InteractionCreate, inv common.Invocation) error {
	ctx := context.Background()

	opts := i.ApplicationCommandData().Options
	if len(opts) == 0 {
		return common.NewUserError("Pick a role.", "iam without role")
	}
	roleID, err := common.OptionID(opts[0])
	if err != nil {
		return err
	}

	ok, err := f.roleSets.Contains(ctx, inv.GuildID, models.RoleSetAssignable, roleID)
	if err != nil {
		return common.FromServiceError(err, common.InternalErrorMessage, "failed to check assignable role")
	}
	if !ok {
		return common.NewUserError(fmt.Sprintf("%s is not self-assignable.", common.GetRoleMention(roleID)), "iam on non-assignable role")
	}

	role := common.FormatID(roleID)
	if slices.Contains(i.Member.Roles, role) {
		if err := s.GuildMemberRoleRemove(i.GuildID, i.Member.User.ID, role); err != nil {
			return common.NewSystemError(err, "failed to remove self-assigned role")
		}
		return common.RespondWithSuccess(s, i, fmt.Sprintf("Removed %s", common.GetRoleMention(roleID)), true)
	}

	if err := s.GuildMemberRoleAdd(i.GuildID, i.Member.User.ID, role); err != nil {
		return common.NewSystemError(err, "failed to add self-assigned role")
	}
	return common.RespondWithSuccess(s, i, fmt.Sprintf("You now have %s", common.GetRoleMention(roleID)), true)
}

func formatRoles(roleIDs []int64) string {
	if len(roleIDs) == 0 {
		return "none"
	}
	mentions := make([]string, 0, len(roleIDs))
	for _, id := range roleIDs {
		mentions = append(mentions, common.GetRoleMention(id))
	}
	return strings.Join(mentions, ", ")
}

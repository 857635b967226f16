package common

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// Invocation carries the parsed identifiers every guild command needs
type Invocation struct {
	GuildID  int64
	AuthorID int64
}

// ParseInvocation reads the guild and invoking member of an interaction
func ParseInvocation(i *discordgo.InteractionCreate) (Invocation, error) {
	if i.Member == nil || i.Member.User == nil {
		return Invocation{}, NewUserError("This command only works inside a server.", "interaction without member")
	}

	guildID, err := ParseID(i.GuildID)
	if err != nil {
		return Invocation{}, NewSystemError(err, "failed to parse guild ID")
	}
	authorID, err := ParseID(i.Member.User.ID)
	if err != nil {
		return Invocation{}, NewSystemError(err, "failed to parse member ID")
	}

	return Invocation{GuildID: guildID, AuthorID: authorID}, nil
}

// RequireAdmin fails with a user error unless the invoking member is an administrator
func RequireAdmin(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	if !IsUserAdmin(s, i.GuildID, i.Member.User.ID) {
		return NewUserError("You need administrator permissions to use this command.", "non-admin invoked admin command")
	}
	return nil
}

// OptionID returns the snowflake held by a user, channel, or role option
func OptionID(opt *discordgo.ApplicationCommandInteractionDataOption) (int64, error) {
	if opt == nil {
		return 0, NewUserError("Missing required option.", "missing option")
	}
	id, err := ParseID(fmt.Sprint(opt.Value))
	if err != nil {
		return 0, NewUserError("Invalid selection.", fmt.Sprintf("option %s is not a snowflake", opt.Name))
	}
	return id, nil
}

// OptionString returns a string option, or "" when it was not supplied
func OptionString(opt *discordgo.ApplicationCommandInteractionDataOption) string {
	if opt == nil {
		return ""
	}
	return opt.StringValue()
}

// OptionBool returns a boolean option, or def when it was not supplied
func OptionBool(opt *discordgo.ApplicationCommandInteractionDataOption, def bool) bool {
	if opt == nil {
		return def
	}
	return opt.BoolValue()
}

package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"yinbot/bot/features/channels"
	"yinbot/models"
)

func userOption(description string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionUser,
		Name:        "user",
		Description: description,
		Required:    required,
	}
}

func reasonOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "reason",
		Description: "Reason for the record",
		Required:    true,
		MaxLength:   models.MaxReasonLength,
	}
}

func indexOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionInteger,
		Name:        "index",
		Description: "Entry number as shown in the listing",
		Required:    true,
		MinValue:    func() *float64 { v := 1.0; return &v }(),
	}
}

func channelOption(description string, types ...discordgo.ChannelType) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:         discordgo.ApplicationCommandOptionChannel,
		Name:         "channel",
		Description:  description,
		Required:     true,
		ChannelTypes: types,
	}
}

func roleOption(description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionRole,
		Name:        "role",
		Description: description,
		Required:    true,
	}
}

func boolOption(name, description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionBoolean,
		Name:        name,
		Description: description,
		Required:    true,
	}
}

func textOption(name, description string, required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        name,
		Description: description,
		Required:    required,
	}
}

func subcommand(name, description string, options ...*discordgo.ApplicationCommandOption) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionSubCommand,
		Name:        name,
		Description: description,
		Options:     options,
	}
}

func choices(values ...string) []*discordgo.ApplicationCommandOptionChoice {
	out := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(values))
	for _, v := range values {
		out = append(out, &discordgo.ApplicationCommandOptionChoice{Name: v, Value: v})
	}
	return out
}

// applicationCommands returns the slash commands the bot registers
func applicationCommands() []*discordgo.ApplicationCommand {
	kindOption := &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "kind",
		Description: "Channel set",
		Required:    true,
		Choices:     channels.KindChoices(),
	}
	setOption := &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "set",
		Description: "Role set",
		Required:    true,
		Choices:     choices(string(models.RoleSetAssignable), string(models.RoleSetAutoassign)),
	}
	actionOption := &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "action",
		Description: "Action taken",
		Required:    true,
		Choices:     choices("kick", "ban", "unban", "misc"),
	}
	severityOption := &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "severity",
		Description: "Warning severity",
		Required:    true,
		Choices:     choices("minor", "major"),
	}

	return []*discordgo.ApplicationCommand{
		{
			Name:        "settings",
			Description: "Configure server settings",
			Options: []*discordgo.ApplicationCommandOption{
				subcommand("show", "Show the current settings"),
				subcommand("prefix", "Set the command prefix",
					textOption("value", fmt.Sprintf("New prefix, 1 to %d characters", models.MaxPrefixLength), true)),
				subcommand("invites", "Allow or block invite links", boolOption("allowed", "Whether invite links may be posted")),
				subcommand("voice-roles", "Enable or disable voice channel roles", boolOption("enabled", "Whether voice roles are handed out")),
				subcommand("warnings-dm", "Enable or disable warning DMs", boolOption("enabled", "Whether warned members get a DM")),
				subcommand("welcome", "Set the welcome message, omit to clear",
					textOption("message", "Message posted for new members, {user} mentions them", false)),
				subcommand("ban-footer", "Set the ban notice footer, omit to clear", textOption("text", "Footer text", false)),
				subcommand("kick-footer", "Set the kick notice footer, omit to clear", textOption("text", "Footer text", false)),
			},
		},
		{
			Name:        "channels",
			Description: "Manage feature channels",
			Options: []*discordgo.ApplicationCommandOption{
				subcommand("add", "Add a channel to a set", kindOption, channelOption("Channel to add")),
				subcommand("remove", "Remove a channel from a set", kindOption, channelOption("Channel to remove")),
				subcommand("list", "List the channels in a set", kindOption),
			},
		},
		{
			Name:        "warn",
			Description: "Manage member warnings",
			Options: []*discordgo.ApplicationCommandOption{
				subcommand("minor", "Record a minor warning", userOption("Member to warn", true), reasonOption()),
				subcommand("major", "Record a major warning", userOption("Member to warn", true), reasonOption()),
				subcommand("edit", "Edit a warning", userOption("Warned member", true), indexOption(), severityOption, reasonOption()),
				subcommand("remove", "Remove a warning", userOption("Warned member", true), indexOption()),
			},
		},
		{
			Name:        "warnings",
			Description: "List warnings",
			Options: []*discordgo.ApplicationCommandOption{
				userOption("Member to look up, defaults to you", false),
				{Type: discordgo.ApplicationCommandOptionBoolean, Name: "all", Description: "Include old warnings"},
			},
		},
		{
			Name:        "modaction",
			Description: "Manage moderation records",
			Options: []*discordgo.ApplicationCommandOption{
				subcommand("record", "Record a moderation action", userOption("Member acted on", true), actionOption, reasonOption()),
				subcommand("edit", "Edit a moderation record", userOption("Member acted on", true), indexOption(), actionOption, reasonOption()),
				subcommand("remove", "Remove a moderation record", userOption("Member acted on", true), indexOption()),
			},
		},
		{
			Name:        "modlog",
			Description: "List moderation records",
			Options: []*discordgo.ApplicationCommandOption{
				userOption("Member to look up, defaults to you", false),
				{Type: discordgo.ApplicationCommandOptionBoolean, Name: "all", Description: "Include old records"},
			},
		},
		{
			Name:        "voiceroles",
			Description: "Manage roles granted while in a voice channel",
			Options: []*discordgo.ApplicationCommandOption{
				subcommand("link", "Grant a role while in a voice channel",
					channelOption("Voice channel", discordgo.ChannelTypeGuildVoice), roleOption("Role to grant")),
				subcommand("unlink", "Stop granting a role for a voice channel",
					channelOption("Voice channel", discordgo.ChannelTypeGuildVoice), roleOption("Role to stop granting")),
				subcommand("list", "List the roles of a voice channel", channelOption("Voice channel", discordgo.ChannelTypeGuildVoice)),
				subcommand("purge", "Remove every voice role link"),
			},
		},
		{
			Name:        "roles",
			Description: "Manage assignable and autoassign roles",
			Options: []*discordgo.ApplicationCommandOption{
				subcommand("add", "Add a role to a set", setOption, roleOption("Role to add")),
				subcommand("remove", "Remove a role from a set", setOption, roleOption("Role to remove")),
				subcommand("list", "List the roles in a set", setOption),
			},
		},
		{
			Name:        "greeting",
			Description: "Manage messages posted when a role is granted",
			Options: []*discordgo.ApplicationCommandOption{
				subcommand("set", "Set a greeting", channelOption("Channel to greet in", discordgo.ChannelTypeGuildText),
					roleOption("Role that triggers the greeting"), textOption("message", "Greeting, {user} mentions the member", true)),
				subcommand("clear", "Clear a greeting", channelOption("Channel to greet in", discordgo.ChannelTypeGuildText),
					roleOption("Role that triggers the greeting")),
			},
		},
		{
			Name:        "iam",
			Description: "Toggle a self-assignable role",
			Options:     []*discordgo.ApplicationCommandOption{roleOption("Role to toggle")},
		},
	}
}

// registerCommands registers all slash commands with Discord
func (b *Bot) registerCommands() error {
	for _, cmd := range applicationCommands() {
		_, err := b.session.ApplicationCommandCreate(b.session.State.User.ID, b.config.GuildID, cmd)
		if err != nil {
			return fmt.Errorf("cannot create '%s' command: %w", cmd.Name, err)
		}
	}

	return nil
}

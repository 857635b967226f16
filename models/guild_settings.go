package models

import "time"

// MaxPrefixLength is the longest command prefix a guild may configure
const MaxPrefixLength = 2

// DefaultPrefix is used for guilds that have never changed their prefix
const DefaultPrefix = "-"

// GuildSettings represents the scalar per-guild configuration row plus
// the enabled flags derived from the feature channel sets
type GuildSettings struct {
	GuildID int64  `db:"guild_id"`
	Prefix  string `db:"prefix"`

	// Derived flags, kept equal to "channel set for the kind is non-empty"
	ModlogEnabled    bool `db:"modlog_enabled"`
	LoggingEnabled   bool `db:"logging_enabled"`
	VoiceLogging     bool `db:"voice_logging"`
	WelcomeEnabled   bool `db:"welcome_enabled"`
	BlacklistEnabled bool `db:"blacklist_enabled"`

	// Plain toggles
	InvitesAllowed bool `db:"invites_allowed"`
	VoiceEnabled   bool `db:"voice_enabled"`
	WarningsDM     bool `db:"warnings_dm"`

	WelcomeMessage *string `db:"welcome_message"`
	BanFooter      *string `db:"ban_footer"`
	KickFooter     *string `db:"kick_footer"`

	CreatedAt time.Time `db:"created_at"`
}

// DefaultGuildSettings returns the settings a guild has before any command touched it
func DefaultGuildSettings(guildID int64) GuildSettings {
	return GuildSettings{
		GuildID:        guildID,
		Prefix:         DefaultPrefix,
		InvitesAllowed: true,
		WarningsDM:     true,
	}
}

// FlagEnabled reports the derived enabled flag for a channel kind
func (gs *GuildSettings) FlagEnabled(kind ChannelKind) bool {
	switch kind {
	case ChannelKindModlog:
		return gs.ModlogEnabled
	case ChannelKindLogging:
		return gs.LoggingEnabled
	case ChannelKindVoiceLog:
		return gs.VoiceLogging
	case ChannelKindWelcome:
		return gs.WelcomeEnabled
	case ChannelKindBlacklist:
		return gs.BlacklistEnabled
	}
	return false
}

// SetFlag sets the derived enabled flag for a channel kind
func (gs *GuildSettings) SetFlag(kind ChannelKind, enabled bool) {
	switch kind {
	case ChannelKindModlog:
		gs.ModlogEnabled = enabled
	case ChannelKindLogging:
		gs.LoggingEnabled = enabled
	case ChannelKindVoiceLog:
		gs.VoiceLogging = enabled
	case ChannelKindWelcome:
		gs.WelcomeEnabled = enabled
	case ChannelKindBlacklist:
		gs.BlacklistEnabled = enabled
	}
}

// HasWelcomeMessage checks if a welcome message is configured
func (gs *GuildSettings) HasWelcomeMessage() bool {
	return gs.WelcomeMessage != nil && *gs.WelcomeMessage != ""
}

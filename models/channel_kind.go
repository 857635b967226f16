package models

import "fmt"

// ChannelKind names one of the per-guild feature channel sets
type ChannelKind string

const (
	ChannelKindModlog    ChannelKind = "modlog"
	ChannelKindWelcome   ChannelKind = "welcome"
	ChannelKindLogging   ChannelKind = "logging"
	ChannelKindBlacklist ChannelKind = "blacklist"
	ChannelKindVoiceLog  ChannelKind = "voicelog"
)

// AllChannelKinds lists every channel set kind in a stable order
var AllChannelKinds = []ChannelKind{
	ChannelKindModlog,
	ChannelKindWelcome,
	ChannelKindLogging,
	ChannelKindBlacklist,
	ChannelKindVoiceLog,
}

// ParseChannelKind converts user input into a ChannelKind
func ParseChannelKind(s string) (ChannelKind, error) {
	switch ChannelKind(s) {
	case ChannelKindModlog, ChannelKindWelcome, ChannelKindLogging, ChannelKindBlacklist, ChannelKindVoiceLog:
		return ChannelKind(s), nil
	case "voice-log", "voice_log":
		return ChannelKindVoiceLog, nil
	}
	return "", fmt.Errorf("unknown channel kind %q", s)
}

// Table returns the join table backing the kind
func (k ChannelKind) Table() string {
	switch k {
	case ChannelKindModlog:
		return "modlog_channels"
	case ChannelKindWelcome:
		return "welcome_channels"
	case ChannelKindLogging:
		return "logging_channels"
	case ChannelKindBlacklist:
		return "blacklist_channels"
	case ChannelKindVoiceLog:
		return "voice_logging_channels"
	}
	panic(fmt.Sprintf("unknown channel kind %q", string(k)))
}

// FlagColumn returns the guilds column holding the derived enabled flag
func (k ChannelKind) FlagColumn() string {
	switch k {
	case ChannelKindModlog:
		return "modlog_enabled"
	case ChannelKindWelcome:
		return "welcome_enabled"
	case ChannelKindLogging:
		return "logging_enabled"
	case ChannelKindBlacklist:
		return "blacklist_enabled"
	case ChannelKindVoiceLog:
		return "voice_logging"
	}
	panic(fmt.Sprintf("unknown channel kind %q", string(k)))
}

// String returns a display name for the kind
func (k ChannelKind) String() string {
	return string(k)
}

package models

import "fmt"

// VoiceRole links a voice channel to a role granted while a member is connected
type VoiceRole struct {
	GuildID   int64 `db:"guild_id"`
	ChannelID int64 `db:"channel_id"`
	RoleID    int64 `db:"role_id"`
}

// RoleGreeting is the message posted in a channel when a role is granted
type RoleGreeting struct {
	GuildID   int64  `db:"guild_id"`
	ChannelID int64  `db:"channel_id"`
	RoleID    int64  `db:"role_id"`
	Message   string `db:"message"`
}

// RoleSetKind names one of the per-guild role sets
type RoleSetKind string

const (
	RoleSetAssignable RoleSetKind = "assignable"
	RoleSetAutoassign RoleSetKind = "autoassign"
)

// Table returns the table backing the role set
func (k RoleSetKind) Table() string {
	switch k {
	case RoleSetAssignable:
		return "assignable_roles"
	case RoleSetAutoassign:
		return "autoassign_roles"
	}
	panic(fmt.Sprintf("unknown role set kind %q", string(k)))
}

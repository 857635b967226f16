package common

import (
	"fmt"
	"strconv"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// ParseID converts a Discord snowflake string to int64
func ParseID(id string) (int64, error) {
	return strconv.ParseInt(id, 10, 64)
}

// FormatID converts an int64 snowflake back to its string form
func FormatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// GetUserMention returns a mention string for a user ID
func GetUserMention(userID int64) string {
	return fmt.Sprintf("<@%d>", userID)
}

// GetChannelMention returns a mention string for a channel ID
func GetChannelMention(channelID int64) string {
	return fmt.Sprintf("<#%d>", channelID)
}

// GetRoleMention returns a mention string for a role ID
func GetRoleMention(roleID int64) string {
	return fmt.Sprintf("<@&%d>", roleID)
}

// IsUserAdmin checks if a user has administrator permissions in a guild
func IsUserAdmin(s *discordgo.Session, guildID, userID string) bool {
	member, err := s.GuildMember(guildID, userID)
	if err != nil {
		log.Errorf("Failed to get guild member: %v", err)
		return false
	}

	guild, err := s.State.Guild(guildID)
	if err == nil && guild.OwnerID == userID {
		return true
	}

	for _, roleID := range member.Roles {
		role, err := s.State.Role(guildID, roleID)
		if err != nil {
			continue
		}
		if role.Permissions&discordgo.PermissionAdministrator != 0 {
			return true
		}
	}

	return false
}

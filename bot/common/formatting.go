package common

import (
	"fmt"
	"strings"
	"time"

	"yinbot/models"
)

// FormatDiscordTimestamp formats a time as a Discord timestamp that displays in user's local timezone
// Format types: "t" = short time, "T" = long time, "d" = short date, "D" = long date,
// "f" = short date/time, "F" = long date/time, "R" = relative time
func FormatDiscordTimestamp(t time.Time, format string) string {
	return fmt.Sprintf("<t:%d:%s>", t.Unix(), format)
}

// FormatLedgerEntry renders one ledger line as "#idx [severity] reason (by @author, when)"
func FormatLedgerEntry(entry *models.LedgerEntry) string {
	return fmt.Sprintf("`#%d` **[%s]** %s (by %s, %s)",
		entry.Index,
		entry.Severity(),
		entry.Reason,
		GetUserMention(entry.AuthorID),
		FormatDiscordTimestamp(entry.LoggedAt, "R"),
	)
}

// FormatLedger renders a ledger listing, or a placeholder when it is empty
func FormatLedger(entries []*models.LedgerEntry, empty string) string {
	if len(entries) == 0 {
		return empty
	}

	lines := make([]string, 0, len(entries))
	for _, entry := range entries {
		lines = append(lines, FormatLedgerEntry(entry))
	}
	return strings.Join(lines, "\n")
}

// FormatChannelList renders channel mentions separated by commas
func FormatChannelList(channelIDs []int64) string {
	if len(channelIDs) == 0 {
		return "none"
	}

	mentions := make([]string, 0, len(channelIDs))
	for _, id := range channelIDs {
		mentions = append(mentions, GetChannelMention(id))
	}
	return strings.Join(mentions, ", ")
}

// ExpandGreeting substitutes {user} in a greeting or welcome message
func ExpandGreeting(message string, userID int64) string {
	return strings.ReplaceAll(message, "{user}", GetUserMention(userID))
}

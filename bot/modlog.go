package bot

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"yinbot/bot/common"
	"yinbot/events"
	"yinbot/models"
)

// postToModlog mirrors ledger changes into the guild's modlog channels
func (b *Bot) postToModlog(ctx context.Context, event events.Event) {
	guildID, message, ok := ModlogMessage(event)
	if !ok || !b.services.Cache.Get(guildID).ModlogEnabled {
		return
	}

	channels, err := b.services.Channels.List(ctx, guildID, models.ChannelKindModlog)
	if err != nil {
		log.WithFields(log.Fields{
			"guild_id": guildID,
			"error":    err,
		}).Error("Failed to look up modlog channels")
		return
	}

	for _, channelID := range channels {
		if _, err := b.session.ChannelMessageSend(common.FormatID(channelID), message); err != nil {
			log.WithFields(log.Fields{
				"guild_id":   guildID,
				"channel_id": channelID,
				"error":      err,
			}).Warn("Failed to post to modlog")
		}
	}
}

// ModlogMessage renders the modlog line for a ledger event
func ModlogMessage(event events.Event) (int64, string, bool) {
	switch e := event.(type) {
	case events.LedgerEntryAppendedEvent:
		return e.GuildID, fmt.Sprintf("📝 %s `#%d` recorded for %s by %s (%d total)",
			ledgerNoun(e.Ledger), e.Index, common.GetUserMention(e.UserID), common.GetUserMention(e.AuthorID), e.Count), true
	case events.LedgerEntryEditedEvent:
		return e.GuildID, fmt.Sprintf("✏️ %s `#%d` of %s edited",
			ledgerNoun(e.Ledger), e.Index, common.GetUserMention(e.UserID)), true
	case events.LedgerEntryDeletedEvent:
		return e.GuildID, fmt.Sprintf("🗑️ %s `#%d` of %s removed",
			ledgerNoun(e.Ledger), e.Index, common.GetUserMention(e.UserID)), true
	}
	return 0, "", false
}

func ledgerNoun(kind models.LedgerKind) string {
	if kind == models.LedgerModeration {
		return "Moderation entry"
	}
	return "Warning"
}

package bot

import (
	"context"
	"slices"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"

	"yinbot/bot/common"
	"yinbot/models"
)

// handleReady rebuilds the settings cache. Ready arrives on the first connect
// and again after every reconnect that could not resume the session.
func (b *Bot) handleReady(s *discordgo.Session, r *discordgo.Ready) {
	fields := log.Fields{"guilds": len(r.Guilds)}
	if r.User != nil {
		fields["user"] = r.User.Username
	}

	if err := b.services.Cache.LoadAll(context.Background()); err != nil {
		fields["error"] = err
		log.WithFields(fields).Error("Failed to reload guild settings, serving previous cache")
		return
	}

	fields["cached"] = b.services.Cache.Len()
	log.WithFields(fields).Info("Gateway ready")
}

// handleGuildCreate registers guilds the bot joins or that were unknown at startup
func (b *Bot) handleGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	guildID, err := common.ParseID(g.ID)
	if err != nil {
		log.WithField("guild", g.ID).Error("Invalid guild ID")
		return
	}
	if b.services.Cache.Has(guildID) {
		return
	}

	if _, err := b.services.Guilds.Join(context.Background(), guildID); err != nil {
		log.WithFields(log.Fields{
			"guild_id": guildID,
			"error":    err,
		}).Error("Failed to register guild")
	}
}

// handleChannelDelete drops a deleted channel from every feature set
func (b *Bot) handleChannelDelete(s *discordgo.Session, c *discordgo.ChannelDelete) {
	guildID, err := common.ParseID(c.GuildID)
	if err != nil {
		return
	}
	channelID, err := common.ParseID(c.ID)
	if err != nil {
		return
	}

	kinds, err := b.services.Channels.RemoveEverywhere(context.Background(), guildID, channelID)
	if err != nil {
		log.WithFields(log.Fields{
			"guild_id":   guildID,
			"channel_id": channelID,
			"error":      err,
		}).Error("Failed to clean up deleted channel")
		return
	}
	if len(kinds) > 0 {
		log.WithFields(log.Fields{
			"guild_id":   guildID,
			"channel_id": channelID,
			"kinds":      kinds,
		}).Info("Removed deleted channel from feature sets")
	}
}

// handleMessageCreate enforces the invite filter. Blacklisted channels are ignored entirely.
func (b *Bot) handleMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.GuildID == "" {
		return
	}

	channelID, err := common.ParseID(m.ChannelID)
	if err != nil || b.services.Cache.IsBlacklisted(channelID) {
		return
	}
	guildID, err := common.ParseID(m.GuildID)
	if err != nil {
		return
	}

	settings := b.services.Cache.Get(guildID)
	if settings.InvitesAllowed || !ContainsInvite(m.Content) {
		return
	}
	if common.IsUserAdmin(s, m.GuildID, m.Author.ID) {
		return
	}

	if err := s.ChannelMessageDelete(m.ChannelID, m.ID); err != nil {
		log.WithFields(log.Fields{
			"guild_id":   guildID,
			"channel_id": channelID,
			"error":      err,
		}).Warn("Failed to delete invite link")
	}
}

// handleVoiceStateUpdate grants the roles of the joined voice channel and
// revokes those of the channel left
func (b *Bot) handleVoiceStateUpdate(s *discordgo.Session, v *discordgo.VoiceStateUpdate) {
	guildID, err := common.ParseID(v.GuildID)
	if err != nil || !b.services.Cache.Get(guildID).VoiceEnabled {
		return
	}

	var before string
	if v.BeforeUpdate != nil {
		before = v.BeforeUpdate.ChannelID
	}
	left, joined := VoiceTransition(before, v.ChannelID)

	ctx := context.Background()
	apply := func(channel string, grant bool) {
		channelID, err := common.ParseID(channel)
		if err != nil {
			return
		}
		roles, err := b.services.RoleAssociations.RolesForChannel(ctx, guildID, channelID)
		if err != nil {
			log.WithFields(log.Fields{
				"guild_id":   guildID,
				"channel_id": channelID,
				"error":      err,
			}).Error("Failed to look up voice roles")
			return
		}
		for _, roleID := range roles {
			role := common.FormatID(roleID)
			if grant {
				err = s.GuildMemberRoleAdd(v.GuildID, v.UserID, role)
			} else {
				err = s.GuildMemberRoleRemove(v.GuildID, v.UserID, role)
			}
			if err != nil {
				log.WithFields(log.Fields{
					"guild_id": guildID,
					"role_id":  roleID,
					"grant":    grant,
					"error":    err,
				}).Warn("Failed to update voice role")
			}
		}
	}

	if left != "" {
		apply(left, false)
	}
	if joined != "" {
		apply(joined, true)
	}
}

// VoiceTransition returns the channel left and the channel joined by a voice
// state change. Either is empty when the member did not leave or join one.
func VoiceTransition(before, after string) (left, joined string) {
	if before == after {
		return "", ""
	}
	return before, after
}

// handleGuildMemberAdd hands out autoassign roles and posts the welcome message
func (b *Bot) handleGuildMemberAdd(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
	if m.User == nil || m.User.Bot {
		return
	}
	guildID, err := common.ParseID(m.GuildID)
	if err != nil {
		return
	}
	userID, err := common.ParseID(m.User.ID)
	if err != nil {
		return
	}
	ctx := context.Background()
	fields := log.Fields{"guild_id": guildID, "user_id": userID}

	roles, err := b.services.RoleSets.List(ctx, guildID, models.RoleSetAutoassign)
	if err != nil {
		log.WithFields(fields).WithError(err).Error("Failed to look up autoassign roles")
	}
	for _, roleID := range roles {
		if err := s.GuildMemberRoleAdd(m.GuildID, m.User.ID, common.FormatID(roleID)); err != nil {
			log.WithFields(fields).WithError(err).Warn("Failed to autoassign role")
		}
	}

	settings := b.services.Cache.Get(guildID)
	if !settings.WelcomeEnabled || !settings.HasWelcomeMessage() {
		return
	}
	channels, err := b.services.Channels.List(ctx, guildID, models.ChannelKindWelcome)
	if err != nil {
		log.WithFields(fields).WithError(err).Error("Failed to look up welcome channels")
		return
	}
	message := common.ExpandGreeting(*settings.WelcomeMessage, userID)
	for _, channelID := range channels {
		if _, err := s.ChannelMessageSend(common.FormatID(channelID), message); err != nil {
			log.WithFields(fields).WithError(err).Warn("Failed to post welcome message")
		}
	}
}

// handleGuildMemberUpdate posts the greetings of roles a member just received
func (b *Bot) handleGuildMemberUpdate(s *discordgo.Session, m *discordgo.GuildMemberUpdate) {
	if m.BeforeUpdate == nil || m.User == nil {
		return
	}
	guildID, err := common.ParseID(m.GuildID)
	if err != nil {
		return
	}
	userID, err := common.ParseID(m.User.ID)
	if err != nil {
		return
	}

	ctx := context.Background()
	for _, role := range AddedRoles(m.BeforeUpdate.Roles, m.Roles) {
		roleID, err := common.ParseID(role)
		if err != nil {
			continue
		}
		greetings, err := b.services.RoleAssociations.GreetingsForRole(ctx, guildID, roleID)
		if err != nil {
			log.WithFields(log.Fields{
				"guild_id": guildID,
				"role_id":  roleID,
				"error":    err,
			}).Error("Failed to look up role greetings")
			continue
		}
		for _, greeting := range greetings {
			message := common.ExpandGreeting(greeting.Message, userID)
			if _, err := s.ChannelMessageSend(common.FormatID(greeting.ChannelID), message); err != nil {
				log.WithFields(log.Fields{
					"guild_id":   guildID,
					"channel_id": greeting.ChannelID,
					"error":      err,
				}).Warn("Failed to post role greeting")
			}
		}
	}
}

// AddedRoles returns the roles present in after but not in before
func AddedRoles(before, after []string) []string {
	var added []string
	for _, role := range after {
		if !slices.Contains(before, role) {
			added = append(added, role)
		}
	}
	return added
}

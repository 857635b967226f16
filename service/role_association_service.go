package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/mo"
	log "github.com/sirupsen/logrus"

	"yinbot/models"
)

// roleAssociationService implements the RoleAssociationService interface
type roleAssociationService struct {
	store store
}

// NewRoleAssociationService creates a new role association service
func NewRoleAssociationService(uowFactory UnitOfWorkFactory, cfg StoreConfig) RoleAssociationService {
	return &roleAssociationService{store: newStore(uowFactory, cfg)}
}

// Associate links a role to a voice channel. Linking twice still succeeds.
func (s *roleAssociationService) Associate(ctx context.Context, guildID, channelID, roleID int64) (bool, error) {
	fields := log.Fields{"guild_id": guildID, "channel_id": channelID, "role_id": roleID}
	err := s.store.write(ctx, "associate voice role", fields, func(ctx context.Context, uow UnitOfWork) error {
		if _, err := s.store.ensureGuild(ctx, uow, guildID); err != nil {
			return err
		}
		return uow.RoleAssociationRepository().InsertVoiceRole(ctx, guildID, channelID, roleID)
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// Disassociate unlinks a role from a voice channel, ErrNotFound if they were not linked
func (s *roleAssociationService) Disassociate(ctx context.Context, guildID, channelID, roleID int64) (bool, error) {
	fields := log.Fields{"guild_id": guildID, "channel_id": channelID, "role_id": roleID}
	err := s.store.write(ctx, "disassociate voice role", fields, func(ctx context.Context, uow UnitOfWork) error {
		removed, err := uow.RoleAssociationRepository().DeleteVoiceRole(ctx, guildID, channelID, roleID)
		if err != nil {
			return err
		}
		if !removed {
			return fmt.Errorf("%w: role %d is not linked to channel %d", ErrNotFound, roleID, channelID)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// RolesForChannel returns the roles granted while in a voice channel
func (s *roleAssociationService) RolesForChannel(ctx context.Context, guildID, channelID int64) ([]int64, error) {
	var roles []int64
	fields := log.Fields{"guild_id": guildID, "channel_id": channelID}
	err := s.store.read(ctx, "roles for channel", fields, func(ctx context.Context, uow UnitOfWork) error {
		var err error
		roles, err = uow.RoleAssociationRepository().RolesForChannel(ctx, guildID, channelID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return roles, nil
}

// ChannelsForRole returns the voice channels that grant a role
func (s *roleAssociationService) ChannelsForRole(ctx context.Context, guildID, roleID int64) ([]int64, error) {
	var channels []int64
	fields := log.Fields{"guild_id": guildID, "role_id": roleID}
	err := s.store.read(ctx, "channels for role", fields, func(ctx context.Context, uow UnitOfWork) error {
		var err error
		channels, err = uow.RoleAssociationRepository().ChannelsForRole(ctx, guildID, roleID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return channels, nil
}

// Purge removes every voice role link of the guild
func (s *roleAssociationService) Purge(ctx context.Context, guildID int64) error {
	var purged int64
	err := s.store.write(ctx, "purge voice roles", log.Fields{"guild_id": guildID}, func(ctx context.Context, uow UnitOfWork) error {
		var err error
		purged, err = uow.RoleAssociationRepository().DeleteVoiceRolesByGuild(ctx, guildID)
		return err
	})
	if err != nil {
		return err
	}

	log.WithFields(log.Fields{"guild_id": guildID, "purged": purged}).Info("Purged voice roles")
	return nil
}

// SetGreeting stores the message posted in a channel when the role is granted
func (s *roleAssociationService) SetGreeting(ctx context.Context, guildID, channelID, roleID int64, message string) error {
	message = strings.TrimSpace(message)
	if message == "" {
		return invalidArgument("greeting message is required")
	}

	fields := log.Fields{"guild_id": guildID, "channel_id": channelID, "role_id": roleID}
	return s.store.write(ctx, "set role greeting", fields, func(ctx context.Context, uow UnitOfWork) error {
		if _, err := s.store.ensureGuild(ctx, uow, guildID); err != nil {
			return err
		}
		return uow.RoleAssociationRepository().UpsertGreeting(ctx, &models.RoleGreeting{
			GuildID:   guildID,
			ChannelID: channelID,
			RoleID:    roleID,
			Message:   message,
		})
	})
}

// GetGreeting returns the greeting for (channel, role), None when unset
func (s *roleAssociationService) GetGreeting(ctx context.Context, guildID, channelID, roleID int64) (mo.Option[string], error) {
	var greeting *models.RoleGreeting
	fields := log.Fields{"guild_id": guildID, "channel_id": channelID, "role_id": roleID}
	err := s.store.read(ctx, "get role greeting", fields, func(ctx context.Context, uow UnitOfWork) error {
		var err error
		greeting, err = uow.RoleAssociationRepository().GetGreeting(ctx, guildID, channelID, roleID)
		return err
	})
	if err != nil || greeting == nil {
		return mo.None[string](), err
	}
	return mo.Some(greeting.Message), nil
}

// DeleteGreeting removes the greeting for (channel, role). Reports false if none was set.
func (s *roleAssociationService) DeleteGreeting(ctx context.Context, guildID, channelID, roleID int64) (bool, error) {
	var deleted bool
	fields := log.Fields{"guild_id": guildID, "channel_id": channelID, "role_id": roleID}
	err := s.store.write(ctx, "delete role greeting", fields, func(ctx context.Context, uow UnitOfWork) error {
		var err error
		deleted, err = uow.RoleAssociationRepository().DeleteGreeting(ctx, guildID, channelID, roleID)
		return err
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

// GreetingsForRole returns every greeting configured for the role
func (s *roleAssociationService) GreetingsForRole(ctx context.Context, guildID, roleID int64) ([]*models.RoleGreeting, error) {
	var greetings []*models.RoleGreeting
	fields := log.Fields{"guild_id": guildID, "role_id": roleID}
	err := s.store.read(ctx, "greetings for role", fields, func(ctx context.Context, uow UnitOfWork) error {
		var err error
		greetings, err = uow.RoleAssociationRepository().GreetingsForRole(ctx, guildID, roleID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return greetings, nil
}

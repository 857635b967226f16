package service

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"yinbot/models"
)

type roleSetService struct {
	store store
}

// NewRoleSetService creates a new role set service
func NewRoleSetService(uowFactory UnitOfWorkFactory, cfg StoreConfig) RoleSetService {
	return &roleSetService{store: newStore(uowFactory, cfg)}
}

func (s *roleSetService) Add(ctx context.Context, guildID int64, kind models.RoleSetKind, roleID int64) (bool, error) {
	var added bool
	fields := log.Fields{"guild_id": guildID, "kind": kind, "role_id": roleID}
	err := s.store.write(ctx, "add role", fields, func(ctx context.Context, uow UnitOfWork) error {
		if _, err := s.store.ensureGuild(ctx, uow, guildID); err != nil {
			return err
		}
		var err error
		added, err = uow.RoleSetRepository().Insert(ctx, guildID, kind, roleID)
		return err
	})
	if err != nil {
		return false, err
	}
	return added, nil
}

func (s *roleSetService) Remove(ctx context.Context, guildID int64, kind models.RoleSetKind, roleID int64) (bool, error) {
	fields := log.Fields{"guild_id": guildID, "kind": kind, "role_id": roleID}
	err := s.store.write(ctx, "remove role", fields, func(ctx context.Context, uow UnitOfWork) error {
		removed, err := uow.RoleSetRepository().Delete(ctx, guildID, kind, roleID)
		if err != nil {
			return err
		}
		if !removed {
			return fmt.Errorf("%w: role %d is not a %s role", ErrNotFound, roleID, kind)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *roleSetService) Contains(ctx context.Context, guildID int64, kind models.RoleSetKind, roleID int64) (bool, error) {
	var ok bool
	fields := log.Fields{"guild_id": guildID, "kind": kind, "role_id": roleID}
	err := s.store.read(ctx, "check role", fields, func(ctx context.Context, uow UnitOfWork) error {
		var err error
		ok, err = uow.RoleSetRepository().Contains(ctx, guildID, kind, roleID)
		return err
	})
	if err != nil {
		return false, err
	}
	return ok, nil
}

func (s *roleSetService) List(ctx context.Context, guildID int64, kind models.RoleSetKind) ([]int64, error) {
	var roles []int64
	fields := log.Fields{"guild_id": guildID, "kind": kind}
	err := s.store.read(ctx, "list roles", fields, func(ctx context.Context, uow UnitOfWork) error {
		var err error
		roles, err = uow.RoleSetRepository().List(ctx, guildID, kind)
		return err
	})
	if err != nil {
		return nil, err
	}
	return roles, nil
}

package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"yinbot/models"
)

func TestRoleSetService_AddRemove(t *testing.T) {
	ctx := context.Background()
	d := newTestDeps()
	svc := NewRoleSetService(d.factory, testStoreConfig)

	d.expectWrite()
	d.expectWrite()
	d.guilds.On("Create", mock.Anything, testGuildID, "-").Return(false, nil)
	d.roleSets.On("Insert", mock.Anything, testGuildID, models.RoleSetAssignable, testRoleID).Return(true, nil)
	d.roleSets.On("Delete", mock.Anything, testGuildID, models.RoleSetAssignable, testRoleID).Return(true, nil)

	added, err := svc.Add(ctx, testGuildID, models.RoleSetAssignable, testRoleID)
	require.NoError(t, err)
	assert.True(t, added)

	removed, err := svc.Remove(ctx, testGuildID, models.RoleSetAssignable, testRoleID)
	require.NoError(t, err)
	assert.True(t, removed)
	d.assertExpectations(t)
}

func TestRoleSetService_RemoveAbsentIsNotFound(t *testing.T) {
	d := newTestDeps()
	svc := NewRoleSetService(d.factory, testStoreConfig)

	d.expectFailedWrite()
	d.roleSets.On("Delete", mock.Anything, testGuildID, models.RoleSetAutoassign, testRoleID).Return(false, nil)

	removed, err := svc.Remove(context.Background(), testGuildID, models.RoleSetAutoassign, testRoleID)

	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, removed)
	d.assertExpectations(t)
}

func TestRoleSetService_ContainsAndList(t *testing.T) {
	ctx := context.Background()
	d := newTestDeps()
	svc := NewRoleSetService(d.factory, testStoreConfig)

	d.expectRead()
	d.expectRead()
	d.roleSets.On("Contains", mock.Anything, testGuildID, models.RoleSetAssignable, testRoleID).Return(true, nil)
	d.roleSets.On("List", mock.Anything, testGuildID, models.RoleSetAutoassign).Return([]int64{1, 2}, nil)

	ok, err := svc.Contains(ctx, testGuildID, models.RoleSetAssignable, testRoleID)
	require.NoError(t, err)
	assert.True(t, ok)

	roles, err := svc.List(ctx, testGuildID, models.RoleSetAutoassign)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, roles)
	d.assertExpectations(t)
}

package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"yinbot/models"
)

var testStoreConfig = StoreConfig{Timeout: time.Second, DefaultPrefix: "-"}

type testDeps struct {
	factory    *MockUnitOfWorkFactory
	uow        *MockUnitOfWork
	guilds     *MockGuildRepository
	channels   *MockChannelSetRepository
	warnings   *MockLedgerRepository
	moderation *MockLedgerRepository
	roles      *MockRoleAssociationRepository
	roleSets   *MockRoleSetRepository
}

func newTestDeps() *testDeps {
	d := &testDeps{
		factory:    new(MockUnitOfWorkFactory),
		uow:        NewMockUnitOfWork(),
		guilds:     new(MockGuildRepository),
		channels:   new(MockChannelSetRepository),
		warnings:   new(MockLedgerRepository),
		moderation: new(MockLedgerRepository),
		roles:      new(MockRoleAssociationRepository),
		roleSets:   new(MockRoleSetRepository),
	}

	d.uow.SetGuildRepository(d.guilds)
	d.uow.SetChannelSetRepository(d.channels)
	d.uow.SetLedgerRepository(models.LedgerWarning, d.warnings)
	d.uow.SetLedgerRepository(models.LedgerModeration, d.moderation)
	d.uow.SetRoleAssociationRepository(d.roles)
	d.uow.SetRoleSetRepository(d.roleSets)

	d.factory.On("Create").Return(d.uow)
	d.uow.On("Rollback").Return(nil)

	return d
}

// expectWrite expects one read-write unit of work that commits
func (d *testDeps) expectWrite() {
	d.uow.On("Begin", mock.Anything).Return(nil).Once()
	d.uow.On("Commit").Return(nil).Once()
}

// expectFailedWrite expects one read-write unit of work that never commits
func (d *testDeps) expectFailedWrite() {
	d.uow.On("Begin", mock.Anything).Return(nil).Once()
}

// expectRead expects one snapshot unit of work that commits
func (d *testDeps) expectRead() {
	d.uow.On("BeginSnapshot", mock.Anything).Return(nil).Once()
	d.uow.On("Commit").Return(nil).Once()
}

func (d *testDeps) assertExpectations(t *testing.T) {
	t.Helper()
	d.factory.AssertExpectations(t)
	d.uow.AssertExpectations(t)
	d.guilds.AssertExpectations(t)
	d.channels.AssertExpectations(t)
	d.warnings.AssertExpectations(t)
	d.moderation.AssertExpectations(t)
	d.roles.AssertExpectations(t)
	d.roleSets.AssertExpectations(t)
}

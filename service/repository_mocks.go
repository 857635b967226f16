package service

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"yinbot/events"
	"yinbot/models"
)

// MockGuildRepository is a mock implementation of GuildRepository
type MockGuildRepository struct {
	mock.Mock
}

func (m *MockGuildRepository) Create(ctx context.Context, guildID int64, prefix string) (bool, error) {
	args := m.Called(ctx, guildID, prefix)
	return args.Bool(0), args.Error(1)
}

func (m *MockGuildRepository) Lock(ctx context.Context, guildID int64) (bool, error) {
	args := m.Called(ctx, guildID)
	return args.Bool(0), args.Error(1)
}

func (m *MockGuildRepository) Get(ctx context.Context, guildID int64) (*models.GuildSettings, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.GuildSettings), args.Error(1)
}

func (m *MockGuildRepository) GetAll(ctx context.Context) ([]*models.GuildSettings, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.GuildSettings), args.Error(1)
}

func (m *MockGuildRepository) SetFlag(ctx context.Context, guildID int64, kind models.ChannelKind, enabled bool) error {
	args := m.Called(ctx, guildID, kind, enabled)
	return args.Error(0)
}

func (m *MockGuildRepository) SetPrefix(ctx context.Context, guildID int64, prefix string) error {
	args := m.Called(ctx, guildID, prefix)
	return args.Error(0)
}

func (m *MockGuildRepository) SetInvitesAllowed(ctx context.Context, guildID int64, allowed bool) error {
	args := m.Called(ctx, guildID, allowed)
	return args.Error(0)
}

func (m *MockGuildRepository) SetVoiceEnabled(ctx context.Context, guildID int64, enabled bool) error {
	args := m.Called(ctx, guildID, enabled)
	return args.Error(0)
}

func (m *MockGuildRepository) SetWarningsDM(ctx context.Context, guildID int64, enabled bool) error {
	args := m.Called(ctx, guildID, enabled)
	return args.Error(0)
}

func (m *MockGuildRepository) SetWelcomeMessage(ctx context.Context, guildID int64, message *string) error {
	args := m.Called(ctx, guildID, message)
	return args.Error(0)
}

func (m *MockGuildRepository) SetBanFooter(ctx context.Context, guildID int64, footer *string) error {
	args := m.Called(ctx, guildID, footer)
	return args.Error(0)
}

func (m *MockGuildRepository) SetKickFooter(ctx context.Context, guildID int64, footer *string) error {
	args := m.Called(ctx, guildID, footer)
	return args.Error(0)
}

// MockChannelSetRepository is a mock implementation of ChannelSetRepository
type MockChannelSetRepository struct {
	mock.Mock
}

func (m *MockChannelSetRepository) Insert(ctx context.Context, guildID int64, kind models.ChannelKind, channelID int64) (bool, error) {
	args := m.Called(ctx, guildID, kind, channelID)
	return args.Bool(0), args.Error(1)
}

func (m *MockChannelSetRepository) Delete(ctx context.Context, guildID int64, kind models.ChannelKind, channelID int64) (bool, error) {
	args := m.Called(ctx, guildID, kind, channelID)
	return args.Bool(0), args.Error(1)
}

func (m *MockChannelSetRepository) Count(ctx context.Context, guildID int64, kind models.ChannelKind) (int, error) {
	args := m.Called(ctx, guildID, kind)
	return args.Int(0), args.Error(1)
}

func (m *MockChannelSetRepository) List(ctx context.Context, guildID int64, kind models.ChannelKind) ([]int64, error) {
	args := m.Called(ctx, guildID, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockChannelSetRepository) ListAll(ctx context.Context, kind models.ChannelKind) ([]int64, error) {
	args := m.Called(ctx, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

// MockLedgerRepository is a mock implementation of LedgerRepository
type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) Append(ctx context.Context, guildID, userID, authorID int64, payload models.LedgerPayload) (int, error) {
	args := m.Called(ctx, guildID, userID, authorID, payload)
	return args.Int(0), args.Error(1)
}

func (m *MockLedgerRepository) Count(ctx context.Context, guildID, userID int64) (int, error) {
	args := m.Called(ctx, guildID, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockLedgerRepository) Get(ctx context.Context, guildID, userID int64, index int) (*models.LedgerEntry, error) {
	args := m.Called(ctx, guildID, userID, index)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LedgerEntry), args.Error(1)
}

func (m *MockLedgerRepository) Update(ctx context.Context, guildID, userID int64, index int, payload models.LedgerPayload) (bool, error) {
	args := m.Called(ctx, guildID, userID, index, payload)
	return args.Bool(0), args.Error(1)
}

func (m *MockLedgerRepository) Delete(ctx context.Context, guildID, userID int64, index int) (bool, error) {
	args := m.Called(ctx, guildID, userID, index)
	return args.Bool(0), args.Error(1)
}

func (m *MockLedgerRepository) List(ctx context.Context, guildID, userID int64, since time.Time) ([]*models.LedgerEntry, error) {
	args := m.Called(ctx, guildID, userID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LedgerEntry), args.Error(1)
}

// MockRoleAssociationRepository is a mock implementation of RoleAssociationRepository
type MockRoleAssociationRepository struct {
	mock.Mock
}

func (m *MockRoleAssociationRepository) InsertVoiceRole(ctx context.Context, guildID, channelID, roleID int64) error {
	args := m.Called(ctx, guildID, channelID, roleID)
	return args.Error(0)
}

func (m *MockRoleAssociationRepository) DeleteVoiceRole(ctx context.Context, guildID, channelID, roleID int64) (bool, error) {
	args := m.Called(ctx, guildID, channelID, roleID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRoleAssociationRepository) RolesForChannel(ctx context.Context, guildID, channelID int64) ([]int64, error) {
	args := m.Called(ctx, guildID, channelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockRoleAssociationRepository) ChannelsForRole(ctx context.Context, guildID, roleID int64) ([]int64, error) {
	args := m.Called(ctx, guildID, roleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockRoleAssociationRepository) DeleteVoiceRolesByGuild(ctx context.Context, guildID int64) (int64, error) {
	args := m.Called(ctx, guildID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRoleAssociationRepository) UpsertGreeting(ctx context.Context, greeting *models.RoleGreeting) error {
	args := m.Called(ctx, greeting)
	return args.Error(0)
}

func (m *MockRoleAssociationRepository) GetGreeting(ctx context.Context, guildID, channelID, roleID int64) (*models.RoleGreeting, error) {
	args := m.Called(ctx, guildID, channelID, roleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RoleGreeting), args.Error(1)
}

func (m *MockRoleAssociationRepository) DeleteGreeting(ctx context.Context, guildID, channelID, roleID int64) (bool, error) {
	args := m.Called(ctx, guildID, channelID, roleID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRoleAssociationRepository) GreetingsForRole(ctx context.Context, guildID, roleID int64) ([]*models.RoleGreeting, error) {
	args := m.Called(ctx, guildID, roleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.RoleGreeting), args.Error(1)
}

func (m *MockRoleAssociationRepository) DeleteGreetingsByGuild(ctx context.Context, guildID int64) (int64, error) {
	args := m.Called(ctx, guildID)
	return args.Get(0).(int64), args.Error(1)
}

// MockRoleSetRepository is a mock implementation of RoleSetRepository
type MockRoleSetRepository struct {
	mock.Mock
}

func (m *MockRoleSetRepository) Insert(ctx context.Context, guildID int64, kind models.RoleSetKind, roleID int64) (bool, error) {
	args := m.Called(ctx, guildID, kind, roleID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRoleSetRepository) Delete(ctx context.Context, guildID int64, kind models.RoleSetKind, roleID int64) (bool, error) {
	args := m.Called(ctx, guildID, kind, roleID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRoleSetRepository) Contains(ctx context.Context, guildID int64, kind models.RoleSetKind, roleID int64) (bool, error) {
	args := m.Called(ctx, guildID, kind, roleID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRoleSetRepository) List(ctx context.Context, guildID int64, kind models.RoleSetKind) ([]int64, error) {
	args := m.Called(ctx, guildID, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

// MockEventPublisher records published events
type MockEventPublisher struct {
	mu     sync.Mutex
	Events []events.Event
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, event)
}

// Published returns a copy of the recorded events
func (m *MockEventPublisher) Published() []events.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]events.Event, len(m.Events))
	copy(out, m.Events)
	return out
}

// MockUnitOfWork is a mock implementation of UnitOfWork. Transaction
// lifecycle calls go through testify, repositories are plain fields.
type MockUnitOfWork struct {
	mock.Mock
	guildRepo      GuildRepository
	channelSetRepo ChannelSetRepository
	ledgerRepos    map[models.LedgerKind]LedgerRepository
	roleAssocRepo  RoleAssociationRepository
	roleSetRepo    RoleSetRepository
	Publisher      *MockEventPublisher
}

// NewMockUnitOfWork creates a mock unit of work with an event recorder
func NewMockUnitOfWork() *MockUnitOfWork {
	return &MockUnitOfWork{
		ledgerRepos: make(map[models.LedgerKind]LedgerRepository),
		Publisher:   &MockEventPublisher{},
	}
}

func (m *MockUnitOfWork) SetGuildRepository(repo GuildRepository) {
	m.guildRepo = repo
}

func (m *MockUnitOfWork) SetChannelSetRepository(repo ChannelSetRepository) {
	m.channelSetRepo = repo
}

func (m *MockUnitOfWork) SetLedgerRepository(kind models.LedgerKind, repo LedgerRepository) {
	m.ledgerRepos[kind] = repo
}

func (m *MockUnitOfWork) SetRoleAssociationRepository(repo RoleAssociationRepository) {
	m.roleAssocRepo = repo
}

func (m *MockUnitOfWork) SetRoleSetRepository(repo RoleSetRepository) {
	m.roleSetRepo = repo
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) BeginSnapshot(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) GuildRepository() GuildRepository {
	return m.guildRepo
}

func (m *MockUnitOfWork) ChannelSetRepository() ChannelSetRepository {
	return m.channelSetRepo
}

func (m *MockUnitOfWork) LedgerRepository(kind models.LedgerKind) LedgerRepository {
	return m.ledgerRepos[kind]
}

func (m *MockUnitOfWork) RoleAssociationRepository() RoleAssociationRepository {
	return m.roleAssocRepo
}

func (m *MockUnitOfWork) RoleSetRepository() RoleSetRepository {
	return m.roleSetRepo
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	return m.Publisher
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}

package github

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockAPIClient is a mock implementation of APIClient for testing
type MockAPIClient struct {
	mock.Mock
}

func (m *MockAPIClient) ListRepositoryNames(ctx context.Context) (*RepositoryList, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*RepositoryList), args.Error(1)
}

func (m *MockAPIClient) GetRepositoryID(ctx context.Context, name string) (int64, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAPIClient) CreateRepository(ctx context.Context, cfg RepositoryConfig) error {
	args := m.Called(ctx, cfg)
	return args.Error(0)
}

func (m *MockAPIClient) EnableVulnerabilityAlerts(ctx context.Context, repo string) error {
	args := m.Called(ctx, repo)
	return args.Error(0)
}

func (m *MockAPIClient) EnableAutomatedSecurityFixes(ctx context.Context, repo string) error {
	args := m.Called(ctx, repo)
	return args.Error(0)
}

func (m *MockAPIClient) ProtectBranch(ctx context.Context, repo, branch string) error {
	args := m.Called(ctx, repo, branch)
	return args.Error(0)
}

func (m *MockAPIClient) CreateEnvironment(ctx context.Context, repo string, env EnvironmentConfig) error {
	args := m.Called(ctx, repo, env)
	return args.Error(0)
}

func (m *MockAPIClient) GetRepoPublicKey(ctx context.Context, repo string) (*EncryptionKey, error) {
	args := m.Called(ctx, repo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*EncryptionKey), args.Error(1)
}

func (m *MockAPIClient) GetEnvPublicKey(ctx context.Context, repoID int64, environment string) (*EncryptionKey, error) {
	args := m.Called(ctx, repoID, environment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*EncryptionKey), args.Error(1)
}

func (m *MockAPIClient) PutRepoSecret(ctx context.Context, repo string, secret EncryptedSecret) error {
	args := m.Called(ctx, repo, secret)
	return args.Error(0)
}

func (m *MockAPIClient) PutEnvSecret(ctx context.Context, repoID int64, environment string, secret EncryptedSecret) error {
	args := m.Called(ctx, repoID, environment, secret)
	return args.Error(0)
}

func (m *MockAPIClient) TeamExists(ctx context.Context, slug string) (bool, error) {
	args := m.Called(ctx, slug)
	return args.Bool(0), args.Error(1)
}

func (m *MockAPIClient) CreateTeam(ctx context.Context, team TeamConfig) error {
	args := m.Called(ctx, team)
	return args.Error(0)
}

func (m *MockAPIClient) MapTeamGroups(ctx context.Context, slug string, groups []IDPGroup) error {
	args := m.Called(ctx, slug, groups)
	return args.Error(0)
}

func (m *MockAPIClient) AddTeamRepository(ctx context.Context, slug, repo, permission string) error {
	args := m.Called(ctx, slug, repo, permission)
	return args.Error(0)
}

func (m *MockAPIClient) StartMigration(ctx context.Context, repos []string) (*Migration, error) {
	args := m.Called(ctx, repos)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Migration), args.Error(1)
}

func (m *MockAPIClient) MigrationStatus(ctx context.Context, id int64) (*Migration, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Migration), args.Error(1)
}

func (m *MockAPIClient) DownloadMigrationArchive(ctx context.Context, id int64) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

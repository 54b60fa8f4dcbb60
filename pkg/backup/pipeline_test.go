package backup

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"repofleet/pkg/github"
)

// MockAPI is a mock implementation of the API interface for testing
type MockAPI struct {
	mock.Mock
}

func (m *MockAPI) ListRepositoryNames(ctx context.Context) (*github.RepositoryList, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*github.RepositoryList), args.Error(1)
}

func (m *MockAPI) StartMigration(ctx context.Context, repos []string) (*github.Migration, error) {
	args := m.Called(ctx, repos)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*github.Migration), args.Error(1)
}

func (m *MockAPI) MigrationStatus(ctx context.Context, id int64) (*github.Migration, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*github.Migration), args.Error(1)
}

func (m *MockAPI) DownloadMigrationArchive(ctx context.Context, id int64) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

// MockBlobStore is a mock implementation of the BlobStore interface for testing
type MockBlobStore struct {
	mock.Mock
}

func (m *MockBlobStore) Upload(ctx context.Context, filePath string) error {
	args := m.Called(ctx, filePath)
	return args.Error(0)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestPipeline(api API, store BlobStore) *Pipeline {
	return NewPipeline(api, store, testLogger(),
		WithPollInterval(time.Millisecond),
		WithMaxPollAttempts(5),
	)
}

func migration(id int64, state string) *github.Migration {
	return &github.Migration{ID: id, State: state}
}

func TestRunExportsAndUploads(t *testing.T) {
	mockAPI := new(MockAPI)
	mockStore := new(MockBlobStore)
	names := []string{"alpha", "beta"}

	mockAPI.On("ListRepositoryNames", mock.Anything).
		Return(&github.RepositoryList{Names: names, Complete: true}, nil)
	mockAPI.On("StartMigration", mock.Anything, names).
		Return(migration(42, github.MigrationStatePending), nil)
	mockAPI.On("MigrationStatus", mock.Anything, int64(42)).
		Return(migration(42, github.MigrationStatePending), nil).Once()
	mockAPI.On("MigrationStatus", mock.Anything, int64(42)).
		Return(migration(42, github.MigrationStateExporting), nil).Once()
	mockAPI.On("MigrationStatus", mock.Anything, int64(42)).
		Return(migration(42, github.MigrationStateExported), nil).Once()
	mockAPI.On("DownloadMigrationArchive", mock.Anything, int64(42)).
		Return("migration_archive_42.tar.gz", nil)
	mockStore.On("Upload", mock.Anything, "migration_archive_42.tar.gz").Return(nil)

	err := newTestPipeline(mockAPI, mockStore).Run(context.Background())

	require.NoError(t, err)
	mockAPI.AssertExpectations(t)
	mockStore.AssertExpectations(t)
	mockStore.AssertNumberOfCalls(t, "Upload", 1)
}

func TestRunRemoteFailureHaltsWithoutError(t *testing.T) {
	mockAPI := new(MockAPI)
	mockStore := new(MockBlobStore)

	mockAPI.On("ListRepositoryNames", mock.Anything).
		Return(&github.RepositoryList{Names: []string{"alpha"}, Complete: true}, nil)
	mockAPI.On("StartMigration", mock.Anything, []string{"alpha"}).
		Return(migration(42, github.MigrationStatePending), nil)
	mockAPI.On("MigrationStatus", mock.Anything, int64(42)).
		Return(migration(42, github.MigrationStateFailed), nil)

	err := newTestPipeline(mockAPI, mockStore).Run(context.Background())

	require.NoError(t, err)
	mockAPI.AssertNotCalled(t, "DownloadMigrationArchive", mock.Anything, mock.Anything)
	mockStore.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
}

func TestRunTimesOutAfterMaxAttempts(t *testing.T) {
	mockAPI := new(MockAPI)
	mockStore := new(MockBlobStore)

	mockAPI.On("ListRepositoryNames", mock.Anything).
		Return(&github.RepositoryList{Names: []string{"alpha"}, Complete: true}, nil)
	mockAPI.On("StartMigration", mock.Anything, []string{"alpha"}).
		Return(migration(42, github.MigrationStatePending), nil)
	mockAPI.On("MigrationStatus", mock.Anything, int64(42)).
		Return(migration(42, github.MigrationStateExporting), nil)

	err := newTestPipeline(mockAPI, mockStore).Run(context.Background())

	require.ErrorIs(t, err, ErrExportTimeout)
	mockAPI.AssertNumberOfCalls(t, "MigrationStatus", 5)
	mockAPI.AssertNotCalled(t, "DownloadMigrationArchive", mock.Anything, mock.Anything)
}

func TestRunStatusCheckFailureHaltsImmediately(t *testing.T) {
	mockAPI := new(MockAPI)
	mockStore := new(MockBlobStore)

	mockAPI.On("ListRepositoryNames", mock.Anything).
		Return(&github.RepositoryList{Names: []string{"alpha"}, Complete: true}, nil)
	mockAPI.On("StartMigration", mock.Anything, []string{"alpha"}).
		Return(migration(42, github.MigrationStatePending), nil)
	mockAPI.On("MigrationStatus", mock.Anything, int64(42)).
		Return(nil, errors.New("boom"))

	err := newTestPipeline(mockAPI, mockStore).Run(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "checking migration status")
	mockAPI.AssertNumberOfCalls(t, "MigrationStatus", 1)
}

func TestRunIncompleteListingAborts(t *testing.T) {
	mockAPI := new(MockAPI)
	mockStore := new(MockBlobStore)

	mockAPI.On("ListRepositoryNames", mock.Anything).
		Return(&github.RepositoryList{Names: []string{"alpha"}, Complete: false}, nil)

	err := newTestPipeline(mockAPI, mockStore).Run(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "incomplete")
	mockAPI.AssertNotCalled(t, "StartMigration", mock.Anything, mock.Anything)
}

func TestRunEmptyOrganizationIsNoOp(t *testing.T) {
	mockAPI := new(MockAPI)
	mockStore := new(MockBlobStore)

	mockAPI.On("ListRepositoryNames", mock.Anything).
		Return(&github.RepositoryList{Complete: true}, nil)

	err := newTestPipeline(mockAPI, mockStore).Run(context.Background())

	require.NoError(t, err)
	mockAPI.AssertNotCalled(t, "StartMigration", mock.Anything, mock.Anything)
	mockStore.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
}

func TestRunDownloadFailure(t *testing.T) {
	mockAPI := new(MockAPI)
	mockStore := new(MockBlobStore)

	mockAPI.On("ListRepositoryNames", mock.Anything).
		Return(&github.RepositoryList{Names: []string{"alpha"}, Complete: true}, nil)
	mockAPI.On("StartMigration", mock.Anything, []string{"alpha"}).
		Return(migration(42, github.MigrationStatePending), nil)
	mockAPI.On("MigrationStatus", mock.Anything, int64(42)).
		Return(migration(42, github.MigrationStateExported), nil)
	mockAPI.On("DownloadMigrationArchive", mock.Anything, int64(42)).
		Return("", errors.New("boom"))

	err := newTestPipeline(mockAPI, mockStore).Run(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "downloading archive")
	mockStore.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
}

func TestRunUploadFailure(t *testing.T) {
	mockAPI := new(MockAPI)
	mockStore := new(MockBlobStore)

	mockAPI.On("ListRepositoryNames", mock.Anything).
		Return(&github.RepositoryList{Names: []string{"alpha"}, Complete: true}, nil)
	mockAPI.On("StartMigration", mock.Anything, []string{"alpha"}).
		Return(migration(42, github.MigrationStatePending), nil)
	mockAPI.On("MigrationStatus", mock.Anything, int64(42)).
		Return(migration(42, github.MigrationStateExported), nil)
	mockAPI.On("DownloadMigrationArchive", mock.Anything, int64(42)).
		Return("migration_archive_42.tar.gz", nil)
	mockStore.On("Upload", mock.Anything, "migration_archive_42.tar.gz").
		Return(errors.New("boom"))

	err := newTestPipeline(mockAPI, mockStore).Run(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "uploading archive")
}

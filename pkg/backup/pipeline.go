// Package backup implements the organization migration export pipeline:
// request an export covering every repository, poll the job until it reaches
// a terminal state, download the archive, and upload it to blob storage.
package backup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/buildkite/roko"

	"repofleet/pkg/github"
)

// Defaults for the migration status poll loop. The loop is bounded so a
// migration that never reaches a terminal state surfaces as ErrExportTimeout
// instead of blocking forever.
const (
	DefaultPollInterval    = 5 * time.Second
	DefaultMaxPollAttempts = 720
)

// ErrExportTimeout is returned when the migration is still in a non-terminal
// state after the maximum number of status polls.
var ErrExportTimeout = errors.New("timed out waiting for migration export to complete")

// errExportInProgress marks a poll attempt that observed a non-terminal
// state. It never escapes the poll loop.
var errExportInProgress = errors.New("migration export in progress")

// API is the subset of GitHub operations the pipeline needs.
type API interface {
	ListRepositoryNames(ctx context.Context) (*github.RepositoryList, error)
	StartMigration(ctx context.Context, repos []string) (*github.Migration, error)
	MigrationStatus(ctx context.Context, id int64) (*github.Migration, error)
	DownloadMigrationArchive(ctx context.Context, id int64) (string, error)
}

// BlobStore uploads a local file to remote blob storage under a blob name
// equal to the file path.
type BlobStore interface {
	Upload(ctx context.Context, filePath string) error
}

// Pipeline runs one migration export end to end. It is strictly sequential
// and produces at most one archive per invocation.
type Pipeline struct {
	api   API
	store BlobStore
	log   *slog.Logger

	pollInterval    time.Duration
	maxPollAttempts int
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithPollInterval sets the delay between migration status polls.
func WithPollInterval(d time.Duration) Option {
	return func(p *Pipeline) { p.pollInterval = d }
}

// WithMaxPollAttempts bounds the number of migration status polls.
func WithMaxPollAttempts(n int) Option {
	return func(p *Pipeline) { p.maxPollAttempts = n }
}

// NewPipeline creates an export pipeline using the given API client, blob
// store, and logger.
func NewPipeline(api API, store BlobStore, log *slog.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		api:             api,
		store:           store,
		log:             log,
		pollInterval:    DefaultPollInterval,
		maxPollAttempts: DefaultMaxPollAttempts,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes the export: enumerate repositories, start the migration, wait
// for a terminal state, then download and upload the archive. A migration
// that ends in the failed state is logged and halts the pipeline without an
// error; every local failure is returned to the caller and nothing is
// retried.
func (p *Pipeline) Run(ctx context.Context) error {
	list, err := p.api.ListRepositoryNames(ctx)
	if err != nil {
		return fmt.Errorf("listing repositories: %w", err)
	}
	if !list.Complete {
		return fmt.Errorf("repository listing incomplete, refusing to export a partial organization")
	}
	if len(list.Names) == 0 {
		p.log.Info("no repositories to export")
		return nil
	}

	migration, err := p.api.StartMigration(ctx, list.Names)
	if err != nil {
		return fmt.Errorf("starting migration: %w", err)
	}
	p.log.Info("migration started", "id", migration.ID, "repositories", len(list.Names))

	state, err := p.awaitExport(ctx, migration.ID)
	if err != nil {
		return err
	}
	if state == github.MigrationStateFailed {
		p.log.Error("migration failed on the remote side", "id", migration.ID)
		return nil
	}

	path, err := p.api.DownloadMigrationArchive(ctx, migration.ID)
	if err != nil {
		return fmt.Errorf("downloading archive for migration %d: %w", migration.ID, err)
	}
	p.log.Info("migration archive downloaded", "id", migration.ID, "path", path)

	if err := p.store.Upload(ctx, path); err != nil {
		return fmt.Errorf("uploading archive %s: %w", path, err)
	}
	p.log.Info("migration archive uploaded", "id", migration.ID, "blob", path)
	return nil
}

// awaitExport polls the migration at a fixed interval until it reaches a
// terminal state. Unknown states keep the poll going. A status-check failure
// halts polling immediately; exhausting the attempt bound yields
// ErrExportTimeout.
func (p *Pipeline) awaitExport(ctx context.Context, id int64) (string, error) {
	retrier := roko.NewRetrier(
		roko.WithMaxAttempts(p.maxPollAttempts),
		roko.WithStrategy(roko.Constant(p.pollInterval)),
	)

	state, err := roko.DoFunc(ctx, retrier, func(r *roko.Retrier) (string, error) {
		migration, err := p.api.MigrationStatus(ctx, id)
		if err != nil {
			r.Break()
			return "", fmt.Errorf("checking migration status: %w", err)
		}
		if migration.Terminal() {
			return migration.State, nil
		}
		p.log.Info("migration in progress", "id", id, "state", migration.State)
		return "", errExportInProgress
	})
	if errors.Is(err, errExportInProgress) {
		return "", ErrExportTimeout
	}
	return state, err
}

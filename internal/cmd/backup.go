package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"repofleet/pkg/backup"
	"repofleet/pkg/config"
	"repofleet/pkg/github"
)

var (
	backupStorage         string
	backupPollInterval    time.Duration
	backupMaxPollAttempts int
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Export the organization and store the archive in blob storage",
	Long: `Export every repository in the organization through a GitHub migration job
and upload the resulting archive to blob storage.

The migration is polled at a fixed interval until it reaches a terminal
state, bounded by a maximum attempt count. The archive is written locally as
migration_archive_<id>.tar.gz and uploaded under that name; the local copy
is kept.

Storage backends:
  azure  Azure Blob Storage, authenticated with the ambient default
         credential chain (managed identity). Requires
         AZURE_STORAGE_ACCOUNT_NAME and AZURE_STORAGE_CONTAINER_NAME.
  s3     Amazon S3, authenticated with the default AWS credential chain.
         Requires BACKUP_S3_BUCKET.

Required environment:
  GITHUB_TOKEN   GitHub access token with repo and admin:org scopes
  ORG_OR_USER    organization whose repositories are exported

Examples:
  repofleet backup
  repofleet backup --storage s3
  repofleet backup --poll-interval 10s --max-poll-attempts 360`,
	Args: cobra.NoArgs,
	RunE: runBackup,
}

func init() {
	backupCmd.Flags().StringVar(&backupStorage, "storage", "azure", "Storage backend for the archive: azure or s3")
	backupCmd.Flags().DurationVar(&backupPollInterval, "poll-interval", backup.DefaultPollInterval, "Delay between migration status polls")
	backupCmd.Flags().IntVar(&backupMaxPollAttempts, "max-poll-attempts", backup.DefaultMaxPollAttempts, "Maximum number of migration status polls before timing out")
}

func runBackup(_ *cobra.Command, _ []string) error {
	ctx := context.Background()
	log := newLogger()

	cfg := config.FromEnv()
	required := []string{config.EnvGitHubToken, config.EnvOrganization}
	switch backupStorage {
	case "azure":
		required = append(required, config.EnvAzureStorageAccount, config.EnvAzureStorageContainer)
	case "s3":
		required = append(required, config.EnvS3Bucket)
	default:
		return fmt.Errorf("unsupported storage backend %q: use azure or s3", backupStorage)
	}
	if err := cfg.Require(required...); err != nil {
		return err
	}

	var store backup.BlobStore
	var err error
	switch backupStorage {
	case "azure":
		store, err = backup.NewAzureBlobStore(log, cfg.AzureStorageAccount, cfg.AzureStorageContainer)
	case "s3":
		store, err = backup.NewS3Store(ctx, log, cfg.S3Bucket)
	}
	if err != nil {
		return fmt.Errorf("creating %s storage backend: %w", backupStorage, err)
	}

	client := github.NewClient(cfg.GitHubToken, cfg.Organization)
	pipeline := backup.NewPipeline(client, store, log,
		backup.WithPollInterval(backupPollInterval),
		backup.WithMaxPollAttempts(backupMaxPollAttempts),
	)
	return pipeline.Run(ctx)
}

package github

import "context"

// APIClient defines the GitHub API operations the provisioning and backup
// pipelines depend on. The client is scoped to a single organization or user
// account fixed at construction time.
type APIClient interface {
	// Repository operations
	ListRepositoryNames(ctx context.Context) (*RepositoryList, error)
	GetRepositoryID(ctx context.Context, name string) (int64, error)
	CreateRepository(ctx context.Context, cfg RepositoryConfig) error
	EnableVulnerabilityAlerts(ctx context.Context, repo string) error
	EnableAutomatedSecurityFixes(ctx context.Context, repo string) error
	ProtectBranch(ctx context.Context, repo, branch string) error
	CreateEnvironment(ctx context.Context, repo string, env EnvironmentConfig) error

	// Secret operations
	GetRepoPublicKey(ctx context.Context, repo string) (*EncryptionKey, error)
	GetEnvPublicKey(ctx context.Context, repoID int64, environment string) (*EncryptionKey, error)
	PutRepoSecret(ctx context.Context, repo string, secret EncryptedSecret) error
	PutEnvSecret(ctx context.Context, repoID int64, environment string, secret EncryptedSecret) error

	// Team operations
	TeamExists(ctx context.Context, slug string) (bool, error)
	CreateTeam(ctx context.Context, team TeamConfig) error
	MapTeamGroups(ctx context.Context, slug string, groups []IDPGroup) error
	AddTeamRepository(ctx context.Context, slug, repo, permission string) error

	// Migration operations
	StartMigration(ctx context.Context, repos []string) (*Migration, error)
	MigrationStatus(ctx context.Context, id int64) (*Migration, error)
	DownloadMigrationArchive(ctx context.Context, id int64) (string, error)
}

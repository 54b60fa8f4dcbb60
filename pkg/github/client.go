package github

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/google/go-github/v66/github"
	"golang.org/x/oauth2"
)

// listPageSize is the fixed page size used when enumerating repositories.
const listPageSize = 100

// Client implements the APIClient interface using the GitHub REST API.
type Client struct {
	gh    *github.Client
	raw   *http.Client
	token string
	org   string
}

// NewClient creates a GitHub API client for the given organization or user
// account, authenticated with the provided token.
func NewClient(token, org string) *Client {
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(context.Background(), ts)
	tc.Transport = &pinnedHeaderTransport{next: tc.Transport}

	return &Client{
		gh:    github.NewClient(tc),
		raw:   &http.Client{},
		token: token,
		org:   org,
	}
}

// ListRepositoryNames enumerates every repository name in the organization,
// one page of 100 at a time starting at page 1, until an empty page is
// returned. If a page request fails, the names collected so far are returned
// with Complete set to false alongside the error.
func (c *Client) ListRepositoryNames(ctx context.Context) (*RepositoryList, error) {
	list := &RepositoryList{}
	opts := &github.RepositoryListByOrgOptions{
		ListOptions: github.ListOptions{Page: 1, PerPage: listPageSize},
	}

	for {
		repos, _, err := c.gh.Repositories.ListByOrg(ctx, c.org, opts)
		if err != nil {
			return list, WrapAPIError(err, fmt.Sprintf("repositories for %s", c.org))
		}
		if len(repos) == 0 {
			list.Complete = true
			return list, nil
		}
		for _, repo := range repos {
			list.Names = append(list.Names, repo.GetName())
		}
		opts.Page++
	}
}

// GetRepositoryID resolves the numeric identifier of a repository. The
// identifier is required by environment-scoped secret endpoints.
func (c *Client) GetRepositoryID(ctx context.Context, name string) (int64, error) {
	repo, _, err := c.gh.Repositories.Get(ctx, c.org, name)
	if err != nil {
		return 0, WrapAPIError(err, fmt.Sprintf("repository %s/%s", c.org, name))
	}
	return repo.GetID(), nil
}

// CreateRepository creates a private repository from the manifest entry.
func (c *Client) CreateRepository(ctx context.Context, cfg RepositoryConfig) error {
	repo := &github.Repository{
		Name:        github.String(cfg.Name),
		Description: github.String(cfg.Description),
		Private:     github.Bool(true),
		Visibility:  github.String("private"),
		AutoInit:    github.Bool(cfg.AutoInitEnabled()),
	}

	_, _, err := c.gh.Repositories.Create(ctx, c.org, repo)
	if err != nil {
		return WrapAPIError(err, fmt.Sprintf("repository %s", cfg.Name))
	}
	return nil
}

// EnableVulnerabilityAlerts turns on vulnerability alerts for a repository.
func (c *Client) EnableVulnerabilityAlerts(ctx context.Context, repo string) error {
	_, err := c.gh.Repositories.EnableVulnerabilityAlerts(ctx, c.org, repo)
	if err != nil {
		return WrapAPIError(err, fmt.Sprintf("vulnerability alerts for %s/%s", c.org, repo))
	}
	return nil
}

// EnableAutomatedSecurityFixes turns on automated security fixes for a
// repository.
func (c *Client) EnableAutomatedSecurityFixes(ctx context.Context, repo string) error {
	_, err := c.gh.Repositories.EnableAutomatedSecurityFixes(ctx, c.org, repo)
	if err != nil {
		return WrapAPIError(err, fmt.Sprintf("automated security fixes for %s/%s", c.org, repo))
	}
	return nil
}

// ProtectBranch applies the standard branch protection rules to a branch:
// admin enforcement, one required approving review with stale-review
// dismissal and last-push approval, linear history, and no force pushes,
// deletions, or branch creations.
func (c *Client) ProtectBranch(ctx context.Context, repo, branch string) error {
	protection := &github.ProtectionRequest{
		RequiredStatusChecks: nil,
		EnforceAdmins:        true,
		RequiredPullRequestReviews: &github.PullRequestReviewsEnforcementRequest{
			DismissStaleReviews:          true,
			RequireCodeOwnerReviews:      false,
			RequiredApprovingReviewCount: 1,
			RequireLastPushApproval:      github.Bool(true),
		},
		Restrictions:                   nil,
		RequireLinearHistory:           github.Bool(true),
		AllowForcePushes:               github.Bool(false),
		AllowDeletions:                 github.Bool(false),
		BlockCreations:                 github.Bool(true),
		RequiredConversationResolution: github.Bool(true),
		LockBranch:                     github.Bool(false),
		AllowForkSyncing:               github.Bool(false),
	}

	_, _, err := c.gh.Repositories.UpdateBranchProtection(ctx, c.org, repo, branch, protection)
	if err != nil {
		return WrapAPIError(err, fmt.Sprintf("branch protection %s/%s:%s", c.org, repo, branch))
	}
	return nil
}

// CreateEnvironment creates or updates a deployment environment on a
// repository, optionally restricted to protected branches.
func (c *Client) CreateEnvironment(ctx context.Context, repo string, env EnvironmentConfig) error {
	opts := &github.CreateUpdateEnvironment{}
	if env.ProtectedBranchesOnly {
		opts.DeploymentBranchPolicy = &github.BranchPolicy{
			ProtectedBranches:    github.Bool(true),
			CustomBranchPolicies: github.Bool(false),
		}
	}

	_, _, err := c.gh.Repositories.CreateUpdateEnvironment(ctx, c.org, repo, env.Name, opts)
	if err != nil {
		return WrapAPIError(err, fmt.Sprintf("environment %s for %s/%s", env.Name, c.org, repo))
	}
	return nil
}

// GetRepoPublicKey fetches the public key for sealing repository-scoped
// Actions secrets.
func (c *Client) GetRepoPublicKey(ctx context.Context, repo string) (*EncryptionKey, error) {
	key, _, err := c.gh.Actions.GetRepoPublicKey(ctx, c.org, repo)
	if err != nil {
		return nil, WrapAPIError(err, fmt.Sprintf("public key for %s/%s", c.org, repo))
	}
	return &EncryptionKey{KeyID: key.GetKeyID(), Key: key.GetKey()}, nil
}

// GetEnvPublicKey fetches the public key for sealing environment-scoped
// Actions secrets. The repository is addressed by its numeric identifier.
func (c *Client) GetEnvPublicKey(ctx context.Context, repoID int64, environment string) (*EncryptionKey, error) {
	key, _, err := c.gh.Actions.GetEnvPublicKey(ctx, int(repoID), environment)
	if err != nil {
		return nil, WrapAPIError(err, fmt.Sprintf("public key for environment %s", environment))
	}
	return &EncryptionKey{KeyID: key.GetKeyID(), Key: key.GetKey()}, nil
}

// PutRepoSecret submits a sealed repository-scoped secret.
func (c *Client) PutRepoSecret(ctx context.Context, repo string, secret EncryptedSecret) error {
	_, err := c.gh.Actions.CreateOrUpdateRepoSecret(ctx, c.org, repo, &github.EncryptedSecret{
		Name:           secret.Name,
		KeyID:          secret.KeyID,
		EncryptedValue: secret.EncryptedValue,
	})
	if err != nil {
		return WrapAPIError(err, fmt.Sprintf("secret %s for %s/%s", secret.Name, c.org, repo))
	}
	return nil
}

// PutEnvSecret submits a sealed environment-scoped secret.
func (c *Client) PutEnvSecret(ctx context.Context, repoID int64, environment string, secret EncryptedSecret) error {
	_, err := c.gh.Actions.CreateOrUpdateEnvSecret(ctx, int(repoID), environment, &github.EncryptedSecret{
		Name:           secret.Name,
		KeyID:          secret.KeyID,
		EncryptedValue: secret.EncryptedValue,
	})
	if err != nil {
		return WrapAPIError(err, fmt.Sprintf("secret %s for environment %s", secret.Name, environment))
	}
	return nil
}

// TeamExists reports whether a team with the given slug exists in the
// organization.
func (c *Client) TeamExists(ctx context.Context, slug string) (bool, error) {
	_, _, err := c.gh.Teams.GetTeamBySlug(ctx, c.org, slug)
	if err != nil {
		wrapped := WrapAPIError(err, fmt.Sprintf("team %s", slug))
		if wrapped.Type == ErrorTypeNotFound {
			return false, nil
		}
		return false, wrapped
	}
	return true, nil
}

// CreateTeam creates a team with closed privacy and the declared permission.
func (c *Client) CreateTeam(ctx context.Context, team TeamConfig) error {
	_, _, err := c.gh.Teams.CreateTeam(ctx, c.org, github.NewTeam{
		Name:        team.Name,
		Description: github.String(team.Description),
		Privacy:     github.String("closed"),
		Permission:  github.String(team.Permission),
	})
	if err != nil {
		return WrapAPIError(err, fmt.Sprintf("team %s", team.Name))
	}
	return nil
}

// MapTeamGroups replaces a team's identity-provider group mappings. Requires
// team synchronization to be configured for the organization.
func (c *Client) MapTeamGroups(ctx context.Context, slug string, groups []IDPGroup) error {
	var idpGroups github.IDPGroupList
	for _, group := range groups {
		idpGroups.Groups = append(idpGroups.Groups, &github.IDPGroup{
			GroupID:          github.String(group.ID),
			GroupName:        github.String(group.Name),
			GroupDescription: github.String(group.Description),
		})
	}

	_, _, err := c.gh.Teams.CreateOrUpdateIDPGroupConnectionsBySlug(ctx, c.org, slug, idpGroups)
	if err != nil {
		return WrapAPIError(err, fmt.Sprintf("group mappings for team %s", slug))
	}
	return nil
}

// AddTeamRepository grants a team access to a repository at the given
// permission level. Adding an existing association updates its permission.
func (c *Client) AddTeamRepository(ctx context.Context, slug, repo, permission string) error {
	_, err := c.gh.Teams.AddTeamRepoBySlug(ctx, c.org, slug, c.org, repo, &github.TeamAddTeamRepoOptions{
		Permission: permission,
	})
	if err != nil {
		return WrapAPIError(err, fmt.Sprintf("team %s for %s/%s", slug, c.org, repo))
	}
	return nil
}

// StartMigration requests an organization migration export covering the
// given repositories. Source repositories are not locked.
func (c *Client) StartMigration(ctx context.Context, repos []string) (*Migration, error) {
	migration, _, err := c.gh.Migrations.StartMigration(ctx, c.org, repos, &github.MigrationOptions{
		LockRepositories: false,
	})
	if err != nil {
		return nil, WrapAPIError(err, fmt.Sprintf("migration for %s", c.org))
	}
	return &Migration{ID: migration.GetID(), State: migration.GetState()}, nil
}

// MigrationStatus fetches the current state of a migration export job.
func (c *Client) MigrationStatus(ctx context.Context, id int64) (*Migration, error) {
	migration, _, err := c.gh.Migrations.MigrationStatus(ctx, c.org, id)
	if err != nil {
		return nil, WrapAPIError(err, fmt.Sprintf("migration %d", id))
	}
	return &Migration{ID: migration.GetID(), State: migration.GetState()}, nil
}

// DownloadMigrationArchive fetches the archive for an exported migration and
// writes it to a local file named after the job id, returning the file path.
// The archive endpoint redirects to a short-lived storage URL; the request
// client drops the bearer header when following it off-host.
func (c *Client) DownloadMigrationArchive(ctx context.Context, id int64) (string, error) {
	url := fmt.Sprintf("%sorgs/%s/migrations/%d/archive", c.gh.BaseURL.String(), c.org, id)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("building archive request: %w", err)
	}
	for name, value := range RequestHeaders(c.token) {
		req.Header.Set(name, value)
	}

	resp, err := c.raw.Do(req)
	if err != nil {
		return "", fmt.Errorf("downloading migration archive %d: %w", id, err)
	}
	defer resp.Body.Close() //nolint:errcheck // Response body open for read only.

	if resp.StatusCode != http.StatusOK {
		return "", &Error{
			Type:     ErrorTypeUnknown,
			Message:  fmt.Sprintf("archive download returned status %d", resp.StatusCode),
			Resource: fmt.Sprintf("migration %d", id),
		}
	}

	path := fmt.Sprintf("migration_archive_%d.tar.gz", id)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating archive file %s: %w", path, err)
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close() //nolint:errcheck // Write error takes precedence.
		return "", fmt.Errorf("writing archive file %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing archive file %s: %w", path, err)
	}
	return path, nil
}

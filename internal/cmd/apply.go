package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"repofleet/pkg/config"
	"repofleet/pkg/github"
)

var applyCmd = &cobra.Command{
	Use:   "apply <manifest.yaml>",
	Short: "Apply a manifest to the GitHub organization",
	Long: `Apply a declarative manifest to the GitHub organization.

The manifest is applied in independent stages, in order:

  1. Repositories   - create missing repositories, enable vulnerability
                      alerts, automated security fixes, and branch protection
  2. Environments   - create or update deployment environments
  3. Secrets        - seal and write repository and environment secrets
  4. Teams          - create missing teams
  5. Group mappings - sync identity-provider groups onto teams
  6. Team access    - associate repositories with teams

A failing stage is logged and the next stage is still attempted; no stage is
retried. Existing repositories and teams are skipped, never modified.

Required environment:
  GITHUB_TOKEN   GitHub access token with repo and admin:org scopes
  ORG_OR_USER    organization or user account that owns the repositories

Examples:
  repofleet apply fleet.yaml
  repofleet apply fleet.yaml --verbose`,
	Args: cobra.ExactArgs(1),
	RunE: runApply,
}

func runApply(_ *cobra.Command, args []string) error {
	manifest, err := github.LoadManifestFromFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to load manifest: %w", err)
	}

	cfg := config.FromEnv()
	if err := cfg.Require(config.EnvGitHubToken, config.EnvOrganization); err != nil {
		return err
	}

	log := newLogger()
	client := github.NewClient(cfg.GitHubToken, cfg.Organization)
	return applyManifest(context.Background(), client, manifest, log)
}

// applyManifest runs the provisioning stages in order. Each stage failure is
// logged and the next independent stage is still attempted.
func applyManifest(ctx context.Context, client github.APIClient, manifest *github.Manifest, log *slog.Logger) error {
	provisioner := github.NewProvisioner(client, log)
	secrets := github.NewSecretsProvisioner(client, log)
	teams := github.NewTeamProvisioner(client, log)

	stages := []struct {
		name string
		run  func(context.Context) error
	}{
		{"repositories", func(ctx context.Context) error {
			return provisioner.ApplyRepositories(ctx, manifest.Repositories)
		}},
		{"environments", func(ctx context.Context) error {
			return provisioner.ApplyEnvironments(ctx, manifest.Repositories)
		}},
		{"secrets", func(ctx context.Context) error {
			return secrets.Apply(ctx, manifest.Repositories)
		}},
		{"teams", func(ctx context.Context) error {
			return teams.ApplyTeams(ctx, manifest.Teams)
		}},
		{"group mappings", func(ctx context.Context) error {
			return teams.ApplyGroupMappings(ctx, manifest.Teams)
		}},
		{"team access", func(ctx context.Context) error {
			return teams.ApplyRepositoryAccess(ctx, manifest.Teams)
		}},
	}

	failures := 0
	for _, stage := range stages {
		log.Info("stage started", "stage", stage.name)
		if err := stage.run(ctx); err != nil {
			log.Error("stage failed", "stage", stage.name, "error", err)
			failures++
			continue
		}
		log.Info("stage completed", "stage", stage.name)
	}

	if failures > 0 {
		return fmt.Errorf("%d of %d stages failed", failures, len(stages))
	}
	return nil
}

package github

import (
	"context"
	"fmt"
	"log/slog"
)

// protectedBranch is the branch protection rules are applied to.
const protectedBranch = "main"

// Provisioner applies the repository and environment sections of a manifest.
// Execution is fully sequential; a failure on one repository is logged and
// the remaining repositories are still attempted.
type Provisioner struct {
	api APIClient
	log *slog.Logger
}

// NewProvisioner creates a provisioner using the given API client and logger.
func NewProvisioner(api APIClient, log *slog.Logger) *Provisioner {
	return &Provisioner{api: api, log: log}
}

// ApplyRepositories creates every declared repository that does not already
// exist. Newly created repositories get vulnerability alerts, automated
// security fixes, and (unless opted out) branch protection. Existing
// repositories are skipped untouched.
//
// Existence is decided against a full enumeration; an incomplete listing
// aborts the stage rather than risking duplicate or missed creations.
func (p *Provisioner) ApplyRepositories(ctx context.Context, repos []RepositoryConfig) error {
	list, err := p.api.ListRepositoryNames(ctx)
	if err != nil {
		return fmt.Errorf("listing existing repositories: %w", err)
	}
	if !list.Complete {
		return fmt.Errorf("repository listing incomplete, refusing to create against a partial view")
	}

	existing := make(map[string]bool, len(list.Names))
	for _, name := range list.Names {
		existing[name] = true
	}

	for _, repo := range repos {
		if existing[repo.Name] {
			p.log.Info("repository already exists, skipping creation", "repo", repo.Name)
			continue
		}

		if err := p.api.CreateRepository(ctx, repo); err != nil {
			p.log.Error("failed to create repository", "repo", repo.Name, "error", err)
			continue
		}
		p.log.Info("repository created", "repo", repo.Name)

		p.harden(ctx, repo)
	}
	return nil
}

// harden applies the post-creation settings to a freshly created repository.
// Each call is independent; failures are logged and the rest still run.
func (p *Provisioner) harden(ctx context.Context, repo RepositoryConfig) {
	if err := p.api.EnableVulnerabilityAlerts(ctx, repo.Name); err != nil {
		p.log.Error("failed to enable vulnerability alerts", "repo", repo.Name, "error", err)
	} else {
		p.log.Info("vulnerability alerts enabled", "repo", repo.Name)
	}

	if err := p.api.EnableAutomatedSecurityFixes(ctx, repo.Name); err != nil {
		p.log.Error("failed to enable automated security fixes", "repo", repo.Name, "error", err)
	} else {
		p.log.Info("automated security fixes enabled", "repo", repo.Name)
	}

	if !repo.BranchProtectionEnabled() {
		return
	}
	if err := p.api.ProtectBranch(ctx, repo.Name, protectedBranch); err != nil {
		p.log.Error("failed to enable branch protection", "repo", repo.Name, "error", err)
	} else {
		p.log.Info("branch protection enabled", "repo", repo.Name, "branch", protectedBranch)
	}
}

// ApplyEnvironments creates or updates every declared environment on every
// declared repository. Failures are logged per environment and the loop
// continues.
func (p *Provisioner) ApplyEnvironments(ctx context.Context, repos []RepositoryConfig) error {
	for _, repo := range repos {
		for _, env := range repo.Environments {
			if err := p.api.CreateEnvironment(ctx, repo.Name, env); err != nil {
				p.log.Error("failed to create environment",
					"repo", repo.Name, "environment", env.Name, "error", err)
				continue
			}
			p.log.Info("environment created", "repo", repo.Name, "environment", env.Name)
		}
	}
	return nil
}

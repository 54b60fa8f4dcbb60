package github

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Manifest is the declarative description of the organization resources to
// provision: repositories with their environments and secrets, and teams
// with their identity-provider group mappings and repository access.
type Manifest struct {
	Repositories []RepositoryConfig `yaml:"repositories"`
	Teams        []TeamConfig       `yaml:"teams,omitempty"`
}

// RepositoryConfig declares a single repository. Repositories are always
// created private; auto-init and branch protection default to on and can be
// opted out per repository.
type RepositoryConfig struct {
	Name             string              `yaml:"name"`
	Description      string              `yaml:"description,omitempty"`
	AutoInit         *bool               `yaml:"auto_init,omitempty"`
	BranchProtection *bool               `yaml:"branch_protection,omitempty"`
	Secrets          []SecretConfig      `yaml:"secrets,omitempty"`
	Environments     []EnvironmentConfig `yaml:"environments,omitempty"`
}

// AutoInitEnabled reports whether the repository should be created with an
// initial commit. Defaults to true.
func (r *RepositoryConfig) AutoInitEnabled() bool {
	return r.AutoInit == nil || *r.AutoInit
}

// BranchProtectionEnabled reports whether branch protection should be applied
// after creation. Defaults to true.
func (r *RepositoryConfig) BranchProtectionEnabled() bool {
	return r.BranchProtection == nil || *r.BranchProtection
}

// SecretConfig declares an Actions secret. The value is plaintext in the
// manifest and is sealed before transmission.
type SecretConfig struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

// EnvironmentConfig declares a deployment environment on a repository.
type EnvironmentConfig struct {
	Name                  string         `yaml:"name"`
	ProtectedBranchesOnly bool           `yaml:"protected_branches_only,omitempty"`
	Secrets               []SecretConfig `yaml:"secrets,omitempty"`
}

// TeamConfig declares a team, the identity-provider groups synced to it, and
// the repositories it is granted access to.
type TeamConfig struct {
	Name         string     `yaml:"name"`
	Description  string     `yaml:"description,omitempty"`
	Permission   string     `yaml:"permission"`
	Groups       []IDPGroup `yaml:"groups,omitempty"`
	Repositories []string   `yaml:"repositories,omitempty"`
}

// IDPGroup identifies an identity-provider group to map onto a team.
type IDPGroup struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
}

var (
	repoNameRE   = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)
	secretNameRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	teamNameRE   = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)
)

// validTeamPermissions are the permission levels GitHub accepts for team
// repository access.
var validTeamPermissions = map[string]bool{
	"pull":     true,
	"triage":   true,
	"push":     true,
	"maintain": true,
	"admin":    true,
}

// Validate checks the whole manifest and aggregates every problem found.
func (m *Manifest) Validate() error {
	var errs ValidationErrors

	seen := make(map[string]bool)
	for i, repo := range m.Repositories {
		prefix := fmt.Sprintf("repositories[%d]", i)
		repo.validate(prefix, &errs)
		if seen[repo.Name] {
			errs.Add(prefix+".name", repo.Name, "duplicate repository name")
		}
		seen[repo.Name] = true
	}

	seenTeams := make(map[string]bool)
	for i, team := range m.Teams {
		prefix := fmt.Sprintf("teams[%d]", i)
		team.validate(prefix, &errs)
		if seenTeams[team.Name] {
			errs.Add(prefix+".name", team.Name, "duplicate team name")
		}
		seenTeams[team.Name] = true
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}

func (r *RepositoryConfig) validate(prefix string, errs *ValidationErrors) {
	switch {
	case r.Name == "":
		errs.Add(prefix+".name", "", "repository name is required")
	case len(r.Name) > 100:
		errs.Add(prefix+".name", r.Name, "repository name must be 100 characters or less")
	case !repoNameRE.MatchString(r.Name):
		errs.Add(prefix+".name", r.Name, "repository name can only contain alphanumeric characters, periods, hyphens, and underscores")
	case strings.HasPrefix(r.Name, ".") || strings.HasSuffix(r.Name, "."):
		errs.Add(prefix+".name", r.Name, "repository name cannot start or end with a period")
	}

	if len(r.Description) > 350 {
		errs.Add(prefix+".description", "", "repository description must be 350 characters or less")
	}

	for i, secret := range r.Secrets {
		secret.validate(fmt.Sprintf("%s.secrets[%d]", prefix, i), errs)
	}

	seenEnvs := make(map[string]bool)
	for i, env := range r.Environments {
		envPrefix := fmt.Sprintf("%s.environments[%d]", prefix, i)
		if env.Name == "" {
			errs.Add(envPrefix+".name", "", "environment name is required")
		}
		if seenEnvs[env.Name] {
			errs.Add(envPrefix+".name", env.Name, "duplicate environment name")
		}
		seenEnvs[env.Name] = true
		for j, secret := range env.Secrets {
			secret.validate(fmt.Sprintf("%s.secrets[%d]", envPrefix, j), errs)
		}
	}
}

func (s *SecretConfig) validate(prefix string, errs *ValidationErrors) {
	switch {
	case s.Name == "":
		errs.Add(prefix+".name", "", "secret name is required")
	case !secretNameRE.MatchString(s.Name):
		errs.Add(prefix+".name", s.Name, "secret name can only contain alphanumeric characters and underscores, and cannot start with a digit")
	case strings.HasPrefix(strings.ToUpper(s.Name), "GITHUB_"):
		errs.Add(prefix+".name", s.Name, "secret names starting with GITHUB_ are reserved")
	}
	if s.Value == "" {
		errs.Add(prefix+".value", "", "secret value is required")
	}
}

func (t *TeamConfig) validate(prefix string, errs *ValidationErrors) {
	switch {
	case t.Name == "":
		errs.Add(prefix+".name", "", "team name is required")
	case len(t.Name) > 100:
		errs.Add(prefix+".name", t.Name, "team name must be 100 characters or less")
	case !teamNameRE.MatchString(t.Name):
		errs.Add(prefix+".name", t.Name, "team name must contain only lowercase alphanumeric characters, hyphens, and underscores, and start with an alphanumeric character")
	}

	if !validTeamPermissions[t.Permission] {
		errs.Add(prefix+".permission", t.Permission, "permission must be one of: pull, triage, push, maintain, admin")
	}

	for i, group := range t.Groups {
		if group.ID == "" {
			errs.Add(fmt.Sprintf("%s.groups[%d].id", prefix, i), "", "group id is required")
		}
		if group.Name == "" {
			errs.Add(fmt.Sprintf("%s.groups[%d].name", prefix, i), "", "group name is required")
		}
	}

	for i, repo := range t.Repositories {
		if repo == "" {
			errs.Add(fmt.Sprintf("%s.repositories[%d]", prefix, i), "", "repository name cannot be empty")
		}
	}
}

// LoadManifest parses and validates a manifest from YAML data.
func LoadManifest(data []byte) (*Manifest, error) {
	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := manifest.Validate(); err != nil {
		return nil, fmt.Errorf("manifest validation failed: %w", err)
	}

	return &manifest, nil
}

// LoadManifestFromFile loads a manifest from a YAML file.
func LoadManifestFromFile(filename string) (*Manifest, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest file: %w", err)
	}

	return LoadManifest(data)
}

package github

import (
	"context"
	"log/slog"
	"strings"
)

// TeamProvisioner applies the team section of a manifest: team creation,
// identity-provider group mappings, and team-repository associations. Each
// team is handled independently; failures are logged and the loop continues.
type TeamProvisioner struct {
	api APIClient
	log *slog.Logger
}

// NewTeamProvisioner creates a team provisioner using the given API client
// and logger.
func NewTeamProvisioner(api APIClient, log *slog.Logger) *TeamProvisioner {
	return &TeamProvisioner{api: api, log: log}
}

// teamSlug derives the slug GitHub assigns to a team name.
func teamSlug(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "-")
}

// ApplyTeams creates every declared team that does not already exist.
func (t *TeamProvisioner) ApplyTeams(ctx context.Context, teams []TeamConfig) error {
	for _, team := range teams {
		exists, err := t.api.TeamExists(ctx, teamSlug(team.Name))
		if err != nil {
			t.log.Error("failed to check team existence", "team", team.Name, "error", err)
			continue
		}
		if exists {
			t.log.Info("team already exists, skipping creation", "team", team.Name)
			continue
		}

		if err := t.api.CreateTeam(ctx, team); err != nil {
			t.log.Error("failed to create team", "team", team.Name, "error", err)
			continue
		}
		t.log.Info("team created", "team", team.Name, "permission", team.Permission)
	}
	return nil
}

// ApplyGroupMappings maps every declared identity-provider group onto its
// team. Requires team synchronization to be configured for the organization.
func (t *TeamProvisioner) ApplyGroupMappings(ctx context.Context, teams []TeamConfig) error {
	for _, team := range teams {
		if len(team.Groups) == 0 {
			continue
		}

		if err := t.api.MapTeamGroups(ctx, teamSlug(team.Name), team.Groups); err != nil {
			t.log.Error("failed to map identity-provider groups",
				"team", team.Name, "error", err)
			continue
		}
		t.log.Info("identity-provider groups mapped",
			"team", team.Name, "groups", len(team.Groups))
	}
	return nil
}

// ApplyRepositoryAccess associates every declared repository with its team at
// the declared permission level.
func (t *TeamProvisioner) ApplyRepositoryAccess(ctx context.Context, teams []TeamConfig) error {
	for _, team := range teams {
		for _, repo := range team.Repositories {
			if err := t.api.AddTeamRepository(ctx, teamSlug(team.Name), repo, team.Permission); err != nil {
				t.log.Error("failed to add repository to team",
					"team", team.Name, "repo", repo, "error", err)
				continue
			}
			t.log.Info("repository added to team",
				"team", team.Name, "repo", repo, "permission", team.Permission)
		}
	}
	return nil
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"repofleet/pkg/github"
)

var validateCmd = &cobra.Command{
	Use:   "validate <manifest.yaml>",
	Short: "Validate a manifest without contacting GitHub",
	Long: `Validate a declarative manifest file.

Checks YAML syntax, repository and team naming rules, secret name
constraints, and permission levels. No network calls are made.

Examples:
  repofleet validate fleet.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func runValidate(_ *cobra.Command, args []string) error {
	manifest, err := github.LoadManifestFromFile(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("✓ Manifest is valid: %d repositories, %d teams\n",
		len(manifest.Repositories), len(manifest.Teams))
	return nil
}

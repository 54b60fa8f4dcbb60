package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var rootVerbose bool

var rootCmd = &cobra.Command{
	Use:   "repofleet",
	Short: "Provision GitHub organization resources from a declarative manifest",
	Long: `Repofleet provisions a GitHub organization from a declarative YAML manifest:
repositories with branch protection, deployment environments, encrypted
Actions secrets, and teams with identity-provider group mappings. It can
also export the whole organization through a migration job and store the
archive in cloud blob storage.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&rootVerbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(backupCmd)
}

// newLogger builds the structured logger handed to each pipeline. Logging
// configuration is owned here, not by ambient process-wide state.
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if rootVerbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// Package config reads repofleet's process-environment configuration.
// Required values are verified up front so every missing variable is
// reported in a single error before any network call is attempted.
package config

import (
	"fmt"
	"os"
	"strings"
)

// Environment variable names consumed by repofleet.
const (
	EnvGitHubToken           = "GITHUB_TOKEN"
	EnvOrganization          = "ORG_OR_USER"
	EnvAzureStorageAccount   = "AZURE_STORAGE_ACCOUNT_NAME"
	EnvAzureStorageContainer = "AZURE_STORAGE_CONTAINER_NAME"
	EnvS3Bucket              = "BACKUP_S3_BUCKET"
)

// Config holds the values read from the process environment.
type Config struct {
	GitHubToken           string
	Organization          string
	AzureStorageAccount   string
	AzureStorageContainer string
	S3Bucket              string
}

// FromEnv reads every known variable from the process environment. Absent
// variables yield empty fields; call Require to verify the ones an operation
// needs.
func FromEnv() *Config {
	return &Config{
		GitHubToken:           strings.TrimSpace(os.Getenv(EnvGitHubToken)),
		Organization:          strings.TrimSpace(os.Getenv(EnvOrganization)),
		AzureStorageAccount:   strings.TrimSpace(os.Getenv(EnvAzureStorageAccount)),
		AzureStorageContainer: strings.TrimSpace(os.Getenv(EnvAzureStorageContainer)),
		S3Bucket:              strings.TrimSpace(os.Getenv(EnvS3Bucket)),
	}
}

// Require verifies that every named variable was set, returning one
// MissingEnvError naming all that were not.
func (c *Config) Require(names ...string) error {
	var missing []string
	for _, name := range names {
		if c.value(name) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return &MissingEnvError{Names: missing}
	}
	return nil
}

func (c *Config) value(name string) string {
	switch name {
	case EnvGitHubToken:
		return c.GitHubToken
	case EnvOrganization:
		return c.Organization
	case EnvAzureStorageAccount:
		return c.AzureStorageAccount
	case EnvAzureStorageContainer:
		return c.AzureStorageContainer
	case EnvS3Bucket:
		return c.S3Bucket
	}
	return ""
}

// MissingEnvError reports every required environment variable that was not
// set.
type MissingEnvError struct {
	Names []string
}

// Error implements the error interface.
func (e *MissingEnvError) Error() string {
	return fmt.Sprintf("missing environment variables: %s", strings.Join(e.Names, ", "))
}

package github

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/nacl/box"
)

// SecretsProvisioner writes encrypted Actions secrets to repositories and
// their environments. Every write is self-contained: the target's public key
// is fetched fresh, used once to seal the value, and discarded. Key material
// is never cached across secrets.
type SecretsProvisioner struct {
	api APIClient
	log *slog.Logger
}

// NewSecretsProvisioner creates a secrets provisioner using the given API
// client and logger.
func NewSecretsProvisioner(api APIClient, log *slog.Logger) *SecretsProvisioner {
	return &SecretsProvisioner{api: api, log: log}
}

// Apply writes every declared secret on every declared repository, then every
// declared secret on every declared environment. A failed submit is logged
// and the batch continues; a failed public-key fetch or repository-id
// resolution aborts the stage.
func (s *SecretsProvisioner) Apply(ctx context.Context, repos []RepositoryConfig) error {
	for _, repo := range repos {
		for _, secret := range repo.Secrets {
			if err := s.writeRepoSecret(ctx, repo.Name, secret); err != nil {
				return err
			}
		}
	}

	for _, repo := range repos {
		if !hasEnvironmentSecrets(repo) {
			continue
		}

		// Environment-scoped endpoints address the repository by its
		// numeric id, resolved once per repository.
		repoID, err := s.api.GetRepositoryID(ctx, repo.Name)
		if err != nil {
			return fmt.Errorf("resolving repository id for %s: %w", repo.Name, err)
		}

		for _, env := range repo.Environments {
			for _, secret := range env.Secrets {
				if err := s.writeEnvSecret(ctx, repo.Name, repoID, env.Name, secret); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func hasEnvironmentSecrets(repo RepositoryConfig) bool {
	for _, env := range repo.Environments {
		if len(env.Secrets) > 0 {
			return true
		}
	}
	return false
}

func (s *SecretsProvisioner) writeRepoSecret(ctx context.Context, repo string, secret SecretConfig) error {
	key, err := s.api.GetRepoPublicKey(ctx, repo)
	if err != nil {
		return fmt.Errorf("fetching public key for %s: %w", repo, err)
	}

	sealed, err := SealSecret(key.Key, secret.Value)
	if err != nil {
		return fmt.Errorf("sealing secret %s for %s: %w", secret.Name, repo, err)
	}

	err = s.api.PutRepoSecret(ctx, repo, EncryptedSecret{
		Name:           secret.Name,
		KeyID:          key.KeyID,
		EncryptedValue: sealed,
	})
	if err != nil {
		s.log.Error("failed to write repository secret",
			"repo", repo, "secret", secret.Name, "error", err)
		return nil
	}

	s.log.Info("repository secret written", "repo", repo, "secret", secret.Name)
	return nil
}

func (s *SecretsProvisioner) writeEnvSecret(ctx context.Context, repo string, repoID int64, environment string, secret SecretConfig) error {
	key, err := s.api.GetEnvPublicKey(ctx, repoID, environment)
	if err != nil {
		return fmt.Errorf("fetching public key for environment %s of %s: %w", environment, repo, err)
	}

	sealed, err := SealSecret(key.Key, secret.Value)
	if err != nil {
		return fmt.Errorf("sealing secret %s for environment %s: %w", secret.Name, environment, err)
	}

	err = s.api.PutEnvSecret(ctx, repoID, environment, EncryptedSecret{
		Name:           secret.Name,
		KeyID:          key.KeyID,
		EncryptedValue: sealed,
	})
	if err != nil {
		s.log.Error("failed to write environment secret",
			"repo", repo, "environment", environment, "secret", secret.Name, "error", err)
		return nil
	}

	s.log.Info("environment secret written",
		"repo", repo, "environment", environment, "secret", secret.Name)
	return nil
}

// SealSecret encrypts value for the holder of the base64-encoded 32-byte
// public key using an anonymous sealed box, and returns the ciphertext
// base64-encoded. Sealing embeds an ephemeral key, so only the key's owner
// can decrypt and sealing the same value twice yields different ciphertexts.
func SealSecret(publicKey, value string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(publicKey)
	if err != nil {
		return "", fmt.Errorf("decoding public key: %w", err)
	}
	if len(raw) != 32 {
		return "", fmt.Errorf("public key must be 32 bytes, got %d", len(raw))
	}

	var key [32]byte
	copy(key[:], raw)

	sealed, err := box.SealAnonymous(nil, []byte(value), &key, rand.Reader)
	if err != nil {
		return "", fmt.Errorf("sealing secret value: %w", err)
	}
	return base64.StdEncoding.EncodeToString(sealed), nil
}

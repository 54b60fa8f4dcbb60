package github

// RepositoryList holds the result of enumerating an organization's
// repositories. Complete reports whether every page was retrieved; a listing
// that stopped early because a page request failed carries the names
// collected so far with Complete set to false.
type RepositoryList struct {
	Names    []string `json:"names"`
	Complete bool     `json:"complete"`
}

// Repository represents a GitHub repository.
type Repository struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	FullName    string `json:"full_name"`
	Description string `json:"description"`
	Private     bool   `json:"private"`
}

// EncryptionKey is the public key material a secrets endpoint hands out for
// sealing secret values. Key is the base64-encoded 32-byte public key and
// KeyID identifies it to the receiving endpoint. Keys are fetched fresh for
// every write and never cached.
type EncryptionKey struct {
	KeyID string `json:"key_id"`
	Key   string `json:"key"`
}

// EncryptedSecret is a sealed secret value ready for submission, keyed by the
// identifier of the public key that sealed it.
type EncryptedSecret struct {
	Name           string `json:"name"`
	KeyID          string `json:"key_id"`
	EncryptedValue string `json:"encrypted_value"`
}

// Migration states reported by the organization migration endpoint. Any state
// outside this set is treated as non-terminal.
const (
	MigrationStatePending   = "pending"
	MigrationStateExporting = "exporting"
	MigrationStateExported  = "exported"
	MigrationStateFailed    = "failed"
)

// Migration is an organization migration export job. The remote service owns
// its lifecycle; this system only reads it.
type Migration struct {
	ID    int64  `json:"id"`
	State string `json:"state"`
}

// Terminal reports whether no further state transition will occur.
func (m *Migration) Terminal() bool {
	return m.State == MigrationStateExported || m.State == MigrationStateFailed
}

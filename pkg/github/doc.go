// Package github provisions GitHub organization resources for repofleet.
// It wraps the GitHub REST API behind the APIClient interface and implements
// the provisioning pipelines: repository and environment creation, encrypted
// Actions secrets, teams with identity-provider group mappings, and
// organization migration exports.
//
// Secret values are sealed client-side with the target's public key before
// they are transmitted; plaintext never leaves process memory.
package github

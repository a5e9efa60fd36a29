package ports

import (
	"context"
)

// Secret is a retrieved secret value with its version metadata.
type Secret struct {
	Value     string            // The secret value (e.g., a payout provider API key)
	Version   string            // Secret version identifier
	Metadata  map[string]string // Additional secret metadata
	CreatedAt string            // When this version was created
}

// SecretManagerAdapter retrieves credentials from a secret management
// backend. Supported backends: local filesystem (development), AWS
// Secrets Manager, HashiCorp Vault.
//
// Implementations are responsible for authenticating with the backend
// and for caching secrets with a TTL so hot paths do not hit the
// network on every disbursement.
type SecretManagerAdapter interface {
	// GetSecret retrieves a secret by its path/name.
	// Path format depends on implementation:
	//   - AWS: "booking-service/payout/xendit/api-key"
	//   - Vault: "secret/data/booking-service/payout/xendit"
	GetSecret(ctx context.Context, path string) (*Secret, error)

	// PutSecret creates or updates a secret and returns the new
	// version identifier. Used by operational tooling, not by the
	// request path.
	PutSecret(ctx context.Context, path string, value string, metadata map[string]string) (version string, err error)

	// DeleteSecret permanently deletes a secret. Irreversible on some
	// backends; use only from admin tooling.
	DeleteSecret(ctx context.Context, path string) error
}

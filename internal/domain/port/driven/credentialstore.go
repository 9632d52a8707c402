package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/cobjpanel/internal/domain/model"
)

// ErrEncryptionKeyNotSet means the credential store has no encryption key.
var ErrEncryptionKeyNotSet = errors.New("encryption key not configured: set COBJPANEL_SECRET_KEY")

// CredentialStore persists secrets such as the API token. Values cross this
// boundary in plaintext; encryption is the adapter's job.
type CredentialStore interface {
	Set(ctx context.Context, service, key, plaintext string) error

	// Get returns ("", nil) when nothing is stored.
	Get(ctx context.Context, service, key string) (string, error)

	List(ctx context.Context) ([]model.Credential, error)

	// Delete is a no-op for a missing credential.
	Delete(ctx context.Context, service, key string) error
}

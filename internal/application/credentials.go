package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ericfisherdev/cobjpanel/internal/domain/port/driven"
)

// Credential coordinates for the HubSpot bearer token in the credential store.
const (
	TokenService = "hubspot"
	TokenKey     = "token"
)

// ResolveToken returns the bearer token to use for outbound calls. A token held
// in the credential store takes priority over envToken. store may be nil when
// no credential store is configured. Store failures are logged and fall back
// to envToken.
func ResolveToken(ctx context.Context, store driven.CredentialStore, envToken string, logger *slog.Logger) string {
	if store == nil {
		return envToken
	}

	stored, err := store.Get(ctx, TokenService, TokenKey)
	if err != nil {
		if !errors.Is(err, driven.ErrEncryptionKeyNotSet) {
			logger.Warn("failed to read stored token, using environment token", "error", err)
		}
		return envToken
	}
	if stored != "" {
		logger.Info("using stored hubspot token")
		return stored
	}
	return envToken
}

package model

import (
	"strings"
	"time"
)

// Credential is a secret stored for an external service, addressed by
// Service ("hubspot") and Key ("token").
type Credential struct {
	ID        int64
	Service   string
	Key       string
	Value     string
	UpdatedAt time.Time
}

// MaskSecret hides all but the last four characters of a secret.
func MaskSecret(secret string) string {
	const visible = 4
	if len(secret) <= visible {
		return strings.Repeat("*", len(secret))
	}
	return strings.Repeat("*", len(secret)-visible) + secret[len(secret)-visible:]
}

// Masked returns the credential value with MaskSecret applied.
func (c Credential) Masked() string {
	return MaskSecret(c.Value)
}

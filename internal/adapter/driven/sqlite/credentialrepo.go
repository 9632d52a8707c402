package sqlite

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/ericfisherdev/cobjpanel/internal/domain/model"
	"github.com/ericfisherdev/cobjpanel/internal/domain/port/driven"
)

var _ driven.CredentialStore = (*CredentialRepo)(nil)

// CredentialRepo keeps credentials in the credentials table sealed with
// AES-256-GCM. The service and name are bound as associated data, so a sealed
// value copied onto another row fails to open.
type CredentialRepo struct {
	db     *DB
	aead   cipher.AEAD
	keyErr error
}

// NewCredentialRepo returns a repository sealing values with key. A nil key
// disables the store: every operation except Delete returns
// driven.ErrEncryptionKeyNotSet.
func NewCredentialRepo(db *DB, key []byte) *CredentialRepo {
	r := &CredentialRepo{db: db}
	if key == nil {
		r.keyErr = driven.ErrEncryptionKeyNotSet
		return r
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		r.keyErr = fmt.Errorf("credential key: %w", err)
		return r
	}
	r.aead, r.keyErr = cipher.NewGCM(block)
	return r
}

// Set stores or replaces the credential for service and key.
func (r *CredentialRepo) Set(ctx context.Context, service, key, plaintext string) error {
	sealed, err := r.seal(service, key, plaintext)
	if err != nil {
		return err
	}

	const query = `INSERT INTO credentials (service, name, value, updated_at)
		VALUES (?, ?, ?, strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		ON CONFLICT (service, name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	if _, err := r.db.Writer.ExecContext(ctx, query, service, key, sealed); err != nil {
		return fmt.Errorf("store credential %s/%s: %w", service, key, err)
	}
	return nil
}

// Get returns the plaintext credential, or "" when none is stored.
func (r *CredentialRepo) Get(ctx context.Context, service, key string) (string, error) {
	if r.keyErr != nil {
		return "", r.keyErr
	}

	var sealed string
	err := r.db.Reader.QueryRowContext(ctx,
		`SELECT value FROM credentials WHERE service = ? AND name = ?`, service, key,
	).Scan(&sealed)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return "", nil
	case err != nil:
		return "", fmt.Errorf("load credential %s/%s: %w", service, key, err)
	}

	return r.open(service, key, sealed)
}

// List returns every stored credential, decrypted, ordered by service and name.
func (r *CredentialRepo) List(ctx context.Context) ([]model.Credential, error) {
	if r.keyErr != nil {
		return nil, r.keyErr
	}

	rows, err := r.db.Reader.QueryContext(ctx,
		`SELECT id, service, name, value, updated_at FROM credentials ORDER BY service, name`)
	if err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}
	defer func() { _ = rows.Close() }()

	creds := []model.Credential{}
	for rows.Next() {
		var (
			c                 model.Credential
			sealed, updatedAt string
		)
		if err := rows.Scan(&c.ID, &c.Service, &c.Key, &sealed, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan credential: %w", err)
		}
		if c.Value, err = r.open(c.Service, c.Key, sealed); err != nil {
			return nil, err
		}
		if c.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, fmt.Errorf("credential %s/%s updated_at: %w", c.Service, c.Key, err)
		}
		creds = append(creds, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate credentials: %w", err)
	}
	return creds, nil
}

// Delete removes the credential. Deleting a missing credential is not an
// error, and no key is needed.
func (r *CredentialRepo) Delete(ctx context.Context, service, key string) error {
	_, err := r.db.Writer.ExecContext(ctx,
		`DELETE FROM credentials WHERE service = ? AND name = ?`, service, key)
	if err != nil {
		return fmt.Errorf("delete credential %s/%s: %w", service, key, err)
	}
	return nil
}

func associatedData(service, key string) []byte {
	return []byte(service + "\x00" + key)
}

// seal returns base64(nonce || ciphertext || tag).
func (r *CredentialRepo) seal(service, key, plaintext string) (string, error) {
	if r.keyErr != nil {
		return "", r.keyErr
	}

	nonce := make([]byte, r.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("credential nonce: %w", err)
	}
	out := r.aead.Seal(nonce, nonce, []byte(plaintext), associatedData(service, key))
	return base64.RawStdEncoding.EncodeToString(out), nil
}

func (r *CredentialRepo) open(service, key, sealed string) (string, error) {
	data, err := base64.RawStdEncoding.DecodeString(sealed)
	if err != nil {
		return "", fmt.Errorf("credential %s/%s: malformed value: %w", service, key, err)
	}

	n := r.aead.NonceSize()
	if len(data) < n+r.aead.Overhead() {
		return "", fmt.Errorf("credential %s/%s: sealed value too short", service, key)
	}

	plaintext, err := r.aead.Open(nil, data[:n], data[n:], associatedData(service, key))
	if err != nil {
		return "", fmt.Errorf("credential %s/%s: cannot decrypt, was COBJPANEL_SECRET_KEY changed? %w", service, key, err)
	}
	return string(plaintext), nil
}

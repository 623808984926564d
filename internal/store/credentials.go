package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/nytevibe/nyte/internal/models"
	"github.com/nytevibe/nyte/internal/shared"
)

// Logical storage keys. Values are JSON-encoded.
const (
	KeyToken         = "auth_token"
	KeyTokenMetadata = "auth_token_metadata"
	KeyUser          = "user_data"
)

// tokenMetadata is the persisted shape of the non-token credential fields.
type tokenMetadata struct {
	IssuedAt   time.Time `json:"issued_at"`
	ExpiresAt  time.Time `json:"expires_at"`
	RememberMe bool      `json:"remember_me"`
}

// CredentialStore persists the session credential and cached user record over
// a [KV]. A token stored without matching metadata is treated as absent, so a
// partial write can never produce a credential that looks valid.
type CredentialStore struct {
	kv     KV
	logger *log.Logger
}

// NewCredentialStore creates a credential store over the given key-value medium.
func NewCredentialStore(kv KV, logger *log.Logger) *CredentialStore {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &CredentialStore{kv: kv, logger: logger}
}

// Save persists the credential and user record. Metadata and user are written
// before the token so a failure part-way leaves no token without metadata.
func (s *CredentialStore) Save(cred *models.Credential, user *models.UserRecord) error {
	if cred == nil || cred.Token == "" {
		return fmt.Errorf("%w: credential has no token", shared.ErrInvalidArgument)
	}
	if !cred.ExpiresAt.After(cred.IssuedAt) {
		return fmt.Errorf("%w: credential expires before issuance", shared.ErrInvalidArgument)
	}

	meta := tokenMetadata{
		IssuedAt:   cred.IssuedAt,
		ExpiresAt:  cred.ExpiresAt,
		RememberMe: cred.RememberMe,
	}

	metaJSON, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to marshal token metadata: %w", err)
	}
	if err := s.kv.Set(KeyTokenMetadata, metaJSON); err != nil {
		return fmt.Errorf("failed to persist token metadata: %w", err)
	}

	if user != nil {
		userJSON, err := json.Marshal(user)
		if err != nil {
			return fmt.Errorf("failed to marshal user record: %w", err)
		}
		if err := s.kv.Set(KeyUser, userJSON); err != nil {
			return fmt.Errorf("failed to persist user record: %w", err)
		}
	}

	tokenJSON, err := json.Marshal(cred.Token)
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}
	if err := s.kv.Set(KeyToken, tokenJSON); err != nil {
		return fmt.Errorf("failed to persist token: %w", err)
	}

	return nil
}

// SaveUser replaces only the cached user record, leaving the credential untouched.
func (s *CredentialStore) SaveUser(user *models.UserRecord) error {
	if user == nil {
		return fmt.Errorf("%w: nil user record", shared.ErrInvalidArgument)
	}

	userJSON, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal user record: %w", err)
	}
	if err := s.kv.Set(KeyUser, userJSON); err != nil {
		return fmt.Errorf("failed to persist user record: %w", err)
	}
	return nil
}

// Load reads the persisted credential and user record. Unparseable values are
// treated as absent and logged, never surfaced as errors; only storage I/O
// failures propagate.
func (s *CredentialStore) Load() (*models.Credential, *models.UserRecord, error) {
	tokenRaw, ok, err := s.kv.Get(KeyToken)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read token: %w", err)
	}
	if !ok {
		return nil, nil, nil
	}

	var token string
	if err := json.Unmarshal(tokenRaw, &token); err != nil || token == "" {
		s.logger.Warn("discarding unparseable stored token")
		return nil, nil, nil
	}

	metaRaw, ok, err := s.kv.Get(KeyTokenMetadata)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read token metadata: %w", err)
	}
	if !ok {
		// A token without metadata has no expiry horizon; treat as absent.
		s.logger.Warn("stored token has no metadata, treating credential as absent")
		return nil, nil, nil
	}

	var meta tokenMetadata
	if err := json.Unmarshal(metaRaw, &meta); err != nil {
		s.logger.Warn("discarding unparseable token metadata", "error", err)
		return nil, nil, nil
	}
	if meta.ExpiresAt.IsZero() {
		s.logger.Warn("stored token metadata has no expiry, treating credential as absent")
		return nil, nil, nil
	}

	cred := &models.Credential{
		Token:      token,
		IssuedAt:   meta.IssuedAt,
		ExpiresAt:  meta.ExpiresAt,
		RememberMe: meta.RememberMe,
	}

	user := s.loadUser()
	return cred, user, nil
}

func (s *CredentialStore) loadUser() *models.UserRecord {
	userRaw, ok, err := s.kv.Get(KeyUser)
	if err != nil || !ok {
		return nil
	}

	var user models.UserRecord
	if err := json.Unmarshal(userRaw, &user); err != nil {
		s.logger.Warn("discarding unparseable user record", "error", err)
		return nil
	}
	return &user
}

// Clear removes all three keys. Idempotent; clearing an empty store is a no-op.
func (s *CredentialStore) Clear() error {
	for _, key := range []string{KeyToken, KeyTokenMetadata, KeyUser} {
		if err := s.kv.Delete(key); err != nil {
			return fmt.Errorf("failed to clear %s: %w", key, err)
		}
	}
	return nil
}

// Token returns the current bearer token, if a credential is stored.
// Implements the auth gateway's token source.
func (s *CredentialStore) Token() (string, bool) {
	cred, _, err := s.Load()
	if err != nil || cred == nil {
		return "", false
	}
	return cred.Token, true
}

// Invalidate clears the stored credential. Called by the auth gateway when the
// server reports the session revoked.
func (s *CredentialStore) Invalidate() error {
	return s.Clear()
}

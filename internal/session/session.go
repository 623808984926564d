package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/nytevibe/nyte/internal/models"
	"github.com/nytevibe/nyte/internal/services"
	"github.com/nytevibe/nyte/internal/shared"
	"github.com/nytevibe/nyte/internal/store"
)

// State is the coarse authentication state of the session.
type State string

const (
	StateUnauthenticated State = "unauthenticated"
	StateAuthenticating  State = "authenticating"
	StateAuthenticated   State = "authenticated"
)

// Snapshot is a point-in-time copy of the session. Unverified is true when the
// session was restored from storage and the server has not yet confirmed the
// token is still live.
type Snapshot struct {
	State      State
	User       *models.UserRecord
	Credential *models.Credential
	Unverified bool
}

// Manager is the single authority over session state. It restores a persisted
// credential optimistically at startup, runs logins with supersession (a login
// that finishes after a newer one started is discarded), and guarantees logout
// clears local state even when the server is unreachable.
type Manager struct {
	auth   services.AuthAPI
	creds  *store.CredentialStore
	logger *log.Logger
	now    func() time.Time

	mu         sync.Mutex
	state      State
	user       *models.UserRecord
	credential *models.Credential
	unverified bool
	generation uint64
}

// New restores the session from storage. An expired or absent credential
// starts the session unauthenticated without any network traffic; a valid one
// starts it authenticated but unverified until [Manager.Revalidate] confirms
// it.
func New(auth services.AuthAPI, creds *store.CredentialStore, logger *log.Logger) *Manager {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	m := &Manager{
		auth:   auth,
		creds:  creds,
		logger: logger,
		now:    time.Now,
		state:  StateUnauthenticated,
	}
	m.restore()
	return m
}

func (m *Manager) restore() {
	cred, user, err := m.creds.Load()
	if err != nil {
		m.logger.Warn("failed to restore session from storage", "error", err)
		return
	}
	if cred == nil {
		return
	}

	if !IsValid(cred, m.now()) {
		m.logger.Info("stored credential expired, clearing")
		if err := m.creds.Clear(); err != nil {
			m.logger.Warn("failed to clear expired credential", "error", err)
		}
		return
	}

	m.state = StateAuthenticated
	m.user = user
	m.credential = cred
	m.unverified = true
}

// Snapshot returns a copy of the current session state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *Manager) snapshotLocked() Snapshot {
	snap := Snapshot{State: m.state, Unverified: m.unverified}
	if m.user != nil {
		user := *m.user
		snap.User = &user
	}
	if m.credential != nil {
		cred := *m.credential
		snap.Credential = &cred
	}
	return snap
}

// Authenticated reports whether the session currently holds a credential.
func (m *Manager) Authenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == StateAuthenticated
}

// Login authenticates and persists the resulting credential. When two logins
// race, the one that started last wins: an earlier login finishing late is
// dropped and reported as [shared.ErrLoginSuperseded]. A failed login restores
// the state that preceded it and never touches storage.
func (m *Manager) Login(ctx context.Context, identifier, password string, rememberMe bool) (*models.UserRecord, error) {
	m.mu.Lock()
	previous := m.snapshotLocked()
	m.generation++
	generation := m.generation
	m.state = StateAuthenticating
	m.mu.Unlock()

	result, err := m.auth.Login(ctx, identifier, password, rememberMe)

	m.mu.Lock()
	defer m.mu.Unlock()

	if generation != m.generation {
		// A newer login or logout started while this one was in flight.
		return nil, shared.ErrLoginSuperseded
	}

	if err != nil {
		m.state = previous.State
		m.user = previous.User
		m.credential = previous.Credential
		m.unverified = previous.Unverified
		return nil, err
	}

	issuedAt := m.now()
	expiresAt := result.ExpiresAt
	if expiresAt.IsZero() {
		expiresAt = ComputeExpiry(issuedAt, rememberMe)
	}

	cred := &models.Credential{
		Token:      result.Token,
		IssuedAt:   issuedAt,
		ExpiresAt:  expiresAt,
		RememberMe: rememberMe,
	}
	user := result.User

	m.state = StateAuthenticated
	m.user = &user
	m.credential = cred
	m.unverified = false

	// Persistence failure degrades to an in-memory session rather than
	// undoing a login the server already accepted.
	if err := m.creds.Save(cred, &user); err != nil {
		m.logger.Warn("failed to persist credential, session will not survive restart", "error", err)
	}

	m.logger.Info("logged in", "user", user.Username, "remember_me", rememberMe)
	return &user, nil
}

// Logout ends the session. The server is notified best-effort; local state is
// cleared no matter what the server or network does.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	if m.state == StateUnauthenticated {
		m.mu.Unlock()
		return nil
	}
	m.generation++
	m.mu.Unlock()

	if err := m.auth.Logout(ctx); err != nil {
		m.logger.Warn("remote logout failed, clearing local session anyway", "error", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.state = StateUnauthenticated
	m.user = nil
	m.credential = nil
	m.unverified = false

	if err := m.creds.Clear(); err != nil {
		return fmt.Errorf("failed to clear stored credential: %w", err)
	}
	return nil
}

// Revalidate confirms a restored session against the server. A revoked token
// clears the session; an unreachable server leaves it authenticated but still
// unverified. Call after [New] when the session starts authenticated.
func (m *Manager) Revalidate(ctx context.Context) error {
	_, err := m.CurrentUser(ctx)
	if errors.Is(err, shared.ErrNotAuthenticated) {
		// Nothing to confirm; revalidating a signed-out session is a no-op.
		return nil
	}
	return err
}

// CurrentUser fetches the live profile behind the session's token and keeps
// the session in step with the answer: a confirmed profile replaces the
// cached user record and clears the unverified flag, a revoked token drops
// the whole session.
func (m *Manager) CurrentUser(ctx context.Context) (*models.UserRecord, error) {
	m.mu.Lock()
	if m.state != StateAuthenticated {
		m.mu.Unlock()
		return nil, shared.ErrNotAuthenticated
	}
	generation := m.generation
	m.mu.Unlock()

	user, err := m.auth.CurrentUser(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()

	if generation != m.generation {
		// The session this call was checking is gone; report the fetch as-is
		// without touching the newer session's state.
		return user, err
	}

	if err != nil {
		if errors.Is(err, shared.ErrUnauthorized) {
			// The gateway already invalidated storage; drop the in-memory half.
			m.state = StateUnauthenticated
			m.user = nil
			m.credential = nil
			m.unverified = false
			return nil, err
		}
		// Network and server failures are not evidence the token is dead.
		m.logger.Warn("session revalidation inconclusive", "error", err)
		return nil, err
	}

	m.user = user
	m.unverified = false
	if err := m.creds.SaveUser(user); err != nil {
		m.logger.Warn("failed to persist refreshed user record", "error", err)
	}
	return user, nil
}

// ForgotPassword requests a reset link for the identifier. Requesting a reset
// never touches the current session.
func (m *Manager) ForgotPassword(ctx context.Context, identifier string) (string, error) {
	return m.auth.ForgotPassword(ctx, identifier)
}

// ResetPassword completes a password reset with the emailed token.
func (m *Manager) ResetPassword(ctx context.Context, token, identifier, newPassword string) error {
	return m.auth.ResetPassword(ctx, token, identifier, newPassword)
}

// VerifyResetToken reports whether a reset token is still usable.
func (m *Manager) VerifyResetToken(ctx context.Context, token, identifier string) error {
	return m.auth.VerifyResetToken(ctx, token, identifier)
}

// RefreshIfNeeded rotates the token when it is close to expiry. A session that
// is not near expiry is left alone.
func (m *Manager) RefreshIfNeeded(ctx context.Context) error {
	m.mu.Lock()
	if m.state != StateAuthenticated || !IsNearExpiry(m.credential, m.now()) {
		m.mu.Unlock()
		return nil
	}
	generation := m.generation
	token := m.credential.Token
	rememberMe := m.credential.RememberMe
	m.mu.Unlock()

	result, err := m.auth.RefreshToken(ctx, token)

	m.mu.Lock()
	defer m.mu.Unlock()

	if generation != m.generation {
		return nil
	}

	if err != nil {
		if errors.Is(err, shared.ErrUnauthorized) {
			m.state = StateUnauthenticated
			m.user = nil
			m.credential = nil
			m.unverified = false
			return err
		}
		m.logger.Warn("token refresh failed", "error", err)
		return err
	}

	issuedAt := m.now()
	expiresAt := result.ExpiresAt
	if expiresAt.IsZero() {
		expiresAt = ComputeExpiry(issuedAt, rememberMe)
	}

	m.credential = &models.Credential{
		Token:      result.Token,
		IssuedAt:   issuedAt,
		ExpiresAt:  expiresAt,
		RememberMe: rememberMe,
	}

	if err := m.creds.Save(m.credential, m.user); err != nil {
		m.logger.Warn("failed to persist rotated credential", "error", err)
	}

	m.logger.Info("rotated session token", "expires_at", expiresAt)
	return nil
}

package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/nytevibe/nyte/internal/models"
	"github.com/nytevibe/nyte/internal/shared"
)

// AuthService implements [AuthAPI] against the remote /auth/* endpoints.
//
// All failures are returned as values wrapping the sentinel errors in
// [shared]; nothing is retried here. Retry policy belongs to callers.
type AuthService struct {
	client
	deviceID string
	logger   *log.Logger
}

// NewAuthService creates an auth gateway for the given base URL.
//
// tokens supplies the bearer token attached to outbound requests and is
// invalidated when an authenticated endpoint answers 401.
func NewAuthService(baseURL string, httpClient *http.Client, tokens TokenSource, logger *log.Logger) *AuthService {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &AuthService{
		client:   newClient(baseURL, httpClient, tokens),
		deviceID: shared.GenerateID(),
		logger:   logger,
	}
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
	RememberMe bool   `json:"remember_me"`
	DeviceID   string `json:"device_id"`
}

type loginPayload struct {
	Token     string            `json:"token"`
	ExpiresAt string            `json:"expires_at"`
	User      models.UserRecord `json:"user"`
}

// Login authenticates against POST /auth/login.
//
// The identifier field carries whatever the user typed (email or username);
// the backend owns the disambiguation.
func (s *AuthService) Login(ctx context.Context, identifier, password string, rememberMe bool) (*LoginResult, error) {
	body := loginRequest{
		Identifier: identifier,
		Password:   password,
		RememberMe: rememberMe,
		DeviceID:   s.deviceID,
	}

	res, err := s.do(ctx, http.MethodPost, "/auth/login", body)
	if err != nil {
		return nil, err
	}
	if res.Err != nil {
		return nil, loginError(res.Err)
	}

	var payload loginPayload
	if err := json.Unmarshal(res.Payload, &payload); err != nil || payload.Token == "" {
		return nil, fmt.Errorf("%w: malformed login payload", shared.ErrServer)
	}

	result := &LoginResult{Token: payload.Token, User: payload.User}
	if payload.ExpiresAt != "" {
		ts, err := time.Parse(time.RFC3339, payload.ExpiresAt)
		if err != nil {
			s.logger.Warn("ignoring unparseable login expiry", "expires_at", payload.ExpiresAt)
		} else {
			result.ExpiresAt = ts
		}
	}

	return result, nil
}

// Logout notifies POST /auth/logout. Callers clear local state regardless of
// the outcome here; this is the best-effort remote half of logout.
func (s *AuthService) Logout(ctx context.Context) error {
	res, err := s.do(ctx, http.MethodPost, "/auth/logout", nil)
	if err != nil {
		return err
	}
	if res.Err != nil && res.Err.Status != http.StatusUnauthorized {
		return sessionError(res.Err)
	}
	return nil
}

type tokenRequest struct {
	Token string `json:"token"`
}

type validatePayload struct {
	User      models.UserRecord `json:"user"`
	ExpiresAt string            `json:"expires_at"`
}

// ValidateToken checks a token against POST /auth/validate-token.
func (s *AuthService) ValidateToken(ctx context.Context, token string) (*ValidateResult, error) {
	res, err := s.doAuthed(ctx, http.MethodPost, "/auth/validate-token", tokenRequest{Token: token}, true)
	if err != nil {
		return nil, err
	}
	if res.Err != nil {
		return nil, sessionError(res.Err)
	}

	var payload validatePayload
	if err := json.Unmarshal(res.Payload, &payload); err != nil || payload.User.ID == "" {
		return nil, fmt.Errorf("%w: malformed validation payload", shared.ErrServer)
	}

	result := &ValidateResult{User: payload.User}
	if ts, err := time.Parse(time.RFC3339, payload.ExpiresAt); err == nil {
		result.ExpiresAt = ts
	}
	return result, nil
}

type refreshPayload struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}

// RefreshToken exchanges a near-expiry token at POST /auth/refresh-token.
func (s *AuthService) RefreshToken(ctx context.Context, token string) (*RefreshResult, error) {
	res, err := s.doAuthed(ctx, http.MethodPost, "/auth/refresh-token", tokenRequest{Token: token}, true)
	if err != nil {
		return nil, err
	}
	if res.Err != nil {
		return nil, sessionError(res.Err)
	}

	var payload refreshPayload
	if err := json.Unmarshal(res.Payload, &payload); err != nil || payload.Token == "" {
		return nil, fmt.Errorf("%w: malformed refresh payload", shared.ErrServer)
	}

	result := &RefreshResult{Token: payload.Token}
	if ts, err := time.Parse(time.RFC3339, payload.ExpiresAt); err == nil {
		result.ExpiresAt = ts
	}
	return result, nil
}

type identifierRequest struct {
	Identifier string `json:"identifier"`
}

// ForgotPassword requests a reset email via POST /auth/forgot-password.
// Returns the server's acknowledgement message.
func (s *AuthService) ForgotPassword(ctx context.Context, identifier string) (string, error) {
	res, err := s.do(ctx, http.MethodPost, "/auth/forgot-password", identifierRequest{Identifier: identifier})
	if err != nil {
		return "", err
	}
	if res.Err != nil {
		return "", rateLimitError(res.Err)
	}

	if res.Message != "" {
		return res.Message, nil
	}

	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(res.Payload, &payload); err == nil && payload.Message != "" {
		return payload.Message, nil
	}
	return "password reset requested", nil
}

type resetRequest struct {
	Token      string `json:"token"`
	Identifier string `json:"identifier"`
	Password   string `json:"password,omitempty"`
}

// ResetPassword completes a reset via POST /auth/reset-password.
func (s *AuthService) ResetPassword(ctx context.Context, token, identifier, newPassword string) error {
	body := resetRequest{Token: token, Identifier: identifier, Password: newPassword}
	res, err := s.do(ctx, http.MethodPost, "/auth/reset-password", body)
	if err != nil {
		return err
	}
	if res.Err != nil {
		return resetError(res.Err)
	}
	return nil
}

// VerifyResetToken pre-checks a reset token via POST /auth/verify-reset-token,
// so the reset form can reject dead links before asking for a new password.
func (s *AuthService) VerifyResetToken(ctx context.Context, token, identifier string) error {
	body := resetRequest{Token: token, Identifier: identifier}
	res, err := s.do(ctx, http.MethodPost, "/auth/verify-reset-token", body)
	if err != nil {
		return err
	}
	if res.Err != nil {
		return resetError(res.Err)
	}
	return nil
}

// CurrentUser fetches the profile behind the current token via GET /auth/user.
func (s *AuthService) CurrentUser(ctx context.Context) (*models.UserRecord, error) {
	res, err := s.doAuthed(ctx, http.MethodGet, "/auth/user", nil, true)
	if err != nil {
		return nil, err
	}
	if res.Err != nil {
		return nil, sessionError(res.Err)
	}

	// Older backends wrap the record in {"user": {...}}, newer ones return it bare.
	var wrapped struct {
		User *models.UserRecord `json:"user"`
	}
	if err := json.Unmarshal(res.Payload, &wrapped); err == nil && wrapped.User != nil && wrapped.User.ID != "" {
		return wrapped.User, nil
	}

	var user models.UserRecord
	if err := json.Unmarshal(res.Payload, &user); err != nil || user.ID == "" {
		return nil, fmt.Errorf("%w: malformed user payload", shared.ErrServer)
	}
	return &user, nil
}

// package services implements clients for the remote nYtevibe HTTP API.
//
// AuthService covers the /auth/* endpoints and normalizes the backend's
// inconsistent response envelopes into typed results and sentinel errors.
// VenueService covers the authenticated /venues endpoints.
package services

import (
	"context"
	"time"

	"github.com/nytevibe/nyte/internal/models"
)

// TokenSource provides the current bearer token for outbound requests and
// invalidates it when the server reports the session revoked.
type TokenSource interface {
	Token() (string, bool)
	Invalidate() error
}

// LoginResult is the normalized payload of a successful login.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time // zero when the server omitted it; caller applies the expiry policy
	User      models.UserRecord
}

// ValidateResult is the normalized payload of a successful token validation.
type ValidateResult struct {
	User      models.UserRecord
	ExpiresAt time.Time
}

// RefreshResult is the normalized payload of a successful token refresh.
type RefreshResult struct {
	Token     string
	ExpiresAt time.Time
}

// AuthAPI defines the auth gateway operations the session facade depends on.
type AuthAPI interface {
	Login(ctx context.Context, identifier, password string, rememberMe bool) (*LoginResult, error)
	Logout(ctx context.Context) error
	ValidateToken(ctx context.Context, token string) (*ValidateResult, error)
	RefreshToken(ctx context.Context, token string) (*RefreshResult, error)
	ForgotPassword(ctx context.Context, identifier string) (string, error)
	ResetPassword(ctx context.Context, token, identifier, newPassword string) error
	VerifyResetToken(ctx context.Context, token, identifier string) error
	CurrentUser(ctx context.Context) (*models.UserRecord, error)
}

// VenueAPI defines the venue operations consumed by the CLI, TUI and sync engine.
type VenueAPI interface {
	List(ctx context.Context) ([]models.Venue, error)
	Followed(ctx context.Context) ([]models.Venue, error)
	Venue(ctx context.Context, venueID string) (*models.Venue, error)
	Follow(ctx context.Context, venueID string) error
	Unfollow(ctx context.Context, venueID string) error
	Rate(ctx context.Context, venueID string, rating int, comment string) error
	ReportCrowd(ctx context.Context, venueID, crowdLevel string, waitMinutes int) error
}

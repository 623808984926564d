// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"testing"

	"github.com/nytevibe/nyte/internal/models"
	"github.com/nytevibe/nyte/internal/services"
)

// MockAuthAPI is a configurable test double for [services.AuthAPI]
type MockAuthAPI struct {
	LoginFunc            func(ctx context.Context, identifier, password string, rememberMe bool) (*services.LoginResult, error)
	LogoutFunc           func(ctx context.Context) error
	ValidateTokenFunc    func(ctx context.Context, token string) (*services.ValidateResult, error)
	RefreshTokenFunc     func(ctx context.Context, token string) (*services.RefreshResult, error)
	ForgotPasswordFunc   func(ctx context.Context, identifier string) (string, error)
	ResetPasswordFunc    func(ctx context.Context, token, identifier, newPassword string) error
	VerifyResetTokenFunc func(ctx context.Context, token, identifier string) error
	CurrentUserFunc      func(ctx context.Context) (*models.UserRecord, error)
}

func (m *MockAuthAPI) Login(ctx context.Context, identifier, password string, rememberMe bool) (*services.LoginResult, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, identifier, password, rememberMe)
	}
	return nil, errors.New("login not configured")
}

func (m *MockAuthAPI) Logout(ctx context.Context) error {
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx)
	}
	return nil
}

func (m *MockAuthAPI) ValidateToken(ctx context.Context, token string) (*services.ValidateResult, error) {
	if m.ValidateTokenFunc != nil {
		return m.ValidateTokenFunc(ctx, token)
	}
	return nil, errors.New("validate not configured")
}

func (m *MockAuthAPI) RefreshToken(ctx context.Context, token string) (*services.RefreshResult, error) {
	if m.RefreshTokenFunc != nil {
		return m.RefreshTokenFunc(ctx, token)
	}
	return nil, errors.New("refresh not configured")
}

func (m *MockAuthAPI) ForgotPassword(ctx context.Context, identifier string) (string, error) {
	if m.ForgotPasswordFunc != nil {
		return m.ForgotPasswordFunc(ctx, identifier)
	}
	return "", errors.New("forgot password not configured")
}

func (m *MockAuthAPI) ResetPassword(ctx context.Context, token, identifier, newPassword string) error {
	if m.ResetPasswordFunc != nil {
		return m.ResetPasswordFunc(ctx, token, identifier, newPassword)
	}
	return errors.New("reset password not configured")
}

func (m *MockAuthAPI) VerifyResetToken(ctx context.Context, token, identifier string) error {
	if m.VerifyResetTokenFunc != nil {
		return m.VerifyResetTokenFunc(ctx, token, identifier)
	}
	return errors.New("verify reset token not configured")
}

func (m *MockAuthAPI) CurrentUser(ctx context.Context) (*models.UserRecord, error) {
	if m.CurrentUserFunc != nil {
		return m.CurrentUserFunc(ctx)
	}
	return nil, errors.New("current user not configured")
}

// MockVenueAPI is a configurable test double for [services.VenueAPI]
type MockVenueAPI struct {
	ListFunc        func(ctx context.Context) ([]models.Venue, error)
	FollowedFunc    func(ctx context.Context) ([]models.Venue, error)
	VenueFunc       func(ctx context.Context, venueID string) (*models.Venue, error)
	FollowFunc      func(ctx context.Context, venueID string) error
	UnfollowFunc    func(ctx context.Context, venueID string) error
	RateFunc        func(ctx context.Context, venueID string, rating int, comment string) error
	ReportCrowdFunc func(ctx context.Context, venueID, crowdLevel string, waitMinutes int) error
}

func (m *MockVenueAPI) List(ctx context.Context) ([]models.Venue, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return []models.Venue{}, nil
}

func (m *MockVenueAPI) Followed(ctx context.Context) ([]models.Venue, error) {
	if m.FollowedFunc != nil {
		return m.FollowedFunc(ctx)
	}
	return []models.Venue{}, nil
}

func (m *MockVenueAPI) Venue(ctx context.Context, venueID string) (*models.Venue, error) {
	if m.VenueFunc != nil {
		return m.VenueFunc(ctx, venueID)
	}
	return nil, errors.New("venue not configured")
}

func (m *MockVenueAPI) Follow(ctx context.Context, venueID string) error {
	if m.FollowFunc != nil {
		return m.FollowFunc(ctx, venueID)
	}
	return nil
}

func (m *MockVenueAPI) Unfollow(ctx context.Context, venueID string) error {
	if m.UnfollowFunc != nil {
		return m.UnfollowFunc(ctx, venueID)
	}
	return nil
}

func (m *MockVenueAPI) Rate(ctx context.Context, venueID string, rating int, comment string) error {
	if m.RateFunc != nil {
		return m.RateFunc(ctx, venueID, rating, comment)
	}
	return nil
}

func (m *MockVenueAPI) ReportCrowd(ctx context.Context, venueID, crowdLevel string, waitMinutes int) error {
	if m.ReportCrowdFunc != nil {
		return m.ReportCrowdFunc(ctx, venueID, crowdLevel, waitMinutes)
	}
	return nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

package shared

import (
	"fmt"
	"time"
)

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Session errors
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrEmailNotVerified   = fmt.Errorf("email not verified")
	ErrAccountSuspended   = fmt.Errorf("account suspended")
	ErrUnauthorized       = fmt.Errorf("session revoked")
	ErrNotAuthenticated   = fmt.Errorf("not authenticated")
	ErrLoginSuperseded    = fmt.Errorf("login superseded by a newer attempt")
	ErrInvalidResetToken  = fmt.Errorf("invalid or expired reset token")

	// API and service errors
	ErrNetwork     = fmt.Errorf("network request failed")
	ErrRateLimited = fmt.Errorf("rate limited")
	ErrServer      = fmt.Errorf("server error")

	// Input validation errors
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrVenueNotFound   = fmt.Errorf("venue not found")
)

// RateLimitError carries the server's retry-after hint alongside [ErrRateLimited].
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited: retry after %s", e.RetryAfter)
	}
	return "rate limited"
}

func (e *RateLimitError) Unwrap() error {
	return ErrRateLimited
}

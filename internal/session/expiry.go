// package session manages the lifecycle of the local nYtevibe session:
// expiry policy, optimistic startup, login supersession and logout.
package session

import (
	"time"

	"github.com/nytevibe/nyte/internal/models"
)

// Credential lifetimes. Remember-me sessions last 30 days, plain sessions a
// single day. A credential within NearExpiryThreshold of its deadline is a
// refresh candidate but still valid.
const (
	RememberMeTTL       = 30 * 24 * time.Hour
	SessionTTL          = 24 * time.Hour
	NearExpiryThreshold = 24 * time.Hour
)

// ComputeExpiry applies the local expiry policy when the server does not
// dictate its own deadline.
func ComputeExpiry(issuedAt time.Time, rememberMe bool) time.Time {
	if rememberMe {
		return issuedAt.Add(RememberMeTTL)
	}
	return issuedAt.Add(SessionTTL)
}

// IsValid reports whether a stored credential is present and not yet expired
// at the given instant. A credential expiring exactly now is expired.
func IsValid(credential *models.Credential, now time.Time) bool {
	if credential == nil || credential.Token == "" {
		return false
	}
	return credential.ExpiresAt.After(now)
}

// IsNearExpiry reports whether a valid credential is close enough to its
// deadline that a refresh should be attempted. Exactly threshold remaining is
// not yet near expiry.
func IsNearExpiry(credential *models.Credential, now time.Time) bool {
	if !IsValid(credential, now) {
		return false
	}
	return credential.ExpiresAt.Sub(now) < NearExpiryThreshold
}

package models

import "time"

// Credential is the bearer token issued by the server plus its issuance and
// expiry metadata. A Credential with an empty Token is not valid; absence is
// represented by a nil *Credential, never by an empty token string.
type Credential struct {
	Token      string    `json:"token"`
	IssuedAt   time.Time `json:"issued_at"`
	ExpiresAt  time.Time `json:"expires_at"`
	RememberMe bool      `json:"remember_me"`
}

// UserRecord is a read-through cache of the server's user profile. Cached
// fields are advisory; authorization always re-validates against the server.
type UserRecord struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Level     string `json:"level"`
	Points    int    `json:"points"`
}

// DisplayName returns the user's full name, falling back to the username.
func (u UserRecord) DisplayName() string {
	if u.FirstName == "" && u.LastName == "" {
		return u.Username
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// Venue represents a nightlife venue from the remote API.
type Venue struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	VenueType   string    `json:"venue_type"`
	Address     string    `json:"address"`
	Rating      float64   `json:"rating"`
	RatingCount int       `json:"rating_count"`
	CrowdLevel  string    `json:"crowd_level"`
	WaitMinutes int       `json:"wait_minutes"`
	Followed    bool      `json:"followed"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CrowdReport is a user-submitted crowd status report for a venue.
type CrowdReport struct {
	VenueID     string    `json:"venue_id"`
	CrowdLevel  string    `json:"crowd_level"`
	WaitMinutes int       `json:"wait_minutes"`
	ReportedAt  time.Time `json:"reported_at"`
}

// Crowd levels accepted by the report endpoint.
const (
	CrowdEmpty  = "empty"
	CrowdQuiet  = "quiet"
	CrowdBusy   = "busy"
	CrowdPacked = "packed"
)

// ValidCrowdLevel reports whether level is one of the accepted crowd levels.
func ValidCrowdLevel(level string) bool {
	switch level {
	case CrowdEmpty, CrowdQuiet, CrowdBusy, CrowdPacked:
		return true
	}
	return false
}

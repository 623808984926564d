package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/charmbracelet/log"
	"github.com/nytevibe/nyte/internal/models"
	"github.com/nytevibe/nyte/internal/shared"
)

// VenueService implements [VenueAPI] against the authenticated /venues
// endpoints.
type VenueService struct {
	client
	logger *log.Logger
}

// NewVenueService creates a venue client sharing the auth gateway's token
// source, so a revoked session is detected no matter which endpoint sees
// the 401 first.
func NewVenueService(baseURL string, httpClient *http.Client, tokens TokenSource, logger *log.Logger) *VenueService {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &VenueService{
		client: newClient(baseURL, httpClient, tokens),
		logger: logger,
	}
}

// venueList tolerates both a bare array and a {"venues": [...]} wrapper.
func venueList(payload json.RawMessage) ([]models.Venue, error) {
	var venues []models.Venue
	if err := json.Unmarshal(payload, &venues); err == nil {
		return venues, nil
	}

	var wrapped struct {
		Venues []models.Venue `json:"venues"`
	}
	if err := json.Unmarshal(payload, &wrapped); err != nil || wrapped.Venues == nil {
		return nil, fmt.Errorf("%w: malformed venue list payload", shared.ErrServer)
	}
	return wrapped.Venues, nil
}

// List fetches all venues via GET /venues.
func (s *VenueService) List(ctx context.Context) ([]models.Venue, error) {
	res, err := s.doAuthed(ctx, http.MethodGet, "/venues", nil, true)
	if err != nil {
		return nil, err
	}
	if res.Err != nil {
		return nil, sessionError(res.Err)
	}
	return venueList(res.Payload)
}

// Followed fetches the user's followed venues via GET /venues/followed.
func (s *VenueService) Followed(ctx context.Context) ([]models.Venue, error) {
	res, err := s.doAuthed(ctx, http.MethodGet, "/venues/followed", nil, true)
	if err != nil {
		return nil, err
	}
	if res.Err != nil {
		return nil, sessionError(res.Err)
	}
	return venueList(res.Payload)
}

// Venue fetches a single venue via GET /venues/{id}.
func (s *VenueService) Venue(ctx context.Context, venueID string) (*models.Venue, error) {
	res, err := s.doAuthed(ctx, http.MethodGet, "/venues/"+url.PathEscape(venueID), nil, true)
	if err != nil {
		return nil, err
	}
	if res.Err != nil {
		return nil, sessionError(res.Err)
	}

	var venue models.Venue
	if err := json.Unmarshal(res.Payload, &venue); err != nil || venue.ID == "" {
		var wrapped struct {
			Venue *models.Venue `json:"venue"`
		}
		if err := json.Unmarshal(res.Payload, &wrapped); err != nil || wrapped.Venue == nil {
			return nil, fmt.Errorf("%w: malformed venue payload", shared.ErrServer)
		}
		return wrapped.Venue, nil
	}
	return &venue, nil
}

// Follow adds a venue to the user's followed list via POST /venues/{id}/follow.
func (s *VenueService) Follow(ctx context.Context, venueID string) error {
	res, err := s.doAuthed(ctx, http.MethodPost, "/venues/"+url.PathEscape(venueID)+"/follow", nil, true)
	if err != nil {
		return err
	}
	if res.Err != nil {
		return sessionError(res.Err)
	}
	return nil
}

// Unfollow removes a venue from the followed list via DELETE /venues/{id}/follow.
func (s *VenueService) Unfollow(ctx context.Context, venueID string) error {
	res, err := s.doAuthed(ctx, http.MethodDelete, "/venues/"+url.PathEscape(venueID)+"/follow", nil, true)
	if err != nil {
		return err
	}
	if res.Err != nil {
		return sessionError(res.Err)
	}
	return nil
}

type ratingRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment,omitempty"`
}

// Rate submits a 1-5 star rating via POST /venues/{id}/ratings.
func (s *VenueService) Rate(ctx context.Context, venueID string, rating int, comment string) error {
	if rating < 1 || rating > 5 {
		return fmt.Errorf("%w: rating must be between 1 and 5", shared.ErrInvalidArgument)
	}

	body := ratingRequest{Rating: rating, Comment: comment}
	res, err := s.doAuthed(ctx, http.MethodPost, "/venues/"+url.PathEscape(venueID)+"/ratings", body, true)
	if err != nil {
		return err
	}
	if res.Err != nil {
		return sessionError(res.Err)
	}
	return nil
}

type crowdReportRequest struct {
	CrowdLevel  string `json:"crowd_level"`
	WaitMinutes int    `json:"wait_minutes"`
}

// ReportCrowd submits a crowd report via POST /venues/{id}/reports.
func (s *VenueService) ReportCrowd(ctx context.Context, venueID, crowdLevel string, waitMinutes int) error {
	if !models.ValidCrowdLevel(crowdLevel) {
		return fmt.Errorf("%w: unknown crowd level %q", shared.ErrInvalidArgument, crowdLevel)
	}
	if waitMinutes < 0 {
		return fmt.Errorf("%w: wait minutes cannot be negative", shared.ErrInvalidArgument)
	}

	body := crowdReportRequest{CrowdLevel: crowdLevel, WaitMinutes: waitMinutes}
	res, err := s.doAuthed(ctx, http.MethodPost, "/venues/"+url.PathEscape(venueID)+"/reports", body, true)
	if err != nil {
		return err
	}
	if res.Err != nil {
		return sessionError(res.Err)
	}
	return nil
}

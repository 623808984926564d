package repositories

import (
	"fmt"
	"strings"

	"github.com/nytevibe/nyte/internal/models"
)

// VenueCacheAdapter implements tasks.VenueCacher using VenueRepository.
//
// Duplicate writes are resolved by upsert, so two sync workers racing on the
// same venue cannot fail the run.
type VenueCacheAdapter struct {
	repo *VenueRepository
}

// NewVenueCacheAdapter creates a new VenueCacheAdapter with the given repository
func NewVenueCacheAdapter(repo *VenueRepository) *VenueCacheAdapter {
	return &VenueCacheAdapter{repo: repo}
}

// CacheVenue writes a venue into the local cache.
// Constraint races between workers are silently absorbed.
func (a *VenueCacheAdapter) CacheVenue(venue models.Venue) error {
	if err := a.repo.Upsert(&venue); err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return a.repo.Upsert(&venue)
		}
		return fmt.Errorf("failed to cache venue: %w", err)
	}
	return nil
}

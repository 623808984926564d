// package tasks implements background synchronization of the remote venue
// catalog into the local cache.
//
// The core abstraction is VenueEngine, which fetches the venue listing and
// hydrates per-venue detail concurrently under a rate limit. Operations emit
// progress updates via channels for non-blocking status reporting to CLI/UI
// layers.
package tasks

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/nytevibe/nyte/internal/models"
	"github.com/nytevibe/nyte/internal/services"
	"github.com/nytevibe/nyte/internal/shared"
	"golang.org/x/time/rate"
)

// VenueCacher persists venues fetched during a sync run.
type VenueCacher interface {
	CacheVenue(venue models.Venue) error
}

// VenueSyncResult summarizes a completed sync run.
type VenueSyncResult struct {
	TotalVenues   int
	SyncedVenues  int
	FailedVenues  int
	FollowedCount int
	Failures      []VenueSyncFailure
}

// VenueSyncFailure records a single venue that could not be refreshed.
type VenueSyncFailure struct {
	VenueID string
	Error   error
}

// VenueSyncOpts contains configuration for a sync run.
type VenueSyncOpts struct {
	NumWorkers int     // Concurrent detail fetchers (default: 4)
	RateLimit  float64 // Requests per second (default: 5)
}

type venueJob struct {
	venueID  string
	followed bool
}

// VenueEngine orchestrates venue cache refreshes.
type VenueEngine struct {
	venues services.VenueAPI
	cache  VenueCacher
	logger *log.Logger
}

// NewVenueEngine creates a sync engine over the given venue client and cache.
func NewVenueEngine(venues services.VenueAPI, cache VenueCacher, logger *log.Logger) *VenueEngine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &VenueEngine{venues: venues, cache: cache, logger: logger}
}

// Sync refreshes the local venue cache from the remote API.
//
// The listing and followed set are fetched first, then per-venue detail is
// hydrated by a worker pool under a shared rate limit. Individual venue
// failures are collected in the result; only listing failures abort the run.
func (e *VenueEngine) Sync(ctx context.Context, prog chan<- ProgressUpdate, opts VenueSyncOpts) (*VenueSyncResult, error) {
	if e.venues == nil {
		return nil, fmt.Errorf("%w: venue client not initialized", shared.ErrMissingConfig)
	}

	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 4
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	e.sendProgress(prog, fetchListingUpdate())
	listing, err := e.venues.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch venue listing: %w", err)
	}

	e.sendProgress(prog, fetchFollowedUpdate())
	followed, err := e.venues.Followed(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch followed venues: %w", err)
	}

	followedIDs := make(map[string]bool, len(followed))
	for _, venue := range followed {
		followedIDs[venue.ID] = true
	}

	result := &VenueSyncResult{
		TotalVenues:   len(listing),
		FollowedCount: len(followed),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan venueJob, len(listing))
	failures := make(chan VenueSyncFailure, len(listing))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.syncWorker(ctx, &wg, limiter, jobs, failures)
	}

	go func() {
		for _, venue := range listing {
			select {
			case <-ctx.Done():
				close(jobs)
				return
			case jobs <- venueJob{venueID: venue.ID, followed: followedIDs[venue.ID]}:
			}
		}
		close(jobs)
	}()

	go func() {
		wg.Wait()
		close(failures)
	}()

	completed := 0
	for failure := range failures {
		completed++
		if failure.Error != nil {
			result.FailedVenues++
			result.Failures = append(result.Failures, failure)
			e.sendProgress(prog, venueFailedUpdate(completed, len(listing), failure.VenueID, failure.Error))
		} else {
			result.SyncedVenues++
			e.sendProgress(prog, venueSyncedUpdate(completed, len(listing), failure.VenueID))
		}
	}

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("sync interrupted: %w", err)
	}

	e.logger.Info("venue sync complete",
		"total", result.TotalVenues,
		"synced", result.SyncedVenues,
		"failed", result.FailedVenues,
	)
	return result, nil
}

// syncWorker hydrates venue detail from the jobs channel into the cache. Every
// job produces exactly one VenueSyncFailure record, with a nil Error on
// success, so the collector can count completions.
func (e *VenueEngine) syncWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	limiter *rate.Limiter,
	jobs <-chan venueJob,
	failures chan<- VenueSyncFailure,
) {
	defer wg.Done()

	for job := range jobs {
		if err := limiter.Wait(ctx); err != nil {
			failures <- VenueSyncFailure{VenueID: job.venueID, Error: err}
			continue
		}

		venue, err := e.venues.Venue(ctx, job.venueID)
		if err != nil {
			failures <- VenueSyncFailure{VenueID: job.venueID, Error: err}
			continue
		}

		venue.Followed = job.followed
		if err := e.cache.CacheVenue(*venue); err != nil {
			failures <- VenueSyncFailure{VenueID: job.venueID, Error: err}
			continue
		}

		failures <- VenueSyncFailure{VenueID: job.venueID}
	}
}

// sendProgress delivers an update without blocking when no one is listening.
func (e *VenueEngine) sendProgress(prog chan<- ProgressUpdate, update ProgressUpdate) {
	if prog == nil {
		return
	}
	select {
	case prog <- update:
	default:
	}
}

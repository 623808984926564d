package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/nytevibe/nyte/internal/models"
	"github.com/nytevibe/nyte/internal/repositories"
	"github.com/nytevibe/nyte/internal/shared"
	"github.com/nytevibe/nyte/internal/tasks"
	"github.com/urfave/cli/v3"
)

// requireSession gates the authenticated venue commands. A token close to
// expiry is rotated first so the command itself does not hit a mid-flight 401.
func (r *Runner) requireSession(ctx context.Context) error {
	if !r.session.Authenticated() {
		return shared.ErrNotAuthenticated
	}
	if err := r.session.RefreshIfNeeded(ctx); err != nil {
		if errors.Is(err, shared.ErrUnauthorized) {
			return shared.ErrNotAuthenticated
		}
		r.logger.Warn("proactive token refresh failed, continuing with current token", "error", err)
	}
	return nil
}

// VenuesList prints all venues, or the followed set with --followed.
func (r *Runner) VenuesList(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSession(ctx); err != nil {
		return err
	}

	var venues []models.Venue
	var err error
	if cmd.Bool("followed") {
		venues, err = r.venues.Followed(ctx)
	} else {
		venues, err = r.venues.List(ctx)
	}
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(venues, true)
	}

	return r.printVenues(venues)
}

// VenuesShow prints a single venue's detail.
func (r *Runner) VenuesShow(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSession(ctx); err != nil {
		return err
	}

	venueID := cmd.StringArg("id")
	if venueID == "" {
		return fmt.Errorf("%w: venue id", shared.ErrMissingArgument)
	}

	venue, err := r.venues.Venue(ctx, venueID)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(venue, true)
	}

	r.writePlain("%s (%s)\n", venue.Name, venue.VenueType)
	if venue.Address != "" {
		r.writePlain("Address: %s\n", venue.Address)
	}
	if venue.RatingCount > 0 {
		r.writePlain("Rating: %.1f (%d ratings)\n", venue.Rating, venue.RatingCount)
	}
	if venue.CrowdLevel != "" {
		r.writePlain("Crowd: %s, %d min wait\n", venue.CrowdLevel, venue.WaitMinutes)
	}
	if venue.Followed {
		r.writePlain("Followed: yes\n")
	}
	return nil
}

// VenuesFollow follows a venue.
func (r *Runner) VenuesFollow(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSession(ctx); err != nil {
		return err
	}

	venueID := cmd.StringArg("id")
	if venueID == "" {
		return fmt.Errorf("%w: venue id", shared.ErrMissingArgument)
	}

	if err := r.venues.Follow(ctx, venueID); err != nil {
		return err
	}
	return r.writePlain("✓ Following %s\n", venueID)
}

// VenuesUnfollow unfollows a venue.
func (r *Runner) VenuesUnfollow(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSession(ctx); err != nil {
		return err
	}

	venueID := cmd.StringArg("id")
	if venueID == "" {
		return fmt.Errorf("%w: venue id", shared.ErrMissingArgument)
	}

	if err := r.venues.Unfollow(ctx, venueID); err != nil {
		return err
	}
	return r.writePlain("✓ Unfollowed %s\n", venueID)
}

// VenuesRate submits a star rating.
func (r *Runner) VenuesRate(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSession(ctx); err != nil {
		return err
	}

	venueID := cmd.StringArg("id")
	if venueID == "" {
		return fmt.Errorf("%w: venue id", shared.ErrMissingArgument)
	}

	stars := cmd.Int("stars")
	if err := r.venues.Rate(ctx, venueID, stars, cmd.String("comment")); err != nil {
		return err
	}
	return r.writePlain("✓ Rated %s %d/5\n", venueID, stars)
}

// VenuesReport submits a crowd report.
func (r *Runner) VenuesReport(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSession(ctx); err != nil {
		return err
	}

	venueID := cmd.StringArg("id")
	if venueID == "" {
		return fmt.Errorf("%w: venue id", shared.ErrMissingArgument)
	}

	crowd := cmd.String("crowd")
	wait := cmd.Int("wait")
	if err := r.venues.ReportCrowd(ctx, venueID, crowd, wait); err != nil {
		return err
	}
	return r.writePlain("✓ Reported %s as %s\n", venueID, crowd)
}

// VenuesSync refreshes the local cache from the remote API.
func (r *Runner) VenuesSync(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSession(ctx); err != nil {
		return err
	}

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	engine := r.venueEngine(db)

	prog := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range prog {
			if update.Err != nil {
				r.logger.Warn(update.Message, "error", update.Err)
			} else {
				r.logger.Info(update.Message, "step", update.Step, "total", update.Total)
			}
		}
	}()

	result, err := engine.Sync(ctx, prog, tasks.VenueSyncOpts{
		NumWorkers: cmd.Int("workers"),
		RateLimit:  cmd.Float("rate"),
	})
	close(prog)
	<-done
	if err != nil {
		return err
	}

	r.writePlain("✓ Synced %d/%d venues", result.SyncedVenues, result.TotalVenues)
	if result.FailedVenues > 0 {
		r.writePlain(" (%d failed)", result.FailedVenues)
	}
	r.writePlain("\n")
	return nil
}

// VenuesCached lists venues from the local cache without touching the network.
func (r *Runner) VenuesCached(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	repo := repositories.NewVenueRepository(db)

	var venues []models.Venue
	if cmd.Bool("followed") {
		venues, err = repo.ListFollowed()
	} else {
		venues, err = repo.List()
	}
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(venues, true)
	}

	return r.printVenues(venues)
}

func (r *Runner) printVenues(venues []models.Venue) error {
	if len(venues) == 0 {
		return r.writePlain("No venues found\n")
	}

	for _, venue := range venues {
		marker := " "
		if venue.Followed {
			marker = "★"
		}
		line := fmt.Sprintf("%s %s (%s)", marker, venue.Name, venue.VenueType)
		if venue.CrowdLevel != "" {
			line = fmt.Sprintf("%s: %s, %d min wait", line, venue.CrowdLevel, venue.WaitMinutes)
		}
		if err := r.writePlain("%s\n", line); err != nil {
			return err
		}
	}
	return nil
}

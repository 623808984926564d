package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/nytevibe/nyte/internal/models"
	"github.com/nytevibe/nyte/internal/shared"
)

// VenueRepository caches venue records fetched from the remote API.
//
// The cache is write-through from the sync engine and read-only everywhere
// else; conflicts resolve by last write wins on the venue ID.
type VenueRepository struct {
	db *sql.DB
}

// NewVenueRepository creates a new VenueRepository with the given database connection
func NewVenueRepository(db *sql.DB) *VenueRepository {
	return &VenueRepository{db: db}
}

// Upsert inserts a venue or refreshes the cached copy when it already exists.
func (r *VenueRepository) Upsert(venue *models.Venue) error {
	if venue == nil || venue.ID == "" {
		return fmt.Errorf("%w: venue has no id", shared.ErrInvalidArgument)
	}

	updatedAt := venue.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now()
	}

	existing, err := r.Get(venue.ID)
	if err != nil && !errors.Is(err, shared.ErrVenueNotFound) {
		return err
	}

	if existing != nil {
		query := `
			UPDATE venues
			SET name = ?, venue_type = ?, address = ?, rating = ?, rating_count = ?,
			    crowd_level = ?, wait_minutes = ?, followed = ?, updated_at = ?
			WHERE id = ?
		`
		_, err := r.db.Exec(query,
			venue.Name,
			venue.VenueType,
			venue.Address,
			venue.Rating,
			venue.RatingCount,
			venue.CrowdLevel,
			venue.WaitMinutes,
			venue.Followed,
			updatedAt,
			venue.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update venue: %w", err)
		}
		return nil
	}

	sequence, err := NextSequence(r.db, "venues")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	query := `
		INSERT INTO venues (id, sequence, name, venue_type, address, rating, rating_count, crowd_level, wait_minutes, followed, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.Exec(query,
		venue.ID,
		sequence,
		venue.Name,
		venue.VenueType,
		venue.Address,
		venue.Rating,
		venue.RatingCount,
		venue.CrowdLevel,
		venue.WaitMinutes,
		venue.Followed,
		updatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert venue: %w", err)
	}

	return nil
}

// Get retrieves a cached venue by ID.
func (r *VenueRepository) Get(id string) (*models.Venue, error) {
	query := `
		SELECT id, name, venue_type, address, rating, rating_count, crowd_level, wait_minutes, followed, updated_at
		FROM venues
		WHERE id = ?
	`
	return r.scanOne(r.db.QueryRow(query, id))
}

// List returns all cached venues in insertion order.
func (r *VenueRepository) List() ([]models.Venue, error) {
	query := `
		SELECT id, name, venue_type, address, rating, rating_count, crowd_level, wait_minutes, followed, updated_at
		FROM venues
		ORDER BY sequence
	`
	return r.scanMany(query)
}

// ListFollowed returns all cached venues the user follows.
func (r *VenueRepository) ListFollowed() ([]models.Venue, error) {
	query := `
		SELECT id, name, venue_type, address, rating, rating_count, crowd_level, wait_minutes, followed, updated_at
		FROM venues
		WHERE followed = 1
		ORDER BY sequence
	`
	return r.scanMany(query)
}

// SetFollowed flips the cached followed flag so the UI reflects a follow or
// unfollow before the next sync.
func (r *VenueRepository) SetFollowed(id string, followed bool) error {
	result, err := r.db.Exec("UPDATE venues SET followed = ?, updated_at = ? WHERE id = ?", followed, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update followed flag: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrVenueNotFound, id)
	}
	return nil
}

// Purge removes every cached venue. Used on logout so the next user does not
// see the previous user's followed list.
func (r *VenueRepository) Purge() error {
	if _, err := r.db.Exec("DELETE FROM venues"); err != nil {
		return fmt.Errorf("failed to purge venues: %w", err)
	}
	return nil
}

func (r *VenueRepository) scanOne(row *sql.Row) (*models.Venue, error) {
	var venue models.Venue
	err := row.Scan(
		&venue.ID,
		&venue.Name,
		&venue.VenueType,
		&venue.Address,
		&venue.Rating,
		&venue.RatingCount,
		&venue.CrowdLevel,
		&venue.WaitMinutes,
		&venue.Followed,
		&venue.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrVenueNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan venue: %w", err)
	}
	return &venue, nil
}

func (r *VenueRepository) scanMany(query string) ([]models.Venue, error) {
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query venues: %w", err)
	}
	defer rows.Close()

	var venues []models.Venue
	for rows.Next() {
		var venue models.Venue
		err := rows.Scan(
			&venue.ID,
			&venue.Name,
			&venue.VenueType,
			&venue.Address,
			&venue.Rating,
			&venue.RatingCount,
			&venue.CrowdLevel,
			&venue.WaitMinutes,
			&venue.Followed,
			&venue.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan venue: %w", err)
		}
		venues = append(venues, venue)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate venues: %w", err)
	}

	return venues, nil
}

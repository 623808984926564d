package repositories

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/nytevibe/nyte/internal/models"
	"github.com/nytevibe/nyte/internal/shared"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func testVenue(id, name string) *models.Venue {
	return &models.Venue{
		ID:          id,
		Name:        name,
		VenueType:   "club",
		Address:     "123 Night St",
		Rating:      4.2,
		RatingCount: 87,
		CrowdLevel:  models.CrowdBusy,
		WaitMinutes: 15,
		UpdatedAt:   time.Now().Truncate(time.Second),
	}
}

func TestNextSequence(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	first, err := NextSequence(db, "venues")
	if err != nil {
		t.Fatalf("failed to get sequence: %v", err)
	}
	second, err := NextSequence(db, "venues")
	if err != nil {
		t.Fatalf("failed to get sequence: %v", err)
	}

	if second != first+1 {
		t.Errorf("expected monotonic sequence, got %d then %d", first, second)
	}
}

func TestVenueRepository(t *testing.T) {
	t.Run("Upsert Insert", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewVenueRepository(db)
		if err := repo.Upsert(testVenue("v1", "Club Neon")); err != nil {
			t.Fatalf("failed to insert venue: %v", err)
		}

		venue, err := repo.Get("v1")
		if err != nil {
			t.Fatalf("failed to get venue: %v", err)
		}
		if venue.Name != "Club Neon" || venue.CrowdLevel != models.CrowdBusy {
			t.Errorf("unexpected venue: %+v", venue)
		}
	})

	t.Run("Upsert Update", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewVenueRepository(db)
		if err := repo.Upsert(testVenue("v1", "Club Neon")); err != nil {
			t.Fatalf("failed to insert venue: %v", err)
		}

		updated := testVenue("v1", "Club Neon")
		updated.CrowdLevel = models.CrowdPacked
		updated.WaitMinutes = 45
		if err := repo.Upsert(updated); err != nil {
			t.Fatalf("failed to update venue: %v", err)
		}

		venue, err := repo.Get("v1")
		if err != nil {
			t.Fatalf("failed to get venue: %v", err)
		}
		if venue.CrowdLevel != models.CrowdPacked || venue.WaitMinutes != 45 {
			t.Errorf("expected refreshed fields, got %+v", venue)
		}

		venues, err := repo.List()
		if err != nil {
			t.Fatalf("failed to list venues: %v", err)
		}
		if len(venues) != 1 {
			t.Errorf("upsert must not duplicate rows, got %d", len(venues))
		}
	})

	t.Run("Upsert Rejects Missing ID", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewVenueRepository(db)
		if err := repo.Upsert(&models.Venue{Name: "Nameless"}); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("Get Missing", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewVenueRepository(db)
		if _, err := repo.Get("ghost"); !errors.Is(err, shared.ErrVenueNotFound) {
			t.Errorf("expected ErrVenueNotFound, got %v", err)
		}
	})

	t.Run("List Preserves Insertion Order", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewVenueRepository(db)
		for _, venue := range []*models.Venue{testVenue("v1", "Alpha"), testVenue("v2", "Beta"), testVenue("v3", "Gamma")} {
			if err := repo.Upsert(venue); err != nil {
				t.Fatalf("failed to insert venue: %v", err)
			}
		}

		venues, err := repo.List()
		if err != nil {
			t.Fatalf("failed to list venues: %v", err)
		}
		if len(venues) != 3 || venues[0].Name != "Alpha" || venues[2].Name != "Gamma" {
			t.Errorf("unexpected order: %+v", venues)
		}
	})

	t.Run("Followed Flag", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewVenueRepository(db)
		if err := repo.Upsert(testVenue("v1", "Club Neon")); err != nil {
			t.Fatalf("failed to insert venue: %v", err)
		}
		if err := repo.Upsert(testVenue("v2", "The Basement")); err != nil {
			t.Fatalf("failed to insert venue: %v", err)
		}

		if err := repo.SetFollowed("v1", true); err != nil {
			t.Fatalf("failed to set followed: %v", err)
		}

		followed, err := repo.ListFollowed()
		if err != nil {
			t.Fatalf("failed to list followed: %v", err)
		}
		if len(followed) != 1 || followed[0].ID != "v1" {
			t.Errorf("unexpected followed list: %+v", followed)
		}

		if err := repo.SetFollowed("ghost", true); !errors.Is(err, shared.ErrVenueNotFound) {
			t.Errorf("expected ErrVenueNotFound, got %v", err)
		}
	})

	t.Run("Purge", func(t *testing.T) {
		db := setupTestDB(t)
		defer db.Close()

		repo := NewVenueRepository(db)
		if err := repo.Upsert(testVenue("v1", "Club Neon")); err != nil {
			t.Fatalf("failed to insert venue: %v", err)
		}

		if err := repo.Purge(); err != nil {
			t.Fatalf("failed to purge: %v", err)
		}

		venues, err := repo.List()
		if err != nil {
			t.Fatalf("failed to list venues: %v", err)
		}
		if len(venues) != 0 {
			t.Errorf("expected empty cache, got %d venues", len(venues))
		}
	})
}

func TestVenueCacheAdapter(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	adapter := NewVenueCacheAdapter(NewVenueRepository(db))

	venue := testVenue("v1", "Club Neon")
	if err := adapter.CacheVenue(*venue); err != nil {
		t.Fatalf("failed to cache venue: %v", err)
	}
	if err := adapter.CacheVenue(*venue); err != nil {
		t.Errorf("re-caching the same venue should succeed, got %v", err)
	}

	venues, err := NewVenueRepository(db).List()
	if err != nil {
		t.Fatalf("failed to list venues: %v", err)
	}
	if len(venues) != 1 {
		t.Errorf("expected one cached venue, got %d", len(venues))
	}
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/nytevibe/nyte/internal/services"
	"github.com/nytevibe/nyte/internal/session"
	"github.com/nytevibe/nyte/internal/shared"
	"github.com/nytevibe/nyte/internal/store"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		} else {
			logger.Warn("failed to load config.toml, using defaults", "error", err)
		}
	}

	kv, err := openStorage(config)
	if err != nil {
		logger.Fatalf("failed to open credential storage: %v", err)
	}

	creds := store.NewCredentialStore(kv, logger)

	httpClient := &http.Client{
		Timeout: time.Duration(config.API.TimeoutSeconds) * time.Second,
	}

	auth := services.NewAuthService(config.API.BaseURL, httpClient, creds, logger)
	venues := services.NewVenueService(config.API.BaseURL, httpClient, creds, logger)
	manager := session.New(auth, creds, logger)

	// A restored session is usable right away; confirming the token with the
	// server happens in the background. A revoked token clears the session
	// through the facade, anything else leaves it marked unverified.
	if snap := manager.Snapshot(); snap.State == session.StateAuthenticated && snap.Unverified {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := manager.Revalidate(ctx); err != nil && !errors.Is(err, shared.ErrUnauthorized) {
				logger.Debug("startup revalidation inconclusive", "error", err)
			}
		}()
	}

	runner := NewRunner(RunnerOpts{
		Config:     config,
		Session:    manager,
		Venues:     venues,
		Creds:      creds,
		HTTPClient: httpClient,
		Logger:     logger,
	})

	app := &cli.Command{
		Name:     "nyte",
		Usage:    "nYtevibe session and venue client",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrNotAuthenticated) {
			logger.Error("not signed in, run 'nyte login' first")
			os.Exit(1)
		}
		logger.Fatalf("application error: %v", err)
	}
}

// openStorage selects the credential backend configured in [storage].
func openStorage(config *shared.Config) (store.KV, error) {
	switch config.Storage.Backend {
	case "memory":
		return store.NewMemoryKV(), nil
	case "sqlite":
		db, err := shared.NewDatabase(config.Database.Path)
		if err != nil {
			return nil, err
		}
		shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)
		if err := shared.RunMigrations(db); err != nil {
			db.Close()
			return nil, err
		}
		return store.NewSQLiteKV(db), nil
	default:
		path, err := config.Storage.CredentialPath()
		if err != nil {
			return nil, err
		}
		return store.NewFileKV(path), nil
	}
}

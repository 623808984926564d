package main

import (
	"bytes"
	"context"
	"net/http"
	"os"
	"strings"
	"testing"

	"github.com/nytevibe/nyte/internal/models"
	"github.com/nytevibe/nyte/internal/services"
	"github.com/nytevibe/nyte/internal/session"
	"github.com/nytevibe/nyte/internal/shared"
	"github.com/nytevibe/nyte/internal/store"
	tu "github.com/nytevibe/nyte/internal/testing"
	"github.com/urfave/cli/v3"
)

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}
			auth := &tu.MockAuthAPI{}
			venues := &tu.MockVenueAPI{}
			creds := store.NewCredentialStore(store.NewMemoryKV(), logger)
			manager := session.New(auth, creds, logger)

			runner := NewRunner(RunnerOpts{
				Config:     config,
				Session:    manager,
				Venues:     venues,
				Creds:      creds,
				HTTPClient: httpClient,
				Logger:     logger,
				Output:     output,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.session != manager {
				t.Error("expected session to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("with nil httpClient uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.httpClient != http.DefaultClient {
				t.Error("expected httpClient to default to http.DefaultClient")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			if err := runner.writeJSON(data, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			if err := runner.writeJSON(data, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			expected := `{"key":"value"}` + "\n"
			if result := output.String(); result != expected {
				t.Errorf("expected %q, got %q", expected, result)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil {
				t.Fatal("expected error writing newline")
			}
			if !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		if err := runner.writePlain("hello %s", "world"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result := output.String(); result != "hello world" {
			t.Errorf("expected %q, got %q", "hello world", result)
		}
	})
}

// runCommand executes a CLI command tree against the runner the way main does.
func runCommand(t *testing.T, runner *Runner, args ...string) error {
	t.Helper()
	app := &cli.Command{
		Name:     "nyte",
		Commands: runner.register(),
	}
	return app.Run(context.Background(), append([]string{"nyte"}, args...))
}

func testRunner(t *testing.T, auth services.AuthAPI, venues services.VenueAPI) (*Runner, *bytes.Buffer) {
	t.Helper()
	output := &bytes.Buffer{}
	logger := shared.NewLogger(&bytes.Buffer{})
	creds := store.NewCredentialStore(store.NewMemoryKV(), logger)
	manager := session.New(auth, creds, logger)

	config := shared.DefaultConfig()
	config.Database.Path = ":memory:"

	runner := NewRunner(RunnerOpts{
		Config:  config,
		Session: manager,
		Venues:  venues,
		Creds:   creds,
		Logger:  logger,
		Output:  output,
	})
	return runner, output
}

func TestAuthCommands(t *testing.T) {
	user := models.UserRecord{ID: "u1", Email: "demo@nytevibe.com", Username: "demo", FirstName: "Demo"}

	t.Run("Login", func(t *testing.T) {
		auth := &tu.MockAuthAPI{
			LoginFunc: func(ctx context.Context, identifier, password string, rememberMe bool) (*services.LoginResult, error) {
				if identifier != "demo@nytevibe.com" || password != "demo123" {
					t.Errorf("unexpected credentials: %s %s", identifier, password)
				}
				if !rememberMe {
					t.Error("expected remember-me to be set")
				}
				return &services.LoginResult{Token: "tok-123", User: user}, nil
			},
		}
		runner, output := testRunner(t, auth, &tu.MockVenueAPI{})

		err := runCommand(t, runner, "login", "--password", "demo123", "--remember", "demo@nytevibe.com")
		if err != nil {
			t.Fatalf("login failed: %v", err)
		}
		if !strings.Contains(output.String(), "Signed in as Demo") {
			t.Errorf("expected greeting, got %q", output.String())
		}
		if !runner.session.Authenticated() {
			t.Error("expected session to be authenticated")
		}
	})

	t.Run("Login Without Identifier", func(t *testing.T) {
		runner, _ := testRunner(t, &tu.MockAuthAPI{}, &tu.MockVenueAPI{})

		err := runCommand(t, runner, "login", "--password", "demo123")
		if err == nil {
			t.Fatal("expected missing-argument error")
		}
	})

	t.Run("Status When Signed Out", func(t *testing.T) {
		runner, output := testRunner(t, &tu.MockAuthAPI{}, &tu.MockVenueAPI{})

		if err := runCommand(t, runner, "status"); err != nil {
			t.Fatalf("status failed: %v", err)
		}
		if !strings.Contains(output.String(), "Not signed in") {
			t.Errorf("expected signed-out status, got %q", output.String())
		}
	})

	t.Run("Logout When Signed Out", func(t *testing.T) {
		runner, output := testRunner(t, &tu.MockAuthAPI{}, &tu.MockVenueAPI{})

		if err := runCommand(t, runner, "logout"); err != nil {
			t.Fatalf("logout failed: %v", err)
		}
		if !strings.Contains(output.String(), "Not signed in") {
			t.Errorf("expected no-op message, got %q", output.String())
		}
	})

	t.Run("Login Then Logout", func(t *testing.T) {
		auth := &tu.MockAuthAPI{
			LoginFunc: func(ctx context.Context, identifier, password string, rememberMe bool) (*services.LoginResult, error) {
				return &services.LoginResult{Token: "tok-123", User: user}, nil
			},
		}
		runner, output := testRunner(t, auth, &tu.MockVenueAPI{})

		if err := runCommand(t, runner, "login", "--password", "demo123", "demo"); err != nil {
			t.Fatalf("login failed: %v", err)
		}
		if err := runCommand(t, runner, "logout"); err != nil {
			t.Fatalf("logout failed: %v", err)
		}
		if runner.session.Authenticated() {
			t.Error("expected session cleared after logout")
		}
		if !strings.Contains(output.String(), "Signed out") {
			t.Errorf("expected confirmation, got %q", output.String())
		}
	})

	t.Run("Whoami Requires Session", func(t *testing.T) {
		runner, _ := testRunner(t, &tu.MockAuthAPI{}, &tu.MockVenueAPI{})

		if err := runCommand(t, runner, "whoami"); err == nil {
			t.Fatal("expected not-authenticated error")
		}
	})

	t.Run("Whoami Refreshes The Session Profile", func(t *testing.T) {
		auth := &tu.MockAuthAPI{
			LoginFunc: func(ctx context.Context, identifier, password string, rememberMe bool) (*services.LoginResult, error) {
				return &services.LoginResult{Token: "tok-123", User: user}, nil
			},
			CurrentUserFunc: func(ctx context.Context) (*models.UserRecord, error) {
				refreshed := user
				refreshed.Points = 99
				return &refreshed, nil
			},
		}
		runner, output := testRunner(t, auth, &tu.MockVenueAPI{})

		if err := runCommand(t, runner, "login", "--password", "demo123", "demo"); err != nil {
			t.Fatalf("login failed: %v", err)
		}
		if err := runCommand(t, runner, "whoami"); err != nil {
			t.Fatalf("whoami failed: %v", err)
		}
		if !strings.Contains(output.String(), "demo@nytevibe.com") {
			t.Errorf("expected the profile printed, got %q", output.String())
		}

		// The live profile lands in the session, not just on stdout.
		if snap := runner.session.Snapshot(); snap.User == nil || snap.User.Points != 99 {
			t.Errorf("expected the session to carry the refreshed profile, got %+v", snap.User)
		}
	})

	t.Run("Password Forgot", func(t *testing.T) {
		auth := &tu.MockAuthAPI{
			ForgotPasswordFunc: func(ctx context.Context, identifier string) (string, error) {
				return "check your inbox", nil
			},
		}
		runner, output := testRunner(t, auth, &tu.MockVenueAPI{})

		if err := runCommand(t, runner, "password", "forgot", "demo@nytevibe.com"); err != nil {
			t.Fatalf("forgot failed: %v", err)
		}
		if !strings.Contains(output.String(), "check your inbox") {
			t.Errorf("expected server message, got %q", output.String())
		}
	})
}

func TestVenueCommands(t *testing.T) {
	user := models.UserRecord{ID: "u1", Email: "demo@nytevibe.com", Username: "demo"}

	signIn := func(t *testing.T, runner *Runner) {
		t.Helper()
		if err := runCommand(t, runner, "login", "--password", "demo123", "demo"); err != nil {
			t.Fatalf("login failed: %v", err)
		}
	}

	authOK := func() *tu.MockAuthAPI {
		return &tu.MockAuthAPI{
			LoginFunc: func(ctx context.Context, identifier, password string, rememberMe bool) (*services.LoginResult, error) {
				return &services.LoginResult{Token: "tok-123", User: user}, nil
			},
			// Plain 24h sessions fall inside the near-expiry window almost
			// immediately, so venue commands rotate the token first.
			RefreshTokenFunc: func(ctx context.Context, token string) (*services.RefreshResult, error) {
				return &services.RefreshResult{Token: "tok-rotated"}, nil
			},
		}
	}

	t.Run("List Requires Session", func(t *testing.T) {
		runner, _ := testRunner(t, &tu.MockAuthAPI{}, &tu.MockVenueAPI{})

		if err := runCommand(t, runner, "venues", "list"); err == nil {
			t.Fatal("expected not-authenticated error")
		}
	})

	t.Run("List", func(t *testing.T) {
		venues := &tu.MockVenueAPI{
			ListFunc: func(ctx context.Context) ([]models.Venue, error) {
				return []models.Venue{
					{ID: "v1", Name: "Club Neon", VenueType: "club", CrowdLevel: models.CrowdBusy, WaitMinutes: 20},
					{ID: "v2", Name: "The Basement", VenueType: "bar", Followed: true},
				}, nil
			},
		}
		runner, output := testRunner(t, authOK(), venues)
		signIn(t, runner)

		if err := runCommand(t, runner, "venues", "list"); err != nil {
			t.Fatalf("list failed: %v", err)
		}

		result := output.String()
		if !strings.Contains(result, "Club Neon") || !strings.Contains(result, "busy, 20 min wait") {
			t.Errorf("expected venue lines, got %q", result)
		}
		if !strings.Contains(result, "★ The Basement") {
			t.Errorf("expected followed marker, got %q", result)
		}
	})

	t.Run("Follow", func(t *testing.T) {
		var followedID string
		venues := &tu.MockVenueAPI{
			FollowFunc: func(ctx context.Context, venueID string) error {
				followedID = venueID
				return nil
			},
		}
		runner, _ := testRunner(t, authOK(), venues)
		signIn(t, runner)

		if err := runCommand(t, runner, "venues", "follow", "v1"); err != nil {
			t.Fatalf("follow failed: %v", err)
		}
		if followedID != "v1" {
			t.Errorf("expected follow call for v1, got %q", followedID)
		}
	})

	t.Run("Rate", func(t *testing.T) {
		var gotRating int
		venues := &tu.MockVenueAPI{
			RateFunc: func(ctx context.Context, venueID string, rating int, comment string) error {
				gotRating = rating
				return nil
			},
		}
		runner, _ := testRunner(t, authOK(), venues)
		signIn(t, runner)

		if err := runCommand(t, runner, "venues", "rate", "--stars", "4", "v1"); err != nil {
			t.Fatalf("rate failed: %v", err)
		}
		if gotRating != 4 {
			t.Errorf("expected rating 4, got %d", gotRating)
		}
	})

	t.Run("Report", func(t *testing.T) {
		var gotLevel string
		venues := &tu.MockVenueAPI{
			ReportCrowdFunc: func(ctx context.Context, venueID, crowdLevel string, waitMinutes int) error {
				gotLevel = crowdLevel
				return nil
			},
		}
		runner, _ := testRunner(t, authOK(), venues)
		signIn(t, runner)

		if err := runCommand(t, runner, "venues", "report", "--crowd", "packed", "--wait", "30", "v1"); err != nil {
			t.Fatalf("report failed: %v", err)
		}
		if gotLevel != models.CrowdPacked {
			t.Errorf("expected packed report, got %q", gotLevel)
		}
	})
}

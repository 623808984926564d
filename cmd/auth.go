package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/nytevibe/nyte/internal/session"
	"github.com/nytevibe/nyte/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

// Login signs in and persists the credential. The password is read from the
// --password flag or prompted without echo.
func (r *Runner) Login(ctx context.Context, cmd *cli.Command) error {
	identifier := cmd.StringArg("identifier")
	if identifier == "" {
		return fmt.Errorf("%w: identifier (email or username)", shared.ErrMissingArgument)
	}

	password := cmd.String("password")
	if password == "" {
		var err error
		if password, err = promptPassword(r, "Password: "); err != nil {
			return err
		}
	}
	if password == "" {
		return fmt.Errorf("%w: password", shared.ErrMissingArgument)
	}

	rememberMe := cmd.Bool("remember")

	user, err := r.session.Login(ctx, identifier, password, rememberMe)
	if err != nil {
		switch {
		case errors.Is(err, shared.ErrInvalidCredentials):
			return fmt.Errorf("login failed: %w", err)
		case errors.Is(err, shared.ErrEmailNotVerified):
			return fmt.Errorf("login failed, verify your email first: %w", err)
		case errors.Is(err, shared.ErrAccountSuspended):
			return fmt.Errorf("login failed, account suspended: %w", err)
		case errors.Is(err, shared.ErrRateLimited):
			var rle *shared.RateLimitError
			if errors.As(err, &rle) && rle.RetryAfter > 0 {
				return fmt.Errorf("too many attempts, retry in %s: %w", rle.RetryAfter, err)
			}
			return fmt.Errorf("too many attempts: %w", err)
		default:
			return err
		}
	}

	snap := r.session.Snapshot()
	r.writePlain("✓ Signed in as %s\n", user.DisplayName())
	if snap.Credential != nil {
		r.writePlain("Session expires: %s\n", snap.Credential.ExpiresAt.Format(time.RFC1123))
	}
	return nil
}

// Logout signs out. Local state is cleared even when the server is unreachable.
func (r *Runner) Logout(ctx context.Context, cmd *cli.Command) error {
	if !r.session.Authenticated() {
		return r.writePlain("Not signed in\n")
	}

	if err := r.session.Logout(ctx); err != nil {
		return err
	}
	return r.writePlain("✓ Signed out\n")
}

// Status reports the session state, optionally verifying against the server.
func (r *Runner) Status(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("verify") && r.session.Authenticated() {
		if err := r.session.Revalidate(ctx); err != nil && !errors.Is(err, shared.ErrUnauthorized) {
			r.logger.Warn("verification inconclusive", "error", err)
		}
	}

	snap := r.session.Snapshot()

	if cmd.Bool("json") {
		payload := map[string]any{
			"state":      string(snap.State),
			"unverified": snap.Unverified,
		}
		if snap.User != nil {
			payload["user"] = snap.User
		}
		if snap.Credential != nil {
			payload["issued_at"] = snap.Credential.IssuedAt
			payload["expires_at"] = snap.Credential.ExpiresAt
			payload["remember_me"] = snap.Credential.RememberMe
		}
		return r.writeJSON(payload, true)
	}

	if snap.State != session.StateAuthenticated {
		return r.writePlain("✗ Not signed in\n")
	}

	if snap.User != nil {
		r.writePlain("✓ Signed in as %s\n", snap.User.DisplayName())
	} else {
		r.writePlain("✓ Signed in\n")
	}
	if snap.Unverified {
		r.writePlain("Verification: pending (run 'nyte status --verify')\n")
	}
	if snap.Credential != nil {
		r.writePlain("Session expires: %s\n", snap.Credential.ExpiresAt.Format(time.RFC1123))
		if snap.Credential.RememberMe {
			r.writePlain("Remember me: yes\n")
		}
	}
	return nil
}

// Whoami prints the current user's profile, from the server or the local cache.
func (r *Runner) Whoami(ctx context.Context, cmd *cli.Command) error {
	if !r.session.Authenticated() {
		return shared.ErrNotAuthenticated
	}

	if cmd.Bool("cached") {
		snap := r.session.Snapshot()
		if snap.User == nil {
			return fmt.Errorf("%w: no cached profile, drop --cached", shared.ErrNotAuthenticated)
		}
		if cmd.Bool("json") {
			return r.writeJSON(snap.User, true)
		}
		r.writePlain("%s (%s)\n", snap.User.DisplayName(), snap.User.Email)
		return nil
	}

	user, err := r.session.CurrentUser(ctx)
	if err != nil {
		if errors.Is(err, shared.ErrUnauthorized) {
			return fmt.Errorf("%w: session revoked", shared.ErrNotAuthenticated)
		}
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(user, true)
	}

	r.writePlain("%s (%s)\n", user.DisplayName(), user.Email)
	if user.Level != "" {
		r.writePlain("Level: %s, %d points\n", user.Level, user.Points)
	}
	return nil
}

// promptPassword reads a password without echo when stdin is a terminal,
// falling back to a plain line read otherwise (pipes in tests and scripts).
func promptPassword(r *Runner, prompt string) (string, error) {
	r.writePlain("%s", prompt)

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		raw, err := term.ReadPassword(fd)
		r.writePlain("\n")
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(raw), nil
	}

	var line string
	if _, err := fmt.Fscanln(os.Stdin, &line); err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimSpace(line), nil
}

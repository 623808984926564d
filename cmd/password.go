package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/nytevibe/nyte/internal/shared"
	"github.com/urfave/cli/v3"
)

// PasswordForgot requests a reset email for the given identifier.
func (r *Runner) PasswordForgot(ctx context.Context, cmd *cli.Command) error {
	identifier := cmd.StringArg("identifier")
	if identifier == "" {
		return fmt.Errorf("%w: identifier (email or username)", shared.ErrMissingArgument)
	}

	message, err := r.session.ForgotPassword(ctx, identifier)
	if err != nil {
		var rle *shared.RateLimitError
		if errors.As(err, &rle) && rle.RetryAfter > 0 {
			return fmt.Errorf("rate limited, retry in %s: %w", rle.RetryAfter, err)
		}
		return err
	}

	return r.writePlain("✓ %s\n", message)
}

// PasswordReset completes a reset using the emailed token and a new password
// prompted without echo.
func (r *Runner) PasswordReset(ctx context.Context, cmd *cli.Command) error {
	identifier := cmd.StringArg("identifier")
	if identifier == "" {
		return fmt.Errorf("%w: identifier (email or username)", shared.ErrMissingArgument)
	}
	token := cmd.String("token")

	password, err := promptPassword(r, "New password: ")
	if err != nil {
		return err
	}
	confirm, err := promptPassword(r, "Confirm new password: ")
	if err != nil {
		return err
	}
	if password != confirm {
		return fmt.Errorf("%w: passwords do not match", shared.ErrInvalidArgument)
	}
	if password == "" {
		return fmt.Errorf("%w: password", shared.ErrMissingArgument)
	}

	if err := r.session.ResetPassword(ctx, token, identifier, password); err != nil {
		if errors.Is(err, shared.ErrInvalidResetToken) {
			return fmt.Errorf("reset failed, request a new link with 'nyte password forgot': %w", err)
		}
		return err
	}

	return r.writePlain("✓ Password updated, sign in with 'nyte login'\n")
}

// PasswordVerify checks whether a reset token is still usable.
func (r *Runner) PasswordVerify(ctx context.Context, cmd *cli.Command) error {
	identifier := cmd.StringArg("identifier")
	if identifier == "" {
		return fmt.Errorf("%w: identifier (email or username)", shared.ErrMissingArgument)
	}
	token := cmd.String("token")

	if err := r.session.VerifyResetToken(ctx, token, identifier); err != nil {
		if errors.Is(err, shared.ErrInvalidResetToken) {
			return r.writePlain("✗ Token is expired or invalid\n")
		}
		return err
	}

	return r.writePlain("✓ Token is valid\n")
}

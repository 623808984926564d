// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize configuration and the local database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Setup,
	}
}

func loginCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Sign in to nYtevibe",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "identifier",
			},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "password",
				Usage: "Password (prompted interactively when omitted)",
			},
			&cli.BoolFlag{
				Name:    "remember",
				Aliases: []string{"r"},
				Usage:   "Keep the session for 30 days instead of 24 hours",
			},
		},
		Action: r.Login,
	}
}

func logoutCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "logout",
		Usage:  "Sign out and clear the stored credential",
		Action: r.Logout,
	}
}

func statusCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show session state and token expiry",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "verify",
				Usage: "Confirm the session against the server",
			},
		},
		Action: r.Status,
	}
}

func whoamiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "whoami",
		Usage: "Show the signed-in user's profile",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "cached",
				Usage: "Use the locally cached profile without a network call",
			},
		},
		Action: r.Whoami,
	}
}

func passwordCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "password",
		Usage: "Password reset operations",
		Commands: []*cli.Command{
			{
				Name:  "forgot",
				Usage: "Request a password reset email",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "identifier",
					},
				},
				Action: r.PasswordForgot,
			},
			{
				Name:  "reset",
				Usage: "Complete a password reset with an emailed token",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "identifier",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "token",
						Usage:    "Reset token from the email link",
						Required: true,
					},
				},
				Action: r.PasswordReset,
			},
			{
				Name:  "verify",
				Usage: "Check whether a reset token is still valid",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "identifier",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "token",
						Usage:    "Reset token from the email link",
						Required: true,
					},
				},
				Action: r.PasswordVerify,
			},
		},
	}
}

func venuesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "venues",
		Aliases: []string{"v"},
		Usage:   "Browse and interact with venues",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List all venues",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "followed",
						Usage: "Only show followed venues",
					},
				},
				Action: r.VenuesList,
			},
			{
				Name:  "show",
				Usage: "Show a single venue",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "id",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.VenuesShow,
			},
			{
				Name:  "follow",
				Usage: "Follow a venue",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "id",
					},
				},
				Action: r.VenuesFollow,
			},
			{
				Name:  "unfollow",
				Usage: "Unfollow a venue",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "id",
					},
				},
				Action: r.VenuesUnfollow,
			},
			{
				Name:  "rate",
				Usage: "Rate a venue from 1 to 5",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "id",
					},
				},
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:     "stars",
						Usage:    "Rating from 1 to 5",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "comment",
						Usage: "Optional review comment",
					},
				},
				Action: r.VenuesRate,
			},
			{
				Name:  "report",
				Usage: "Report current crowd status at a venue",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "id",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "crowd",
						Usage:    "Crowd level: empty, quiet, busy, packed",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "wait",
						Usage: "Current wait in minutes",
					},
				},
				Action: r.VenuesReport,
			},
			{
				Name:  "sync",
				Usage: "Refresh the local venue cache",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent detail fetchers",
						Value: 4,
					},
					&cli.FloatFlag{
						Name:  "rate",
						Usage: "Requests per second",
						Value: 5,
					},
				},
				Action: r.VenuesSync,
			},
			{
				Name:  "cached",
				Usage: "List venues from the local cache without a network call",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "followed",
						Usage: "Only show followed venues",
					},
				},
				Action: r.VenuesCached,
			},
		},
	}
}

func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "tui",
		Usage:  "Launch the interactive terminal UI",
		Action: r.TUI,
	}
}

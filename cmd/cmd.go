// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// trainCommand regenerates the interpretation model from the training file.
func trainCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "train",
		Usage: "Train the vibe interpretation model from training data",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "data",
				Aliases: []string{"d"},
				Usage:   "Path to training data JSON",
			},
			&cli.StringFlag{
				Name:    "model",
				Aliases: []string{"m"},
				Usage:   "Output path for the trained model",
			},
			&cli.IntFlag{
				Name:  "max-features",
				Usage: "TF-IDF vocabulary cap",
				Value: 100,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output metrics as JSON",
			},
		},
		Action: r.Train,
	}
}

// curateCommand runs a one-shot curation from the terminal.
func curateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "curate",
		Usage: "Generate a playlist from a vibe description",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "vibe",
			},
		},
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "size",
				Aliases: []string{"n"},
				Usage:   "Number of tracks to target",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
				Value: true,
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Export playlist to file (format from extension: .json/.csv/.md/.txt)",
			},
			&cli.BoolFlag{
				Name:  "publish",
				Usage: "Create the playlist on the linked Spotify account",
			},
			&cli.BoolFlag{
				Name:  "no-save",
				Usage: "Skip recording the playlist in history",
			},
		},
		Action: r.Curate,
	}
}

// serveCommand runs the web UI.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the web UI and JSON API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Bind address (overrides config)",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to listen on (overrides config)",
			},
		},
		Action: r.Serve,
	}
}

// tuiCommand returns the top-level TUI command for interactive curation.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive TUI for playlist curation",
		Action:  r.TUI,
	}
}

// spotifyCommand handles Spotify operations
func spotifyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "spotify",
		Aliases: []string{"spot"},
		Usage:   "Spotify account and catalog operations",
		Commands: []*cli.Command{
			{
				Name:  "auth",
				Usage: "Authenticate with Spotify using OAuth2",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SpotifyAuth,
			},
			{
				Name:  "search",
				Usage: "Search the catalog for a track or artist",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "query",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "song",
						Usage: "Exact track title (searches artist:<query> track:<song>)",
					},
					&cli.StringFlag{
						Name:  "genre",
						Usage: "Genre filter for similar-track search",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum results for similar-track search",
						Value: 10,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.SpotifySearch,
			},
		},
	}
}

// setupCommand handles setup operations for database and configuration.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Initialize database and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupDatabase,
			},
			{
				Name:  "config",
				Usage: "Write an example config.toml",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Path to write the config file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupConfig,
			},
		},
	}
}

// historyCommand browses persisted playlist history.
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Browse previously generated playlists",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List recent playlists",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of playlists to show",
						Value: 5,
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
					},
				},
				Action: r.HistoryList,
			},
			{
				Name:  "show",
				Usage: "Show a playlist with its tracks",
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
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.HistoryShow,
			},
			{
				Name:  "export",
				Usage: "Export a playlist to a file",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "id",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "output",
						Aliases:  []string{"o"},
						Usage:    "Output file path (format from extension)",
						Required: true,
					},
				},
				Action: r.HistoryExport,
			},
		},
	}
}

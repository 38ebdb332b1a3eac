// submodule cmd contains command definitions
package main

import (
	"github.com/desertthunder/tdx/internal/formatter"
	"github.com/urfave/cli/v3"
)

// outputFlags are shared by every command that prints API data.
func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print JSON output",
			Value: true,
		},
	}
}

func pageFlags(limit int) []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:  "limit",
			Usage: "Maximum number of items to return",
			Value: limit,
		},
		&cli.IntFlag{
			Name:  "offset",
			Usage: "Number of items to skip",
		},
	}
}

func orderFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "order",
			Usage: "Sort field: DATE, NAME, ARTIST or ALBUM",
		},
		&cli.StringFlag{
			Name:  "direction",
			Usage: "Sort direction: ASC or DESC",
		},
	}
}

func exportFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Export format: json, csv, markdown or txt (default from config)",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output directory (default from config)",
		},
		&cli.IntFlag{
			Name:  "cover-size",
			Usage: "Cover edge length in pixels for markdown exports",
			Value: formatter.DefaultCoverSize,
		},
		&cli.BoolFlag{
			Name:  "no-covers",
			Usage: "Skip cover downloads for markdown exports",
		},
	}
}

func flags(groups ...[]cli.Flag) []cli.Flag {
	var all []cli.Flag
	for _, g := range groups {
		all = append(all, g...)
	}
	return all
}

// configCommand handles configuration file operations
func configCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Manage the configuration file",
		Commands: []*cli.Command{
			{
				Name:   "init",
				Usage:  "Write an example config.toml",
				Action: r.ConfigInit,
			},
			{
				Name:   "check",
				Usage:  "Validate the configuration and show where credentials come from",
				Action: r.ConfigCheck,
			},
		},
	}
}

// authCommand handles session operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage the TIDAL session",
		Commands: []*cli.Command{
			{
				Name:   "status",
				Usage:  "Check that the configured access token works",
				Flags:  outputFlags(),
				Action: r.AuthStatus,
			},
			{
				Name:  "refresh",
				Usage: "Exchange the refresh token for a new access token",
				Flags: flags(outputFlags(), []cli.Flag{
					&cli.StringFlag{
						Name:  "refresh-token",
						Usage: "Refresh token to use instead of the configured one",
					},
				}),
				Action: r.AuthRefresh,
			},
			{
				Name:  "import",
				Usage: "Extract credentials from a cURL command copied from the TIDAL web player",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Action: r.AuthImport,
			},
		},
	}
}

// userCommand handles operations on the signed-in user
func userCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "user",
		Aliases: []string{"me"},
		Usage:   "User account operations",
		Commands: []*cli.Command{
			{
				Name:   "info",
				Usage:  "Show account details",
				Flags:  outputFlags(),
				Action: r.UserInfo,
			},
			{
				Name:   "subscription",
				Usage:  "Show subscription details",
				Flags:  outputFlags(),
				Action: r.UserSubscription,
			},
			{
				Name:   "profile",
				Usage:  "Show the public profile",
				Flags:  outputFlags(),
				Action: r.UserProfile,
			},
			{
				Name:   "followers",
				Usage:  "List followers",
				Flags:  outputFlags(),
				Action: r.UserFollowers,
			},
			{
				Name:   "following",
				Usage:  "List followed profiles",
				Flags:  outputFlags(),
				Action: r.UserFollowing,
			},
			{
				Name:  "playlists",
				Usage: "List playlists in the root folder",
				Flags: flags(outputFlags(), pageFlags(50), orderFlags(), []cli.Flag{
					&cli.BoolFlag{
						Name:  "all",
						Usage: "Follow the cursor and list every playlist",
					},
				}),
				Action: r.UserPlaylists,
			},
			{
				Name:  "favorites",
				Usage: "List favorites of a type: albums, artists, playlists, tracks or videos",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "type"},
				},
				Flags:  flags(outputFlags(), pageFlags(100), orderFlags()),
				Action: r.UserFavorites,
			},
			{
				Name:   "updated",
				Usage:  "Show when each favorites collection last changed",
				Flags:  outputFlags(),
				Action: r.UserFavoritesUpdated,
			},
		},
	}
}

// playlistCommand handles playlist operations
func playlistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "playlist",
		Aliases: []string{"pl"},
		Usage:   "Playlist operations",
		Commands: []*cli.Command{
			{
				Name:  "info",
				Usage: "Show playlist details",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags:  outputFlags(),
				Action: r.PlaylistInfo,
			},
			{
				Name:  "tracks",
				Usage: "List one page of a playlist's tracks",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags:  flags(outputFlags(), pageFlags(100), orderFlags()),
				Action: r.PlaylistTracks,
			},
			{
				Name:  "create",
				Usage: "Create a playlist, optionally seeded with tracks",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "name"},
				},
				Flags: flags(outputFlags(), []cli.Flag{
					&cli.StringFlag{
						Name:  "description",
						Usage: "Playlist description",
					},
					&cli.BoolFlag{
						Name:  "public",
						Usage: "Make the playlist public",
					},
					&cli.StringSliceFlag{
						Name:    "track",
						Aliases: []string{"t"},
						Usage:   "Track ID to add (repeatable)",
					},
				}),
				Action: r.PlaylistCreate,
			},
			{
				Name:      "add",
				Usage:     "Add tracks to a playlist, in batches of 50",
				ArgsUsage: "<playlist-id> <track-id>...",
				Flags: flags(outputFlags(), []cli.Flag{
					&cli.StringFlag{
						Name:  "on-dupes",
						Usage: "Duplicate handling: FAIL or ADD",
					},
					&cli.StringFlag{
						Name:  "on-missing",
						Usage: "Unknown track handling: FAIL, KEEP or REPLACE",
					},
				}),
				Action: r.PlaylistAdd,
			},
			{
				Name:  "export",
				Usage: "Export a playlist and all of its tracks",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags:  exportFlags(),
				Action: r.PlaylistExport,
			},
			{
				Name:      "bulk-export",
				Usage:     "Export several playlists concurrently (all playlists when no ids are given)",
				ArgsUsage: "[playlist-id]...",
				Flags: flags(exportFlags(), []cli.Flag{
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent file writers (default from config)",
					},
				}),
				Action: r.PlaylistBulkExport,
			},
			{
				Name:  "open",
				Usage: "Open a playlist in the TIDAL web player",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.PlaylistOpen,
			},
		},
	}
}

// trackCommand handles track operations
func trackCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "track",
		Usage: "Track operations",
		Commands: []*cli.Command{
			{
				Name:  "info",
				Usage: "Show track metadata",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags:  outputFlags(),
				Action: r.TrackInfo,
			},
		},
	}
}

// searchCommand searches the catalog
func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Search the TIDAL catalog",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "query"},
		},
		Flags: flags(outputFlags(), []cli.Flag{
			&cli.StringFlag{
				Name:  "types",
				Usage: "Comma separated result types: tracks, albums, artists, playlists, videos or all",
				Value: "tracks",
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum results per type",
				Value: 25,
			},
		}),
		Action: r.Search,
	}
}

// tuiCommand returns the top-level TUI command for interactive playlist browsing.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Browse and export playlists interactively",
		Flags:   exportFlags(),
		Action:  r.TUI,
	}
}

// submodule cmd contains command definitions
package main

import (
	"github.com/harmonia-fm/harmonia/internal/playlists"
	"github.com/urfave/cli/v3"
)

func jsonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print output",
		},
	}
}

func userFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "user",
		Aliases:  []string{"u"},
		Usage:    "Acting user ID",
		Required: true,
	}
}

// migrateCommand handles schema migration operations
func migrateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Database migration operations",
		Commands: []*cli.Command{
			{
				Name:   "rollback",
				Usage:  "Roll back the most recently applied migration",
				Action: r.MigrateRollback,
			},
		},
	}
}

// serveCommand starts the HTTP API server
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "serve",
		Usage:  "Start the HTTP API server",
		Action: r.Serve,
	}
}

// catalogCommand handles song catalog operations
func catalogCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "catalog",
		Aliases: []string{"cat"},
		Usage:   "Song catalog operations",
		Commands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Add a song to the catalog",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:     "title",
						Usage:    "Song title",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "artist",
						Usage:    "Artist name",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "album",
						Usage: "Album name",
					},
					&cli.IntFlag{
						Name:     "duration",
						Usage:    "Duration in seconds",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "audio-ref",
						Usage:    "Reference to the audio asset",
						Required: true,
					},
				}, jsonFlags()...),
				Action: r.CatalogAdd,
			},
			{
				Name:  "list",
				Usage: "List catalog songs",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:  "artist",
						Usage: "Filter by artist",
					},
					&cli.StringFlag{
						Name:  "album",
						Usage: "Filter by album",
					},
				}, jsonFlags()...),
				Action: r.CatalogList,
			},
			{
				Name:  "delete",
				Usage: "Delete a song from the catalog",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.CatalogDelete,
			},
			{
				Name:  "import",
				Usage: "Bulk-import songs from a JSON manifest",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "manifest"},
				},
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Number of concurrent import workers",
					},
				},
				Action: r.CatalogImport,
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
				Name:  "create",
				Usage: "Create a playlist",
				Flags: []cli.Flag{
					userFlag(),
					&cli.StringFlag{
						Name:  "title",
						Usage: "Playlist title (defaults to a placeholder when blank)",
					},
				},
				Action: r.PlaylistCreate,
			},
			{
				Name:  "list",
				Usage: "List playlists owned by a user",
				Flags: append([]cli.Flag{userFlag()}, jsonFlags()...),
				Action: r.PlaylistList,
			},
			{
				Name:  "show",
				Usage: "Show a playlist with resolved songs",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.PlaylistShow,
			},
			{
				Name:  "add-song",
				Usage: "Add a song to a playlist",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					userFlag(),
					&cli.StringFlag{
						Name:     "song",
						Usage:    "Song ID to add",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "position",
						Usage: "Insert position (appends when omitted)",
						Value: playlists.AppendPosition,
					},
				},
				Action: r.PlaylistAddSong,
			},
			{
				Name:  "remove-song",
				Usage: "Remove the song at a position",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					userFlag(),
					&cli.IntFlag{
						Name:     "position",
						Usage:    "Position to remove",
						Required: true,
					},
				},
				Action: r.PlaylistRemoveSong,
			},
			{
				Name:  "reorder",
				Usage: "Move a song between positions",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					userFlag(),
					&cli.IntFlag{
						Name:     "from",
						Usage:    "Current position",
						Required: true,
					},
					&cli.IntFlag{
						Name:     "to",
						Usage:    "Target position",
						Required: true,
					},
				},
				Action: r.PlaylistReorder,
			},
			{
				Name:  "rename",
				Usage: "Rename a playlist",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					userFlag(),
					&cli.StringFlag{
						Name:     "title",
						Usage:    "New playlist title",
						Required: true,
					},
				},
				Action: r.PlaylistRename,
			},
			{
				Name:  "delete",
				Usage: "Delete a playlist",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags:  []cli.Flag{userFlag()},
				Action: r.PlaylistDelete,
			},
			{
				Name:  "export",
				Usage: "Export a playlist to CSV, Markdown, or plain text",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "format",
						Usage: "Export format: csv, markdown, txt",
						Value: "csv",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file or directory path",
					},
				},
				Action: r.PlaylistExport,
			},
		},
	}
}

// userCommand handles account operations
func userCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "user",
		Usage: "Account operations",
		Commands: []*cli.Command{
			{
				Name:  "register",
				Usage: "Create a new account",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "email",
						Usage:    "Account email",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "name",
						Usage: "Display name",
					},
					&cli.StringFlag{
						Name:     "password",
						Usage:    "Account password",
						Required: true,
					},
				},
				Action: r.UserRegister,
			},
			{
				Name:  "login",
				Usage: "Authenticate and print a bearer token",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:     "email",
						Usage:    "Account email",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "password",
						Usage:    "Account password",
						Required: true,
					},
				}, jsonFlags()...),
				Action: r.UserLogin,
			},
		},
	}
}

// searchCommand handles search index operations
func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Search the song catalog",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "query"},
		},
		Flags: append([]cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of results",
				Value: 25,
			},
		}, jsonFlags()...),
		Action: r.Search,
	}
}

// reindexCommand rebuilds the search index
func reindexCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "reindex",
		Usage:  "Rebuild the search index from the catalog",
		Action: r.Reindex,
	}
}

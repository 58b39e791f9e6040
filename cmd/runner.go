package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/harmonia-fm/harmonia/internal/catalog"
	"github.com/harmonia-fm/harmonia/internal/identity"
	"github.com/harmonia-fm/harmonia/internal/playlists"
	"github.com/harmonia-fm/harmonia/internal/repositories"
	"github.com/harmonia-fm/harmonia/internal/search"
	"github.com/harmonia-fm/harmonia/internal/shared"
	"github.com/harmonia-fm/harmonia/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config *shared.Config
	logger *log.Logger
	output io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config *shared.Config
	Logger *log.Logger
	Output io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config: opts.Config,
		logger: opts.Logger,
		output: opts.Output,
	}
}

// services bundles the assembled application stack for a command invocation.
type appServices struct {
	db       *sql.DB
	index    *search.Index
	updater  *search.Updater
	store    *catalog.Store
	bulk     *catalog.Store
	engine   *playlists.Engine
	identity *identity.Service
	importer *tasks.ImportEngine
}

// close tears down the stack in reverse dependency order.
func (s *appServices) close() {
	s.updater.Close()
	s.db.Close()
}

// open assembles the full service stack over the configured database.
//
// Interactive catalog mutations notify the index synchronously so reads
// observe their own writes. Bulk imports go through the deferred updater
// and flush at the end of the run.
func (r *Runner) open(ctx context.Context) (*appServices, error) {
	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	timeout := r.config.Database.QueryTimeout()
	songs := repositories.NewSongRepository(db, timeout)
	users := repositories.NewUserRepository(db, timeout)
	lists := repositories.NewPlaylistRepository(db, timeout)

	index := search.NewIndex()
	updater := search.NewUpdater(index, r.config.Search.QueueSize, r.config.Search.Staleness(), r.logger)

	store := catalog.NewStore(songs, index, r.logger)
	bulk := catalog.NewStore(songs, updater, r.logger)

	if err := index.Rebuild(ctx, store); err != nil {
		updater.Close()
		db.Close()
		return nil, fmt.Errorf("failed to build search index: %w", err)
	}

	svc := identity.NewService(users, []byte(r.config.Auth.Secret), r.config.Auth.TokenTTL(), r.logger)
	engine := playlists.NewEngine(lists, store, r.logger)
	importer := tasks.NewImportEngine(bulk, updater, r.logger)

	return &appServices{
		db:       db,
		index:    index,
		updater:  updater,
		store:    store,
		bulk:     bulk,
		engine:   engine,
		identity: svc,
		importer: importer,
	}, nil
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, migrateCommand, serveCommand, catalogCommand, playlistCommand, userCommand, searchCommand, reindexCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

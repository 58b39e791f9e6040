package main

import (
	"context"
	"fmt"

	"github.com/harmonia-fm/harmonia/internal/models"
	"github.com/harmonia-fm/harmonia/internal/shared"
	"github.com/harmonia-fm/harmonia/internal/tasks"
	"github.com/urfave/cli/v3"
)

type songOutput struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Artist          string `json:"artist"`
	Album           string `json:"album,omitempty"`
	DurationSeconds int    `json:"duration_seconds"`
	AudioRef        string `json:"audio_ref"`
}

func songToOutput(song *models.Song) songOutput {
	return songOutput{
		ID:              song.ID(),
		Title:           song.Title(),
		Artist:          song.Artist(),
		Album:           song.Album(),
		DurationSeconds: song.DurationSeconds(),
		AudioRef:        song.AudioRef(),
	}
}

// CatalogAdd inserts a single song into the catalog.
func (r *Runner) CatalogAdd(ctx context.Context, cmd *cli.Command) error {
	services, err := r.open(ctx)
	if err != nil {
		return err
	}
	defer services.close()

	song, err := services.store.CreateSong(ctx,
		cmd.String("title"),
		cmd.String("artist"),
		cmd.String("album"),
		int(cmd.Int("duration")),
		cmd.String("audio-ref"),
	)
	if err != nil {
		return fmt.Errorf("failed to add song: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(songToOutput(song), cmd.Bool("pretty"))
	}
	return r.writePlain("✓ Added song %s (%s - %s)\n", song.ID(), song.Artist(), song.Title())
}

// CatalogList prints catalog songs, optionally filtered by artist or album.
func (r *Runner) CatalogList(ctx context.Context, cmd *cli.Command) error {
	services, err := r.open(ctx)
	if err != nil {
		return err
	}
	defer services.close()

	criteria := map[string]any{}
	if artist := cmd.String("artist"); artist != "" {
		criteria["artist"] = artist
	}
	if album := cmd.String("album"); album != "" {
		criteria["album"] = album
	}

	songs, err := services.store.List(ctx, criteria)
	if err != nil {
		return fmt.Errorf("failed to list songs: %w", err)
	}

	if cmd.Bool("json") {
		out := make([]songOutput, 0, len(songs))
		for _, song := range songs {
			out = append(out, songToOutput(song))
		}
		return r.writeJSON(out, cmd.Bool("pretty"))
	}

	for i, song := range songs {
		duration := shared.FormatDuration(song.DurationSeconds())
		r.writePlain("%d. %s - %s [%s] (%s)\n", i+1, song.Artist(), song.Title(), duration, song.ID())
	}
	return r.writePlain("\n%d songs\n", len(songs))
}

// CatalogDelete removes a song from the catalog.
func (r *Runner) CatalogDelete(ctx context.Context, cmd *cli.Command) error {
	services, err := r.open(ctx)
	if err != nil {
		return err
	}
	defer services.close()

	id := cmd.StringArg("id")
	if err := services.store.DeleteSong(ctx, id); err != nil {
		return fmt.Errorf("failed to delete song: %w", err)
	}
	return r.writePlain("✓ Deleted song %s\n", id)
}

// CatalogImport bulk-imports songs from a JSON manifest file.
func (r *Runner) CatalogImport(ctx context.Context, cmd *cli.Command) error {
	services, err := r.open(ctx)
	if err != nil {
		return err
	}
	defer services.close()

	opts := tasks.ImportOpts{
		NumWorkers: r.config.Import.NumWorkers,
		RateLimit:  r.config.Import.RateLimit,
	}
	if workers := cmd.Int("workers"); workers > 0 {
		opts.NumWorkers = int(workers)
	}

	prog := make(chan tasks.ProgressUpdate, 64)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range prog {
			r.writePlain("%s\n", update.Message)
		}
	}()

	result, err := services.importer.BulkImport(ctx, prog, cmd.StringArg("manifest"), opts)
	close(prog)
	<-done
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	r.writePlainln("Imported %d/%d songs (%d failed)", result.SuccessfulSongs, result.TotalSongs, result.FailedSongs)
	return nil
}

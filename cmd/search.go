package main

import (
	"context"
	"fmt"

	"github.com/harmonia-fm/harmonia/internal/shared"
	"github.com/urfave/cli/v3"
)

// Search queries the in-process index for songs by title or artist.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	services, err := r.open(ctx)
	if err != nil {
		return err
	}
	defer services.close()

	query := cmd.StringArg("query")
	limit := int(cmd.Int("limit"))

	songs := services.index.Search(query, limit)

	if cmd.Bool("json") {
		out := make([]songOutput, 0, len(songs))
		for _, song := range songs {
			out = append(out, songToOutput(song))
		}
		return r.writeJSON(out, cmd.Bool("pretty"))
	}

	if len(songs) == 0 {
		return r.writePlain("No results for %q\n", query)
	}
	for i, song := range songs {
		duration := shared.FormatDuration(song.DurationSeconds())
		r.writePlain("%d. %s - %s [%s] (%s)\n", i+1, song.Artist(), song.Title(), duration, song.ID())
	}
	return nil
}

// Reindex rebuilds the search index from the catalog.
func (r *Runner) Reindex(ctx context.Context, cmd *cli.Command) error {
	services, err := r.open(ctx)
	if err != nil {
		return err
	}
	defer services.close()

	if err := services.index.Rebuild(ctx, services.store); err != nil {
		return fmt.Errorf("failed to rebuild index: %w", err)
	}
	return r.writePlain("✓ Indexed %d songs\n", services.index.Len())
}

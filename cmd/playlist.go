package main

import (
	"context"
	"fmt"

	"github.com/harmonia-fm/harmonia/internal/formatter"
	"github.com/harmonia-fm/harmonia/internal/models"
	"github.com/harmonia-fm/harmonia/internal/shared"
	"github.com/urfave/cli/v3"
)

type playlistOutput struct {
	ID      string   `json:"id"`
	OwnerID string   `json:"owner_id"`
	Title   string   `json:"title"`
	SongIDs []string `json:"song_ids"`
}

func playlistToOutput(playlist *models.Playlist) playlistOutput {
	return playlistOutput{
		ID:      playlist.ID(),
		OwnerID: playlist.OwnerID(),
		Title:   playlist.Title(),
		SongIDs: playlist.SongIDs(),
	}
}

// PlaylistCreate creates a playlist owned by the given user.
func (r *Runner) PlaylistCreate(ctx context.Context, cmd *cli.Command) error {
	services, err := r.open(ctx)
	if err != nil {
		return err
	}
	defer services.close()

	playlist, err := services.engine.Create(ctx, cmd.String("user"), cmd.String("title"))
	if err != nil {
		return fmt.Errorf("failed to create playlist: %w", err)
	}
	return r.writePlain("✓ Created playlist %s (%s)\n", playlist.ID(), playlist.Title())
}

// PlaylistList prints all playlists owned by a user.
func (r *Runner) PlaylistList(ctx context.Context, cmd *cli.Command) error {
	services, err := r.open(ctx)
	if err != nil {
		return err
	}
	defer services.close()

	lists, err := services.engine.ListByOwner(ctx, cmd.String("user"))
	if err != nil {
		return fmt.Errorf("failed to list playlists: %w", err)
	}

	if cmd.Bool("json") {
		out := make([]playlistOutput, 0, len(lists))
		for _, playlist := range lists {
			out = append(out, playlistToOutput(playlist))
		}
		return r.writeJSON(out, cmd.Bool("pretty"))
	}

	for i, playlist := range lists {
		r.writePlain("%d. %s (%d songs, %s)\n", i+1, playlist.Title(), len(playlist.SongIDs()), playlist.ID())
	}
	return r.writePlain("\n%d playlists\n", len(lists))
}

// PlaylistShow prints a playlist with its entries resolved against the catalog.
func (r *Runner) PlaylistShow(ctx context.Context, cmd *cli.Command) error {
	services, err := r.open(ctx)
	if err != nil {
		return err
	}
	defer services.close()

	playlist, resolved, err := services.engine.Resolve(ctx, cmd.StringArg("id"))
	if err != nil {
		return fmt.Errorf("failed to resolve playlist: %w", err)
	}

	r.writePlain("Playlist: %s (%s)\n\n", playlist.Title(), playlist.ID())
	for i, entry := range resolved {
		if entry.Absent || entry.Song == nil {
			r.writePlain("%d. (song no longer available)\n", i+1)
			continue
		}
		duration := shared.FormatDuration(entry.Song.DurationSeconds())
		r.writePlain("%d. %s - %s [%s]\n", i+1, entry.Song.Artist(), entry.Song.Title(), duration)
	}
	return nil
}

// PlaylistAddSong appends or inserts a song into a playlist.
func (r *Runner) PlaylistAddSong(ctx context.Context, cmd *cli.Command) error {
	services, err := r.open(ctx)
	if err != nil {
		return err
	}
	defer services.close()

	playlist, err := services.engine.AddSong(ctx,
		cmd.StringArg("id"),
		cmd.String("user"),
		cmd.String("song"),
		int(cmd.Int("position")),
	)
	if err != nil {
		return fmt.Errorf("failed to add song: %w", err)
	}
	return r.writePlain("✓ Playlist %s now has %d songs\n", playlist.ID(), len(playlist.SongIDs()))
}

// PlaylistRemoveSong removes the entry at a position.
func (r *Runner) PlaylistRemoveSong(ctx context.Context, cmd *cli.Command) error {
	services, err := r.open(ctx)
	if err != nil {
		return err
	}
	defer services.close()

	playlist, err := services.engine.RemoveAt(ctx,
		cmd.StringArg("id"),
		cmd.String("user"),
		int(cmd.Int("position")),
	)
	if err != nil {
		return fmt.Errorf("failed to remove song: %w", err)
	}
	return r.writePlain("✓ Playlist %s now has %d songs\n", playlist.ID(), len(playlist.SongIDs()))
}

// PlaylistReorder moves an entry from one position to another.
func (r *Runner) PlaylistReorder(ctx context.Context, cmd *cli.Command) error {
	services, err := r.open(ctx)
	if err != nil {
		return err
	}
	defer services.close()

	playlist, err := services.engine.Reorder(ctx,
		cmd.StringArg("id"),
		cmd.String("user"),
		int(cmd.Int("from")),
		int(cmd.Int("to")),
	)
	if err != nil {
		return fmt.Errorf("failed to reorder playlist: %w", err)
	}
	return r.writePlain("✓ Reordered playlist %s\n", playlist.ID())
}

// PlaylistRename sets a new playlist title.
func (r *Runner) PlaylistRename(ctx context.Context, cmd *cli.Command) error {
	services, err := r.open(ctx)
	if err != nil {
		return err
	}
	defer services.close()

	playlist, err := services.engine.Rename(ctx, cmd.StringArg("id"), cmd.String("user"), cmd.String("title"))
	if err != nil {
		return fmt.Errorf("failed to rename playlist: %w", err)
	}
	return r.writePlain("✓ Renamed playlist %s to %s\n", playlist.ID(), playlist.Title())
}

// PlaylistDelete deletes a playlist.
func (r *Runner) PlaylistDelete(ctx context.Context, cmd *cli.Command) error {
	services, err := r.open(ctx)
	if err != nil {
		return err
	}
	defer services.close()

	id := cmd.StringArg("id")
	if err := services.engine.Delete(ctx, id, cmd.String("user")); err != nil {
		return fmt.Errorf("failed to delete playlist: %w", err)
	}
	return r.writePlain("✓ Deleted playlist %s\n", id)
}

// PlaylistExport writes a playlist to CSV, Markdown, or plain text files.
func (r *Runner) PlaylistExport(ctx context.Context, cmd *cli.Command) error {
	services, err := r.open(ctx)
	if err != nil {
		return err
	}
	defer services.close()

	playlist, resolved, err := services.engine.Resolve(ctx, cmd.StringArg("id"))
	if err != nil {
		return fmt.Errorf("failed to resolve playlist: %w", err)
	}

	export := &formatter.PlaylistExport{Playlist: playlist, Entries: resolved}
	output := cmd.String("output")

	switch format := cmd.String("format"); format {
	case "csv":
		result, err := formatter.WriteCSVExport(export, output)
		if err != nil {
			return fmt.Errorf("CSV export failed: %w", err)
		}
		return r.writePlain("✓ Exported %s and %s\n", result.SongsFile, result.MetadataFile)
	case "markdown":
		mdFile, err := formatter.WriteMarkdownExport(export, output)
		if err != nil {
			return fmt.Errorf("markdown export failed: %w", err)
		}
		return r.writePlain("✓ Exported %s\n", mdFile)
	case "txt":
		path, err := formatter.WriteTextExport(export, output)
		if err != nil {
			return fmt.Errorf("text export failed: %w", err)
		}
		return r.writePlain("✓ Exported %s\n", path)
	default:
		return fmt.Errorf("%w: unsupported export format %q", shared.ErrInvalidArgument, format)
	}
}

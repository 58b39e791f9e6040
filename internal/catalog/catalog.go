// Package catalog implements the authoritative song store.
//
// The store owns Song lifecycle and is the only component that writes the
// songs table. Every mutation notifies the search index through the
// configured [search.Notifier] before the call returns, so a caller that
// wires the index directly gets read-your-writes on its next search.
// Deleting a song never cascades into playlists; their references dangle
// and are resolved as absent at read time.
package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/harmonia-fm/harmonia/internal/models"
	"github.com/harmonia-fm/harmonia/internal/repositories"
	"github.com/harmonia-fm/harmonia/internal/search"
	"github.com/harmonia-fm/harmonia/internal/shared"
)

// Resolved is one entry of a batch lookup: either a song or an absent marker.
type Resolved struct {
	Song   *models.Song
	Absent bool
}

// Store is the catalog service over the song repository.
type Store struct {
	songs    *repositories.SongRepository
	notifier search.Notifier
	logger   *log.Logger
}

// NewStore creates a catalog store. The notifier receives every mutation;
// pass the search index itself for synchronous updates or a search.Updater
// for deferred ones.
func NewStore(songs *repositories.SongRepository, notifier search.Notifier, logger *log.Logger) *Store {
	return &Store{songs: songs, notifier: notifier, logger: logger}
}

// GetSong retrieves a song by id. A missing song is a normal outcome and is
// reported as shared.ErrNotFound, not logged as an anomaly.
func (s *Store) GetSong(ctx context.Context, id string) (*models.Song, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: empty song id", shared.ErrInvalidArgument)
	}
	return s.songs.Get(ctx, id)
}

// SongExists reports whether the song id refers to a live catalog entry.
func (s *Store) SongExists(ctx context.Context, id string) (bool, error) {
	if id == "" {
		return false, fmt.Errorf("%w: empty song id", shared.ErrInvalidArgument)
	}
	return s.songs.Exists(ctx, id)
}

// ListSongs resolves song ids in input order. Missing songs become absent
// markers rather than errors, so playlists with dangling references still
// resolve.
func (s *Store) ListSongs(ctx context.Context, ids []string) ([]Resolved, error) {
	songs, err := s.songs.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	resolved := make([]Resolved, len(songs))
	for i, song := range songs {
		resolved[i] = Resolved{Song: song, Absent: song == nil}
	}
	return resolved, nil
}

// List retrieves catalog songs matching the criteria. Also satisfies
// [search.Lister] for full index rebuilds.
func (s *Store) List(ctx context.Context, criteria map[string]any) ([]*models.Song, error) {
	return s.songs.List(ctx, criteria)
}

// CreateSong adds a song to the catalog and indexes it. The mutation is not
// complete until the notifier has accepted the update.
func (s *Store) CreateSong(ctx context.Context, title, artist, album string, durationSeconds int, audioRef string) (*models.Song, error) {
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("%w: song title is required", shared.ErrInvalidArgument)
	}
	if durationSeconds < 0 {
		return nil, fmt.Errorf("%w: negative duration", shared.ErrInvalidArgument)
	}
	if audioRef == "" {
		return nil, fmt.Errorf("%w: audio reference is required", shared.ErrInvalidArgument)
	}

	song := models.NewSong(0, title, artist, album, durationSeconds, audioRef)
	if err := s.songs.Create(ctx, song); err != nil {
		return nil, err
	}

	s.notifier.SongUpserted(song)
	if s.logger != nil {
		s.logger.Debug("song created", "id", song.ID(), "title", song.Title())
	}
	return song, nil
}

// UpdateSong applies administrative metadata edits and reindexes the song.
func (s *Store) UpdateSong(ctx context.Context, song *models.Song) error {
	if song.ID() == "" {
		return fmt.Errorf("%w: empty song id", shared.ErrInvalidArgument)
	}

	if err := s.songs.Update(ctx, song); err != nil {
		return err
	}

	s.notifier.SongUpserted(song)
	return nil
}

// DeleteSong removes a song from the catalog and the index. Playlist
// references to it are intentionally left dangling.
func (s *Store) DeleteSong(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: empty song id", shared.ErrInvalidArgument)
	}

	if err := s.songs.Delete(ctx, id); err != nil {
		return err
	}

	s.notifier.SongRemoved(id)
	if s.logger != nil {
		s.logger.Debug("song deleted", "id", id)
	}
	return nil
}

// Package playlists implements the playlist engine: ordered, owner-scoped
// song sequences with serialized mutations.
//
// Every mutating operation follows the same discipline: resolve the
// playlist, check ownership, validate positions, and only then write, so a
// failed call leaves the playlist exactly as it was. Mutations on the same
// playlist id are serialized through a striped mutex; the repository then
// commits each mutation in a single transaction, so no observer sees an
// intermediate state and concurrent position math never races.
package playlists

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/harmonia-fm/harmonia/internal/catalog"
	"github.com/harmonia-fm/harmonia/internal/identity"
	"github.com/harmonia-fm/harmonia/internal/models"
	"github.com/harmonia-fm/harmonia/internal/repositories"
	"github.com/harmonia-fm/harmonia/internal/shared"
)

// DefaultTitle is used when a playlist is created with an empty title.
const DefaultTitle = "Untitled Playlist"

// lockStripes is sized to keep collision odds low without a lock per id.
const lockStripes = 64

// Engine owns playlist lifecycle and ordering invariants.
type Engine struct {
	playlists *repositories.PlaylistRepository
	catalog   *catalog.Store
	logger    *log.Logger
	locks     [lockStripes]sync.Mutex
}

// NewEngine creates a playlist engine backed by the given repository and
// catalog store.
func NewEngine(playlists *repositories.PlaylistRepository, store *catalog.Store, logger *log.Logger) *Engine {
	return &Engine{playlists: playlists, catalog: store, logger: logger}
}

// lockFor returns the stripe serializing mutations for a playlist id.
func (e *Engine) lockFor(playlistID string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(playlistID))
	return &e.locks[h.Sum32()%lockStripes]
}

// Create makes an empty playlist for the owner. An empty title falls back
// to [DefaultTitle].
func (e *Engine) Create(ctx context.Context, ownerID, title string) (*models.Playlist, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner id is required", shared.ErrInvalidArgument)
	}
	if strings.TrimSpace(title) == "" {
		title = DefaultTitle
	}

	playlist := models.NewPlaylist(0, ownerID, title)
	if err := e.playlists.Create(ctx, playlist); err != nil {
		return nil, err
	}

	if e.logger != nil {
		e.logger.Debug("playlist created", "id", playlist.ID(), "owner", ownerID)
	}
	return playlist, nil
}

// Get retrieves a playlist by id. Reads are not ownership-checked.
func (e *Engine) Get(ctx context.Context, playlistID string) (*models.Playlist, error) {
	return e.playlists.Get(ctx, playlistID)
}

// ListByOwner retrieves all playlists owned by the user.
func (e *Engine) ListByOwner(ctx context.Context, ownerID string) ([]*models.Playlist, error) {
	return e.playlists.List(ctx, map[string]any{"owner_id": ownerID})
}

// Resolve fetches a playlist's songs in order, marking dangling references
// absent instead of failing.
func (e *Engine) Resolve(ctx context.Context, playlistID string) (*models.Playlist, []catalog.Resolved, error) {
	playlist, err := e.playlists.Get(ctx, playlistID)
	if err != nil {
		return nil, nil, err
	}

	resolved, err := e.catalog.ListSongs(ctx, playlist.SongIDs())
	if err != nil {
		return nil, nil, err
	}

	return playlist, resolved, nil
}

// loadOwned fetches a playlist and enforces the ownership rule. Every
// mutating path goes through this before touching any state.
func (e *Engine) loadOwned(ctx context.Context, playlistID, userID string) (*models.Playlist, error) {
	playlist, err := e.playlists.Get(ctx, playlistID)
	if err != nil {
		return nil, err
	}

	if !identity.AuthorizeOwnership(userID, playlist) {
		return nil, fmt.Errorf("%w: playlist %s is not owned by %s", shared.ErrPermissionDenied, playlistID, userID)
	}

	return playlist, nil
}

// AppendPosition asks AddSong to insert at the end of the playlist.
const AppendPosition = -1

// AddSong inserts a song reference at the given position; AppendPosition
// appends. The song must exist in the catalog at time of insertion.
func (e *Engine) AddSong(ctx context.Context, playlistID, userID, songID string, position int) (*models.Playlist, error) {
	if songID == "" {
		return nil, fmt.Errorf("%w: empty song id", shared.ErrInvalidArgument)
	}

	lock := e.lockFor(playlistID)
	lock.Lock()
	defer lock.Unlock()

	playlist, err := e.loadOwned(ctx, playlistID, userID)
	if err != nil {
		return nil, err
	}

	exists, err := e.catalog.SongExists(ctx, songID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", shared.ErrSongNotFound, songID)
	}

	songIDs := playlist.SongIDs()
	if position == AppendPosition {
		position = len(songIDs)
	}
	if position < 0 || position > len(songIDs) {
		return nil, fmt.Errorf("%w: insert position %d out of range [0,%d]", shared.ErrInvalidPosition, position, len(songIDs))
	}

	songIDs = append(songIDs[:position], append([]string{songID}, songIDs[position:]...)...)
	return e.commit(ctx, playlist, songIDs)
}

// RemoveAt deletes the reference at position, shifting later entries left.
// An out-of-range position is an error, never a silent no-op.
func (e *Engine) RemoveAt(ctx context.Context, playlistID, userID string, position int) (*models.Playlist, error) {
	lock := e.lockFor(playlistID)
	lock.Lock()
	defer lock.Unlock()

	playlist, err := e.loadOwned(ctx, playlistID, userID)
	if err != nil {
		return nil, err
	}

	songIDs := playlist.SongIDs()
	if position < 0 || position >= len(songIDs) {
		return nil, fmt.Errorf("%w: remove position %d out of range [0,%d)", shared.ErrInvalidPosition, position, len(songIDs))
	}

	songIDs = append(songIDs[:position], songIDs[position+1:]...)
	return e.commit(ctx, playlist, songIDs)
}

// Reorder moves the reference at fromPosition to toPosition, shifting the
// intervening range. Equal positions are a valid no-op that still bumps
// updated_at.
func (e *Engine) Reorder(ctx context.Context, playlistID, userID string, fromPosition, toPosition int) (*models.Playlist, error) {
	lock := e.lockFor(playlistID)
	lock.Lock()
	defer lock.Unlock()

	playlist, err := e.loadOwned(ctx, playlistID, userID)
	if err != nil {
		return nil, err
	}

	songIDs := playlist.SongIDs()
	for _, pos := range []int{fromPosition, toPosition} {
		if pos < 0 || pos >= len(songIDs) {
			return nil, fmt.Errorf("%w: reorder position %d out of range [0,%d)", shared.ErrInvalidPosition, pos, len(songIDs))
		}
	}

	moved := songIDs[fromPosition]
	songIDs = append(songIDs[:fromPosition], songIDs[fromPosition+1:]...)
	songIDs = append(songIDs[:toPosition], append([]string{moved}, songIDs[toPosition:]...)...)
	return e.commit(ctx, playlist, songIDs)
}

// Rename changes the playlist title.
func (e *Engine) Rename(ctx context.Context, playlistID, userID, title string) (*models.Playlist, error) {
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("%w: playlist title is required", shared.ErrInvalidArgument)
	}

	lock := e.lockFor(playlistID)
	lock.Lock()
	defer lock.Unlock()

	playlist, err := e.loadOwned(ctx, playlistID, userID)
	if err != nil {
		return nil, err
	}

	playlist.SetTitle(title)
	return e.commit(ctx, playlist, playlist.SongIDs())
}

// Delete removes the playlist entirely. Referenced songs are untouched.
func (e *Engine) Delete(ctx context.Context, playlistID, userID string) error {
	lock := e.lockFor(playlistID)
	lock.Lock()
	defer lock.Unlock()

	if _, err := e.loadOwned(ctx, playlistID, userID); err != nil {
		return err
	}

	if err := e.playlists.Delete(ctx, playlistID); err != nil {
		return err
	}

	if e.logger != nil {
		e.logger.Debug("playlist deleted", "id", playlistID)
	}
	return nil
}

// commit writes the mutated sequence and timestamp in one transaction.
func (e *Engine) commit(ctx context.Context, playlist *models.Playlist, songIDs []string) (*models.Playlist, error) {
	playlist.SetSongIDs(songIDs)
	playlist.SetUpdatedAt(time.Now())

	if err := e.playlists.Update(ctx, playlist); err != nil {
		return nil, err
	}

	return playlist, nil
}

package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/harmonia-fm/harmonia/internal/models"
	"github.com/harmonia-fm/harmonia/internal/shared"
)

// PlaylistRepository implements models.Repository[*models.Playlist].
//
// The ordered song references live in the playlist_songs junction table,
// keyed on (playlist_id, position). Update rewrites the junction rows and
// the playlist row in a single transaction, so a mutation is either fully
// visible or not at all.
type PlaylistRepository struct {
	db      *sql.DB
	timeout time.Duration
}

// NewPlaylistRepository creates a new PlaylistRepository with the given database connection
func NewPlaylistRepository(db *sql.DB, timeout time.Duration) *PlaylistRepository {
	return &PlaylistRepository{db: db, timeout: timeout}
}

// Create inserts a new playlist into the database with generated ID and sequence.
// The song sequence starts empty; use Update to write references.
func (r *PlaylistRepository) Create(ctx context.Context, playlist *models.Playlist) error {
	ctx, cancel := queryContext(ctx, r.timeout)
	defer cancel()

	sequence, err := NextSequence(ctx, r.db, "playlists")
	if err != nil {
		return wrapStoreErr("failed to generate sequence", err)
	}

	id := shared.GenerateID()
	playlist.SetID(id)

	if err := playlist.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO playlists (id, sequence, owner_id, title, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.ExecContext(ctx, query,
		id,
		sequence,
		playlist.OwnerID(),
		playlist.Title(),
		playlist.CreatedAt(),
		playlist.UpdatedAt(),
	)
	if err != nil {
		return wrapStoreErr("failed to insert playlist", err)
	}

	return nil
}

// Get retrieves a playlist by ID with its ordered song references,
// excluding soft-deleted playlists
func (r *PlaylistRepository) Get(ctx context.Context, id string) (*models.Playlist, error) {
	ctx, cancel := queryContext(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT id, sequence, owner_id, title, created_at, updated_at, deleted_at
		FROM playlists
		WHERE id = ? AND deleted_at IS NULL
	`

	playlist, err := r.scanOne(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, err
	}

	songIDs, err := r.loadSongIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	playlist.SetSongIDs(songIDs)

	return playlist, nil
}

// Update writes the playlist's title, timestamps, and entire song sequence
// in one transaction. The engine validates positions before calling this, so
// the junction rows always reflect a complete, gap-free sequence.
func (r *PlaylistRepository) Update(ctx context.Context, playlist *models.Playlist) error {
	if err := playlist.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	ctx, cancel := queryContext(ctx, r.timeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return wrapStoreErr("failed to begin transaction", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE playlists
		SET title = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := tx.ExecContext(ctx, query, playlist.Title(), playlist.UpdatedAt(), playlist.ID())
	if err != nil {
		return wrapStoreErr("failed to update playlist", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return wrapStoreErr("failed to get affected rows", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, playlist.ID())
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM playlist_songs WHERE playlist_id = ?", playlist.ID()); err != nil {
		return wrapStoreErr("failed to clear song references", err)
	}

	for position, songID := range playlist.SongIDs() {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO playlist_songs (playlist_id, position, song_id) VALUES (?, ?, ?)",
			playlist.ID(), position, songID,
		); err != nil {
			return wrapStoreErr("failed to insert song reference", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return wrapStoreErr("failed to commit playlist update", err)
	}

	return nil
}

// Delete soft-deletes a playlist by ID and purges its song references.
func (r *PlaylistRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := queryContext(ctx, r.timeout)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return wrapStoreErr("failed to begin transaction", err)
	}
	defer tx.Rollback()

	now := time.Now()

	result, err := tx.ExecContext(ctx, `
		UPDATE playlists
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`, now, id)
	if err != nil {
		return wrapStoreErr("failed to delete playlist", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return wrapStoreErr("failed to get affected rows", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, id)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM playlist_songs WHERE playlist_id = ?", id); err != nil {
		return wrapStoreErr("failed to purge song references", err)
	}

	if err := tx.Commit(); err != nil {
		return wrapStoreErr("failed to commit playlist deletion", err)
	}

	return nil
}

// List retrieves all playlists matching the given criteria, excluding soft-deleted playlists
func (r *PlaylistRepository) List(ctx context.Context, criteria map[string]any) ([]*models.Playlist, error) {
	ctx, cancel := queryContext(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT id, sequence, owner_id, title, created_at, updated_at, deleted_at
		FROM playlists
		WHERE deleted_at IS NULL
	`

	args := []any{}

	if ownerID, ok := criteria["owner_id"].(string); ok && ownerID != "" {
		query += " AND owner_id = ?"
		args = append(args, ownerID)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapStoreErr("failed to query playlists", err)
	}
	defer rows.Close()

	var playlists []*models.Playlist
	for rows.Next() {
		playlist, err := r.scanPlaylist(rows)
		if err != nil {
			return nil, wrapStoreErr("failed to scan playlist", err)
		}
		playlists = append(playlists, playlist)
	}

	if err := rows.Err(); err != nil {
		return nil, wrapStoreErr("row iteration error", err)
	}

	for _, playlist := range playlists {
		songIDs, err := r.loadSongIDs(ctx, playlist.ID())
		if err != nil {
			return nil, err
		}
		playlist.SetSongIDs(songIDs)
	}

	return playlists, nil
}

// loadSongIDs reads a playlist's ordered song references.
func (r *PlaylistRepository) loadSongIDs(ctx context.Context, playlistID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT song_id
		FROM playlist_songs
		WHERE playlist_id = ?
		ORDER BY position ASC
	`, playlistID)
	if err != nil {
		return nil, wrapStoreErr("failed to query song references", err)
	}
	defer rows.Close()

	songIDs := []string{}
	for rows.Next() {
		var songID string
		if err := rows.Scan(&songID); err != nil {
			return nil, wrapStoreErr("failed to scan song reference", err)
		}
		songIDs = append(songIDs, songID)
	}

	if err := rows.Err(); err != nil {
		return nil, wrapStoreErr("row iteration error", err)
	}

	return songIDs, nil
}

func (r *PlaylistRepository) scanPlaylist(s interface{ Scan(dest ...any) error }) (*models.Playlist, error) {
	var (
		id        string
		sequence  int
		ownerID   string
		title     string
		createdAt time.Time
		updatedAt time.Time
		deletedAt sql.NullTime
	)

	err := s.Scan(&id, &sequence, &ownerID, &title, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}

	playlist := models.NewPlaylist(sequence, ownerID, title)
	playlist.SetID(id)
	playlist.SetCreatedAt(createdAt)
	playlist.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		playlist.SetDeletedAt(&deletedAt.Time)
	}

	return playlist, nil
}

func (r *PlaylistRepository) scanOne(row *sql.Row) (*models.Playlist, error) {
	playlist, err := r.scanPlaylist(row)
	if err == sql.ErrNoRows {
		return nil, shared.ErrPlaylistNotFound
	}
	if err != nil {
		return nil, wrapStoreErr("failed to scan playlist", err)
	}
	return playlist, nil
}

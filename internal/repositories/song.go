package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/harmonia-fm/harmonia/internal/models"
	"github.com/harmonia-fm/harmonia/internal/shared"
)

// SongRepository implements models.Repository[*models.Song] for catalog persistence.
//
// Handles song CRUD with soft delete support and the order-preserving batch
// lookup the playlist engine uses to resolve song references.
type SongRepository struct {
	db      *sql.DB
	timeout time.Duration
}

// NewSongRepository creates a new SongRepository with the given database connection.
// A non-positive timeout falls back to the package default.
func NewSongRepository(db *sql.DB, timeout time.Duration) *SongRepository {
	return &SongRepository{db: db, timeout: timeout}
}

// Create inserts a new song into the database with generated ID and sequence
func (r *SongRepository) Create(ctx context.Context, song *models.Song) error {
	ctx, cancel := queryContext(ctx, r.timeout)
	defer cancel()

	sequence, err := NextSequence(ctx, r.db, "songs")
	if err != nil {
		return wrapStoreErr("failed to generate sequence", err)
	}

	id := shared.GenerateID()
	song.SetID(id)

	if err := song.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO songs (id, sequence, title, artist, album, duration_seconds, audio_ref, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.ExecContext(ctx, query,
		id,
		sequence,
		song.Title(),
		song.Artist(),
		song.Album(),
		song.DurationSeconds(),
		song.AudioRef(),
		song.CreatedAt(),
		song.UpdatedAt(),
	)
	if err != nil {
		return wrapStoreErr("failed to insert song", err)
	}

	return nil
}

// Get retrieves a song by ID, excluding soft-deleted songs
func (r *SongRepository) Get(ctx context.Context, id string) (*models.Song, error) {
	ctx, cancel := queryContext(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT id, sequence, title, artist, album, duration_seconds, audio_ref, created_at, updated_at, deleted_at
		FROM songs
		WHERE id = ? AND deleted_at IS NULL
	`

	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// Exists reports whether a non-deleted song with the given ID is present.
func (r *SongRepository) Exists(ctx context.Context, id string) (bool, error) {
	ctx, cancel := queryContext(ctx, r.timeout)
	defer cancel()

	var exists bool
	err := r.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM songs WHERE id = ? AND deleted_at IS NULL)", id,
	).Scan(&exists)
	if err != nil {
		return false, wrapStoreErr("failed to check song existence", err)
	}

	return exists, nil
}

// ListByIDs resolves a sequence of song IDs, preserving input order.
// Missing or deleted songs yield a nil entry at their position rather than
// an error, so a playlist with dangling references still resolves.
func (r *SongRepository) ListByIDs(ctx context.Context, ids []string) ([]*models.Song, error) {
	resolved := make([]*models.Song, len(ids))
	if len(ids) == 0 {
		return resolved, nil
	}

	ctx, cancel := queryContext(ctx, r.timeout)
	defer cancel()

	unique := make(map[string]struct{}, len(ids))
	args := make([]any, 0, len(ids))
	for _, id := range ids {
		if _, seen := unique[id]; seen {
			continue
		}
		unique[id] = struct{}{}
		args = append(args, id)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(args)), ", ")
	query := fmt.Sprintf(`
		SELECT id, sequence, title, artist, album, duration_seconds, audio_ref, created_at, updated_at, deleted_at
		FROM songs
		WHERE id IN (%s) AND deleted_at IS NULL
	`, placeholders)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapStoreErr("failed to query songs", err)
	}
	defer rows.Close()

	found := make(map[string]*models.Song, len(args))
	for rows.Next() {
		song, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		found[song.ID()] = song
	}

	if err := rows.Err(); err != nil {
		return nil, wrapStoreErr("row iteration error", err)
	}

	for i, id := range ids {
		resolved[i] = found[id]
	}

	return resolved, nil
}

// Update modifies an existing song's metadata in the database
func (r *SongRepository) Update(ctx context.Context, song *models.Song) error {
	if err := song.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	ctx, cancel := queryContext(ctx, r.timeout)
	defer cancel()

	now := time.Now()
	song.SetUpdatedAt(now)

	query := `
		UPDATE songs
		SET title = ?, artist = ?, album = ?, duration_seconds = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query,
		song.Title(),
		song.Artist(),
		song.Album(),
		song.DurationSeconds(),
		now,
		song.ID(),
	)
	if err != nil {
		return wrapStoreErr("failed to update song", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return wrapStoreErr("failed to get affected rows", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrSongNotFound, song.ID())
	}

	return nil
}

// Delete soft-deletes a song by ID. Playlist references to the song are left
// in place; readers resolve them as absent.
func (r *SongRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := queryContext(ctx, r.timeout)
	defer cancel()

	now := time.Now()

	query := `
		UPDATE songs
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.ExecContext(ctx, query, now, id)
	if err != nil {
		return wrapStoreErr("failed to delete song", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return wrapStoreErr("failed to get affected rows", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrSongNotFound, id)
	}

	return nil
}

// List retrieves all songs matching the given criteria, excluding soft-deleted songs
func (r *SongRepository) List(ctx context.Context, criteria map[string]any) ([]*models.Song, error) {
	ctx, cancel := queryContext(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT id, sequence, title, artist, album, duration_seconds, audio_ref, created_at, updated_at, deleted_at
		FROM songs
		WHERE deleted_at IS NULL
	`

	args := []any{}

	if artist, ok := criteria["artist"].(string); ok && artist != "" {
		query += " AND artist = ?"
		args = append(args, artist)
	}

	if album, ok := criteria["album"].(string); ok && album != "" {
		query += " AND album = ?"
		args = append(args, album)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapStoreErr("failed to query songs", err)
	}
	defer rows.Close()

	var songs []*models.Song
	for rows.Next() {
		song, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		songs = append(songs, song)
	}

	if err := rows.Err(); err != nil {
		return nil, wrapStoreErr("row iteration error", err)
	}

	return songs, nil
}

type songScanner interface {
	Scan(dest ...any) error
}

func (r *SongRepository) scanSong(s songScanner) (*models.Song, error) {
	var (
		id              string
		sequence        int
		title           string
		artist          string
		album           string
		durationSeconds int
		audioRef        string
		createdAt       time.Time
		updatedAt       time.Time
		deletedAt       sql.NullTime
	)

	err := s.Scan(&id, &sequence, &title, &artist, &album, &durationSeconds, &audioRef, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}

	song := models.NewSong(sequence, title, artist, album, durationSeconds, audioRef)
	song.SetID(id)
	song.SetCreatedAt(createdAt)
	song.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		song.SetDeletedAt(&deletedAt.Time)
	}

	return song, nil
}

// scanOne scans a single row into a [models.Song]
func (r *SongRepository) scanOne(row *sql.Row) (*models.Song, error) {
	song, err := r.scanSong(row)
	if err == sql.ErrNoRows {
		return nil, shared.ErrSongNotFound
	}
	if err != nil {
		return nil, wrapStoreErr("failed to scan song", err)
	}
	return song, nil
}

// scanRow scans a row from [sql.Rows] into a [models.Song]
func (r *SongRepository) scanRow(rows *sql.Rows) (*models.Song, error) {
	song, err := r.scanSong(rows)
	if err != nil {
		return nil, wrapStoreErr("failed to scan song", err)
	}
	return song, nil
}

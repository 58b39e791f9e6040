package tasks

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/harmonia-fm/harmonia/internal/models"
)

// SongImportResult represents the result of importing a single manifest entry.
type SongImportResult struct {
	Title   string       // Title from the manifest entry
	Song    *models.Song // Created song (nil if the insert failed)
	Success bool         // Whether the insert succeeded
	Error   error        // Error if the insert failed
}

// ImportRunResult contains all data from a full bulk import operation.
type ImportRunResult struct {
	TotalSongs      int                // Number of entries in the manifest
	SuccessfulSongs int                // Number of songs inserted
	FailedSongs     int                // Number of entries that failed
	Results         []SongImportResult // Individual import results, in completion order
}

// SongCreator defines the catalog operations the import engine depends on.
// This abstraction allows for easier testing and decoupling from concrete implementation.
type SongCreator interface {
	CreateSong(ctx context.Context, title, artist, album string, durationSeconds int, audioRef string) (*models.Song, error)
}

// IndexFlusher drains pending search index updates after a bulk operation.
type IndexFlusher interface {
	Flush()
}

// ImportEngine orchestrates bulk song imports into the catalog.
// Contains dependencies on the catalog store and the deferred index updater.
type ImportEngine struct {
	catalog SongCreator
	flusher IndexFlusher
	logger  *log.Logger
}

// NewImportEngine creates a new ImportEngine with the provided catalog store.
// flusher may be nil when index updates are applied synchronously.
func NewImportEngine(catalog SongCreator, flusher IndexFlusher, logger *log.Logger) *ImportEngine {
	return &ImportEngine{
		catalog: catalog,
		flusher: flusher,
		logger:  logger,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *ImportEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"golang.org/x/time/rate"
)

// ImportOpts contains configuration for bulk song imports.
type ImportOpts struct {
	NumWorkers int     // Concurrent workers (default: 5)
	RateLimit  float64 // Inserts per second (default: 5)
}

// SongManifestEntry is a single song in an import manifest file.
type SongManifestEntry struct {
	Title           string `json:"title"`
	Artist          string `json:"artist"`
	Album           string `json:"album,omitempty"`
	DurationSeconds int    `json:"duration_seconds"`
	AudioRef        string `json:"audio_ref"`
}

type songImportJob struct {
	step  int
	entry SongManifestEntry
}

// ReadManifest parses a JSON song manifest from disk.
func ReadManifest(path string) ([]SongManifestEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var entries []SongManifestEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	return entries, nil
}

// BulkImport inserts multiple songs concurrently with rate limiting and progress tracking.
//
// This method implements a worker pool pattern to efficiently insert manifest entries.
// It handles partial failures gracefully and drains the deferred index updater before returning,
// so the search index reflects every imported song once the call completes.
func (e *ImportEngine) BulkImport(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	path string,
	opts ImportOpts,
) (*ImportRunResult, error) {
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 5
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	e.sendProgress(prog, readManifestUpdate(path))
	entries, err := ReadManifest(path)
	if err != nil {
		return nil, err
	}
	e.sendProgress(prog, manifestLoadedUpdate(len(entries)))

	result := &ImportRunResult{
		TotalSongs: len(entries),
		Results:    make([]SongImportResult, 0, len(entries)),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan songImportJob, len(entries))
	results := make(chan SongImportResult, len(entries))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.importWorker(ctx, &wg, jobs, results, limiter)
	}

	go func() {
		for i, entry := range entries {
			select {
			case <-ctx.Done():
				close(jobs)
				return
			default:
			}

			jobs <- songImportJob{step: i + 1, entry: entry}
			e.sendProgress(prog, importingSongUpdate(i+1, len(entries), entry.Title))
		}
		close(jobs)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)

		if res.Success {
			result.SuccessfulSongs++
			e.sendProgress(prog, importCompletedUpdate(completed, len(entries), res.Song))
		} else {
			result.FailedSongs++
			e.sendProgress(prog, importFailedUpdate(completed, len(entries), res.Title, res.Error))
		}
	}

	if e.flusher != nil {
		e.sendProgress(prog, flushIndexUpdate())
		e.flusher.Flush()
	}
	return result, nil
}

// importWorker is a worker goroutine that inserts songs from the jobs channel.
func (e *ImportEngine) importWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan songImportJob,
	results chan<- SongImportResult,
	limiter *rate.Limiter,
) {
	defer wg.Done()

	for job := range jobs {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := limiter.Wait(ctx); err != nil {
			results <- SongImportResult{
				Title: job.entry.Title,
				Error: err,
			}
			continue
		}

		results <- e.importSingleSong(ctx, job.entry)
	}
}

// importSingleSong inserts one manifest entry through the catalog store.
func (e *ImportEngine) importSingleSong(ctx context.Context, entry SongManifestEntry) SongImportResult {
	result := SongImportResult{Title: entry.Title}

	song, err := e.catalog.CreateSong(ctx, entry.Title, entry.Artist, entry.Album, entry.DurationSeconds, entry.AudioRef)
	if err != nil {
		result.Error = fmt.Errorf("failed to insert song: %w", err)
		return result
	}

	result.Song = song
	result.Success = true
	return result
}

package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/harmonia-fm/harmonia/internal/models"
)

type stubCreator struct {
	mu      sync.Mutex
	created []string
	fail    map[string]error
}

func (s *stubCreator) CreateSong(ctx context.Context, title, artist, album string, durationSeconds int, audioRef string) (*models.Song, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.fail[title]; ok {
		return nil, err
	}
	s.created = append(s.created, title)
	return models.NewSong(len(s.created), title, artist, album, durationSeconds, audioRef), nil
}

type stubFlusher struct {
	flushed bool
}

func (f *stubFlusher) Flush() {
	f.flushed = true
}

func writeManifest(t *testing.T, entries []SongManifestEntry) string {
	t.Helper()
	data, err := json.Marshal(entries)
	if err != nil {
		t.Fatalf("failed to marshal manifest: %v", err)
	}
	path := filepath.Join(t.TempDir(), "manifest.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write manifest: %v", err)
	}
	return path
}

func TestReadManifest(t *testing.T) {
	t.Run("parses valid manifest", func(t *testing.T) {
		path := writeManifest(t, []SongManifestEntry{
			{Title: "Aisle", Artist: "Hovvdy", Album: "True Love", DurationSeconds: 150, AudioRef: "s3://audio/aisle.flac"},
			{Title: "Junior Day League", Artist: "Hovvdy", DurationSeconds: 203, AudioRef: "s3://audio/jdl.flac"},
		})

		entries, err := ReadManifest(path)
		if err != nil {
			t.Fatalf("ReadManifest failed: %v", err)
		}
		if len(entries) != 2 {
			t.Fatalf("expected 2 entries, got %d", len(entries))
		}
		if entries[0].Title != "Aisle" || entries[1].DurationSeconds != 203 {
			t.Errorf("unexpected entries: %+v", entries)
		}
	})

	t.Run("returns error for missing file", func(t *testing.T) {
		if _, err := ReadManifest(filepath.Join(t.TempDir(), "nope.json")); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("returns error for malformed JSON", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.json")
		if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
			t.Fatalf("failed to write file: %v", err)
		}
		if _, err := ReadManifest(path); err == nil {
			t.Error("expected error for malformed JSON")
		}
	})
}

func TestBulkImport(t *testing.T) {
	ctx := context.Background()

	t.Run("imports all manifest entries", func(t *testing.T) {
		creator := &stubCreator{}
		flusher := &stubFlusher{}
		engine := NewImportEngine(creator, flusher, nil)

		path := writeManifest(t, []SongManifestEntry{
			{Title: "One", Artist: "A", DurationSeconds: 100, AudioRef: "file://one"},
			{Title: "Two", Artist: "B", DurationSeconds: 200, AudioRef: "file://two"},
			{Title: "Three", Artist: "C", DurationSeconds: 300, AudioRef: "file://three"},
		})

		result, err := engine.BulkImport(ctx, nil, path, ImportOpts{NumWorkers: 2, RateLimit: 1000})
		if err != nil {
			t.Fatalf("BulkImport failed: %v", err)
		}

		if result.TotalSongs != 3 {
			t.Errorf("expected 3 total songs, got %d", result.TotalSongs)
		}
		if result.SuccessfulSongs != 3 {
			t.Errorf("expected 3 successful songs, got %d", result.SuccessfulSongs)
		}
		if result.FailedSongs != 0 {
			t.Errorf("expected 0 failed songs, got %d", result.FailedSongs)
		}
		if len(creator.created) != 3 {
			t.Errorf("expected 3 created songs, got %d", len(creator.created))
		}
		if !flusher.flushed {
			t.Error("expected index flush after import")
		}
	})

	t.Run("records partial failures", func(t *testing.T) {
		insertErr := errors.New("duration must be positive")
		creator := &stubCreator{fail: map[string]error{"Broken": insertErr}}
		engine := NewImportEngine(creator, nil, nil)

		path := writeManifest(t, []SongManifestEntry{
			{Title: "Fine", Artist: "A", DurationSeconds: 100, AudioRef: "file://fine"},
			{Title: "Broken", Artist: "B", DurationSeconds: -1, AudioRef: "file://broken"},
		})

		result, err := engine.BulkImport(ctx, nil, path, ImportOpts{NumWorkers: 1, RateLimit: 1000})
		if err != nil {
			t.Fatalf("BulkImport failed: %v", err)
		}

		if result.SuccessfulSongs != 1 || result.FailedSongs != 1 {
			t.Errorf("expected 1 success and 1 failure, got %d/%d", result.SuccessfulSongs, result.FailedSongs)
		}
		for _, res := range result.Results {
			if res.Title == "Broken" {
				if res.Success {
					t.Error("expected Broken entry to fail")
				}
				if !errors.Is(res.Error, insertErr) {
					t.Errorf("expected wrapped insert error, got %v", res.Error)
				}
			}
		}
	})

	t.Run("returns error for missing manifest", func(t *testing.T) {
		engine := NewImportEngine(&stubCreator{}, nil, nil)
		if _, err := engine.BulkImport(ctx, nil, filepath.Join(t.TempDir(), "nope.json"), ImportOpts{}); err == nil {
			t.Error("expected error for missing manifest")
		}
	})

	t.Run("emits progress updates", func(t *testing.T) {
		creator := &stubCreator{}
		engine := NewImportEngine(creator, &stubFlusher{}, nil)

		path := writeManifest(t, []SongManifestEntry{
			{Title: "One", Artist: "A", DurationSeconds: 100, AudioRef: "file://one"},
		})

		prog := make(chan ProgressUpdate, 32)
		if _, err := engine.BulkImport(ctx, prog, path, ImportOpts{NumWorkers: 1, RateLimit: 1000}); err != nil {
			t.Fatalf("BulkImport failed: %v", err)
		}
		close(prog)

		phases := map[Phase]bool{}
		for update := range prog {
			phases[update.Phase] = true
		}
		for _, want := range []Phase{PhaseReadManifest, ImportSongs, FlushIndex} {
			if !phases[want] {
				t.Errorf("expected a progress update in phase %s", want)
			}
		}
	})

	t.Run("cancelled context stops the import", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		creator := &stubCreator{}
		engine := NewImportEngine(creator, nil, nil)

		path := writeManifest(t, []SongManifestEntry{
			{Title: "One", Artist: "A", DurationSeconds: 100, AudioRef: "file://one"},
			{Title: "Two", Artist: "B", DurationSeconds: 200, AudioRef: "file://two"},
		})

		result, err := engine.BulkImport(cancelled, nil, path, ImportOpts{NumWorkers: 1, RateLimit: 1000})
		if err != nil {
			t.Fatalf("BulkImport failed: %v", err)
		}
		if result.SuccessfulSongs != 0 {
			t.Errorf("expected no successful inserts after cancellation, got %d", result.SuccessfulSongs)
		}
	})
}

func TestPhaseString(t *testing.T) {
	cases := []struct {
		phase Phase
		want  string
	}{
		{PhaseReadManifest, "read_manifest"},
		{ImportSongs, "import_songs"},
		{FlushIndex, "flush_index"},
		{Phase(99), ""},
	}
	for _, tc := range cases {
		if got := tc.phase.String(); got != tc.want {
			t.Errorf("Phase(%d).String() = %q, want %q", tc.phase, got, tc.want)
		}
	}
}

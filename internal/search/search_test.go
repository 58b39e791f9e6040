package search

import (
	"context"
	"testing"
	"time"

	"github.com/harmonia-fm/harmonia/internal/models"
)

func testSong(id, title, artist, album string, createdAt time.Time) *models.Song {
	song := models.NewSong(0, title, artist, album, 200, "audio://"+id)
	song.SetID(id)
	song.SetCreatedAt(createdAt)
	return song
}

func TestNormalize(t *testing.T) {
	tc := []struct {
		name string
		in   string
		want string
	}{
		{name: "case folding", in: "Bohemian Rhapsody", want: "bohemian rhapsody"},
		{name: "punctuation stripped", in: "Don't Stop Me Now!", want: "don t stop me now"},
		{name: "collapsed whitespace", in: "  a   b  ", want: "a b"},
		{name: "only punctuation", in: "?!...", want: ""},
		{name: "digits kept", in: "Track 42", want: "track 42"},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTokenize(t *testing.T) {
	tokens := Tokenize("Don't Stop Me Now")
	want := []string{"don", "t", "stop", "me", "now"}
	if len(tokens) != len(want) {
		t.Fatalf("expected %d tokens, got %d", len(want), len(tokens))
	}
	for i := range want {
		if tokens[i] != want[i] {
			t.Errorf("token %d: expected %s, got %s", i, want[i], tokens[i])
		}
	}

	if got := Tokenize("   "); got != nil {
		t.Errorf("whitespace-only input should yield no tokens, got %v", got)
	}
}

func TestIndexSearch(t *testing.T) {
	now := time.Now()

	t.Run("Empty Query Returns Empty", func(t *testing.T) {
		idx := NewIndex()
		idx.Reindex(testSong("s1", "Anything", "Someone", "", now))

		for _, q := range []string{"", "   ", "\t"} {
			if got := idx.Search(q, 10); len(got) != 0 {
				t.Errorf("Search(%q) should be empty, got %d results", q, len(got))
			}
		}
	})

	t.Run("Exact Title Ranks First", func(t *testing.T) {
		idx := NewIndex()
		idx.Reindex(testSong("s1", "Stop", "Band A", "", now.Add(-time.Hour)))
		idx.Reindex(testSong("s2", "Stop The Rain", "Band B", "", now))

		results := idx.Search("Stop", 10)
		if len(results) != 2 {
			t.Fatalf("expected 2 results, got %d", len(results))
		}
		if results[0].ID() != "s1" {
			t.Errorf("exact title should rank first, got %s", results[0].ID())
		}
	})

	t.Run("Prefix Hit Count Breaks Ties", func(t *testing.T) {
		idx := NewIndex()
		idx.Reindex(testSong("s1", "Blue Monday", "New Order", "", now))
		idx.Reindex(testSong("s2", "Blue", "Joni Mitchell", "Blue Monday Sessions", now))

		// Both match "blue"; s2 also matches "mond" via its album tokens,
		// but so does s1 via its title, so add a query hitting only one.
		results := idx.Search("blue sessions", 10)
		if len(results) == 0 {
			t.Fatal("expected results")
		}
		if results[0].ID() != "s2" {
			t.Errorf("song matching more query tokens should rank first, got %s", results[0].ID())
		}
	})

	t.Run("Recency Breaks Remaining Ties", func(t *testing.T) {
		idx := NewIndex()
		idx.Reindex(testSong("old", "Echoes One", "A", "", now.Add(-time.Hour)))
		idx.Reindex(testSong("new", "Echoes Two", "B", "", now))

		results := idx.Search("echoes", 10)
		if len(results) != 2 {
			t.Fatalf("expected 2 results, got %d", len(results))
		}
		if results[0].ID() != "new" {
			t.Errorf("most recent song should rank first, got %s", results[0].ID())
		}
	})

	t.Run("Limit Respected", func(t *testing.T) {
		idx := NewIndex()
		for _, id := range []string{"a", "b", "c"} {
			idx.Reindex(testSong(id, "Common Word "+id, "X", "", now))
		}

		if got := idx.Search("common", 2); len(got) != 2 {
			t.Errorf("expected limit of 2 results, got %d", len(got))
		}
	})

	t.Run("Artist And Album Searchable", func(t *testing.T) {
		idx := NewIndex()
		idx.Reindex(testSong("s1", "Track", "Radiohead", "OK Computer", now))

		if got := idx.Search("radiohead", 5); len(got) != 1 {
			t.Errorf("artist token should match, got %d results", len(got))
		}
		if got := idx.Search("computer", 5); len(got) != 1 {
			t.Errorf("album token should match, got %d results", len(got))
		}
	})
}

func TestIndexReindexIdempotent(t *testing.T) {
	idx := NewIndex()
	song := testSong("s1", "Same Song", "Same Artist", "Same Album", time.Now())

	idx.Reindex(song)
	firstLen := idx.Len()
	firstTokens := len(idx.tokens)

	idx.Reindex(song)
	if idx.Len() != firstLen {
		t.Errorf("document count changed on reindex: %d -> %d", firstLen, idx.Len())
	}
	if len(idx.tokens) != firstTokens {
		t.Errorf("token count changed on reindex: %d -> %d", firstTokens, len(idx.tokens))
	}

	results := idx.Search("same song", 10)
	if len(results) != 1 {
		t.Errorf("expected single result after reindex, got %d", len(results))
	}
}

func TestIndexRemove(t *testing.T) {
	idx := NewIndex()
	idx.Reindex(testSong("s1", "Gone Soon", "A", "", time.Now()))
	idx.Reindex(testSong("s2", "Gone Tomorrow", "B", "", time.Now()))

	idx.Remove("s1")

	if idx.Len() != 1 {
		t.Errorf("expected 1 document after removal, got %d", idx.Len())
	}

	results := idx.Search("gone", 10)
	if len(results) != 1 || results[0].ID() != "s2" {
		t.Errorf("removed song should not appear in results")
	}

	// Removing an unknown id is a no-op
	idx.Remove("never-indexed")
	if idx.Len() != 1 {
		t.Errorf("removing unknown id should not change the index")
	}
}

type staticLister struct {
	songs []*models.Song
}

func (s *staticLister) List(ctx context.Context, criteria map[string]any) ([]*models.Song, error) {
	return s.songs, nil
}

func TestIndexRebuild(t *testing.T) {
	now := time.Now()
	idx := NewIndex()
	idx.Reindex(testSong("stale", "Stale Entry", "X", "", now))

	store := &staticLister{songs: []*models.Song{
		testSong("s1", "Fresh One", "A", "", now),
		testSong("s2", "Fresh Two", "B", "", now),
	}}

	if err := idx.Rebuild(context.Background(), store); err != nil {
		t.Fatalf("rebuild failed: %v", err)
	}

	if idx.Len() != 2 {
		t.Errorf("expected 2 documents after rebuild, got %d", idx.Len())
	}

	if got := idx.Search("stale", 5); len(got) != 0 {
		t.Errorf("stale entry should be gone after rebuild, got %d results", len(got))
	}

	if got := idx.Search("fresh", 5); len(got) != 2 {
		t.Errorf("expected rebuilt entries to be searchable, got %d results", len(got))
	}
}

func TestUpdater(t *testing.T) {
	t.Run("Applies Queued Events", func(t *testing.T) {
		idx := NewIndex()
		updater := NewUpdater(idx, 8, time.Second, nil)
		defer updater.Close()

		song := testSong("s1", "Queued Song", "A", "", time.Now())
		updater.SongUpserted(song)
		updater.Flush()

		if got := idx.Search("queued", 5); len(got) != 1 {
			t.Errorf("expected queued upsert to be applied, got %d results", len(got))
		}

		updater.SongRemoved("s1")
		updater.Flush()

		if got := idx.Search("queued", 5); len(got) != 0 {
			t.Errorf("expected queued removal to be applied, got %d results", len(got))
		}
	})

	t.Run("Burst Past Queue Capacity", func(t *testing.T) {
		idx := NewIndex()
		updater := NewUpdater(idx, 1, time.Second, nil)
		defer updater.Close()

		for i := 0; i < 50; i++ {
			updater.SongUpserted(testSong(string(rune('a'+i%26))+"-id", "Burst Song", "A", "", time.Now()))
		}
		updater.Flush()

		if got := idx.Search("burst", 50); len(got) == 0 {
			t.Error("expected burst upserts to be applied")
		}
	})

	t.Run("Same Song Events Stay Ordered Under Burst", func(t *testing.T) {
		idx := NewIndex()
		updater := NewUpdater(idx, 1, time.Second, nil)
		defer updater.Close()

		// A full queue must not let a removal overtake the upsert before
		// it, which would resurrect a deleted song.
		song := testSong("s1", "Fleeting Song", "A", "", time.Now())
		for i := 0; i < 100; i++ {
			updater.SongUpserted(song)
			updater.SongRemoved("s1")
		}
		updater.Flush()

		if got := idx.Search("fleeting", 5); len(got) != 0 {
			t.Errorf("expected the final removal to win, got %d results", len(got))
		}
	})

	t.Run("Close Drains", func(t *testing.T) {
		idx := NewIndex()
		updater := NewUpdater(idx, 8, time.Second, nil)

		updater.SongUpserted(testSong("s1", "Final Song", "A", "", time.Now()))
		updater.Close()

		if got := idx.Search("final", 5); len(got) != 1 {
			t.Errorf("expected event to be applied before close returned, got %d results", len(got))
		}
	})
}

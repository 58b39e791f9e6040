package search

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/harmonia-fm/harmonia/internal/models"
)

// Notifier receives catalog mutations that must be reflected in the index.
type Notifier interface {
	SongUpserted(song *models.Song) // SongUpserted replaces the song's index entries
	SongRemoved(songID string)      // SongRemoved drops all entries pointing at the id
}

// Lister is the slice of the catalog store the index needs for a full rebuild.
type Lister interface {
	List(ctx context.Context, criteria map[string]any) ([]*models.Song, error)
}

// document is the per-song index entry: a snapshot of the song for result
// assembly plus the normalized text used for ranking.
type document struct {
	song   *models.Song
	title  string // normalized title, for exact-match ranking
	tokens []string
}

// Index is an in-process inverted index over the catalog.
//
// All entries derive from songs; Rebuild restores the full state from the
// catalog store. A single RWMutex guards the maps: searches take the read
// lock, reindex/remove take the write lock, so readers never block each
// other and writers see a consistent snapshot.
type Index struct {
	mu     sync.RWMutex
	tokens map[string]map[string]struct{}
	docs   map[string]document
}

// NewIndex creates an empty search index.
func NewIndex() *Index {
	return &Index{
		tokens: make(map[string]map[string]struct{}),
		docs:   make(map[string]document),
	}
}

// Reindex replaces the song's index entries with entries derived from its
// current metadata. Reindexing an unchanged song is a no-op on index state.
func (idx *Index) Reindex(song *models.Song) {
	blob := strings.Join([]string{song.Title(), song.Artist(), song.Album()}, " ")
	doc := document{
		song:   song,
		title:  Normalize(song.Title()),
		tokens: Tokenize(blob),
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.removeLocked(song.ID())
	idx.docs[song.ID()] = doc
	for _, token := range doc.tokens {
		ids, ok := idx.tokens[token]
		if !ok {
			ids = make(map[string]struct{})
			idx.tokens[token] = ids
		}
		ids[song.ID()] = struct{}{}
	}
}

// Remove deletes all index entries pointing to the song id.
func (idx *Index) Remove(songID string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.removeLocked(songID)
}

// removeLocked drops a song's postings. Caller holds the write lock.
func (idx *Index) removeLocked(songID string) {
	doc, ok := idx.docs[songID]
	if !ok {
		return
	}

	for _, token := range doc.tokens {
		if ids, ok := idx.tokens[token]; ok {
			delete(ids, songID)
			if len(ids) == 0 {
				delete(idx.tokens, token)
			}
		}
	}
	delete(idx.docs, songID)
}

// Len returns the number of indexed songs.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.docs)
}

// Rebuild discards the index and repopulates it from the catalog store.
func (idx *Index) Rebuild(ctx context.Context, store Lister) error {
	songs, err := store.List(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to list catalog for rebuild: %w", err)
	}

	idx.mu.Lock()
	idx.tokens = make(map[string]map[string]struct{})
	idx.docs = make(map[string]document)
	idx.mu.Unlock()

	for _, song := range songs {
		idx.Reindex(song)
	}

	return nil
}

// SongUpserted implements [Notifier] synchronously.
func (idx *Index) SongUpserted(song *models.Song) { idx.Reindex(song) }

// SongRemoved implements [Notifier] synchronously.
func (idx *Index) SongRemoved(songID string) { idx.Remove(songID) }

// scored pairs a candidate with its ranking signals.
type scored struct {
	song       *models.Song
	exactTitle bool
	prefixHits int
	createdAt  time.Time
}

// Search returns up to limit songs ranked by exact title match, then
// prefix-token hit count, then recency. An empty or whitespace-only query
// returns an empty slice, not the whole catalog.
func (idx *Index) Search(query string, limit int) []*models.Song {
	queryTokens := Tokenize(query)
	if len(queryTokens) == 0 || limit <= 0 {
		return []*models.Song{}
	}
	normalizedQuery := Normalize(query)

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	// Gather candidates: any song with at least one prefix-matching token.
	candidates := make(map[string]int)
	for _, qt := range queryTokens {
		matched := make(map[string]struct{})
		for token, ids := range idx.tokens {
			if !strings.HasPrefix(token, qt) {
				continue
			}
			for id := range ids {
				matched[id] = struct{}{}
			}
		}
		for id := range matched {
			candidates[id]++
		}
	}

	results := make([]scored, 0, len(candidates))
	for id, hits := range candidates {
		doc := idx.docs[id]
		results = append(results, scored{
			song:       doc.song,
			exactTitle: doc.title == normalizedQuery,
			prefixHits: hits,
			createdAt:  doc.song.CreatedAt(),
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].exactTitle != results[j].exactTitle {
			return results[i].exactTitle
		}
		if results[i].prefixHits != results[j].prefixHits {
			return results[i].prefixHits > results[j].prefixHits
		}
		return results[i].createdAt.After(results[j].createdAt)
	})

	if len(results) > limit {
		results = results[:limit]
	}

	songs := make([]*models.Song, len(results))
	for i, r := range results {
		songs[i] = r.song
	}
	return songs
}

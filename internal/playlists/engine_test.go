package playlists

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/harmonia-fm/harmonia/internal/catalog"
	"github.com/harmonia-fm/harmonia/internal/models"
	"github.com/harmonia-fm/harmonia/internal/repositories"
	"github.com/harmonia-fm/harmonia/internal/search"
	"github.com/harmonia-fm/harmonia/internal/shared"
	th "github.com/harmonia-fm/harmonia/internal/testing"
)

type fixture struct {
	engine *Engine
	store  *catalog.Store
	db     *sql.DB
	owner  *models.User
	other  *models.User
}

func setupEngine(t *testing.T) *fixture {
	t.Helper()

	db := th.NewTestDB(t)

	ctx := context.Background()
	users := repositories.NewUserRepository(db, 0)
	owner := models.NewUser(0, "owner@example.com", "Owner", "hash")
	other := models.NewUser(0, "other@example.com", "Other", "hash")
	for _, u := range []*models.User{owner, other} {
		if err := users.Create(ctx, u); err != nil {
			t.Fatalf("failed to create user: %v", err)
		}
	}

	store := catalog.NewStore(repositories.NewSongRepository(db, 0), search.NewIndex(), nil)
	engine := NewEngine(repositories.NewPlaylistRepository(db, 0), store, nil)

	return &fixture{engine: engine, store: store, db: db, owner: owner, other: other}
}

func (f *fixture) seedSong(t *testing.T, title string) *models.Song {
	t.Helper()
	song, err := f.store.CreateSong(context.Background(), title, "Artist", "Album", 180, "audio://"+title)
	if err != nil {
		t.Fatalf("failed to seed song: %v", err)
	}
	return song
}

func (f *fixture) seedPlaylist(t *testing.T, title string) *models.Playlist {
	t.Helper()
	playlist, err := f.engine.Create(context.Background(), f.owner.ID(), title)
	if err != nil {
		t.Fatalf("failed to seed playlist: %v", err)
	}
	return playlist
}

func assertSongIDs(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d songs, got %d (%v)", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("Empty Title Gets Placeholder", func(t *testing.T) {
		f := setupEngine(t)

		playlist, err := f.engine.Create(ctx, f.owner.ID(), "  ")
		if err != nil {
			t.Fatalf("failed to create playlist: %v", err)
		}
		if playlist.Title() != DefaultTitle {
			t.Errorf("expected placeholder title, got %s", playlist.Title())
		}
		if len(playlist.SongIDs()) != 0 {
			t.Error("new playlist should start empty")
		}
	})

	t.Run("Missing Owner Rejected", func(t *testing.T) {
		f := setupEngine(t)

		if _, err := f.engine.Create(ctx, "", "Title"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestAddSong(t *testing.T) {
	ctx := context.Background()

	t.Run("Append And Ordered Insert", func(t *testing.T) {
		f := setupEngine(t)
		playlist := f.seedPlaylist(t, "Mix")
		s1 := f.seedSong(t, "s1")
		s2 := f.seedSong(t, "s2")
		s3 := f.seedSong(t, "s3")

		for _, s := range []*models.Song{s1, s2} {
			if _, err := f.engine.AddSong(ctx, playlist.ID(), f.owner.ID(), s.ID(), -1); err != nil {
				t.Fatalf("failed to add song: %v", err)
			}
		}

		// Insert at the front shifts the rest right
		updated, err := f.engine.AddSong(ctx, playlist.ID(), f.owner.ID(), s3.ID(), 0)
		if err != nil {
			t.Fatalf("failed to insert song: %v", err)
		}
		assertSongIDs(t, updated.SongIDs(), []string{s3.ID(), s1.ID(), s2.ID()})
	})

	t.Run("Unknown Song Rejected Without Mutation", func(t *testing.T) {
		f := setupEngine(t)
		playlist := f.seedPlaylist(t, "Mix")
		s1 := f.seedSong(t, "s1")

		if _, err := f.engine.AddSong(ctx, playlist.ID(), f.owner.ID(), s1.ID(), -1); err != nil {
			t.Fatalf("failed to add song: %v", err)
		}

		_, err := f.engine.AddSong(ctx, playlist.ID(), f.owner.ID(), "nonexistent-song", -1)
		if !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}

		current, err := f.engine.Get(ctx, playlist.ID())
		if err != nil {
			t.Fatalf("failed to get playlist: %v", err)
		}
		assertSongIDs(t, current.SongIDs(), []string{s1.ID()})
	})

	t.Run("Position Bounds", func(t *testing.T) {
		f := setupEngine(t)
		playlist := f.seedPlaylist(t, "Mix")
		s1 := f.seedSong(t, "s1")

		// Inserting at len(songIDs) is valid (append position)
		if _, err := f.engine.AddSong(ctx, playlist.ID(), f.owner.ID(), s1.ID(), 0); err != nil {
			t.Fatalf("insert at 0 into empty playlist should work: %v", err)
		}

		if _, err := f.engine.AddSong(ctx, playlist.ID(), f.owner.ID(), s1.ID(), 2); !errors.Is(err, shared.ErrInvalidPosition) {
			t.Errorf("expected ErrInvalidPosition for position past end, got %v", err)
		}

		// Only AppendPosition appends; other negatives are rejected
		if _, err := f.engine.AddSong(ctx, playlist.ID(), f.owner.ID(), s1.ID(), -3); !errors.Is(err, shared.ErrInvalidPosition) {
			t.Errorf("expected ErrInvalidPosition for negative position, got %v", err)
		}

		current, err := f.engine.Get(ctx, playlist.ID())
		if err != nil {
			t.Fatalf("failed to get playlist: %v", err)
		}
		assertSongIDs(t, current.SongIDs(), []string{s1.ID()})
	})

	t.Run("Duplicates Allowed", func(t *testing.T) {
		f := setupEngine(t)
		playlist := f.seedPlaylist(t, "Mix")
		s1 := f.seedSong(t, "s1")

		for i := 0; i < 2; i++ {
			if _, err := f.engine.AddSong(ctx, playlist.ID(), f.owner.ID(), s1.ID(), -1); err != nil {
				t.Fatalf("failed to add song: %v", err)
			}
		}

		current, _ := f.engine.Get(ctx, playlist.ID())
		assertSongIDs(t, current.SongIDs(), []string{s1.ID(), s1.ID()})
	})

	t.Run("Non Owner Denied Without Mutation", func(t *testing.T) {
		f := setupEngine(t)
		playlist := f.seedPlaylist(t, "Mix")
		s1 := f.seedSong(t, "s1")

		_, err := f.engine.AddSong(ctx, playlist.ID(), f.other.ID(), s1.ID(), -1)
		if !errors.Is(err, shared.ErrPermissionDenied) {
			t.Errorf("expected ErrPermissionDenied, got %v", err)
		}

		current, _ := f.engine.Get(ctx, playlist.ID())
		if len(current.SongIDs()) != 0 {
			t.Error("denied mutation must leave the playlist unchanged")
		}
	})

	t.Run("Unknown Playlist", func(t *testing.T) {
		f := setupEngine(t)
		s1 := f.seedSong(t, "s1")

		if _, err := f.engine.AddSong(ctx, "no-such-playlist", f.owner.ID(), s1.ID(), -1); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestRemoveAt(t *testing.T) {
	ctx := context.Background()

	t.Run("Removes And Shifts Left", func(t *testing.T) {
		f := setupEngine(t)
		playlist := f.seedPlaylist(t, "Mix")
		s1 := f.seedSong(t, "s1")
		s2 := f.seedSong(t, "s2")
		s3 := f.seedSong(t, "s3")

		for _, s := range []*models.Song{s1, s2, s3} {
			if _, err := f.engine.AddSong(ctx, playlist.ID(), f.owner.ID(), s.ID(), -1); err != nil {
				t.Fatalf("failed to add song: %v", err)
			}
		}

		updated, err := f.engine.RemoveAt(ctx, playlist.ID(), f.owner.ID(), 1)
		if err != nil {
			t.Fatalf("failed to remove song: %v", err)
		}
		assertSongIDs(t, updated.SongIDs(), []string{s1.ID(), s3.ID()})
	})

	t.Run("Out Of Range Rejected Without Mutation", func(t *testing.T) {
		f := setupEngine(t)
		playlist := f.seedPlaylist(t, "Mix")
		s1 := f.seedSong(t, "s1")

		if _, err := f.engine.AddSong(ctx, playlist.ID(), f.owner.ID(), s1.ID(), -1); err != nil {
			t.Fatalf("failed to add song: %v", err)
		}

		if _, err := f.engine.RemoveAt(ctx, playlist.ID(), f.owner.ID(), 5); !errors.Is(err, shared.ErrInvalidPosition) {
			t.Errorf("expected ErrInvalidPosition, got %v", err)
		}
		if _, err := f.engine.RemoveAt(ctx, playlist.ID(), f.owner.ID(), -1); !errors.Is(err, shared.ErrInvalidPosition) {
			t.Errorf("expected ErrInvalidPosition for negative index, got %v", err)
		}

		current, _ := f.engine.Get(ctx, playlist.ID())
		assertSongIDs(t, current.SongIDs(), []string{s1.ID()})
	})

	t.Run("Remove Then Add Restores Sequence", func(t *testing.T) {
		f := setupEngine(t)
		playlist := f.seedPlaylist(t, "Mix")
		songs := []*models.Song{f.seedSong(t, "s1"), f.seedSong(t, "s2"), f.seedSong(t, "s3")}
		for _, s := range songs {
			if _, err := f.engine.AddSong(ctx, playlist.ID(), f.owner.ID(), s.ID(), -1); err != nil {
				t.Fatalf("failed to add song: %v", err)
			}
		}

		before, _ := f.engine.Get(ctx, playlist.ID())

		for position := 0; position < len(songs); position++ {
			removedID := before.SongIDs()[position]
			if _, err := f.engine.RemoveAt(ctx, playlist.ID(), f.owner.ID(), position); err != nil {
				t.Fatalf("failed to remove at %d: %v", position, err)
			}
			if _, err := f.engine.AddSong(ctx, playlist.ID(), f.owner.ID(), removedID, position); err != nil {
				t.Fatalf("failed to re-add at %d: %v", position, err)
			}

			after, _ := f.engine.Get(ctx, playlist.ID())
			assertSongIDs(t, after.SongIDs(), before.SongIDs())
		}
	})
}

func TestReorder(t *testing.T) {
	ctx := context.Background()

	t.Run("Moves Element And Preserves Length", func(t *testing.T) {
		f := setupEngine(t)
		playlist := f.seedPlaylist(t, "Mix")
		s1 := f.seedSong(t, "s1")
		s2 := f.seedSong(t, "s2")

		for _, s := range []*models.Song{s1, s2} {
			if _, err := f.engine.AddSong(ctx, playlist.ID(), f.owner.ID(), s.ID(), -1); err != nil {
				t.Fatalf("failed to add song: %v", err)
			}
		}

		updated, err := f.engine.Reorder(ctx, playlist.ID(), f.owner.ID(), 0, 1)
		if err != nil {
			t.Fatalf("failed to reorder: %v", err)
		}
		assertSongIDs(t, updated.SongIDs(), []string{s2.ID(), s1.ID()})
	})

	t.Run("Middle Move Shifts Intervening Range", func(t *testing.T) {
		f := setupEngine(t)
		playlist := f.seedPlaylist(t, "Mix")
		ids := make([]string, 4)
		for i := range ids {
			s := f.seedSong(t, fmt.Sprintf("s%d", i))
			ids[i] = s.ID()
			if _, err := f.engine.AddSong(ctx, playlist.ID(), f.owner.ID(), s.ID(), -1); err != nil {
				t.Fatalf("failed to add song: %v", err)
			}
		}

		updated, err := f.engine.Reorder(ctx, playlist.ID(), f.owner.ID(), 3, 1)
		if err != nil {
			t.Fatalf("failed to reorder: %v", err)
		}
		assertSongIDs(t, updated.SongIDs(), []string{ids[0], ids[3], ids[1], ids[2]})
	})

	t.Run("Same Position Is Valid No-Op That Touches UpdatedAt", func(t *testing.T) {
		f := setupEngine(t)
		playlist := f.seedPlaylist(t, "Mix")
		s1 := f.seedSong(t, "s1")

		if _, err := f.engine.AddSong(ctx, playlist.ID(), f.owner.ID(), s1.ID(), -1); err != nil {
			t.Fatalf("failed to add song: %v", err)
		}

		before, _ := f.engine.Get(ctx, playlist.ID())

		updated, err := f.engine.Reorder(ctx, playlist.ID(), f.owner.ID(), 0, 0)
		if err != nil {
			t.Fatalf("same-position reorder should succeed: %v", err)
		}
		assertSongIDs(t, updated.SongIDs(), before.SongIDs())
		if updated.UpdatedAt().Before(before.UpdatedAt()) {
			t.Error("reorder should bump updated_at")
		}
	})

	t.Run("Bounds Checked", func(t *testing.T) {
		f := setupEngine(t)
		playlist := f.seedPlaylist(t, "Mix")
		s1 := f.seedSong(t, "s1")

		if _, err := f.engine.AddSong(ctx, playlist.ID(), f.owner.ID(), s1.ID(), -1); err != nil {
			t.Fatalf("failed to add song: %v", err)
		}

		if _, err := f.engine.Reorder(ctx, playlist.ID(), f.owner.ID(), 0, 3); !errors.Is(err, shared.ErrInvalidPosition) {
			t.Errorf("expected ErrInvalidPosition, got %v", err)
		}
		if _, err := f.engine.Reorder(ctx, playlist.ID(), f.owner.ID(), -1, 0); !errors.Is(err, shared.ErrInvalidPosition) {
			t.Errorf("expected ErrInvalidPosition, got %v", err)
		}
	})
}

func TestRenameAndDelete(t *testing.T) {
	ctx := context.Background()

	t.Run("Rename", func(t *testing.T) {
		f := setupEngine(t)
		playlist := f.seedPlaylist(t, "Before")

		updated, err := f.engine.Rename(ctx, playlist.ID(), f.owner.ID(), "After")
		if err != nil {
			t.Fatalf("failed to rename: %v", err)
		}
		if updated.Title() != "After" {
			t.Errorf("expected title After, got %s", updated.Title())
		}

		if _, err := f.engine.Rename(ctx, playlist.ID(), f.owner.ID(), "  "); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument for blank rename, got %v", err)
		}
	})

	t.Run("Delete By Owner", func(t *testing.T) {
		f := setupEngine(t)
		playlist := f.seedPlaylist(t, "Doomed")

		if err := f.engine.Delete(ctx, playlist.ID(), f.owner.ID()); err != nil {
			t.Fatalf("failed to delete: %v", err)
		}

		if _, err := f.engine.Get(ctx, playlist.ID()); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound after delete, got %v", err)
		}
	})

	t.Run("Delete By Non-Owner Denied", func(t *testing.T) {
		f := setupEngine(t)
		playlist := f.seedPlaylist(t, "Guarded")

		if err := f.engine.Delete(ctx, playlist.ID(), f.other.ID()); !errors.Is(err, shared.ErrPermissionDenied) {
			t.Errorf("expected ErrPermissionDenied, got %v", err)
		}

		if _, err := f.engine.Get(ctx, playlist.ID()); err != nil {
			t.Errorf("playlist should survive denied deletion: %v", err)
		}
	})
}

func TestResolveDanglingReferences(t *testing.T) {
	ctx := context.Background()
	f := setupEngine(t)

	playlist := f.seedPlaylist(t, "Mix")
	s1 := f.seedSong(t, "s1")
	s2 := f.seedSong(t, "s2")

	for _, s := range []*models.Song{s1, s2} {
		if _, err := f.engine.AddSong(ctx, playlist.ID(), f.owner.ID(), s.ID(), -1); err != nil {
			t.Fatalf("failed to add song: %v", err)
		}
	}

	// Deleting the song from the catalog leaves the reference in place
	if err := f.store.DeleteSong(ctx, s1.ID()); err != nil {
		t.Fatalf("failed to delete song: %v", err)
	}

	current, err := f.engine.Get(ctx, playlist.ID())
	if err != nil {
		t.Fatalf("fetching playlist with dangling reference should work: %v", err)
	}
	assertSongIDs(t, current.SongIDs(), []string{s1.ID(), s2.ID()})

	_, resolved, err := f.engine.Resolve(ctx, playlist.ID())
	if err != nil {
		t.Fatalf("resolution should not fail: %v", err)
	}
	if !resolved[0].Absent {
		t.Error("deleted song should resolve as absent")
	}
	if resolved[1].Absent || resolved[1].Song.ID() != s2.ID() {
		t.Error("live song should resolve normally")
	}
}

func TestConcurrentMutationsSerialized(t *testing.T) {
	ctx := context.Background()
	f := setupEngine(t)

	playlist := f.seedPlaylist(t, "Contended")
	song := f.seedSong(t, "s1")

	const workers = 8
	const perWorker = 5

	var wg sync.WaitGroup
	errs := make(chan error, workers*perWorker)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				if _, err := f.engine.AddSong(ctx, playlist.ID(), f.owner.ID(), song.ID(), 0); err != nil {
					errs <- err
				}
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent add failed: %v", err)
	}

	current, err := f.engine.Get(ctx, playlist.ID())
	if err != nil {
		t.Fatalf("failed to get playlist: %v", err)
	}
	if len(current.SongIDs()) != workers*perWorker {
		t.Errorf("expected %d songs after concurrent adds, got %d", workers*perWorker, len(current.SongIDs()))
	}
}

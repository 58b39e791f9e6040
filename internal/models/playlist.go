package models

import (
	"fmt"
	"time"
)

// Playlist is an ordered sequence of song references owned by a single user.
// Position equals index; duplicates are allowed. Entries may dangle if the
// referenced song is later deleted from the catalog; dangling references
// are resolved as absent at read time, never treated as corruption.
type Playlist struct {
	id        string
	sequence  int
	ownerID   string
	title     string
	songIDs   []string
	createdAt time.Time
	updatedAt time.Time
	deletedAt *time.Time
}

// NewPlaylist creates an empty Playlist for the given owner.
// The ID is assigned by the repository at insertion time.
func NewPlaylist(sequence int, ownerID, title string) *Playlist {
	now := time.Now()
	return &Playlist{
		sequence:  sequence,
		ownerID:   ownerID,
		title:     title,
		songIDs:   []string{},
		createdAt: now,
		updatedAt: now,
	}
}

func (p *Playlist) ID() string            { return p.id }
func (p *Playlist) Sequence() int         { return p.sequence }
func (p *Playlist) OwnerID() string       { return p.ownerID }
func (p *Playlist) Title() string         { return p.title }
func (p *Playlist) CreatedAt() time.Time  { return p.createdAt }
func (p *Playlist) UpdatedAt() time.Time  { return p.updatedAt }
func (p *Playlist) DeletedAt() *time.Time { return p.deletedAt }

// SongIDs returns a copy of the ordered song references, so callers cannot
// mutate the playlist's sequence without going through the engine.
func (p *Playlist) SongIDs() []string {
	ids := make([]string, len(p.songIDs))
	copy(ids, p.songIDs)
	return ids
}

func (p *Playlist) SetID(id string)           { p.id = id }
func (p *Playlist) SetTitle(title string)     { p.title = title }
func (p *Playlist) SetSongIDs(ids []string)   { p.songIDs = ids }
func (p *Playlist) SetCreatedAt(t time.Time)  { p.createdAt = t }
func (p *Playlist) SetUpdatedAt(t time.Time)  { p.updatedAt = t }
func (p *Playlist) SetDeletedAt(t *time.Time) { p.deletedAt = t }

// Validate checks that required playlist fields are present.
func (p *Playlist) Validate() error {
	if p.ownerID == "" {
		return fmt.Errorf("playlist owner is required")
	}
	if p.title == "" {
		return fmt.Errorf("playlist title is required")
	}
	for i, id := range p.songIDs {
		if id == "" {
			return fmt.Errorf("empty song reference at position %d", i)
		}
	}
	return nil
}

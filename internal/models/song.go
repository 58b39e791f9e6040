package models

import (
	"fmt"
	"time"
)

// Song is a catalog entry. The id is immutable after creation; metadata
// fields may change through administrative edits only.
type Song struct {
	id              string
	sequence        int
	title           string
	artist          string
	album           string
	durationSeconds int
	audioRef        string
	createdAt       time.Time
	updatedAt       time.Time
	deletedAt       *time.Time
}

// NewSong creates a Song with the given metadata. The ID is assigned by the
// repository at insertion time.
func NewSong(sequence int, title, artist, album string, durationSeconds int, audioRef string) *Song {
	now := time.Now()
	return &Song{
		sequence:        sequence,
		title:           title,
		artist:          artist,
		album:           album,
		durationSeconds: durationSeconds,
		audioRef:        audioRef,
		createdAt:       now,
		updatedAt:       now,
	}
}

func (s *Song) ID() string            { return s.id }
func (s *Song) Sequence() int         { return s.sequence }
func (s *Song) Title() string         { return s.title }
func (s *Song) Artist() string        { return s.artist }
func (s *Song) Album() string         { return s.album }
func (s *Song) DurationSeconds() int  { return s.durationSeconds }
func (s *Song) AudioRef() string      { return s.audioRef }
func (s *Song) CreatedAt() time.Time  { return s.createdAt }
func (s *Song) UpdatedAt() time.Time  { return s.updatedAt }
func (s *Song) DeletedAt() *time.Time { return s.deletedAt }

func (s *Song) SetID(id string)             { s.id = id }
func (s *Song) SetTitle(title string)       { s.title = title }
func (s *Song) SetArtist(artist string)     { s.artist = artist }
func (s *Song) SetAlbum(album string)       { s.album = album }
func (s *Song) SetCreatedAt(t time.Time)    { s.createdAt = t }
func (s *Song) SetUpdatedAt(t time.Time)    { s.updatedAt = t }
func (s *Song) SetDeletedAt(t *time.Time)   { s.deletedAt = t }
func (s *Song) SetDurationSeconds(secs int) { s.durationSeconds = secs }

// Validate checks that required song fields are present and sane.
func (s *Song) Validate() error {
	if s.title == "" {
		return fmt.Errorf("song title is required")
	}
	if s.durationSeconds < 0 {
		return fmt.Errorf("song duration must be non-negative, got %d", s.durationSeconds)
	}
	if s.audioRef == "" {
		return fmt.Errorf("song audio reference is required")
	}
	return nil
}

package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/harmonia-fm/harmonia/internal/models"
	"github.com/harmonia-fm/harmonia/internal/shared"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErrorMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeError maps domain errors to HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, shared.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, shared.ErrPermissionDenied):
		status = http.StatusForbidden
	case errors.Is(err, shared.ErrInvalidPosition), errors.Is(err, shared.ErrInvalidArgument):
		status = http.StatusBadRequest
	case errors.Is(err, shared.ErrAuthFailed),
		errors.Is(err, shared.ErrNotAuthenticated),
		errors.Is(err, shared.ErrInvalidToken),
		errors.Is(err, shared.ErrTokenExpired):
		status = http.StatusUnauthorized
	case errors.Is(err, shared.ErrTransient):
		status = http.StatusServiceUnavailable
	}
	writeErrorMessage(w, status, err.Error())
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

type songResponse struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Artist          string    `json:"artist"`
	Album           string    `json:"album,omitempty"`
	DurationSeconds int       `json:"duration_seconds"`
	AudioRef        string    `json:"audio_ref"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func newSongResponse(song *models.Song) songResponse {
	return songResponse{
		ID:              song.ID(),
		Title:           song.Title(),
		Artist:          song.Artist(),
		Album:           song.Album(),
		DurationSeconds: song.DurationSeconds(),
		AudioRef:        song.AudioRef(),
		CreatedAt:       song.CreatedAt(),
		UpdatedAt:       song.UpdatedAt(),
	}
}

func newSongResponses(songs []*models.Song) []songResponse {
	out := make([]songResponse, 0, len(songs))
	for _, song := range songs {
		out = append(out, newSongResponse(song))
	}
	return out
}

type userResponse struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}

func newUserResponse(user *models.User) userResponse {
	return userResponse{
		ID:          user.ID(),
		Email:       user.Email(),
		DisplayName: user.DisplayName(),
		CreatedAt:   user.CreatedAt(),
	}
}

type playlistResponse struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Title     string    `json:"title"`
	SongIDs   []string  `json:"song_ids"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newPlaylistResponse(playlist *models.Playlist) playlistResponse {
	return playlistResponse{
		ID:        playlist.ID(),
		OwnerID:   playlist.OwnerID(),
		Title:     playlist.Title(),
		SongIDs:   playlist.SongIDs(),
		CreatedAt: playlist.CreatedAt(),
		UpdatedAt: playlist.UpdatedAt(),
	}
}

// playlistEntry is one position in a resolved playlist view. Absent entries
// refer to songs that no longer exist in the catalog.
type playlistEntry struct {
	Position int           `json:"position"`
	Absent   bool          `json:"absent,omitempty"`
	Song     *songResponse `json:"song,omitempty"`
}

// queryInt parses an integer query or form value, falling back to def.
func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

package server

import (
	"net/http"

	"github.com/harmonia-fm/harmonia/internal/catalog"
)

// SongHandler serves catalog song endpoints.
//
// Reads are public. Mutations require an authenticated user.
type SongHandler struct {
	store *catalog.Store
	mux   *http.ServeMux
}

// NewSongHandler creates a SongHandler with mutations gated by auth.
func NewSongHandler(store *catalog.Store, auth Middleware) *SongHandler {
	h := &SongHandler{store: store, mux: http.NewServeMux()}

	h.mux.HandleFunc("GET /api/v1/songs", h.list)
	h.mux.HandleFunc("GET /api/v1/songs/{id}", h.get)
	h.mux.Handle("POST /api/v1/songs", auth(http.HandlerFunc(h.create)))
	h.mux.Handle("PUT /api/v1/songs/{id}", auth(http.HandlerFunc(h.update)))
	h.mux.Handle("DELETE /api/v1/songs/{id}", auth(http.HandlerFunc(h.delete)))

	return h
}

func (h *SongHandler) Routes() []string {
	return []string{"/api/v1/songs", "/api/v1/songs/{id}"}
}

func (h *SongHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

type createSongRequest struct {
	Title           string `json:"title"`
	Artist          string `json:"artist"`
	Album           string `json:"album"`
	DurationSeconds int    `json:"duration_seconds"`
	AudioRef        string `json:"audio_ref"`
}

func (h *SongHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createSongRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	song, err := h.store.CreateSong(r.Context(), req.Title, req.Artist, req.Album, req.DurationSeconds, req.AudioRef)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newSongResponse(song))
}

func (h *SongHandler) get(w http.ResponseWriter, r *http.Request) {
	song, err := h.store.GetSong(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newSongResponse(song))
}

func (h *SongHandler) list(w http.ResponseWriter, r *http.Request) {
	criteria := map[string]any{}
	if artist := r.URL.Query().Get("artist"); artist != "" {
		criteria["artist"] = artist
	}
	if album := r.URL.Query().Get("album"); album != "" {
		criteria["album"] = album
	}

	songs, err := h.store.List(r.Context(), criteria)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newSongResponses(songs))
}

type updateSongRequest struct {
	Title           *string `json:"title"`
	Artist          *string `json:"artist"`
	Album           *string `json:"album"`
	DurationSeconds *int    `json:"duration_seconds"`
}

func (h *SongHandler) update(w http.ResponseWriter, r *http.Request) {
	var req updateSongRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	song, err := h.store.GetSong(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	if req.Title != nil {
		song.SetTitle(*req.Title)
	}
	if req.Artist != nil {
		song.SetArtist(*req.Artist)
	}
	if req.Album != nil {
		song.SetAlbum(*req.Album)
	}
	if req.DurationSeconds != nil {
		song.SetDurationSeconds(*req.DurationSeconds)
	}

	if err := h.store.UpdateSong(r.Context(), song); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newSongResponse(song))
}

func (h *SongHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteSong(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

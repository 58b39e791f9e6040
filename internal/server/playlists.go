package server

import (
	"net/http"
	"strconv"

	"github.com/harmonia-fm/harmonia/internal/playlists"
)

// PlaylistHandler serves playlist endpoints.
//
// Reads are public. Every mutation requires an authenticated user, and the
// playlist engine enforces that only the owner can modify a playlist.
type PlaylistHandler struct {
	engine *playlists.Engine
	mux    *http.ServeMux
}

// NewPlaylistHandler creates a PlaylistHandler with mutations gated by auth.
func NewPlaylistHandler(engine *playlists.Engine, auth Middleware) *PlaylistHandler {
	h := &PlaylistHandler{engine: engine, mux: http.NewServeMux()}

	h.mux.HandleFunc("GET /api/v1/playlists", h.list)
	h.mux.HandleFunc("GET /api/v1/playlists/{id}", h.get)
	h.mux.Handle("POST /api/v1/playlists", auth(http.HandlerFunc(h.create)))
	h.mux.Handle("PATCH /api/v1/playlists/{id}", auth(http.HandlerFunc(h.rename)))
	h.mux.Handle("DELETE /api/v1/playlists/{id}", auth(http.HandlerFunc(h.delete)))
	h.mux.Handle("POST /api/v1/playlists/{id}/songs", auth(http.HandlerFunc(h.addSong)))
	h.mux.Handle("DELETE /api/v1/playlists/{id}/songs/{position}", auth(http.HandlerFunc(h.removeSong)))
	h.mux.Handle("POST /api/v1/playlists/{id}/reorder", auth(http.HandlerFunc(h.reorder)))

	return h
}

func (h *PlaylistHandler) Routes() []string {
	return []string{
		"/api/v1/playlists",
		"/api/v1/playlists/{id}",
		"/api/v1/playlists/{id}/songs",
		"/api/v1/playlists/{id}/songs/{position}",
		"/api/v1/playlists/{id}/reorder",
	}
}

func (h *PlaylistHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

type createPlaylistRequest struct {
	Title string `json:"title"`
}

func (h *PlaylistHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createPlaylistRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	playlist, err := h.engine.Create(r.Context(), UserIDFromContext(r.Context()), req.Title)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newPlaylistResponse(playlist))
}

// resolvedPlaylistResponse is the playlist plus its entries resolved
// against the catalog.
type resolvedPlaylistResponse struct {
	playlistResponse
	Entries []playlistEntry `json:"entries"`
}

func (h *PlaylistHandler) get(w http.ResponseWriter, r *http.Request) {
	playlist, resolved, err := h.engine.Resolve(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	resp := resolvedPlaylistResponse{
		playlistResponse: newPlaylistResponse(playlist),
		Entries:          make([]playlistEntry, 0, len(resolved)),
	}
	for i, entry := range resolved {
		pe := playlistEntry{Position: i, Absent: entry.Absent}
		if entry.Song != nil {
			song := newSongResponse(entry.Song)
			pe.Song = &song
		}
		resp.Entries = append(resp.Entries, pe)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *PlaylistHandler) list(w http.ResponseWriter, r *http.Request) {
	owner := r.URL.Query().Get("owner")
	if owner == "" {
		writeErrorMessage(w, http.StatusBadRequest, "owner query parameter is required")
		return
	}

	lists, err := h.engine.ListByOwner(r.Context(), owner)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]playlistResponse, 0, len(lists))
	for _, playlist := range lists {
		out = append(out, newPlaylistResponse(playlist))
	}
	writeJSON(w, http.StatusOK, out)
}

type renamePlaylistRequest struct {
	Title string `json:"title"`
}

func (h *PlaylistHandler) rename(w http.ResponseWriter, r *http.Request) {
	var req renamePlaylistRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	playlist, err := h.engine.Rename(r.Context(), r.PathValue("id"), UserIDFromContext(r.Context()), req.Title)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newPlaylistResponse(playlist))
}

func (h *PlaylistHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.Delete(r.Context(), r.PathValue("id"), UserIDFromContext(r.Context())); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type addSongRequest struct {
	SongID   string `json:"song_id"`
	Position *int   `json:"position"`
}

func (h *PlaylistHandler) addSong(w http.ResponseWriter, r *http.Request) {
	var req addSongRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	// A missing position appends to the end. A given position must be
	// non-negative; the engine bounds-checks it against the playlist.
	position := playlists.AppendPosition
	if req.Position != nil {
		if *req.Position < 0 {
			writeErrorMessage(w, http.StatusBadRequest, "position must be non-negative")
			return
		}
		position = *req.Position
	}

	playlist, err := h.engine.AddSong(r.Context(), r.PathValue("id"), UserIDFromContext(r.Context()), req.SongID, position)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newPlaylistResponse(playlist))
}

func (h *PlaylistHandler) removeSong(w http.ResponseWriter, r *http.Request) {
	position, err := strconv.Atoi(r.PathValue("position"))
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "position must be an integer")
		return
	}

	playlist, err := h.engine.RemoveAt(r.Context(), r.PathValue("id"), UserIDFromContext(r.Context()), position)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newPlaylistResponse(playlist))
}

type reorderRequest struct {
	From int `json:"from"`
	To   int `json:"to"`
}

func (h *PlaylistHandler) reorder(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	playlist, err := h.engine.Reorder(r.Context(), r.PathValue("id"), UserIDFromContext(r.Context()), req.From, req.To)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newPlaylistResponse(playlist))
}

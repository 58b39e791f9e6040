package server

import (
	"net/http"

	"github.com/harmonia-fm/harmonia/internal/search"
)

const defaultSearchLimit = 25

// SearchHandler serves the song search endpoint backed by the in-process index.
type SearchHandler struct {
	index *search.Index
}

func NewSearchHandler(index *search.Index) *SearchHandler {
	return &SearchHandler{index: index}
}

func (h *SearchHandler) Routes() []string {
	return []string{"GET /api/v1/search"}
}

func (h *SearchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	limit := queryInt(r, "limit", defaultSearchLimit)

	songs := h.index.Search(query, limit)
	writeJSON(w, http.StatusOK, newSongResponses(songs))
}

package server

import (
	"github.com/charmbracelet/log"
	"github.com/harmonia-fm/harmonia/internal/catalog"
	"github.com/harmonia-fm/harmonia/internal/identity"
	"github.com/harmonia-fm/harmonia/internal/playlists"
	"github.com/harmonia-fm/harmonia/internal/search"
)

// APIOpts bundles the services behind the HTTP API.
type APIOpts struct {
	Store     *catalog.Store
	Engine    *playlists.Engine
	Identity  *identity.Service
	Index     *search.Index
	Logger    *log.Logger
	RateLimit float64 // Requests per second across all clients (0 disables throttling)
	RateBurst int     // Token bucket size (defaults to RateLimit when unset)
}

// NewAPIRouter assembles the full API router with logging, rate limiting,
// and all endpoint handlers registered.
func NewAPIRouter(opts APIOpts) *BasicRouter {
	router := NewBasicRouter()

	if opts.Logger != nil {
		router.Use(RequestLogger(opts.Logger))
	}
	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst < 1 {
			burst = int(opts.RateLimit)
		}
		if burst < 1 {
			burst = 1
		}
		router.Use(RateLimit(opts.RateLimit, burst))
	}

	auth := Authenticate(opts.Identity)

	router.Handler(NewSongHandler(opts.Store, auth))
	router.Handler(NewUserHandler(opts.Identity, auth))
	router.Handler(NewPlaylistHandler(opts.Engine, auth))
	router.Handler(NewSearchHandler(opts.Index))

	return router
}

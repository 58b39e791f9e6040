// Package server provides HTTP routing, middleware, and JSON handlers for the catalog service.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Handlers
//
// Each endpoint group implements the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation:
//
//   - [SongHandler]: catalog song CRUD under /api/v1/songs
//   - [UserHandler]: registration, login, and account lookup under /api/v1/users and /api/v1/sessions
//   - [PlaylistHandler]: playlist CRUD and ordered mutations under /api/v1/playlists
//   - [SearchHandler]: title and artist search under /api/v1/search
//
// # Authentication
//
// The [Authenticate] middleware validates bearer tokens and stores the subject
// user ID in the request context. Read endpoints are public; every mutation
// requires a valid token, and playlist mutations are further restricted to the
// playlist owner by the playlist engine.
//
// # Error Mapping
//
// Domain errors map to HTTP status codes: not-found to 404, permission denied
// to 403, invalid arguments and positions to 400, authentication failures to
// 401, and transient store failures to 503.
package server

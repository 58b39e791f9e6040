package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Core error taxonomy. Every core operation returns one of these,
	// wrapped with context; the server layer translates them into
	// HTTP status codes with errors.Is.
	ErrNotFound         = fmt.Errorf("not found")
	ErrPermissionDenied = fmt.Errorf("permission denied")
	ErrInvalidPosition  = fmt.Errorf("invalid position")
	ErrInvalidArgument  = fmt.Errorf("invalid argument")
	ErrTransient        = fmt.Errorf("transient storage failure")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrInvalidToken     = fmt.Errorf("invalid token")
	ErrTokenExpired     = fmt.Errorf("token expired")

	// Entity-specific not-found variants, all matching ErrNotFound
	ErrSongNotFound     = fmt.Errorf("song %w", ErrNotFound)
	ErrUserNotFound     = fmt.Errorf("user %w", ErrNotFound)
	ErrPlaylistNotFound = fmt.Errorf("playlist %w", ErrNotFound)

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Input validation errors
	ErrMissingArgument = fmt.Errorf("missing required argument")
)

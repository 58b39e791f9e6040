// Package repositories implements SQLite persistence for all domain entities.
//
// Each repository handles CRUD operations with atomic sequence generation for human-readable ordering.
// All repositories support soft deletes via deleted_at timestamps and exclude deleted records from queries by default.
//
// Key Implementations:
//   - [SongRepository] : Catalog persistence with order-preserving batch resolution
//   - [UserRepository] : User account persistence with email-based lookups
//   - [PlaylistRepository] : Playlist persistence with an ordered playlist_songs junction table
//
// Sequence numbers provide stable, human-readable ordering (e.g., user #42, playlist #15) independent of UUIDs and creation timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
//
// Every method takes a context and enforces a per-query timeout; deadline
// expiry surfaces as [shared.ErrTransient] so callers can distinguish a
// slow store from a missing row.
package repositories

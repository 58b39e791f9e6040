// Package models defines domain entities and persistence interfaces for the Harmonia catalog service.
//
// Persistent entities are database-backed models with full lifecycle management:
//   - [Song] : Catalog entries with title/artist/album metadata and an opaque audio locator
//   - [User] : User accounts with hashed credentials
//   - [Playlist] : User-owned ordered sequences of song references
//
// All persistent entities implement the Model interface providing ID generation, timestamps, validation, and soft delete support.
// The Repository[T] interface defines standard CRUD operations for database access.
package models

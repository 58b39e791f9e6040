// Package search implements the derived full-text index over the song catalog.
//
// The index is not authoritative: it maps normalized tokens to song ids and
// can be rebuilt from the catalog store at any time. Updates arrive through
// the [Notifier] interface, either synchronously (the [Index] itself, which
// gives the mutating caller read-your-writes) or via the [Updater], a queued
// background applier with a bounded staleness window for deferred writers
// such as bulk imports.
//
// Ranking for [Index.Search] is, in order:
//  1. exact normalized-title match
//  2. number of query tokens that prefix-match an indexed token, descending
//  3. song creation time, most recent first
package search

// Package tasks orchestrates bulk catalog operations with real-time progress reporting.
//
// The [ImportEngine] reads song manifests and inserts them through the
// catalog store using a rate-limited worker pool. Index updates for bulk
// work go through the deferred search updater, so import throughput is not
// coupled to index writes.
//
// All operations use non-blocking channels for progress updates: sends use
// select with default so a slow consumer never stalls the import.
package tasks

// Package tasks runs playlist operations that need more than one TIDAL API call, with real-time progress reporting.
//
// # Core Operations
//
// [PlaylistEngine] wraps a [services.Service] and provides:
//
//  1. [PlaylistEngine.ListPlaylists] : Walks the cursor-paged root folder listing
//
//  2. [PlaylistEngine.ExportPlaylist] : Playlist metadata plus every page of its tracks
//     - Pages with explicit limit/offset until the reported total is reached
//     - Skips videos
//
//  3. [PlaylistEngine.AddTracks] : Adds any number of tracks
//     - Removes duplicate ids
//     - Splits into batches of [services.MaxTracksPerAdd], sent in order
//
//  4. [PlaylistEngine.CreatePlaylist] : Creates a playlist and optionally fills it
//
//  5. [PlaylistEngine.BulkExport] : Worker pool writing JSON, CSV, Markdown or text files plus a manifest
//
// # Rate Limiting
//
// All calls made by an engine wait on one [rate.Limiter], so concurrent operations on the same engine share the budget.
//
// # Progress Reporting
//
// All operations accept an optional channel for progress updates.
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
package tasks

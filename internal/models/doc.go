// Package models defines the data transfer objects shared by the export tasks, the formatter,
// the CLI and the TUI.
//
//   - [Playlist] : Playlist metadata, including the cover image id
//   - [PlaylistExport] : Playlist with complete track listing
//   - [Track] : Track metadata with ISRC
//
// Raw API payloads live in the services package; its Tidal* types convert into these.
package models

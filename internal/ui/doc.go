// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for browsing and exporting TIDAL playlists:
//  1. [PlaylistListView] : Browse the user's playlists
//  2. [TrackListView] : Preview the tracks of the selected playlist
//  3. [ConfirmView] : Confirm the export
//  4. [ExportView] : Monitor real-time progress updates
//  5. [ResultView] : Display the written files
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Progress updates flow through a channel from the PlaylistEngine, providing non-blocking status reporting during exports.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, o, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui

// package models defines the service-independent data model used by exports, the CLI and the TUI
package models

import (
	"fmt"
	"strings"
	"time"
)

// ImageBaseURL is the TIDAL image CDN.
const ImageBaseURL = "https://resources.tidal.com/images"

// ListenBaseURL is the TIDAL web player.
const ListenBaseURL = "https://listen.tidal.com"

// Playlist represents a TIDAL playlist
type Playlist struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	TrackCount  int       `json:"track_count"`
	Duration    int       `json:"duration"` // Duration in seconds
	Public      bool      `json:"public"`
	ImageID     string    `json:"image_id,omitempty"`
	LastUpdated time.Time `json:"last_updated,omitzero"`
}

// URL returns the web player address of the playlist.
func (p Playlist) URL() string {
	return fmt.Sprintf("%s/playlist/%s", ListenBaseURL, p.ID)
}

// CoverURL returns the CDN address of the playlist's square cover at the given pixel size, or
// an empty string when the playlist has no image.
func (p Playlist) CoverURL(size int) string {
	return ImageURL(p.ImageID, size)
}

// PlaylistExport represents a playlist with all its tracks
type PlaylistExport struct {
	Playlist Playlist `json:"playlist"`
	Tracks   []Track  `json:"tracks"`
}

// Track represents a TIDAL track
type Track struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Artist   string `json:"artist"`
	Album    string `json:"album,omitempty"`
	Duration int    `json:"duration"`       // Duration in seconds
	ISRC     string `json:"isrc,omitempty"` // International Standard Recording Code
	Explicit bool   `json:"explicit,omitempty"`
}

// ImageURL maps a TIDAL image id (a UUID) to its CDN address.
//
// The CDN path is the id with dashes replaced by slashes, e.g.
// 5f3a...-...-... becomes /images/5f3a.../.../<size>x<size>.jpg
func ImageURL(id string, size int) string {
	if id == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s/%dx%d.jpg", ImageBaseURL, strings.ReplaceAll(id, "-", "/"), size, size)
}

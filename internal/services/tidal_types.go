// TIDAL API enumerations and response types
//
// Response types based on the JSON returned by api.tidal.com v1/v2.
package services

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/tdx/internal/models"
)

// FavoriteType selects the favorites collection returned by GetUserFavorites.
type FavoriteType string

const (
	FavoriteAlbums    FavoriteType = "albums"
	FavoriteArtists   FavoriteType = "artists"
	FavoritePlaylists FavoriteType = "playlists"
	FavoriteTracks    FavoriteType = "tracks"
	FavoriteVideos    FavoriteType = "videos"
)

// PlaylistOrderType is the ordering field for playlist and favorites listings.
type PlaylistOrderType string

const (
	OrderDate   PlaylistOrderType = "DATE"
	OrderName   PlaylistOrderType = "NAME"
	OrderArtist PlaylistOrderType = "ARTIST"
	OrderAlbum  PlaylistOrderType = "ALBUM"
)

// OrderDirection is the sort direction for listings.
type OrderDirection string

const (
	OrderAsc  OrderDirection = "ASC"
	OrderDesc OrderDirection = "DESC"
)

// SearchType restricts which result categories Search returns.
type SearchType string

const (
	SearchTracks    SearchType = "TRACKS"
	SearchAlbums    SearchType = "ALBUMS"
	SearchArtists   SearchType = "ARTISTS"
	SearchPlaylists SearchType = "PLAYLISTS"
	SearchVideos    SearchType = "VIDEOS"
	SearchAll       SearchType = "TRACKS,ALBUMS,ARTISTS,PLAYLISTS,VIDEOS"
)

// OnDupes controls what AddTracksToPlaylist does with tracks already in the playlist.
type OnDupes string

const (
	DupesFail OnDupes = "FAIL"
	DupesAdd  OnDupes = "ADD"
)

// OnArtifactNotFound controls what AddTracksToPlaylist does with unknown track ids.
type OnArtifactNotFound string

const (
	ArtifactFail    OnArtifactNotFound = "FAIL"
	ArtifactKeep    OnArtifactNotFound = "KEEP"
	ArtifactReplace OnArtifactNotFound = "REPLACE"
)

// ParseFavoriteType validates a user-supplied favorites category.
func ParseFavoriteType(s string) (FavoriteType, error) {
	switch ft := FavoriteType(strings.ToLower(strings.TrimSpace(s))); ft {
	case FavoriteAlbums, FavoriteArtists, FavoritePlaylists, FavoriteTracks, FavoriteVideos:
		return ft, nil
	default:
		return "", fmt.Errorf("unknown favorite type %q", s)
	}
}

// ParseSearchTypes converts a comma separated list ("tracks,albums" or "all") to SearchTypes.
func ParseSearchTypes(s string) ([]SearchType, error) {
	var types []SearchType
	for _, part := range strings.Split(s, ",") {
		part = strings.ToUpper(strings.TrimSpace(part))
		switch st := SearchType(part); st {
		case "":
			continue
		case "ALL":
			return []SearchType{SearchAll}, nil
		case SearchTracks, SearchAlbums, SearchArtists, SearchPlaylists, SearchVideos:
			types = append(types, st)
		default:
			return nil, fmt.Errorf("unknown search type %q", part)
		}
	}
	if len(types) == 0 {
		return nil, fmt.Errorf("no search types in %q", s)
	}
	return types, nil
}

// Response is a successful JSON response body, kept exactly as the API sent it.
//
// The body may be an object, an array or a scalar. A nil Response means the body was empty.
type Response []byte

// Decode decodes the response into v, typically one of the Tidal* types below.
func (r Response) Decode(v any) error {
	if err := json.Unmarshal(r, v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Value decodes the response into a generic value: map[string]any, []any, string, float64, bool or nil.
func (r Response) Value() (any, error) {
	if len(r) == 0 {
		return nil, nil
	}
	var v any
	return v, r.Decode(&v)
}

// Object decodes the response as a JSON object. It returns false when the body is anything else.
func (r Response) Object() (map[string]any, bool) {
	var m map[string]any
	if err := json.Unmarshal(r, &m); err != nil || m == nil {
		return nil, false
	}
	return m, true
}

// MarshalJSON returns the body unchanged, or null when it is empty.
func (r Response) MarshalJSON() ([]byte, error) {
	if len(r) == 0 {
		return []byte("null"), nil
	}
	return r, nil
}

// TidalArtist represents an artist reference.
type TidalArtist struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	Picture string `json:"picture"`
}

// TidalAlbum represents an album reference.
type TidalAlbum struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Cover       string `json:"cover"`
	ReleaseDate string `json:"releaseDate"`
}

// TidalTrack represents a track.
type TidalTrack struct {
	ID           int           `json:"id"`
	Title        string        `json:"title"`
	Duration     int           `json:"duration"` // seconds
	TrackNumber  int           `json:"trackNumber"`
	ISRC         string        `json:"isrc"`
	Explicit     bool          `json:"explicit"`
	AudioQuality string        `json:"audioQuality"`
	Artist       *TidalArtist  `json:"artist"`
	Artists      []TidalArtist `json:"artists"`
	Album        *TidalAlbum   `json:"album"`
	URL          string        `json:"url"`
}

// ArtistName returns the primary artist name.
func (t TidalTrack) ArtistName() string {
	if t.Artist != nil && t.Artist.Name != "" {
		return t.Artist.Name
	}
	if len(t.Artists) > 0 {
		return t.Artists[0].Name
	}
	return ""
}

// TidalPlaylist represents v1 playlist metadata.
type TidalPlaylist struct {
	UUID           string `json:"uuid"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	NumberOfTracks int    `json:"numberOfTracks"`
	NumberOfVideos int    `json:"numberOfVideos"`
	Duration       int    `json:"duration"`
	PublicPlaylist bool   `json:"publicPlaylist"`
	SquareImage    string `json:"squareImage"`
	Image          string `json:"image"`
	Created        string `json:"created"`
	LastUpdated    string `json:"lastUpdated"`
	URL            string `json:"url"`
}

// tidalTimeLayout is the timestamp format of v1 payloads, e.g. 2023-04-01T12:30:00.000+0000.
const tidalTimeLayout = "2006-01-02T15:04:05.000-0700"

// Model converts the playlist into a [models.Playlist].
func (p TidalPlaylist) Model() models.Playlist {
	image := p.SquareImage
	if image == "" {
		image = p.Image
	}

	updated, _ := time.Parse(tidalTimeLayout, p.LastUpdated)
	return models.Playlist{
		ID:          p.UUID,
		Name:        p.Title,
		Description: p.Description,
		TrackCount:  p.NumberOfTracks,
		Duration:    p.Duration,
		Public:      p.PublicPlaylist,
		ImageID:     image,
		LastUpdated: updated,
	}
}

// Model converts the track into a [models.Track].
func (t TidalTrack) Model() models.Track {
	track := models.Track{
		ID:       strconv.Itoa(t.ID),
		Title:    t.Title,
		Artist:   t.ArtistName(),
		Duration: t.Duration,
		ISRC:     t.ISRC,
		Explicit: t.Explicit,
	}
	if t.Album != nil {
		track.Album = t.Album.Title
	}
	return track
}

// TidalPlaylistItem is an entry of a playlist's items listing.
type TidalPlaylistItem struct {
	Type string     `json:"type"` // track, video
	Item TidalTrack `json:"item"`
}

// TidalPlaylistItems is the paginated response of GetPlaylistTracks.
type TidalPlaylistItems struct {
	Limit              int                 `json:"limit"`
	Offset             int                 `json:"offset"`
	TotalNumberOfItems int                 `json:"totalNumberOfItems"`
	Items              []TidalPlaylistItem `json:"items"`
}

// TidalFolderItem is an entry of the v2 my-collection folders listing.
type TidalFolderItem struct {
	TRN      string        `json:"trn"`
	ItemType string        `json:"itemType"` // PLAYLIST, FOLDER
	Name     string        `json:"name"`
	Data     TidalPlaylist `json:"data"`
}

// TidalFolderPage is the v2 response of GetUserPlaylists.
type TidalFolderPage struct {
	LastModifiedAt     string            `json:"lastModifiedAt"`
	TotalNumberOfItems int               `json:"totalNumberOfItems"`
	Cursor             string            `json:"cursor"`
	Items              []TidalFolderItem `json:"items"`
}

// TidalSearchTracks is the tracks section of a Search response.
type TidalSearchTracks struct {
	Limit              int          `json:"limit"`
	Offset             int          `json:"offset"`
	TotalNumberOfItems int          `json:"totalNumberOfItems"`
	Items              []TidalTrack `json:"items"`
}

// TidalSearchResult is the response of Search; sections absent from the requested types are empty.
type TidalSearchResult struct {
	Tracks TidalSearchTracks `json:"tracks"`
}

// TidalUser is the response of GetUserData.
type TidalUser struct {
	ID          int    `json:"id"`
	Username    string `json:"username"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	CountryCode string `json:"countryCode"`
	Created     string `json:"created"`
}

// TidalSubscription is the response of GetUserSubscription.
type TidalSubscription struct {
	ValidUntil   string `json:"validUntil"`
	Status       string `json:"status"`
	Subscription struct {
		Type               string `json:"type"`
		OfflineGracePeriod int    `json:"offlineGracePeriod"`
	} `json:"subscription"`
	HighestSoundQuality string `json:"highestSoundQuality"`
}

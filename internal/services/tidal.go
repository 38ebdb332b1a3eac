// TIDAL API implementation of [Service]
package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
)

// MaxTracksPerAdd is the largest number of track ids AddTracksToPlaylist accepts in one call.
const MaxTracksPerAdd = 50

var (
	userPlaylistsDefaults = Params{
		"limit":          50,
		"offset":         0,
		"order":          OrderDate,
		"orderDirection": OrderDesc,
		"folderId":       "root",
	}
	userFavoritesDefaults = Params{
		"limit":          100,
		"offset":         0,
		"order":          OrderDate,
		"orderDirection": OrderDesc,
	}
	playlistTracksDefaults = Params{
		"limit":          100,
		"offset":         0,
		"order":          OrderDate,
		"orderDirection": OrderDesc,
	}
	createPlaylistDefaults = Params{
		"description": "",
		"folderId":    "root",
		"isPublic":    false,
	}
	addTracksDefaults = Params{
		"onArtifactNotFound": ArtifactFail,
		"onDupes":            DupesFail,
	}
	searchDefaults = Params{
		"limit":                50,
		"types":                SearchTracks,
		"includeContributors":  false,
		"includeUserPlaylists": false,
		"supportsUserData":     false,
	}
)

// TidalService implements [Service] for the TIDAL REST API.
//
// The session credentials and the shared request headers are guarded by mu; Refresh is the only
// writer after construction.
type TidalService struct {
	cfg clientConfig

	mu      sync.RWMutex
	session TidalConfig
	header  http.Header
}

// NewTidalService validates cfg and builds the initial session headers. No network I/O occurs.
func NewTidalService(cfg TidalConfig, opts ...Option) (*TidalService, error) {
	session, err := cfg.validate()
	if err != nil {
		return nil, err
	}

	c := defaultClientConfig()
	for _, opt := range opts {
		opt(&c)
	}

	header := http.Header{}
	header.Set("Accept", "application/json")
	header.Set("Content-Type", c.bodyEncoding.contentType())
	header.Set("Authorization", "Bearer "+session.AccessToken)

	return &TidalService{cfg: c, session: session, header: header}, nil
}

func (s *TidalService) Name() string {
	return "TIDAL"
}

// UserID returns the id of the session's user.
func (s *TidalService) UserID() string {
	return s.session.UserID
}

// Config returns a copy of the current session configuration, including refreshed tokens.
func (s *TidalService) Config() TidalConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

// headers returns a copy of the session headers for a single dispatch.
func (s *TidalService) headers() http.Header {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.header.Clone()
}

func (s *TidalService) v1(format string, segments ...string) string {
	return s.cfg.baseURLv1 + buildPath(format, segments)
}

func (s *TidalService) v2(format string, segments ...string) string {
	return s.cfg.baseURLv2 + buildPath(format, segments)
}

// buildPath fills a path template with escaped segments.
func buildPath(format string, segments []string) string {
	args := make([]any, len(segments))
	for i, seg := range segments {
		args[i] = url.PathEscape(seg)
	}
	return fmt.Sprintf(format, args...)
}

// GetUserData returns user data for the session's user.
func (s *TidalService) GetUserData(ctx context.Context) (Response, error) {
	return s.get(ctx, s.v1("/users/%s", s.UserID()), s.buildParams(nil, nil))
}

// GetUserSubscription returns subscription information for the session's user.
func (s *TidalService) GetUserSubscription(ctx context.Context) (Response, error) {
	return s.get(ctx, s.v1("/users/%s/subscription", s.UserID()), s.buildParams(nil, nil))
}

// GetUserProfile returns the public profile of the session's user.
func (s *TidalService) GetUserProfile(ctx context.Context) (Response, error) {
	return s.get(ctx, s.v2("/profiles/%s", s.UserID()), s.buildParams(nil, nil))
}

// GetUserFollowers returns the profiles following the session's user.
func (s *TidalService) GetUserFollowers(ctx context.Context) (Response, error) {
	return s.get(ctx, s.v2("/profiles/%s/followers", s.UserID()), s.buildParams(nil, nil))
}

// GetUserFollowing returns the profiles the session's user follows.
func (s *TidalService) GetUserFollowing(ctx context.Context) (Response, error) {
	return s.get(ctx, s.v2("/profiles/%s/following", s.UserID()), s.buildParams(nil, nil))
}

// GetUserPlaylists returns one page of the user's playlist folders.
//
// Defaults: limit 50, offset 0, order DATE, orderDirection DESC, folderId root.
func (s *TidalService) GetUserPlaylists(ctx context.Context, opts Params) (Response, error) {
	return s.get(ctx, s.v2("/my-collection/playlists/folders"), s.buildParams(userPlaylistsDefaults, opts))
}

// GetUserFavorites returns one page of the user's favorites of the given type.
//
// Defaults: limit 100, offset 0, order DATE, orderDirection DESC.
func (s *TidalService) GetUserFavorites(ctx context.Context, favType FavoriteType, opts Params) (Response, error) {
	if favType == "" {
		return nil, NewMissingParametersError("No favorite type provided")
	}

	endpoint := s.v1("/users/%s/favorites/%s", s.UserID(), string(favType))
	return s.get(ctx, endpoint, s.buildParams(userFavoritesDefaults, opts))
}

// GetUserFavoritesLastUpdated returns when each favorites collection was last changed.
func (s *TidalService) GetUserFavoritesLastUpdated(ctx context.Context) (Response, error) {
	return s.get(ctx, s.v1("/users/%s/favorites", s.UserID()), s.buildParams(nil, nil))
}

// GetPlaylistInfo returns playlist metadata.
func (s *TidalService) GetPlaylistInfo(ctx context.Context, playlistID string) (Response, error) {
	if playlistID == "" {
		return nil, NewMissingParametersError("You must provide a playlistId")
	}
	return s.get(ctx, s.v1("/playlists/%s", playlistID), s.buildParams(nil, nil))
}

// GetPlaylistTracks returns one page of a playlist's items.
//
// Defaults: limit 100, offset 0, order DATE, orderDirection DESC.
func (s *TidalService) GetPlaylistTracks(ctx context.Context, playlistID string, opts Params) (Response, error) {
	if playlistID == "" {
		return nil, NewMissingParametersError("You must provide a playlistId")
	}
	return s.get(ctx, s.v1("/playlists/%s/items", playlistID), s.buildParams(playlistTracksDefaults, opts))
}

// GetTrackInfo returns track metadata.
func (s *TidalService) GetTrackInfo(ctx context.Context, trackID string) (Response, error) {
	if trackID == "" {
		return nil, NewMissingParametersError("You must provide a trackId")
	}
	return s.get(ctx, s.v1("/tracks/%s", trackID), s.buildParams(nil, nil))
}

// CreatePlaylist creates a playlist. opts must contain a non-empty "name".
//
// Defaults: description "", folderId root, isPublic false.
func (s *TidalService) CreatePlaylist(ctx context.Context, opts Params) (Response, error) {
	params := s.buildParams(createPlaylistDefaults, opts)
	if strings.TrimSpace(formatValue(params["name"])) == "" {
		return nil, NewMissingParametersError("You must provide a name for the playlist.")
	}

	return s.put(ctx, s.v2("/my-collection/playlists/folders/create-playlist"), params, nil)
}

// AddTracksToPlaylist adds up to [MaxTracksPerAdd] tracks to a playlist.
//
// Defaults: onArtifactNotFound FAIL, onDupes FAIL. The request carries If-None-Match: * and
// that header is scoped to this single dispatch.
func (s *TidalService) AddTracksToPlaylist(ctx context.Context, playlistID string, trackIDs []string, opts Params) (Response, error) {
	if playlistID == "" || len(trackIDs) == 0 {
		return nil, NewMissingParametersError("You must provide a playlistId and trackIds")
	}
	if len(trackIDs) > MaxTracksPerAdd {
		return nil, NewTooManyTracksError(fmt.Sprintf("You can only add %d tracks at a time.", MaxTracksPerAdd))
	}

	params := s.buildParams(addTracksDefaults, opts)
	params["trackIds"] = strings.Join(trackIDs, ",")

	override := http.Header{}
	override.Set("If-None-Match", "*")

	return s.post(ctx, s.v1("/playlists/%s/items", playlistID), params, override)
}

// Search queries the catalog. opts must contain a non-empty "query".
//
// Defaults: limit 50, types TRACKS, includeContributors, includeUserPlaylists and
// supportsUserData false.
func (s *TidalService) Search(ctx context.Context, opts Params) (Response, error) {
	if len(opts) == 0 {
		return nil, NewMissingParametersError("You must provide query options")
	}
	if strings.TrimSpace(formatValue(opts["query"])) == "" {
		return nil, NewMissingParametersError("You must provide a search query")
	}

	return s.get(ctx, s.v1("/search"), s.buildParams(searchDefaults, opts))
}

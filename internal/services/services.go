// package services defines interface Service for interacting with the TIDAL HTTP API
package services

import (
	"context"

	"golang.org/x/oauth2"
)

// Service defines the operations of an authenticated TIDAL session.
//
// Every method returns the decoded response body unmodified; use [Response.Decode] for typed access.
type Service interface {
	// Refresh exchanges a refresh token for a new access token used by all later calls.
	Refresh(ctx context.Context, refreshToken string) (Response, error)

	// Token returns the session's current credentials.
	Token() *oauth2.Token

	GetUserData(ctx context.Context) (Response, error)
	GetUserSubscription(ctx context.Context) (Response, error)
	GetUserProfile(ctx context.Context) (Response, error)
	GetUserFollowers(ctx context.Context) (Response, error)
	GetUserFollowing(ctx context.Context) (Response, error)
	GetUserPlaylists(ctx context.Context, opts Params) (Response, error)
	GetUserFavorites(ctx context.Context, favType FavoriteType, opts Params) (Response, error)
	GetUserFavoritesLastUpdated(ctx context.Context) (Response, error)

	GetPlaylistInfo(ctx context.Context, playlistID string) (Response, error)
	GetPlaylistTracks(ctx context.Context, playlistID string, opts Params) (Response, error)
	GetTrackInfo(ctx context.Context, trackID string) (Response, error)

	// CreatePlaylist creates a playlist; opts must contain "name".
	CreatePlaylist(ctx context.Context, opts Params) (Response, error)

	// AddTracksToPlaylist adds at most [MaxTracksPerAdd] tracks in one call.
	AddTracksToPlaylist(ctx context.Context, playlistID string, trackIDs []string, opts Params) (Response, error)

	// Search queries the catalog; opts must contain "query".
	Search(ctx context.Context, opts Params) (Response, error)

	// Name returns the name of the service
	Name() string
}

var _ Service = (*TidalService)(nil)

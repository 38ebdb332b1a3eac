// package tasks implements multi-request playlist operations on top of a TIDAL session.
package tasks

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/desertthunder/tdx/internal/models"
	"github.com/desertthunder/tdx/internal/services"
	"github.com/desertthunder/tdx/internal/shared"
)

const (
	// DefaultRateLimit is the default number of API requests per second across an engine.
	DefaultRateLimit = 5.0
	// DefaultPageSize is the page size used when walking playlist items.
	DefaultPageSize = 100
	// maxPages bounds cursor walks against a server that keeps returning the same cursor.
	maxPages = 1000
)

// AddTracksResult summarizes a batched AddTracks call.
type AddTracksResult struct {
	PlaylistID string
	Requested  int // ids passed in
	Unique     int // ids left after removing duplicates
	Added      int // ids in batches the API accepted
	Batches    int // batches sent
}

// PlaylistEngine runs playlist operations that span several API calls.
//
// Every call made through the engine waits on a shared [rate.Limiter].
type PlaylistEngine struct {
	srv      services.Service
	limiter  *rate.Limiter
	logger   *log.Logger
	pageSize int
}

// EngineOption configures a PlaylistEngine.
type EngineOption func(*PlaylistEngine)

// WithRateLimit sets the number of requests per second. Non-positive values keep the default.
func WithRateLimit(rps float64) EngineOption {
	return func(e *PlaylistEngine) {
		if rps > 0 {
			e.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// WithEngineLogger sets the engine's logger.
func WithEngineLogger(l *log.Logger) EngineOption {
	return func(e *PlaylistEngine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithPageSize sets the page size used by ExportPlaylist.
func WithPageSize(n int) EngineOption {
	return func(e *PlaylistEngine) {
		if n > 0 {
			e.pageSize = n
		}
	}
}

// NewPlaylistEngine creates a new PlaylistEngine for srv.
func NewPlaylistEngine(srv services.Service, opts ...EngineOption) *PlaylistEngine {
	e := &PlaylistEngine{
		srv:      srv,
		limiter:  rate.NewLimiter(rate.Limit(DefaultRateLimit), 1),
		logger:   log.New(io.Discard),
		pageSize: DefaultPageSize,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// sendProgress sends a progress update through the channel without blocking.
func (e *PlaylistEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func (e *PlaylistEngine) ready() error {
	if e.srv == nil {
		return fmt.Errorf("%w: service not initialized", shared.ErrNotAuthenticated)
	}
	return nil
}

// ListPlaylists walks every page of the user's root playlist folder.
func (e *PlaylistEngine) ListPlaylists(ctx context.Context, progress chan<- ProgressUpdate) ([]models.Playlist, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}

	var (
		playlists []models.Playlist
		cursor    string
	)
	for page := 1; page <= maxPages; page++ {
		if err := e.limiter.Wait(ctx); err != nil {
			return playlists, err
		}

		params := services.Params{}
		if cursor != "" {
			params["cursor"] = cursor
		}

		res, err := e.srv.GetUserPlaylists(ctx, params)
		if err != nil {
			return playlists, fmt.Errorf("failed to list playlists: %w", err)
		}

		var folder services.TidalFolderPage
		if err := res.Decode(&folder); err != nil {
			return playlists, fmt.Errorf("%w: %w", shared.ErrAPIRequest, err)
		}

		for _, item := range folder.Items {
			if item.ItemType != "" && item.ItemType != "PLAYLIST" {
				continue
			}
			pl := item.Data.Model()
			if pl.Name == "" {
				pl.Name = item.Name
			}
			playlists = append(playlists, pl)
		}
		e.sendProgress(progress, fetchPlaylistsUpdate(page, len(playlists)))

		if folder.Cursor == "" || folder.Cursor == cursor || len(folder.Items) == 0 {
			break
		}
		cursor = folder.Cursor
	}

	return playlists, nil
}

// ExportPlaylist fetches a playlist's metadata and every page of its tracks.
//
// Non-track items (videos) are skipped.
func (e *PlaylistEngine) ExportPlaylist(ctx context.Context, playlistID string, progress chan<- ProgressUpdate) (*models.PlaylistExport, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}

	e.sendProgress(progress, fetchPlaylistUpdate(playlistID))
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	res, err := e.srv.GetPlaylistInfo(ctx, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch playlist: %w", err)
	}

	var info services.TidalPlaylist
	if err := res.Decode(&info); err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrAPIRequest, err)
	}

	export := &models.PlaylistExport{Playlist: info.Model(), Tracks: []models.Track{}}
	if export.Playlist.ID == "" {
		export.Playlist.ID = playlistID
	}

	offset := 0
	for {
		if err := e.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		res, err := e.srv.GetPlaylistTracks(ctx, playlistID, services.Params{"limit": e.pageSize, "offset": offset})
		if err != nil {
			return nil, fmt.Errorf("failed to fetch tracks at offset %d: %w", offset, err)
		}

		var page services.TidalPlaylistItems
		if err := res.Decode(&page); err != nil {
			return nil, fmt.Errorf("%w: %w", shared.ErrAPIRequest, err)
		}

		for _, item := range page.Items {
			if item.Type != "" && item.Type != "track" {
				continue
			}
			export.Tracks = append(export.Tracks, item.Item.Model())
		}

		offset += len(page.Items)
		e.sendProgress(progress, fetchTracksUpdate(offset, page.TotalNumberOfItems, &export.Playlist))

		if len(page.Items) == 0 {
			break
		}
		if page.TotalNumberOfItems > 0 {
			if offset >= page.TotalNumberOfItems {
				break
			}
		} else if len(page.Items) < e.pageSize {
			break
		}
	}

	e.logger.Debug("exported playlist", "id", playlistID, "tracks", len(export.Tracks))
	return export, nil
}

// AddTracks adds any number of tracks to a playlist in batches of [services.MaxTracksPerAdd].
//
// Duplicate ids are dropped, keeping the first occurrence. Batches are sent in order and the
// first failing batch stops the operation; the returned result reports what was added before it.
func (e *PlaylistEngine) AddTracks(ctx context.Context, playlistID string, trackIDs []string, opts services.Params, progress chan<- ProgressUpdate) (*AddTracksResult, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}

	unique := dedupe(trackIDs)
	if playlistID == "" || len(unique) == 0 {
		return nil, fmt.Errorf("%w: playlist id and track ids are required", shared.ErrMissingArgument)
	}

	batches := chunk(unique, services.MaxTracksPerAdd)
	result := &AddTracksResult{PlaylistID: playlistID, Requested: len(trackIDs), Unique: len(unique)}

	for i, batch := range batches {
		if err := e.limiter.Wait(ctx); err != nil {
			return result, err
		}

		if _, err := e.srv.AddTracksToPlaylist(ctx, playlistID, batch, opts); err != nil {
			return result, fmt.Errorf("batch %d/%d failed: %w", i+1, len(batches), err)
		}

		result.Batches++
		result.Added += len(batch)
		e.sendProgress(progress, addTracksUpdate(i+1, len(batches), result.Added))
	}

	return result, nil
}

// CreatePlaylist creates a playlist in the root folder and, when trackIDs is non-empty, fills it with AddTracks.
func (e *PlaylistEngine) CreatePlaylist(ctx context.Context, name, description string, public bool, trackIDs []string, progress chan<- ProgressUpdate) (*models.Playlist, *AddTracksResult, error) {
	if err := e.ready(); err != nil {
		return nil, nil, err
	}
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, nil, err
	}

	res, err := e.srv.CreatePlaylist(ctx, services.Params{"name": name, "description": description, "isPublic": public})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create playlist: %w", err)
	}

	var item services.TidalFolderItem
	if err := res.Decode(&item); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", shared.ErrAPIRequest, err)
	}

	pl := item.Data.Model()
	if pl.ID == "" {
		pl.ID = strings.TrimPrefix(item.TRN, "trn:playlist:")
	}
	if pl.ID == "" {
		return nil, nil, fmt.Errorf("%w: create response did not include a playlist id", shared.ErrAPIRequest)
	}
	if pl.Name == "" {
		pl.Name = name
	}
	e.sendProgress(progress, createPlaylistUpdate(&pl))

	if len(trackIDs) == 0 {
		return &pl, nil, nil
	}

	added, err := e.AddTracks(ctx, pl.ID, trackIDs, nil, progress)
	return &pl, added, err
}

// SearchTracks runs a track-only search and returns the matches.
func (e *PlaylistEngine) SearchTracks(ctx context.Context, query string, limit int) ([]models.Track, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := services.Params{"query": query, "types": services.SearchTracks}
	if limit > 0 {
		params["limit"] = limit
	}

	res, err := e.srv.Search(ctx, params)
	if err != nil {
		return nil, err
	}

	var result services.TidalSearchResult
	if err := res.Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrAPIRequest, err)
	}

	tracks := make([]models.Track, 0, len(result.Tracks.Items))
	for _, t := range result.Tracks.Items {
		tracks = append(tracks, t.Model())
	}
	return tracks, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func chunk(ids []string, size int) [][]string {
	var batches [][]string
	for size < len(ids) {
		ids, batches = ids[size:], append(batches, ids[:size:size])
	}
	if len(ids) > 0 {
		batches = append(batches, ids)
	}
	return batches
}

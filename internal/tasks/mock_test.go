package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"golang.org/x/oauth2"

	"github.com/desertthunder/tdx/internal/services"
)

// mockService is a [services.Service] backed by canned playlists.
type mockService struct {
	mu sync.Mutex

	playlists  map[string]services.TidalPlaylist
	items      map[string][]services.TidalPlaylistItem
	folders    []services.TidalFolderPage // one page per call, indexed by cursor order
	search     []services.TidalTrack
	createResp string
	omitTotal  bool // leave totalNumberOfItems out of track pages

	infoErr  map[string]error
	addErrAt int // 1-based batch that fails, 0 for never
	addErr   error

	trackCalls  []services.Params
	folderCalls []services.Params
	addCalls    [][]string
	createCalls []services.Params
}

func toResponse(v any) (services.Response, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return services.Response(data), nil
}

func (m *mockService) Name() string         { return "TIDAL" }
func (m *mockService) Token() *oauth2.Token { return &oauth2.Token{AccessToken: "mock"} }

func (m *mockService) Refresh(context.Context, string) (services.Response, error) {
	return services.Response(`{}`), nil
}

func (m *mockService) GetUserData(context.Context) (services.Response, error) {
	return services.Response(`{"id":1}`), nil
}
func (m *mockService) GetUserSubscription(context.Context) (services.Response, error) {
	return services.Response(`{}`), nil
}
func (m *mockService) GetUserProfile(context.Context) (services.Response, error) {
	return services.Response(`{}`), nil
}
func (m *mockService) GetUserFollowers(context.Context) (services.Response, error) {
	return services.Response(`{}`), nil
}
func (m *mockService) GetUserFollowing(context.Context) (services.Response, error) {
	return services.Response(`{}`), nil
}
func (m *mockService) GetUserFavorites(context.Context, services.FavoriteType, services.Params) (services.Response, error) {
	return services.Response(`{}`), nil
}
func (m *mockService) GetUserFavoritesLastUpdated(context.Context) (services.Response, error) {
	return services.Response(`{}`), nil
}
func (m *mockService) GetTrackInfo(context.Context, string) (services.Response, error) {
	return services.Response(`{}`), nil
}

func (m *mockService) GetUserPlaylists(_ context.Context, opts services.Params) (services.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.folderCalls = append(m.folderCalls, opts)
	page := len(m.folderCalls) - 1
	if page >= len(m.folders) {
		return toResponse(services.TidalFolderPage{})
	}
	return toResponse(m.folders[page])
}

func (m *mockService) GetPlaylistInfo(_ context.Context, id string) (services.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.infoErr[id]; err != nil {
		return nil, err
	}
	pl, ok := m.playlists[id]
	if !ok {
		return nil, services.NewRequestError("Playlist not found", 404, "2001")
	}
	return toResponse(pl)
}

func (m *mockService) GetPlaylistTracks(_ context.Context, id string, opts services.Params) (services.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.trackCalls = append(m.trackCalls, opts)
	all := m.items[id]
	limit, _ := opts["limit"].(int)
	offset, _ := opts["offset"].(int)

	end := min(offset+limit, len(all))
	page := services.TidalPlaylistItems{Limit: limit, Offset: offset, TotalNumberOfItems: len(all)}
	if m.omitTotal {
		page.TotalNumberOfItems = 0
	}
	if offset < len(all) {
		page.Items = all[offset:end]
	}
	return toResponse(page)
}

func (m *mockService) CreatePlaylist(_ context.Context, opts services.Params) (services.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.createCalls = append(m.createCalls, opts)
	return services.Response(m.createResp), nil
}

func (m *mockService) AddTracksToPlaylist(_ context.Context, _ string, ids []string, _ services.Params) (services.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(ids) > services.MaxTracksPerAdd {
		return nil, services.NewTooManyTracksError("You can only add 50 tracks at a time.")
	}
	m.addCalls = append(m.addCalls, ids)
	if m.addErrAt == len(m.addCalls) {
		return nil, m.addErr
	}
	return toResponse(map[string]any{"addedItemIds": ids})
}

func (m *mockService) Search(_ context.Context, opts services.Params) (services.Response, error) {
	if opts["query"] == "" {
		return nil, services.NewMissingParametersError("You must provide a search query")
	}
	return toResponse(services.TidalSearchResult{Tracks: services.TidalSearchTracks{Items: m.search}})
}

var _ services.Service = (*mockService)(nil)

// newMockLibrary builds a service with playlists pl-1..pl-n, each holding tracks tracks.
func newMockLibrary(n, tracks int) *mockService {
	m := &mockService{
		playlists: map[string]services.TidalPlaylist{},
		items:     map[string][]services.TidalPlaylistItem{},
	}
	for i := 1; i <= n; i++ {
		id := fmt.Sprintf("pl-%d", i)
		m.playlists[id] = services.TidalPlaylist{
			UUID:           id,
			Title:          fmt.Sprintf("Playlist %d", i),
			NumberOfTracks: tracks,
			SquareImage:    "aa-bb",
		}
		for j := 0; j < tracks; j++ {
			m.items[id] = append(m.items[id], services.TidalPlaylistItem{
				Type: "track",
				Item: services.TidalTrack{
					ID:     i*1000 + j,
					Title:  fmt.Sprintf("Song %d", j),
					Artist: &services.TidalArtist{Name: "Artist"},
				},
			})
		}
	}
	return m
}

// libraryPage lists every canned playlist as a single folder page.
func (m *mockService) libraryPage() services.TidalFolderPage {
	var page services.TidalFolderPage
	for _, pl := range m.playlists {
		page.Items = append(page.Items, services.TidalFolderItem{ItemType: "PLAYLIST", Name: pl.Title, Data: pl})
	}
	page.TotalNumberOfItems = len(page.Items)
	return page
}

package services

import (
	"testing"
	"time"
)

func TestResponseDecode(t *testing.T) {
	res := Response(`{
		"limit": 100,
		"offset": 0,
		"totalNumberOfItems": 1,
		"items": [{
			"type": "track",
			"item": {
				"id": 77646168,
				"title": "Tick Tock",
				"duration": 215,
				"isrc": "USSM10903457",
				"artists": [{"id": 1, "name": "Kesha"}],
				"album": {"id": 2, "title": "Animal"}
			}
		}]
	}`)

	var page TidalPlaylistItems
	if err := res.Decode(&page); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if page.TotalNumberOfItems != 1 || len(page.Items) != 1 {
		t.Fatalf("unexpected page %+v", page)
	}

	track := page.Items[0].Item.Model()
	if track.ID != "77646168" || track.Artist != "Kesha" || track.Album != "Animal" || track.Duration != 215 {
		t.Errorf("unexpected track %+v", track)
	}
}

func TestPlaylistModel(t *testing.T) {
	p := TidalPlaylist{
		UUID:           "pl-1",
		Title:          "Mix",
		NumberOfTracks: 3,
		PublicPlaylist: true,
		Image:          "wide-image",
		SquareImage:    "square-image",
		LastUpdated:    "2023-04-01T12:30:00.000+0000",
	}

	m := p.Model()
	if m.ID != "pl-1" || m.Name != "Mix" || m.TrackCount != 3 || !m.Public {
		t.Errorf("unexpected playlist %+v", m)
	}
	if m.ImageID != "square-image" {
		t.Errorf("expected square image to be preferred, got %s", m.ImageID)
	}
	if !m.LastUpdated.Equal(time.Date(2023, 4, 1, 12, 30, 0, 0, time.UTC)) {
		t.Errorf("unexpected last updated %v", m.LastUpdated)
	}

	p.SquareImage = ""
	if p.Model().ImageID != "wide-image" {
		t.Error("expected fallback to the wide image")
	}
}

func TestParseTypes(t *testing.T) {
	if _, err := ParseFavoriteType("tracks"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if _, err := ParseFavoriteType("podcasts"); err == nil {
		t.Error("expected error for unknown favorite type")
	}

	all, err := ParseSearchTypes("all")
	if err != nil || len(all) != 1 || all[0] != SearchAll {
		t.Errorf("unexpected search types %v (%v)", all, err)
	}
}

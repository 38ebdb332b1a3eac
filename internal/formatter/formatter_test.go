package formatter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/tdx/internal/models"
	th "github.com/desertthunder/tdx/internal/testing"
)

func testExport() *models.PlaylistExport {
	return &models.PlaylistExport{
		Playlist: models.Playlist{
			ID:          "test123",
			Name:        "Test Playlist",
			Description: "A test playlist",
			TrackCount:  2,
			Public:      true,
			ImageID:     "aa-bb-cc",
		},
		Tracks: []models.Track{
			{
				ID:       "track1",
				Title:    "Song One",
				Artist:   "Artist One",
				Album:    "Album One",
				Duration: 180,
				ISRC:     "USRC12345678",
			},
			{
				ID:       "track2",
				Title:    "Song Two",
				Artist:   "Artist Two",
				Album:    "",
				Duration: 240,
				ISRC:     "USRC87654321",
				Explicit: true,
			},
		},
	}
}

func TestExporters(t *testing.T) {
	export := testExport()

	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(export)
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		output := string(data)

		if !strings.Contains(output, "ID,Title,Artist,Album,Duration,ISRC,Explicit") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, "track1,Song One,Artist One,Album One,180,USRC12345678,false") {
			t.Errorf("CSV missing track1 record, got: %s", output)
		}
		if !strings.Contains(output, "track2,Song Two,Artist Two,,240,USRC87654321,true") {
			t.Errorf("CSV missing track2 record, got: %s", output)
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		t.Run("without cover image", func(t *testing.T) {
			data, err := ExportToMarkdown(export, "")
			if err != nil {
				t.Fatalf("ExportToMarkdown failed: %v", err)
			}

			output := string(data)

			want := []string{
				"# Test Playlist",
				"**Description**: A test playlist",
				"**Tracks**: 2",
				"**Visibility**: Public",
				"**Listen**: <https://listen.tidal.com/playlist/test123>",
				"## Tracks",
				"1. Artist One - Song One (Album One) [3:00]",
				"2. Artist Two - Song Two [4:00]",
			}
			for _, w := range want {
				if !strings.Contains(output, w) {
					t.Errorf("Markdown missing %q", w)
				}
			}
			if strings.Contains(output, "![Cover]") {
				t.Errorf("Markdown should not reference a cover image")
			}
		})

		t.Run("with cover image", func(t *testing.T) {
			data, err := ExportToMarkdown(export, "cover.jpg")
			if err != nil {
				t.Fatalf("ExportToMarkdown failed: %v", err)
			}
			if !strings.Contains(string(data), "![Cover](cover.jpg)") {
				t.Errorf("Markdown missing cover image reference")
			}
		})
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(export)
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}

		output := string(data)
		if !strings.HasPrefix(output, "Playlist: Test Playlist\nDescription: A test playlist\nTracks: 2\n\n") {
			t.Errorf("unexpected text header: %q", output)
		}
		if !strings.Contains(output, "2. Artist Two - Song Two\n") {
			t.Errorf("Text missing track line")
		}
	})

	t.Run("ToMetadataJSON", func(t *testing.T) {
		data, err := ToMetadataJSON(export.Playlist)
		if err != nil {
			t.Fatalf("ToMetadataJSON failed: %v", err)
		}

		var got models.Playlist
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("metadata is not valid JSON: %v", err)
		}
		if got.ID != "test123" || got.Name != "Test Playlist" || got.ImageID != "aa-bb-cc" {
			t.Errorf("unexpected metadata %+v", got)
		}
		if strings.Contains(string(data), "track1") {
			t.Errorf("metadata should not include tracks")
		}
	})

	t.Run("ExportToJSON", func(t *testing.T) {
		data, err := ExportToJSON(export)
		if err != nil {
			t.Fatalf("ExportToJSON failed: %v", err)
		}

		var got models.PlaylistExport
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("export is not valid JSON: %v", err)
		}
		if got.Playlist.ID != "test123" || len(got.Tracks) != 2 || got.Tracks[0].ISRC != "USRC12345678" {
			t.Errorf("unexpected export %+v", got)
		}
	})
}

func TestDownloadImage(t *testing.T) {
	ctx := context.Background()

	t.Run("EmptyURL", func(t *testing.T) {
		if _, err := DownloadImage(ctx, nil, ""); err == nil {
			t.Error("DownloadImage with empty URL should return error")
		}
	})

	t.Run("Success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("jpegdata"))
		}))
		defer server.Close()

		data, err := DownloadImage(ctx, server.Client(), server.URL+"/images/aa/bb/640x640.jpg")
		if err != nil {
			t.Fatalf("DownloadImage failed: %v", err)
		}
		if string(data) != "jpegdata" {
			t.Errorf("unexpected image data %q", data)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		defer server.Close()

		_, err := DownloadImage(ctx, nil, server.URL)
		if err == nil || !strings.Contains(err.Error(), "status 404") {
			t.Errorf("expected status error, got %v", err)
		}
	})
}

func TestWriters(t *testing.T) {
	export := testExport()

	t.Run("WriteCSVExport", func(t *testing.T) {
		t.Run("WithDefaultPath", func(t *testing.T) {
			tempDir := t.TempDir()
			originalDir := th.MustGetwd(t)
			th.MustChdir(t, tempDir)
			defer th.MustChdir(t, originalDir)

			result, err := WriteCSVExport(export, "")
			if err != nil {
				t.Fatalf("WriteCSVExport failed: %v", err)
			}

			if result.TracksFile != "test123_tracks.csv" {
				t.Errorf("Expected 'test123_tracks.csv', got '%s'", result.TracksFile)
			}
			if result.MetadataFile != "test123_metadata.json" {
				t.Errorf("Expected 'test123_metadata.json', got '%s'", result.MetadataFile)
			}

			th.AssertFileExists(t, result.TracksFile)
			th.AssertFileExists(t, result.MetadataFile)
		})

		t.Run("WithCustomPath", func(t *testing.T) {
			base := filepath.Join(t.TempDir(), "custom")

			result, err := WriteCSVExport(export, base)
			if err != nil {
				t.Fatalf("WriteCSVExport failed: %v", err)
			}
			if result.TracksFile != base+"_tracks.csv" {
				t.Errorf("unexpected tracks file %s", result.TracksFile)
			}
			th.AssertFileExists(t, result.TracksFile)
		})

		t.Run("UnwritablePath", func(t *testing.T) {
			base := filepath.Join(t.TempDir(), "missing", "dir", "x")
			if _, err := WriteCSVExport(export, base); err == nil {
				t.Error("expected error for missing directory")
			}
		})
	})

	t.Run("WriteMarkdownExport", func(t *testing.T) {
		ctx := context.Background()

		t.Run("WithDefaultDirectory", func(t *testing.T) {
			tempDir := t.TempDir()
			originalDir := th.MustGetwd(t)
			th.MustChdir(t, tempDir)
			defer th.MustChdir(t, originalDir)

			result, err := WriteMarkdownExport(ctx, export, "", MarkdownOpts{})
			if err != nil {
				t.Fatalf("WriteMarkdownExport failed: %v", err)
			}

			if result.Directory != "test123" {
				t.Errorf("Expected directory 'test123', got '%s'", result.Directory)
			}
			th.AssertDirExists(t, "test123")
			th.AssertFileExists(t, filepath.Join("test123", "README.md"))

			if result.CoverImage != "" || result.CoverError != nil {
				t.Errorf("expected no cover handling, got %+v", result)
			}
		})

		t.Run("WithCoverImage", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("jpegdata"))
			}))
			defer server.Close()

			dir := filepath.Join(t.TempDir(), "out")
			result, err := WriteMarkdownExport(ctx, export, dir, MarkdownOpts{ImageURL: server.URL, Client: server.Client()})
			if err != nil {
				t.Fatalf("WriteMarkdownExport failed: %v", err)
			}

			if len(result.Files) != 2 {
				t.Errorf("expected cover and README, got %v", result.Files)
			}
			if th.MustReadFile(t, result.CoverImage) != "jpegdata" {
				t.Error("unexpected cover contents")
			}
			if !strings.Contains(th.MustReadFile(t, filepath.Join(dir, "README.md")), "![Cover](cover.jpg)") {
				t.Error("README should reference the cover")
			}
		})

		t.Run("CoverFailureIsNotFatal", func(t *testing.T) {
			server := httptest.NewServer(http.NotFoundHandler())
			defer server.Close()

			dir := filepath.Join(t.TempDir(), "out")
			result, err := WriteMarkdownExport(ctx, export, dir, MarkdownOpts{ImageURL: server.URL})
			if err != nil {
				t.Fatalf("WriteMarkdownExport failed: %v", err)
			}
			if result.CoverError == nil {
				t.Error("expected cover error to be reported")
			}
			if len(result.Files) != 1 {
				t.Errorf("expected only README, got %v", result.Files)
			}
		})
	})

	t.Run("WriteTextExport", func(t *testing.T) {
		t.Run("WithDefaultPath", func(t *testing.T) {
			tempDir := t.TempDir()
			originalDir := th.MustGetwd(t)
			th.MustChdir(t, tempDir)
			defer th.MustChdir(t, originalDir)

			path, err := WriteTextExport(export, "")
			if err != nil {
				t.Fatalf("WriteTextExport failed: %v", err)
			}
			if path != "test123_tracks.txt" {
				t.Errorf("Expected 'test123_tracks.txt', got '%s'", path)
			}
			th.AssertFileExists(t, path)
		})

		t.Run("WithCustomPath", func(t *testing.T) {
			custom := filepath.Join(t.TempDir(), "my_tracks.txt")
			path, err := WriteTextExport(export, custom)
			if err != nil {
				t.Fatalf("WriteTextExport failed: %v", err)
			}
			if path != custom {
				t.Errorf("Expected '%s', got '%s'", custom, path)
			}
		})
	})

	t.Run("WriteJSONExport", func(t *testing.T) {
		t.Run("WithDefaultPath", func(t *testing.T) {
			tempDir := t.TempDir()
			originalDir := th.MustGetwd(t)
			th.MustChdir(t, tempDir)
			defer th.MustChdir(t, originalDir)

			path, err := WriteJSONExport(export, "")
			if err != nil {
				t.Fatalf("WriteJSONExport failed: %v", err)
			}
			if path != "test123.json" {
				t.Errorf("Expected 'test123.json', got '%s'", path)
			}

			content := th.MustReadFile(t, path)
			if !strings.Contains(content, `"track1"`) {
				t.Errorf("JSON missing track data")
			}
		})
	})

	t.Run("WriteBulkExportManifest", func(t *testing.T) {
		t.Run("SuccessfulExport", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "manifest.json")

			result := &BulkExportResult{
				JobID:             "job-1",
				TotalPlaylists:    2,
				SuccessfulExports: 2,
				Results: []PlaylistExportResult{
					{PlaylistID: "playlist1", PlaylistName: "My Playlist 1", Success: true, Files: []string{"playlist1.json"}},
					{PlaylistID: "playlist2", PlaylistName: "My Playlist 2", Success: true, Files: []string{"playlist2.json"}},
				},
			}

			if err := WriteBulkExportManifest(result, "json", path); err != nil {
				t.Fatalf("WriteBulkExportManifest failed: %v", err)
			}

			var m manifest
			if err := json.Unmarshal([]byte(th.MustReadFile(t, path)), &m); err != nil {
				t.Fatalf("manifest is not valid JSON: %v", err)
			}
			if m.Format != "json" || m.JobID != "job-1" || m.TotalPlaylists != 2 || m.SuccessfulExports != 2 {
				t.Errorf("unexpected manifest header %+v", m)
			}
			if len(m.Playlists) != 2 || m.Playlists[0].Status != "success" || m.Playlists[0].Name != "My Playlist 1" {
				t.Errorf("unexpected manifest entries %+v", m.Playlists)
			}
		})

		t.Run("WithFailedExports", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "manifest.json")

			result := &BulkExportResult{
				TotalPlaylists:    2,
				SuccessfulExports: 1,
				FailedExports:     1,
				Results: []PlaylistExportResult{
					{PlaylistID: "playlist1", PlaylistName: "Success Playlist", Success: true},
					{PlaylistID: "playlist2", PlaylistName: "Failed Playlist", Error: errors.New("authentication failed")},
				},
			}

			if err := WriteBulkExportManifest(result, "markdown", path); err != nil {
				t.Fatalf("WriteBulkExportManifest failed: %v", err)
			}

			content := th.MustReadFile(t, path)
			if !strings.Contains(content, `"failed_exports": 1`) {
				t.Errorf("Manifest missing failed_exports count")
			}
			if !strings.Contains(content, `"status": "failed"`) {
				t.Errorf("Manifest missing failed status")
			}
			if !strings.Contains(content, `"authentication failed"`) {
				t.Errorf("Manifest missing error message")
			}
		})

		t.Run("UnwritablePath", func(t *testing.T) {
			err := WriteBulkExportManifest(&BulkExportResult{}, "json", filepath.Join(t.TempDir(), "no", "manifest.json"))
			if err == nil {
				t.Error("expected error for missing directory")
			}
		})
	})
}

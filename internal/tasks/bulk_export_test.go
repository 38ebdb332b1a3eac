package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/desertthunder/tdx/internal/formatter"
	"github.com/desertthunder/tdx/internal/services"
	th "github.com/desertthunder/tdx/internal/testing"
)

func TestBulkExport_SuccessfulExport(t *testing.T) {
	tests := []struct {
		name           string
		format         string
		playlistCount  int
		validateResult func(t *testing.T, result *formatter.BulkExportResult, dir string)
	}{
		{
			name:          "single playlist json export",
			format:        "json",
			playlistCount: 1,
			validateResult: func(t *testing.T, result *formatter.BulkExportResult, dir string) {
				if len(result.Results[0].Files) != 1 {
					t.Errorf("expected 1 file, got %d", len(result.Results[0].Files))
				}
				th.AssertFileExists(t, filepath.Join(dir, "pl-1.json"))
			},
		},
		{
			name:          "multiple playlists csv export",
			format:        "csv",
			playlistCount: 3,
			validateResult: func(t *testing.T, result *formatter.BulkExportResult, dir string) {
				for _, res := range result.Results {
					if len(res.Files) != 2 {
						t.Errorf("CSV export should create 2 files, got %d", len(res.Files))
					}
				}
				th.AssertFileExists(t, filepath.Join(dir, "pl-2_tracks.csv"))
			},
		},
		{
			name:          "text export",
			format:        "txt",
			playlistCount: 2,
			validateResult: func(t *testing.T, result *formatter.BulkExportResult, dir string) {
				th.AssertFileExists(t, filepath.Join(dir, "pl-1_tracks.txt"))
			},
		},
		{
			name:          "markdown export without covers",
			format:        "markdown",
			playlistCount: 2,
			validateResult: func(t *testing.T, result *formatter.BulkExportResult, dir string) {
				th.AssertFileExists(t, filepath.Join(dir, "pl-1", "README.md"))
				for _, res := range result.Results {
					if len(res.Files) != 1 {
						t.Errorf("expected README only, got %v", res.Files)
					}
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMockLibrary(tt.playlistCount, 3)
			e := newTestEngine(m)
			dir := filepath.Join(t.TempDir(), "out")

			ids := make([]string, 0, tt.playlistCount)
			for id := range m.playlists {
				ids = append(ids, id)
			}

			progress := make(chan ProgressUpdate, 100)
			result, err := e.BulkExport(context.Background(), progress, ids, BulkExportOpts{
				Format:     tt.format,
				OutputDir:  dir,
				NumWorkers: 2,
				NoCovers:   true,
			})
			if err != nil {
				t.Fatalf("BulkExport failed: %v", err)
			}

			if result.TotalPlaylists != tt.playlistCount || result.SuccessfulExports != tt.playlistCount || result.FailedExports != 0 {
				t.Errorf("unexpected counts %+v", result)
			}
			if len(result.Results) != tt.playlistCount {
				t.Errorf("expected %d results, got %d", tt.playlistCount, len(result.Results))
			}
			if result.JobID == "" {
				t.Error("expected a job id")
			}
			if result.ManifestPath != filepath.Join(dir, ManifestFilename) {
				t.Errorf("unexpected manifest path %s", result.ManifestPath)
			}
			th.AssertFileExists(t, result.ManifestPath)

			if len(drain(progress)) == 0 {
				t.Error("expected progress updates")
			}

			tt.validateResult(t, result, dir)
		})
	}
}

func TestBulkExport_PartialFailure(t *testing.T) {
	m := newMockLibrary(2, 1)
	m.infoErr = map[string]error{"pl-2": errors.New("boom")}
	e := newTestEngine(m)
	dir := t.TempDir()

	result, err := e.BulkExport(context.Background(), nil, []string{"pl-1", "pl-2", "missing"}, BulkExportOpts{OutputDir: dir})
	if err != nil {
		t.Fatalf("BulkExport failed: %v", err)
	}

	if result.SuccessfulExports != 1 || result.FailedExports != 2 {
		t.Errorf("expected 1 success and 2 failures, got %+v", result)
	}

	var manifest struct {
		Format    string `json:"format"`
		Playlists []struct {
			ID     string `json:"id"`
			Status string `json:"status"`
			Error  string `json:"error"`
		} `json:"playlists"`
	}
	if err := json.Unmarshal([]byte(th.MustReadFile(t, result.ManifestPath)), &manifest); err != nil {
		t.Fatalf("invalid manifest: %v", err)
	}
	if manifest.Format != "json" {
		t.Errorf("expected default json format, got %s", manifest.Format)
	}

	failed := 0
	for _, p := range manifest.Playlists {
		if p.Status == "failed" {
			failed++
			if p.Error == "" {
				t.Errorf("failed entry %s has no error", p.ID)
			}
		}
	}
	if failed != 2 {
		t.Errorf("expected 2 failed entries, got %d", failed)
	}
}

func TestBulkExport_AllPlaylists(t *testing.T) {
	m := newMockLibrary(2, 1)
	m.folders = []services.TidalFolderPage{m.libraryPage()}
	e := newTestEngine(m)

	result, err := e.BulkExport(context.Background(), nil, nil, BulkExportOpts{OutputDir: t.TempDir()})
	if err != nil {
		t.Fatalf("BulkExport failed: %v", err)
	}
	if result.TotalPlaylists != 2 || result.SuccessfulExports != 2 {
		t.Errorf("expected every listed playlist to be exported, got %+v", result)
	}
}

func TestBulkExport_Errors(t *testing.T) {
	t.Run("unwritable output directory", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "file")
		if err := os.WriteFile(file, nil, 0644); err != nil {
			t.Fatal(err)
		}

		_, err := newTestEngine(newMockLibrary(1, 1)).BulkExport(context.Background(), nil, []string{"pl-1"}, BulkExportOpts{
			OutputDir: filepath.Join(file, "out"),
		})
		if err == nil {
			t.Error("expected error when output directory cannot be created")
		}
	})

	t.Run("canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		result, err := newTestEngine(newMockLibrary(2, 1)).BulkExport(ctx, nil, []string{"pl-1", "pl-2"}, BulkExportOpts{OutputDir: t.TempDir()})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if result == nil || result.SuccessfulExports != 0 {
			t.Errorf("expected no successful exports, got %+v", result)
		}
	})
}

package tasks

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/desertthunder/tdx/internal/formatter"
	"github.com/desertthunder/tdx/internal/models"
	"github.com/desertthunder/tdx/internal/shared"
)

// ManifestFilename is the name of the summary written to a bulk export's output directory.
const ManifestFilename = "export_manifest.json"

// BulkExportOpts contains configuration for bulk playlist exports.
type BulkExportOpts struct {
	Format     string       // Export format: json, csv, markdown, txt
	OutputDir  string       // Base output directory (default: tidal_export_{epoch})
	NumWorkers int          // Concurrent file writers (default: 5, max: 10)
	CoverSize  int          // Cover edge length for markdown exports (default: formatter.DefaultCoverSize)
	NoCovers   bool         // Skip cover downloads for markdown exports
	Client     *http.Client // Client for cover downloads
}

// playlistExportJob is a fetched playlist waiting to be written.
type playlistExportJob struct {
	PlaylistID string
	Export     *models.PlaylistExport
}

// BulkExport exports multiple playlists concurrently with progress tracking.
//
// Playlists are fetched sequentially through the engine's rate limiter and handed to a pool of workers that write
// the files. With no ids every playlist in the user's root folder is exported. Individual failures are recorded in
// the result and the manifest rather than aborting the run.
func (e *PlaylistEngine) BulkExport(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	ids []string,
	opts BulkExportOpts,
) (*formatter.BulkExportResult, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}

	if opts.Format == "" {
		opts.Format = formatter.FormatJSON
	}
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("tidal_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 5
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.CoverSize <= 0 {
		opts.CoverSize = formatter.DefaultCoverSize
	}

	if len(ids) == 0 {
		playlists, err := e.ListPlaylists(ctx, prog)
		if err != nil {
			return nil, err
		}
		for _, pl := range playlists {
			ids = append(ids, pl.ID)
		}
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &formatter.BulkExportResult{
		JobID:           shared.GenerateID(),
		TotalPlaylists:  len(ids),
		OutputDirectory: opts.OutputDir,
		Results:         make([]formatter.PlaylistExportResult, 0, len(ids)),
	}
	logger := shared.WithLogger(e.logger, "job", result.JobID)
	logger.Info("starting bulk export", "playlists", len(ids), "format", opts.Format, "workers", opts.NumWorkers)

	jobs := make(chan playlistExportJob, len(ids))
	results := make(chan formatter.PlaylistExportResult, len(ids))

	var wg sync.WaitGroup
	for i := 0; i < opts.NumWorkers; i++ {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, jobs, results, opts)
	}

	go func() {
		defer close(jobs)
		for i, playlistID := range ids {
			if ctx.Err() != nil {
				return
			}

			export, err := e.ExportPlaylist(ctx, playlistID, nil)
			if err != nil {
				results <- formatter.PlaylistExportResult{
					PlaylistID:   playlistID,
					PlaylistName: fmt.Sprintf("Unknown (%s)", playlistID),
					Error:        err,
				}
				continue
			}

			e.sendProgress(prog, exportingPlaylistUpdate(i+1, len(ids), export.Playlist.Name))
			jobs <- playlistExportJob{PlaylistID: playlistID, Export: export}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)

		if res.Success {
			result.SuccessfulExports++
			e.sendProgress(prog, exportCompletedUpdate(completed, len(ids), res.PlaylistName, len(res.Files)))
		} else {
			result.FailedExports++
			logger.Warn("playlist export failed", "id", res.PlaylistID, "error", res.Error)
			e.sendProgress(prog, exportFailedUpdate(completed, len(ids), res.PlaylistName, res.Error))
		}
	}

	manifestPath := filepath.Join(opts.OutputDir, ManifestFilename)
	if err := formatter.WriteBulkExportManifest(result, opts.Format, manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath

	logger.Info("bulk export finished", "succeeded", result.SuccessfulExports, "failed", result.FailedExports)
	return result, ctx.Err()
}

// exportWorker writes playlists from the jobs channel until it is closed.
//
// It keeps draining after cancellation so the producer never blocks.
func (e *PlaylistEngine) exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan playlistExportJob,
	results chan<- formatter.PlaylistExportResult,
	opts BulkExportOpts,
) {
	defer wg.Done()

	for job := range jobs {
		if err := ctx.Err(); err != nil {
			results <- formatter.PlaylistExportResult{
				PlaylistID:   job.PlaylistID,
				PlaylistName: job.Export.Playlist.Name,
				Error:        err,
			}
			continue
		}
		results <- e.exportSinglePlaylist(ctx, job, opts)
	}
}

// exportSinglePlaylist exports a single playlist to the appropriate format.
func (e *PlaylistEngine) exportSinglePlaylist(
	ctx context.Context,
	j playlistExportJob,
	opts BulkExportOpts,
) formatter.PlaylistExportResult {
	result := formatter.PlaylistExportResult{
		PlaylistID:   j.PlaylistID,
		PlaylistName: j.Export.Playlist.Name,
		Files:        []string{},
	}

	switch opts.Format {
	case formatter.FormatCSV:
		baseFilepath := filepath.Join(opts.OutputDir, j.Export.Playlist.ID)
		csvRes, err := formatter.WriteCSVExport(j.Export, baseFilepath)
		if err != nil {
			result.Error = fmt.Errorf("CSV export failed: %w", err)
			return result
		}
		result.Files = []string{csvRes.TracksFile, csvRes.MetadataFile}

	case formatter.FormatMarkdown:
		outputDir := filepath.Join(opts.OutputDir, j.Export.Playlist.ID)

		mdOpts := formatter.MarkdownOpts{Client: opts.Client}
		if !opts.NoCovers {
			mdOpts.ImageURL = j.Export.Playlist.CoverURL(opts.CoverSize)
		}

		mdRes, err := formatter.WriteMarkdownExport(ctx, j.Export, outputDir, mdOpts)
		if err != nil {
			result.Error = fmt.Errorf("markdown export failed: %w", err)
			return result
		}
		if mdRes.CoverError != nil {
			e.logger.Warn("cover image skipped", "id", j.PlaylistID, "error", mdRes.CoverError)
		}
		result.Files = mdRes.Files

	case formatter.FormatText:
		txtPath := filepath.Join(opts.OutputDir, fmt.Sprintf("%s_tracks.txt", j.Export.Playlist.ID))
		path, err := formatter.WriteTextExport(j.Export, txtPath)
		if err != nil {
			result.Error = fmt.Errorf("text export failed: %w", err)
			return result
		}
		result.Files = []string{path}

	default:
		jsonPath := filepath.Join(opts.OutputDir, fmt.Sprintf("%s.json", j.Export.Playlist.ID))
		path, err := formatter.WriteJSONExport(j.Export, jsonPath)
		if err != nil {
			result.Error = fmt.Errorf("JSON export failed: %w", err)
			return result
		}
		result.Files = []string{path}
	}

	result.Success = true
	return result
}

package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/tdx/internal/formatter"
	"github.com/desertthunder/tdx/internal/models"
	"github.com/desertthunder/tdx/internal/services"
	"github.com/desertthunder/tdx/internal/shared"
	"github.com/desertthunder/tdx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// splitIDs flattens repeated and comma separated id arguments, dropping blanks.
func splitIDs(values []string) []string {
	var ids []string
	for _, v := range values {
		for _, id := range strings.Split(v, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
	}
	return ids
}

// printProgress writes progress messages until the channel is closed. The returned channel is
// closed once every message has been written.
func (r *Runner) printProgress(progress <-chan tasks.ProgressUpdate) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.writePlain("  %s\n", update.Message)
		}
	}()
	return done
}

// exportOpts merges the export flags over the [export] config section.
func (r *Runner) exportOpts(cmd *cli.Command) (tasks.BulkExportOpts, error) {
	opts := tasks.BulkExportOpts{
		Format:     r.config.Export.Format,
		OutputDir:  r.config.Export.OutputDir,
		NumWorkers: r.config.Export.Workers,
		CoverSize:  cmd.Int("cover-size"),
		NoCovers:   cmd.Bool("no-covers"),
		Client:     r.httpClient,
	}
	if v := cmd.String("format"); v != "" {
		opts.Format = strings.ToLower(v)
	}
	if v := cmd.String("output"); v != "" {
		opts.OutputDir = v
	}
	if cmd.IsSet("workers") {
		opts.NumWorkers = cmd.Int("workers")
	}

	switch opts.Format {
	case "", formatter.FormatJSON, formatter.FormatCSV, formatter.FormatMarkdown, formatter.FormatText:
	default:
		return opts, fmt.Errorf("%w: --format must be json, csv, markdown or txt, got %q", shared.ErrInvalidFlag, opts.Format)
	}
	return opts, nil
}

// PlaylistInfo prints playlist metadata.
func (r *Runner) PlaylistInfo(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireTidal(); err != nil {
		return err
	}

	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: playlist id", shared.ErrMissingArgument)
	}

	r.logger.Infof("fetching playlist %v", id)

	res, err := r.tidal.GetPlaylistInfo(ctx, id)
	if err != nil {
		return apiError(err, shared.ErrPlaylistNotFound)
	}
	if cmd.Bool("json") {
		return r.writeResponse(res, cmd)
	}

	var info services.TidalPlaylist
	if err := res.Decode(&info); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrAPIRequest, err)
	}
	pl := info.Model()

	r.writePlainHeader(pl.Name)
	if pl.Description != "" {
		r.writePlain("Description: %s\n", pl.Description)
	}
	r.writePlain("ID: %s\n", pl.ID)
	r.writePlain("Tracks: %d\n", pl.TrackCount)
	r.writePlain("Duration: %s\n", shared.FormatDuration(pl.Duration))
	r.writePlain("Visibility: %s\n", shared.VisibilityString(pl.Public))
	if !pl.LastUpdated.IsZero() {
		r.writePlain("Updated: %s\n", pl.LastUpdated.Format("2006-01-02 15:04"))
	}
	r.writePlain("URL: %s\n", pl.URL())
	return nil
}

// PlaylistTracks prints one page of a playlist's items.
func (r *Runner) PlaylistTracks(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireTidal(); err != nil {
		return err
	}

	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: playlist id", shared.ErrMissingArgument)
	}
	params, err := pageParams(cmd)
	if err != nil {
		return err
	}

	res, err := r.tidal.GetPlaylistTracks(ctx, id, params)
	if err != nil {
		return apiError(err, shared.ErrPlaylistNotFound)
	}
	if cmd.Bool("json") {
		return r.writeResponse(res, cmd)
	}

	var page services.TidalPlaylistItems
	if err := res.Decode(&page); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrAPIRequest, err)
	}

	r.writePlain("Items %d-%d of %d:\n\n", page.Offset+1, page.Offset+len(page.Items), page.TotalNumberOfItems)
	for i, item := range page.Items {
		t := item.Item.Model()
		r.writePlain("%d. %s - %s (%s)", page.Offset+i+1, t.Artist, t.Title, shared.FormatDuration(t.Duration))
		if item.Type != "" && item.Type != "track" {
			r.writePlain(" [%s]", item.Type)
		}
		r.writePlain("\n   ID: %s\n", t.ID)
	}
	return nil
}

// PlaylistCreate creates a playlist in the root folder and adds any --track ids to it.
func (r *Runner) PlaylistCreate(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireTidal(); err != nil {
		return err
	}

	name := cmd.StringArg("name")
	if name == "" {
		return fmt.Errorf("%w: playlist name", shared.ErrMissingArgument)
	}
	trackIDs := splitIDs(cmd.StringSlice("track"))
	useJSON := cmd.Bool("json")

	r.logger.Info("creating playlist", "name", name, "tracks", len(trackIDs))

	var progress chan tasks.ProgressUpdate
	var done <-chan struct{}
	if !useJSON {
		progress = make(chan tasks.ProgressUpdate, 50)
		done = r.printProgress(progress)
	}

	pl, added, err := r.engine.CreatePlaylist(ctx, name, cmd.String("description"), cmd.Bool("public"), trackIDs, progress)
	if progress != nil {
		close(progress)
		<-done
	}
	if pl == nil {
		return apiError(err, nil)
	}

	if useJSON {
		if jsonErr := r.writeJSON(struct {
			Playlist *models.Playlist       `json:"playlist"`
			Tracks   *tasks.AddTracksResult `json:"tracks,omitempty"`
		}{pl, added}, cmd.Bool("pretty")); jsonErr != nil {
			return jsonErr
		}
		return apiError(err, nil)
	}

	r.writePlainln("✓ Created %s", pl.Name)
	r.writePlain("ID: %s\n", pl.ID)
	r.writePlain("URL: %s\n", pl.URL())
	if added != nil {
		r.writePlain("Tracks added: %d of %d\n", added.Added, added.Unique)
	}
	if err != nil {
		return fmt.Errorf("playlist %s was created but not all tracks were added: %w", pl.ID, apiError(err, nil))
	}
	return nil
}

// PlaylistAdd adds tracks to an existing playlist in batches.
func (r *Runner) PlaylistAdd(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireTidal(); err != nil {
		return err
	}

	args := cmd.Args().Slice()
	if len(args) < 2 {
		return fmt.Errorf("%w: usage: tdx playlist add <playlist-id> <track-id>...", shared.ErrMissingArgument)
	}
	playlistID := args[0]
	trackIDs := splitIDs(args[1:])

	opts := services.Params{}
	if v := strings.ToUpper(cmd.String("on-dupes")); v != "" {
		switch d := services.OnDupes(v); d {
		case services.DupesFail, services.DupesAdd:
			opts["onDupes"] = d
		default:
			return fmt.Errorf("%w: --on-dupes must be FAIL or ADD", shared.ErrInvalidFlag)
		}
	}
	if v := strings.ToUpper(cmd.String("on-missing")); v != "" {
		switch a := services.OnArtifactNotFound(v); a {
		case services.ArtifactFail, services.ArtifactKeep, services.ArtifactReplace:
			opts["onArtifactNotFound"] = a
		default:
			return fmt.Errorf("%w: --on-missing must be FAIL, KEEP or REPLACE", shared.ErrInvalidFlag)
		}
	}

	r.logger.Info("adding tracks", "playlist", playlistID, "tracks", len(trackIDs))

	progress := make(chan tasks.ProgressUpdate, 50)
	done := r.printProgress(progress)
	result, err := r.engine.AddTracks(ctx, playlistID, trackIDs, opts, progress)
	close(progress)
	<-done

	if result != nil {
		if cmd.Bool("json") {
			if jsonErr := r.writeJSON(result, cmd.Bool("pretty")); jsonErr != nil {
				return jsonErr
			}
		} else {
			r.writePlain("✓ Added %d of %d tracks in %d batches\n", result.Added, result.Unique, result.Batches)
			if dupes := result.Requested - result.Unique; dupes > 0 {
				r.writePlain("  (%d duplicate ids skipped)\n", dupes)
			}
		}
	}
	if err != nil {
		return apiError(err, shared.ErrPlaylistNotFound)
	}
	return nil
}

// PlaylistExport fetches every track of a playlist. Without --output the export is printed in
// --format; with it, files are written the same way bulk-export writes them.
func (r *Runner) PlaylistExport(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireTidal(); err != nil {
		return err
	}

	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: playlist id", shared.ErrMissingArgument)
	}
	opts, err := r.exportOpts(cmd)
	if err != nil {
		return err
	}

	if cmd.IsSet("output") {
		opts.NumWorkers = 1
		return r.bulkExport(ctx, []string{id}, opts)
	}

	r.logger.Infof("exporting playlist %v", id)

	export, err := r.engine.ExportPlaylist(ctx, id, nil)
	if err != nil {
		return apiError(err, shared.ErrPlaylistNotFound)
	}

	var data []byte
	switch opts.Format {
	case formatter.FormatCSV:
		data, err = formatter.ExportToCSV(export)
	case formatter.FormatMarkdown:
		data, err = formatter.ExportToMarkdown(export, "")
	case formatter.FormatText:
		data, err = formatter.ExportToText(export)
	default:
		data, err = formatter.ExportToJSON(export)
	}
	if err != nil {
		return err
	}

	r.logger.Infof("playlist %v exported with %v tracks", export.Playlist.Name, len(export.Tracks))
	return r.writePlain("%s\n", strings.TrimRight(string(data), "\n"))
}

// PlaylistBulkExport exports the given playlists, or all of them, concurrently.
func (r *Runner) PlaylistBulkExport(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireTidal(); err != nil {
		return err
	}

	opts, err := r.exportOpts(cmd)
	if err != nil {
		return err
	}
	return r.bulkExport(ctx, splitIDs(cmd.Args().Slice()), opts)
}

func (r *Runner) bulkExport(ctx context.Context, ids []string, opts tasks.BulkExportOpts) error {
	if len(ids) == 0 {
		r.writePlain("Exporting all playlists to %s...\n", opts.OutputDir)
	} else {
		r.writePlain("Exporting %d playlists to %s...\n", len(ids), opts.OutputDir)
	}

	progress := make(chan tasks.ProgressUpdate, 100)
	done := r.printProgress(progress)
	result, err := r.engine.BulkExport(ctx, progress, ids, opts)
	close(progress)
	<-done

	if result == nil {
		return apiError(err, nil)
	}

	r.writePlain("\n")
	r.writePlainHeader("Export Complete")
	r.writePlain("Job: %s\n", result.JobID)
	r.writePlain("Succeeded: %d/%d\n", result.SuccessfulExports, result.TotalPlaylists)
	if result.FailedExports > 0 {
		r.writePlain("Failed: %d\n", result.FailedExports)
		for _, res := range result.Results {
			if res.Error != nil {
				r.writePlain("  - %s: %v\n", res.PlaylistName, res.Error)
			}
		}
	}
	r.writePlain("Output: %s\n", result.OutputDirectory)
	if result.ManifestPath != "" {
		r.writePlain("Manifest: %s\n", result.ManifestPath)
	}
	return err
}

// PlaylistOpen opens a playlist in the web player.
func (r *Runner) PlaylistOpen(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: playlist id", shared.ErrMissingArgument)
	}

	url := models.Playlist{ID: id}.URL()
	if err := shared.OpenBrowser(url); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlain("Open this URL in your browser:\n%s\n", url)
		return nil
	}
	return r.writePlain("→ Opened %s\n", url)
}

package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/tdx/internal/services"
	"github.com/desertthunder/tdx/internal/shared"
	"github.com/urfave/cli/v3"
)

// TrackInfo prints track metadata.
func (r *Runner) TrackInfo(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireTidal(); err != nil {
		return err
	}

	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: track id", shared.ErrMissingArgument)
	}

	res, err := r.tidal.GetTrackInfo(ctx, id)
	if err != nil {
		return apiError(err, shared.ErrTrackNotFound)
	}
	if cmd.Bool("json") {
		return r.writeResponse(res, cmd)
	}

	var track services.TidalTrack
	if err := res.Decode(&track); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrAPIRequest, err)
	}
	t := track.Model()

	r.writePlain("%s - %s\n", t.Artist, t.Title)
	if t.Album != "" {
		r.writePlain("Album: %s\n", t.Album)
	}
	r.writePlain("ID: %s\n", t.ID)
	r.writePlain("Duration: %s\n", shared.FormatDuration(t.Duration))
	if t.ISRC != "" {
		r.writePlain("ISRC: %s\n", t.ISRC)
	}
	if track.AudioQuality != "" {
		r.writePlain("Quality: %s\n", track.AudioQuality)
	}
	if t.Explicit {
		r.writePlain("Explicit: yes\n")
	}
	return nil
}

// Search queries the catalog. Track-only searches print a readable list; other types print JSON.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireTidal(); err != nil {
		return err
	}

	query := cmd.StringArg("query")
	if query == "" {
		return fmt.Errorf("%w: search query", shared.ErrMissingArgument)
	}

	types, err := services.ParseSearchTypes(cmd.String("types"))
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrInvalidFlag, err)
	}
	limit := cmd.Int("limit")

	r.logger.Info("searching", "query", query, "types", types)

	if len(types) == 1 && types[0] == services.SearchTracks && !cmd.Bool("json") {
		tracks, err := r.engine.SearchTracks(ctx, query, limit)
		if err != nil {
			return apiError(err, nil)
		}

		r.writePlain("Found %d tracks:\n\n", len(tracks))
		for i, t := range tracks {
			r.writePlain("%d. %s - %s (%s)\n", i+1, t.Artist, t.Title, shared.FormatDuration(t.Duration))
			if t.Album != "" {
				r.writePlain("   Album: %s\n", t.Album)
			}
			r.writePlain("   ID: %s\n", t.ID)
		}
		return nil
	}

	params := services.Params{"query": query, "types": types}
	if limit > 0 {
		params["limit"] = limit
	}
	res, err := r.tidal.Search(ctx, params)
	if err != nil {
		return apiError(err, nil)
	}
	return r.writeResponse(res, cmd)
}

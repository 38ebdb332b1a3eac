package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/tdx/internal/services"
	"github.com/desertthunder/tdx/internal/shared"
	"github.com/urfave/cli/v3"
)

// pageParams collects the paging and ordering flags that were set on cmd.
func pageParams(cmd *cli.Command) (services.Params, error) {
	p := services.Params{}
	if cmd.IsSet("limit") {
		p["limit"] = cmd.Int("limit")
	}
	if cmd.IsSet("offset") {
		p["offset"] = cmd.Int("offset")
	}

	if v := strings.ToUpper(cmd.String("order")); v != "" {
		switch order := services.PlaylistOrderType(v); order {
		case services.OrderDate, services.OrderName, services.OrderArtist, services.OrderAlbum:
			p["order"] = order
		default:
			return nil, fmt.Errorf("%w: --order must be DATE, NAME, ARTIST or ALBUM", shared.ErrInvalidFlag)
		}
	}

	if v := strings.ToUpper(cmd.String("direction")); v != "" {
		switch dir := services.OrderDirection(v); dir {
		case services.OrderAsc, services.OrderDesc:
			p["orderDirection"] = dir
		default:
			return nil, fmt.Errorf("%w: --direction must be ASC or DESC", shared.ErrInvalidFlag)
		}
	}

	return p, nil
}

// userCall runs a parameterless user endpoint and prints the raw response.
func (r *Runner) userCall(ctx context.Context, cmd *cli.Command, name string, fn func(context.Context) (services.Response, error)) error {
	r.logger.Infof("fetching %v", name)

	res, err := fn(ctx)
	if err != nil {
		return apiError(err, nil)
	}
	return r.writeResponse(res, cmd)
}

// UserInfo prints the account details of the signed-in user.
func (r *Runner) UserInfo(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireTidal(); err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.userCall(ctx, cmd, "user data", r.tidal.GetUserData)
	}

	res, err := r.tidal.GetUserData(ctx)
	if err != nil {
		return apiError(err, nil)
	}

	var user services.TidalUser
	if err := res.Decode(&user); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrAPIRequest, err)
	}

	r.writePlainHeader(displayName(user))
	r.writePlain("ID: %d\n", user.ID)
	if user.Email != "" {
		r.writePlain("Email: %s\n", user.Email)
	}
	if user.CountryCode != "" {
		r.writePlain("Country: %s\n", user.CountryCode)
	}
	if user.Created != "" {
		r.writePlain("Member since: %s\n", user.Created)
	}
	return nil
}

// UserSubscription prints the subscription of the signed-in user.
func (r *Runner) UserSubscription(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireTidal(); err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.userCall(ctx, cmd, "subscription", r.tidal.GetUserSubscription)
	}

	res, err := r.tidal.GetUserSubscription(ctx)
	if err != nil {
		return apiError(err, nil)
	}

	var sub services.TidalSubscription
	if err := res.Decode(&sub); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrAPIRequest, err)
	}

	r.writePlain("Subscription: %s\n", sub.Subscription.Type)
	r.writePlain("Status: %s\n", sub.Status)
	if sub.ValidUntil != "" {
		r.writePlain("Valid until: %s\n", sub.ValidUntil)
	}
	if sub.HighestSoundQuality != "" {
		r.writePlain("Highest quality: %s\n", sub.HighestSoundQuality)
	}
	return nil
}

// UserProfile prints the public profile.
func (r *Runner) UserProfile(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireTidal(); err != nil {
		return err
	}
	return r.userCall(ctx, cmd, "profile", r.tidal.GetUserProfile)
}

// UserFollowers prints the profiles following the user.
func (r *Runner) UserFollowers(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireTidal(); err != nil {
		return err
	}
	return r.userCall(ctx, cmd, "followers", r.tidal.GetUserFollowers)
}

// UserFollowing prints the profiles the user follows.
func (r *Runner) UserFollowing(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireTidal(); err != nil {
		return err
	}
	return r.userCall(ctx, cmd, "following", r.tidal.GetUserFollowing)
}

// UserFavoritesUpdated prints when each favorites collection last changed.
func (r *Runner) UserFavoritesUpdated(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireTidal(); err != nil {
		return err
	}
	return r.userCall(ctx, cmd, "favorites timestamps", r.tidal.GetUserFavoritesLastUpdated)
}

// UserFavorites prints one page of a favorites collection.
func (r *Runner) UserFavorites(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireTidal(); err != nil {
		return err
	}

	raw := cmd.StringArg("type")
	if raw == "" {
		return fmt.Errorf("%w: favorites type (albums, artists, playlists, tracks or videos)", shared.ErrMissingArgument)
	}
	favType, err := services.ParseFavoriteType(raw)
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrInvalidArgument, err)
	}

	params, err := pageParams(cmd)
	if err != nil {
		return err
	}

	r.logger.Info("fetching favorites", "type", favType)

	res, err := r.tidal.GetUserFavorites(ctx, favType, params)
	if err != nil {
		return apiError(err, nil)
	}
	return r.writeResponse(res, cmd)
}

// UserPlaylists lists the user's playlists, one page or (with --all) every page.
func (r *Runner) UserPlaylists(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireTidal(); err != nil {
		return err
	}

	if cmd.Bool("all") {
		playlists, err := r.engine.ListPlaylists(ctx, nil)
		if err != nil {
			return apiError(err, nil)
		}
		if cmd.Bool("json") {
			return r.writeJSON(playlists, cmd.Bool("pretty"))
		}

		r.writePlain("Found %d playlists:\n\n", len(playlists))
		for i, p := range playlists {
			r.writePlain("%d. %s\n", i+1, p.Name)
			if p.Description != "" {
				r.writePlain("   Description: %s\n", p.Description)
			}
			r.writePlain("   ID: %s\n", p.ID)
			r.writePlain("   Tracks: %d\n", p.TrackCount)
			r.writePlain("   Visibility: %s\n", shared.VisibilityString(p.Public))
			r.writePlain("\n")
		}
		return nil
	}

	params, err := pageParams(cmd)
	if err != nil {
		return err
	}

	r.logger.Info("listing playlists", "params", params)

	res, err := r.tidal.GetUserPlaylists(ctx, params)
	if err != nil {
		return apiError(err, nil)
	}
	if cmd.Bool("json") {
		return r.writeResponse(res, cmd)
	}

	var page services.TidalFolderPage
	if err := res.Decode(&page); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrAPIRequest, err)
	}

	r.writePlain("Showing %d of %d items:\n\n", len(page.Items), page.TotalNumberOfItems)
	for i, item := range page.Items {
		if item.ItemType != "PLAYLIST" {
			r.writePlain("%d. [%s] %s\n\n", i+1, strings.ToLower(item.ItemType), item.Name)
			continue
		}
		pl := item.Data.Model()
		r.writePlain("%d. %s\n", i+1, pl.Name)
		r.writePlain("   ID: %s\n", pl.ID)
		r.writePlain("   Tracks: %d\n", pl.TrackCount)
		r.writePlain("   Visibility: %s\n\n", shared.VisibilityString(pl.Public))
	}
	if page.Cursor != "" {
		r.writePlain("More playlists available; use --all to list every page.\n")
	}
	return nil
}

package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/tdx/internal/services"
	"github.com/desertthunder/tdx/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthStatus checks the session by fetching the signed-in user.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireTidal(); err != nil {
		return err
	}

	r.logger.Info("checking auth status")

	res, err := r.tidal.GetUserData(ctx)
	if err != nil {
		return apiError(err, nil)
	}

	if cmd.Bool("json") {
		return r.writeResponse(res, cmd)
	}

	var user services.TidalUser
	if err := res.Decode(&user); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrAPIRequest, err)
	}

	tok := r.tidal.Token()
	r.writePlain("✓ Authenticated as %s (ID: %d)\n", displayName(user), user.ID)
	if user.CountryCode != "" {
		r.writePlain("Country: %s\n", user.CountryCode)
	}
	if tok.RefreshToken != "" {
		r.writePlain("Refresh token: available\n")
	} else {
		r.writePlain("Refresh token: not configured\n")
	}
	return nil
}

// AuthRefresh exchanges a refresh token for a new access token and prints it.
//
// Nothing is written to disk; the new token must be copied into the config or environment.
func (r *Runner) AuthRefresh(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireTidal(); err != nil {
		return err
	}

	refreshToken := cmd.String("refresh-token")
	r.logger.Info("refreshing access token")

	res, err := r.tidal.Refresh(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, services.ErrMissingParameters) {
			return fmt.Errorf("%w: pass --refresh-token or set %s", shared.ErrNoRefreshToken, shared.EnvRefreshToken)
		}
		return fmt.Errorf("%w: %w", shared.ErrRefreshFailed, err)
	}

	if cmd.Bool("json") {
		return r.writeResponse(res, cmd)
	}

	tok := r.tidal.Token()
	r.writePlain("✓ Access token refreshed\n")
	if !tok.Expiry.IsZero() {
		r.writePlain("Expires: %s\n", tok.Expiry.Format("2006-01-02 15:04:05"))
	}
	r.writePlainln("Update %s or export the new values:", r.configPath)
	r.writePlain("%s=%s\n", shared.EnvAccessToken, tok.AccessToken)
	r.writePlain("%s=%s\n", shared.EnvRefreshToken, tok.RefreshToken)
	return nil
}

// AuthImport extracts credentials from a cURL command saved from the browser's network tab
// and prints them as a config section.
func (r *Runner) AuthImport(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: path to a file containing a cURL command", shared.ErrMissingArgument)
	}

	r.logger.Info("parsing cURL command for TIDAL credentials", "file", path)

	creds, err := shared.ParseCurlFile(path)
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrInvalidInput, err)
	}

	if creds.UserID == "" {
		r.logger.Warn("no user id found in request URL; set user_id manually")
	}

	r.writePlain("# Add to %s\n", r.configPath)
	r.writePlain("%s", creds.ToTOML())
	return nil
}

func displayName(u services.TidalUser) string {
	switch {
	case u.Username != "":
		return u.Username
	case u.FirstName != "" || u.LastName != "":
		return fmt.Sprintf("%s %s", u.FirstName, u.LastName)
	case u.Email != "":
		return u.Email
	default:
		return "unknown"
	}
}

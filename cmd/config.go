package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/tdx/internal/shared"
	"github.com/urfave/cli/v3"
)

// ConfigInit writes the example configuration to the --config path.
func (r *Runner) ConfigInit(ctx context.Context, cmd *cli.Command) error {
	path := r.configPath
	if path == "" {
		path = "config.toml"
	}

	r.logger.Info("creating config file from template", "path", path)
	if err := shared.CreateConfigFile(path); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrInvalidArgument, err)
	}

	r.writePlain("✓ Config written to %s\n", path)
	r.writePlainln("Next steps:")
	r.writePlain("1. Set credentials.tidal.access_token, refresh_token and user_id\n")
	r.writePlain("   (or run 'tdx auth import <curl.sh>' to extract them from the web player)\n")
	r.writePlain("2. Run 'tdx auth status' to check the session\n")
	return nil
}

// ConfigCheck validates the loaded configuration and reports where credentials come from.
func (r *Runner) ConfigCheck(ctx context.Context, cmd *cli.Command) error {
	if _, err := os.Stat(r.configPath); err != nil {
		return fmt.Errorf("%w: %s", shared.ErrMissingConfig, r.configPath)
	}
	if err := r.config.Validate(); err != nil {
		return err
	}

	creds := r.config.Credentials.Tidal
	r.writePlainHeader("Configuration")
	r.writePlain("File: %s\n", r.configPath)
	r.writePlain("Access token: %s\n", sourceOf(creds.AccessToken, shared.EnvAccessToken))
	r.writePlain("Refresh token: %s\n", sourceOf(creds.RefreshToken, shared.EnvRefreshToken))
	r.writePlain("User ID: %s\n", sourceOf(creds.UserID, shared.EnvUserID))
	r.writePlain("Region: %s / %s", creds.CountryCode, creds.Locale)
	if r.config.Client.SessionRegion {
		r.writePlain(" (sent with requests)\n")
	} else {
		r.writePlain(" (requests use US / en_us)\n")
	}
	r.writePlain("Body encoding: %s\n", r.config.Client.BodyEncoding)
	r.writePlain("Export: %s → %s (%d workers, %.1f req/s)\n",
		r.config.Export.Format, r.config.Export.OutputDir, r.config.Export.Workers, r.config.Export.RateLimit)

	if r.tidal == nil {
		return r.requireTidal()
	}
	return nil
}

func sourceOf(value, env string) string {
	switch {
	case value == "":
		return "not set"
	case os.Getenv(env) != "":
		return "set ($" + env + ")"
	default:
		return "set"
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/desertthunder/tdx/internal/services"
	"github.com/desertthunder/tdx/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)
	runner := NewRunner(RunnerOpts{Logger: logger})

	app := newApp(runner)

	if err := app.Run(context.Background(), os.Args); err != nil {
		var te *services.TidalError
		switch {
		case errors.As(err, &te) && te.Kind == services.KindRequest && te.Status > 0:
			logger.Fatal(describeRequestError(te), "error", err)
		case errors.Is(err, shared.ErrNotAuthenticated):
			logger.Fatalf("%v\nrun 'tdx config init' to create a config file", err)
		default:
			logger.Fatalf("application error: %v", err)
		}
	}
}

func newApp(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tdx",
		Usage:   "Browse, build and export TIDAL playlists",
		Version: "0.3.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
				Sources: cli.EnvVars("TDX_CONFIG"),
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
		},
		Before:   r.Configure,
		Commands: r.register(),
	}
}

func describeRequestError(te *services.TidalError) string {
	if te.SubStatus != "" {
		return fmt.Sprintf("TIDAL returned %d (substatus %s): %s", te.Status, te.SubStatus, te.Message)
	}
	return fmt.Sprintf("TIDAL returned %d: %s", te.Status, te.Message)
}

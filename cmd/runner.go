package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tdx/internal/services"
	"github.com/desertthunder/tdx/internal/shared"
	"github.com/desertthunder/tdx/internal/tasks"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config
	configPath string
	tidal      services.Service
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	engine     *tasks.PlaylistEngine
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Tidal      services.Service
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	r := &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		tidal:      opts.Tidal,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
	r.engine = r.newEngine()
	return r
}

func (r *Runner) newEngine() *tasks.PlaylistEngine {
	return tasks.NewPlaylistEngine(r.tidal,
		tasks.WithRateLimit(r.config.Export.RateLimit),
		tasks.WithEngineLogger(shared.WithLogger(r.logger, "component", "engine")),
	)
}

// SetLogger replaces the runner's logger, e.g. to redirect output while the TUI owns the terminal.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
	r.engine = r.newEngine()
}

// Configure loads the config file named by --config, applies TIDAL_* environment overrides and
// builds the TIDAL session. Missing credentials are not an error here; commands that need a session
// report them through [Runner.requireTidal].
func (r *Runner) Configure(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("debug") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	r.configPath = cmd.String("config")
	config := shared.DefaultConfig()
	if _, err := os.Stat(r.configPath); err == nil {
		loaded, err := shared.LoadConfig(r.configPath)
		if err != nil {
			return ctx, err
		}
		config = loaded
	} else {
		r.logger.Debug("config file not found, using defaults", "path", r.configPath)
	}
	config.ApplyEnv(os.Getenv)
	r.config = config

	if r.tidal == nil {
		srv, err := NewTidalService(config, r.httpClient, r.logger)
		var te *services.TidalError
		switch {
		case err == nil:
			r.tidal = srv
		case errors.As(err, &te):
			r.logger.Debug("tidal session unavailable", "error", err)
		default:
			return ctx, err
		}
	}

	r.engine = r.newEngine()
	return ctx, nil
}

// NewTidalService builds a TIDAL client from the credentials and client settings in cfg.
//
// Refreshed tokens are logged but never written back to disk.
func NewTidalService(cfg *shared.Config, client *http.Client, logger *log.Logger) (*services.TidalService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	if client == nil {
		client = &http.Client{}
	}
	if t := cfg.Client.Timeout(); t > 0 && client.Timeout == 0 {
		c := *client
		c.Timeout = t
		client = &c
	}

	encoding := services.BodyForm
	if cfg.Client.BodyEncoding == "json" {
		encoding = services.BodyJSON
	}

	opts := []services.Option{
		services.WithHTTPClient(client),
		services.WithLogger(shared.WithLogger(logger, "service", "tidal")),
		services.WithBodyEncoding(encoding),
		services.WithTokenRefreshCallback(func(tok *oauth2.Token) {
			logger.Debug("session token updated", "expiry", tok.Expiry, "has_refresh_token", tok.RefreshToken != "")
		}),
	}
	if cfg.Client.V1URL != "" && cfg.Client.V2URL != "" {
		opts = append(opts, services.WithBaseURLs(cfg.Client.V1URL, cfg.Client.V2URL))
	}
	if cfg.Client.TokenURL != "" {
		opts = append(opts, services.WithTokenURL(cfg.Client.TokenURL))
	}
	if cfg.Client.SessionRegion {
		opts = append(opts, services.WithSessionRegion())
	}

	creds := cfg.Credentials.Tidal
	return services.NewTidalService(services.TidalConfig{
		AccessToken:  creds.AccessToken,
		UserID:       creds.UserID,
		RefreshToken: creds.RefreshToken,
		ClientID:     creds.ClientID,
		CountryCode:  creds.CountryCode,
		Locale:       creds.Locale,
	}, opts...)
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		configCommand, authCommand, userCommand, playlistCommand, trackCommand, searchCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// requireTidal reports whether a TIDAL session could be built from the current configuration.
func (r *Runner) requireTidal() error {
	if r.tidal == nil {
		return fmt.Errorf(
			"%w: set credentials.tidal.access_token and user_id in %s or export %s and %s",
			shared.ErrNotAuthenticated, r.configPath, shared.EnvAccessToken, shared.EnvUserID,
		)
	}
	return nil
}

// apiError classifies a client error for the command layer. notFound is used for 404 responses.
func apiError(err error, notFound error) error {
	var te *services.TidalError
	if !errors.As(err, &te) || te.Kind != services.KindRequest {
		return err
	}

	switch {
	case te.Status == http.StatusUnauthorized:
		return fmt.Errorf("%w: %w", shared.ErrInvalidCredentials, err)
	case te.Status == http.StatusNotFound && notFound != nil:
		return fmt.Errorf("%w: %w", notFound, err)
	case te.Status == 0 || te.Status >= http.StatusInternalServerError:
		return fmt.Errorf("%w: %w", shared.ErrServiceUnavailable, err)
	default:
		return fmt.Errorf("%w: %w", shared.ErrAPIRequest, err)
	}
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return err
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

// writeResponse prints a raw API response, indented unless --pretty=false.
func (r *Runner) writeResponse(res services.Response, cmd *cli.Command) error {
	if res == nil {
		return r.writePlain("(empty response)\n")
	}
	return r.writeJSON(res, cmd.Bool("pretty"))
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}

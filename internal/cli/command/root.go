// Package command provides the accessmatic CLI command definitions.
//
// It uses urfave/cli/v2 for parsing. Global flags override the
// ACCESSMATIC_* environment settings loaded by internal/config.
package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	sdk "github.com/accessmatic/dashboard/sdk/go"
	"github.com/accessmatic/dashboard/sdk/go/internal/cli/output"
	"github.com/accessmatic/dashboard/sdk/go/internal/config"
	"github.com/accessmatic/dashboard/sdk/go/telemetry/promhooks"
	"github.com/accessmatic/dashboard/sdk/go/telemetry/zerologhooks"
)

// Build information, set via ldflags.
var (
	Commit    = "unknown"
	BuildTime = "unknown"
)

const runtimeKey = "runtime"

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "accessmatic",
		Usage:   "AccessMatic dashboard from the command line",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", sdk.Version, Commit, BuildTime),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			LoginCommand(),
			RegisterCommand(),
			LogoutCommand(),
			WhoamiCommand(),
			DocumentsCommand(),
			APIKeysCommand(),
			AnalyticsCommand(),
			SummaryCommand(),
			SnippetCommand(),
		},
		Before: setup,
		After:  teardown,
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "api-url",
			Aliases: []string{"u"},
			Usage:   "AccessMatic API base URL (default from ACCESSMATIC_API_URL)",
		},
		&cli.StringFlag{
			Name:    "api-key",
			Aliases: []string{"k"},
			Usage:   "Widget API key sent with each request",
			EnvVars: []string{"ACCESSMATIC_API_KEY"},
		},
		&cli.StringFlag{
			Name:  "session-backend",
			Usage: "Credential store: file, sqlite or memory",
		},
		&cli.StringFlag{
			Name:  "session-dir",
			Usage: "Directory holding the stored credential",
		},
		&cli.StringFlag{
			Name:  "env-file",
			Usage: "Dotenv file loaded before reading ACCESSMATIC_* variables",
			Value: ".env",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json",
			Value:   "table",
		},
		&cli.StringFlag{
			Name:  "metrics-file",
			Usage: "Write request metrics in Prometheus text format to this file on exit",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"V"},
			Usage:   "Enable debug logging",
		},
	}
}

// GlobalFlags defines flags available to all commands.
type GlobalFlags struct {
	APIURL         string
	APIKey         string
	SessionBackend string
	SessionDir     string
	EnvFile        string
	Output         string
	MetricsFile    string
	Verbose        bool
}

// ParseGlobalFlags extracts global flags from context.
func ParseGlobalFlags(c *cli.Context) *GlobalFlags {
	return &GlobalFlags{
		APIURL:         c.String("api-url"),
		APIKey:         c.String("api-key"),
		SessionBackend: c.String("session-backend"),
		SessionDir:     c.String("session-dir"),
		EnvFile:        c.String("env-file"),
		Output:         c.String("output"),
		MetricsFile:    c.String("metrics-file"),
		Verbose:        c.Bool("verbose"),
	}
}

// Runtime is the per-invocation state shared by commands.
type Runtime struct {
	Config   config.Config
	Client   *sdk.Client
	Sessions *sdk.SessionManager
	Format   output.Format
	Logger   zerolog.Logger

	closer      io.Closer
	registry    *prometheus.Registry
	metricsFile string
}

func setup(c *cli.Context) error {
	flags := ParseGlobalFlags(c)
	cfg, err := config.Load(flags.EnvFile)
	if err != nil {
		return err
	}
	if flags.APIURL != "" {
		cfg.APIURL = flags.APIURL
	}
	if flags.SessionBackend != "" {
		cfg.SessionBackend = flags.SessionBackend
	}
	if flags.SessionDir != "" {
		cfg.SessionDir = flags.SessionDir
	}
	if err := cfg.Normalize(); err != nil {
		return err
	}
	format, err := output.ParseFormat(flags.Output)
	if err != nil {
		return err
	}

	logger := newLogger(c.App.ErrWriter, cfg.LogLevel, flags.Verbose)
	hooks := zerologhooks.New(logger)

	rt := &Runtime{Config: cfg, Format: format, Logger: logger}
	if flags.MetricsFile != "" {
		rt.registry = prometheus.NewRegistry()
		promHooks, _, err := promhooks.New(rt.registry)
		if err != nil {
			return err
		}
		hooks = sdk.MergeTelemetry(hooks, promHooks)
		rt.metricsFile = flags.MetricsFile
	}

	ctx, cancel := context.WithTimeout(c.Context, cfg.Timeout)
	defer cancel()
	store, closer, err := cfg.OpenSession(ctx)
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	rt.closer = closer

	client, err := sdk.NewClient(sdk.Config{
		BaseURL:   cfg.APIURL,
		Session:   store,
		APIKey:    flags.APIKey,
		Telemetry: hooks,
	})
	if err != nil {
		_ = closer.Close()
		return err
	}
	rt.Client = client
	rt.Sessions = sdk.NewSessionManager(client)
	c.App.Metadata[runtimeKey] = rt
	logger.Debug().Str("api_url", client.BaseURL()).Str("session_backend", cfg.SessionBackend).Msg("cli ready")
	return nil
}

func teardown(c *cli.Context) error {
	rt, ok := c.App.Metadata[runtimeKey].(*Runtime)
	if !ok {
		return nil
	}
	delete(c.App.Metadata, runtimeKey)
	var errs []error
	if rt.registry != nil {
		if err := prometheus.WriteToTextfile(rt.metricsFile, rt.registry); err != nil {
			errs = append(errs, fmt.Errorf("write metrics: %w", err))
		}
	}
	if rt.closer != nil {
		if err := rt.closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close session store: %w", err))
		}
	}
	return errors.Join(errs...)
}

func newLogger(w io.Writer, level string, verbose bool) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.WarnLevel
	}
	if verbose {
		lvl = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, NoColor: true}).Level(lvl).With().Timestamp().Logger()
}

// GetRuntime retrieves the runtime created by the app's Before hook.
func GetRuntime(c *cli.Context) (*Runtime, error) {
	if rt, ok := c.App.Metadata[runtimeKey].(*Runtime); ok {
		return rt, nil
	}
	return nil, errors.New("cli runtime not initialized")
}

// Context returns a context bounded by the configured timeout.
func (rt *Runtime) Context(c *cli.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Context, rt.Config.Timeout)
}

// Print writes data to the app's stdout in the selected format.
func (rt *Runtime) Print(c *cli.Context, data any) error {
	return output.NewFormatter(rt.Format).Format(c.App.Writer, data)
}

// wrapAuthError points the user at login when the backend rejected the
// stored credential.
func wrapAuthError(err error) error {
	if sdk.IsAuthRejection(err) {
		return fmt.Errorf("%w (run `accessmatic login`)", err)
	}
	return err
}

// message is a one-line result.
type message struct {
	Message string `json:"message"`
}

func (m message) Table() output.Table {
	return output.Table{Rows: [][]string{{m.Message}}}
}

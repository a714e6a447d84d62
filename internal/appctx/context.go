// Package appctx provides application context helpers.
package appctx

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/glambook/glambook-cli/internal/api"
	"github.com/glambook/glambook-cli/internal/config"
	"github.com/glambook/glambook-cli/internal/observability"
	"github.com/glambook/glambook-cli/internal/output"
	"github.com/glambook/glambook-cli/internal/secrets"
	"github.com/glambook/glambook-cli/internal/session"
)

// contextKey is a private type for context keys.
type contextKey string

const appKey contextKey = "app"

// App holds the shared application context for all commands.
type App struct {
	Config  *config.Config
	Secrets secrets.Store
	Session *session.Manager
	API     *api.Client
	Output  *output.Writer

	// Observability
	Collector *observability.SessionCollector
	Hooks     *observability.CLIHooks

	// Flags holds the global flag values
	Flags GlobalFlags
}

// GlobalFlags holds values for global CLI flags.
type GlobalFlags struct {
	// Output format flags
	JSON   bool
	Quiet  bool
	Styled bool // Force ANSI styled output (even when piped)
	JQ     string

	// Context flags
	Host string
	Role string

	// Behavior flags
	Verbose int // 0=off, 1=requests, 2=requests+lifecycle events (stacks with -v -v or -vv)
	Stats   bool
}

// NewApp creates a new App with the given configuration.
func NewApp(cfg *config.Config) *App {
	store := secrets.New(cfg.SecretsDir)
	sess := session.NewManager(cfg, store)

	// Collector always runs; hooks control trace verbosity and ApplyFlags
	// sets the actual level from -v flags.
	collector := observability.NewSessionCollector()
	hooks := &observability.CLIHooks{
		Collector: collector,
		Trace:     observability.NewTraceWriter(os.Stderr),
	}

	client := api.NewClient(cfg, store, sess, api.WithHooks(hooks))

	format := output.FormatAuto
	switch cfg.Format {
	case "json":
		format = output.FormatJSON
	case "styled":
		format = output.FormatStyled
	case "quiet":
		format = output.FormatQuiet
	}

	return &App{
		Config:    cfg,
		Secrets:   store,
		Session:   sess,
		API:       client,
		Collector: collector,
		Hooks:     hooks,
		Output: output.New(output.Options{
			Format: format,
			Writer: os.Stdout,
		}),
	}
}

// ApplyFlags applies global flag values to the app configuration.
func (a *App) ApplyFlags() {
	// Apply output format from flags (order matters: specific modes first)
	format := a.Output
	switch {
	case a.Flags.Quiet:
		format = output.New(output.Options{Format: output.FormatQuiet, Writer: os.Stdout, JQ: a.Flags.JQ})
	case a.Flags.JSON:
		format = output.New(output.Options{Format: output.FormatJSON, Writer: os.Stdout, JQ: a.Flags.JQ})
	case a.Flags.Styled:
		format = output.New(output.Options{Format: output.FormatStyled, Writer: os.Stdout, JQ: a.Flags.JQ})
	case a.Flags.JQ != "":
		format = output.New(output.Options{Format: output.FormatAuto, Writer: os.Stdout, JQ: a.Flags.JQ})
	}
	a.Output = format

	// Determine verbosity level from flags and GBK_DEBUG env var
	verboseLevel := a.Flags.Verbose
	if debugEnv := os.Getenv("GBK_DEBUG"); debugEnv != "" {
		if level, err := strconv.Atoi(debugEnv); err == nil {
			if level > verboseLevel {
				verboseLevel = level
			}
		} else if debugEnv == "true" {
			verboseLevel = 2
		}
	}
	a.Hooks.Level = verboseLevel

	// Verbose mode also enables debug logging via slog
	if verboseLevel > 0 {
		debugLogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		slog.SetDefault(debugLogger)
		a.Session.SetLogger(debugLogger)
		a.API.SetLogger(debugLogger)
	}
}

// OK outputs a success response, appending a stats line if --stats is set.
func (a *App) OK(data any, opts ...output.ResponseOption) error {
	if err := a.Output.OK(data, opts...); err != nil {
		return err
	}
	a.maybePrintStats()
	return nil
}

// Err outputs an error response.
func (a *App) Err(err error) error {
	if outputErr := a.Output.Err(err); outputErr != nil {
		return outputErr
	}
	a.maybePrintStats()
	return nil
}

// maybePrintStats writes a compact stats line to stderr. Suppressed in quiet
// mode, which is meant for programmatic consumption.
func (a *App) maybePrintStats() {
	if !a.Flags.Stats || a.Collector == nil || a.Flags.Quiet {
		return
	}
	m := a.Collector.Snapshot()

	var parts []string
	if m.WallTime < time.Second {
		parts = append(parts, fmt.Sprintf("%dms", m.WallTime.Milliseconds()))
	} else {
		parts = append(parts, fmt.Sprintf("%.1fs", m.WallTime.Seconds()))
	}
	if m.Requests == 1 {
		parts = append(parts, "1 request")
	} else {
		parts = append(parts, fmt.Sprintf("%d requests", m.Requests))
	}
	if m.AuthRetries > 0 {
		parts = append(parts, fmt.Sprintf("%d auth retries", m.AuthRetries))
	}
	if m.Failures > 0 {
		parts = append(parts, fmt.Sprintf("%d failed", m.Failures))
	}
	if m.Cancelled > 0 {
		parts = append(parts, fmt.Sprintf("%d cancelled", m.Cancelled))
	}

	fmt.Fprintf(os.Stderr, "\nStats: %s\n", strings.Join(parts, " | "))
}

// IsInteractive returns true if prompting the user makes sense: stdout is a
// terminal and no machine output mode is requested.
func (a *App) IsInteractive() bool {
	if a.Flags.JSON || a.Flags.Quiet {
		return false
	}
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

// WithApp stores the app in the context.
func WithApp(ctx context.Context, app *App) context.Context {
	return context.WithValue(ctx, appKey, app)
}

// FromContext retrieves the app from the context.
func FromContext(ctx context.Context) *App {
	app, _ := ctx.Value(appKey).(*App)
	return app
}

// Command minescope is the terminal dashboard for the mining research API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/minescope/internal/api"
	"github.com/abelbrown/minescope/internal/config"
	"github.com/abelbrown/minescope/internal/coord"
	"github.com/abelbrown/minescope/internal/logging"
	"github.com/abelbrown/minescope/internal/otel"
	"github.com/abelbrown/minescope/internal/state"
	"github.com/abelbrown/minescope/internal/ui"
)

const version = "0.1.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fatal("Failed to load config: %v", err)
	}

	apiURL := flag.String("api", cfg.API.URL, "backend base URL")
	timeout := flag.Duration("timeout", cfg.API.Timeout.Std(), "per-request timeout (0 disables)")
	user := flag.String("user", cfg.API.Username, "username for auto login")
	pass := flag.String("password", cfg.API.Password, "password for auto login")
	rowHeight := flag.Int("rows", cfg.UI.RowHeight, "lines per article row")
	autoLogin := flag.Bool("login", cfg.UI.AutoLogin, "log in with the given credentials on start")
	debug := flag.Bool("debug", cfg.UI.DebugOverlay, "start with the debug overlay open")
	trace := flag.Bool("trace", os.Getenv("MINESCOPE_TRACE") != "", "record every UI message in the event log")
	flag.Parse()

	if err := logging.Init(version); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logging: %v\n", err)
	}
	defer logging.Close()

	// Event log next to the config file
	events, closeEvents := openEventLog()
	defer closeEvents()
	ring := otel.NewRingBuffer(256)
	events.SetRingBuffer(ring)
	events.Info(otel.KindStartup, "main", "minescope "+version)
	otel.SetTrace(*trace)

	t := *timeout
	if t == 0 {
		t = -1
	}
	client, err := api.New(api.Options{BaseURL: *apiURL, Timeout: t})
	if err != nil {
		fatal("Invalid API configuration: %v", err)
	}
	logging.Info("API client ready", "url", client.BaseURL(), "timeout", t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var program *tea.Program
	st := state.New()
	c := coord.New(client, st, coord.Options{
		Events: events,
		Notify: func(ev coord.Event) {
			if program != nil {
				program.Send(ui.OpEvent{Event: ev})
			}
		},
	})

	var login ui.LoginFunc
	if *autoLogin && *user != "" && *pass != "" {
		u, p := *user, *pass
		login = func(ctx context.Context) error {
			return c.Login(ctx, u, p)
		}
	}

	app := ui.NewApp(ui.CoordinatorCommands(ctx, c, login), ui.Options{
		RowHeight: *rowHeight,
		Events:    events,
		Ring:      ring,
		Debug:     *debug,
		Now:       time.Now,
	})
	program = tea.NewProgram(app, tea.WithAltScreen())

	logging.Info("Starting UI")
	if _, err := program.Run(); err != nil {
		logging.Error("Application error", "error", err)
		cancel()
		fatal("Error: %v", err)
	}
	events.Info(otel.KindShutdown, "main", "exit")
	logging.Info("minescope exiting normally")
}

// openEventLog opens ~/.minescope/minescope.events.jsonl, falling back to a
// discarding logger when the file cannot be created.
func openEventLog() (*otel.Logger, func()) {
	dir := config.Dir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		logging.Warn("event log disabled", "error", err)
		l := otel.NewNullLogger()
		return l, func() { closeEventLog(l) }
	}
	f, err := os.OpenFile(filepath.Join(dir, "minescope.events.jsonl"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		logging.Warn("event log disabled", "error", err)
		l := otel.NewNullLogger()
		return l, func() { closeEventLog(l) }
	}
	l := otel.NewLogger(f)
	return l, func() {
		closeEventLog(l)
		f.Close()
	}
}

func closeEventLog(l *otel.Logger) {
	if n := l.Close(); n > 0 {
		logging.Warn("events dropped from the event log", "count", n)
	}
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

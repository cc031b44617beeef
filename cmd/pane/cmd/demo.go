package cmd

import (
	"context"
	stderrors "errors"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/go-drift/pane/cmd/pane/internal/scene"
	"github.com/go-drift/pane/pkg/backend/term"
	"github.com/go-drift/pane/pkg/config"
	"github.com/go-drift/pane/pkg/engine"
	"github.com/go-drift/pane/pkg/errors"
	"github.com/go-drift/pane/pkg/store"
)

const progressInterval = 100 * time.Millisecond

func init() {
	RegisterCommand(&Command{
		Name:  "demo",
		Short: "Run the demo in the terminal",
		Long: `Run the demo scene in the current terminal.

Click the toggle to pause or resume the progress bar. Press Ctrl-C to quit.
Settings are read from pane.yaml in the config directory when present. With
a debug address, frame traces, the widget tree and Prometheus metrics are
served over HTTP while the demo runs.`,
		Usage: "pane demo [-config DIR] [-debug ADDR] [-log FILE]",
		Run:   runDemo,
	})
}

func runDemo(args []string) error {
	fs := flag.NewFlagSet("demo", flag.ContinueOnError)
	dir := fs.String("config", ".", "directory containing pane.yaml")
	debugAddr := fs.String("debug", "", "debug server address, overrides debug.addr")
	logPath := fs.String("log", "", "append widget errors to this file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.LoadOptional(*dir)
	if err != nil {
		return err
	}
	if *debugAddr != "" {
		cfg.Debug.Addr = *debugAddr
	}

	// The terminal is owned by the backend, so errors go to a file or
	// nowhere.
	var sink io.Writer = io.Discard
	if *logPath != "" {
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		defer f.Close()
		sink = f
	}

	var current atomic.Pointer[engine.Loop]
	backend, err := term.New(term.WithWake(func() {
		if l := current.Load(); l != nil {
			l.Post(func() {})
		}
	}))
	if err != nil {
		return err
	}
	if err := backend.Init(); err != nil {
		return err
	}
	defer backend.Fini()

	reg := engine.NewDebugRegistry()
	loop, err := engine.NewFromConfig(cfg, store.New(), engine.Options{
		Source:     backend,
		Backend:    backend,
		WindowSize: backend.Size(),
		Metrics:    engine.NewMetrics(reg),
	})
	if err != nil {
		return err
	}
	prev := errors.SetHandler(&errors.LogHandler{
		Logger:  slog.New(slog.NewJSONHandler(sink, nil)),
		Verbose: cfg.Errors.Verbose,
	})
	defer errors.SetHandler(prev)
	current.Store(loop)

	sc, err := scene.Build(loop, backend)
	if err != nil {
		return err
	}

	server, err := engine.ServeDebug(cfg, loop, reg)
	if err != nil {
		return err
	}
	if server != nil {
		defer server.Stop(context.Background())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer cancel()
		return loop.Run(ctx)
	})
	g.Go(func() error {
		ticker := time.NewTicker(progressInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				loop.Post(func() { sc.Advance(0.01) })
			}
		}
	})

	if err := g.Wait(); err != nil && !stderrors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

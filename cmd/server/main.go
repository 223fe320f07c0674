package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"github.com/zeusync/gaim/internal/config"
	"github.com/zeusync/gaim/internal/core/observability/log"
	"github.com/zeusync/gaim/internal/injector"
)

func main() {
	path := flag.String("config", os.Getenv("GAIM_CONFIG"), "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err = run(ctx, injector.InitializeApp(cfg)); err != nil {
		fmt.Fprintln(os.Stderr, "server:", err)
		os.Exit(1)
	}
}

// run drives the loop and the enabled hosts until ctx ends or the loop
// stops. The loop ending for any reason shuts the hosts down.
func run(ctx context.Context, app *injector.App) error {
	logger := app.Logger
	if l, ok := logger.(interface{ Sync() error }); ok {
		defer func() { _ = l.Sync() }()
	}

	if app.Config.Demo.Enabled {
		installDemo(app.Runtime, app.Config.Demo.Players)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel()
		err := app.Runtime.Run(gctx, app.Config.Loop.Step)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return errors.Wrap(err, "loop")
	})
	if app.WebSocket != nil {
		g.Go(func() error { return app.WebSocket.Serve(gctx) })
	}
	if app.QUIC != nil {
		g.Go(func() error { return app.QUIC.Serve(gctx) })
	}

	logger.Info("server started",
		log.Bool("websocket", app.WebSocket != nil),
		log.Bool("quic", app.QUIC != nil),
		log.Bool("demo", app.Config.Demo.Enabled))

	err := g.Wait()
	logger.Info("server stopped", log.Error(err))
	return err
}

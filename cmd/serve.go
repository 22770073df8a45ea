package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/Nishad-30/vibelist-ai/internal/server"
	"github.com/urfave/cli/v3"
)

// Serve runs the web UI until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	if host := cmd.String("host"); host != "" {
		r.config.Server.Host = host
	}
	if port := cmd.Int("port"); port > 0 {
		r.config.Server.Port = port
	}

	db, history, err := r.openHistory()
	if err != nil {
		return err
	}
	defer db.Close()

	opts := server.ServerOpts{
		Config:  r.config,
		Curator: r.curator,
		Spotify: r.spotify,
		History: history,
		Logger:  r.logger,
	}
	if engine, err := r.newEngine(history); err != nil {
		r.logger.Warn("running in suggestion-only mode", "err", err)
	} else {
		opts.Engine = engine
	}

	srv, err := server.NewServer(opts)
	if err != nil {
		return err
	}

	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return srv.Start(runCtx)
}

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"picomap/internal/config"
	"picomap/internal/nvim"
	"picomap/internal/rpc"
	"picomap/internal/server"
	"picomap/internal/trace"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the editor over MessagePack-RPC on stdin/stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			tracer, cleanup, err := setupTracing(cmd, cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			stopProfiling, err := setupProfiling(cmd)
			if err != nil {
				return err
			}
			defer stopProfiling()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
			defer stop()

			if err := serve(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), cfg); err != nil {
				dumpRing(cmd.ErrOrStderr(), tracer)
				return err
			}
			return nil
		},
	}
}

// serve runs the RPC reader and the event loop until the editor closes the
// stream, ctx is cancelled, or either side fails. The tracer comes from ctx.
func serve(ctx context.Context, r io.Reader, w io.Writer, cfg config.Config) error {
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeServer, "serve", 0)
	defer span.End("")

	conn := rpc.NewConn(r, w, rpc.Options{Tracer: tracer})
	srv := server.New(nvim.NewClient(conn), cfg, tracer)

	// The connection outlives ctx until Run has closed the window.
	connCtx, stopConn := context.WithCancel(context.WithoutCancel(ctx))
	defer stopConn()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := conn.Serve(connCtx); err != nil {
			return fmt.Errorf("rpc: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		defer stopConn()
		return srv.Run(gctx, conn.Notifications())
	})
	return g.Wait()
}

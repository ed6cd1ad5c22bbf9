package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/aretw0/aastree/internal/cli"
	httpAdapter "github.com/aretw0/aastree/pkg/adapters/http"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve [FILE...]",
	Short: "Start the HTTP server",
	Long: `Opens the given package files and exposes the editing session as a JSON API
over HTTP, with Server-Sent Events for edits and store changes and Prometheus
metrics on /metrics.`,
	RunE: withEnv(func(cmd *cobra.Command, args []string, env *cli.Env) error {
		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = env.Config.HTTP.Addr
		}

		sess := env.NewSession()
		for _, path := range args {
			if _, err := sess.Open(path); err != nil {
				return err
			}
		}

		opts := []httpAdapter.Option{
			httpAdapter.WithLogger(env.Logger),
			httpAdapter.WithMetrics(promhttp.HandlerFor(env.Registry, promhttp.HandlerOpts{})),
		}
		if w := env.Watcher(); w != nil {
			opts = append(opts, httpAdapter.WithWatcher(w))
		}

		srv := &http.Server{
			Addr:    addr,
			Handler: httpAdapter.NewHandler(sess, opts...),
		}

		serverErrors := make(chan error, 1)
		go func() {
			env.Logger.Info("Starting aastree server", "addr", srv.Addr, "packages", len(args))
			fmt.Fprintf(os.Stderr, "Listening on %s\n", srv.Addr)
			serverErrors <- srv.ListenAndServe()
		}()

		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()

		select {
		case err := <-serverErrors:
			return fmt.Errorf("server error: %w", err)

		case <-sigCtx.Done():
			env.Logger.Info("Start shutdown", "signal", sigCtx.Signal())

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				env.Logger.Error("Graceful shutdown did not complete", "err", err)
				if err := srv.Close(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("error killing server: %w", err)
				}
			}
			env.Logger.Info("Server stopped gracefully")
			return nil
		}
	}),
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Address to listen on (default from config)")
}

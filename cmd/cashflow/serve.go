package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/warp/cashflow-engine/api"
	"github.com/warp/cashflow-engine/cashflow"
	"github.com/warp/cashflow-engine/hebrew"
	"github.com/warp/cashflow-engine/store/sqlite"
)

// serveCmd starts the HTTP API.
//
// GRACEFUL SHUTDOWN:
//
//	On SIGINT/SIGTERM:
//	1. Stop the refresh scheduler
//	2. Stop accepting new connections
//	3. Wait for active requests to complete (30s timeout)
//	4. Close database connection
func serveCmd() *cobra.Command {
	var (
		port    int
		refresh time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := sqlite.New(dbPath, sqlite.WithLogger(log.Logger))
			if err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}
			defer store.Close()

			handler := api.NewHandler(store, cashflow.NewProjector(hebrew.Calendar{}), log.Logger)
			router := api.NewRouter(handler)

			scheduler := api.NewRefreshScheduler(handler)
			scheduler.CheckInterval = refresh
			scheduler.Enabled = refresh > 0
			scheduler.Start()

			server := &http.Server{
				Addr:         fmt.Sprintf(":%d", port),
				Handler:      router,
				ReadTimeout:  15 * time.Second,
				WriteTimeout: 15 * time.Second,
				IdleTimeout:  60 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				log.Info().Int("port", port).Str("db", dbPath).Msg("server starting")
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- err
				}
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			select {
			case err := <-errCh:
				return fmt.Errorf("server failed: %w", err)
			case <-quit:
			}

			log.Info().Msg("shutting down server")
			scheduler.Stop()

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if err := server.Shutdown(ctx); err != nil {
				return fmt.Errorf("server forced to shutdown: %w", err)
			}

			log.Info().Msg("server stopped")
			return nil
		},
	}

	cmd.Flags().IntVar(&port, "port", 8080, "HTTP server port")
	cmd.Flags().DurationVar(&refresh, "refresh", time.Hour, "interval between background projections (0 disables)")
	return cmd
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/quakeboard/internal/api"
	"github.com/sells-group/quakeboard/internal/grid"
)

var (
	servePort     int
	serveSnapshot bool
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the dashboard API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if servePort != 0 {
			cfg.Server.Port = servePort
		}
		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		// A dataset that fails to load is fatal: the dashboard has nothing to show.
		engine, err := loadEngine(ctx)
		if err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if serveSnapshot {
			n, err := st.SaveSnapshot(ctx, engine.Dataset())
			if err != nil {
				return eris.Wrap(err, "save snapshot")
			}
			zap.L().Info("snapshot saved", zap.Int64("records", n))
		}

		builder, err := grid.NewBuilder(cfg.Dataset.Locale, cfg.Grid.PinnedTop)
		if err != nil {
			return err
		}

		server := api.NewServer(engine, builder, st)
		if cfg.Server.CacheEntries > 0 {
			server.WithCache(api.NewResponseCache(cfg.Server.CacheEntries, cfg.Server.CacheTTL))
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:           server.Router(cfg.Server.CORSOrigins),
			ReadHeaderTimeout: 10 * time.Second,
		}

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			zap.L().Info("starting server",
				zap.Int("port", cfg.Server.Port),
				zap.Int("records", engine.Dataset().Len()),
			)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return eris.Wrap(err, "server listen")
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return eris.Wrap(srv.Shutdown(shutdownCtx), "server shutdown")
		})

		return g.Wait()
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	serveCmd.Flags().BoolVar(&serveSnapshot, "snapshot", false, "copy the loaded dataset into the store before serving")
	rootCmd.AddCommand(serveCmd)
}

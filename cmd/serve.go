package cmd

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"fieldstock/internal/config"
	"fieldstock/internal/core/container"
	"fieldstock/internal/core/logger"
	"fieldstock/internal/core/routes"
	"fieldstock/internal/database"
	"fieldstock/internal/database/migration"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

var ServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		inMemory, _ := cmd.Flags().GetBool("in-memory")

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if err := cfg.Validate(inMemory); err != nil {
			return err
		}

		log := logger.NewLoggerWithLevel(cfg.Log.Level)
		defer func() { _ = log.Sync() }()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		var db *sql.DB
		if !inMemory {
			if cfg.Auto.Migrate {
				source, err := migration.SourceURL(cfg.Migrate.Dir)
				if err != nil {
					return err
				}
				if err := migration.Migrate(cfg.Database.URL, source, false, log); err != nil {
					return fmt.Errorf("migrate database: %w", err)
				}
			}

			db, err = database.NewPostgresConnection(ctx, cfg.Database.URL)
			if err != nil {
				return err
			}
			defer db.Close()
			log.Info("Connected to the database")
		}

		c, err := container.NewAppContainer(ctx, cfg, db, log)
		if err != nil {
			return fmt.Errorf("failed to build application: %w", err)
		}
		defer func() {
			if err := c.Close(); err != nil {
				log.Warn("Failed to release resources", zap.Error(err))
			}
		}()

		server := &http.Server{
			Addr:              cfg.App.Host,
			Handler:           routes.NewRouter(c),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			log.Info("Starting server", zap.String("addr", cfg.App.Host))
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			if err != nil {
				return fmt.Errorf("server stopped: %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		log.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		return server.Shutdown(shutdownCtx)
	},
}

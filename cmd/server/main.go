package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Simplici0/paint.works/internal/assistant"
	"github.com/Simplici0/paint.works/internal/catalog"
	"github.com/Simplici0/paint.works/internal/config"
	"github.com/Simplici0/paint.works/internal/db"
	"github.com/Simplici0/paint.works/internal/logging"
	"github.com/Simplici0/paint.works/internal/migrations"
	"github.com/Simplici0/paint.works/internal/seed"
	"github.com/Simplici0/paint.works/internal/store"
)

type app struct {
	cfg    config.Config
	logger *zap.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "paint-works",
		Short:         "Paint estimates for floor plans",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger, err := logging.New(cfg.LogLevel)
			if err != nil {
				return err
			}
			zap.ReplaceGlobals(logger)
			a.cfg = cfg
			a.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.AddCommand(
		newServeCmd(a),
		newMigrateCmd(a),
		newSeedCmd(a),
		newEstimateCmd(a),
	)
	return root
}

func newServeCmd(a *app) *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx, migrate || a.cfg.IsDev())
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply database migrations before serving (always on in development)")
	return cmd
}

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := db.Open(cmd.Context(), a.cfg.DBPath)
			if err != nil {
				return err
			}
			defer database.Close()

			if err := migrations.Up(cmd.Context(), database); err != nil {
				return err
			}
			version, err := migrations.Version(cmd.Context(), database)
			if err != nil {
				return err
			}
			a.logger.Info("database migrated", zap.String("db_path", a.cfg.DBPath), zap.Int64("version", version))
			return nil
		},
	}
}

func newSeedCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the admin user and the paint catalog when missing",
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := db.Open(cmd.Context(), a.cfg.DBPath)
			if err != nil {
				return err
			}
			defer database.Close()
			return a.seed(cmd.Context(), database)
		},
	}
}

func (a *app) seed(ctx context.Context, database *sql.DB) error {
	seedCfg := seed.Config{
		AdminEmail:    a.cfg.AdminEmail,
		AdminPassword: a.cfg.AdminPassword,
	}
	if a.cfg.CatalogPath != "" {
		paints, err := catalog.LoadFile(a.cfg.CatalogPath)
		if err != nil {
			return err
		}
		seedCfg.Paints = paints
	}

	stats, err := seed.Run(ctx, database, seedCfg)
	if err != nil {
		return fmt.Errorf("seed database: %w", err)
	}
	a.logger.Info("seed completed", zap.Int("users", stats.Users), zap.Int("paints", stats.Paints))
	return nil
}

func (a *app) serve(ctx context.Context, migrate bool) error {
	for _, w := range a.cfg.Warnings() {
		a.logger.Warn(w)
	}

	database, err := db.Open(ctx, a.cfg.DBPath)
	if err != nil {
		return err
	}
	st := store.New(database)
	defer st.Close()

	if migrate {
		if err := migrations.Up(ctx, database); err != nil {
			return err
		}
	}
	if err := a.seed(ctx, database); err != nil {
		return err
	}

	secret := a.cfg.SessionSecret
	if secret == "" {
		// Sessions will not survive a restart.
		secret = uuid.NewString()
	}

	srv := &server{
		auth:   newAuthService(database, secret),
		store:  st,
		logger: a.logger,
	}
	if a.cfg.Assistant.Enabled() {
		client, err := assistant.NewGoogleClient(ctx, a.cfg.Assistant.URL,
			assistant.WithLogger(a.logger),
			assistant.WithTimeout(a.cfg.Assistant.Timeout))
		if err != nil {
			return err
		}
		srv.assistant = assistant.NewHub(client, assistant.WithDefaultUser(a.cfg.Assistant.UserID))
		a.logger.Info("assistant relay enabled", zap.String("base_url", client.BaseURL()))
	}

	httpServer := &http.Server{
		Addr:              a.cfg.Address,
		Handler:           srv.routes(a.cfg.CORSOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("listening", zap.String("address", a.cfg.Address))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server stopped: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown server: %w", err)
	}
	return nil
}

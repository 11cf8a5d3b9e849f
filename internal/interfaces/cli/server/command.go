package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/orris-inc/archy/internal/infrastructure/config"
	"github.com/orris-inc/archy/internal/infrastructure/database"
	"github.com/orris-inc/archy/internal/infrastructure/migration"
	"github.com/orris-inc/archy/internal/infrastructure/pubsub"
	"github.com/orris-inc/archy/internal/shared/goroutine"
	"github.com/orris-inc/archy/internal/shared/logger"
	"github.com/orris-inc/archy/internal/shared/version"
)

var (
	env         string
	configPath  string
	autoMigrate bool
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start the bot and the HTTP ops server",
		Long:  `Connect to the chat gateway, handle commands, and serve the read-only archive API, health and metrics.`,
		RunE:  run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")
	cmd.Flags().BoolVar(&autoMigrate, "auto-migrate", false, "Run database migrations on startup")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(env, configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := logger.Init(&cfg.Logger, cfg.Server.Mode); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.NewLogger()

	log.Infow("starting server",
		"environment", env,
		"version", version.String(),
		"auto_migrate", autoMigrate,
	)

	gin.SetMode(cfg.Server.Mode)
	gin.DefaultWriter = io.Discard

	if err := database.Init(&cfg.Database); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	if autoMigrate {
		if err := migration.NewManager(cfg.Migration.Strategy).Migrate(database.Get()); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	container, err := NewContainer(ctx, cfg, database.Get(), log)
	if err != nil {
		return err
	}
	defer container.Close()

	container.dispatcher.Start(ctx)

	goroutine.SafeGo(log, "ticket-event-audit", func() {
		err := container.events.Subscribe(ctx, func(_ context.Context, envelope pubsub.TicketEventEnvelope) {
			log.Infow("ticket archived",
				"event_id", envelope.EventID,
				"metadata_id", envelope.Payload.MetadataID,
				"channel_id", envelope.Payload.ChannelID,
				"messages", envelope.Payload.MessageCount,
				"incremental", envelope.Payload.Incremental,
			)
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Warnw("ticket event subscriber exited", "error", err)
		}
	})

	srv := &http.Server{
		Addr:         cfg.Server.GetAddr(),
		Handler:      container.router.GetEngine(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 2)
	goroutine.SafeGo(log, "http-server", func() {
		log.Infow("HTTP server starting", "address", srv.Addr, "mode", cfg.Server.Mode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server failed: %w", err)
		}
	})
	gatewayDone := make(chan struct{})
	goroutine.SafeGo(log, "gateway", func() {
		defer close(gatewayDone)
		if err := container.gateway.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errCh <- fmt.Errorf("gateway stopped: %w", err)
		}
	})

	var runErr error
	select {
	case <-ctx.Done():
		log.Infow("shutting down server...")
	case runErr = <-errCh:
		log.Errorw("server component failed", "error", runErr)
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("HTTP server forced to shutdown", "error", err)
	}
	select {
	case <-gatewayDone:
	case <-shutdownCtx.Done():
		log.Warnw("gateway did not stop before shutdown timeout")
	}
	container.dispatcher.Stop()

	log.Infow("server exited")
	return runErr
}

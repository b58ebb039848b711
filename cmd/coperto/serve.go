package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/gosuda/coperto/internal/auth"
	"github.com/gosuda/coperto/internal/booking"
	"github.com/gosuda/coperto/internal/config"
	"github.com/gosuda/coperto/internal/notify"
	"github.com/gosuda/coperto/internal/notify/email"
	notifyslack "github.com/gosuda/coperto/internal/notify/slack"
	"github.com/gosuda/coperto/internal/server"
	"github.com/gosuda/coperto/internal/store/postgres"
	redisstore "github.com/gosuda/coperto/internal/store/redis"
)

func newServeCmd() *cobra.Command {
	var skipMigrate bool

	c := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the notification worker",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if skipMigrate {
				cfg.Database.AutoMigrate = false
			}
			return serve(cmd.Context(), cfg)
		},
	}

	c.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "do not apply pending migrations on start")
	return c
}

func serve(ctx context.Context, cfg *config.Config) error {
	// Graceful shutdown on SIGINT / SIGTERM.
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Connect to PostgreSQL.
	store, err := postgres.New(ctx, cfg.Database.DSN(), int32(cfg.Database.MaxConns)) //nolint:gosec // bounds checked in loadConfig
	if err != nil {
		return err
	}
	defer store.Close()

	if cfg.Database.AutoMigrate {
		if err := store.Migrate(false); err != nil {
			return err
		}
	}

	// Connect to Redis.
	pubsub, err := redisstore.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer pubsub.Close()

	events := redisstore.NewEventBus(pubsub, cfg.Booking.EventStream)

	policy, err := booking.ParseConflictPolicy(cfg.Booking.ConflictPolicy)
	if err != nil {
		return err
	}

	authSvc := auth.NewService(store.Users(), cfg.JWT.Secret, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	bookingSvc := booking.NewService(store, events, booking.Options{
		ConflictPolicy: policy,
		RequireShift:   cfg.Booking.RequireShift,
	})
	evaluator := booking.NewEvaluator(store)

	senders, err := newSenderRegistry(cfg)
	if err != nil {
		return err
	}
	dispatcher := notify.NewDispatcher(store, senders)

	// Notification worker.
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		log.Info().
			Str("stream", cfg.Booking.EventStream).
			Str("group", cfg.Booking.ConsumerGroup).
			Str("consumer", cfg.Booking.ConsumerName).
			Msg("starting notification worker")
		err := events.Consume(ctx, redisstore.ConsumeOptions{
			Group:    cfg.Booking.ConsumerGroup,
			Consumer: cfg.Booking.ConsumerName,
		}, dispatcher.HandleEvent)
		if err != nil {
			log.Error().Err(err).Msg("notification worker stopped")
		}
	}()

	if cfg.Platform.OperatorTenant == uuid.Nil {
		log.Info().Msg("COPERTO_PLATFORM_TENANT_ID unset, /admin routes refuse every caller")
	}

	srv := server.New(ctx, cfg, store, pubsub, authSvc, bookingSvc, evaluator)

	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Str("version", Version).Msg("starting server")
		if startErr := srv.Start(ctx); startErr != nil {
			log.Error().Err(startErr).Msg("server error")
			cancel()
		}
	}()

	// Block until shutdown signal.
	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
		return shutdownErr
	}

	select {
	case <-workerDone:
	case <-shutdownCtx.Done():
		log.Warn().Msg("notification worker did not stop in time")
	}

	log.Info().Msg("stopped")
	return nil
}

// newSenderRegistry enables the channels that have credentials configured.
func newSenderRegistry(cfg *config.Config) (*notify.Registry, error) {
	reg := notify.NewRegistry()

	if cfg.Mail.Host != "" {
		sender, err := email.New(email.Config{
			Host:     cfg.Mail.Host,
			Port:     cfg.Mail.Port,
			Username: cfg.Mail.Username,
			Password: cfg.Mail.Password,
			From:     cfg.Mail.From,
			Timeout:  cfg.Mail.Timeout,
		})
		if err != nil {
			return nil, err
		}
		reg.Register(sender)
		log.Info().Str("host", cfg.Mail.Host).Msg("email notifications enabled")
	}

	if cfg.Slack.BotToken != "" {
		reg.Register(notifyslack.NewFromToken(cfg.Slack.BotToken))
		log.Info().Msg("Slack notifications enabled")
	}

	return reg, nil
}

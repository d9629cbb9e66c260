package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/propsnap/propsnap/internal/api"
	"github.com/propsnap/propsnap/internal/auth"
	"github.com/propsnap/propsnap/internal/cache"
	"github.com/propsnap/propsnap/internal/config"
	"github.com/propsnap/propsnap/internal/database"
	"github.com/propsnap/propsnap/internal/events"
	"github.com/propsnap/propsnap/internal/imagestore"
	"github.com/propsnap/propsnap/internal/logging"
	"github.com/propsnap/propsnap/internal/metrics"
	"github.com/propsnap/propsnap/internal/service"
	"github.com/propsnap/propsnap/internal/store"
	"github.com/propsnap/propsnap/migration/driver"
	"github.com/propsnap/propsnap/migration/versions"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			migrate, _ := cmd.Flags().GetBool("migrate")

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, migrate)
		},
	}

	cmd.Flags().Bool("migrate", false, "Apply pending migrations before serving")

	return cmd
}

func serve(ctx context.Context, migrate bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})
	log := logging.Logger()

	db, err := database.Open(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Warn().Err(err).Msg("failed to close database")
		}
	}()

	if migrate {
		applied, err := driver.NewMigrator(db, versions.All()...).WithLogger(log).Up(ctx)
		if err != nil {
			return fmt.Errorf("failed to migrate: %w", err)
		}
		log.Info().Int("applied", applied).Msg("migrations complete")
	}

	var c cache.Cache = cache.Noop{}
	if cfg.Cache.RedisURL != "" {
		rc, err := cache.NewRedis(ctx, cfg.Cache.RedisURL, "propsnap:")
		if err != nil {
			return err
		}
		c = rc
		log.Info().Msg("redis cache enabled")
	}
	defer c.Close()

	var pub events.Publisher = events.Noop{}
	if cfg.Events.AMQPURL != "" {
		ap, err := events.NewAMQPPublisher(cfg.Events.AMQPURL, cfg.Events.Exchange)
		if err != nil {
			return err
		}
		pub = ap
		log.Info().Str("exchange", cfg.Events.Exchange).Msg("amqp events enabled")
	}
	defer pub.Close()

	images, err := imagestore.NewLocalStore(cfg.Images.UploadDir, cfg.Images.PublicURL, cfg.Images.MaxBytes)
	if err != nil {
		return err
	}

	jwt, err := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, cfg.Auth.Issuer)
	if err != nil {
		return err
	}

	m := metrics.New()
	svc := service.New(service.Deps{
		Store:     store.New(db),
		Images:    images,
		Cache:     c,
		Events:    pub,
		Metrics:   m,
		CacheTTL:  cfg.Cache.TTL,
		MaxImages: cfg.Images.MaxFiles,
	}, service.AuthOptions{JWT: jwt, Hasher: auth.NewPasswordHasher(cfg.Auth.BcryptCost)})

	handler := api.NewHandler(svc, db, jwt, m, api.Config{
		CORSOrigins:   cfg.Server.CORSOrigins,
		AuthRateLimit: cfg.Server.AuthRateLimit,
		UploadDir:     images.Dir(),
		MaxImages:     cfg.Images.MaxFiles,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      handler.Routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Str("version", version).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down cleanly: %w", err)
	}
	return nil
}

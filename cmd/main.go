package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/brightlux/storefront-backend/internal/auth"
	"github.com/brightlux/storefront-backend/internal/config"
	"github.com/brightlux/storefront-backend/internal/db"
	"github.com/brightlux/storefront-backend/internal/events"
	"github.com/brightlux/storefront-backend/internal/handlers"
	"github.com/brightlux/storefront-backend/internal/logging"
	"github.com/brightlux/storefront-backend/internal/media"
	"github.com/brightlux/storefront-backend/internal/obs"
	"github.com/brightlux/storefront-backend/internal/services"
	"go.opentelemetry.io/otel"
)

func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logging.New(cfg.LogLevel)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error(ctx, "server stopped", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger logging.Logger) error {
	logger.Info(ctx, "starting", "config", cfg.String())

	shutdownTracer, err := obs.InitTracer(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	defer flush(logger, "tracer", shutdownTracer)

	stores, closeDB, err := openStores(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer flush(logger, "database", closeDB)

	objects, uploadsDir, err := openObjectStore(ctx, cfg.Media)
	if err != nil {
		return err
	}

	var publisher events.Publisher = events.NewLogPublisher(logger)
	if cfg.Events.AMQPURL != "" {
		amqp, err := events.NewAMQPPublisher(cfg.Events.AMQPURL, cfg.Events.Exchange)
		if err != nil {
			return err
		}
		publisher = amqp
		logger.Info(ctx, "publishing events", "exchange", cfg.Events.Exchange)
	}
	defer publisher.Close()

	svc := services.New(stores, services.Options{
		Provider:   auth.NewLocalProvider(stores.Credentials, auth.WithLogger(logger)),
		Publisher:  publisher,
		Logger:     logger,
		AdminEmail: cfg.Auth.AdminEmail,
	})

	router := handlers.NewRouter(handlers.Deps{
		Services:       svc,
		Sessions:       auth.NewSessions(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL),
		Uploader:       media.NewUploader(objects, logger, cfg.Media.MaxUploadBytes()),
		Logger:         logger,
		Ping:           stores.Ping,
		CookieName:     cfg.Auth.CookieName,
		MaxUploadBytes: cfg.Media.MaxUploadBytes() + 1<<20,
		WebDir:         cfg.HTTP.WebDir,
		UploadsDir:     uploadsDir,
		TracerProvider: otel.GetTracerProvider(),
	})

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "server listening", "addr", cfg.HTTP.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info(context.Background(), "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func openStores(ctx context.Context, cfg config.DatabaseConfig, logger logging.Logger) (db.Stores, func(context.Context) error, error) {
	if cfg.Driver == "memory" {
		logger.Warn(ctx, "using in-memory storage, data is lost on restart")
		return db.NewMemoryStores(), func(context.Context) error { return nil }, nil
	}

	client, err := db.Connect(ctx, cfg.URI, cfg.Timeout)
	if err != nil {
		return db.Stores{}, nil, err
	}
	database := client.Database(cfg.Name)
	if err := db.EnsureIndexes(ctx, database); err != nil {
		_ = db.Disconnect(context.Background(), client)
		return db.Stores{}, nil, err
	}
	logger.Info(ctx, "connected to MongoDB", "database", cfg.Name)

	return db.NewMongoStores(database), func(ctx context.Context) error {
		return db.Disconnect(ctx, client)
	}, nil
}

// openObjectStore returns the media backend and, for disk storage, the
// directory to serve at /uploads/.
func openObjectStore(ctx context.Context, cfg config.MediaConfig) (media.ObjectStore, string, error) {
	if cfg.Backend == "s3" {
		s, err := media.NewS3Store(ctx, media.S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
		if err != nil {
			return nil, "", err
		}
		return s, "", nil
	}

	d, err := media.NewDiskStore(cfg.DiskDir, cfg.PublicURL)
	if err != nil {
		return nil, "", err
	}
	return d, d.Dir(), nil
}

func flush(logger logging.Logger, what string, fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := fn(ctx); err != nil {
		logger.Warn(ctx, "shutdown failed", "component", what, "error", err)
	}
}

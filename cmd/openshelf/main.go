package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"openshelf/internal/app"
	"openshelf/internal/config"
	"openshelf/internal/events"
	"openshelf/internal/server"
	"openshelf/internal/storage"
	"openshelf/internal/store"
	"openshelf/internal/util"
)

func main() {
	cfg, err := config.Load(config.ConfigPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logger := util.InitLogger(cfg.LogLevel)

	var archive store.Store = store.NewMemoryStore()
	if cfg.DatabaseURL != "" {
		archive, err = store.NewGormStore(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("failed to init loan archive: %v", err)
		}
	}

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.AMQPURL != "" {
		amqpPub, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.EventExchange)
		if err != nil {
			log.Fatalf("failed to init event publisher: %v", err)
		}
		defer amqpPub.Close()
		publisher = amqpPub
	}

	var objects storage.ObjectStore
	if cfg.MinioEndpoint != "" {
		objects, err = storage.NewMinioStore(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
		if err != nil {
			log.Fatalf("failed to init object store: %v", err)
		}
	}

	appCore := app.New(app.Config{
		LibraryName:     cfg.LibraryName,
		LibraryLocation: cfg.LibraryLocation,
		Store:           archive,
		Events:          publisher,
		Objects:         objects,
		PresignExpiry:   time.Duration(cfg.PresignExpiryMinutes) * time.Minute,
	})

	httpServer, err := server.New(server.Config{
		App:                    appCore,
		RedisAddr:              cfg.RedisAddr,
		RedisPassword:          cfg.RedisPassword,
		LendRateLimitPerMinute: cfg.LendRateLimitPerMinute,
	})
	if err != nil {
		log.Fatalf("failed to init server: %v", err)
	}

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      httpServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("openshelf listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		logger.Error("server error", "err", err)
	}
}

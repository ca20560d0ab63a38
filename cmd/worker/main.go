package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/givehub/mediakit/internal/config"
	"github.com/givehub/mediakit/internal/database"
	"github.com/givehub/mediakit/internal/janitor"
	"github.com/givehub/mediakit/internal/repository"
	"github.com/givehub/mediakit/internal/storage"
	"github.com/givehub/mediakit/internal/worker"
)

func main() {
	_ = godotenv.Load()
	log := zerolog.New(os.Stderr).With().Timestamp().Str("service", "mediakit-worker").Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}
	defer pool.Close()
	if err := database.EnsureSchema(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("ensure schema")
	}
	store := repository.NewPostgres(pool)

	staging, err := storage.NewStaging(cfg.StagingRoot)
	if err != nil {
		log.Fatal().Err(err).Msg("init staging")
	}

	var backend storage.Backend
	switch cfg.StorageBackend {
	case "s3":
		s3, err := storage.NewS3(cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("init s3 storage")
		}
		if err := s3.EnsureBucket(ctx); err != nil {
			log.Fatal().Err(err).Msg("ensure bucket")
		}
		backend = s3
	default:
		local, err := storage.NewLocal(cfg.StorageRoot)
		if err != nil {
			log.Fatal().Err(err).Msg("init local storage")
		}
		backend = local
	}

	go janitor.New(staging, cfg.JanitorInterval, cfg.StagingMaxAge, log).Run(ctx)

	server := asynq.NewServer(asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, asynq.Config{
		Concurrency: cfg.WorkerConcurrency,
	})
	processor := worker.NewProcessor(cfg, store, backend, staging, worker.FFmpeg{}, log)
	mux := processor.Handler()

	go func() {
		<-ctx.Done()
		server.Shutdown()
	}()

	if err := server.Run(mux); err != nil {
		log.Error().Err(err).Msg("worker stopped")
		os.Exit(1)
	}
}

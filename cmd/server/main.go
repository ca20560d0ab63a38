package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/givehub/mediakit/internal/api"
	"github.com/givehub/mediakit/internal/config"
	"github.com/givehub/mediakit/internal/database"
	"github.com/givehub/mediakit/internal/media"
	"github.com/givehub/mediakit/internal/pipeline"
	"github.com/givehub/mediakit/internal/repository"
	"github.com/givehub/mediakit/internal/signing"
	"github.com/givehub/mediakit/internal/storage"
)

func main() {
	_ = godotenv.Load()
	log := zerolog.New(os.Stderr).With().Timestamp().Str("service", "mediakit-api").Logger()

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

	var (
		backend storage.Backend
		local   *storage.Local
		signer  *signing.Signer
		urls    media.URLResolver
	)
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
		urls = s3
	default:
		local, err = storage.NewLocal(cfg.StorageRoot)
		if err != nil {
			log.Fatal().Err(err).Msg("init local storage")
		}
		backend = local
		signer = signing.NewSigner(cfg.SigningSecret, cfg.SignedURLTTL)
		urls = signing.NewLocalURLs(cfg.BaseURL, signer)
	}

	queueClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer queueClient.Close()

	pipe := pipeline.New(cfg, store, backend, staging, &pipeline.AsynqEnqueuer{Client: queueClient}, urls, log)
	srv := api.New(cfg, pipe, local, signer, log)
	if err := srv.Run(ctx); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}

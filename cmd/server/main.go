package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/hongminglow/rta-portal/internal/config"
	"github.com/hongminglow/rta-portal/internal/events"
	"github.com/hongminglow/rta-portal/internal/logger"
	"github.com/hongminglow/rta-portal/internal/server"
	"github.com/hongminglow/rta-portal/internal/storage"
	"github.com/hongminglow/rta-portal/internal/storage/memory"
	"github.com/hongminglow/rta-portal/internal/storage/postgres"
)

func main() {
	loadLocalEnv()

	cfg, err := config.Load()
	if err != nil {
		logger.Logger.Fatal().Err(err).Msg("load config")
	}
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	log := logger.Logger

	ctx := context.Background()
	store, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StorageDriver).Msg("init storage")
	}
	defer store.Close()

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("parse REDIS_URL")
	}
	rdb := redis.NewClient(redisOpts)
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		// Sessions resolve as loading until Redis answers.
		log.Warn().Err(err).Msg("redis not reachable at startup")
	}

	var publisher events.Publisher = events.Noop{}
	if cfg.RabbitMQURL != "" {
		rabbit, err := events.NewRabbitMQ(cfg.RabbitMQURL, events.DefaultExchange)
		if err != nil {
			log.Fatal().Err(err).Msg("init rabbitmq publisher")
		}
		publisher = rabbit
	}
	defer publisher.Close()

	srv := server.New(cfg, server.Deps{Store: store, Redis: rdb, Publisher: publisher})

	go func() {
		log.Info().Str("addr", cfg.HTTPAddress()).Str("storage", cfg.StorageDriver).Msg("RTA portal backend listening")
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server error")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Error().Err(err).Msg("graceful shutdown error")
	}
}

func openStore(ctx context.Context, cfg config.Config) (storage.Store, error) {
	if cfg.StorageDriver == config.DriverMemory {
		return memory.New(), nil
	}
	return postgres.NewStore(ctx, cfg.DatabaseURL)
}

func loadLocalEnv() {
	if err := godotenv.Load(); err != nil {
		logger.Logger.Info().Msg("no .env file found; relying on existing environment")
	}
}

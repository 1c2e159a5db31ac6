package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/darktech/marketplace-auth/internal/api"
	"github.com/darktech/marketplace-auth/internal/infrastructure/config"
	mongodb "github.com/darktech/marketplace-auth/internal/infrastructure/db/mongo"
	redisdb "github.com/darktech/marketplace-auth/internal/infrastructure/db/redis"
	"github.com/darktech/marketplace-auth/pkg/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	db, closeMongo, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongodb connection failed")
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}

	workerCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()

	e, recorder := api.NewRouter(cfg, db, rdb, log)
	recorder.Start(workerCtx)

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting server")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped unexpectedly")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}
	stopWorkers()

	if err := rdb.Close(); err != nil {
		log.Error().Err(err).Msg("redis close error")
	}
	if err := closeMongo(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("mongodb disconnect error")
	}
}

package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/morb-dev/morbsite/internal/config"
	"github.com/morb-dev/morbsite/internal/handler"
	"github.com/morb-dev/morbsite/internal/iphash"
	"github.com/morb-dev/morbsite/internal/logger"
	"github.com/morb-dev/morbsite/internal/profanity"
	"github.com/morb-dev/morbsite/internal/ratelimit"
	"github.com/morb-dev/morbsite/internal/router"
	"github.com/morb-dev/morbsite/internal/service"
	"github.com/morb-dev/morbsite/internal/storage/fs"
	"github.com/morb-dev/morbsite/internal/storage/pg"
	"github.com/morb-dev/morbsite/internal/tokenstats"
)

func main() {
	var configFolder string
	flag.StringVar(&configFolder, "config_folder", "config", "path to folder with configs")
	flag.Parse()

	cfg := config.MustLoad(configFolder)
	logger.Initialize(cfg.Public.LogLevel, cfg.Public.LogJSON)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	storage, err := pg.New(cfg)
	if err != nil {
		logger.Log.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	defer storage.Cleanup()

	media, err := fs.New(cfg.Public.MemeStoragePath)
	if err != nil {
		logger.Log.Error("failed to init media storage", "error", err)
		os.Exit(1)
	}

	var guard ratelimit.Guard
	var statsCache tokenstats.Cache
	if cfg.Private.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.Private.RedisAddr})
		guard = ratelimit.NewRedis(rdb, cfg.Public.RateLimitWindow.Std(), cfg.Public.RateLimitMaxPosts)
		statsCache = tokenstats.NewRedisCache(rdb, cfg.Public.TokenStats.CacheTTL.Std())
		logger.Log.Info("using redis rate limit guard and cache", "addr", cfg.Private.RedisAddr)
	} else {
		memoryGuard := ratelimit.NewMemory(cfg.Public.RateLimitWindow.Std(), cfg.Public.RateLimitMaxPosts)
		memoryGuard.StartSweeper(ctx, cfg.Public.RateLimitSweepInterval.Std())
		guard = memoryGuard
		statsCache = tokenstats.NewMemoryCache(cfg.Public.TokenStats.CacheTTL.Std())
	}

	limits := service.MessageLimits{
		MaxContentLength:  cfg.Public.MaxContentLength,
		MaxUsernameLength: cfg.Public.MaxUsernameLength,
		DefaultPageSize:   cfg.Public.DefaultPageSize,
		MaxPageSize:       cfg.Public.MaxPageSize,
	}

	message := service.NewMessage(storage, profanity.New(), guard, iphash.New(cfg.Private.IpHashPepper), limits, cfg.ModerationSecret())
	reaction := service.NewReaction(storage)
	meme := service.NewMeme(storage, media, cfg.Public.MemeMaxSizeBytes, cfg.Public.MemeDefaultLimit, cfg.Public.MaxPageSize)
	stats := tokenstats.NewService(tokenstats.NewClient(cfg.Public.TokenStats), statsCache)

	h := handler.New(message, reaction, meme, stats)
	r := router.New(h, media.Root())

	server := &http.Server{
		Addr:              cfg.Public.ListenAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Log.Error("server shutdown failed", "error", err)
		}
	}()

	logger.Log.Info("server started", "addr", cfg.Public.ListenAddr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Log.Error("server failed", "error", err)
		os.Exit(1)
	}
}

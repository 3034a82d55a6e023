package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	httpapp "vltweb/internal/app/http"
	"vltweb/internal/config"
	"vltweb/internal/repository"
	"vltweb/internal/services/auth"
	galleryservice "vltweb/internal/services/gallery_service"
	quizservice "vltweb/internal/services/quiz_service"
	trackservice "vltweb/internal/services/track_service"
	"vltweb/internal/sse"
	"vltweb/internal/storage/assethost"
	"vltweb/internal/storage/localcache"
	"vltweb/internal/storage/postgresql"
	redisstorage "vltweb/internal/storage/redis"
	httprouters "vltweb/internal/transport/http"
)

type App struct {
	HTTPServer *httpapp.Server
	Storage    *postgresql.Storage
	Redis      *redisstorage.Client
}

// New wires the whole service: database, cache, asset host, event hub,
// services and the HTTP server. It panics on anything that makes the
// process useless, matching MustLoad.
func New(log *slog.Logger, cfg *config.Config) *App {
	const op = "app.New"

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	storage, err := postgresql.New(ctx, cfg.DSN)
	if err != nil {
		panic(fmt.Errorf("%s: %w", op, err))
	}

	if err := repository.Migrate(ctx, storage.Pool); err != nil {
		panic(fmt.Errorf("%s: %w", op, err))
	}

	repo := repository.New(storage.Pool)

	var redisClient *redisstorage.Client
	var cache galleryservice.Cache
	if cfg.Redis.RedisAddr != "" {
		redisClient = redisstorage.NewClient(cfg.Redis.RedisAddr, cfg.Redis.RedisPassword, cfg.Redis.RedisDB)
		if err := redisClient.HealthCheck(ctx); err != nil {
			panic(fmt.Errorf("%s: %w", op, err))
		}
		cache = redisClient
		log.Info("using redis cache", slog.String("addr", cfg.Redis.RedisAddr))
	} else {
		cache = localcache.New(5 * time.Minute)
		log.Info("redis not configured, using in-process cache")
	}

	host := mustAssetHost(log, cfg.AssetHost)

	hub := sse.NewHub(log)

	galleryService := galleryservice.NewGalleryService(log, repo.Images, host, cache, hub)
	trackService := trackservice.NewTrackService(log, repo.Tracks, host, hub)
	quizService := quizservice.NewQuizService(log, repo.Quizzes, hub)
	authService := auth.New(log, cfg.Auth.Credentials, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	routers := httprouters.NewRouter(log, galleryService, trackService, quizService, authService, hub, storage, cfg.AssetHost.Provider)

	server := httpapp.New(log, cfg.Auth.JWTSecret, cfg.HTTP.Port, routers)
	server.BuildRouters()

	return &App{
		HTTPServer: server,
		Storage:    storage,
		Redis:      redisClient,
	}
}

// Stop shuts the server down and releases storage connections.
func (a *App) Stop() error {
	if err := a.HTTPServer.Stop(); err != nil {
		return err
	}

	if a.Redis != nil {
		a.Redis.Close()
	}
	a.Storage.Stop()

	return nil
}

func mustAssetHost(log *slog.Logger, cfg config.AssetHostConfig) assethost.Host {
	switch cfg.Provider {
	case "cloudinary", "":
		return assethost.NewCloudinary(log, cfg.Cloudinary)
	case "minio":
		host, err := assethost.NewMinIO(cfg.MinIO)
		if err != nil {
			panic(fmt.Errorf("app.mustAssetHost: %w", err))
		}
		return host
	case "local":
		host, err := assethost.NewLocal(cfg.Local.BaseDir, cfg.Local.BaseURL)
		if err != nil {
			panic(fmt.Errorf("app.mustAssetHost: %w", err))
		}
		return host
	default:
		panic("unknown asset host provider: " + cfg.Provider)
	}
}

// Command vltweb-sync pushes a desired-state manifest to a running
// vltweb server: it loads the server's current collections into a local
// draft, applies the manifest, uploads any new files and saves.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"vltweb/internal/admin/apiclient"
	"vltweb/internal/admin/draft"
	"vltweb/internal/admin/manifest"
	adminsync "vltweb/internal/admin/sync"
	"vltweb/internal/config"
	"vltweb/internal/lib/logger/sl"
	"vltweb/internal/storage/assethost"
)

func main() {
	var (
		configPath   string
		manifestPath string
		serverURL    string
	)

	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.StringVar(&manifestPath, "manifest", "", "path to desired-state manifest")
	flag.StringVar(&serverURL, "server", "http://localhost:8080", "base url of the vltweb server")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if configPath == "" {
		configPath = os.Getenv("CONFIG_PATH")
	}
	if configPath == "" || manifestPath == "" {
		fmt.Fprintln(os.Stderr, "usage: vltweb-sync --config config.yaml --manifest site.yaml [--server url]")
		os.Exit(2)
	}

	cfg := config.MustLoadPath(configPath)

	secret := os.Getenv("VLTWEB_ADMIN_SECRET")
	if secret == "" {
		fmt.Fprintln(os.Stderr, "VLTWEB_ADMIN_SECRET is not set")
		os.Exit(2)
	}

	if err := run(log, cfg, serverURL, manifestPath, secret); err != nil {
		log.Error("sync failed", sl.Err(err))
		os.Exit(1)
	}

	log.Info("sync complete")
}

func run(log *slog.Logger, cfg *config.Config, serverURL, manifestPath, secret string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	m, err := manifest.Load(manifestPath)
	if err != nil {
		return err
	}

	client := apiclient.New(serverURL)
	if err := client.Login(ctx, secret); err != nil {
		return err
	}

	d := draft.New()
	adminsync.LoadDraft(ctx, log, client, d)
	m.Apply(d)

	log.Info("draft prepared",
		slog.Int("images", len(d.Images)),
		slog.Int("tracks", len(d.Tracks)),
		slog.Int("quizzes", len(d.Quizzes)),
		slog.Int("pending_uploads", d.PendingCount()),
		slog.Int("images_to_release", len(d.DeletedImageURLs())),
		slog.Int("audio_to_release", len(d.DeletedAudioURLs())),
	)

	uploader := buildUploader(log, cfg.AssetHost)

	rec := adminsync.New(log, client, uploader, cfg.AssetHost.ImageFolder, cfg.AssetHost.AudioFolder)
	rec.OnProgress(func(done, total int) {
		log.Info("uploaded", slog.Int("done", done), slog.Int("total", total))
	})

	outcome, err := rec.Save(ctx, d)
	if err != nil {
		if outcome.ImagesErr != nil {
			log.Error("gallery not saved", sl.Err(outcome.ImagesErr))
		}
		if outcome.TracksErr != nil {
			log.Error("playlist not saved", sl.Err(outcome.TracksErr))
		}
		if outcome.QuizzesErr != nil {
			log.Error("quiz not saved", sl.Err(outcome.QuizzesErr))
		}
		return err
	}

	log.Info("collections saved",
		slog.Int("images", outcome.ImagesSaved),
		slog.Int("tracks", outcome.TracksSaved),
		slog.Int("quizzes", outcome.QuizzesSaved),
	)

	return nil
}

func buildUploader(log *slog.Logger, cfg config.AssetHostConfig) assethost.Uploader {
	switch cfg.Provider {
	case "minio":
		host, err := assethost.NewMinIO(cfg.MinIO)
		if err != nil {
			log.Error("minio unavailable", sl.Err(err))
			os.Exit(1)
		}
		return host
	case "local":
		host, err := assethost.NewLocal(cfg.Local.BaseDir, cfg.Local.BaseURL)
		if err != nil {
			log.Error("local asset dir unavailable", sl.Err(err))
			os.Exit(1)
		}
		return host
	default:
		return assethost.NewCloudinary(log, cfg.Cloudinary)
	}
}

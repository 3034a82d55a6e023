package services

import (
	"context"
	"fmt"
	"log/slog"

	"vltweb/internal/domain/models"
	"vltweb/internal/lib/logger/sl"
	"vltweb/internal/repository"
	"vltweb/internal/storage/assethost"
)

// Notifier pushes a named event to connected clients.
type Notifier interface {
	Broadcast(event string, payload any)
}

type TrackService struct {
	log      *slog.Logger
	repo     repository.TrackRepository
	remover  assethost.Remover
	notifier Notifier
}

func NewTrackService(log *slog.Logger, repo repository.TrackRepository, remover assethost.Remover, notifier Notifier) *TrackService {
	return &TrackService{
		log:      log,
		repo:     repo,
		remover:  remover,
		notifier: notifier,
	}
}

func (s *TrackService) List(ctx context.Context) ([]models.Track, error) {
	const op = "service.TrackService.List"

	tracks, err := s.repo.List(ctx)
	if err != nil {
		s.log.Error("failed to list tracks", slog.String("op", op), sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return tracks, nil
}

// BulkReplace swaps the whole playlist for the given list, then releases
// the hosted audio files the admin removed. Host failures are logged and
// swallowed.
func (s *TrackService) BulkReplace(ctx context.Context, tracks []models.Track, deletedURLs []string) ([]models.Track, error) {
	const op = "service.TrackService.BulkReplace"
	log := s.log.With(slog.String("op", op), slog.Int("count", len(tracks)))

	log.Info("replacing playlist")

	inserted, err := s.repo.ReplaceAll(ctx, tracks)
	if err != nil {
		log.Error("failed to replace playlist", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for _, url := range deletedURLs {
		if err := s.remover.Remove(ctx, url, assethost.KindAudio); err != nil {
			log.Warn("failed to remove hosted audio", slog.String("url", url), sl.Err(err))
		}
	}

	s.notifier.Broadcast("tracks_updated", map[string]any{"count": len(inserted)})

	log.Info("playlist replaced", slog.Int("inserted", len(inserted)))

	return inserted, nil
}

package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"vltweb/internal/domain/models"
	"vltweb/internal/lib/logger/sl"
	"vltweb/internal/repository"
	"vltweb/internal/storage/assethost"
)

const galleryCacheKey = "vltweb:images"

// Cache is the byte-blob cache used for list responses. Misses and
// backend failures both report absent; the cache is best-effort.
type Cache interface {
	GetBytes(ctx context.Context, key string) ([]byte, bool)
	SetBytes(ctx context.Context, key string, val []byte, ttl time.Duration)
	Invalidate(ctx context.Context, key string)
}

// Notifier pushes a named event to connected clients.
type Notifier interface {
	Broadcast(event string, payload any)
}

type GalleryService struct {
	log      *slog.Logger
	repo     repository.ImageRepository
	remover  assethost.Remover
	cache    Cache
	notifier Notifier
}

func NewGalleryService(log *slog.Logger, repo repository.ImageRepository, remover assethost.Remover, cache Cache, notifier Notifier) *GalleryService {
	return &GalleryService{
		log:      log,
		repo:     repo,
		remover:  remover,
		cache:    cache,
		notifier: notifier,
	}
}

// List returns all gallery items newest-first, serving from cache when a
// fresh copy is available.
func (s *GalleryService) List(ctx context.Context) ([]models.GalleryItem, error) {
	const op = "service.GalleryService.List"
	log := s.log.With(slog.String("op", op))

	if cached, ok := s.cache.GetBytes(ctx, galleryCacheKey); ok {
		var items []models.GalleryItem
		if err := json.Unmarshal(cached, &items); err == nil {
			return items, nil
		}
		log.Warn("dropping unreadable cache entry", slog.String("key", galleryCacheKey))
		s.cache.Invalidate(ctx, galleryCacheKey)
	}

	items, err := s.repo.List(ctx)
	if err != nil {
		log.Error("failed to list images", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if data, err := json.Marshal(items); err == nil {
		s.cache.SetBytes(ctx, galleryCacheKey, data, 5*time.Minute)
	}

	return items, nil
}

func (s *GalleryService) GetByID(ctx context.Context, id uuid.UUID) (models.GalleryItem, error) {
	const op = "service.GalleryService.GetByID"

	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return models.GalleryItem{}, fmt.Errorf("%s: %w", op, err)
	}

	return item, nil
}

func (s *GalleryService) Create(ctx context.Context, item models.GalleryItem) (models.GalleryItem, error) {
	const op = "service.GalleryService.Create"
	log := s.log.With(slog.String("op", op))

	created, err := s.repo.Create(ctx, item)
	if err != nil {
		log.Error("failed to create image", sl.Err(err))
		return models.GalleryItem{}, fmt.Errorf("%s: %w", op, err)
	}

	s.cache.Invalidate(ctx, galleryCacheKey)
	s.notifier.Broadcast("images_updated", map[string]any{"id": created.ID})

	return created, nil
}

func (s *GalleryService) Update(ctx context.Context, item models.GalleryItem) (models.GalleryItem, error) {
	const op = "service.GalleryService.Update"
	log := s.log.With(slog.String("op", op), slog.String("image_id", item.ID.String()))

	updated, err := s.repo.Update(ctx, item)
	if err != nil {
		log.Error("failed to update image", sl.Err(err))
		return models.GalleryItem{}, fmt.Errorf("%s: %w", op, err)
	}

	s.cache.Invalidate(ctx, galleryCacheKey)
	s.notifier.Broadcast("images_updated", map[string]any{"id": updated.ID})

	return updated, nil
}

// Delete removes one item and releases its hosted files. Host failures
// are logged and swallowed so a missing remote asset never blocks the
// record deletion.
func (s *GalleryService) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "service.GalleryService.Delete"
	log := s.log.With(slog.String("op", op), slog.String("image_id", id.String()))

	item, err := s.repo.Delete(ctx, id)
	if err != nil {
		log.Error("failed to delete image", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	s.removeAssets(ctx, log, item.URLs)

	s.cache.Invalidate(ctx, galleryCacheKey)
	s.notifier.Broadcast("images_updated", map[string]any{"id": id})

	return nil
}

// BulkReplace swaps the entire gallery for the given list, then releases
// the hosted files the admin removed during editing.
func (s *GalleryService) BulkReplace(ctx context.Context, items []models.GalleryItem, deletedURLs []string) ([]models.GalleryItem, error) {
	const op = "service.GalleryService.BulkReplace"
	log := s.log.With(slog.String("op", op), slog.Int("count", len(items)))

	log.Info("replacing gallery")

	inserted, err := s.repo.ReplaceAll(ctx, items)
	if err != nil {
		log.Error("failed to replace gallery", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.removeAssets(ctx, log, deletedURLs)

	s.cache.Invalidate(ctx, galleryCacheKey)
	s.notifier.Broadcast("images_updated", map[string]any{"count": len(inserted)})

	log.Info("gallery replaced", slog.Int("inserted", len(inserted)))

	return inserted, nil
}

func (s *GalleryService) removeAssets(ctx context.Context, log *slog.Logger, urls []string) {
	for _, url := range urls {
		if err := s.remover.Remove(ctx, url, assethost.KindImage); err != nil {
			log.Warn("failed to remove hosted image", slog.String("url", url), sl.Err(err))
		}
	}
}

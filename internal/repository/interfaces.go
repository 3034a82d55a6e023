package repository

import (
	"context"

	"github.com/google/uuid"

	"vltweb/internal/domain/models"
)

type ImageRepository interface {
	List(ctx context.Context) ([]models.GalleryItem, error)
	GetByID(ctx context.Context, id uuid.UUID) (models.GalleryItem, error)
	Create(ctx context.Context, item models.GalleryItem) (models.GalleryItem, error)
	Update(ctx context.Context, item models.GalleryItem) (models.GalleryItem, error)
	Delete(ctx context.Context, id uuid.UUID) (models.GalleryItem, error)
	ReplaceAll(ctx context.Context, items []models.GalleryItem) ([]models.GalleryItem, error)
}

type TrackRepository interface {
	List(ctx context.Context) ([]models.Track, error)
	ReplaceAll(ctx context.Context, tracks []models.Track) ([]models.Track, error)
}

type QuizRepository interface {
	List(ctx context.Context) ([]models.QuizQuestion, error)
	ReplaceAll(ctx context.Context, questions []models.QuizQuestion) ([]models.QuizQuestion, error)
}

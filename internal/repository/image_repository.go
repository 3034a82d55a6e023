package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"vltweb/internal/domain/models"
	"vltweb/internal/storage"
)

type ImageRepo struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

func NewImageRepo(db *pgxpool.Pool) *ImageRepo {
	return &ImageRepo{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var imageColumns = []string{"id", "title", "description", "urls", "metadata", "created_at"}

// List returns gallery items newest-first; position breaks ties so the
// order of one bulk write is stable.
func (r *ImageRepo) List(ctx context.Context) ([]models.GalleryItem, error) {
	const op = "repository.ImageRepo.List"

	query, args, err := r.sb.Select(imageColumns...).
		From("images").
		OrderBy("created_at DESC", "position ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	items := []models.GalleryItem{}
	for rows.Next() {
		var item models.GalleryItem
		if err := rows.Scan(&item.ID, &item.Title, &item.Description, &item.URLs, &item.Metadata, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return items, nil
}

func (r *ImageRepo) GetByID(ctx context.Context, id uuid.UUID) (models.GalleryItem, error) {
	const op = "repository.ImageRepo.GetByID"

	query, args, err := r.sb.Select(imageColumns...).
		From("images").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return models.GalleryItem{}, fmt.Errorf("%s: %w", op, err)
	}

	var item models.GalleryItem
	err = r.db.QueryRow(ctx, query, args...).
		Scan(&item.ID, &item.Title, &item.Description, &item.URLs, &item.Metadata, &item.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.GalleryItem{}, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}
		return models.GalleryItem{}, fmt.Errorf("%s: %w", op, err)
	}

	return item, nil
}

func (r *ImageRepo) Create(ctx context.Context, item models.GalleryItem) (models.GalleryItem, error) {
	const op = "repository.ImageRepo.Create"

	normalizeItem(&item)

	query, args, err := r.sb.Insert("images").
		Columns("title", "description", "urls", "metadata", "position", "created_at").
		Values(item.Title, item.Description, item.URLs, item.Metadata, 0, createdAtOrNow(item.CreatedAt)).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return models.GalleryItem{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := r.db.QueryRow(ctx, query, args...).Scan(&item.ID, &item.CreatedAt); err != nil {
		return models.GalleryItem{}, fmt.Errorf("%s: %w", op, err)
	}

	return item, nil
}

func (r *ImageRepo) Update(ctx context.Context, item models.GalleryItem) (models.GalleryItem, error) {
	const op = "repository.ImageRepo.Update"

	normalizeItem(&item)

	query, args, err := r.sb.Update("images").
		Set("title", item.Title).
		Set("description", item.Description).
		Set("urls", item.URLs).
		Set("metadata", item.Metadata).
		Where(squirrel.Eq{"id": item.ID}).
		Suffix("RETURNING created_at").
		ToSql()
	if err != nil {
		return models.GalleryItem{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := r.db.QueryRow(ctx, query, args...).Scan(&item.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.GalleryItem{}, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}
		return models.GalleryItem{}, fmt.Errorf("%s: %w", op, err)
	}

	return item, nil
}

// Delete removes one item and returns it so the caller can release its
// hosted assets.
func (r *ImageRepo) Delete(ctx context.Context, id uuid.UUID) (models.GalleryItem, error) {
	const op = "repository.ImageRepo.Delete"

	query, args, err := r.sb.Delete("images").
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + joinColumns(imageColumns)).
		ToSql()
	if err != nil {
		return models.GalleryItem{}, fmt.Errorf("%s: %w", op, err)
	}

	var item models.GalleryItem
	err = r.db.QueryRow(ctx, query, args...).
		Scan(&item.ID, &item.Title, &item.Description, &item.URLs, &item.Metadata, &item.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.GalleryItem{}, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}
		return models.GalleryItem{}, fmt.Errorf("%s: %w", op, err)
	}

	return item, nil
}

// ReplaceAll swaps the whole collection for the given list inside one
// transaction and returns the authoritative inserted records in input
// order.
func (r *ImageRepo) ReplaceAll(ctx context.Context, items []models.GalleryItem) ([]models.GalleryItem, error) {
	const op = "repository.ImageRepo.ReplaceAll"

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DELETE FROM images"); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// one timestamp for the whole batch, so position alone orders items
	// written together
	now := time.Now().UTC()

	inserted := make([]models.GalleryItem, 0, len(items))
	for i, item := range items {
		normalizeItem(&item)

		createdAt := item.CreatedAt
		if createdAt.IsZero() {
			createdAt = now
		}

		query, args, err := r.sb.Insert("images").
			Columns("title", "description", "urls", "metadata", "position", "created_at").
			Values(item.Title, item.Description, item.URLs, item.Metadata, i, createdAt).
			Suffix("RETURNING id, created_at").
			ToSql()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		if err := tx.QueryRow(ctx, query, args...).Scan(&item.ID, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		inserted = append(inserted, item)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return inserted, nil
}

// normalizeItem replaces nil collections so they are written as empty
// values rather than SQL NULL.
func normalizeItem(item *models.GalleryItem) {
	if item.URLs == nil {
		item.URLs = []string{}
	}
	if item.Metadata == nil {
		item.Metadata = map[string]interface{}{}
	}
}

func createdAtOrNow(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}

	return t
}

package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v4/pgxpool"

	"vltweb/internal/domain/models"
)

type TrackRepo struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

func NewTrackRepo(db *pgxpool.Pool) *TrackRepo {
	return &TrackRepo{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// List returns tracks in playlist order, oldest first.
func (r *TrackRepo) List(ctx context.Context) ([]models.Track, error) {
	const op = "repository.TrackRepo.List"

	query, args, err := r.sb.Select("id", "title", "artist", "url", "created_at").
		From("tracks").
		OrderBy("position ASC", "created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	tracks := []models.Track{}
	for rows.Next() {
		var t models.Track
		if err := rows.Scan(&t.ID, &t.Title, &t.Artist, &t.URL, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		tracks = append(tracks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return tracks, nil
}

// ReplaceAll swaps the playlist for the given list inside one transaction
// and returns the inserted records in input order.
func (r *TrackRepo) ReplaceAll(ctx context.Context, tracks []models.Track) ([]models.Track, error) {
	const op = "repository.TrackRepo.ReplaceAll"

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DELETE FROM tracks"); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := time.Now().UTC()

	inserted := make([]models.Track, 0, len(tracks))
	for i, t := range tracks {
		createdAt := t.CreatedAt
		if createdAt.IsZero() {
			createdAt = now
		}

		query, args, err := r.sb.Insert("tracks").
			Columns("title", "artist", "url", "position", "created_at").
			Values(t.Title, t.Artist, t.URL, i, createdAt).
			Suffix("RETURNING id, created_at").
			ToSql()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		if err := tx.QueryRow(ctx, query, args...).Scan(&t.ID, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		inserted = append(inserted, t)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return inserted, nil
}

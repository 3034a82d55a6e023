package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v4/pgxpool"
)

// Repository bundles the per-collection repositories over one pool.
type Repository struct {
	Images  *ImageRepo
	Tracks  *TrackRepo
	Quizzes *QuizRepo
}

func New(db *pgxpool.Pool) *Repository {
	return &Repository{
		Images:  NewImageRepo(db),
		Tracks:  NewTrackRepo(db),
		Quizzes: NewQuizRepo(db),
	}
}

// Migrate creates the schema if it does not exist yet. The service owns
// its tables, so this runs on every start.
func Migrate(ctx context.Context, db *pgxpool.Pool) error {
	const op = "repository.Migrate"

	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS "pgcrypto"`,
		`CREATE TABLE IF NOT EXISTS images (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			title TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			urls TEXT[] NOT NULL DEFAULT '{}',
			metadata JSONB NOT NULL DEFAULT '{}',
			position INT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS tracks (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			title TEXT NOT NULL DEFAULT '',
			artist TEXT NOT NULL DEFAULT '',
			url TEXT NOT NULL,
			position INT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS quiz_questions (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			question TEXT NOT NULL,
			answer TEXT NOT NULL,
			options TEXT[] NOT NULL DEFAULT '{}',
			hint TEXT NOT NULL DEFAULT '',
			correct_response TEXT NOT NULL DEFAULT '',
			incorrect_response TEXT NOT NULL DEFAULT '',
			position INT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	return nil
}

func joinColumns(cols []string) string {
	return strings.Join(cols, ", ")
}

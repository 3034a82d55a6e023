package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v4/pgxpool"

	"vltweb/internal/domain/models"
)

type QuizRepo struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

func NewQuizRepo(db *pgxpool.Pool) *QuizRepo {
	return &QuizRepo{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// List returns quiz questions in authoring order, oldest first.
func (r *QuizRepo) List(ctx context.Context) ([]models.QuizQuestion, error) {
	const op = "repository.QuizRepo.List"

	query, args, err := r.sb.Select("id", "question", "answer", "options", "hint",
		"correct_response", "incorrect_response", "created_at").
		From("quiz_questions").
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

	questions := []models.QuizQuestion{}
	for rows.Next() {
		var q models.QuizQuestion
		err := rows.Scan(&q.ID, &q.Question, &q.Answer, &q.Options, &q.Hint,
			&q.CorrectResponse, &q.IncorrectResponse, &q.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return questions, nil
}

// ReplaceAll swaps the question set for the given list inside one
// transaction and returns the inserted records in input order.
func (r *QuizRepo) ReplaceAll(ctx context.Context, questions []models.QuizQuestion) ([]models.QuizQuestion, error) {
	const op = "repository.QuizRepo.ReplaceAll"

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DELETE FROM quiz_questions"); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := time.Now().UTC()

	inserted := make([]models.QuizQuestion, 0, len(questions))
	for i, q := range questions {
		if q.Options == nil {
			q.Options = []string{}
		}

		createdAt := q.CreatedAt
		if createdAt.IsZero() {
			createdAt = now
		}

		query, args, err := r.sb.Insert("quiz_questions").
			Columns("question", "answer", "options", "hint",
				"correct_response", "incorrect_response", "position", "created_at").
			Values(q.Question, q.Answer, q.Options, q.Hint,
				q.CorrectResponse, q.IncorrectResponse, i, createdAt).
			Suffix("RETURNING id, created_at").
			ToSql()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		if err := tx.QueryRow(ctx, query, args...).Scan(&q.ID, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		inserted = append(inserted, q)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return inserted, nil
}

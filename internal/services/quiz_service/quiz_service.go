package services

import (
	"context"
	"fmt"
	"log/slog"

	"vltweb/internal/domain/models"
	"vltweb/internal/lib/logger/sl"
	"vltweb/internal/repository"
)

// Notifier pushes a named event to connected clients.
type Notifier interface {
	Broadcast(event string, payload any)
}

// ValidationError marks a rejected question so transport can map it to a
// 400 instead of a 500.
type ValidationError struct {
	Index int
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("question %d: %v", e.Index, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

type QuizService struct {
	log      *slog.Logger
	repo     repository.QuizRepository
	notifier Notifier
}

func NewQuizService(log *slog.Logger, repo repository.QuizRepository, notifier Notifier) *QuizService {
	return &QuizService{
		log:      log,
		repo:     repo,
		notifier: notifier,
	}
}

func (s *QuizService) List(ctx context.Context) ([]models.QuizQuestion, error) {
	const op = "service.QuizService.List"

	questions, err := s.repo.List(ctx)
	if err != nil {
		s.log.Error("failed to list quiz questions", slog.String("op", op), sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return questions, nil
}

// BulkReplace validates every question, then swaps the whole set. Nothing
// is written when any question is invalid.
func (s *QuizService) BulkReplace(ctx context.Context, questions []models.QuizQuestion) ([]models.QuizQuestion, error) {
	const op = "service.QuizService.BulkReplace"
	log := s.log.With(slog.String("op", op), slog.Int("count", len(questions)))

	for i, q := range questions {
		if err := q.Validate(); err != nil {
			log.Warn("rejecting invalid question", slog.Int("index", i), sl.Err(err))
			return nil, fmt.Errorf("%s: %w", op, &ValidationError{Index: i, Err: err})
		}
	}

	log.Info("replacing quiz questions")

	inserted, err := s.repo.ReplaceAll(ctx, questions)
	if err != nil {
		log.Error("failed to replace quiz questions", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.notifier.Broadcast("quiz_updated", map[string]any{"count": len(inserted)})

	log.Info("quiz questions replaced", slog.Int("inserted", len(inserted)))

	return inserted, nil
}

package services

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"vltweb/internal/domain/models"
)

type MockQuizRepository struct {
	mock.Mock
}

func (m *MockQuizRepository) List(ctx context.Context) ([]models.QuizQuestion, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.QuizQuestion), args.Error(1)
}

func (m *MockQuizRepository) ReplaceAll(ctx context.Context, questions []models.QuizQuestion) ([]models.QuizQuestion, error) {
	args := m.Called(ctx, questions)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.QuizQuestion), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Broadcast(event string, payload any) {
	m.Called(event, payload)
}

func validQuestion() models.QuizQuestion {
	return models.QuizQuestion{
		Question: "Where did we meet?",
		Answer:   "Paris",
		Options:  []string{"Rome", "Oslo"},
	}
}

func TestQuizService_BulkReplace(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		questions  []models.QuizQuestion
		mockSetup  func(repo *MockQuizRepository, notifier *MockNotifier)
		wantErr    bool
		validation bool
	}{
		{
			name:      "successful replace",
			questions: []models.QuizQuestion{validQuestion()},
			mockSetup: func(repo *MockQuizRepository, notifier *MockNotifier) {
				repo.On("ReplaceAll", ctx, mock.Anything).
					Return([]models.QuizQuestion{validQuestion()}, nil).Once()
				notifier.On("Broadcast", "quiz_updated", mock.Anything).Once()
			},
		},
		{
			name: "invalid question short-circuits before the repository",
			questions: []models.QuizQuestion{
				validQuestion(),
				{Question: "Bad", Answer: "Paris", Options: []string{"paris"}},
			},
			mockSetup:  func(repo *MockQuizRepository, notifier *MockNotifier) {},
			wantErr:    true,
			validation: true,
		},
		{
			name:      "repository error",
			questions: []models.QuizQuestion{validQuestion()},
			mockSetup: func(repo *MockQuizRepository, notifier *MockNotifier) {
				repo.On("ReplaceAll", ctx, mock.Anything).
					Return(nil, errors.New("db down")).Once()
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockQuizRepository)
			notifier := new(MockNotifier)
			tt.mockSetup(repo, notifier)

			svc := NewQuizService(slog.Default(), repo, notifier)

			inserted, err := svc.BulkReplace(ctx, tt.questions)

			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, inserted)

				var verr *ValidationError
				if tt.validation {
					require.ErrorAs(t, err, &verr)
					assert.Equal(t, 1, verr.Index)
					assert.ErrorIs(t, err, models.ErrAnswerInOptions)
					repo.AssertNotCalled(t, "ReplaceAll", mock.Anything, mock.Anything)
				}
			} else {
				require.NoError(t, err)
				assert.Len(t, inserted, len(tt.questions))
			}

			repo.AssertExpectations(t)
			notifier.AssertExpectations(t)
		})
	}
}

func TestQuizService_List(t *testing.T) {
	ctx := context.Background()
	repo := new(MockQuizRepository)
	svc := NewQuizService(slog.Default(), repo, new(MockNotifier))

	repo.On("List", ctx).Return([]models.QuizQuestion{validQuestion()}, nil).Once()

	questions, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, questions, 1)

	repo.AssertExpectations(t)
}

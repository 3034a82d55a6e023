package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuizQuestion_Validate(t *testing.T) {
	tests := []struct {
		name     string
		question QuizQuestion
		wantErr  error
	}{
		{
			name: "valid question",
			question: QuizQuestion{
				Question: "Where did we meet?",
				Answer:   "Paris",
				Options:  []string{"Rome", "Oslo", "Berlin"},
			},
		},
		{
			name: "answer duplicated among distractors",
			question: QuizQuestion{
				Question: "Where did we meet?",
				Answer:   "Paris",
				Options:  []string{"Rome", "Paris"},
			},
			wantErr: ErrAnswerInOptions,
		},
		{
			name: "duplicate differs only in case and whitespace",
			question: QuizQuestion{
				Question: "Where did we meet?",
				Answer:   "Paris",
				Options:  []string{" paris "},
			},
			wantErr: ErrAnswerInOptions,
		},
		{
			name:     "missing question text",
			question: QuizQuestion{Answer: "Paris"},
		},
		{
			name:     "missing answer",
			question: QuizQuestion{Question: "Where did we meet?"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.question.Validate()

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.question.Question == "" || tt.question.Answer == "":
				assert.Error(t, err)
			default:
				assert.NoError(t, err)
			}
		})
	}
}

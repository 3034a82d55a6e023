package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrAnswerInOptions = errors.New("correct answer duplicates a distractor option")

// QuizQuestion is one question of the love quiz. Options holds only the
// distractors; the correct answer is kept separately.
type QuizQuestion struct {
	ID                uuid.UUID `json:"id"`
	Question          string    `json:"question"`
	Answer            string    `json:"answer"`
	Options           []string  `json:"options"`
	Hint              string    `json:"hint,omitempty"`
	CorrectResponse   string    `json:"correct_response"`
	IncorrectResponse string    `json:"incorrect_response"`
	CreatedAt         time.Time `json:"created_at"`
}

// Validate rejects a question whose correct answer also appears among the
// distractors. The comparison ignores case and surrounding whitespace,
// otherwise the quiz becomes unsolvable by exact match.
func (q QuizQuestion) Validate() error {
	if strings.TrimSpace(q.Question) == "" {
		return errors.New("question is required")
	}
	if strings.TrimSpace(q.Answer) == "" {
		return errors.New("answer is required")
	}

	answer := normalizeAnswer(q.Answer)
	for _, opt := range q.Options {
		if normalizeAnswer(opt) == answer {
			return fmt.Errorf("option %q: %w", opt, ErrAnswerInOptions)
		}
	}

	return nil
}

func normalizeAnswer(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

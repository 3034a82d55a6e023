package dto

import (
	"time"

	"github.com/google/uuid"

	"vltweb/internal/domain/models"
)

type QuizResponse struct {
	ID                uuid.UUID `json:"id"`
	Question          string    `json:"question"`
	Answer            string    `json:"answer"`
	Options           []string  `json:"options"`
	Hint              string    `json:"hint,omitempty"`
	CorrectResponse   string    `json:"correct_response,omitempty"`
	IncorrectResponse string    `json:"incorrect_response,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

func NewQuizResponses(questions []models.QuizQuestion) []QuizResponse {
	out := make([]QuizResponse, 0, len(questions))
	for _, q := range questions {
		out = append(out, QuizResponse{
			ID:                q.ID,
			Question:          q.Question,
			Answer:            q.Answer,
			Options:           q.Options,
			Hint:              q.Hint,
			CorrectResponse:   q.CorrectResponse,
			IncorrectResponse: q.IncorrectResponse,
			CreatedAt:         q.CreatedAt,
		})
	}

	return out
}

type QuizPayload struct {
	Question          string    `json:"question" validate:"required"`
	Answer            string    `json:"answer" validate:"required"`
	Options           []string  `json:"options" validate:"required,min=2"`
	Hint              string    `json:"hint"`
	CorrectResponse   string    `json:"correct_response"`
	IncorrectResponse string    `json:"incorrect_response"`
	CreatedAt         time.Time `json:"created_at"`
}

// QuizBulkRequest replaces the whole question set. Quiz questions carry
// no hosted assets, so there is nothing to release.
type QuizBulkRequest struct {
	Items []QuizPayload `json:"items"`
}

func (r QuizBulkRequest) ToModels() []models.QuizQuestion {
	questions := make([]models.QuizQuestion, 0, len(r.Items))
	for _, p := range r.Items {
		questions = append(questions, models.QuizQuestion{
			Question:          p.Question,
			Answer:            p.Answer,
			Options:           p.Options,
			Hint:              p.Hint,
			CorrectResponse:   p.CorrectResponse,
			IncorrectResponse: p.IncorrectResponse,
			CreatedAt:         p.CreatedAt,
		})
	}

	return questions
}

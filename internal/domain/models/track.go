package models

import (
	"time"

	"github.com/google/uuid"
)

type Track struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Artist    string    `json:"artist"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

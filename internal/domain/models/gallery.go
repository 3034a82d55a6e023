package models

import (
	"time"

	"github.com/google/uuid"
)

// GalleryItem is one persisted gallery entry. URLs are ordered: position is
// display order and the first element is the cover image.
type GalleryItem struct {
	ID          uuid.UUID              `json:"id"`
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	URLs        []string               `json:"urls"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
}

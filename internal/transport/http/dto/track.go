package dto

import (
	"time"

	"github.com/google/uuid"

	"vltweb/internal/domain/models"
)

type TrackResponse struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Artist    string    `json:"artist"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

func NewTrackResponses(tracks []models.Track) []TrackResponse {
	out := make([]TrackResponse, 0, len(tracks))
	for _, t := range tracks {
		out = append(out, TrackResponse{
			ID:        t.ID,
			Title:     t.Title,
			Artist:    t.Artist,
			URL:       t.URL,
			CreatedAt: t.CreatedAt,
		})
	}

	return out
}

type TrackPayload struct {
	Title     string    `json:"title" validate:"required"`
	Artist    string    `json:"artist"`
	URL       string    `json:"url" validate:"required,url"`
	CreatedAt time.Time `json:"created_at"`
}

// TrackBulkRequest replaces the whole playlist.
type TrackBulkRequest struct {
	Items       []TrackPayload `json:"items"`
	DeletedURLs []string       `json:"deletedUrls"`
}

func (r TrackBulkRequest) ToModels() []models.Track {
	tracks := make([]models.Track, 0, len(r.Items))
	for _, p := range r.Items {
		tracks = append(tracks, models.Track{
			Title:     p.Title,
			Artist:    p.Artist,
			URL:       p.URL,
			CreatedAt: p.CreatedAt,
		})
	}

	return tracks
}

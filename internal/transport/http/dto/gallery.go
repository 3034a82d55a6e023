package dto

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"vltweb/internal/domain/models"
)

// ImageResponse is the wire shape of one gallery item.
type ImageResponse struct {
	ID          uuid.UUID              `json:"id"`
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	URLs        []string               `json:"urls"`
	Metadata    map[string]interface{} `json:"metadata"`
	CreatedAt   time.Time              `json:"created_at"`
}

func NewImageResponse(item models.GalleryItem) ImageResponse {
	return ImageResponse{
		ID:          item.ID,
		Title:       item.Title,
		Description: item.Description,
		URLs:        item.URLs,
		Metadata:    item.Metadata,
		CreatedAt:   item.CreatedAt,
	}
}

func NewImageResponses(items []models.GalleryItem) []ImageResponse {
	out := make([]ImageResponse, 0, len(items))
	for _, item := range items {
		out = append(out, NewImageResponse(item))
	}

	return out
}

// ImagePayload carries one item of a bulk write. Older admin builds send
// a singular url instead of the urls list, and an item may arrive with no
// urls at all, so neither field is required.
type ImagePayload struct {
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	URL         string                 `json:"url" validate:"omitempty,url"`
	URLs        []string               `json:"urls" validate:"dive,url"`
	Metadata    map[string]interface{} `json:"metadata"`
	CreatedAt   time.Time              `json:"created_at"`
}

func (p ImagePayload) ToModel() models.GalleryItem {
	urls := p.URLs
	if len(urls) == 0 && p.URL != "" {
		urls = []string{p.URL}
	}

	return models.GalleryItem{
		Title:       p.Title,
		Description: p.Description,
		URLs:        urls,
		Metadata:    p.Metadata,
		CreatedAt:   p.CreatedAt,
	}
}

// ImageBulkRequest replaces the whole gallery. Older admin builds sent a
// bare array of items, current ones send an object that also carries the
// hosted urls to release, so both shapes are accepted.
type ImageBulkRequest struct {
	Items       []ImagePayload `json:"items"`
	DeletedURLs []string       `json:"deletedUrls"`
}

func (r *ImageBulkRequest) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []ImagePayload
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}

		r.Items = items
		r.DeletedURLs = nil

		return nil
	}

	type plain ImageBulkRequest
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}

	*r = ImageBulkRequest(p)

	return nil
}

func (r ImageBulkRequest) ToModels() []models.GalleryItem {
	items := make([]models.GalleryItem, 0, len(r.Items))
	for _, p := range r.Items {
		items = append(items, p.ToModel())
	}

	return items
}

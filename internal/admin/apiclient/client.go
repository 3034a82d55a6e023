// Package apiclient is the admin-side HTTP client for the vltweb API.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"vltweb/internal/domain/models"
	"vltweb/internal/transport/http/dto"
	"vltweb/internal/transport/http/dto/request"
)

// ErrPersistence marks a failure reported by the server while writing a
// collection, as opposed to transport errors reaching it.
var ErrPersistence = errors.New("server rejected write")

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Login exchanges the shared secret for a bearer token used on every
// subsequent write.
func (c *Client) Login(ctx context.Context, secret string) error {
	const op = "apiclient.Client.Login"

	var data struct {
		Token string `json:"token"`
	}
	err := c.do(ctx, http.MethodPost, "/api/login", request.LoginRequest{Secret: secret}, &data)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	c.token = data.Token

	return nil
}

func (c *Client) ListImages(ctx context.Context) ([]models.GalleryItem, error) {
	const op = "apiclient.Client.ListImages"

	var data []dto.ImageResponse
	if err := c.do(ctx, http.MethodGet, "/api/images", nil, &data); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	items := make([]models.GalleryItem, 0, len(data))
	for _, r := range data {
		items = append(items, models.GalleryItem{
			ID:          r.ID,
			Title:       r.Title,
			Description: r.Description,
			URLs:        r.URLs,
			Metadata:    r.Metadata,
			CreatedAt:   r.CreatedAt,
		})
	}

	return items, nil
}

func (c *Client) ListTracks(ctx context.Context) ([]models.Track, error) {
	const op = "apiclient.Client.ListTracks"

	var data []dto.TrackResponse
	if err := c.do(ctx, http.MethodGet, "/api/tracks", nil, &data); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	tracks := make([]models.Track, 0, len(data))
	for _, r := range data {
		tracks = append(tracks, models.Track{
			ID:        r.ID,
			Title:     r.Title,
			Artist:    r.Artist,
			URL:       r.URL,
			CreatedAt: r.CreatedAt,
		})
	}

	return tracks, nil
}

func (c *Client) ListQuizzes(ctx context.Context) ([]models.QuizQuestion, error) {
	const op = "apiclient.Client.ListQuizzes"

	var data []dto.QuizResponse
	if err := c.do(ctx, http.MethodGet, "/api/quiz", nil, &data); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	questions := make([]models.QuizQuestion, 0, len(data))
	for _, r := range data {
		questions = append(questions, models.QuizQuestion{
			ID:                r.ID,
			Question:          r.Question,
			Answer:            r.Answer,
			Options:           r.Options,
			Hint:              r.Hint,
			CorrectResponse:   r.CorrectResponse,
			IncorrectResponse: r.IncorrectResponse,
			CreatedAt:         r.CreatedAt,
		})
	}

	return questions, nil
}

// ReplaceImages swaps the whole gallery and returns the authoritative
// server records.
func (c *Client) ReplaceImages(ctx context.Context, items []models.GalleryItem, deletedURLs []string) ([]models.GalleryItem, error) {
	const op = "apiclient.Client.ReplaceImages"

	req := dto.ImageBulkRequest{DeletedURLs: deletedURLs}
	for _, item := range items {
		req.Items = append(req.Items, dto.ImagePayload{
			Title:       item.Title,
			Description: item.Description,
			URLs:        item.URLs,
			Metadata:    item.Metadata,
			CreatedAt:   item.CreatedAt,
		})
	}

	var data []dto.ImageResponse
	if err := c.do(ctx, http.MethodPost, "/api/images/bulk", req, &data); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]models.GalleryItem, 0, len(data))
	for _, r := range data {
		out = append(out, models.GalleryItem{
			ID:          r.ID,
			Title:       r.Title,
			Description: r.Description,
			URLs:        r.URLs,
			Metadata:    r.Metadata,
			CreatedAt:   r.CreatedAt,
		})
	}

	return out, nil
}

func (c *Client) ReplaceTracks(ctx context.Context, tracks []models.Track, deletedURLs []string) ([]models.Track, error) {
	const op = "apiclient.Client.ReplaceTracks"

	req := dto.TrackBulkRequest{DeletedURLs: deletedURLs}
	for _, t := range tracks {
		req.Items = append(req.Items, dto.TrackPayload{
			Title:     t.Title,
			Artist:    t.Artist,
			URL:       t.URL,
			CreatedAt: t.CreatedAt,
		})
	}

	var data []dto.TrackResponse
	if err := c.do(ctx, http.MethodPost, "/api/tracks/bulk", req, &data); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]models.Track, 0, len(data))
	for _, r := range data {
		out = append(out, models.Track{
			ID:        r.ID,
			Title:     r.Title,
			Artist:    r.Artist,
			URL:       r.URL,
			CreatedAt: r.CreatedAt,
		})
	}

	return out, nil
}

func (c *Client) ReplaceQuizzes(ctx context.Context, questions []models.QuizQuestion) ([]models.QuizQuestion, error) {
	const op = "apiclient.Client.ReplaceQuizzes"

	var req dto.QuizBulkRequest
	for _, q := range questions {
		req.Items = append(req.Items, dto.QuizPayload{
			Question:          q.Question,
			Answer:            q.Answer,
			Options:           q.Options,
			Hint:              q.Hint,
			CorrectResponse:   q.CorrectResponse,
			IncorrectResponse: q.IncorrectResponse,
			CreatedAt:         q.CreatedAt,
		})
	}

	var data []dto.QuizResponse
	if err := c.do(ctx, http.MethodPost, "/api/quiz/bulk", req, &data); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := make([]models.QuizQuestion, 0, len(data))
	for _, r := range data {
		out = append(out, models.QuizQuestion{
			ID:                r.ID,
			Question:          r.Question,
			Answer:            r.Answer,
			Options:           r.Options,
			Hint:              r.Hint,
			CorrectResponse:   r.CorrectResponse,
			IncorrectResponse: r.IncorrectResponse,
			CreatedAt:         r.CreatedAt,
		})
	}

	return out, nil
}

// Notify pushes an event to every client connected to the server's
// event stream.
func (c *Client) Notify(ctx context.Context, event string, payload any) error {
	const op = "apiclient.Client.Notify"

	err := c.do(ctx, http.MethodPost, "/api/events/notify", request.NotifyRequest{Event: event, Payload: payload}, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= http.StatusBadRequest {
		var envelope struct {
			Error   string `json:"error"`
			Details string `json:"details"`
		}
		_ = json.Unmarshal(raw, &envelope)
		if envelope.Error != "" {
			return fmt.Errorf("%w: %s %s: %s (%s)", ErrPersistence, method, path, envelope.Error, envelope.Details)
		}

		return fmt.Errorf("%w: %s %s: status %d", ErrPersistence, method, path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}

	var envelope struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return err
	}

	return json.Unmarshal(envelope.Data, out)
}

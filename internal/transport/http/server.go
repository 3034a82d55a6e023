package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"vltweb/internal/domain/models"
	"vltweb/internal/lib/logger/sl"
	"vltweb/internal/metrics"
	quizservice "vltweb/internal/services/quiz_service"
	"vltweb/internal/sse"
	"vltweb/internal/storage"
	"vltweb/internal/transport/http/dto"
	"vltweb/internal/transport/http/dto/request"
	"vltweb/internal/transport/http/dto/response"
)

type GalleryService interface {
	List(ctx context.Context) ([]models.GalleryItem, error)
	GetByID(ctx context.Context, id uuid.UUID) (models.GalleryItem, error)
	Create(ctx context.Context, item models.GalleryItem) (models.GalleryItem, error)
	Update(ctx context.Context, item models.GalleryItem) (models.GalleryItem, error)
	Delete(ctx context.Context, id uuid.UUID) error
	BulkReplace(ctx context.Context, items []models.GalleryItem, deletedURLs []string) ([]models.GalleryItem, error)
}

type TrackService interface {
	List(ctx context.Context) ([]models.Track, error)
	BulkReplace(ctx context.Context, tracks []models.Track, deletedURLs []string) ([]models.Track, error)
}

type QuizService interface {
	List(ctx context.Context) ([]models.QuizQuestion, error)
	BulkReplace(ctx context.Context, questions []models.QuizQuestion) ([]models.QuizQuestion, error)
}

type AuthService interface {
	Login(ctx context.Context, secret string) (string, error)
}

type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

type Routers struct {
	log            *slog.Logger
	GalleryService GalleryService
	TrackService   TrackService
	QuizService    QuizService
	AuthService    AuthService
	Hub            *sse.Hub
	DB             HealthChecker
	AssetProvider  string
}

func NewRouter(log *slog.Logger, gallery GalleryService, tracks TrackService, quiz QuizService, auth AuthService, hub *sse.Hub, db HealthChecker, assetProvider string) *Routers {
	return &Routers{
		log:            log,
		GalleryService: gallery,
		TrackService:   tracks,
		QuizService:    quiz,
		AuthService:    auth,
		Hub:            hub,
		DB:             db,
		AssetProvider:  assetProvider,
	}
}

func (r *Routers) Login(c echo.Context) error {
	const op = "http.routers.Login"
	log := r.log.With(slog.String("op", op))

	var req request.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := c.Validate(req); err != nil {
		log.Warn("invalid login request")
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	token, err := r.AuthService.Login(c.Request().Context(), req.Secret)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, response.ErrAuthenticationFailed)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(map[string]string{"token": token}))
}

func (r *Routers) ListImages(c echo.Context) error {
	const op = "http.routers.ListImages"

	items, err := r.GalleryService.List(c.Request().Context())
	if err != nil {
		r.log.Error("failed to list images", slog.String("op", op), sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(dto.NewImageResponses(items)))
}

func (r *Routers) GetImage(c echo.Context) error {
	const op = "http.routers.GetImage"

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	item, err := r.GalleryService.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.JSON(http.StatusNotFound, response.ErrNotFound)
		}
		r.log.Error("failed to get image", slog.String("op", op), sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(dto.NewImageResponse(item)))
}

func (r *Routers) CreateImage(c echo.Context) error {
	const op = "http.routers.CreateImage"

	var payload dto.ImagePayload
	if err := c.Bind(&payload); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}
	if err := c.Validate(payload); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrValidationFailed)
	}

	created, err := r.GalleryService.Create(c.Request().Context(), payload.ToModel())
	if err != nil {
		r.log.Error("failed to create image", slog.String("op", op), sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	return c.JSON(http.StatusCreated, response.SuccessResponse(dto.NewImageResponse(created)))
}

func (r *Routers) UpdateImage(c echo.Context) error {
	const op = "http.routers.UpdateImage"

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	var payload dto.ImagePayload
	if err := c.Bind(&payload); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}
	if err := c.Validate(payload); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrValidationFailed)
	}

	item := payload.ToModel()
	item.ID = id

	updated, err := r.GalleryService.Update(c.Request().Context(), item)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.JSON(http.StatusNotFound, response.ErrNotFound)
		}
		r.log.Error("failed to update image", slog.String("op", op), sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(dto.NewImageResponse(updated)))
}

func (r *Routers) DeleteImage(c echo.Context) error {
	const op = "http.routers.DeleteImage"

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := r.GalleryService.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.JSON(http.StatusNotFound, response.ErrNotFound)
		}
		r.log.Error("failed to delete image", slog.String("op", op), sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(map[string]string{"id": id.String()}))
}

// BulkReplaceImages swaps the entire gallery in one request. The body is
// either a bare array of items or an object carrying items plus the
// hosted urls to release.
func (r *Routers) BulkReplaceImages(c echo.Context) error {
	const op = "http.routers.BulkReplaceImages"

	var req dto.ImageBulkRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	for _, item := range req.Items {
		if err := c.Validate(item); err != nil {
			return c.JSON(http.StatusBadRequest, response.ErrValidationFailed)
		}
	}

	inserted, err := r.GalleryService.BulkReplace(c.Request().Context(), req.ToModels(), req.DeletedURLs)
	if err != nil {
		r.log.Error("failed to replace gallery", slog.String("op", op), sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(dto.NewImageResponses(inserted)))
}

func (r *Routers) ListTracks(c echo.Context) error {
	const op = "http.routers.ListTracks"

	tracks, err := r.TrackService.List(c.Request().Context())
	if err != nil {
		r.log.Error("failed to list tracks", slog.String("op", op), sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(dto.NewTrackResponses(tracks)))
}

func (r *Routers) BulkReplaceTracks(c echo.Context) error {
	const op = "http.routers.BulkReplaceTracks"

	var req dto.TrackBulkRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	for _, item := range req.Items {
		if err := c.Validate(item); err != nil {
			return c.JSON(http.StatusBadRequest, response.ErrValidationFailed)
		}
	}

	inserted, err := r.TrackService.BulkReplace(c.Request().Context(), req.ToModels(), req.DeletedURLs)
	if err != nil {
		r.log.Error("failed to replace playlist", slog.String("op", op), sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(dto.NewTrackResponses(inserted)))
}

func (r *Routers) ListQuizzes(c echo.Context) error {
	const op = "http.routers.ListQuizzes"

	questions, err := r.QuizService.List(c.Request().Context())
	if err != nil {
		r.log.Error("failed to list quiz questions", slog.String("op", op), sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(dto.NewQuizResponses(questions)))
}

func (r *Routers) BulkReplaceQuizzes(c echo.Context) error {
	const op = "http.routers.BulkReplaceQuizzes"

	var req dto.QuizBulkRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	for _, item := range req.Items {
		if err := c.Validate(item); err != nil {
			return c.JSON(http.StatusBadRequest, response.ErrValidationFailed)
		}
	}

	inserted, err := r.QuizService.BulkReplace(c.Request().Context(), req.ToModels())
	if err != nil {
		var verr *quizservice.ValidationError
		if errors.As(err, &verr) {
			return c.JSON(http.StatusBadRequest,
				response.ErrorResponseWithDetails("validation_failed", verr.Error()))
		}
		r.log.Error("failed to replace quiz questions", slog.String("op", op), sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrInternal)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(dto.NewQuizResponses(inserted)))
}

// Events streams server-sent events until the client goes away. A comment
// frame is written first so proxies flush the connection.
func (r *Routers) Events(c echo.Context) error {
	w := c.Response()
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	flusher, ok := w.Writer.(http.Flusher)
	if !ok {
		return echo.NewHTTPError(http.StatusInternalServerError, "streaming unsupported")
	}

	client := r.Hub.Register()
	defer r.Hub.Unregister(client)
	metrics.SSEClients.Inc()
	defer metrics.SSEClients.Dec()

	if _, err := w.Write([]byte(": connected\n\n")); err != nil {
		return nil
	}
	flusher.Flush()

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case frame, ok := <-client.Ch:
			if !ok {
				return nil
			}
			if _, err := w.Write(frame); err != nil {
				return nil
			}
			flusher.Flush()
		}
	}
}

// Notify lets trusted tooling push an arbitrary event to every connected
// client.
func (r *Routers) Notify(c echo.Context) error {
	var req request.NotifyRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	r.Hub.Broadcast(req.Event, req.Payload)

	return c.JSON(http.StatusOK, response.SuccessResponse(map[string]int{"clients": r.Hub.ClientCount()}))
}

func (r *Routers) Health(c echo.Context) error {
	dbOK := true
	if err := r.DB.HealthCheck(c.Request().Context()); err != nil {
		dbOK = false
	}

	status := http.StatusOK
	if !dbOK {
		status = http.StatusServiceUnavailable
	}

	return c.JSON(status, map[string]any{
		"status":         map[bool]string{true: "ok", false: "degraded"}[dbOK],
		"database":       dbOK,
		"asset_provider": r.AssetProvider,
		"sse_clients":    r.Hub.ClientCount(),
	})
}

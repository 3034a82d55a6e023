// Package sync pushes a draft workspace to the server: it uploads every
// pending file, then replaces each collection wholesale and reseeds the
// draft from the authoritative response.
package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"vltweb/internal/admin/draft"
	"vltweb/internal/domain/models"
	"vltweb/internal/lib/logger/sl"
	"vltweb/internal/storage/assethost"
)

// ErrSaveInFlight is returned when Save is called while another save is
// still running.
var ErrSaveInFlight = errors.New("save already in progress")

// StoreClient is the slice of the server API the reconciler needs.
type StoreClient interface {
	ReplaceImages(ctx context.Context, items []models.GalleryItem, deletedURLs []string) ([]models.GalleryItem, error)
	ReplaceTracks(ctx context.Context, tracks []models.Track, deletedURLs []string) ([]models.Track, error)
	ReplaceQuizzes(ctx context.Context, questions []models.QuizQuestion) ([]models.QuizQuestion, error)
}

// Lister reads the server's current collections.
type Lister interface {
	ListImages(ctx context.Context) ([]models.GalleryItem, error)
	ListTracks(ctx context.Context) ([]models.Track, error)
	ListQuizzes(ctx context.Context) ([]models.QuizQuestion, error)
}

// LoadDraft seeds the draft from the server's current state. A collection
// that cannot be read is logged and seeded empty so editing can proceed
// offline; it never fails the caller.
func LoadDraft(ctx context.Context, log *slog.Logger, store Lister, d *draft.Draft) {
	const op = "sync.LoadDraft"
	l := log.With(slog.String("op", op))

	images, err := store.ListImages(ctx)
	if err != nil {
		l.Warn("could not load images, starting empty", sl.Err(err))
		images = nil
	}

	tracks, err := store.ListTracks(ctx)
	if err != nil {
		l.Warn("could not load tracks, starting empty", sl.Err(err))
		tracks = nil
	}

	quizzes, err := store.ListQuizzes(ctx)
	if err != nil {
		l.Warn("could not load quiz questions, starting empty", sl.Err(err))
		quizzes = nil
	}

	d.LoadFromServer(images, tracks, quizzes)
}

// Outcome reports what each collection submit did. A nil error with a
// zero count means the collection was submitted empty, not skipped.
type Outcome struct {
	ImagesSaved  int
	TracksSaved  int
	QuizzesSaved int

	ImagesErr  error
	TracksErr  error
	QuizzesErr error
}

// Failed reports whether any collection submit failed.
func (o Outcome) Failed() bool {
	return o.ImagesErr != nil || o.TracksErr != nil || o.QuizzesErr != nil
}

type Reconciler struct {
	log      *slog.Logger
	store    StoreClient
	uploader assethost.Uploader

	imageFolder string
	audioFolder string

	mu       sync.Mutex
	progress func(done, total int)
}

func New(log *slog.Logger, store StoreClient, uploader assethost.Uploader, imageFolder, audioFolder string) *Reconciler {
	return &Reconciler{
		log:         log,
		store:       store,
		uploader:    uploader,
		imageFolder: imageFolder,
		audioFolder: audioFolder,
	}
}

// OnProgress registers a callback invoked after every finished upload
// with the number done and the total. Set it before calling Save.
func (r *Reconciler) OnProgress(fn func(done, total int)) {
	r.progress = fn
}

// Save reconciles the draft with the server in two phases. Phase one
// uploads pending files in draft order; the first upload failure aborts
// the whole save, but refs resolved so far keep their urls so a retry
// does not re-upload them. Phase two submits each collection
// independently; a collection that succeeds is reseeded from the server
// response and its deletion set cleared, a collection that fails keeps
// its local state for the next attempt.
func (r *Reconciler) Save(ctx context.Context, d *draft.Draft) (Outcome, error) {
	const op = "sync.Reconciler.Save"

	if !r.mu.TryLock() {
		return Outcome{}, fmt.Errorf("%s: %w", op, ErrSaveInFlight)
	}
	defer r.mu.Unlock()

	log := r.log.With(slog.String("op", op))

	if err := r.uploadPending(ctx, log, d); err != nil {
		return Outcome{}, fmt.Errorf("%s: %w", op, err)
	}

	images, err := projectImages(d)
	if err != nil {
		return Outcome{}, fmt.Errorf("%s: %w", op, err)
	}
	tracks, err := projectTracks(d)
	if err != nil {
		return Outcome{}, fmt.Errorf("%s: %w", op, err)
	}
	quizzes := projectQuizzes(d)

	var out Outcome

	if saved, err := r.store.ReplaceImages(ctx, images, d.DeletedImageURLs()); err != nil {
		log.Error("gallery submit failed", sl.Err(err))
		out.ImagesErr = err
	} else {
		out.ImagesSaved = len(saved)
		reseedImages(d, saved)
		d.ClearDeletedImageURLs()
	}

	if saved, err := r.store.ReplaceTracks(ctx, tracks, d.DeletedAudioURLs()); err != nil {
		log.Error("playlist submit failed", sl.Err(err))
		out.TracksErr = err
	} else {
		out.TracksSaved = len(saved)
		reseedTracks(d, saved)
		d.ClearDeletedAudioURLs()
	}

	if saved, err := r.store.ReplaceQuizzes(ctx, quizzes); err != nil {
		log.Error("quiz submit failed", sl.Err(err))
		out.QuizzesErr = err
	} else {
		out.QuizzesSaved = len(saved)
		reseedQuizzes(d, saved)
	}

	if out.Failed() {
		return out, fmt.Errorf("%s: one or more collections failed to save", op)
	}

	log.Info("draft saved",
		slog.Int("images", out.ImagesSaved),
		slog.Int("tracks", out.TracksSaved),
		slog.Int("quizzes", out.QuizzesSaved),
	)

	return out, nil
}

// uploadPending resolves pending refs to durable urls, in draft order.
// A resolved ref is rewritten in place immediately, so an abort partway
// through leaves earlier uploads usable on retry.
func (r *Reconciler) uploadPending(ctx context.Context, log *slog.Logger, d *draft.Draft) error {
	total := d.PendingCount()
	if total == 0 {
		return nil
	}

	done := 0
	report := func() {
		done++
		if r.progress != nil {
			r.progress(done, total)
		}
	}

	for i := range d.Images {
		for j := range d.Images[i].Refs {
			ref := &d.Images[i].Refs[j]
			if !ref.IsPending() {
				continue
			}

			url, err := r.uploadFile(ctx, ref.Pending.Path, r.imageFolder, assethost.KindImage)
			if err != nil {
				log.Error("image upload failed", slog.String("path", ref.Pending.Path), sl.Err(err))
				return err
			}

			*ref = draft.DurableRef(url)
			report()
		}
	}

	for i := range d.Tracks {
		ref := &d.Tracks[i].Ref
		if !ref.IsPending() {
			continue
		}

		url, err := r.uploadFile(ctx, ref.Pending.Path, r.audioFolder, assethost.KindAudio)
		if err != nil {
			log.Error("audio upload failed", slog.String("path", ref.Pending.Path), sl.Err(err))
			return err
		}

		*ref = draft.DurableRef(url)
		report()
	}

	return nil
}

func (r *Reconciler) uploadFile(ctx context.Context, path, folder string, kind assethost.Kind) (string, error) {
	pending := draft.PendingFile{Path: path}

	f, err := pending.Preview()
	if err != nil {
		return "", err
	}
	defer f.Close()

	return r.uploader.Upload(ctx, f, filepath.Base(path), folder, kind)
}

func projectImages(d *draft.Draft) ([]models.GalleryItem, error) {
	items := make([]models.GalleryItem, 0, len(d.Images))
	for i, img := range d.Images {
		urls := make([]string, 0, len(img.Refs))
		for _, ref := range img.Refs {
			if ref.IsPending() {
				return nil, fmt.Errorf("image %d still has a pending file", i)
			}
			urls = append(urls, ref.URL)
		}
		items = append(items, models.GalleryItem{
			Title:       img.Title,
			Description: img.Description,
			URLs:        urls,
			Metadata:    img.Metadata,
			CreatedAt:   img.CreatedAt,
		})
	}

	return items, nil
}

func projectTracks(d *draft.Draft) ([]models.Track, error) {
	tracks := make([]models.Track, 0, len(d.Tracks))
	for i, t := range d.Tracks {
		if t.Ref.IsPending() {
			return nil, fmt.Errorf("track %d still has a pending file", i)
		}
		tracks = append(tracks, models.Track{
			Title:     t.Title,
			Artist:    t.Artist,
			URL:       t.Ref.URL,
			CreatedAt: t.CreatedAt,
		})
	}

	return tracks, nil
}

func projectQuizzes(d *draft.Draft) []models.QuizQuestion {
	questions := make([]models.QuizQuestion, 0, len(d.Quizzes))
	for _, q := range d.Quizzes {
		questions = append(questions, models.QuizQuestion{
			Question:          q.Question,
			Answer:            q.Answer,
			Options:           q.Options,
			Hint:              q.Hint,
			CorrectResponse:   q.CorrectResponse,
			IncorrectResponse: q.IncorrectResponse,
			CreatedAt:         q.CreatedAt,
		})
	}

	return questions
}

func reseedImages(d *draft.Draft, saved []models.GalleryItem) {
	d.Images = d.Images[:0]
	for _, item := range saved {
		refs := make([]draft.MediaRef, 0, len(item.URLs))
		for _, url := range item.URLs {
			refs = append(refs, draft.DurableRef(url))
		}
		d.Images = append(d.Images, draft.ImageDraft{
			ID:          uuid.New(),
			ServerID:    item.ID,
			Title:       item.Title,
			Description: item.Description,
			Refs:        refs,
			Metadata:    item.Metadata,
			CreatedAt:   item.CreatedAt,
		})
	}
}

func reseedTracks(d *draft.Draft, saved []models.Track) {
	d.Tracks = d.Tracks[:0]
	for _, t := range saved {
		d.Tracks = append(d.Tracks, draft.TrackDraft{
			ID:        uuid.New(),
			ServerID:  t.ID,
			Title:     t.Title,
			Artist:    t.Artist,
			Ref:       draft.DurableRef(t.URL),
			CreatedAt: t.CreatedAt,
		})
	}
}

func reseedQuizzes(d *draft.Draft, saved []models.QuizQuestion) {
	d.Quizzes = d.Quizzes[:0]
	for _, q := range saved {
		d.Quizzes = append(d.Quizzes, draft.QuizDraft{
			ID:                uuid.New(),
			ServerID:          q.ID,
			Question:          q.Question,
			Answer:            q.Answer,
			Options:           q.Options,
			Hint:              q.Hint,
			CorrectResponse:   q.CorrectResponse,
			IncorrectResponse: q.IncorrectResponse,
			CreatedAt:         q.CreatedAt,
		})
	}
}

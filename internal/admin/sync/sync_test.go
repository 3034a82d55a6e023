package sync

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"vltweb/internal/admin/draft"
	"vltweb/internal/domain/models"
	"vltweb/internal/storage/assethost"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) ReplaceImages(ctx context.Context, items []models.GalleryItem, deletedURLs []string) ([]models.GalleryItem, error) {
	args := m.Called(ctx, items, deletedURLs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.GalleryItem), args.Error(1)
}

func (m *MockStore) ReplaceTracks(ctx context.Context, tracks []models.Track, deletedURLs []string) ([]models.Track, error) {
	args := m.Called(ctx, tracks, deletedURLs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Track), args.Error(1)
}

func (m *MockStore) ReplaceQuizzes(ctx context.Context, questions []models.QuizQuestion) ([]models.QuizQuestion, error) {
	args := m.Called(ctx, questions)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.QuizQuestion), args.Error(1)
}

// fakeUploader resolves files to predictable urls and records the order
// it saw them in. failAt makes the nth upload fail.
type fakeUploader struct {
	uploaded []string
	failAt   int
}

func (f *fakeUploader) Upload(_ context.Context, file io.Reader, filename, folder string, _ assethost.Kind) (string, error) {
	if _, err := io.ReadAll(file); err != nil {
		return "", err
	}

	if f.failAt > 0 && len(f.uploaded)+1 == f.failAt {
		return "", errors.New("host unavailable")
	}

	f.uploaded = append(f.uploaded, filename)

	return "https://cdn/" + folder + "/" + filename, nil
}

func tempFile(t *testing.T, name string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("payload"), 0o644))

	return path
}

func TestReconciler_Save_UploadsInDraftOrder(t *testing.T) {
	ctx := context.Background()
	store := new(MockStore)
	up := &fakeUploader{}
	rec := New(slog.Default(), store, up, "site", "site/music")

	d := draft.New()
	d.AddImage(draft.ImageDraft{
		Title: "Trip",
		Refs: []draft.MediaRef{
			draft.PendingRef(tempFile(t, "a.jpg")),
			draft.DurableRef("https://cdn/site/kept.jpg"),
			draft.PendingRef(tempFile(t, "c.jpg")),
		},
	})
	d.AddTrack(draft.TrackDraft{Title: "Song", Ref: draft.PendingRef(tempFile(t, "song.mp3"))})

	store.On("ReplaceImages", ctx, mock.MatchedBy(func(items []models.GalleryItem) bool {
		return len(items) == 1 &&
			items[0].URLs[0] == "https://cdn/site/a.jpg" &&
			items[0].URLs[1] == "https://cdn/site/kept.jpg" &&
			items[0].URLs[2] == "https://cdn/site/c.jpg"
	}), []string{}).Return([]models.GalleryItem{{Title: "Trip", URLs: []string{
		"https://cdn/site/a.jpg", "https://cdn/site/kept.jpg", "https://cdn/site/c.jpg",
	}}}, nil).Once()
	store.On("ReplaceTracks", ctx, mock.Anything, []string{}).
		Return([]models.Track{{Title: "Song", URL: "https://cdn/site/music/song.mp3"}}, nil).Once()
	store.On("ReplaceQuizzes", ctx, mock.Anything).
		Return([]models.QuizQuestion{}, nil).Once()

	var progress [][2]int
	rec.OnProgress(func(done, total int) {
		progress = append(progress, [2]int{done, total})
	})

	out, err := rec.Save(ctx, d)
	require.NoError(t, err)

	assert.Equal(t, []string{"a.jpg", "c.jpg", "song.mp3"}, up.uploaded,
		"pending files upload in draft order, images before tracks")
	assert.Equal(t, [][2]int{{1, 3}, {2, 3}, {3, 3}}, progress)
	assert.Equal(t, 1, out.ImagesSaved)
	assert.Equal(t, 1, out.TracksSaved)
	assert.Equal(t, 0, d.PendingCount(), "draft is reseeded with durable refs only")

	store.AssertExpectations(t)
}

func TestReconciler_Save_AbortsOnUploadFailure(t *testing.T) {
	ctx := context.Background()
	store := new(MockStore)
	up := &fakeUploader{failAt: 2}
	rec := New(slog.Default(), store, up, "site", "site/music")

	d := draft.New()
	d.AddImage(draft.ImageDraft{Refs: []draft.MediaRef{
		draft.PendingRef(tempFile(t, "first.jpg")),
		draft.PendingRef(tempFile(t, "second.jpg")),
	}})

	_, err := rec.Save(ctx, d)
	require.Error(t, err)

	// nothing was submitted
	store.AssertNotCalled(t, "ReplaceImages", mock.Anything, mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "ReplaceTracks", mock.Anything, mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "ReplaceQuizzes", mock.Anything, mock.Anything)

	// the first upload stays resolved so a retry will not redo it
	assert.False(t, d.Images[0].Refs[0].IsPending())
	assert.Equal(t, "https://cdn/site/first.jpg", d.Images[0].Refs[0].URL)
	assert.True(t, d.Images[0].Refs[1].IsPending())
}

func TestReconciler_Save_PartialCollectionFailure(t *testing.T) {
	ctx := context.Background()
	store := new(MockStore)
	rec := New(slog.Default(), store, &fakeUploader{}, "site", "site/music")

	d := draft.New()
	d.AddImage(draft.ImageDraft{Title: "A", Refs: []draft.MediaRef{draft.DurableRef("https://cdn/a.jpg")}})
	d.AddQuiz(draft.QuizDraft{Question: "Q", Answer: "A", Options: []string{"A", "B"}})
	d.RemoveImage(0)
	d.AddImage(draft.ImageDraft{Title: "B", Refs: []draft.MediaRef{draft.DurableRef("https://cdn/b.jpg")}})

	store.On("ReplaceImages", ctx, mock.Anything, []string{"https://cdn/a.jpg"}).
		Return([]models.GalleryItem{{Title: "B", URLs: []string{"https://cdn/b.jpg"}}}, nil).Once()
	store.On("ReplaceTracks", ctx, mock.Anything, []string{}).
		Return([]models.Track{}, nil).Once()
	store.On("ReplaceQuizzes", ctx, mock.Anything).
		Return(nil, errors.New("db down")).Once()

	out, err := rec.Save(ctx, d)
	require.Error(t, err)

	assert.NoError(t, out.ImagesErr)
	assert.NoError(t, out.TracksErr)
	assert.Error(t, out.QuizzesErr)
	assert.True(t, out.Failed())

	assert.Empty(t, d.DeletedImageURLs(), "saved collections clear their deletion set")
	require.Len(t, d.Quizzes, 1)
	assert.Equal(t, "Q", d.Quizzes[0].Question, "failed collection keeps local state for retry")

	store.AssertExpectations(t)
}

func TestReconciler_Save_RejectsConcurrentSave(t *testing.T) {
	store := new(MockStore)
	rec := New(slog.Default(), store, &fakeUploader{}, "site", "site/music")

	rec.mu.Lock()
	defer rec.mu.Unlock()

	_, err := rec.Save(context.Background(), draft.New())
	assert.ErrorIs(t, err, ErrSaveInFlight)
}

func TestReconciler_Save_EmptyDraftSubmitsEmptyCollections(t *testing.T) {
	ctx := context.Background()
	store := new(MockStore)
	rec := New(slog.Default(), store, &fakeUploader{}, "site", "site/music")

	store.On("ReplaceImages", ctx, []models.GalleryItem{}, []string{}).
		Return([]models.GalleryItem{}, nil).Once()
	store.On("ReplaceTracks", ctx, []models.Track{}, []string{}).
		Return([]models.Track{}, nil).Once()
	store.On("ReplaceQuizzes", ctx, []models.QuizQuestion{}).
		Return([]models.QuizQuestion{}, nil).Once()

	out, err := rec.Save(ctx, draft.New())
	require.NoError(t, err)
	assert.False(t, out.Failed())

	store.AssertExpectations(t)
}

type MockLister struct {
	mock.Mock
}

func (m *MockLister) ListImages(ctx context.Context) ([]models.GalleryItem, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.GalleryItem), args.Error(1)
}

func (m *MockLister) ListTracks(ctx context.Context) ([]models.Track, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Track), args.Error(1)
}

func (m *MockLister) ListQuizzes(ctx context.Context) ([]models.QuizQuestion, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.QuizQuestion), args.Error(1)
}

func TestLoadDraft_SeedsCollections(t *testing.T) {
	ctx := context.Background()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	lister := new(MockLister)
	lister.On("ListImages", ctx).Return([]models.GalleryItem{{Title: "Beach", URLs: []string{"https://cdn/a.jpg"}}}, nil)
	lister.On("ListTracks", ctx).Return([]models.Track{{Title: "Song", URL: "https://cdn/song.mp3"}}, nil)
	lister.On("ListQuizzes", ctx).Return([]models.QuizQuestion{{Question: "Where?"}}, nil)

	d := draft.New()
	LoadDraft(ctx, log, lister, d)

	require.Len(t, d.Images, 1)
	require.Len(t, d.Tracks, 1)
	require.Len(t, d.Quizzes, 1)
	assert.Equal(t, "Beach", d.Images[0].Title)
	lister.AssertExpectations(t)
}

func TestLoadDraft_FailedCollectionStartsEmpty(t *testing.T) {
	ctx := context.Background()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	lister := new(MockLister)
	lister.On("ListImages", ctx).Return(nil, errors.New("gateway timeout"))
	lister.On("ListTracks", ctx).Return([]models.Track{{Title: "Song", URL: "https://cdn/song.mp3"}}, nil)
	lister.On("ListQuizzes", ctx).Return(nil, errors.New("gateway timeout"))

	d := draft.New()
	LoadDraft(ctx, log, lister, d)

	assert.Empty(t, d.Images)
	require.Len(t, d.Tracks, 1)
	assert.Empty(t, d.Quizzes)
}

func TestReconciler_Save_ReseedKeepsStoreIdentity(t *testing.T) {
	ctx := context.Background()
	store := new(MockStore)
	rec := New(slog.Default(), store, &fakeUploader{}, "site", "site/music")

	imageID := uuid.New()
	trackID := uuid.New()
	createdAt := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	d := draft.New()
	d.AddImage(draft.ImageDraft{Title: "Trip", Refs: []draft.MediaRef{draft.DurableRef("https://cdn/a.jpg")}})
	d.AddTrack(draft.TrackDraft{Title: "Song", Ref: draft.DurableRef("https://cdn/song.mp3")})

	store.On("ReplaceImages", ctx, mock.Anything, []string{}).
		Return([]models.GalleryItem{{ID: imageID, Title: "Trip", URLs: []string{"https://cdn/a.jpg"}, CreatedAt: createdAt}}, nil).Once()
	store.On("ReplaceTracks", ctx, mock.Anything, []string{}).
		Return([]models.Track{{ID: trackID, Title: "Song", URL: "https://cdn/song.mp3", CreatedAt: createdAt}}, nil).Once()
	store.On("ReplaceQuizzes", ctx, mock.Anything).
		Return([]models.QuizQuestion{}, nil).Once()

	_, err := rec.Save(ctx, d)
	require.NoError(t, err)

	require.Len(t, d.Images, 1)
	assert.Equal(t, imageID, d.Images[0].ServerID)
	assert.Equal(t, createdAt, d.Images[0].CreatedAt)
	assert.Equal(t, trackID, d.Tracks[0].ServerID)
	assert.Equal(t, createdAt, d.Tracks[0].CreatedAt)

	// a follow-up save submits the authoritative timestamp, so the store
	// does not re-stamp unchanged items
	items, err := projectImages(d)
	require.NoError(t, err)
	assert.Equal(t, createdAt, items[0].CreatedAt)

	tracks, err := projectTracks(d)
	require.NoError(t, err)
	assert.Equal(t, createdAt, tracks[0].CreatedAt)

	store.AssertExpectations(t)
}

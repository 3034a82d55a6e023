// Package draft holds the admin's local editing state: the collections as
// the admin wants them to look, with not-yet-uploaded files attached in
// place, plus the set of hosted urls that editing has orphaned.
package draft

import (
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/google/uuid"

	"vltweb/internal/domain/models"
)

// PendingFile is a local file waiting to be uploaded. It becomes a
// durable URL only when a save succeeds.
type PendingFile struct {
	Path string
}

// Preview opens the local file for inspection. The caller must close the
// returned reader.
func (p *PendingFile) Preview() (io.ReadCloser, error) {
	f, err := os.Open(p.Path)
	if err != nil {
		return nil, fmt.Errorf("draft: preview %s: %w", p.Path, err)
	}

	return f, nil
}

// MediaRef points at one media asset: either a durable hosted URL or a
// pending local file, never both.
type MediaRef struct {
	URL     string
	Pending *PendingFile
}

func DurableRef(url string) MediaRef {
	return MediaRef{URL: url}
}

func PendingRef(path string) MediaRef {
	return MediaRef{Pending: &PendingFile{Path: path}}
}

func (r MediaRef) IsPending() bool {
	return r.Pending != nil
}

// ImageDraft is one gallery item as edited locally. ID is a draft-local
// edit handle, decoupled from the store's ids. ServerID and CreatedAt
// hold the store's authoritative values and stay zero while the item has
// never been saved.
type ImageDraft struct {
	ID          uuid.UUID
	ServerID    uuid.UUID
	Title       string
	Description string
	Refs        []MediaRef
	Metadata    map[string]interface{}
	CreatedAt   time.Time
}

// TrackDraft is one playlist entry as edited locally. A track carries
// exactly one media ref.
type TrackDraft struct {
	ID        uuid.UUID
	ServerID  uuid.UUID
	Title     string
	Artist    string
	Ref       MediaRef
	CreatedAt time.Time
}

// QuizDraft is one question as edited locally. Questions carry no media.
type QuizDraft struct {
	ID       uuid.UUID
	ServerID uuid.UUID

	Question          string
	Answer            string
	Options           []string
	Hint              string
	CorrectResponse   string
	IncorrectResponse string
	CreatedAt         time.Time
}

// Draft is the whole editing workspace. It is not safe for concurrent
// use; the reconciler serializes access during a save.
type Draft struct {
	Images  []ImageDraft
	Tracks  []TrackDraft
	Quizzes []QuizDraft

	deletedImageURLs map[string]struct{}
	deletedAudioURLs map[string]struct{}
}

func New() *Draft {
	return &Draft{
		deletedImageURLs: make(map[string]struct{}),
		deletedAudioURLs: make(map[string]struct{}),
	}
}

// LoadFromServer reseeds the workspace with server state. Deletion sets
// are cleared: everything currently on the server is wanted again.
func (d *Draft) LoadFromServer(images []models.GalleryItem, tracks []models.Track, quizzes []models.QuizQuestion) {
	d.Images = make([]ImageDraft, 0, len(images))
	for _, item := range images {
		refs := make([]MediaRef, 0, len(item.URLs))
		for _, url := range item.URLs {
			refs = append(refs, DurableRef(url))
		}
		d.Images = append(d.Images, ImageDraft{
			ID:          uuid.New(),
			ServerID:    item.ID,
			Title:       item.Title,
			Description: item.Description,
			Refs:        refs,
			Metadata:    item.Metadata,
			CreatedAt:   item.CreatedAt,
		})
	}

	d.Tracks = make([]TrackDraft, 0, len(tracks))
	for _, t := range tracks {
		d.Tracks = append(d.Tracks, TrackDraft{
			ID:        uuid.New(),
			ServerID:  t.ID,
			Title:     t.Title,
			Artist:    t.Artist,
			Ref:       DurableRef(t.URL),
			CreatedAt: t.CreatedAt,
		})
	}

	d.Quizzes = make([]QuizDraft, 0, len(quizzes))
	for _, q := range quizzes {
		d.Quizzes = append(d.Quizzes, QuizDraft{
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

	d.deletedImageURLs = make(map[string]struct{})
	d.deletedAudioURLs = make(map[string]struct{})
}

// AddImage appends an item and returns its draft-local id.
func (d *Draft) AddImage(img ImageDraft) uuid.UUID {
	if img.ID == uuid.Nil {
		img.ID = uuid.New()
	}
	d.Images = append(d.Images, img)

	return img.ID
}

func (d *Draft) imageIndex(id uuid.UUID) int {
	for i := range d.Images {
		if d.Images[i].ID == id {
			return i
		}
	}

	return -1
}

func (d *Draft) trackIndex(id uuid.UUID) int {
	for i := range d.Tracks {
		if d.Tracks[i].ID == id {
			return i
		}
	}

	return -1
}

// SetImageTitle is a no-op for an unknown id.
func (d *Draft) SetImageTitle(id uuid.UUID, title string) {
	if i := d.imageIndex(id); i >= 0 {
		d.Images[i].Title = title
	}
}

func (d *Draft) SetImageDescription(id uuid.UUID, description string) {
	if i := d.imageIndex(id); i >= 0 {
		d.Images[i].Description = description
	}
}

// AttachImageFile appends a pending local file to the item's media list.
func (d *Draft) AttachImageFile(id uuid.UUID, path string) {
	if i := d.imageIndex(id); i >= 0 {
		d.Images[i].Refs = append(d.Images[i].Refs, PendingRef(path))
	}
}

// RemoveImageByID drops the item with the given draft-local id.
func (d *Draft) RemoveImageByID(id uuid.UUID) {
	d.RemoveImage(d.imageIndex(id))
}

// DetachImageRefByID removes one media ref from the item with the given
// draft-local id. Durable urls go to the deletion set; repeat calls for
// an already-detached ref are no-ops.
func (d *Draft) DetachImageRefByID(id uuid.UUID, refIdx int) {
	d.DetachImageRef(d.imageIndex(id), refIdx)
}

// RemoveImage drops one item and marks all its durable urls for release.
// Pending files are simply forgotten, nothing was uploaded yet.
func (d *Draft) RemoveImage(idx int) {
	if idx < 0 || idx >= len(d.Images) {
		return
	}

	for _, ref := range d.Images[idx].Refs {
		if !ref.IsPending() {
			d.deletedImageURLs[ref.URL] = struct{}{}
		}
	}

	d.Images = append(d.Images[:idx], d.Images[idx+1:]...)
}

// DetachImageRef removes one media ref from an item. Calling it twice
// with the same durable url is harmless: the deletion set deduplicates.
func (d *Draft) DetachImageRef(imageIdx, refIdx int) {
	if imageIdx < 0 || imageIdx >= len(d.Images) {
		return
	}

	img := &d.Images[imageIdx]
	if refIdx < 0 || refIdx >= len(img.Refs) {
		return
	}

	ref := img.Refs[refIdx]
	if !ref.IsPending() {
		d.deletedImageURLs[ref.URL] = struct{}{}
	}

	img.Refs = append(img.Refs[:refIdx], img.Refs[refIdx+1:]...)
}

func (d *Draft) AddTrack(t TrackDraft) uuid.UUID {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	d.Tracks = append(d.Tracks, t)

	return t.ID
}

// AttachTrackFile swaps the track's single media ref for a pending local
// file. A displaced durable url goes to the deletion set.
func (d *Draft) AttachTrackFile(id uuid.UUID, path string) {
	i := d.trackIndex(id)
	if i < 0 {
		return
	}

	if ref := d.Tracks[i].Ref; !ref.IsPending() && ref.URL != "" {
		d.deletedAudioURLs[ref.URL] = struct{}{}
	}

	d.Tracks[i].Ref = PendingRef(path)
}

func (d *Draft) RemoveTrackByID(id uuid.UUID) {
	d.RemoveTrack(d.trackIndex(id))
}

// RemoveTrack drops one playlist entry and marks its durable url for
// release.
func (d *Draft) RemoveTrack(idx int) {
	if idx < 0 || idx >= len(d.Tracks) {
		return
	}

	if ref := d.Tracks[idx].Ref; !ref.IsPending() && ref.URL != "" {
		d.deletedAudioURLs[ref.URL] = struct{}{}
	}

	d.Tracks = append(d.Tracks[:idx], d.Tracks[idx+1:]...)
}

func (d *Draft) AddQuiz(q QuizDraft) uuid.UUID {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	d.Quizzes = append(d.Quizzes, q)

	return q.ID
}

func (d *Draft) RemoveQuiz(idx int) {
	if idx < 0 || idx >= len(d.Quizzes) {
		return
	}

	d.Quizzes = append(d.Quizzes[:idx], d.Quizzes[idx+1:]...)
}

// DeletedImageURLs returns the image urls queued for release, sorted for
// a stable wire order.
func (d *Draft) DeletedImageURLs() []string {
	return sortedKeys(d.deletedImageURLs)
}

func (d *Draft) DeletedAudioURLs() []string {
	return sortedKeys(d.deletedAudioURLs)
}

// ClearDeletedImageURLs empties the image deletion set after a
// successful save.
func (d *Draft) ClearDeletedImageURLs() {
	d.deletedImageURLs = make(map[string]struct{})
}

func (d *Draft) ClearDeletedAudioURLs() {
	d.deletedAudioURLs = make(map[string]struct{})
}

// PendingCount reports how many attached files still need an upload.
func (d *Draft) PendingCount() int {
	n := 0
	for _, img := range d.Images {
		for _, ref := range img.Refs {
			if ref.IsPending() {
				n++
			}
		}
	}
	for _, t := range d.Tracks {
		if t.Ref.IsPending() {
			n++
		}
	}

	return n
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)

	return out
}

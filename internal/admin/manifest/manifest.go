// Package manifest reads a desired-state YAML file and applies it to a
// draft workspace: entries with a local file become pending uploads,
// hosted urls present on the server but absent from the manifest are
// queued for release.
package manifest

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"vltweb/internal/admin/draft"
)

type MediaEntry struct {
	File string `yaml:"file,omitempty"`
	URL  string `yaml:"url,omitempty"`
}

type ImageEntry struct {
	Title       string                 `yaml:"title"`
	Description string                 `yaml:"description,omitempty"`
	Media       []MediaEntry           `yaml:"media"`
	Metadata    map[string]interface{} `yaml:"metadata,omitempty"`
}

type TrackEntry struct {
	Title  string `yaml:"title"`
	Artist string `yaml:"artist,omitempty"`
	File   string `yaml:"file,omitempty"`
	URL    string `yaml:"url,omitempty"`
}

type QuizEntry struct {
	Question          string   `yaml:"question"`
	Answer            string   `yaml:"answer"`
	Options           []string `yaml:"options"`
	Hint              string   `yaml:"hint,omitempty"`
	CorrectResponse   string   `yaml:"correct_response,omitempty"`
	IncorrectResponse string   `yaml:"incorrect_response,omitempty"`
}

type Manifest struct {
	Images []ImageEntry `yaml:"images"`
	Tracks []TrackEntry `yaml:"tracks"`
	Quiz   []QuizEntry  `yaml:"quiz"`
}

func Load(path string) (*Manifest, error) {
	const op = "manifest.Load"

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &m, nil
}

func (m *Manifest) validate() error {
	for i, img := range m.Images {
		if len(img.Media) == 0 {
			return fmt.Errorf("image %d (%q) has no media", i, img.Title)
		}
		for j, e := range img.Media {
			if (e.File == "") == (e.URL == "") {
				return fmt.Errorf("image %d media %d: exactly one of file or url required", i, j)
			}
		}
	}

	for i, t := range m.Tracks {
		if (t.File == "") == (t.URL == "") {
			return fmt.Errorf("track %d (%q): exactly one of file or url required", i, t.Title)
		}
	}

	return nil
}

// Apply rewrites the draft to match the manifest. It first detaches
// every hosted url the manifest no longer wants, so those assets get
// released on the next save, then installs the manifest's collections.
func (m *Manifest) Apply(d *draft.Draft) {
	wanted := m.wantedURLs()

	for i := len(d.Images) - 1; i >= 0; i-- {
		for j := len(d.Images[i].Refs) - 1; j >= 0; j-- {
			ref := d.Images[i].Refs[j]
			if !ref.IsPending() {
				if _, ok := wanted[ref.URL]; !ok {
					d.DetachImageRef(i, j)
				}
			}
		}
	}

	for i := len(d.Tracks) - 1; i >= 0; i-- {
		ref := d.Tracks[i].Ref
		if !ref.IsPending() && ref.URL != "" {
			if _, ok := wanted[ref.URL]; !ok {
				d.RemoveTrack(i)
			}
		}
	}

	d.Images = make([]draft.ImageDraft, 0, len(m.Images))
	for _, img := range m.Images {
		refs := make([]draft.MediaRef, 0, len(img.Media))
		for _, e := range img.Media {
			if e.File != "" {
				refs = append(refs, draft.PendingRef(e.File))
			} else {
				refs = append(refs, draft.DurableRef(e.URL))
			}
		}
		d.Images = append(d.Images, draft.ImageDraft{
			ID:          uuid.New(),
			Title:       img.Title,
			Description: img.Description,
			Refs:        refs,
			Metadata:    img.Metadata,
		})
	}

	d.Tracks = make([]draft.TrackDraft, 0, len(m.Tracks))
	for _, t := range m.Tracks {
		ref := draft.DurableRef(t.URL)
		if t.File != "" {
			ref = draft.PendingRef(t.File)
		}
		d.Tracks = append(d.Tracks, draft.TrackDraft{
			ID:     uuid.New(),
			Title:  t.Title,
			Artist: t.Artist,
			Ref:    ref,
		})
	}

	d.Quizzes = make([]draft.QuizDraft, 0, len(m.Quiz))
	for _, q := range m.Quiz {
		d.Quizzes = append(d.Quizzes, draft.QuizDraft{
			ID:                uuid.New(),
			Question:          q.Question,
			Answer:            q.Answer,
			Options:           q.Options,
			Hint:              q.Hint,
			CorrectResponse:   q.CorrectResponse,
			IncorrectResponse: q.IncorrectResponse,
		})
	}
}

func (m *Manifest) wantedURLs() map[string]struct{} {
	wanted := make(map[string]struct{})
	for _, img := range m.Images {
		for _, e := range img.Media {
			if e.URL != "" {
				wanted[e.URL] = struct{}{}
			}
		}
	}
	for _, t := range m.Tracks {
		if t.URL != "" {
			wanted[t.URL] = struct{}{}
		}
	}

	return wanted
}

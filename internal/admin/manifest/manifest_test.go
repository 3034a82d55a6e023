package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vltweb/internal/admin/draft"
	"vltweb/internal/domain/models"
)

func writeManifest(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "site.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	return path
}

func TestLoad(t *testing.T) {
	path := writeManifest(t, `
images:
  - title: Beach
    description: our trip
    media:
      - url: https://cdn/site/beach.jpg
      - file: ./photos/new.jpg
tracks:
  - title: Our Song
    artist: Someone
    file: ./music/song.mp3
quiz:
  - question: Where did we meet?
    answer: Paris
    options: [Paris, Rome, Oslo]
    hint: croissants
`)

	m, err := Load(path)
	require.NoError(t, err)

	require.Len(t, m.Images, 1)
	assert.Equal(t, "Beach", m.Images[0].Title)
	require.Len(t, m.Images[0].Media, 2)
	assert.Equal(t, "https://cdn/site/beach.jpg", m.Images[0].Media[0].URL)
	assert.Equal(t, "./photos/new.jpg", m.Images[0].Media[1].File)

	require.Len(t, m.Tracks, 1)
	require.Len(t, m.Quiz, 1)
	assert.Equal(t, []string{"Paris", "Rome", "Oslo"}, m.Quiz[0].Options)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{
			name: "media entry with both file and url",
			body: `
images:
  - title: Bad
    media:
      - url: https://cdn/a.jpg
        file: ./a.jpg
`,
		},
		{
			name: "media entry with neither",
			body: `
images:
  - title: Bad
    media:
      - {}
`,
		},
		{
			name: "image without media",
			body: `
images:
  - title: Bad
    media: []
`,
		},
		{
			name: "track with neither file nor url",
			body: `
tracks:
  - title: Bad
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeManifest(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestManifest_Apply_QueuesUnwantedURLs(t *testing.T) {
	d := draft.New()
	d.LoadFromServer(
		[]models.GalleryItem{
			{Title: "Old", URLs: []string{"https://cdn/keep.jpg", "https://cdn/drop.jpg"}},
		},
		[]models.Track{
			{Title: "Old Song", URL: "https://cdn/drop.mp3"},
		},
		nil,
	)

	m := &Manifest{
		Images: []ImageEntry{
			{Title: "New", Media: []MediaEntry{
				{URL: "https://cdn/keep.jpg"},
				{File: "./fresh.jpg"},
			}},
		},
		Tracks: []TrackEntry{
			{Title: "New Song", File: "./fresh.mp3"},
		},
	}

	m.Apply(d)

	assert.Equal(t, []string{"https://cdn/drop.jpg"}, d.DeletedImageURLs())
	assert.Equal(t, []string{"https://cdn/drop.mp3"}, d.DeletedAudioURLs())

	require.Len(t, d.Images, 1)
	assert.Equal(t, "New", d.Images[0].Title)
	assert.False(t, d.Images[0].Refs[0].IsPending())
	assert.True(t, d.Images[0].Refs[1].IsPending())

	require.Len(t, d.Tracks, 1)
	assert.True(t, d.Tracks[0].Ref.IsPending())
	assert.Equal(t, 2, d.PendingCount())
}

func TestManifest_Apply_IdenticalStateQueuesNothing(t *testing.T) {
	d := draft.New()
	d.LoadFromServer(
		[]models.GalleryItem{{Title: "Same", URLs: []string{"https://cdn/a.jpg"}}},
		[]models.Track{{Title: "Same", URL: "https://cdn/a.mp3"}},
		nil,
	)

	m := &Manifest{
		Images: []ImageEntry{{Title: "Same", Media: []MediaEntry{{URL: "https://cdn/a.jpg"}}}},
		Tracks: []TrackEntry{{Title: "Same", URL: "https://cdn/a.mp3"}},
	}

	m.Apply(d)

	assert.Empty(t, d.DeletedImageURLs())
	assert.Empty(t, d.DeletedAudioURLs())
	assert.Equal(t, 0, d.PendingCount())
}

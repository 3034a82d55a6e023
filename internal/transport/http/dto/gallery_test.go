package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageBulkRequest_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantItems   int
		wantDeleted []string
		wantErr     bool
	}{
		{
			name:      "legacy bare array",
			body:      `[{"title":"a","urls":["https://cdn/a.jpg"]},{"title":"b","urls":["https://cdn/b.jpg"]}]`,
			wantItems: 2,
		},
		{
			name:        "object with deleted urls",
			body:        `{"items":[{"title":"a","urls":["https://cdn/a.jpg"]}],"deletedUrls":["https://cdn/old.jpg"]}`,
			wantItems:   1,
			wantDeleted: []string{"https://cdn/old.jpg"},
		},
		{
			name:      "object without deleted urls",
			body:      `{"items":[]}`,
			wantItems: 0,
		},
		{
			name:      "leading whitespace before array",
			body:      "\n\t [{\"title\":\"a\",\"urls\":[\"https://cdn/a.jpg\"]}]",
			wantItems: 1,
		},
		{
			name:    "scalar body",
			body:    `42`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req ImageBulkRequest
			err := json.Unmarshal([]byte(tt.body), &req)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Len(t, req.Items, tt.wantItems)
			assert.Equal(t, tt.wantDeleted, req.DeletedURLs)
		})
	}
}

func TestImageBulkRequest_BareArrayResetsDeletedURLs(t *testing.T) {
	req := ImageBulkRequest{DeletedURLs: []string{"https://cdn/stale.jpg"}}

	require.NoError(t, json.Unmarshal([]byte(`[]`), &req))

	assert.Nil(t, req.DeletedURLs, "a bare array carries no deletions")
}

func TestImageBulkRequest_ToModels(t *testing.T) {
	req := ImageBulkRequest{
		Items: []ImagePayload{
			{Title: "a", URLs: []string{"https://cdn/a.jpg", "https://cdn/a2.jpg"}},
		},
	}

	items := req.ToModels()

	require.Len(t, items, 1)
	assert.Equal(t, []string{"https://cdn/a.jpg", "https://cdn/a2.jpg"}, items[0].URLs)
}

func TestImagePayload_SingularURLFallback(t *testing.T) {
	item := ImagePayload{Title: "a", URL: "https://cdn/a.jpg"}.ToModel()
	assert.Equal(t, []string{"https://cdn/a.jpg"}, item.URLs)

	// the list wins when both are present
	both := ImagePayload{URL: "https://cdn/one.jpg", URLs: []string{"https://cdn/list.jpg"}}.ToModel()
	assert.Equal(t, []string{"https://cdn/list.jpg"}, both.URLs)

	// an item with no media at all stays empty
	bare := ImagePayload{Title: "a"}.ToModel()
	assert.Empty(t, bare.URLs)
}

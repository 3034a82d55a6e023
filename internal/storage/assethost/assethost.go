package assethost

import (
	"context"
	"errors"
	"io"
)

// Kind is the media kind hint passed to the host. The host may need
// different handling per kind (Cloudinary files mp3 under "video").
type Kind string

const (
	KindImage Kind = "image"
	KindAudio Kind = "audio"
)

var (
	ErrUpload        = errors.New("asset host rejected upload")
	ErrNotConfigured = errors.New("asset host is not configured")
)

// Uploader turns one local file into a durable URL at the external host.
type Uploader interface {
	Upload(ctx context.Context, file io.Reader, filename, folder string, kind Kind) (string, error)
}

// Remover releases a previously uploaded asset. Callers treat failures as
// best-effort: a stale unreferenced asset is preferable to blocking edits.
type Remover interface {
	Remove(ctx context.Context, rawURL string, kind Kind) error
}

type Host interface {
	Uploader
	Remover
}

package assethost

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Local keeps assets on the server's own disk, for development without an
// external host. Files land under baseDir and are served under baseURL.
type Local struct {
	baseDir string
	baseURL string
}

func NewLocal(baseDir, baseURL string) (*Local, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, err
	}

	return &Local{
		baseDir: baseDir,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}, nil
}

func (s *Local) Upload(ctx context.Context, file io.Reader, filename, folder string, _ Kind) (string, error) {
	const op = "assethost.Local.Upload"

	relPath := path.Join(folder, uuid.New().String()+path.Ext(filename))
	fullPath := filepath.Join(s.baseDir, filepath.FromSlash(relPath))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	dst, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	defer dst.Close()

	done := make(chan struct{})
	var copyErr error

	go func() {
		_, copyErr = io.Copy(dst, file)
		close(done)
	}()

	select {
	case <-done:
		if copyErr != nil {
			_ = os.Remove(fullPath)
			return "", fmt.Errorf("%s: %w: %s", op, ErrUpload, copyErr.Error())
		}
	case <-ctx.Done():
		_ = os.Remove(fullPath)
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	}

	return s.baseURL + "/" + relPath, nil
}

func (s *Local) Remove(_ context.Context, rawURL string, _ Kind) error {
	const op = "assethost.Local.Remove"

	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	base, err := url.Parse(s.baseURL)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	relPath := strings.TrimPrefix(u.Path, base.Path)
	relPath = strings.TrimPrefix(relPath, "/")
	if relPath == "" || strings.Contains(relPath, "..") {
		return fmt.Errorf("%s: url outside storage root", op)
	}

	return os.Remove(filepath.Join(s.baseDir, filepath.FromSlash(relPath)))
}

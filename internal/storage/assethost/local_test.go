package assethost

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocal_UploadAndRemove(t *testing.T) {
	dir := t.TempDir()

	host, err := NewLocal(dir, "http://localhost:8080/uploads/")
	require.NoError(t, err)

	url, err := host.Upload(context.Background(), strings.NewReader("jpeg"), "photo.jpg", "site", KindImage)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(url, "http://localhost:8080/uploads/site/"), url)
	assert.True(t, strings.HasSuffix(url, ".jpg"), url)

	rel := strings.TrimPrefix(url, "http://localhost:8080/uploads/")
	onDisk := filepath.Join(dir, filepath.FromSlash(rel))

	data, err := os.ReadFile(onDisk)
	require.NoError(t, err)
	assert.Equal(t, "jpeg", string(data))

	require.NoError(t, host.Remove(context.Background(), url, KindImage))
	_, err = os.Stat(onDisk)
	assert.True(t, os.IsNotExist(err))
}

func TestLocal_Upload_CancelledContext(t *testing.T) {
	host, err := NewLocal(t.TempDir(), "http://localhost:8080/uploads")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// blockedReader never returns, the cancelled context must win
	_, err = host.Upload(ctx, blockedReader{}, "x.jpg", "site", KindImage)
	assert.ErrorIs(t, err, context.Canceled)
}

type blockedReader struct{}

func (blockedReader) Read([]byte) (int, error) {
	select {}
}

func TestLocal_Remove_RejectsEscapingPaths(t *testing.T) {
	host, err := NewLocal(t.TempDir(), "http://localhost:8080/uploads")
	require.NoError(t, err)

	err = host.Remove(context.Background(), "http://localhost:8080/uploads/../etc/passwd", KindImage)
	assert.Error(t, err)

	err = host.Remove(context.Background(), "http://localhost:8080/uploads/", KindImage)
	assert.Error(t, err)
}

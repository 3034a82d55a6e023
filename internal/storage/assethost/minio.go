package assethost

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/url"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"vltweb/internal/config"
)

// MinIO is the self-hosted alternative to Cloudinary: objects go into one
// bucket under the requested folder prefix and are served by public URL.
type MinIO struct {
	client *minio.Client
	bucket string
	useSSL bool
}

func NewMinIO(cfg config.MinIOConfig) (*MinIO, error) {
	const op = "assethost.NewMinIO"

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	m := &MinIO{
		client: client,
		bucket: cfg.Bucket,
		useSSL: cfg.UseSSL,
	}

	if err := m.ensureBucket(context.Background()); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return m, nil
}

func (m *MinIO) ensureBucket(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return err
	}

	if !exists {
		return m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{})
	}

	return nil
}

func (m *MinIO) Upload(ctx context.Context, file io.Reader, filename, folder string, kind Kind) (string, error) {
	const op = "assethost.MinIO.Upload"

	ext := path.Ext(filename)
	objectKey := path.Join(folder, uuid.New().String()+ext)

	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := m.client.PutObject(ctx, m.bucket, objectKey, file, -1, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w: %s", op, ErrUpload, err.Error())
	}

	return m.objectURL(objectKey), nil
}

func (m *MinIO) Remove(ctx context.Context, rawURL string, _ Kind) error {
	const op = "assethost.MinIO.Remove"

	objectKey, err := m.objectKeyFromURL(rawURL)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := m.client.RemoveObject(ctx, m.bucket, objectKey, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (m *MinIO) objectURL(objectKey string) string {
	scheme := "http"
	if m.useSSL {
		scheme = "https"
	}

	endpoint := strings.TrimPrefix(m.client.EndpointURL().String(), scheme+"://")

	return fmt.Sprintf("%s://%s/%s/%s", scheme, endpoint, m.bucket, objectKey)
}

func (m *MinIO) objectKeyFromURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}

	prefix := "/" + m.bucket + "/"
	if !strings.HasPrefix(u.Path, prefix) {
		return "", fmt.Errorf("url does not belong to bucket %s", m.bucket)
	}

	return strings.TrimPrefix(u.Path, prefix), nil
}

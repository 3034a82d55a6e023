package assethost

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"vltweb/internal/config"
)

const defaultCloudinaryBaseURL = "https://api.cloudinary.com"

// Cloudinary uploads through the unsigned upload API (preset-based) and
// deletes through the signed destroy API.
type Cloudinary struct {
	log        *slog.Logger
	httpClient *http.Client
	baseURL    string

	cloudName    string
	uploadPreset string
	apiKey       string
	apiSecret    string
}

func NewCloudinary(log *slog.Logger, cfg config.CloudinaryConfig) *Cloudinary {
	return &Cloudinary{
		log:          log,
		httpClient:   &http.Client{Timeout: 60 * time.Second},
		baseURL:      defaultCloudinaryBaseURL,
		cloudName:    cfg.CloudName,
		uploadPreset: cfg.UploadPreset,
		apiKey:       cfg.APIKey,
		apiSecret:    cfg.APISecret,
	}
}

func resourceType(kind Kind) string {
	// Cloudinary has no audio resource type; mp3 goes under "video".
	if kind == KindAudio {
		return "video"
	}

	return "image"
}

func (c *Cloudinary) Upload(ctx context.Context, file io.Reader, filename, folder string, kind Kind) (string, error) {
	const op = "assethost.Cloudinary.Upload"

	if c.cloudName == "" || c.uploadPreset == "" {
		return "", fmt.Errorf("%s: %w", op, ErrNotConfigured)
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	_ = writer.WriteField("upload_preset", c.uploadPreset)
	_ = writer.WriteField("folder", folder)
	_ = writer.WriteField("resource_type", resourceType(kind))

	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	endpoint := fmt.Sprintf("%s/v1_1/%s/upload", c.baseURL, c.cloudName)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s: %w: %s", op, ErrUpload, err.Error())
	}
	defer resp.Body.Close()

	var parsed struct {
		SecureURL string `json:"secure_url"`
		Error     struct {
			Message string `json:"message"`
		} `json:"error"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("%s: %w: malformed response", op, ErrUpload)
	}

	if resp.StatusCode != http.StatusOK || parsed.SecureURL == "" {
		msg := parsed.Error.Message
		if msg == "" {
			msg = resp.Status
		}
		return "", fmt.Errorf("%s: %w: %s", op, ErrUpload, msg)
	}

	return parsed.SecureURL, nil
}

// delivery URL shape: .../upload/v123/VLTWebsite/public_id.ext
var publicIDPattern = regexp.MustCompile(`/upload/(?:v\d+/)?(.+?)(?:\.\w+)?$`)

func publicIDFromURL(rawURL string) string {
	m := publicIDPattern.FindStringSubmatch(rawURL)
	if m == nil {
		return ""
	}

	return m[1]
}

func (c *Cloudinary) Remove(ctx context.Context, rawURL string, kind Kind) error {
	const op = "assethost.Cloudinary.Remove"

	log := c.log.With(slog.String("op", op))

	if c.apiKey == "" || c.apiSecret == "" {
		log.Warn("cloudinary not configured, skipping remote deletion")
		return nil
	}

	publicID := publicIDFromURL(rawURL)
	if publicID == "" {
		log.Warn("could not extract public id", slog.String("url", rawURL))
		return nil
	}

	timestamp := strconv.FormatInt(time.Now().Unix(), 10)

	form := url.Values{}
	form.Set("public_id", publicID)
	form.Set("timestamp", timestamp)
	form.Set("api_key", c.apiKey)
	form.Set("signature", c.sign(publicID, timestamp))

	endpoint := fmt.Sprintf("%s/v1_1/%s/%s/destroy", c.baseURL, c.cloudName, resourceType(kind))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: destroy failed: %s", op, resp.Status)
	}

	log.Info("deleted from cloudinary", slog.String("public_id", publicID))

	return nil
}

// sign builds the SHA-1 parameter signature the destroy API expects:
// sorted params concatenated with the API secret.
func (c *Cloudinary) sign(publicID, timestamp string) string {
	payload := fmt.Sprintf("public_id=%s&timestamp=%s%s", publicID, timestamp, c.apiSecret)
	sum := sha1.Sum([]byte(payload))

	return hex.EncodeToString(sum[:])
}

// Package upload turns base64 data URIs from clients into durable public
// URLs, backed either by S3-compatible object storage or by the local disk.
package upload

import (
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Jiffye-m/chatapp/internal/config"

	"github.com/google/uuid"
)

// Uploader stores one image and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, dataURI string) (string, error)
}

// New picks the uploader implementation from config.
func New(ctx context.Context, cfg config.UploadConfig) (Uploader, error) {
	switch cfg.Driver {
	case "", "local":
		return NewLocalUploader(cfg.Dir, cfg.BaseURL)
	case "s3":
		return NewS3Uploader(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unknown upload driver %q", cfg.Driver)
	}
}

// ParseDataURI splits "data:image/png;base64,...." into content type and raw
// bytes. Only base64-encoded image payloads are accepted.
func ParseDataURI(s string) (contentType string, data []byte, err error) {
	if !strings.HasPrefix(s, "data:") {
		return "", nil, fmt.Errorf("not a data URI")
	}
	rest := s[len("data:"):]
	idx := strings.IndexByte(rest, ',')
	if idx < 0 {
		return "", nil, fmt.Errorf("malformed data URI")
	}
	meta, payload := rest[:idx], rest[idx+1:]

	if !strings.HasSuffix(meta, ";base64") {
		return "", nil, fmt.Errorf("data URI must be base64 encoded")
	}
	contentType = strings.TrimSuffix(meta, ";base64")
	if !strings.HasPrefix(contentType, "image/") {
		return "", nil, fmt.Errorf("unsupported content type %q", contentType)
	}

	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("decode payload: %w", err)
	}
	return contentType, data, nil
}

// storageKey builds a date-partitioned object key with a random name.
func storageKey(contentType string) string {
	ext := ".bin"
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		ext = exts[len(exts)-1]
	}
	d := time.Now()
	return fmt.Sprintf("%d/%02d/%02d/%s%s", d.Year(), d.Month(), d.Day(), uuid.New(), ext)
}

// LocalUploader writes files under a directory served by the static route.
// Meant for development and tests.
type LocalUploader struct {
	dir     string
	baseURL string
}

func NewLocalUploader(dir, baseURL string) (*LocalUploader, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalUploader{dir: dir, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

func (u *LocalUploader) Upload(_ context.Context, dataURI string) (string, error) {
	contentType, data, err := ParseDataURI(dataURI)
	if err != nil {
		return "", err
	}

	key := storageKey(contentType)
	path := filepath.Join(u.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}

	return u.baseURL + "/" + key, nil
}

package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	appcontent "github.com/dentalshop/backend/internal/application/content"
	infraconfig "github.com/dentalshop/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Ensure LocalImageStorage implements ImageStorage
var _ appcontent.ImageStorage = (*LocalImageStorage)(nil)

// LocalImageStorage writes images to a directory served under a URL prefix
type LocalImageStorage struct {
	dir    string
	prefix string
	logger *zap.Logger
}

// NewLocalImageStorage creates the upload directory if needed
func NewLocalImageStorage(dir, publicPrefix string, logger *zap.Logger) (*LocalImageStorage, error) {
	if dir == "" {
		return nil, errors.New("storage directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocalImageStorage{
		dir:    dir,
		prefix: "/" + strings.Trim(publicPrefix, "/"),
		logger: logger,
	}, nil
}

// Dir returns the directory images are written to
func (s *LocalImageStorage) Dir() string {
	return s.dir
}

// Prefix returns the URL prefix images are served under
func (s *LocalImageStorage) Prefix() string {
	return s.prefix
}

// Save writes the image and returns its public path
func (s *LocalImageStorage) Save(_ context.Context, name string, body io.Reader, _ int64, _ string) (string, error) {
	if name == "" || filepath.Base(name) != name {
		return "", fmt.Errorf("invalid object name %q", name)
	}
	target := filepath.Join(s.dir, name)

	f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create image file: %w", err)
	}
	if _, err := io.Copy(f, body); err != nil {
		_ = f.Close()
		_ = os.Remove(target)
		return "", fmt.Errorf("failed to write image file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(target)
		return "", fmt.Errorf("failed to write image file: %w", err)
	}

	s.logger.Debug("Image stored", zap.String("path", target))
	return s.prefix + "/" + name, nil
}

// Delete removes the file behind a managed URL. A missing file is not an error.
func (s *LocalImageStorage) Delete(_ context.Context, url string) error {
	name, ok := s.nameFor(url)
	if !ok {
		return fmt.Errorf("url %q is not managed by this storage", url)
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete image file: %w", err)
	}
	return nil
}

// IsManaged reports whether url sits directly under the public prefix
func (s *LocalImageStorage) IsManaged(url string) bool {
	_, ok := s.nameFor(url)
	return ok
}

func (s *LocalImageStorage) nameFor(url string) (string, bool) {
	rest, found := strings.CutPrefix(url, s.prefix+"/")
	if !found || rest == "" || rest != filepath.Base(rest) || rest == "." || rest == ".." {
		return "", false
	}
	return rest, true
}

// NewImageStorage builds the configured image storage backend
func NewImageStorage(ctx context.Context, cfg infraconfig.StorageConfig, logger *zap.Logger) (appcontent.ImageStorage, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch cfg.Driver {
	case infraconfig.StorageS3:
		s3Storage, err := NewS3ImageStorage(ctx, cfg, WithLogger(logger))
		if err != nil {
			return nil, err
		}
		if err := s3Storage.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return s3Storage, nil
	default:
		return NewLocalImageStorage(cfg.LocalDir, cfg.PublicPrefix, logger)
	}
}

package printing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/zantech/instantorder/internal/domain/shared"
	"go.uber.org/zap"
)

// FileSystemStorageConfig contains configuration for file system storage
type FileSystemStorageConfig struct {
	// BasePath is the root directory for exported documents
	// Default: data/exports
	BasePath string
	Logger   *zap.Logger
	// Now overrides the clock used by Sweep
	Now func() time.Time
}

// FileSystemStorage stores exported documents on the local file system
type FileSystemStorage struct {
	basePath string
	logger   *zap.Logger
	now      func() time.Time
}

// NewFileSystemStorage creates the base directory and returns the storage
func NewFileSystemStorage(config *FileSystemStorageConfig) (*FileSystemStorage, error) {
	if config == nil {
		config = &FileSystemStorageConfig{}
	}
	basePath := config.BasePath
	if basePath == "" {
		basePath = filepath.Join("data", "exports")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, shared.NewStorageFailure(
			fmt.Sprintf("failed to create storage directory: %s", basePath), err)
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := config.Now
	if now == nil {
		now = time.Now
	}

	return &FileSystemStorage{
		basePath: basePath,
		logger:   logger,
		now:      now,
	}, nil
}

// BasePath returns the storage root
func (s *FileSystemStorage) BasePath() string {
	return s.basePath
}

// Put writes data to {base}/{key} through a temp file and rename, so readers
// never observe a partial document.
func (s *FileSystemStorage) Put(ctx context.Context, key string, data []byte, _ string) (*StoredDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, shared.NewStorageFailure("operation cancelled", err)
	}
	if len(data) == 0 {
		return nil, shared.NewStorageFailure("document is empty", nil)
	}
	fullPath, err := s.resolve(key)
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, shared.NewStorageFailure("failed to create directory", err)
	}

	tmp, err := os.CreateTemp(dir, ".export-*")
	if err != nil {
		return nil, shared.NewStorageFailure("failed to create temp file", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return nil, shared.NewStorageFailure("failed to write document", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return nil, shared.NewStorageFailure("failed to write document", err)
	}
	if err := os.Rename(tmpName, fullPath); err != nil {
		_ = os.Remove(tmpName)
		return nil, shared.NewStorageFailure("failed to move document into place", err)
	}

	s.logger.Info("Document stored",
		zap.String("key", key),
		zap.String("path", fullPath),
		zap.Int("size", len(data)))

	return &StoredDocument{
		Key:      key,
		Location: fullPath,
		Size:     int64(len(data)),
	}, nil
}

// Get opens the document stored under key
func (s *FileSystemStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, shared.NewStorageFailure("operation cancelled", err)
	}
	fullPath, err := s.resolve(key)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(fullPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("document %s: %w", key, shared.ErrNotFound)
		}
		return nil, shared.NewStorageFailure("failed to open document", err)
	}
	return file, nil
}

// Delete removes the document stored under key
func (s *FileSystemStorage) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return shared.NewStorageFailure("operation cancelled", err)
	}
	fullPath, err := s.resolve(key)
	if err != nil {
		return err
	}

	if err := os.Remove(fullPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return shared.NewStorageFailure("failed to delete document", err)
	}

	s.logger.Info("Document deleted", zap.String("key", key))
	return nil
}

// Sweep removes PDF files not modified within age and reports how many were
// deleted. Individual removal failures are logged and skipped.
func (s *FileSystemStorage) Sweep(ctx context.Context, age time.Duration) (int, error) {
	cutoff := s.now().Add(-age)
	deleted := 0

	err := filepath.WalkDir(s.basePath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".pdf" {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(path); err != nil {
				s.logger.Warn("failed to delete expired document", zap.String("path", path), zap.Error(err))
				return nil
			}
			deleted++
			s.logger.Debug("deleted expired document", zap.String("path", path))
		}
		return nil
	})
	if err != nil {
		return deleted, shared.NewStorageFailure("retention sweep failed", err)
	}

	s.logger.Info("Retention sweep completed",
		zap.Int("deleted", deleted),
		zap.Duration("age", age))
	return deleted, nil
}

// resolve maps key onto a path under the base directory, rejecting keys
// that are absolute or climb out of it
func (s *FileSystemStorage) resolve(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", shared.NewStorageFailure("storage key is required", nil)
	}
	cleanPath := filepath.Clean(filepath.FromSlash(key))
	if filepath.IsAbs(cleanPath) || containsDotDot(key) {
		s.logger.Warn("blocked potentially malicious key", zap.String("key", key))
		return "", shared.NewStorageFailure("invalid storage key", nil)
	}

	fullPath := filepath.Join(s.basePath, cleanPath)

	absBase, err := filepath.Abs(s.basePath)
	if err != nil {
		return "", shared.NewStorageFailure("failed to resolve base path", err)
	}
	absPath, err := filepath.Abs(fullPath)
	if err != nil {
		return "", shared.NewStorageFailure("failed to resolve file path", err)
	}
	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) {
		s.logger.Warn("path escape attempt blocked",
			zap.String("key", key),
			zap.String("absPath", absPath))
		return "", shared.NewStorageFailure("invalid storage key", nil)
	}
	return fullPath, nil
}

// containsDotDot checks if a path contains ".." components
func containsDotDot(path string) bool {
	parts := strings.FieldsFunc(path, func(r rune) bool {
		return r == '/' || r == '\\'
	})
	return slices.Contains(parts, "..")
}

var _ DocumentStorage = (*FileSystemStorage)(nil)

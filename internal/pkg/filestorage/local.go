package filestorage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/yigit/prelimplanner/internal/pkg/logger"
)

// LocalStorage handles saving artifacts to the local filesystem.
type LocalStorage struct {
	basePath string // The root directory where files will be stored
}

// NewLocalStorage creates a new LocalStorage rooted at basePath, creating the
// directory if needed.
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		logger.Error().Err(err).Str("path", basePath).Msg("Failed to create storage directory")
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	logger.Debug().Str("path", basePath).Msg("Local storage directory ensured")

	return &LocalStorage{basePath: basePath}, nil
}

// SaveText writes data to name inside the storage directory. The write goes
// through a temporary file so a reader never observes a half-written artifact.
func (ls *LocalStorage) SaveText(name, data string) (string, error) {
	dstPath := ls.GetFullPath(name)
	if dstPath == "" {
		return "", fmt.Errorf("invalid artifact name %q", name)
	}

	tmp, err := os.CreateTemp(ls.basePath, ".artifact-*")
	if err != nil {
		logger.Error().Err(err).Str("path", ls.basePath).Msg("Failed to create temporary file")
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.WriteString(data); err != nil {
		tmp.Close()
		_ = os.Remove(tmpPath)
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to write artifact")
		return "", fmt.Errorf("failed to write artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("failed to close artifact: %w", err)
	}
	if err := os.Rename(tmpPath, dstPath); err != nil {
		_ = os.Remove(tmpPath)
		logger.Error().Err(err).Str("path", dstPath).Msg("Failed to move artifact into place")
		return "", fmt.Errorf("failed to save artifact: %w", err)
	}

	logger.Info().Str("path", dstPath).Int("bytes", len(data)).Msg("Artifact saved")
	return dstPath, nil
}

// ReadText reads the artifact at path.
func (ls *LocalStorage) ReadText(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read artifact %s: %w", path, err)
	}
	return string(b), nil
}

// GetFullPath returns the full filesystem path for a given artifact name.
// Directory components are stripped so names cannot escape basePath.
func (ls *LocalStorage) GetFullPath(name string) string {
	filename := filepath.Base(name)
	if filename == "" || filename == "." || filename == "/" || filename == ".." {
		return ""
	}
	return filepath.Join(ls.basePath, filename)
}

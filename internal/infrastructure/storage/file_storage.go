package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/garyjia/donation-desk/internal/application/port"
)

// LocalFileStorage keeps generated documents under one base directory
type LocalFileStorage struct {
	baseDir string
	logger  *zap.Logger
}

// NewLocalFileStorage creates a new LocalFileStorage
func NewLocalFileStorage(baseDir string, logger *zap.Logger) port.FileStorage {
	return &LocalFileStorage{
		baseDir: baseDir,
		logger:  logger,
	}
}

// Save writes content to path, creating parent directories as needed
func (s *LocalFileStorage) Save(ctx context.Context, path string, content []byte) error {
	fullPath, err := s.resolve(path)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		s.logger.Error("Failed to create parent directories", zap.String("path", fullPath), zap.Error(err))
		return fmt.Errorf("failed to create directories: %w", err)
	}

	// readers never observe a partially written file
	tmp := fullPath + ".tmp"
	if err := os.WriteFile(tmp, content, 0644); err != nil {
		s.logger.Error("Failed to write file", zap.String("path", tmp), zap.Error(err))
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Rename(tmp, fullPath); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to move file into place: %w", err)
	}

	s.logger.Debug("File saved", zap.String("path", fullPath), zap.Int("size", len(content)))
	return nil
}

// Read returns the content stored at path
func (s *LocalFileStorage) Read(ctx context.Context, path string) ([]byte, error) {
	fullPath, err := s.resolve(path)
	if err != nil {
		return nil, err
	}

	content, err := os.ReadFile(fullPath)
	if err != nil {
		s.logger.Error("Failed to read file", zap.String("path", fullPath), zap.Error(err))
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return content, nil
}

// Exists checks if a file exists at path
func (s *LocalFileStorage) Exists(ctx context.Context, path string) bool {
	fullPath, err := s.resolve(path)
	if err != nil {
		return false
	}
	_, err = os.Stat(fullPath)
	return err == nil
}

// GetFullPath joins path onto the base directory
func (s *LocalFileStorage) GetFullPath(relativePath string) string {
	return filepath.Join(s.baseDir, relativePath)
}

// resolve rejects paths that escape the base directory
func (s *LocalFileStorage) resolve(path string) (string, error) {
	fullPath := s.GetFullPath(path)

	absPath, err := filepath.Abs(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}
	absBase, err := filepath.Abs(s.baseDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve base path: %w", err)
	}

	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) && absPath != absBase {
		return "", fmt.Errorf("path escapes base directory: %s", path)
	}
	return fullPath, nil
}

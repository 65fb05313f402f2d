// Package uploads stages uploaded files on disk long enough to parse
// them. Staged files get unique names so concurrent uploads of the same
// export never collide.
package uploads

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// LocalFileStorage stages multipart uploads under a base directory.
type LocalFileStorage struct {
	basePath string
}

// NewLocalFileStorage creates a new local file storage instance
func NewLocalFileStorage(basePath string) *LocalFileStorage {
	return &LocalFileStorage{basePath: basePath}
}

// Store saves a file to the local filesystem with a unique name and
// returns the staged path.
func (s *LocalFileStorage) Store(file multipart.File, filename string) (string, error) {
	if err := os.MkdirAll(s.basePath, 0o755); err != nil {
		return "", fmt.Errorf("failed to create storage directory: %w", err)
	}

	ext := filepath.Ext(filename)
	baseName := filename[:len(filename)-len(ext)]
	timestamp := time.Now().Format("20060102_150405")
	uniqueName := fmt.Sprintf("%s_%s_%s%s", baseName, timestamp, uuid.New().String()[:8], ext)

	filePath := filepath.Join(s.basePath, uniqueName)

	destFile, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, file); err != nil {
		os.Remove(filePath) // Clean up on failure
		return "", fmt.Errorf("failed to copy file contents: %w", err)
	}

	return filePath, nil
}

// Delete removes a staged file.
func (s *LocalFileStorage) Delete(filePath string) error {
	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

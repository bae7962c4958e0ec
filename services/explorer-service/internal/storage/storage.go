// Package storage keeps uploaded dataset files on the local filesystem
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// LocalStorage stores files under a base directory
type LocalStorage struct {
	basePath string
}

// NewLocalStorage creates a new LocalStorage rooted at basePath
func NewLocalStorage(basePath string) *LocalStorage {
	return &LocalStorage{basePath: basePath}
}

// path resolves a stored file name, refusing names that leave the base directory
func (s *LocalStorage) path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("invalid file name %q", name)
	}
	return filepath.Join(s.basePath, name), nil
}

// Save copies r into a new file named after a fresh uuid and the given extension.
// It returns the stored name and the number of bytes written.
func (s *LocalStorage) Save(r io.Reader, extension string) (string, int64, error) {
	name := GenerateFileName(extension)
	path, err := s.path(name)
	if err != nil {
		return "", 0, err
	}
	if err := os.MkdirAll(s.basePath, 0o755); err != nil {
		return "", 0, fmt.Errorf("failed to create storage dir: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return "", 0, fmt.Errorf("failed to create file: %w", err)
	}

	counter := NewSizeWriter()
	_, copyErr := io.Copy(file, io.TeeReader(r, counter))
	closeErr := file.Close()
	if copyErr != nil || closeErr != nil {
		os.Remove(path)
		if copyErr == nil {
			copyErr = closeErr
		}
		return "", 0, fmt.Errorf("failed to write file: %w", copyErr)
	}
	return name, counter.Size(), nil
}

// Open opens a stored file for reading
func (s *LocalStorage) Open(name string) (io.ReadCloser, error) {
	path, err := s.path(name)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("file not found: %s", name)
	}
	return file, err
}

// Delete removes a stored file. Deleting a missing file is not an error.
func (s *LocalStorage) Delete(name string) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// GenerateFileName returns a uuid based name with the given extension
func GenerateFileName(extension string) string {
	id := uuid.New().String()
	if extension != "" && extension[0] != '.' {
		return id + "." + extension
	}
	return id + extension
}

// SizeWriter counts the bytes written to it
type SizeWriter struct {
	size int64
}

// NewSizeWriter creates a SizeWriter
func NewSizeWriter() *SizeWriter {
	return &SizeWriter{}
}

// Write implements io.Writer
func (sw *SizeWriter) Write(p []byte) (int, error) {
	sw.size += int64(len(p))
	return len(p), nil
}

// Size returns the number of bytes written
func (sw *SizeWriter) Size() int64 {
	return sw.size
}

// Package fs stores uploaded meme images on the local filesystem.
package fs

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

type Storage struct {
	rootPath string
}

func New(rootPath string) (*Storage, error) {
	// Clean to prevent path traversal like "media/../"
	p := filepath.Clean(rootPath)

	if err := os.MkdirAll(p, 0755); err != nil {
		return nil, fmt.Errorf("failed to create root storage directory %s: %w", p, err)
	}

	return &Storage{rootPath: p}, nil
}

// Save writes the image under an id-derived filename and returns the path
// relative to the storage root. The extension is cleaned so uploads can't
// smuggle in traversal segments.
func (s *Storage) Save(data io.Reader, id, extension string) (string, error) {
	cleanExtension := filepath.Clean(extension)
	relativePath := fmt.Sprintf("%s%s", id, cleanExtension)
	fullPath := filepath.Join(s.rootPath, relativePath)

	dst, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, data); err != nil {
		os.Remove(fullPath) // Best effort cleanup of the partial file.
		return "", fmt.Errorf("failed to copy file data: %w", err)
	}

	return relativePath, nil
}

// Read opens a stored file for reading.
func (s *Storage) Read(relativePath string) (io.ReadCloser, error) {
	fullPath := filepath.Join(s.rootPath, filepath.Clean(relativePath))

	f, err := os.Open(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", relativePath, err)
	}
	return f, nil
}

// Root returns the storage root for mounting a file server.
func (s *Storage) Root() string {
	return s.rootPath
}

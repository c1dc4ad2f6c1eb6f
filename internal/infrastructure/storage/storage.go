package storage

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Store persists uploaded images under a static root and returns web paths
// the frontend can render. Filenames are randomized; only the extension of
// the original upload is kept.
type Store struct {
	root   string
	logger *slog.Logger
}

// NewStore creates a file store rooted at root, creating the logo and
// signature directories if absent.
func NewStore(root string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	for _, dir := range []string{"logos", "signatures"} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create upload directory: %w", err)
		}
	}
	return &Store{root: root, logger: logger}, nil
}

// SaveLogo stores a logo upload and returns its web path.
func (s *Store) SaveLogo(originalName string, r io.Reader) (string, error) {
	return s.save("logos", originalName, r)
}

// SaveSignature stores a signature upload and returns its web path.
func (s *Store) SaveSignature(originalName string, r io.Reader) (string, error) {
	return s.save("signatures", originalName, r)
}

func (s *Store) save(kind, originalName string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if ext == "" {
		ext = ".png"
	}
	name := uuid.New().String() + ext
	path := filepath.Join(s.root, kind, name)

	out, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, r); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write upload: %w", err)
	}

	s.logger.Info("upload saved", slog.String("path", path))
	return "/static/" + kind + "/" + name, nil
}

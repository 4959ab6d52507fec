package filestore

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// FileStore persists raw upload bytes on disk, separate from the extracted
// text kept in the database.
type FileStore struct {
	baseDir string
}

func New(baseDir string) (*FileStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

// Save writes the bytes under a per-project directory and returns the
// stored path. The stored name is the document id, not the user-supplied
// filename.
func (s *FileStore) Save(projectId, documentId uuid.UUID, data []byte) (string, error) {
	dir := filepath.Join(s.baseDir, projectId.String())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create project dir: %w", err)
	}

	path := filepath.Join(dir, documentId.String())
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return path, nil
}

func (s *FileStore) Read(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func (s *FileStore) Delete(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// DeleteProject removes a project's whole upload directory (cascade).
func (s *FileStore) DeleteProject(projectId uuid.UUID) error {
	return os.RemoveAll(filepath.Join(s.baseDir, projectId.String()))
}

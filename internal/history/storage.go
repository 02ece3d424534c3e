package history

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// Storage is the durable single-key backend for the rolling history:
// one opaque blob holding the serialized record sequence. Absence is
// not an error; Load returns (nil, nil) when nothing was ever saved.
type Storage interface {
	Load() ([]byte, error)
	Save(data []byte) error
}

// FileStorage keeps the history blob in a single file on disk.
type FileStorage struct {
	path string
}

// NewFileStorage creates a file-backed Storage at the given path.
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

func (s *FileStorage) Load() ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return data, err
}

func (s *FileStorage) Save(data []byte) error {
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	// Write-then-rename so a crash mid-save cannot corrupt the blob.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

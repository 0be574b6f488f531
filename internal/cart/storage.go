package cart

import (
	"errors"
	"os"
)

// FileStorage persists cart state to a single file, the local-storage
// equivalent for non-browser clients.
type FileStorage struct {
	Path string
}

func (f *FileStorage) Load() ([]byte, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return data, err
}

func (f *FileStorage) Save(data []byte) error {
	return os.WriteFile(f.Path, data, 0o600)
}

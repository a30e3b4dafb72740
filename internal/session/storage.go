package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/jonatankoch/kanbanboard/internal/model"
)

// slotName is the single well-known slot the authenticated identity is kept
// under between runs.
const slotName = "currentUser.json"

// Storage persists the authenticated identity across restarts.
type Storage interface {
	Load() (*model.User, error)
	Save(user *model.User) error
	Clear() error
}

// FileStorage keeps the identity payload in one JSON file.
type FileStorage struct {
	path string
}

// NewFileStorage returns file-backed storage at path. An empty path falls
// back to the user config directory.
func NewFileStorage(path string) (*FileStorage, error) {
	if path == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("resolve config dir: %w", err)
		}
		path = filepath.Join(dir, "kanbanboard", slotName)
	}
	return &FileStorage{path: path}, nil
}

// Load returns the persisted identity, or nil when the slot is empty. A
// corrupt slot reads as empty rather than failing startup.
func (s *FileStorage) Load() (*model.User, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read session slot: %w", err)
	}

	var user model.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, nil
	}
	return &user, nil
}

func (s *FileStorage) Save(user *model.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write session slot: %w", err)
	}
	return nil
}

func (s *FileStorage) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("clear session slot: %w", err)
	}
	return nil
}

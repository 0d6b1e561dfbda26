package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"CoinSentinel/internal/model"
)

// FileStore keeps the user state in a JSON file.
type FileStore struct {
	mu       sync.Mutex
	filePath string
}

// NewFileStore creates a FileStore, creating the parent directory if needed.
func NewFileStore(filePath string) (*FileStore, error) {
	if dir := filepath.Dir(filePath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create state dir: %w", err)
		}
	}
	return &FileStore{filePath: filePath}, nil
}

// Load reads the state file. Returns an empty state if the file doesn't exist.
func (s *FileStore) Load(_ context.Context) (*model.UserState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return model.NewUserState(), nil
		}
		return nil, fmt.Errorf("read state: %w", err)
	}
	var state model.UserState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	return normalize(&state), nil
}

// Save writes the state atomically via a temp file and rename.
func (s *FileStore) Save(_ context.Context, state *model.UserState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	tmp := s.filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	return os.Rename(tmp, s.filePath)
}

func (s *FileStore) Close() error { return nil }

package preferences

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Session is a signed-in terminal session.
type Session struct {
	AccessToken  string    `yaml:"access_token"`
	RefreshToken string    `yaml:"refresh_token,omitempty"`
	TokenType    string    `yaml:"token_type,omitempty"`
	Expiry       time.Time `yaml:"expiry,omitempty"`
	UserID       string    `yaml:"user_id"`
	Email        string    `yaml:"email,omitempty"`
}

// State is everything the terminal client keeps between runs.
type State struct {
	Theme          Theme    `yaml:"theme"`
	LastAnalysisID string   `yaml:"last_analysis_id,omitempty"`
	Session        *Session `yaml:"session,omitempty"`
}

// Store loads and saves State.
type Store interface {
	Load() (State, error)
	Save(State) error
}

// FileStore keeps State in a YAML file readable only by the owner.
type FileStore struct {
	Path string
	mu   sync.Mutex
}

// NewFileStore returns a store at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// DefaultPath is expertcof/state.yaml under the user config dir.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "expertcof", "state.yaml"), nil
}

// Load returns the zero State when the file does not exist yet.
func (s *FileStore) Load() (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return State{Theme: ThemeLight}, nil
	}
	if err != nil {
		return State{}, fmt.Errorf("read preferences: %w", err)
	}
	var st State
	if err := yaml.Unmarshal(data, &st); err != nil {
		return State{}, fmt.Errorf("parse preferences: %w", err)
	}
	st.Theme = st.Theme.OrDefault()
	return st, nil
}

// Save writes through a temp file so a crash never leaves a torn file.
func (s *FileStore) Save(st State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := yaml.Marshal(st)
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o700); err != nil {
		return fmt.Errorf("create preferences dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.Path), ".state-*.yaml")
	if err != nil {
		return fmt.Errorf("create preferences temp: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write preferences: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.Path)
}

// MemoryStore keeps State in memory.
type MemoryStore struct {
	mu    sync.Mutex
	state State
}

func (m *MemoryStore) Load() (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := m.state
	st.Theme = st.Theme.OrDefault()
	return st, nil
}

func (m *MemoryStore) Save(st State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = st
	return nil
}

var (
	_ Store = (*FileStore)(nil)
	_ Store = (*MemoryStore)(nil)
)

package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// FileBackend keeps records in a YAML file, one entry per session id.
// Writes go through a temp file and rename so a crash never leaves a token
// without its profile.
type FileBackend struct {
	mu   sync.Mutex
	path string
}

var _ Backend = (*FileBackend)(nil)

type fileState struct {
	Sessions map[string]Record `yaml:"sessions"`
}

// NewFileBackend creates a backend persisting to path.
func NewFileBackend(path string) *FileBackend {
	return &FileBackend{path: path}
}

func (b *FileBackend) read() (*fileState, error) {
	state := &fileState{Sessions: map[string]Record{}}
	data, err := os.ReadFile(b.path)
	if errors.Is(err, os.ErrNotExist) {
		return state, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session file: %w", err)
	}
	if err := yaml.Unmarshal(data, state); err != nil {
		return nil, fmt.Errorf("parse session file: %w", err)
	}
	if state.Sessions == nil {
		state.Sessions = map[string]Record{}
	}
	return state, nil
}

func (b *FileBackend) write(state *fileState) error {
	if err := os.MkdirAll(filepath.Dir(b.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	data, err := yaml.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode session file: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(b.path), ".session-*.yaml")
	if err != nil {
		return fmt.Errorf("create temp session file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp session file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod temp session file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp session file: %w", err)
	}
	if err := os.Rename(tmp.Name(), b.path); err != nil {
		return fmt.Errorf("replace session file: %w", err)
	}
	return nil
}

func (b *FileBackend) Load(_ context.Context, id string) (*Record, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	state, err := b.read()
	if err != nil {
		return nil, err
	}
	rec, ok := state.Sessions[id]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (b *FileBackend) Save(_ context.Context, id string, rec Record) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	state, err := b.read()
	if err != nil {
		return err
	}
	state.Sessions[id] = rec
	return b.write(state)
}

func (b *FileBackend) Delete(_ context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	state, err := b.read()
	if err != nil {
		return err
	}
	if _, ok := state.Sessions[id]; !ok {
		return nil
	}
	delete(state.Sessions, id)
	return b.write(state)
}

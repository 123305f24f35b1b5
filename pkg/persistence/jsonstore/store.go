// Package jsonstore implements the legacy JSON-file-per-record persistence
// backend, one file per record keyed by id, directly ported from this
// system's original Rust JsonStore<T>.
package jsonstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/seekerror/logw"
)

// Storable is any record type a Store can persist.
type Storable interface {
	ID() string
}

// Store is a generic JSON-file-per-record store under one directory.
type Store[T Storable] struct {
	dir string
}

func New[T Storable](dir string) *Store[T] {
	return &Store[T]{dir: dir}
}

func (s *Store[T]) ensureDir() error {
	return os.MkdirAll(s.dir, 0o755)
}

func (s *Store[T]) filePath(id string) string {
	return filepath.Join(s.dir, id+".json")
}

// Save writes data under its own ID, overwriting any existing record.
func (s *Store[T]) Save(data T) (string, error) {
	if err := s.ensureDir(); err != nil {
		return "", fmt.Errorf("jsonstore: ensure dir: %w", err)
	}
	body, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", fmt.Errorf("jsonstore: marshal %v: %w", data.ID(), err)
	}
	if err := os.WriteFile(s.filePath(data.ID()), body, 0o644); err != nil {
		return "", fmt.Errorf("jsonstore: write %v: %w", data.ID(), err)
	}
	return data.ID(), nil
}

// Load reads the record with the given id. The zero value and ok=false are
// returned if no such record exists.
func (s *Store[T]) Load(id string) (T, bool, error) {
	var zero T
	body, err := os.ReadFile(s.filePath(id))
	if os.IsNotExist(err) {
		return zero, false, nil
	}
	if err != nil {
		return zero, false, fmt.Errorf("jsonstore: read %v: %w", id, err)
	}
	var data T
	if err := json.Unmarshal(body, &data); err != nil {
		return zero, false, fmt.Errorf("jsonstore: unmarshal %v: %w", id, err)
	}
	return data, true, nil
}

// LoadAll reads every record in the store directory, skipping files that
// fail to parse (logged, not returned as an error, matching the original
// store's tolerance for partially corrupt directories).
func (s *Store[T]) LoadAll(ctx context.Context) ([]T, error) {
	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("jsonstore: read dir %v: %w", s.dir, err)
	}

	var items []T
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		path := filepath.Join(s.dir, entry.Name())
		body, err := os.ReadFile(path)
		if err != nil {
			logw.Errorf(ctx, "jsonstore: failed to read %v: %v", path, err)
			continue
		}
		var data T
		if err := json.Unmarshal(body, &data); err != nil {
			logw.Errorf(ctx, "jsonstore: failed to parse %v: %v", path, err)
			continue
		}
		items = append(items, data)
	}
	return items, nil
}

// Delete removes the record with the given id, if it exists.
func (s *Store[T]) Delete(id string) error {
	err := os.Remove(s.filePath(id))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("jsonstore: delete %v: %w", id, err)
	}
	return nil
}

// Package store provides a file-backed autofill store for the CLI. Values for
// every form live in one JSON document keyed by form name.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	"github.com/goliatone/go-formfill/pkg/values"
)

// FileStore persists autofill baselines to a JSON file. Safe for concurrent
// use within one process; it is not a multi-process database.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// New constructs a FileStore writing to path. The file is created on the
// first PutAutofill.
func New(path string) *FileStore {
	return &FileStore{path: path}
}

// GetAutofill implements autofill.Store. A missing file means no baseline.
func (s *FileStore) GetAutofill(ctx context.Context, formName string) (values.FormValues, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.read()
	if err != nil {
		return nil, err
	}
	return values.Clone(all[formName]), nil
}

// PutAutofill implements autofill.Store, replacing the stored baseline for
// one form while keeping every other form's values.
func (s *FileStore) PutAutofill(ctx context.Context, formName string, vals values.FormValues) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.read()
	if err != nil {
		return err
	}
	all[formName] = values.Clone(vals)

	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", s.path, err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("store: write %s: %w", s.path, err)
	}
	return nil
}

func (s *FileStore) read() (map[string]values.FormValues, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return make(map[string]values.FormValues), nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: read %s: %w", s.path, err)
	}

	all := make(map[string]values.FormValues)
	if len(data) > 0 {
		if err := json.Unmarshal(data, &all); err != nil {
			return nil, fmt.Errorf("store: decode %s: %w", s.path, err)
		}
	}
	return all, nil
}

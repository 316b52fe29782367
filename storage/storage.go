package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"todo-api/domain"
)

// ParseError is returned when the data file exists but does not contain
// a valid task collection. The file is left untouched.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Store persists the full task collection to a single JSON file. The
// file holds an ordered array of task objects and is rewritten whole on
// every save.
type Store struct {
	path string
	flk  *flock.Flock
}

// New creates a Store for the given file path, creating the file with an
// empty collection when absent. The data file is guarded by an advisory
// lock so a second process cannot write concurrently.
func New(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	flk := flock.New(path + ".lock")
	locked, err := flk.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock data file: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("data file %s is locked by another process", path)
	}

	s := &Store{path: path, flk: flk}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := s.write(nil); err != nil {
			_ = flk.Unlock()
			return nil, err
		}
	} else if err != nil {
		_ = flk.Unlock()
		return nil, err
	}
	return s, nil
}

// Path returns the location of the data file.
func (s *Store) Path() string { return s.path }

// Load reads the full task collection from the data file.
func (s *Store) Load(ctx context.Context) ([]domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			// Removed out from under us; recreate empty.
			if err := s.write(nil); err != nil {
				return nil, err
			}
			return []domain.Task{}, nil
		}
		return nil, fmt.Errorf("read data file: %w", err)
	}
	tasks := []domain.Task{}
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, &ParseError{Path: s.path, Err: err}
	}
	return tasks, nil
}

// Save rewrites the data file with the full serialized collection. The
// write goes to a temp file which is fsynced and renamed over the data
// file, so an interrupted save never corrupts the previous contents.
func (s *Store) Save(ctx context.Context, tasks []domain.Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.write(tasks)
}

// Close releases the data file lock.
func (s *Store) Close() error {
	if s.flk == nil {
		return nil
	}
	return s.flk.Unlock()
}

func (s *Store) write(tasks []domain.Task) error {
	if tasks == nil {
		tasks = []domain.Task{}
	}
	data, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal tasks: %w", err)
	}
	data = append(data, '\n')

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := syncFile(tmp); err != nil {
		return err
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace data file: %w", err)
	}
	return syncDir(filepath.Dir(s.path))
}

func syncFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return nil
	}
	// Directory fsync is best effort; some filesystems reject it.
	_ = d.Sync()
	return d.Close()
}

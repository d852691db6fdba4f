// Package store implements the flat-file persistence used for every entity
// collection: one JSON array per file, loaded once at startup, rewritten in
// full on every mutation.
package store

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Store holds one entity collection backed by a single JSON-array file.
// All access goes through the internal mutex so a read-modify-write-persist
// sequence is never interleaved with another.
type Store[T any] struct {
	path string
	mu   sync.Mutex
	recs []T
}

// New opens the store at path and loads whatever is there. A missing,
// unreadable or malformed file degrades to an empty collection with a
// warning; it never fails startup.
func New[T any](path string) *Store[T] {
	s := &Store[T]{path: path}
	s.recs = s.load()
	return s
}

// Path returns the backing file path.
func (s *Store[T]) Path() string {
	return s.path
}

// All returns a copy of the records in insertion order.
func (s *Store[T]) All() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]T, len(s.recs))
	copy(out, s.recs)
	return out
}

// Len returns the number of records.
func (s *Store[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.recs)
}

// Update runs fn with exclusive access to the record slice. If fn returns
// true the mutated slice is persisted; a save failure is logged and
// swallowed, the caller's mutation stays applied in memory.
func (s *Store[T]) Update(fn func(recs *[]T) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if fn(&s.recs) {
		if err := s.save(); err != nil {
			zap.L().Error("store save failed",
				zap.String("file", s.path), zap.Error(err))
		}
	}
}

func (s *Store[T]) load() []T {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		zap.L().Warn("store load failed, starting empty",
			zap.String("file", s.path), zap.Error(err))
		return nil
	}
	var recs []T
	if err := json.Unmarshal(raw, &recs); err != nil {
		zap.L().Warn("store file is not a well-formed array, starting empty",
			zap.String("file", s.path), zap.Error(err))
		return nil
	}
	return recs
}

// save writes the whole collection through a temp file and rename, so a
// failure mid-write leaves the previous file intact.
func (s *Store[T]) save() error {
	recs := s.recs
	if recs == nil {
		recs = []T{}
	}
	raw, err := json.MarshalIndent(recs, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal records")
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return errors.Wrapf(err, "write %s", tmp)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return errors.Wrapf(err, "rename %s", tmp)
	}
	return nil
}

// BackupTo copies the backing file into dir under its own base name.
// A store that has never been saved is skipped.
func (s *Store[T]) BackupTo(dir string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	src, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrapf(err, "open %s", s.path)
	}
	defer src.Close()

	dstPath := filepath.Join(dir, filepath.Base(s.path))
	dst, err := os.Create(dstPath)
	if err != nil {
		return errors.Wrapf(err, "create %s", dstPath)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return errors.Wrapf(err, "copy to %s", dstPath)
	}
	return nil
}

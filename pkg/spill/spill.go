// Package spill provides a disk-backed append log for per-unit transform
// reports, so a run over a large source tree never has to hold every diff in
// memory at once.
package spill

import (
	"encoding/gob"
	"fmt"
	"log/slog"
	"os"
	"sync"
)

// Spill is an append-only, gob-encoded log of items of type T.
type Spill[T any] interface {
	Len() uint64
	Path() string
	Append(item T) error
	Range(f func(index uint64, item T) error) error
	Close() error
}

type spillImpl[T any] struct {
	path    string
	file    *os.File
	encoder *gob.Encoder
	mu      sync.Mutex
	length  uint64
}

// New creates a Spill backed by a temp file.
func New[T any]() (Spill[T], error) {
	file, err := os.CreateTemp("", "mockfn-spill-*.gob")
	if err != nil {
		slog.Error("failed to create spill file", "error", err)
		return nil, fmt.Errorf("failed to create spill file: %w", err)
	}

	slog.Debug("created spill", "path", file.Name())

	return &spillImpl[T]{
		path:    file.Name(),
		file:    file,
		encoder: gob.NewEncoder(file),
	}, nil
}

// Append encodes item at the end of the log.
func (s *spillImpl[T]) Append(item T) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.encoder.Encode(item); err != nil {
		slog.Error("failed to encode spill item", "path", s.path, "index", s.length, "error", err)
		return fmt.Errorf("failed to encode item: %w", err)
	}

	s.length++

	return nil
}

// Path returns the backing file path.
func (s *spillImpl[T]) Path() string {
	return s.path
}

// Len returns the number of appended items.
func (s *spillImpl[T]) Len() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.length
}

// Range replays every appended item in order, stopping at the first callback
// error.
func (s *spillImpl[T]) Range(fn func(index uint64, item T) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.Open(s.path)
	if err != nil {
		slog.Error("failed to open spill for range", "path", s.path, "error", err)
		return fmt.Errorf("failed to open spill: %w", err)
	}

	defer func() {
		if err := file.Close(); err != nil {
			slog.Error("failed to close spill", "path", s.path, "error", err)
		}
	}()

	decoder := gob.NewDecoder(file)

	var item T

	for i := uint64(0); i < s.length; i++ {
		if err := decoder.Decode(&item); err != nil {
			slog.Error("failed to decode spill item", "path", s.path, "index", i, "error", err)
			return fmt.Errorf("failed to decode item at index %d: %w", i, err)
		}

		if err := fn(i, item); err != nil {
			return err
		}
	}

	return nil
}

// Close closes and removes the backing file.
func (s *spillImpl[T]) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file != nil {
		if err := s.file.Close(); err != nil {
			slog.Error("failed to close spill", "path", s.path, "error", err)
			return err
		}

		s.file = nil
	}

	return os.Remove(s.path)
}

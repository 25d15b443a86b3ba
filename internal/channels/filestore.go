package channels

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"golang.org/x/sys/unix"
)

// maxLineCapacity bounds a single JSONL record (1MB).
const maxLineCapacity = 1024 * 1024

// FileStore keeps channel records in a JSONL file. Writers hold an exclusive
// flock on a sibling ".lock" file for the whole read-modify-write cycle and
// readers hold a shared one, so several processes can share the file with a
// single writer at a time.
type FileStore struct {
	path     string
	lockPath string
	mu       sync.RWMutex
}

// NewFileStore opens (or prepares to create) a JSONL channel file.
func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}
	return &FileStore{path: path, lockPath: path + ".lock"}, nil
}

// withLock runs fn while holding the file lock of the given kind
// (unix.LOCK_SH or unix.LOCK_EX). It blocks until the lock is granted.
func (s *FileStore) withLock(how int, fn func() error) error {
	f, err := os.OpenFile(s.lockPath, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("opening lock file: %w", err)
	}
	defer f.Close()

	if err := unix.Flock(int(f.Fd()), how); err != nil {
		return fmt.Errorf("acquiring lock: %w", err)
	}
	defer unix.Flock(int(f.Fd()), unix.LOCK_UN)

	return fn()
}

func (s *FileStore) read() ([]Record, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening channels file: %w", err)
	}
	defer f.Close()

	var records []Record
	scanner := bufio.NewScanner(f)
	buf := make([]byte, maxLineCapacity)
	scanner.Buffer(buf, maxLineCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var r Record
		if err := json.Unmarshal(line, &r); err != nil {
			return nil, fmt.Errorf("parsing line %d: %w", lineNum, err)
		}
		records = append(records, r)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading channels file: %w", err)
	}
	return records, nil
}

// write replaces the file atomically through a temp file in the same
// directory.
func (s *FileStore) write(records []Record) error {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".channels-*.jsonl")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	for _, r := range records {
		data, err := json.Marshal(r)
		if err != nil {
			tmp.Close()
			return fmt.Errorf("encoding channel %s: %w", r.ID, err)
		}
		w.Write(data)
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("writing channels: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replacing channels file: %w", err)
	}
	return nil
}

// mutate applies fn to the full record set under the exclusive lock and
// persists the result.
func (s *FileStore) mutate(fn func([]Record) ([]Record, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withLock(unix.LOCK_EX, func() error {
		records, err := s.read()
		if err != nil {
			return err
		}
		updated, err := fn(records)
		if err != nil {
			return err
		}
		return s.write(updated)
	})
}

func (s *FileStore) snapshot() ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var records []Record
	err := s.withLock(unix.LOCK_SH, func() error {
		var err error
		records, err = s.read()
		return err
	})
	return records, err
}

// Search returns one page of matching channels ordered by creation time.
func (s *FileStore) Search(ctx context.Context, filter Filter, offset, limit int) (Page, error) {
	records, err := s.snapshot()
	if err != nil {
		return Page{}, err
	}

	var matched []Record
	for _, r := range records {
		if filter.Matches(r) {
			matched = append(matched, r)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].Created != matched[j].Created {
			return matched[i].Created < matched[j].Created
		}
		return matched[i].ID < matched[j].ID
	})

	page := Page{TotalCount: len(matched)}
	if offset >= len(matched) {
		return page, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	page.Documents = matched[offset:end]
	return page, nil
}

// Get retrieves a channel by id. It returns nil, nil when absent.
func (s *FileStore) Get(ctx context.Context, id string) (*Record, error) {
	records, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	for _, r := range records {
		if r.ID == id {
			return &r, nil
		}
	}
	return nil, nil
}

// Upsert inserts a channel or replaces the stored copy with the same id.
func (s *FileStore) Upsert(ctx context.Context, rec Record) error {
	return s.mutate(func(records []Record) ([]Record, error) {
		for i, r := range records {
			if r.ID == rec.ID {
				records[i] = rec
				return records, nil
			}
		}
		return append(records, rec), nil
	})
}

// Rename sets a new name on an existing channel.
func (s *FileStore) Rename(ctx context.Context, id, name string) error {
	return s.mutate(func(records []Record) ([]Record, error) {
		for i, r := range records {
			if r.ID == id {
				records[i].Name = name
				return records, nil
			}
		}
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	})
}

// Remove deletes a channel and reports whether a record existed.
func (s *FileStore) Remove(ctx context.Context, id string) (bool, error) {
	removed := false
	err := s.mutate(func(records []Record) ([]Record, error) {
		kept := records[:0]
		for _, r := range records {
			if r.ID == id {
				removed = true
				continue
			}
			kept = append(kept, r)
		}
		return kept, nil
	})
	return removed, err
}

// Close is a no-op; the file is only open while an operation runs.
func (s *FileStore) Close() error { return nil }

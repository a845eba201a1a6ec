// Package history keeps a small, capped log of files picked for merging
// and merged workbooks produced, newest first, persisted as JSON.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nconklindev/gopdon/internal/types"
)

const DefaultLimit = 50

type Store struct {
	path  string
	limit int
	now   func() time.Time

	mu    sync.RWMutex
	items []types.HistoryItem
}

// Open loads the history at path. A missing file is an empty history; a
// corrupt one is reported but still yields a usable, empty store.
func Open(path string, limit int) (*Store, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	s := &Store{path: path, limit: limit, now: time.Now}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("reading history: %w", err)
	}
	if err := json.Unmarshal(data, &s.items); err != nil {
		s.items = nil
		return s, fmt.Errorf("parsing history %s: %w", path, err)
	}
	if len(s.items) > s.limit {
		s.items = s.items[:s.limit]
	}
	return s, nil
}

// Add stamps item with a new id and the current time, puts it first and
// persists the trimmed list.
func (s *Store) Add(item types.HistoryItem) (types.HistoryItem, error) {
	item.ID = uuid.New().String()
	item.Timestamp = s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]types.HistoryItem, 0, len(s.items)+1)
	items = append(items, item)
	items = append(items, s.items...)
	if len(items) > s.limit {
		items = items[:s.limit]
	}
	s.items = items

	return item, s.save()
}

// List returns a copy of the entries, newest first.
func (s *Store) List() []types.HistoryItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.HistoryItem, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = nil
	return s.save()
}

// save writes through a temp file so a crash never leaves half a file.
func (s *Store) save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating history dir: %w", err)
	}

	items := s.items
	if items == nil {
		items = []types.HistoryItem{}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".history-*.json")
	if err != nil {
		return fmt.Errorf("writing history: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing history: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("writing history: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("writing history: %w", err)
	}
	return nil
}

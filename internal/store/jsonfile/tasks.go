// Package jsonfile persists tegbar data as human-readable JSON documents.
package jsonfile

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/colonyops/tegbar/internal/core/task"
	"github.com/colonyops/tegbar/pkg/iojson"
)

// corruptStampLayout is appended to a malformed file when it is moved aside.
const corruptStampLayout = "20060102-150405"

// ErrNotLoaded is returned by Save while the file on disk could neither be read
// nor moved aside. Writing would replace content that was never loaded.
var ErrNotLoaded = errors.New("file on disk was not loaded, refusing to overwrite it")

// TaskStore loads and saves the date-grouped task collection. The file holds a
// single JSON object mapping "YYYY-MM-DD" keys to arrays of task records.
type TaskStore struct {
	path     string
	log      zerolog.Logger
	now      func() time.Time
	readFile func(string) ([]byte, error)
	rename   func(string, string) error

	mu          sync.RWMutex
	fingerprint [sha256.Size]byte
	blocked     error // set while the on-disk file must not be overwritten
}

// NewTaskStore creates a store backed by the file at path.
func NewTaskStore(path string, log zerolog.Logger) *TaskStore {
	return &TaskStore{
		path:     path,
		log:      log,
		now:      time.Now,
		readFile: os.ReadFile,
		rename:   os.Rename,
	}
}

// Path returns the backing file path.
func (s *TaskStore) Path() string { return s.path }

// RecoveredError reports that the backing file could not be decoded. The
// original bytes were moved to Backup and an empty collection was returned.
type RecoveredError struct {
	Path   string
	Backup string
	Err    error
}

func (e *RecoveredError) Error() string {
	if e.Backup == "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("%s (moved to %s): %v", e.Path, e.Backup, e.Err)
}

func (e *RecoveredError) Unwrap() []error {
	return []error{task.ErrMalformedStore, e.Err}
}

// Load reads the collection from disk. A missing or empty file yields an empty
// collection and no error. A malformed file yields an empty collection and a
// *RecoveredError wrapping task.ErrMalformedStore. When the file can neither be
// read nor moved aside, Save fails with ErrNotLoaded until a later Load succeeds.
func (s *TaskStore) Load(ctx context.Context) (*task.Collection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.blocked = nil
	data, err := s.readFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.fingerprint = sha256.Sum256(nil)
			return task.NewCollection(), nil
		}
		s.blocked = err
		return task.NewCollection(), fmt.Errorf("read tasks file: %w", err)
	}
	s.fingerprint = sha256.Sum256(data)

	if len(data) == 0 {
		return task.NewCollection(), nil
	}

	var raw map[string][]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return task.NewCollection(), s.moveAside(err)
	}

	now := s.now()
	groups := make(map[string][]task.Task, len(raw))
	dropped := 0
	for key, records := range raw {
		for _, rec := range records {
			var t task.Task
			if err := json.Unmarshal(rec, &t); err != nil {
				dropped++
				continue
			}
			t, ok := t.Normalize(now)
			if !ok {
				dropped++
				continue
			}
			groups[key] = append(groups[key], t)
		}
	}

	if dropped > 0 {
		s.log.Debug().Int("dropped", dropped).Str("path", s.path).Msg("discarded unreadable task records")
	}

	return task.FromGroups(groups), nil
}

// moveAside moves the malformed file aside so a later save cannot overwrite it.
// Caller must hold s.mu.
func (s *TaskStore) moveAside(cause error) error {
	backup, err := moveAside(s.path, s.now(), s.rename)
	if err != nil {
		s.log.Error().Err(err).Str("path", s.path).Msg("failed to move malformed tasks file aside")
		s.blocked = err
		return &RecoveredError{Path: s.path, Err: cause}
	}

	s.fingerprint = sha256.Sum256(nil)
	s.log.Warn().Str("path", s.path).Str("backup", backup).Err(cause).Msg("tasks file is malformed, starting empty")
	return &RecoveredError{Path: s.path, Backup: backup, Err: cause}
}

// Save writes the full collection atomically.
func (s *TaskStore) Save(ctx context.Context, c *task.Collection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.blocked != nil {
		return fmt.Errorf("save %s: %w: %w", s.path, ErrNotLoaded, s.blocked)
	}

	data, err := iojson.MarshalIndent(c.Groups())
	if err != nil {
		return fmt.Errorf("encode tasks: %w", err)
	}

	if err := writeAtomic(s.path, data); err != nil {
		return fmt.Errorf("write tasks file: %w", err)
	}

	s.fingerprint = sha256.Sum256(data)
	return nil
}

// ChangedOnDisk reports whether the file differs from what this store last
// loaded or saved. Used to tell external edits apart from our own writes.
func (s *TaskStore) ChangedOnDisk() (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return false, err
	}
	return sha256.Sum256(data) != s.fingerprint, nil
}

// moveAside renames path to a timestamped ".corrupt" sibling and returns the
// new name.
func moveAside(path string, now time.Time, rename func(string, string) error) (string, error) {
	backup := fmt.Sprintf("%s.corrupt.%s", path, now.Format(corruptStampLayout))
	if err := rename(path, backup); err != nil {
		return "", err
	}
	return backup, nil
}

// writeAtomic writes data to a sibling temp file and renames it over path.
func writeAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}

	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

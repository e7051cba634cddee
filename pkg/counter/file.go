package counter

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/labelsheet/pkg/errors"
)

// DefaultFileKey is the TOML key holding the counter.
const DefaultFileKey = "start"

const (
	// DefaultLockTimeout bounds how long Lock waits for another run.
	DefaultLockTimeout = 30 * time.Second

	// lockPoll is the interval between attempts to take a held lock.
	lockPoll = 50 * time.Millisecond
)

// FileStore keeps the counter under one key of a TOML file. All other keys
// of the file are preserved when the counter is written, so the store can
// share a file with configuration. Comments and key order are not preserved.
//
// Writes go to a temporary file in the same directory which is synced and
// then renamed over the original, so the file is never left half written.
type FileStore struct {
	path        string
	key         string
	lockTimeout time.Duration
	logger      *log.Logger
}

// NewFileStore creates a store for the TOML file at path.
// The file does not need to exist yet.
func NewFileStore(path string) *FileStore {
	return &FileStore{
		path:        path,
		key:         DefaultFileKey,
		lockTimeout: DefaultLockTimeout,
		logger:      log.Default(),
	}
}

// SetLockTimeout bounds how long Lock waits. Zero or less means
// DefaultLockTimeout.
func (s *FileStore) SetLockTimeout(d time.Duration) {
	if d <= 0 {
		d = DefaultLockTimeout
	}
	s.lockTimeout = d
}

// SetLogger sets the logger that reports waiting for a held lock.
func (s *FileStore) SetLogger(l *log.Logger) {
	if l != nil {
		s.logger = l
	}
}

// Path returns the file the counter is stored in.
func (s *FileStore) Path() string {
	return s.path
}

// Load implements Store.
func (s *FileStore) Load(ctx context.Context) (Snapshot, error) {
	doc, err := s.read()
	if err != nil {
		return Snapshot{}, err
	}
	return s.snapshot(doc)
}

// Commit implements Store.
func (s *FileStore) Commit(ctx context.Context, seen Snapshot, next int) error {
	doc, err := s.read()
	if err != nil {
		return err
	}
	cur, err := s.snapshot(doc)
	if err != nil {
		return err
	}
	if cur != seen {
		return &errors.ConflictError{Expected: seen.Value, Actual: cur.Value, Missing: seen.Exists && !cur.Exists}
	}

	doc[s.key] = int64(next)
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
		return errors.Wrap(errors.ErrCodePersistence, err, "encode %s", s.path)
	}
	if err := writeFileAtomic(s.path, buf.Bytes()); err != nil {
		return errors.Wrap(errors.ErrCodePersistence, err, "write counter to %s", s.path)
	}
	return nil
}

// Close implements Store.
func (s *FileStore) Close() error {
	return nil
}

// Lock implements Locker with an exclusive lock file next to the store.
// The file names the process that created it. Lock gives up after the lock
// timeout, so a file left behind by a killed run is reported instead of
// blocking every later run.
func (s *FileStore) Lock(ctx context.Context) (func() error, error) {
	lockPath := s.path + ".lock"
	deadline := time.NewTimer(s.lockTimeout)
	defer deadline.Stop()

	for waited := false; ; waited = true {
		f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			fmt.Fprintf(f, "pid %d\n", os.Getpid())
			if err := f.Close(); err != nil {
				_ = os.Remove(lockPath)
				return nil, errors.Wrap(errors.ErrCodePersistence, err, "create lock %s", lockPath)
			}
			return func() error {
				if err := os.Remove(lockPath); err != nil && !os.IsNotExist(err) {
					return err
				}
				return nil
			}, nil
		}
		if !os.IsExist(err) {
			return nil, errors.Wrap(errors.ErrCodePersistence, err, "create lock %s", lockPath)
		}
		if !waited {
			s.logger.Warn("waiting for counter lock", "path", lockPath, "owner", lockOwner(lockPath), "timeout", s.lockTimeout)
		}

		select {
		case <-ctx.Done():
			return nil, errors.Wrap(errors.ErrCodePersistence, ctx.Err(),
				"counter is locked by another run (remove %s if it is stale)", lockPath)
		case <-deadline.C:
			return nil, errors.New(errors.ErrCodePersistence,
				"counter is locked by another run (%s) after waiting %s; remove %s if it is stale",
				lockOwner(lockPath), s.lockTimeout, lockPath)
		case <-time.After(lockPoll):
		}
	}
}

// lockOwner returns the content of a lock file, e.g. "pid 4711".
func lockOwner(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return "unknown"
	}
	if owner := strings.TrimSpace(string(data)); owner != "" {
		return owner
	}
	return "unknown"
}

func (s *FileStore) read() (map[string]any, error) {
	doc := make(map[string]any)
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return doc, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodePersistence, err, "read counter from %s", s.path)
	}
	if _, err := toml.Decode(string(data), &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodePersistence, err, "parse %s", s.path)
	}
	return doc, nil
}

func (s *FileStore) snapshot(doc map[string]any) (Snapshot, error) {
	raw, ok := doc[s.key]
	if !ok {
		return Snapshot{}, nil
	}
	var v int64
	switch x := raw.(type) {
	case int64:
		v = x
	case string:
		// Accept quoted numbers written by hand.
		n, err := strconv.ParseInt(x, 10, 64)
		if err != nil {
			return Snapshot{}, errors.New(errors.ErrCodePersistence, "%s: %q is not a number", s.key, x)
		}
		v = n
	default:
		return Snapshot{}, errors.New(errors.ErrCodePersistence, "%s: want an integer, got %T", s.key, raw)
	}
	if v < 0 {
		return Snapshot{}, errors.New(errors.ErrCodePersistence, "%s: counter must not be negative, got %d", s.key, v)
	}
	return Snapshot{Value: int(v), Exists: true}, nil
}

// writeFileAtomic replaces path with data via a synced temporary file.
func writeFileAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	mode := os.FileMode(0o644)
	if fi, statErr := os.Stat(path); statErr == nil {
		mode = fi.Mode().Perm()
	}
	if err = tmp.Chmod(mode); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return err
	}
	syncDir(dir)
	return nil
}

// syncDir flushes a directory entry. Not all platforms support it.
func syncDir(dir string) {
	d, err := os.Open(dir)
	if err != nil {
		return
	}
	_ = d.Sync()
	_ = d.Close()
}

var (
	_ Store  = (*FileStore)(nil)
	_ Locker = (*FileStore)(nil)
)

// Package envlock implements the exclusive environment-root file lock
// (§5): only one dht process may mutate a given environment directory at
// a time. The task queue's own SQLite busy-timeout (internal/taskrunner)
// is a second, inner layer; it is not a substitute for this lock.
package envlock

import (
	"fmt"
	"os"
	"path/filepath"
)

// Lock holds the open lock file for the duration of one dht invocation.
type Lock struct {
	f *os.File
}

// Acquire takes the exclusive lock for environmentDir, failing immediately
// (rather than blocking) if another process already holds it — two
// concurrent regenerations of the same environment are a user error to
// report, not a queue to wait on.
func Acquire(environmentDir string) (*Lock, error) {
	path := filepath.Join(environmentDir, ".dht", "lock")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening lock file %s: %w", path, err)
	}
	if err := tryLock(f); err != nil {
		f.Close()
		return nil, fmt.Errorf("environment %s is locked by another dht process: %w", environmentDir, err)
	}
	return &Lock{f: f}, nil
}

// Release drops the lock and closes the underlying file.
func (l *Lock) Release() error {
	if err := unlock(l.f); err != nil {
		l.f.Close()
		return err
	}
	return l.f.Close()
}

// Package lock implements the process-wide advisory lock (§5) that ensures
// only one mutating phase run is active against a root directory at a time.
//
// No example in the retrieved pack wires a dedicated file-locking library
// (e.g. gofrs/flock) — this is a single syscall.Flock wrapper, not a
// hand-rolled reimplementation of a richer library, so it stays on the
// standard library per the grounding ledger in DESIGN.md.
package lock

import (
	"fmt"
	"os"
	"syscall"
)

// FileLock is an exclusive, non-blocking advisory lock backed by a file.
type FileLock struct {
	f *os.File
}

// Acquire creates (if needed) and exclusively locks path. It returns an
// error immediately if another process already holds the lock — callers
// must not block waiting for a concurrent run.
func Acquire(path string) (*FileLock, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("lock: open %s: %w", path, err)
	}
	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		f.Close()
		return nil, fmt.Errorf("lock: another run holds %s: %w", path, err)
	}
	return &FileLock{f: f}, nil
}

// Release unlocks and closes the lock file. Safe to call from a deferred
// signal handler, including after a panic.
func (l *FileLock) Release() error {
	if l == nil || l.f == nil {
		return nil
	}
	_ = syscall.Flock(int(l.f.Fd()), syscall.LOCK_UN)
	return l.f.Close()
}

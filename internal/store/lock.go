package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Error variables for file locking operations
var (
	// ErrLockTimeout is returned when a lock cannot be acquired within the specified timeout
	ErrLockTimeout = errors.New("lock acquisition timeout")
	// ErrLockNotHeld is returned when attempting to release a lock that isn't held
	ErrLockNotHeld = errors.New("lock not held")
)

const lockRetryInterval = 50 * time.Millisecond

// FileLock is an advisory, cross-process lock on a sidecar "<path>.lock" file.
// The sidecar is left in place on Unlock so concurrent lockers always contend
// on the same inode.
type FileLock struct {
	path     string
	lockFile *os.File
}

// NewFileLock creates a new file lock for the given path
func NewFileLock(path string) *FileLock {
	return &FileLock{path: path + ".lock"}
}

// Path returns the sidecar lock file path
func (fl *FileLock) Path() string { return fl.path }

// Lock acquires the file lock, polling until timeout
func (fl *FileLock) Lock(timeout time.Duration) error {
	if fl.lockFile != nil {
		return errors.New("lock already held")
	}

	if err := os.MkdirAll(filepath.Dir(fl.path), 0o700); err != nil {
		return fmt.Errorf("failed to create lock directory: %w", err)
	}

	file, err := os.OpenFile(fl.path, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return fmt.Errorf("failed to open lock file: %w", err)
	}

	deadline := time.Now().Add(timeout)
	for {
		err := platformLock(file)
		if err == nil {
			fl.lockFile = file
			return nil
		}
		if !isLockBusy(err) {
			file.Close()
			return fmt.Errorf("failed to lock %s: %w", fl.path, err)
		}
		if time.Now().After(deadline) {
			file.Close()
			return ErrLockTimeout
		}
		time.Sleep(lockRetryInterval)
	}
}

// Unlock releases the file lock
func (fl *FileLock) Unlock() error {
	if fl.lockFile == nil {
		return ErrLockNotHeld
	}

	err := platformUnlock(fl.lockFile)
	if closeErr := fl.lockFile.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	fl.lockFile = nil
	return err
}

// IsLocked returns true if the lock is currently held
func (fl *FileLock) IsLocked() bool {
	return fl.lockFile != nil
}

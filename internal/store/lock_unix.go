//go:build unix

package store

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

// platformLock applies a non-blocking exclusive flock
func platformLock(file *os.File) error {
	return unix.Flock(int(file.Fd()), unix.LOCK_EX|unix.LOCK_NB)
}

// platformUnlock releases the flock
func platformUnlock(file *os.File) error {
	return unix.Flock(int(file.Fd()), unix.LOCK_UN)
}

func isLockBusy(err error) bool {
	return errors.Is(err, unix.EWOULDBLOCK) || errors.Is(err, unix.EAGAIN)
}

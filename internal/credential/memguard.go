//go:build linux || darwin

package credential

import "golang.org/x/sys/unix"

// Best effort: RLIMIT_MEMLOCK may be too small, which only loses swap protection.
func lockMemory(b []byte)   { _ = unix.Mlock(b) }
func unlockMemory(b []byte) { _ = unix.Munlock(b) }

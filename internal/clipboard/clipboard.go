// Package clipboard copies short values such as mount paths to the system
// clipboard and clears them again after a delay.
package clipboard

import (
	"context"
	"fmt"
	"time"

	"github.com/atotto/clipboard"
)

// Board is the clipboard backend
type Board interface {
	ReadAll() (string, error)
	WriteAll(text string) error
}

type systemBoard struct{}

func (systemBoard) ReadAll() (string, error)   { return clipboard.ReadAll() }
func (systemBoard) WriteAll(text string) error { return clipboard.WriteAll(text) }

// System is the desktop clipboard
var System Board = systemBoard{}

// IsAvailable returns true if clipboard functionality is available
func IsAvailable(b Board) bool {
	if clipboard.Unsupported && b == System {
		return false
	}
	_, err := b.ReadAll()
	return err == nil
}

// Copy writes text to the clipboard
func Copy(b Board, text string) error {
	if err := b.WriteAll(text); err != nil {
		return fmt.Errorf("failed to copy to clipboard: %w", err)
	}
	return nil
}

// CopyWithTimeout copies text and clears the clipboard after ttl, unless the
// user copied something else in the meantime. It blocks until the clipboard is
// cleared or ctx is done; a ttl <= 0 leaves the text in place and returns at once.
func CopyWithTimeout(ctx context.Context, b Board, text string, ttl time.Duration) error {
	if err := Copy(b, text); err != nil {
		return err
	}
	if ttl <= 0 {
		return nil
	}

	timer := time.NewTimer(ttl)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}

	current, err := b.ReadAll()
	if err == nil && current == text {
		return Clear(b)
	}
	return nil
}

// Clear clears the clipboard
func Clear(b Board) error {
	if err := b.WriteAll(""); err != nil {
		return fmt.Errorf("failed to clear clipboard: %w", err)
	}
	return nil
}

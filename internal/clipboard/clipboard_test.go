package clipboard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memBoard struct {
	mu      sync.Mutex
	text    string
	failErr error
}

func (m *memBoard) ReadAll() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text, m.failErr
}

func (m *memBoard) WriteAll(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failErr != nil {
		return m.failErr
	}
	m.text = text
	return nil
}

func (m *memBoard) get() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text
}

func TestCopyWithTimeout_Clears(t *testing.T) {
	b := &memBoard{}
	require.NoError(t, CopyWithTimeout(context.Background(), b, "/home/u/Vaults/Work", 10*time.Millisecond))
	assert.Empty(t, b.get())
}

func TestCopyWithTimeout_NoTTLKeepsText(t *testing.T) {
	b := &memBoard{}
	require.NoError(t, CopyWithTimeout(context.Background(), b, "/mnt/x", 0))
	assert.Equal(t, "/mnt/x", b.get())
}

func TestCopyWithTimeout_KeepsForeignText(t *testing.T) {
	b := &memBoard{}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- CopyWithTimeout(ctx, b, "/mnt/x", time.Hour) }()

	require.Eventually(t, func() bool { return b.get() == "/mnt/x" }, time.Second, time.Millisecond)
	require.NoError(t, b.WriteAll("something else"))
	cancel()

	require.NoError(t, <-done)
	assert.Equal(t, "something else", b.get())
}

func TestCopy_Error(t *testing.T) {
	b := &memBoard{failErr: errors.New("no display")}
	assert.Error(t, Copy(b, "x"))
	assert.False(t, IsAvailable(b))
}

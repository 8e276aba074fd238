package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vault-cli/vaults/internal/domain"
)

func openTestHistory(t *testing.T) *History {
	t.Helper()
	h, err := OpenHistory(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { h.Close() })
	return h
}

func TestHistory_AppendList(t *testing.T) {
	h := openTestHistory(t)
	work, personal := uuid.New(), uuid.New()

	code := 12
	ops := []*domain.Operation{
		{VaultID: work, Type: domain.OpInit, Backend: domain.Gocryptfs, Success: true, Timestamp: time.Now()},
		{VaultID: personal, Type: domain.OpOpen, Backend: domain.CryFS, Success: true, Timestamp: time.Now()},
		{VaultID: work, Type: domain.OpOpen, Backend: domain.Gocryptfs, ErrorKind: "WrongPassword", ExitCode: &code, Timestamp: time.Now()},
	}
	for _, op := range ops {
		require.NoError(t, h.Append(op))
	}

	all, err := h.List(domain.NilVaultID, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "WrongPassword", all[0].ErrorKind)
	require.NotNil(t, all[0].ExitCode)
	assert.Equal(t, 12, *all[0].ExitCode)
	assert.Equal(t, domain.OpInit, all[2].Type)

	forWork, err := h.List(work, 0)
	require.NoError(t, err)
	assert.Len(t, forWork, 2)

	limited, err := h.List(domain.NilVaultID, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestHistory_Purge(t *testing.T) {
	h := openTestHistory(t)
	keep, drop := uuid.New(), uuid.New()

	for i := 0; i < 3; i++ {
		require.NoError(t, h.Append(&domain.Operation{VaultID: drop, Type: domain.OpOpen}))
	}
	require.NoError(t, h.Append(&domain.Operation{VaultID: keep, Type: domain.OpClose}))

	n, err := h.Purge(drop)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	all, err := h.List(domain.NilVaultID, 0)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, keep, all[0].VaultID)
}

func TestHistory_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	h, err := OpenHistory(path)
	require.NoError(t, err)
	require.NoError(t, h.Append(&domain.Operation{VaultID: uuid.New(), Type: domain.OpClose, Success: true}))
	require.NoError(t, h.Close())

	_, err = h.List(domain.NilVaultID, 0)
	assert.ErrorIs(t, err, ErrHistoryClosed)

	h, err = OpenHistory(path)
	require.NoError(t, err)
	defer h.Close()

	all, err := h.List(domain.NilVaultID, 0)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

package backend

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vault-cli/vaults/internal/domain"
	"github.com/vault-cli/vaults/internal/process"
)

func TestAvailability_Refresh(t *testing.T) {
	r := newFakeRunner()
	r.errs["cryfs"] = &process.SpawnError{Name: "cryfs", Err: errors.New("not found")}

	a := NewAvailability(r, nil)
	assert.Empty(t, a.Current())

	got := a.Refresh(context.Background())
	assert.Equal(t, []domain.BackendKind{domain.Gocryptfs}, got)
	assert.Equal(t, got, a.Current())
	assert.True(t, a.IsAvailable(domain.Gocryptfs))
	assert.False(t, a.IsAvailable(domain.CryFS))
	assert.Equal(t, []string{"Gocryptfs"}, a.Names())

	// A later refresh replaces the set rather than merging into it.
	delete(r.errs, "cryfs")
	r.exit("gocryptfs", 1)
	assert.Equal(t, []domain.BackendKind{domain.CryFS}, a.Refresh(context.Background()))
	assert.False(t, a.IsAvailable(domain.Gocryptfs))
}

func TestAvailability_CurrentIsCopy(t *testing.T) {
	a := NewAvailability(newFakeRunner(), nil)
	a.Refresh(context.Background())

	cur := a.Current()
	cur[0] = domain.BackendKind(42)
	assert.Equal(t, []domain.BackendKind{domain.CryFS, domain.Gocryptfs}, a.Current())
}

package registry

import (
	"github.com/google/uuid"

	"github.com/vault-cli/vaults/internal/domain"
)

// maxIDAttempts bounds how many random identities are drawn before giving up
const maxIDAttempts = 1000

// generateID draws identities from next until one is not in existing.
// After maxIDAttempts collisions it returns the nil identity, which Add rejects.
func generateID(existing domain.VaultMap, next func() uuid.UUID) domain.VaultID {
	for i := 0; i < maxIDAttempts; i++ {
		id := next()
		if id == uuid.Nil {
			continue
		}
		if _, taken := existing[id]; !taken {
			return id
		}
	}
	return uuid.Nil
}

// GenerateID returns a random identity not present in the registry, or the nil
// identity if every attempt collided.
func (r *Registry) GenerateID() domain.VaultID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return generateID(r.vaults, r.newID)
}

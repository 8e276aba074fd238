// Package credential holds the password of the operation currently in flight.
//
// The holder has a single slot. The secret is kept sealed under a random
// per-holder key, so a plain copy of the password never sits in the heap
// between Set and Get. Cleared buffers are overwritten with zeros.
package credential

import (
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/chacha20poly1305"
)

// ErrDestroyed is returned after Destroy has been called
var ErrDestroyed = errors.New("credential holder destroyed")

// Holder is a mutex-guarded single slot for one password
type Holder struct {
	mu     sync.Mutex
	key    []byte
	aead   cipher.AEAD
	sealed []byte // nonce || ciphertext
	set    bool
}

// NewHolder creates an empty holder with a fresh sealing key
func NewHolder() (*Holder, error) {
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate holder key: %w", err)
	}
	lockMemory(key)

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		Zero(key)
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	return &Holder{key: key, aead: aead}, nil
}

// Set stores password, replacing and wiping any previous value.
// The caller keeps ownership of password and may zero it afterwards.
func (h *Holder) Set(password []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.aead == nil {
		return ErrDestroyed
	}

	nonce := make([]byte, chacha20poly1305.NonceSizeX, chacha20poly1305.NonceSizeX+len(password)+h.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("failed to generate nonce: %w", err)
	}

	h.clearLocked()
	h.sealed = h.aead.Seal(nonce, nonce, password, nil)
	h.set = true
	return nil
}

// Get returns a copy of the stored password; the caller should Zero it after use.
// ok is false when the slot is empty.
func (h *Holder) Get() (password []byte, ok bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.set || h.aead == nil {
		return nil, false
	}

	nonce := h.sealed[:chacha20poly1305.NonceSizeX]
	plain, err := h.aead.Open(nil, nonce, h.sealed[chacha20poly1305.NonceSizeX:], nil)
	if err != nil {
		return nil, false
	}
	return plain, true
}

// IsSet reports whether a password is stored
func (h *Holder) IsSet() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.set
}

// Clear wipes the stored password
func (h *Holder) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clearLocked()
}

// Destroy wipes the password and the sealing key; the holder is unusable afterwards
func (h *Holder) Destroy() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clearLocked()
	if h.key != nil {
		Zero(h.key)
		unlockMemory(h.key)
		h.key = nil
	}
	h.aead = nil
}

func (h *Holder) clearLocked() {
	Zero(h.sealed)
	h.sealed = nil
	h.set = false
}

// Zero overwrites b with zeros
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// Package store persists local state for the vault manager: the bbolt-backed
// operation history, atomic whole-file writes, and cross-process file locks.
package store

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"

	"github.com/vault-cli/vaults/internal/domain"
)

// HistoryBucket holds one JSON record per backend operation, keyed by sequence
var HistoryBucket = []byte("history")

// ErrHistoryClosed is returned when the history database is not open
var ErrHistoryClosed = errors.New("history is closed")

// History records backend operations in a bbolt database
type History struct {
	db   *bbolt.DB
	path string
}

// OpenHistory opens or creates the history database at path
func OpenHistory(path string) (*History, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{
		Timeout: 5 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(HistoryBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create history bucket: %w", err)
	}

	if err := EnsureFilePermissions(path); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to verify history permissions: %w", err)
	}

	return &History{db: db, path: path}, nil
}

// Path returns the database file path
func (h *History) Path() string { return h.path }

// Close closes the database
func (h *History) Close() error {
	if h.db == nil {
		return nil
	}
	err := h.db.Close()
	h.db = nil
	return err
}

// Append stores op as the newest record
func (h *History) Append(op *domain.Operation) error {
	if h.db == nil {
		return ErrHistoryClosed
	}

	data, err := json.Marshal(op)
	if err != nil {
		return fmt.Errorf("failed to marshal operation: %w", err)
	}

	return h.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(HistoryBucket)
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		return b.Put(sequenceKey(seq), data)
	})
}

// List returns records newest first. A nil id lists every vault; limit <= 0 means no limit.
func (h *History) List(id domain.VaultID, limit int) ([]*domain.Operation, error) {
	if h.db == nil {
		return nil, ErrHistoryClosed
	}

	var ops []*domain.Operation
	err := h.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(HistoryBucket).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			var op domain.Operation
			if err := json.Unmarshal(v, &op); err != nil {
				return fmt.Errorf("failed to unmarshal record %d: %w", binary.BigEndian.Uint64(k), err)
			}
			if id != domain.NilVaultID && op.VaultID != id {
				continue
			}
			ops = append(ops, &op)
			if limit > 0 && len(ops) >= limit {
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return ops, nil
}

// Purge deletes every record of vault id and returns how many were removed
func (h *History) Purge(id domain.VaultID) (int, error) {
	if h.db == nil {
		return 0, ErrHistoryClosed
	}

	removed := 0
	err := h.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(HistoryBucket)

		var keys [][]byte
		err := b.ForEach(func(k, v []byte) error {
			var op domain.Operation
			if err := json.Unmarshal(v, &op); err != nil {
				return nil
			}
			if op.VaultID == id {
				keys = append(keys, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}

		for _, k := range keys {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		removed = len(keys)
		return nil
	})

	return removed, err
}

func sequenceKey(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return key
}

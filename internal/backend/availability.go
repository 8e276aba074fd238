package backend

import (
	"context"
	"sync"
	"time"

	"github.com/vault-cli/vaults/internal/domain"
	"github.com/vault-cli/vaults/internal/logging"
	"github.com/vault-cli/vaults/internal/process"
)

// probeTimeout bounds a single probe so a hung tool cannot stall startup
const probeTimeout = 10 * time.Second

// Availability caches which backend kinds are usable on the host
type Availability struct {
	runner process.Runner
	log    logging.Logger

	mu        sync.RWMutex
	available []domain.BackendKind
}

// NewAvailability creates an empty cache; call Refresh to populate it
func NewAvailability(runner process.Runner, log logging.Logger) *Availability {
	if log == nil {
		log = logging.Nop()
	}
	return &Availability{runner: runner, log: log}
}

// Refresh probes every backend kind in order and replaces the cached set
func (a *Availability) Refresh(ctx context.Context) []domain.BackendKind {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.available = a.available[:0:0]
	for _, kind := range domain.AllBackendKinds() {
		driver, err := For(kind, a.runner)
		if err != nil {
			a.log.Error(ctx, "no driver for backend", "backend", kind, "error", err)
			continue
		}

		pctx, cancel := context.WithTimeout(ctx, probeTimeout)
		ok := driver.Probe(pctx)
		cancel()

		a.log.Debug(ctx, "probed backend", "backend", kind, "available", ok)
		if ok {
			a.available = append(a.available, kind)
		}
	}

	return a.copyLocked()
}

// Current returns the last refreshed set without probing
func (a *Availability) Current() []domain.BackendKind {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.copyLocked()
}

// IsAvailable reports whether kind was available at the last refresh
func (a *Availability) IsAvailable(kind domain.BackendKind) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	for _, k := range a.available {
		if k == kind {
			return true
		}
	}
	return false
}

// Names returns the display names of the available backends
func (a *Availability) Names() []string {
	kinds := a.Current()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = k.String()
	}
	return names
}

func (a *Availability) copyLocked() []domain.BackendKind {
	out := make([]domain.BackendKind, len(a.available))
	copy(out, a.available)
	return out
}

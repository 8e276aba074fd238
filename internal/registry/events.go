package registry

import "github.com/vault-cli/vaults/internal/domain"

// EventType names a registry change
type EventType int

// Registry events
const (
	VaultAdded EventType = iota + 1
	VaultRemoved
	VaultChanged
	// Refreshed follows a removal; Event.Empty tells whether the registry is now empty.
	Refreshed
)

func (t EventType) String() string {
	switch t {
	case VaultAdded:
		return "vault-added"
	case VaultRemoved:
		return "vault-removed"
	case VaultChanged:
		return "vault-changed"
	case Refreshed:
		return "refreshed"
	default:
		return "unknown"
	}
}

// Event is delivered to observers after a successful mutation
type Event struct {
	Type  EventType
	ID    domain.VaultID
	Empty bool
}

// Subscribe registers fn for every event and returns a function removing it.
// Observers run synchronously on the mutating goroutine, after the registry lock
// is released, so they may call back into the registry.
func (r *Registry) Subscribe(fn func(Event)) (unsubscribe func()) {
	r.obsMu.Lock()
	defer r.obsMu.Unlock()

	id := r.nextObserver
	r.nextObserver++
	r.observers[id] = fn

	return func() {
		r.obsMu.Lock()
		defer r.obsMu.Unlock()
		delete(r.observers, id)
	}
}

func (r *Registry) emit(events ...Event) {
	r.obsMu.Lock()
	fns := make([]func(Event), 0, len(r.observers))
	for i := 0; i < r.nextObserver; i++ {
		if fn, ok := r.observers[i]; ok {
			fns = append(fns, fn)
		}
	}
	r.obsMu.Unlock()

	for _, ev := range events {
		for _, fn := range fns {
			fn(ev)
		}
	}
}

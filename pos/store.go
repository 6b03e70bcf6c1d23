/*
store.go - Persistence interface for the three workshop collections

PURPOSE:
  Defines the interface between the domain ledgers and durable storage.
  The Store is a small key-value surface with exactly three logical keys:
  products, services, and settings. Each key maps to the raw serialized
  JSON of its collection.

EXPLICIT FAILURE CONTRACT:
  Every operation returns an error. A caller can always distinguish
  "saved" from "failed to save" - storage failures are logged at the
  implementation boundary AND propagated, never swallowed.

CHANGE NOTIFICATION:
  Stores also expose a Subscribe hook that fires after a successful Set or
  Remove. Core ledgers never subscribe; the presentation layer uses it to
  refresh cached reads after an export/import/reset. This replaces implicit
  cross-process change detection with an explicit observer.

IMPLEMENTATIONS:
  - store/sqlite:   Durable, client-local SQLite file
  - pos/store:      In-memory, for tests and dev

SEE ALSO:
  - inventory.go, sales.go, settings.go: Collection owners
  - export.go: Snapshot backup over raw payloads
*/
package pos

import (
	"context"
	"sync"
)

// =============================================================================
// STORE - Key-value persistence for raw collection payloads
// =============================================================================

// Key identifies one of the three persisted collections.
type Key string

const (
	KeyProducts Key = "products"
	KeyServices Key = "services"
	KeySettings Key = "settings"
)

// Store persists raw collection payloads. Implementations must be safe for
// concurrent use.
type Store interface {
	// Get returns the payload stored under key. ok is false when the key
	// has never been set (which is distinct from an empty payload).
	Get(ctx context.Context, key Key) (payload []byte, ok bool, err error)

	// Set replaces the payload stored under key.
	Set(ctx context.Context, key Key, payload []byte) error

	// Remove deletes the key. Removing an absent key is not an error.
	Remove(ctx context.Context, key Key) error
}

// Observable is implemented by stores that can report writes.
type Observable interface {
	// Subscribe registers fn to be called after every successful Set or
	// Remove, with the affected key. The returned cancel func removes the
	// subscription.
	Subscribe(fn func(Key)) (cancel func())
}

// =============================================================================
// NOTIFIER - Shared subscription plumbing for Store implementations
// =============================================================================

// Notifier is a helper Store implementations embed to satisfy Observable.
// The zero value is ready to use.
type Notifier struct {
	mu   sync.Mutex
	subs map[int]func(Key)
	next int
}

// Subscribe registers fn and returns a cancel func.
func (n *Notifier) Subscribe(fn func(Key)) (cancel func()) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.subs == nil {
		n.subs = make(map[int]func(Key))
	}
	id := n.next
	n.next++
	n.subs[id] = fn

	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.subs, id)
	}
}

// Notify invokes every subscriber with the affected key. Called by store
// implementations after a successful write.
func (n *Notifier) Notify(key Key) {
	n.mu.Lock()
	fns := make([]func(Key), 0, len(n.subs))
	for _, fn := range n.subs {
		fns = append(fns, fn)
	}
	n.mu.Unlock()

	for _, fn := range fns {
		fn(key)
	}
}

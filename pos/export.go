/*
export.go - Snapshot backup, import, and full data reset

PURPOSE:
  Bundles the raw serialized contents of all three collections plus an
  export timestamp into a single document - a snapshot backup, not a
  diffable format. Each collection is embedded as a JSON STRING holding
  the payload exactly as persisted, so re-encoding the snapshot document
  (indented or compact) never rewrites the payload bytes. Import restores
  the payloads verbatim, so an export -> reset -> import cycle reproduces
  the collections byte for byte. Reset irreversibly erases all three keys;
  defaults are re-seeded on next startup.

SEE ALSO:
  - store.go: Raw payload access
*/
package pos

import (
	"context"
	"fmt"
	"time"
)

// Snapshot is the backup document. Each collection field holds the payload
// exactly as persisted, embedded as a string; a collection that was never
// written is null.
type Snapshot struct {
	Products   *string   `json:"products"`
	Services   *string   `json:"services"`
	Settings   *string   `json:"settings"`
	ExportDate time.Time `json:"exportDate"`
}

// Export reads all three collections and stamps the snapshot.
func Export(ctx context.Context, store Store) (Snapshot, error) {
	snap := Snapshot{ExportDate: time.Now()}

	read := func(key Key, dst **string) error {
		payload, ok, err := store.Get(ctx, key)
		if err != nil {
			return fmt.Errorf("failed to export %s: %w", key, err)
		}
		if ok {
			s := string(payload)
			*dst = &s
		}
		return nil
	}

	if err := read(KeyProducts, &snap.Products); err != nil {
		return Snapshot{}, err
	}
	if err := read(KeyServices, &snap.Services); err != nil {
		return Snapshot{}, err
	}
	if err := read(KeySettings, &snap.Settings); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// Import writes the snapshot's payloads back verbatim. Null collections
// are skipped, leaving the corresponding key untouched.
func Import(ctx context.Context, store Store, snap Snapshot) error {
	write := func(key Key, payload *string) error {
		if payload == nil {
			return nil
		}
		if err := store.Set(ctx, key, []byte(*payload)); err != nil {
			return fmt.Errorf("failed to import %s: %w", key, err)
		}
		return nil
	}

	if err := write(KeyProducts, snap.Products); err != nil {
		return err
	}
	if err := write(KeyServices, snap.Services); err != nil {
		return err
	}
	return write(KeySettings, snap.Settings)
}

// Reset erases all three collections. Callers re-seed defaults afterwards.
func Reset(ctx context.Context, store Store) error {
	for _, key := range []Key{KeyProducts, KeyServices, KeySettings} {
		if err := store.Remove(ctx, key); err != nil {
			return fmt.Errorf("failed to reset %s: %w", key, err)
		}
	}
	return nil
}

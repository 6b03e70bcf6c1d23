/*
settings.go - Settings registry (singleton configuration)

PURPOSE:
  Owns the settings collection: company profile and tax rate. Reads fall
  back to hardcoded defaults when the key has never been set; updates are
  shallow merges; reset restores the defaults and persists them.

SEE ALSO:
  - settlement.go: Reads the tax rate at settlement time
  - types.go: DefaultSettings
*/
package pos

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// SettingsRegistry owns the settings collection.
type SettingsRegistry struct {
	store Store
	mu    sync.Mutex
}

func NewSettingsRegistry(store Store) *SettingsRegistry {
	return &SettingsRegistry{store: store}
}

// Get returns the current settings, or the defaults if never set.
func (r *SettingsRegistry) Get(ctx context.Context) (Settings, error) {
	payload, ok, err := r.store.Get(ctx, KeySettings)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to load settings: %w", err)
	}
	if !ok || len(payload) == 0 {
		return DefaultSettings(), nil
	}

	var settings Settings
	if err := json.Unmarshal(payload, &settings); err != nil {
		return Settings{}, fmt.Errorf("failed to decode settings: %w", err)
	}
	return settings, nil
}

// Update shallow-merges the patch into the current settings and persists
// the result.
func (r *SettingsRegistry) Update(ctx context.Context, patch SettingsPatch) (Settings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	settings, err := r.Get(ctx)
	if err != nil {
		return Settings{}, err
	}
	patch.Apply(&settings)

	if err := r.save(ctx, settings); err != nil {
		return Settings{}, err
	}
	return settings, nil
}

// Reset restores and persists the hardcoded defaults.
func (r *SettingsRegistry) Reset(ctx context.Context) (Settings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	settings := DefaultSettings()
	if err := r.save(ctx, settings); err != nil {
		return Settings{}, err
	}
	return settings, nil
}

func (r *SettingsRegistry) save(ctx context.Context, settings Settings) error {
	payload, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := r.store.Set(ctx, KeySettings, payload); err != nil {
		return fmt.Errorf("failed to persist settings: %w", err)
	}
	return nil
}

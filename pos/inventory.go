/*
inventory.go - Product collection ledger

PURPOSE:
  Owns the products collection: create, partial update, delete, and the
  query surface the POS form and dashboard consume (by-type listing and
  low-stock alerts). The ledger itself enforces no stock invariant - the
  settlement engine checks sufficiency BEFORE asking for a decrement.

CACHING:
  List queries filter an in-memory cache in insertion order. Every mutation
  rewrites the full persisted collection and the cache together. GetByID
  deliberately bypasses the cache and reads the durable store, so it
  reflects the latest persisted state even if the cache is stale; Refresh
  reloads the cache (the API layer calls it from a store subscription after
  import/reset).

VALUE SEMANTICS:
  Every query returns copies. Mutating a returned Product does not mutate
  the ledger.

SEE ALSO:
  - settlement.go: The only caller that decrements stock
  - store.go: Persistence contract
*/
package pos

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =============================================================================
// INVENTORY - Product collection owner
// =============================================================================

type Inventory struct {
	store Store

	mu    sync.RWMutex
	cache []Product
}

// NewInventory creates the ledger and loads the cache from the store.
func NewInventory(ctx context.Context, store Store) (*Inventory, error) {
	inv := &Inventory{store: store}
	if err := inv.Refresh(ctx); err != nil {
		return nil, err
	}
	return inv, nil
}

// Refresh reloads the in-memory cache from the durable store.
func (inv *Inventory) Refresh(ctx context.Context) error {
	products, err := loadProducts(ctx, inv.store)
	if err != nil {
		return err
	}

	inv.mu.Lock()
	inv.cache = products
	inv.mu.Unlock()
	return nil
}

// Add assigns an identifier and creation timestamp, appends the product,
// and persists the collection. Field validation is the caller's job.
func (inv *Inventory) Add(ctx context.Context, draft ProductDraft) (Product, error) {
	product := Product{
		ID:            uuid.NewString(),
		Name:          draft.Name,
		Type:          draft.Type,
		PurchasePrice: draft.PurchasePrice,
		SellingPrice:  draft.SellingPrice,
		CurrentStock:  draft.CurrentStock,
		MinStockAlert: draft.MinStockAlert,
		CreatedAt:     time.Now(),
	}

	inv.mu.Lock()
	defer inv.mu.Unlock()

	updated := append(copyProducts(inv.cache), product)
	if err := saveProducts(ctx, inv.store, updated); err != nil {
		return Product{}, err
	}
	inv.cache = updated
	return product, nil
}

// Update merges patch into the product with the given id and persists the
// full collection. An unknown id is a silent no-op.
func (inv *Inventory) Update(ctx context.Context, id string, patch ProductPatch) error {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	updated := copyProducts(inv.cache)
	found := false
	for i := range updated {
		if updated[i].ID == id {
			patch.Apply(&updated[i])
			found = true
			break
		}
	}
	if !found {
		return nil
	}

	if err := saveProducts(ctx, inv.store, updated); err != nil {
		return err
	}
	inv.cache = updated
	return nil
}

// Delete removes the product with the given id and persists the collection.
func (inv *Inventory) Delete(ctx context.Context, id string) error {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	updated := make([]Product, 0, len(inv.cache))
	for _, p := range inv.cache {
		if p.ID != id {
			updated = append(updated, p)
		}
	}

	if err := saveProducts(ctx, inv.store, updated); err != nil {
		return err
	}
	inv.cache = updated
	return nil
}

// GetByID reads the product from the durable store (not the cache), so it
// reflects the latest persisted state. Returns ErrProductNotFound when the
// id has no match.
func (inv *Inventory) GetByID(ctx context.Context, id string) (Product, error) {
	products, err := loadProducts(ctx, inv.store)
	if err != nil {
		return Product{}, err
	}
	for _, p := range products {
		if p.ID == id {
			return p, nil
		}
	}
	return Product{}, ErrProductNotFound
}

// List returns all cached products in insertion order.
func (inv *Inventory) List() []Product {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	return copyProducts(inv.cache)
}

// ListByType filters the cache by product type, preserving insertion order.
func (inv *Inventory) ListByType(t ProductType) []Product {
	inv.mu.RLock()
	defer inv.mu.RUnlock()

	var result []Product
	for _, p := range inv.cache {
		if p.Type == t {
			result = append(result, p)
		}
	}
	return result
}

// LowStock returns products at or below their alert threshold, in insertion
// order. The boundary case (stock == threshold) is included.
func (inv *Inventory) LowStock() []Product {
	inv.mu.RLock()
	defer inv.mu.RUnlock()

	var result []Product
	for _, p := range inv.cache {
		if p.IsLowStock() {
			result = append(result, p)
		}
	}
	return result
}

// =============================================================================
// FIRST-RUN SEEDING
// =============================================================================

// Seed writes the default product catalog, but only when the products key
// has never been set. An explicitly emptied collection is left alone.
func (inv *Inventory) Seed(ctx context.Context) error {
	_, ok, err := inv.store.Get(ctx, KeyProducts)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}

	inv.mu.Lock()
	defer inv.mu.Unlock()

	seeded := defaultCatalog()
	if err := saveProducts(ctx, inv.store, seeded); err != nil {
		return err
	}
	inv.cache = seeded
	return nil
}

func defaultCatalog() []Product {
	now := time.Now()
	entry := func(name string, t ProductType, purchase, selling, stock, alert int64) Product {
		return Product{
			ID:            uuid.NewString(),
			Name:          name,
			Type:          t,
			PurchasePrice: decimal.NewFromInt(purchase),
			SellingPrice:  decimal.NewFromInt(selling),
			CurrentStock:  decimal.NewFromInt(stock),
			MinStockAlert: decimal.NewFromInt(alert),
			CreatedAt:     now,
		}
	}
	return []Product{
		entry("Mobil 1 Engine Oil", TypeOil, 45, 65, 50, 10),
		entry("Castrol Engine Oil", TypeOil, 40, 58, 40, 10),
		entry("Shell Engine Oil", TypeOil, 35, 50, 35, 10),
		entry("Oil Filter", TypeFilter, 15, 25, 30, 5),
		entry("Air Filter", TypeFilter, 12, 20, 25, 5),
		entry("Fuel Filter", TypeFilter, 18, 28, 20, 5),
		entry("Performance Additive", TypeAdditive, 25, 40, 15, 5),
		entry("Leak Sealant", TypeAdditive, 20, 35, 15, 5),
	}
}

// =============================================================================
// COLLECTION CODEC
// =============================================================================

func loadProducts(ctx context.Context, s Store) ([]Product, error) {
	payload, ok, err := s.Get(ctx, KeyProducts)
	if err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	if !ok || len(payload) == 0 {
		return nil, nil
	}

	var products []Product
	if err := json.Unmarshal(payload, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	return products, nil
}

func saveProducts(ctx context.Context, s Store, products []Product) error {
	if products == nil {
		products = []Product{}
	}
	payload, err := json.Marshal(products)
	if err != nil {
		return fmt.Errorf("failed to encode products: %w", err)
	}
	if err := s.Set(ctx, KeyProducts, payload); err != nil {
		return fmt.Errorf("failed to persist products: %w", err)
	}
	return nil
}

func copyProducts(products []Product) []Product {
	out := make([]Product, len(products))
	copy(out, products)
	return out
}

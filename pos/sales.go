/*
sales.go - Service collection ledger (append-only)

PURPOSE:
  Owns the services collection. From the settlement engine's perspective
  this ledger is append-only: records are never updated or deleted in the
  normal flow (only a full data reset erases them). Exposes the range
  queries and aggregate helpers the reports and dashboard consume.

DATE SEMANTICS:
  All day filters use local calendar days, midnight to midnight. Range
  queries are inclusive of both endpoints at day granularity: a record at
  23:59 on the end date is in, a record at 00:00 the day after is out.

CLOCK:
  Now is injectable so tests can pin "today". Production wiring leaves it
  at time.Now.

SEE ALSO:
  - settlement.go: The writer
  - reporting.go: Pure derivations over query results
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
// SALES LEDGER - Service collection owner
// =============================================================================

type SalesLedger struct {
	store Store

	// Now returns the current time for "today"/"this month" queries.
	// Override in tests.
	Now func() time.Time

	mu    sync.RWMutex
	cache []Service
}

// NewSalesLedger creates the ledger and loads the cache from the store.
func NewSalesLedger(ctx context.Context, store Store) (*SalesLedger, error) {
	l := &SalesLedger{store: store, Now: time.Now}
	if err := l.Refresh(ctx); err != nil {
		return nil, err
	}
	return l, nil
}

// Refresh reloads the in-memory cache from the durable store.
func (l *SalesLedger) Refresh(ctx context.Context) error {
	services, err := loadServices(ctx, l.store)
	if err != nil {
		return err
	}

	l.mu.Lock()
	l.cache = services
	l.mu.Unlock()
	return nil
}

// Append assigns an identifier and creation timestamp, appends the record,
// and persists the collection in a single write.
func (l *SalesLedger) Append(ctx context.Context, service Service) (Service, error) {
	service.ID = uuid.NewString()
	service.CreatedAt = l.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	updated := append(copyServices(l.cache), service)
	if err := saveServices(ctx, l.store, updated); err != nil {
		return Service{}, err
	}
	l.cache = updated
	return service, nil
}

// GetByID returns the record or ErrServiceNotFound.
func (l *SalesLedger) GetByID(id string) (Service, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, s := range l.cache {
		if s.ID == id {
			return s, nil
		}
	}
	return Service{}, ErrServiceNotFound
}

// List returns all records in insertion order.
func (l *SalesLedger) List() []Service {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return copyServices(l.cache)
}

// Today returns records created on the current calendar day.
func (l *SalesLedger) Today() []Service {
	l.mu.RLock()
	defer l.mu.RUnlock()

	now := l.Now()
	var result []Service
	for _, s := range l.cache {
		if SameDay(now, s.CreatedAt) {
			result = append(result, s)
		}
	}
	return result
}

// ByDateRange returns records with start <= createdAt <= end at day
// granularity: start is normalized to midnight, end to the last instant of
// its day.
func (l *SalesLedger) ByDateRange(start, end time.Time) []Service {
	l.mu.RLock()
	defer l.mu.RUnlock()

	from := StartOfDay(start)
	to := EndOfDay(end)

	var result []Service
	for _, s := range l.cache {
		if !s.CreatedAt.Before(from) && !s.CreatedAt.After(to) {
			result = append(result, s)
		}
	}
	return result
}

// SumTotals sums TotalPrice over the given records. A nil slice sums the
// full collection.
func (l *SalesLedger) SumTotals(records []Service) decimal.Decimal {
	if records == nil {
		records = l.List()
	}
	total := decimal.Zero
	for _, s := range records {
		total = total.Add(s.TotalPrice)
	}
	return total
}

// TodayTotal sums today's records.
func (l *SalesLedger) TodayTotal() decimal.Decimal {
	return l.SumTotals(l.Today())
}

// MonthlyTotal sums records from the first day of the current calendar
// month onward.
func (l *SalesLedger) MonthlyTotal() decimal.Decimal {
	l.mu.RLock()
	defer l.mu.RUnlock()

	monthStart := StartOfMonth(l.Now())
	total := decimal.Zero
	for _, s := range l.cache {
		if !s.CreatedAt.Before(monthStart) {
			total = total.Add(s.TotalPrice)
		}
	}
	return total
}

// CarsServedToday counts today's records.
func (l *SalesLedger) CarsServedToday() int {
	return len(l.Today())
}

// =============================================================================
// COLLECTION CODEC
// =============================================================================

func loadServices(ctx context.Context, s Store) ([]Service, error) {
	payload, ok, err := s.Get(ctx, KeyServices)
	if err != nil {
		return nil, fmt.Errorf("failed to load services: %w", err)
	}
	if !ok || len(payload) == 0 {
		return nil, nil
	}

	var services []Service
	if err := json.Unmarshal(payload, &services); err != nil {
		return nil, fmt.Errorf("failed to decode services: %w", err)
	}
	return services, nil
}

func saveServices(ctx context.Context, s Store, services []Service) error {
	if services == nil {
		services = []Service{}
	}
	payload, err := json.Marshal(services)
	if err != nil {
		return fmt.Errorf("failed to encode services: %w", err)
	}
	if err := s.Set(ctx, KeyServices, payload); err != nil {
		return fmt.Errorf("failed to persist services: %w", err)
	}
	return nil
}

func copyServices(services []Service) []Service {
	out := make([]Service, len(services))
	copy(out, services)
	return out
}

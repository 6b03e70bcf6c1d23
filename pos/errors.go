/*
errors.go - Centralized error types for the POS engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  The API layer maps these onto HTTP statuses.

ERROR CATEGORIES:
  1. Validation errors - malformed service requests
  2. Stock errors      - settlement rejected before any mutation
  3. Not-found errors  - lookups by identifier with no match
  4. Storage errors    - propagated verbatim from the Store boundary
                         (never swallowed; callers always learn whether a
                         write landed)

USAGE:
  if errors.Is(err, pos.ErrInsufficientStock) { ... }

  var stockErr *pos.InsufficientStockError
  if errors.As(err, &stockErr) {
      fmt.Println(stockErr.ProductName, stockErr.Available)
  }

SEE ALSO:
  - settlement.go: Raises stock and validation errors
  - api/handlers.go: HTTP status mapping
*/
package pos

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrProductNotFound is returned when a product lookup has no match.
	ErrProductNotFound = errors.New("product not found")

	// ErrServiceNotFound is returned when a service lookup has no match.
	ErrServiceNotFound = errors.New("service not found")

	// ErrInsufficientStock is returned when a settlement would drive a
	// product's stock below zero. Raised before any mutation.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrInvalidRequest is returned when a service request fails validation.
	ErrInvalidRequest = errors.New("invalid request")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InsufficientStockError names the product that blocked a settlement and the
// quantity actually available.
type InsufficientStockError struct {
	ProductID   string
	ProductName string
	Available   decimal.Decimal
	Requested   decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: available %s, requested %s",
		e.ProductName, e.Available, e.Requested)
}

func (e *InsufficientStockError) Unwrap() error {
	return ErrInsufficientStock
}

// ValidationError describes a single bad field on a service request.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidRequest
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrServiceNotFound)
}

// IsClientError returns true if the error is due to invalid client input
// rather than a storage fault.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrInsufficientStock)
}

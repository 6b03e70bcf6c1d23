/*
settlement.go - Transaction settlement engine (the core algorithm)

PURPOSE:
  Turns a service request (car, oil product, liters, filter product, labor
  cost) into an immutable Service record: validates stock sufficiency,
  decrements inventory, computes a tax-inclusive total, and appends the
  record to the sales ledger.

CRITICAL INVARIANTS:
  1. Stock never goes negative: BOTH stock checks run before EITHER
     product is decremented. A rejected settlement mutates nothing.
  2. The stored total is reproducible:
       totalPrice = (oil.sellingPrice*liters + filter.sellingPrice
                     + laborCost) * (1 + taxRate/100)
     at the tax rate in effect at settlement time. That rate is recorded
     on the Service so later breakdowns survive rate changes.
  3. Item snapshots copy names and prices at sale time; later product
     edits or deletions never touch the record.

NUMERIC SEMANTICS:
  All arithmetic is decimal and unrounded between steps. Two-decimal
  rounding happens only at presentation.

FAILURE SEMANTICS:
  Stock checks precede all mutation, so a rejection has zero effect. The
  two inventory writes and the sales append are separate persisted writes
  with no cross-collection transaction - a crash between them can leave a
  decrement without a recorded sale. Accepted limitation of single-process
  local storage; within one process the sequence has no suspension points.

SEE ALSO:
  - reporting.go: Reconstructs tax/cost/profit from stored records
  - inventory.go, sales.go, settings.go: Collaborators
*/
package pos

import (
	"context"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SERVICE REQUEST - Settlement input
// =============================================================================

// ServiceRequest is the input to Settle. The engine accepts any positive
// liters value; the 1-liter minimum and 0.5 step are form policy, not an
// engine invariant.
type ServiceRequest struct {
	CarPlateNumber  string
	OilProductID    string
	OilLiters       decimal.Decimal
	FilterProductID string
	LaborCost       decimal.Decimal
}

// Validate checks the request fields, returning a ValidationError naming
// the first bad field.
func (r ServiceRequest) Validate() error {
	if r.CarPlateNumber == "" {
		return &ValidationError{Field: "carPlateNumber", Message: "must not be empty"}
	}
	if r.OilProductID == "" {
		return &ValidationError{Field: "oilProductId", Message: "must not be empty"}
	}
	if !r.OilLiters.IsPositive() {
		return &ValidationError{Field: "oilLiters", Message: "must be positive"}
	}
	if r.FilterProductID == "" {
		return &ValidationError{Field: "filterProductId", Message: "must not be empty"}
	}
	if r.LaborCost.IsNegative() {
		return &ValidationError{Field: "laborCost", Message: "must not be negative"}
	}
	return nil
}

// =============================================================================
// SETTLEMENT ENGINE
// =============================================================================

// Engine settles service requests against the inventory, sales, and
// settings collections.
type Engine struct {
	Inventory *Inventory
	Sales     *SalesLedger
	Settings  *SettingsRegistry
}

func NewEngine(inventory *Inventory, sales *SalesLedger, settings *SettingsRegistry) *Engine {
	return &Engine{Inventory: inventory, Sales: sales, Settings: settings}
}

var one = decimal.NewFromInt(1)

// Settle executes the settlement sequence:
//
//  1. Resolve both products from the live collection and check their types
//     (the oil slot must hold an oil product, the filter slot a filter;
//     this also rules out one product filling both slots).
//  2. Check oil stock, then filter stock - both BEFORE any mutation.
//  3. Compute line totals, subtotal, tax at the current rate, total.
//  4. Decrement oil stock by liters and filter stock by 1.
//  5. Append the immutable Service record and return it.
//
// An insufficient-stock rejection names the product and the available
// quantity and leaves both products untouched.
func (e *Engine) Settle(ctx context.Context, req ServiceRequest) (Service, error) {
	if err := req.Validate(); err != nil {
		return Service{}, err
	}

	oil, err := e.Inventory.GetByID(ctx, req.OilProductID)
	if err != nil {
		return Service{}, err
	}
	filter, err := e.Inventory.GetByID(ctx, req.FilterProductID)
	if err != nil {
		return Service{}, err
	}

	if oil.Type != TypeOil {
		return Service{}, &ValidationError{Field: "oilProductId", Message: "must reference an oil product"}
	}
	if filter.Type != TypeFilter {
		return Service{}, &ValidationError{Field: "filterProductId", Message: "must reference a filter product"}
	}

	// Both checks must pass before either product is decremented.
	if oil.CurrentStock.LessThan(req.OilLiters) {
		return Service{}, &InsufficientStockError{
			ProductID:   oil.ID,
			ProductName: oil.Name,
			Available:   oil.CurrentStock,
			Requested:   req.OilLiters,
		}
	}
	if filter.CurrentStock.LessThan(one) {
		return Service{}, &InsufficientStockError{
			ProductID:   filter.ID,
			ProductName: filter.Name,
			Available:   filter.CurrentStock,
			Requested:   one,
		}
	}

	settings, err := e.Settings.Get(ctx)
	if err != nil {
		return Service{}, err
	}

	oilLine := oil.SellingPrice.Mul(req.OilLiters)
	filterLine := filter.SellingPrice
	subtotal := oilLine.Add(filterLine).Add(req.LaborCost)
	tax := TaxOn(subtotal, settings.TaxRate)
	total := subtotal.Add(tax)

	oilStock := oil.CurrentStock.Sub(req.OilLiters)
	if err := e.Inventory.Update(ctx, oil.ID, ProductPatch{CurrentStock: &oilStock}); err != nil {
		return Service{}, err
	}
	filterStock := filter.CurrentStock.Sub(one)
	if err := e.Inventory.Update(ctx, filter.ID, ProductPatch{CurrentStock: &filterStock}); err != nil {
		return Service{}, err
	}

	record := Service{
		CarPlateNumber: req.CarPlateNumber,
		OilBrand:       oil.Name,
		OilLiters:      req.OilLiters,
		FilterType:     filter.Name,
		LaborCost:      req.LaborCost,
		TotalPrice:     total,
		TaxRate:        settings.TaxRate,
		ItemsUsed: []ServiceItem{
			{
				ProductID:     oil.ID,
				ProductName:   oil.Name,
				Quantity:      req.OilLiters,
				PurchasePrice: oil.PurchasePrice,
				SellingPrice:  oil.SellingPrice,
			},
			{
				ProductID:     filter.ID,
				ProductName:   filter.Name,
				Quantity:      one,
				PurchasePrice: filter.PurchasePrice,
				SellingPrice:  filter.SellingPrice,
			},
		},
	}

	return e.Sales.Append(ctx, record)
}

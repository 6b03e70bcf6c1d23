/*
reporting.go - Financial aggregation over stored sales records

PURPOSE:
  Pure derivations over a caller-supplied list of Service records
  (typically a date-range query result). No storage access here.

TAX RECONSTRUCTION:
  Tax is not stored as a separate amount. Two reconstructions exist:

  1. Aggregate reports (Summarize): per record,
       tax = totalPrice - (itemsRevenue + laborCost)
     The residual between the stored total and the stored-price subtotal.
     This always reproduces the tax actually charged, because totalPrice
     encodes it.

  2. Receipt redisplay (ReceiptBreakdown): inverts the tax-inclusive total
     at a percentage rate. New records carry the rate charged at
     settlement, so the inversion is exact even after a settings rate
     change. Records from older backups carry no rate; for those the
     CURRENT rate is used, which diverges from the true historical tax if
     the rate has changed since the sale. Known compatibility caveat, kept
     deliberately.

SEE ALSO:
  - settlement.go: The forward computation these formulas invert
  - sales.go: Query surface producing the record sets
*/
package pos

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// SUMMARY - Aggregate financials for a record set
// =============================================================================

type Summary struct {
	Revenue     decimal.Decimal `json:"revenue"`
	Cost        decimal.Decimal `json:"cost"`
	GrossProfit decimal.Decimal `json:"grossProfit"`
	Tax         decimal.Decimal `json:"tax"`
	NetProfit   decimal.Decimal `json:"netProfit"`
	CarsServed  int             `json:"carsServed"`
}

// Summarize derives revenue, cost of goods and labor, gross profit, tax,
// and net profit from the given records.
func Summarize(records []Service) Summary {
	revenue := decimal.Zero
	cost := decimal.Zero
	tax := decimal.Zero

	for _, s := range records {
		revenue = revenue.Add(s.TotalPrice)
		cost = cost.Add(s.ItemsCost()).Add(s.LaborCost)

		subtotal := s.ItemsRevenue().Add(s.LaborCost)
		tax = tax.Add(s.TotalPrice.Sub(subtotal))
	}

	gross := revenue.Sub(cost)
	return Summary{
		Revenue:     revenue,
		Cost:        cost,
		GrossProfit: gross,
		Tax:         tax,
		NetProfit:   gross.Sub(tax),
		CarsServed:  len(records),
	}
}

// =============================================================================
// RECEIPT BREAKDOWN - Per-record tax reconstruction
// =============================================================================

type Breakdown struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	TaxRate  decimal.Decimal `json:"taxRate"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// ReceiptBreakdown reconstructs the pre-tax subtotal and tax amount of a
// single record by inverting its tax-inclusive total:
//
//	subtotal = total / (1 + rate/100)
//	tax      = subtotal * rate/100
//
// The record's stored rate is preferred; currentRate is the fallback for
// records persisted before rates were recorded.
func ReceiptBreakdown(s Service, currentRate decimal.Decimal) Breakdown {
	rate := s.TaxRate
	if !rate.IsPositive() {
		rate = currentRate
	}

	divisor := one.Add(rate.Div(hundred))
	subtotal := s.TotalPrice.Div(divisor)
	return Breakdown{
		Subtotal: subtotal,
		TaxRate:  rate,
		Tax:      TaxOn(subtotal, rate),
		Total:    s.TotalPrice,
	}
}

// =============================================================================
// DASHBOARD - Combined sales + inventory stats
// =============================================================================

// Dashboard assembles the landing-view stats: today's sales total, cars
// served today, and the low-stock alert count.
func Dashboard(sales *SalesLedger, inventory *Inventory) DashboardStats {
	return DashboardStats{
		TodaySales:    sales.TodayTotal(),
		CarsServed:    sales.CarsServedToday(),
		LowStockCount: len(inventory.LowStock()),
	}
}

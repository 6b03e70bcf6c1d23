/*
Package pos provides the core point-of-sale engine for a single-tenant
oil-change workshop.

PURPOSE:
  This package contains the domain entities and algorithms for tracking
  product inventory, settling completed services (an oil-change transaction),
  and deriving financial reports. All state lives in a small key-value
  Store (see store.go) with three logical collections: products, services,
  and settings.

KEY CONCEPTS IN THIS FILE (types.go):
  - Product: A sellable/consumable item (oil, filter, additive)
  - ServiceItem: A price snapshot of a product at the moment of sale
  - Service: An immutable record of a completed oil change
  - Settings: Singleton company profile + tax rate

DESIGN PRINCIPLES:
  1. Precision: decimal.Decimal for every currency amount and stock quantity
     (stock may be fractional - liters of oil)
  2. Snapshots: ServiceItem copies product name and prices at settlement
     time, so later product edits never rewrite history
  3. Immutability: Service records are append-only; there is no update path
  4. Explicit errors: every Store round trip returns an error the caller
     must handle

SEE ALSO:
  - settlement.go: The transaction settlement engine
  - inventory.go:  Product collection ledger
  - sales.go:      Service collection ledger
  - reporting.go:  Revenue/cost/tax/profit derivation
*/
package pos

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Collections are persisted and exported as plain JSON numbers. This
	// keeps snapshots portable with the historical backup format.
	decimal.MarshalJSONWithoutQuotes = true
}

// =============================================================================
// PRODUCT - Sellable/consumable inventory item
// =============================================================================

type ProductType string

const (
	TypeOil      ProductType = "oil"
	TypeFilter   ProductType = "filter"
	TypeAdditive ProductType = "additive"
)

// Valid reports whether t is one of the known product types.
func (t ProductType) Valid() bool {
	switch t {
	case TypeOil, TypeFilter, TypeAdditive:
		return true
	}
	return false
}

// Product is a sellable/consumable item. CurrentStock is a decimal because
// oil is tracked in liters and may be fractional.
type Product struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Type          ProductType     `json:"type"`
	PurchasePrice decimal.Decimal `json:"purchasePrice"`
	SellingPrice  decimal.Decimal `json:"sellingPrice"`
	CurrentStock  decimal.Decimal `json:"currentStock"`
	MinStockAlert decimal.Decimal `json:"minStockAlert"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// IsLowStock reports whether the product is at or below its alert threshold.
// The boundary (stock == threshold) counts as low.
func (p Product) IsLowStock() bool {
	return p.CurrentStock.LessThanOrEqual(p.MinStockAlert)
}

// ProductDraft carries the caller-provided fields of a new product.
// ID and CreatedAt are assigned by the Inventory ledger.
type ProductDraft struct {
	Name          string
	Type          ProductType
	PurchasePrice decimal.Decimal
	SellingPrice  decimal.Decimal
	CurrentStock  decimal.Decimal
	MinStockAlert decimal.Decimal
}

// ProductPatch is a partial update. Nil fields are left unchanged.
type ProductPatch struct {
	Name          *string
	Type          *ProductType
	PurchasePrice *decimal.Decimal
	SellingPrice  *decimal.Decimal
	CurrentStock  *decimal.Decimal
	MinStockAlert *decimal.Decimal
}

// Apply merges the patch into p.
func (patch ProductPatch) Apply(p *Product) {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Type != nil {
		p.Type = *patch.Type
	}
	if patch.PurchasePrice != nil {
		p.PurchasePrice = *patch.PurchasePrice
	}
	if patch.SellingPrice != nil {
		p.SellingPrice = *patch.SellingPrice
	}
	if patch.CurrentStock != nil {
		p.CurrentStock = *patch.CurrentStock
	}
	if patch.MinStockAlert != nil {
		p.MinStockAlert = *patch.MinStockAlert
	}
}

// =============================================================================
// SERVICE - Immutable record of a completed oil change
// =============================================================================

// ServiceItem snapshots product identity and prices at the time of sale.
// ProductID is a lookup key, not an ownership edge: deleting the product
// later does not touch existing services.
type ServiceItem struct {
	ProductID     string          `json:"productId"`
	ProductName   string          `json:"productName"`
	Quantity      decimal.Decimal `json:"quantity"`
	PurchasePrice decimal.Decimal `json:"purchasePrice"`
	SellingPrice  decimal.Decimal `json:"sellingPrice"`
}

// Service is the sales ledger's unit of record. TotalPrice is tax-inclusive.
// TaxRate records the settings tax rate in effect at settlement time;
// records imported from older backups may carry a zero rate, in which case
// receipt reconstruction falls back to the current rate (see reporting.go).
type Service struct {
	ID             string          `json:"id"`
	CarPlateNumber string          `json:"carPlateNumber"`
	OilBrand       string          `json:"oilBrand"`
	OilLiters      decimal.Decimal `json:"oilLiters"`
	FilterType     string          `json:"filterType"`
	LaborCost      decimal.Decimal `json:"laborCost"`
	TotalPrice     decimal.Decimal `json:"totalPrice"`
	TaxRate        decimal.Decimal `json:"taxRate"`
	ItemsUsed      []ServiceItem   `json:"itemsUsed"`
	CreatedAt      time.Time       `json:"createdAt"`
}

// ItemsRevenue is the pre-tax revenue of the item snapshots
// (selling price * quantity, summed).
func (s Service) ItemsRevenue() decimal.Decimal {
	total := decimal.Zero
	for _, item := range s.ItemsUsed {
		total = total.Add(item.SellingPrice.Mul(item.Quantity))
	}
	return total
}

// ItemsCost is the purchase cost of the item snapshots.
func (s Service) ItemsCost() decimal.Decimal {
	total := decimal.Zero
	for _, item := range s.ItemsUsed {
		total = total.Add(item.PurchasePrice.Mul(item.Quantity))
	}
	return total
}

// =============================================================================
// SETTINGS - Singleton configuration
// =============================================================================

// Settings holds the company profile and the tax rate (a percentage, e.g. 15).
type Settings struct {
	CompanyName    string          `json:"companyName"`
	CompanyAddress string          `json:"companyAddress"`
	CompanyPhone   string          `json:"companyPhone"`
	TaxRate        decimal.Decimal `json:"taxRate"`
}

// DefaultSettings are seeded on first run and restored by Reset.
func DefaultSettings() Settings {
	return Settings{
		CompanyName:    "Oil Change Workshop",
		CompanyAddress: "",
		CompanyPhone:   "",
		TaxRate:        decimal.NewFromInt(15),
	}
}

// SettingsPatch is a partial settings update. Nil fields are left unchanged.
type SettingsPatch struct {
	CompanyName    *string
	CompanyAddress *string
	CompanyPhone   *string
	TaxRate        *decimal.Decimal
}

// Apply merges the patch into s.
func (patch SettingsPatch) Apply(s *Settings) {
	if patch.CompanyName != nil {
		s.CompanyName = *patch.CompanyName
	}
	if patch.CompanyAddress != nil {
		s.CompanyAddress = *patch.CompanyAddress
	}
	if patch.CompanyPhone != nil {
		s.CompanyPhone = *patch.CompanyPhone
	}
	if patch.TaxRate != nil {
		s.TaxRate = *patch.TaxRate
	}
}

// =============================================================================
// DASHBOARD - Derived stats for the landing view
// =============================================================================

type DashboardStats struct {
	TodaySales    decimal.Decimal `json:"todaySales"`
	CarsServed    int             `json:"carsServed"`
	LowStockCount int             `json:"lowStockCount"`
}

// =============================================================================
// DECIMAL HELPERS
// =============================================================================

// MustParseDecimal parses s, returning zero on malformed input.
func MustParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

var hundred = decimal.NewFromInt(100)

// TaxOn computes the tax amount on a pre-tax subtotal at the given
// percentage rate.
func TaxOn(subtotal, rate decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(rate).Div(hundred)
}

package pos_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/workshop-pos/pos"
	"github.com/warp/workshop-pos/pos/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type fixture struct {
	store     *store.Memory
	inventory *pos.Inventory
	sales     *pos.SalesLedger
	settings  *pos.SettingsRegistry
	engine    *pos.Engine
}

func newFixture(t *testing.T) *fixture {
	ctx := context.Background()
	mem := store.NewMemory()

	inventory, err := pos.NewInventory(ctx, mem)
	require.NoError(t, err)
	sales, err := pos.NewSalesLedger(ctx, mem)
	require.NoError(t, err)
	settings := pos.NewSettingsRegistry(mem)

	return &fixture{
		store:     mem,
		inventory: inventory,
		sales:     sales,
		settings:  settings,
		engine:    pos.NewEngine(inventory, sales, settings),
	}
}

func (f *fixture) addProduct(t *testing.T, name string, pt pos.ProductType, purchase, selling, stock string) pos.Product {
	p, err := f.inventory.Add(context.Background(), pos.ProductDraft{
		Name:          name,
		Type:          pt,
		PurchasePrice: dec(purchase),
		SellingPrice:  dec(selling),
		CurrentStock:  dec(stock),
		MinStockAlert: dec("5"),
	})
	require.NoError(t, err)
	return p
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.True(t, got.Equal(dec(want)), "expected %s, got %s: %v", want, got, msgAndArgs)
}

// =============================================================================
// SETTLEMENT MATH
// =============================================================================

func TestSettle_TaxInclusiveTotal(t *testing.T) {
	// GIVEN: Oil at 65/L, filter at 25, labor 30, tax rate 15%
	// WHEN: Settling 4 liters
	// THEN: subtotal 315, tax 47.25, total 362.25

	f := newFixture(t)
	ctx := context.Background()

	oil := f.addProduct(t, "Mobil 1 Engine Oil", pos.TypeOil, "45", "65", "50")
	filter := f.addProduct(t, "Oil Filter", pos.TypeFilter, "15", "25", "30")

	service, err := f.engine.Settle(ctx, pos.ServiceRequest{
		CarPlateNumber:  "ABC-123",
		OilProductID:    oil.ID,
		OilLiters:       dec("4"),
		FilterProductID: filter.ID,
		LaborCost:       dec("30"),
	})
	require.NoError(t, err)

	assertDecimal(t, "362.25", service.TotalPrice)
	assertDecimal(t, "15", service.TaxRate)
	assert.Equal(t, "ABC-123", service.CarPlateNumber)
	assert.Equal(t, "Mobil 1 Engine Oil", service.OilBrand)
	assert.Equal(t, "Oil Filter", service.FilterType)
	assert.NotEmpty(t, service.ID)
	assert.False(t, service.CreatedAt.IsZero())
}

func TestSettle_SnapshotsItemPrices(t *testing.T) {
	// GIVEN: A settled service
	// WHEN: The oil product is renamed and repriced afterwards
	// THEN: The stored record keeps the prices from settlement time

	f := newFixture(t)
	ctx := context.Background()

	oil := f.addProduct(t, "Castrol Engine Oil", pos.TypeOil, "40", "58", "40")
	filter := f.addProduct(t, "Air Filter", pos.TypeFilter, "12", "20", "25")

	service, err := f.engine.Settle(ctx, pos.ServiceRequest{
		CarPlateNumber:  "XYZ-9",
		OilProductID:    oil.ID,
		OilLiters:       dec("3.5"),
		FilterProductID: filter.ID,
		LaborCost:       dec("0"),
	})
	require.NoError(t, err)
	require.Len(t, service.ItemsUsed, 2)

	newName := "Castrol GTX"
	newPrice := dec("99")
	require.NoError(t, f.inventory.Update(ctx, oil.ID, pos.ProductPatch{
		Name:         &newName,
		SellingPrice: &newPrice,
	}))

	stored, err := f.sales.GetByID(service.ID)
	require.NoError(t, err)
	assert.Equal(t, "Castrol Engine Oil", stored.ItemsUsed[0].ProductName)
	assertDecimal(t, "58", stored.ItemsUsed[0].SellingPrice)
	assertDecimal(t, "3.5", stored.ItemsUsed[0].Quantity)
	assertDecimal(t, "1", stored.ItemsUsed[1].Quantity)
}

func TestSettle_DecrementsStock(t *testing.T) {
	// GIVEN: Oil with 10L in stock, filter with 3 units
	// WHEN: Settling 4 liters
	// THEN: Oil drops to 6, filter to 2

	f := newFixture(t)
	ctx := context.Background()

	oil := f.addProduct(t, "Shell Engine Oil", pos.TypeOil, "35", "50", "10")
	filter := f.addProduct(t, "Fuel Filter", pos.TypeFilter, "18", "28", "3")

	_, err := f.engine.Settle(ctx, pos.ServiceRequest{
		CarPlateNumber:  "AA-1",
		OilProductID:    oil.ID,
		OilLiters:       dec("4"),
		FilterProductID: filter.ID,
		LaborCost:       dec("10"),
	})
	require.NoError(t, err)

	oilAfter, err := f.inventory.GetByID(ctx, oil.ID)
	require.NoError(t, err)
	assertDecimal(t, "6", oilAfter.CurrentStock)

	filterAfter, err := f.inventory.GetByID(ctx, filter.ID)
	require.NoError(t, err)
	assertDecimal(t, "2", filterAfter.CurrentStock)
}

func TestSettle_FractionalLiters(t *testing.T) {
	// GIVEN: Oil at 50/L with 5L in stock
	// WHEN: Settling 4.5 liters at 0% tax
	// THEN: Total is exactly 225 plus the filter line, stock drops to 0.5

	f := newFixture(t)
	ctx := context.Background()

	zero := decimal.Zero
	_, err := f.settings.Update(ctx, pos.SettingsPatch{TaxRate: &zero})
	require.NoError(t, err)

	oil := f.addProduct(t, "Shell Engine Oil", pos.TypeOil, "35", "50", "5")
	filter := f.addProduct(t, "Oil Filter", pos.TypeFilter, "15", "25", "10")

	service, err := f.engine.Settle(ctx, pos.ServiceRequest{
		CarPlateNumber:  "BB-2",
		OilProductID:    oil.ID,
		OilLiters:       dec("4.5"),
		FilterProductID: filter.ID,
		LaborCost:       dec("0"),
	})
	require.NoError(t, err)
	assertDecimal(t, "250", service.TotalPrice)

	oilAfter, err := f.inventory.GetByID(ctx, oil.ID)
	require.NoError(t, err)
	assertDecimal(t, "0.5", oilAfter.CurrentStock)
}

// =============================================================================
// STOCK SUFFICIENCY
// =============================================================================

func TestSettle_InsufficientOil_NothingMutated(t *testing.T) {
	// GIVEN: Oil with only 2L in stock
	// WHEN: Requesting 4L
	// THEN: Rejected with the product named, and NEITHER stock changes

	f := newFixture(t)
	ctx := context.Background()

	oil := f.addProduct(t, "Mobil 1 Engine Oil", pos.TypeOil, "45", "65", "2")
	filter := f.addProduct(t, "Oil Filter", pos.TypeFilter, "15", "25", "30")

	_, err := f.engine.Settle(ctx, pos.ServiceRequest{
		CarPlateNumber:  "CC-3",
		OilProductID:    oil.ID,
		OilLiters:       dec("4"),
		FilterProductID: filter.ID,
		LaborCost:       dec("30"),
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, pos.ErrInsufficientStock)

	var stockErr *pos.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, oil.ID, stockErr.ProductID)
	assertDecimal(t, "2", stockErr.Available)
	assertDecimal(t, "4", stockErr.Requested)

	oilAfter, err := f.inventory.GetByID(ctx, oil.ID)
	require.NoError(t, err)
	assertDecimal(t, "2", oilAfter.CurrentStock)

	filterAfter, err := f.inventory.GetByID(ctx, filter.ID)
	require.NoError(t, err)
	assertDecimal(t, "30", filterAfter.CurrentStock)

	assert.Empty(t, f.sales.List(), "no sale should be recorded")
}

func TestSettle_InsufficientFilter_OilNotDecremented(t *testing.T) {
	// GIVEN: Enough oil but zero filters
	// WHEN: Settling
	// THEN: Rejected, and the oil stock is untouched

	f := newFixture(t)
	ctx := context.Background()

	oil := f.addProduct(t, "Castrol Engine Oil", pos.TypeOil, "40", "58", "40")
	filter := f.addProduct(t, "Air Filter", pos.TypeFilter, "12", "20", "0")

	_, err := f.engine.Settle(ctx, pos.ServiceRequest{
		CarPlateNumber:  "DD-4",
		OilProductID:    oil.ID,
		OilLiters:       dec("4"),
		FilterProductID: filter.ID,
		LaborCost:       dec("30"),
	})

	require.Error(t, err)
	var stockErr *pos.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, filter.ID, stockErr.ProductID)

	oilAfter, err := f.inventory.GetByID(ctx, oil.ID)
	require.NoError(t, err)
	assertDecimal(t, "40", oilAfter.CurrentStock)
}

func TestSettle_ExactStock_Allowed(t *testing.T) {
	// GIVEN: Oil stock exactly equal to the requested liters
	// WHEN: Settling
	// THEN: Accepted, stock ends at zero

	f := newFixture(t)
	ctx := context.Background()

	oil := f.addProduct(t, "Shell Engine Oil", pos.TypeOil, "35", "50", "4")
	filter := f.addProduct(t, "Oil Filter", pos.TypeFilter, "15", "25", "1")

	_, err := f.engine.Settle(ctx, pos.ServiceRequest{
		CarPlateNumber:  "EE-5",
		OilProductID:    oil.ID,
		OilLiters:       dec("4"),
		FilterProductID: filter.ID,
		LaborCost:       dec("0"),
	})
	require.NoError(t, err)

	oilAfter, err := f.inventory.GetByID(ctx, oil.ID)
	require.NoError(t, err)
	assert.True(t, oilAfter.CurrentStock.IsZero())

	filterAfter, err := f.inventory.GetByID(ctx, filter.ID)
	require.NoError(t, err)
	assert.True(t, filterAfter.CurrentStock.IsZero())
}

// =============================================================================
// VALIDATION AND LOOKUP FAILURES
// =============================================================================

func TestSettle_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	oil := f.addProduct(t, "Mobil 1 Engine Oil", pos.TypeOil, "45", "65", "50")
	filter := f.addProduct(t, "Oil Filter", pos.TypeFilter, "15", "25", "30")

	base := pos.ServiceRequest{
		CarPlateNumber:  "FF-6",
		OilProductID:    oil.ID,
		OilLiters:       dec("4"),
		FilterProductID: filter.ID,
		LaborCost:       dec("30"),
	}

	cases := []struct {
		name   string
		mutate func(*pos.ServiceRequest)
	}{
		{"empty plate", func(r *pos.ServiceRequest) { r.CarPlateNumber = "" }},
		{"empty oil id", func(r *pos.ServiceRequest) { r.OilProductID = "" }},
		{"zero liters", func(r *pos.ServiceRequest) { r.OilLiters = decimal.Zero }},
		{"negative liters", func(r *pos.ServiceRequest) { r.OilLiters = dec("-1") }},
		{"empty filter id", func(r *pos.ServiceRequest) { r.FilterProductID = "" }},
		{"negative labor", func(r *pos.ServiceRequest) { r.LaborCost = dec("-5") }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := base
			tc.mutate(&req)
			_, err := f.engine.Settle(ctx, req)
			assert.ErrorIs(t, err, pos.ErrInvalidRequest)
		})
	}
}

func TestSettle_WrongProductTypes(t *testing.T) {
	// GIVEN: Products whose types do not match their slots
	// WHEN: Settling
	// THEN: Rejected as invalid, with no stock mutated

	f := newFixture(t)
	ctx := context.Background()

	oil := f.addProduct(t, "Mobil 1 Engine Oil", pos.TypeOil, "45", "65", "50")
	filter := f.addProduct(t, "Oil Filter", pos.TypeFilter, "15", "25", "30")
	additive := f.addProduct(t, "Leak Sealant", pos.TypeAdditive, "20", "35", "15")

	cases := []struct {
		name     string
		oilID    string
		filterID string
	}{
		{"additive in oil slot", additive.ID, filter.ID},
		{"additive in filter slot", oil.ID, additive.ID},
		{"filter in oil slot", filter.ID, filter.ID},
		{"same oil product both slots", oil.ID, oil.ID},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.engine.Settle(ctx, pos.ServiceRequest{
				CarPlateNumber:  "TYP-1",
				OilProductID:    tc.oilID,
				FilterProductID: tc.filterID,
				OilLiters:       dec("4"),
				LaborCost:       dec("0"),
			})
			assert.ErrorIs(t, err, pos.ErrInvalidRequest)
		})
	}

	oilAfter, err := f.inventory.GetByID(ctx, oil.ID)
	require.NoError(t, err)
	assertDecimal(t, "50", oilAfter.CurrentStock)

	filterAfter, err := f.inventory.GetByID(ctx, filter.ID)
	require.NoError(t, err)
	assertDecimal(t, "30", filterAfter.CurrentStock)

	assert.Empty(t, f.sales.List())
}

func TestSettle_UnknownProduct(t *testing.T) {
	// GIVEN: A request naming a product id that does not exist
	// WHEN: Settling
	// THEN: ErrProductNotFound, nothing recorded

	f := newFixture(t)
	ctx := context.Background()

	filter := f.addProduct(t, "Oil Filter", pos.TypeFilter, "15", "25", "30")

	_, err := f.engine.Settle(ctx, pos.ServiceRequest{
		CarPlateNumber:  "GG-7",
		OilProductID:    "no-such-id",
		OilLiters:       dec("4"),
		FilterProductID: filter.ID,
		LaborCost:       dec("0"),
	})

	assert.True(t, errors.Is(err, pos.ErrProductNotFound))
	assert.Empty(t, f.sales.List())
}

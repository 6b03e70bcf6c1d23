package pos_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/workshop-pos/pos"
	"github.com/warp/workshop-pos/pos/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

// newPinnedLedger returns a ledger whose clock is frozen at the given time.
func newPinnedLedger(t *testing.T, now time.Time) *pos.SalesLedger {
	ledger, err := pos.NewSalesLedger(context.Background(), store.NewMemory())
	require.NoError(t, err)
	ledger.Now = func() time.Time { return now }
	return ledger
}

func appendAt(t *testing.T, l *pos.SalesLedger, at time.Time, total string) pos.Service {
	t.Helper()
	saved := l.Now
	l.Now = func() time.Time { return at }
	defer func() { l.Now = saved }()

	s, err := l.Append(context.Background(), pos.Service{
		CarPlateNumber: "PLT-1",
		TotalPrice:     dec(total),
	})
	require.NoError(t, err)
	return s
}

// =============================================================================
// DATE RANGE QUERIES
// =============================================================================

func TestByDateRange_InclusiveEndpoints(t *testing.T) {
	// GIVEN: Records at 00:00 on the start date, 23:59 on the end date,
	//        and 00:00 the day after the end date
	// WHEN: Querying the range
	// THEN: The first two are in, the day-after record is out

	now := time.Date(2025, time.June, 20, 12, 0, 0, 0, time.Local)
	ledger := newPinnedLedger(t, now)

	start := time.Date(2025, time.June, 10, 0, 0, 0, 0, time.Local)
	lastMinute := time.Date(2025, time.June, 15, 23, 59, 0, 0, time.Local)
	dayAfter := time.Date(2025, time.June, 16, 0, 0, 0, 0, time.Local)

	atStart := appendAt(t, ledger, start, "100")
	atEnd := appendAt(t, ledger, lastMinute, "200")
	appendAt(t, ledger, dayAfter, "300")

	got := ledger.ByDateRange(
		time.Date(2025, time.June, 10, 0, 0, 0, 0, time.Local),
		time.Date(2025, time.June, 15, 0, 0, 0, 0, time.Local),
	)

	require.Len(t, got, 2)
	assert.Equal(t, atStart.ID, got[0].ID)
	assert.Equal(t, atEnd.ID, got[1].ID)
}

func TestByDateRange_NormalizesTimeOfDay(t *testing.T) {
	// GIVEN: Range endpoints carrying arbitrary times of day
	// WHEN: Querying
	// THEN: Filtering happens at day granularity regardless

	now := time.Date(2025, time.June, 20, 12, 0, 0, 0, time.Local)
	ledger := newPinnedLedger(t, now)

	morning := time.Date(2025, time.June, 12, 8, 0, 0, 0, time.Local)
	record := appendAt(t, ledger, morning, "50")

	got := ledger.ByDateRange(
		time.Date(2025, time.June, 12, 18, 30, 0, 0, time.Local),
		time.Date(2025, time.June, 12, 18, 30, 0, 0, time.Local),
	)

	require.Len(t, got, 1)
	assert.Equal(t, record.ID, got[0].ID)
}

// =============================================================================
// TODAY AND MONTHLY AGGREGATES
// =============================================================================

func TestToday_ExcludesYesterday(t *testing.T) {
	// GIVEN: A record late yesterday and one early today
	// WHEN: Querying today
	// THEN: Only today's record is returned

	now := time.Date(2025, time.June, 20, 14, 0, 0, 0, time.Local)
	ledger := newPinnedLedger(t, now)

	appendAt(t, ledger, time.Date(2025, time.June, 19, 23, 59, 59, 0, time.Local), "100")
	today := appendAt(t, ledger, time.Date(2025, time.June, 20, 0, 0, 1, 0, time.Local), "200")

	got := ledger.Today()
	require.Len(t, got, 1)
	assert.Equal(t, today.ID, got[0].ID)
	assertDecimal(t, "200", ledger.TodayTotal())
	assert.Equal(t, 1, ledger.CarsServedToday())
}

func TestMonthlyTotal_FromFirstOfMonth(t *testing.T) {
	// GIVEN: A record on the last day of May and two in June
	// WHEN: Computing the June monthly total
	// THEN: Only June records are summed

	now := time.Date(2025, time.June, 20, 14, 0, 0, 0, time.Local)
	ledger := newPinnedLedger(t, now)

	appendAt(t, ledger, time.Date(2025, time.May, 31, 23, 0, 0, 0, time.Local), "999")
	appendAt(t, ledger, time.Date(2025, time.June, 1, 0, 0, 0, 0, time.Local), "100.50")
	appendAt(t, ledger, time.Date(2025, time.June, 15, 9, 0, 0, 0, time.Local), "49.50")

	assertDecimal(t, "150", ledger.MonthlyTotal())
}

// =============================================================================
// LEDGER SEMANTICS
// =============================================================================

func TestAppend_AssignsIdentityAndPersists(t *testing.T) {
	// GIVEN: A fresh ledger
	// WHEN: Appending a record
	// THEN: It gets an id and timestamp, and survives a reload from the store

	mem := store.NewMemory()
	ctx := context.Background()

	ledger, err := pos.NewSalesLedger(ctx, mem)
	require.NoError(t, err)

	s, err := ledger.Append(ctx, pos.Service{CarPlateNumber: "HH-8", TotalPrice: dec("10")})
	require.NoError(t, err)
	assert.NotEmpty(t, s.ID)
	assert.False(t, s.CreatedAt.IsZero())

	reloaded, err := pos.NewSalesLedger(ctx, mem)
	require.NoError(t, err)

	got, err := reloaded.GetByID(s.ID)
	require.NoError(t, err)
	assert.Equal(t, "HH-8", got.CarPlateNumber)
}

func TestGetByID_Unknown(t *testing.T) {
	ledger := newPinnedLedger(t, time.Now())
	_, err := ledger.GetByID("missing")
	assert.ErrorIs(t, err, pos.ErrServiceNotFound)
}

func TestList_ReturnsCopies(t *testing.T) {
	// GIVEN: A ledger with one record
	// WHEN: Mutating the returned slice element
	// THEN: The ledger's own copy is unchanged

	now := time.Date(2025, time.June, 20, 14, 0, 0, 0, time.Local)
	ledger := newPinnedLedger(t, now)
	record := appendAt(t, ledger, now, "75")

	list := ledger.List()
	require.Len(t, list, 1)
	list[0].CarPlateNumber = "TAMPERED"

	got, err := ledger.GetByID(record.ID)
	require.NoError(t, err)
	assert.Equal(t, "PLT-1", got.CarPlateNumber)
}

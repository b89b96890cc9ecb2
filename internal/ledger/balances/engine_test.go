package balances

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/openledger/openledger/internal/ledger/accounts"
	"github.com/openledger/openledger/internal/ledger/entries"
	"github.com/openledger/openledger/internal/ledger/periods"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptr(v int64) *int64 { return &v }

// chart builds the five-level branch plus a sibling leaf:
//
//	1 > 1.1 > 1.1.1 > 1.1.1.01 > {1.1.1.01.0001, 1.1.1.01.0002}
func chart(tenantID int64) []accounts.Account {
	return []accounts.Account{
		{ID: 1, TenantID: tenantID, Code: "1", Name: "Assets", Nature: accounts.NatureDebit, Kind: accounts.KindSynthetic},
		{ID: 2, TenantID: tenantID, Code: "1.1", Name: "Current", Nature: accounts.NatureDebit, Kind: accounts.KindSynthetic, ParentID: ptr(1)},
		{ID: 3, TenantID: tenantID, Code: "1.1.1", Name: "Cash", Nature: accounts.NatureDebit, Kind: accounts.KindSynthetic, ParentID: ptr(2)},
		{ID: 4, TenantID: tenantID, Code: "1.1.1.01", Name: "Banks", Nature: accounts.NatureDebit, Kind: accounts.KindSynthetic, ParentID: ptr(3)},
		{ID: 5, TenantID: tenantID, Code: "1.1.1.01.0001", Name: "Checking", Nature: accounts.NatureDebit, Kind: accounts.KindAnalytical, ParentID: ptr(4)},
		{ID: 6, TenantID: tenantID, Code: "1.1.1.01.0002", Name: "Savings", Nature: accounts.NatureDebit, Kind: accounts.KindAnalytical, ParentID: ptr(4)},
	}
}

type fakeAccounts struct {
	list []accounts.Account
}

func (f *fakeAccounts) List(ctx context.Context, tenantID int64) ([]accounts.Account, error) {
	return f.list, nil
}

type fakeItems struct {
	details []entries.ItemDetail
}

func (f *fakeItems) ItemsInRange(ctx context.Context, tenantID int64, start, end time.Time) ([]entries.ItemDetail, error) {
	var out []entries.ItemDetail
	for _, d := range f.details {
		if d.EntryDate.Before(start) || d.EntryDate.After(end) {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

type fakePeriods struct {
	previous map[int64]*periods.Period
}

func (f *fakePeriods) Previous(ctx context.Context, p periods.Period) (*periods.Period, error) {
	return f.previous[p.ID], nil
}

type memBalanceStore struct {
	rows     map[string][]PeriodicBalance
	replaces int
}

func newMemBalanceStore() *memBalanceStore {
	return &memBalanceStore{rows: make(map[string][]PeriodicBalance)}
}

func storeKey(tenantID, periodID int64) string {
	return fmt.Sprintf("%d/%d", tenantID, periodID)
}

func (s *memBalanceStore) Replace(ctx context.Context, tenantID, periodID int64, rows []PeriodicBalance) error {
	s.replaces++
	s.rows[storeKey(tenantID, periodID)] = append([]PeriodicBalance(nil), rows...)
	return nil
}

func (s *memBalanceStore) ListByPeriod(ctx context.Context, tenantID, periodID int64) ([]PeriodicBalance, error) {
	return s.rows[storeKey(tenantID, periodID)], nil
}

func (s *memBalanceStore) byAccount(t *testing.T, tenantID, periodID int64) map[int64]PeriodicBalance {
	t.Helper()
	rows := s.rows[storeKey(tenantID, periodID)]
	out := make(map[int64]PeriodicBalance, len(rows))
	for _, row := range rows {
		out[row.AccountID] = row
	}
	return out
}

func debitItem(accountID int64, amount string, day time.Time, memo string) entries.ItemDetail {
	return entries.ItemDetail{
		Item:        entries.Item{AccountID: accountID, Debit: dec(amount), Credit: decimal.Zero},
		EntryDate:   day,
		EntryMemo:   memo,
		EntryStatus: entries.StatusApproved,
	}
}

func creditItem(accountID int64, amount string, day time.Time, memo string) entries.ItemDetail {
	return entries.ItemDetail{
		Item:        entries.Item{AccountID: accountID, Credit: dec(amount), Debit: decimal.Zero},
		EntryDate:   day,
		EntryMemo:   memo,
		EntryStatus: entries.StatusApproved,
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const tenantID = int64(7)

func january() periods.Period {
	return periods.Period{ID: 101, TenantID: tenantID, StartDate: date(2024, time.January, 1), EndDate: date(2024, time.January, 31), Status: periods.StatusOpen}
}

func february() periods.Period {
	return periods.Period{ID: 102, TenantID: tenantID, StartDate: date(2024, time.February, 1), EndDate: date(2024, time.February, 29), Status: periods.StatusOpen}
}

func TestCalculateForSingleDebitRollsUpAncestors(t *testing.T) {
	store := newMemBalanceStore()
	calc := NewCalculator(
		&fakeAccounts{list: chart(tenantID)},
		&fakeItems{details: []entries.ItemDetail{
			debitItem(5, "100.00", date(2024, time.January, 15), "Rent"),
		}},
		&fakePeriods{previous: map[int64]*periods.Period{}},
		store,
		testLogger(),
	)

	require.NoError(t, calc.CalculateFor(context.Background(), tenantID, january(), Options{}))

	rows := store.byAccount(t, tenantID, 101)
	require.Len(t, rows, 6)

	leaf := rows[5]
	require.True(t, leaf.Initial.IsZero())
	require.True(t, leaf.Debit.Equal(dec("100.00")), "leaf debit = %s", leaf.Debit)
	require.True(t, leaf.Credit.IsZero())
	require.True(t, leaf.Final.Equal(dec("-100.00")), "leaf final = %s", leaf.Final)

	for _, ancestorID := range []int64{1, 2, 3, 4} {
		row := rows[ancestorID]
		require.True(t, row.Debit.Equal(dec("100.00")), "ancestor %d debit = %s", ancestorID, row.Debit)
		require.True(t, row.Final.Equal(dec("-100.00")), "ancestor %d final = %s", ancestorID, row.Final)
	}

	// untouched sibling stays all-zero
	sibling := rows[6]
	require.True(t, sibling.Debit.IsZero())
	require.True(t, sibling.Credit.IsZero())
	require.True(t, sibling.Final.IsZero())
}

func TestCalculateForFinalInvariant(t *testing.T) {
	store := newMemBalanceStore()
	calc := NewCalculator(
		&fakeAccounts{list: chart(tenantID)},
		&fakeItems{details: []entries.ItemDetail{
			debitItem(5, "33.10", date(2024, time.January, 3), "a"),
			creditItem(5, "70.25", date(2024, time.January, 9), "b"),
			debitItem(6, "12.40", date(2024, time.January, 20), "c"),
		}},
		&fakePeriods{previous: map[int64]*periods.Period{}},
		store,
		testLogger(),
	)

	require.NoError(t, calc.CalculateFor(context.Background(), tenantID, january(), Options{}))

	for _, row := range store.rows[storeKey(tenantID, 101)] {
		want := row.Initial.Add(row.Credit).Sub(row.Debit)
		require.True(t, row.Final.Equal(want), "account %d: final %s, want %s", row.AccountID, row.Final, want)
	}
}

func TestCalculateForSiblingLeavesSumAtAncestors(t *testing.T) {
	store := newMemBalanceStore()
	calc := NewCalculator(
		&fakeAccounts{list: chart(tenantID)},
		&fakeItems{details: []entries.ItemDetail{
			debitItem(5, "100.00", date(2024, time.January, 10), "x"),
			debitItem(6, "50.00", date(2024, time.January, 11), "y"),
			creditItem(6, "25.00", date(2024, time.January, 12), "z"),
		}},
		&fakePeriods{previous: map[int64]*periods.Period{}},
		store,
		testLogger(),
	)

	require.NoError(t, calc.CalculateFor(context.Background(), tenantID, january(), Options{}))

	rows := store.byAccount(t, tenantID, 101)
	parent := rows[4]
	require.True(t, parent.Debit.Equal(dec("150.00")))
	require.True(t, parent.Credit.Equal(dec("25.00")))
	require.True(t, parent.Final.Equal(dec("-125.00")))

	root := rows[1]
	require.True(t, root.Debit.Equal(dec("150.00")))
	require.True(t, root.Credit.Equal(dec("25.00")))
	require.True(t, root.Final.Equal(dec("-125.00")))
}

func TestCalculateForIsIdempotent(t *testing.T) {
	store := newMemBalanceStore()
	calc := NewCalculator(
		&fakeAccounts{list: chart(tenantID)},
		&fakeItems{details: []entries.ItemDetail{
			debitItem(5, "10.00", date(2024, time.January, 5), "a"),
			creditItem(6, "4.00", date(2024, time.January, 6), "b"),
		}},
		&fakePeriods{previous: map[int64]*periods.Period{}},
		store,
		testLogger(),
	)
	ctx := context.Background()

	require.NoError(t, calc.CalculateFor(ctx, tenantID, january(), Options{}))
	first := store.byAccount(t, tenantID, 101)

	require.NoError(t, calc.CalculateFor(ctx, tenantID, january(), Options{}))
	second := store.byAccount(t, tenantID, 101)

	require.Equal(t, 2, store.replaces)
	require.Len(t, second, len(first))
	for id, before := range first {
		after := second[id]
		require.True(t, after.Initial.Equal(before.Initial), "account %d initial", id)
		require.True(t, after.Debit.Equal(before.Debit), "account %d debit", id)
		require.True(t, after.Credit.Equal(before.Credit), "account %d credit", id)
		require.True(t, after.Final.Equal(before.Final), "account %d final", id)
	}
}

func TestCalculateForChainsInitialFromPreviousPeriod(t *testing.T) {
	store := newMemBalanceStore()
	jan := january()
	feb := february()
	calc := NewCalculator(
		&fakeAccounts{list: chart(tenantID)},
		&fakeItems{details: []entries.ItemDetail{
			debitItem(5, "100.00", date(2024, time.January, 15), "jan"),
			creditItem(5, "40.00", date(2024, time.February, 10), "feb"),
		}},
		&fakePeriods{previous: map[int64]*periods.Period{feb.ID: &jan}},
		store,
		testLogger(),
	)
	ctx := context.Background()

	require.NoError(t, calc.CalculateFor(ctx, tenantID, jan, Options{}))
	require.NoError(t, calc.CalculateFor(ctx, tenantID, feb, Options{}))

	febRows := store.byAccount(t, tenantID, feb.ID)
	leaf := febRows[5]
	require.True(t, leaf.Initial.Equal(dec("-100.00")), "feb initial = %s", leaf.Initial)
	require.True(t, leaf.Credit.Equal(dec("40.00")))
	require.True(t, leaf.Debit.IsZero())
	require.True(t, leaf.Final.Equal(dec("-60.00")), "feb final = %s", leaf.Final)

	root := febRows[1]
	require.True(t, root.Initial.Equal(dec("-100.00")))
	require.True(t, root.Final.Equal(dec("-60.00")))
}

func TestCalculateForWithoutPreviousSnapshotSeedsZero(t *testing.T) {
	store := newMemBalanceStore()
	jan := january()
	feb := february()
	// previous period exists but was never computed
	calc := NewCalculator(
		&fakeAccounts{list: chart(tenantID)},
		&fakeItems{details: []entries.ItemDetail{
			creditItem(5, "40.00", date(2024, time.February, 10), "feb"),
		}},
		&fakePeriods{previous: map[int64]*periods.Period{feb.ID: &jan}},
		store,
		testLogger(),
	)

	require.NoError(t, calc.CalculateFor(context.Background(), tenantID, feb, Options{}))

	leaf := store.byAccount(t, tenantID, feb.ID)[5]
	require.True(t, leaf.Initial.IsZero())
	require.True(t, leaf.Final.Equal(dec("40.00")))
}

func TestCalculateForWindowBoundsInclusive(t *testing.T) {
	store := newMemBalanceStore()
	calc := NewCalculator(
		&fakeAccounts{list: chart(tenantID)},
		&fakeItems{details: []entries.ItemDetail{
			debitItem(5, "1.00", date(2024, time.January, 1), "first day"),
			debitItem(5, "2.00", date(2024, time.January, 31), "last day"),
			debitItem(5, "4.00", date(2024, time.February, 1), "next period"),
			debitItem(5, "8.00", date(2023, time.December, 31), "previous period"),
		}},
		&fakePeriods{previous: map[int64]*periods.Period{}},
		store,
		testLogger(),
	)

	require.NoError(t, calc.CalculateFor(context.Background(), tenantID, january(), Options{}))

	leaf := store.byAccount(t, tenantID, 101)[5]
	require.True(t, leaf.Debit.Equal(dec("3.00")), "leaf debit = %s", leaf.Debit)
}

func TestCalculateForExcludesByMemo(t *testing.T) {
	store := newMemBalanceStore()
	calc := NewCalculator(
		&fakeAccounts{list: chart(tenantID)},
		&fakeItems{details: []entries.ItemDetail{
			debitItem(5, "100.00", date(2024, time.January, 10), "Rent"),
			debitItem(5, "999.00", date(2024, time.January, 11), "Year-end adjustment"),
		}},
		&fakePeriods{previous: map[int64]*periods.Period{}},
		store,
		testLogger(),
	)

	opts := Options{Exclude: ExcludeMemos([]string{"Year-end adjustment"})}
	require.NoError(t, calc.CalculateFor(context.Background(), tenantID, january(), opts))

	leaf := store.byAccount(t, tenantID, 101)[5]
	require.True(t, leaf.Debit.Equal(dec("100.00")), "leaf debit = %s", leaf.Debit)
}

func TestExcludeMemosEmptyListIsNil(t *testing.T) {
	require.Nil(t, ExcludeMemos(nil))
	require.Nil(t, ExcludeMemos([]string{}))
}

func TestCalculateForUnknownAccountFails(t *testing.T) {
	store := newMemBalanceStore()
	calc := NewCalculator(
		&fakeAccounts{list: chart(tenantID)},
		&fakeItems{details: []entries.ItemDetail{
			debitItem(999, "1.00", date(2024, time.January, 2), "stray"),
		}},
		&fakePeriods{previous: map[int64]*periods.Period{}},
		store,
		testLogger(),
	)

	err := calc.CalculateFor(context.Background(), tenantID, january(), Options{})
	require.Error(t, err)
	require.Zero(t, store.replaces)
}

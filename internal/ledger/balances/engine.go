package balances

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/openledger/openledger/internal/ledger/accounts"
	"github.com/openledger/openledger/internal/ledger/entries"
	"github.com/openledger/openledger/internal/ledger/periods"
)

// AccountSource lists the tenant's chart of accounts.
type AccountSource interface {
	List(ctx context.Context, tenantID int64) ([]accounts.Account, error)
}

// ItemSource selects entry lines dated inside a window, bounds inclusive.
type ItemSource interface {
	ItemsInRange(ctx context.Context, tenantID int64, start, end time.Time) ([]entries.ItemDetail, error)
}

// PeriodSource resolves the chronologically previous period, nil when none.
type PeriodSource interface {
	Previous(ctx context.Context, p periods.Period) (*periods.Period, error)
}

// BalanceStore persists snapshots. Replace must be atomic: no reader may
// observe the period between delete and re-insert.
type BalanceStore interface {
	Replace(ctx context.Context, tenantID, periodID int64, rows []PeriodicBalance) error
	ListByPeriod(ctx context.Context, tenantID, periodID int64) ([]PeriodicBalance, error)
}

// ExcludeFunc reports whether an entry line should be left out of the
// computation. The adjustment exclusion set is tenant-specific history, so it
// arrives from the caller instead of living here.
type ExcludeFunc func(entries.ItemDetail) bool

// Options tunes a single computation run.
type Options struct {
	Exclude ExcludeFunc
}

// ExcludeMemos builds an ExcludeFunc dropping lines whose entry memo is on the
// supplied list.
func ExcludeMemos(memos []string) ExcludeFunc {
	if len(memos) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(memos))
	for _, memo := range memos {
		set[memo] = struct{}{}
	}
	return func(d entries.ItemDetail) bool {
		_, ok := set[d.EntryMemo]
		return ok
	}
}

// Calculator recomputes a period's balance snapshot from scratch: initial
// balances seeded from the previous period, debit/credit totals aggregated
// from entry lines and rolled up the account tree, finals derived last.
//
// Runs for consecutive periods must happen in chronological order; computing
// a period before its predecessor yields zero initial balances. That ordering
// is the caller's contract, not enforced here.
type Calculator struct {
	accounts AccountSource
	items    ItemSource
	periods  PeriodSource
	store    BalanceStore
	logger   *slog.Logger
}

func NewCalculator(accountSource AccountSource, itemSource ItemSource, periodSource PeriodSource, store BalanceStore, logger *slog.Logger) *Calculator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Calculator{
		accounts: accountSource,
		items:    itemSource,
		periods:  periodSource,
		store:    store,
		logger:   logger,
	}
}

// CalculateFor rebuilds every PeriodicBalance row for the period. The run is
// idempotent and total; it assumes inputs already validated and fails only on
// infrastructure errors, with no partial commit.
func (c *Calculator) CalculateFor(ctx context.Context, tenantID int64, period periods.Period, opts Options) error {
	list, err := c.accounts.List(ctx, tenantID)
	if err != nil {
		return fmt.Errorf("balances: list accounts: %w", err)
	}
	tree := accounts.NewTree(list)

	previousFinal, err := c.previousFinals(ctx, tenantID, period)
	if err != nil {
		return err
	}

	working := make(map[int64]*PeriodicBalance, tree.Len())
	for _, account := range tree.Accounts() {
		working[account.ID] = &PeriodicBalance{
			TenantID:  tenantID,
			AccountID: account.ID,
			PeriodID:  period.ID,
			Initial:   previousFinal[account.ID],
			Debit:     decimal.Zero,
			Credit:    decimal.Zero,
		}
	}

	details, err := c.items.ItemsInRange(ctx, tenantID, period.StartDate, period.EndDate)
	if err != nil {
		return fmt.Errorf("balances: select items: %w", err)
	}

	var applied int
	for _, detail := range details {
		if opts.Exclude != nil && opts.Exclude(detail) {
			continue
		}
		applied++
		account, ok := tree.Get(detail.AccountID)
		if !ok {
			return fmt.Errorf("balances: item %d references unknown account %d", detail.ID, detail.AccountID)
		}
		c.accumulate(working, account.ID, detail)
		for _, ancestor := range tree.Ancestors(account.ID) {
			c.accumulate(working, ancestor.ID, detail)
		}
	}

	rows := make([]PeriodicBalance, 0, tree.Len())
	for _, account := range tree.Accounts() {
		record := working[account.ID]
		record.Final = record.Initial.Add(record.Credit).Sub(record.Debit)
		rows = append(rows, *record)
	}

	if err := c.store.Replace(ctx, tenantID, period.ID, rows); err != nil {
		return fmt.Errorf("balances: replace snapshot: %w", err)
	}

	c.logger.Info("periodic balances recomputed",
		slog.Int64("tenant_id", tenantID),
		slog.Int64("period_id", period.ID),
		slog.Int("accounts", tree.Len()),
		slog.Int("items_applied", applied),
		slog.Int("items_total", len(details)),
	)
	return nil
}

// previousFinals maps account id to the final balance recorded for the
// previous period. A missing predecessor or missing rows mean zero initials,
// which is how the very first period of the books gets computed.
func (c *Calculator) previousFinals(ctx context.Context, tenantID int64, period periods.Period) (map[int64]decimal.Decimal, error) {
	finals := make(map[int64]decimal.Decimal)
	previous, err := c.periods.Previous(ctx, period)
	if err != nil {
		return nil, fmt.Errorf("balances: resolve previous period: %w", err)
	}
	if previous == nil {
		return finals, nil
	}
	rows, err := c.store.ListByPeriod(ctx, tenantID, previous.ID)
	if err != nil {
		return nil, fmt.Errorf("balances: load previous snapshot: %w", err)
	}
	for _, row := range rows {
		finals[row.AccountID] = row.Final
	}
	return finals, nil
}

func (c *Calculator) accumulate(working map[int64]*PeriodicBalance, accountID int64, detail entries.ItemDetail) {
	record := working[accountID]
	record.Debit = record.Debit.Add(detail.Debit)
	record.Credit = record.Credit.Add(detail.Credit)
}

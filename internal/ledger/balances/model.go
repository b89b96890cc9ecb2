package balances

import (
	"time"

	"github.com/shopspring/decimal"
)

// PeriodicBalance is the derived snapshot of one account's position for one
// period. It is never edited in place: the engine deletes and regenerates the
// whole period on every run.
type PeriodicBalance struct {
	ID        int64
	TenantID  int64
	AccountID int64
	PeriodID  int64
	Initial   decimal.Decimal
	Final     decimal.Decimal
	Debit     decimal.Decimal
	Credit    decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

package balances

import (
	"context"
	"fmt"

	"golang.org/x/sync/singleflight"

	"github.com/openledger/openledger/internal/ledger/periods"
)

// Recalculator deduplicates concurrent on-demand recomputations of the same
// (tenant, period) pair within one process. Cross-process exclusion is the
// redis lock's job.
type Recalculator struct {
	calc  *Calculator
	group singleflight.Group
}

func NewRecalculator(calc *Calculator) *Recalculator {
	return &Recalculator{calc: calc}
}

// CalculateFor runs the engine, collapsing concurrent callers for the same
// period onto a single run.
func (r *Recalculator) CalculateFor(ctx context.Context, tenantID int64, period periods.Period, opts Options) error {
	key := fmt.Sprintf("%d:%d", tenantID, period.ID)
	resultChan := r.group.DoChan(key, func() (interface{}, error) {
		return nil, r.calc.CalculateFor(ctx, tenantID, period, opts)
	})
	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-resultChan:
		return res.Err
	}
}

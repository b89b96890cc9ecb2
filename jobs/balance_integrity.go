package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	jobmetrics "github.com/openledger/openledger/internal/jobs"
)

// RunBalanceIntegrityCheck scans periodic balance snapshots for rows where the
// stored final balance disagrees with initial + credit - debit. Violations
// mean a snapshot was written outside the engine and should be recomputed.
func RunBalanceIntegrityCheck(ctx context.Context, pool *pgxpool.Pool, logger *slog.Logger, metrics *jobmetrics.Metrics) error {
	if pool == nil {
		return nil
	}
	rows, err := pool.Query(ctx, `SELECT tenant_id, period_id, COUNT(*)
FROM periodic_balances
WHERE final_balance <> initial_balance + credit_value - debit_value
GROUP BY tenant_id, period_id`)
	if err != nil {
		return fmt.Errorf("jobs: integrity scan: %w", err)
	}
	defer rows.Close()

	var violations int
	for rows.Next() {
		var tenantID, periodID int64
		var count int
		if err := rows.Scan(&tenantID, &periodID, &count); err != nil {
			return err
		}
		violations += count
		metrics.AddImbalances(tenantID, periodID, count)
		if logger != nil {
			logger.Error("periodic balance integrity violation",
				slog.Int64("tenant_id", tenantID),
				slog.Int64("period_id", periodID),
				slog.Int("rows", count),
			)
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if violations > 0 {
		return fmt.Errorf("jobs: %d periodic balance rows out of balance", violations)
	}
	if logger != nil {
		logger.Info("balance integrity check passed", slog.String("job", "balance_integrity"))
	}
	return nil
}

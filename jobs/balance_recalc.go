package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/openledger/openledger/internal/jobs"
	"github.com/openledger/openledger/internal/ledger/balances"
	"github.com/openledger/openledger/internal/ledger/periods"
	"github.com/openledger/openledger/internal/shared"
)

// PeriodSource resolves periods for recomputation jobs.
type PeriodSource interface {
	GetPeriod(ctx context.Context, tenantID, id int64) (periods.Period, error)
	ListByFiscalYear(ctx context.Context, tenantID, fiscalYearID int64) ([]periods.Period, error)
}

// RecalcService runs the balance engine for one period.
type RecalcService interface {
	CalculateFor(ctx context.Context, tenantID int64, period periods.Period, opts balances.Options) error
}

// Locker guards a (tenant, period) recomputation across processes.
type Locker interface {
	Acquire(ctx context.Context, tenantID, periodID int64) (string, error)
	Release(ctx context.Context, tenantID, periodID int64, token string) error
}

// BalanceRecalcJob coordinates background balance recomputation.
type BalanceRecalcJob struct {
	Periods      PeriodSource
	Recalc       RecalcService
	Lock         Locker
	ExcludeMemos []string
	Logger       *slog.Logger
	Metrics      *jobmetrics.Metrics
}

func (j *BalanceRecalcJob) options(includeAdjustments bool) balances.Options {
	if includeAdjustments {
		return balances.Options{}
	}
	return balances.Options{Exclude: balances.ExcludeMemos(j.ExcludeMemos)}
}

func (j *BalanceRecalcJob) runOne(ctx context.Context, tenantID int64, period periods.Period, includeAdjustments bool) error {
	if j.Lock != nil {
		token, err := j.Lock.Acquire(ctx, tenantID, period.ID)
		if err != nil {
			if errors.Is(err, shared.ErrLockHeld) {
				j.Logger.Warn("recalc already running",
					slog.Int64("tenant_id", tenantID),
					slog.Int64("period_id", period.ID))
			}
			return err
		}
		defer func() {
			if releaseErr := j.Lock.Release(ctx, tenantID, period.ID, token); releaseErr != nil {
				j.Logger.Warn("release recalc lock", slog.Any("error", releaseErr))
			}
		}()
	}
	return j.Recalc.CalculateFor(ctx, tenantID, period, j.options(includeAdjustments))
}

// HandleBalanceRecalc processes TaskBalanceRecalc tasks.
func (j *BalanceRecalcJob) HandleBalanceRecalc(ctx context.Context, t *asynq.Task) error {
	var payload BalanceRecalcPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.TenantID == 0 || payload.PeriodID == 0 {
		return asynq.SkipRetry
	}
	tracker := j.Metrics.Track("balance_recalc")
	period, err := j.Periods.GetPeriod(ctx, payload.TenantID, payload.PeriodID)
	if err != nil {
		return tracker.End(err)
	}
	return tracker.End(j.runOne(ctx, payload.TenantID, period, payload.IncludeAdjustments))
}

// HandleBalanceRecalcYear recomputes every period of a fiscal year strictly in
// start-date order, because each period's initial balances come from the final
// balances of its predecessor.
func (j *BalanceRecalcJob) HandleBalanceRecalcYear(ctx context.Context, t *asynq.Task) error {
	var payload BalanceRecalcYearPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.TenantID == 0 || payload.FiscalYearID == 0 {
		return asynq.SkipRetry
	}
	tracker := j.Metrics.Track("balance_recalc_year")
	list, err := j.Periods.ListByFiscalYear(ctx, payload.TenantID, payload.FiscalYearID)
	if err != nil {
		return tracker.End(err)
	}
	started := time.Now()
	for _, period := range list {
		if err := j.runOne(ctx, payload.TenantID, period, payload.IncludeAdjustments); err != nil {
			return tracker.End(err)
		}
	}
	j.Logger.Info("fiscal year recomputed",
		slog.Int64("tenant_id", payload.TenantID),
		slog.Int64("fiscal_year_id", payload.FiscalYearID),
		slog.Int("periods", len(list)),
		slog.Duration("took", time.Since(started)),
	)
	return tracker.End(nil)
}

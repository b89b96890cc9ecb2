package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskBalanceRecalc recomputes the periodic balances of one period.
	TaskBalanceRecalc = "ledger:balance:recalc"
	// TaskBalanceRecalcYear recomputes every period of a fiscal year in
	// chronological order.
	TaskBalanceRecalcYear = "ledger:balance:recalc_year"
	// TaskBalanceIntegrity scans snapshots for arithmetic violations.
	TaskBalanceIntegrity = "ledger:balance:integrity"
)

// BalanceRecalcPayload identifies the period to recompute.
type BalanceRecalcPayload struct {
	TenantID           int64 `json:"tenant_id"`
	PeriodID           int64 `json:"period_id"`
	IncludeAdjustments bool  `json:"include_adjustments"`
}

// NewBalanceRecalcTask constructs an Asynq task for one period.
func NewBalanceRecalcTask(payload BalanceRecalcPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskBalanceRecalc, data), nil
}

// BalanceRecalcYearPayload identifies the fiscal year to recompute.
type BalanceRecalcYearPayload struct {
	TenantID           int64 `json:"tenant_id"`
	FiscalYearID       int64 `json:"fiscal_year_id"`
	IncludeAdjustments bool  `json:"include_adjustments"`
}

// NewBalanceRecalcYearTask constructs an Asynq task for a whole fiscal year.
func NewBalanceRecalcYearTask(payload BalanceRecalcYearPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskBalanceRecalcYear, data), nil
}

// NewBalanceIntegrityTask constructs the nightly integrity scan task.
func NewBalanceIntegrityTask() *asynq.Task {
	return asynq.NewTask(TaskBalanceIntegrity, nil)
}

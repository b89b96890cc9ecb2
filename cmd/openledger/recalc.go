package main

import (
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"

	"github.com/openledger/openledger/internal/app"
	"github.com/openledger/openledger/internal/ledger/accounts"
	"github.com/openledger/openledger/internal/ledger/balances"
	"github.com/openledger/openledger/internal/ledger/entries"
	"github.com/openledger/openledger/internal/ledger/periods"
	"github.com/openledger/openledger/jobs"
)

func newRecalcCmd() *cobra.Command {
	var tenantID, periodID, fiscalYearID int64
	var skipAdjustments, enqueue bool

	cmd := &cobra.Command{
		Use:   "recalc",
		Short: "Recompute periodic balances for a period or a whole fiscal year",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if periodID == 0 && fiscalYearID == 0 {
				return fmt.Errorf("one of --period or --fiscal-year is required")
			}

			rt, err := newRuntime(ctx)
			if err != nil {
				return err
			}
			defer rt.Close()

			if enqueue {
				return enqueueRecalc(cmd, rt.cfg, tenantID, periodID, fiscalYearID, !skipAdjustments)
			}

			logger := app.NewLogger(rt.cfg)
			periodService := periods.NewService(periods.NewRepository(rt.pool))
			calculator := balances.NewCalculator(
				accounts.NewRepository(rt.pool),
				entries.NewRepository(rt.pool),
				periodService,
				balances.NewRepository(rt.pool),
				logger,
			)

			opts := balances.Options{}
			if skipAdjustments {
				opts.Exclude = balances.ExcludeMemos(rt.cfg.ExcludedMemos())
			}

			var targets []periods.Period
			if periodID != 0 {
				period, err := periodService.GetPeriod(ctx, tenantID, periodID)
				if err != nil {
					return err
				}
				targets = append(targets, period)
			} else {
				// fiscal year runs must stay in start-date order so each
				// period seeds from its predecessor's finals
				targets, err = periodService.ListByFiscalYear(ctx, tenantID, fiscalYearID)
				if err != nil {
					return err
				}
			}
			for _, period := range targets {
				if err := calculator.CalculateFor(ctx, tenantID, period, opts); err != nil {
					return err
				}
				fmt.Printf("period %d recomputed\n", period.ID)
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&tenantID, "tenant", 0, "tenant id")
	cmd.Flags().Int64Var(&periodID, "period", 0, "period id")
	cmd.Flags().Int64Var(&fiscalYearID, "fiscal-year", 0, "fiscal year id (all periods, chronological)")
	cmd.Flags().BoolVar(&skipAdjustments, "skip-adjustments", false, "exclude configured adjustment memos")
	cmd.Flags().BoolVar(&enqueue, "enqueue", false, "enqueue as a background job instead of running inline")
	_ = cmd.MarkFlagRequired("tenant")
	return cmd
}

func enqueueRecalc(cmd *cobra.Command, cfg *app.Config, tenantID, periodID, fiscalYearID int64, includeAdjustments bool) error {
	client, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	var info *asynq.TaskInfo
	if periodID != 0 {
		info, err = client.EnqueueBalanceRecalc(cmd.Context(), jobs.BalanceRecalcPayload{
			TenantID:           tenantID,
			PeriodID:           periodID,
			IncludeAdjustments: includeAdjustments,
		})
	} else {
		info, err = client.EnqueueBalanceRecalcYear(cmd.Context(), jobs.BalanceRecalcYearPayload{
			TenantID:           tenantID,
			FiscalYearID:       fiscalYearID,
			IncludeAdjustments: includeAdjustments,
		})
	}
	if err != nil {
		return err
	}
	fmt.Printf("enqueued %s (id=%s queue=%s)\n", info.Type, info.ID, info.Queue)
	return nil
}

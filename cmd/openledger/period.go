package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/openledger/openledger/internal/ledger/periods"
	"github.com/openledger/openledger/internal/shared"
)

func newPeriodCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "period",
		Short: "Manage accounting periods",
	}
	cmd.AddCommand(newPeriodCloseCmd())
	return cmd
}

func newPeriodCloseCmd() *cobra.Command {
	var tenantID, periodID, actorID int64

	cmd := &cobra.Command{
		Use:   "close",
		Short: "Close a period so it stops accepting entry dates",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := newRuntime(ctx)
			if err != nil {
				return err
			}
			defer rt.Close()

			svc := periods.NewService(periods.NewRepository(rt.pool))
			svc.WithAudit(shared.NewAuditLogger(rt.pool))
			period, err := svc.ClosePeriod(ctx, tenantID, periodID, actorID)
			if err != nil {
				return err
			}
			fmt.Printf("period %d closed (%s .. %s)\n", period.ID,
				period.StartDate.Format(time.DateOnly), period.EndDate.Format(time.DateOnly))
			return nil
		},
	}

	cmd.Flags().Int64Var(&tenantID, "tenant", 0, "tenant id")
	cmd.Flags().Int64Var(&periodID, "period", 0, "period id")
	cmd.Flags().Int64Var(&actorID, "actor", 0, "acting user id")
	_ = cmd.MarkFlagRequired("tenant")
	_ = cmd.MarkFlagRequired("period")
	return cmd
}

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/openledger/openledger/internal/ledger/periods"
)

func newFiscalYearCmd() *cobra.Command {
	var tenantID int64
	var year int

	cmd := &cobra.Command{
		Use:   "fiscalyear",
		Short: "Manage fiscal years",
	}

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Open a fiscal year and generate its twelve monthly periods",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := newRuntime(ctx)
			if err != nil {
				return err
			}
			defer rt.Close()

			svc := periods.NewService(periods.NewRepository(rt.pool))
			fy, list, err := svc.CreateFiscalYear(ctx, periods.CreateFiscalYearInput{
				TenantID:  tenantID,
				Year:      year,
				StartDate: time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
				EndDate:   time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC),
			})
			if err != nil {
				return err
			}
			fmt.Printf("fiscal year %d created (id=%d) with %d periods\n", fy.Year, fy.ID, len(list))
			for _, p := range list {
				fmt.Printf("  period %d: %s .. %s\n", p.ID, p.StartDate.Format(time.DateOnly), p.EndDate.Format(time.DateOnly))
			}
			return nil
		},
	}
	createCmd.Flags().Int64Var(&tenantID, "tenant", 0, "tenant id")
	createCmd.Flags().IntVar(&year, "year", 0, "fiscal year (2000-2100)")
	_ = createCmd.MarkFlagRequired("tenant")
	_ = createCmd.MarkFlagRequired("year")

	cmd.AddCommand(createCmd)
	return cmd
}

package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/openledger/openledger/internal/ledger/accounts"
	"github.com/openledger/openledger/internal/ledger/balances"
)

func newBalancesCmd() *cobra.Command {
	var tenantID, periodID int64

	cmd := &cobra.Command{
		Use:   "balances",
		Short: "Print the periodic balance snapshot of a period",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := newRuntime(ctx)
			if err != nil {
				return err
			}
			defer rt.Close()

			accountList, err := accounts.NewRepository(rt.pool).List(ctx, tenantID)
			if err != nil {
				return err
			}
			rows, err := balances.NewRepository(rt.pool).ListByPeriod(ctx, tenantID, periodID)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CODE\tNAME\tINITIAL\tDEBIT\tCREDIT\tFINAL")
			for _, a := range accountList {
				for _, row := range rows {
					if row.AccountID != a.ID {
						continue
					}
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
						a.Code, a.Name,
						row.Initial.StringFixed(2), row.Debit.StringFixed(2),
						row.Credit.StringFixed(2), row.Final.StringFixed(2))
				}
			}
			return w.Flush()
		},
	}

	cmd.Flags().Int64Var(&tenantID, "tenant", 0, "tenant id")
	cmd.Flags().Int64Var(&periodID, "period", 0, "period id")
	_ = cmd.MarkFlagRequired("tenant")
	_ = cmd.MarkFlagRequired("period")
	return cmd
}

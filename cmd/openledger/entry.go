package main

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/openledger/openledger/internal/ledger/accounts"
	"github.com/openledger/openledger/internal/ledger/entries"
	"github.com/openledger/openledger/internal/ledger/periods"
	"github.com/openledger/openledger/internal/shared"
)

func newEntryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entry",
		Short: "Record and advance ledger entries",
	}
	cmd.AddCommand(newEntryCreateCmd())
	cmd.AddCommand(newEntryTransitionCmd())
	return cmd
}

func newEntryService(rt *runtime) *entries.Service {
	return entries.NewService(
		entries.NewRepository(rt.pool),
		accounts.NewRepository(rt.pool),
		periods.NewService(periods.NewRepository(rt.pool)),
		shared.NewAuditLogger(rt.pool),
	)
}

func newEntryCreateCmd() *cobra.Command {
	var tenantID, debitAccount, creditAccount int64
	var dateStr, memo, amount string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Record a two-line entry debiting one account and crediting another",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			date, err := time.Parse(time.DateOnly, dateStr)
			if err != nil {
				return fmt.Errorf("parse --date: %w", err)
			}
			value, err := decimal.NewFromString(amount)
			if err != nil {
				return fmt.Errorf("parse --amount: %w", err)
			}

			rt, err := newRuntime(ctx)
			if err != nil {
				return err
			}
			defer rt.Close()

			entry, err := newEntryService(rt).Create(ctx, entries.CreateEntryInput{
				TenantID: tenantID,
				Date:     date,
				Memo:     memo,
				Value:    value,
				Items: []entries.ItemInput{
					{AccountID: debitAccount, Debit: value},
					{AccountID: creditAccount, Credit: value},
				},
			})
			if err != nil {
				return err
			}
			fmt.Printf("entry %d recorded (ref=%s status=%s)\n", entry.ID, entry.Ref, entry.Status)
			return nil
		},
	}

	cmd.Flags().Int64Var(&tenantID, "tenant", 0, "tenant id")
	cmd.Flags().StringVar(&dateStr, "date", "", "entry date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&memo, "memo", "", "entry memo")
	cmd.Flags().StringVar(&amount, "amount", "", "entry amount")
	cmd.Flags().Int64Var(&debitAccount, "debit", 0, "analytical account id to debit")
	cmd.Flags().Int64Var(&creditAccount, "credit", 0, "analytical account id to credit")
	_ = cmd.MarkFlagRequired("tenant")
	_ = cmd.MarkFlagRequired("date")
	_ = cmd.MarkFlagRequired("memo")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("debit")
	_ = cmd.MarkFlagRequired("credit")
	return cmd
}

func newEntryTransitionCmd() *cobra.Command {
	var tenantID, entryID, actorID int64
	var target string

	cmd := &cobra.Command{
		Use:   "transition",
		Short: "Advance an entry one lifecycle step",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := newRuntime(ctx)
			if err != nil {
				return err
			}
			defer rt.Close()

			entry, err := newEntryService(rt).Transition(ctx, entries.TransitionInput{
				TenantID: tenantID,
				EntryID:  entryID,
				Target:   entries.EntryStatus(target),
				ActorID:  actorID,
			})
			if err != nil {
				return err
			}
			fmt.Printf("entry %d is now %s\n", entry.ID, entry.Status)
			return nil
		},
	}

	cmd.Flags().Int64Var(&tenantID, "tenant", 0, "tenant id")
	cmd.Flags().Int64Var(&entryID, "entry", 0, "entry id")
	cmd.Flags().StringVar(&target, "to", "", "target status: PENDING, APPROVED or FROZEN")
	cmd.Flags().Int64Var(&actorID, "actor", 0, "acting user id")
	_ = cmd.MarkFlagRequired("tenant")
	_ = cmd.MarkFlagRequired("entry")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

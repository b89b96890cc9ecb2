package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openledger/openledger/internal/ledger/accounts"
)

func newAccountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage the chart of accounts",
	}
	cmd.AddCommand(newAccountCreateCmd())
	cmd.AddCommand(newAccountListCmd())
	return cmd
}

func newAccountCreateCmd() *cobra.Command {
	var tenantID, parentID int64
	var code, name, nature, kind string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Add an account to the hierarchy",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := newRuntime(ctx)
			if err != nil {
				return err
			}
			defer rt.Close()

			in := accounts.SaveAccountInput{
				TenantID: tenantID,
				Code:     code,
				Name:     name,
				Nature:   accounts.Nature(nature),
				Kind:     accounts.Kind(kind),
			}
			if parentID != 0 {
				in.ParentID = &parentID
			}
			account, err := accounts.NewService(accounts.NewRepository(rt.pool)).Save(ctx, in)
			if err != nil {
				return err
			}
			fmt.Printf("account %s created (id=%d)\n", account.Code, account.ID)
			return nil
		},
	}

	cmd.Flags().Int64Var(&tenantID, "tenant", 0, "tenant id")
	cmd.Flags().StringVar(&code, "code", "", "dotted account code, e.g. 1.1.1.01.0001")
	cmd.Flags().StringVar(&name, "name", "", "account name")
	cmd.Flags().StringVar(&nature, "nature", "DEBIT", "DEBIT or CREDIT")
	cmd.Flags().StringVar(&kind, "kind", "SYNTHETIC", "ANALYTICAL or SYNTHETIC")
	cmd.Flags().Int64Var(&parentID, "parent", 0, "parent account id")
	_ = cmd.MarkFlagRequired("tenant")
	_ = cmd.MarkFlagRequired("code")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newAccountListCmd() *cobra.Command {
	var tenantID int64

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the account tree in code order",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := newRuntime(ctx)
			if err != nil {
				return err
			}
			defer rt.Close()

			tree, err := accounts.NewService(accounts.NewRepository(rt.pool)).LoadTree(ctx, tenantID)
			if err != nil {
				return err
			}
			for _, a := range tree.Accounts() {
				marker := " "
				if a.IsLeaf() {
					marker = "*"
				}
				fmt.Printf("%s %-16s %s\n", marker, a.Code, a.Name)
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&tenantID, "tenant", 0, "tenant id")
	_ = cmd.MarkFlagRequired("tenant")
	return cmd
}

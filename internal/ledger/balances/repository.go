package balances

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openledger/openledger/internal/ledger/shared"
	"github.com/openledger/openledger/internal/platform/db"
)

// Repository is the Postgres-backed BalanceStore.
type Repository interface {
	BalanceStore
	Find(ctx context.Context, tenantID, accountID, periodID int64) (PeriodicBalance, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const balanceColumns = `id, tenant_id, account_id, period_id, initial_balance, final_balance, debit_value, credit_value, created_at, updated_at`

// Replace swaps the period's snapshot in one transaction so concurrent readers
// never observe a half-built state.
func (r *repository) Replace(ctx context.Context, tenantID, periodID int64, rows []PeriodicBalance) error {
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM periodic_balances WHERE tenant_id=$1 AND period_id=$2`, tenantID, periodID); err != nil {
			return err
		}
		for _, row := range rows {
			if _, err := tx.Exec(ctx, `INSERT INTO periodic_balances (tenant_id, account_id, period_id, initial_balance, final_balance, debit_value, credit_value)
VALUES ($1,$2,$3,$4,$5,$6,$7)`,
				tenantID, row.AccountID, periodID, row.Initial, row.Final, row.Debit, row.Credit); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *repository) ListByPeriod(ctx context.Context, tenantID, periodID int64) ([]PeriodicBalance, error) {
	rows, err := r.db.Query(ctx, `SELECT `+balanceColumns+` FROM periodic_balances
WHERE tenant_id=$1 AND period_id=$2 ORDER BY account_id`, tenantID, periodID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []PeriodicBalance
	for rows.Next() {
		var b PeriodicBalance
		if err := rows.Scan(&b.ID, &b.TenantID, &b.AccountID, &b.PeriodID, &b.Initial, &b.Final, &b.Debit, &b.Credit, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, b)
	}
	return list, rows.Err()
}

func (r *repository) Find(ctx context.Context, tenantID, accountID, periodID int64) (PeriodicBalance, error) {
	var b PeriodicBalance
	err := r.db.QueryRow(ctx, `SELECT `+balanceColumns+` FROM periodic_balances
WHERE tenant_id=$1 AND account_id=$2 AND period_id=$3`, tenantID, accountID, periodID).
		Scan(&b.ID, &b.TenantID, &b.AccountID, &b.PeriodID, &b.Initial, &b.Final, &b.Debit, &b.Credit, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PeriodicBalance{}, shared.ErrBalanceNotFound
		}
		return PeriodicBalance{}, err
	}
	return b, nil
}

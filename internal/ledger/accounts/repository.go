package accounts

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openledger/openledger/internal/ledger/shared"
)

// Repository encapsulates DB operations for the chart of accounts.
type Repository interface {
	List(ctx context.Context, tenantID int64) ([]Account, error)
	Get(ctx context.Context, tenantID, id int64) (Account, error)
	Insert(ctx context.Context, a Account) (Account, error)
	Update(ctx context.Context, a Account) (Account, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context, tenantID int64) ([]Account, error) {
	rows, err := r.db.Query(ctx, `SELECT id, tenant_id, code, name, nature, kind, parent_id, created_at, updated_at
FROM accounts WHERE tenant_id=$1 ORDER BY code`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []Account
	for rows.Next() {
		var a Account
		if err := rows.Scan(&a.ID, &a.TenantID, &a.Code, &a.Name, &a.Nature, &a.Kind, &a.ParentID, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

func (r *repository) Get(ctx context.Context, tenantID, id int64) (Account, error) {
	var a Account
	err := r.db.QueryRow(ctx, `SELECT id, tenant_id, code, name, nature, kind, parent_id, created_at, updated_at
FROM accounts WHERE tenant_id=$1 AND id=$2`, tenantID, id).
		Scan(&a.ID, &a.TenantID, &a.Code, &a.Name, &a.Nature, &a.Kind, &a.ParentID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, shared.ErrAccountNotFound
		}
		return Account{}, err
	}
	return a, nil
}

func (r *repository) Insert(ctx context.Context, a Account) (Account, error) {
	row := r.db.QueryRow(ctx, `INSERT INTO accounts (tenant_id, code, name, nature, kind, parent_id)
VALUES ($1,$2,$3,$4,$5,$6) RETURNING id, created_at, updated_at`,
		a.TenantID, a.Code, a.Name, a.Nature, a.Kind, a.ParentID)
	if err := row.Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt); err != nil {
		if isDuplicateCode(err) {
			return Account{}, shared.ErrDuplicateCode
		}
		return Account{}, err
	}
	return a, nil
}

func (r *repository) Update(ctx context.Context, a Account) (Account, error) {
	cmd, err := r.db.Exec(ctx, `UPDATE accounts SET name=$3, nature=$4, kind=$5, parent_id=$6, updated_at=NOW()
WHERE tenant_id=$1 AND id=$2`, a.TenantID, a.ID, a.Name, a.Nature, a.Kind, a.ParentID)
	if err != nil {
		if isDuplicateCode(err) {
			return Account{}, shared.ErrDuplicateCode
		}
		return Account{}, err
	}
	if cmd.RowsAffected() == 0 {
		return Account{}, shared.ErrAccountNotFound
	}
	return a, nil
}

func isDuplicateCode(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName == "uq_accounts_tenant_code"
	}
	return false
}

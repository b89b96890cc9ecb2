package periods

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openledger/openledger/internal/ledger/shared"
	"github.com/openledger/openledger/internal/platform/db"
)

// Repository encapsulates DB operations for the period calendar.
type Repository interface {
	GetPeriod(ctx context.Context, tenantID, id int64) (Period, error)
	FindOpenPeriodByDate(ctx context.Context, tenantID int64, date time.Time) (Period, error)
	FindPeriodByDate(ctx context.Context, tenantID int64, date time.Time) (*Period, error)
	FindByStartDate(ctx context.Context, tenantID int64, start time.Time) (*Period, error)
	FindByEndDate(ctx context.Context, tenantID int64, end time.Time) (*Period, error)
	ListByFiscalYear(ctx context.Context, tenantID, fiscalYearID int64) ([]Period, error)
	UpdatePeriodStatus(ctx context.Context, tenantID, id int64, status Status) error
	InsertFiscalYearWithPeriods(ctx context.Context, fy FiscalYear, periods []Period) (FiscalYear, []Period, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const periodColumns = `id, tenant_id, fiscal_year_id, start_date, end_date, status, type, created_at, updated_at`

func scanPeriod(row pgx.Row) (Period, error) {
	var p Period
	err := row.Scan(&p.ID, &p.TenantID, &p.FiscalYearID, &p.StartDate, &p.EndDate, &p.Status, &p.Type, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *repository) GetPeriod(ctx context.Context, tenantID, id int64) (Period, error) {
	p, err := scanPeriod(r.db.QueryRow(ctx, `SELECT `+periodColumns+` FROM periods WHERE tenant_id=$1 AND id=$2`, tenantID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Period{}, shared.ErrPeriodNotFound
		}
		return Period{}, err
	}
	return p, nil
}

// FindOpenPeriodByDate returns the open period covering the supplied date.
func (r *repository) FindOpenPeriodByDate(ctx context.Context, tenantID int64, date time.Time) (Period, error) {
	p, err := scanPeriod(r.db.QueryRow(ctx, `SELECT `+periodColumns+` FROM periods
WHERE tenant_id=$1 AND status='OPEN' AND $2 BETWEEN start_date AND end_date ORDER BY start_date LIMIT 1`, tenantID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Period{}, shared.ErrNoOpenPeriod
		}
		return Period{}, err
	}
	return p, nil
}

// FindPeriodByDate returns the period covering the date regardless of status,
// nil when the calendar has no period there.
func (r *repository) FindPeriodByDate(ctx context.Context, tenantID int64, date time.Time) (*Period, error) {
	p, err := scanPeriod(r.db.QueryRow(ctx, `SELECT `+periodColumns+` FROM periods
WHERE tenant_id=$1 AND $2 BETWEEN start_date AND end_date ORDER BY start_date LIMIT 1`, tenantID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// FindByStartDate resolves adjacency lookups; a missing neighbour is nil, not an error.
func (r *repository) FindByStartDate(ctx context.Context, tenantID int64, start time.Time) (*Period, error) {
	p, err := scanPeriod(r.db.QueryRow(ctx, `SELECT `+periodColumns+` FROM periods
WHERE tenant_id=$1 AND start_date=$2 ORDER BY end_date LIMIT 1`, tenantID, start))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *repository) FindByEndDate(ctx context.Context, tenantID int64, end time.Time) (*Period, error) {
	p, err := scanPeriod(r.db.QueryRow(ctx, `SELECT `+periodColumns+` FROM periods
WHERE tenant_id=$1 AND end_date=$2 ORDER BY start_date LIMIT 1`, tenantID, end))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *repository) ListByFiscalYear(ctx context.Context, tenantID, fiscalYearID int64) ([]Period, error) {
	rows, err := r.db.Query(ctx, `SELECT `+periodColumns+` FROM periods
WHERE tenant_id=$1 AND fiscal_year_id=$2 ORDER BY start_date`, tenantID, fiscalYearID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []Period
	for rows.Next() {
		var p Period
		if err := rows.Scan(&p.ID, &p.TenantID, &p.FiscalYearID, &p.StartDate, &p.EndDate, &p.Status, &p.Type, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func (r *repository) UpdatePeriodStatus(ctx context.Context, tenantID, id int64, status Status) error {
	cmd, err := r.db.Exec(ctx, `UPDATE periods SET status=$3, updated_at=NOW() WHERE tenant_id=$1 AND id=$2`, tenantID, id, status)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrPeriodNotFound
	}
	return nil
}

// InsertFiscalYearWithPeriods creates the year and its periods in one transaction.
func (r *repository) InsertFiscalYearWithPeriods(ctx context.Context, fy FiscalYear, periods []Period) (FiscalYear, []Period, error) {
	var inserted []Period
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `INSERT INTO fiscal_years (tenant_id, year, start_date, end_date, status)
VALUES ($1,$2,$3,$4,$5) RETURNING id, created_at, updated_at`, fy.TenantID, fy.Year, fy.StartDate, fy.EndDate, fy.Status)
		if err := row.Scan(&fy.ID, &fy.CreatedAt, &fy.UpdatedAt); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.ConstraintName == "uq_fiscal_years_tenant_year" {
				return shared.ErrFiscalYearExists
			}
			return err
		}
		inserted = make([]Period, 0, len(periods))
		for _, p := range periods {
			p.TenantID = fy.TenantID
			p.FiscalYearID = fy.ID
			row := tx.QueryRow(ctx, `INSERT INTO periods (tenant_id, fiscal_year_id, start_date, end_date, status, type)
VALUES ($1,$2,$3,$4,$5,$6) RETURNING id, created_at, updated_at`,
				p.TenantID, p.FiscalYearID, p.StartDate, p.EndDate, p.Status, p.Type)
			if err := row.Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
				return err
			}
			inserted = append(inserted, p)
		}
		return nil
	})
	if err != nil {
		return FiscalYear{}, nil, err
	}
	return fy, inserted, nil
}

package entries

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/openledger/openledger/internal/ledger/shared"
	"github.com/openledger/openledger/internal/platform/db"
)

// Repository encapsulates DB operations for ledger entries and their items.
type Repository interface {
	InsertEntryWithItems(ctx context.Context, entry Entry, items []Item) (Entry, error)
	GetEntry(ctx context.Context, tenantID, id int64) (Entry, error)
	UpdateEntryStatus(ctx context.Context, tenantID, id int64, status EntryStatus) error
	ItemsInRange(ctx context.Context, tenantID int64, start, end time.Time) ([]ItemDetail, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

// InsertEntryWithItems writes the entry and its lines atomically.
func (r *repository) InsertEntryWithItems(ctx context.Context, entry Entry, items []Item) (Entry, error) {
	err := db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, `INSERT INTO entries (tenant_id, ref, date, memo, value, status)
VALUES ($1,$2,$3,$4,$5,$6) RETURNING id, created_at, updated_at`,
			entry.TenantID, entry.Ref, entry.Date, entry.Memo, entry.Value, entry.Status)
		if err := row.Scan(&entry.ID, &entry.CreatedAt, &entry.UpdatedAt); err != nil {
			return err
		}
		entry.Items = make([]Item, 0, len(items))
		for _, item := range items {
			item.EntryID = entry.ID
			row := tx.QueryRow(ctx, `INSERT INTO entry_items (entry_id, account_id, debit_value, credit_value)
VALUES ($1,$2,$3,$4) RETURNING id, created_at, updated_at`,
				item.EntryID, item.AccountID, item.Debit, item.Credit)
			if err := row.Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt); err != nil {
				return err
			}
			entry.Items = append(entry.Items, item)
		}
		return nil
	})
	if err != nil {
		return Entry{}, err
	}
	return entry, nil
}

func (r *repository) GetEntry(ctx context.Context, tenantID, id int64) (Entry, error) {
	var e Entry
	err := r.db.QueryRow(ctx, `SELECT id, tenant_id, ref, date, memo, value, status, created_at, updated_at
FROM entries WHERE tenant_id=$1 AND id=$2`, tenantID, id).
		Scan(&e.ID, &e.TenantID, &e.Ref, &e.Date, &e.Memo, &e.Value, &e.Status, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Entry{}, shared.ErrEntryNotFound
		}
		return Entry{}, err
	}
	rows, err := r.db.Query(ctx, `SELECT id, entry_id, account_id, debit_value, credit_value, created_at, updated_at
FROM entry_items WHERE entry_id=$1 ORDER BY id`, e.ID)
	if err != nil {
		return Entry{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var item Item
		if err := rows.Scan(&item.ID, &item.EntryID, &item.AccountID, &item.Debit, &item.Credit, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return Entry{}, err
		}
		e.Items = append(e.Items, item)
	}
	return e, rows.Err()
}

func (r *repository) UpdateEntryStatus(ctx context.Context, tenantID, id int64, status EntryStatus) error {
	cmd, err := r.db.Exec(ctx, `UPDATE entries SET status=$3, updated_at=NOW() WHERE tenant_id=$1 AND id=$2`, tenantID, id, status)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return shared.ErrEntryNotFound
	}
	return nil
}

// ItemsInRange returns every line whose entry date falls inside [start, end],
// joined with the entry fields the balance engine filters on.
func (r *repository) ItemsInRange(ctx context.Context, tenantID int64, start, end time.Time) ([]ItemDetail, error) {
	rows, err := r.db.Query(ctx, `SELECT i.id, i.entry_id, i.account_id, i.debit_value, i.credit_value, i.created_at, i.updated_at,
e.ref, e.date, e.memo, e.status
FROM entry_items i JOIN entries e ON e.id = i.entry_id
WHERE e.tenant_id=$1 AND e.date >= $2 AND e.date <= $3
ORDER BY e.date, i.id`, tenantID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var details []ItemDetail
	for rows.Next() {
		var d ItemDetail
		if err := rows.Scan(&d.ID, &d.EntryID, &d.AccountID, &d.Debit, &d.Credit, &d.CreatedAt, &d.UpdatedAt,
			&d.EntryRef, &d.EntryDate, &d.EntryMemo, &d.EntryStatus); err != nil {
			return nil, err
		}
		details = append(details, d)
	}
	return details, rows.Err()
}

package entries

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntryStatus enumerates the entry lifecycle.
type EntryStatus string

const (
	StatusDraft    EntryStatus = "DRAFT"
	StatusPending  EntryStatus = "PENDING"
	StatusApproved EntryStatus = "APPROVED"
	StatusFrozen   EntryStatus = "FROZEN"
)

// CanTransitionTo reports whether the lifecycle may advance to target. The
// chain only moves forward, one step at a time.
func (s EntryStatus) CanTransitionTo(target EntryStatus) bool {
	switch s {
	case StatusDraft:
		return target == StatusPending
	case StatusPending:
		return target == StatusApproved
	case StatusApproved:
		return target == StatusFrozen
	}
	return false
}

// Entry is one dated transaction against the books.
type Entry struct {
	ID        int64
	TenantID  int64
	Ref       uuid.UUID
	Date      time.Time
	Memo      string
	Value     decimal.Decimal
	Status    EntryStatus
	CreatedAt time.Time
	UpdatedAt time.Time
	Items     []Item
}

// Item is one debit or credit line of an entry against a single analytical account.
type Item struct {
	ID        int64
	EntryID   int64
	AccountID int64
	Debit     decimal.Decimal
	Credit    decimal.Decimal
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ItemDetail joins a line item with the entry fields the balance engine needs.
type ItemDetail struct {
	Item
	EntryRef    uuid.UUID
	EntryDate   time.Time
	EntryMemo   string
	EntryStatus EntryStatus
}

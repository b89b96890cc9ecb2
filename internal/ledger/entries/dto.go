package entries

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/openledger/openledger/internal/ledger/shared"
)

// ItemInput describes one line of a new entry.
type ItemInput struct {
	AccountID int64           `validate:"required"`
	Debit     decimal.Decimal
	Credit    decimal.Decimal
}

// Validate enforces the one-of-debit-or-credit rule with both sides non-negative.
func (in ItemInput) Validate() error {
	if in.Debit.IsNegative() || in.Credit.IsNegative() {
		return shared.ErrInvalidEntryItem
	}
	if in.Debit.IsPositive() && in.Credit.IsPositive() {
		return shared.ErrInvalidEntryItem
	}
	if in.Debit.IsZero() && in.Credit.IsZero() {
		return shared.ErrInvalidEntryItem
	}
	return nil
}

// CreateEntryInput groups fields required to record an entry.
type CreateEntryInput struct {
	TenantID int64           `validate:"required"`
	Date     time.Time       `validate:"required"`
	Memo     string          `validate:"required,max=150"`
	Value    decimal.Decimal
	Items    []ItemInput `validate:"min=1,dive"`
}

// Validate checks the entry header and every line.
func (in CreateEntryInput) Validate() error {
	if in.Value.IsNegative() {
		return shared.ErrInvalidEntryItem
	}
	for _, item := range in.Items {
		if err := item.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// TransitionInput wraps parameters for a lifecycle change.
type TransitionInput struct {
	TenantID int64
	EntryID  int64
	Target   EntryStatus
	ActorID  int64
}

package accounts

import "time"

// Nature tells which side of the books an account normally carries.
type Nature string

const (
	NatureDebit  Nature = "DEBIT"
	NatureCredit Nature = "CREDIT"
)

// Kind distinguishes postable leaves from aggregation-only nodes.
type Kind string

const (
	// KindAnalytical accounts receive entry items directly.
	KindAnalytical Kind = "ANALYTICAL"
	// KindSynthetic accounts only aggregate descendant activity.
	KindSynthetic Kind = "SYNTHETIC"
)

// Account models a chart of accounts node.
type Account struct {
	ID        int64
	TenantID  int64
	Code      string
	Name      string
	Nature    Nature
	Kind      Kind
	ParentID  *int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsLeaf reports whether the account is postable.
func (a Account) IsLeaf() bool {
	return a.Kind == KindAnalytical
}

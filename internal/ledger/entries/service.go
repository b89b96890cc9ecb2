package entries

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/openledger/openledger/internal/ledger/accounts"
	"github.com/openledger/openledger/internal/ledger/periods"
	"github.com/openledger/openledger/internal/ledger/shared"
	internalshared "github.com/openledger/openledger/internal/shared"
)

// AccountSource resolves accounts referenced by entry lines.
type AccountSource interface {
	Get(ctx context.Context, tenantID, id int64) (accounts.Account, error)
}

// PeriodGuard validates entry dates against the period calendar.
type PeriodGuard interface {
	OpenPeriodContaining(ctx context.Context, tenantID int64, date time.Time) (periods.Period, error)
}

// AuditPort records entry lifecycle events.
type AuditPort interface {
	Record(ctx context.Context, log internalshared.AuditLog) error
}

// Service validates and records ledger entries.
type Service struct {
	repo     Repository
	accounts AccountSource
	guard    PeriodGuard
	audit    AuditPort
	validate *validator.Validate
	now      func() time.Time
}

func NewService(repo Repository, accountSource AccountSource, guard PeriodGuard, audit AuditPort) *Service {
	return &Service{
		repo:     repo,
		accounts: accountSource,
		guard:    guard,
		audit:    audit,
		validate: validator.New(),
		now:      time.Now,
	}
}

// WithNow overrides the clock for deterministic tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Create records a draft entry after validating its lines, their accounts and
// the entry date against the open period calendar.
func (s *Service) Create(ctx context.Context, in CreateEntryInput) (Entry, error) {
	if err := s.validate.Struct(in); err != nil {
		return Entry{}, err
	}
	if err := in.Validate(); err != nil {
		return Entry{}, err
	}
	if _, err := s.guard.OpenPeriodContaining(ctx, in.TenantID, in.Date); err != nil {
		return Entry{}, err
	}
	items := make([]Item, 0, len(in.Items))
	for _, item := range in.Items {
		account, err := s.accounts.Get(ctx, in.TenantID, item.AccountID)
		if err != nil {
			return Entry{}, err
		}
		if !account.IsLeaf() {
			return Entry{}, shared.ErrSyntheticPosting
		}
		items = append(items, Item{
			AccountID: item.AccountID,
			Debit:     item.Debit,
			Credit:    item.Credit,
		})
	}
	entry := Entry{
		TenantID: in.TenantID,
		Ref:      uuid.New(),
		Date:     in.Date,
		Memo:     in.Memo,
		Value:    in.Value,
		Status:   StatusDraft,
	}
	created, err := s.repo.InsertEntryWithItems(ctx, entry, items)
	if err != nil {
		return Entry{}, err
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, internalshared.AuditLog{
			TenantID: in.TenantID,
			Action:   "entry.create",
			Entity:   "entry",
			EntityID: fmt.Sprintf("%d", created.ID),
			Meta: map[string]any{
				"ref":  created.Ref.String(),
				"memo": created.Memo,
				"date": created.Date.Format(time.DateOnly),
			},
			At: s.now(),
		})
	}
	return created, nil
}

// Get returns an entry with its items.
func (s *Service) Get(ctx context.Context, tenantID, id int64) (Entry, error) {
	return s.repo.GetEntry(ctx, tenantID, id)
}

// Transition advances the entry lifecycle one step forward.
func (s *Service) Transition(ctx context.Context, in TransitionInput) (Entry, error) {
	entry, err := s.repo.GetEntry(ctx, in.TenantID, in.EntryID)
	if err != nil {
		return Entry{}, err
	}
	if !entry.Status.CanTransitionTo(in.Target) {
		return Entry{}, shared.ErrInvalidStatus
	}
	if err := s.repo.UpdateEntryStatus(ctx, in.TenantID, in.EntryID, in.Target); err != nil {
		return Entry{}, err
	}
	previous := entry.Status
	entry.Status = in.Target
	if s.audit != nil {
		_ = s.audit.Record(ctx, internalshared.AuditLog{
			TenantID: in.TenantID,
			ActorID:  in.ActorID,
			Action:   "entry.transition",
			Entity:   "entry",
			EntityID: fmt.Sprintf("%d", entry.ID),
			Meta: map[string]any{
				"from": string(previous),
				"to":   string(in.Target),
			},
			At: s.now(),
		})
	}
	return entry, nil
}

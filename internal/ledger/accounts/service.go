package accounts

import (
	"context"

	"github.com/go-playground/validator/v10"

	"github.com/openledger/openledger/internal/ledger/shared"
)

// minLeafDepth is the minimum tree depth (root at zero) for postable accounts.
const minLeafDepth = 4

// SaveAccountInput groups the fields accepted when creating or updating an account.
type SaveAccountInput struct {
	ID       int64
	TenantID int64  `validate:"required"`
	Code     string `validate:"required,max=20"`
	Name     string `validate:"required,max=50"`
	Nature   Nature `validate:"required,oneof=DEBIT CREDIT"`
	Kind     Kind   `validate:"required,oneof=ANALYTICAL SYNTHETIC"`
	ParentID *int64
}

// Service validates and persists chart of accounts changes.
type Service struct {
	repo     Repository
	validate *validator.Validate
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, validate: validator.New()}
}

// List returns the tenant's accounts in code order.
func (s *Service) List(ctx context.Context, tenantID int64) ([]Account, error) {
	return s.repo.List(ctx, tenantID)
}

// Get returns a single account.
func (s *Service) Get(ctx context.Context, tenantID, id int64) (Account, error) {
	return s.repo.Get(ctx, tenantID, id)
}

// LoadTree builds the in-memory hierarchy for a tenant.
func (s *Service) LoadTree(ctx context.Context, tenantID int64) (*Tree, error) {
	list, err := s.repo.List(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return NewTree(list), nil
}

// Save validates and persists an account. Analytical accounts must hang off a
// parent and sit at depth four or deeper.
func (s *Service) Save(ctx context.Context, in SaveAccountInput) (Account, error) {
	if err := s.validate.Struct(in); err != nil {
		return Account{}, err
	}
	if err := ValidateCode(in.Code); err != nil {
		return Account{}, err
	}
	if in.Kind == KindAnalytical {
		if in.ParentID == nil || CodeDepth(in.Code) < minLeafDepth {
			return Account{}, shared.ErrInvalidAccountType
		}
	}
	if in.ParentID != nil {
		parent, err := s.repo.Get(ctx, in.TenantID, *in.ParentID)
		if err != nil {
			return Account{}, err
		}
		if CodeDepth(in.Code) != CodeDepth(parent.Code)+1 {
			return Account{}, shared.ErrInvalidAccountCode
		}
	}
	account := Account{
		ID:       in.ID,
		TenantID: in.TenantID,
		Code:     in.Code,
		Name:     in.Name,
		Nature:   in.Nature,
		Kind:     in.Kind,
		ParentID: in.ParentID,
	}
	if in.ID == 0 {
		return s.repo.Insert(ctx, account)
	}
	return s.repo.Update(ctx, account)
}

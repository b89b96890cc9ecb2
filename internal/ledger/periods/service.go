package periods

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openledger/openledger/internal/ledger/shared"
	internalshared "github.com/openledger/openledger/internal/shared"
)

const (
	minYear = 2000
	maxYear = 2100
)

// CreateFiscalYearInput groups parameters for opening a new fiscal year.
type CreateFiscalYearInput struct {
	TenantID  int64
	Year      int
	StartDate time.Time
	EndDate   time.Time
}

// Validate checks year bounds and date ordering.
func (in CreateFiscalYearInput) Validate() error {
	if in.TenantID == 0 {
		return errors.New("ledger: tenant id required")
	}
	if in.Year < minYear || in.Year > maxYear {
		return shared.ErrInvalidRange
	}
	if in.StartDate.IsZero() || in.EndDate.IsZero() || in.StartDate.After(in.EndDate) {
		return shared.ErrInvalidRange
	}
	return nil
}

// AuditPort records period lifecycle events.
type AuditPort interface {
	Record(ctx context.Context, log internalshared.AuditLog) error
}

// Service manages the period calendar.
type Service struct {
	repo  Repository
	audit AuditPort
	now   func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// WithAudit attaches an audit writer for lifecycle events.
func (s *Service) WithAudit(audit AuditPort) {
	s.audit = audit
}

// WithNow overrides the clock for deterministic tests.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// CreateFiscalYear opens a year and creates its twelve monthly periods in one
// transaction. Periods start OPEN and STANDARD.
func (s *Service) CreateFiscalYear(ctx context.Context, in CreateFiscalYearInput) (FiscalYear, []Period, error) {
	if err := in.Validate(); err != nil {
		return FiscalYear{}, nil, err
	}
	fy := FiscalYear{
		TenantID:  in.TenantID,
		Year:      in.Year,
		StartDate: in.StartDate,
		EndDate:   in.EndDate,
		Status:    StatusOpen,
	}
	return s.repo.InsertFiscalYearWithPeriods(ctx, fy, MonthlyPeriods(in.Year))
}

// MonthlyPeriods builds the twelve calendar-month windows of a year.
func MonthlyPeriods(year int) []Period {
	list := make([]Period, 0, 12)
	for month := time.January; month <= time.December; month++ {
		start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
		// day zero of the next month is the last day of this one
		end := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC)
		list = append(list, Period{
			StartDate: start,
			EndDate:   end,
			Status:    StatusOpen,
			Type:      TypeStandard,
		})
	}
	return list
}

// OpenPeriodContaining resolves the open period covering a date. Used to
// validate entry dates before they hit the books. A date covered only by a
// closed period reports ErrPeriodClosed; a calendar hole, ErrNoOpenPeriod.
func (s *Service) OpenPeriodContaining(ctx context.Context, tenantID int64, date time.Time) (Period, error) {
	period, err := s.repo.FindOpenPeriodByDate(ctx, tenantID, date)
	if err == nil {
		return period, nil
	}
	if !errors.Is(err, shared.ErrNoOpenPeriod) {
		return Period{}, err
	}
	covering, lookupErr := s.repo.FindPeriodByDate(ctx, tenantID, date)
	if lookupErr != nil {
		return Period{}, lookupErr
	}
	if covering != nil {
		return Period{}, shared.ErrPeriodClosed
	}
	return Period{}, shared.ErrNoOpenPeriod
}

// GetPeriod returns a period by id.
func (s *Service) GetPeriod(ctx context.Context, tenantID, id int64) (Period, error) {
	return s.repo.GetPeriod(ctx, tenantID, id)
}

// ListByFiscalYear returns a year's periods in start-date order.
func (s *Service) ListByFiscalYear(ctx context.Context, tenantID, fiscalYearID int64) ([]Period, error) {
	return s.repo.ListByFiscalYear(ctx, tenantID, fiscalYearID)
}

// Next resolves the period starting the day after this one ends. A calendar
// boundary or gap yields nil without error.
func (s *Service) Next(ctx context.Context, p Period) (*Period, error) {
	return s.repo.FindByStartDate(ctx, p.TenantID, p.EndDate.AddDate(0, 0, 1))
}

// Previous resolves the period ending the day before this one starts.
func (s *Service) Previous(ctx context.Context, p Period) (*Period, error) {
	return s.repo.FindByEndDate(ctx, p.TenantID, p.StartDate.AddDate(0, 0, -1))
}

// ClosePeriod transitions a period OPEN -> CLOSED. Reopening is not modelled.
func (s *Service) ClosePeriod(ctx context.Context, tenantID, periodID, actorID int64) (Period, error) {
	period, err := s.repo.GetPeriod(ctx, tenantID, periodID)
	if err != nil {
		return Period{}, err
	}
	if period.Status != StatusOpen {
		return Period{}, shared.ErrInvalidStatus
	}
	if err := s.repo.UpdatePeriodStatus(ctx, tenantID, periodID, StatusClosed); err != nil {
		return Period{}, err
	}
	period.Status = StatusClosed
	if s.audit != nil {
		_ = s.audit.Record(ctx, internalshared.AuditLog{
			TenantID: tenantID,
			ActorID:  actorID,
			Action:   "period.close",
			Entity:   "period",
			EntityID: fmt.Sprintf("%d", periodID),
			Meta: map[string]any{
				"start_date": period.StartDate.Format(time.DateOnly),
				"end_date":   period.EndDate.Format(time.DateOnly),
			},
			At: s.now(),
		})
	}
	return period, nil
}

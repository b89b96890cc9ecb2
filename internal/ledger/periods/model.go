package periods

import "time"

// Status enumerates fiscal year and period states.
type Status string

const (
	StatusOpen   Status = "OPEN"
	StatusClosed Status = "CLOSED"
)

// PeriodType distinguishes regular months from adjustment windows.
type PeriodType string

const (
	TypeStandard   PeriodType = "STANDARD"
	TypeAdjustment PeriodType = "ADJUSTMENT"
)

// FiscalYear spans one accounting year for a tenant.
type FiscalYear struct {
	ID        int64
	TenantID  int64
	Year      int
	StartDate time.Time
	EndDate   time.Time
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Period is the smallest closable accounting interval, one calendar month.
type Period struct {
	ID           int64
	TenantID     int64
	FiscalYearID int64
	StartDate    time.Time
	EndDate      time.Time
	Status       Status
	Type         PeriodType
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Contains reports whether the date falls inside the period, bounds inclusive.
func (p Period) Contains(date time.Time) bool {
	return !date.Before(p.StartDate) && !date.After(p.EndDate)
}

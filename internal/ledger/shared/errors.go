package shared

import "errors"

var (
	// ErrInvalidRange indicates a start date after its end date.
	ErrInvalidRange = errors.New("ledger: start date must not be after end date")
	// ErrNoOpenPeriod indicates no open period covers the supplied date.
	ErrNoOpenPeriod = errors.New("ledger: no open period for date")
	// ErrInvalidEntryItem indicates a line with both or neither of debit/credit.
	ErrInvalidEntryItem = errors.New("ledger: entry item requires exactly one of debit or credit")
	// ErrInvalidAccountType indicates an analytical account without a parent or at insufficient depth.
	ErrInvalidAccountType = errors.New("ledger: analytical account requires a parent at depth 4 or greater")
	// ErrInvalidAccountCode indicates a malformed account code.
	ErrInvalidAccountCode = errors.New("ledger: account code must match 9.9.9.99.9999 format")
	// ErrDuplicateCode indicates the account code already exists for the tenant.
	ErrDuplicateCode = errors.New("ledger: account code already in use")
	// ErrSyntheticPosting indicates a line item referencing a synthetic account.
	ErrSyntheticPosting = errors.New("ledger: only analytical accounts may receive entry items")
	// ErrInvalidStatus indicates a disallowed lifecycle transition.
	ErrInvalidStatus = errors.New("ledger: invalid status transition")
	// ErrPeriodClosed indicates an operation against a closed period.
	ErrPeriodClosed = errors.New("ledger: period is closed")
	// ErrEntryNotFound indicates a missing ledger entry.
	ErrEntryNotFound = errors.New("ledger: entry not found")
	// ErrAccountNotFound indicates a missing account.
	ErrAccountNotFound = errors.New("ledger: account not found")
	// ErrPeriodNotFound indicates a missing period.
	ErrPeriodNotFound = errors.New("ledger: period not found")
	// ErrBalanceNotFound indicates no snapshot row for the account and period.
	ErrBalanceNotFound = errors.New("ledger: periodic balance not found")
	// ErrFiscalYearExists indicates the tenant already has the fiscal year.
	ErrFiscalYearExists = errors.New("ledger: fiscal year already exists")
)

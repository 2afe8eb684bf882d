package domain

import "errors"

// Common domain errors
var (
	ErrNotFound       = errors.New("resource not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrInternalServer = errors.New("internal server error")
	ErrBusy           = errors.New("resource busy, try again")
)

// Catalog errors
var (
	ErrBookNotFound      = errors.New("book not found")
	ErrBookHasActiveLoan = errors.New("book has an active loan")
	ErrDuplicateEmail    = errors.New("email already registered")
)

// Borrower errors
var (
	ErrBorrowerNotFound       = errors.New("borrower not found")
	ErrBorrowerHasActiveLoans = errors.New("borrower has active loans")
)

// Loan errors. These are expected, recoverable rejections; infrastructure
// failures are wrapped and propagated separately.
var (
	ErrLoanNotFound            = errors.New("loan not found")
	ErrBookUnavailable         = errors.New("book is not available for loan")
	ErrLoanLimitReached        = errors.New("borrower reached the active loan limit")
	ErrBorrowerHasOverdueLoans = errors.New("borrower has overdue loans")
	ErrAlreadyReturned         = errors.New("loan already returned")
	ErrInvalidDateRange        = errors.New("invalid loan date or duration")
)

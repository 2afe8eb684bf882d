package policy

import (
	"time"

	"github.com/Franklin-Andres-Rodriguez/biblioteca-sistema/internal/core/domain"
)

// Config holds the business limits for the loan workflow. Limits are
// injected at construction so tests can exercise alternate values.
type Config struct {
	MaxActiveLoans  int
	DefaultLoanDays int
	MinLoanDays     int
	MaxLoanDays     int
	DueSoonDays     int
	GraceDays       int
}

// DefaultConfig returns the production limits.
func DefaultConfig() Config {
	return Config{
		MaxActiveLoans:  3,
		DefaultLoanDays: 14,
		MinLoanDays:     1,
		MaxLoanDays:     30,
		DueSoonDays:     2,
		GraceDays:       3,
	}
}

// Engine evaluates loan business rules. All methods are pure: they operate
// on already-fetched state and perform no I/O.
type Engine struct {
	cfg Config
}

// NewEngine creates a policy engine with the given limits.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// Config returns the limits the engine was built with.
func (e *Engine) Config() Config {
	return e.cfg
}

// CanCreateLoan decides whether a new loan is permitted. Checks run in
// priority order so the caller gets a deterministic rejection reason; any
// single violation blocks creation.
func (e *Engine) CanCreateLoan(bookHasActiveLoan bool, borrowerActiveCount int64, borrowerHasOverdue bool) error {
	if bookHasActiveLoan {
		return domain.ErrBookUnavailable
	}
	if borrowerActiveCount >= int64(e.cfg.MaxActiveLoans) {
		return domain.ErrLoanLimitReached
	}
	if borrowerHasOverdue {
		return domain.ErrBorrowerHasOverdueLoans
	}
	return nil
}

// ValidateLoanDate rejects loan dates in the past. Dates are day-granular;
// both arguments are truncated before comparison.
func (e *Engine) ValidateLoanDate(loanDate, today time.Time) error {
	if DateOnly(loanDate).Before(DateOnly(today)) {
		return domain.ErrInvalidDateRange
	}
	return nil
}

// ComputeDueDate returns loanDate + durationDays. A zero duration means
// the configured default; anything else must fall inside [Min, Max].
func (e *Engine) ComputeDueDate(loanDate time.Time, durationDays int) (time.Time, error) {
	if durationDays == 0 {
		durationDays = e.cfg.DefaultLoanDays
	}
	if durationDays < e.cfg.MinLoanDays || durationDays > e.cfg.MaxLoanDays {
		return time.Time{}, domain.ErrInvalidDateRange
	}
	return DateOnly(loanDate).AddDate(0, 0, durationDays), nil
}

// DeriveStatus maps a loan to exactly one status for the given day.
// Returned loans are always completed; every non-returned loan falls into
// exactly one of active, due_soon, overdue or critical_overdue.
func (e *Engine) DeriveStatus(loan *domain.Loan, today time.Time) domain.LoanStatus {
	if loan.Returned {
		return domain.StatusCompleted
	}
	overdue := e.DaysOverdue(loan, today)
	if overdue > 0 {
		if overdue > e.cfg.GraceDays {
			return domain.StatusCriticalOverdue
		}
		return domain.StatusOverdue
	}
	if remaining, _ := e.DaysRemaining(loan, today); remaining <= e.cfg.DueSoonDays {
		return domain.StatusDueSoon
	}
	return domain.StatusActive
}

// DaysOverdue returns how many days past due the loan is, or 0 when the
// loan is returned or not yet due.
func (e *Engine) DaysOverdue(loan *domain.Loan, today time.Time) int {
	if loan.Returned {
		return 0
	}
	d := daysBetween(loan.DueDate, today)
	if d < 0 {
		return 0
	}
	return d
}

// DaysRemaining returns the signed day count until the due date (negative
// means overdue). ok is false for returned loans, which have no remaining
// time.
func (e *Engine) DaysRemaining(loan *domain.Loan, today time.Time) (days int, ok bool) {
	if loan.Returned {
		return 0, false
	}
	return daysBetween(today, loan.DueDate), true
}

// DurationDays returns the agreed length of the loan in days.
func (e *Engine) DurationDays(loan *domain.Loan) int {
	return daysBetween(loan.LoanDate, loan.DueDate)
}

// OverdueUrgency tiers an overdue loan by days past due:
// low <3d, medium 3-7d, high 7-14d, critical >14d.
func (e *Engine) OverdueUrgency(daysOverdue int) domain.Urgency {
	switch {
	case daysOverdue < 3:
		return domain.UrgencyLow
	case daysOverdue <= 7:
		return domain.UrgencyMedium
	case daysOverdue <= 14:
		return domain.UrgencyHigh
	default:
		return domain.UrgencyCritical
	}
}

// DateOnly truncates t to midnight UTC. Loans are day-granular; every date
// comparison in the engine goes through this.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func daysBetween(from, to time.Time) int {
	return int(DateOnly(to).Sub(DateOnly(from)).Hours() / 24)
}

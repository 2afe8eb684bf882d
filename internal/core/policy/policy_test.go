package policy_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Franklin-Andres-Rodriguez/biblioteca-sistema/internal/core/domain"
	"github.com/Franklin-Andres-Rodriguez/biblioteca-sistema/internal/core/policy"
)

var today = time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

func newEngine() *policy.Engine {
	return policy.NewEngine(policy.DefaultConfig())
}

func loanDue(due time.Time) *domain.Loan {
	return &domain.Loan{
		BookID:     1,
		BorrowerID: 1,
		LoanDate:   due.AddDate(0, 0, -14),
		DueDate:    due,
	}
}

func TestCanCreateLoan(t *testing.T) {
	e := newEngine()

	tests := []struct {
		name              string
		bookHasActiveLoan bool
		activeCount       int64
		hasOverdue        bool
		wantErr           error
	}{
		{"all checks pass", false, 0, false, nil},
		{"two active loans still allowed", false, 2, false, nil},
		{"book already on loan", true, 0, false, domain.ErrBookUnavailable},
		{"at loan limit", false, 3, false, domain.ErrLoanLimitReached},
		{"over loan limit", false, 5, false, domain.ErrLoanLimitReached},
		{"overdue loans block", false, 1, true, domain.ErrBorrowerHasOverdueLoans},
		{"book check wins over limit", true, 3, true, domain.ErrBookUnavailable},
		{"limit check wins over overdue", false, 3, true, domain.ErrLoanLimitReached},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := e.CanCreateLoan(tt.bookHasActiveLoan, tt.activeCount, tt.hasOverdue)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestCanCreateLoan_AlternateLimit(t *testing.T) {
	cfg := policy.DefaultConfig()
	cfg.MaxActiveLoans = 1
	e := policy.NewEngine(cfg)

	assert.NoError(t, e.CanCreateLoan(false, 0, false))
	assert.ErrorIs(t, e.CanCreateLoan(false, 1, false), domain.ErrLoanLimitReached)
}

func TestComputeDueDate(t *testing.T) {
	e := newEngine()

	due, err := e.ComputeDueDate(today, 0)
	require.NoError(t, err)
	assert.Equal(t, today.AddDate(0, 0, 14), due, "zero duration uses the default")

	due, err = e.ComputeDueDate(today, 7)
	require.NoError(t, err)
	assert.Equal(t, today.AddDate(0, 0, 7), due)

	due, err = e.ComputeDueDate(today, 30)
	require.NoError(t, err)
	assert.Equal(t, today.AddDate(0, 0, 30), due)

	_, err = e.ComputeDueDate(today, 31)
	assert.ErrorIs(t, err, domain.ErrInvalidDateRange)

	_, err = e.ComputeDueDate(today, -1)
	assert.ErrorIs(t, err, domain.ErrInvalidDateRange)
}

func TestValidateLoanDate(t *testing.T) {
	e := newEngine()

	assert.NoError(t, e.ValidateLoanDate(today, today))
	assert.NoError(t, e.ValidateLoanDate(today.AddDate(0, 0, 1), today))
	assert.ErrorIs(t, e.ValidateLoanDate(today.AddDate(0, 0, -1), today), domain.ErrInvalidDateRange)

	// Time-of-day must not matter: late evening of the same day is not "past".
	lateToday := time.Date(2024, 3, 15, 23, 30, 0, 0, time.UTC)
	assert.NoError(t, e.ValidateLoanDate(today, lateToday))
}

func TestDeriveStatus(t *testing.T) {
	e := newEngine()

	tests := []struct {
		name string
		due  time.Time
		want domain.LoanStatus
	}{
		{"due in ten days", today.AddDate(0, 0, 10), domain.StatusActive},
		{"due in three days", today.AddDate(0, 0, 3), domain.StatusActive},
		{"due in two days", today.AddDate(0, 0, 2), domain.StatusDueSoon},
		{"due tomorrow", today.AddDate(0, 0, 1), domain.StatusDueSoon},
		{"due today", today, domain.StatusDueSoon},
		{"one day overdue", today.AddDate(0, 0, -1), domain.StatusOverdue},
		{"three days overdue is still within grace", today.AddDate(0, 0, -3), domain.StatusOverdue},
		{"four days overdue escalates", today.AddDate(0, 0, -4), domain.StatusCriticalOverdue},
		{"eight days overdue", today.AddDate(0, 0, -8), domain.StatusCriticalOverdue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.DeriveStatus(loanDue(tt.due), today))
		})
	}
}

func TestDeriveStatus_ReturnedIsCompleted(t *testing.T) {
	e := newEngine()

	returned := today
	loan := loanDue(today.AddDate(0, 0, -30))
	loan.Returned = true
	loan.ReturnedDate = &returned

	assert.Equal(t, domain.StatusCompleted, e.DeriveStatus(loan, today))
	assert.Zero(t, e.DaysOverdue(loan, today), "returned loans are never overdue")

	_, ok := e.DaysRemaining(loan, today)
	assert.False(t, ok, "returned loans have no remaining days")
}

func TestDeriveStatus_Deterministic(t *testing.T) {
	e := newEngine()
	loan := loanDue(today.AddDate(0, 0, -5))

	first := e.DeriveStatus(loan, today)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, e.DeriveStatus(loan, today))
	}
}

func TestDaysOverdueAndRemaining(t *testing.T) {
	e := newEngine()

	loan := loanDue(today.AddDate(0, 0, -5))
	assert.Equal(t, 5, e.DaysOverdue(loan, today))

	remaining, ok := e.DaysRemaining(loan, today)
	require.True(t, ok)
	assert.Equal(t, -5, remaining, "remaining goes negative when overdue")

	loan = loanDue(today.AddDate(0, 0, 9))
	assert.Zero(t, e.DaysOverdue(loan, today))
	remaining, ok = e.DaysRemaining(loan, today)
	require.True(t, ok)
	assert.Equal(t, 9, remaining)
}

func TestDurationDays(t *testing.T) {
	e := newEngine()

	loan := &domain.Loan{LoanDate: today, DueDate: today.AddDate(0, 0, 21)}
	assert.Equal(t, 21, e.DurationDays(loan))
}

func TestOverdueUrgency(t *testing.T) {
	e := newEngine()

	tests := []struct {
		days int
		want domain.Urgency
	}{
		{0, domain.UrgencyLow},
		{2, domain.UrgencyLow},
		{3, domain.UrgencyMedium},
		{7, domain.UrgencyMedium},
		{8, domain.UrgencyHigh},
		{14, domain.UrgencyHigh},
		{15, domain.UrgencyCritical},
		{60, domain.UrgencyCritical},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, e.OverdueUrgency(tt.days), "days=%d", tt.days)
	}
}

func TestDateOnly(t *testing.T) {
	ts := time.Date(2024, 3, 15, 17, 45, 12, 999, time.FixedZone("X", 3600))
	got := policy.DateOnly(ts)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), got)
}

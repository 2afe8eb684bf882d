package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Franklin-Andres-Rodriguez/biblioteca-sistema/internal/adapters/persistence/models"
	"github.com/Franklin-Andres-Rodriguez/biblioteca-sistema/internal/adapters/persistence/repositories"
	"github.com/Franklin-Andres-Rodriguez/biblioteca-sistema/internal/core/domain"
	"github.com/Franklin-Andres-Rodriguez/biblioteca-sistema/internal/core/policy"
)

// DefaultLockWait bounds how long a call waits for a contended row lock
// before giving up with ErrBusy.
const DefaultLockWait = 5 * time.Second

// LoanService orchestrates the loan state machine. Every mutation runs
// inside one all-or-nothing transaction holding a write lock on the
// affected book (and loan) row, so concurrent requests against the same
// book are serialized: a loan is never created without the book flag
// flipping, and never returned without it flipping back.
type LoanService struct {
	tx        repositories.TxManager
	loans     repositories.LoanRepository
	books     repositories.BookRepository
	borrowers repositories.BorrowerRepository
	policy    *policy.Engine
	lockWait  time.Duration
	now       func() time.Time
}

// NewLoanService creates a new loan service
func NewLoanService(
	tx repositories.TxManager,
	loans repositories.LoanRepository,
	books repositories.BookRepository,
	borrowers repositories.BorrowerRepository,
	engine *policy.Engine,
	lockWait time.Duration,
) *LoanService {
	if lockWait <= 0 {
		lockWait = DefaultLockWait
	}
	return &LoanService{
		tx:        tx,
		loans:     loans,
		books:     books,
		borrowers: borrowers,
		policy:    engine,
		lockWait:  lockWait,
		now:       time.Now,
	}
}

// SetClock overrides the service clock. Tests only.
func (s *LoanService) SetClock(now func() time.Time) {
	s.now = now
}

func (s *LoanService) today() time.Time {
	return policy.DateOnly(s.now())
}

// CreateLoanInput represents create loan input
type CreateLoanInput struct {
	BookID       uint       `json:"book_id" validate:"required"`
	BorrowerID   uint       `json:"borrower_id" validate:"required"`
	LoanDate     *time.Time `json:"loan_date,omitempty"`
	DurationDays int        `json:"duration_days,omitempty"`
}

// CreateLoan checks the loan out. Inside the transaction the book row is
// locked before the availability check, eliminating the check-then-act
// race: of N concurrent calls for one book, exactly one commits and the
// rest observe ErrBookUnavailable.
func (s *LoanService) CreateLoan(ctx context.Context, input *CreateLoanInput) (*models.Loan, error) {
	today := s.today()

	loanDate := today
	if input.LoanDate != nil {
		loanDate = policy.DateOnly(*input.LoanDate)
	}
	if err := s.policy.ValidateLoanDate(loanDate, today); err != nil {
		return nil, err
	}
	dueDate, err := s.policy.ComputeDueDate(loanDate, input.DurationDays)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.lockWait)
	defer cancel()

	var loan *models.Loan
	err = s.tx.Do(ctx, func(ctx context.Context) error {
		book, err := s.books.LockByID(ctx, input.BookID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrBookNotFound
			}
			return fmt.Errorf("lock book: %w", err)
		}

		if _, err := s.borrowers.GetByID(ctx, input.BorrowerID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrBorrowerNotFound
			}
			return fmt.Errorf("get borrower: %w", err)
		}

		// Fresh counts under the lock; the stored available flag is not
		// trusted on its own because "active" spans multiple ledger rows.
		bookHasActiveLoan, err := s.loans.ActiveExistsForBook(ctx, book.ID)
		if err != nil {
			return fmt.Errorf("check active loans for book: %w", err)
		}
		activeCount, err := s.loans.CountActiveByBorrower(ctx, input.BorrowerID)
		if err != nil {
			return fmt.Errorf("count borrower loans: %w", err)
		}
		overdueCount, err := s.loans.CountOverdueByBorrower(ctx, input.BorrowerID, today)
		if err != nil {
			return fmt.Errorf("count borrower overdue loans: %w", err)
		}

		if err := s.policy.CanCreateLoan(bookHasActiveLoan || !book.Available, activeCount, overdueCount > 0); err != nil {
			return err
		}

		loan = &models.Loan{
			Code:       uuid.NewString(),
			BookID:     book.ID,
			BorrowerID: input.BorrowerID,
			LoanDate:   loanDate,
			DueDate:    dueDate,
			Returned:   false,
		}
		if err := s.loans.Create(ctx, loan); err != nil {
			return fmt.Errorf("insert loan: %w", err)
		}

		book.Available = false
		if err := s.books.Update(ctx, book); err != nil {
			return fmt.Errorf("update book availability: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, busyOr(ctx, err)
	}

	return s.loans.GetByID(context.WithoutCancel(ctx), loan.ID)
}

// ReturnResult represents return loan output
type ReturnResult struct {
	Loan     *models.Loan
	OnTime   bool
	DaysLate int
}

// ReturnLoan moves the loan to its terminal state and releases the book.
// Returning an already-returned loan is rejected with ErrAlreadyReturned
// rather than silently ignored.
func (s *LoanService) ReturnLoan(ctx context.Context, loanID uint) (*ReturnResult, error) {
	today := s.today()

	ctx, cancel := context.WithTimeout(ctx, s.lockWait)
	defer cancel()

	var result *ReturnResult
	err := s.tx.Do(ctx, func(ctx context.Context) error {
		loan, err := s.loans.LockByID(ctx, loanID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrLoanNotFound
			}
			return fmt.Errorf("lock loan: %w", err)
		}

		if loan.Returned {
			return domain.ErrAlreadyReturned
		}

		book, err := s.books.LockByID(ctx, loan.BookID)
		if err != nil {
			return fmt.Errorf("lock book: %w", err)
		}

		daysLate := s.policy.DaysOverdue(loan.ToDomain(), today)

		returnedDate := today
		loan.Returned = true
		loan.ReturnedDate = &returnedDate
		if err := s.loans.Update(ctx, loan); err != nil {
			return fmt.Errorf("update loan: %w", err)
		}

		book.Available = true
		if err := s.books.Update(ctx, book); err != nil {
			return fmt.Errorf("update book availability: %w", err)
		}

		result = &ReturnResult{
			Loan:     loan,
			OnTime:   daysLate == 0,
			DaysLate: daysLate,
		}
		return nil
	})
	if err != nil {
		return nil, busyOr(ctx, err)
	}

	return result, nil
}

// OverdueLoan represents one row of the overdue report
type OverdueLoan struct {
	Loan        *models.Loan
	Status      domain.LoanStatus
	DaysOverdue int
	Urgency     domain.Urgency
}

// ListOverdueLoans lists all non-returned loans past due, most overdue
// first, annotated with days overdue and an urgency tier.
func (s *LoanService) ListOverdueLoans(ctx context.Context) ([]*OverdueLoan, error) {
	today := s.today()

	loans, err := s.loans.ListOverdue(ctx, today)
	if err != nil {
		return nil, fmt.Errorf("list overdue loans: %w", err)
	}

	out := make([]*OverdueLoan, 0, len(loans))
	for _, loan := range loans {
		dl := loan.ToDomain()
		days := s.policy.DaysOverdue(dl, today)
		out = append(out, &OverdueLoan{
			Loan:        loan,
			Status:      s.policy.DeriveStatus(dl, today),
			DaysOverdue: days,
			Urgency:     s.policy.OverdueUrgency(days),
		})
	}
	return out, nil
}

// LoanDetail represents a loan with every derived field
type LoanDetail struct {
	Loan          *models.Loan
	Status        domain.LoanStatus
	DaysOverdue   int
	DaysRemaining *int
	DurationDays  int
}

// LoanStatusReport returns the loan plus its derived status and day
// counts. All endpoints consume this single derivation.
func (s *LoanService) LoanStatusReport(ctx context.Context, loanID uint) (*LoanDetail, error) {
	loan, err := s.loans.GetByID(ctx, loanID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrLoanNotFound
		}
		return nil, fmt.Errorf("get loan: %w", err)
	}
	return s.detail(loan), nil
}

func (s *LoanService) detail(loan *models.Loan) *LoanDetail {
	today := s.today()
	dl := loan.ToDomain()

	detail := &LoanDetail{
		Loan:         loan,
		Status:       s.policy.DeriveStatus(dl, today),
		DaysOverdue:  s.policy.DaysOverdue(dl, today),
		DurationDays: s.policy.DurationDays(dl),
	}
	if remaining, ok := s.policy.DaysRemaining(dl, today); ok {
		detail.DaysRemaining = &remaining
	}
	return detail
}

// GetByID gets a loan with derived fields
func (s *LoanService) GetByID(ctx context.Context, loanID uint) (*LoanDetail, error) {
	return s.LoanStatusReport(ctx, loanID)
}

// List lists loans with pagination, each annotated with derived status
func (s *LoanService) List(ctx context.Context, page, limit int) ([]*LoanDetail, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	loans, total, err := s.loans.List(ctx, (page-1)*limit, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list loans: %w", err)
	}

	details := make([]*LoanDetail, 0, len(loans))
	for _, loan := range loans {
		details = append(details, s.detail(loan))
	}
	return details, total, nil
}

// GetByBorrower lists one borrower's loans with derived status
func (s *LoanService) GetByBorrower(ctx context.Context, borrowerID uint) ([]*LoanDetail, error) {
	if _, err := s.borrowers.GetByID(ctx, borrowerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrBorrowerNotFound
		}
		return nil, fmt.Errorf("get borrower: %w", err)
	}

	loans, err := s.loans.ListByBorrower(ctx, borrowerID)
	if err != nil {
		return nil, fmt.Errorf("list borrower loans: %w", err)
	}

	details := make([]*LoanDetail, 0, len(loans))
	for _, loan := range loans {
		details = append(details, s.detail(loan))
	}
	return details, nil
}

// DeleteLoan is an administrative override. Deleting an active loan
// releases the book inside the same transaction so the availability
// invariant holds.
func (s *LoanService) DeleteLoan(ctx context.Context, loanID uint) error {
	ctx, cancel := context.WithTimeout(ctx, s.lockWait)
	defer cancel()

	err := s.tx.Do(ctx, func(ctx context.Context) error {
		loan, err := s.loans.LockByID(ctx, loanID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrLoanNotFound
			}
			return fmt.Errorf("lock loan: %w", err)
		}

		if !loan.Returned {
			book, err := s.books.LockByID(ctx, loan.BookID)
			if err != nil {
				return fmt.Errorf("lock book: %w", err)
			}
			book.Available = true
			if err := s.books.Update(ctx, book); err != nil {
				return fmt.Errorf("update book availability: %w", err)
			}
		}

		if err := s.loans.Delete(ctx, loan.ID); err != nil {
			return fmt.Errorf("delete loan: %w", err)
		}
		return nil
	})
	return busyOr(ctx, err)
}

// BookHasActiveLoan reports whether the book is currently checked out.
// Used by catalog management as a deletion guard.
func (s *LoanService) BookHasActiveLoan(ctx context.Context, bookID uint) (bool, error) {
	return s.loans.ActiveExistsForBook(ctx, bookID)
}

// BorrowerLoanCounts returns the borrower's active and overdue loan
// counts. Used by borrower management as a deletion guard.
func (s *LoanService) BorrowerLoanCounts(ctx context.Context, borrowerID uint) (active, overdue int64, err error) {
	active, err = s.loans.CountActiveByBorrower(ctx, borrowerID)
	if err != nil {
		return 0, 0, err
	}
	overdue, err = s.loans.CountOverdueByBorrower(ctx, borrowerID, s.today())
	if err != nil {
		return 0, 0, err
	}
	return active, overdue, nil
}

// busyOr maps a lock-wait deadline to ErrBusy so contended calls fail
// fast instead of queuing without bound.
func busyOr(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return domain.ErrBusy
	}
	return err
}

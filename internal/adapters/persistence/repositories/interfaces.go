package repositories

import (
	"context"
	"time"

	"github.com/Franklin-Andres-Rodriguez/biblioteca-sistema/internal/adapters/persistence/models"
)

// BookRepository defines catalog data access
type BookRepository interface {
	Create(ctx context.Context, book *models.Book) error
	GetByID(ctx context.Context, id uint) (*models.Book, error)
	// LockByID loads the book under a row-level write lock. Must be called
	// inside a transaction opened by TxManager.
	LockByID(ctx context.Context, id uint) (*models.Book, error)
	Update(ctx context.Context, book *models.Book) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, filter BookFilter, offset, limit int) ([]*models.Book, int64, error)
}

// BookFilter narrows catalog listings
type BookFilter struct {
	Genre     string
	Search    string
	Available *bool
}

// BorrowerRepository defines borrower registry data access
type BorrowerRepository interface {
	Create(ctx context.Context, borrower *models.Borrower) error
	GetByID(ctx context.Context, id uint) (*models.Borrower, error)
	GetByEmail(ctx context.Context, email string) (*models.Borrower, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Update(ctx context.Context, borrower *models.Borrower) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, offset, limit int) ([]*models.Borrower, int64, error)
}

// LoanRepository defines loan ledger data access
type LoanRepository interface {
	Create(ctx context.Context, loan *models.Loan) error
	GetByID(ctx context.Context, id uint) (*models.Loan, error)
	// LockByID loads the loan under a row-level write lock. Must be called
	// inside a transaction opened by TxManager.
	LockByID(ctx context.Context, id uint) (*models.Loan, error)
	Update(ctx context.Context, loan *models.Loan) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, offset, limit int) ([]*models.Loan, int64, error)
	ListByBorrower(ctx context.Context, borrowerID uint) ([]*models.Loan, error)
	// ListOverdue returns non-returned loans with due_date before today,
	// most overdue first.
	ListOverdue(ctx context.Context, today time.Time) ([]*models.Loan, error)
	ActiveExistsForBook(ctx context.Context, bookID uint) (bool, error)
	CountActiveByBorrower(ctx context.Context, borrowerID uint) (int64, error)
	CountOverdueByBorrower(ctx context.Context, borrowerID uint, today time.Time) (int64, error)
}

// TxManager runs a function inside a single all-or-nothing database
// transaction. The handle travels in the context so repositories join the
// transaction transparently; any error rolls everything back.
type TxManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

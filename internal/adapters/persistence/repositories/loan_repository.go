package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Franklin-Andres-Rodriguez/biblioteca-sistema/internal/adapters/persistence/models"
)

type loanRepository struct {
	db *gorm.DB
}

// NewLoanRepository creates a new loan repository
func NewLoanRepository(db *gorm.DB) LoanRepository {
	return &loanRepository{db: db}
}

// Create inserts a new loan row
func (r *loanRepository) Create(ctx context.Context, loan *models.Loan) error {
	return dbFor(ctx, r.db).Create(loan).Error
}

// GetByID gets a loan by ID with relations
func (r *loanRepository) GetByID(ctx context.Context, id uint) (*models.Loan, error) {
	var loan models.Loan
	err := dbFor(ctx, r.db).
		Preload("Book").
		Preload("Borrower").
		First(&loan, id).Error
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// LockByID gets a loan by ID holding a row-level write lock until the
// surrounding transaction commits or rolls back
func (r *loanRepository) LockByID(ctx context.Context, id uint) (*models.Loan, error) {
	var loan models.Loan
	err := dbFor(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&loan, id).Error
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// Update updates a loan
func (r *loanRepository) Update(ctx context.Context, loan *models.Loan) error {
	return dbFor(ctx, r.db).Save(loan).Error
}

// Delete soft deletes a loan
func (r *loanRepository) Delete(ctx context.Context, id uint) error {
	return dbFor(ctx, r.db).Delete(&models.Loan{}, id).Error
}

// List lists loans with pagination, newest first
func (r *loanRepository) List(ctx context.Context, offset, limit int) ([]*models.Loan, int64, error) {
	var loans []*models.Loan
	var total int64

	if err := dbFor(ctx, r.db).Model(&models.Loan{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := dbFor(ctx, r.db).
		Preload("Book").
		Preload("Borrower").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&loans).Error

	return loans, total, err
}

// ListByBorrower lists all loans of one borrower, newest first
func (r *loanRepository) ListByBorrower(ctx context.Context, borrowerID uint) ([]*models.Loan, error) {
	var loans []*models.Loan
	err := dbFor(ctx, r.db).
		Preload("Book").
		Where("borrower_id = ?", borrowerID).
		Order("created_at DESC").
		Find(&loans).Error
	return loans, err
}

// ListOverdue lists non-returned loans past their due date, most overdue
// first
func (r *loanRepository) ListOverdue(ctx context.Context, today time.Time) ([]*models.Loan, error) {
	var loans []*models.Loan
	err := dbFor(ctx, r.db).
		Preload("Book").
		Preload("Borrower").
		Where("returned = ? AND due_date < ?", false, today).
		Order("due_date ASC").
		Find(&loans).Error
	return loans, err
}

// ActiveExistsForBook reports whether the book has a non-returned loan
func (r *loanRepository) ActiveExistsForBook(ctx context.Context, bookID uint) (bool, error) {
	var count int64
	err := dbFor(ctx, r.db).
		Model(&models.Loan{}).
		Where("book_id = ? AND returned = ?", bookID, false).
		Count(&count).Error
	return count > 0, err
}

// CountActiveByBorrower counts the borrower's non-returned loans
func (r *loanRepository) CountActiveByBorrower(ctx context.Context, borrowerID uint) (int64, error) {
	var count int64
	err := dbFor(ctx, r.db).
		Model(&models.Loan{}).
		Where("borrower_id = ? AND returned = ?", borrowerID, false).
		Count(&count).Error
	return count, err
}

// CountOverdueByBorrower counts the borrower's non-returned loans already
// past due
func (r *loanRepository) CountOverdueByBorrower(ctx context.Context, borrowerID uint, today time.Time) (int64, error) {
	var count int64
	err := dbFor(ctx, r.db).
		Model(&models.Loan{}).
		Where("borrower_id = ? AND returned = ? AND due_date < ?", borrowerID, false, today).
		Count(&count).Error
	return count, err
}

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/Franklin-Andres-Rodriguez/biblioteca-sistema/internal/adapters/persistence/models"
	"github.com/Franklin-Andres-Rodriguez/biblioteca-sistema/internal/adapters/persistence/repositories"
	"github.com/Franklin-Andres-Rodriguez/biblioteca-sistema/internal/core/domain"
)

// BorrowerService handles the borrower registry
type BorrowerService struct {
	borrowers repositories.BorrowerRepository
	loans     repositories.LoanRepository
}

// NewBorrowerService creates a new borrower service
func NewBorrowerService(borrowers repositories.BorrowerRepository, loans repositories.LoanRepository) *BorrowerService {
	return &BorrowerService{borrowers: borrowers, loans: loans}
}

// CreateBorrowerInput represents create borrower input
type CreateBorrowerInput struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone,omitempty"`
}

// Create registers a new borrower with a unique email
func (s *BorrowerService) Create(ctx context.Context, input *CreateBorrowerInput) (*models.Borrower, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if name == "" || email == "" || !strings.Contains(email, "@") {
		return nil, domain.ErrInvalidInput
	}

	exists, err := s.borrowers.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, domain.ErrDuplicateEmail
	}

	borrower := &models.Borrower{
		Name:  name,
		Email: email,
		Phone: strings.TrimSpace(input.Phone),
	}
	if err := s.borrowers.Create(ctx, borrower); err != nil {
		return nil, fmt.Errorf("create borrower: %w", err)
	}
	return borrower, nil
}

// GetByID gets a borrower by ID
func (s *BorrowerService) GetByID(ctx context.Context, id uint) (*models.Borrower, error) {
	borrower, err := s.borrowers.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrBorrowerNotFound
		}
		return nil, fmt.Errorf("get borrower: %w", err)
	}
	return borrower, nil
}

// UpdateBorrowerInput represents update borrower input
type UpdateBorrowerInput struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
	Phone *string `json:"phone,omitempty"`
}

// Update updates a borrower, keeping email unique
func (s *BorrowerService) Update(ctx context.Context, id uint, input *UpdateBorrowerInput) (*models.Borrower, error) {
	borrower, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, domain.ErrInvalidInput
		}
		borrower.Name = strings.TrimSpace(*input.Name)
	}
	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		if email == "" || !strings.Contains(email, "@") {
			return nil, domain.ErrInvalidInput
		}
		if email != borrower.Email {
			exists, err := s.borrowers.ExistsByEmail(ctx, email)
			if err != nil {
				return nil, fmt.Errorf("check email: %w", err)
			}
			if exists {
				return nil, domain.ErrDuplicateEmail
			}
			borrower.Email = email
		}
	}
	if input.Phone != nil {
		borrower.Phone = strings.TrimSpace(*input.Phone)
	}

	if err := s.borrowers.Update(ctx, borrower); err != nil {
		return nil, fmt.Errorf("update borrower: %w", err)
	}
	return borrower, nil
}

// Delete removes a borrower. Refused while the borrower holds active
// loans; the ledger is the source of truth for that check.
func (s *BorrowerService) Delete(ctx context.Context, id uint) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}

	active, err := s.loans.CountActiveByBorrower(ctx, id)
	if err != nil {
		return fmt.Errorf("count active loans: %w", err)
	}
	if active > 0 {
		return domain.ErrBorrowerHasActiveLoans
	}

	if err := s.borrowers.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete borrower: %w", err)
	}
	return nil
}

// List lists borrowers with pagination
func (s *BorrowerService) List(ctx context.Context, page, limit int) ([]*models.Borrower, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	borrowers, total, err := s.borrowers.List(ctx, (page-1)*limit, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list borrowers: %w", err)
	}
	return borrowers, total, nil
}

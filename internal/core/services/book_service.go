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

// BookService handles catalog management. Availability is owned by the
// loan workflow: this service never flips the flag, it only guards
// destructive operations against active loans.
type BookService struct {
	books repositories.BookRepository
	loans repositories.LoanRepository
}

// NewBookService creates a new book service
func NewBookService(books repositories.BookRepository, loans repositories.LoanRepository) *BookService {
	return &BookService{books: books, loans: loans}
}

// CreateBookInput represents create book input
type CreateBookInput struct {
	Title  string `json:"title" validate:"required"`
	Author string `json:"author" validate:"required"`
	Genre  string `json:"genre,omitempty"`
}

// Create creates a new book, available by default
func (s *BookService) Create(ctx context.Context, input *CreateBookInput) (*models.Book, error) {
	if strings.TrimSpace(input.Title) == "" || strings.TrimSpace(input.Author) == "" {
		return nil, domain.ErrInvalidInput
	}

	book := &models.Book{
		Title:     strings.TrimSpace(input.Title),
		Author:    strings.TrimSpace(input.Author),
		Genre:     strings.TrimSpace(input.Genre),
		Available: true,
	}
	if err := s.books.Create(ctx, book); err != nil {
		return nil, fmt.Errorf("create book: %w", err)
	}
	return book, nil
}

// GetByID gets a book by ID
func (s *BookService) GetByID(ctx context.Context, id uint) (*models.Book, error) {
	book, err := s.books.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrBookNotFound
		}
		return nil, fmt.Errorf("get book: %w", err)
	}
	return book, nil
}

// UpdateBookInput represents update book input
type UpdateBookInput struct {
	Title  *string `json:"title,omitempty"`
	Author *string `json:"author,omitempty"`
	Genre  *string `json:"genre,omitempty"`
}

// Update updates a book's catalog fields. The availability flag is not
// updatable here; it only changes as a loan side effect.
func (s *BookService) Update(ctx context.Context, id uint, input *UpdateBookInput) (*models.Book, error) {
	book, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, domain.ErrInvalidInput
		}
		book.Title = strings.TrimSpace(*input.Title)
	}
	if input.Author != nil {
		if strings.TrimSpace(*input.Author) == "" {
			return nil, domain.ErrInvalidInput
		}
		book.Author = strings.TrimSpace(*input.Author)
	}
	if input.Genre != nil {
		book.Genre = strings.TrimSpace(*input.Genre)
	}

	if err := s.books.Update(ctx, book); err != nil {
		return nil, fmt.Errorf("update book: %w", err)
	}
	return book, nil
}

// Delete removes a book from the catalog. Refused while an active loan
// references it.
func (s *BookService) Delete(ctx context.Context, id uint) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}

	hasActive, err := s.loans.ActiveExistsForBook(ctx, id)
	if err != nil {
		return fmt.Errorf("check active loans: %w", err)
	}
	if hasActive {
		return domain.ErrBookHasActiveLoan
	}

	if err := s.books.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	return nil
}

// List lists books with pagination and optional filters
func (s *BookService) List(ctx context.Context, filter repositories.BookFilter, page, limit int) ([]*models.Book, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	books, total, err := s.books.List(ctx, filter, (page-1)*limit, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list books: %w", err)
	}
	return books, total, nil
}

// Availability reports whether the book can be loaned right now
func (s *BookService) Availability(ctx context.Context, id uint) (bool, error) {
	book, err := s.GetByID(ctx, id)
	if err != nil {
		return false, err
	}

	hasActive, err := s.loans.ActiveExistsForBook(ctx, id)
	if err != nil {
		return false, fmt.Errorf("check active loans: %w", err)
	}
	return book.Available && !hasActive, nil
}

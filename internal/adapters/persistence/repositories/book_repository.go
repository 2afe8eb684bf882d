package repositories

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Franklin-Andres-Rodriguez/biblioteca-sistema/internal/adapters/persistence/models"
)

type bookRepository struct {
	db *gorm.DB
}

// NewBookRepository creates a new book repository
func NewBookRepository(db *gorm.DB) BookRepository {
	return &bookRepository{db: db}
}

// Create creates a new book
func (r *bookRepository) Create(ctx context.Context, book *models.Book) error {
	return dbFor(ctx, r.db).Create(book).Error
}

// GetByID gets a book by ID
func (r *bookRepository) GetByID(ctx context.Context, id uint) (*models.Book, error) {
	var book models.Book
	err := dbFor(ctx, r.db).First(&book, id).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// LockByID gets a book by ID holding a row-level write lock until the
// surrounding transaction commits or rolls back
func (r *bookRepository) LockByID(ctx context.Context, id uint) (*models.Book, error) {
	var book models.Book
	err := dbFor(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&book, id).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// Update updates a book
func (r *bookRepository) Update(ctx context.Context, book *models.Book) error {
	return dbFor(ctx, r.db).Save(book).Error
}

// Delete soft deletes a book
func (r *bookRepository) Delete(ctx context.Context, id uint) error {
	return dbFor(ctx, r.db).Delete(&models.Book{}, id).Error
}

// List lists books with pagination and optional filters
func (r *bookRepository) List(ctx context.Context, filter BookFilter, offset, limit int) ([]*models.Book, int64, error) {
	var books []*models.Book
	var total int64

	query := dbFor(ctx, r.db).Model(&models.Book{})
	if filter.Genre != "" {
		query = query.Where("genre = ?", filter.Genre)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("title LIKE ? OR author LIKE ?", like, like)
	}
	if filter.Available != nil {
		query = query.Where("available = ?", *filter.Available)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("title ASC").
		Offset(offset).
		Limit(limit).
		Find(&books).Error

	return books, total, err
}

package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/Franklin-Andres-Rodriguez/biblioteca-sistema/internal/adapters/persistence/models"
)

type borrowerRepository struct {
	db *gorm.DB
}

// NewBorrowerRepository creates a new borrower repository
func NewBorrowerRepository(db *gorm.DB) BorrowerRepository {
	return &borrowerRepository{db: db}
}

// Create creates a new borrower
func (r *borrowerRepository) Create(ctx context.Context, borrower *models.Borrower) error {
	return dbFor(ctx, r.db).Create(borrower).Error
}

// GetByID gets a borrower by ID
func (r *borrowerRepository) GetByID(ctx context.Context, id uint) (*models.Borrower, error) {
	var borrower models.Borrower
	err := dbFor(ctx, r.db).First(&borrower, id).Error
	if err != nil {
		return nil, err
	}
	return &borrower, nil
}

// GetByEmail gets a borrower by email
func (r *borrowerRepository) GetByEmail(ctx context.Context, email string) (*models.Borrower, error) {
	var borrower models.Borrower
	err := dbFor(ctx, r.db).Where("email = ?", email).First(&borrower).Error
	if err != nil {
		return nil, err
	}
	return &borrower, nil
}

// ExistsByEmail checks if email is already registered
func (r *borrowerRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := dbFor(ctx, r.db).
		Model(&models.Borrower{}).
		Where("email = ?", email).
		Count(&count).Error
	return count > 0, err
}

// Update updates a borrower
func (r *borrowerRepository) Update(ctx context.Context, borrower *models.Borrower) error {
	return dbFor(ctx, r.db).Save(borrower).Error
}

// Delete soft deletes a borrower
func (r *borrowerRepository) Delete(ctx context.Context, id uint) error {
	return dbFor(ctx, r.db).Delete(&models.Borrower{}, id).Error
}

// List lists borrowers with pagination
func (r *borrowerRepository) List(ctx context.Context, offset, limit int) ([]*models.Borrower, int64, error) {
	var borrowers []*models.Borrower
	var total int64

	if err := dbFor(ctx, r.db).Model(&models.Borrower{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := dbFor(ctx, r.db).
		Order("name ASC").
		Offset(offset).
		Limit(limit).
		Find(&borrowers).Error

	return borrowers, total, err
}

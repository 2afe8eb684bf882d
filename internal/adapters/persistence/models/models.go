package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/Franklin-Andres-Rodriguez/biblioteca-sistema/internal/core/domain"
)

// ============================================================
// Catalog
// ============================================================

// Book represents books table
type Book struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Title     string         `gorm:"size:255;not null;index" json:"title"`
	Author    string         `gorm:"size:255;not null;index" json:"author"`
	Genre     string         `gorm:"size:100;index" json:"genre"`
	Available bool           `gorm:"not null;default:true;index" json:"available"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Book) TableName() string {
	return "books"
}

// ToDomain maps the row to the domain entity
func (b *Book) ToDomain() *domain.Book {
	return &domain.Book{
		ID:        b.ID,
		Title:     b.Title,
		Author:    b.Author,
		Genre:     b.Genre,
		Available: b.Available,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

// BookResponse DTO
type BookResponse struct {
	ID        uint      `json:"id"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	Genre     string    `json:"genre"`
	Available bool      `json:"available"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b *Book) ToResponse() *BookResponse {
	return &BookResponse{
		ID:        b.ID,
		Title:     b.Title,
		Author:    b.Author,
		Genre:     b.Genre,
		Available: b.Available,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

// ============================================================
// Borrowers
// ============================================================

// Borrower represents borrowers table
type Borrower struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"size:255;not null" json:"name"`
	Email     string         `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Phone     string         `gorm:"size:30" json:"phone"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Borrower) TableName() string {
	return "borrowers"
}

// BorrowerResponse DTO
type BorrowerResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b *Borrower) ToResponse() *BorrowerResponse {
	return &BorrowerResponse{
		ID:        b.ID,
		Name:      b.Name,
		Email:     b.Email,
		Phone:     b.Phone,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

// ============================================================
// Loan Ledger
// ============================================================

// Loan represents loans table. The ledger stores the boolean+two-dates
// representation: `returned` plus loan/due/returned dates. Status is never
// stored; it is derived on read by the policy engine.
type Loan struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Code         string         `gorm:"type:char(36);uniqueIndex;not null" json:"code"`
	BookID       uint           `gorm:"not null;index" json:"book_id"`
	BorrowerID   uint           `gorm:"not null;index" json:"borrower_id"`
	LoanDate     time.Time      `gorm:"type:date;not null" json:"loan_date"`
	DueDate      time.Time      `gorm:"type:date;not null;index" json:"due_date"`
	ReturnedDate *time.Time     `gorm:"type:date" json:"returned_date"`
	Returned     bool           `gorm:"not null;default:false;index" json:"returned"`
	CreatedAt    time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Book     *Book     `gorm:"foreignKey:BookID" json:"book,omitempty"`
	Borrower *Borrower `gorm:"foreignKey:BorrowerID" json:"borrower,omitempty"`
}

func (Loan) TableName() string {
	return "loans"
}

// ToDomain maps the row to the domain entity
func (l *Loan) ToDomain() *domain.Loan {
	return &domain.Loan{
		ID:           l.ID,
		Code:         l.Code,
		BookID:       l.BookID,
		BorrowerID:   l.BorrowerID,
		LoanDate:     l.LoanDate,
		DueDate:      l.DueDate,
		ReturnedDate: l.ReturnedDate,
		Returned:     l.Returned,
		CreatedAt:    l.CreatedAt,
		UpdatedAt:    l.UpdatedAt,
	}
}

// LoanResponse DTO. Status and the day counts are computed by the service
// through the policy engine before the response leaves the core.
type LoanResponse struct {
	ID           uint              `json:"id"`
	Code         string            `json:"code"`
	BookID       uint              `json:"book_id"`
	BookTitle    string            `json:"book_title,omitempty"`
	BorrowerID   uint              `json:"borrower_id"`
	BorrowerName string            `json:"borrower_name,omitempty"`
	LoanDate     string            `json:"loan_date"`
	DueDate      string            `json:"due_date"`
	ReturnedDate *string           `json:"returned_date"`
	Returned     bool              `json:"returned"`
	Status       domain.LoanStatus `json:"status"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

const dateLayout = "2006-01-02"

func (l *Loan) ToResponse(status domain.LoanStatus) *LoanResponse {
	resp := &LoanResponse{
		ID:         l.ID,
		Code:       l.Code,
		BookID:     l.BookID,
		BorrowerID: l.BorrowerID,
		LoanDate:   l.LoanDate.Format(dateLayout),
		DueDate:    l.DueDate.Format(dateLayout),
		Returned:   l.Returned,
		Status:     status,
		CreatedAt:  l.CreatedAt,
		UpdatedAt:  l.UpdatedAt,
	}

	if l.ReturnedDate != nil {
		s := l.ReturnedDate.Format(dateLayout)
		resp.ReturnedDate = &s
	}
	if l.Book != nil {
		resp.BookTitle = l.Book.Title
	}
	if l.Borrower != nil {
		resp.BorrowerName = l.Borrower.Name
	}

	return resp
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&Book{},
		&Borrower{},
		&Loan{},
	)
}

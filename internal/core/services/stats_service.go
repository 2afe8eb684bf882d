package services

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/Franklin-Andres-Rodriguez/biblioteca-sistema/internal/adapters/persistence/models"
	"github.com/Franklin-Andres-Rodriguez/biblioteca-sistema/internal/core/domain"
	"github.com/Franklin-Andres-Rodriguez/biblioteca-sistema/internal/core/policy"
)

// StatsService aggregates dashboard numbers. Status buckets use the same
// policy derivation as every other endpoint so the dashboard can never
// drift from the loan detail views.
type StatsService struct {
	db     *gorm.DB
	policy *policy.Engine
	now    func() time.Time
}

// NewStatsService creates a new stats service
func NewStatsService(db *gorm.DB, engine *policy.Engine) *StatsService {
	return &StatsService{db: db, policy: engine, now: time.Now}
}

// DashboardStats represents the dashboard payload
type DashboardStats struct {
	Books     BookStats `json:"books"`
	Borrowers int64     `json:"borrowers"`
	Loans     LoanStats `json:"loans"`
}

// BookStats represents catalog counts
type BookStats struct {
	Total     int64 `json:"total"`
	Available int64 `json:"available"`
	OnLoan    int64 `json:"on_loan"`
}

// LoanStats represents ledger counts bucketed by derived status
type LoanStats struct {
	Total           int64 `json:"total"`
	Active          int64 `json:"active"`
	DueSoon         int64 `json:"due_soon"`
	Overdue         int64 `json:"overdue"`
	CriticalOverdue int64 `json:"critical_overdue"`
	Completed       int64 `json:"completed"`
}

// Dashboard computes the full dashboard
func (s *StatsService) Dashboard(ctx context.Context) (*DashboardStats, error) {
	stats := &DashboardStats{}
	db := s.db.WithContext(ctx)

	if err := db.Model(&models.Book{}).Count(&stats.Books.Total).Error; err != nil {
		return nil, fmt.Errorf("count books: %w", err)
	}
	if err := db.Model(&models.Book{}).Where("available = ?", true).Count(&stats.Books.Available).Error; err != nil {
		return nil, fmt.Errorf("count available books: %w", err)
	}
	stats.Books.OnLoan = stats.Books.Total - stats.Books.Available

	if err := db.Model(&models.Borrower{}).Count(&stats.Borrowers).Error; err != nil {
		return nil, fmt.Errorf("count borrowers: %w", err)
	}

	var open []*models.Loan
	if err := db.Where("returned = ?", false).Find(&open).Error; err != nil {
		return nil, fmt.Errorf("load open loans: %w", err)
	}
	if err := db.Model(&models.Loan{}).Count(&stats.Loans.Total).Error; err != nil {
		return nil, fmt.Errorf("count loans: %w", err)
	}
	stats.Loans.Completed = stats.Loans.Total - int64(len(open))

	today := policy.DateOnly(s.now())
	for _, loan := range open {
		switch s.policy.DeriveStatus(loan.ToDomain(), today) {
		case domain.StatusDueSoon:
			stats.Loans.DueSoon++
		case domain.StatusOverdue:
			stats.Loans.Overdue++
		case domain.StatusCriticalOverdue:
			stats.Loans.CriticalOverdue++
		default:
			stats.Loans.Active++
		}
	}

	return stats, nil
}

package domain

import "time"

// LoanStatus is the derived state of a loan. It is never stored; every
// read recomputes it from the loan's dates.
type LoanStatus string

const (
	StatusActive          LoanStatus = "active"
	StatusDueSoon         LoanStatus = "due_soon"
	StatusOverdue         LoanStatus = "overdue"
	StatusCriticalOverdue LoanStatus = "critical_overdue"
	StatusCompleted       LoanStatus = "completed"
)

// Urgency ranks how far past due an overdue loan is.
type Urgency string

const (
	UrgencyLow      Urgency = "low"
	UrgencyMedium   Urgency = "medium"
	UrgencyHigh     Urgency = "high"
	UrgencyCritical Urgency = "critical"
)

// Book represents a catalog entry in the domain layer
type Book struct {
	ID        uint
	Title     string
	Author    string
	Genre     string
	Available bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Borrower represents a registered borrower in the domain layer
type Borrower struct {
	ID        uint
	Name      string
	Email     string
	Phone     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Loan represents one checkout in the domain layer. Returned loans are
// terminal: no field mutates after ReturnedDate is set.
type Loan struct {
	ID           uint
	Code         string
	BookID       uint
	BorrowerID   uint
	LoanDate     time.Time
	DueDate      time.Time
	ReturnedDate *time.Time
	Returned     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

package services

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// ReminderService runs the daily overdue sweep (08:30) and logs a summary
// per overdue loan so the library staff has a morning worklist.
type ReminderService struct {
	loanService *LoanService
	cron        *cron.Cron
}

// NewReminderService creates a new reminder service
func NewReminderService(loanService *LoanService) *ReminderService {
	return &ReminderService{
		loanService: loanService,
		cron:        cron.New(),
	}
}

// Start schedules the daily sweep
func (s *ReminderService) Start() {
	s.cron.AddFunc("30 8 * * *", s.runOverdueSweep)
	s.cron.Start()
	log.Println("✅ ReminderService started (daily overdue sweep at 08:30)")
}

// Stop stops the scheduler, waiting for a running sweep to finish
func (s *ReminderService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("🛑 ReminderService stopped")
}

func (s *ReminderService) runOverdueSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	overdue, err := s.loanService.ListOverdueLoans(ctx)
	if err != nil {
		log.Printf("❌ Overdue sweep failed: %v", err)
		return
	}
	if len(overdue) == 0 {
		log.Println("📅 Overdue sweep: no overdue loans")
		return
	}

	for _, item := range overdue {
		title := ""
		if item.Loan.Book != nil {
			title = item.Loan.Book.Title
		}
		borrower := ""
		if item.Loan.Borrower != nil {
			borrower = item.Loan.Borrower.Name
		}
		log.Printf("⚠️ Overdue [%s] loan %s: %q held by %s, %d day(s) late",
			item.Urgency, item.Loan.Code, title, borrower, item.DaysOverdue)
	}
	log.Printf("📅 Overdue sweep: %d loan(s) overdue", len(overdue))
}

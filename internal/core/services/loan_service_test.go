package services_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Franklin-Andres-Rodriguez/biblioteca-sistema/internal/adapters/persistence/models"
	"github.com/Franklin-Andres-Rodriguez/biblioteca-sistema/internal/adapters/persistence/repositories"
	"github.com/Franklin-Andres-Rodriguez/biblioteca-sistema/internal/core/domain"
	"github.com/Franklin-Andres-Rodriguez/biblioteca-sistema/internal/core/policy"
	"github.com/Franklin-Andres-Rodriguez/biblioteca-sistema/internal/core/services"
)

var testToday = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

// ============================================================
// In-memory fakes. Transactions serialize on one mutex, which models the
// book-row write lock: two "transactions" never interleave. A failed
// transaction restores the pre-transaction snapshot, which models
// rollback.
// ============================================================

type memStore struct {
	mu        sync.Mutex
	books     map[uint]*models.Book
	borrowers map[uint]*models.Borrower
	loans     map[uint]*models.Loan
	nextBook  uint
	nextBorr  uint
	nextLoan  uint
}

func newMemStore() *memStore {
	return &memStore{
		books:     map[uint]*models.Book{},
		borrowers: map[uint]*models.Borrower{},
		loans:     map[uint]*models.Loan{},
	}
}

type txMarker struct{}

// lock takes the store mutex unless the context already runs inside a
// fake transaction (which holds it for its whole scope).
func (s *memStore) lock(ctx context.Context) func() {
	if ctx.Value(txMarker{}) != nil {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func copyLoan(l *models.Loan) *models.Loan {
	c := *l
	if l.ReturnedDate != nil {
		d := *l.ReturnedDate
		c.ReturnedDate = &d
	}
	c.Book = nil
	c.Borrower = nil
	return &c
}

func (s *memStore) snapshot() (books map[uint]*models.Book, borrowers map[uint]*models.Borrower, loans map[uint]*models.Loan) {
	books = make(map[uint]*models.Book, len(s.books))
	for id, b := range s.books {
		c := *b
		books[id] = &c
	}
	borrowers = make(map[uint]*models.Borrower, len(s.borrowers))
	for id, b := range s.borrowers {
		c := *b
		borrowers[id] = &c
	}
	loans = make(map[uint]*models.Loan, len(s.loans))
	for id, l := range s.loans {
		loans[id] = copyLoan(l)
	}
	return books, borrowers, loans
}

type memTxManager struct{ store *memStore }

func (m *memTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	books, borrowers, loans := m.store.snapshot()
	err := fn(context.WithValue(ctx, txMarker{}, struct{}{}))
	if err != nil {
		m.store.books = books
		m.store.borrowers = borrowers
		m.store.loans = loans
	}
	return err
}

type memBookRepo struct{ store *memStore }

func (r *memBookRepo) Create(ctx context.Context, book *models.Book) error {
	defer r.store.lock(ctx)()
	r.store.nextBook++
	book.ID = r.store.nextBook
	c := *book
	r.store.books[book.ID] = &c
	return nil
}

func (r *memBookRepo) GetByID(ctx context.Context, id uint) (*models.Book, error) {
	defer r.store.lock(ctx)()
	b, ok := r.store.books[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	c := *b
	return &c, nil
}

func (r *memBookRepo) LockByID(ctx context.Context, id uint) (*models.Book, error) {
	return r.GetByID(ctx, id)
}

func (r *memBookRepo) Update(ctx context.Context, book *models.Book) error {
	defer r.store.lock(ctx)()
	if _, ok := r.store.books[book.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	c := *book
	r.store.books[book.ID] = &c
	return nil
}

func (r *memBookRepo) Delete(ctx context.Context, id uint) error {
	defer r.store.lock(ctx)()
	delete(r.store.books, id)
	return nil
}

func (r *memBookRepo) List(ctx context.Context, filter repositories.BookFilter, offset, limit int) ([]*models.Book, int64, error) {
	defer r.store.lock(ctx)()
	var out []*models.Book
	for _, b := range r.store.books {
		c := *b
		out = append(out, &c)
	}
	return out, int64(len(out)), nil
}

type memBorrowerRepo struct{ store *memStore }

func (r *memBorrowerRepo) Create(ctx context.Context, borrower *models.Borrower) error {
	defer r.store.lock(ctx)()
	r.store.nextBorr++
	borrower.ID = r.store.nextBorr
	c := *borrower
	r.store.borrowers[borrower.ID] = &c
	return nil
}

func (r *memBorrowerRepo) GetByID(ctx context.Context, id uint) (*models.Borrower, error) {
	defer r.store.lock(ctx)()
	b, ok := r.store.borrowers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	c := *b
	return &c, nil
}

func (r *memBorrowerRepo) GetByEmail(ctx context.Context, email string) (*models.Borrower, error) {
	defer r.store.lock(ctx)()
	for _, b := range r.store.borrowers {
		if b.Email == email {
			c := *b
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memBorrowerRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	defer r.store.lock(ctx)()
	for _, b := range r.store.borrowers {
		if b.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *memBorrowerRepo) Update(ctx context.Context, borrower *models.Borrower) error {
	defer r.store.lock(ctx)()
	c := *borrower
	r.store.borrowers[borrower.ID] = &c
	return nil
}

func (r *memBorrowerRepo) Delete(ctx context.Context, id uint) error {
	defer r.store.lock(ctx)()
	delete(r.store.borrowers, id)
	return nil
}

func (r *memBorrowerRepo) List(ctx context.Context, offset, limit int) ([]*models.Borrower, int64, error) {
	defer r.store.lock(ctx)()
	var out []*models.Borrower
	for _, b := range r.store.borrowers {
		c := *b
		out = append(out, &c)
	}
	return out, int64(len(out)), nil
}

type memLoanRepo struct{ store *memStore }

func (r *memLoanRepo) Create(ctx context.Context, loan *models.Loan) error {
	defer r.store.lock(ctx)()
	r.store.nextLoan++
	loan.ID = r.store.nextLoan
	r.store.loans[loan.ID] = copyLoan(loan)
	return nil
}

func (r *memLoanRepo) hydrate(ctx context.Context, loan *models.Loan) *models.Loan {
	c := copyLoan(loan)
	if b, ok := r.store.books[c.BookID]; ok {
		bc := *b
		c.Book = &bc
	}
	if b, ok := r.store.borrowers[c.BorrowerID]; ok {
		bc := *b
		c.Borrower = &bc
	}
	return c
}

func (r *memLoanRepo) GetByID(ctx context.Context, id uint) (*models.Loan, error) {
	defer r.store.lock(ctx)()
	l, ok := r.store.loans[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return r.hydrate(ctx, l), nil
}

func (r *memLoanRepo) LockByID(ctx context.Context, id uint) (*models.Loan, error) {
	return r.GetByID(ctx, id)
}

func (r *memLoanRepo) Update(ctx context.Context, loan *models.Loan) error {
	defer r.store.lock(ctx)()
	if _, ok := r.store.loans[loan.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.store.loans[loan.ID] = copyLoan(loan)
	return nil
}

func (r *memLoanRepo) Delete(ctx context.Context, id uint) error {
	defer r.store.lock(ctx)()
	delete(r.store.loans, id)
	return nil
}

func (r *memLoanRepo) List(ctx context.Context, offset, limit int) ([]*models.Loan, int64, error) {
	defer r.store.lock(ctx)()
	var out []*models.Loan
	for _, l := range r.store.loans {
		out = append(out, r.hydrate(ctx, l))
	}
	return out, int64(len(out)), nil
}

func (r *memLoanRepo) ListByBorrower(ctx context.Context, borrowerID uint) ([]*models.Loan, error) {
	defer r.store.lock(ctx)()
	var out []*models.Loan
	for _, l := range r.store.loans {
		if l.BorrowerID == borrowerID {
			out = append(out, r.hydrate(ctx, l))
		}
	}
	return out, nil
}

func (r *memLoanRepo) ListOverdue(ctx context.Context, today time.Time) ([]*models.Loan, error) {
	defer r.store.lock(ctx)()
	var out []*models.Loan
	for _, l := range r.store.loans {
		if !l.Returned && l.DueDate.Before(today) {
			out = append(out, r.hydrate(ctx, l))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueDate.Before(out[j].DueDate) })
	return out, nil
}

func (r *memLoanRepo) ActiveExistsForBook(ctx context.Context, bookID uint) (bool, error) {
	defer r.store.lock(ctx)()
	for _, l := range r.store.loans {
		if l.BookID == bookID && !l.Returned {
			return true, nil
		}
	}
	return false, nil
}

func (r *memLoanRepo) CountActiveByBorrower(ctx context.Context, borrowerID uint) (int64, error) {
	defer r.store.lock(ctx)()
	var n int64
	for _, l := range r.store.loans {
		if l.BorrowerID == borrowerID && !l.Returned {
			n++
		}
	}
	return n, nil
}

func (r *memLoanRepo) CountOverdueByBorrower(ctx context.Context, borrowerID uint, today time.Time) (int64, error) {
	defer r.store.lock(ctx)()
	var n int64
	for _, l := range r.store.loans {
		if l.BorrowerID == borrowerID && !l.Returned && l.DueDate.Before(today) {
			n++
		}
	}
	return n, nil
}

// ============================================================
// Fixture
// ============================================================

type fixture struct {
	store *memStore
	svc   *services.LoanService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := newMemStore()
	svc := services.NewLoanService(
		&memTxManager{store: store},
		&memLoanRepo{store: store},
		&memBookRepo{store: store},
		&memBorrowerRepo{store: store},
		policy.NewEngine(policy.DefaultConfig()),
		time.Second,
	)
	svc.SetClock(func() time.Time { return testToday })
	return &fixture{store: store, svc: svc}
}

func (f *fixture) addBook(title string) uint {
	f.store.nextBook++
	id := f.store.nextBook
	f.store.books[id] = &models.Book{ID: id, Title: title, Author: "Author", Available: true}
	return id
}

func (f *fixture) addBorrower(name string) uint {
	f.store.nextBorr++
	id := f.store.nextBorr
	f.store.borrowers[id] = &models.Borrower{ID: id, Name: name, Email: name + "@example.com"}
	return id
}

// addLoan seeds an active loan directly in the ledger and marks the book
// checked out, bypassing service validation so past due dates can be set.
func (f *fixture) addLoan(bookID, borrowerID uint, due time.Time) uint {
	f.store.nextLoan++
	id := f.store.nextLoan
	f.store.loans[id] = &models.Loan{
		ID:         id,
		Code:       uuid.NewString(),
		BookID:     bookID,
		BorrowerID: borrowerID,
		LoanDate:   due.AddDate(0, 0, -14),
		DueDate:    due,
	}
	f.store.books[bookID].Available = false
	return id
}

// ============================================================
// CreateLoan
// ============================================================

func TestCreateLoan_Succeeds(t *testing.T) {
	f := newFixture(t)
	bookID := f.addBook("El Quijote")
	borrowerID := f.addBorrower("maria")

	loan, err := f.svc.CreateLoan(context.Background(), &services.CreateLoanInput{
		BookID:     bookID,
		BorrowerID: borrowerID,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, loan.Code)
	assert.Equal(t, testToday, loan.LoanDate)
	assert.Equal(t, testToday.AddDate(0, 0, 14), loan.DueDate, "default duration is 14 days")
	assert.False(t, loan.Returned)
	assert.Nil(t, loan.ReturnedDate)
	assert.False(t, f.store.books[bookID].Available, "book flips to unavailable")
}

func TestCreateLoan_CustomDuration(t *testing.T) {
	f := newFixture(t)
	bookID := f.addBook("Rayuela")
	borrowerID := f.addBorrower("jorge")

	loan, err := f.svc.CreateLoan(context.Background(), &services.CreateLoanInput{
		BookID:       bookID,
		BorrowerID:   borrowerID,
		DurationDays: 7,
	})
	require.NoError(t, err)
	assert.Equal(t, testToday.AddDate(0, 0, 7), loan.DueDate)
}

func TestCreateLoan_BookUnavailable(t *testing.T) {
	f := newFixture(t)
	bookID := f.addBook("Ficciones")
	u1 := f.addBorrower("ana")
	u2 := f.addBorrower("luis")

	_, err := f.svc.CreateLoan(context.Background(), &services.CreateLoanInput{BookID: bookID, BorrowerID: u1})
	require.NoError(t, err)

	_, err = f.svc.CreateLoan(context.Background(), &services.CreateLoanInput{BookID: bookID, BorrowerID: u2})
	assert.ErrorIs(t, err, domain.ErrBookUnavailable, "whoever the borrower, a checked-out book is rejected")
}

func TestCreateLoan_LoanLimit(t *testing.T) {
	f := newFixture(t)
	borrowerID := f.addBorrower("carmen")

	for i := 0; i < 2; i++ {
		bookID := f.addBook("Tomo")
		_, err := f.svc.CreateLoan(context.Background(), &services.CreateLoanInput{BookID: bookID, BorrowerID: borrowerID})
		require.NoError(t, err)
	}

	// Third loan still fits under the limit of 3.
	thirdBook := f.addBook("Tercero")
	_, err := f.svc.CreateLoan(context.Background(), &services.CreateLoanInput{BookID: thirdBook, BorrowerID: borrowerID})
	require.NoError(t, err)

	fourthBook := f.addBook("Cuarto")
	_, err = f.svc.CreateLoan(context.Background(), &services.CreateLoanInput{BookID: fourthBook, BorrowerID: borrowerID})
	assert.ErrorIs(t, err, domain.ErrLoanLimitReached)
}

func TestCreateLoan_BorrowerHasOverdueLoans(t *testing.T) {
	f := newFixture(t)
	borrowerID := f.addBorrower("pedro")
	overdueBook := f.addBook("Atrasado")
	f.addLoan(overdueBook, borrowerID, testToday.AddDate(0, 0, -5))

	freshBook := f.addBook("Disponible")
	_, err := f.svc.CreateLoan(context.Background(), &services.CreateLoanInput{BookID: freshBook, BorrowerID: borrowerID})
	assert.ErrorIs(t, err, domain.ErrBorrowerHasOverdueLoans,
		"an overdue loan blocks new loans even under the count limit")
}

func TestCreateLoan_NotFound(t *testing.T) {
	f := newFixture(t)
	bookID := f.addBook("Existe")
	borrowerID := f.addBorrower("rosa")

	_, err := f.svc.CreateLoan(context.Background(), &services.CreateLoanInput{BookID: 999, BorrowerID: borrowerID})
	assert.ErrorIs(t, err, domain.ErrBookNotFound)

	_, err = f.svc.CreateLoan(context.Background(), &services.CreateLoanInput{BookID: bookID, BorrowerID: 999})
	assert.ErrorIs(t, err, domain.ErrBorrowerNotFound)
}

func TestCreateLoan_InvalidDates(t *testing.T) {
	f := newFixture(t)
	bookID := f.addBook("Fechas")
	borrowerID := f.addBorrower("ines")

	past := testToday.AddDate(0, 0, -1)
	_, err := f.svc.CreateLoan(context.Background(), &services.CreateLoanInput{
		BookID: bookID, BorrowerID: borrowerID, LoanDate: &past,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidDateRange)

	_, err = f.svc.CreateLoan(context.Background(), &services.CreateLoanInput{
		BookID: bookID, BorrowerID: borrowerID, DurationDays: 31,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidDateRange)

	assert.True(t, f.store.books[bookID].Available, "rejections leave the book untouched")
	assert.Empty(t, f.store.loans)
}

func TestCreateLoan_RejectionLeavesNoPartialState(t *testing.T) {
	f := newFixture(t)
	borrowerID := f.addBorrower("saul")
	overdueBook := f.addBook("Atrasado")
	f.addLoan(overdueBook, borrowerID, testToday.AddDate(0, 0, -10))

	target := f.addBook("Objetivo")
	loansBefore := len(f.store.loans)

	_, err := f.svc.CreateLoan(context.Background(), &services.CreateLoanInput{BookID: target, BorrowerID: borrowerID})
	require.Error(t, err)

	assert.Len(t, f.store.loans, loansBefore, "no loan row written")
	assert.True(t, f.store.books[target].Available, "availability flag not flipped")
}

func TestCreateLoan_ConcurrentSameBook(t *testing.T) {
	f := newFixture(t)
	bookID := f.addBook("Conflictivo")

	const n = 8
	borrowers := make([]uint, n)
	for i := range borrowers {
		borrowers[i] = f.addBorrower(fmt.Sprintf("user%d", i))
	}

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.CreateLoan(context.Background(), &services.CreateLoanInput{
				BookID:     bookID,
				BorrowerID: borrowers[i],
			})
		}(i)
	}
	wg.Wait()

	var won, rejected int
	for _, err := range errs {
		switch {
		case err == nil:
			won++
		case errors.Is(err, domain.ErrBookUnavailable):
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, won, "exactly one concurrent create wins")
	assert.Equal(t, n-1, rejected)
	assert.False(t, f.store.books[bookID].Available)
}

// ============================================================
// ReturnLoan
// ============================================================

func TestReturnLoan_Succeeds(t *testing.T) {
	f := newFixture(t)
	bookID := f.addBook("Devuelto")
	borrowerID := f.addBorrower("elena")

	loan, err := f.svc.CreateLoan(context.Background(), &services.CreateLoanInput{BookID: bookID, BorrowerID: borrowerID})
	require.NoError(t, err)

	result, err := f.svc.ReturnLoan(context.Background(), loan.ID)
	require.NoError(t, err)

	assert.True(t, result.Loan.Returned)
	require.NotNil(t, result.Loan.ReturnedDate)
	assert.Equal(t, testToday, *result.Loan.ReturnedDate)
	assert.True(t, result.OnTime)
	assert.Zero(t, result.DaysLate)
	assert.True(t, f.store.books[bookID].Available, "book released on return")

	detail, err := f.svc.LoanStatusReport(context.Background(), loan.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, detail.Status)
}

func TestReturnLoan_Late(t *testing.T) {
	f := newFixture(t)
	bookID := f.addBook("Tarde")
	borrowerID := f.addBorrower("oscar")
	loanID := f.addLoan(bookID, borrowerID, testToday.AddDate(0, 0, -6))

	result, err := f.svc.ReturnLoan(context.Background(), loanID)
	require.NoError(t, err)

	assert.False(t, result.OnTime)
	assert.Equal(t, 6, result.DaysLate)
	assert.True(t, f.store.books[bookID].Available)
}

func TestReturnLoan_AlreadyReturned(t *testing.T) {
	f := newFixture(t)
	bookID := f.addBook("Doble")
	borrowerID := f.addBorrower("irene")

	loan, err := f.svc.CreateLoan(context.Background(), &services.CreateLoanInput{BookID: bookID, BorrowerID: borrowerID})
	require.NoError(t, err)

	first, err := f.svc.ReturnLoan(context.Background(), loan.ID)
	require.NoError(t, err)
	firstDate := *first.Loan.ReturnedDate

	_, err = f.svc.ReturnLoan(context.Background(), loan.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyReturned)

	stored := f.store.loans[loan.ID]
	require.NotNil(t, stored.ReturnedDate)
	assert.Equal(t, firstDate, *stored.ReturnedDate, "returned date never mutates twice")
}

func TestReturnLoan_NotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.ReturnLoan(context.Background(), 42)
	assert.ErrorIs(t, err, domain.ErrLoanNotFound)
}

// ============================================================
// Reads
// ============================================================

func TestListOverdueLoans(t *testing.T) {
	f := newFixture(t)
	u := f.addBorrower("lista")

	b1 := f.addBook("Poco")
	b2 := f.addBook("Mucho")
	b3 := f.addBook("Critico")
	f.addLoan(b1, u, testToday.AddDate(0, 0, -2))
	f.addLoan(b2, u, testToday.AddDate(0, 0, -10))
	f.addLoan(b3, u, testToday.AddDate(0, 0, -20))

	onTimeBook := f.addBook("AlDia")
	f.addLoan(onTimeBook, u, testToday.AddDate(0, 0, 5))

	overdue, err := f.svc.ListOverdueLoans(context.Background())
	require.NoError(t, err)
	require.Len(t, overdue, 3, "loans not yet due are excluded")

	assert.Equal(t, 20, overdue[0].DaysOverdue, "most overdue first")
	assert.Equal(t, 10, overdue[1].DaysOverdue)
	assert.Equal(t, 2, overdue[2].DaysOverdue)

	assert.Equal(t, domain.UrgencyCritical, overdue[0].Urgency)
	assert.Equal(t, domain.UrgencyHigh, overdue[1].Urgency)
	assert.Equal(t, domain.UrgencyLow, overdue[2].Urgency)
}

func TestLoanStatusReport(t *testing.T) {
	f := newFixture(t)
	bookID := f.addBook("Informe")
	borrowerID := f.addBorrower("hugo")
	loanID := f.addLoan(bookID, borrowerID, testToday.AddDate(0, 0, -8))

	detail, err := f.svc.LoanStatusReport(context.Background(), loanID)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusCriticalOverdue, detail.Status)
	assert.Equal(t, 8, detail.DaysOverdue)
	require.NotNil(t, detail.DaysRemaining)
	assert.Equal(t, -8, *detail.DaysRemaining)
	assert.Equal(t, 14, detail.DurationDays)

	_, err = f.svc.LoanStatusReport(context.Background(), 999)
	assert.ErrorIs(t, err, domain.ErrLoanNotFound)
}

func TestBorrowerLoanCounts(t *testing.T) {
	f := newFixture(t)
	u := f.addBorrower("contado")

	f.addLoan(f.addBook("A"), u, testToday.AddDate(0, 0, 3))
	f.addLoan(f.addBook("B"), u, testToday.AddDate(0, 0, -2))

	active, overdue, err := f.svc.BorrowerLoanCounts(context.Background(), u)
	require.NoError(t, err)
	assert.Equal(t, int64(2), active)
	assert.Equal(t, int64(1), overdue)
}

func TestBookHasActiveLoan(t *testing.T) {
	f := newFixture(t)
	u := f.addBorrower("guardia")
	bookID := f.addBook("Guardado")

	has, err := f.svc.BookHasActiveLoan(context.Background(), bookID)
	require.NoError(t, err)
	assert.False(t, has)

	loanID := f.addLoan(bookID, u, testToday.AddDate(0, 0, 7))
	has, err = f.svc.BookHasActiveLoan(context.Background(), bookID)
	require.NoError(t, err)
	assert.True(t, has)

	_, err = f.svc.ReturnLoan(context.Background(), loanID)
	require.NoError(t, err)
	has, err = f.svc.BookHasActiveLoan(context.Background(), bookID)
	require.NoError(t, err)
	assert.False(t, has)
}

// ============================================================
// DeleteLoan (administrative override)
// ============================================================

func TestDeleteLoan_ActiveReleasesBook(t *testing.T) {
	f := newFixture(t)
	bookID := f.addBook("Borrado")
	borrowerID := f.addBorrower("admin")
	loanID := f.addLoan(bookID, borrowerID, testToday.AddDate(0, 0, 7))

	require.NoError(t, f.svc.DeleteLoan(context.Background(), loanID))

	assert.True(t, f.store.books[bookID].Available, "deleting an active loan releases the book")
	assert.NotContains(t, f.store.loans, loanID)
}

func TestDeleteLoan_NotFound(t *testing.T) {
	f := newFixture(t)
	assert.ErrorIs(t, f.svc.DeleteLoan(context.Background(), 7), domain.ErrLoanNotFound)
}

// ============================================================
// Invariant sweep: returned flag and returned date always agree, and the
// availability flag always mirrors the ledger.
// ============================================================

func TestInvariants_AfterMixedWorkload(t *testing.T) {
	f := newFixture(t)
	u1 := f.addBorrower("w1")
	u2 := f.addBorrower("w2")

	var loanIDs []uint
	for i := 0; i < 4; i++ {
		bookID := f.addBook(fmt.Sprintf("Libro%d", i))
		borrower := u1
		if i%2 == 1 {
			borrower = u2
		}
		loan, err := f.svc.CreateLoan(context.Background(), &services.CreateLoanInput{BookID: bookID, BorrowerID: borrower})
		require.NoError(t, err)
		loanIDs = append(loanIDs, loan.ID)
	}

	_, err := f.svc.ReturnLoan(context.Background(), loanIDs[0])
	require.NoError(t, err)
	_, err = f.svc.ReturnLoan(context.Background(), loanIDs[2])
	require.NoError(t, err)

	for id, loan := range f.store.loans {
		assert.Equal(t, loan.Returned, loan.ReturnedDate != nil,
			"loan %d: returned flag and returned date must agree", id)
	}
	for id, book := range f.store.books {
		active := false
		for _, loan := range f.store.loans {
			if loan.BookID == id && !loan.Returned {
				active = true
			}
		}
		assert.Equal(t, !active, book.Available,
			"book %d: available must mirror the ledger", id)
	}
}

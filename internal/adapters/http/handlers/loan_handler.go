package handlers

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Franklin-Andres-Rodriguez/biblioteca-sistema/internal/core/domain"
	"github.com/Franklin-Andres-Rodriguez/biblioteca-sistema/internal/core/services"
	"github.com/Franklin-Andres-Rodriguez/biblioteca-sistema/internal/pkg/pagination"
	"github.com/Franklin-Andres-Rodriguez/biblioteca-sistema/internal/pkg/response"
)

const dateLayout = "2006-01-02"

// LoanHandler handles loan endpoints
type LoanHandler struct {
	loanService *services.LoanService
}

// NewLoanHandler creates a new loan handler
func NewLoanHandler(loanService *services.LoanService) *LoanHandler {
	return &LoanHandler{
		loanService: loanService,
	}
}

// detailResponse flattens a loan detail into the wire shape
func detailResponse(d *services.LoanDetail) fiber.Map {
	m := fiber.Map{
		"loan":          d.Loan.ToResponse(d.Status),
		"status":        d.Status,
		"days_overdue":  d.DaysOverdue,
		"duration_days": d.DurationDays,
	}
	if d.DaysRemaining != nil {
		m["days_remaining"] = *d.DaysRemaining
	}
	return m
}

// CreateLoanRequest represents create loan request
type CreateLoanRequest struct {
	BookID       uint   `json:"book_id"`
	BorrowerID   uint   `json:"borrower_id"`
	LoanDate     string `json:"loan_date,omitempty"`
	DurationDays int    `json:"duration_days,omitempty"`
}

// Create checks out a book
// @Summary Create loan
// @Description Check a book out to a borrower
// @Tags Loans
// @Accept json
// @Produce json
// @Param body body CreateLoanRequest true "Loan data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 503 {object} response.Response
// @Router /loans [post]
func (h *LoanHandler) Create(c *fiber.Ctx) error {
	var req CreateLoanRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.BookID == 0 {
		return response.BadRequest(c, "Book ID is required")
	}
	if req.BorrowerID == 0 {
		return response.BadRequest(c, "Borrower ID is required")
	}

	input := &services.CreateLoanInput{
		BookID:       req.BookID,
		BorrowerID:   req.BorrowerID,
		DurationDays: req.DurationDays,
	}
	if req.LoanDate != "" {
		loanDate, err := time.Parse(dateLayout, req.LoanDate)
		if err != nil {
			return response.BadRequest(c, "Invalid loan date, expected YYYY-MM-DD")
		}
		input.LoanDate = &loanDate
	}

	loan, err := h.loanService.CreateLoan(c.Context(), input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrBookNotFound):
			return response.NotFound(c, "Book not found")
		case errors.Is(err, domain.ErrBorrowerNotFound):
			return response.NotFound(c, "Borrower not found")
		case errors.Is(err, domain.ErrBookUnavailable):
			return response.BadRequest(c, "Book is currently on loan")
		case errors.Is(err, domain.ErrLoanLimitReached):
			return response.BadRequest(c, "Borrower has reached the active loan limit")
		case errors.Is(err, domain.ErrBorrowerHasOverdueLoans):
			return response.BadRequest(c, "Borrower has overdue loans")
		case errors.Is(err, domain.ErrInvalidDateRange):
			return response.BadRequest(c, "Invalid loan date or duration")
		case errors.Is(err, domain.ErrBusy):
			return response.ServiceUnavailable(c, "Book is being processed, please retry")
		default:
			return response.InternalServerError(c, "Failed to create loan")
		}
	}

	detail, err := h.loanService.LoanStatusReport(c.Context(), loan.ID)
	if err != nil {
		return response.InternalServerError(c, "Failed to load created loan")
	}

	return response.Created(c, "Loan created successfully", detailResponse(detail))
}

// Return returns a loaned book
// @Summary Return loan
// @Description Return a loaned book and release it for the next borrower
// @Tags Loans
// @Accept json
// @Produce json
// @Param id path int true "Loan ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 503 {object} response.Response
// @Router /loans/{id}/return [put]
func (h *LoanHandler) Return(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid loan ID")
	}

	result, err := h.loanService.ReturnLoan(c.Context(), uint(id))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrLoanNotFound):
			return response.NotFound(c, "Loan not found")
		case errors.Is(err, domain.ErrAlreadyReturned):
			return response.BadRequest(c, "Loan already returned")
		case errors.Is(err, domain.ErrBusy):
			return response.ServiceUnavailable(c, "Loan is being processed, please retry")
		default:
			return response.InternalServerError(c, "Failed to return loan")
		}
	}

	return response.Success(c, "Loan returned successfully", fiber.Map{
		"loan":      result.Loan.ToResponse(domain.StatusCompleted),
		"on_time":   result.OnTime,
		"days_late": result.DaysLate,
	})
}

// ListOverdue lists overdue loans
// @Summary List overdue loans
// @Description List all overdue loans, most overdue first, with urgency tiers
// @Tags Loans
// @Accept json
// @Produce json
// @Success 200 {object} response.Response
// @Router /loans/overdue [get]
func (h *LoanHandler) ListOverdue(c *fiber.Ctx) error {
	overdue, err := h.loanService.ListOverdueLoans(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to list overdue loans")
	}

	result := make([]fiber.Map, 0, len(overdue))
	for _, item := range overdue {
		result = append(result, fiber.Map{
			"loan":         item.Loan.ToResponse(item.Status),
			"days_overdue": item.DaysOverdue,
			"urgency":      item.Urgency,
		})
	}

	return response.Success(c, "Overdue loans retrieved successfully", fiber.Map{
		"loans": result,
		"count": len(result),
	})
}

// List lists loans
// @Summary List loans
// @Description List all loans with pagination and derived status
// @Tags Loans
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Router /loans [get]
func (h *LoanHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	details, total, err := h.loanService.List(c.Context(), params.Page, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list loans")
	}

	result := make([]fiber.Map, 0, len(details))
	for _, d := range details {
		result = append(result, detailResponse(d))
	}

	return response.Success(c, "Loans retrieved successfully", pagination.NewResponse(result, params, total))
}

// GetByID gets a loan by ID
// @Summary Get loan by ID
// @Description Get a loan with its derived status and day counts
// @Tags Loans
// @Accept json
// @Produce json
// @Param id path int true "Loan ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /loans/{id} [get]
func (h *LoanHandler) GetByID(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid loan ID")
	}

	detail, err := h.loanService.GetByID(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, domain.ErrLoanNotFound) {
			return response.NotFound(c, "Loan not found")
		}
		return response.InternalServerError(c, "Failed to get loan")
	}

	return response.Success(c, "Loan retrieved successfully", detailResponse(detail))
}

// GetStatus gets the derived status report for a loan
// @Summary Get loan status
// @Description Get the derived status report for a loan
// @Tags Loans
// @Accept json
// @Produce json
// @Param id path int true "Loan ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /loans/{id}/status [get]
func (h *LoanHandler) GetStatus(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid loan ID")
	}

	detail, err := h.loanService.LoanStatusReport(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, domain.ErrLoanNotFound) {
			return response.NotFound(c, "Loan not found")
		}
		return response.InternalServerError(c, "Failed to get loan status")
	}

	m := fiber.Map{
		"loan_id":       detail.Loan.ID,
		"code":          detail.Loan.Code,
		"status":        detail.Status,
		"days_overdue":  detail.DaysOverdue,
		"duration_days": detail.DurationDays,
	}
	if detail.DaysRemaining != nil {
		m["days_remaining"] = *detail.DaysRemaining
	}

	return response.Success(c, "Loan status retrieved successfully", m)
}

// Delete deletes a loan record
// @Summary Delete loan
// @Description Delete a loan record (administrative). Deleting an active loan releases the book.
// @Tags Loans
// @Accept json
// @Produce json
// @Param id path int true "Loan ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 503 {object} response.Response
// @Router /loans/{id} [delete]
func (h *LoanHandler) Delete(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid loan ID")
	}

	if err := h.loanService.DeleteLoan(c.Context(), uint(id)); err != nil {
		switch {
		case errors.Is(err, domain.ErrLoanNotFound):
			return response.NotFound(c, "Loan not found")
		case errors.Is(err, domain.ErrBusy):
			return response.ServiceUnavailable(c, "Loan is being processed, please retry")
		default:
			return response.InternalServerError(c, "Failed to delete loan")
		}
	}

	return response.Success(c, "Loan deleted successfully", nil)
}

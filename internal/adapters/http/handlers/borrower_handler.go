package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/Franklin-Andres-Rodriguez/biblioteca-sistema/internal/core/domain"
	"github.com/Franklin-Andres-Rodriguez/biblioteca-sistema/internal/core/services"
	"github.com/Franklin-Andres-Rodriguez/biblioteca-sistema/internal/pkg/pagination"
	"github.com/Franklin-Andres-Rodriguez/biblioteca-sistema/internal/pkg/response"
)

// BorrowerHandler handles borrower registry endpoints
type BorrowerHandler struct {
	borrowerService *services.BorrowerService
	loanService     *services.LoanService
}

// NewBorrowerHandler creates a new borrower handler
func NewBorrowerHandler(borrowerService *services.BorrowerService, loanService *services.LoanService) *BorrowerHandler {
	return &BorrowerHandler{
		borrowerService: borrowerService,
		loanService:     loanService,
	}
}

// CreateBorrowerRequest represents create borrower request
type CreateBorrowerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

// Create registers a new borrower
// @Summary Create borrower
// @Description Register a new borrower with a unique email
// @Tags Borrowers
// @Accept json
// @Produce json
// @Param body body CreateBorrowerRequest true "Borrower data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /borrowers [post]
func (h *BorrowerHandler) Create(c *fiber.Ctx) error {
	var req CreateBorrowerRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Name == "" {
		return response.BadRequest(c, "Name is required")
	}
	if req.Email == "" {
		return response.BadRequest(c, "Email is required")
	}

	borrower, err := h.borrowerService.Create(c.Context(), &services.CreateBorrowerInput{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrDuplicateEmail):
			return response.Conflict(c, "Email already registered")
		case errors.Is(err, domain.ErrInvalidInput):
			return response.BadRequest(c, "Invalid name or email")
		default:
			return response.InternalServerError(c, "Failed to create borrower")
		}
	}

	return response.Created(c, "Borrower created successfully", fiber.Map{
		"borrower": borrower.ToResponse(),
	})
}

// List lists borrowers
// @Summary List borrowers
// @Description List borrowers with pagination
// @Tags Borrowers
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} response.Response
// @Router /borrowers [get]
func (h *BorrowerHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	borrowers, total, err := h.borrowerService.List(c.Context(), params.Page, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list borrowers")
	}

	result := make([]interface{}, 0, len(borrowers))
	for _, b := range borrowers {
		result = append(result, b.ToResponse())
	}

	return response.Success(c, "Borrowers retrieved successfully", pagination.NewResponse(result, params, total))
}

// GetByID gets a borrower by ID
// @Summary Get borrower by ID
// @Description Get a specific borrower with loan counts
// @Tags Borrowers
// @Accept json
// @Produce json
// @Param id path int true "Borrower ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /borrowers/{id} [get]
func (h *BorrowerHandler) GetByID(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid borrower ID")
	}

	borrower, err := h.borrowerService.GetByID(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, domain.ErrBorrowerNotFound) {
			return response.NotFound(c, "Borrower not found")
		}
		return response.InternalServerError(c, "Failed to get borrower")
	}

	active, overdue, err := h.loanService.BorrowerLoanCounts(c.Context(), uint(id))
	if err != nil {
		return response.InternalServerError(c, "Failed to count loans")
	}

	return response.Success(c, "Borrower retrieved successfully", fiber.Map{
		"borrower":      borrower.ToResponse(),
		"active_loans":  active,
		"overdue_loans": overdue,
	})
}

// UpdateBorrowerRequest represents update borrower request
type UpdateBorrowerRequest struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
	Phone *string `json:"phone,omitempty"`
}

// Update updates a borrower
// @Summary Update borrower
// @Description Update borrower details, keeping email unique
// @Tags Borrowers
// @Accept json
// @Produce json
// @Param id path int true "Borrower ID"
// @Param body body UpdateBorrowerRequest true "Borrower data"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /borrowers/{id} [put]
func (h *BorrowerHandler) Update(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid borrower ID")
	}

	var req UpdateBorrowerRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	borrower, err := h.borrowerService.Update(c.Context(), uint(id), &services.UpdateBorrowerInput{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrBorrowerNotFound):
			return response.NotFound(c, "Borrower not found")
		case errors.Is(err, domain.ErrDuplicateEmail):
			return response.Conflict(c, "Email already registered")
		case errors.Is(err, domain.ErrInvalidInput):
			return response.BadRequest(c, "Invalid name or email")
		default:
			return response.InternalServerError(c, "Failed to update borrower")
		}
	}

	return response.Success(c, "Borrower updated successfully", fiber.Map{
		"borrower": borrower.ToResponse(),
	})
}

// Delete deletes a borrower
// @Summary Delete borrower
// @Description Remove a borrower. Refused while the borrower holds active loans.
// @Tags Borrowers
// @Accept json
// @Produce json
// @Param id path int true "Borrower ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /borrowers/{id} [delete]
func (h *BorrowerHandler) Delete(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid borrower ID")
	}

	if err := h.borrowerService.Delete(c.Context(), uint(id)); err != nil {
		switch {
		case errors.Is(err, domain.ErrBorrowerNotFound):
			return response.NotFound(c, "Borrower not found")
		case errors.Is(err, domain.ErrBorrowerHasActiveLoans):
			return response.Conflict(c, "Borrower has active loans")
		default:
			return response.InternalServerError(c, "Failed to delete borrower")
		}
	}

	return response.Success(c, "Borrower deleted successfully", nil)
}

// GetLoans lists a borrower's loans
// @Summary Get borrower loans
// @Description List all loans of a borrower with derived status
// @Tags Borrowers
// @Accept json
// @Produce json
// @Param id path int true "Borrower ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /borrowers/{id}/loans [get]
func (h *BorrowerHandler) GetLoans(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid borrower ID")
	}

	details, err := h.loanService.GetByBorrower(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, domain.ErrBorrowerNotFound) {
			return response.NotFound(c, "Borrower not found")
		}
		return response.InternalServerError(c, "Failed to list loans")
	}

	result := make([]interface{}, 0, len(details))
	for _, d := range details {
		result = append(result, d.Loan.ToResponse(d.Status))
	}

	return response.Success(c, "Loans retrieved successfully", fiber.Map{
		"loans": result,
		"count": len(result),
	})
}

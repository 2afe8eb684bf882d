package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/Franklin-Andres-Rodriguez/biblioteca-sistema/internal/adapters/persistence/repositories"
	"github.com/Franklin-Andres-Rodriguez/biblioteca-sistema/internal/core/domain"
	"github.com/Franklin-Andres-Rodriguez/biblioteca-sistema/internal/core/services"
	"github.com/Franklin-Andres-Rodriguez/biblioteca-sistema/internal/pkg/pagination"
	"github.com/Franklin-Andres-Rodriguez/biblioteca-sistema/internal/pkg/response"
)

// BookHandler handles book catalog endpoints
type BookHandler struct {
	bookService *services.BookService
}

// NewBookHandler creates a new book handler
func NewBookHandler(bookService *services.BookService) *BookHandler {
	return &BookHandler{
		bookService: bookService,
	}
}

// CreateBookRequest represents create book request
type CreateBookRequest struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	Genre  string `json:"genre,omitempty"`
}

// Create creates a new book
// @Summary Create book
// @Description Add a book to the catalog
// @Tags Books
// @Accept json
// @Produce json
// @Param body body CreateBookRequest true "Book data"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /books [post]
func (h *BookHandler) Create(c *fiber.Ctx) error {
	var req CreateBookRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Title == "" {
		return response.BadRequest(c, "Title is required")
	}
	if req.Author == "" {
		return response.BadRequest(c, "Author is required")
	}

	book, err := h.bookService.Create(c.Context(), &services.CreateBookInput{
		Title:  req.Title,
		Author: req.Author,
		Genre:  req.Genre,
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return response.BadRequest(c, "Title and author are required")
		}
		return response.InternalServerError(c, "Failed to create book")
	}

	return response.Created(c, "Book created successfully", fiber.Map{
		"book": book.ToResponse(),
	})
}

// List lists books
// @Summary List books
// @Description List books with pagination and optional filters
// @Tags Books
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Param genre query string false "Filter by genre"
// @Param search query string false "Search in title and author"
// @Param available query bool false "Filter by availability"
// @Success 200 {object} response.Response
// @Router /books [get]
func (h *BookHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)

	filter := repositories.BookFilter{
		Genre:  c.Query("genre"),
		Search: c.Query("search"),
	}
	if v := c.Query("available"); v != "" {
		available, err := strconv.ParseBool(v)
		if err != nil {
			return response.BadRequest(c, "Invalid available filter")
		}
		filter.Available = &available
	}

	books, total, err := h.bookService.List(c.Context(), filter, params.Page, params.Limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list books")
	}

	result := make([]interface{}, 0, len(books))
	for _, b := range books {
		result = append(result, b.ToResponse())
	}

	return response.Success(c, "Books retrieved successfully", pagination.NewResponse(result, params, total))
}

// GetByID gets a book by ID
// @Summary Get book by ID
// @Description Get a specific book
// @Tags Books
// @Accept json
// @Produce json
// @Param id path int true "Book ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /books/{id} [get]
func (h *BookHandler) GetByID(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid book ID")
	}

	book, err := h.bookService.GetByID(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, domain.ErrBookNotFound) {
			return response.NotFound(c, "Book not found")
		}
		return response.InternalServerError(c, "Failed to get book")
	}

	return response.Success(c, "Book retrieved successfully", fiber.Map{
		"book": book.ToResponse(),
	})
}

// UpdateBookRequest represents update book request
type UpdateBookRequest struct {
	Title  *string `json:"title,omitempty"`
	Author *string `json:"author,omitempty"`
	Genre  *string `json:"genre,omitempty"`
}

// Update updates a book
// @Summary Update book
// @Description Update a book's catalog fields. Availability is not updatable here.
// @Tags Books
// @Accept json
// @Produce json
// @Param id path int true "Book ID"
// @Param body body UpdateBookRequest true "Book data"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /books/{id} [put]
func (h *BookHandler) Update(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid book ID")
	}

	var req UpdateBookRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	book, err := h.bookService.Update(c.Context(), uint(id), &services.UpdateBookInput{
		Title:  req.Title,
		Author: req.Author,
		Genre:  req.Genre,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrBookNotFound):
			return response.NotFound(c, "Book not found")
		case errors.Is(err, domain.ErrInvalidInput):
			return response.BadRequest(c, "Title and author cannot be empty")
		default:
			return response.InternalServerError(c, "Failed to update book")
		}
	}

	return response.Success(c, "Book updated successfully", fiber.Map{
		"book": book.ToResponse(),
	})
}

// Delete deletes a book
// @Summary Delete book
// @Description Remove a book from the catalog. Refused while it has an active loan.
// @Tags Books
// @Accept json
// @Produce json
// @Param id path int true "Book ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /books/{id} [delete]
func (h *BookHandler) Delete(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid book ID")
	}

	if err := h.bookService.Delete(c.Context(), uint(id)); err != nil {
		switch {
		case errors.Is(err, domain.ErrBookNotFound):
			return response.NotFound(c, "Book not found")
		case errors.Is(err, domain.ErrBookHasActiveLoan):
			return response.Conflict(c, "Book has an active loan")
		default:
			return response.InternalServerError(c, "Failed to delete book")
		}
	}

	return response.Success(c, "Book deleted successfully", nil)
}

// Availability reports whether a book can be loaned right now
// @Summary Get book availability
// @Description Check whether the book is available for a new loan
// @Tags Books
// @Accept json
// @Produce json
// @Param id path int true "Book ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /books/{id}/availability [get]
func (h *BookHandler) Availability(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid book ID")
	}

	available, err := h.bookService.Availability(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, domain.ErrBookNotFound) {
			return response.NotFound(c, "Book not found")
		}
		return response.InternalServerError(c, "Failed to check availability")
	}

	return response.Success(c, "Availability retrieved successfully", fiber.Map{
		"book_id":   uint(id),
		"available": available,
	})
}

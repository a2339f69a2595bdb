package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/KDDD10/Hooked-on-Books-backend/internal/model"
	"github.com/KDDD10/Hooked-on-Books-backend/internal/service"
	"github.com/KDDD10/Hooked-on-Books-backend/internal/validation"
)

// BookHandler handles book endpoints.
type BookHandler struct {
	bookService service.BookService
}

// NewBookHandler creates a new book handler.
func NewBookHandler(bookService service.BookService) *BookHandler {
	return &BookHandler{bookService: bookService}
}

// BookResponse is the public view of a book.
type BookResponse struct {
	ID              uint     `json:"id"`
	Title           string   `json:"title"`
	Author          string   `json:"author"`
	CoverImageURL   *string  `json:"cover_image_url"`
	Description     *string  `json:"description"`
	PublicationDate string   `json:"publication_date" example:"1965-08-01"`
	Genres          []string `json:"genres"`
	AffiliateLink   *string  `json:"affiliate_link"`
	UserID          uint     `json:"user_id"`
}

// BookCreatedResponse represents a created book.
type BookCreatedResponse struct {
	Message string `json:"message"`
	BookID  uint   `json:"book_id"`
}

// BookUpdatedResponse represents an updated book.
type BookUpdatedResponse struct {
	Message string       `json:"message"`
	Book    BookResponse `json:"book"`
}

func newBookResponse(b *model.Book) BookResponse {
	genres := []string(b.Genres)
	if genres == nil {
		genres = []string{}
	}
	return BookResponse{
		ID:              b.ID,
		Title:           b.Title,
		Author:          b.Author,
		CoverImageURL:   b.CoverImageURL,
		Description:     b.Description,
		PublicationDate: b.PublicationDate.Format(validation.DateLayout),
		Genres:          genres,
		AffiliateLink:   b.AffiliateLink,
		UserID:          b.UserID,
	}
}

func newBookResponses(books []model.Book) []BookResponse {
	out := make([]BookResponse, 0, len(books))
	for i := range books {
		out = append(out, newBookResponse(&books[i]))
	}
	return out
}

// Create godoc
// @Summary Create a book listing
// @Tags books
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body validation.BookPayload true "Book"
// @Success 201 {object} BookCreatedResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /books [post]
func (h *BookHandler) Create(c echo.Context) error {
	caller, err := CallerIdentity(c)
	if err != nil {
		return toHTTPError(err)
	}

	var payload validation.BookPayload
	if err := bindBody(c, &payload); err != nil {
		return toHTTPError(err)
	}

	book, err := h.bookService.Create(c.Request().Context(), caller, payload)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusCreated, BookCreatedResponse{
		Message: "Book added successfully",
		BookID:  book.ID,
	})
}

// List godoc
// @Summary List all books
// @Tags books
// @Produce json
// @Success 200 {array} BookResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /books [get]
func (h *BookHandler) List(c echo.Context) error {
	books, err := h.bookService.List(c.Request().Context())
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, newBookResponses(books))
}

// ListByOwner godoc
// @Summary List the books of a user
// @Tags books
// @Produce json
// @Param user_id path int true "User ID"
// @Success 200 {array} BookResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /books/user/{user_id} [get]
func (h *BookHandler) ListByOwner(c echo.Context) error {
	userID, err := parseID(c, "user_id")
	if err != nil {
		return toHTTPError(err)
	}

	books, err := h.bookService.ListByOwner(c.Request().Context(), userID)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, newBookResponses(books))
}

// Get godoc
// @Summary Get a book
// @Tags books
// @Produce json
// @Param id path int true "Book ID"
// @Success 200 {object} BookResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /books/{id} [get]
func (h *BookHandler) Get(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return toHTTPError(err)
	}

	book, err := h.bookService.Get(c.Request().Context(), id)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, newBookResponse(book))
}

// Update godoc
// @Summary Update a book
// @Description Only fields present in the body change. Only the owner may update.
// @Tags books
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Book ID"
// @Param request body validation.BookPayload true "Fields to change"
// @Success 200 {object} BookUpdatedResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /books/{id} [put]
func (h *BookHandler) Update(c echo.Context) error {
	caller, err := CallerIdentity(c)
	if err != nil {
		return toHTTPError(err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return toHTTPError(err)
	}

	var payload validation.BookPayload
	if err := bindBody(c, &payload); err != nil {
		return toHTTPError(err)
	}

	book, err := h.bookService.Update(c.Request().Context(), caller, id, payload)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, BookUpdatedResponse{
		Message: "Book updated successfully",
		Book:    newBookResponse(book),
	})
}

// Delete godoc
// @Summary Delete a book and its reviews
// @Tags books
// @Produce json
// @Security BearerAuth
// @Param id path int true "Book ID"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /books/{id} [delete]
func (h *BookHandler) Delete(c echo.Context) error {
	caller, err := CallerIdentity(c)
	if err != nil {
		return toHTTPError(err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return toHTTPError(err)
	}

	if err := h.bookService.Delete(c.Request().Context(), caller, id); err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Book deleted successfully"})
}

package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/KDDD10/Hooked-on-Books-backend/internal/service"
	"github.com/KDDD10/Hooked-on-Books-backend/internal/validation"
)

// ReviewHandler handles review endpoints.
type ReviewHandler struct {
	reviewService service.ReviewService
}

// NewReviewHandler creates a new review handler.
func NewReviewHandler(reviewService service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// ReviewCreatedResponse represents a created review.
type ReviewCreatedResponse struct {
	Message  string `json:"message"`
	ReviewID uint   `json:"review_id"`
}

// UpvoteResponse represents the result of an upvote.
type UpvoteResponse struct {
	Message        string `json:"message"`
	NewUpvoteCount int    `json:"new_upvote_count"`
}

// Create godoc
// @Summary Review a book
// @Tags reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Book ID"
// @Param request body validation.ReviewPayload true "Review"
// @Success 201 {object} ReviewCreatedResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /books/{id}/reviews [post]
func (h *ReviewHandler) Create(c echo.Context) error {
	caller, err := CallerIdentity(c)
	if err != nil {
		return toHTTPError(err)
	}
	bookID, err := parseID(c, "id")
	if err != nil {
		return toHTTPError(err)
	}

	var payload validation.ReviewPayload
	if err := bindBody(c, &payload); err != nil {
		return toHTTPError(err)
	}

	review, err := h.reviewService.Create(c.Request().Context(), caller, bookID, payload)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusCreated, ReviewCreatedResponse{
		Message:  "Review added successfully",
		ReviewID: review.ID,
	})
}

// ListByBook godoc
// @Summary List the reviews of a book
// @Tags reviews
// @Produce json
// @Param id path int true "Book ID"
// @Success 200 {array} model.Review
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /books/{id}/reviews [get]
func (h *ReviewHandler) ListByBook(c echo.Context) error {
	bookID, err := parseID(c, "id")
	if err != nil {
		return toHTTPError(err)
	}

	reviews, err := h.reviewService.ListByBook(c.Request().Context(), bookID)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, reviews)
}

// Summary godoc
// @Summary Get the rating summary of a book
// @Tags reviews
// @Produce json
// @Param id path int true "Book ID"
// @Success 200 {object} service.RatingSummary
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /books/{id}/rating [get]
func (h *ReviewHandler) Summary(c echo.Context) error {
	bookID, err := parseID(c, "id")
	if err != nil {
		return toHTTPError(err)
	}

	summary, err := h.reviewService.Summary(c.Request().Context(), bookID)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, summary)
}

// Get godoc
// @Summary Get a review
// @Tags reviews
// @Produce json
// @Param id path int true "Review ID"
// @Success 200 {object} model.Review
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /reviews/{id} [get]
func (h *ReviewHandler) Get(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return toHTTPError(err)
	}

	review, err := h.reviewService.Get(c.Request().Context(), id)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, review)
}

// Update godoc
// @Summary Update a review
// @Description Only fields present in the body change. Only the reviewer may update.
// @Tags reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Review ID"
// @Param request body validation.ReviewPayload true "Fields to change"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /reviews/{id} [put]
func (h *ReviewHandler) Update(c echo.Context) error {
	caller, err := CallerIdentity(c)
	if err != nil {
		return toHTTPError(err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return toHTTPError(err)
	}

	var payload validation.ReviewPayload
	if err := bindBody(c, &payload); err != nil {
		return toHTTPError(err)
	}

	if _, err := h.reviewService.Update(c.Request().Context(), caller, id, payload); err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Review updated successfully"})
}

// Delete godoc
// @Summary Delete a review
// @Tags reviews
// @Produce json
// @Security BearerAuth
// @Param id path int true "Review ID"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /reviews/{id} [delete]
func (h *ReviewHandler) Delete(c echo.Context) error {
	caller, err := CallerIdentity(c)
	if err != nil {
		return toHTTPError(err)
	}
	id, err := parseID(c, "id")
	if err != nil {
		return toHTTPError(err)
	}

	if err := h.reviewService.Delete(c.Request().Context(), caller, id); err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Review deleted successfully"})
}

// Upvote godoc
// @Summary Upvote a review
// @Description Open to any caller and not deduplicated.
// @Tags reviews
// @Produce json
// @Param id path int true "Review ID"
// @Success 200 {object} UpvoteResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /reviews/{id}/upvote [post]
func (h *ReviewHandler) Upvote(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return toHTTPError(err)
	}

	count, err := h.reviewService.Upvote(c.Request().Context(), id)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, UpvoteResponse{
		Message:        "Review upvoted successfully",
		NewUpvoteCount: count,
	})
}

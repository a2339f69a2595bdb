package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/KDDD10/Hooked-on-Books-backend/internal/auth"
	"github.com/KDDD10/Hooked-on-Books-backend/internal/model"
	"github.com/KDDD10/Hooked-on-Books-backend/internal/repository"
	"github.com/KDDD10/Hooked-on-Books-backend/internal/validation"
)

// RatingSummary is the review count and average rating of a book.
type RatingSummary struct {
	BookID        uint   `json:"book_id"`
	ReviewCount   int64  `json:"review_count"`
	AverageRating string `json:"average_rating" example:"4.25"`
}

// ReviewService handles reviews and upvotes.
type ReviewService interface {
	Create(ctx context.Context, caller auth.Identity, bookID uint, payload validation.ReviewPayload) (*model.Review, error)
	ListByBook(ctx context.Context, bookID uint) ([]model.Review, error)
	Get(ctx context.Context, id uint) (*model.Review, error)
	Update(ctx context.Context, caller auth.Identity, id uint, payload validation.ReviewPayload) (*model.Review, error)
	Delete(ctx context.Context, caller auth.Identity, id uint) error
	Upvote(ctx context.Context, id uint) (int, error)
	Summary(ctx context.Context, bookID uint) (RatingSummary, error)
}

type reviewService struct {
	store *repository.Store
}

// NewReviewService creates a new review service.
func NewReviewService(store *repository.Store) ReviewService {
	return &reviewService{store: store}
}

// Create posts a review by the caller on an existing book.
func (s *reviewService) Create(ctx context.Context, caller auth.Identity, bookID uint, payload validation.ReviewPayload) (*model.Review, error) {
	var review *model.Review
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx *repository.Store) error {
		if _, err := tx.Books.FindByIDForShare(ctx, bookID); err != nil {
			return err
		}

		valid, err := validation.ValidateReviewPayload(payload)
		if err != nil {
			return err
		}

		review = &model.Review{
			BookID:     bookID,
			UserID:     caller.UserID,
			Rating:     valid.Rating,
			ReviewText: valid.ReviewText,
		}
		return tx.Reviews.Create(ctx, review)
	})
	if err != nil {
		return nil, err
	}
	return review, nil
}

func (s *reviewService) ListByBook(ctx context.Context, bookID uint) ([]model.Review, error) {
	return s.store.Reviews.ListByBook(ctx, bookID)
}

func (s *reviewService) Get(ctx context.Context, id uint) (*model.Review, error) {
	return s.store.Reviews.FindByID(ctx, id)
}

// Update applies a partial update to a review owned by the caller.
func (s *reviewService) Update(ctx context.Context, caller auth.Identity, id uint, payload validation.ReviewPayload) (*model.Review, error) {
	var updated *model.Review
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx *repository.Store) error {
		review, err := tx.Reviews.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := auth.AuthorizeMutation(caller, review); err != nil {
			return err
		}

		changes, err := validation.ValidateReviewUpdate(payload)
		if err != nil {
			return err
		}
		changes.Apply(review)

		if err := tx.Reviews.Update(ctx, review); err != nil {
			return err
		}
		updated = review
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a review owned by the caller.
func (s *reviewService) Delete(ctx context.Context, caller auth.Identity, id uint) error {
	return s.store.WithTransaction(ctx, func(ctx context.Context, tx *repository.Store) error {
		review, err := tx.Reviews.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := auth.AuthorizeMutation(caller, review); err != nil {
			return err
		}
		return tx.Reviews.Delete(ctx, id)
	})
}

// Upvote adds one upvote and returns the new count. Any caller may upvote any
// review any number of times.
func (s *reviewService) Upvote(ctx context.Context, id uint) (int, error) {
	return s.store.Reviews.IncrementUpvotes(ctx, id)
}

// Summary returns the review count and the average rating rounded to two places.
func (s *reviewService) Summary(ctx context.Context, bookID uint) (RatingSummary, error) {
	if _, err := s.store.Books.FindByID(ctx, bookID); err != nil {
		return RatingSummary{}, err
	}

	totals, err := s.store.Reviews.RatingTotals(ctx, bookID)
	if err != nil {
		return RatingSummary{}, err
	}

	avg := decimal.Zero
	if totals.ReviewCount > 0 {
		avg = decimal.NewFromInt(totals.RatingSum).
			DivRound(decimal.NewFromInt(totals.ReviewCount), 2)
	}
	return RatingSummary{
		BookID:        bookID,
		ReviewCount:   totals.ReviewCount,
		AverageRating: avg.StringFixed(2),
	}, nil
}

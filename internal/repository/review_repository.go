package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/KDDD10/Hooked-on-Books-backend/internal/db"
	apperrors "github.com/KDDD10/Hooked-on-Books-backend/internal/errors"
	"github.com/KDDD10/Hooked-on-Books-backend/internal/model"
)

// RatingTotals aggregates the ratings of one book.
type RatingTotals struct {
	ReviewCount int64
	RatingSum   int64
}

// ReviewRepository defines review persistence operations.
type ReviewRepository interface {
	Create(ctx context.Context, review *model.Review) error
	Update(ctx context.Context, review *model.Review) error
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*model.Review, error)
	FindByIDForUpdate(ctx context.Context, id uint) (*model.Review, error)
	ListByBook(ctx context.Context, bookID uint) ([]model.Review, error)
	IncrementUpvotes(ctx context.Context, id uint) (int, error)
	RatingTotals(ctx context.Context, bookID uint) (RatingTotals, error)
}

type reviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository builds a GORM-backed repository.
func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

// Create inserts review. A book deleted since it was looked up surfaces as
// ErrBookNotFound rather than a storage failure.
func (r *reviewRepository) Create(ctx context.Context, review *model.Review) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(review).Error
	if db.IsForeignKeyViolation(err) {
		return apperrors.ErrBookNotFound
	}
	return translate(err, "review")
}

// Update writes rating and review_text. Book, reviewer and upvotes never change here.
func (r *reviewRepository) Update(ctx context.Context, review *model.Review) error {
	res := r.db.WithContext(ctx).Model(review).Select("rating", "review_text").Updates(review)
	return translate(res.Error, "review")
}

func (r *reviewRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.Review{}, id)
	if res.Error != nil {
		return translate(res.Error, "review")
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrReviewNotFound
	}
	return nil
}

func (r *reviewRepository) FindByID(ctx context.Context, id uint) (*model.Review, error) {
	var review model.Review
	if err := r.db.WithContext(ctx).First(&review, id).Error; err != nil {
		return nil, translate(err, "review")
	}
	return &review, nil
}

// FindByIDForUpdate finds a review by ID with row-level lock for update.
func (r *reviewRepository) FindByIDForUpdate(ctx context.Context, id uint) (*model.Review, error) {
	var review model.Review
	if err := lockForUpdate(r.db.WithContext(ctx)).
		First(&review, id).Error; err != nil {
		return nil, translate(err, "review")
	}
	return &review, nil
}

// ListByBook returns the reviews of a book in posting order.
func (r *reviewRepository) ListByBook(ctx context.Context, bookID uint) ([]model.Review, error) {
	var books int64
	if err := r.db.WithContext(ctx).Model(&model.Book{}).Where("id = ?", bookID).Count(&books).Error; err != nil {
		return nil, translate(err, "")
	}
	if books == 0 {
		return nil, apperrors.ErrBookNotFound
	}

	reviews := []model.Review{}
	if err := r.db.WithContext(ctx).Where("book_id = ?", bookID).Order("id").Find(&reviews).Error; err != nil {
		return nil, translate(err, "")
	}
	return reviews, nil
}

// IncrementUpvotes adds exactly one upvote with a single atomic UPDATE and
// returns the count read back in the same transaction.
func (r *reviewRepository) IncrementUpvotes(ctx context.Context, id uint) (int, error) {
	var count int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Review{}).Where("id = ?", id).
			UpdateColumn("upvotes_count", gorm.Expr("upvotes_count + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Model(&model.Review{}).Select("upvotes_count").Where("id = ?", id).Row().Scan(&count)
	})
	if err != nil {
		return 0, translate(err, "review")
	}
	return count, nil
}

// RatingTotals counts and sums the ratings of a book with one aggregate query.
func (r *reviewRepository) RatingTotals(ctx context.Context, bookID uint) (RatingTotals, error) {
	var totals RatingTotals
	err := r.db.WithContext(ctx).Model(&model.Review{}).
		Select("COUNT(*) AS review_count, COALESCE(SUM(rating), 0) AS rating_sum").
		Where("book_id = ?", bookID).
		Scan(&totals).Error
	if err != nil {
		return RatingTotals{}, translate(err, "")
	}
	return totals, nil
}

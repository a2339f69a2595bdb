package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "github.com/KDDD10/Hooked-on-Books-backend/internal/errors"
	"github.com/KDDD10/Hooked-on-Books-backend/internal/model"
)

// bookColumns are the columns an update may change. user_id is never among them.
var bookColumns = []string{
	"title", "author", "cover_image_url", "description",
	"publication_date", "genres", "affiliate_link", "updated_at",
}

// BookRepository defines book persistence operations.
type BookRepository interface {
	Create(ctx context.Context, book *model.Book) error
	Update(ctx context.Context, book *model.Book) error
	Delete(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (*model.Book, error)
	FindByIDForUpdate(ctx context.Context, id uint) (*model.Book, error)
	FindByIDForShare(ctx context.Context, id uint) (*model.Book, error)
	List(ctx context.Context) ([]model.Book, error)
	ListByOwner(ctx context.Context, userID uint) ([]model.Book, error)
}

type bookRepository struct {
	db *gorm.DB
}

// NewBookRepository builds a GORM-backed repository.
func NewBookRepository(db *gorm.DB) BookRepository {
	return &bookRepository{db: db}
}

// Create inserts a new book.
func (r *bookRepository) Create(ctx context.Context, book *model.Book) error {
	return translate(r.db.WithContext(ctx).Omit(clause.Associations).Create(book).Error, "book")
}

// Update writes the mutable columns of book.
func (r *bookRepository) Update(ctx context.Context, book *model.Book) error {
	res := r.db.WithContext(ctx).Model(book).Select(bookColumns).Updates(book)
	if res.Error != nil {
		return translate(res.Error, "book")
	}
	return nil
}

// Delete removes a book. Its reviews go with it through the cascading foreign key.
func (r *bookRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.Book{}, id)
	if res.Error != nil {
		return translate(res.Error, "book")
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrBookNotFound
	}
	return nil
}

// FindByID finds a book by ID.
func (r *bookRepository) FindByID(ctx context.Context, id uint) (*model.Book, error) {
	var book model.Book
	if err := r.db.WithContext(ctx).First(&book, id).Error; err != nil {
		return nil, translate(err, "book")
	}
	return &book, nil
}

// FindByIDForShare finds a book and keeps it from being deleted until the
// transaction ends.
func (r *bookRepository) FindByIDForShare(ctx context.Context, id uint) (*model.Book, error) {
	var book model.Book
	if err := lockForShare(r.db.WithContext(ctx)).
		First(&book, id).Error; err != nil {
		return nil, translate(err, "book")
	}
	return &book, nil
}

// FindByIDForUpdate finds a book by ID with row-level lock for update.
func (r *bookRepository) FindByIDForUpdate(ctx context.Context, id uint) (*model.Book, error) {
	var book model.Book
	if err := lockForUpdate(r.db.WithContext(ctx)).
		First(&book, id).Error; err != nil {
		return nil, translate(err, "book")
	}
	return &book, nil
}

// List returns every book, oldest first.
func (r *bookRepository) List(ctx context.Context) ([]model.Book, error) {
	books := []model.Book{}
	if err := r.db.WithContext(ctx).Order("id").Find(&books).Error; err != nil {
		return nil, translate(err, "")
	}
	return books, nil
}

// ListByOwner returns the books created by userID. An unknown user has no books.
func (r *bookRepository) ListByOwner(ctx context.Context, userID uint) ([]model.Book, error) {
	books := []model.Book{}
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&books).Error; err != nil {
		return nil, translate(err, "")
	}
	return books, nil
}

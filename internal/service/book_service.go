package service

import (
	"context"

	"github.com/KDDD10/Hooked-on-Books-backend/internal/auth"
	"github.com/KDDD10/Hooked-on-Books-backend/internal/cache"
	"github.com/KDDD10/Hooked-on-Books-backend/internal/model"
	"github.com/KDDD10/Hooked-on-Books-backend/internal/repository"
	"github.com/KDDD10/Hooked-on-Books-backend/internal/validation"
)

// BookService handles book listings.
type BookService interface {
	Create(ctx context.Context, caller auth.Identity, payload validation.BookPayload) (*model.Book, error)
	List(ctx context.Context) ([]model.Book, error)
	ListByOwner(ctx context.Context, userID uint) ([]model.Book, error)
	Get(ctx context.Context, id uint) (*model.Book, error)
	Update(ctx context.Context, caller auth.Identity, id uint, payload validation.BookPayload) (*model.Book, error)
	Delete(ctx context.Context, caller auth.Identity, id uint) error
}

type bookService struct {
	store     *repository.Store
	validator *validation.Validator
	cache     *cache.Client
}

// NewBookService creates a new book service.
func NewBookService(store *repository.Store, validator *validation.Validator, cache *cache.Client) BookService {
	return &bookService{
		store:     store,
		validator: validator,
		cache:     cache,
	}
}

// Create validates the payload and stores a book owned by the caller.
func (s *bookService) Create(ctx context.Context, caller auth.Identity, payload validation.BookPayload) (*model.Book, error) {
	valid, err := s.validator.ValidateBookPayload(payload)
	if err != nil {
		return nil, err
	}

	book := valid.Book(caller.UserID)
	if err := s.store.Books.Create(ctx, book); err != nil {
		return nil, err
	}
	return book, nil
}

func (s *bookService) List(ctx context.Context) ([]model.Book, error) {
	return s.store.Books.List(ctx)
}

func (s *bookService) ListByOwner(ctx context.Context, userID uint) ([]model.Book, error) {
	return s.store.Books.ListByOwner(ctx, userID)
}

// Get retrieves a book by ID with caching.
func (s *bookService) Get(ctx context.Context, id uint) (*model.Book, error) {
	key := cache.BookKey(id)

	var cached model.Book
	if s.cache.GetJSON(ctx, key, &cached) {
		return &cached, nil
	}

	book, err := s.store.Books.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.cache.SetJSON(ctx, key, book, cache.DefaultTTL)
	return book, nil
}

// Update applies a partial update. The book is locked and its owner checked in
// the same transaction that writes the change.
func (s *bookService) Update(ctx context.Context, caller auth.Identity, id uint, payload validation.BookPayload) (*model.Book, error) {
	var updated *model.Book
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx *repository.Store) error {
		book, err := tx.Books.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := auth.AuthorizeMutation(caller, book); err != nil {
			return err
		}

		changes, err := s.validator.ValidateBookUpdate(payload)
		if err != nil {
			return err
		}
		changes.Apply(book)

		if err := tx.Books.Update(ctx, book); err != nil {
			return err
		}
		updated = book
		s.cache.Delete(ctx, cache.BookKey(id))
		return nil
	})
	if err != nil {
		return nil, err
	}

	// A read that loaded the old row before commit may have cached it since.
	s.cache.Delete(ctx, cache.BookKey(id))
	return updated, nil
}

// Delete removes a book and, through the cascading foreign key, its reviews.
func (s *bookService) Delete(ctx context.Context, caller auth.Identity, id uint) error {
	err := s.store.WithTransaction(ctx, func(ctx context.Context, tx *repository.Store) error {
		book, err := tx.Books.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := auth.AuthorizeMutation(caller, book); err != nil {
			return err
		}
		if err := tx.Books.Delete(ctx, id); err != nil {
			return err
		}
		s.cache.Delete(ctx, cache.BookKey(id))
		return nil
	})
	if err != nil {
		return err
	}

	s.cache.Delete(ctx, cache.BookKey(id))
	return nil
}

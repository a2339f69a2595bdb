package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/KDDD10/Hooked-on-Books-backend/internal/db"
	apperrors "github.com/KDDD10/Hooked-on-Books-backend/internal/errors"
)

// Store groups the repositories that share one connection or transaction.
type Store struct {
	db      *gorm.DB
	Users   UserRepository
	Books   BookRepository
	Reviews ReviewRepository
}

// NewStore builds GORM-backed repositories on db.
func NewStore(conn *gorm.DB) *Store {
	return &Store{
		db:      conn,
		Users:   NewUserRepository(conn),
		Books:   NewBookRepository(conn),
		Reviews: NewReviewRepository(conn),
	}
}

// WithTransaction executes fn within a database transaction. Repositories on
// the store passed to fn all use the transaction; any error rolls it back.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx *Store) error) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, NewStore(tx))
	})
	return translate(err, "")
}

// lockForUpdate adds SELECT ... FOR UPDATE. SQLite has no row locks and
// serializes writers on its single connection instead.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == db.DriverSQLite {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// lockForShare is lockForUpdate for readers that only need the row to stay.
func lockForShare(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == db.DriverSQLite {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "SHARE"})
}

// translate maps driver and gorm errors onto domain errors. Domain errors pass
// through unchanged.
func translate(err error, entity string) error {
	if err == nil {
		return nil
	}
	var domainErr *apperrors.Error
	if errors.As(err, &domainErr) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) && entity != "" {
		return apperrors.NotFound(entity)
	}
	if db.IsStringTruncation(err) {
		return apperrors.FieldTooLong("")
	}
	return apperrors.Storage(err)
}

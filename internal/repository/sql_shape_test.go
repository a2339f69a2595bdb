package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	apperrors "github.com/KDDD10/Hooked-on-Books-backend/internal/errors"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	gdb, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)
	return gdb, mock
}

func newMockReviewRepository(t *testing.T) (ReviewRepository, sqlmock.Sqlmock) {
	gdb, mock := newMockDB(t)
	return NewReviewRepository(gdb), mock
}

func TestIncrementUpvotes_SingleAtomicUpdate(t *testing.T) {
	repo, mock := newMockReviewRepository(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `reviews` SET `upvotes_count`=upvotes_count \\+ \\? WHERE id = \\?").
		WithArgs(1, 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT upvotes_count FROM `reviews` WHERE id = \\?").
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"upvotes_count"}).AddRow(12))
	mock.ExpectCommit()

	count, err := repo.IncrementUpvotes(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 12, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIncrementUpvotes_MissingReviewRollsBack(t *testing.T) {
	repo, mock := newMockReviewRepository(t)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `reviews` SET `upvotes_count`=upvotes_count \\+ \\? WHERE id = \\?").
		WithArgs(1, 99).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := repo.IncrementUpvotes(context.Background(), 99)
	assert.ErrorIs(t, err, apperrors.ErrReviewNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByIDForUpdate_LocksRow(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewBookRepository(gdb)

	mock.ExpectQuery("SELECT \\* FROM `books` WHERE `books`.`id` = \\? .*FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "user_id"}).AddRow(3, "Dune", 10))

	book, err := repo.FindByIDForUpdate(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, uint(10), book.OwnerID())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByIDForShare_LocksRowForReaders(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewBookRepository(gdb)

	mock.ExpectQuery("SELECT \\* FROM `books` WHERE `books`.`id` = \\? .*FOR SHARE").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "user_id"}).AddRow(3, "Dune", 10))

	book, err := repo.FindByIDForShare(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, uint(3), book.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

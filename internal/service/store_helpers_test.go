package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/KDDD10/Hooked-on-Books-backend/internal/auth"
	"github.com/KDDD10/Hooked-on-Books-backend/internal/db"
	"github.com/KDDD10/Hooked-on-Books-backend/internal/model"
	"github.com/KDDD10/Hooked-on-Books-backend/internal/repository"
	"github.com/KDDD10/Hooked-on-Books-backend/internal/validation"
)

func newTestStore(t *testing.T) *repository.Store {
	t.Helper()
	conn, err := db.NewSQLite(filepath.Join(t.TempDir(), "books.db"))
	require.NoError(t, err)
	require.NoError(t, db.Migrate(conn))
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return repository.NewStore(conn)
}

func seedUser(t *testing.T, store *repository.Store, username string) auth.Identity {
	t.Helper()
	user := &model.User{Username: username, Email: username + "@example.com", PasswordHash: "x"}
	require.NoError(t, store.Users.Create(context.Background(), user))
	return auth.Identity{UserID: user.ID, Username: user.Username}
}

func str(s string) *string { return &s }

func bookPayload(title string) validation.BookPayload {
	genres := []string{"sci-fi", "classic"}
	return validation.BookPayload{
		Title:           str(title),
		Author:          str("Frank Herbert"),
		PublicationDate: str("1965-08-01"),
		Description:     str("Desert planet."),
		Genres:          &genres,
	}
}

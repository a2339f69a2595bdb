package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KDDD10/Hooked-on-Books-backend/internal/auth"
	"github.com/KDDD10/Hooked-on-Books-backend/internal/db"
	"github.com/KDDD10/Hooked-on-Books-backend/internal/repository"
	"github.com/KDDD10/Hooked-on-Books-backend/internal/service"
	"github.com/KDDD10/Hooked-on-Books-backend/internal/storage"
	"github.com/KDDD10/Hooked-on-Books-backend/internal/validation"
)

const testCatalog = `{
  "owner": {"username": "librarian", "email": "librarian@example.com", "password": "secret-pass"},
  "books": [
    {"title": "Dune", "author": "Frank Herbert", "publication_date": "1965-08-01", "genres": ["sci-fi"]},
    {"title": "Broken", "author": "Nobody", "publication_date": "1 May 1999"},
    {"title": "Emma", "author": "Jane Austen", "publication_date": "1815-12-23"}
  ]
}`

func newSeedServices(t *testing.T) (service.AuthService, service.BookService) {
	t.Helper()
	dir := t.TempDir()
	conn, err := db.NewSQLite(filepath.Join(dir, "seed.db"))
	require.NoError(t, err)
	require.NoError(t, db.Migrate(conn))
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			sqlDB.Close()
		}
	})

	blobs, err := storage.NewLocalStore(filepath.Join(dir, "uploads"))
	require.NoError(t, err)

	store := repository.NewStore(conn)
	authService := service.NewAuthService(store.Users, blobs, auth.NewJWTService("seed-secret", time.Hour), nil, zerolog.Nop())
	return authService, service.NewBookService(store, validation.New(), nil)
}

func TestLoadCatalogFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(testCatalog), 0o600))

	catalog, err := loadCatalog(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "librarian", catalog.Owner.Username)
	require.Len(t, catalog.Books, 3)
	assert.Equal(t, "Dune", *catalog.Books[0].Title)
}

func TestLoadCatalogFromURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/catalog.json" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(testCatalog))
	}))
	defer srv.Close()

	catalog, err := loadCatalog(context.Background(), srv.URL+"/catalog.json")
	require.NoError(t, err)
	assert.Len(t, catalog.Books, 3)

	_, err = loadCatalog(context.Background(), srv.URL+"/missing.json")
	assert.ErrorContains(t, err, "404")
}

func TestLoadCatalogErrors(t *testing.T) {
	_, err := loadCatalog(context.Background(), filepath.Join(t.TempDir(), "absent.json"))
	assert.ErrorContains(t, err, "read catalog")

	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
	_, err = loadCatalog(context.Background(), path)
	assert.ErrorContains(t, err, "parse catalog")
}

func TestSeedSkipsInvalidAndExistingBooks(t *testing.T) {
	ctx := context.Background()
	authService, bookService := newSeedServices(t)

	path := filepath.Join(t.TempDir(), "catalog.json")
	require.NoError(t, os.WriteFile(path, []byte(testCatalog), 0o600))
	catalog, err := loadCatalog(ctx, path)
	require.NoError(t, err)

	created, skipped, err := seed(ctx, authService, bookService, catalog, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, 2, created)
	assert.Equal(t, 1, skipped)

	// A second run logs in as the existing owner and adds nothing.
	created, skipped, err = seed(ctx, authService, bookService, catalog, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, 0, created)
	assert.Equal(t, 3, skipped)

	books, err := bookService.List(ctx)
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, "Dune", books[0].Title)
	assert.Equal(t, "Emma", books[1].Title)
	assert.Equal(t, books[0].UserID, books[1].UserID)
}

func TestSeedRejectsWrongOwnerPassword(t *testing.T) {
	ctx := context.Background()
	authService, bookService := newSeedServices(t)

	catalog := &Catalog{Owner: SeedOwner{Username: "librarian", Email: "librarian@example.com", Password: "secret-pass"}}
	_, _, err := seed(ctx, authService, bookService, catalog, zerolog.Nop())
	require.NoError(t, err)

	catalog.Owner.Password = "other-pass"
	_, _, err = seed(ctx, authService, bookService, catalog, zerolog.Nop())
	assert.ErrorContains(t, err, "login seed owner")
}

package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/KDDD10/Hooked-on-Books-backend/internal/auth"
	"github.com/KDDD10/Hooked-on-Books-backend/internal/config"
	"github.com/KDDD10/Hooked-on-Books-backend/internal/db"
	apperrors "github.com/KDDD10/Hooked-on-Books-backend/internal/errors"
	"github.com/KDDD10/Hooked-on-Books-backend/internal/logger"
	"github.com/KDDD10/Hooked-on-Books-backend/internal/repository"
	"github.com/KDDD10/Hooked-on-Books-backend/internal/service"
	"github.com/KDDD10/Hooked-on-Books-backend/internal/storage"
	"github.com/KDDD10/Hooked-on-Books-backend/internal/validation"
)

const defaultCatalog = "cmd/seed/catalog.json"

// Catalog is the seed document: one owner and the books listed under it.
type Catalog struct {
	Owner SeedOwner                `json:"owner"`
	Books []validation.BookPayload `json:"books"`
}

// SeedOwner is the account that owns every seeded book.
type SeedOwner struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func main() {
	source := flag.String("catalog", defaultCatalog, "catalog file path or http(s) URL")
	flag.Parse()

	cfg := config.Load()
	log := logger.New(cfg.IsProduction(), cfg.LogLevel, os.Stdout)
	log.Info().Msg("Starting seed script")

	gormDB, err := db.Open(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	if err := db.Migrate(gormDB); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}
	log.Info().Msg("Database migrations completed")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	catalog, err := loadCatalog(ctx, *source)
	if err != nil {
		log.Fatal().Err(err).Str("source", *source).Msg("Failed to load catalog")
	}
	log.Info().Int("books", len(catalog.Books)).Str("source", *source).Msg("Catalog loaded")

	blobs, err := storage.NewLocalStore(cfg.UploadDir)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open upload directory")
	}

	store := repository.NewStore(gormDB)
	validator := validation.New()
	authService := service.NewAuthService(store.Users, blobs, auth.NewJWTService(cfg.JWTSecret, cfg.JWTTTL), nil, log)
	bookService := service.NewBookService(store, validator, nil)

	created, skipped, err := seed(ctx, authService, bookService, catalog, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to seed catalog")
	}
	log.Info().Int("created", created).Int("skipped", skipped).Msg("Seed completed successfully")
}

// loadCatalog reads the catalog from a local file or fetches it over HTTP.
func loadCatalog(ctx context.Context, source string) (*Catalog, error) {
	var catalog Catalog

	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		resp, err := resty.New().
			SetTimeout(30*time.Second).
			R().
			SetContext(ctx).
			SetResult(&catalog).
			Get(source)
		if err != nil {
			return nil, fmt.Errorf("fetch catalog: %w", err)
		}
		if resp.IsError() {
			return nil, fmt.Errorf("catalog source returned status code: %d", resp.StatusCode())
		}
		return &catalog, nil
	}

	data, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return &catalog, nil
}

// seed creates the owner when missing and adds every catalog book the owner
// does not already list under the same title and author. Invalid entries are
// logged and skipped.
func seed(
	ctx context.Context,
	authService service.AuthService,
	bookService service.BookService,
	catalog *Catalog,
	log zerolog.Logger,
) (created int, skipped int, err error) {
	owner, err := ownerIdentity(ctx, authService, catalog.Owner)
	if err != nil {
		return 0, 0, err
	}

	existing, err := bookService.ListByOwner(ctx, owner.UserID)
	if err != nil {
		return 0, 0, fmt.Errorf("list owner books: %w", err)
	}
	seen := make(map[string]bool, len(existing))
	for _, b := range existing {
		seen[bookKey(b.Title, b.Author)] = true
	}

	for i, payload := range catalog.Books {
		if payload.Title != nil && payload.Author != nil && seen[bookKey(*payload.Title, *payload.Author)] {
			skipped++
			continue
		}

		book, err := bookService.Create(ctx, owner, payload)
		if err != nil {
			var domainErr *apperrors.Error
			if errors.As(err, &domainErr) && domainErr.Kind != apperrors.KindStorageFailure {
				log.Warn().Err(err).Int("index", i).Msg("Skipping invalid catalog entry")
				skipped++
				continue
			}
			return created, skipped, fmt.Errorf("create book %d: %w", i, err)
		}
		seen[bookKey(book.Title, book.Author)] = true
		created++
	}
	return created, skipped, nil
}

func ownerIdentity(ctx context.Context, authService service.AuthService, owner SeedOwner) (auth.Identity, error) {
	user, _, err := authService.Register(ctx, service.RegisterInput{
		Username: owner.Username,
		Email:    owner.Email,
		Password: owner.Password,
	})
	if err == nil {
		return auth.Identity{UserID: user.ID, Username: user.Username}, nil
	}
	if !errors.Is(err, apperrors.ErrDuplicateCredential) {
		return auth.Identity{}, fmt.Errorf("register seed owner: %w", err)
	}

	token, err := authService.Login(ctx, owner.Username, owner.Password)
	if err != nil {
		return auth.Identity{}, fmt.Errorf("login seed owner: %w", err)
	}
	return authService.Verify(token)
}

func bookKey(title, author string) string {
	return strings.ToLower(strings.TrimSpace(title)) + "\x00" + strings.ToLower(strings.TrimSpace(author))
}

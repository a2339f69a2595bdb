package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	_ "github.com/KDDD10/Hooked-on-Books-backend/docs" // swagger docs

	"github.com/KDDD10/Hooked-on-Books-backend/internal/auth"
	"github.com/KDDD10/Hooked-on-Books-backend/internal/cache"
	"github.com/KDDD10/Hooked-on-Books-backend/internal/config"
	"github.com/KDDD10/Hooked-on-Books-backend/internal/db"
	"github.com/KDDD10/Hooked-on-Books-backend/internal/handler"
	"github.com/KDDD10/Hooked-on-Books-backend/internal/logger"
	"github.com/KDDD10/Hooked-on-Books-backend/internal/repository"
	"github.com/KDDD10/Hooked-on-Books-backend/internal/router"
	"github.com/KDDD10/Hooked-on-Books-backend/internal/service"
	"github.com/KDDD10/Hooked-on-Books-backend/internal/storage"
	"github.com/KDDD10/Hooked-on-Books-backend/internal/validation"
)

const shutdownTimeout = 10 * time.Second

// @title Hooked on Books API
// @version 1.0
// @description Book catalog with owner-only edits, reviews and upvotes, secured with JWT bearer tokens.
// @host localhost:5000
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()
	log := logger.New(cfg.IsProduction(), cfg.LogLevel, os.Stdout)

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	gormDB, err := db.Open(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	if sqlDB, err := gormDB.DB(); err == nil {
		defer sqlDB.Close()
	}

	if cfg.ResetDB {
		log.Warn().Msg("RESET_DB=true detected, dropping all tables")
		if err := db.Reset(gormDB); err != nil {
			return err
		}
	}
	if err := db.Migrate(gormDB); err != nil {
		return err
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()
	if cacheClient != nil {
		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := cacheClient.Ping(pingCtx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable, reads go to the database")
		}
		cancel()
	}

	blobs, err := storage.NewLocalStore(cfg.UploadDir)
	if err != nil {
		return err
	}

	store := repository.NewStore(gormDB)
	validator := validation.New()
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.JWTTTL)

	authService := service.NewAuthService(store.Users, blobs, jwtService, cacheClient, log)
	bookService := service.NewBookService(store, validator, cacheClient)
	reviewService := service.NewReviewService(store)

	e := echo.New()
	router.Register(e, cfg, log, validator, authService, router.Handlers{
		Auth:    handler.NewAuthHandler(authService),
		Books:   handler.NewBookHandler(bookService),
		Reviews: handler.NewReviewHandler(reviewService),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           e,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, gCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		log.Info().Str("addr", srv.Addr).Str("driver", cfg.DBDriver).Msg("server listening")
		log.Info().Msgf("Swagger documentation available at: %s", swaggerURL(cfg.SwaggerHost))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-gCtx.Done()
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return group.Wait()
}

// swaggerURL builds the docs address. SwaggerHost may already include a scheme.
func swaggerURL(host string) string {
	if host == "" {
		// docker-compose maps the container port to 5000
		return "http://localhost:5000/swagger/index.html"
	}
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}
	return strings.TrimSuffix(host, "/") + "/swagger/index.html"
}

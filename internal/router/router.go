package router

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	"github.com/KDDD10/Hooked-on-Books-backend/internal/auth"
	"github.com/KDDD10/Hooked-on-Books-backend/internal/config"
	apperrors "github.com/KDDD10/Hooked-on-Books-backend/internal/errors"
	"github.com/KDDD10/Hooked-on-Books-backend/internal/handler"
	"github.com/KDDD10/Hooked-on-Books-backend/internal/validation"
)

// TokenVerifier resolves bearer tokens to identities.
type TokenVerifier interface {
	Verify(token string) (auth.Identity, error)
}

// Handlers groups the HTTP handlers served by the API.
type Handlers struct {
	Auth    *handler.AuthHandler
	Books   *handler.BookHandler
	Reviews *handler.ReviewHandler
}

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	log zerolog.Logger,
	validator *validation.Validator,
	verifier TokenVerifier,
	h Handlers,
) {
	e.HideBanner = true
	e.Validator = validator
	e.HTTPErrorHandler = errorHandler(e, log)

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(requestLogger(log))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.BodyLimit("8M"))

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	requireToken := echojwt.WithConfig(echojwt.Config{
		ContextKey: handler.IdentityContextKey,
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			return verifier.Verify(token)
		},
		ErrorHandler: handler.TokenErrorHandler,
	})
	limitAuth := authRateLimiter(cfg.LoginRatePerMin)

	// Auth routes
	api.POST("/auth/register", h.Auth.Register, limitAuth)
	api.POST("/auth/login", h.Auth.Login, limitAuth)
	api.POST("/auth/logout", h.Auth.Logout, requireToken)
	api.GET("/auth/profile", h.Auth.Profile, requireToken)
	api.GET("/auth/profile_pic/:filename", h.Auth.ProfilePicture)

	// Book routes
	api.GET("/books", h.Books.List)
	api.POST("/books", h.Books.Create, requireToken)
	api.GET("/books/user/:user_id", h.Books.ListByOwner)
	api.GET("/books/:id", h.Books.Get)
	api.PUT("/books/:id", h.Books.Update, requireToken)
	api.DELETE("/books/:id", h.Books.Delete, requireToken)
	api.GET("/books/:id/rating", h.Reviews.Summary)
	api.GET("/books/:id/reviews", h.Reviews.ListByBook)
	api.POST("/books/:id/reviews", h.Reviews.Create, requireToken)

	// Review routes
	api.GET("/reviews/:id", h.Reviews.Get)
	api.PUT("/reviews/:id", h.Reviews.Update, requireToken)
	api.DELETE("/reviews/:id", h.Reviews.Delete, requireToken)
	api.POST("/reviews/:id/upvote", h.Reviews.Upvote)
}

// authRateLimiter limits login and registration attempts per client IP.
func authRateLimiter(perMinute int) echo.MiddlewareFunc {
	if perMinute <= 0 {
		perMinute = 20
	}
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(float64(perMinute) / 60),
		Burst:     perMinute,
		ExpiresIn: 3 * time.Minute,
	})
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, apperrors.ErrorResponse{
				Error: "too many attempts, try again later",
				Code:  "RATE_LIMITED",
			})
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusForbidden, apperrors.ErrorResponse{
				Error: "could not identify client",
				Code:  string(apperrors.KindForbidden),
			})
		},
	})
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			event := log.Info()
			if v.Status >= http.StatusInternalServerError {
				event = log.Error()
			}
			event.
				Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Msg("request")
			return nil
		},
	})
}

// errorHandler renders every error as an ErrorResponse and logs the cause of
// server errors, which never reaches the client.
func errorHandler(e *echo.Echo, log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		var he *echo.HTTPError
		if !errors.As(err, &he) {
			log.Error().Err(err).Str("uri", c.Request().RequestURI).Msg("unhandled error")
			httpErr := apperrors.MapErrorToHTTP(err)
			he = echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
		} else if he.Internal != nil && he.Code >= http.StatusInternalServerError {
			log.Error().Err(he.Internal).Str("uri", c.Request().RequestURI).Msg("request failed")
		}

		if _, ok := he.Message.(apperrors.ErrorResponse); !ok {
			msg := fmt.Sprint(he.Message)
			if he.Code >= http.StatusInternalServerError {
				msg = apperrors.ErrStorageFailure.Message
			}
			he = echo.NewHTTPError(he.Code, apperrors.ErrorResponse{
				Error: msg,
				Code:  codeForStatus(he.Code),
			})
		}
		e.DefaultHTTPErrorHandler(he, c)
	}
}

// codeForStatus names framework errors such as unknown routes.
func codeForStatus(status int) string {
	switch {
	case status == http.StatusNotFound:
		return string(apperrors.KindNotFound)
	case status == http.StatusUnauthorized:
		return string(apperrors.KindInvalidToken)
	case status == http.StatusForbidden:
		return string(apperrors.KindForbidden)
	case status >= http.StatusInternalServerError:
		return string(apperrors.KindStorageFailure)
	default:
		return string(apperrors.KindInvalidRequest)
	}
}

package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	apperrors "github.com/KDDD10/Hooked-on-Books-backend/internal/errors"
	"github.com/KDDD10/Hooked-on-Books-backend/internal/model"
	"github.com/KDDD10/Hooked-on-Books-backend/internal/service"
	"github.com/KDDD10/Hooked-on-Books-backend/internal/validation"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService service.AuthService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID                uint   `json:"id"`
	Username          string `json:"username"`
	Email             string `json:"email"`
	ProfilePicture    string `json:"profile_picture"`
	ProfilePictureURL string `json:"profile_picture_url,omitempty"`
	DateJoined        string `json:"date_joined"`
}

// RegisterResponse represents a successful registration.
type RegisterResponse struct {
	Message     string       `json:"message"`
	User        UserResponse `json:"user"`
	AccessToken string       `json:"access_token"`
}

// TokenResponse represents a login response.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
}

func newUserResponse(u *model.User) UserResponse {
	resp := UserResponse{
		ID:             u.ID,
		Username:       u.Username,
		Email:          u.Email,
		ProfilePicture: u.ProfilePicture,
		DateJoined:     u.DateJoined.UTC().Format(time.RFC3339),
	}
	if u.ProfilePicture != "" && u.ProfilePicture != model.DefaultProfilePicture {
		resp.ProfilePictureURL = "/api/auth/profile_pic/" + u.ProfilePicture
	}
	return resp
}

// Register godoc
// @Summary Register a new user
// @Description Accepts JSON or multipart form data. A multipart profile_picture (png, jpg, jpeg, gif) is stored when its content is an image.
// @Tags auth
// @Accept json,mpfd
// @Produce json
// @Param request body validation.RegisterRequest true "Registration data"
// @Param profile_picture formData file false "Profile picture"
// @Success 201 {object} RegisterResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req validation.RegisterRequest
	if err := bindBody(c, &req); err != nil {
		return toHTTPError(err)
	}
	if err := c.Validate(&req); err != nil {
		return toHTTPError(err)
	}

	in := service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	}

	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		fh, err := c.FormFile("profile_picture")
		switch {
		case err == nil:
			f, err := fh.Open()
			if err != nil {
				return toHTTPError(apperrors.InvalidRequest("could not read profile_picture", "profile_picture"))
			}
			defer f.Close()
			in.Picture = &service.Upload{Filename: fh.Filename, Content: f}
		case !errors.Is(err, http.ErrMissingFile):
			return toHTTPError(apperrors.InvalidRequest("invalid profile_picture", "profile_picture"))
		}
	}

	user, token, err := h.authService.Register(c.Request().Context(), in)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusCreated, RegisterResponse{
		Message:     "User registered successfully",
		User:        newUserResponse(user),
		AccessToken: token,
	})
}

// Login godoc
// @Summary Login user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body validation.LoginRequest true "Login credentials"
// @Success 200 {object} TokenResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 429 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req validation.LoginRequest
	if err := bindBody(c, &req); err != nil {
		return toHTTPError(err)
	}
	if err := c.Validate(&req); err != nil {
		return toHTTPError(err)
	}

	token, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, TokenResponse{AccessToken: token})
}

// Logout godoc
// @Summary Logout user
// @Description Tokens are stateless; the client discards its token.
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} MessageResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	if _, err := CallerIdentity(c); err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Logout successful"})
}

// Profile godoc
// @Summary Get the caller's profile
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} UserResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/profile [get]
func (h *AuthHandler) Profile(c echo.Context) error {
	caller, err := CallerIdentity(c)
	if err != nil {
		return toHTTPError(err)
	}

	user, err := h.authService.Profile(c.Request().Context(), caller)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, newUserResponse(user))
}

// ProfilePicture godoc
// @Summary Download a profile picture
// @Tags auth
// @Produce image/png,image/jpeg,image/gif
// @Param filename path string true "Picture file name"
// @Success 200 {file} binary
// @Failure 404 {object} errors.ErrorResponse
// @Router /auth/profile_pic/{filename} [get]
func (h *AuthHandler) ProfilePicture(c echo.Context) error {
	rc, contentType, err := h.authService.ProfilePicture(c.Request().Context(), c.Param("filename"))
	if err != nil {
		return toHTTPError(err)
	}
	defer rc.Close()
	return c.Stream(http.StatusOK, contentType, rc)
}

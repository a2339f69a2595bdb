package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/KDDD10/Hooked-on-Books-backend/internal/auth"
	apperrors "github.com/KDDD10/Hooked-on-Books-backend/internal/errors"
)

// IdentityContextKey is where the JWT middleware stores the verified auth.Identity.
const IdentityContextKey = "identity"

// MessageResponse is a plain acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// toHTTPError converts any error into an echo error carrying an ErrorResponse.
// Server errors keep the cause as the internal error for logging.
func toHTTPError(err error) error {
	httpErr := apperrors.MapErrorToHTTP(err)
	he := echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	if httpErr.StatusCode >= http.StatusInternalServerError {
		return he.SetInternal(err)
	}
	return he
}

// CallerIdentity returns the identity of an authenticated request.
func CallerIdentity(c echo.Context) (auth.Identity, error) {
	id, ok := c.Get(IdentityContextKey).(auth.Identity)
	if !ok || id.UserID == 0 {
		return auth.Identity{}, apperrors.ErrInvalidToken
	}
	return id, nil
}

// TokenErrorHandler answers requests rejected by the JWT middleware.
func TokenErrorHandler(c echo.Context, err error) error {
	return toHTTPError(apperrors.ErrInvalidToken)
}

func parseID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.InvalidRequest("invalid "+name, name)
	}
	return uint(id), nil
}

func bindBody(c echo.Context, dst interface{}) error {
	if err := c.Bind(dst); err != nil {
		return apperrors.InvalidRequest("invalid request body", "")
	}
	return nil
}

package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is the machine-readable code attached to every error returned to API clients.
type Kind string

const (
	KindDuplicateCredential Kind = "DUPLICATE_CREDENTIAL"
	KindInvalidCredential   Kind = "INVALID_CREDENTIAL"
	KindInvalidToken        Kind = "INVALID_TOKEN"
	KindNotFound            Kind = "NOT_FOUND"
	KindForbidden           Kind = "FORBIDDEN"
	KindMissingField        Kind = "MISSING_FIELD"
	KindBadDate             Kind = "BAD_DATE"
	KindMissingRating       Kind = "MISSING_RATING"
	KindRatingOutOfRange    Kind = "RATING_OUT_OF_RANGE"
	KindFieldTooLong        Kind = "FIELD_TOO_LONG"
	KindInvalidGenre        Kind = "INVALID_GENRE"
	KindInvalidRequest      Kind = "INVALID_REQUEST"
	KindStorageFailure      Kind = "STORAGE_FAILURE"
)

// HTTPStatus returns the status code used when an error of this kind reaches the API.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindDuplicateCredential:
		return http.StatusConflict
	case KindInvalidCredential, KindInvalidToken:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	case KindMissingField, KindBadDate, KindMissingRating, KindRatingOutOfRange,
		KindFieldTooLong, KindInvalidGenre, KindInvalidRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Error is a domain error. Field names the offending payload field and Entity
// names the missing resource, when relevant.
type Error struct {
	Kind    Kind
	Message string
	Field   string
	Entity  string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches another *Error of the same kind. A target with a Field or Entity
// set only matches errors carrying the same value, so ErrNotFound matches any
// missing entity while ErrBookNotFound matches missing books only.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	if e.Kind != t.Kind {
		return false
	}
	if t.Field != "" && t.Field != e.Field {
		return false
	}
	if t.Entity != "" && t.Entity != e.Entity {
		return false
	}
	return true
}

var (
	// ErrDuplicateCredential is returned when the username or email is already registered.
	ErrDuplicateCredential = &Error{Kind: KindDuplicateCredential, Message: "username or email already exists"}
	// ErrInvalidCredential is returned when the username or password is wrong.
	ErrInvalidCredential = &Error{Kind: KindInvalidCredential, Message: "invalid username or password"}
	// ErrInvalidToken is returned for missing, expired or tampered bearer tokens.
	ErrInvalidToken = &Error{Kind: KindInvalidToken, Message: "invalid or expired token"}
	// ErrForbidden is returned when the caller does not own the resource being mutated.
	ErrForbidden = &Error{Kind: KindForbidden, Message: "you don't have permission to modify this resource"}
	// ErrBadDate is returned when publication_date is not a YYYY-MM-DD date.
	ErrBadDate = &Error{Kind: KindBadDate, Message: "publication_date must be a date in YYYY-MM-DD format", Field: "publication_date"}
	// ErrMissingRating is returned when a review payload has no rating.
	ErrMissingRating = &Error{Kind: KindMissingRating, Message: "rating is required", Field: "rating"}
	// ErrRatingOutOfRange is returned when a rating is not an integer between 1 and 5.
	ErrRatingOutOfRange = &Error{Kind: KindRatingOutOfRange, Message: "invalid rating, must be an integer between 1 and 5", Field: "rating"}
	// ErrInvalidGenre is returned when a genre tag contains the storage delimiter.
	ErrInvalidGenre = &Error{Kind: KindInvalidGenre, Message: "genre tags must not contain commas", Field: "genres"}
	// ErrStorageFailure is the generic backend failure. Its message never carries driver detail.
	ErrStorageFailure = &Error{Kind: KindStorageFailure, Message: "storage failure"}

	ErrNotFound       = &Error{Kind: KindNotFound, Message: "not found"}
	ErrUserNotFound   = NotFound("user")
	ErrBookNotFound   = NotFound("book")
	ErrReviewNotFound = NotFound("review")

	ErrMissingField   = &Error{Kind: KindMissingField, Message: "missing required field"}
	ErrFieldTooLong   = &Error{Kind: KindFieldTooLong, Message: "field exceeds the maximum allowed length"}
	ErrInvalidRequest = &Error{Kind: KindInvalidRequest, Message: "invalid request"}
)

// NotFound reports a missing entity such as "book" or "review".
func NotFound(entity string) *Error {
	return &Error{Kind: KindNotFound, Message: entity + " not found", Entity: entity}
}

// MissingField reports an absent or empty required field.
func MissingField(name string) *Error {
	return &Error{Kind: KindMissingField, Message: "missing required field: " + name, Field: name}
}

// FieldTooLong reports a field exceeding its storage limit. An empty name means
// the store rejected the write without saying which column.
func FieldTooLong(name string) *Error {
	if name == "" {
		return &Error{Kind: KindFieldTooLong, Message: "one or more fields exceed the maximum allowed length"}
	}
	return &Error{Kind: KindFieldTooLong, Message: name + " exceeds the maximum allowed length", Field: name}
}

// InvalidRequest reports a malformed body, path parameter or field value.
func InvalidRequest(msg, field string) *Error {
	return &Error{Kind: KindInvalidRequest, Message: msg, Field: field}
}

// Storage wraps a backend error as a StorageFailure.
func Storage(cause error) *Error {
	return &Error{Kind: KindStorageFailure, Message: ErrStorageFailure.Message, cause: cause}
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error  string `json:"error"`
	Code   string `json:"code"`
	Field  string `json:"field,omitempty"`
	Entity string `json:"entity,omitempty"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
	Field      string
	Entity     string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error:  e.Message,
		Code:   e.Code,
		Field:  e.Field,
		Entity: e.Entity,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Anything that is not a
// domain error is reported as a storage failure with a generic message.
func MapErrorToHTTP(err error) *HTTPError {
	var domainErr *Error
	if !errors.As(err, &domainErr) || domainErr.Kind == KindStorageFailure {
		return NewHTTPError(http.StatusInternalServerError, ErrStorageFailure.Message, string(KindStorageFailure))
	}
	return &HTTPError{
		StatusCode: domainErr.Kind.HTTPStatus(),
		Message:    domainErr.Message,
		Code:       string(domainErr.Kind),
		Field:      domainErr.Field,
		Entity:     domainErr.Entity,
	}
}

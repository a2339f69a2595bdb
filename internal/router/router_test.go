package router

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KDDD10/Hooked-on-Books-backend/internal/auth"
	"github.com/KDDD10/Hooked-on-Books-backend/internal/config"
	"github.com/KDDD10/Hooked-on-Books-backend/internal/db"
	"github.com/KDDD10/Hooked-on-Books-backend/internal/handler"
	"github.com/KDDD10/Hooked-on-Books-backend/internal/repository"
	"github.com/KDDD10/Hooked-on-Books-backend/internal/service"
	"github.com/KDDD10/Hooked-on-Books-backend/internal/storage"
	"github.com/KDDD10/Hooked-on-Books-backend/internal/validation"
)

const pixelPNG = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII="

func newTestServer(t *testing.T, loginPerMin int) *echo.Echo {
	t.Helper()
	dir := t.TempDir()

	conn, err := db.NewSQLite(filepath.Join(dir, "api.db"))
	require.NoError(t, err)
	require.NoError(t, db.Migrate(conn))
	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			sqlDB.Close()
		}
	})

	blobs, err := storage.NewLocalStore(filepath.Join(dir, "uploads"))
	require.NoError(t, err)

	log := zerolog.Nop()
	store := repository.NewStore(conn)
	validator := validation.New()
	jwtService := auth.NewJWTService("test-secret", time.Hour)

	authService := service.NewAuthService(store.Users, blobs, jwtService, nil, log)
	bookService := service.NewBookService(store, validator, nil)
	reviewService := service.NewReviewService(store)

	e := echo.New()
	Register(e, &config.Config{LoginRatePerMin: loginPerMin}, log, validator, authService, Handlers{
		Auth:    handler.NewAuthHandler(authService),
		Books:   handler.NewBookHandler(bookService),
		Reviews: handler.NewReviewHandler(reviewService),
	})
	return e
}

type response struct {
	Code int
	Body map[string]interface{}
	Raw  []byte
}

func do(t *testing.T, e *echo.Echo, method, path, body, token string) response {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	resp := response{Code: rec.Code, Raw: rec.Body.Bytes()}
	_ = json.Unmarshal(rec.Body.Bytes(), &resp.Body)
	return resp
}

func register(t *testing.T, e *echo.Echo, username string) string {
	t.Helper()
	resp := do(t, e, http.MethodPost, "/api/auth/register",
		fmt.Sprintf(`{"username":%q,"email":"%s@example.com","password":"pw-%s"}`, username, username, username), "")
	require.Equal(t, http.StatusCreated, resp.Code, string(resp.Raw))
	token, _ := resp.Body["access_token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestOwnershipScenario(t *testing.T) {
	e := newTestServer(t, 100)
	alice := register(t, e, "alice")
	carol := register(t, e, "carol")

	created := do(t, e, http.MethodPost, "/api/books",
		`{"title":"Dune","author":"Frank Herbert","publication_date":"1965-08-01","genres":["sci-fi","classic"]}`, alice)
	require.Equal(t, http.StatusCreated, created.Code, string(created.Raw))
	bookID := int(created.Body["book_id"].(float64))
	bookPath := fmt.Sprintf("/api/books/%d", bookID)

	review := do(t, e, http.MethodPost, bookPath+"/reviews", `{"rating":4,"review_text":"spicy"}`, carol)
	require.Equal(t, http.StatusCreated, review.Code, string(review.Raw))
	reviewPath := fmt.Sprintf("/api/reviews/%d", int(review.Body["review_id"].(float64)))

	forbidden := do(t, e, http.MethodPut, bookPath, `{"title":"Mine now"}`, carol)
	assert.Equal(t, http.StatusForbidden, forbidden.Code)
	assert.Equal(t, "FORBIDDEN", forbidden.Body["code"])

	assert.Equal(t, http.StatusForbidden, do(t, e, http.MethodDelete, bookPath, "", carol).Code)

	updated := do(t, e, http.MethodPut, bookPath, `{"title":"Dune (1965)"}`, alice)
	require.Equal(t, http.StatusOK, updated.Code, string(updated.Raw))

	got := do(t, e, http.MethodGet, bookPath, "", "")
	require.Equal(t, http.StatusOK, got.Code)
	assert.Equal(t, "Dune (1965)", got.Body["title"])
	assert.Equal(t, "Frank Herbert", got.Body["author"])
	assert.Equal(t, "1965-08-01", got.Body["publication_date"])
	assert.Equal(t, []interface{}{"sci-fi", "classic"}, got.Body["genres"])

	deleted := do(t, e, http.MethodDelete, bookPath, "", alice)
	require.Equal(t, http.StatusOK, deleted.Code, string(deleted.Raw))

	gone := do(t, e, http.MethodGet, bookPath, "", "")
	assert.Equal(t, http.StatusNotFound, gone.Code)
	assert.Equal(t, "NOT_FOUND", gone.Body["code"])
	assert.Equal(t, "book", gone.Body["entity"])

	assert.Equal(t, http.StatusNotFound, do(t, e, http.MethodGet, reviewPath, "", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, e, http.MethodGet, bookPath+"/reviews", "", "").Code)
}

func TestAuthFlow(t *testing.T) {
	e := newTestServer(t, 100)
	register(t, e, "alice")

	dup := do(t, e, http.MethodPost, "/api/auth/register",
		`{"username":"alice","email":"new@example.com","password":"pw"}`, "")
	assert.Equal(t, http.StatusConflict, dup.Code)
	assert.Equal(t, "DUPLICATE_CREDENTIAL", dup.Body["code"])

	missing := do(t, e, http.MethodPost, "/api/auth/register", `{"username":"bob","password":"pw"}`, "")
	assert.Equal(t, http.StatusBadRequest, missing.Code)
	assert.Equal(t, "MISSING_FIELD", missing.Body["code"])
	assert.Equal(t, "email", missing.Body["field"])

	bad := do(t, e, http.MethodPost, "/api/auth/login", `{"username":"alice","password":"nope"}`, "")
	assert.Equal(t, http.StatusUnauthorized, bad.Code)
	assert.Equal(t, "INVALID_CREDENTIAL", bad.Body["code"])

	login := do(t, e, http.MethodPost, "/api/auth/login", `{"username":"alice","password":"pw-alice"}`, "")
	require.Equal(t, http.StatusOK, login.Code)
	token := login.Body["access_token"].(string)

	profile := do(t, e, http.MethodGet, "/api/auth/profile", "", token)
	require.Equal(t, http.StatusOK, profile.Code)
	assert.Equal(t, "alice", profile.Body["username"])
	assert.Equal(t, "default.jpg", profile.Body["profile_picture"])
	assert.NotContains(t, string(profile.Raw), "password")

	assert.Equal(t, http.StatusOK, do(t, e, http.MethodPost, "/api/auth/logout", "", token).Code)

	for _, tok := range []string{"", "garbage", token + "x"} {
		resp := do(t, e, http.MethodGet, "/api/auth/profile", "", tok)
		assert.Equal(t, http.StatusUnauthorized, resp.Code)
		assert.Equal(t, "INVALID_TOKEN", resp.Body["code"])
	}
}

func registerWithPicture(t *testing.T, e *echo.Echo, username, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	require.NoError(t, w.WriteField("username", username))
	require.NoError(t, w.WriteField("email", strings.ReplaceAll(username, "/", ".")+"@example.com"))
	require.NoError(t, w.WriteField("password", "pw"))
	part, err := w.CreateFormFile("profile_picture", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", &body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRegisterWithProfilePicture(t *testing.T) {
	e := newTestServer(t, 100)
	img, err := base64.StdEncoding.DecodeString(pixelPNG)
	require.NoError(t, err)

	rec := registerWithPicture(t, e, "dana", "selfie.png", img)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp handler.RegisterResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "user_dana.png", resp.User.ProfilePicture)
	assert.Equal(t, "/api/auth/profile_pic/user_dana.png", resp.User.ProfilePictureURL)

	pic := httptest.NewRecorder()
	e.ServeHTTP(pic, httptest.NewRequest(http.MethodGet, resp.User.ProfilePictureURL, nil))
	assert.Equal(t, http.StatusOK, pic.Code)
	assert.Equal(t, "image/png", pic.Header().Get(echo.HeaderContentType))
	assert.Equal(t, img, pic.Body.Bytes())

	missing := do(t, e, http.MethodGet, "/api/auth/profile_pic/nobody.png", "", "")
	assert.Equal(t, http.StatusNotFound, missing.Code)
}

func TestReviewsAndUpvotes(t *testing.T) {
	e := newTestServer(t, 100)
	alice := register(t, e, "alice")

	created := do(t, e, http.MethodPost, "/api/books",
		`{"title":"Emma","author":"Jane Austen","publication_date":"1815-12-23"}`, alice)
	require.Equal(t, http.StatusCreated, created.Code)
	bookPath := fmt.Sprintf("/api/books/%d", int(created.Body["book_id"].(float64)))

	for body, code := range map[string]string{
		`{"rating":3.5}`:  "RATING_OUT_OF_RANGE",
		`{"rating":"5"}`:  "RATING_OUT_OF_RANGE",
		`{"rating":7}`:    "RATING_OUT_OF_RANGE",
		`{"text":"hi"}`:   "MISSING_RATING",
		`{"rating":null}`: "MISSING_RATING",
	} {
		resp := do(t, e, http.MethodPost, bookPath+"/reviews", body, alice)
		assert.Equal(t, http.StatusBadRequest, resp.Code, body)
		assert.Equal(t, code, resp.Body["code"], body)
	}

	noBook := do(t, e, http.MethodPost, "/api/books/9999/reviews", `{"rating":5}`, alice)
	assert.Equal(t, http.StatusNotFound, noBook.Code)

	review := do(t, e, http.MethodPost, bookPath+"/reviews", `{"rating":5}`, alice)
	require.Equal(t, http.StatusCreated, review.Code)
	reviewPath := fmt.Sprintf("/api/reviews/%d", int(review.Body["review_id"].(float64)))

	// no token required, no per-user limit
	for i := 1; i <= 3; i++ {
		up := do(t, e, http.MethodPost, reviewPath+"/upvote", "", "")
		require.Equal(t, http.StatusOK, up.Code)
		assert.Equal(t, float64(i), up.Body["new_upvote_count"])
	}

	list := do(t, e, http.MethodGet, bookPath+"/reviews", "", "")
	require.Equal(t, http.StatusOK, list.Code)
	var reviews []map[string]interface{}
	require.NoError(t, json.Unmarshal(list.Raw, &reviews))
	require.Len(t, reviews, 1)
	assert.Equal(t, float64(3), reviews[0]["upvotes_count"])
	assert.Equal(t, "", reviews[0]["review_text"])

	summary := do(t, e, http.MethodGet, bookPath+"/rating", "", "")
	require.Equal(t, http.StatusOK, summary.Code)
	assert.Equal(t, "5.00", summary.Body["average_rating"])
	assert.Equal(t, float64(1), summary.Body["review_count"])
}

func TestRequestErrors(t *testing.T) {
	e := newTestServer(t, 100)
	alice := register(t, e, "alice")

	malformed := do(t, e, http.MethodPost, "/api/books", `{"title":`, alice)
	assert.Equal(t, http.StatusBadRequest, malformed.Code)
	assert.Equal(t, "INVALID_REQUEST", malformed.Body["code"])

	badID := do(t, e, http.MethodGet, "/api/books/abc", "", "")
	assert.Equal(t, http.StatusBadRequest, badID.Code)
	assert.Equal(t, "id", badID.Body["field"])

	unknown := do(t, e, http.MethodGet, "/api/nothing-here", "", "")
	assert.Equal(t, http.StatusNotFound, unknown.Code)
	assert.Equal(t, "NOT_FOUND", unknown.Body["code"])

	noToken := do(t, e, http.MethodPost, "/api/books", `{"title":"T"}`, "")
	assert.Equal(t, http.StatusUnauthorized, noToken.Code)

	list := do(t, e, http.MethodGet, "/api/books", "", "")
	require.Equal(t, http.StatusOK, list.Code)
	assert.Equal(t, "[]\n", string(list.Raw))

	health := httptest.NewRecorder()
	e.ServeHTTP(health, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, health.Code)
}

func TestLoginIsRateLimited(t *testing.T) {
	e := newTestServer(t, 3)

	var last response
	for i := 0; i < 4; i++ {
		last = do(t, e, http.MethodPost, "/api/auth/login", `{"username":"x","password":"y"}`, "")
	}
	assert.Equal(t, http.StatusTooManyRequests, last.Code)
	assert.Equal(t, "RATE_LIMITED", last.Body["code"])
}

func TestRegisterCannotOverwriteAnotherUsersPicture(t *testing.T) {
	e := newTestServer(t, 100)
	img, err := base64.StdEncoding.DecodeString(pixelPNG)
	require.NoError(t, err)

	rec := registerWithPicture(t, e, "alice", "alice.png", img)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	forged := append(append([]byte{}, img...), []byte("EVIL")...)
	for _, username := range []string{"x/user_alice", "mallory/user_alice", `x\user_alice`, "../user_alice"} {
		rec := registerWithPicture(t, e, username, "alice.png", forged)
		assert.Equal(t, http.StatusBadRequest, rec.Code, username)

		var errResp map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
		assert.Equal(t, "INVALID_REQUEST", errResp["code"])
		assert.Equal(t, "username", errResp["field"])
	}

	pic := httptest.NewRecorder()
	e.ServeHTTP(pic, httptest.NewRequest(http.MethodGet, "/api/auth/profile_pic/user_alice.png", nil))
	require.Equal(t, http.StatusOK, pic.Code)
	assert.Equal(t, img, pic.Body.Bytes())
}

func TestUpdateBookClearsFieldsSentAsNull(t *testing.T) {
	e := newTestServer(t, 100)
	alice := register(t, e, "alice")

	created := do(t, e, http.MethodPost, "/api/books",
		`{"title":"Dune","author":"Frank Herbert","publication_date":"1965-08-01","description":"desert","affiliate_link":"http://x","cover_image_url":"dune.jpg"}`, alice)
	require.Equal(t, http.StatusCreated, created.Code, string(created.Raw))
	bookPath := fmt.Sprintf("/api/books/%d", int(created.Body["book_id"].(float64)))

	cleared := do(t, e, http.MethodPut, bookPath, `{"description":null,"affiliate_link":null}`, alice)
	require.Equal(t, http.StatusOK, cleared.Code, string(cleared.Raw))

	got := do(t, e, http.MethodGet, bookPath, "", "")
	require.Equal(t, http.StatusOK, got.Code)
	assert.Nil(t, got.Body["description"])
	assert.Nil(t, got.Body["affiliate_link"])
	assert.Equal(t, "dune.jpg", got.Body["cover_image_url"])
	assert.Equal(t, "Dune", got.Body["title"])

	rejected := do(t, e, http.MethodPut, bookPath, `{"title":null}`, alice)
	assert.Equal(t, http.StatusBadRequest, rejected.Code)
	assert.Equal(t, "MISSING_FIELD", rejected.Body["code"])
	assert.Equal(t, "title", rejected.Body["field"])
}

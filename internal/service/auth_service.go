package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"github.com/KDDD10/Hooked-on-Books-backend/internal/auth"
	"github.com/KDDD10/Hooked-on-Books-backend/internal/cache"
	apperrors "github.com/KDDD10/Hooked-on-Books-backend/internal/errors"
	"github.com/KDDD10/Hooked-on-Books-backend/internal/model"
	"github.com/KDDD10/Hooked-on-Books-backend/internal/repository"
	"github.com/KDDD10/Hooked-on-Books-backend/internal/storage"
	"github.com/KDDD10/Hooked-on-Books-backend/internal/validation"
)

// RegisterInput carries a validated registration request.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	// Picture is optional. Filename is only used for its extension.
	Picture *Upload
}

// Upload is a file received with a request.
type Upload struct {
	Filename string
	Content  io.Reader
}

// AuthService handles authentication operations.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*model.User, string, error)
	Login(ctx context.Context, username, password string) (string, error)
	Verify(token string) (auth.Identity, error)
	Profile(ctx context.Context, caller auth.Identity) (*model.User, error)
	ProfilePicture(ctx context.Context, name string) (io.ReadCloser, string, error)
}

type authService struct {
	users      repository.UserRepository
	blobs      storage.BlobStore
	jwtService *auth.JWTService
	cache      *cache.Client
	log        zerolog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	users repository.UserRepository,
	blobs storage.BlobStore,
	jwtService *auth.JWTService,
	cache *cache.Client,
	log zerolog.Logger,
) AuthService {
	return &authService{
		users:      users,
		blobs:      blobs,
		jwtService: jwtService,
		cache:      cache,
		log:        log,
	}
}

// Register creates a user with a hashed password and returns it with a token.
func (s *authService) Register(ctx context.Context, in RegisterInput) (*model.User, string, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if !validation.IsUsername(in.Username) {
		return nil, "", apperrors.InvalidRequest("username may only contain letters, digits, '.', '_' and '-'", "username")
	}

	// The unique indexes decide races; this lookup only avoids hashing for nothing.
	exists, err := s.users.ExistsByUsernameOrEmail(ctx, in.Username, in.Email)
	if err != nil {
		return nil, "", err
	}
	if exists {
		return nil, "", apperrors.ErrDuplicateCredential
	}

	hashed, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, "", err
	}

	picture, err := s.storePicture(ctx, in.Username, in.Picture)
	if err != nil {
		return nil, "", err
	}

	user := &model.User{
		Username:       in.Username,
		Email:          in.Email,
		PasswordHash:   hashed,
		ProfilePicture: picture,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := s.jwtService.Issue(user)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	return user, token, nil
}

// storePicture saves an uploaded picture as user_<username><ext>. Uploads that
// are not images keep the default picture.
func (s *authService) storePicture(ctx context.Context, username string, up *Upload) (string, error) {
	if up == nil || up.Content == nil {
		return model.DefaultProfilePicture, nil
	}
	ext, ok := storage.ImageExt(up.Filename)
	if !ok {
		s.log.Debug().Str("filename", up.Filename).Msg("ignoring profile picture with unsupported extension")
		return model.DefaultProfilePicture, nil
	}
	content, isImage, err := storage.SniffImage(up.Content)
	if err != nil {
		return "", apperrors.InvalidRequest("could not read profile_picture", "profile_picture")
	}
	if !isImage {
		s.log.Debug().Str("filename", up.Filename).Msg("ignoring profile picture that is not an image")
		return model.DefaultProfilePicture, nil
	}

	name := "user_" + username + ext
	if clean, err := storage.CleanName(name); err != nil || clean != name {
		return "", apperrors.InvalidRequest("invalid username", "username")
	}
	if err := s.blobs.Put(ctx, name, content); err != nil {
		return "", err
	}
	return name, nil
}

// Login checks the credentials and returns a fresh access token.
func (s *authService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.users.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", apperrors.ErrInvalidCredential
		}
		return "", err
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return "", apperrors.ErrInvalidCredential
	}

	token, err := s.jwtService.Issue(user)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}

// Verify resolves a bearer token to the caller identity.
func (s *authService) Verify(token string) (auth.Identity, error) {
	return s.jwtService.Verify(token)
}

// Profile returns the caller's user record with caching.
func (s *authService) Profile(ctx context.Context, caller auth.Identity) (*model.User, error) {
	key := cache.UserKey(caller.UserID)

	var cached model.User
	if s.cache.GetJSON(ctx, key, &cached) {
		return &cached, nil
	}

	user, err := s.users.FindByID(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}

	s.cache.SetJSON(ctx, key, user, cache.DefaultTTL)
	return user, nil
}

// ProfilePicture opens a stored profile picture.
func (s *authService) ProfilePicture(ctx context.Context, name string) (io.ReadCloser, string, error) {
	return s.blobs.Open(ctx, name)
}

package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/KDDD10/Hooked-on-Books-backend/internal/errors"
)

const (
	bcryptCost = 10
	// MaxPasswordBytes is the bcrypt input limit; longer secrets would be silently truncated.
	MaxPasswordBytes = 72
)

// HashPassword returns a salted bcrypt hash of password.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", apperrors.MissingField("password")
	}
	if len(password) > MaxPasswordBytes {
		return "", apperrors.FieldTooLong("password")
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

// CheckPassword reports whether password matches the stored hash.
func CheckPassword(hash, password string) bool {
	if len(password) > MaxPasswordBytes {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

package auth

import (
	"crypto/subtle"
	"errors"
	"log"

	"golang.org/x/crypto/bcrypt"

	"timetrack/internal/apperror"
)

// ErrWeakPassword is returned for passwords bcrypt cannot take.
var ErrWeakPassword = apperror.Validation("password must be between 8 and 72 bytes")

// HashPassword returns a salted bcrypt hash of password.
func HashPassword(password string) (string, error) {
	if len(password) < 8 || len(password) > 72 {
		return "", ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword checks password against a stored bcrypt hash.
//
// Deprecated fallback: a stored value that is not a bcrypt hash is treated
// as a legacy plaintext password and compared in constant time. This keeps
// old accounts able to log in; it is not a security guarantee.
func VerifyPassword(stored, password string) bool {
	if stored == "" {
		return false
	}
	if _, err := bcrypt.Cost([]byte(stored)); err != nil {
		ok := subtle.ConstantTimeCompare([]byte(stored), []byte(password)) == 1
		if ok {
			log.Printf("deprecated: plaintext password accepted, rehash this account")
		}
		return ok
	}
	err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(password))
	if err != nil && !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		log.Printf("password verify failed: %v", err)
	}
	return err == nil
}

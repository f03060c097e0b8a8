package crypto

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// passwordCost is fixed; the salt and cost are embedded in the digest so
// verification needs nothing beyond the stored hash.
const passwordCost = 12

var (
	// ErrPasswordMismatch is returned when the password does not match
	// the stored digest.
	ErrPasswordMismatch = errors.New("password mismatch")
	// ErrCorruptCredential is returned when the stored digest cannot be
	// parsed at all.
	ErrCorruptCredential = errors.New("corrupt credential digest")
)

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CheckPassword(hash, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if err == nil {
		return nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrPasswordMismatch
	}
	return ErrCorruptCredential
}

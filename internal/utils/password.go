package utils

import (
	"crypto/subtle"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword returns a bcrypt hash using the given cost.
func HashPassword(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword compares a stored password with plain.  Rows imported
// from the legacy store hold plaintext; those match by constant-time
// comparison and report rehash=true so the caller can upgrade them.
func VerifyPassword(stored, plain string) (ok, rehash bool) {
	if stored == "" {
		return false, false
	}
	if IsBcryptHash(stored) {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(plain)) == nil, false
	}
	ok = subtle.ConstantTimeCompare([]byte(stored), []byte(plain)) == 1
	return ok, ok
}

// IsBcryptHash reports whether s looks like a bcrypt hash.
func IsBcryptHash(s string) bool {
	return len(s) == 60 && strings.HasPrefix(s, "$2")
}

package auth

import (
	"crypto/rand"
	"crypto/subtle"

	"github.com/pkg/errors"
	"golang.org/x/crypto/argon2"
)

const (
	argonTime    = 3
	argonMemory  = 64 * 1024
	argonThreads = 1
	argonKeyLen  = 32
	saltLen      = 16
)

func randBytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return nil, errors.Wrap(err, "reading random bytes")
	}
	return buf, nil
}

// HashPassword derives an argon2id hash of password under a fresh salt and
// returns both.
func HashPassword(password string) (hash, salt []byte, err error) {
	salt, err = randBytes(saltLen)
	if err != nil {
		return nil, nil, err
	}
	hash = argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)
	return hash, salt, nil
}

// VerifyPassword reports whether password matches the stored hash/salt pair.
// The comparison is constant time.
func VerifyPassword(password string, hash, salt []byte) bool {
	candidate := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)
	return subtle.ConstantTimeCompare(candidate, hash) == 1
}

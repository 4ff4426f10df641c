package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"time"

	"github.com/oklog/ulid/v2"
)

// NewVerificationToken returns a fresh email verification token.
// The entropy comes from crypto/rand so tokens are not guessable.
func NewVerificationToken() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}

// TokenIssuedAt extracts the issue time encoded in a token.
func TokenIssuedAt(token string) (time.Time, bool) {
	id, err := ulid.ParseStrict(token)
	if err != nil {
		return time.Time{}, false
	}
	return ulid.Time(id.Time()), true
}

// TokensEqual compares two tokens in constant time.
func TokensEqual(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

package security

import (
	"crypto/sha256"
	"encoding/hex"

	"golang.org/x/crypto/bcrypt"
)

// refreshHashCost is lower than the password cost: refresh validation scans a
// user's sessions and runs one compare per row.
const refreshHashCost = 10

// HashRefreshToken returns a salted bcrypt hash of the refresh token, so the
// raw token is never stored. bcrypt caps input at 72 bytes and a signed JWT is
// always longer, so the token is pre-digested with SHA-256 (hex, 64 bytes)
// before hashing. The per-call bcrypt salt means equal tokens produce
// different hashes; lookup is by comparison, never by index.
func HashRefreshToken(token string) (string, error) {
	b, err := bcrypt.GenerateFromPassword(preDigest(token), refreshHashCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CompareRefreshToken reports whether token matches the stored hash. Any
// comparison failure, including a malformed stored hash, is treated as no
// match rather than an error.
func CompareRefreshToken(token, storedHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(storedHash), preDigest(token)) == nil
}

func preDigest(token string) []byte {
	d := sha256.Sum256([]byte(token))
	return []byte(hex.EncodeToString(d[:]))
}

package security

import (
	"strings"
	"testing"
)

func TestHashRefreshToken_Salted(t *testing.T) {
	const token = "header.payload.signature"

	h1, err := HashRefreshToken(token)
	if err != nil {
		t.Fatalf("HashRefreshToken: %v", err)
	}
	h2, err := HashRefreshToken(token)
	if err != nil {
		t.Fatalf("HashRefreshToken: %v", err)
	}
	if h1 == h2 {
		t.Error("two hashes of the same token should differ (per-call salt)")
	}
	if !CompareRefreshToken(token, h1) || !CompareRefreshToken(token, h2) {
		t.Error("both hashes should match the original token")
	}
}

func TestCompareRefreshToken_NoMatch(t *testing.T) {
	h, err := HashRefreshToken("token-a")
	if err != nil {
		t.Fatalf("HashRefreshToken: %v", err)
	}
	if CompareRefreshToken("token-b", h) {
		t.Error("different token should not match")
	}
	if CompareRefreshToken("token-a", "not-a-bcrypt-hash") {
		t.Error("malformed stored hash should be treated as no match")
	}
	if CompareRefreshToken("token-a", "") {
		t.Error("empty stored hash should be treated as no match")
	}
}

func TestHashRefreshToken_LongInput(t *testing.T) {
	// A signed JWT is well past bcrypt's 72-byte input limit; the pre-digest
	// must make arbitrary-length tokens hashable.
	token := strings.Repeat("x", 500)
	h, err := HashRefreshToken(token)
	if err != nil {
		t.Fatalf("HashRefreshToken long input: %v", err)
	}
	if !CompareRefreshToken(token, h) {
		t.Error("long token should match its own hash")
	}
	if CompareRefreshToken(strings.Repeat("x", 499), h) {
		t.Error("different long token should not match")
	}
}

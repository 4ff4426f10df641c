package auth

import (
	"testing"
	"time"
)

func TestNewVerificationToken(t *testing.T) {
	t.Parallel()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		tok := NewVerificationToken()
		if len(tok) != 26 {
			t.Fatalf("token length = %d, want 26", len(tok))
		}
		if seen[tok] {
			t.Fatalf("duplicate token %s", tok)
		}
		seen[tok] = true
	}
}

func TestTokenIssuedAt(t *testing.T) {
	t.Parallel()

	before := time.Now().Add(-time.Second)
	issued, ok := TokenIssuedAt(NewVerificationToken())
	if !ok {
		t.Fatal("expected a parseable token")
	}
	if issued.Before(before) || issued.After(time.Now().Add(time.Second)) {
		t.Errorf("issued at %v, outside expected window", issued)
	}

	if _, ok := TokenIssuedAt("not-a-token"); ok {
		t.Error("garbage should not parse")
	}
}

func TestTokensEqual(t *testing.T) {
	t.Parallel()

	tok := NewVerificationToken()
	if !TokensEqual(tok, tok) {
		t.Error("identical tokens should be equal")
	}
	if TokensEqual(tok, NewVerificationToken()) {
		t.Error("distinct tokens should differ")
	}
	if TokensEqual("", "") {
		t.Error("empty tokens never match")
	}
}

package crypto

import (
	"encoding/base64"
	"testing"
)

func TestNewTokenShouldPairRawWithHash(t *testing.T) {
	// Act
	tok, err := NewToken()

	// Assert
	if err != nil {
		t.Fatalf("NewToken() error = %v", err)
	}
	decoded, err := base64.RawURLEncoding.DecodeString(tok.Raw)
	if err != nil {
		t.Fatalf("raw token is not base64url: %v", err)
	}
	if len(decoded) != TokenBytes {
		t.Errorf("decoded length = %d, want %d", len(decoded), TokenBytes)
	}
	if tok.Hash != HashToken(tok.Raw) {
		t.Error("hash does not match raw token")
	}
	if len(tok.Hash) != 64 {
		t.Errorf("hash length = %d, want 64 hex chars", len(tok.Hash))
	}
}

func TestNewTokenShouldBeUnique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 500; i++ {
		tok, err := NewToken()
		if err != nil {
			t.Fatalf("NewToken() error = %v", err)
		}
		if _, dup := seen[tok.Raw]; dup {
			t.Fatalf("duplicate token after %d draws", i)
		}
		seen[tok.Raw] = struct{}{}
	}
}

func TestTokenMatches(t *testing.T) {
	tok, err := NewToken()
	if err != nil {
		t.Fatalf("NewToken() error = %v", err)
	}
	other, err := NewToken()
	if err != nil {
		t.Fatalf("NewToken() error = %v", err)
	}

	tests := []struct {
		name string
		raw  string
		hash string
		want bool
	}{
		{name: "matching pair", raw: tok.Raw, hash: tok.Hash, want: true},
		{name: "wrong hash", raw: tok.Raw, hash: other.Hash, want: false},
		{name: "empty raw", raw: "", hash: tok.Hash, want: false},
		{name: "empty hash", raw: tok.Raw, hash: "", want: false},
		{name: "hash passed as raw", raw: tok.Hash, hash: tok.Hash, want: false},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			if got := TokenMatches(test.raw, test.hash); got != test.want {
				t.Errorf("TokenMatches() = %v, want %v", got, test.want)
			}
		})
	}
}

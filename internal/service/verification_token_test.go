package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"
)

func newTestIssuer(secret string) *VerificationIssuer {
	return NewVerificationIssuer(secret, 0, bcrypt.MinCost, NewHashPool(2))
}

func TestVerificationIssuerGenerate(t *testing.T) {
	issuer := newTestIssuer("secret")
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	issued, err := issuer.Generate(context.Background(), now)
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if len(issued.Token) != 64 || strings.ToLower(issued.Token) != issued.Token {
		t.Fatalf("token should be lowercase hex of 32 bytes: %s", issued.Token)
	}
	if issued.DisplayCode != strings.ToUpper(issued.Token[:8]) {
		t.Fatalf("display code mismatch: %s vs %s", issued.DisplayCode, issued.Token[:8])
	}
	if !issued.Challenge.ExpiresAt.Equal(now.Add(DefaultVerificationTTL)) {
		t.Fatalf("expiry should default to 2h, got %v", issued.Challenge.ExpiresAt)
	}
	if issued.Challenge.TokenHash != issuer.HashToken(issued.Token) {
		t.Fatalf("token hash should be deterministic")
	}
	if bcrypt.CompareHashAndPassword([]byte(issued.Challenge.CodeHash), []byte(issued.DisplayCode)) != nil {
		t.Fatalf("code hash should be a bcrypt hash of the display code")
	}

	other, _ := issuer.Generate(context.Background(), now)
	if other.Token == issued.Token {
		t.Fatalf("tokens must be random")
	}
}

func TestVerificationIssuerHashTokenDependsOnSecret(t *testing.T) {
	a := newTestIssuer("secret-a")
	b := newTestIssuer("secret-b")
	plain := newTestIssuer("")

	if a.HashToken("tok") == b.HashToken("tok") {
		t.Fatalf("different secrets must yield different hashes")
	}
	if plain.HashToken("tok") != LegacySHA256Hex("tok") {
		t.Fatalf("without secret the hash should be plain sha256 hex")
	}
	if a.HashToken(" tok ") != a.HashToken("tok") {
		t.Fatalf("hash should ignore surrounding whitespace")
	}
}

func TestVerificationIssuerMatch(t *testing.T) {
	issuer := newTestIssuer("secret")
	ctx := context.Background()
	issued, err := issuer.Generate(ctx, time.Now())
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	challenge := &issued.Challenge

	cases := []struct {
		name      string
		presented string
		want      bool
	}{
		{"token", issued.Token, true},
		{"token_with_spaces", "  " + issued.Token + "\n", true},
		{"display_code", issued.DisplayCode, true},
		{"display_code_lowercase", strings.ToLower(issued.DisplayCode), true},
		{"wrong_code", "ZZZZZZZZ", false},
		{"prefix_too_long", issued.Token[:9], false},
		{"empty", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := issuer.Match(ctx, challenge, tc.presented)
			if err != nil {
				t.Fatalf("match failed: %v", err)
			}
			if got != tc.want {
				t.Fatalf("Match(%q) want %v got %v", tc.presented, tc.want, got)
			}
		})
	}

	if ok, _ := issuer.Match(ctx, nil, issued.Token); ok {
		t.Fatalf("nil challenge must not match")
	}
}

func TestDisplayCodeFor(t *testing.T) {
	if got := DisplayCodeFor("abcdef0123456789"); got != "ABCDEF01" {
		t.Fatalf("unexpected display code %s", got)
	}
	if got := DisplayCodeFor("abc"); got != "ABC" {
		t.Fatalf("short token should be uppercased whole, got %s", got)
	}
}

package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jobdesk-next/internal/config"
	"github.com/jobdesk-next/internal/constants"

	"golang.org/x/crypto/bcrypt"
)

func newTestHasher() *PasswordHasher {
	return NewPasswordHasher(bcrypt.MinCost, NewHashPool(2))
}

func TestPasswordHasherBcryptRoundTrip(t *testing.T) {
	h := newTestHasher()
	ctx := context.Background()

	for _, password := range []string{"a", "correct horse battery staple", "密码Pa55!"} {
		hash, err := h.Hash(ctx, password)
		if err != nil {
			t.Fatalf("hash failed: %v", err)
		}
		result, err := h.Verify(ctx, password, hash)
		if err != nil {
			t.Fatalf("verify failed: %v", err)
		}
		if !result.Valid || result.NeedsMigration || result.Scheme != constants.PasswordSchemeBcrypt {
			t.Fatalf("unexpected result for %q: %+v", password, result)
		}
		if wrong, _ := h.Verify(ctx, password+"x", hash); wrong.Valid {
			t.Fatalf("wrong password must not verify")
		}
	}
}

func TestPasswordHasherLegacyMigration(t *testing.T) {
	h := newTestHasher()
	ctx := context.Background()
	password := "legacy-secret-1"

	legacy := LegacySHA256Hex(password)
	result, err := h.Verify(ctx, password, legacy)
	if err != nil {
		t.Fatalf("verify legacy failed: %v", err)
	}
	if !result.Valid || !result.NeedsMigration || result.Scheme != constants.PasswordSchemeLegacySHA256 {
		t.Fatalf("unexpected legacy result: %+v", result)
	}
	if upper, _ := h.Verify(ctx, password, strings.ToUpper(legacy)); !upper.Valid {
		t.Fatalf("uppercase hex digest should still match")
	}

	rehashed, err := h.Hash(ctx, password)
	if err != nil {
		t.Fatalf("rehash failed: %v", err)
	}
	again, _ := h.Verify(ctx, password, rehashed)
	if !again.Valid || again.NeedsMigration {
		t.Fatalf("rehashed password should not need migration: %+v", again)
	}
}

func TestPasswordHasherMalformedHashIsNonMatch(t *testing.T) {
	h := newTestHasher()
	ctx := context.Background()

	for _, stored := range []string{"", "$2a$xx$broken", "not-a-hash", strings.Repeat("z", 64), "$2b$04$short"} {
		result, err := h.Verify(ctx, "whatever", stored)
		if err != nil {
			t.Fatalf("malformed hash %q must not error: %v", stored, err)
		}
		if result.Valid {
			t.Fatalf("malformed hash %q must not match", stored)
		}
	}
}

func TestPasswordHasherDetectScheme(t *testing.T) {
	h := newTestHasher()
	hash, _ := h.Hash(context.Background(), "pw")

	cases := map[string]string{
		hash:                     constants.PasswordSchemeBcrypt,
		LegacySHA256Hex("pw"):    constants.PasswordSchemeLegacySHA256,
		"plain":                  "",
		strings.Repeat("g", 64):  "",
		"$2a$99$invalidcostxxxx": "",
	}
	for stored, want := range cases {
		if got := h.DetectScheme(stored); got != want {
			t.Fatalf("DetectScheme(%q) want %q got %q", stored, want, got)
		}
	}
}

func TestPasswordHasherCostFallback(t *testing.T) {
	if got := NewPasswordHasher(0, nil).Cost(); got != DefaultBcryptCost {
		t.Fatalf("invalid cost should fall back to %d, got %d", DefaultBcryptCost, got)
	}
	if got := NewPasswordHasher(bcrypt.MinCost, nil).Cost(); got != bcrypt.MinCost {
		t.Fatalf("valid cost should be kept, got %d", got)
	}
}

func TestHashPoolRespectsCancellation(t *testing.T) {
	pool := NewHashPool(1)
	if pool.Size() != 1 {
		t.Fatalf("unexpected pool size %d", pool.Size())
	}
	ctx, cancel := context.WithCancel(context.Background())

	release := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_ = pool.Do(context.Background(), func() {
			close(started)
			<-release
		})
	}()
	<-started

	cancel()
	ran := false
	err := pool.Do(ctx, func() { ran = true })
	close(release)
	if !errors.Is(err, context.Canceled) || ran {
		t.Fatalf("cancelled acquire should not run fn, err=%v ran=%v", err, ran)
	}

	if NewHashPool(0).Size() <= 0 {
		t.Fatalf("zero workers should size by CPU count")
	}
}

func TestValidatePasswordPolicy(t *testing.T) {
	policy := config.PasswordPolicyConfig{MinLength: 8, RequireUpper: true, RequireNumber: true}

	cases := []struct {
		password string
		wantKey  string
	}{
		{"", "error.password_min_length"},
		{"Ab1", "error.password_min_length"},
		{"abcdefg1", "error.password_require_upper"},
		{"Abcdefgh", "error.password_require_number"},
		{strings.Repeat("A1", 37), "error.password_too_long"},
		{"Abcdefg1", ""},
	}
	for _, tc := range cases {
		err := validatePassword(policy, tc.password)
		if tc.wantKey == "" {
			if err != nil {
				t.Fatalf("password %q should pass, got %v", tc.password, err)
			}
			continue
		}
		if !errors.Is(err, ErrWeakPassword) {
			t.Fatalf("password %q want ErrWeakPassword, got %v", tc.password, err)
		}
		key, _, ok := PasswordPolicyMessage(err)
		if !ok || key != tc.wantKey {
			t.Fatalf("password %q want key %s got %s", tc.password, tc.wantKey, key)
		}
	}
}

package models

import (
	"testing"
	"time"
)

func TestUserChallengeRequiresAllColumns(t *testing.T) {
	user := &User{}
	if user.Challenge() != nil {
		t.Fatalf("expected nil challenge for fresh user")
	}

	expiresAt := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	user.SetChallenge(&VerificationChallenge{TokenHash: "t", CodeHash: "c", ExpiresAt: expiresAt})
	got := user.Challenge()
	if got == nil || got.TokenHash != "t" || got.CodeHash != "c" || !got.ExpiresAt.Equal(expiresAt) {
		t.Fatalf("unexpected challenge: %+v", got)
	}

	user.VerifyCodeHash = nil
	if user.Challenge() != nil {
		t.Fatalf("partial columns must not form a challenge")
	}

	user.SetChallenge(nil)
	if user.VerifyTokenHash != nil || user.VerifyCodeHash != nil || user.VerifyExpiresAt != nil {
		t.Fatalf("clear should reset all challenge columns")
	}
}

func TestUserMarkEmailVerifiedClearsState(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	lockedUntil := now.Add(10 * time.Minute)
	user := &User{VerifyAttempts: 5, VerifyLockedUntil: &lockedUntil}
	user.SetChallenge(&VerificationChallenge{TokenHash: "t", CodeHash: "c", ExpiresAt: now.Add(time.Hour)})

	user.MarkEmailVerified(now)

	if !user.EmailVerified || user.EmailVerifiedAt == nil || !user.EmailVerifiedAt.Equal(now) {
		t.Fatalf("expected verified state, got verified=%v at=%v", user.EmailVerified, user.EmailVerifiedAt)
	}
	if user.Challenge() != nil {
		t.Fatalf("challenge should be cleared after verification")
	}
	if user.VerifyAttempts != 0 || user.VerifyLockedUntil != nil {
		t.Fatalf("attempts and lock should be cleared, got attempts=%d locked=%v", user.VerifyAttempts, user.VerifyLockedUntil)
	}
}

func TestVerificationChallengeExpiredBoundary(t *testing.T) {
	expiresAt := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	challenge := &VerificationChallenge{ExpiresAt: expiresAt}
	if challenge.Expired(expiresAt) {
		t.Fatalf("challenge should still be valid at exact expiry instant")
	}
	if !challenge.Expired(expiresAt.Add(time.Nanosecond)) {
		t.Fatalf("challenge should be expired after expiry instant")
	}
	var missing *VerificationChallenge
	if !missing.Expired(expiresAt) {
		t.Fatalf("nil challenge should count as expired")
	}
}

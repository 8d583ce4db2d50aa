package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jobdesk-next/internal/constants"
	"github.com/jobdesk-next/internal/throttle"
)

func TestErrorKindOf(t *testing.T) {
	cases := []struct {
		err  error
		want ErrorKind
	}{
		{nil, ErrorKindNone},
		{ErrInvalidEmail, ErrorKindValidation},
		{passwordPolicyError{key: "error.password_require_upper"}, ErrorKindValidation},
		{ErrTokenRequired, ErrorKindValidation},
		{ErrInvalidToken, ErrorKindInvalidToken},
		{fmt.Errorf("wrapped: %w", ErrInvalidToken), ErrorKindInvalidToken},
		{newResendLimitedError(30), ErrorKindRateLimit},
		{newVerifyLockedError(60, 1), ErrorKindRateLimit},
		{fmt.Errorf("resend throttle: %w", throttle.ErrStoreUnavailable), ErrorKindInternalError},
		{errors.New("db down"), ErrorKindInternalError},
	}
	for _, tc := range cases {
		if got := ErrorKindOf(tc.err); got != tc.want {
			t.Fatalf("ErrorKindOf(%v) want %s got %s", tc.err, tc.want, got)
		}
	}
}

func TestRateLimitErrorMatching(t *testing.T) {
	locked := newVerifyLockedError(120, 2)
	if !errors.Is(locked, ErrRateLimited) || !errors.Is(locked, ErrVerifyLocked) {
		t.Fatalf("locked error should match both sentinels")
	}
	resend := newResendLimitedError(10)
	if errors.Is(resend, ErrVerifyLocked) {
		t.Fatalf("resend error must not match lock sentinel")
	}
	if retry, ok := RetryAfterOf(fmt.Errorf("ctx: %w", resend)); !ok || retry != 10 {
		t.Fatalf("unexpected retry: %d %v", retry, ok)
	}
	if _, ok := RetryAfterOf(ErrInvalidToken); ok {
		t.Fatalf("non rate limit error should not carry retry")
	}
}

func TestFailReasonOf(t *testing.T) {
	cases := map[error]string{
		ErrInvalidCredentials:    constants.AuthFailReasonInvalidCredentials,
		ErrEmailNotVerified:      constants.AuthFailReasonEmailNotVerified,
		ErrUserDisabled:          constants.AuthFailReasonUserDisabled,
		ErrInvalidEmail:          constants.AuthFailReasonInvalidEmail,
		ErrInvalidToken:          constants.AuthFailReasonInvalidToken,
		newResendLimitedError(1): constants.AuthFailReasonRateLimited,
		ErrTokenRequired:         constants.AuthFailReasonBadRequest,
		errors.New("unexpected"): constants.AuthFailReasonInternalError,
		error(nil):               "",
	}
	for err, want := range cases {
		if got := FailReasonOf(err); got != want {
			t.Fatalf("FailReasonOf(%v) want %q got %q", err, want, got)
		}
	}
}

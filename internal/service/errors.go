package service

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrEmailExists        = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailNotVerified   = errors.New("email not verified")
	ErrUserDisabled       = errors.New("user disabled")
	ErrInvalidPassword    = errors.New("invalid password")
	ErrWeakPassword       = errors.New("weak password")
	ErrInvalidToken       = errors.New("invalid verification token")
	ErrAlreadyVerified    = errors.New("email already verified")
	ErrTokenRequired      = errors.New("verification token required")
	ErrRateLimited        = errors.New("rate limited")
	ErrVerifyLocked       = errors.New("verification locked")
	ErrMailerUnavailable  = errors.New("verification mailer unavailable")
)

// ErrorKind 对外错误分类
type ErrorKind string

const (
	ErrorKindNone          ErrorKind = ""
	ErrorKindValidation    ErrorKind = "VALIDATION"
	ErrorKindInvalidToken  ErrorKind = "INVALID_TOKEN"
	ErrorKindRateLimit     ErrorKind = "RATE_LIMIT"
	ErrorKindInternalError ErrorKind = "INTERNAL_ERROR"
)

// RateLimitError 限流或锁定错误，携带重试提示
type RateLimitError struct {
	Cause             error // ErrRateLimited 或 ErrVerifyLocked
	RetryAfterSeconds int
	MinutesRemaining  int
}

func (e *RateLimitError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: retry after %ds", e.Cause.Error(), e.RetryAfterSeconds)
	}
	return fmt.Sprintf("rate limited: retry after %ds", e.RetryAfterSeconds)
}

// Is 同时匹配 ErrRateLimited 与具体原因
func (e *RateLimitError) Is(target error) bool {
	if target == ErrRateLimited {
		return true
	}
	return e.Cause != nil && target == e.Cause
}

func newResendLimitedError(retryAfterSeconds int) *RateLimitError {
	return &RateLimitError{Cause: ErrRateLimited, RetryAfterSeconds: retryAfterSeconds}
}

func newVerifyLockedError(retryAfterSeconds, minutesRemaining int) *RateLimitError {
	return &RateLimitError{
		Cause:             ErrVerifyLocked,
		RetryAfterSeconds: retryAfterSeconds,
		MinutesRemaining:  minutesRemaining,
	}
}

// ErrorKindOf 将业务错误归入 VALIDATION / INVALID_TOKEN / RATE_LIMIT / INTERNAL_ERROR
func ErrorKindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return ErrorKindNone
	case errors.Is(err, ErrRateLimited):
		return ErrorKindRateLimit
	case errors.Is(err, ErrInvalidToken):
		return ErrorKindInvalidToken
	case errors.Is(err, ErrInvalidEmail),
		errors.Is(err, ErrWeakPassword),
		errors.Is(err, ErrTokenRequired),
		errors.Is(err, ErrEmailExists),
		errors.Is(err, ErrAlreadyVerified),
		errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrInvalidPassword),
		errors.Is(err, ErrEmailNotVerified),
		errors.Is(err, ErrUserDisabled),
		errors.Is(err, ErrNotFound):
		return ErrorKindValidation
	default:
		return ErrorKindInternalError
	}
}

// RetryAfterOf 提取限流错误的重试秒数
func RetryAfterOf(err error) (int, bool) {
	var rl *RateLimitError
	if errors.As(err, &rl) {
		return rl.RetryAfterSeconds, true
	}
	return 0, false
}

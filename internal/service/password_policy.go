package service

import (
	"errors"
	"unicode"

	"github.com/jobdesk-next/internal/config"
)

// MaxPasswordBytes bcrypt 只处理前 72 字节
const MaxPasswordBytes = 72

type passwordPolicyError struct {
	key  string
	args []interface{}
}

func (e passwordPolicyError) Error() string {
	return e.key
}

func (e passwordPolicyError) Is(target error) bool {
	return target == ErrWeakPassword
}

func (e passwordPolicyError) Key() string {
	return e.key
}

func (e passwordPolicyError) Args() []interface{} {
	return e.args
}

// PasswordPolicyMessage 提取密码策略错误的 i18n key 与参数
func PasswordPolicyMessage(err error) (string, []interface{}, bool) {
	var policyErr passwordPolicyError
	if !errors.As(err, &policyErr) {
		return "", nil, false
	}
	return policyErr.Key(), policyErr.Args(), true
}

func validatePassword(policy config.PasswordPolicyConfig, password string) error {
	if password == "" {
		return passwordPolicyError{key: "error.password_min_length", args: []interface{}{max(policy.MinLength, 1)}}
	}
	if len(password) > MaxPasswordBytes {
		return passwordPolicyError{key: "error.password_too_long", args: []interface{}{MaxPasswordBytes}}
	}
	if policy.MinLength <= 0 &&
		!policy.RequireUpper &&
		!policy.RequireLower &&
		!policy.RequireNumber &&
		!policy.RequireSpecial {
		return nil
	}

	if policy.MinLength > 0 {
		if len([]rune(password)) < policy.MinLength {
			return passwordPolicyError{key: "error.password_min_length", args: []interface{}{policy.MinLength}}
		}
	}

	var hasUpper, hasLower, hasNumber, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasNumber = true
		default:
			hasSpecial = true
		}
	}

	if policy.RequireUpper && !hasUpper {
		return passwordPolicyError{key: "error.password_require_upper"}
	}
	if policy.RequireLower && !hasLower {
		return passwordPolicyError{key: "error.password_require_lower"}
	}
	if policy.RequireNumber && !hasNumber {
		return passwordPolicyError{key: "error.password_require_number"}
	}
	if policy.RequireSpecial && !hasSpecial {
		return passwordPolicyError{key: "error.password_require_special"}
	}

	return nil
}

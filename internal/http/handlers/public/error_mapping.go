package public

import (
	"errors"

	handlershared "github.com/jobdesk-next/internal/http/handlers/shared"
	"github.com/jobdesk-next/internal/http/response"
	"github.com/jobdesk-next/internal/i18n"
	"github.com/jobdesk-next/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	key    string
}

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}

func respondErrorWithMsg(c *gin.Context, code int, msg string, err error) {
	handlershared.RespondErrorWithMsg(c, code, msg, err)
}

// respondWithMappedError 限流与密码策略错误先行处理，其余按规则表映射
func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackKey string) {
	var limited *service.RateLimitError
	if errors.As(err, &limited) {
		if errors.Is(err, service.ErrVerifyLocked) {
			locale := i18n.ResolveLocale(c)
			msg := i18n.Sprintf(locale, "error.verify_locked", limited.MinutesRemaining)
			response.TooManyRequests(c, msg, limited.RetryAfterSeconds)
			return
		}
		handlershared.RespondRateLimited(c, limited.RetryAfterSeconds)
		return
	}
	if key, args, ok := service.PasswordPolicyMessage(err); ok {
		respondErrorWithMsg(c, response.CodeBadRequest, i18n.Sprintf(i18n.ResolveLocale(c), key, args...), nil)
		return
	}
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.key, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackKey, err)
}

var registerErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidEmail, code: response.CodeBadRequest, key: "error.invalid_email"},
	{target: service.ErrEmailExists, code: response.CodeConflict, key: "error.email_exists"},
}

var resendErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidEmail, code: response.CodeBadRequest, key: "error.invalid_email"},
}

var verifyErrorRules = []mappedHandlerError{
	{target: service.ErrTokenRequired, code: response.CodeBadRequest, key: "error.token_required"},
	{target: service.ErrInvalidToken, code: response.CodeBadRequest, key: "error.verify_token_invalid"},
	{target: service.ErrInvalidEmail, code: response.CodeBadRequest, key: "error.invalid_email"},
}

var loginErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidEmail, code: response.CodeBadRequest, key: "error.invalid_email"},
	{target: service.ErrInvalidCredentials, code: response.CodeUnauthorized, key: "error.invalid_credentials"},
	{target: service.ErrEmailNotVerified, code: response.CodeForbidden, key: "error.email_not_verified"},
	{target: service.ErrUserDisabled, code: response.CodeForbidden, key: "error.user_disabled"},
}

var changePasswordErrorRules = []mappedHandlerError{
	{target: service.ErrNotFound, code: response.CodeNotFound, key: "error.user_not_found"},
	{target: service.ErrInvalidPassword, code: response.CodeBadRequest, key: "error.invalid_password"},
	{target: service.ErrWeakPassword, code: response.CodeBadRequest, key: "error.bad_request"},
}

var userFetchErrorRules = []mappedHandlerError{
	{target: service.ErrNotFound, code: response.CodeNotFound, key: "error.user_not_found"},
}

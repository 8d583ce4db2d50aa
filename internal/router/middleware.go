package router

import (
	"strconv"
	"strings"
	"time"

	"github.com/jobdesk-next/internal/cache"
	"github.com/jobdesk-next/internal/config"
	"github.com/jobdesk-next/internal/constants"
	"github.com/jobdesk-next/internal/http/response"
	"github.com/jobdesk-next/internal/i18n"
	"github.com/jobdesk-next/internal/repository"
	"github.com/jobdesk-next/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const requestIDKey = "request_id"
const requestIDHeader = "X-Request-ID"
const emailVerifiedKey = "email_verified"

// CORSMiddleware 跨域中间件
func CORSMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	allowedMethods := cfg.AllowedMethods
	if len(allowedMethods) == 0 {
		allowedMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	}
	allowedHeaders := cfg.AllowedHeaders
	if len(allowedHeaders) == 0 {
		allowedHeaders = []string{
			"Content-Type",
			"Content-Length",
			"Accept-Encoding",
			"Authorization",
			"Cache-Control",
			"X-Requested-With",
			"X-CSRF-Token",
		}
	}
	methodsHeader := strings.Join(allowedMethods, ", ")
	headersHeader := strings.Join(allowedHeaders, ", ")

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		allowedOrigin := resolveAllowedOrigin(origin, allowedOrigins, cfg.AllowCredentials)
		if allowedOrigin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
			if allowedOrigin != "*" {
				c.Writer.Header().Add("Vary", "Origin")
			}
		}
		if cfg.AllowCredentials {
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		}
		c.Writer.Header().Set("Access-Control-Allow-Headers", headersHeader)
		c.Writer.Header().Set("Access-Control-Allow-Methods", methodsHeader)
		if cfg.MaxAge > 0 {
			c.Writer.Header().Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
		}

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

func resolveAllowedOrigin(origin string, allowedOrigins []string, allowCredentials bool) string {
	if len(allowedOrigins) == 0 {
		return ""
	}
	for _, allowed := range allowedOrigins {
		if allowed == "*" {
			if allowCredentials && origin != "" {
				return origin
			}
			return "*"
		}
	}
	if origin == "" {
		return ""
	}
	for _, allowed := range allowedOrigins {
		if strings.EqualFold(allowed, origin) {
			return origin
		}
	}
	return ""
}

// RequestIDMiddleware 请求 ID 中间件
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Writer.Header().Set(requestIDHeader, requestID)
		c.Next()
	}
}

// LoggerMiddleware 结构化请求日志中间件
func LoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.L()
	}
	sugar := logger.Sugar()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log := sugar.With(
			"request_id", getRequestID(c),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		)
		if len(c.Errors) > 0 {
			log.Errorw("request", "errors", c.Errors.String())
			return
		}
		log.Infow("request")
	}
}

func getRequestID(c *gin.Context) string {
	value, ok := c.Get(requestIDKey)
	if !ok {
		return ""
	}
	if requestID, ok := value.(string); ok {
		return requestID
	}
	return ""
}

// TokenParser 解析用户 JWT
type TokenParser interface {
	ParseUserJWT(tokenString string) (*service.UserJWTClaims, error)
}

// UserJWTAuthMiddleware 用户 JWT 鉴权中间件
// 优先读取 Redis 鉴权快照，未命中时回源数据库并回写快照。
func UserJWTAuthMiddleware(secretKey string, parser TokenParser, userRepo repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secretKey == "" {
			abortUnauthorized(c, "error.jwt_secret_missing")
			return
		}
		if parser == nil || userRepo == nil {
			abortUnauthorized(c, "error.token_invalid")
			return
		}
		tokenString, key := bearerToken(c.GetHeader("Authorization"))
		if key != "" {
			abortUnauthorized(c, key)
			return
		}
		claims, err := parser.ParseUserJWT(tokenString)
		if err != nil || claims.UserID == 0 {
			abortUnauthorized(c, "error.token_invalid")
			return
		}

		state, hit, cacheErr := cache.GetUserAuthState(c.Request.Context(), claims.UserID)
		if cacheErr != nil || !hit || state == nil {
			user, err := userRepo.GetByID(claims.UserID)
			if err != nil || user == nil {
				abortUnauthorized(c, "error.token_invalid")
				return
			}
			state = cache.BuildUserAuthState(user)
			_ = cache.SetUserAuthState(c.Request.Context(), state)
		}
		if key := rejectReason(claims, state); key != "" {
			abortUnauthorized(c, key)
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("user_email", claims.Email)
		c.Set(emailVerifiedKey, state.EmailVerified)
		c.Next()
	}
}

// RequireVerifiedEmailMiddleware 仅允许邮箱已验证的用户访问，需放在 UserJWTAuthMiddleware 之后
func RequireVerifiedEmailMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if verified, ok := c.Get(emailVerifiedKey); ok {
			if value, typeOK := verified.(bool); typeOK && value {
				c.Next()
				return
			}
		}
		response.Error(c, response.CodeForbidden, i18n.T(i18n.ResolveLocale(c), "error.email_not_verified"))
		c.Abort()
	}
}

func bearerToken(header string) (string, string) {
	if header == "" {
		return "", "error.auth_header_missing"
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || strings.TrimSpace(parts[1]) == "" {
		return "", "error.auth_header_invalid"
	}
	return strings.TrimSpace(parts[1]), ""
}

// rejectReason 依据鉴权快照判断 token 是否仍然有效，返回 i18n key
func rejectReason(claims *service.UserJWTClaims, state *cache.UserAuthState) string {
	switch {
	case !isActiveUserStatus(state.Status):
		return "error.user_disabled"
	case claims.TokenVersion != state.TokenVersion || !isIssuedAfterInvalidBeforeUnix(claims.IssuedAt, state.TokenInvalidBefore):
		return "error.token_revoked"
	default:
		return ""
	}
}

func abortUnauthorized(c *gin.Context, key string) {
	response.Unauthorized(c, i18n.T(i18n.ResolveLocale(c), key))
	c.Abort()
}

func isIssuedAfterInvalidBeforeUnix(issuedAt *jwt.NumericDate, invalidBeforeUnix int64) bool {
	if invalidBeforeUnix <= 0 {
		return true
	}
	if issuedAt == nil {
		return false
	}
	return issuedAt.Time.Unix() >= invalidBeforeUnix
}

func isActiveUserStatus(status string) bool {
	return strings.ToLower(strings.TrimSpace(status)) == constants.UserStatusActive
}

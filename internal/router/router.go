package router

import (
	"fmt"
	"strings"

	"github.com/jobdesk-next/internal/cache"
	"github.com/jobdesk-next/internal/config"
	publichandlers "github.com/jobdesk-next/internal/http/handlers/public"
	"github.com/jobdesk-next/internal/http/response"
	"github.com/jobdesk-next/internal/logger"
	"github.com/jobdesk-next/internal/provider"
	"github.com/jobdesk-next/internal/throttle"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	publicHandler := publichandlers.New(c)
	loginRule := RateLimitRule{
		Prefix:        "rate:login",
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		MessageKey:    "error.login_too_many",
	}
	limitStore := resolveThrottleStore()

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	r.GET("/healthz", func(ctx *gin.Context) {
		redisStatus := "disabled"
		if cache.Enabled() {
			redisStatus = "ok"
			if err := cache.Ping(ctx.Request.Context()); err != nil {
				redisStatus = fmt.Sprintf("error: %v", err)
			}
		}
		response.Success(ctx, gin.H{"status": "ok", "redis": redisStatus})
	})

	apiV1 := r.Group("/api/v1")
	{
		// 用户认证接口
		auth := apiV1.Group("/auth")
		{
			auth.POST("/register", publicHandler.UserRegister)
			auth.POST("/resend-verification", publicHandler.ResendVerification)
			auth.POST("/verify-email", publicHandler.VerifyEmail)
			auth.GET("/verify-email", publicHandler.InspectVerificationLink)
			auth.POST("/login", RateLimitMiddleware(limitStore, loginRule, KeyByIPAndJSONField("email")), publicHandler.UserLogin)
		}

		// 用户接口（需鉴权）
		user := apiV1.Group("/me")
		user.Use(UserJWTAuthMiddleware(cfg.UserJWT.SecretKey, c.UserAuthService, c.UserRepo))
		{
			user.GET("", publicHandler.GetCurrentUser)
			user.GET("/verification", publicHandler.GetMyVerificationStatus)
			user.GET("/auth-logs", publicHandler.GetMyAuthLogs)
			user.PUT("/password", RequireVerifiedEmailMiddleware(), publicHandler.ChangeUserPassword)
		}
	}

	return r
}

// resolveThrottleStore Redis 可用时多实例共享登录限流计数
func resolveThrottleStore() throttle.Store {
	if client := cache.Client(); client != nil {
		return throttle.NewRedisStore(client, strings.TrimSpace(cache.Prefix()))
	}
	return throttle.NewMemoryStore()
}

package constants

// 用户状态常量
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// 认证审计事件常量
const (
	AuthEventLogin              = "login"
	AuthEventRegister           = "register"
	AuthEventVerifyEmail        = "verify_email"
	AuthEventResendVerification = "resend_verification"
	AuthEventChangePassword     = "change_password"
)

// 认证审计结果常量
const (
	AuthEventStatusSuccess = "success"
	AuthEventStatusFailed  = "failed"
)

// 认证审计失败原因常量
const (
	AuthFailReasonBadRequest         = "bad_request"
	AuthFailReasonInvalidEmail       = "invalid_email"
	AuthFailReasonInvalidCredentials = "invalid_credentials"
	AuthFailReasonEmailNotVerified   = "email_not_verified"
	AuthFailReasonUserDisabled       = "user_disabled"
	AuthFailReasonInvalidToken       = "invalid_token"
	AuthFailReasonRateLimited        = "rate_limited"
	AuthFailReasonInternalError      = "internal_error"
)

// 认证审计来源常量
const (
	AuthSourceWeb  = "web"
	AuthSourceLink = "link"
)

// 密码哈希方案常量
const (
	PasswordSchemeBcrypt       = "bcrypt"
	PasswordSchemeLegacySHA256 = "legacy_sha256"
)

// 邮件队列驱动常量
const (
	QueueDriverAsynq    = "asynq"
	QueueDriverRabbitMQ = "rabbitmq"
)

// 限流存储常量
const (
	ThrottleStoreMemory = "memory"
	ThrottleStoreRedis  = "redis"
)

// 异步队列常量
const (
	QueueDefault  = "default"
	QueueCritical = "critical"
)

// 异步任务类型常量
const (
	TaskVerificationEmail = "email:verification"
)

package provider

import (
	"strings"
	"time"

	"github.com/jobdesk-next/internal/cache"
	"github.com/jobdesk-next/internal/config"
	"github.com/jobdesk-next/internal/constants"
	"github.com/jobdesk-next/internal/logger"
	"github.com/jobdesk-next/internal/models"
	"github.com/jobdesk-next/internal/queue"
	"github.com/jobdesk-next/internal/repository"
	"github.com/jobdesk-next/internal/service"
	"github.com/jobdesk-next/internal/throttle"

	"gorm.io/gorm"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client
	RabbitMQ    *queue.RabbitMQ

	// Repositories
	UserRepo         repository.UserRepository
	AuthAuditLogRepo repository.AuthAuditLogRepository

	// Services
	HashPool                 *service.HashPool
	PasswordHasher           *service.PasswordHasher
	VerificationIssuer       *service.VerificationIssuer
	ResendLimiter            *throttle.ResendLimiter
	EmailService             *service.EmailService
	VerificationMailer       service.VerificationMailer
	UserAuthService          *service.UserAuthService
	EmailVerificationService *service.EmailVerificationService
	AuthAuditService         *service.AuthAuditService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}
	rabbit, err := queue.NewRabbitMQ(&cfg.Queue)
	if err != nil {
		logger.Errorw("provider_init_rabbitmq_failed", "error", err)
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
		RabbitMQ:    rabbit,
	}

	// 1. 初始化 Repositories
	c.initRepositories(models.DB)

	// 2. 初始化 Services
	c.initServices()

	return c
}

// NewContainerWithDB 使用指定数据库构建容器，不连接缓存与队列
func NewContainerWithDB(cfg *config.Config, db *gorm.DB) *Container {
	c := &Container{Config: cfg}
	c.initRepositories(db)
	c.initServices()
	return c
}

func (c *Container) initRepositories(db *gorm.DB) {
	c.UserRepo = repository.NewUserRepository(db)
	c.AuthAuditLogRepo = repository.NewAuthAuditLogRepository(db)
}

func (c *Container) initServices() {
	cfg := c.Config
	c.HashPool = service.NewHashPool(cfg.Security.PasswordHash.Workers)
	c.PasswordHasher = service.NewPasswordHasher(cfg.Security.PasswordHash.BcryptCost, c.HashPool)
	c.VerificationIssuer = service.NewVerificationIssuer(
		cfg.Verification.TokenSecret,
		time.Duration(cfg.Verification.ExpireMinutes)*time.Minute,
		cfg.Verification.CodeHashCost,
		c.HashPool,
	)
	c.ResendLimiter = throttle.NewResendLimiter(
		c.resolveResendStore(),
		cfg.Verification.Resend.HourlyLimit,
		cfg.Verification.Resend.DailyLimit,
	)

	c.EmailService = service.NewEmailService(&cfg.Email)
	c.VerificationMailer = service.NewQueuedVerificationMailer(c.QueueClient, c.RabbitMQ, c.EmailService)

	c.UserAuthService = service.NewUserAuthService(cfg, c.UserRepo, c.PasswordHasher)
	c.EmailVerificationService = service.NewEmailVerificationService(
		cfg,
		c.UserRepo,
		c.PasswordHasher,
		c.VerificationIssuer,
		c.ResendLimiter,
		c.VerificationMailer,
	)
	c.AuthAuditService = service.NewAuthAuditService(c.AuthAuditLogRepo)
}

// resolveResendStore 配置为 redis 且 Redis 可用时使用共享计数，否则退回进程内计数
func (c *Container) resolveResendStore() throttle.Store {
	store := strings.ToLower(strings.TrimSpace(c.Config.Verification.Resend.Store))
	if store == constants.ThrottleStoreRedis {
		if cache.Enabled() {
			return throttle.NewRedisStore(cache.Client(), cache.Prefix())
		}
		logger.Warnw("provider_resend_store_fallback", "want", constants.ThrottleStoreRedis, "use", constants.ThrottleStoreMemory)
	}
	return throttle.NewMemoryStore()
}

// Close 释放队列与缓存连接
func (c *Container) Close() {
	if c == nil {
		return
	}
	if err := c.QueueClient.Close(); err != nil {
		logger.Warnw("provider_close_queue_client_failed", "error", err)
	}
	if err := c.RabbitMQ.Close(); err != nil {
		logger.Warnw("provider_close_rabbitmq_failed", "error", err)
	}
	if err := cache.Close(); err != nil {
		logger.Warnw("provider_close_redis_failed", "error", err)
	}
}

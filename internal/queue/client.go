package queue

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jobdesk-next/internal/config"
	"github.com/jobdesk-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// DefaultQueue 默认队列名称
	DefaultQueue = constants.QueueDefault
	// CriticalQueue 高优先级队列，验证邮件走此队列
	CriticalQueue = constants.QueueCritical

	verificationEmailMaxRetry = 5
)

// Client 队列客户端封装
type Client struct {
	client       *asynq.Client
	enabled      bool
	defaultQueue string
}

// NewClient 创建队列客户端
func NewClient(cfg *config.QueueConfig) (*Client, error) {
	if cfg == nil || !cfg.Enabled || resolveDriver(cfg) != constants.QueueDriverAsynq {
		return &Client{enabled: false, defaultQueue: DefaultQueue}, nil
	}
	opt := buildRedisOpt(cfg)
	client := asynq.NewClient(opt)
	return &Client{
		client:       client,
		enabled:      true,
		defaultQueue: DefaultQueue,
	}, nil
}

// Enabled 判断是否启用
func (c *Client) Enabled() bool {
	return c != nil && c.enabled && c.client != nil
}

// Close 关闭客户端
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// EnqueueVerificationEmail 推送验证邮件任务，任务在挑战过期后不再重试
func (c *Client) EnqueueVerificationEmail(ctx context.Context, payload VerificationEmailPayload, opts ...asynq.Option) error {
	if !c.Enabled() {
		return nil
	}
	task, err := NewVerificationEmailTask(payload)
	if err != nil {
		return err
	}
	options := []asynq.Option{
		asynq.Queue(CriticalQueue),
		asynq.MaxRetry(verificationEmailMaxRetry),
	}
	if !payload.ExpiresAt.IsZero() {
		options = append(options, asynq.Deadline(payload.ExpiresAt))
	}
	options = append(options, opts...)
	_, err = c.client.EnqueueContext(ctx, task, options...)
	return err
}

// BuildServerConfig 生成队列服务配置
func BuildServerConfig(cfg *config.QueueConfig) (asynq.RedisClientOpt, asynq.Config) {
	opt := buildRedisOpt(cfg)
	concurrency := 10
	if cfg != nil && cfg.Concurrency > 0 {
		concurrency = cfg.Concurrency
	}
	queues := map[string]int{CriticalQueue: 5, DefaultQueue: 1}
	if cfg != nil && len(cfg.Queues) > 0 {
		queues = cfg.Queues
	}
	return opt, asynq.Config{
		Concurrency:     concurrency,
		Queues:          queues,
		ShutdownTimeout: 10 * time.Second,
	}
}

func resolveDriver(cfg *config.QueueConfig) string {
	if cfg == nil {
		return constants.QueueDriverAsynq
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case constants.QueueDriverRabbitMQ:
		return constants.QueueDriverRabbitMQ
	default:
		return constants.QueueDriverAsynq
	}
}

// ResolveDriver 返回生效的队列驱动
func ResolveDriver(cfg *config.QueueConfig) string {
	return resolveDriver(cfg)
}

func buildRedisOpt(cfg *config.QueueConfig) asynq.RedisClientOpt {
	host := "127.0.0.1"
	port := 6379
	password := ""
	db := 0
	if cfg != nil {
		if strings.TrimSpace(cfg.Host) != "" {
			host = strings.TrimSpace(cfg.Host)
		}
		if cfg.Port > 0 {
			port = cfg.Port
		}
		password = cfg.Password
		db = cfg.DB
	}
	return asynq.RedisClientOpt{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	}
}

package worker

import (
	"context"
	"errors"
	"sync"

	"github.com/jobdesk-next/internal/config"
	"github.com/jobdesk-next/internal/logger"
	"github.com/jobdesk-next/internal/queue"

	"github.com/hibiken/asynq"
)

const defaultRabbitPrefetch = 10

// Service 异步队列服务
type Service struct {
	name     string
	server   *asynq.Server
	mux      *asynq.ServeMux
	consumer *Consumer
}

// NewService 创建 asynq 队列服务
func NewService(cfg *config.QueueConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	return &Service{
		name:     "worker",
		server:   server,
		mux:      mux,
		consumer: consumer,
	}, nil
}

// Name 服务名称
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start 启动服务
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	return s.server.Run(s.mux)
}

// Stop 停止服务
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	s.server.Shutdown()
	return nil
}

// RabbitService RabbitMQ 验证邮件消费服务
type RabbitService struct {
	rabbit   *queue.RabbitMQ
	consumer *Consumer
	prefetch int

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewRabbitService 创建 RabbitMQ 消费服务
func NewRabbitService(rabbit *queue.RabbitMQ, consumer *Consumer) (*RabbitService, error) {
	if !rabbit.Enabled() {
		return nil, errors.New("rabbitmq disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	return &RabbitService{rabbit: rabbit, consumer: consumer, prefetch: defaultRabbitPrefetch}, nil
}

// Name 服务名称
func (s *RabbitService) Name() string {
	return "rabbitmq-worker"
}

// Start 阻塞消费直到 Stop 或上游 ctx 取消
func (s *RabbitService) Start(ctx context.Context) error {
	if s == nil || s.rabbit == nil {
		return errors.New("rabbitmq worker not initialized")
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()
	defer cancel()

	logger.Infow("rabbitmq_worker_consume", "queue", s.rabbit.QueueName(), "prefetch", s.prefetch)
	return s.rabbit.ConsumeVerificationEmails(runCtx, s.prefetch, s.consumer.deliverVerificationEmail)
}

// Stop 停止消费
func (s *RabbitService) Stop(ctx context.Context) error {
	if s == nil {
		return nil
	}
	_ = ctx
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()
	return nil
}

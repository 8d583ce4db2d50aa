package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jobdesk-next/internal/logger"
	"github.com/jobdesk-next/internal/provider"
	"github.com/jobdesk-next/internal/queue"
	"github.com/jobdesk-next/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
	sender service.VerificationMailer
	now    func() time.Time
}

// NewConsumer 创建消费者，验证邮件由 SMTP 直接发出
func NewConsumer(c *provider.Container) *Consumer {
	consumer := &Consumer{
		Container: c,
		now:       time.Now,
	}
	if c != nil && c.EmailService != nil {
		consumer.sender = c.EmailService
	}
	return consumer
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskVerificationEmail, c.handleVerificationEmail)
}

func (c *Consumer) handleVerificationEmail(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_verification_email_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	payload, err := queue.ParseVerificationEmailPayload(task.Payload())
	if err != nil {
		logger.Warnw("worker_verification_email_unmarshal_failed", "error", err)
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	err = c.deliverVerificationEmail(ctx, payload)
	if isPermanentDeliveryError(err) {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	return err
}

// deliverVerificationEmail asynq 与 RabbitMQ 共用的投递逻辑，过期挑战直接丢弃
func (c *Consumer) deliverVerificationEmail(ctx context.Context, payload queue.VerificationEmailPayload) error {
	if c.sender == nil {
		logger.Warnw("worker_verification_email_skip_sender_nil", "user_id", payload.UserID)
		return nil
	}
	if !payload.ExpiresAt.IsZero() && !c.now().Before(payload.ExpiresAt) {
		logger.Debugw("worker_verification_email_skip_expired",
			"user_id", payload.UserID,
			"expires_at", payload.ExpiresAt,
		)
		return nil
	}
	if err := c.sender.SendVerificationEmail(ctx, service.VerificationEmailFromPayload(payload)); err != nil {
		logger.Warnw("worker_verification_email_send_failed",
			"user_id", payload.UserID,
			"receiver_email", logger.MaskEmail(payload.Email),
			"error", err,
		)
		return err
	}
	logger.Debugw("worker_verification_email_sent", "user_id", payload.UserID)
	return nil
}

func isPermanentDeliveryError(err error) bool {
	return errors.Is(err, service.ErrEmailRecipientRejected) || errors.Is(err, service.ErrInvalidEmail)
}

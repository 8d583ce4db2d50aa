package service

import (
	"context"
	"time"

	"github.com/jobdesk-next/internal/queue"
)

// VerificationEmail 一封验证邮件的投递内容
type VerificationEmail struct {
	UserID      uint
	Email       string
	Token       string
	DisplayCode string
	Locale      string
	ExpiresAt   time.Time
}

// VerificationMailer 验证邮件投递
type VerificationMailer interface {
	SendVerificationEmail(ctx context.Context, msg VerificationEmail) error
}

// QueuedVerificationMailer 优先投递到 asynq，其次 RabbitMQ，都未启用时直接走 SMTP
type QueuedVerificationMailer struct {
	queueClient *queue.Client
	rabbit      *queue.RabbitMQ
	email       *EmailService
}

// NewQueuedVerificationMailer 创建验证邮件投递器
func NewQueuedVerificationMailer(queueClient *queue.Client, rabbit *queue.RabbitMQ, email *EmailService) *QueuedVerificationMailer {
	return &QueuedVerificationMailer{queueClient: queueClient, rabbit: rabbit, email: email}
}

// SendVerificationEmail 投递验证邮件
func (m *QueuedVerificationMailer) SendVerificationEmail(ctx context.Context, msg VerificationEmail) error {
	payload := msg.payload()
	switch {
	case m.queueClient.Enabled():
		return m.queueClient.EnqueueVerificationEmail(ctx, payload)
	case m.rabbit.Enabled():
		return m.rabbit.PublishVerificationEmail(ctx, payload)
	case m.email != nil:
		return m.email.SendVerificationEmail(ctx, msg)
	default:
		return ErrMailerUnavailable
	}
}

func (msg VerificationEmail) payload() queue.VerificationEmailPayload {
	return queue.VerificationEmailPayload{
		UserID:      msg.UserID,
		Email:       msg.Email,
		Token:       msg.Token,
		DisplayCode: msg.DisplayCode,
		Locale:      msg.Locale,
		ExpiresAt:   msg.ExpiresAt,
	}
}

// VerificationEmailFromPayload 由队列载荷还原投递内容
func VerificationEmailFromPayload(p queue.VerificationEmailPayload) VerificationEmail {
	return VerificationEmail{
		UserID:      p.UserID,
		Email:       p.Email,
		Token:       p.Token,
		DisplayCode: p.DisplayCode,
		Locale:      p.Locale,
		ExpiresAt:   p.ExpiresAt,
	}
}

package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jobdesk-next/internal/config"
	"github.com/jobdesk-next/internal/constants"

	amqp "github.com/rabbitmq/amqp091-go"
)

const defaultRabbitQueue = "verification_emails"

// RabbitMQ 验证邮件的 RabbitMQ 通道，发布与消费共用一个持久化队列
type RabbitMQ struct {
	mu      sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   amqp.Queue
}

// NewRabbitMQ 连接 RabbitMQ 并声明持久化队列；驱动不是 rabbitmq 时返回 nil
func NewRabbitMQ(cfg *config.QueueConfig) (*RabbitMQ, error) {
	const op = "queue.NewRabbitMQ"
	if cfg == nil || !cfg.Enabled || resolveDriver(cfg) != constants.QueueDriverRabbitMQ {
		return nil, nil
	}
	url := strings.TrimSpace(cfg.RabbitMQURL)
	if url == "" {
		return nil, fmt.Errorf("%s: rabbitmq url is empty", op)
	}
	name := strings.TrimSpace(cfg.RabbitMQQueue)
	if name == "" {
		name = defaultRabbitQueue
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	q, err := ch.QueueDeclare(name, true, false, false, false, nil)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &RabbitMQ{conn: conn, channel: ch, queue: q}, nil
}

// Enabled 判断是否可用
func (r *RabbitMQ) Enabled() bool {
	return r != nil && r.channel != nil
}

// QueueName 队列名称
func (r *RabbitMQ) QueueName() string {
	if r == nil {
		return ""
	}
	return r.queue.Name
}

// PublishVerificationEmail 发布验证邮件消息
func (r *RabbitMQ) PublishVerificationEmail(ctx context.Context, payload VerificationEmailPayload) error {
	const op = "queue.PublishVerificationEmail"
	if !r.Enabled() {
		return nil
	}
	if err := payload.Validate(); err != nil {
		return err
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	publishing := amqp.Publishing{
		ContentType:  "application/json",
		Type:         TaskVerificationEmail,
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
	}
	if !payload.ExpiresAt.IsZero() {
		if ttl := time.Until(payload.ExpiresAt); ttl > 0 {
			publishing.Expiration = fmt.Sprintf("%d", ttl.Milliseconds())
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.channel.PublishWithContext(ctx, "", r.queue.Name, false, false, publishing); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// DeliveryHandler 消息处理函数，返回错误时消息重新入队
type DeliveryHandler func(ctx context.Context, payload VerificationEmailPayload) error

// ConsumeVerificationEmails 阻塞消费验证邮件直到 ctx 取消或通道关闭
func (r *RabbitMQ) ConsumeVerificationEmails(ctx context.Context, prefetch int, handler DeliveryHandler) error {
	const op = "queue.ConsumeVerificationEmails"
	if !r.Enabled() {
		return errors.New("rabbitmq not initialized")
	}
	if handler == nil {
		return errors.New("handler is nil")
	}
	if prefetch > 0 {
		if err := r.channel.Qos(prefetch, 0, false); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	deliveries, err := r.channel.Consume(r.queue.Name, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case delivery, ok := <-deliveries:
			if !ok {
				return nil
			}
			handleDelivery(ctx, delivery, handler)
		}
	}
}

func handleDelivery(ctx context.Context, delivery amqp.Delivery, handler DeliveryHandler) {
	payload, err := ParseVerificationEmailPayload(delivery.Body)
	if err != nil {
		// 无法解析的消息直接丢弃，避免毒消息反复投递
		_ = delivery.Nack(false, false)
		return
	}
	if err := handler(ctx, payload); err != nil {
		_ = delivery.Nack(false, !delivery.Redelivered)
		return
	}
	_ = delivery.Ack(false)
}

// Close 关闭通道与连接
func (r *RabbitMQ) Close() error {
	if r == nil {
		return nil
	}
	var errs []error
	if r.channel != nil {
		errs = append(errs, r.channel.Close())
	}
	if r.conn != nil {
		errs = append(errs, r.conn.Close())
	}
	return errors.Join(errs...)
}

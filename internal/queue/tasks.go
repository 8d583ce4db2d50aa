package queue

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/jobdesk-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskVerificationEmail 验证邮件发送任务
	TaskVerificationEmail = constants.TaskVerificationEmail
)

// ErrInvalidPayload 任务载荷不完整
var ErrInvalidPayload = errors.New("invalid verification email payload")

// VerificationEmailPayload 验证邮件任务载荷
// Token 与 DisplayCode 为明文，仅在投递链路中存在，不落库。
type VerificationEmailPayload struct {
	UserID      uint      `json:"user_id"`
	Email       string    `json:"email"`
	Token       string    `json:"token"`
	DisplayCode string    `json:"display_code"`
	Locale      string    `json:"locale"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Validate 校验载荷必填字段
func (p VerificationEmailPayload) Validate() error {
	if strings.TrimSpace(p.Email) == "" || strings.TrimSpace(p.Token) == "" || strings.TrimSpace(p.DisplayCode) == "" {
		return ErrInvalidPayload
	}
	return nil
}

// NewVerificationEmailTask 创建验证邮件任务
func NewVerificationEmailTask(payload VerificationEmailPayload) (*asynq.Task, error) {
	if err := payload.Validate(); err != nil {
		return nil, err
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskVerificationEmail, body), nil
}

// ParseVerificationEmailPayload 解析验证邮件载荷，asynq 与 RabbitMQ 共用
func ParseVerificationEmailPayload(body []byte) (VerificationEmailPayload, error) {
	var payload VerificationEmailPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return VerificationEmailPayload{}, err
	}
	if err := payload.Validate(); err != nil {
		return VerificationEmailPayload{}, err
	}
	return payload, nil
}

package service

import (
	"errors"
	"strings"
	"time"

	"github.com/jobdesk-next/internal/constants"
	"github.com/jobdesk-next/internal/models"
	"github.com/jobdesk-next/internal/repository"
)

// AuthAuditService 认证审计日志服务
type AuthAuditService struct {
	repo repository.AuthAuditLogRepository
}

// NewAuthAuditService 创建认证审计日志服务
func NewAuthAuditService(repo repository.AuthAuditLogRepository) *AuthAuditService {
	return &AuthAuditService{repo: repo}
}

// RecordAuthEventInput 审计记录输入
type RecordAuthEventInput struct {
	UserID     uint
	Email      string
	Event      string
	Status     string
	FailReason string
	ClientIP   string
	UserAgent  string
	Source     string
	RequestID  string
}

// Record 记录认证行为
func (s *AuthAuditService) Record(input RecordAuthEventInput) error {
	if s == nil || s.repo == nil {
		return nil
	}

	email := strings.TrimSpace(input.Email)
	if normalized, err := NormalizeEmail(email); err == nil {
		email = normalized
	}

	status := strings.ToLower(strings.TrimSpace(input.Status))
	if status != constants.AuthEventStatusSuccess {
		status = constants.AuthEventStatusFailed
	}

	failReason := strings.ToLower(strings.TrimSpace(input.FailReason))
	if status == constants.AuthEventStatusSuccess {
		failReason = ""
	} else if failReason == "" {
		failReason = constants.AuthFailReasonInternalError
	}

	source := strings.ToLower(strings.TrimSpace(input.Source))
	if source == "" {
		source = constants.AuthSourceWeb
	}

	return s.repo.Create(&models.AuthAuditLog{
		UserID:     input.UserID,
		Email:      email,
		Event:      strings.ToLower(strings.TrimSpace(input.Event)),
		Status:     status,
		FailReason: failReason,
		ClientIP:   strings.TrimSpace(input.ClientIP),
		UserAgent:  strings.TrimSpace(input.UserAgent),
		Source:     source,
		RequestID:  strings.TrimSpace(input.RequestID),
		CreatedAt:  time.Now(),
	})
}

// ListByUser 用户侧查询自己的审计日志
func (s *AuthAuditService) ListByUser(userID uint, event string, page, pageSize int) ([]models.AuthAuditLog, int64, error) {
	if s == nil || s.repo == nil || userID == 0 {
		return []models.AuthAuditLog{}, 0, nil
	}
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return s.repo.ListByUser(repository.AuthAuditLogListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   userID,
		Event:    strings.ToLower(strings.TrimSpace(event)),
	})
}

// FailReasonOf 将业务错误映射为审计失败原因
func FailReasonOf(err error) string {
	switch ErrorKindOf(err) {
	case ErrorKindNone:
		return ""
	case ErrorKindRateLimit:
		return constants.AuthFailReasonRateLimited
	case ErrorKindInvalidToken:
		return constants.AuthFailReasonInvalidToken
	case ErrorKindValidation:
		switch {
		case errors.Is(err, ErrInvalidEmail):
			return constants.AuthFailReasonInvalidEmail
		case errors.Is(err, ErrInvalidCredentials):
			return constants.AuthFailReasonInvalidCredentials
		case errors.Is(err, ErrEmailNotVerified):
			return constants.AuthFailReasonEmailNotVerified
		case errors.Is(err, ErrUserDisabled):
			return constants.AuthFailReasonUserDisabled
		default:
			return constants.AuthFailReasonBadRequest
		}
	default:
		return constants.AuthFailReasonInternalError
	}
}

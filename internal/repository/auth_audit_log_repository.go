package repository

import (
	"github.com/jobdesk-next/internal/models"

	"gorm.io/gorm"
)

// AuthAuditLogRepository 认证审计日志数据访问接口
type AuthAuditLogRepository interface {
	Create(log *models.AuthAuditLog) error
	ListByUser(filter AuthAuditLogListFilter) ([]models.AuthAuditLog, int64, error)
}

// GormAuthAuditLogRepository GORM 实现
type GormAuthAuditLogRepository struct {
	db *gorm.DB
}

// NewAuthAuditLogRepository 创建认证审计日志仓库
func NewAuthAuditLogRepository(db *gorm.DB) *GormAuthAuditLogRepository {
	return &GormAuthAuditLogRepository{db: db}
}

// Create 创建审计日志
func (r *GormAuthAuditLogRepository) Create(log *models.AuthAuditLog) error {
	if log == nil {
		return nil
	}
	return r.db.Create(log).Error
}

// ListByUser 用户侧查询自己的审计日志
func (r *GormAuthAuditLogRepository) ListByUser(filter AuthAuditLogListFilter) ([]models.AuthAuditLog, int64, error) {
	query := r.db.Model(&models.AuthAuditLog{}).Where("user_id = ?", filter.UserID)
	if filter.Event != "" {
		query = query.Where("event = ?", filter.Event)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	var logs []models.AuthAuditLog
	if err := query.Order("id desc").Find(&logs).Error; err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}

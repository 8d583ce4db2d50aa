package models

import "time"

// AuthAuditLog 认证审计日志
// 说明：记录登录、注册、邮箱验证、重发验证邮件等行为，用于个人安全中心展示与排障。
type AuthAuditLog struct {
	ID         uint      `gorm:"primarykey" json:"id"`                          // 主键
	UserID     uint      `gorm:"index" json:"user_id"`                          // 用户ID（未知账号时为0）
	Email      string    `gorm:"index" json:"email"`                            // 涉及邮箱
	Event      string    `gorm:"type:varchar(32);index;not null" json:"event"`  // 事件类型
	Status     string    `gorm:"type:varchar(16);index;not null" json:"status"` // 结果（success/failed）
	FailReason string    `gorm:"type:varchar(32);index" json:"fail_reason"`     // 失败原因枚举
	ClientIP   string    `gorm:"type:varchar(64);index" json:"client_ip"`       // 客户端IP
	UserAgent  string    `gorm:"type:text" json:"user_agent"`                   // 客户端UA
	Source     string    `gorm:"type:varchar(32)" json:"source"`                // 来源（web/link）
	RequestID  string    `gorm:"type:varchar(64);index" json:"request_id"`      // 请求追踪ID
	CreatedAt  time.Time `gorm:"index" json:"created_at"`                       // 记录时间
}

// TableName 指定表名
func (AuthAuditLog) TableName() string {
	return "auth_audit_logs"
}

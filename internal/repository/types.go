package repository

import "time"

// AuthAuditLogListFilter 查询认证审计日志列表的过滤条件
type AuthAuditLogListFilter struct {
	Page        int
	PageSize    int
	UserID      uint
	Event       string
	Status      string
	CreatedFrom *time.Time
}

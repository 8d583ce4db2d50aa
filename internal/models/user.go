package models

import (
	"time"

	"gorm.io/gorm"
)

// User 用户表
// 说明：邮箱验证挑战以扁平列保存在用户行上，同一账号任意时刻最多一个有效挑战。
type User struct {
	ID                 uint           `gorm:"primarykey" json:"id"`                         // 主键
	Email              string         `gorm:"uniqueIndex;not null" json:"email"`            // 邮箱（已规范化）
	PasswordHash       string         `gorm:"not null" json:"-"`                            // 密码哈希（不返回给前端）
	DisplayName        string         `gorm:"default:''" json:"display_name"`               // 昵称
	Locale             string         `gorm:"default:'zh-CN'" json:"locale"`                // 语言偏好
	Status             string         `gorm:"default:'active'" json:"status"`               // 账号状态
	TokenVersion       uint64         `gorm:"not null;default:0" json:"-"`                  // Token 版本（用于全量失效）
	TokenInvalidBefore *time.Time     `gorm:"index" json:"-"`                               // 该时间点前签发的 Token 失效
	EmailVerified      bool           `gorm:"not null;default:false" json:"email_verified"` // 邮箱是否已验证
	EmailVerifiedAt    *time.Time     `json:"email_verified_at"`                            // 邮箱验证时间
	VerifyTokenHash    *string        `gorm:"type:varchar(64);index" json:"-"`              // 验证链接 token 的哈希
	VerifyCodeHash     *string        `gorm:"type:varchar(80)" json:"-"`                    // 展示码的 bcrypt 哈希
	VerifyExpiresAt    *time.Time     `json:"-"`                                            // 挑战过期时间
	VerifyAttempts     int            `gorm:"not null;default:0" json:"-"`                  // 连续失败次数
	VerifyLockedUntil  *time.Time     `json:"-"`                                            // 锁定截止时间
	LastLoginAt        *time.Time     `json:"last_login_at"`                                // 最后登录时间
	CreatedAt          time.Time      `gorm:"index" json:"created_at"`                      // 创建时间
	UpdatedAt          time.Time      `gorm:"index" json:"updated_at"`                      // 更新时间
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`                               // 软删除时间
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}

// Challenge 返回当前验证挑战，三列不全时视为无挑战
func (u *User) Challenge() *VerificationChallenge {
	if u == nil || u.VerifyTokenHash == nil || u.VerifyCodeHash == nil || u.VerifyExpiresAt == nil {
		return nil
	}
	return &VerificationChallenge{
		TokenHash: *u.VerifyTokenHash,
		CodeHash:  *u.VerifyCodeHash,
		ExpiresAt: *u.VerifyExpiresAt,
	}
}

// SetChallenge 写入或清除验证挑战，三列总是同时变更
func (u *User) SetChallenge(c *VerificationChallenge) {
	if c == nil {
		u.VerifyTokenHash = nil
		u.VerifyCodeHash = nil
		u.VerifyExpiresAt = nil
		return
	}
	tokenHash := c.TokenHash
	codeHash := c.CodeHash
	expiresAt := c.ExpiresAt
	u.VerifyTokenHash = &tokenHash
	u.VerifyCodeHash = &codeHash
	u.VerifyExpiresAt = &expiresAt
}

// ResetVerifyAttempts 清零失败次数并解除锁定
func (u *User) ResetVerifyAttempts() {
	u.VerifyAttempts = 0
	u.VerifyLockedUntil = nil
}

// MarkEmailVerified 标记邮箱已验证，同时清除挑战与失败状态
func (u *User) MarkEmailVerified(now time.Time) {
	verifiedAt := now
	u.EmailVerified = true
	u.EmailVerifiedAt = &verifiedAt
	u.SetChallenge(nil)
	u.ResetVerifyAttempts()
}

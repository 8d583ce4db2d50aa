package models

import (
	"strings"
	"time"

	"github.com/jobdesk-next/internal/constants"
	"github.com/jobdesk-next/internal/logger"

	"gorm.io/gorm"
)

// SeedUser 种子账号
type SeedUser struct {
	Email        string
	PasswordHash string
	Verified     bool
	Locale       string
}

// EnsureSeedUser 邮箱不存在时创建种子账号，已存在时保持不变；返回是否新建
func EnsureSeedUser(db *gorm.DB, seed SeedUser) (bool, error) {
	email := strings.ToLower(strings.TrimSpace(seed.Email))
	var count int64
	if err := db.Model(&User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		logger.Debugw("seed_user_exists", "email", logger.MaskEmail(email))
		return false, nil
	}

	user := User{
		Email:        email,
		PasswordHash: seed.PasswordHash,
		DisplayName:  strings.SplitN(email, "@", 2)[0],
		Status:       constants.UserStatusActive,
	}
	if locale := strings.TrimSpace(seed.Locale); locale != "" {
		user.Locale = locale
	}
	if seed.Verified {
		user.MarkEmailVerified(time.Now())
	}
	if err := db.Create(&user).Error; err != nil {
		return false, err
	}
	logger.Infow("seed_user_created", "email", logger.MaskEmail(email), "verified", seed.Verified)
	return true, nil
}

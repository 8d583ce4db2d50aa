package models

import "time"

// VerificationChallenge 邮箱验证挑战
// TokenHash 为链接 token 的快速哈希（可索引查询），CodeHash 为展示码的 bcrypt 哈希。
type VerificationChallenge struct {
	TokenHash string
	CodeHash  string
	ExpiresAt time.Time
}

// Expired 判断挑战是否已过期，过期时刻本身仍有效
func (c *VerificationChallenge) Expired(now time.Time) bool {
	if c == nil {
		return true
	}
	return now.After(c.ExpiresAt)
}

package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/jobdesk-next/internal/constants"

	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost 密码哈希默认成本
const DefaultBcryptCost = 12

// hashScheme 一种密码哈希方案：Detect 只看存储格式，Compare 负责比对
type hashScheme struct {
	Name    string
	Detect  func(stored string) bool
	Compare func(password, stored string) bool
}

// PasswordVerifyResult 密码校验结果
type PasswordVerifyResult struct {
	Valid          bool
	NeedsMigration bool
	Scheme         string
}

// PasswordHasher 密码哈希器
// 新密码一律使用 bcrypt；校验时按顺序尝试各方案，命中非首选方案即需要迁移。
type PasswordHasher struct {
	cost    int
	pool    *HashPool
	schemes []hashScheme
}

// NewPasswordHasher 创建密码哈希器
func NewPasswordHasher(cost int, pool *HashPool) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return &PasswordHasher{
		cost: cost,
		pool: pool,
		schemes: []hashScheme{
			{Name: constants.PasswordSchemeBcrypt, Detect: isBcryptHash, Compare: compareBcrypt},
			{Name: constants.PasswordSchemeLegacySHA256, Detect: isLegacySHA256Hash, Compare: compareLegacySHA256},
		},
	}
}

// Cost 当前 bcrypt 成本
func (h *PasswordHasher) Cost() int {
	return h.cost
}

// Hash 生成 bcrypt 哈希
func (h *PasswordHasher) Hash(ctx context.Context, password string) (string, error) {
	var (
		hashed []byte
		err    error
	)
	if poolErr := h.pool.Do(ctx, func() {
		hashed, err = bcrypt.GenerateFromPassword([]byte(password), h.cost)
	}); poolErr != nil {
		return "", poolErr
	}
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify 校验密码；格式异常的存储值视为不匹配，不返回错误
func (h *PasswordHasher) Verify(ctx context.Context, password, stored string) (PasswordVerifyResult, error) {
	var result PasswordVerifyResult
	err := h.pool.Do(ctx, func() {
		for i, scheme := range h.schemes {
			if !scheme.Detect(stored) || !scheme.Compare(password, stored) {
				continue
			}
			result = PasswordVerifyResult{Valid: true, NeedsMigration: i > 0, Scheme: scheme.Name}
			return
		}
	})
	if err != nil {
		return PasswordVerifyResult{}, err
	}
	return result, nil
}

// DetectScheme 返回存储值对应的方案名，无法识别时返回空串
func (h *PasswordHasher) DetectScheme(stored string) string {
	for _, scheme := range h.schemes {
		if scheme.Detect(stored) {
			return scheme.Name
		}
	}
	return ""
}

// LegacySHA256Hex 旧版密码摘要格式
func LegacySHA256Hex(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

func isBcryptHash(stored string) bool {
	if !strings.HasPrefix(stored, "$2") {
		return false
	}
	_, err := bcrypt.Cost([]byte(stored))
	return err == nil
}

func compareBcrypt(password, stored string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
}

func isLegacySHA256Hash(stored string) bool {
	if len(stored) != sha256.Size*2 {
		return false
	}
	_, err := hex.DecodeString(stored)
	return err == nil
}

func compareLegacySHA256(password, stored string) bool {
	return LegacySHA256Hex(password) == strings.ToLower(stored)
}

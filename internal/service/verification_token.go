package service

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"io"
	"strings"
	"time"

	"github.com/jobdesk-next/internal/models"

	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultVerificationTTL 验证挑战有效期
	DefaultVerificationTTL = 2 * time.Hour
	// DisplayCodeLength 展示码长度
	DisplayCodeLength = 8

	verificationTokenBytes = 32
	defaultCodeHashCost    = 10
)

// IssuedVerification 新签发的验证挑战；Token 与 DisplayCode 为明文，只用于发信
type IssuedVerification struct {
	Token       string
	DisplayCode string
	Challenge   models.VerificationChallenge
}

// VerificationIssuer 验证 token 签发与比对
// token 熵足够，使用 HMAC-SHA256 快速哈希以便索引；展示码熵低，使用 bcrypt。
type VerificationIssuer struct {
	secret   []byte
	ttl      time.Duration
	codeCost int
	pool     *HashPool
	random   io.Reader
}

// NewVerificationIssuer 创建签发器
func NewVerificationIssuer(secret string, ttl time.Duration, codeCost int, pool *HashPool) *VerificationIssuer {
	if ttl <= 0 {
		ttl = DefaultVerificationTTL
	}
	if codeCost < bcrypt.MinCost || codeCost > bcrypt.MaxCost {
		codeCost = defaultCodeHashCost
	}
	return &VerificationIssuer{
		secret:   []byte(secret),
		ttl:      ttl,
		codeCost: codeCost,
		pool:     pool,
		random:   rand.Reader,
	}
}

// TTL 挑战有效期
func (i *VerificationIssuer) TTL() time.Duration {
	return i.ttl
}

// Generate 生成新的 token、展示码及其哈希
func (i *VerificationIssuer) Generate(ctx context.Context, now time.Time) (*IssuedVerification, error) {
	raw := make([]byte, verificationTokenBytes)
	if _, err := io.ReadFull(i.random, raw); err != nil {
		return nil, err
	}
	token := hex.EncodeToString(raw)
	code := DisplayCodeFor(token)

	var (
		codeHash []byte
		err      error
	)
	if poolErr := i.pool.Do(ctx, func() {
		codeHash, err = bcrypt.GenerateFromPassword([]byte(code), i.codeCost)
	}); poolErr != nil {
		return nil, poolErr
	}
	if err != nil {
		return nil, err
	}

	return &IssuedVerification{
		Token:       token,
		DisplayCode: code,
		Challenge: models.VerificationChallenge{
			TokenHash: i.HashToken(token),
			CodeHash:  string(codeHash),
			ExpiresAt: now.Add(i.ttl),
		},
	}, nil
}

// HashToken 计算 token 的确定性哈希；未配置密钥时退化为 SHA-256
func (i *VerificationIssuer) HashToken(token string) string {
	token = strings.TrimSpace(token)
	if len(i.secret) == 0 {
		sum := sha256.Sum256([]byte(token))
		return hex.EncodeToString(sum[:])
	}
	mac := hmac.New(sha256.New, i.secret)
	mac.Write([]byte(token))
	return hex.EncodeToString(mac.Sum(nil))
}

// Match 判断提交值是否命中挑战：先比对 token 哈希，再按展示码做 bcrypt 比对
func (i *VerificationIssuer) Match(ctx context.Context, challenge *models.VerificationChallenge, presented string) (bool, error) {
	if challenge == nil {
		return false, nil
	}
	presented = strings.TrimSpace(presented)
	if presented == "" {
		return false, nil
	}
	if subtle.ConstantTimeCompare([]byte(i.HashToken(presented)), []byte(challenge.TokenHash)) == 1 {
		return true, nil
	}

	code := strings.ToUpper(presented)
	if len(code) != DisplayCodeLength {
		return false, nil
	}
	matched := false
	if err := i.pool.Do(ctx, func() {
		matched = bcrypt.CompareHashAndPassword([]byte(challenge.CodeHash), []byte(code)) == nil
	}); err != nil {
		return false, err
	}
	return matched, nil
}

// DisplayCodeFor 展示码为 token 前 8 位的大写形式
func DisplayCodeFor(token string) string {
	token = strings.TrimSpace(token)
	if len(token) > DisplayCodeLength {
		token = token[:DisplayCodeLength]
	}
	return strings.ToUpper(token)
}

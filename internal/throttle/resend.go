package throttle

import (
	"context"
	"strings"
	"time"
)

const (
	// DefaultResendHourlyLimit 每小时重发上限
	DefaultResendHourlyLimit = 3
	// DefaultResendDailyLimit 每日重发上限
	DefaultResendDailyLimit = 10

	resendKeyPrefix = "resend"
)

// ResendLimiter 重发验证邮件限流，按邮箱计数，不区分账号是否存在
type ResendLimiter struct {
	store   Store
	windows []Window
	now     func() time.Time
}

// NewResendLimiter 创建重发限流器，非正数上限回落到默认值
func NewResendLimiter(store Store, hourlyLimit, dailyLimit int) *ResendLimiter {
	if store == nil {
		store = NewMemoryStore()
	}
	if hourlyLimit <= 0 {
		hourlyLimit = DefaultResendHourlyLimit
	}
	if dailyLimit <= 0 {
		dailyLimit = DefaultResendDailyLimit
	}
	return &ResendLimiter{
		store: store,
		windows: []Window{
			{Name: "hour", Limit: hourlyLimit, Size: time.Hour},
			{Name: "day", Limit: dailyLimit, Size: 24 * time.Hour},
		},
		now: time.Now,
	}
}

// WithClock 替换时钟
func (l *ResendLimiter) WithClock(now func() time.Time) *ResendLimiter {
	if now != nil {
		l.now = now
	}
	return l
}

// Check 判定本次重发是否放行；放行时两个窗口同时计数
func (l *ResendLimiter) Check(ctx context.Context, email string) (Decision, error) {
	key := resendKeyPrefix + ":" + strings.ToLower(strings.TrimSpace(email))
	return l.store.Take(ctx, key, l.windows, l.now())
}

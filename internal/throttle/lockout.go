package throttle

import "time"

const (
	// DefaultMaxAttempts 连续失败达到该次数后锁定
	DefaultMaxAttempts = 5
	// DefaultLockDuration 锁定时长
	DefaultLockDuration = 15 * time.Minute
)

// Lockout 验证尝试锁定策略，按账号生效，与重发限流互不影响
type Lockout struct {
	MaxAttempts int
	Duration    time.Duration
}

// LockState 锁定状态
type LockState struct {
	Locked            bool
	Expired           bool // 曾被锁定但已到期，调用方应清零失败次数
	MinutesRemaining  int
	RetryAfterSeconds int
}

// NewLockout 创建锁定策略，非正数回落到默认值
func NewLockout(maxAttempts int, duration time.Duration) Lockout {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if duration <= 0 {
		duration = DefaultLockDuration
	}
	return Lockout{MaxAttempts: maxAttempts, Duration: duration}
}

// CheckLocked 仅当 lockedUntil 存在且晚于 now 时视为锁定
func (l Lockout) CheckLocked(lockedUntil *time.Time, now time.Time) LockState {
	if lockedUntil == nil {
		return LockState{}
	}
	remaining := lockedUntil.Sub(now)
	if remaining <= 0 {
		return LockState{Expired: true}
	}
	return LockState{
		Locked:            true,
		MinutesRemaining:  ceilDiv(remaining, time.Minute),
		RetryAfterSeconds: ceilDiv(remaining, time.Second),
	}
}

// RegisterFailure 记录一次失败，返回新的失败次数与锁定截止时间（未达阈值时为 nil）
func (l Lockout) RegisterFailure(attempts int, now time.Time) (int, *time.Time) {
	attempts++
	if attempts < l.maxAttempts() {
		return attempts, nil
	}
	until := now.Add(l.duration())
	return attempts, &until
}

func (l Lockout) maxAttempts() int {
	if l.MaxAttempts <= 0 {
		return DefaultMaxAttempts
	}
	return l.MaxAttempts
}

func (l Lockout) duration() time.Duration {
	if l.Duration <= 0 {
		return DefaultLockDuration
	}
	return l.Duration
}

func ceilDiv(d, unit time.Duration) int {
	return int((d + unit - 1) / unit)
}

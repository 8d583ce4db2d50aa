package throttle

import (
	"context"
	"errors"
	"time"
)

// ErrStoreUnavailable 计数存储不可用
var ErrStoreUnavailable = errors.New("throttle store unavailable")

// Window 固定窗口：窗口首次计数时开始，Size 后整体清零
type Window struct {
	Name  string
	Limit int
	Size  time.Duration
}

// Decision 一次限流判定结果
type Decision struct {
	Allowed    bool
	RetryAfter time.Duration
	Window     string // 被拒绝时命中的窗口名
}

// RetryAfterSeconds 返回向上取整的重试秒数，最小为 1
func (d Decision) RetryAfterSeconds() int {
	if d.Allowed {
		return 0
	}
	seconds := int((d.RetryAfter + time.Second - 1) / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	return seconds
}

// Store 限流计数存储
// Take 原子地执行：清理过期窗口 → 检查全部窗口上限 → 全部通过时每个窗口计数加一。
// 被拒绝的请求不计数。
type Store interface {
	Take(ctx context.Context, key string, windows []Window, now time.Time) (Decision, error)
}

func validWindows(windows []Window) []Window {
	out := make([]Window, 0, len(windows))
	for _, w := range windows {
		if w.Limit <= 0 || w.Size <= 0 {
			continue
		}
		out = append(out, w)
	}
	return out
}

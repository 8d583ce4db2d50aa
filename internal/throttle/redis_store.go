package throttle

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// KEYS[i] 对应第 i 个窗口，ARGV 依次为 limit_i, size_ms_i。
// 先检查全部窗口，全部未超限才逐个 INCR，首次计数时设置过期。
var takeWindowsScript = redis.NewScript(`
local blocked = 0
local retry = 0
local hit = 0
for i = 1, #KEYS do
	local limit = tonumber(ARGV[(i - 1) * 2 + 1])
	local size = tonumber(ARGV[(i - 1) * 2 + 2])
	local current = tonumber(redis.call("GET", KEYS[i]) or "0")
	if current >= limit then
		blocked = 1
		local ttl = redis.call("PTTL", KEYS[i])
		if ttl < 0 then
			redis.call("PEXPIRE", KEYS[i], size)
			ttl = size
		end
		if ttl > retry then
			retry = ttl
			hit = i
		end
	end
end
if blocked == 1 then
	return {0, retry, hit}
end
for i = 1, #KEYS do
	local size = tonumber(ARGV[(i - 1) * 2 + 2])
	local current = redis.call("INCR", KEYS[i])
	if current == 1 then
		redis.call("PEXPIRE", KEYS[i], size)
	end
end
return {1, 0, 0}
`)

// RedisStore 基于 Redis 的固定窗口计数，多实例共享上限
// 窗口起点由 Redis 首次计数时刻决定，Take 的 now 参数不参与计算。
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStore 创建 Redis 计数存储
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "throttle"
	}
	return &RedisStore{client: client, prefix: prefix}
}

// Take 实现 Store
func (s *RedisStore) Take(ctx context.Context, key string, windows []Window, _ time.Time) (Decision, error) {
	windows = validWindows(windows)
	if len(windows) == 0 {
		return Decision{Allowed: true}, nil
	}
	if s == nil || s.client == nil {
		return Decision{}, ErrStoreUnavailable
	}

	keys := make([]string, 0, len(windows))
	args := make([]interface{}, 0, len(windows)*2)
	for _, w := range windows {
		keys = append(keys, fmt.Sprintf("%s:%s", s.prefix, counterKey(key, w.Name)))
		args = append(args, w.Limit, w.Size.Milliseconds())
	}

	result, err := takeWindowsScript.Run(ctx, s.client, keys, args...).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if len(result) < 3 {
		return Decision{}, fmt.Errorf("%w: unexpected script result %v", ErrStoreUnavailable, result)
	}
	if result[0] == 1 {
		return Decision{Allowed: true}, nil
	}
	decision := Decision{RetryAfter: time.Duration(result[1]) * time.Millisecond}
	if idx := int(result[2]); idx >= 1 && idx <= len(windows) {
		decision.Window = windows[idx-1].Name
	}
	return decision, nil
}

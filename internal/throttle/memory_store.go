package throttle

import (
	"context"
	"sync"
	"time"
)

const defaultSweepInterval = time.Minute

type windowCounter struct {
	count   int
	resetAt time.Time
}

// MemoryStore 进程内固定窗口计数
// 多实例部署时各实例独立计数，需共享上限时使用 RedisStore。
type MemoryStore struct {
	mu        sync.Mutex
	counters  map[string]*windowCounter
	lastSweep time.Time
}

// NewMemoryStore 创建进程内计数存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{counters: make(map[string]*windowCounter)}
}

// Take 实现 Store
func (s *MemoryStore) Take(_ context.Context, key string, windows []Window, now time.Time) (Decision, error) {
	windows = validWindows(windows)
	if len(windows) == 0 {
		return Decision{Allowed: true}, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepLocked(now)

	counters := make([]*windowCounter, len(windows))
	denied := Decision{}
	for i, w := range windows {
		id := counterKey(key, w.Name)
		counter, ok := s.counters[id]
		if !ok || !now.Before(counter.resetAt) {
			counter = &windowCounter{resetAt: now.Add(w.Size)}
			s.counters[id] = counter
		}
		counters[i] = counter
		if counter.count >= w.Limit {
			wait := counter.resetAt.Sub(now)
			if wait > denied.RetryAfter {
				denied.RetryAfter = wait
				denied.Window = w.Name
			}
		}
	}
	if denied.Window != "" {
		return denied, nil
	}

	for _, counter := range counters {
		counter.count++
	}
	return Decision{Allowed: true}, nil
}

// Len 当前保存的窗口计数条数
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.counters)
}

func (s *MemoryStore) sweepLocked(now time.Time) {
	if !s.lastSweep.IsZero() && now.Sub(s.lastSweep) < defaultSweepInterval {
		return
	}
	s.lastSweep = now
	for id, counter := range s.counters {
		if !now.Before(counter.resetAt) {
			delete(s.counters, id)
		}
	}
}

func counterKey(key, window string) string {
	return key + ":" + window
}

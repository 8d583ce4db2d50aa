package service

import (
	"context"
	"runtime"

	"golang.org/x/sync/semaphore"
)

// HashPool 限制并发 bcrypt 计算的协程池
type HashPool struct {
	sem  *semaphore.Weighted
	size int
}

// NewHashPool 创建哈希池，workers<=0 时按 CPU 核数
func NewHashPool(workers int) *HashPool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &HashPool{sem: semaphore.NewWeighted(int64(workers)), size: workers}
}

// Size 池容量
func (p *HashPool) Size() int {
	if p == nil {
		return 0
	}
	return p.size
}

// Do 占用一个槽位执行 fn，等待槽位时响应 ctx 取消
func (p *HashPool) Do(ctx context.Context, fn func()) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if p == nil || p.sem == nil {
		if err := ctx.Err(); err != nil {
			return err
		}
		fn()
		return nil
	}
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer p.sem.Release(1)
	fn()
	return nil
}

// 包 cache：查询结果缓存；优先使用 Redis，未配置时退化为进程内 TTL 缓存
package cache

import (
	"context"
	"sync"
	"time"

	"ip-api-client/pkg/ipapi"
)

// Cache：按地址键读写查询结果
// 约束：实现需可并发使用；Set 失败静默丢弃，缓存不参与主链路的错误语义
type Cache interface {
	Get(ctx context.Context, ip string) (*ipapi.Result, bool)
	Set(ctx context.Context, ip string, res *ipapi.Result)
}

type memEntry struct {
	res       *ipapi.Result
	expiresAt time.Time
}

// 文档注释：进程内 TTL 缓存
// 背景：无 Redis 时的默认实现；后台定期清理过期项，Stop 后清理协程退出。
type Memory struct {
	mu     sync.RWMutex
	items  map[string]*memEntry
	ttl    time.Duration
	stopCh chan struct{}
}

func NewMemory(ttl time.Duration) *Memory {
	m := &Memory{
		items:  make(map[string]*memEntry),
		ttl:    ttl,
		stopCh: make(chan struct{}),
	}
	go m.cleanup()
	return m
}

func (m *Memory) Get(_ context.Context, ip string) (*ipapi.Result, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, ok := m.items[ip]
	if !ok || time.Now().After(e.expiresAt) {
		return nil, false
	}
	return e.res, true
}

func (m *Memory) Set(_ context.Context, ip string, res *ipapi.Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[ip] = &memEntry{res: res, expiresAt: time.Now().Add(m.ttl)}
}

func (m *Memory) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.items)
}

func (m *Memory) Stop() { close(m.stopCh) }

func (m *Memory) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.mu.Lock()
			now := time.Now()
			for k, v := range m.items {
				if now.After(v.expiresAt) {
					delete(m.items, k)
				}
			}
			m.mu.Unlock()
		case <-m.stopCh:
			return
		}
	}
}

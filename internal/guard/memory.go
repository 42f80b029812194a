package guard

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// 超过这个数量时在 Acquire 中顺带清理过期的 key
const sweepThreshold = 1024

type memoryEntry struct {
	token      string
	acquiredAt time.Time
}

// MemoryGuard 只在单个进程内有效
type MemoryGuard struct {
	mu       sync.Mutex
	entries  map[string]memoryEntry
	duration time.Duration
	now      func() time.Time
}

func NewMemoryGuard(duration time.Duration) *MemoryGuard {
	if duration <= 0 {
		duration = DefaultLockDuration
	}
	return &MemoryGuard{
		entries:  make(map[string]memoryEntry),
		duration: duration,
		now:      time.Now,
	}
}

func (g *MemoryGuard) Acquire(_ context.Context, key string) (string, bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if entry, exists := g.entries[key]; exists && now.Sub(entry.acquiredAt) < g.duration {
		return "", false, nil
	}

	// 过期的记录直接覆盖，避免崩溃的请求永久占用 key
	token := uuid.NewString()
	g.entries[key] = memoryEntry{token: token, acquiredAt: now}

	if len(g.entries) > sweepThreshold {
		for k, entry := range g.entries {
			if now.Sub(entry.acquiredAt) >= g.duration {
				delete(g.entries, k)
			}
		}
	}

	return token, true, nil
}

func (g *MemoryGuard) Release(_ context.Context, key, token string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if entry, exists := g.entries[key]; exists && entry.token == token {
		delete(g.entries, key)
	}
	return nil
}

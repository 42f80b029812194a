package guard

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "submission_guard:"

// 只有 value 仍是自己的 token 时才删除
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisGuard 用 SET NX PX 实现，多个 API 实例共享同一张锁表。
// value 是本次获取的 token，释放时通过脚本比较后再删除。
type RedisGuard struct {
	client   redis.Cmdable
	duration time.Duration
}

func NewRedisGuard(client redis.Cmdable, duration time.Duration) *RedisGuard {
	if duration <= 0 {
		duration = DefaultLockDuration
	}
	return &RedisGuard{
		client:   client,
		duration: duration,
	}
}

func (g *RedisGuard) Acquire(ctx context.Context, key string) (string, bool, error) {
	token := uuid.NewString()
	ok, err := g.client.SetNX(ctx, redisKeyPrefix+key, token, g.duration).Result()
	if err != nil || !ok {
		return "", false, err
	}
	return token, true, nil
}

func (g *RedisGuard) Release(ctx context.Context, key, token string) error {
	return releaseScript.Run(ctx, g.client, []string{redisKeyPrefix + key}, token).Err()
}

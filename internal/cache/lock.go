package cache

import (
	"context"
	"time"

	"PunchPass/storage/redis"
)

// SetNX 互斥锁：写动作按 (employeeID, date) 串行化，压住读-改-写竞态。
// Redis 不可用时整体降级成无锁，行为回到原始的接受竞态语义。

const lockPrefix = "lock"

// TryLock 拿到锁返回 true。Redis 未启用时恒为 true。
func TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if !redis.Ready() {
		return true, nil
	}

	fullkey := redis.Key(lockPrefix, key)

	result, err := redis.Client().SetNX(ctx, fullkey, 1, ttl).Result()

	if err != nil {
		return false, err
	}

	return result, err
}

func Unlock(ctx context.Context, key string) error {
	if !redis.Ready() {
		return nil
	}

	fullkey := redis.Key(lockPrefix, key)

	return redis.Client().Del(ctx, fullkey).Err()
}

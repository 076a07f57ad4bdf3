package lock

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisLockTTL   = 10 * time.Second
	redisRetryWait = 50 * time.Millisecond
)

// releaseScript deletes the lock only when the stored token matches,
// so an expired-and-reacquired lock is never released by the old holder.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

// Redis はプロセスをまたいで予約スロットを直列化する分散ロック。
// SET NX + TTL の取得を成功するまでポーリングし、解放はトークン照合付きで行う。
type Redis struct {
	client *redis.Client
}

// NewRedis wraps an established client. Callers decide between this
// and the in-process Memory locker based on deployment topology.
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

// Acquire implements KeyedLocker.
func (r *Redis) Acquire(ctx context.Context, key string) (func(), error) {
	token, err := randomToken(16)
	if err != nil {
		return nil, err
	}

	lockKey := "slotlock:" + key
	for {
		ok, err := r.client.SetNX(ctx, lockKey, token, redisLockTTL).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(redisRetryWait):
		}
	}

	release := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = releaseScript.Run(ctx, r.client, []string{lockKey}, token).Err()
	}
	return release, nil
}

func randomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
